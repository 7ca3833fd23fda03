package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsReadLimit     = 512 * 1024
	wsReadTimeout   = 60 * time.Second
	wsWriteTimeout  = 10 * time.Second
	wsPingInterval  = 54 * time.Second
	wsSendQueueSize = 256
)

// WebSocketServer serves the XRPL WebSocket API. Requests carry a
// "command" member and the method parameters inline; responses are the
// same result the JSON-RPC transport produces, wrapped in the
// WebSocket envelope.
type WebSocketServer struct {
	upgrader websocket.Upgrader
	server   *Server
	log      *zap.Logger

	mu          sync.RWMutex
	connections map[string]*wsConnection
}

type wsConnection struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc
}

func NewWebSocketServer(server *Server, logger *zap.Logger) *WebSocketServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketServer{
		upgrader: websocket.Upgrader{
			CheckOrigin:  func(r *http.Request) bool { return true },
			Subprotocols: []string{"xrpl"},
		},
		server:      server,
		log:         logger,
		connections: make(map[string]*wsConnection),
	}
}

// ServeHTTP upgrades the connection and starts its pumps.
func (ws *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	wsConn := &wsConnection{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, wsSendQueueSize),
		ctx:    ctx,
		cancel: cancel,
	}

	ws.mu.Lock()
	ws.connections[wsConn.id] = wsConn
	ws.mu.Unlock()

	ws.log.Debug("websocket connection opened",
		zap.String("conn_id", wsConn.id),
		zap.String("client", clientIP(r)))

	go ws.readPump(wsConn, clientIP(r))
	go ws.writePump(wsConn)
}

func (ws *WebSocketServer) readPump(wsConn *wsConnection, clientIP string) {
	defer ws.closeConnection(wsConn)

	wsConn.conn.SetReadLimit(wsReadLimit)
	wsConn.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	wsConn.conn.SetPongHandler(func(string) error {
		wsConn.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	for {
		_, message, err := wsConn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.log.Debug("websocket read failed",
					zap.String("conn_id", wsConn.id),
					zap.Error(err))
			}
			return
		}
		ws.handleMessage(wsConn, clientIP, message)
	}
}

func (ws *WebSocketServer) writePump(wsConn *wsConnection) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-wsConn.ctx.Done():
			return
		case data := <-wsConn.send:
			wsConn.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := wsConn.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				ws.closeConnection(wsConn)
				return
			}
		case <-ticker.C:
			wsConn.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := wsConn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				ws.closeConnection(wsConn)
				return
			}
		}
	}
}

func (ws *WebSocketServer) handleMessage(wsConn *wsConnection, clientIP string, message []byte) {
	var cmd WebSocketCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		ws.sendError(wsConn, nil, NewError(CodeJSONRPC, "jsonInvalid", "Invalid JSON: "+err.Error()))
		return
	}
	if cmd.Command == "" {
		ws.sendError(wsConn, cmd.ID, NewError(CodeJSONRPC, "missingCommand", "Missing command field"))
		return
	}

	ctx := &Context{
		Context:    wsConn.ctx,
		ApiVersion: DefaultApiVersion,
		ClientIP:   clientIP,
	}
	if cmd.ApiVersion != nil {
		ctx.ApiVersion = *cmd.ApiVersion
	}

	// The whole message doubles as the params object: envelope fields
	// and method parameters are siblings in the WebSocket API.
	result, rpcErr := ws.server.Execute(ctx, cmd.Command, message)
	if rpcErr != nil {
		ws.sendError(wsConn, cmd.ID, rpcErr)
		return
	}

	ws.sendJSON(wsConn, WebSocketResponse{
		Status: "success",
		Type:   "response",
		Result: result,
		ID:     cmd.ID,
	})
}

func (ws *WebSocketServer) sendError(wsConn *wsConnection, id interface{}, rpcErr *Error) {
	ws.sendJSON(wsConn, WebSocketResponse{
		Status:       "error",
		Type:         "response",
		ID:           id,
		Error:        rpcErr.ErrorString,
		ErrorCode:    rpcErr.Code,
		ErrorMessage: rpcErr.Message,
	})
}

func (ws *WebSocketServer) sendJSON(wsConn *wsConnection, response WebSocketResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		ws.log.Error("failed to marshal websocket response", zap.Error(err))
		return
	}
	select {
	case wsConn.send <- data:
	default:
		// Queue full, drop the connection rather than block the reader.
		ws.closeConnection(wsConn)
	}
}

func (ws *WebSocketServer) closeConnection(wsConn *wsConnection) {
	ws.mu.Lock()
	_, open := ws.connections[wsConn.id]
	delete(ws.connections, wsConn.id)
	ws.mu.Unlock()

	if open {
		wsConn.cancel()
		wsConn.conn.Close()
		ws.log.Debug("websocket connection closed", zap.String("conn_id", wsConn.id))
	}
}

// ConnectionCount reports the number of open connections.
func (ws *WebSocketServer) ConnectionCount() int {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return len(ws.connections)
}
