package rpc

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Server handles HTTP JSON-RPC requests in the XRPL wire format.
type Server struct {
	registry *Registry
	timeout  time.Duration
	log      *zap.Logger
}

func NewServer(registry *Registry, timeout time.Duration, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		registry: registry,
		timeout:  timeout,
		log:      logger,
	}
}

// xrplRequest is the XRPL JSON-RPC envelope:
// {"method": "...", "params": [{...}]}
type xrplRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet:
		s.handleGet(w, r)
		return
	case http.MethodPost:
		s.handlePost(w, r)
		return
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("command")
	if method == "" {
		method = "server_info"
	}

	ctx := s.requestContext(r)
	result, rpcErr := s.Execute(ctx, method, nil)
	s.writeResponse(w, result, rpcErr)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeResponse(w, nil, ErrorInternal("Failed to read request body"))
		return
	}
	defer r.Body.Close()

	var request xrplRequest
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeResponse(w, nil, NewError(CodeParseError, "jsonInvalid", "Invalid JSON: "+err.Error()))
		return
	}
	if request.Method == "" {
		s.writeResponse(w, nil, NewError(CodeJSONRPC, "missingCommand", "Missing method field"))
		return
	}

	// XRPL carries params as an array holding one object.
	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	ctx := s.requestContext(r)
	if params != nil {
		var envelope struct {
			ApiVersion *int `json:"api_version,omitempty"`
		}
		if err := json.Unmarshal(params, &envelope); err == nil && envelope.ApiVersion != nil {
			ctx.ApiVersion = *envelope.ApiVersion
		}
	}

	start := time.Now()
	result, rpcErr := s.Execute(ctx, request.Method, params)
	s.log.Debug("rpc request served",
		zap.String("method", request.Method),
		zap.String("client", ctx.ClientIP),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("error", rpcErr != nil))

	s.writeResponse(w, result, rpcErr)
}

// Execute dispatches a method call through the registry.
func (s *Server) Execute(ctx *Context, method string, params json.RawMessage) (interface{}, *Error) {
	handler, ok := s.registry.Get(method)
	if !ok {
		return nil, ErrorMethodNotFound(method)
	}
	return handler.Handle(ctx, params)
}

func (s *Server) requestContext(r *http.Request) *Context {
	return &Context{
		Context:    r.Context(),
		ApiVersion: DefaultApiVersion,
		ClientIP:   clientIP(r),
	}
}

// writeResponse writes the XRPL JSON-RPC response shape: success and
// error payloads both live under "result" with a "status" member.
func (s *Server) writeResponse(w http.ResponseWriter, result interface{}, rpcErr *Error) {
	var resultObj map[string]interface{}

	if rpcErr != nil {
		resultObj = map[string]interface{}{
			"status":        "error",
			"error":         rpcErr.ErrorString,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
	} else {
		var err error
		resultObj, err = resultToMap(result)
		if err != nil {
			s.log.Error("failed to marshal rpc result", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		resultObj["status"] = "success"
	}

	data, err := json.Marshal(map[string]interface{}{"result": resultObj})
	if err != nil {
		s.log.Error("failed to marshal rpc response", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// resultToMap flattens a handler result into a JSON object so the
// status member can be attached next to the result fields.
func resultToMap(result interface{}) (map[string]interface{}, error) {
	if m, ok := result.(map[string]interface{}); ok {
		return m, nil
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// clientIP extracts the client address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
