package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// XRPL API version constants.
const (
	ApiVersion1       = 1
	ApiVersion2       = 2
	DefaultApiVersion = ApiVersion1
)

// Context carries request-scoped information into handlers.
type Context struct {
	Context    context.Context
	ApiVersion int
	ClientIP   string
	IsAdmin    bool
}

// Handler is implemented by every RPC method.
type Handler interface {
	Handle(ctx *Context, params json.RawMessage) (interface{}, *Error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx *Context, params json.RawMessage) (interface{}, *Error)

func (f HandlerFunc) Handle(ctx *Context, params json.RawMessage) (interface{}, *Error) {
	return f(ctx, params)
}

// Registry maps method names to handlers.
type Registry struct {
	mu      sync.RWMutex
	methods map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{methods: make(map[string]Handler)}
}

func (r *Registry) Register(name string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[name] = handler
}

func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.methods[name]
	return handler, ok
}

func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	sort.Strings(methods)
	return methods
}

// LedgerIndex unmarshals from either a JSON number or a string, matching
// XRPL API behavior where ledger_index can be 12345, "12345", "validated",
// "current" or "closed".
type LedgerIndex string

func (li *LedgerIndex) UnmarshalJSON(data []byte) error {
	var strVal string
	if err := json.Unmarshal(data, &strVal); err == nil {
		*li = LedgerIndex(strVal)
		return nil
	}

	var numVal uint64
	if err := json.Unmarshal(data, &numVal); err == nil {
		*li = LedgerIndex(fmt.Sprintf("%d", numVal))
		return nil
	}

	return fmt.Errorf("ledger_index must be a number or string, got: %s", string(data))
}

func (li LedgerIndex) String() string {
	return string(li)
}

// LedgerSpecifier selects which ledger a request reads from.
type LedgerSpecifier struct {
	LedgerHash  string      `json:"ledger_hash,omitempty"`
	LedgerIndex LedgerIndex `json:"ledger_index,omitempty"`
}

// JSON-RPC 2.0 request.
type JsonRpcRequest struct {
	JsonRpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id,omitempty"`
}

// JSON-RPC 2.0 response.
type JsonRpcResponse struct {
	JsonRpc string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id,omitempty"`
}

// WebSocketCommand is the XRPL WebSocket request envelope. Method
// parameters sit inline next to the envelope fields, so handlers re-parse
// the raw message.
type WebSocketCommand struct {
	Command    string      `json:"command"`
	ID         interface{} `json:"id,omitempty"`
	ApiVersion *int        `json:"api_version,omitempty"`
}

// WebSocketResponse is the XRPL WebSocket response envelope.
type WebSocketResponse struct {
	Status       string      `json:"status"`
	Type         string      `json:"type"`
	Result       interface{} `json:"result,omitempty"`
	ID           interface{} `json:"id,omitempty"`
	ApiVersion   int         `json:"api_version,omitempty"`
	Warnings     []Warning   `json:"warnings,omitempty"`
	Error        string      `json:"error,omitempty"`
	ErrorCode    int         `json:"error_code,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// API warning IDs defined by the XRPL documentation.
const (
	WarningClioServer = 2001
)

// Warning is an API warning attached to responses.
type Warning struct {
	ID      int    `json:"id"`
	Message string `json:"message"`
}
