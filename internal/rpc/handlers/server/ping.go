// Package server implements the server utility RPC methods.
package server

import (
	"encoding/json"

	"github.com/LeJamon/goclio/internal/rpc"
)

// PingHandler answers ping with an empty result, confirming the
// connection is alive.
type PingHandler struct{}

func NewPingHandler() *PingHandler {
	return &PingHandler{}
}

func (h *PingHandler) Handle(ctx *rpc.Context, params json.RawMessage) (interface{}, *rpc.Error) {
	return map[string]interface{}{}, nil
}
