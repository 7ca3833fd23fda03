// Package data provides the versioned, append-only ledger store backing
// the RPC read path. The store holds every historical version of every
// state object; reads are always pinned to an explicit ledger sequence.
package data

import (
	"context"
	"errors"

	"github.com/LeJamon/goclio/internal/ledger"
)

var (
	// ErrNotFound indicates the requested object or header is absent.
	ErrNotFound = errors.New("not found")

	// ErrClosed is returned when operating on a closed store.
	ErrClosed = errors.New("store is closed")
)

// LedgerRange is the contiguous span of validated ledger sequences the
// store knows about.
type LedgerRange struct {
	MinSequence uint32
	MaxSequence uint32
}

// Backend is the read interface handlers see. All reads may suspend on
// the context; every call takes the pinned sequence explicitly rather
// than carrying it in shared state.
//go:generate mockgen -destination mocks/backend.go -package mocks github.com/LeJamon/goclio/internal/data Backend
type Backend interface {
	// FetchLedgerRange returns the known sequence range, or nil when the
	// store has not ingested any ledger yet.
	FetchLedgerRange(ctx context.Context) (*LedgerRange, error)

	// FetchLedgerBySequence returns the header for a sequence, or
	// ErrNotFound.
	FetchLedgerBySequence(ctx context.Context, seq uint32) (*ledger.Header, error)

	// FetchLedgerByHash returns the header for a ledger hash, or
	// ErrNotFound.
	FetchLedgerByHash(ctx context.Context, hash [32]byte) (*ledger.Header, error)

	// FetchLedgerObject returns the newest version of the object at or
	// before seq, or ErrNotFound when the object does not exist at that
	// sequence.
	FetchLedgerObject(ctx context.Context, key [32]byte, seq uint32) ([]byte, error)
}

// Writer is the ingestion-side interface. The RPC read path never
// touches it.
type Writer interface {
	// WriteLedgerHeader stores a header, indexes its hash and extends
	// the known range.
	WriteLedgerHeader(ctx context.Context, header *ledger.Header) error

	// WriteLedgerObject stores a version of a state object as of seq.
	// A nil or empty blob records a deletion.
	WriteLedgerObject(ctx context.Context, key [32]byte, seq uint32, blob []byte) error
}

// HeaderIndex resolves ledger headers and the known range. The default
// store keeps headers in pebble next to the objects; a relational
// implementation can be swapped in via configuration.
type HeaderIndex interface {
	Range(ctx context.Context) (*LedgerRange, error)
	BySequence(ctx context.Context, seq uint32) (*ledger.Header, error)
	ByHash(ctx context.Context, hash [32]byte) (*ledger.Header, error)
	WriteHeader(ctx context.Context, header *ledger.Header) error
	Close() error
}
