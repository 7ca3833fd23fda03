package rpc

import (
	"context"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"github.com/LeJamon/goclio/internal/data"
	"github.com/LeJamon/goclio/internal/ledger"
)

// ResolveSnapshot pins a request to one validated ledger. Every read the
// handler performs afterwards uses the returned header's sequence, so the
// response reflects a single consistent state.
//
// The server only serves validated ledgers, so "validated", "current" and
// "closed" all resolve to the newest ledger in the store.
func ResolveSnapshot(ctx context.Context, backend data.Backend, spec LedgerSpecifier) (*ledger.Header, *Error) {
	rng, err := backend.FetchLedgerRange(ctx)
	if err != nil {
		return nil, ErrorInternal(err.Error())
	}
	if rng == nil {
		return nil, ErrorNotReady()
	}

	if spec.LedgerHash != "" {
		raw, err := hex.DecodeString(spec.LedgerHash)
		if err != nil || len(raw) != 32 {
			return nil, ErrorInvalidParams("ledger_hash malformed")
		}
		var hash [32]byte
		copy(hash[:], raw)

		header, err := backend.FetchLedgerByHash(ctx, hash)
		if err != nil {
			if errors.Is(err, data.ErrNotFound) {
				return nil, ErrorLgrNotFound("ledgerNotFound")
			}
			return nil, ErrorInternal(err.Error())
		}
		if header.Sequence < rng.MinSequence || header.Sequence > rng.MaxSequence {
			return nil, ErrorLgrNotFound("ledgerNotFound")
		}
		return header, nil
	}

	seq := rng.MaxSequence
	switch idx := strings.ToLower(spec.LedgerIndex.String()); idx {
	case "", "validated", "current", "closed":
		// Newest validated ledger.
	default:
		parsed, err := strconv.ParseUint(idx, 10, 32)
		if err != nil {
			return nil, ErrorInvalidParams("ledgerIndexMalformed")
		}
		seq = uint32(parsed)
	}

	if seq < rng.MinSequence || seq > rng.MaxSequence {
		return nil, ErrorLgrNotFound("ledgerNotFound")
	}

	header, err := backend.FetchLedgerBySequence(ctx, seq)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, ErrorLgrNotFound("ledgerNotFound")
		}
		return nil, ErrorInternal(err.Error())
	}
	return header, nil
}
