package rpc

import (
	"context"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goclio/internal/data"
	"github.com/LeJamon/goclio/internal/data/mocks"
	"github.com/LeJamon/goclio/internal/ledger"
)

func snapshotBackend(t *testing.T, minSeq, maxSeq uint32) *mocks.MockBackend {
	t.Helper()
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)

	headers := make(map[uint32]*ledger.Header)
	for seq := minSeq; seq <= maxSeq; seq++ {
		h := &ledger.Header{Sequence: seq}
		h.Hash[0] = byte(seq)
		headers[seq] = h
	}

	backend.EXPECT().FetchLedgerRange(gomock.Any()).
		Return(&data.LedgerRange{MinSequence: minSeq, MaxSequence: maxSeq}, nil).AnyTimes()
	backend.EXPECT().FetchLedgerBySequence(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, seq uint32) (*ledger.Header, error) {
			if h, ok := headers[seq]; ok {
				return h, nil
			}
			return nil, data.ErrNotFound
		}).AnyTimes()
	backend.EXPECT().FetchLedgerByHash(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, hash [32]byte) (*ledger.Header, error) {
			for _, h := range headers {
				if h.Hash == hash {
					return h, nil
				}
			}
			return nil, data.ErrNotFound
		}).AnyTimes()

	return backend
}

func TestResolveSnapshotDefaultsToNewest(t *testing.T) {
	backend := snapshotBackend(t, 10, 15)

	for _, index := range []string{"", "validated", "current", "closed"} {
		header, rpcErr := ResolveSnapshot(context.Background(), backend, LedgerSpecifier{LedgerIndex: LedgerIndex(index)})
		require.Nil(t, rpcErr)
		require.Equal(t, uint32(15), header.Sequence)
	}
}

func TestResolveSnapshotNumericIndex(t *testing.T) {
	backend := snapshotBackend(t, 10, 15)

	header, rpcErr := ResolveSnapshot(context.Background(), backend, LedgerSpecifier{LedgerIndex: "12"})
	require.Nil(t, rpcErr)
	require.Equal(t, uint32(12), header.Sequence)

	for _, index := range []string{"9", "16"} {
		_, rpcErr := ResolveSnapshot(context.Background(), backend, LedgerSpecifier{LedgerIndex: LedgerIndex(index)})
		require.NotNil(t, rpcErr)
		require.Equal(t, CodeLgrNotFound, rpcErr.Code)
	}
}

func TestResolveSnapshotMalformedIndex(t *testing.T) {
	backend := snapshotBackend(t, 10, 15)

	_, rpcErr := ResolveSnapshot(context.Background(), backend, LedgerSpecifier{LedgerIndex: "not-a-number"})
	require.NotNil(t, rpcErr)
	require.Equal(t, CodeInvalidParams, rpcErr.Code)
}

func TestResolveSnapshotByHash(t *testing.T) {
	backend := snapshotBackend(t, 10, 15)

	var wanted [32]byte
	wanted[0] = 11
	header, rpcErr := ResolveSnapshot(context.Background(), backend, LedgerSpecifier{
		LedgerHash: fmt.Sprintf("%X", wanted[:]),
	})
	require.Nil(t, rpcErr)
	require.Equal(t, uint32(11), header.Sequence)

	_, rpcErr = ResolveSnapshot(context.Background(), backend, LedgerSpecifier{LedgerHash: "abcd"})
	require.NotNil(t, rpcErr)
	require.Equal(t, CodeInvalidParams, rpcErr.Code)

	var unknown [32]byte
	unknown[0] = 0xEE
	_, rpcErr = ResolveSnapshot(context.Background(), backend, LedgerSpecifier{
		LedgerHash: fmt.Sprintf("%X", unknown[:]),
	})
	require.NotNil(t, rpcErr)
	require.Equal(t, CodeLgrNotFound, rpcErr.Code)
}

func TestResolveSnapshotHashOutsideRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)

	// The hash index knows a ledger the range does not yet cover.
	stray := &ledger.Header{Sequence: 20}
	stray.Hash[0] = 20

	backend.EXPECT().FetchLedgerRange(gomock.Any()).
		Return(&data.LedgerRange{MinSequence: 10, MaxSequence: 15}, nil)
	backend.EXPECT().FetchLedgerByHash(gomock.Any(), stray.Hash).
		Return(stray, nil)

	_, rpcErr := ResolveSnapshot(context.Background(), backend, LedgerSpecifier{
		LedgerHash: fmt.Sprintf("%X", stray.Hash[:]),
	})
	require.NotNil(t, rpcErr)
	require.Equal(t, CodeLgrNotFound, rpcErr.Code)
}

func TestResolveSnapshotEmptyStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	backend.EXPECT().FetchLedgerRange(gomock.Any()).Return(nil, nil)

	_, rpcErr := ResolveSnapshot(context.Background(), backend, LedgerSpecifier{})
	require.NotNil(t, rpcErr)
	require.Equal(t, CodeNotReady, rpcErr.Code)
}

func TestLedgerIndexUnmarshal(t *testing.T) {
	var li LedgerIndex
	require.NoError(t, li.UnmarshalJSON([]byte(`12345`)))
	require.Equal(t, "12345", li.String())

	require.NoError(t, li.UnmarshalJSON([]byte(`"validated"`)))
	require.Equal(t, "validated", li.String())

	require.Error(t, li.UnmarshalJSON([]byte(`{"x":1}`)))
}
