package data

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/LeJamon/goclio/internal/ledger"
)

// Row key prefixes. Object rows are keyed by object key plus a 4-byte
// big-endian sequence suffix, so versions of one object sort together
// and a read at sequence S is one SeekLT.
const (
	prefixObject byte = 'o'
	prefixHeader byte = 'h'
	prefixHash   byte = 'x'
)

var rangeKey = []byte("meta/range")

const defaultCacheSize = 16384

// Options configures a Store.
type Options struct {
	// Compression selects the blob compressor: "none" or "lz4".
	Compression string

	// CacheSize is the number of (key, sequence) object reads kept in
	// the LRU cache. Zero uses the default.
	CacheSize int

	// Headers overrides the header index; nil keeps headers in pebble
	// alongside the objects.
	Headers HeaderIndex

	Logger *zap.Logger
}

type cacheKey struct {
	key [32]byte
	seq uint32
}

// Store is the pebble-backed ledger store. It implements Backend for
// the read path and Writer for ingestion.
type Store struct {
	db      *pebble.DB
	headers HeaderIndex
	comp    Compressor
	cache   *lru.Cache[cacheKey, []byte]
	log     *zap.Logger

	mu     sync.Mutex // guards range updates
	closed bool
}

var _ Backend = (*Store)(nil)
var _ Writer = (*Store)(nil)

// NewStore opens (or creates) a store at the given path.
func NewStore(path string, opts Options) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", path, err)
	}

	comp, err := NewCompressor(opts.Compression)
	if err != nil {
		db.Close()
		return nil, err
	}

	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[cacheKey, []byte](size)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		db:    db,
		comp:  comp,
		cache: cache,
		log:   logger,
	}
	if opts.Headers != nil {
		s.headers = opts.Headers
	} else {
		s.headers = &pebbleHeaders{db: db}
	}

	logger.Info("ledger store opened",
		zap.String("path", path),
		zap.String("compression", comp.Name()),
		zap.Int("cache_size", size))
	return s, nil
}

// Close closes the store and its header index.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.headers.Close()
	if dbErr := s.db.Close(); err == nil {
		err = dbErr
	}
	return err
}

// FetchLedgerRange implements Backend.
func (s *Store) FetchLedgerRange(ctx context.Context) (*LedgerRange, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.headers.Range(ctx)
}

// FetchLedgerBySequence implements Backend.
func (s *Store) FetchLedgerBySequence(ctx context.Context, seq uint32) (*ledger.Header, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.headers.BySequence(ctx, seq)
}

// FetchLedgerByHash implements Backend.
func (s *Store) FetchLedgerByHash(ctx context.Context, hash [32]byte) (*ledger.Header, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.headers.ByHash(ctx, hash)
}

// FetchLedgerObject implements Backend. It returns the newest version
// of the object written at or before seq.
func (s *Store) FetchLedgerObject(ctx context.Context, key [32]byte, seq uint32) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ck := cacheKey{key: key, seq: seq}
	if blob, ok := s.cache.Get(ck); ok {
		if len(blob) == 0 {
			return nil, ErrNotFound
		}
		return blob, nil
	}

	prefix := make([]byte, 1+32)
	prefix[0] = prefixObject
	copy(prefix[1:], key[:])

	// Upper bound admits the row at exactly seq: version suffixes are
	// exactly 4 bytes, so prefix||seq||0x00 sorts just above it.
	upper := make([]byte, len(prefix)+5)
	copy(upper, prefix)
	binary.BigEndian.PutUint32(upper[len(prefix):], seq)

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upper,
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	if !iter.SeekLT(upper) {
		return nil, ErrNotFound
	}

	blob, err := s.comp.Decompress(iter.Value())
	if err != nil {
		return nil, err
	}
	if itErr := iter.Error(); itErr != nil {
		return nil, itErr
	}

	s.cache.Add(ck, blob)
	if len(blob) == 0 {
		// Tombstone: the object was deleted at or before seq.
		return nil, ErrNotFound
	}
	return blob, nil
}

// WriteLedgerObject implements Writer.
func (s *Store) WriteLedgerObject(ctx context.Context, key [32]byte, seq uint32, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	row := make([]byte, 1+32+4)
	row[0] = prefixObject
	copy(row[1:], key[:])
	binary.BigEndian.PutUint32(row[33:], seq)

	stored, err := s.comp.Compress(blob)
	if err != nil {
		return err
	}
	return s.db.Set(row, stored, pebble.Sync)
}

// WriteLedgerHeader implements Writer.
func (s *Store) WriteLedgerHeader(ctx context.Context, header *ledger.Header) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.headers.WriteHeader(ctx, header)
}

// pebbleHeaders keeps ledger headers and the known range in the same
// pebble instance as the objects.
type pebbleHeaders struct {
	db *pebble.DB
}

func headerRowKey(seq uint32) []byte {
	row := make([]byte, 5)
	row[0] = prefixHeader
	binary.BigEndian.PutUint32(row[1:], seq)
	return row
}

func hashRowKey(hash [32]byte) []byte {
	row := make([]byte, 33)
	row[0] = prefixHash
	copy(row[1:], hash[:])
	return row
}

func (p *pebbleHeaders) Range(ctx context.Context) (*LedgerRange, error) {
	val, closer, err := p.db.Get(rangeKey)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer closer.Close()

	if len(val) != 8 {
		return nil, fmt.Errorf("corrupt range row: %d bytes", len(val))
	}
	return &LedgerRange{
		MinSequence: binary.BigEndian.Uint32(val[:4]),
		MaxSequence: binary.BigEndian.Uint32(val[4:]),
	}, nil
}

func (p *pebbleHeaders) BySequence(ctx context.Context, seq uint32) (*ledger.Header, error) {
	val, closer, err := p.db.Get(headerRowKey(seq))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()

	return ledger.DeserializeHeader(append([]byte(nil), val...))
}

func (p *pebbleHeaders) ByHash(ctx context.Context, hash [32]byte) (*ledger.Header, error) {
	val, closer, err := p.db.Get(hashRowKey(hash))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	seq := binary.BigEndian.Uint32(val)
	closer.Close()

	return p.BySequence(ctx, seq)
}

func (p *pebbleHeaders) WriteHeader(ctx context.Context, header *ledger.Header) error {
	current, err := p.Range(ctx)
	if err != nil {
		return err
	}

	next := &LedgerRange{MinSequence: header.Sequence, MaxSequence: header.Sequence}
	if current != nil {
		next.MinSequence = min(current.MinSequence, header.Sequence)
		next.MaxSequence = max(current.MaxSequence, header.Sequence)
	}

	rangeVal := make([]byte, 8)
	binary.BigEndian.PutUint32(rangeVal[:4], next.MinSequence)
	binary.BigEndian.PutUint32(rangeVal[4:], next.MaxSequence)

	seqVal := make([]byte, 4)
	binary.BigEndian.PutUint32(seqVal, header.Sequence)

	batch := p.db.NewBatch()
	defer batch.Close()

	if err := batch.Set(headerRowKey(header.Sequence), header.Serialize(), nil); err != nil {
		return err
	}
	if err := batch.Set(hashRowKey(header.Hash), seqVal, nil); err != nil {
		return err
	}
	if err := batch.Set(rangeKey, rangeVal, nil); err != nil {
		return err
	}
	return batch.Commit(pebble.Sync)
}

func (p *pebbleHeaders) Close() error {
	// The store owns the pebble instance.
	return nil
}
