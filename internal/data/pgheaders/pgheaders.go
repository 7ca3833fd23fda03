// Package pgheaders keeps ledger headers in PostgreSQL, for
// deployments that share the header index between several read
// servers while each keeps its own local object store.
package pgheaders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/LeJamon/goclio/internal/data"
	"github.com/LeJamon/goclio/internal/ledger"
)

const schema = `
CREATE TABLE IF NOT EXISTS ledgers (
    sequence BIGINT PRIMARY KEY,
    hash     BYTEA NOT NULL UNIQUE,
    header   BYTEA NOT NULL
);`

// Index implements data.HeaderIndex over a PostgreSQL database.
type Index struct {
	db  *sql.DB
	log *zap.Logger
}

var _ data.HeaderIndex = (*Index)(nil)

// Open connects with the given DSN and creates the schema if needed.
func Open(dsn string, logger *zap.Logger) (*Index, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create ledgers table: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("postgres header index connected")
	return &Index{db: db, log: logger}, nil
}

func (i *Index) Range(ctx context.Context) (*data.LedgerRange, error) {
	var minSeq, maxSeq sql.NullInt64
	row := i.db.QueryRowContext(ctx,
		`SELECT MIN(sequence), MAX(sequence) FROM ledgers`)
	if err := row.Scan(&minSeq, &maxSeq); err != nil {
		return nil, err
	}
	if !minSeq.Valid {
		return nil, nil
	}
	return &data.LedgerRange{
		MinSequence: uint32(minSeq.Int64),
		MaxSequence: uint32(maxSeq.Int64),
	}, nil
}

func (i *Index) BySequence(ctx context.Context, seq uint32) (*ledger.Header, error) {
	var blob []byte
	row := i.db.QueryRowContext(ctx,
		`SELECT header FROM ledgers WHERE sequence = $1`, int64(seq))
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, data.ErrNotFound
		}
		return nil, err
	}
	return ledger.DeserializeHeader(blob)
}

func (i *Index) ByHash(ctx context.Context, hash [32]byte) (*ledger.Header, error) {
	var blob []byte
	row := i.db.QueryRowContext(ctx,
		`SELECT header FROM ledgers WHERE hash = $1`, hash[:])
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, data.ErrNotFound
		}
		return nil, err
	}
	return ledger.DeserializeHeader(blob)
}

func (i *Index) WriteHeader(ctx context.Context, header *ledger.Header) error {
	_, err := i.db.ExecContext(ctx,
		`INSERT INTO ledgers (sequence, hash, header) VALUES ($1, $2, $3)
		 ON CONFLICT (sequence) DO UPDATE SET hash = $2, header = $3`,
		int64(header.Sequence), header.Hash[:], header.Serialize())
	return err
}

func (i *Index) Close() error {
	return i.db.Close()
}
