// Package sqlite stores flushed batches in an SQLite database.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/teenjuna/capacitor"
	"github.com/teenjuna/capacitor/codec"
	"github.com/teenjuna/capacitor/internal"
)

var (
	// ErrClosed is returned by Storage methods when the storage has been closed.
	ErrClosed = errors.New("storage is closed")
)

const (
	memory = ":memory:"
)

// Storage is a batch storage backed by SQLite.
type Storage struct {
	cfg *Config
	db  *sql.DB
}

// New creates a new Storage with the provided configuration functions.
//
// Default configuration:
//   - File: ":memory:" (in-memory database)
//   - Conns: 1
//
// Returns an error if the SQLite database cannot be opened or initialized.
func New(configFuncs ...ConfigFunc) (*Storage, error) {
	cfg := &Config{}
	cfg.File(memory)
	cfg.Conns(1)
	for _, cf := range configFuncs {
		cf(cfg)
	}

	db, err := open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	if err := setup(db); err != nil {
		return nil, errors.Join(fmt.Errorf("setup: %w", err), db.Close())
	}

	storage := Storage{
		cfg: cfg,
		db:  db,
	}

	return &storage, nil
}

// Handler returns a capacitor handler that encodes every non-empty batch with codec and pushes
// it into storage.
func Handler[Item any](storage *Storage, codec codec.Codec[Item]) capacitor.Handler[Item] {
	if storage == nil {
		panic("storage can't be nil")
	}
	if codec == nil {
		panic("codec can't be nil")
	}
	return func(batch []Item) error {
		if len(batch) == 0 {
			return nil
		}

		data, err := codec.Encode(slices.Values(batch))
		if err != nil {
			return fmt.Errorf("encode batch: %w", err)
		}

		if _, err := storage.Push(data, len(batch)); err != nil {
			return fmt.Errorf("push batch: %w", err)
		}

		return nil
	}
}

// Push inserts a new batch into the storage.
//
// The data is encoded bytes of the batch, and size is the number of items in the batch. Returns a
// unique BatchID that can be used to identify this batch.
//
// Returns [ErrClosed] if the storage has been closed.
func (s *Storage) Push(data []byte, size int) (BatchID, error) {
	id := internal.GenerateID(internal.IDLength)
	_, err := s.db.Exec(
		`
		insert into batch (
			id,
			data,
			size,
			flushed_at
		) values (
			:id,
			:data,
			:size,
			:flushed_at
		)
		`,
		sql.Named("id", id),
		sql.Named("data", data),
		sql.Named("size", size),
		sql.Named("flushed_at", toTimestamp(time.Now())),
	)
	if err != nil {
		return "", closed(err)
	}

	return id, nil
}

// Batches returns up to limit stored batches, oldest first.
//
// Returns [ErrClosed] if the storage has been closed.
func (s *Storage) Batches(limit int) ([]Batch, error) {
	if limit < 1 {
		panic("limit can't be < 1")
	}

	rows, err := s.db.Query(
		`
		select id, data, size, flushed_at
		from batch
		order by seq asc
		limit :limit
		`,
		sql.Named("limit", limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", closed(err))
	}
	defer rows.Close()

	batches := make([]Batch, 0, limit)

	for rows.Next() {
		var (
			b         Batch
			flushedAt int64
		)
		if err := rows.Scan(&b.ID, &b.Data, &b.Size, &flushedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		b.FlushedAt = fromTimestamp(flushedAt)
		batches = append(batches, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	return batches, nil
}

// Delete permanently removes one or more batches from the storage.
func (s *Storage) Delete(ids ...BatchID) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", closed(err))
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare("delete from batch where id = :id")
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.Exec(sql.Named("id", id)); err != nil {
			return fmt.Errorf("delete %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// Stats returns the total number of stored batches and items.
func (s *Storage) Stats() (*Stats, error) {
	var stats Stats
	err := s.db.QueryRow(
		`
		select
			coalesce(count(*), 0) as batches,
			coalesce(sum(size), 0) as items
		from
			batch
		`,
	).Scan(
		&stats.Batches,
		&stats.Items,
	)
	if err != nil {
		return nil, closed(err)
	}

	return &stats, nil
}

// Close closes the underlying SQLite database.
//
// After closing, all methods on Storage will return [ErrClosed].
func (s *Storage) Close() error {
	return s.db.Close()
}

// Batch is a stored flushed batch.
type Batch struct {
	// ID is the unique identifier of this batch.
	ID BatchID
	// Data is the encoded batch content.
	Data []byte
	// Size is the number of items in the batch.
	Size int
	// FlushedAt is the time when the batch was stored.
	FlushedAt time.Time
}

type BatchID = string

// Stats represents statistics about the storage.
type Stats struct {
	// Batches is the total number of batches in storage.
	Batches int
	// Items is the total number of items across all batches.
	Items int
}

func open(cfg *Config) (*sql.DB, error) {
	params := url.Values{}
	params.Add("_txlock", "immediate")
	params.Add("_timeout", "5000") // 5s

	name := cfg.file
	inMemory := name == memory
	if inMemory {
		name = internal.GenerateID(internal.IDLength)
		params.Add("mode", "memory")
		params.Add("cache", "shared")
	} else {
		params.Add("_journal", "wal")
		params.Add("_sync", "normal")
	}

	db, err := sql.Open("sqlite3", "file:"+name+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	db.SetConnMaxIdleTime(0)
	db.SetConnMaxLifetime(0)
	if inMemory {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(cfg.conns)
		db.SetMaxIdleConns(cfg.conns)
	}

	return db, nil
}

func setup(db *sql.DB) error {
	if _, err := db.Exec(
		`
		create table if not exists batch (
			seq        integer primary key autoincrement,
			id         text not null unique,
			data       blob not null,
			size       int not null,
			flushed_at int not null
		) strict
		`,
	); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	return nil
}

// closed maps the error of an operation on a closed database to ErrClosed.
func closed(err error) error {
	if err != nil && err.Error() == "sql: database is closed" {
		return ErrClosed
	}
	return err
}

func toTimestamp(time time.Time) int64 {
	return time.UnixNano()
}

func fromTimestamp(timestamp int64) time.Time {
	return time.Unix(0, timestamp)
}
