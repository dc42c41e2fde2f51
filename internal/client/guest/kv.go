package guest

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/storykeeper/internal/client/migrations"
	"github.com/dmitrijs2005/storykeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/storykeeper/internal/common"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// KV is a flat key-value store. Get returns (nil, nil) for absent keys.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// SQLiteKV is the metadata table of a dedicated SQLite file.
type SQLiteKV struct {
	*metadata.SQLiteRepository
	db *sql.DB
}

// OpenKV opens (creating if needed) the key-value database at dsn.
func OpenKV(ctx context.Context, dsn string) (*SQLiteKV, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	db.SetMaxOpenConns(1)

	if err := migrations.Up(ctx, db, migrations.KVDir); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	return &SQLiteKV{SQLiteRepository: metadata.NewSQLiteRepository(db), db: db}, nil
}

func (k *SQLiteKV) Close() error {
	return k.db.Close()
}

// MemoryKV keeps values in a map. It is used when the KV file cannot be
// opened and in tests.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: map[string][]byte{}}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte{}, v...), nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte{}, value...)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}
