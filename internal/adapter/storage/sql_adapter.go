package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// createSlotsTable is valid for both MySQL and SQLite.
const createSlotsTable = `
CREATE TABLE IF NOT EXISTS cart_slots (
	slot_key   VARCHAR(191) NOT NULL PRIMARY KEY,
	payload    TEXT         NOT NULL,
	updated_at TIMESTAMP    NOT NULL
)`

// SQLAdapter keeps the cart as one row of cart_slots. It works with the mysql
// and sqlite drivers.
type SQLAdapter struct {
	db  *sql.DB
	key string
	now func() time.Time
}

func NewSQLAdapter(db *sql.DB, key string) *SQLAdapter {
	return &SQLAdapter{db: db, key: key, now: time.Now}
}

func (m *SQLAdapter) Migrate(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, createSlotsTable); err != nil {
		return fmt.Errorf("create cart_slots: %w", err)
	}
	return nil
}

func (m *SQLAdapter) LoadCart(ctx context.Context) (domain.CartState, error) {
	var payload string
	err := m.db.QueryRowContext(ctx, `
		SELECT payload FROM cart_slots WHERE slot_key = ?`, m.key,
	).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewCartState(), nil
	}
	if err != nil {
		return domain.CartState{}, fmt.Errorf("query cart slot: %w", err)
	}

	var state domain.CartState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return domain.CartState{}, fmt.Errorf("unmarshal cart: %w", err)
	}
	return state, nil
}

func (m *SQLAdapter) SaveCart(ctx context.Context, state domain.CartState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	_, err = m.db.ExecContext(ctx, `
		REPLACE INTO cart_slots (slot_key, payload, updated_at)
		VALUES (?, ?, ?)`,
		m.key, string(payload), m.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("replace cart slot: %w", err)
	}
	return nil
}

func (m *SQLAdapter) Close() error {
	return m.db.Close()
}

var _ port.CartStorage = (*SQLAdapter)(nil)
