package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/utils"
)

type PostgresCartStore struct {
	DB        *sql.DB
	sessionID string
	ttl       time.Duration
	now       func() time.Time
}

func NewPostgresCartStore(db *sql.DB, sessionID string, ttl time.Duration) *PostgresCartStore {
	return &PostgresCartStore{DB: db, sessionID: sessionID, ttl: ttl, now: time.Now}
}

func (s *PostgresCartStore) Load(ctx context.Context) ([]models.CartLineItem, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT items
		FROM cart_records
		WHERE session_id = $1 AND expires_at > $2
	`

	var itemsJSON []byte

	err := s.DB.QueryRowContext(dbCtx, query, s.sessionID, s.now()).Scan(&itemsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	return DecodeRecord(itemsJSON)
}

func (s *PostgresCartStore) Save(ctx context.Context, items []models.CartLineItem) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	itemsJSON, err := EncodeRecord(items)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO cart_records (session_id, items, updated_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id)
		DO UPDATE SET items = EXCLUDED.items, updated_at = EXCLUDED.updated_at, expires_at = EXCLUDED.expires_at
	`

	now := s.now()
	if _, err := s.DB.ExecContext(dbCtx, query, s.sessionID, itemsJSON, now, now.Add(s.ttl)); err != nil {
		return fmt.Errorf("failed to save the cart record: %w", err)
	}

	return nil
}
