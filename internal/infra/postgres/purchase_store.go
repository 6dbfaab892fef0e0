package postgres

import (
	"context"
	"fmt"

	"ready4exam-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PurchaseStore answers per-topic entitlement lookups for the purchase policy.
type PurchaseStore struct {
	pool *pgxpool.Pool
}

func NewPurchaseStore(pool *pgxpool.Pool) *PurchaseStore {
	return &PurchaseStore{pool: pool}
}

func (s *PurchaseStore) HasPurchase(ctx context.Context, userID, topic string) (bool, error) {
	if s.pool == nil {
		return false, domain.ErrStoreUnavailable
	}
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM purchases WHERE user_id = $1 AND topic_slug = $2)`,
		userID, topic).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("purchase lookup: %w", err)
	}
	return exists, nil
}
