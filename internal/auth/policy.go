package auth

import (
	"context"

	"ready4exam-quiz-service/internal/domain"
)

// SignedInPolicy grants every topic to any signed-in, non-anonymous identity.
type SignedInPolicy struct{}

func (SignedInPolicy) Allow(_ context.Context, identity domain.Identity, signedIn bool, _ string) (bool, error) {
	return signedIn && !identity.Anonymous, nil
}

// PurchaseReader answers per-topic purchase lookups.
type PurchaseReader interface {
	HasPurchase(ctx context.Context, userID, topic string) (bool, error)
}

// PurchasePolicy grants a topic only when the signed-in user has purchased it.
type PurchasePolicy struct {
	purchases PurchaseReader
}

func NewPurchasePolicy(purchases PurchaseReader) *PurchasePolicy {
	return &PurchasePolicy{purchases: purchases}
}

func (p *PurchasePolicy) Allow(ctx context.Context, identity domain.Identity, signedIn bool, topic string) (bool, error) {
	if !signedIn || identity.Anonymous {
		return false, nil
	}
	return p.purchases.HasPurchase(ctx, identity.UID, topic)
}
