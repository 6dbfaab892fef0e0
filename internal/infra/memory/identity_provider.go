package memory

import (
	"context"
	"sync"

	"ready4exam-quiz-service/internal/domain"
)

// StaticIdentityProvider is an in-memory auth.Provider for tests and demo
// mode. It hands out one configured identity and can be told to fail the
// popup flow with a chosen error.
type StaticIdentityProvider struct {
	mu       sync.Mutex
	identity domain.Identity

	popupErr    error
	redirectErr error
	pending     *domain.Identity
}

func NewStaticIdentityProvider(identity domain.Identity) *StaticIdentityProvider {
	return &StaticIdentityProvider{identity: identity}
}

// FailPopupWith makes subsequent popup attempts fail with err.
func (p *StaticIdentityProvider) FailPopupWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.popupErr = err
}

// FailRedirectWith makes subsequent redirect attempts fail with err.
func (p *StaticIdentityProvider) FailRedirectWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.redirectErr = err
}

// SetPendingRedirect queues an identity to be resolved by PendingRedirect.
func (p *StaticIdentityProvider) SetPendingRedirect(identity domain.Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = &identity
}

func (p *StaticIdentityProvider) SignInPopup(_ context.Context) (domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.popupErr != nil {
		return domain.Identity{}, p.popupErr
	}
	return p.identity, nil
}

func (p *StaticIdentityProvider) SignInRedirect(_ context.Context) (domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.redirectErr != nil {
		return domain.Identity{}, p.redirectErr
	}
	return p.identity, nil
}

func (p *StaticIdentityProvider) PendingRedirect(_ context.Context) (domain.Identity, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return domain.Identity{}, false, nil
	}
	identity := *p.pending
	p.pending = nil
	return identity, true, nil
}

func (p *StaticIdentityProvider) SignOut(_ context.Context) error {
	return nil
}
