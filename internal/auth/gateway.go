// Package auth wraps the external identity provider behind a small gateway:
// sign-in with a popup-then-redirect fallback, sign-out, a change
// subscription, and the topic entitlement check.
package auth

import (
	"context"
	"errors"
	"log"
	"sync"

	"ready4exam-quiz-service/internal/domain"
)

// Provider is the surface the identity backend must expose. Implementations
// talk to the provider's documented API; the backend itself is never
// reimplemented here.
type Provider interface {
	// SignInPopup runs the interactive popup flow.
	SignInPopup(ctx context.Context) (domain.Identity, error)
	// SignInRedirect runs the full-page redirect flow.
	SignInRedirect(ctx context.Context) (domain.Identity, error)
	// PendingRedirect resolves the outcome of a prior redirect flow, if any.
	PendingRedirect(ctx context.Context) (domain.Identity, bool, error)
	// SignOut terminates the provider session.
	SignOut(ctx context.Context) error
}

// Policy decides whether an identity is entitled to a topic. The concrete rule
// is external; the gateway only needs the boolean.
type Policy interface {
	Allow(ctx context.Context, identity domain.Identity, signedIn bool, topic string) (bool, error)
}

// ChangeFunc receives every auth state transition.
type ChangeFunc func(identity domain.Identity, signedIn bool)

// Gateway holds the current auth state and routes all transitions through a
// single notification path.
type Gateway struct {
	provider Provider
	policy   Policy

	mu        sync.RWMutex
	identity  domain.Identity
	signedIn  bool
	listeners map[int]ChangeFunc
	nextID    int
}

func NewGateway(provider Provider, policy Policy) *Gateway {
	return &Gateway{
		provider:  provider,
		policy:    policy,
		listeners: make(map[int]ChangeFunc),
	}
}

// Init resolves a pending redirect result once at startup so a user who
// completed sign-in via the redirect fallback is recognized without
// re-prompting. Call exactly once before serving.
func (g *Gateway) Init(ctx context.Context) error {
	if g.provider == nil {
		return domain.ErrProviderUnavailable
	}
	identity, ok, err := g.provider.PendingRedirect(ctx)
	if err != nil {
		// A failed redirect check leaves the user signed out; it does not
		// block startup.
		log.Printf("auth: redirect result check failed: %v", err)
		return nil
	}
	if ok {
		g.setState(identity, true)
	}
	return nil
}

// OnChange registers a callback invoked on every state transition. The
// returned cancel removes the registration.
func (g *Gateway) OnChange(fn ChangeFunc) (cancel func()) {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = fn
	g.mu.Unlock()
	return func() {
		g.mu.Lock()
		delete(g.listeners, id)
		g.mu.Unlock()
	}
}

// SignIn attempts the popup flow and, for the classified recoverable popup
// failures, falls back to the redirect flow. Any other failure propagates
// unchanged.
func (g *Gateway) SignIn(ctx context.Context) (domain.Identity, error) {
	if g.provider == nil {
		return domain.Identity{}, domain.ErrProviderUnavailable
	}

	identity, err := g.provider.SignInPopup(ctx)
	if err != nil {
		if !recoverablePopupFailure(err) {
			return domain.Identity{}, err
		}
		log.Printf("auth: popup sign-in failed (%v), falling back to redirect", err)
		identity, err = g.provider.SignInRedirect(ctx)
		if err != nil {
			return domain.Identity{}, err
		}
	}

	g.setState(identity, true)
	return identity, nil
}

// SignOut terminates the session and notifies through the same path sign-in uses.
func (g *Gateway) SignOut(ctx context.Context) error {
	if g.provider == nil {
		return domain.ErrProviderUnavailable
	}
	if err := g.provider.SignOut(ctx); err != nil {
		return err
	}
	g.setState(domain.Identity{}, false)
	return nil
}

// Current returns the identity and whether anyone is signed in.
func (g *Gateway) Current() (domain.Identity, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.identity, g.signedIn
}

// CheckAccess evaluates the entitlement policy for the current identity.
// Policy errors deny and log; denial itself is a normal branch, not an error.
func (g *Gateway) CheckAccess(ctx context.Context, topic string) bool {
	identity, signedIn := g.Current()
	allowed, err := g.policy.Allow(ctx, identity, signedIn, topic)
	if err != nil {
		log.Printf("auth: access check failed for topic %s: %v", topic, err)
		return false
	}
	return allowed
}

func (g *Gateway) setState(identity domain.Identity, signedIn bool) {
	g.mu.Lock()
	g.identity = identity
	g.signedIn = signedIn
	listeners := make([]ChangeFunc, 0, len(g.listeners))
	for _, fn := range g.listeners {
		listeners = append(listeners, fn)
	}
	g.mu.Unlock()

	for _, fn := range listeners {
		fn(identity, signedIn)
	}
}

func recoverablePopupFailure(err error) bool {
	return errors.Is(err, domain.ErrPopupBlocked) || errors.Is(err, domain.ErrPopupCancelled)
}
