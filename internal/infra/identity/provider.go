// Package identity is the HTTP client for the external identity provider. It
// implements auth.Provider against the provider's session API; the provider
// itself is never reimplemented.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ready4exam-quiz-service/internal/domain"
)

// Provider calls the identity service's REST endpoints.
type Provider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewProvider(baseURL, apiKey string) *Provider {
	return &Provider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type identityPayload struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Anonymous   bool   `json:"anonymous"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (p *Provider) SignInPopup(ctx context.Context) (domain.Identity, error) {
	return p.signIn(ctx, "/v1/session/popup")
}

func (p *Provider) SignInRedirect(ctx context.Context) (domain.Identity, error) {
	return p.signIn(ctx, "/v1/session/redirect")
}

func (p *Provider) signIn(ctx context.Context, path string) (domain.Identity, error) {
	if p.baseURL == "" {
		return domain.Identity{}, domain.ErrProviderUnavailable
	}
	var payload identityPayload
	if err := p.do(ctx, http.MethodPost, path, &payload); err != nil {
		return domain.Identity{}, err
	}
	return toIdentity(payload), nil
}

// PendingRedirect asks the provider whether a redirect flow completed since
// the last check. A 204 means nothing is pending.
func (p *Provider) PendingRedirect(ctx context.Context) (domain.Identity, bool, error) {
	if p.baseURL == "" {
		return domain.Identity{}, false, domain.ErrProviderUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/session/redirect-result", nil)
	if err != nil {
		return domain.Identity{}, false, err
	}
	p.authorize(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.Identity{}, false, fmt.Errorf("redirect result check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return domain.Identity{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Identity{}, false, decodeError(resp)
	}

	var payload identityPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Identity{}, false, fmt.Errorf("decode redirect result: %w", err)
	}
	return toIdentity(payload), true, nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	if p.baseURL == "" {
		return domain.ErrProviderUnavailable
	}
	return p.do(ctx, http.MethodPost, "/v1/session/signout", nil)
}

func (p *Provider) do(ctx context.Context, method, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bytes.NewReader(nil))
	if err != nil {
		return err
	}
	p.authorize(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode identity response: %w", err)
	}
	return nil
}

func (p *Provider) authorize(req *http.Request) {
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
}

// decodeError maps the provider's error codes onto the sign-in taxonomy so
// the gateway can classify recoverable popup failures.
func decodeError(resp *http.Response) error {
	var payload errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	switch payload.Code {
	case "popup_blocked":
		return domain.ErrPopupBlocked
	case "popup_cancelled", "cancelled_popup_request":
		return domain.ErrPopupCancelled
	}
	if payload.Message != "" {
		return fmt.Errorf("identity provider: %s (%s)", payload.Message, resp.Status)
	}
	return fmt.Errorf("identity provider: unexpected status %s", resp.Status)
}

func toIdentity(p identityPayload) domain.Identity {
	return domain.Identity{
		UID:         p.UID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Anonymous:   p.Anonymous,
	}
}
