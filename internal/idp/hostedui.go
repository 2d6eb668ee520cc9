// Package idp builds the URLs that start an authentication flow. The
// backend's own login and signup-url endpoints are authoritative; OIDC
// discovery against the provider is the fallback when the backend cannot
// hand out a URL.
package idp

import (
	"context"
	"fmt"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/e0as/mobile-bridge/internal/config"
	"github.com/e0as/mobile-bridge/internal/log"
)

// HostedUI resolves flow entry points for the hosted-UI provider
type HostedUI struct {
	backendBaseURL string
	provider       config.ProviderConfig
}

// NewHostedUI creates a resolver for the given backend and provider
func NewHostedUI(backendBaseURL string, provider config.ProviderConfig) *HostedUI {
	return &HostedUI{backendBaseURL: backendBaseURL, provider: provider}
}

// LoginURL is the backend endpoint that 302s into the provider's hosted
// login page with the right client and redirect parameters attached.
func (h *HostedUI) LoginURL() string {
	u, err := url.JoinPath(h.backendBaseURL, "/auth/login")
	if err != nil {
		return h.backendBaseURL + "/auth/login"
	}
	return u
}

// SignupURL is the backend endpoint that resolves the provider's hosted
// signup page. Unlike login it is not a redirect; the backend returns the
// URL in a JSON body and the caller follows it.
func (h *HostedUI) SignupURL() string {
	u, err := url.JoinPath(h.backendBaseURL, "/registration/signup-url")
	if err != nil {
		return h.backendBaseURL + "/registration/signup-url"
	}
	return u
}

// LogoutURL is the backend endpoint that tears down the server session
func (h *HostedUI) LogoutURL() string {
	u, err := url.JoinPath(h.backendBaseURL, "/auth/logout")
	if err != nil {
		return h.backendBaseURL + "/auth/logout"
	}
	return u
}

// AuthorizeURL builds a provider authorize URL directly, bypassing the
// backend. Used when the backend's login endpoint is down but the provider
// is reachable. Requires issuer and clientId in the provider config.
func (h *HostedUI) AuthorizeURL(ctx context.Context, redirectURI, state string) (string, error) {
	if h.provider.Issuer == "" {
		return "", fmt.Errorf("provider issuer not configured, cannot build authorize URL")
	}
	if h.provider.ClientID == "" {
		return "", fmt.Errorf("provider clientId not configured, cannot build authorize URL")
	}

	endpoint, err := DiscoverEndpoints(ctx, h.provider.Issuer)
	if err != nil {
		return "", err
	}

	scopes := h.provider.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "email", "profile"}
	}

	conf := oauth2.Config{
		ClientID:    string(h.provider.ClientID),
		Endpoint:    endpoint,
		RedirectURL: redirectURI,
		Scopes:      scopes,
	}
	return conf.AuthCodeURL(state), nil
}

// DiscoverEndpoints resolves the provider's OAuth2 endpoints via OIDC
// discovery on the issuer.
func DiscoverEndpoints(ctx context.Context, issuer string) (oauth2.Endpoint, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return oauth2.Endpoint{}, fmt.Errorf("discovering provider endpoints: %w", err)
	}

	endpoint := provider.Endpoint()
	log.LogDebugWithFields("idp", "Provider endpoints discovered", map[string]any{
		"issuer":    issuer,
		"authorize": endpoint.AuthURL,
	})
	return endpoint, nil
}
