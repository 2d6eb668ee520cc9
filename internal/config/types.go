package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Secret is a string type that redacts itself when printed
type Secret string

// String implements fmt.Stringer to redact the secret
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "***"
}

// MarshalJSON implements json.Marshaler to prevent secrets in JSON logs
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return json.Marshal("")
	}
	return json.Marshal("***")
}

// DefaultRequestTimeout bounds every backend call made by the API client
const DefaultRequestTimeout = 10 * time.Second

// DefaultCookieNames are the session cookie names the backend has been
// observed to use across deployments, in probe order. The secure
// __Host- form is current; the rest are historical variants.
var DefaultCookieNames = []string{
	"__Host-sid",
	"session",
	"sessionId",
	"auth_token",
	"connect.sid",
}

// DefaultSuccessPaths are the backend paths that signal a completed
// login/registration redirect, matched under either scheme.
var DefaultSuccessPaths = []string{
	"/auth/callback",
	"/auth/success",
	"/dashboard",
	"/profile",
	"/complete-profile",
}

// BackendConfig describes the platform backend the bridge talks to
type BackendConfig struct {
	BaseURL string        `json:"baseURL"`
	Timeout time.Duration `json:"timeout,omitempty"`
}

// ProviderConfig describes the hosted-UI identity provider
type ProviderConfig struct {
	// HostedUIOrigin is the origin of the provider's hosted login pages,
	// e.g. https://xyz.auth.us-east-2.amazoncognito.com
	HostedUIOrigin string `json:"hostedUIOrigin"`

	// Issuer enables OIDC discovery of the provider's authorize endpoint
	// when the backend's login/signup URLs are unreachable
	Issuer string `json:"issuer,omitempty"`

	// ClientIDRaw may be a plain string or a {"$env": "VAR"} reference
	ClientIDRaw json.RawMessage `json:"clientId,omitempty"`
	Scopes      []string        `json:"scopes,omitempty"`

	// Computed
	ClientID Secret `json:"-"`
}

// CookieConfig controls the extraction probe
type CookieConfig struct {
	// Names are candidate cookie names in probe order
	Names []string `json:"names,omitempty"`
	// Origins are candidate origins in probe order; when empty they are
	// derived from the backend base URL and the hosted-UI origin
	Origins []string `json:"origins,omitempty"`
}

// RedirectConfig controls redirect classification
type RedirectConfig struct {
	SuccessPaths []string `json:"successPaths,omitempty"`
}

// Config is the resolved bridge configuration
type Config struct {
	Backend  BackendConfig  `json:"backend"`
	Provider ProviderConfig `json:"provider"`
	Cookies  CookieConfig   `json:"cookies,omitempty"`
	Redirect RedirectConfig `json:"redirect,omitempty"`
}

// UnmarshalJSON parses the duration string form ("10s") used in config files
func (b *BackendConfig) UnmarshalJSON(data []byte) error {
	type raw struct {
		BaseURL string `json:"baseURL"`
		Timeout string `json:"timeout,omitempty"`
	}

	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}

	b.BaseURL = r.BaseURL
	if r.Timeout != "" {
		timeout, err := time.ParseDuration(r.Timeout)
		if err != nil {
			return fmt.Errorf("parsing backend.timeout: %w", err)
		}
		b.Timeout = timeout
	}
	return nil
}

// UnmarshalJSON resolves the clientId env reference at parse time
func (p *ProviderConfig) UnmarshalJSON(data []byte) error {
	type rawProvider ProviderConfig
	var r rawProvider
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*p = ProviderConfig(r)

	if len(p.ClientIDRaw) > 0 {
		value, err := resolveValue(p.ClientIDRaw)
		if err != nil {
			return fmt.Errorf("resolving provider.clientId: %w", err)
		}
		p.ClientID = Secret(value)
	}
	return nil
}

// resolveValue parses a JSON value that is either a plain string or a
// {"$env": "VAR_NAME"} reference resolved against the environment
func resolveValue(raw json.RawMessage) (string, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str, nil
	}

	var ref map[string]string
	if err := json.Unmarshal(raw, &ref); err != nil {
		return "", fmt.Errorf("value must be string or reference object")
	}

	envVar, ok := ref["$env"]
	if !ok {
		return "", fmt.Errorf("unknown reference type in config value")
	}
	value := os.Getenv(envVar)
	if value == "" {
		return "", fmt.Errorf("environment variable %s not set", envVar)
	}
	return value, nil
}

// CookieOrigins returns the configured origin probe list, or derives the
// default one: backend origin under both schemes, the bare and dot-prefixed
// host forms, then the hosted-UI origin. Cookies written under one variant
// are not always visible under another, so every form is probed.
func (c *Config) CookieOrigins() []string {
	if len(c.Cookies.Origins) > 0 {
		return c.Cookies.Origins
	}

	origins := []string{c.Backend.BaseURL}
	if u, err := url.Parse(c.Backend.BaseURL); err == nil && u.Host != "" {
		host := u.Hostname()
		for _, o := range []string{
			"https://" + host,
			"http://" + host,
			host,
			"." + host,
		} {
			if o != c.Backend.BaseURL {
				origins = append(origins, o)
			}
		}
	}
	if c.Provider.HostedUIOrigin != "" {
		origins = append(origins, c.Provider.HostedUIOrigin)
	}
	return origins
}

// CookieNames returns the configured name probe list or the default one
func (c *Config) CookieNames() []string {
	if len(c.Cookies.Names) > 0 {
		return c.Cookies.Names
	}
	return DefaultCookieNames
}

// SuccessPaths returns the configured redirect allow-list or the default one
func (c *Config) SuccessPaths() []string {
	if len(c.Redirect.SuccessPaths) > 0 {
		return c.Redirect.SuccessPaths
	}
	return DefaultSuccessPaths
}

// RequestTimeout returns the configured backend timeout or the default
func (c *Config) RequestTimeout() time.Duration {
	if c.Backend.Timeout > 0 {
		return c.Backend.Timeout
	}
	return DefaultRequestTimeout
}

// BackendHost returns the backend's canonical hostname
func (c *Config) BackendHost() string {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
