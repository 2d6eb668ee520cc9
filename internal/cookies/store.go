// Package cookies retrieves the backend session cookie from a browser-owned
// cookie store. The embedded browser surface and the plain HTTP client do
// not share a cookie jar, so after a successful redirect the session cookie
// has to be pulled across that boundary explicitly.
package cookies

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
)

// Cookie is one matched (name, value) pair ready to be re-attached to
// outbound requests. The matched name must be reused verbatim: the backend
// has shipped under several cookie names and only the extracted pair is
// known to be valid.
type Cookie struct {
	Name  string
	Value string
}

// Header returns the Cookie header fragment for this pair
func (c Cookie) Header() string {
	return c.Name + "=" + c.Value
}

// IsZero reports whether no cookie was extracted
func (c Cookie) IsZero() bool {
	return c.Name == "" && c.Value == ""
}

// Store is a read view over a platform cookie store, queried per origin.
// Implementations must treat a failed query as an origin-local condition;
// the extractor will move on to the next origin.
type Store interface {
	Cookies(ctx context.Context, origin string) (map[string]string, error)
}

// ClearableStore is a Store whose contents can be wiped, used for the
// defensive clear at app start and on logout.
type ClearableStore interface {
	Store
	Clear(ctx context.Context) error
}

// JarStore adapts a net/http cookie jar to the Store interface so the
// embedded browser surface and the extractor can share one jar in-process.
type JarStore struct {
	mu  sync.Mutex
	jar *cookiejar.Jar
}

var _ ClearableStore = (*JarStore)(nil)

// NewJarStore creates a JarStore with an empty jar
func NewJarStore() (*JarStore, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &JarStore{jar: jar}, nil
}

// Jar exposes the underlying jar for use by an http.Client
func (s *JarStore) Jar() http.CookieJar {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jar
}

// Cookies returns the cookies visible under the given origin. Bare and
// dot-prefixed host forms are normalized to a secure URL before querying.
func (s *JarStore) Cookies(_ context.Context, origin string) (map[string]string, error) {
	u, err := originURL(origin)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	jarCookies := s.jar.Cookies(u)
	s.mu.Unlock()

	result := make(map[string]string, len(jarCookies))
	for _, c := range jarCookies {
		result[c.Name] = c.Value
	}
	return result, nil
}

// SetCookies records cookies under the given origin, mirroring what a
// browser navigation would have stored.
func (s *JarStore) SetCookies(origin string, cs []*http.Cookie) error {
	u, err := originURL(origin)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.jar.SetCookies(u, cs)
	s.mu.Unlock()
	return nil
}

// Clear discards the jar wholesale. There is no per-name removal in the
// jar API (and per-name clearing is unreliable on some platforms anyway),
// so the jar is replaced.
func (s *JarStore) Clear(_ context.Context) error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.jar = jar
	s.mu.Unlock()
	return nil
}

// originURL normalizes an origin candidate to an absolute URL. Candidates
// may be full URLs, bare hosts, or dot-prefixed host forms.
func originURL(origin string) (*url.URL, error) {
	normalized := strings.TrimPrefix(origin, ".")
	if !strings.Contains(normalized, "://") {
		normalized = "https://" + normalized
	}
	return url.Parse(normalized)
}
