package redirect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	backendHost    = "e0as.me"
	providerOrigin = "https://sportsmed.auth.us-east-2.amazoncognito.com"
)

var successPaths = []string{"/auth/callback", "/auth/success", "/dashboard", "/profile", "/complete-profile"}

func newTestClassifier() *Classifier {
	return NewClassifier(backendHost, providerOrigin, successPaths)
}

func TestClassify(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name string
		url  string
		want Outcome
	}{
		{
			name: "provider login page is continue",
			url:  providerOrigin + "/login?client_id=abc&redirect_uri=https%3A%2F%2Fe0as.me%2Fauth%2Fcallback",
			want: Outcome{Kind: KindContinue},
		},
		{
			name: "provider oauth2 authorize is continue",
			url:  providerOrigin + "/oauth2/authorize?response_type=code",
			want: Outcome{Kind: KindContinue},
		},
		{
			name: "provider signup page is continue",
			url:  providerOrigin + "/signup?client_id=abc",
			want: Outcome{Kind: KindContinue},
		},
		{
			name: "error-like fragment on provider login page stays continue",
			url:  providerOrigin + "/login?client_id=abc&error_hint=none",
			want: Outcome{Kind: KindContinue},
		},
		{
			name: "access_denied on a provider flow page is still continue",
			url:  providerOrigin + "/oauth2/authorize?client_id=abc&error=access_denied",
			want: Outcome{Kind: KindContinue},
		},
		{
			name: "same error on a foreign host is an error",
			url:  "https://other-idp.example.com/oauth2/authorize?error=access_denied",
			want: Outcome{Kind: KindError},
		},
		{
			name: "error query parameter",
			url:  "https://e0as.me/somewhere?error=invalid_request",
			want: Outcome{Kind: KindError},
		},
		{
			name: "error as second query parameter",
			url:  "https://e0as.me/somewhere?foo=1&error=server_error",
			want: Outcome{Kind: KindError},
		},
		{
			name: "error_code parameter",
			url:  "https://e0as.me/somewhere?error_code=42",
			want: Outcome{Kind: KindError},
		},
		{
			name: "access_denied anywhere in the URL",
			url:  "https://e0as.me/auth/callback#access_denied",
			want: Outcome{Kind: KindError},
		},
		{
			name: "error marker outranks a success path",
			url:  "https://e0as.me/auth/callback?error=access_denied",
			want: Outcome{Kind: KindError},
		},
		{
			name: "callback is a login success",
			url:  "https://e0as.me/auth/callback?code=xyz",
			want: Outcome{Kind: KindSuccess, Action: ActionLogin},
		},
		{
			name: "dashboard is a login success",
			url:  "https://e0as.me/dashboard",
			want: Outcome{Kind: KindSuccess, Action: ActionLogin},
		},
		{
			name: "insecure scheme still counts as success",
			url:  "http://e0as.me/auth/success",
			want: Outcome{Kind: KindSuccess, Action: ActionLogin},
		},
		{
			name: "registration marker flips the action",
			url:  "https://e0as.me/auth/callback?from=registration",
			want: Outcome{Kind: KindSuccess, Action: ActionRegister},
		},
		{
			name: "signup marker flips the action",
			url:  "https://e0as.me/complete-profile?flow=signup",
			want: Outcome{Kind: KindSuccess, Action: ActionRegister},
		},
		{
			name: "success path on a foreign host is continue",
			url:  "https://evil.example.com/auth/callback",
			want: Outcome{Kind: KindContinue},
		},
		{
			name: "path prefix does not cross segment boundaries",
			url:  "https://e0as.me/profile-settings",
			want: Outcome{Kind: KindContinue},
		},
		{
			name: "nested success path matches",
			url:  "https://e0as.me/dashboard/today",
			want: Outcome{Kind: KindSuccess, Action: ActionLogin},
		},
		{
			name: "non-http scheme is continue",
			url:  "myapp://auth/callback",
			want: Outcome{Kind: KindContinue},
		},
		{
			name: "unrelated page is continue",
			url:  "https://e0as.me/about",
			want: Outcome{Kind: KindContinue},
		},
		{
			name: "about:blank is continue",
			url:  "about:blank",
			want: Outcome{Kind: KindContinue},
		},
		{
			name: "unparseable URL is continue",
			url:  "http://exa mple.com/%zz",
			want: Outcome{Kind: KindContinue},
		},
		{
			name: "empty URL is continue",
			url:  "",
			want: Outcome{Kind: KindContinue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.url))
		})
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	c := newTestClassifier()
	urls := []string{
		providerOrigin + "/login",
		"https://e0as.me/auth/callback?code=xyz",
		"https://e0as.me/somewhere?error=denied",
		"https://e0as.me/about",
	}

	for _, u := range urls {
		first := c.Classify(u)
		assert.Equal(t, first, c.Classify(u), "classification of %s must be stable", u)
	}
}

func TestClassifyHostCaseInsensitive(t *testing.T) {
	c := newTestClassifier()

	assert.Equal(t, KindSuccess, c.Classify("https://E0AS.ME/dashboard").Kind)
	assert.Equal(t, KindContinue, c.Classify("https://SPORTSMED.auth.us-east-2.AMAZONCOGNITO.com/login").Kind)
}

func TestClassifyWithoutProviderOrigin(t *testing.T) {
	c := NewClassifier(backendHost, "", successPaths)

	// without a provider host the error markers apply everywhere
	assert.Equal(t, KindError, c.Classify("https://some-idp.example.com/login?error=denied").Kind)
	assert.Equal(t, KindSuccess, c.Classify("https://e0as.me/dashboard").Kind)
}
