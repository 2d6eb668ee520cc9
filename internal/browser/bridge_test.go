package browser

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e0as/mobile-bridge/internal/profile"
	"github.com/e0as/mobile-bridge/internal/redirect"
)

const loginURL = "http://e0as.me/auth/login"

// stubAuth records HandleAuthSuccess invocations
type stubAuth struct {
	calls   int
	actions []redirect.Action
	user    *profile.User
	err     error
}

func (s *stubAuth) HandleAuthSuccess(_ context.Context, action redirect.Action) (*profile.User, error) {
	s.calls++
	s.actions = append(s.actions, action)
	return s.user, s.err
}

func newTestBridge(auth *stubAuth) *Bridge {
	classifier := redirect.NewClassifier(
		"e0as.me",
		"https://sportsmed.auth.us-east-2.amazoncognito.com",
		[]string{"/auth/callback", "/auth/success", "/dashboard", "/profile", "/complete-profile"},
	)
	return NewBridge(classifier, auth)
}

func TestRunCompletesOnSuccessRedirect(t *testing.T) {
	script := strings.Join([]string{
		"https://sportsmed.auth.us-east-2.amazoncognito.com/login?client_id=abc",
		"https://sportsmed.auth.us-east-2.amazoncognito.com/oauth2/authorize?response_type=code",
		"https://e0as.me/auth/callback?code=xyz",
	}, "\n")

	auth := &stubAuth{user: &profile.User{Email: "ana@example.com", Role: profile.RoleAthlete}}
	surface := NewScriptSurface(strings.NewReader(script))

	user, err := newTestBridge(auth).Run(context.Background(), surface, loginURL)
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, 1, auth.calls)
	assert.Equal(t, []redirect.Action{redirect.ActionLogin}, auth.actions)
	assert.Equal(t, []string{loginURL}, surface.Opened())
}

func TestRunPropagatesRegisterAction(t *testing.T) {
	script := "https://e0as.me/complete-profile?flow=registration\n"

	auth := &stubAuth{user: &profile.User{Role: profile.RoleAthlete}}
	surface := NewScriptSurface(strings.NewReader(script))

	_, err := newTestBridge(auth).Run(context.Background(), surface, loginURL)
	require.NoError(t, err)
	assert.Equal(t, []redirect.Action{redirect.ActionRegister}, auth.actions)
}

func TestRunFailsOnErrorRedirect(t *testing.T) {
	script := strings.Join([]string{
		"https://sportsmed.auth.us-east-2.amazoncognito.com/login",
		"https://e0as.me/auth/callback?error=access_denied",
	}, "\n")

	auth := &stubAuth{}
	surface := NewScriptSurface(strings.NewReader(script))

	_, err := newTestBridge(auth).Run(context.Background(), surface, loginURL)
	require.Error(t, err)
	assert.Equal(t, 0, auth.calls)
}

func TestRunDismissed(t *testing.T) {
	script := "https://sportsmed.auth.us-east-2.amazoncognito.com/login\n"

	auth := &stubAuth{}
	surface := NewScriptSurface(strings.NewReader(script))

	_, err := newTestBridge(auth).Run(context.Background(), surface, loginURL)
	assert.ErrorIs(t, err, ErrDismissed)
	assert.Equal(t, 0, auth.calls)
}

func TestRunIgnoresIntermediateLoadFailure(t *testing.T) {
	script := strings.Join([]string{
		"FAIL https://sportsmed.auth.us-east-2.amazoncognito.com/login net::ERR_TIMED_OUT",
		"https://sportsmed.auth.us-east-2.amazoncognito.com/login",
		"https://e0as.me/dashboard",
	}, "\n")

	auth := &stubAuth{user: &profile.User{Role: profile.RoleAthlete}}
	surface := NewScriptSurface(strings.NewReader(script))

	_, err := newTestBridge(auth).Run(context.Background(), surface, loginURL)
	require.NoError(t, err)
	assert.Equal(t, 1, auth.calls)
}

func TestRunRecoversFromCallbackLoadFailure(t *testing.T) {
	// the redirect target never renders but the session cookies were set
	// during the navigation, so the handoff still completes
	script := "FAIL http://localhost:3000/auth/callback?code=xyz net::ERR_CONNECTION_REFUSED\n"

	auth := &stubAuth{user: &profile.User{Role: profile.RoleAthlete}}
	surface := NewScriptSurface(strings.NewReader(script))

	user, err := newTestBridge(auth).Run(context.Background(), surface, loginURL)
	require.NoError(t, err)

	assert.NotNil(t, user)
	assert.Equal(t, []redirect.Action{redirect.ActionLogin}, auth.actions)
}

func TestRunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	auth := &stubAuth{}
	// an empty reader closes the channel, but the cancelled context is
	// already observable on entry
	surface := NewScriptSurface(strings.NewReader(""))

	_, err := newTestBridge(auth).Run(ctx, surface, loginURL)
	require.Error(t, err)
	assert.Equal(t, 0, auth.calls)
}

func TestParseScriptLine(t *testing.T) {
	assert.Equal(t, Event{URL: "https://e0as.me/x"}, parseScriptLine("https://e0as.me/x"))
	assert.Equal(t,
		Event{URL: "https://e0as.me/x", LoadFailure: "net::ERR_CONNECTION_REFUSED"},
		parseScriptLine("FAIL https://e0as.me/x net::ERR_CONNECTION_REFUSED"))
	assert.Equal(t,
		Event{URL: "https://e0as.me/x", LoadFailure: "load failed"},
		parseScriptLine("FAIL https://e0as.me/x"))
}
