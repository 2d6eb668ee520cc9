package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/e0as/mobile-bridge/internal/log"
	"github.com/e0as/mobile-bridge/internal/profile"
	"github.com/e0as/mobile-bridge/internal/redirect"
)

// ErrDismissed is returned when the surface closed before the flow
// reached a success or error redirect.
var ErrDismissed = errors.New("authentication flow dismissed")

// Authenticator finalizes a successful browser flow. Implemented by the
// session manager.
type Authenticator interface {
	HandleAuthSuccess(ctx context.Context, action redirect.Action) (*profile.User, error)
}

// Bridge watches a browser surface and completes the session handoff when
// the flow reaches a terminal redirect.
type Bridge struct {
	classifier *redirect.Classifier
	auth       Authenticator
}

// NewBridge creates a bridge over the given classifier and authenticator
func NewBridge(classifier *redirect.Classifier, auth Authenticator) *Bridge {
	return &Bridge{classifier: classifier, auth: auth}
}

// Run opens startURL on the surface and consumes navigation events until
// the flow terminates. The first success redirect triggers exactly one
// session verification; later duplicate events are not re-handled. A
// closed event channel before any terminal redirect means the user
// dismissed the flow.
func (b *Bridge) Run(ctx context.Context, surface Surface, startURL string) (*profile.User, error) {
	if err := surface.Open(ctx, startURL); err != nil {
		return nil, fmt.Errorf("opening auth flow: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case ev, ok := <-surface.Events():
			if !ok {
				return nil, ErrDismissed
			}

			if ev.LoadFailure != "" {
				if !recoverableFailure(ev) {
					log.LogDebugWithFields("browser", "Ignoring load failure on intermediate page", map[string]any{
						"url":    ev.URL,
						"reason": ev.LoadFailure,
					})
					continue
				}
				// the redirect target failed to render but the navigation
				// itself happened, so the session cookies are already set
				log.LogInfoWithFields("browser", "Post-auth destination failed to load, completing handoff from cookies", map[string]any{
					"url":    ev.URL,
					"reason": ev.LoadFailure,
				})
				return b.auth.HandleAuthSuccess(ctx, redirect.ActionLogin)
			}

			outcome := b.classifier.Classify(ev.URL)
			switch outcome.Kind {
			case redirect.KindError:
				log.LogWarnWithFields("browser", "Auth flow ended in error redirect", map[string]any{
					"url": ev.URL,
				})
				return nil, fmt.Errorf("authentication failed at %s", ev.URL)
			case redirect.KindSuccess:
				return b.auth.HandleAuthSuccess(ctx, outcome.Action)
			default:
				// intermediate page, keep watching
			}
		}
	}
}

// recoverableFailure reports whether a load failure happened past the
// point where the session was already established: a success destination
// or a local callback target that the embedded surface cannot reach.
func recoverableFailure(ev Event) bool {
	pastAuth := strings.Contains(ev.URL, "/auth/callback") ||
		strings.Contains(ev.URL, "/dashboard") ||
		strings.Contains(ev.URL, "localhost")
	if !pastAuth {
		return false
	}
	reason := strings.ToLower(ev.LoadFailure)
	return strings.Contains(reason, "refused") || strings.Contains(reason, "err_connection")
}
