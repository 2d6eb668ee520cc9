// Package redirect classifies URLs observed during the embedded-browser
// authentication flow. Classification looks only at the URL, never at a
// response body: the provider's hosted pages, the backend's callback pages,
// and everything in between are distinguished purely by origin, path and
// query markers.
package redirect

import (
	"net/url"
	"strings"

	"github.com/e0as/mobile-bridge/internal/log"
)

// Kind is the classification of a navigation target
type Kind string

const (
	// KindContinue marks an intermediate page of the flow; no action needed
	KindContinue Kind = "continue"
	// KindSuccess marks a return to a backend post-auth destination
	KindSuccess Kind = "success"
	// KindError marks an explicit provider or backend error
	KindError Kind = "error"
)

// Action distinguishes which flow completed on a success outcome
type Action string

const (
	ActionLogin    Action = "login"
	ActionRegister Action = "register"
)

// Outcome is the result of classifying one navigation event
type Outcome struct {
	Kind   Kind
	Action Action // set only when Kind is KindSuccess
}

// normalFlowPaths are path prefixes of the provider's own hosted pages.
// They are checked before the error markers because the provider's
// intermediate pages can carry error-like query fragments that are not
// true errors.
var normalFlowPaths = []string{"/login", "/oauth2", "/signup"}

// errorMarkers are query-string fragments that signal an explicit failure
var errorMarkers = []string{"?error=", "&error=", "?error_code=", "&error_code=", "access_denied"}

// Classifier maps navigation URLs to outcomes. It is immutable after
// construction and Classify is a pure function of its input.
type Classifier struct {
	backendHost  string
	providerHost string
	successPaths []string
}

// NewClassifier builds a classifier for the given backend host, hosted-UI
// provider origin and success-path allow-list.
func NewClassifier(backendHost, providerOrigin string, successPaths []string) *Classifier {
	providerHost := ""
	if u, err := url.Parse(providerOrigin); err == nil {
		providerHost = strings.ToLower(u.Hostname())
	}
	return &Classifier{
		backendHost:  strings.ToLower(backendHost),
		providerHost: providerHost,
		successPaths: successPaths,
	}
}

// Classify maps a navigation URL to an outcome. It is total: any input,
// well-formed or not, produces exactly one outcome. Unmatched URLs are
// intermediate pages, never errors.
func (c *Classifier) Classify(raw string) Outcome {
	u, parseErr := url.Parse(raw)

	if parseErr == nil && c.isNormalFlow(u) {
		log.LogTraceWithFields("redirect", "Normal-flow page", map[string]any{"url": raw})
		return Outcome{Kind: KindContinue}
	}

	if hasErrorMarker(raw) {
		log.LogTraceWithFields("redirect", "Error marker in URL", map[string]any{"url": raw})
		return Outcome{Kind: KindError}
	}

	if parseErr == nil && c.isSuccess(u) {
		action := ActionLogin
		if strings.Contains(raw, "registration") || strings.Contains(raw, "signup") {
			action = ActionRegister
		}
		log.LogTraceWithFields("redirect", "Success redirect", map[string]any{"url": raw, "action": string(action)})
		return Outcome{Kind: KindSuccess, Action: action}
	}

	return Outcome{Kind: KindContinue}
}

// isNormalFlow reports whether the URL is one of the provider's own
// login/OAuth/signup pages.
func (c *Classifier) isNormalFlow(u *url.URL) bool {
	if c.providerHost == "" || !strings.EqualFold(u.Hostname(), c.providerHost) {
		return false
	}
	for _, p := range normalFlowPaths {
		if pathHasPrefix(u.Path, p) {
			return true
		}
	}
	return false
}

// isSuccess reports whether the URL is a backend post-auth destination.
// Both schemes are accepted: some deployments redirect to the insecure
// host form.
func (c *Classifier) isSuccess(u *url.URL) bool {
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if !strings.EqualFold(u.Hostname(), c.backendHost) {
		return false
	}
	for _, p := range c.successPaths {
		if pathHasPrefix(u.Path, p) {
			return true
		}
	}
	return false
}

func hasErrorMarker(raw string) bool {
	for _, m := range errorMarkers {
		if strings.Contains(raw, m) {
			return true
		}
	}
	return false
}

// pathHasPrefix matches on path-segment boundaries so /profile does not
// claim /profile-settings.
func pathHasPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
