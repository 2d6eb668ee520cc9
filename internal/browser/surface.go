// Package browser drives the authentication flow over an embedded browser
// surface. The surface itself is pluggable: the bridge only consumes
// navigation events and decides when the flow has succeeded or failed.
package browser

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// Event is one navigation observed by the browser surface. LoadFailure is
// set when the navigation did not complete; its value is the
// platform-reported failure description.
type Event struct {
	URL         string
	LoadFailure string
}

// Surface is an embedded browser viewed from the bridge's side: it can be
// pointed at a URL and it reports navigations. The events channel closes
// when the surface is dismissed.
type Surface interface {
	Open(ctx context.Context, url string) error
	Events() <-chan Event
}

// ScriptSurface replays navigation events from a reader, one URL per line.
// A line of the form "FAIL <url> <reason>" becomes a load failure. It
// backs the CLI flow and tests.
type ScriptSurface struct {
	events chan Event
	opened []string
}

// NewScriptSurface starts reading events from r immediately
func NewScriptSurface(r io.Reader) *ScriptSurface {
	s := &ScriptSurface{events: make(chan Event)}
	go func() {
		defer close(s.events)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			s.events <- parseScriptLine(line)
		}
	}()
	return s
}

// Open records the URL the bridge asked for; the scripted events are the
// user's side of the flow.
func (s *ScriptSurface) Open(_ context.Context, url string) error {
	s.opened = append(s.opened, url)
	return nil
}

// Events returns the scripted navigation stream
func (s *ScriptSurface) Events() <-chan Event {
	return s.events
}

// Opened returns the URLs the bridge opened, in order
func (s *ScriptSurface) Opened() []string {
	return s.opened
}

func parseScriptLine(line string) Event {
	if rest, ok := strings.CutPrefix(line, "FAIL "); ok {
		url, reason, _ := strings.Cut(rest, " ")
		if reason == "" {
			reason = "load failed"
		}
		return Event{URL: url, LoadFailure: reason}
	}
	return Event{URL: line}
}
