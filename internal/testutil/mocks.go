// Package testutil provides shared mocks for unit tests
package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/e0as/mobile-bridge/internal/cookies"
	"github.com/e0as/mobile-bridge/internal/profile"
)

// MockCookieStore is a mock implementation of cookies.ClearableStore
type MockCookieStore struct {
	mock.Mock
}

func (m *MockCookieStore) Cookies(ctx context.Context, origin string) (map[string]string, error) {
	args := m.Called(ctx, origin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockCookieStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockBackend is a mock implementation of session.Backend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) MyProfile(ctx context.Context) (*profile.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.User), args.Error(1)
}

func (m *MockBackend) CompleteProfile(ctx context.Context, payload *profile.User) (*profile.User, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.User), args.Error(1)
}

func (m *MockBackend) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// StaticExtractor returns a fixed cookie, or absence when zero
type StaticExtractor struct {
	Cookie cookies.Cookie
}

func (s *StaticExtractor) Extract(_ context.Context) (cookies.Cookie, bool) {
	if s.Cookie.IsZero() {
		return cookies.Cookie{}, false
	}
	return s.Cookie, true
}
