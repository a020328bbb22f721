// Package stores holds the client-side session, profile and search state.
// Each store wraps a store.Store so views can subscribe to changes.
package stores

import (
	"context"
	"time"

	"github.com/icondb/icondb/pkg/clients/icondb"
	"github.com/icondb/icondb/pkg/store"
	"github.com/rs/zerolog/log"
)

// AuthCheckTimeout bounds the session check made at startup.
const AuthCheckTimeout = 5 * time.Second

// AnonymousProfile is shown while nobody is signed in.
func AnonymousProfile() icondb.Profile {
	return icondb.Profile{ProfileName: "Anonymous.png", Nickname: "Anonymous"}
}

// AuthAPI is the part of the API the auth store uses.
type AuthAPI interface {
	GetAuth(ctx context.Context) (string, error)
	GetProfile(ctx context.Context, userID string) ([]icondb.Profile, error)
	SignOut(ctx context.Context) error
}

// AuthState is a snapshot of the session.
type AuthState struct {
	User            string
	Profile         icondb.Profile
	Loading         bool
	IsAuthenticated bool
}

// AuthStore tracks the signed in user.
type AuthStore struct {
	api   AuthAPI
	state *store.Store[AuthState]
}

// NewAuthStore returns a signed out store.
func NewAuthStore(api AuthAPI) *AuthStore {
	return &AuthStore{
		api:   api,
		state: store.New(signedOut()),
	}
}

func signedOut() AuthState {
	return AuthState{Profile: AnonymousProfile()}
}

// Snapshot returns the current state.
func (s *AuthStore) Snapshot() AuthState {
	return s.state.Snapshot()
}

// Subscribe calls fn after every change.
func (s *AuthStore) Subscribe(fn func(AuthState)) func() {
	return s.state.Subscribe(fn)
}

// Initialize restores the session from the server. Any failure leaves the
// store signed out; a failed profile lookup keeps the user signed in with
// the anonymous profile.
func (s *AuthStore) Initialize(ctx context.Context) AuthState {
	s.state.Update(func(st AuthState) AuthState {
		st.Loading = true
		return st
	})

	checkCtx, cancel := context.WithTimeout(ctx, AuthCheckTimeout)
	defer cancel()

	user, err := s.api.GetAuth(checkCtx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize auth")
		return s.state.Update(func(AuthState) AuthState { return signedOut() })
	}
	if user == "" {
		return s.state.Update(func(AuthState) AuthState { return signedOut() })
	}

	s.state.Update(func(st AuthState) AuthState {
		st.User = user
		st.IsAuthenticated = true
		return st
	})

	profiles, err := s.api.GetProfile(ctx, user)
	if err != nil {
		log.Error().Err(err).Str("user", user).Msg("Failed to load profile")
	}

	return s.state.Update(func(st AuthState) AuthState {
		if len(profiles) > 0 {
			st.Profile = profiles[0]
		}
		st.Loading = false
		return st
	})
}

// SetAuthenticatedUser marks user as signed in after a successful sign in.
func (s *AuthStore) SetAuthenticatedUser(user string) {
	s.state.Update(func(st AuthState) AuthState {
		st.User = user
		st.IsAuthenticated = true
		return st
	})
}

// UpdateProfile replaces the cached profile.
func (s *AuthStore) UpdateProfile(profile icondb.Profile) {
	s.state.Update(func(st AuthState) AuthState {
		st.Profile = profile
		return st
	})
}

// Logout ends the session. The store is reset even when the request fails;
// the error is returned for logging only.
func (s *AuthStore) Logout(ctx context.Context) error {
	defer s.Clear()

	if err := s.api.SignOut(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to sign out")
		return err
	}
	return nil
}

// Clear resets the store to signed out without calling the server.
func (s *AuthStore) Clear() {
	s.state.Set(signedOut())
}
