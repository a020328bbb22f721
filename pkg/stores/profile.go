package stores

import (
	"context"
	"fmt"

	"github.com/icondb/icondb/pkg/clients/icondb"
	"github.com/icondb/icondb/pkg/store"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ProfileAPI is the part of the API the profile store uses.
type ProfileAPI interface {
	GetProfile(ctx context.Context, userID string) ([]icondb.Profile, error)
	GetUserContent(ctx context.Context, userID string) ([]icondb.Content, error)
	GetUserLikedContent(ctx context.Context, userID string) ([]icondb.Content, error)
	GetFollowing(ctx context.Context, userID string) ([]icondb.Profile, error)
	GetFollowers(ctx context.Context, userID string) ([]icondb.Profile, error)
	CheckFollowed(ctx context.Context, userID string) (bool, error)
	Follow(ctx context.Context, userID string) (*icondb.SuccessResponse, error)
	Unfollow(ctx context.Context, userID string) (*icondb.SuccessResponse, error)
	UpdateNickname(ctx context.Context, nickname string) error
}

// ProfileData is everything shown on a profile page.
type ProfileData struct {
	Profile   icondb.Profile
	Content   []icondb.Content
	Liked     []icondb.Content
	Following []icondb.Profile
	Followers []icondb.Profile
	Followed  bool
}

// ProfileState is a snapshot of the profile store.
type ProfileState struct {
	ProfileData
	UserID  string
	Loading bool
	Editing bool
	Error   string
}

// ProfileStore loads and mutates the profile being viewed.
type ProfileStore struct {
	api   ProfileAPI
	state *store.Store[ProfileState]
}

// NewProfileStore returns an empty store.
func NewProfileStore(api ProfileAPI) *ProfileStore {
	return &ProfileStore{
		api:   api,
		state: store.New(emptyProfile()),
	}
}

func emptyProfile() ProfileState {
	return ProfileState{ProfileData: ProfileData{Profile: AnonymousProfile()}}
}

// Snapshot returns the current state.
func (s *ProfileStore) Snapshot() ProfileState {
	return s.state.Snapshot()
}

// Subscribe calls fn after every change.
func (s *ProfileStore) Subscribe(fn func(ProfileState)) func() {
	return s.state.Subscribe(fn)
}

// Fetch loads a profile with all its listings in parallel. If any call
// fails the store keeps its previous data, marks the state failed and
// returns the first error.
func (s *ProfileStore) Fetch(ctx context.Context, userID string) (*ProfileData, error) {
	s.state.Update(func(st ProfileState) ProfileState {
		st.Loading = true
		st.Error = ""
		st.UserID = userID
		return st
	})

	var data ProfileData
	var profiles []icondb.Profile

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profiles, err = s.api.GetProfile(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		data.Content, err = s.api.GetUserContent(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		data.Liked, err = s.api.GetUserLikedContent(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		data.Following, err = s.api.GetFollowing(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		data.Followers, err = s.api.GetFollowers(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		data.Followed, err = s.api.CheckFollowed(gctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Str("user", userID).Msg("Failed to fetch profile")
		s.state.Update(func(st ProfileState) ProfileState {
			st.Loading = false
			st.Error = "프로필 조회 중 오류가 발생했습니다."
			return st
		})
		return nil, fmt.Errorf("failed to fetch profile of %s: %w", userID, err)
	}

	if len(profiles) > 0 {
		data.Profile = profiles[0]
	} else {
		data.Profile = AnonymousProfile()
		data.Profile.ID = userID
	}

	s.state.Update(func(st ProfileState) ProfileState {
		st.ProfileData = data
		st.Loading = false
		return st
	})

	return &data, nil
}

// Follow follows userID and reports success.
func (s *ProfileStore) Follow(ctx context.Context, userID string) bool {
	if _, err := s.api.Follow(ctx, userID); err != nil {
		log.Error().Err(err).Str("user", userID).Msg("Failed to follow")
		s.setError("팔로우 중 오류가 발생했습니다.")
		return false
	}

	s.state.Update(func(st ProfileState) ProfileState {
		st.Followed = true
		return st
	})
	return true
}

// Unfollow unfollows userID and reports success.
func (s *ProfileStore) Unfollow(ctx context.Context, userID string) bool {
	if _, err := s.api.Unfollow(ctx, userID); err != nil {
		log.Error().Err(err).Str("user", userID).Msg("Failed to unfollow")
		s.setError("언팔로우 중 오류가 발생했습니다.")
		return false
	}

	s.state.Update(func(st ProfileState) ProfileState {
		st.Followed = false
		return st
	})
	return true
}

// UpdateNickname renames the signed in user and leaves edit mode. On
// failure the store stays in edit mode.
func (s *ProfileStore) UpdateNickname(ctx context.Context, nickname string) error {
	s.state.Update(func(st ProfileState) ProfileState {
		st.Loading = true
		st.Error = ""
		return st
	})

	if err := s.api.UpdateNickname(ctx, nickname); err != nil {
		log.Error().Err(err).Msg("Failed to update profile")
		s.state.Update(func(st ProfileState) ProfileState {
			st.Loading = false
			st.Error = "프로필 업데이트 중 오류가 발생했습니다."
			return st
		})
		return err
	}

	s.state.Update(func(st ProfileState) ProfileState {
		st.Profile.Nickname = nickname
		st.Loading = false
		st.Editing = false
		return st
	})
	return nil
}

// SetEditing toggles edit mode.
func (s *ProfileStore) SetEditing(editing bool) {
	s.state.Update(func(st ProfileState) ProfileState {
		st.Editing = editing
		return st
	})
}

// SetContent replaces the uploads listing.
func (s *ProfileStore) SetContent(content []icondb.Content) {
	s.state.Update(func(st ProfileState) ProfileState {
		st.Content = content
		return st
	})
}

// SetLiked replaces the liked listing.
func (s *ProfileStore) SetLiked(liked []icondb.Content) {
	s.state.Update(func(st ProfileState) ProfileState {
		st.Liked = liked
		return st
	})
}

// SetFollowing replaces the following listing.
func (s *ProfileStore) SetFollowing(following []icondb.Profile) {
	s.state.Update(func(st ProfileState) ProfileState {
		st.Following = following
		return st
	})
}

// SetFollowers replaces the followers listing.
func (s *ProfileStore) SetFollowers(followers []icondb.Profile) {
	s.state.Update(func(st ProfileState) ProfileState {
		st.Followers = followers
		return st
	})
}

// Clear drops the loaded profile.
func (s *ProfileStore) Clear() {
	s.state.Set(emptyProfile())
}

// ClearError forgets the last error.
func (s *ProfileStore) ClearError() {
	s.setError("")
}

func (s *ProfileStore) setError(message string) {
	s.state.Update(func(st ProfileState) ProfileState {
		st.Error = message
		return st
	})
}
