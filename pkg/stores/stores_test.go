package stores

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/icondb/icondb/pkg/clients/icondb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ AuthAPI    = (*icondb.Client)(nil)
	_ ProfileAPI = (*icondb.Client)(nil)
	_ SearchAPI  = (*icondb.Client)(nil)
)

type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	user     string
	profiles map[string][]icondb.Profile
	contents []icondb.Content
	fail     map[string]error
}

func (f *fakeAPI) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.fail[name]
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) GetAuth(ctx context.Context) (string, error) {
	if err := f.record("get_auth"); err != nil {
		return "", err
	}
	return f.user, nil
}

func (f *fakeAPI) GetProfile(ctx context.Context, userID string) ([]icondb.Profile, error) {
	if err := f.record("get_profile"); err != nil {
		return nil, err
	}
	return f.profiles[userID], nil
}

func (f *fakeAPI) SignOut(ctx context.Context) error {
	return f.record("sign_out")
}

func (f *fakeAPI) GetUserContent(ctx context.Context, userID string) ([]icondb.Content, error) {
	return f.contents, f.record("get_usercontent")
}

func (f *fakeAPI) GetUserLikedContent(ctx context.Context, userID string) ([]icondb.Content, error) {
	return f.contents[:1], f.record("get_userlikedcontent")
}

func (f *fakeAPI) GetFollowing(ctx context.Context, userID string) ([]icondb.Profile, error) {
	return []icondb.Profile{{ID: "friend"}}, f.record("get_following")
}

func (f *fakeAPI) GetFollowers(ctx context.Context, userID string) ([]icondb.Profile, error) {
	return nil, f.record("get_followers")
}

func (f *fakeAPI) CheckFollowed(ctx context.Context, userID string) (bool, error) {
	return true, f.record("check_followed")
}

func (f *fakeAPI) Follow(ctx context.Context, userID string) (*icondb.SuccessResponse, error) {
	return &icondb.SuccessResponse{Success: true}, f.record("follow")
}

func (f *fakeAPI) Unfollow(ctx context.Context, userID string) (*icondb.SuccessResponse, error) {
	return &icondb.SuccessResponse{Success: true}, f.record("unfollow")
}

func (f *fakeAPI) UpdateNickname(ctx context.Context, nickname string) error {
	return f.record("update_profile_nickname")
}

func (f *fakeAPI) Search(ctx context.Context, keyword string) ([]icondb.Content, error) {
	return f.contents, f.record("search")
}

func (f *fakeAPI) SearchTag(ctx context.Context, tag string) ([]icondb.Content, error) {
	return f.contents, f.record("tag_search")
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		user: "testuser",
		profiles: map[string][]icondb.Profile{
			"testuser": {{ID: "testuser", Nickname: "테스터", ProfileName: "me.png"}},
		},
		contents: []icondb.Content{
			{ContentID: 2, UserID: "testuser", Filename: "dog.png", Hashtag: "dog"},
			{ContentID: 1, UserID: "testuser", Filename: "cat.png", Hashtag: "cat"},
		},
		fail: map[string]error{},
	}
}

func TestAuthStore_Initialize(t *testing.T) {
	api := newFakeAPI()
	auth := NewAuthStore(api)

	var loading []bool
	auth.Subscribe(func(st AuthState) { loading = append(loading, st.Loading) })

	state := auth.Initialize(context.Background())
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, "testuser", state.User)
	assert.Equal(t, "테스터", state.Profile.Nickname)
	assert.False(t, state.Loading)
	assert.Equal(t, true, loading[0])
	assert.Equal(t, false, loading[len(loading)-1])
}

func TestAuthStore_InitializeWithoutSession(t *testing.T) {
	api := newFakeAPI()
	api.user = ""

	state := NewAuthStore(api).Initialize(context.Background())
	assert.False(t, state.IsAuthenticated)
	assert.Equal(t, AnonymousProfile(), state.Profile)
	assert.Equal(t, []string{"get_auth"}, api.Calls())
}

func TestAuthStore_InitializeFailures(t *testing.T) {
	api := newFakeAPI()
	api.fail["get_auth"] = errors.New("connection refused")
	state := NewAuthStore(api).Initialize(context.Background())
	assert.False(t, state.IsAuthenticated)
	assert.False(t, state.Loading)

	api = newFakeAPI()
	api.fail["get_profile"] = errors.New("boom")
	state = NewAuthStore(api).Initialize(context.Background())
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, AnonymousProfile(), state.Profile)
}

func TestAuthStore_LogoutResetsOnFailure(t *testing.T) {
	api := newFakeAPI()
	api.fail["sign_out"] = errors.New("network down")

	auth := NewAuthStore(api)
	auth.SetAuthenticatedUser("testuser")
	auth.UpdateProfile(icondb.Profile{ID: "testuser", Nickname: "테스터"})

	err := auth.Logout(context.Background())
	assert.Error(t, err)

	state := auth.Snapshot()
	assert.False(t, state.IsAuthenticated)
	assert.Empty(t, state.User)
	assert.Equal(t, AnonymousProfile(), state.Profile)
}

func TestProfileStore_Fetch(t *testing.T) {
	api := newFakeAPI()
	profiles := NewProfileStore(api)

	data, err := profiles.Fetch(context.Background(), "testuser")
	require.NoError(t, err)
	assert.Equal(t, "테스터", data.Profile.Nickname)
	assert.Len(t, data.Content, 2)
	assert.Len(t, data.Liked, 1)
	assert.Equal(t, []icondb.Profile{{ID: "friend"}}, data.Following)
	assert.True(t, data.Followed)
	assert.Len(t, api.Calls(), 6)

	state := profiles.Snapshot()
	assert.Equal(t, "testuser", state.UserID)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
}

func TestProfileStore_FetchUnknownUserGetsAnonymousProfile(t *testing.T) {
	data, err := NewProfileStore(newFakeAPI()).Fetch(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, "ghost", data.Profile.ID)
	assert.Equal(t, "Anonymous", data.Profile.Nickname)
}

func TestProfileStore_FetchFailure(t *testing.T) {
	api := newFakeAPI()
	failure := fmt.Errorf("http 500")
	api.fail["get_followers"] = failure
	profiles := NewProfileStore(api)

	data, err := profiles.Fetch(context.Background(), "testuser")
	assert.Nil(t, data)
	assert.ErrorIs(t, err, failure)

	state := profiles.Snapshot()
	assert.False(t, state.Loading)
	assert.Equal(t, "프로필 조회 중 오류가 발생했습니다.", state.Error)
	assert.Equal(t, AnonymousProfile(), state.Profile)

	profiles.ClearError()
	assert.Empty(t, profiles.Snapshot().Error)
}

func TestProfileStore_FollowAndNickname(t *testing.T) {
	api := newFakeAPI()
	profiles := NewProfileStore(api)

	assert.True(t, profiles.Follow(context.Background(), "friend"))
	assert.True(t, profiles.Snapshot().Followed)
	assert.True(t, profiles.Unfollow(context.Background(), "friend"))
	assert.False(t, profiles.Snapshot().Followed)

	api.fail["follow"] = errors.New("boom")
	assert.False(t, profiles.Follow(context.Background(), "friend"))
	assert.Equal(t, "팔로우 중 오류가 발생했습니다.", profiles.Snapshot().Error)

	profiles.SetEditing(true)
	require.NoError(t, profiles.UpdateNickname(context.Background(), "새이름"))
	state := profiles.Snapshot()
	assert.Equal(t, "새이름", state.Profile.Nickname)
	assert.False(t, state.Editing)
	assert.Empty(t, state.Error)

	missing := &icondb.Error{StatusCode: 404, Message: "User not found"}
	api.fail["update_profile_nickname"] = missing
	profiles.SetEditing(true)
	assert.ErrorIs(t, profiles.UpdateNickname(context.Background(), "다른이름"), missing)
	state = profiles.Snapshot()
	assert.Equal(t, "새이름", state.Profile.Nickname)
	assert.True(t, state.Editing)
	assert.Equal(t, "프로필 업데이트 중 오류가 발생했습니다.", state.Error)

	profiles.SetContent([]icondb.Content{{ContentID: 9}})
	profiles.Clear()
	assert.Empty(t, profiles.Snapshot().Content)
}

func TestSearchStore_History(t *testing.T) {
	api := newFakeAPI()
	search := NewSearchStore(api)

	for i := 0; i < 12; i++ {
		search.ByKeyword(context.Background(), fmt.Sprintf("q%d", i))
	}
	search.ByKeyword(context.Background(), "q5")
	search.ByTag(context.Background(), "cat")

	history := search.Snapshot().History
	require.Len(t, history, MaxSearchHistory)
	assert.Equal(t, "#cat", history[0])
	assert.Equal(t, "q5", history[1])
	assert.Equal(t, "q11", history[2])
	assert.Equal(t, 1, countOf(history, "q5"))

	search.RemoveHistory("q5")
	assert.NotContains(t, search.Snapshot().History, "q5")

	search.ClearHistory()
	assert.Empty(t, search.Snapshot().History)
}

func TestSearchStore_BlankQueryMakesNoRequest(t *testing.T) {
	api := newFakeAPI()
	search := NewSearchStore(api)

	search.ByKeyword(context.Background(), "cat")
	require.Len(t, search.Snapshot().Results, 2)

	results, err := search.ByKeyword(context.Background(), "   ")
	assert.NoError(t, err)
	assert.Nil(t, results)
	results, err = search.ByTag(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, results)
	assert.Empty(t, search.Snapshot().Results)
	assert.Equal(t, []string{"search"}, api.Calls())
}

func TestSearchStore_Failure(t *testing.T) {
	api := newFakeAPI()
	boom := errors.New("boom")
	api.fail["tag_search"] = boom
	search := NewSearchStore(api)

	results, err := search.ByTag(context.Background(), "cat")
	assert.Nil(t, results)
	assert.ErrorIs(t, err, boom)
	state := search.Snapshot()
	assert.Equal(t, "태그 검색 중 오류가 발생했습니다.", state.Error)
	assert.Empty(t, state.History)
	assert.Equal(t, "cat", state.LastTag)

	search.ClearResults()
	state = search.Snapshot()
	assert.Empty(t, state.Error)
	assert.Empty(t, state.LastTag)
}

func countOf(values []string, v string) int {
	n := 0
	for _, s := range values {
		if s == v {
			n++
		}
	}
	return n
}
