// Package memstore is the in-memory data layer behind the development API
// server. It keeps users, sessions, posts, stored images, likes and follows
// for the lifetime of the process.
package memstore

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/icondb/icondb/pkg/clients/icondb"
	"github.com/icondb/icondb/pkg/utils/pagination"
	"github.com/rs/xid"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// SeedUser is created by NewSeeded.
var SeedUser = User{ID: "testuser", Password: "password123", Nickname: "테스터", ProfileName: "Anonymous.png"}

// User is a stored account.
type User struct {
	ID          string
	Password    string
	Nickname    string
	ProfileName string
}

func (u User) profile() icondb.Profile {
	return icondb.Profile{ID: u.ID, Nickname: u.Nickname, ProfileName: u.ProfileName}
}

// File is a stored image.
type File struct {
	ContentType string
	Data        []byte
}

type pair struct {
	a, b string
}

type like struct {
	user      string
	contentID int
}

// Store holds all server state behind one lock.
type Store struct {
	mu sync.RWMutex

	users    map[string]*User
	sessions map[string]string
	contents []icondb.Content
	nextID   int
	files    map[string]File
	likes    map[like]struct{}
	follows  map[pair]struct{}
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:    make(map[string]*User),
		sessions: make(map[string]string),
		nextID:   1,
		files:    make(map[string]File),
		likes:    make(map[like]struct{}),
		follows:  make(map[pair]struct{}),
	}
}

// NewSeeded returns a store holding SeedUser.
func NewSeeded() *Store {
	s := New()
	_ = s.CreateUser(SeedUser.ID, SeedUser.Password, SeedUser.Nickname)
	return s
}

// CreateUser adds an account. It returns ErrDuplicate when the id is taken.
func (s *Store) CreateUser(id, password, nickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; ok {
		return ErrDuplicate
	}
	s.users[id] = &User{ID: id, Password: password, Nickname: nickname, ProfileName: "Anonymous.png"}
	return nil
}

// Authenticate checks a password and opens a session. It returns the
// session token.
func (s *Store) Authenticate(id, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok || user.Password != password {
		return "", ErrInvalidCredentials
	}

	token := xid.New().String()
	s.sessions[token] = id
	return token, nil
}

// SessionUser returns the user of a session token.
func (s *Store) SessionUser(token string) (string, bool) {
	if token == "" {
		return "", false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.sessions[token]
	return user, ok
}

// CloseSession forgets a session token.
func (s *Store) CloseSession(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Profile returns the profile rows of a user; empty when unknown.
func (s *Store) Profile(id string) []icondb.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return []icondb.Profile{}
	}
	return []icondb.Profile{user.profile()}
}

// UpdateNickname renames a user.
func (s *Store) UpdateNickname(id, nickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Nickname = nickname
	return nil
}

// Contents returns a page of posts, newest first.
func (s *Store) Contents(offset, limit int) []icondb.Content {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.newestFirst(func(icondb.Content) bool { return true })
	return pagination.Slice(all, pagination.Params{Offset: offset, Limit: limit})
}

// Content returns the post with id, as a zero or one element slice.
func (s *Store) Content(id int) []icondb.Content {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.newestFirst(func(c icondb.Content) bool { return c.ContentID == id })
}

// UserContents returns the posts of a user, newest first.
func (s *Store) UserContents(user string) []icondb.Content {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.newestFirst(func(c icondb.Content) bool { return c.UserID == user })
}

// Search returns posts whose hashtag field contains term, ignoring case.
func (s *Store) Search(term string) []icondb.Content {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term = strings.ToLower(term)
	return s.newestFirst(func(c icondb.Content) bool {
		return strings.Contains(strings.ToLower(c.Hashtag), term)
	})
}

// InsertContent stores an image and creates a post for it.
func (s *Store) InsertContent(user, fileName, contentType string, data []byte, message string) icondb.Content {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := xid.New().String() + strings.ToLower(filepath.Ext(fileName))
	s.files[key] = File{ContentType: contentType, Data: slices.Clone(data)}

	content := icondb.Content{
		ContentID: s.nextID,
		UserID:    user,
		Filename:  key,
		Hashtag:   message,
	}
	s.nextID++
	s.contents = append(s.contents, content)
	return content
}

// DeleteContent removes a post with its image and likes.
func (s *Store) DeleteContent(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}

	delete(s.files, s.contents[i].Filename)
	s.contents = slices.Delete(s.contents, i, i+1)
	for l := range s.likes {
		if l.contentID == id {
			delete(s.likes, l)
		}
	}
	return nil
}

// UpdateContent replaces the message of a post.
func (s *Store) UpdateContent(id int, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.contents[i].Hashtag = message
	return nil
}

// File returns a stored image by key.
func (s *Store) File(key string) (File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[key]
	return f, ok
}

// AddTag appends tag to a post's comma separated tags.
func (s *Store) AddTag(id int, tag string) (icondb.TagResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return icondb.TagRejected, ErrNotFound
	}

	tags := splitTags(s.contents[i].Hashtag)
	if slices.Contains(tags, tag) {
		return icondb.TagDuplicate, nil
	}
	s.contents[i].Hashtag = strings.Join(append(tags, tag), ",")
	return icondb.TagAdded, nil
}

// Tags returns the tags of a post.
func (s *Store) Tags(id int) ([]icondb.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}

	tags := []icondb.Tag{}
	for _, t := range splitTags(s.contents[i].Hashtag) {
		tags = append(tags, icondb.Tag{Hashtag: strings.TrimSpace(t)})
	}
	return tags, nil
}

// IsLiked reports whether user likes a post.
func (s *Store) IsLiked(user string, contentID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.likes[like{user: user, contentID: contentID}]
	return ok
}

// ToggleLike flips the like of user on a post and returns the new state.
func (s *Store) ToggleLike(user string, contentID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(contentID) < 0 {
		return false, ErrNotFound
	}

	key := like{user: user, contentID: contentID}
	if _, ok := s.likes[key]; ok {
		delete(s.likes, key)
		return false, nil
	}
	s.likes[key] = struct{}{}
	return true, nil
}

// LikedContents returns the posts user likes, newest first.
func (s *Store) LikedContents(user string) []icondb.Content {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.newestFirst(func(c icondb.Content) bool {
		_, ok := s.likes[like{user: user, contentID: c.ContentID}]
		return ok
	})
}

// IsFollowing reports whether follower follows target.
func (s *Store) IsFollowing(follower, target string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.follows[pair{a: follower, b: target}]
	return ok
}

// Follow records that follower follows target. It returns ErrNotFound for
// an unknown target and ErrDuplicate when already following.
func (s *Store) Follow(follower, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[target]; !ok {
		return ErrNotFound
	}

	key := pair{a: follower, b: target}
	if _, ok := s.follows[key]; ok {
		return ErrDuplicate
	}
	s.follows[key] = struct{}{}
	return nil
}

// Unfollow removes a follow. Removing a missing follow is not an error.
func (s *Store) Unfollow(follower, target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.follows, pair{a: follower, b: target})
}

// Following returns the users user follows, ordered by id.
func (s *Store) Following(user string) []icondb.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.profilesWhere(func(id string) bool {
		_, ok := s.follows[pair{a: user, b: id}]
		return ok
	})
}

// Followers returns the users following user, ordered by id.
func (s *Store) Followers(user string) []icondb.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.profilesWhere(func(id string) bool {
		_, ok := s.follows[pair{a: id, b: user}]
		return ok
	})
}

func (s *Store) profilesWhere(match func(id string) bool) []icondb.Profile {
	profiles := []icondb.Profile{}
	for id, u := range s.users {
		if match(id) {
			profiles = append(profiles, u.profile())
		}
	}
	slices.SortFunc(profiles, func(a, b icondb.Profile) int { return strings.Compare(a.ID, b.ID) })
	return profiles
}

func (s *Store) newestFirst(match func(icondb.Content) bool) []icondb.Content {
	out := []icondb.Content{}
	for i := len(s.contents) - 1; i >= 0; i-- {
		if match(s.contents[i]) {
			out = append(out, s.contents[i])
		}
	}
	return out
}

func (s *Store) indexOf(id int) int {
	return slices.IndexFunc(s.contents, func(c icondb.Content) bool { return c.ContentID == id })
}

func splitTags(hashtag string) []string {
	if hashtag == "" {
		return nil
	}
	return strings.Split(hashtag, ",")
}
