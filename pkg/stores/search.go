package stores

import (
	"context"
	"slices"
	"strings"

	"github.com/icondb/icondb/pkg/clients/icondb"
	"github.com/icondb/icondb/pkg/store"
	"github.com/rs/zerolog/log"
)

// MaxSearchHistory is how many past queries are remembered.
const MaxSearchHistory = 10

// SearchAPI is the part of the API the search store uses.
type SearchAPI interface {
	Search(ctx context.Context, keyword string) ([]icondb.Content, error)
	SearchTag(ctx context.Context, tag string) ([]icondb.Content, error)
}

// SearchState is a snapshot of the search store. History is most recent
// first; tag searches are recorded with a leading '#'.
type SearchState struct {
	Results    []icondb.Content
	TagResults []icondb.Content
	History    []string
	LastQuery  string
	LastTag    string
	Loading    bool
	Error      string
}

// SearchStore runs keyword and tag searches and keeps their history.
type SearchStore struct {
	api   SearchAPI
	state *store.Store[SearchState]
}

// NewSearchStore returns an empty store.
func NewSearchStore(api SearchAPI) *SearchStore {
	return &SearchStore{
		api:   api,
		state: store.New(SearchState{}),
	}
}

// Snapshot returns the current state.
func (s *SearchStore) Snapshot() SearchState {
	return s.state.Snapshot()
}

// Subscribe calls fn after every change.
func (s *SearchStore) Subscribe(fn func(SearchState)) func() {
	return s.state.Subscribe(fn)
}

// ByKeyword searches posts by keyword. A blank keyword clears the results
// without a request.
func (s *SearchStore) ByKeyword(ctx context.Context, keyword string) ([]icondb.Content, error) {
	if strings.TrimSpace(keyword) == "" {
		s.state.Update(func(st SearchState) SearchState {
			st.Results = nil
			st.Error = ""
			return st
		})
		return nil, nil
	}

	s.state.Update(func(st SearchState) SearchState {
		st.Loading = true
		st.Error = ""
		st.LastQuery = keyword
		return st
	})

	results, err := s.api.Search(ctx, keyword)
	if err != nil {
		log.Error().Err(err).Str("keyword", keyword).Msg("Keyword search failed")
		s.state.Update(func(st SearchState) SearchState {
			st.Results = nil
			st.Loading = false
			st.Error = "검색 중 오류가 발생했습니다."
			return st
		})
		return nil, err
	}

	s.state.Update(func(st SearchState) SearchState {
		st.Results = results
		st.Loading = false
		st.History = pushHistory(st.History, keyword)
		return st
	})
	return results, nil
}

// ByTag searches posts by tag. A blank tag clears the tag results without
// a request.
func (s *SearchStore) ByTag(ctx context.Context, tag string) ([]icondb.Content, error) {
	if strings.TrimSpace(tag) == "" {
		s.state.Update(func(st SearchState) SearchState {
			st.TagResults = nil
			st.Error = ""
			return st
		})
		return nil, nil
	}

	s.state.Update(func(st SearchState) SearchState {
		st.Loading = true
		st.Error = ""
		st.LastTag = tag
		return st
	})

	results, err := s.api.SearchTag(ctx, tag)
	if err != nil {
		log.Error().Err(err).Str("tag", tag).Msg("Tag search failed")
		s.state.Update(func(st SearchState) SearchState {
			st.TagResults = nil
			st.Loading = false
			st.Error = "태그 검색 중 오류가 발생했습니다."
			return st
		})
		return nil, err
	}

	s.state.Update(func(st SearchState) SearchState {
		st.TagResults = results
		st.Loading = false
		st.History = pushHistory(st.History, "#"+tag)
		return st
	})
	return results, nil
}

// AddHistory records query as the most recent search.
func (s *SearchStore) AddHistory(query string) {
	s.state.Update(func(st SearchState) SearchState {
		st.History = pushHistory(st.History, query)
		return st
	})
}

// RemoveHistory forgets one past query.
func (s *SearchStore) RemoveHistory(query string) {
	s.state.Update(func(st SearchState) SearchState {
		st.History = slices.DeleteFunc(slices.Clone(st.History), func(q string) bool { return q == query })
		return st
	})
}

// ClearHistory forgets every past query.
func (s *SearchStore) ClearHistory() {
	s.state.Update(func(st SearchState) SearchState {
		st.History = nil
		return st
	})
}

// ClearResults drops results, the last queries and the error.
func (s *SearchStore) ClearResults() {
	s.state.Update(func(st SearchState) SearchState {
		st.Results = nil
		st.TagResults = nil
		st.Error = ""
		st.LastQuery = ""
		st.LastTag = ""
		return st
	})
}

// ClearError forgets the last error.
func (s *SearchStore) ClearError() {
	s.state.Update(func(st SearchState) SearchState {
		st.Error = ""
		return st
	})
}

func pushHistory(history []string, query string) []string {
	next := make([]string, 0, min(len(history)+1, MaxSearchHistory))
	next = append(next, query)
	for _, q := range history {
		if len(next) == MaxSearchHistory {
			break
		}
		if q != query {
			next = append(next, q)
		}
	}
	return next
}
