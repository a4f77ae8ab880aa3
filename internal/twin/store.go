package twin

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"storyspoiler-e2e/internal/storyspoiler"
)

type storedStory struct {
	record    storyspoiler.StoryRecord
	createdAt time.Time
}

// MemoryStore holds all twin state in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	stories map[string]storedStory
	tokens  map[string]string
	now     func() time.Time
}

// NewStore creates an empty MemoryStore.
func NewStore() *MemoryStore {
	return &MemoryStore{
		stories: make(map[string]storedStory),
		tokens:  make(map[string]string),
		now:     time.Now,
	}
}

// IssueToken records a new bearer token for username.
func (s *MemoryStore) IssueToken(username string) string {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = username

	return token
}

// ValidToken reports whether token was issued by this store.
func (s *MemoryStore) ValidToken(token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[token]
	return ok
}

// Create stores a new story and returns it with its generated id.
func (s *MemoryStore) Create(draft storyspoiler.StoryDraft) storyspoiler.StoryRecord {
	rec := storyspoiler.StoryRecord{
		StoryID:     uuid.NewString(),
		Title:       draft.Title,
		Description: draft.Description,
		URL:         draft.URL,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stories[rec.StoryID] = storedStory{record: rec, createdAt: s.now()}

	return rec
}

// Update replaces the fields of an existing story.
func (s *MemoryStore) Update(id string, draft storyspoiler.StoryDraft) (storyspoiler.StoryRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stories[id]
	if !ok {
		return storyspoiler.StoryRecord{}, false
	}

	st.record.Title = draft.Title
	st.record.Description = draft.Description
	st.record.URL = draft.URL
	s.stories[id] = st

	return st.record, true
}

// Delete removes a story. It reports false when the id is unknown.
func (s *MemoryStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.stories[id]; !ok {
		return false
	}
	delete(s.stories, id)

	return true
}

// List returns all stories, oldest first.
func (s *MemoryStore) List() []storyspoiler.StoryRecord {
	s.mu.RLock()
	all := make([]storedStory, 0, len(s.stories))
	for _, st := range s.stories {
		all = append(all, st)
	}
	s.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].createdAt.Equal(all[j].createdAt) {
			return all[i].record.StoryID < all[j].record.StoryID
		}
		return all[i].createdAt.Before(all[j].createdAt)
	})

	out := make([]storyspoiler.StoryRecord, len(all))
	for i, st := range all {
		out[i] = st.record
	}

	return out
}

// Reset clears all stories and tokens.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stories = make(map[string]storedStory)
	s.tokens = make(map[string]string)
}
