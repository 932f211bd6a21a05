// Package history records past recommendations per visitor.
package history

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-spotify-mood-recommender/internal/db"
)

// Memory store bounds.
const (
	DefaultCapacity    = 50   // entries per visitor
	DefaultMaxVisitors = 1000 // visitors kept at once
)

// ErrNotFound is returned when an entry does not exist for the visitor.
var ErrNotFound = errors.New("history entry not found")

// Item is one recommended link.
type Item struct {
	Title string
	URL   string
}

// Entry is a recorded recommendation.
type Entry struct {
	ID         uuid.UUID
	VisitorID  string
	Query      string
	Emotion    string
	Confidence int
	Source     string
	Stage      string
	Genre      string
	Items      []Item
	CreatedAt  time.Time
}

// Store persists history entries.
type Store interface {
	Save(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, visitorID string, limit int) ([]Entry, error)
	Get(ctx context.Context, visitorID string, id uuid.UUID) (Entry, error)
	Clear(ctx context.Context, visitorID string) error
}

// ============================================================================
// In-Memory Store (for development/testing)
// ============================================================================

// MemoryStore keeps the most recent entries per visitor in memory. Once
// maxVisitors is reached, saving for a new visitor drops the visitor whose
// newest entry is oldest.
type MemoryStore struct {
	mu          sync.RWMutex
	capacity    int
	maxVisitors int
	entries     map[string][]Entry
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMaxVisitors bounds how many visitors are kept.
func WithMaxVisitors(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxVisitors = n
		}
	}
}

// NewMemoryStore creates an in-memory store keeping up to capacity entries
// per visitor. A non-positive capacity uses DefaultCapacity.
func NewMemoryStore(capacity int, opts ...MemoryOption) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &MemoryStore{
		capacity:    capacity,
		maxVisitors: DefaultMaxVisitors,
		entries:     make(map[string][]Entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save records an entry, evicting the visitor's oldest entry when full.
func (s *MemoryStore) Save(_ context.Context, entry Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.Items = append([]Item(nil), entry.Items...)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.VisitorID]; !ok && len(s.entries) >= s.maxVisitors {
		s.evictVisitor()
	}

	list := append(s.entries[entry.VisitorID], entry)
	if len(list) > s.capacity {
		list = list[len(list)-s.capacity:]
	}
	s.entries[entry.VisitorID] = list
	return nil
}

// evictVisitor drops the least recently active visitor. Callers hold mu.
func (s *MemoryStore) evictVisitor() {
	var (
		victim string
		oldest time.Time
		found  bool
	)
	for id, list := range s.entries {
		newest := list[len(list)-1].CreatedAt
		if !found || newest.Before(oldest) {
			victim, oldest, found = id, newest, true
		}
	}
	if found {
		delete(s.entries, victim)
	}
}

// Visitors returns the number of visitors currently held.
func (s *MemoryStore) Visitors() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Recent returns up to limit entries for the visitor, newest first.
func (s *MemoryStore) Recent(_ context.Context, visitorID string, limit int) ([]Entry, error) {
	s.mu.RLock()
	list := append([]Entry(nil), s.entries[visitorID]...)
	s.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Get returns one of the visitor's entries.
func (s *MemoryStore) Get(_ context.Context, visitorID string, id uuid.UUID) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries[visitorID] {
		if e.ID == id {
			e.Items = append([]Item(nil), e.Items...)
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// Clear removes every entry for the visitor.
func (s *MemoryStore) Clear(_ context.Context, visitorID string) error {
	s.mu.Lock()
	delete(s.entries, visitorID)
	s.mu.Unlock()
	return nil
}

// ============================================================================
// Database-Backed Store
// ============================================================================

// DBStore persists history in PostgreSQL.
type DBStore struct {
	database *db.DB
}

// NewDBStore creates a database-backed store.
func NewDBStore(database *db.DB) *DBStore {
	return &DBStore{database: database}
}

// Save inserts the entry and its items.
func (s *DBStore) Save(ctx context.Context, entry Entry) error {
	rec := &db.Recommendation{
		ID:         entry.ID,
		VisitorID:  entry.VisitorID,
		Query:      entry.Query,
		Emotion:    entry.Emotion,
		Confidence: entry.Confidence,
		Source:     entry.Source,
		Stage:      entry.Stage,
		Genre:      entry.Genre,
		CreatedAt:  entry.CreatedAt,
		Items:      make([]db.RecommendationItem, len(entry.Items)),
	}
	for i, item := range entry.Items {
		rec.Items[i] = db.RecommendationItem{Title: item.Title, URL: item.URL}
	}
	return s.database.Recommendations().Create(ctx, rec)
}

// Recent returns up to limit entries for the visitor, newest first.
func (s *DBStore) Recent(ctx context.Context, visitorID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultCapacity
	}
	recs, err := s.database.Recommendations().ListForVisitor(ctx, visitorID, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(recs))
	for i, rec := range recs {
		entries[i] = fromRecord(rec)
	}
	return entries, nil
}

// Get returns one of the visitor's entries.
func (s *DBStore) Get(ctx context.Context, visitorID string, id uuid.UUID) (Entry, error) {
	rec, err := s.database.Recommendations().GetForVisitor(ctx, visitorID, id)
	if errors.Is(err, db.ErrNotFound) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	return fromRecord(*rec), nil
}

// Clear removes every entry for the visitor.
func (s *DBStore) Clear(ctx context.Context, visitorID string) error {
	return s.database.Recommendations().DeleteForVisitor(ctx, visitorID)
}

func fromRecord(rec db.Recommendation) Entry {
	items := make([]Item, len(rec.Items))
	for i, item := range rec.Items {
		items[i] = Item{Title: item.Title, URL: item.URL}
	}
	return Entry{
		ID:         rec.ID,
		VisitorID:  rec.VisitorID,
		Query:      rec.Query,
		Emotion:    rec.Emotion,
		Confidence: rec.Confidence,
		Source:     rec.Source,
		Stage:      rec.Stage,
		Genre:      rec.Genre,
		Items:      items,
		CreatedAt:  rec.CreatedAt,
	}
}

// Ensure both stores implement Store.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*DBStore)(nil)
)
