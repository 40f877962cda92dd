package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RaffaelSchaefer/gc25-sub000/pkg/models"
)

// MemoryStore provides an in-memory Store implementation for testing and
// local runs.
type MemoryStore struct {
	mu           sync.RWMutex
	events       map[string]*models.Event
	participants map[string]map[string]*models.Participant // eventID -> userID
	goodies      map[string]*models.Goodie
	votes        map[string]map[string]*models.GoodieVote       // goodieID -> userID
	collections  map[string]map[string]*models.GoodieCollection // goodieID -> userID
	comments     map[string]*models.Comment

	// insertion counters preserve deterministic list ordering
	eventSeq  map[string]int
	goodieSeq map[string]int
	seq       int
}

// NewMemoryStore creates a new in-memory planner store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:       map[string]*models.Event{},
		participants: map[string]map[string]*models.Participant{},
		goodies:      map[string]*models.Goodie{},
		votes:        map[string]map[string]*models.GoodieVote{},
		collections:  map[string]map[string]*models.GoodieCollection{},
		comments:     map[string]*models.Comment{},
		eventSeq:     map[string]int{},
		goodieSeq:    map[string]int{},
	}
}

func (m *MemoryStore) CreateEvent(ctx context.Context, event *models.Event) error {
	if event == nil {
		return errors.New("event is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *event
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now()
	}
	clone.UpdatedAt = clone.CreatedAt
	event.ID = clone.ID
	event.CreatedAt = clone.CreatedAt
	event.UpdatedAt = clone.UpdatedAt
	m.events[clone.ID] = &clone
	m.seq++
	m.eventSeq[clone.ID] = m.seq
	return nil
}

func (m *MemoryStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	event, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *event
	return &clone, nil
}

func (m *MemoryStore) UpdateEvent(ctx context.Context, event *models.Event) error {
	if event == nil {
		return errors.New("event is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.events[event.ID]
	if !ok {
		return ErrNotFound
	}
	clone := *event
	clone.CreatedAt = existing.CreatedAt
	clone.UpdatedAt = time.Now()
	m.events[clone.ID] = &clone
	event.UpdatedAt = clone.UpdatedAt
	return nil
}

func (m *MemoryStore) DeleteEvent(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return ErrNotFound
	}
	delete(m.events, id)
	delete(m.eventSeq, id)
	delete(m.participants, id)
	for commentID, comment := range m.comments {
		if comment.EventID == id {
			delete(m.comments, commentID)
		}
	}
	return nil
}

func (m *MemoryStore) ListEvents(ctx context.Context, filter EventFilter) ([]*models.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Event, 0, len(m.events))
	for _, event := range m.events {
		if !m.matchesFilter(event, filter) {
			continue
		}
		clone := *event
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return m.eventSeq[out[i].ID] < m.eventSeq[out[j].ID]
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *MemoryStore) matchesFilter(event *models.Event, filter EventFilter) bool {
	if filter.Category != "" && event.Category != filter.Category {
		return false
	}
	if !filter.From.IsZero() && event.EndDate.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && event.StartDate.After(filter.To) {
		return false
	}
	if filter.CreatedByID != "" && event.CreatedByID != filter.CreatedByID {
		return false
	}
	if filter.JoinedByID != "" {
		if _, ok := m.participants[event.ID][filter.JoinedByID]; !ok {
			return false
		}
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		haystack := strings.ToLower(event.Title + " " + event.Description + " " + event.Location)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func (m *MemoryStore) JoinEvent(ctx context.Context, eventID, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[eventID]; !ok {
		return 0, ErrNotFound
	}
	byUser := m.participants[eventID]
	if byUser == nil {
		byUser = map[string]*models.Participant{}
		m.participants[eventID] = byUser
	}
	if _, ok := byUser[userID]; !ok {
		byUser[userID] = &models.Participant{
			UserID:   userID,
			EventID:  eventID,
			JoinedAt: time.Now(),
		}
	}
	return len(byUser), nil
}

func (m *MemoryStore) LeaveEvent(ctx context.Context, eventID, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[eventID]; !ok {
		return 0, ErrNotFound
	}
	delete(m.participants[eventID], userID)
	return len(m.participants[eventID]), nil
}

func (m *MemoryStore) CountParticipants(ctx context.Context, eventID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.events[eventID]; !ok {
		return 0, ErrNotFound
	}
	return len(m.participants[eventID]), nil
}

func (m *MemoryStore) ListParticipants(ctx context.Context, eventID string, limit int) ([]*models.Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.events[eventID]; !ok {
		return nil, ErrNotFound
	}
	out := make([]*models.Participant, 0, len(m.participants[eventID]))
	for _, p := range m.participants[eventID] {
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) HasJoined(ctx context.Context, eventID, userID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.participants[eventID][userID]
	return ok, nil
}

func (m *MemoryStore) CreateGoodie(ctx context.Context, goodie *models.Goodie) error {
	if goodie == nil {
		return errors.New("goodie is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *goodie
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now()
	}
	clone.UpdatedAt = clone.CreatedAt
	goodie.ID = clone.ID
	goodie.CreatedAt = clone.CreatedAt
	goodie.UpdatedAt = clone.UpdatedAt
	m.goodies[clone.ID] = &clone
	m.seq++
	m.goodieSeq[clone.ID] = m.seq
	return nil
}

func (m *MemoryStore) GetGoodie(ctx context.Context, id string) (*models.Goodie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	goodie, ok := m.goodies[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *goodie
	return &clone, nil
}

func (m *MemoryStore) UpdateGoodie(ctx context.Context, goodie *models.Goodie) error {
	if goodie == nil {
		return errors.New("goodie is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.goodies[goodie.ID]
	if !ok {
		return ErrNotFound
	}
	clone := *goodie
	clone.CreatedAt = existing.CreatedAt
	clone.UpdatedAt = time.Now()
	m.goodies[clone.ID] = &clone
	goodie.UpdatedAt = clone.UpdatedAt
	return nil
}

func (m *MemoryStore) DeleteGoodie(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.goodies[id]; !ok {
		return ErrNotFound
	}
	delete(m.goodies, id)
	delete(m.goodieSeq, id)
	delete(m.votes, id)
	delete(m.collections, id)
	return nil
}

func (m *MemoryStore) ListGoodies(ctx context.Context, search string, limit int) ([]*models.Goodie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(search)
	out := make([]*models.Goodie, 0, len(m.goodies))
	for _, goodie := range m.goodies {
		if needle != "" {
			haystack := strings.ToLower(goodie.Name + " " + goodie.Description + " " + goodie.Location)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		clone := *goodie
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return m.goodieSeq[out[i].ID] < m.goodieSeq[out[j].ID]
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) UpsertVote(ctx context.Context, goodieID, userID string, value int) (int, error) {
	if value != 1 && value != -1 {
		return 0, errors.New("vote value must be 1 or -1")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.goodies[goodieID]; !ok {
		return 0, ErrNotFound
	}
	byUser := m.votes[goodieID]
	if byUser == nil {
		byUser = map[string]*models.GoodieVote{}
		m.votes[goodieID] = byUser
	}
	byUser[userID] = &models.GoodieVote{
		UserID:   userID,
		GoodieID: goodieID,
		Value:    value,
		VotedAt:  time.Now(),
	}
	return m.voteSumLocked(goodieID), nil
}

func (m *MemoryStore) ClearVote(ctx context.Context, goodieID, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.goodies[goodieID]; !ok {
		return 0, ErrNotFound
	}
	delete(m.votes[goodieID], userID)
	return m.voteSumLocked(goodieID), nil
}

func (m *MemoryStore) GetUserVote(ctx context.Context, goodieID, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vote, ok := m.votes[goodieID][userID]
	if !ok {
		return 0, nil
	}
	return vote.Value, nil
}

// voteSumLocked recomputes the aggregate from all stored votes. Callers
// must hold the lock, which mirrors the transactional recompute in the
// SQL store.
func (m *MemoryStore) voteSumLocked(goodieID string) int {
	sum := 0
	for _, vote := range m.votes[goodieID] {
		sum += vote.Value
	}
	return sum
}

func (m *MemoryStore) ToggleCollection(ctx context.Context, goodieID, userID string) (bool, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.goodies[goodieID]; !ok {
		return false, 0, ErrNotFound
	}
	byUser := m.collections[goodieID]
	if byUser == nil {
		byUser = map[string]*models.GoodieCollection{}
		m.collections[goodieID] = byUser
	}
	collected := false
	if _, ok := byUser[userID]; ok {
		delete(byUser, userID)
	} else {
		byUser[userID] = &models.GoodieCollection{
			UserID:      userID,
			GoodieID:    goodieID,
			CollectedAt: time.Now(),
		}
		collected = true
	}
	return collected, len(byUser), nil
}

func (m *MemoryStore) HasCollected(ctx context.Context, goodieID, userID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.collections[goodieID][userID]
	return ok, nil
}

func (m *MemoryStore) ListCollectedGoodies(ctx context.Context, userID string) ([]*models.Goodie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Goodie, 0)
	for goodieID, byUser := range m.collections {
		if _, ok := byUser[userID]; !ok {
			continue
		}
		if goodie, exists := m.goodies[goodieID]; exists {
			clone := *goodie
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return m.goodieSeq[out[i].ID] < m.goodieSeq[out[j].ID]
	})
	return out, nil
}

func (m *MemoryStore) GoodieAggregates(ctx context.Context, goodieID string) (GoodieAggregates, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.goodies[goodieID]; !ok {
		return GoodieAggregates{}, ErrNotFound
	}
	return GoodieAggregates{
		VoteSum:    m.voteSumLocked(goodieID),
		Collectors: len(m.collections[goodieID]),
	}, nil
}

func (m *MemoryStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment == nil {
		return errors.New("comment is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[comment.EventID]; !ok {
		return ErrNotFound
	}
	clone := *comment
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now()
	}
	clone.UpdatedAt = clone.CreatedAt
	comment.ID = clone.ID
	comment.CreatedAt = clone.CreatedAt
	comment.UpdatedAt = clone.UpdatedAt
	m.comments[clone.ID] = &clone
	return nil
}

func (m *MemoryStore) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	comment, ok := m.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *comment
	return &clone, nil
}

func (m *MemoryStore) UpdateComment(ctx context.Context, comment *models.Comment) error {
	if comment == nil {
		return errors.New("comment is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.comments[comment.ID]
	if !ok {
		return ErrNotFound
	}
	clone := *comment
	clone.EventID = existing.EventID
	clone.AuthorID = existing.AuthorID
	clone.CreatedAt = existing.CreatedAt
	clone.UpdatedAt = time.Now()
	m.comments[clone.ID] = &clone
	comment.UpdatedAt = clone.UpdatedAt
	return nil
}

func (m *MemoryStore) DeleteComment(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[id]; !ok {
		return ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *MemoryStore) ListComments(ctx context.Context, eventID string, limit int) ([]*models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Comment, 0)
	for _, comment := range m.comments {
		if comment.EventID != eventID {
			continue
		}
		clone := *comment
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := Stats{
		Events:   len(m.events),
		Goodies:  len(m.goodies),
		Comments: len(m.comments),
	}
	for _, byUser := range m.participants {
		stats.Participants += len(byUser)
	}
	for _, byUser := range m.votes {
		stats.Votes += len(byUser)
	}
	for _, byUser := range m.collections {
		stats.Collections += len(byUser)
	}
	return stats, nil
}

func (m *MemoryStore) Close() error { return nil }
