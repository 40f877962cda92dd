// Package store provides the persistence layer for planner events,
// goodies, votes, participants, and comments.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/RaffaelSchaefer/gc25-sub000/pkg/models"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// EventFilter narrows ListEvents results. Zero values are ignored.
type EventFilter struct {
	Category models.EventCategory
	From     time.Time
	To       time.Time

	// Search matches title, description, and location case-insensitively.
	Search string

	// CreatedByID limits results to events created by the user.
	CreatedByID string

	// JoinedByID limits results to events the user joined.
	JoinedByID string

	Limit int
}

// GoodieAggregates holds the recomputed per-goodie aggregate values.
type GoodieAggregates struct {
	VoteSum    int
	Collectors int
}

// Stats summarizes the whole convention dataset.
type Stats struct {
	Events       int `json:"events"`
	Participants int `json:"participants"`
	Goodies      int `json:"goodies"`
	Votes        int `json:"votes"`
	Collections  int `json:"collections"`
	Comments     int `json:"comments"`
}

// Store is the interface for planner persistence. Write operations that
// affect aggregates (votes, collections, participants) recompute counts
// with a fresh aggregate query inside the same transaction, never by
// incrementing values held in application memory.
type Store interface {
	// Events
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context, filter EventFilter) ([]*models.Event, error)

	// Participants. JoinEvent is an idempotent upsert; both return the
	// attendee count observed after the write.
	JoinEvent(ctx context.Context, eventID, userID string) (attendees int, err error)
	LeaveEvent(ctx context.Context, eventID, userID string) (attendees int, err error)
	CountParticipants(ctx context.Context, eventID string) (int, error)
	ListParticipants(ctx context.Context, eventID string, limit int) ([]*models.Participant, error)
	HasJoined(ctx context.Context, eventID, userID string) (bool, error)

	// Goodies
	CreateGoodie(ctx context.Context, goodie *models.Goodie) error
	GetGoodie(ctx context.Context, id string) (*models.Goodie, error)
	UpdateGoodie(ctx context.Context, goodie *models.Goodie) error
	DeleteGoodie(ctx context.Context, id string) error
	ListGoodies(ctx context.Context, search string, limit int) ([]*models.Goodie, error)

	// Votes. UpsertVote replaces the user's previous vote; ClearVote
	// removes it. Both recompute and return the aggregate sum inside one
	// transaction.
	UpsertVote(ctx context.Context, goodieID, userID string, value int) (voteSum int, err error)
	ClearVote(ctx context.Context, goodieID, userID string) (voteSum int, err error)
	GetUserVote(ctx context.Context, goodieID, userID string) (int, error)

	// Collections. ToggleCollection flips the collected state and reports
	// the resulting state plus the collector count after the write.
	ToggleCollection(ctx context.Context, goodieID, userID string) (collected bool, collectors int, err error)
	HasCollected(ctx context.Context, goodieID, userID string) (bool, error)
	ListCollectedGoodies(ctx context.Context, userID string) ([]*models.Goodie, error)
	GoodieAggregates(ctx context.Context, goodieID string) (GoodieAggregates, error)

	// Comments
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id string) error
	ListComments(ctx context.Context, eventID string, limit int) ([]*models.Comment, error)

	// Stats returns dataset-wide aggregate counts.
	Stats(ctx context.Context) (Stats, error)

	// Close releases underlying resources.
	Close() error
}
