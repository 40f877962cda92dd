package models

import "time"

// Goodie is a freebie tracked on the convention floor.
type Goodie struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	CreatedByID string    `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GoodieProjection is the normalized goodie shape carried by broadcast
// messages and assistant tool results.
type GoodieProjection struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	CreatedByID string `json:"createdById"`
	VoteSum     int    `json:"voteSum"`
	Collectors  int    `json:"collectors"`
}

// Project returns the broadcast projection of the goodie with the given
// aggregate values.
func (g *Goodie) Project(voteSum, collectors int) GoodieProjection {
	return GoodieProjection{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Location:    g.Location,
		CreatedByID: g.CreatedByID,
		VoteSum:     voteSum,
		Collectors:  collectors,
	}
}

// GoodieVote is one user's current vote on a goodie. Value is +1 or -1;
// a user has at most one row per goodie.
type GoodieVote struct {
	UserID   string    `json:"userId"`
	GoodieID string    `json:"goodieId"`
	Value    int       `json:"value"`
	VotedAt  time.Time `json:"votedAt"`
}

// GoodieCollection records that a user collected a goodie.
type GoodieCollection struct {
	UserID      string    `json:"userId"`
	GoodieID    string    `json:"goodieId"`
	CollectedAt time.Time `json:"collectedAt"`
}
