package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/RaffaelSchaefer/gc25-sub000/internal/store"
	"github.com/RaffaelSchaefer/gc25-sub000/pkg/models"
)

const eventsAdvancedSchema = `{
	"type": "object",
	"properties": {
		"category": {"type": "string", "enum": ["meetup", "party", "talk", "signing", "other"]},
		"from": {"type": "string", "format": "date-time", "description": "Only events starting at or after this time (RFC 3339)"},
		"to": {"type": "string", "format": "date-time", "description": "Only events starting at or before this time (RFC 3339)"},
		"search": {"type": "string", "description": "Case-insensitive text match on title, description, and location"},
		"mineOnly": {"type": "boolean", "description": "Only events created by the current user"},
		"joinedOnly": {"type": "boolean", "description": "Only events the current user joined"},
		"limit": {"type": "integer", "minimum": 1, "maximum": 100}
	},
	"additionalProperties": false
}`

type eventsAdvancedParams struct {
	Category   string `json:"category"`
	From       string `json:"from"`
	To         string `json:"to"`
	Search     string `json:"search"`
	MineOnly   bool   `json:"mineOnly"`
	JoinedOnly bool   `json:"joinedOnly"`
	Limit      int    `json:"limit"`
}

// listedEvent is one entry of a list-query result. Joined is set only when
// the query filtered by membership, so anonymous listings carry no
// misleading personalization.
type listedEvent struct {
	models.EventProjection
	Joined *bool `json:"joined,omitempty"`
}

func (ts *Toolset) getEventsAdvancedTool() Tool {
	return &toolFunc{
		name:        "getEventsAdvanced",
		description: "List events with optional filters: category, date range, text search, created-by-me, joined-by-me.",
		schema:      json.RawMessage(eventsAdvancedSchema),
		run: func(ctx context.Context, rc *RunContext, params json.RawMessage) (*ToolResult, error) {
			var p eventsAdvancedParams
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, err
			}

			filter := store.EventFilter{
				Category: models.EventCategory(p.Category),
				Search:   p.Search,
				Limit:    clampLimit(p.Limit),
			}
			if p.From != "" {
				from, err := time.Parse(time.RFC3339, p.From)
				if err != nil {
					return errResultDetail(ErrInvalidInput, "from: "+err.Error()), nil
				}
				filter.From = from
			}
			if p.To != "" {
				to, err := time.Parse(time.RFC3339, p.To)
				if err != nil {
					return errResultDetail(ErrInvalidInput, "to: "+err.Error()), nil
				}
				filter.To = to
			}

			if p.MineOnly || p.JoinedOnly {
				session, errRes := RequireSession(rc)
				if errRes != nil {
					return errRes, nil
				}
				if p.MineOnly {
					filter.CreatedByID = session.User.ID
				}
				if p.JoinedOnly {
					filter.JoinedByID = session.User.ID
				}
			}

			events, err := ts.store.ListEvents(ctx, filter)
			if err != nil {
				return nil, err
			}
			out := make([]listedEvent, len(events))
			for i, e := range events {
				out[i] = listedEvent{EventProjection: e.Project()}
				if p.JoinedOnly {
					joined := true
					out[i].Joined = &joined
				}
			}
			return jsonResult(map[string]any{"events": out})
		},
	}
}

const emptySchema = `{
	"type": "object",
	"properties": {},
	"additionalProperties": false
}`

func (ts *Toolset) getMyEventsTool() Tool {
	return &toolFunc{
		name:        "getMyEvents",
		description: "List the events the current user joined.",
		schema:      json.RawMessage(emptySchema),
		run: func(ctx context.Context, rc *RunContext, params json.RawMessage) (*ToolResult, error) {
			session, errRes := RequireSession(rc)
			if errRes != nil {
				return errRes, nil
			}
			events, err := ts.store.ListEvents(ctx, store.EventFilter{JoinedByID: session.User.ID})
			if err != nil {
				return nil, err
			}
			out := make([]models.EventProjection, len(events))
			for i, e := range events {
				out[i] = e.Project()
			}
			return jsonResult(map[string]any{"events": out})
		},
	}
}

func (ts *Toolset) getMyGoodiesTool() Tool {
	return &toolFunc{
		name:        "getMyGoodies",
		description: "List the goodies the current user has collected.",
		schema:      json.RawMessage(emptySchema),
		run: func(ctx context.Context, rc *RunContext, params json.RawMessage) (*ToolResult, error) {
			session, errRes := RequireSession(rc)
			if errRes != nil {
				return errRes, nil
			}
			goodies, err := ts.store.ListCollectedGoodies(ctx, session.User.ID)
			if err != nil {
				return nil, err
			}
			out := make([]models.GoodieProjection, 0, len(goodies))
			for _, g := range goodies {
				proj, err := ts.goodieProjection(ctx, g)
				if err != nil {
					return nil, err
				}
				out = append(out, proj)
			}
			return jsonResult(map[string]any{"goodies": out})
		},
	}
}

const participantsSchema = `{
	"type": "object",
	"properties": {
		"eventId": {"type": "string", "minLength": 1},
		"limit": {"type": "integer", "minimum": 1, "maximum": 100}
	},
	"required": ["eventId"],
	"additionalProperties": false
}`

type participantsParams struct {
	EventID string `json:"eventId"`
	Limit   int    `json:"limit"`
}

func (ts *Toolset) getEventParticipantsTool() Tool {
	return &toolFunc{
		name:        "getEventParticipants",
		description: "List who joined an event, plus the total attendee count.",
		schema:      json.RawMessage(participantsSchema),
		run: func(ctx context.Context, rc *RunContext, params json.RawMessage) (*ToolResult, error) {
			var p participantsParams
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, err
			}
			limit := clampLimit(p.Limit)

			type participantsInfo struct {
				EventID      string                `json:"eventId"`
				Attendees    int                   `json:"attendees"`
				Participants []*models.Participant `json:"participants"`
			}
			info, err := FromCache(rc, CacheKey.EventParticipants(p.EventID, limit), func() (*participantsInfo, error) {
				if _, err := ts.store.GetEvent(ctx, p.EventID); err != nil {
					return nil, err
				}
				attendees, err := ts.store.CountParticipants(ctx, p.EventID)
				if err != nil {
					return nil, err
				}
				participants, err := ts.store.ListParticipants(ctx, p.EventID, limit)
				if err != nil {
					return nil, err
				}
				return &participantsInfo{EventID: p.EventID, Attendees: attendees, Participants: participants}, nil
			})
			if errors.Is(err, store.ErrNotFound) {
				return errResult(ErrNotFound), nil
			}
			if err != nil {
				return nil, err
			}
			return jsonResult(info)
		},
	}
}

func (ts *Toolset) getStatsTool() Tool {
	return &toolFunc{
		name:        "getStats",
		description: "Get convention-wide totals: events, participants, goodies, votes, collections, comments.",
		schema:      json.RawMessage(emptySchema),
		run: func(ctx context.Context, rc *RunContext, params json.RawMessage) (*ToolResult, error) {
			stats, err := FromCache(rc, CacheKey.Stats(), func() (store.Stats, error) {
				return ts.store.Stats(ctx)
			})
			if err != nil {
				return nil, err
			}
			return jsonResult(stats)
		},
	}
}
