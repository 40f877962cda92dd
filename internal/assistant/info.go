package assistant

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/RaffaelSchaefer/gc25-sub000/internal/store"
	"github.com/RaffaelSchaefer/gc25-sub000/pkg/models"
)

const idSchema = `{
	"type": "object",
	"properties": {
		"id": {"type": "string", "minLength": 1}
	},
	"required": ["id"],
	"additionalProperties": false
}`

type idParams struct {
	ID string `json:"id"`
}

// eventInfo is the getEventInformation payload. The personalized fields
// are present only when the request carries a session.
type eventInfo struct {
	models.EventProjection
	Attendees  int   `json:"attendees"`
	UserJoined *bool `json:"userJoined,omitempty"`
}

// goodieInfo is the getGoodieInformation payload.
type goodieInfo struct {
	models.GoodieProjection
	UserVote      *int  `json:"userVote,omitempty"`
	UserCollected *bool `json:"userCollected,omitempty"`
}

func (ts *Toolset) getEventInformationTool() Tool {
	return &toolFunc{
		name:        "getEventInformation",
		description: "Get full details for one event by id, including attendee count and whether the current user joined.",
		schema:      json.RawMessage(idSchema),
		run: func(ctx context.Context, rc *RunContext, params json.RawMessage) (*ToolResult, error) {
			var p idParams
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, err
			}
			info, err := FromCache(rc, CacheKey.Event(p.ID), func() (*eventInfo, error) {
				event, err := ts.store.GetEvent(ctx, p.ID)
				if err != nil {
					return nil, err
				}
				attendees, err := ts.store.CountParticipants(ctx, p.ID)
				if err != nil {
					return nil, err
				}
				return &eventInfo{EventProjection: event.Project(), Attendees: attendees}, nil
			})
			if errors.Is(err, store.ErrNotFound) {
				return errResult(ErrNotFound), nil
			}
			if err != nil {
				return nil, err
			}

			out := *info
			if session := rc.ResolveSession(); session != nil {
				joined, err := ts.store.HasJoined(ctx, p.ID, session.User.ID)
				if err != nil {
					return nil, err
				}
				out.UserJoined = &joined
			}
			return jsonResult(&out)
		},
	}
}

func (ts *Toolset) getGoodieInformationTool() Tool {
	return &toolFunc{
		name:        "getGoodieInformation",
		description: "Get full details for one goodie by id, including vote sum, collector count, and the current user's vote and collection state.",
		schema:      json.RawMessage(idSchema),
		run: func(ctx context.Context, rc *RunContext, params json.RawMessage) (*ToolResult, error) {
			var p idParams
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, err
			}
			projection, err := FromCache(rc, CacheKey.Goodie(p.ID), func() (*models.GoodieProjection, error) {
				goodie, err := ts.store.GetGoodie(ctx, p.ID)
				if err != nil {
					return nil, err
				}
				proj, err := ts.goodieProjection(ctx, goodie)
				if err != nil {
					return nil, err
				}
				return &proj, nil
			})
			if errors.Is(err, store.ErrNotFound) {
				return errResult(ErrNotFound), nil
			}
			if err != nil {
				return nil, err
			}

			out := goodieInfo{GoodieProjection: *projection}
			if session := rc.ResolveSession(); session != nil {
				vote, err := ts.store.GetUserVote(ctx, p.ID, session.User.ID)
				if err != nil {
					return nil, err
				}
				collected, err := ts.store.HasCollected(ctx, p.ID, session.User.ID)
				if err != nil {
					return nil, err
				}
				out.UserVote = &vote
				out.UserCollected = &collected
			}
			return jsonResult(&out)
		},
	}
}
