package assistant

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/RaffaelSchaefer/gc25-sub000/internal/store"
	"github.com/RaffaelSchaefer/gc25-sub000/pkg/models"
)

const eventIDSchema = `{
	"type": "object",
	"properties": {
		"eventId": {"type": "string", "minLength": 1}
	},
	"required": ["eventId"],
	"additionalProperties": false
}`

type eventIDParams struct {
	EventID string `json:"eventId"`
}

func (ts *Toolset) joinEventTool() Tool {
	return &toolFunc{
		name:        "joinEvent",
		description: "Join an event as the current user. Joining an already-joined event is a no-op.",
		schema:      json.RawMessage(eventIDSchema),
		run: func(ctx context.Context, rc *RunContext, params json.RawMessage) (*ToolResult, error) {
			session, errRes := RequireSession(rc)
			if errRes != nil {
				return errRes, nil
			}
			var p eventIDParams
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, err
			}
			attendees, err := ts.store.JoinEvent(ctx, p.EventID, session.User.ID)
			if errors.Is(err, store.ErrNotFound) {
				return errResult(ErrNotFound), nil
			}
			if err != nil {
				return nil, err
			}
			ts.publish(models.NewParticipantChanged(p.EventID, attendees))
			return jsonResult(map[string]any{"eventId": p.EventID, "joined": true, "attendees": attendees})
		},
	}
}

func (ts *Toolset) leaveEventTool() Tool {
	return &toolFunc{
		name:        "leaveEvent",
		description: "Leave an event as the current user.",
		schema:      json.RawMessage(eventIDSchema),
		run: func(ctx context.Context, rc *RunContext, params json.RawMessage) (*ToolResult, error) {
			session, errRes := RequireSession(rc)
			if errRes != nil {
				return errRes, nil
			}
			var p eventIDParams
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, err
			}
			attendees, err := ts.store.LeaveEvent(ctx, p.EventID, session.User.ID)
			if errors.Is(err, store.ErrNotFound) {
				return errResult(ErrNotFound), nil
			}
			if err != nil {
				return nil, err
			}
			ts.publish(models.NewParticipantChanged(p.EventID, attendees))
			return jsonResult(map[string]any{"eventId": p.EventID, "joined": false, "attendees": attendees})
		},
	}
}

const voteSchema = `{
	"type": "object",
	"properties": {
		"goodieId": {"type": "string", "minLength": 1},
		"value": {"type": "integer", "enum": [1, -1], "description": "1 for upvote, -1 for downvote"}
	},
	"required": ["goodieId", "value"],
	"additionalProperties": false
}`

type voteParams struct {
	GoodieID string `json:"goodieId"`
	Value    int    `json:"value"`
}

func (ts *Toolset) voteGoodieTool() Tool {
	return &toolFunc{
		name:        "voteGoodie",
		description: "Vote on a goodie as the current user. A repeated vote replaces the previous one.",
		schema:      json.RawMessage(voteSchema),
		run: func(ctx context.Context, rc *RunContext, params json.RawMessage) (*ToolResult, error) {
			session, errRes := RequireSession(rc)
			if errRes != nil {
				return errRes, nil
			}
			var p voteParams
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, err
			}
			voteSum, err := ts.store.UpsertVote(ctx, p.GoodieID, session.User.ID, p.Value)
			if errors.Is(err, store.ErrNotFound) {
				return errResult(ErrNotFound), nil
			}
			if err != nil {
				return nil, err
			}
			if err := ts.publishGoodieUpdated(ctx, p.GoodieID); err != nil {
				return nil, err
			}
			return jsonResult(map[string]any{"goodieId": p.GoodieID, "userVote": p.Value, "voteSum": voteSum})
		},
	}
}

const goodieIDSchema = `{
	"type": "object",
	"properties": {
		"goodieId": {"type": "string", "minLength": 1}
	},
	"required": ["goodieId"],
	"additionalProperties": false
}`

type goodieIDParams struct {
	GoodieID string `json:"goodieId"`
}

func (ts *Toolset) clearGoodieVoteTool() Tool {
	return &toolFunc{
		name:        "clearGoodieVote",
		description: "Remove the current user's vote on a goodie.",
		schema:      json.RawMessage(goodieIDSchema),
		run: func(ctx context.Context, rc *RunContext, params json.RawMessage) (*ToolResult, error) {
			session, errRes := RequireSession(rc)
			if errRes != nil {
				return errRes, nil
			}
			var p goodieIDParams
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, err
			}
			voteSum, err := ts.store.ClearVote(ctx, p.GoodieID, session.User.ID)
			if errors.Is(err, store.ErrNotFound) {
				return errResult(ErrNotFound), nil
			}
			if err != nil {
				return nil, err
			}
			if err := ts.publishGoodieUpdated(ctx, p.GoodieID); err != nil {
				return nil, err
			}
			return jsonResult(map[string]any{"goodieId": p.GoodieID, "userVote": 0, "voteSum": voteSum})
		},
	}
}

func (ts *Toolset) toggleCollectGoodieTool() Tool {
	return &toolFunc{
		name:        "toggleCollectGoodie",
		description: "Mark a goodie as collected by the current user, or uncollect it if already collected.",
		schema:      json.RawMessage(goodieIDSchema),
		run: func(ctx context.Context, rc *RunContext, params json.RawMessage) (*ToolResult, error) {
			session, errRes := RequireSession(rc)
			if errRes != nil {
				return errRes, nil
			}
			var p goodieIDParams
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, err
			}
			collected, collectors, err := ts.store.ToggleCollection(ctx, p.GoodieID, session.User.ID)
			if errors.Is(err, store.ErrNotFound) {
				return errResult(ErrNotFound), nil
			}
			if err != nil {
				return nil, err
			}
			goodie, err := ts.store.GetGoodie(ctx, p.GoodieID)
			if err != nil {
				return nil, err
			}
			proj, err := ts.goodieProjection(ctx, goodie)
			if err != nil {
				return nil, err
			}
			ts.publish(models.NewGoodieCollected(proj, session.User.ID, collected))
			return jsonResult(map[string]any{"goodieId": p.GoodieID, "collected": collected, "collectors": collectors})
		},
	}
}

// publishGoodieUpdated broadcasts the goodie's post-write projection so
// subscribers patch the same aggregate the caller was returned.
func (ts *Toolset) publishGoodieUpdated(ctx context.Context, goodieID string) error {
	goodie, err := ts.store.GetGoodie(ctx, goodieID)
	if err != nil {
		return err
	}
	proj, err := ts.goodieProjection(ctx, goodie)
	if err != nil {
		return err
	}
	ts.publish(models.NewGoodieUpdated(proj))
	return nil
}
