package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/RaffaelSchaefer/gc25-sub000/internal/store"
	"github.com/RaffaelSchaefer/gc25-sub000/pkg/models"
)

const createCommentSchema = `{
	"type": "object",
	"properties": {
		"eventId": {"type": "string", "minLength": 1},
		"content": {"type": "string", "minLength": 1, "maxLength": 2000}
	},
	"required": ["eventId", "content"],
	"additionalProperties": false
}`

type createCommentParams struct {
	EventID string `json:"eventId"`
	Content string `json:"content"`
}

func (ts *Toolset) createCommentTool() Tool {
	return &toolFunc{
		name:        "createComment",
		description: "Post a comment on an event as the current user.",
		schema:      json.RawMessage(createCommentSchema),
		run: func(ctx context.Context, rc *RunContext, params json.RawMessage) (*ToolResult, error) {
			session, errRes := RequireSession(rc)
			if errRes != nil {
				return errRes, nil
			}
			var p createCommentParams
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, err
			}
			if _, err := ts.store.GetEvent(ctx, p.EventID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return errResult(ErrNotFound), nil
				}
				return nil, err
			}
			now := time.Now().UTC()
			comment := &models.Comment{
				ID:        uuid.NewString(),
				EventID:   p.EventID,
				AuthorID:  session.User.ID,
				Content:   p.Content,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := ts.store.CreateComment(ctx, comment); err != nil {
				return nil, err
			}
			projection := comment.Project()
			ts.publish(models.NewCommentCreated(p.EventID, projection))
			return jsonResult(&projection)
		},
	}
}

const deleteCommentSchema = `{
	"type": "object",
	"properties": {
		"commentId": {"type": "string", "minLength": 1}
	},
	"required": ["commentId"],
	"additionalProperties": false
}`

type deleteCommentParams struct {
	CommentID string `json:"commentId"`
}

func (ts *Toolset) deleteCommentTool() Tool {
	return &toolFunc{
		name:        "deleteComment",
		description: "Delete one of the current user's own comments.",
		schema:      json.RawMessage(deleteCommentSchema),
		run: func(ctx context.Context, rc *RunContext, params json.RawMessage) (*ToolResult, error) {
			session, errRes := RequireSession(rc)
			if errRes != nil {
				return errRes, nil
			}
			var p deleteCommentParams
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, err
			}
			comment, err := ts.store.GetComment(ctx, p.CommentID)
			if errors.Is(err, store.ErrNotFound) {
				return errResult(ErrNotFound), nil
			}
			if err != nil {
				return nil, err
			}
			if comment.AuthorID != session.User.ID {
				return errResult(ErrForbidden), nil
			}
			if err := ts.store.DeleteComment(ctx, p.CommentID); err != nil {
				return nil, err
			}
			ts.publish(models.NewCommentDeleted(comment.EventID, p.CommentID))
			return jsonResult(map[string]any{"commentId": p.CommentID, "deleted": true})
		},
	}
}
