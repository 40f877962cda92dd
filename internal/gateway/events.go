package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RaffaelSchaefer/gc25-sub000/internal/auth"
	"github.com/RaffaelSchaefer/gc25-sub000/internal/store"
	"github.com/RaffaelSchaefer/gc25-sub000/pkg/models"
)

// requireSession extracts the request's session or writes 401.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (*models.Session, bool) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok || session == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return session, true
}

// eventLink builds the absolute link carried in broadcast payloads for an
// event that was created without an explicit URL.
func (s *Server) eventLink(id string) string {
	return strings.TrimSuffix(s.config.Server.BaseURL, "/") + "/events/" + id
}

type eventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	URL         string    `json:"url"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Category    string    `json:"category"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	now := time.Now().UTC()
	event := &models.Event{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		URL:         req.URL,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedByID: session.User.ID,
		Category:    models.EventCategory(req.Category),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if event.Category == "" {
		event.Category = models.CategoryOther
	}
	if event.URL == "" {
		event.URL = s.eventLink(event.ID)
	}
	if err := s.store.CreateEvent(r.Context(), event); err != nil {
		s.logger.Error("create event failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not create event")
		return
	}
	s.hub.Publish(models.NewEventCreated(event.Project()))
	writeJSON(w, http.StatusCreated, event)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	filter := store.EventFilter{
		Category: models.EventCategory(r.URL.Query().Get("category")),
		Search:   r.URL.Query().Get("search"),
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		filter.Limit = limit
	}
	events, err := s.store.ListEvents(r.Context(), filter)
	if err != nil {
		s.logger.Error("list events failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list events")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := s.store.GetEvent(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load event")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	event, err := s.store.GetEvent(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load event")
		return
	}
	if event.CreatedByID != session.User.ID {
		writeError(w, http.StatusForbidden, "only the creator can edit an event")
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title != "" {
		event.Title = req.Title
	}
	event.Description = req.Description
	event.Location = req.Location
	event.URL = req.URL
	if !req.StartDate.IsZero() {
		event.StartDate = req.StartDate
	}
	if !req.EndDate.IsZero() {
		event.EndDate = req.EndDate
	}
	if req.Category != "" {
		event.Category = models.EventCategory(req.Category)
	}
	event.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateEvent(r.Context(), event); err != nil {
		s.logger.Error("update event failed", "event_id", event.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not update event")
		return
	}
	s.hub.Publish(models.NewEventUpdated(event.Project()))
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	event, err := s.store.GetEvent(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load event")
		return
	}
	if event.CreatedByID != session.User.ID {
		writeError(w, http.StatusForbidden, "only the creator can delete an event")
		return
	}
	if err := s.store.DeleteEvent(r.Context(), id); err != nil {
		s.logger.Error("delete event failed", "event_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not delete event")
		return
	}
	s.hub.Publish(models.NewEventDeleted(id))
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (s *Server) handleJoinEvent(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	attendees, err := s.store.JoinEvent(r.Context(), id, session.User.ID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		s.logger.Error("join event failed", "event_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not join event")
		return
	}
	s.hub.Publish(models.NewParticipantChanged(id, attendees))
	writeJSON(w, http.StatusOK, map[string]any{"joined": true, "attendees": attendees})
}

func (s *Server) handleLeaveEvent(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	attendees, err := s.store.LeaveEvent(r.Context(), id, session.User.ID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		s.logger.Error("leave event failed", "event_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not leave event")
		return
	}
	s.hub.Publish(models.NewParticipantChanged(id, attendees))
	writeJSON(w, http.StatusOK, map[string]any{"joined": false, "attendees": attendees})
}

func (s *Server) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	limit := 50
	if parsed, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && parsed > 0 {
		limit = parsed
	}
	participants, err := s.store.ListParticipants(r.Context(), id, limit)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list participants")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"participants": participants})
}

type commentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	eventID := r.PathValue("id")
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	if _, err := s.store.GetEvent(r.Context(), eventID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not load event")
		return
	}

	now := time.Now().UTC()
	comment := &models.Comment{
		ID:        uuid.NewString(),
		EventID:   eventID,
		AuthorID:  session.User.ID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateComment(r.Context(), comment); err != nil {
		s.logger.Error("create comment failed", "event_id", eventID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not create comment")
		return
	}
	s.hub.Publish(models.NewCommentCreated(eventID, comment.Project()))
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	comment, err := s.store.GetComment(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "comment not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load comment")
		return
	}
	if comment.AuthorID != session.User.ID {
		writeError(w, http.StatusForbidden, "only the author can edit a comment")
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	comment.Content = req.Content
	if err := s.store.UpdateComment(r.Context(), comment); err != nil {
		s.logger.Error("update comment failed", "comment_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not update comment")
		return
	}
	s.hub.Publish(models.NewCommentUpdated(comment.EventID, comment.Project()))
	writeJSON(w, http.StatusOK, comment)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	comment, err := s.store.GetComment(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "comment not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load comment")
		return
	}
	if comment.AuthorID != session.User.ID {
		writeError(w, http.StatusForbidden, "only the author can delete a comment")
		return
	}
	if err := s.store.DeleteComment(r.Context(), id); err != nil {
		s.logger.Error("delete comment failed", "comment_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not delete comment")
		return
	}
	s.hub.Publish(models.NewCommentDeleted(comment.EventID, id))
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
