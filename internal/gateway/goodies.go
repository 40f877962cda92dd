package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/RaffaelSchaefer/gc25-sub000/internal/store"
	"github.com/RaffaelSchaefer/gc25-sub000/pkg/models"
)

type goodieRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

func (s *Server) handleCreateGoodie(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	var req goodieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	now := time.Now().UTC()
	goodie := &models.Goodie{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		CreatedByID: session.User.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateGoodie(r.Context(), goodie); err != nil {
		s.logger.Error("create goodie failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not create goodie")
		return
	}
	s.hub.Publish(models.NewGoodieCreated(goodie.Project(0, 0)))
	writeJSON(w, http.StatusCreated, goodie)
}

func (s *Server) handleListGoodies(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if parsed, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = parsed
	}
	goodies, err := s.store.ListGoodies(r.Context(), r.URL.Query().Get("search"), limit)
	if err != nil {
		s.logger.Error("list goodies failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list goodies")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goodies": goodies})
}

func (s *Server) handleGetGoodie(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	goodie, err := s.store.GetGoodie(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "goodie not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load goodie")
		return
	}
	agg, err := s.store.GoodieAggregates(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load goodie")
		return
	}
	writeJSON(w, http.StatusOK, goodie.Project(agg.VoteSum, agg.Collectors))
}

func (s *Server) handleUpdateGoodie(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	goodie, err := s.store.GetGoodie(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "goodie not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load goodie")
		return
	}
	if goodie.CreatedByID != session.User.ID {
		writeError(w, http.StatusForbidden, "only the creator can edit a goodie")
		return
	}

	var req goodieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != "" {
		goodie.Name = req.Name
	}
	goodie.Description = req.Description
	goodie.Location = req.Location
	goodie.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateGoodie(r.Context(), goodie); err != nil {
		s.logger.Error("update goodie failed", "goodie_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not update goodie")
		return
	}
	agg, err := s.store.GoodieAggregates(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load goodie")
		return
	}
	s.hub.Publish(models.NewGoodieEdited(goodie.Project(agg.VoteSum, agg.Collectors)))
	writeJSON(w, http.StatusOK, goodie)
}

func (s *Server) handleDeleteGoodie(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	goodie, err := s.store.GetGoodie(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "goodie not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load goodie")
		return
	}
	if goodie.CreatedByID != session.User.ID {
		writeError(w, http.StatusForbidden, "only the creator can delete a goodie")
		return
	}
	if err := s.store.DeleteGoodie(r.Context(), id); err != nil {
		s.logger.Error("delete goodie failed", "goodie_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not delete goodie")
		return
	}
	s.hub.Publish(models.NewGoodieDeleted(id))
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

type voteRequest struct {
	Value int `json:"value"`
}

func (s *Server) handleVoteGoodie(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || (req.Value != 1 && req.Value != -1) {
		writeError(w, http.StatusBadRequest, "value must be 1 or -1")
		return
	}
	voteSum, err := s.store.UpsertVote(r.Context(), id, session.User.ID, req.Value)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "goodie not found")
		return
	}
	if err != nil {
		s.logger.Error("vote failed", "goodie_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not record vote")
		return
	}
	if err := s.publishGoodieUpdated(r, id); err != nil {
		writeError(w, http.StatusInternalServerError, "could not load goodie")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"voteSum": voteSum, "userVote": req.Value})
}

func (s *Server) handleClearVote(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	voteSum, err := s.store.ClearVote(r.Context(), id, session.User.ID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "goodie not found")
		return
	}
	if err != nil {
		s.logger.Error("clear vote failed", "goodie_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not clear vote")
		return
	}
	if err := s.publishGoodieUpdated(r, id); err != nil {
		writeError(w, http.StatusInternalServerError, "could not load goodie")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"voteSum": voteSum, "userVote": 0})
}

func (s *Server) handleToggleCollect(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	collected, collectors, err := s.store.ToggleCollection(r.Context(), id, session.User.ID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "goodie not found")
		return
	}
	if err != nil {
		s.logger.Error("toggle collection failed", "goodie_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not toggle collection")
		return
	}
	goodie, err := s.store.GetGoodie(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load goodie")
		return
	}
	agg, err := s.store.GoodieAggregates(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load goodie")
		return
	}
	s.hub.Publish(models.NewGoodieCollected(goodie.Project(agg.VoteSum, agg.Collectors), session.User.ID, collected))
	writeJSON(w, http.StatusOK, map[string]any{"collected": collected, "collectors": collectors})
}

func (s *Server) publishGoodieUpdated(r *http.Request, goodieID string) error {
	goodie, err := s.store.GetGoodie(r.Context(), goodieID)
	if err != nil {
		return err
	}
	agg, err := s.store.GoodieAggregates(r.Context(), goodieID)
	if err != nil {
		return err
	}
	s.hub.Publish(models.NewGoodieUpdated(goodie.Project(agg.VoteSum, agg.Collectors)))
	return nil
}
