package assistant

import (
	"context"
	"log/slog"

	"github.com/RaffaelSchaefer/gc25-sub000/internal/hub"
	"github.com/RaffaelSchaefer/gc25-sub000/internal/store"
	"github.com/RaffaelSchaefer/gc25-sub000/pkg/models"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100

	// maxResolverMatches caps how many candidates a resolver returns.
	maxResolverMatches = 5
)

// Toolset owns the built-in planner tools and their shared dependencies.
// Mutating tools write through the store and publish the same broadcast
// message a server action would, so WebSocket clients and the model see
// identical projections.
type Toolset struct {
	store  store.Store
	hub    *hub.Hub
	logger *slog.Logger
}

// NewToolset creates the planner toolset. hub may be nil when broadcasts
// are not wanted (tests); logger may be nil.
func NewToolset(st store.Store, h *hub.Hub, logger *slog.Logger) *Toolset {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toolset{store: st, hub: h, logger: logger}
}

// RegisterAll adds every built-in tool to the registry.
func (ts *Toolset) RegisterAll(r *Registry) error {
	tools := []Tool{
		ts.resolveEventTool(),
		ts.resolveGoodieTool(),
		ts.getEventInformationTool(),
		ts.getGoodieInformationTool(),
		ts.getEventsAdvancedTool(),
		ts.getMyEventsTool(),
		ts.getMyGoodiesTool(),
		ts.getEventParticipantsTool(),
		ts.getStatsTool(),
		ts.joinEventTool(),
		ts.leaveEventTool(),
		ts.voteGoodieTool(),
		ts.clearGoodieVoteTool(),
		ts.toggleCollectGoodieTool(),
		ts.createCommentTool(),
		ts.deleteCommentTool(),
	}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func (ts *Toolset) publish(msg models.BroadcastMessage) {
	if ts.hub != nil {
		ts.hub.Publish(msg)
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// goodieProjection loads the goodie's current aggregates and builds the
// broadcast-consistent projection.
func (ts *Toolset) goodieProjection(ctx context.Context, goodie *models.Goodie) (models.GoodieProjection, error) {
	agg, err := ts.store.GoodieAggregates(ctx, goodie.ID)
	if err != nil {
		return models.GoodieProjection{}, err
	}
	return goodie.Project(agg.VoteSum, agg.Collectors), nil
}
