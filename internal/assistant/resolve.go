package assistant

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/RaffaelSchaefer/gc25-sub000/internal/store"
)

// match ranks: exact beats prefix beats substring. Ties keep the original
// listing order.
const (
	rankExact     = 3
	rankPrefix    = 2
	rankSubstring = 1
)

type candidate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type rankedCandidate struct {
	candidate
	rank int
	pos  int
}

// rankCandidates filters and orders candidates by how well their name
// matches the query, case-insensitively, keeping at most maxResolverMatches.
func rankCandidates(query string, candidates []candidate) []candidate {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []candidate{}
	}
	var ranked []rankedCandidate
	for i, c := range candidates {
		name := strings.ToLower(c.Name)
		var rank int
		switch {
		case name == q:
			rank = rankExact
		case strings.HasPrefix(name, q):
			rank = rankPrefix
		case strings.Contains(name, q):
			rank = rankSubstring
		default:
			continue
		}
		ranked = append(ranked, rankedCandidate{candidate: c, rank: rank, pos: i})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].rank != ranked[j].rank {
			return ranked[i].rank > ranked[j].rank
		}
		return ranked[i].pos < ranked[j].pos
	})
	if len(ranked) > maxResolverMatches {
		ranked = ranked[:maxResolverMatches]
	}
	out := make([]candidate, len(ranked))
	for i, r := range ranked {
		out[i] = r.candidate
	}
	return out
}

const resolveSchema = `{
	"type": "object",
	"properties": {
		"query": {"type": "string", "minLength": 1, "description": "Name or partial name to resolve"}
	},
	"required": ["query"],
	"additionalProperties": false
}`

type resolveParams struct {
	Query string `json:"query"`
}

func (ts *Toolset) resolveEventTool() Tool {
	return &toolFunc{
		name:        "resolveEvent",
		description: "Resolve a loose event name to event ids. Returns the best matches ranked by similarity.",
		schema:      json.RawMessage(resolveSchema),
		run: func(ctx context.Context, rc *RunContext, params json.RawMessage) (*ToolResult, error) {
			var p resolveParams
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, err
			}
			events, err := ts.store.ListEvents(ctx, store.EventFilter{})
			if err != nil {
				return nil, err
			}
			candidates := make([]candidate, len(events))
			for i, e := range events {
				candidates[i] = candidate{ID: e.ID, Name: e.Title}
			}
			matches := rankCandidates(p.Query, candidates)
			return jsonResult(map[string]any{"matches": matches})
		},
	}
}

func (ts *Toolset) resolveGoodieTool() Tool {
	return &toolFunc{
		name:        "resolveGoodie",
		description: "Resolve a loose goodie name to goodie ids. Returns the best matches ranked by similarity.",
		schema:      json.RawMessage(resolveSchema),
		run: func(ctx context.Context, rc *RunContext, params json.RawMessage) (*ToolResult, error) {
			var p resolveParams
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, err
			}
			goodies, err := ts.store.ListGoodies(ctx, "", 0)
			if err != nil {
				return nil, err
			}
			candidates := make([]candidate, len(goodies))
			for i, g := range goodies {
				candidates[i] = candidate{ID: g.ID, Name: g.Name}
			}
			matches := rankCandidates(p.Query, candidates)
			return jsonResult(map[string]any{"matches": matches})
		},
	}
}
