package world

import (
	"sort"
	"strings"
)

const (
	// EdgeScoreMin and EdgeScoreMax bound faction-pair edge scores.
	EdgeScoreMin = -100
	EdgeScoreMax = 100

	relationshipHistoryMax = 30
)

// RelationshipGraph tracks faction-pair edge scores, npc faction
// affinities, and a bounded shift history.
type RelationshipGraph struct {
	FactionEdges map[string]int            `json:"faction_edges"`
	NPCAffinity  map[string]map[string]int `json:"npc_faction_affinity"`
	History      []RelationshipShift       `json:"history,omitempty"`
}

// RelationshipShift records one seeded edge nudge.
type RelationshipShift struct {
	Turn  int    `json:"turn"`
	Edge  string `json:"edge"`
	Delta int    `json:"delta"`
	Value int    `json:"value"`
	Seed  int64  `json:"seed"`
}

// NewRelationshipGraph returns the canonical empty graph.
func NewRelationshipGraph() *RelationshipGraph {
	return &RelationshipGraph{
		FactionEdges: make(map[string]int),
		NPCAffinity:  make(map[string]map[string]int),
	}
}

// EdgeKey builds the canonical "a|b" key with sides sorted, so the same
// pair always maps to the same edge.
func EdgeKey(left, right string) string {
	if right < left {
		left, right = right, left
	}
	return left + "|" + right
}

// EdgeFactions splits an edge key back into its two factions.
func EdgeFactions(key string) (string, string, bool) {
	left, right, ok := strings.Cut(key, "|")
	if !ok {
		return "", "", false
	}
	return left, right, true
}

// EnsureEdge creates the edge at score zero when missing.
func (g *RelationshipGraph) EnsureEdge(left, right string) {
	if g.FactionEdges == nil {
		g.FactionEdges = make(map[string]int)
	}
	key := EdgeKey(left, right)
	if _, ok := g.FactionEdges[key]; !ok {
		g.FactionEdges[key] = 0
	}
}

// EnsureAffinity installs an npc affinity row when missing. Existing rows
// are never overwritten.
func (g *RelationshipGraph) EnsureAffinity(npc string, row map[string]int) {
	if g.NPCAffinity == nil {
		g.NPCAffinity = make(map[string]map[string]int)
	}
	if _, ok := g.NPCAffinity[npc]; !ok {
		copied := make(map[string]int, len(row))
		for faction, score := range row {
			copied[faction] = score
		}
		g.NPCAffinity[npc] = copied
	}
}

// SortedEdgeKeys returns the edge keys in lexical order. Seeded picks index
// into this slice, never into map iteration order.
func (g *RelationshipGraph) SortedEdgeKeys() []string {
	keys := make([]string, 0, len(g.FactionEdges))
	for key := range g.FactionEdges {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ApplyDelta nudges an edge by delta, clamps the score, and appends a
// bounded history record. It returns the updated score.
func (g *RelationshipGraph) ApplyDelta(key string, delta int, turn int, seedValue int64) int {
	if g.FactionEdges == nil {
		g.FactionEdges = make(map[string]int)
	}
	updated := clampInt(g.FactionEdges[key]+delta, EdgeScoreMin, EdgeScoreMax)
	g.FactionEdges[key] = updated

	g.History = append(g.History, RelationshipShift{
		Turn:  turn,
		Edge:  key,
		Delta: delta,
		Value: updated,
		Seed:  seedValue,
	})
	if overflow := len(g.History) - relationshipHistoryMax; overflow > 0 {
		g.History = g.History[overflow:]
	}
	return updated
}

// WorstNegativeMagnitude returns the largest absolute value among negative
// edges, or zero when no edge is negative.
func (g *RelationshipGraph) WorstNegativeMagnitude() int {
	worst := 0
	for _, score := range g.FactionEdges {
		if score < 0 && -score > worst {
			worst = -score
		}
	}
	return worst
}

// MostNegativePair returns the factions of the most negative edge. Ties
// resolve to the lexically smallest edge key so the answer is stable.
func (g *RelationshipGraph) MostNegativePair() (string, string, bool) {
	bestKey := ""
	bestScore := 0
	for _, key := range g.SortedEdgeKeys() {
		score := g.FactionEdges[key]
		if score < bestScore {
			bestScore = score
			bestKey = key
		}
	}
	if bestKey == "" {
		return "", "", false
	}
	return EdgeFactions(bestKey)
}
