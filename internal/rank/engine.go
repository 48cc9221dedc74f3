// Package rank orders heat-map clusters and issue-category distributions by
// how much municipal attention they need. Ranking is pure computation over
// data the dashboard already fetched; nothing here talks to the service.
package rank

import (
	"math"
	"sort"
	"strings"

	"github.com/civica-dev/civica/config"
	"github.com/civica-dev/civica/internal/model"
)

// urgencyByCategory mirrors the weighting the service applies when scoring
// new reports (0-10 scale). Unknown categories fall back to defaultUrgency.
var urgencyByCategory = map[string]int{
	"electrical":       9,
	"sewage":           8,
	"street light":     8,
	"water supply":     7,
	"drainage":         7,
	"pothole":          6,
	"road repair":      6,
	"public transport": 5,
	"cleaning":         4,
	"other":            5,
}

const defaultUrgency = 5

// Engine ranks analytics data into severity buckets
type Engine struct {
	weights config.SeverityWeights
}

// NewEngine creates a ranking engine with the given weights
func NewEngine(weights config.SeverityWeights) *Engine {
	return &Engine{weights: weights}
}

// RankHotspots scores heat-map clusters and sorts them by severity, then by
// score descending within each severity.
func (e *Engine) RankHotspots(points []model.HeatPoint) []Hotspot {
	hotspots := make([]Hotspot, 0, len(points))

	for _, p := range points {
		score := e.score(p)
		hotspots = append(hotspots, Hotspot{
			Cluster:  p,
			Score:    score,
			Severity: e.severity(p, score),
		})
	}

	severityOrder := map[Severity]int{
		SeverityHigh:     0,
		SeverityElevated: 1,
		SeverityNormal:   2,
	}

	sort.SliceStable(hotspots, func(i, j int) bool {
		si, sj := severityOrder[hotspots[i].Severity], severityOrder[hotspots[j].Severity]
		if si != sj {
			return si < sj
		}
		return hotspots[i].Score > hotspots[j].Score
	})

	return hotspots
}

// score combines cluster size with the service-reported average priority
func (e *Engine) score(p model.HeatPoint) int {
	score := p.IssueCount * e.weights.CountWeight
	if p.AvgPriority != nil {
		score += int(math.Round(*p.AvgPriority * float64(e.weights.PriorityWeight)))
	}
	return max(score, 0)
}

// severity buckets a scored cluster. Clusters whose average priority reaches
// UrgentPriority rank High outright; isolated reports never do, whatever
// their score.
func (e *Engine) severity(p model.HeatPoint, score int) Severity {
	bigEnough := p.IssueCount >= e.weights.MinHighCount

	if bigEnough && p.AvgPriority != nil && *p.AvgPriority >= e.weights.UrgentPriority {
		return SeverityHigh
	}

	if score >= e.weights.HighThreshold {
		if bigEnough {
			return SeverityHigh
		}
		return SeverityElevated
	}

	if score >= e.weights.ElevatedThreshold {
		return SeverityElevated
	}

	return SeverityNormal
}

// RankCategories weights an issue-type distribution by per-category urgency
// and sorts by the resulting pressure, highest first.
func (e *Engine) RankCategories(counts []model.TypeCount) []CategoryRank {
	ranks := make([]CategoryRank, 0, len(counts))

	for _, c := range counts {
		urgency := urgencyFor(c.Category)
		ranks = append(ranks, CategoryRank{
			Category:   c.Category,
			Count:      c.Count,
			Percentage: c.Percentage,
			Urgency:    urgency,
			Score:      c.Count * urgency,
		})
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Score != ranks[j].Score {
			return ranks[i].Score > ranks[j].Score
		}
		return ranks[i].Category < ranks[j].Category
	})

	return ranks
}

// FilterBySeverity filters hotspots by a specific severity
func FilterBySeverity(hotspots []Hotspot, target Severity) []Hotspot {
	filtered := make([]Hotspot, 0, len(hotspots))
	for _, h := range hotspots {
		if h.Severity == target {
			filtered = append(filtered, h)
		}
	}
	return filtered
}

// Top returns the first n hotspots of an already ranked slice
func Top(hotspots []Hotspot, n int) []Hotspot {
	if n < 0 || n >= len(hotspots) {
		return hotspots
	}
	return hotspots[:n]
}

// normalizeCategory converts a category to a normalized form for lookup
// by lowercasing and treating hyphens and spaces as equivalent
func normalizeCategory(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "-", " "))
}

func urgencyFor(category string) int {
	if u, ok := urgencyByCategory[normalizeCategory(category)]; ok {
		return u
	}
	return defaultUrgency
}
