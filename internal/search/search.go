// Package search resolves free-text program queries against the catalog
// of installed programs.
package search

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/dlcscan/internal/discovery"
	"github.com/mmcdole/dlcscan/internal/domain"
)

// Match is a catalog entry ranked against a query
type Match struct {
	Entry discovery.CatalogEntry
	Score int // Lower is better
}

// Service ranks catalog entries by name
type Service struct {
	logger *slog.Logger
}

// NewService creates a search service
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Rank returns every entry that matches query, best first. A query of the
// form "platform:id" or a bare id matches that program exactly.
func (s *Service) Rank(query string, entries []discovery.CatalogEntry) []Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var matches []Match
	for _, e := range entries {
		if strings.EqualFold(e.Key.String(), query) || strings.EqualFold(e.Key.ID, query) {
			matches = append(matches, Match{Entry: e, Score: -1})
		}
	}
	if len(matches) > 0 {
		return matches
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}

	// RankFindFold drops non-subsequence candidates; the rest are scored
	for _, rank := range fuzzy.RankFindFold(query, names) {
		e := entries[rank.OriginalIndex]
		matches = append(matches, Match{Entry: e, Score: matchScore(strings.ToLower(e.Name), query)})
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		if a.Score != b.Score {
			return a.Score - b.Score
		}
		return len(a.Entry.Name) - len(b.Entry.Name)
	})

	s.logger.Debug("ranked programs", "query", query, "matches", len(matches))
	return matches
}

// Resolve maps each query to its best entry. Queries that match nothing
// are returned separately.
func (s *Service) Resolve(queries []string, entries []discovery.CatalogEntry) ([]domain.ProgramKey, []string) {
	var keys []domain.ProgramKey
	var unmatched []string
	for _, q := range queries {
		matches := s.Rank(q, entries)
		if len(matches) == 0 {
			unmatched = append(unmatched, q)
			continue
		}
		if key := matches[0].Entry.Key; !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	return keys, unmatched
}

// matchScore scores a lowercase name against a lowercase query.
// Lower = better.
func matchScore(name, query string) int {
	switch {
	case name == query:
		return 0
	case strings.HasPrefix(name, query):
		return 10
	case strings.Contains(name, query):
		return 50
	default:
		return 100 + fuzzy.LevenshteinDistance(query, name)
	}
}
