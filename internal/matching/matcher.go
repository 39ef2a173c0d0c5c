package matching

import (
	"strings"

	"github.com/jonathan/consultant-match/internal/parsing"
)

// ItemMatcher decides whether a consultant item satisfies a required item.
// Implementations must be safe for concurrent use.
type ItemMatcher interface {
	Matches(required, candidate string) bool
}

// SubstringMatcher matches on case-insensitive substring containment.
// When Bidirectional is set a required item also matches if it contains the
// candidate ("JS" vs "JavaScript"), which trades false positives such as
// "Java" matching "JavaScript" for tolerance of naming variants.
type SubstringMatcher struct {
	Bidirectional bool
}

// Matches implements ItemMatcher. Blank items never match.
func (m SubstringMatcher) Matches(required, candidate string) bool {
	req := strings.ToLower(strings.TrimSpace(required))
	cand := strings.ToLower(strings.TrimSpace(candidate))
	if req == "" || cand == "" {
		return false
	}
	if strings.Contains(cand, req) {
		return true
	}
	return m.Bidirectional && strings.Contains(req, cand)
}

// ExactMatcher matches case-insensitive equal strings.
type ExactMatcher struct{}

// Matches implements ItemMatcher.
func (ExactMatcher) Matches(required, candidate string) bool {
	req := strings.TrimSpace(required)
	cand := strings.TrimSpace(candidate)
	return req != "" && strings.EqualFold(req, cand)
}

// SynonymMatcher resolves known aliases ("k8s", "golang") to canonical names
// before delegating to Next.
type SynonymMatcher struct {
	Next ItemMatcher
}

// Matches implements ItemMatcher.
func (m SynonymMatcher) Matches(required, candidate string) bool {
	next := m.Next
	if next == nil {
		next = SubstringMatcher{Bidirectional: true}
	}
	return next.Matches(parsing.NormalizeSkillName(required), parsing.NormalizeSkillName(candidate))
}

// matchedItems returns the required items satisfied by at least one candidate,
// in required order and with the required item's original casing.
func matchedItems(m ItemMatcher, required, candidates []string) []string {
	matched := make([]string, 0, len(required))
	for _, req := range required {
		for _, cand := range candidates {
			if m.Matches(req, cand) {
				matched = append(matched, req)
				break
			}
		}
	}
	return matched
}
