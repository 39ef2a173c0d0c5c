// Package parsing normalizes free-text consultant and assignment fields.
package parsing

import (
	"strings"
)

// skillAliases maps common skill name variants to canonical names
var skillAliases = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"ecmascript": "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"react.js":   "React",
	"reactjs":    "React",
	"vue.js":     "Vue",
	"vuejs":      "Vue",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"node":       "Node.js",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"psql":       "PostgreSQL",
	"c#":         "C#",
	"csharp":     "C#",
	"dotnet":     ".NET",
	".net":       ".NET",
	"aws":        "AWS",
	"gcp":        "GCP",
	"ux":         "UX",
	"ui":         "UI",
}

// NormalizeSkillName normalizes a skill name to its canonical form
func NormalizeSkillName(skillName string) string {
	normalized := strings.TrimSpace(skillName)
	if normalized == "" {
		return ""
	}

	lower := strings.ToLower(normalized)
	if canonical, ok := skillAliases[lower]; ok {
		return canonical
	}

	// All-caps single words that aren't known acronyms get a leading capital only
	if normalized == strings.ToUpper(normalized) && len(normalized) > 1 && !strings.Contains(lower, " ") {
		return strings.ToUpper(normalized[:1]) + strings.ToLower(normalized[1:])
	}

	// Mixed case is kept as written
	if normalized != strings.ToLower(normalized) {
		return normalized
	}

	if !strings.Contains(normalized, " ") {
		return strings.ToUpper(normalized[:1]) + normalized[1:]
	}

	return normalized
}

// NormalizeList trims every entry and drops the blank ones.
// A nil input yields an empty, non-nil slice.
func NormalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
