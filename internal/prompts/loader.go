// Package prompts holds the LLM prompt templates, embedded from JSON files
// mapping a prompt key to its text.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
)

//go:embed *.json
var files embed.FS

// placeholder matches {{.Key}}
var placeholder = regexp.MustCompile(`\{\{\.([A-Za-z0-9_]+)\}\}`)

// Template is a prompt text with the names of the placeholders it uses
type Template struct {
	Text         string
	Placeholders []string
}

// parsed caches filename -> key -> Template
var parsed sync.Map

// Lookup returns the template stored under key in filename, e.g. Lookup("letters.json", "match-letter").
func Lookup(filename, key string) (Template, error) {
	templates, err := load(filename)
	if err != nil {
		return Template{}, err
	}
	t, ok := templates[key]
	if !ok {
		return Template{}, fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return t, nil
}

// Fill renders a stored template, failing when a placeholder has no value
func Fill(filename, key string, values map[string]string) (string, error) {
	t, err := Lookup(filename, key)
	if err != nil {
		return "", err
	}

	var missing []string
	for _, name := range t.Placeholders {
		if _, ok := values[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %s/%s is missing values for: %s", filename, key, strings.Join(missing, ", "))
	}

	return Substitute(t.Text, values), nil
}

// Substitute replaces {{.Key}} placeholders in a single pass. Placeholders
// without a value are left as they are.
func Substitute(text string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		if v, ok := values[match[3:len(match)-2]]; ok {
			return v
		}
		return match
	})
}

func load(filename string) (map[string]Template, error) {
	if cached, ok := parsed.Load(filename); ok {
		return cached.(map[string]Template), nil
	}

	data, err := files.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	templates := make(map[string]Template, len(raw))
	for key, text := range raw {
		var names []string
		for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
			if !slices.Contains(names, m[1]) {
				names = append(names, m[1])
			}
		}
		templates[key] = Template{Text: text, Placeholders: names}
	}

	actual, _ := parsed.LoadOrStore(filename, templates)
	return actual.(map[string]Template), nil
}
