// Package records converts database rows and loosely typed JSON into the
// canonical assignment and consultant records used by the scorer.
package records

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/mitchellh/mapstructure"

	"github.com/jonathan/consultant-match/internal/parsing"
	"github.com/jonathan/consultant-match/internal/types"
)

type looseAssignment struct {
	ID                        string   `mapstructure:"id"`
	Title                     string   `mapstructure:"title"`
	Company                   string   `mapstructure:"company"`
	RequiredSkills            []string `mapstructure:"required_skills"`
	RequiredValues            []string `mapstructure:"required_values"`
	DesiredCommunicationStyle string   `mapstructure:"desired_communication_style"`
	TeamCulture               string   `mapstructure:"team_culture"`
	LeadershipLevel           any      `mapstructure:"leadership_level"`
}

type looseConsultant struct {
	ID                 string   `mapstructure:"id"`
	Name               string   `mapstructure:"name"`
	Title              string   `mapstructure:"title"`
	Skills             []string `mapstructure:"skills"`
	Values             []string `mapstructure:"values"`
	CommunicationStyle string   `mapstructure:"communication_style"`
	TeamFit            string   `mapstructure:"team_fit"`
	ExperienceYears    any      `mapstructure:"experience_years"`
	Experience         any      `mapstructure:"experience"`
	Leadership         any      `mapstructure:"leadership"`
}

// DecodeAssignment builds an Assignment from a JSON object. Keys may be
// camelCase or snake_case. Missing lists become empty lists and a
// comma-separated string is accepted where a list is expected.
func DecodeAssignment(raw map[string]any) (*types.Assignment, error) {
	var loose looseAssignment
	if err := decode(raw, &loose); err != nil {
		return nil, fmt.Errorf("failed to decode assignment: %w", err)
	}

	a := &types.Assignment{
		ID:                        loose.ID,
		Title:                     loose.Title,
		Company:                   loose.Company,
		RequiredSkills:            nonNil(loose.RequiredSkills),
		RequiredValues:            nonNil(loose.RequiredValues),
		DesiredCommunicationStyle: strings.TrimSpace(loose.DesiredCommunicationStyle),
		TeamCulture:               strings.TrimSpace(loose.TeamCulture),
	}
	if level, ok := toInt(loose.LeadershipLevel); ok {
		a.LeadershipLevel = &level
	}
	return a, nil
}

// DecodeConsultant builds a Consultant from a JSON object. Experience may be
// a number or free text such as "7 years".
func DecodeConsultant(raw map[string]any) (*types.Consultant, error) {
	var loose looseConsultant
	if err := decode(raw, &loose); err != nil {
		return nil, fmt.Errorf("failed to decode consultant: %w", err)
	}

	c := &types.Consultant{
		ID:                 loose.ID,
		Name:               loose.Name,
		Title:              loose.Title,
		Skills:             nonNil(loose.Skills),
		Values:             nonNil(loose.Values),
		CommunicationStyle: strings.TrimSpace(loose.CommunicationStyle),
		TeamFit:            strings.TrimSpace(loose.TeamFit),
	}

	if years, ok := toInt(loose.ExperienceYears); ok {
		c.ExperienceYears = years
	}
	switch v := loose.Experience.(type) {
	case string:
		c.Experience = v
	case nil:
	default:
		if years, ok := toInt(v); ok && c.ExperienceYears == 0 {
			c.ExperienceYears = years
		}
	}
	if level, ok := toInt(loose.Leadership); ok {
		c.Leadership = level
	}
	return c, nil
}

// DecodeConsultantsJSON decodes the elements of a JSON array of consultants.
// check, when non-nil, runs on each element before decoding. Elements that
// fail the check, are not objects, or cannot be decoded are reported and
// left nil; the output keeps the input's length.
func DecodeConsultantsJSON(items []json.RawMessage, check func([]byte) error) ([]*types.Consultant, []error) {
	consultants := make([]*types.Consultant, len(items))
	var errs []error
	for i, item := range items {
		if check != nil {
			if err := check(item); err != nil {
				errs = append(errs, fmt.Errorf("consultant %d: %w", i, err))
				continue
			}
		}
		var raw map[string]any
		if err := json.Unmarshal(item, &raw); err != nil {
			errs = append(errs, fmt.Errorf("consultant %d: not an object: %w", i, err))
			continue
		}
		if raw == nil {
			errs = append(errs, fmt.Errorf("consultant %d: record is null", i))
			continue
		}
		c, err := DecodeConsultant(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("consultant %d: %w", i, err))
			continue
		}
		consultants[i] = c
	}
	return consultants, errs
}

func decode(raw map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       splitListHook,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(snakeKeys(raw))
}

// splitListHook turns "Go, Rust" into ["Go", "Rust"] for list fields
func splitListHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice || to.Elem().Kind() != reflect.String {
		return data, nil
	}
	s, _ := data.(string)
	return parsing.NormalizeList(strings.Split(s, ",")), nil
}

// snakeKeys returns a copy of raw with camelCase keys rewritten to snake_case
func snakeKeys(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		key := toSnake(k)
		// An explicit snake_case key wins over its camelCase twin
		if _, exists := out[key]; exists && key != k {
			continue
		}
		out[key] = v
	}
	return out
}

func toSnake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// toInt interprets numbers, numeric strings and free text like "5+" as an
// int. Results are clamped to the 32-bit range of the integer columns.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case int:
		return clampInt32(int64(n)), true
	case int64:
		return clampInt32(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(max(math.MinInt32, min(math.MaxInt32, n))), true
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return clampInt32(i), true
		}
		if years := parsing.ExperienceYears(n); years > 0 {
			return clampInt32(int64(years)), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func clampInt32(n int64) int {
	return int(max(math.MinInt32, min(math.MaxInt32, n)))
}
