package parsing

import (
	"regexp"
	"strconv"
	"strings"
)

var yearsPattern = regexp.MustCompile(`\d+`)

// ExperienceYears extracts a whole number of years from free text such as
// "7 years", "5+" or "about 12 yrs". Text without digits yields 0.
func ExperienceYears(text string) int {
	match := yearsPattern.FindString(strings.TrimSpace(text))
	if match == "" {
		return 0
	}

	years, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return years
}
