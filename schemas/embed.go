// Package schemas embeds the JSON Schemas for the CLI input and output files.
package schemas

import "embed"

// Schema file names
const (
	Assignment   = "assignment.schema.json"
	Consultant   = "consultant.schema.json"
	Consultants  = "consultants.schema.json"
	MatchResults = "match_results.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Read returns the raw content of an embedded schema
func Read(name string) ([]byte, error) {
	return files.ReadFile(name)
}

// Names lists the embedded schema files
func Names() []string {
	return []string{Assignment, Consultant, Consultants, MatchResults}
}
