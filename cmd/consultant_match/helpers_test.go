package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolateEnv clears the variables that would otherwise reach real services
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "CM_DATABASE_URL",
		"REDIS_URL", "CM_REDIS_URL",
		"GEMINI_API_KEY", "CM_API_KEY",
		"JWT_SECRET", "CM_JWT_SECRET",
		"PORT", "CM_PORT",
		"CM_LETTERS", "CM_SEED", "CM_WORKERS", "CM_VERBOSE",
	} {
		t.Setenv(key, "")
	}
}

// execute runs the root command with args and returns stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	isolateEnv(t)

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
