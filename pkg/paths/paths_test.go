package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTilde(t *testing.T) {
	t.Parallel()

	homeDir := GetHomeDir()
	require.NotEmpty(t, homeDir, "Home directory should be available for tests")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "expands_tilde_prefix", input: "~/notes.md", expected: filepath.Join(homeDir, "notes.md")},
		{name: "expands_nested_path", input: "~/docs/guide/intro.md", expected: filepath.Join(homeDir, "docs", "guide", "intro.md")},
		{name: "just_tilde_slash_expands", input: "~/", expected: homeDir},
		{name: "absolute_path_unchanged", input: "/tmp/notes.md", expected: "/tmp/notes.md"},
		{name: "relative_path_unchanged", input: "notes.md", expected: "notes.md"},
		{name: "tilde_in_middle_unchanged", input: "/some/~/notes.md", expected: "/some/~/notes.md"},
		{name: "tilde_without_slash_unchanged", input: "~notes", expected: "~notes"},
		{name: "empty_string_unchanged", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := ExpandTilde(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDirs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "explainer", filepath.Base(GetConfigDir()))
	assert.Equal(t, ".explainer", filepath.Base(GetDataDir()))
}
