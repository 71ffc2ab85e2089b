package config_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwuu/rokuloader/internal/config"
)

func TestPrompter_Prompt(t *testing.T) {
	output := &bytes.Buffer{}
	prompter := config.NewPrompter(strings.NewReader("  192.168.1.10 \n"), output)

	result, err := prompter.Prompt("Hostname: ")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.10", result)
	assert.Equal(t, "Hostname: ", output.String())
}

func TestPrompter_PromptEOF(t *testing.T) {
	prompter := config.NewPrompter(strings.NewReader(""), &bytes.Buffer{})

	result, err := prompter.Prompt("Hostname: ")
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestPrompter_PromptPasswordNonTerminal(t *testing.T) {
	prompter := config.NewPrompter(strings.NewReader("s3cret\n"), &bytes.Buffer{})

	assert.False(t, prompter.IsInteractive())
	result, err := prompter.PromptPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", result)
}

func TestPrompter_PromptConfirm(t *testing.T) {
	tests := []struct {
		input      string
		defaultYes bool
		expected   bool
	}{
		{"y\n", false, true},
		{"yes\n", false, true},
		{"Y\n", false, true},
		{"n\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
		{"maybe\n", true, false},
	}

	for _, tt := range tests {
		prompter := config.NewPrompter(strings.NewReader(tt.input), &bytes.Buffer{})
		result, err := prompter.PromptConfirm("保存?", tt.defaultYes)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, result, "input %q default %v", tt.input, tt.defaultYes)
	}
}
