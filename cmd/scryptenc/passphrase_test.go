package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLine(t *testing.T) {
	tests := map[string]string{
		"secret\nrest":   "secret",
		"secret\r\n":     "secret",
		"no line ending": "no line ending",
		"\n":             "",
	}
	for input, want := range tests {
		got, err := readLine(strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}

	_, err := readLine(strings.NewReader(""))
	assert.Error(t, err)
}

func TestPassphraseFlags_Validate(t *testing.T) {
	assert.NoError(t, (&passphraseFlags{}).validate())
	assert.NoError(t, (&passphraseFlags{env: "VAR"}).validate())
	assert.ErrorIs(t, (&passphraseFlags{tty: true, ttyOnce: true}).validate(), errUsage)
	assert.ErrorIs(t, (&passphraseFlags{file: "f", stdin: true}).validate(), errUsage)
}
