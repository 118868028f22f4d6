package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmIfExistsMissingPathIsOK(t *testing.T) {
	dir := t.TempDir()
	ok, err := confirmIfExists(filepath.Join(dir, "nope.yml"), "overwrite?")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConfirmIfExistsExistingPathAsksUser(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present.yml")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	stdin, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdin
	os.Stdin = stdin
	defer func() { os.Stdin = orig }()

	go func() {
		w.WriteString("y\n")
		w.Close()
	}()

	ok, err := confirmIfExists(path, "overwrite?")
	require.NoError(t, err)
	assert.True(t, ok)
}
