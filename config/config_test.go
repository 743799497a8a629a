package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dekarrin/gparse/grammar"
	"github.com/dekarrin/gparse/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gparse.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func Test_Load_missingKeysLeaveOptionsUntouched(t *testing.T) {
	assert := assert.New(t)
	path := writeDoc(t, `tables = "SLR"`)

	doc, err := Load(path)
	require.NoError(t, err)

	opts := parser.Options{PreferShifts: true}
	doc.ApplyToParser(&opts)

	assert.Equal("SLR", opts.Mode)
	assert.True(opts.PreferShifts, "already-set field must survive untouched")
}

func Test_Load_definedFieldsFillZeroValues(t *testing.T) {
	assert := assert.New(t)
	path := writeDoc(t, `
tables = "LALR"
prefer_shifts = true
prefer_shifts_over_empty = true
ws = ""
`)

	doc, err := Load(path)
	require.NoError(t, err)

	var opts parser.Options
	doc.ApplyToParser(&opts)

	assert.Equal("LALR", opts.Mode)
	assert.True(opts.PreferShifts)
	assert.True(opts.PreferShiftsOverEmpty)
	require.NotNil(t, opts.Ws)
	assert.Equal("", *opts.Ws)
}

func Test_Load_programmaticOptionsTakePrecedence(t *testing.T) {
	assert := assert.New(t)
	path := writeDoc(t, `tables = "SLR"`)

	doc, err := Load(path)
	require.NoError(t, err)

	opts := parser.Options{Mode: "LALR"}
	doc.ApplyToParser(&opts)

	assert.Equal("LALR", opts.Mode, "document must not override an already-chosen mode")
}

func Test_ApplyToGrammar_parsesReFlags(t *testing.T) {
	assert := assert.New(t)
	path := writeDoc(t, `re_flags = "im"`)

	doc, err := Load(path)
	require.NoError(t, err)

	var gopts grammar.Options
	err = doc.ApplyToGrammar(&gopts)
	require.NoError(t, err)
	assert.NotZero(gopts.ReFlags)
}
