package preprocessor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophia8vm/sophia8/pkg/preprocessor"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExpandFlattensInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.s8", "SET #1, R0\n")
	entry := writeFile(t, dir, "main.s8", "start:\n.include \"lib.s8\"\nHALT\n")

	lines, err := preprocessor.Expand(entry)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, "start:", lines[0].Text)
	assert.Equal(t, "SET #1, R0", lines[1].Text)
	assert.Equal(t, "HALT", lines[2].Text)

	assert.Equal(t, 1, lines[0].Line)
	assert.Equal(t, 1, lines[1].Line, "included line keeps its own file's line number")
	assert.Equal(t, 3, lines[2].Line)

	assert.Len(t, lines[1].Chain, 2, "included line's chain includes both files")
}

func TestExpandKeepsCommentOnlyLines(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.s8", "; a full line comment\nHALT ; trailing comment\n")

	lines, err := preprocessor.Expand(entry)
	require.NoError(t, err)
	require.Len(t, lines, 2, "comment stripping happens later; the preprocessor only interprets .include")
	assert.Equal(t, "; a full line comment", lines[0].Text)
	assert.Equal(t, "HALT ; trailing comment", lines[1].Text)
}

func TestExpandDetectsIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.s8", ".include \"b.s8\"\n")
	writeFile(t, dir, "b.s8", ".include \"a.s8\"\n")

	_, err := preprocessor.Expand(filepath.Join(dir, "a.s8"))
	require.Error(t, err)

	var cycleErr *preprocessor.IncludeCycleError
	require.ErrorAs(t, err, &cycleErr)
	require.Len(t, cycleErr.Chain, 3)
	assert.Equal(t, filepath.Base(cycleErr.Chain[0]), "a.s8")
	assert.Equal(t, filepath.Base(cycleErr.Chain[1]), "b.s8")
	assert.Equal(t, filepath.Base(cycleErr.Chain[2]), "a.s8")
}

func TestExpandDetectsMultipleInclusionWithoutCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "common.s8", "HALT\n")
	writeFile(t, dir, "a.s8", ".include \"common.s8\"\n")
	writeFile(t, dir, "b.s8", ".include \"common.s8\"\n")
	entry := writeFile(t, dir, "main.s8", ".include \"a.s8\"\n.include \"b.s8\"\n")

	_, err := preprocessor.Expand(entry)
	require.Error(t, err)

	var multiErr *preprocessor.MultipleInclusionError
	require.ErrorAs(t, err, &multiErr)
}

func TestExpandRejectsMissingInclude(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.s8", ".include \"nope.s8\"\n")

	_, err := preprocessor.Expand(entry)
	require.Error(t, err)

	var notFound *preprocessor.FileNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestExpandRejectsMalformedIncludeSyntax(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.s8", ".include lib.s8\n")

	_, err := preprocessor.Expand(entry)
	require.Error(t, err)

	var syntaxErr *preprocessor.InvalidIncludeSyntaxError
	require.ErrorAs(t, err, &syntaxErr)
}

func TestExpandResolvesRelativeToIncludingFileFirst(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sub/lib.s8", "INC R0\n")
	writeFile(t, dir, "sub/mid.s8", ".include \"lib.s8\"\n")
	entry := writeFile(t, dir, "main.s8", ".include \"sub/mid.s8\"\n")

	lines, err := preprocessor.Expand(entry)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "INC R0", lines[0].Text)
}

func TestExpandFallsBackToEntryFileDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.s8", "DEC R0\n")
	writeFile(t, dir, "sub/mid.s8", ".include \"lib.s8\"\n")
	entry := writeFile(t, dir, "main.s8", ".include \"sub/mid.s8\"\n")

	lines, err := preprocessor.Expand(entry)
	require.NoError(t, err, "lib.s8 isn't next to mid.s8, so resolution must fall back to the entry file's directory")
	require.Len(t, lines, 1)
	assert.Equal(t, "DEC R0", lines[0].Text)
}

func TestExpandMissingEntryFile(t *testing.T) {
	_, err := preprocessor.Expand("/nonexistent/path/main.s8")
	require.Error(t, err)

	var notFound *preprocessor.FileNotFoundError
	require.ErrorAs(t, err, &notFound)
}
