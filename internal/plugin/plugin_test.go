package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sable/internal/diag"
	"sable/internal/dialect"
	"sable/internal/jsparse"
)

func writePack(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func parseJS(t *testing.T, src string) *jsparse.Tree {
	t.Helper()
	tree, err := jsparse.Parse(context.Background(), []byte(src), dialect.JS, jsparse.Options{})
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

func TestLoadMissingDir(t *testing.T) {
	set, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Zero(t, set.Len())
}

func TestLoadPack(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "team.toml", `
name = "team-conventions"
version = "1.0.0"

[[rule]]
name = "team/no-todo"
severity = "warning"
node = "comment"
pattern = "TODO|FIXME"
message = "unresolved TODO marker"
help = "file a ticket instead"

[[rule]]
name = "team/no-console"
severity = "error"
pattern = "console\\.log"
message = "console.log left in source"
`)

	set, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"team-conventions"}, set.Packs())

	rules := set.Rules()
	assert.Equal(t, "team/no-todo", rules[0].Name)
	assert.Equal(t, diag.SevWarning, rules[0].Severity)
	assert.Equal(t, "comment", rules[0].Node)
	assert.Equal(t, diag.SevError, rules[1].Severity)
	assert.Empty(t, rules[1].Node)
}

func TestLoadPackNameDefaultsToFile(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "local.toml", `
[[rule]]
name = "x"
pattern = "x"
`)
	set, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"local"}, set.Packs())
	// severity по умолчанию warning, message подставляется
	assert.Equal(t, diag.SevWarning, set.Rules()[0].Severity)
	assert.NotEmpty(t, set.Rules()[0].Message)
}

func TestLoadErrors(t *testing.T) {
	t.Run("bad pattern", func(t *testing.T) {
		dir := t.TempDir()
		writePack(t, dir, "bad.toml", `
[[rule]]
name = "broken"
pattern = "(unclosed"
`)
		_, err := Load(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad.toml")
	})

	t.Run("bad severity", func(t *testing.T) {
		dir := t.TempDir()
		writePack(t, dir, "bad.toml", `
[[rule]]
name = "broken"
severity = "fatal"
pattern = "x"
`)
		_, err := Load(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fatal")
	})

	t.Run("missing name", func(t *testing.T) {
		dir := t.TempDir()
		writePack(t, dir, "bad.toml", `
[[rule]]
pattern = "x"
`)
		require.Error(t, func() error { _, err := Load(dir); return err }())
	})

	t.Run("duplicate across packs", func(t *testing.T) {
		dir := t.TempDir()
		writePack(t, dir, "a.toml", "[[rule]]\nname = \"dup\"\npattern = \"x\"\n")
		writePack(t, dir, "b.toml", "[[rule]]\nname = \"dup\"\npattern = \"y\"\n")
		_, err := Load(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dup")
	})
}

func TestCheckNodeRule(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "team.toml", `
[[rule]]
name = "team/no-todo"
node = "comment"
pattern = "TODO"
message = "unresolved TODO marker"
`)
	set, err := Load(dir)
	require.NoError(t, err)

	src := "// TODO: fix\nconst a = 1\nconst TODO = 2\n"
	tree := parseJS(t, src)
	findings, err := set.Check(context.Background(), tree, 1)
	require.NoError(t, err)
	// идентификатор TODO вне комментария совпадать не должен
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, diag.PluginRuleMatch, f.Code)
	assert.Equal(t, "team/no-todo", f.Rule)
	assert.Equal(t, "team/no-todo", f.DisplayCode())
	assert.Equal(t, "TODO", src[f.Primary().Start:f.Primary().End])
}

func TestCheckWholeFileRule(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "team.toml", `
[[rule]]
name = "team/no-console"
pattern = "console\\.log"
message = "console.log left in source"
severity = "error"
`)
	set, err := Load(dir)
	require.NoError(t, err)

	src := "console.log(1)\nconst a = 2\nconsole.log(a)\n"
	tree := parseJS(t, src)
	findings, err := set.Check(context.Background(), tree, 1)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	for _, f := range findings {
		assert.Equal(t, diag.SevError, f.Severity)
		assert.Equal(t, "console.log", src[f.Primary().Start:f.Primary().End])
	}
}

func TestCheckCanceled(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "team.toml", "[[rule]]\nname = \"x\"\npattern = \"x\"\n")
	set, err := Load(dir)
	require.NoError(t, err)

	tree := parseJS(t, "const x = 1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = set.Check(ctx, tree, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSlotReplace(t *testing.T) {
	var slot Slot
	tree := parseJS(t, "// TODO\n")

	// пустой слот молчит
	findings, err := slot.Check(context.Background(), tree, 1)
	require.NoError(t, err)
	assert.Empty(t, findings)
	assert.Zero(t, slot.Len())

	dir := t.TempDir()
	writePack(t, dir, "a.toml", "[[rule]]\nname = \"a/todo\"\nnode = \"comment\"\npattern = \"TODO\"\n")
	set, err := Load(dir)
	require.NoError(t, err)
	slot.Replace(set)

	findings, err = slot.Check(context.Background(), tree, 1)
	require.NoError(t, err)
	assert.Len(t, findings, 1)
	assert.Equal(t, []string{"a"}, slot.Packs())

	// замена вытесняет прежний набор целиком
	dir2 := t.TempDir()
	writePack(t, dir2, "b.toml", "[[rule]]\nname = \"b/fixme\"\nnode = \"comment\"\npattern = \"FIXME\"\n")
	set2, err := Load(dir2)
	require.NoError(t, err)
	slot.Replace(set2)

	findings, err = slot.Check(context.Background(), tree, 1)
	require.NoError(t, err)
	assert.Empty(t, findings, "rules from the replaced set must not fire")
}

func TestRegexCacheReuse(t *testing.T) {
	re1, err := compilePattern("cache-me-[0-9]+")
	require.NoError(t, err)
	re2, err := compilePattern("cache-me-[0-9]+")
	require.NoError(t, err)
	assert.Same(t, re1, re2)
}
