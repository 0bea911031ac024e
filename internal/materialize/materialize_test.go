package materialize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/stackgen/api"
	"github.com/agentic-research/stackgen/internal/vfs"
)

func sampleTree(t *testing.T) *vfs.Tree {
	t.Helper()
	tree := vfs.New()
	require.NoError(t, tree.WriteString("package.json", `{"name":"demo"}`, vfs.WriteOptions{Origin: "base"}))
	require.NoError(t, tree.WriteString("apps/server/src/index.ts", "export {}\n", vfs.WriteOptions{Origin: "backend", Template: true}))
	require.NoError(t, tree.WriteString("scripts/setup.sh", "#!/bin/sh\n", vfs.WriteOptions{Origin: "db-setup", Executable: true}))
	require.NoError(t, tree.Write("public/favicon.ico", []byte{0, 1, 2}, vfs.WriteOptions{Origin: "frontend", Binary: true}))
	return tree
}

func sampleConfig() *api.Config {
	return &api.Config{ProjectName: "demo", Ecosystem: api.EcosystemTypeScript, Frontend: []api.Frontend{api.FrontendNext}}
}

func TestSnapshot_DoesNotAliasTreeOrConfig(t *testing.T) {
	tree := sampleTree(t)
	cfg := sampleConfig()

	snap := Snapshot(tree, cfg)
	assert.Equal(t, "demo", snap.Root.Name)
	assert.Equal(t, tree.FileCount(), snap.FileCount)
	assert.Equal(t, tree.DirectoryCount(), snap.DirectoryCount)

	cfg.Frontend[0] = api.FrontendNuxt
	assert.Equal(t, api.FrontendNext, snap.Config.Frontend[0])

	require.NoError(t, tree.WriteString("late.txt", "x", vfs.WriteOptions{}))
	for _, c := range snap.Root.Children {
		assert.NotEqual(t, "late.txt", c.Name)
	}
}

func TestToFilesystem_WritesEveryFile(t *testing.T) {
	tree := sampleTree(t)
	fs := memfs.New()

	res := ToFilesystem(tree, fs)
	require.True(t, res.Success, res.Error)

	for _, p := range tree.Files() {
		want, err := tree.Read(p)
		require.NoError(t, err)
		got, err := util.ReadFile(fs, p)
		require.NoError(t, err, p)
		assert.Equal(t, want, got, p)
	}
	info, err := fs.Stat("scripts/setup.sh")
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100, "setup.sh keeps its executable bit")
}

func TestToDirectory_RenamesIntoPlace(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")

	res := ToDirectory(sampleTree(t), dir, false)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, dir, res.Directory)

	data, err := os.ReadFile(filepath.Join(dir, "apps", "server", "src", "index.ts"))
	require.NoError(t, err)
	assert.Equal(t, "export {}\n", string(data))

	info, err := os.Stat(filepath.Join(dir, "scripts", "setup.sh"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o100)

	entries, err := os.ReadDir(filepath.Dir(dir))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no staging directory is left behind")
}

func TestToDirectory_ExistingTarget(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.txt"), []byte("old"), 0o644))

	res := ToDirectory(sampleTree(t), dir, false)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, ErrExists.Error())
	assert.FileExists(t, filepath.Join(dir, "old.txt"))

	res = ToDirectory(sampleTree(t), dir, true)
	require.True(t, res.Success, res.Error)
	assert.NoFileExists(t, filepath.Join(dir, "old.txt"))
	assert.FileExists(t, filepath.Join(dir, "package.json"))
}

func TestSQLite_RoundTrip(t *testing.T) {
	tree := sampleTree(t)
	db := filepath.Join(t.TempDir(), "demo.db")

	res := ToSQLite(tree, sampleConfig(), db)
	require.True(t, res.Success, res.Error)

	got, cfg, err := LoadSQLite(db)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.ProjectName)
	assert.Equal(t, tree.Files(), got.Files())
	assert.Equal(t, tree.FileCount(), got.FileCount())
	assert.Equal(t, tree.DirectoryCount(), got.DirectoryCount())

	for _, p := range tree.Files() {
		want, _ := tree.Stat(p)
		have, err := got.Stat(p)
		require.NoError(t, err)
		assert.Equal(t, want.Executable, have.Executable, p)
		assert.Equal(t, want.Binary, have.Binary, p)
		assert.Equal(t, want.Origin, have.Origin, p)
	}
	icon, err := got.Read("public/favicon.ico")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2}, icon)

	// A second build replaces the database instead of failing on ids.
	res = ToSQLite(tree, sampleConfig(), db)
	assert.True(t, res.Success, res.Error)
}

func TestLoadSQLite_Missing(t *testing.T) {
	_, _, err := LoadSQLite(filepath.Join(t.TempDir(), "none.db"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
