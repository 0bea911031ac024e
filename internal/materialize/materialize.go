// Package materialize turns a finished vfs.Tree into something outside the
// generator: a serializable snapshot, files on a billy filesystem, a
// project directory on disk, or a SQLite node table.
//
// Only fully successful generations should be materialized. Every adapter
// reports through api.MaterializeResult instead of returning an error so
// callers can hand the result straight to a UI or an agent.
package materialize

import (
	"fmt"
	"os"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/stackgen/api"
	"github.com/agentic-research/stackgen/internal/vfs"
)

// Snapshot returns an immutable copy of tree rooted at the project name.
func Snapshot(tree *vfs.Tree, cfg *api.Config) *api.Snapshot {
	return &api.Snapshot{
		Root:           tree.ToTree(cfg.ProjectName),
		FileCount:      tree.FileCount(),
		DirectoryCount: tree.DirectoryCount(),
		Config:         *cfg.Clone(),
	}
}

// ToSnapshot is the in-memory adapter.
func ToSnapshot(tree *vfs.Tree, cfg *api.Config) api.MaterializeResult {
	return api.MaterializeResult{Success: true, Snapshot: Snapshot(tree, cfg)}
}

// ToFilesystem writes every node of tree into fsys.
func ToFilesystem(tree *vfs.Tree, fsys billy.Filesystem) api.MaterializeResult {
	if err := writeTree(tree, fsys); err != nil {
		return failed(err)
	}
	return api.MaterializeResult{Success: true}
}

func writeTree(tree *vfs.Tree, fsys billy.Filesystem) error {
	return tree.Walk(func(info vfs.Info, data []byte) error {
		if info.IsDir() {
			if err := fsys.MkdirAll(info.Path, 0o755); err != nil {
				return fmt.Errorf("mkdir %s: %w", info.Path, err)
			}
			return nil
		}
		perm := os.FileMode(0o644)
		if info.Executable {
			perm = 0o755
		}
		if err := util.WriteFile(fsys, info.Path, data, perm); err != nil {
			return fmt.Errorf("write %s: %w", info.Path, err)
		}
		return nil
	})
}

func failed(err error) api.MaterializeResult {
	return api.MaterializeResult{Success: false, Error: err.Error()}
}
