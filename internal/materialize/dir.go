package materialize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"

	"github.com/agentic-research/stackgen/api"
	"github.com/agentic-research/stackgen/internal/vfs"
)

// ErrExists is returned when the target directory exists and overwrite
// was not requested.
var ErrExists = errors.New("target directory exists")

// ToDirectory writes tree to dir. The project is staged in a sibling
// temporary directory and renamed into place, so a failed write never
// leaves a partial project behind. With overwrite an existing dir is
// replaced only after staging succeeds.
func ToDirectory(tree *vfs.Tree, dir string, overwrite bool) api.MaterializeResult {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return failed(fmt.Errorf("resolve %s: %w", dir, err))
	}
	if err := writeDirectory(tree, abs, overwrite); err != nil {
		return failed(err)
	}
	return api.MaterializeResult{Success: true, Directory: abs}
}

func writeDirectory(tree *vfs.Tree, dir string, overwrite bool) error {
	_, err := os.Stat(dir)
	exists := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if exists && !overwrite {
		return fmt.Errorf("%w: %s", ErrExists, dir)
	}

	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("create parent %s: %w", parent, err)
	}
	staging, err := os.MkdirTemp(parent, ".stackgen-stage-*")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	if err := writeTree(tree, osfs.New(staging)); err != nil {
		_ = os.RemoveAll(staging) // best-effort cleanup
		return err
	}
	if err := os.Chmod(staging, 0o755); err != nil {
		_ = os.RemoveAll(staging)
		return fmt.Errorf("chmod staging dir: %w", err)
	}

	if !exists {
		if err := os.Rename(staging, dir); err != nil {
			_ = os.RemoveAll(staging)
			return fmt.Errorf("rename staging to %s: %w", dir, err)
		}
		return nil
	}

	// Swap: move the old project aside, move the new one in, then drop
	// the old one. A failed second rename puts the old project back.
	backup := staging + "-old"
	if err := os.Rename(dir, backup); err != nil {
		_ = os.RemoveAll(staging)
		return fmt.Errorf("move aside %s: %w", dir, err)
	}
	if err := os.Rename(staging, dir); err != nil {
		_ = os.Rename(backup, dir)
		_ = os.RemoveAll(staging)
		return fmt.Errorf("rename staging to %s: %w", dir, err)
	}
	_ = os.RemoveAll(backup)
	return nil
}
