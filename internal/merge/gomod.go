package merge

import (
	"fmt"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"
)

// MergeGoMod is the go.mod policy: the module path and go directive of the
// existing file stand; requirements union, and for a module required twice
// the higher version wins.
func MergeGoMod(c *Context, existing, incoming []byte) ([]byte, error) {
	dst, err := modfile.Parse(c.Path, existing, nil)
	if err != nil {
		return nil, fmt.Errorf("parse existing %s: %w", c.Path, err)
	}
	src, err := modfile.Parse(c.Path, incoming, nil)
	if err != nil {
		return nil, fmt.Errorf("parse incoming %s: %w", c.Path, err)
	}
	if dst.Module != nil && src.Module != nil && dst.Module.Mod.Path != src.Module.Mod.Path {
		return nil, c.Conflict("module", dst.Module.Mod.Path, src.Module.Mod.Path, "module path differs")
	}

	have := make(map[string]string, len(dst.Require))
	for _, r := range dst.Require {
		have[r.Mod.Path] = r.Mod.Version
	}
	for _, r := range src.Require {
		cur, ok := have[r.Mod.Path]
		switch {
		case !ok:
			if err := dst.AddRequire(r.Mod.Path, r.Mod.Version); err != nil {
				return nil, fmt.Errorf("require %s: %w", r.Mod.Path, err)
			}
			have[r.Mod.Path] = r.Mod.Version
		case cur != r.Mod.Version && semver.Compare(r.Mod.Version, cur) > 0:
			c.Warn("require."+r.Mod.Path, "raising %s to %s", cur, r.Mod.Version)
			if err := dst.AddRequire(r.Mod.Path, r.Mod.Version); err != nil {
				return nil, fmt.Errorf("require %s: %w", r.Mod.Path, err)
			}
			have[r.Mod.Path] = r.Mod.Version
		}
	}
	dst.SortBlocks()
	dst.Cleanup()
	return modfile.Format(dst.Syntax), nil
}
