package vfs

import (
	"encoding/base64"

	"github.com/agentic-research/stackgen/api"
)

// ToTree returns a deep, serializable copy of the tree rooted at a
// directory named rootName. Nothing in the result aliases live nodes.
func (t *Tree) ToTree(rootName string) *api.TreeNode {
	root := &api.TreeNode{Name: rootName, Path: "", Type: api.NodeDirectory}
	root.Children = t.snapshotChildren(t.nodes[""])
	return root
}

func (t *Tree) snapshotChildren(dir *node) []*api.TreeNode {
	out := make([]*api.TreeNode, 0, len(dir.children))
	for _, c := range dir.children {
		n := t.nodes[c]
		info := n.info()
		tn := &api.TreeNode{
			Name:   info.Name,
			Path:   n.path,
			Origin: n.origin,
		}
		if n.isDir() {
			tn.Type = api.NodeDirectory
			tn.Children = t.snapshotChildren(n)
		} else {
			tn.Type = api.NodeFile
			tn.Executable = info.Executable
			tn.Template = n.template
			tn.Binary = n.binary
			if n.binary {
				tn.Content = base64.StdEncoding.EncodeToString(n.data)
				tn.Encoding = "base64"
			} else {
				tn.Content = string(n.data)
			}
		}
		out = append(out, tn)
	}
	return out
}
