package api

// NodeType distinguishes files from directories in a snapshot.
type NodeType string

const (
	NodeFile      NodeType = "file"
	NodeDirectory NodeType = "directory"
)

// TreeNode is one entry of a serialized project tree.
// Directories carry Children in insertion order; files carry Content.
type TreeNode struct {
	// Name is the last path segment ("" for the root).
	Name string `json:"name"`
	// Path is slash-separated and relative to the project root.
	Path string   `json:"path"`
	Type NodeType `json:"type"`
	// Content is the file body. Binary files are base64-encoded and
	// marked with Encoding "base64".
	Content    string `json:"content,omitempty"`
	Encoding   string `json:"encoding,omitempty"`
	Binary     bool   `json:"binary,omitempty"`
	Executable bool   `json:"executable,omitempty"`
	// Template marks files that originated from a template.
	Template bool `json:"template,omitempty"`
	// Origin names the pipeline step that first wrote the file.
	Origin   string      `json:"origin,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// Snapshot is an immutable, serializable copy of a generated project.
type Snapshot struct {
	Root           *TreeNode `json:"root"`
	FileCount      int       `json:"fileCount"`
	DirectoryCount int       `json:"directoryCount"`
	Config         Config    `json:"config"`
}

// MaterializeResult reports the outcome of writing a tree out.
type MaterializeResult struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Snapshot  *Snapshot `json:"snapshot,omitempty"`
	Directory string    `json:"directory,omitempty"`
}
