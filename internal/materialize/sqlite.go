package materialize

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path"

	_ "modernc.org/sqlite"

	"github.com/agentic-research/stackgen/api"
	"github.com/agentic-research/stackgen/internal/vfs"
)

// Node kinds in the nodes table.
const (
	KindFile = 0
	KindDir  = 1
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS nodes (
	id TEXT PRIMARY KEY,
	parent_id TEXT NOT NULL,
	name TEXT NOT NULL,
	kind INTEGER NOT NULL,
	mode INTEGER NOT NULL,
	size INTEGER DEFAULT 0,
	is_binary INTEGER DEFAULT 0,
	is_template INTEGER DEFAULT 0,
	origin TEXT,
	content BLOB
);
CREATE INDEX IF NOT EXISTS idx_parent_name ON nodes(parent_id, name);

CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// ToSQLite writes tree into a fresh SQLite database at dbPath. Rows are
// inserted in walk order, so rowid order reproduces the tree's child
// order. The configuration is stored as JSON under meta.config.
func ToSQLite(tree *vfs.Tree, cfg *api.Config, dbPath string) api.MaterializeResult {
	if err := writeSQLite(tree, cfg, dbPath); err != nil {
		return failed(err)
	}
	return api.MaterializeResult{Success: true}
}

func writeSQLite(tree *vfs.Tree, cfg *api.Config, dbPath string) error {
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove old db %s: %w", dbPath, err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		return err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT INTO nodes (id, parent_id, name, kind, mode, size, is_binary, is_template, origin, content)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	err = tree.Walk(func(info vfs.Info, data []byte) error {
		kind := KindFile
		var content any = data
		if info.IsDir() {
			kind, content = KindDir, nil
		}
		parent := path.Dir(info.Path)
		if parent == "." {
			parent = ""
		}
		_, err := stmt.Exec(info.Path, parent, info.Name, kind, uint32(info.Mode), info.Size,
			info.Binary, info.Template, info.Origin, content)
		if err != nil {
			return fmt.Errorf("insert %s: %w", info.Path, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	meta := [][2]string{
		{"config", string(cfgJSON)},
		{"project", cfg.ProjectName},
		{"file_count", fmt.Sprint(tree.FileCount())},
		{"directory_count", fmt.Sprint(tree.DirectoryCount())},
	}
	for _, kv := range meta {
		if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, kv[0], kv[1]); err != nil {
			return fmt.Errorf("insert meta %s: %w", kv[0], err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadSQLite rebuilds a tree and its configuration from a database
// written by ToSQLite.
func LoadSQLite(dbPath string) (*vfs.Tree, *api.Config, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }()

	var raw string
	if err := db.QueryRow(`SELECT value FROM meta WHERE key = 'config'`).Scan(&raw); err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}
	var cfg api.Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, nil, fmt.Errorf("decode config: %w", err)
	}

	rows, err := db.Query(`SELECT id, kind, mode, is_binary, is_template, origin, content FROM nodes ORDER BY rowid`)
	if err != nil {
		return nil, nil, fmt.Errorf("query nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tree := vfs.New()
	for rows.Next() {
		var (
			id, origin       string
			kind             int
			mode             uint32
			binary, template bool
			content          []byte
		)
		if err := rows.Scan(&id, &kind, &mode, &binary, &template, &origin, &content); err != nil {
			return nil, nil, fmt.Errorf("scan node: %w", err)
		}
		if kind == KindDir {
			err = tree.Mkdir(id)
		} else {
			err = tree.Write(id, content, vfs.WriteOptions{
				Binary:     binary,
				Template:   template,
				Executable: os.FileMode(mode)&0o111 != 0,
				Origin:     origin,
			})
		}
		if err != nil {
			return nil, nil, fmt.Errorf("restore %s: %w", id, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("read nodes: %w", err)
	}
	return tree, &cfg, nil
}
