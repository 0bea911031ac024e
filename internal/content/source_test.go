package content

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/stackgen/api"
)

func TestTargetPath(t *testing.T) {
	tests := map[string]string{
		"ts/base/dot_gitignore":                "ts/base/.gitignore",
		"ts/base/package.json.tmpl":            "ts/base/package.json",
		"ts/addons/husky/dot_husky/pre-commit": "ts/addons/husky/.husky/pre-commit",
		"native/app/_layout.tsx":               "native/app/_layout.tsx",
		"go/base/main.go.tmpl":                 "go/base/main.go",
	}
	for id, want := range tests {
		assert.Equal(t, want, TargetPath(id), id)
	}
}

func TestNewTemplate_Conventions(t *testing.T) {
	tmpl := NewTemplate("x/setup.sh", []byte("#!/bin/sh\n"))
	assert.True(t, tmpl.Executable)
	assert.False(t, tmpl.Render)

	tmpl = NewTemplate("x/dot_husky/pre-commit", []byte("npx lint-staged\n"))
	assert.True(t, tmpl.Executable)

	tmpl = NewTemplate("x/logo.png", []byte("not really {{.png}}"))
	assert.True(t, tmpl.Binary)
	assert.False(t, tmpl.Render)

	tmpl = NewTemplate("x/data.bin.tmpl", []byte{0x00, 0x01})
	assert.True(t, tmpl.Binary)
	assert.False(t, tmpl.Render, "binary content is never rendered")
}

func TestFSSource_LookupAndGlob(t *testing.T) {
	src := NewFSSource(fstest.MapFS{
		"ts/base/package.json.tmpl": {Data: []byte(`{"name":"{{.ProjectName}}"}`)},
		"ts/base/dot_gitignore":     {Data: []byte("node_modules\n")},
		"ts/base/src/index.ts":      {Data: []byte("export {}\n")},
		"rust/base/Cargo.toml.tmpl": {Data: []byte("[package]\n")},
	})

	ids, err := src.Glob("ts/base/**")
	require.NoError(t, err)
	assert.Equal(t, []string{"ts/base/dot_gitignore", "ts/base/package.json.tmpl", "ts/base/src/index.ts"}, ids)

	tmpl, err := src.Lookup("ts/base/package.json.tmpl")
	require.NoError(t, err)
	assert.True(t, tmpl.Render)
	assert.Equal(t, "ts/base/package.json", tmpl.Path)

	_, err = src.Lookup("ts/base/missing")
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
}

func TestMapSource(t *testing.T) {
	src := MapSource{
		"a/one.txt":   []byte("1"),
		"a/b/two.txt": []byte("2"),
		"c/three.txt": []byte("3"),
	}
	ids, err := src.Glob("a/**")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b/two.txt", "a/one.txt"}, ids)

	_, err = src.Lookup("nope")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestRender(t *testing.T) {
	cfg := &api.Config{
		ProjectName: "demo",
		Backend:     api.BackendHono,
		Frontend:    []api.Frontend{api.FrontendNext},
	}
	tmpl := NewTemplate("x.tmpl", []byte(
		`{{.Config.ProjectName}} {{if eq .Config.Backend "hono"}}hono{{end}} {{has .Config.Frontend "next"}} {{default "sqlite" .Config.Database}} {{upper "a"}}`))

	out, err := Render(tmpl, map[string]any{"Config": cfg})
	require.NoError(t, err)
	assert.Equal(t, "demo hono true sqlite A", string(out))
}

func TestRender_ConditionalImportsTrimLeadingBlankLines(t *testing.T) {
	cfg := &api.Config{RustORM: "sqlx", RustCLI: api.None}
	tmpl := NewTemplate("main.rs.tmpl", []byte("{{- if selected .Config.RustCLI}}\nmod cli;\n{{- end}}\n{{- if selected .Config.RustORM}}\nmod db;\n{{- end}}\n\nfn main() {}\n"))

	out, err := Render(tmpl, map[string]any{"Config": cfg})
	require.NoError(t, err)
	assert.Equal(t, "mod db;\n\nfn main() {}\n", string(out))
}

func TestRender_PassThrough(t *testing.T) {
	tmpl := NewTemplate("x.txt", []byte("{{ not rendered }}"))
	out, err := Render(tmpl, nil)
	require.NoError(t, err)
	assert.Equal(t, "{{ not rendered }}", string(out))
}

func TestRender_MissingKey(t *testing.T) {
	tmpl := NewTemplate("x.tmpl", []byte("{{.Nope}}"))
	_, err := Render(tmpl, map[string]any{})
	assert.Error(t, err)
}

func TestBundled_HasEveryEcosystemBase(t *testing.T) {
	src := Bundled()
	for _, dir := range []string{"ts/base", "rust/base", "python/base", "go/base"} {
		ids, err := src.Glob(dir + "/**")
		require.NoError(t, err)
		assert.NotEmpty(t, ids, dir)
	}
}
