package merge

import (
	"errors"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mod/modfile"

	"github.com/agentic-research/stackgen/internal/vfs"
)

func dependencies(t *testing.T, manifest []byte) map[string]string {
	t.Helper()
	obj, err := ParseObject(manifest)
	require.NoError(t, err)
	out := map[string]string{}
	v, ok := obj.Get("dependencies")
	if !ok {
		return out
	}
	deps := v.(*Object)
	for pair := deps.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value.(string)
	}
	return out
}

func TestManifest_TwoStepsBothContribute(t *testing.T) {
	tree := vfs.New(vfs.WithMerger(NewEngine()))
	p := "apps/server/package.json"

	require.NoError(t, tree.WriteString(p, `{"name":"server","dependencies":{"foo":"^1.0.0"}}`, vfs.WriteOptions{Origin: "backend"}))
	require.NoError(t, tree.WriteString(p, `{"dependencies":{"bar":"^2.0.0"}}`, vfs.WriteOptions{Origin: "api"}))

	data, err := tree.Read(p)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"foo": "^1.0.0", "bar": "^2.0.0"}, dependencies(t, data))
}

func TestManifest_MergeIsIdempotent(t *testing.T) {
	e := NewEngine()
	base := []byte(`{"name":"web","scripts":{"dev":"vite"},"dependencies":{"react":"^19.0.0"}}`)
	add := []byte(`{"scripts":{"build":"vite build"},"dependencies":{"zod":"^3.24.0"},"files":["dist"]}`)

	once, err := e.Merge("package.json", base, add, vfs.MergeOptions{})
	require.NoError(t, err)
	twice, err := e.Merge("package.json", once, add, vfs.MergeOptions{})
	require.NoError(t, err)

	assert.Equal(t, string(once), string(twice))
	assert.Equal(t, 1, strings.Count(string(twice), `"zod"`))
	assert.Empty(t, e.Warnings())
}

func TestManifest_KeyOrderPreserved(t *testing.T) {
	e := NewEngine()
	out, err := e.Merge("package.json",
		[]byte(`{"name":"x","version":"0.0.0","private":true}`),
		[]byte(`{"type":"module"}`), vfs.MergeOptions{})
	require.NoError(t, err)

	s := string(out)
	assert.Less(t, strings.Index(s, `"name"`), strings.Index(s, `"version"`))
	assert.Less(t, strings.Index(s, `"private"`), strings.Index(s, `"type"`))
	assert.True(t, strings.HasSuffix(s, "}\n"))
}

func TestManifest_DependenciesSorted(t *testing.T) {
	e := NewEngine()
	out, err := e.Merge("package.json",
		[]byte(`{"dependencies":{"zod":"^3.0.0"}}`),
		[]byte(`{"dependencies":{"hono":"^4.0.0","drizzle-orm":"^0.40.0"}}`), vfs.MergeOptions{})
	require.NoError(t, err)

	s := string(out)
	assert.Less(t, strings.Index(s, "drizzle-orm"), strings.Index(s, "hono"))
	assert.Less(t, strings.Index(s, "hono"), strings.Index(s, "zod"))
}

func TestManifest_ExistingVersionWinsWithWarning(t *testing.T) {
	e := NewEngine()
	out, err := e.Merge("package.json",
		[]byte(`{"dependencies":{"hono":"^4.6.0"}}`),
		[]byte(`{"dependencies":{"hono":"^4.7.0"}}`), vfs.MergeOptions{})
	require.NoError(t, err)

	assert.Equal(t, "^4.6.0", dependencies(t, out)["hono"])
	require.Len(t, e.Warnings(), 1)
	assert.Equal(t, "dependencies.hono", e.Warnings()[0].Key)
}

func TestManifest_AuthoritativeWins(t *testing.T) {
	e := NewEngine()
	out, err := e.Merge("package.json",
		[]byte(`{"dependencies":{"hono":"^4.6.0"}}`),
		[]byte(`{"dependencies":{"hono":"4.7.2"}}`), vfs.MergeOptions{Authoritative: true})
	require.NoError(t, err)
	assert.Equal(t, "4.7.2", dependencies(t, out)["hono"])
}

func TestManifest_TwoPinsConflict(t *testing.T) {
	e := NewEngine()
	_, err := e.Merge("package.json",
		[]byte(`{"dependencies":{"hono":"4.6.0"}}`),
		[]byte(`{"dependencies":{"hono":"4.7.0"}}`), vfs.MergeOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))

	var ce *ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "dependencies.hono", ce.Key)
	assert.Equal(t, "ambiguous dependency", ce.Reason)
}

func TestManifest_ScriptCollision(t *testing.T) {
	e := NewEngine()
	existing := []byte(`{"scripts":{"dev":"vite"}}`)
	incoming := []byte(`{"scripts":{"dev":"bun run --hot src/index.ts"}}`)

	_, err := e.Merge("package.json", existing, incoming, vfs.MergeOptions{})
	assert.ErrorIs(t, err, ErrConflict)

	out, err := e.Merge("package.json", existing, incoming, vfs.MergeOptions{Override: true})
	require.NoError(t, err)
	assert.Contains(t, string(out), "bun run --hot")
}

func TestManifest_NoHTMLEscaping(t *testing.T) {
	e := NewEngine()
	out, err := e.Merge("package.json", []byte(`{}`), []byte(`{"scripts":{"check":"a && b > c"}}`), vfs.MergeOptions{})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"a && b > c"`)
}

func TestEncodeJSON_NestedObjects(t *testing.T) {
	inner := NewObject()
	inner.Set("z", "a < b")
	inner.Set("a", `C:\\u003c`)
	root := NewObject()
	root.Set("name", "x")
	root.Set("empty", NewObject())
	root.Set("list", []any{"&"})
	root.Set("scripts", inner)

	out, err := EncodeJSON(root)
	require.NoError(t, err)
	assert.Equal(t, `{
  "name": "x",
  "empty": {},
  "list": [
    "&"
  ],
  "scripts": {
    "z": "a < b",
    "a": "C:\\\\u003c"
  }
}
`, string(out))

	back, err := ParseObject(out)
	require.NoError(t, err)
	scripts, _ := back.Get("scripts")
	v, _ := scripts.(*Object).Get("a")
	assert.Equal(t, `C:\\u003c`, v)
}

func TestEnv_MergeByName(t *testing.T) {
	e := NewEngine()
	out, err := e.Merge("apps/server/.env",
		[]byte("# Database URL\nDATABASE_URL=\n"),
		[]byte("# (required)\nDATABASE_URL=file:local.db\n\nBETTER_AUTH_SECRET=\n"), vfs.MergeOptions{})
	require.NoError(t, err)

	assert.Equal(t, "# Database URL (required)\nDATABASE_URL=file:local.db\n\nBETTER_AUTH_SECRET=\n", string(out))
}

func TestEnv_ConflictingValueKeepsFirst(t *testing.T) {
	e := NewEngine()
	out, err := e.Merge(".env", []byte("PORT=3000\n"), []byte("PORT=8080\n"), vfs.MergeOptions{})
	require.NoError(t, err)

	vars := ParseEnv(out)
	require.Len(t, vars, 1)
	assert.Equal(t, "3000", vars[0].Value)
	assert.Len(t, e.Warnings(), 1)
}

func TestEnv_QuotedValues(t *testing.T) {
	vars := ParseEnv([]byte("GREETING=\"hello world\"\nexport NAME='x'\n"))
	require.Len(t, vars, 2)
	assert.Equal(t, "hello world", vars[0].Value)
	assert.Equal(t, "NAME", vars[1].Name)
	assert.Equal(t, "x", vars[1].Value)
	assert.Equal(t, "GREETING=\"hello world\"\n\nNAME=x\n", string(FormatEnv(vars)))
}

func TestWorkspace_CatalogPrecedence(t *testing.T) {
	e := NewEngine()
	out, err := e.Merge("pnpm-workspace.yaml",
		[]byte("packages:\n  - apps/*\ncatalog:\n  zod: ^3.0.0\n"),
		[]byte("packages:\n  - packages/*\n  - apps/*\ncatalog:\n  zod: 3.24.0\n  hono: ^4.7.0\n"), vfs.MergeOptions{})
	require.NoError(t, err)

	w, err := ParseWorkspace(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"apps/*", "packages/*"}, w.Packages)
	assert.Equal(t, map[string]string{"zod": "3.24.0", "hono": "^4.7.0"}, w.Catalog)

	require.Len(t, e.Warnings(), 1)
	assert.Equal(t, "catalog.zod", e.Warnings()[0].Key)
}

func TestWorkspace_DifferentPinsConflict(t *testing.T) {
	e := NewEngine()
	_, err := e.Merge("pnpm-workspace.yaml",
		[]byte("catalog:\n  react: 19.0.0\n"),
		[]byte("catalog:\n  react: 18.3.1\n"), vfs.MergeOptions{})
	require.ErrorIs(t, err, ErrConflict)

	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "catalog.react", ce.Key)
	assert.Equal(t, "19.0.0", ce.Existing)
	assert.Equal(t, "18.3.1", ce.Incoming)

	out, err := NewEngine().Merge("pnpm-workspace.yaml",
		[]byte("catalog:\n  react: 19.0.0\n"),
		[]byte("catalog:\n  react: 18.3.1\n"), vfs.MergeOptions{Authoritative: true})
	require.NoError(t, err)
	w, err := ParseWorkspace(out)
	require.NoError(t, err)
	assert.Equal(t, "18.3.1", w.Catalog["react"])
}

func TestTOML_CargoDependencies(t *testing.T) {
	e := NewEngine()
	out, err := e.Merge("Cargo.toml",
		[]byte("[package]\nname = \"app\"\nedition = \"2021\"\n\n[dependencies]\nserde = \"1\"\n"),
		[]byte("[dependencies]\ntokio = { version = \"1\", features = [\"full\"] }\nserde = \"1\"\n"), vfs.MergeOptions{})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, toml.Unmarshal(out, &doc))
	deps := doc["dependencies"].(map[string]any)
	assert.Equal(t, "1", deps["serde"])
	assert.Contains(t, deps, "tokio")

	s := string(out)
	assert.Less(t, strings.Index(s, "[package]"), strings.Index(s, "[dependencies]"))
	assert.Empty(t, e.Warnings())
}

func TestTOML_PyprojectRequirementsByName(t *testing.T) {
	e := NewEngine()
	out, err := e.Merge("pyproject.toml",
		[]byte("[project]\nname = \"app\"\ndependencies = [\"fastapi>=0.115\"]\n"),
		[]byte("[project]\ndependencies = [\"FastAPI[standard]>=0.116\", \"pydantic>=2\"]\n"), vfs.MergeOptions{})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, toml.Unmarshal(out, &doc))
	project := doc["project"].(map[string]any)
	assert.Equal(t, []any{"fastapi>=0.115", "pydantic>=2"}, project["dependencies"])
	require.Len(t, e.Warnings(), 1)
	assert.Equal(t, "project.dependencies.fastapi", e.Warnings()[0].Key)
}

func TestRequirementName(t *testing.T) {
	tests := map[string]string{
		"fastapi>=0.115":          "fastapi",
		"uvicorn[standard]":       "uvicorn",
		"Typing_Extensions ==4.0": "typing-extensions",
		"zope.interface":          "zope-interface",
	}
	for in, want := range tests {
		assert.Equal(t, want, RequirementName(in), in)
	}
}

func TestGoMod_RequirementsUnion(t *testing.T) {
	e := NewEngine()
	out, err := e.Merge("go.mod",
		[]byte("module example.com/app\n\ngo 1.23\n\nrequire github.com/gin-gonic/gin v1.10.0\n"),
		[]byte("module example.com/app\n\ngo 1.23\n\nrequire (\n\tgo.uber.org/zap v1.27.0\n\tgithub.com/gin-gonic/gin v1.9.0\n)\n"),
		vfs.MergeOptions{})
	require.NoError(t, err)

	f, err := modfile.Parse("go.mod", out, nil)
	require.NoError(t, err)
	got := map[string]string{}
	for _, r := range f.Require {
		got[r.Mod.Path] = r.Mod.Version
	}
	assert.Equal(t, map[string]string{
		"github.com/gin-gonic/gin": "v1.10.0",
		"go.uber.org/zap":          "v1.27.0",
	}, got)
}

func TestGoMod_ModulePathMismatch(t *testing.T) {
	e := NewEngine()
	_, err := e.Merge("go.mod", []byte("module a\n"), []byte("module b\n"), vfs.MergeOptions{})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestLines_AppendsMissing(t *testing.T) {
	e := NewEngine()
	out, err := e.Merge(".gitignore", []byte("node_modules\n.env\n"), []byte("# build\ndist\n.env\n"), vfs.MergeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "node_modules\n.env\n\n# build\ndist\n", string(out))

	again, err := e.Merge(".gitignore", out, []byte("# build\ndist\n"), vfs.MergeOptions{})
	require.NoError(t, err)
	assert.Equal(t, string(out), string(again))
}

func TestEngine_CanMergeByBaseName(t *testing.T) {
	e := NewEngine()
	assert.True(t, e.CanMerge("apps/web/package.json"))
	assert.True(t, e.CanMerge("apps/server/.env"))
	assert.False(t, e.CanMerge("apps/web/src/main.tsx"))
	assert.False(t, e.CanMerge("package.jsonc"))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name, existing, incoming, want string
		mismatch                       bool
	}{
		{"equal", "^1.0.0", "^1.0.0", "^1.0.0", false},
		{"pin beats range", "^1.0.0", "1.2.3", "1.2.3", true},
		{"range beats tag", "^1.0.0", "latest", "^1.0.0", true},
		{"higher range", "^1.0.0", "^1.4.0", "^1.4.0", true},
		{"lower range keeps existing", "^2.0.0", "^1.4.0", "^2.0.0", true},
		{"two tags keep existing", "latest", "next", "latest", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, mismatch := Resolve(tt.existing, tt.incoming)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.mismatch, mismatch)
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, IntentPin, Classify("1.2.3"))
	assert.Equal(t, IntentPin, Classify("=1.2.3"))
	assert.Equal(t, IntentRange, Classify("^1.2"))
	assert.Equal(t, IntentRange, Classify("~0.40.0"))
	assert.Equal(t, IntentRange, Classify(">=1.0.0 <2"))
	assert.Equal(t, IntentTag, Classify("latest"))
	assert.Equal(t, IntentTag, Classify("workspace:*"))
}

func TestQueryStrings(t *testing.T) {
	scripts, err := QueryStrings([]byte(`{"scripts":{"dev":"bun run dev","n":1}}`), "$.scripts")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"dev": "bun run dev"}, scripts)

	_, err = Query([]byte(`{}`), "$[")
	assert.Error(t, err)
}
