package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/stackgen/api"
	"github.com/agentic-research/stackgen/internal/validate"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_EveryFormat(t *testing.T) {
	files := map[string]string{
		"stack.jsonc": `{
  // comments are allowed
  "projectName": "demo",
  "backend": "express",
  "runtime": "node",
  "frontend": ["next"],
}`,
		"stack.yaml": `projectName: demo
backend: express
runtime: node
frontend: [next]
`,
		"stack.toml": `projectName = "demo"
backend = "express"
runtime = "node"
frontend = ["next"]
`,
		"stack.hcl": `projectName = "demo"
backend     = "express"
runtime     = "node"
frontend    = ["next"]
`,
	}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, name, body))
			require.NoError(t, err)
			assert.Equal(t, "demo", cfg.ProjectName)
			assert.Equal(t, api.BackendExpress, cfg.Backend)
			assert.Equal(t, api.RuntimeNode, cfg.Runtime)
			assert.Equal(t, []api.Frontend{api.FrontendNext}, cfg.Frontend)
		})
	}
}

func TestLoad_MultiSelectAcceptsBareString(t *testing.T) {
	cfg, err := Parse([]byte(`frontend: svelte`), ".yml")
	require.NoError(t, err)
	assert.Equal(t, []api.Frontend{api.FrontendSvelte}, cfg.Frontend)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(`{"backnd": "hono"}`), ".json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backnd")
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Parse([]byte(`x`), ".ini")
	require.ErrorContains(t, err, "unsupported config format")

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSet_OverridesScalarAndMulti(t *testing.T) {
	cfg := &api.Config{Backend: api.BackendHono}
	require.NoError(t, Set(cfg, "backend", "fastify"))
	require.NoError(t, Set(cfg, "addons", "biome", "husky"))
	require.NoError(t, Set(cfg, "projectName", "other"))

	assert.Equal(t, api.BackendFastify, cfg.Backend)
	assert.Equal(t, []api.Addon{api.AddonBiome, api.AddonHusky}, cfg.Addons)
	assert.Equal(t, "other", cfg.ProjectName)

	assert.Error(t, Set(cfg, "backend", "a", "b"))
	assert.Error(t, Set(cfg, "flavour", "x"))
}

func TestNormalize_TypeScriptDefaultsAreValid(t *testing.T) {
	cfg := Default(api.EcosystemTypeScript)

	assert.Equal(t, DefaultProjectName, cfg.ProjectName)
	assert.Equal(t, api.BackendHono, cfg.Backend)
	assert.Equal(t, api.RuntimeBun, cfg.Runtime)
	assert.Equal(t, api.DatabaseSQLite, cfg.Database)
	assert.Equal(t, api.ORMDrizzle, cfg.ORM)
	assert.Equal(t, api.APITRPC, cfg.API)
	assert.Equal(t, api.AuthBetterAuth, cfg.Auth)
	assert.Equal(t, []api.Addon{api.AddonTurborepo}, cfg.Addons)
	assert.Equal(t, api.RustWebFramework(api.None), cfg.RustWebFramework)
	assert.Nil(t, cfg.PythonAI)

	rep := validate.Validate(cfg)
	assert.True(t, rep.OK(), rep.Messages())
}

func TestNormalize_DefaultsFollowSelections(t *testing.T) {
	cases := []*api.Config{
		{Backend: api.BackendConvex},
		{Backend: api.BackendSelf},
		{Backend: api.BackendNone, Frontend: []api.Frontend{api.FrontendSolid}, Examples: []api.Example{}},
		{Runtime: api.RuntimeWorkers},
		{Database: api.DatabaseMongoDB, Frontend: []api.Frontend{api.FrontendNuxt}},
		{Ecosystem: api.EcosystemRust},
		{Ecosystem: api.EcosystemPython},
		{Ecosystem: api.EcosystemGo},
	}
	for _, in := range cases {
		cfg := Normalize(in)
		rep := validate.Validate(cfg)
		assert.True(t, rep.OK(), "%+v: %v", in, rep.Messages())
	}
}

func TestNormalize_CollapsesNoneAndDuplicates(t *testing.T) {
	in := &api.Config{
		Frontend: []api.Frontend{api.FrontendNext, api.FrontendNext},
		Addons:   []api.Addon{api.AddonNone},
		Examples: []api.Example{api.ExampleNone, api.ExampleTodo},
	}
	cfg := Normalize(in)

	assert.Equal(t, []api.Frontend{api.FrontendNext}, cfg.Frontend)
	assert.Empty(t, cfg.Addons)
	assert.NotNil(t, cfg.Addons, "explicit none must not fall back to the default addons")
	assert.Equal(t, []api.Example{api.ExampleNone, api.ExampleTodo}, cfg.Examples)
	assert.Equal(t, []api.Frontend{api.FrontendNext, api.FrontendNext}, in.Frontend, "input is not modified")
}

func TestNormalize_ForeignEcosystemDefaultsToNone(t *testing.T) {
	cfg := Normalize(&api.Config{Ecosystem: api.EcosystemGo, GoWebFramework: api.GoEcho})

	assert.Equal(t, api.BackendNone, cfg.Backend)
	assert.Equal(t, api.AuthNone, cfg.Auth)
	assert.Nil(t, cfg.Frontend)
	assert.Nil(t, cfg.PythonAI)
	assert.Equal(t, api.PythonWebFramework(api.None), cfg.PythonWebFramework)
	assert.Equal(t, api.GoEcho, cfg.GoWebFramework)
	assert.Equal(t, api.GoZap, cfg.GoLogging)
	assert.Equal(t, api.DatabaseNone, cfg.Database)
	assert.Empty(t, cfg.PackageManager)
}

func TestNormalize_KeepsExplicitForeignSelections(t *testing.T) {
	cfg := Normalize(&api.Config{
		Ecosystem:      api.EcosystemGo,
		Backend:        api.BackendHono,
		Frontend:       []api.Frontend{api.FrontendNext},
		PackageManager: api.PackageManagerPNPM,
		PythonAI:       []api.PythonAI{api.PythonOpenAI},
		RustORM:        api.RustSQLx,
	})
	assert.Equal(t, api.BackendHono, cfg.Backend)
	assert.Equal(t, []api.Frontend{api.FrontendNext}, cfg.Frontend)
	assert.Equal(t, api.PackageManagerPNPM, cfg.PackageManager)
	assert.Equal(t, []api.PythonAI{api.PythonOpenAI}, cfg.PythonAI)
	assert.Equal(t, api.RustSQLx, cfg.RustORM)

	rep := validate.Validate(cfg)
	require.False(t, rep.OK())
	ids := make([]string, len(rep.Issues))
	for i, is := range rep.Issues {
		ids[i] = is.Rule
	}
	for _, id := range []string{"ecosystem-backend", "ecosystem-frontend", "ecosystem-packageManager", "ecosystem-pythonAi", "ecosystem-rustOrm"} {
		assert.Contains(t, ids, id)
	}
}

func TestReadSettings_FileAndEnvironment(t *testing.T) {
	p := writeFile(t, "settings.yaml", "verbose: true\npreview:\n  addr: 127.0.0.1:2049\n")
	t.Setenv("STACKGEN_PACKAGE_MANAGER", "pnpm")

	s, err := ReadSettings(NewViper(p))
	require.NoError(t, err)
	assert.True(t, s.Verbose)
	assert.Equal(t, "127.0.0.1:2049", s.PreviewAddr)
	assert.Equal(t, "pnpm", s.PackageManager)
	assert.False(t, s.Overwrite)
}

func TestReadSettings_MissingExplicitFile(t *testing.T) {
	_, err := ReadSettings(NewViper(filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Error(t, err)
}
