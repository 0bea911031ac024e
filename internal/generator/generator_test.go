package generator

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/stackgen/api"
	"github.com/agentic-research/stackgen/internal/content"
	"github.com/agentic-research/stackgen/internal/pipeline"
)

type panicSource struct{}

func (panicSource) Lookup(string) (*content.Template, error) { panic("lookup exploded") }
func (panicSource) Glob(string) ([]string, error)            { panic("glob exploded") }

func TestGenerate_DefaultStack(t *testing.T) {
	var logs bytes.Buffer
	res := Generate(&api.Config{ProjectName: "demo"}, Options{Logger: log.New(&logs, "", 0)})

	require.True(t, res.Success, res.Error)
	require.NotNil(t, res.Snapshot)
	assert.Equal(t, "demo", res.Snapshot.Root.Name)
	assert.Equal(t, res.Tree.FileCount(), res.Snapshot.FileCount)
	assert.Equal(t, api.BackendHono, res.Snapshot.Config.Backend)
	assert.Contains(t, res.Plan, "backend")
	assert.Empty(t, res.Kind)
	assert.True(t, res.Tree.Exists("apps/server/package.json"))
	assert.Contains(t, logs.String(), "step base")
}

func TestGenerate_InvalidConfigNeverRunsPipeline(t *testing.T) {
	res := Generate(&api.Config{
		ProjectName: "demo",
		Ecosystem:   api.EcosystemTypeScript,
		Backend:     api.BackendConvex,
		Database:    api.DatabasePostgres,
	}, Options{Source: panicSource{}})

	assert.False(t, res.Success)
	assert.Equal(t, pipeline.KindConfigurationInvalid, res.Kind)
	assert.Nil(t, res.Tree)
	assert.Nil(t, res.Snapshot)
	require.NotEmpty(t, res.Issues)
	found := false
	for _, is := range res.Issues {
		if strings.Contains(is, "Convex backend has its own built-in database") {
			found = true
		}
	}
	assert.True(t, found, res.Issues)
}

func TestGenerate_WorkersWithoutServerDeploy(t *testing.T) {
	res := Check(&api.Config{
		ProjectName:  "demo",
		Backend:      api.BackendHono,
		Runtime:      api.RuntimeWorkers,
		ServerDeploy: api.DeployNone,
	}, Options{})
	assert.False(t, res.Success)
	assert.Contains(t, res.Issues, "The workers runtime requires a server deployment; set serverDeploy to 'alchemy'")
}

func TestCheck_RejectsForeignEcosystemSelections(t *testing.T) {
	res := Check(&api.Config{
		ProjectName: "demo",
		Ecosystem:   api.EcosystemRust,
		Backend:     api.BackendHono,
		Frontend:    []api.Frontend{api.FrontendNext},
		Auth:        api.AuthClerk,
	}, Options{})

	assert.False(t, res.Success)
	assert.Equal(t, pipeline.KindConfigurationInvalid, res.Kind)
	assert.Len(t, res.Issues, 3)
	all := strings.Join(res.Issues, "\n")
	for _, cat := range []string{"backend", "frontend", "auth"} {
		assert.Contains(t, all, cat+" is a typescript option; it must be 'none' for a rust project")
	}
	assert.Equal(t, api.BackendHono, res.Config.Backend)
}

func TestGenerate_TemplateMissing(t *testing.T) {
	res := Generate(&api.Config{ProjectName: "demo"}, Options{Source: content.MapSource{}})

	assert.False(t, res.Success)
	assert.Equal(t, pipeline.KindTemplateMissing, res.Kind)
	assert.Contains(t, res.Error, "ts/base")
	assert.NotNil(t, res.Tree, "the partial tree stays available for diagnostics")
	assert.Nil(t, res.Snapshot)
}

func TestGenerate_RecoversPanics(t *testing.T) {
	res := Generate(&api.Config{ProjectName: "demo"}, Options{Source: panicSource{}})

	assert.False(t, res.Success)
	assert.Equal(t, pipeline.KindInternal, res.Kind)
	assert.Contains(t, res.Error, "exploded")
}

func TestGenerate_SnapshotIsDeterministic(t *testing.T) {
	cfg := &api.Config{ProjectName: "demo", PackageManager: api.PackageManagerPNPM, Examples: []api.Example{api.ExampleTodo, api.ExampleAI}}

	a, b := Generate(cfg, Options{}), Generate(cfg, Options{})
	require.True(t, a.Success, a.Error)
	require.True(t, b.Success, b.Error)

	first, err := json.Marshal(a.Snapshot)
	require.NoError(t, err)
	second, err := json.Marshal(b.Snapshot)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestGenerate_RustProducesCargoProject(t *testing.T) {
	res := Generate(&api.Config{ProjectName: "demo", Ecosystem: api.EcosystemRust}, Options{})

	require.True(t, res.Success, res.Error)
	assert.True(t, res.Tree.Exists("Cargo.toml"))
	assert.False(t, res.Tree.Exists("package.json"))
	assert.NotContains(t, res.Plan, "frontend")
}

func TestWriteDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")

	res, out := WriteDirectory(&api.Config{ProjectName: "demo", Ecosystem: api.EcosystemGo}, dir, false, Options{})
	require.True(t, res.Success, res.Error)
	require.True(t, out.Success, out.Error)
	assert.FileExists(t, filepath.Join(dir, "go.mod"))

	bad := filepath.Join(t.TempDir(), "bad")
	res, out = WriteDirectory(&api.Config{ProjectName: "Bad Name"}, bad, false, Options{})
	assert.False(t, res.Success)
	assert.False(t, out.Success)
	_, err := os.Stat(bad)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
