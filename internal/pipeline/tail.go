package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"slices"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/agentic-research/stackgen/api"
	"github.com/agentic-research/stackgen/internal/deps"
	"github.com/agentic-research/stackgen/internal/merge"
	"github.com/agentic-research/stackgen/internal/syntax"
	"github.com/agentic-research/stackgen/internal/vfs"
)

// ConfigRecordFile is the configuration record written at the project root.
const ConfigRecordFile = "stackgen.json"

// goVersion is the go directive of generated Go modules.
const goVersion = "1.24"

var configRecordStep = Step{Name: "config-record", Group: GroupShared, Run: writeConfigRecord}

var sharedSteps = []Step{
	{Name: "dependencies", Group: GroupShared, Run: writeDependencies},
	{Name: "env", Group: GroupShared, Run: writeEnv},
	{Name: "catalog", Group: GroupShared, When: usesCatalog, Run: writeCatalog},
	{Name: "format", Group: GroupShared, Run: formatGo},
	{Name: "readme", Group: GroupShared, Run: writeReadme},
	{Name: "docs", Group: GroupShared, Run: writeDocs},
}

func writeConfigRecord(c *Context) error {
	b, err := json.MarshalIndent(c.Config, "", "  ")
	if err != nil {
		return err
	}
	return c.Write(ConfigRecordFile, append(b, '\n'), vfs.WriteOptions{})
}

// resolved returns the declarations with versions filled in, deduplicated
// per (manifest, kind, name). A runtime declaration shadows a dev one for
// the same manifest.
func resolved(c *Context) ([]deps.Declaration, error) {
	type key struct {
		manifest, name string
		kind           deps.Kind
	}
	seen := map[key]int{}
	var out []deps.Declaration
	for _, d := range c.deps {
		if d.Version == "" {
			v, err := deps.Version(c.Config.Ecosystem, d.Name)
			if err != nil {
				return nil, err
			}
			d.Version = v
		}
		k := key{d.Manifest, d.Name, d.Kind}
		if i, ok := seen[k]; ok {
			for _, f := range d.Features {
				if !slices.Contains(out[i].Features, f) {
					out[i].Features = append(out[i].Features, f)
				}
			}
			continue
		}
		seen[k] = len(out)
		out = append(out, d)
	}
	out = slices.DeleteFunc(out, func(d deps.Declaration) bool {
		_, rt := seen[key{d.Manifest, d.Name, deps.Runtime}]
		return d.Kind == deps.Dev && rt
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Manifest != out[j].Manifest {
			return out[i].Manifest < out[j].Manifest
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// writeDependencies is the version pinning pass: every declaration is
// written into its manifest as an authoritative merge.
func writeDependencies(c *Context) error {
	decls, err := resolved(c)
	if err != nil {
		return err
	}
	if len(decls) == 0 {
		return nil
	}
	switch c.Config.Ecosystem {
	case api.EcosystemRust:
		return writeCargoDependencies(c, decls)
	case api.EcosystemPython:
		return writePythonDependencies(c, decls)
	case api.EcosystemGo:
		return writeGoRequires(c, decls)
	}

	byManifest := map[string]*merge.Object{}
	var order []string
	for _, d := range decls {
		obj, ok := byManifest[d.Manifest]
		if !ok {
			obj = merge.NewObject()
			byManifest[d.Manifest] = obj
			order = append(order, d.Manifest)
		}
		section := d.Kind.Section()
		sec, ok := obj.Get(section)
		if !ok {
			sec = merge.NewObject()
			obj.Set(section, sec)
		}
		sec.(*merge.Object).Set(d.Name, d.Version)
	}
	for _, m := range order {
		if err := c.MergeJSON(path.Join(m, "package.json"), byManifest[m], vfs.MergeOptions{Authoritative: true}); err != nil {
			return err
		}
	}
	return nil
}

func writeCargoDependencies(c *Context, decls []deps.Declaration) error {
	docs := map[string]map[string]any{}
	var order []string
	for _, d := range decls {
		doc, ok := docs[d.Manifest]
		if !ok {
			doc = map[string]any{}
			docs[d.Manifest] = doc
			order = append(order, d.Manifest)
		}
		section := "dependencies"
		if d.Kind == deps.Dev {
			section = "dev-dependencies"
		}
		tbl, ok := doc[section].(map[string]any)
		if !ok {
			tbl = map[string]any{}
			doc[section] = tbl
		}
		if len(d.Features) > 0 {
			tbl[d.Name] = map[string]any{"version": d.Version, "features": d.Features}
		} else {
			tbl[d.Name] = d.Version
		}
	}
	for _, m := range order {
		data, err := merge.EncodeTOML("Cargo.toml", docs[m])
		if err != nil {
			return err
		}
		if err := c.Write(path.Join(m, "Cargo.toml"), data, vfs.WriteOptions{Merge: vfs.MergeOptions{Authoritative: true}}); err != nil {
			return err
		}
	}
	return nil
}

func writePythonDependencies(c *Context, decls []deps.Declaration) error {
	var runtime, dev []any
	for _, d := range decls {
		req := d.Name
		if len(d.Features) > 0 {
			req += "[" + strings.Join(d.Features, ",") + "]"
		}
		req += d.Version
		if d.Kind == deps.Dev {
			dev = append(dev, req)
		} else {
			runtime = append(runtime, req)
		}
	}
	doc := map[string]any{}
	if len(runtime) > 0 {
		doc["project"] = map[string]any{"dependencies": runtime}
	}
	if len(dev) > 0 {
		doc["dependency-groups"] = map[string]any{"dev": dev}
	}
	data, err := merge.EncodeTOML("pyproject.toml", doc)
	if err != nil {
		return err
	}
	return c.Write("pyproject.toml", data, vfs.WriteOptions{Merge: vfs.MergeOptions{Authoritative: true}})
}

func writeGoRequires(c *Context, decls []deps.Declaration) error {
	f, err := modfile.Parse("go.mod", fmt.Appendf(nil, "module %s\n\ngo %s\n", c.Config.ProjectName, goVersion), nil)
	if err != nil {
		return err
	}
	for _, d := range decls {
		f.AddNewRequire(d.Name, d.Version, false)
	}
	f.Cleanup()
	return c.Write("go.mod", modfile.Format(f.Syntax), vfs.WriteOptions{Merge: vfs.MergeOptions{Authoritative: true}})
}

// writeEnv aggregates environment declarations into one file per target.
func writeEnv(c *Context) error {
	var files []string
	vars := map[string][]merge.EnvVar{}
	for _, e := range c.env {
		list, ok := vars[e.File]
		if !ok {
			files = append(files, e.File)
		}
		i := slices.IndexFunc(list, func(v merge.EnvVar) bool { return v.Name == e.Name })
		if i < 0 {
			vars[e.File] = append(list, merge.EnvVar{Name: e.Name, Value: e.Value, Comment: e.Comment, Required: e.Required})
			continue
		}
		list[i].Required = list[i].Required || e.Required
		if list[i].Value == "" {
			list[i].Value = e.Value
		}
	}
	for _, f := range files {
		if err := c.Write(f, merge.FormatEnv(vars[f]), vfs.WriteOptions{}); err != nil {
			return err
		}
	}
	return nil
}

func usesCatalog(cfg *api.Config) bool {
	return cfg.Ecosystem == api.EcosystemTypeScript && cfg.PackageManager != api.PackageManagerNPM
}

// CatalogRef is the version members use for catalog entries.
const CatalogRef = "catalog:"

// writeCatalog moves dependencies used by two or more workspace members
// into the package manager's catalog.
func writeCatalog(c *Context) error {
	decls, err := resolved(c)
	if err != nil {
		return err
	}
	members := map[string]map[string]bool{}
	versions := map[string]string{}
	for _, d := range decls {
		if d.Manifest == "" {
			continue
		}
		if members[d.Name] == nil {
			members[d.Name] = map[string]bool{}
		}
		members[d.Name][d.Manifest] = true
		versions[d.Name] = d.Version
	}
	catalog := map[string]string{}
	for name, m := range members {
		if len(m) >= 2 {
			catalog[name] = versions[name]
		}
	}
	if len(catalog) == 0 {
		return nil
	}

	switch c.Config.PackageManager {
	case api.PackageManagerPNPM:
		data, err := (&merge.Workspace{Catalog: catalog}).Encode()
		if err != nil {
			return err
		}
		if err := c.Write("pnpm-workspace.yaml", data, vfs.WriteOptions{}); err != nil {
			return err
		}
	default:
		entries := merge.NewObject()
		for _, name := range sortedNames(catalog) {
			entries.Set(name, catalog[name])
		}
		ws := merge.NewObject()
		ws.Set("catalog", entries)
		root := merge.NewObject()
		root.Set("workspaces", ws)
		if err := c.MergeJSON("package.json", root, vfs.MergeOptions{}); err != nil {
			return err
		}
	}

	var manifests []string
	for _, d := range decls {
		if d.Manifest != "" && catalog[d.Name] != "" && !slices.Contains(manifests, d.Manifest) {
			manifests = append(manifests, d.Manifest)
		}
	}
	for _, m := range manifests {
		if err := useCatalog(c, path.Join(m, "package.json"), catalog); err != nil {
			return err
		}
	}
	return nil
}

func useCatalog(c *Context, p string, catalog map[string]string) error {
	data, err := c.Tree.Read(p)
	if err != nil {
		return err
	}
	obj, err := merge.ParseObject(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", p, err)
	}
	for _, section := range []string{"dependencies", "devDependencies"} {
		v, ok := obj.Get(section)
		if !ok {
			continue
		}
		sec, ok := v.(*merge.Object)
		if !ok {
			continue
		}
		for pair := sec.Oldest(); pair != nil; pair = pair.Next() {
			if _, ok := catalog[pair.Key]; ok {
				pair.Value = CatalogRef
			}
		}
	}
	out, err := merge.EncodeJSON(obj)
	if err != nil {
		return err
	}
	return c.Write(p, out, vfs.WriteOptions{Overwrite: true})
}

// formatGo runs gofumpt over every generated Go file.
func formatGo(c *Context) error {
	for _, p := range c.Tree.Files() {
		if !syntax.IsGo(p) {
			continue
		}
		src, err := c.Tree.Read(p)
		if err != nil {
			return err
		}
		out, err := syntax.FormatGo(src, goVersion, c.Config.ProjectName)
		if err != nil {
			return &GenerationError{Kind: KindInternal, Step: c.step, Path: p, Err: fmt.Errorf("format: %w", err)}
		}
		if bytes.Equal(out, src) {
			continue
		}
		if err := c.Write(p, out, vfs.WriteOptions{Overwrite: true}); err != nil {
			return err
		}
	}
	return nil
}

// StackRows returns the (category, selection) pairs that apply to cfg, in
// option-table order.
func StackRows(cfg *api.Config) [][2]string {
	var rows [][2]string
	for _, cat := range api.Categories {
		if cat.Ecosystem != "" && cat.Ecosystem != cfg.Ecosystem {
			continue
		}
		var sel []string
		for _, v := range cfg.Values(cat.Name) {
			if v != "" && v != api.None {
				sel = append(sel, v)
			}
		}
		if len(sel) > 0 {
			rows = append(rows, [2]string{cat.Name, strings.Join(sel, ", ")})
		}
	}
	return rows
}

func writeReadme(c *Context) error {
	cfg := c.Config
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\nGenerated by stackgen.\n\n## Stack\n\n| Category | Selection |\n|---|---|\n", cfg.ProjectName)
	for _, r := range StackRows(cfg) {
		fmt.Fprintf(&b, "| %s | %s |\n", r[0], r[1])
	}

	b.WriteString("\n## Getting started\n\n```sh\n")
	switch cfg.Ecosystem {
	case api.EcosystemRust:
		b.WriteString("cargo run\n")
	case api.EcosystemPython:
		b.WriteString("uv sync\n")
		if cfg.PythonWebFramework == api.PythonDjango {
			b.WriteString("uv run python manage.py runserver\n")
		} else {
			b.WriteString("uv run python -m app.main\n")
		}
	case api.EcosystemGo:
		b.WriteString("go mod tidy\ngo run .\n")
	default:
		pm := string(cfg.PackageManager)
		fmt.Fprintf(&b, "%s install\n%s run dev\n", pm, pm)
	}
	b.WriteString("```\n")

	if cfg.Ecosystem == api.EcosystemTypeScript {
		if data, err := c.Tree.Read("package.json"); err == nil {
			scripts, err := merge.QueryStrings(data, "$.scripts")
			if err != nil {
				return err
			}
			if len(scripts) > 0 {
				b.WriteString("\n## Scripts\n\n")
				for _, name := range sortedNames(scripts) {
					fmt.Fprintf(&b, "- `%s`: `%s`\n", name, scripts[name])
				}
			}
		}
	}

	var envFiles []string
	for _, p := range c.Tree.Files() {
		if base := path.Base(p); base == ".env" || base == ".env.local" {
			envFiles = append(envFiles, p)
		}
	}
	if len(envFiles) > 0 {
		b.WriteString("\n## Environment\n\nFill in the required variables in:\n\n")
		for _, p := range envFiles {
			fmt.Fprintf(&b, "- `%s`\n", p)
		}
	}
	return c.Write("README.md", []byte(b.String()), vfs.WriteOptions{})
}

// writeDocs records which step contributed which files.
func writeDocs(c *Context) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s stack\n\nEcosystem: %s\n\n## Files by step\n", c.Config.ProjectName, c.Config.Ecosystem)
	for _, origin := range c.Tree.Origins() {
		fmt.Fprintf(&b, "\n### %s\n\n", origin)
		for _, p := range c.Tree.FilesByOrigin(origin) {
			fmt.Fprintf(&b, "- `%s`\n", p)
		}
	}
	return c.Write("docs/STACK.md", []byte(b.String()), vfs.WriteOptions{})
}

func sortedNames[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
