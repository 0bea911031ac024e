package api

// Category describes one axis of technology choice.
type Category struct {
	// Name as it appears in configuration files.
	Name string `json:"name"`
	// Multi marks multi-select categories.
	Multi bool `json:"multi,omitempty"`
	// Ecosystem restricts the category to one ecosystem ("" = all).
	Ecosystem Ecosystem `json:"ecosystem,omitempty"`
	// Values is the closed option set, "none" included where allowed.
	Values []string `json:"values"`
}

// Categories is the closed option table, in configuration-file order.
var Categories = []Category{
	{Name: "ecosystem", Values: []string{"typescript", "rust", "python", "go"}},
	{Name: "database", Values: []string{None, "sqlite", "postgres", "mysql", "mongodb"}},
	{Name: "packageManager", Ecosystem: EcosystemTypeScript, Values: []string{"npm", "pnpm", "bun"}},
	{Name: "orm", Ecosystem: EcosystemTypeScript, Values: []string{None, "drizzle", "prisma", "mongoose"}},
	{Name: "backend", Ecosystem: EcosystemTypeScript, Values: []string{None, "hono", "express", "fastify", "elysia", "convex", "self"}},
	{Name: "runtime", Ecosystem: EcosystemTypeScript, Values: []string{None, "bun", "node", "workers"}},
	{Name: "frontend", Multi: true, Ecosystem: EcosystemTypeScript, Values: []string{
		None, "tanstack-router", "react-router", "tanstack-start", "next", "nuxt", "svelte", "solid", "native-bare", "native-uniwind",
	}},
	{Name: "addons", Multi: true, Ecosystem: EcosystemTypeScript, Values: []string{None, "turborepo", "biome", "husky", "pwa", "tauri", "starlight"}},
	{Name: "examples", Multi: true, Ecosystem: EcosystemTypeScript, Values: []string{None, "todo", "ai"}},
	{Name: "auth", Ecosystem: EcosystemTypeScript, Values: []string{None, "better-auth", "clerk"}},
	{Name: "payments", Ecosystem: EcosystemTypeScript, Values: []string{None, "polar"}},
	{Name: "api", Ecosystem: EcosystemTypeScript, Values: []string{None, "trpc", "orpc"}},
	{Name: "dbSetup", Ecosystem: EcosystemTypeScript, Values: []string{
		None, "turso", "neon", "prisma-postgres", "mongodb-atlas", "supabase", "d1", "docker",
	}},
	{Name: "webDeploy", Ecosystem: EcosystemTypeScript, Values: []string{None, "alchemy"}},
	{Name: "serverDeploy", Ecosystem: EcosystemTypeScript, Values: []string{None, "alchemy"}},

	{Name: "rustWebFramework", Ecosystem: EcosystemRust, Values: []string{None, "axum", "actix-web"}},
	{Name: "rustFrontend", Ecosystem: EcosystemRust, Values: []string{None, "leptos", "dioxus"}},
	{Name: "rustOrm", Ecosystem: EcosystemRust, Values: []string{None, "sea-orm", "sqlx"}},
	{Name: "rustApi", Ecosystem: EcosystemRust, Values: []string{None, "tonic", "async-graphql"}},
	{Name: "rustCli", Ecosystem: EcosystemRust, Values: []string{None, "clap", "ratatui"}},
	{Name: "rustLibraries", Multi: true, Ecosystem: EcosystemRust, Values: []string{
		None, "serde", "validator", "jsonwebtoken", "argon2", "tokio-test", "mockall",
	}},

	{Name: "pythonWebFramework", Ecosystem: EcosystemPython, Values: []string{None, "fastapi", "django", "flask", "litestar"}},
	{Name: "pythonOrm", Ecosystem: EcosystemPython, Values: []string{None, "sqlalchemy", "sqlmodel"}},
	{Name: "pythonValidation", Ecosystem: EcosystemPython, Values: []string{None, "pydantic"}},
	{Name: "pythonAi", Multi: true, Ecosystem: EcosystemPython, Values: []string{None, "langchain", "llamaindex", "openai", "anthropic"}},
	{Name: "pythonTaskQueue", Ecosystem: EcosystemPython, Values: []string{None, "celery"}},
	{Name: "pythonQuality", Ecosystem: EcosystemPython, Values: []string{None, "ruff"}},

	{Name: "goWebFramework", Ecosystem: EcosystemGo, Values: []string{None, "gin", "echo"}},
	{Name: "goOrm", Ecosystem: EcosystemGo, Values: []string{None, "gorm", "sqlc"}},
	{Name: "goApi", Ecosystem: EcosystemGo, Values: []string{None, "grpc-go"}},
	{Name: "goCli", Ecosystem: EcosystemGo, Values: []string{None, "cobra", "bubbletea"}},
	{Name: "goLogging", Ecosystem: EcosystemGo, Values: []string{None, "zap"}},
}

// LookupCategory returns the category with the given name.
func LookupCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Values returns the selection(s) of a category as plain strings.
// Scalar categories yield a single element; unset scalars yield "".
func (c *Config) Values(category string) []string {
	switch category {
	case "ecosystem":
		return []string{string(c.Ecosystem)}
	case "database":
		return []string{string(c.Database)}
	case "packageManager":
		return []string{string(c.PackageManager)}
	case "orm":
		return []string{string(c.ORM)}
	case "backend":
		return []string{string(c.Backend)}
	case "runtime":
		return []string{string(c.Runtime)}
	case "frontend":
		return strs(c.Frontend)
	case "addons":
		return strs(c.Addons)
	case "examples":
		return strs(c.Examples)
	case "auth":
		return []string{string(c.Auth)}
	case "payments":
		return []string{string(c.Payments)}
	case "api":
		return []string{string(c.API)}
	case "dbSetup":
		return []string{string(c.DBSetup)}
	case "webDeploy":
		return []string{string(c.WebDeploy)}
	case "serverDeploy":
		return []string{string(c.ServerDeploy)}
	case "rustWebFramework":
		return []string{string(c.RustWebFramework)}
	case "rustFrontend":
		return []string{string(c.RustFrontend)}
	case "rustOrm":
		return []string{string(c.RustORM)}
	case "rustApi":
		return []string{string(c.RustAPI)}
	case "rustCli":
		return []string{string(c.RustCLI)}
	case "rustLibraries":
		return strs(c.RustLibraries)
	case "pythonWebFramework":
		return []string{string(c.PythonWebFramework)}
	case "pythonOrm":
		return []string{string(c.PythonORM)}
	case "pythonValidation":
		return []string{string(c.PythonValidation)}
	case "pythonAi":
		return strs(c.PythonAI)
	case "pythonTaskQueue":
		return []string{string(c.PythonTaskQueue)}
	case "pythonQuality":
		return []string{string(c.PythonQuality)}
	case "goWebFramework":
		return []string{string(c.GoWebFramework)}
	case "goOrm":
		return []string{string(c.GoORM)}
	case "goApi":
		return []string{string(c.GoAPI)}
	case "goCli":
		return []string{string(c.GoCLI)}
	case "goLogging":
		return []string{string(c.GoLogging)}
	}
	return nil
}

func strs[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
