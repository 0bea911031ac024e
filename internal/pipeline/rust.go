package pipeline

import (
	"github.com/agentic-research/stackgen/api"
)

var rustSteps = []Step{
	{Name: "rust-base", Group: GroupRust, Run: rustBase},
	{Name: "rust-web", Group: GroupRust, When: func(c *api.Config) bool { return set(c.RustWebFramework) }, Run: rustWeb},
	{Name: "rust-frontend", Group: GroupRust, When: func(c *api.Config) bool { return set(c.RustFrontend) }, Run: rustFrontend},
	{Name: "rust-orm", Group: GroupRust, When: func(c *api.Config) bool { return set(c.RustORM) }, Run: rustORM},
	{Name: "rust-api", Group: GroupRust, When: func(c *api.Config) bool { return set(c.RustAPI) }, Run: rustAPI},
	{Name: "rust-cli", Group: GroupRust, When: func(c *api.Config) bool { return set(c.RustCLI) }, Run: rustCLI},
	{Name: "rust-libraries", Group: GroupRust, When: func(c *api.Config) bool { return len(c.RustLibraries) > 0 }, Run: rustLibraries},
}

// rustAsync reports whether the crate needs a tokio runtime.
func rustAsync(cfg *api.Config) bool {
	return set(cfg.RustWebFramework) || set(cfg.RustORM) || set(cfg.RustAPI)
}

func rustBase(c *Context) error {
	if err := c.EmitDir("rust/base", ""); err != nil {
		return err
	}
	if rustAsync(c.Config) {
		c.RequireFeatures("", "tokio", "full")
		c.Require("", "tracing", "tracing-subscriber")
	}
	return nil
}

func rustWeb(c *Context) error {
	fw := string(c.Config.RustWebFramework)
	if err := c.EmitDir("rust/web/"+fw, ""); err != nil {
		return err
	}
	switch fw {
	case "axum":
		c.Require("", "axum")
		c.RequireFeatures("", "tower-http", "cors", "trace")
	case "actix-web":
		c.Require("", "actix-web")
	}
	c.Env(".env", "PORT", "8080", "Port the HTTP server listens on", false)
	return nil
}

// RustFrontendDir is the crate holding a WebAssembly frontend. It is a
// separate package so the server crate keeps a native target.
const RustFrontendDir = "frontend"

func rustFrontend(c *Context) error {
	fe := string(c.Config.RustFrontend)
	if err := c.EmitDir("rust/frontend/"+fe, RustFrontendDir); err != nil {
		return err
	}
	switch fe {
	case "leptos":
		c.RequireFeatures(RustFrontendDir, "leptos", "csr")
	case "dioxus":
		c.RequireFeatures(RustFrontendDir, "dioxus", "web")
	}
	return nil
}

// sqlxDriver is the sqlx / sea-orm feature for a database.
func sqlxDriver(db api.Database) string {
	switch db {
	case api.DatabasePostgres:
		return "postgres"
	case api.DatabaseMySQL:
		return "mysql"
	}
	return "sqlite"
}

func rustORM(c *Context) error {
	cfg := c.Config
	if err := c.EmitDir("rust/orm/"+string(cfg.RustORM), ""); err != nil {
		return err
	}
	driver := sqlxDriver(cfg.Database)
	switch cfg.RustORM {
	case api.RustSeaORM:
		c.RequireFeatures("", "sea-orm", "sqlx-"+driver, "runtime-tokio-rustls", "macros")
	case api.RustSQLx:
		c.RequireFeatures("", "sqlx", driver, "runtime-tokio", "tls-rustls", "macros", "migrate")
	}
	c.Env(".env", "DATABASE_URL", defaultDatabaseURL(cfg.Database), "Connection string for "+string(cfg.Database), true)
	return nil
}

func rustAPI(c *Context) error {
	a := string(c.Config.RustAPI)
	if err := c.EmitDir("rust/api/"+a, ""); err != nil {
		return err
	}
	switch a {
	case "tonic":
		c.Require("", "tonic", "prost")
	case "async-graphql":
		c.Require("", "async-graphql")
	}
	return nil
}

func rustCLI(c *Context) error {
	cli := string(c.Config.RustCLI)
	if err := c.EmitDir("rust/cli/"+cli, ""); err != nil {
		return err
	}
	switch cli {
	case "clap":
		c.RequireFeatures("", "clap", "derive")
	case "ratatui":
		c.Require("", "ratatui", "crossterm")
	}
	return nil
}

func rustLibraries(c *Context) error {
	for _, lib := range c.Config.RustLibraries {
		switch lib {
		case "serde":
			c.RequireFeatures("", "serde", "derive")
			c.Require("", "serde_json")
		case "validator":
			c.RequireFeatures("", "validator", "derive")
		case "tokio-test", "mockall":
			c.RequireDev("", string(lib))
		default:
			c.Require("", string(lib))
		}
	}
	return nil
}
