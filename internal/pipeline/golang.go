package pipeline

import (
	"github.com/agentic-research/stackgen/api"
)

var goSteps = []Step{
	{Name: "go-base", Group: GroupGo, Run: goBase},
	{Name: "go-web", Group: GroupGo, When: func(c *api.Config) bool { return set(c.GoWebFramework) }, Run: goWeb},
	{Name: "go-orm", Group: GroupGo, When: func(c *api.Config) bool { return set(c.GoORM) }, Run: goORM},
	{Name: "go-api", Group: GroupGo, When: func(c *api.Config) bool { return set(c.GoAPI) }, Run: goAPI},
	{Name: "go-cli", Group: GroupGo, When: func(c *api.Config) bool { return set(c.GoCLI) }, Run: goCLI},
	{Name: "go-logging", Group: GroupGo, When: func(c *api.Config) bool { return set(c.GoLogging) }, Run: goLogging},
}

func goBase(c *Context) error {
	return c.EmitDir("go/base", "")
}

func goWeb(c *Context) error {
	fw := string(c.Config.GoWebFramework)
	if err := c.EmitDir("go/web/"+fw, ""); err != nil {
		return err
	}
	switch fw {
	case "gin":
		c.Require("", "github.com/gin-gonic/gin")
	case "echo":
		c.Require("", "github.com/labstack/echo/v4")
	}
	c.Env(".env", "PORT", "8080", "Port the HTTP server listens on", false)
	return nil
}

func goORM(c *Context) error {
	cfg := c.Config
	if err := c.EmitDir("go/orm/"+string(cfg.GoORM), ""); err != nil {
		return err
	}
	switch cfg.GoORM {
	case api.GoGORM:
		c.Require("", "gorm.io/gorm")
		switch cfg.Database {
		case api.DatabasePostgres:
			c.Require("", "gorm.io/driver/postgres")
		case api.DatabaseMySQL:
			c.Require("", "gorm.io/driver/mysql")
		default:
			c.Require("", "gorm.io/driver/sqlite")
		}
	case api.GoSQLC:
		switch cfg.Database {
		case api.DatabasePostgres:
			c.Require("", "github.com/jackc/pgx/v5")
		case api.DatabaseMySQL:
			c.Require("", "github.com/go-sql-driver/mysql")
		default:
			c.Require("", "modernc.org/sqlite")
		}
	}
	c.Env(".env", "DATABASE_URL", defaultDatabaseURL(cfg.Database), "Connection string for "+string(cfg.Database), true)
	return nil
}

func goAPI(c *Context) error {
	if err := c.EmitDir("go/api/"+string(c.Config.GoAPI), ""); err != nil {
		return err
	}
	c.Require("", "google.golang.org/grpc", "google.golang.org/protobuf")
	return nil
}

func goCLI(c *Context) error {
	cli := string(c.Config.GoCLI)
	if err := c.EmitDir("go/cli/"+cli, ""); err != nil {
		return err
	}
	switch cli {
	case "cobra":
		c.Require("", "github.com/spf13/cobra")
	case "bubbletea":
		c.Require("", "github.com/charmbracelet/bubbletea")
	}
	return nil
}

func goLogging(c *Context) error {
	if err := c.EmitDir("go/logging/"+string(c.Config.GoLogging), ""); err != nil {
		return err
	}
	c.Require("", "go.uber.org/zap")
	return nil
}
