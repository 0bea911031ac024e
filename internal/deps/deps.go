// Package deps holds the dependency version table used when declared
// dependencies are written into manifests.
package deps

import (
	"fmt"
	"sort"

	"github.com/agentic-research/stackgen/api"
)

// Kind is the manifest section a dependency belongs to.
type Kind int

const (
	Runtime Kind = iota
	Dev
	Peer
)

// Section returns the package.json key for k.
func (k Kind) Section() string {
	switch k {
	case Dev:
		return "devDependencies"
	case Peer:
		return "peerDependencies"
	default:
		return "dependencies"
	}
}

func (k Kind) String() string {
	switch k {
	case Dev:
		return "dev"
	case Peer:
		return "peer"
	default:
		return "runtime"
	}
}

// Declaration is one (name, version, manifest, kind) contribution.
// Manifest is the workspace member directory ("" for the project root).
// Version is filled from Versions when left empty.
type Declaration struct {
	Name     string
	Version  string
	Manifest string
	Kind     Kind
	// Features are Cargo features or Python extras.
	Features []string
}

// Version returns the pinned range for name in ecosystem eco.
func Version(eco api.Ecosystem, name string) (string, error) {
	table, ok := Versions[eco]
	if !ok {
		return "", fmt.Errorf("no version table for ecosystem %q", eco)
	}
	v, ok := table[name]
	if !ok {
		return "", fmt.Errorf("no version for %s package %q", eco, name)
	}
	return v, nil
}

// Names returns the packages known for eco, sorted.
func Names(eco api.Ecosystem) []string {
	var out []string
	for name := range Versions[eco] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Versions is the version table, one map per ecosystem. TypeScript
// entries are npm ranges, Rust entries Cargo requirements, Python entries
// PEP 440 specifiers and Go entries module versions.
var Versions = map[api.Ecosystem]map[string]string{
	api.EcosystemTypeScript: {
		// tooling
		"typescript":                "^5.8.2",
		"@types/node":               "^22.13.11",
		"@types/bun":                "^1.2.6",
		"tsx":                       "^4.19.2",
		"tsdown":                    "^0.12.9",
		"turbo":                     "^2.5.4",
		"@biomejs/biome":            "^2.0.0",
		"husky":                     "^9.1.7",
		"lint-staged":               "^16.1.2",
		"dotenv":                    "^17.2.1",
		"zod":                       "^4.0.2",
		"wrangler":                  "^4.23.0",
		"@cloudflare/workers-types": "^4.20250703.0",
		"alchemy":                   "^0.55.2",

		// frontends
		"react":                        "^19.1.0",
		"react-dom":                    "^19.1.0",
		"@types/react":                 "^19.1.8",
		"@types/react-dom":             "^19.1.6",
		"vite":                         "^6.2.2",
		"@vitejs/plugin-react":         "^4.3.4",
		"@tanstack/react-router":       "^1.114.25",
		"@tanstack/router-plugin":      "^1.114.27",
		"@tanstack/react-start":        "^1.127.3",
		"@tanstack/react-query":        "^5.80.5",
		"react-router":                 "^7.6.1",
		"@react-router/dev":            "^7.6.1",
		"next":                         "15.3.0",
		"nuxt":                         "^3.17.6",
		"vue":                          "^3.5.17",
		"@sveltejs/kit":                "^2.22.2",
		"svelte":                       "^5.35.1",
		"@sveltejs/vite-plugin-svelte": "^5.1.0",
		"solid-js":                     "^1.9.7",
		"vite-plugin-solid":            "^2.11.7",
		"expo":                         "^53.0.17",
		"react-native":                 "0.79.5",
		"uniwind":                      "^1.0.0",
		"vite-plugin-pwa":              "^1.0.1",
		"@tauri-apps/cli":              "^2.6.2",
		"@astrojs/starlight":           "^0.34.4",
		"astro":                        "^5.10.1",

		// servers
		"hono":              "^4.8.2",
		"@hono/node-server": "^1.14.4",
		"express":           "^5.1.0",
		"@types/express":    "^5.0.1",
		"cors":              "^2.8.5",
		"@types/cors":       "^2.8.17",
		"fastify":           "^5.3.3",
		"@fastify/cors":     "^11.0.1",
		"elysia":            "^1.3.5",
		"@elysiajs/cors":    "^1.3.3",
		"@elysiajs/node":    "^1.2.6",
		"convex":            "^1.25.0",

		// data
		"drizzle-orm":              "^0.44.2",
		"drizzle-kit":              "^0.31.2",
		"@libsql/client":           "^0.15.9",
		"pg":                       "^8.16.3",
		"@types/pg":                "^8.15.4",
		"mysql2":                   "^3.14.1",
		"@neondatabase/serverless": "^1.0.1",
		"prisma":                   "^6.11.1",
		"@prisma/client":           "^6.11.1",
		"mongoose":                 "^8.16.1",

		// api, auth, payments, examples
		"@trpc/server":               "^11.4.2",
		"@trpc/client":               "^11.4.2",
		"@trpc/tanstack-react-query": "^11.4.2",
		"@orpc/server":               "^1.6.0",
		"@orpc/client":               "^1.6.0",
		"@orpc/tanstack-query":       "^1.6.0",
		"better-auth":                "^1.2.12",
		"@clerk/clerk-react":         "^5.32.4",
		"@polar-sh/better-auth":      "^1.0.4",
		"@polar-sh/sdk":              "^0.34.3",
		"ai":                         "^4.3.16",
		"@ai-sdk/google":             "^1.2.22",
	},
	api.EcosystemRust: {
		"tokio":              "1",
		"axum":               "0.8",
		"actix-web":          "4",
		"tower-http":         "0.6",
		"leptos":             "0.8",
		"dioxus":             "0.6",
		"sea-orm":            "1",
		"sqlx":               "0.8",
		"tonic":              "0.13",
		"prost":              "0.13",
		"async-graphql":      "7",
		"clap":               "4",
		"ratatui":            "0.29",
		"crossterm":          "0.29",
		"serde":              "1",
		"serde_json":         "1",
		"validator":          "0.20",
		"jsonwebtoken":       "9",
		"argon2":             "0.5",
		"tokio-test":         "0.4",
		"mockall":            "0.13",
		"tracing":            "0.1",
		"tracing-subscriber": "0.3",
	},
	api.EcosystemPython: {
		"fastapi":           ">=0.115.0",
		"uvicorn":           ">=0.34.0",
		"django":            ">=5.2",
		"flask":             ">=3.1",
		"litestar":          ">=2.16",
		"sqlalchemy":        ">=2.0.41",
		"sqlmodel":          ">=0.0.24",
		"alembic":           ">=1.16",
		"pydantic":          ">=2.11",
		"pydantic-settings": ">=2.10",
		"langchain":         ">=0.3.26",
		"llama-index":       ">=0.12.46",
		"openai":            ">=1.93",
		"anthropic":         ">=0.57",
		"celery":            ">=5.5",
		"redis":             ">=6.2",
		"ruff":              ">=0.12",
		"pytest":            ">=8.4",
		"psycopg":           ">=3.2",
		"pymysql":           ">=1.1",
		"pymongo":           ">=4.13",
	},
	api.EcosystemGo: {
		"github.com/gin-gonic/gin":           "v1.10.1",
		"github.com/labstack/echo/v4":        "v4.13.4",
		"gorm.io/gorm":                       "v1.30.0",
		"gorm.io/driver/sqlite":              "v1.6.0",
		"gorm.io/driver/postgres":            "v1.6.0",
		"gorm.io/driver/mysql":               "v1.6.0",
		"github.com/jackc/pgx/v5":            "v5.7.5",
		"modernc.org/sqlite":                 "v1.38.0",
		"github.com/go-sql-driver/mysql":     "v1.9.3",
		"google.golang.org/grpc":             "v1.73.0",
		"google.golang.org/protobuf":         "v1.36.6",
		"github.com/spf13/cobra":             "v1.9.1",
		"github.com/charmbracelet/bubbletea": "v1.3.5",
		"go.uber.org/zap":                    "v1.27.0",
		"go.mongodb.org/mongo-driver/v2":     "v2.2.2",
	},
}
