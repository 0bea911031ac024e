package api

import "slices"

// None is the sentinel for "this category is not used".
const None = "none"

type (
	Ecosystem      string
	Database       string
	ORM            string
	Backend        string
	Runtime        string
	Frontend       string
	Addon          string
	Example        string
	Auth           string
	Payments       string
	API            string
	DBSetup        string
	Deploy         string
	PackageManager string

	RustWebFramework string
	RustFrontend     string
	RustORM          string
	RustAPI          string
	RustCLI          string
	RustLibrary      string

	PythonWebFramework string
	PythonORM          string
	PythonValidation   string
	PythonAI           string
	PythonTaskQueue    string
	PythonQuality      string

	GoWebFramework string
	GoORM          string
	GoAPI          string
	GoCLI          string
	GoLogging      string
)

const (
	EcosystemTypeScript Ecosystem = "typescript"
	EcosystemRust       Ecosystem = "rust"
	EcosystemPython     Ecosystem = "python"
	EcosystemGo         Ecosystem = "go"
)

const (
	DatabaseNone     Database = None
	DatabaseSQLite   Database = "sqlite"
	DatabasePostgres Database = "postgres"
	DatabaseMySQL    Database = "mysql"
	DatabaseMongoDB  Database = "mongodb"
)

const (
	ORMNone     ORM = None
	ORMDrizzle  ORM = "drizzle"
	ORMPrisma   ORM = "prisma"
	ORMMongoose ORM = "mongoose"
)

const (
	BackendNone    Backend = None
	BackendHono    Backend = "hono"
	BackendExpress Backend = "express"
	BackendFastify Backend = "fastify"
	BackendElysia  Backend = "elysia"
	BackendConvex  Backend = "convex"
	BackendSelf    Backend = "self"
)

const (
	RuntimeNone    Runtime = None
	RuntimeBun     Runtime = "bun"
	RuntimeNode    Runtime = "node"
	RuntimeWorkers Runtime = "workers"
)

const (
	FrontendNone           Frontend = None
	FrontendTanStackRouter Frontend = "tanstack-router"
	FrontendReactRouter    Frontend = "react-router"
	FrontendTanStackStart  Frontend = "tanstack-start"
	FrontendNext           Frontend = "next"
	FrontendNuxt           Frontend = "nuxt"
	FrontendSvelte         Frontend = "svelte"
	FrontendSolid          Frontend = "solid"
	FrontendNativeBare     Frontend = "native-bare"
	FrontendNativeUniwind  Frontend = "native-uniwind"
)

const (
	AddonNone      Addon = None
	AddonTurborepo Addon = "turborepo"
	AddonBiome     Addon = "biome"
	AddonHusky     Addon = "husky"
	AddonPWA       Addon = "pwa"
	AddonTauri     Addon = "tauri"
	AddonStarlight Addon = "starlight"
)

const (
	ExampleNone Example = None
	ExampleTodo Example = "todo"
	ExampleAI   Example = "ai"
)

const (
	AuthNone       Auth = None
	AuthBetterAuth Auth = "better-auth"
	AuthClerk      Auth = "clerk"
)

const (
	PaymentsNone  Payments = None
	PaymentsPolar Payments = "polar"
)

const (
	APINone API = None
	APITRPC API = "trpc"
	APIORPC API = "orpc"
)

const (
	DBSetupNone           DBSetup = None
	DBSetupTurso          DBSetup = "turso"
	DBSetupNeon           DBSetup = "neon"
	DBSetupPrismaPostgres DBSetup = "prisma-postgres"
	DBSetupMongoDBAtlas   DBSetup = "mongodb-atlas"
	DBSetupSupabase       DBSetup = "supabase"
	DBSetupD1             DBSetup = "d1"
	DBSetupDocker         DBSetup = "docker"
)

const (
	DeployNone    Deploy = None
	DeployAlchemy Deploy = "alchemy"
)

const (
	PackageManagerNPM  PackageManager = "npm"
	PackageManagerPNPM PackageManager = "pnpm"
	PackageManagerBun  PackageManager = "bun"
)

const (
	RustAxum     RustWebFramework = "axum"
	RustActixWeb RustWebFramework = "actix-web"

	RustLeptos RustFrontend = "leptos"
	RustDioxus RustFrontend = "dioxus"

	RustSeaORM RustORM = "sea-orm"
	RustSQLx   RustORM = "sqlx"

	RustTonic        RustAPI = "tonic"
	RustAsyncGraphQL RustAPI = "async-graphql"

	RustClap    RustCLI = "clap"
	RustRatatui RustCLI = "ratatui"

	RustSerde        RustLibrary = "serde"
	RustValidator    RustLibrary = "validator"
	RustJSONWebToken RustLibrary = "jsonwebtoken"
	RustArgon2       RustLibrary = "argon2"
	RustTokioTest    RustLibrary = "tokio-test"
	RustMockall      RustLibrary = "mockall"
)

const (
	PythonFastAPI  PythonWebFramework = "fastapi"
	PythonDjango   PythonWebFramework = "django"
	PythonFlask    PythonWebFramework = "flask"
	PythonLitestar PythonWebFramework = "litestar"

	PythonSQLAlchemy PythonORM = "sqlalchemy"
	PythonSQLModel   PythonORM = "sqlmodel"

	PythonPydantic PythonValidation = "pydantic"

	PythonLangChain  PythonAI = "langchain"
	PythonLlamaIndex PythonAI = "llamaindex"
	PythonOpenAI     PythonAI = "openai"
	PythonAnthropic  PythonAI = "anthropic"

	PythonCelery PythonTaskQueue = "celery"

	PythonRuff PythonQuality = "ruff"
)

const (
	GoGin  GoWebFramework = "gin"
	GoEcho GoWebFramework = "echo"

	GoGORM GoORM = "gorm"
	GoSQLC GoORM = "sqlc"

	GoGRPC GoAPI = "grpc-go"

	GoCobra     GoCLI = "cobra"
	GoBubbleTea GoCLI = "bubbletea"

	GoZap GoLogging = "zap"
)

// Config is the flat record of technology selections for one generation.
// Every category holds exactly one value (or a set, for multi-select
// categories); "none" means the category is not used.
type Config struct {
	// ProjectName is used for the root directory and the root package name.
	ProjectName string    `json:"projectName"`
	Ecosystem   Ecosystem `json:"ecosystem"`
	Database    Database  `json:"database"`

	// TypeScript ecosystem.
	ORM            ORM            `json:"orm"`
	Backend        Backend        `json:"backend"`
	Runtime        Runtime        `json:"runtime"`
	Frontend       []Frontend     `json:"frontend"`
	Addons         []Addon        `json:"addons"`
	Examples       []Example      `json:"examples"`
	Auth           Auth           `json:"auth"`
	Payments       Payments       `json:"payments"`
	API            API            `json:"api"`
	DBSetup        DBSetup        `json:"dbSetup"`
	WebDeploy      Deploy         `json:"webDeploy"`
	ServerDeploy   Deploy         `json:"serverDeploy"`
	PackageManager PackageManager `json:"packageManager"`

	// Rust ecosystem.
	RustWebFramework RustWebFramework `json:"rustWebFramework"`
	RustFrontend     RustFrontend     `json:"rustFrontend"`
	RustORM          RustORM          `json:"rustOrm"`
	RustAPI          RustAPI          `json:"rustApi"`
	RustCLI          RustCLI          `json:"rustCli"`
	RustLibraries    []RustLibrary    `json:"rustLibraries"`

	// Python ecosystem.
	PythonWebFramework PythonWebFramework `json:"pythonWebFramework"`
	PythonORM          PythonORM          `json:"pythonOrm"`
	PythonValidation   PythonValidation   `json:"pythonValidation"`
	PythonAI           []PythonAI         `json:"pythonAi"`
	PythonTaskQueue    PythonTaskQueue    `json:"pythonTaskQueue"`
	PythonQuality      PythonQuality      `json:"pythonQuality"`

	// Go ecosystem.
	GoWebFramework GoWebFramework `json:"goWebFramework"`
	GoORM          GoORM          `json:"goOrm"`
	GoAPI          GoAPI          `json:"goApi"`
	GoCLI          GoCLI          `json:"goCli"`
	GoLogging      GoLogging      `json:"goLogging"`

	// Git and Install are recorded for the external CLI layer; generation
	// itself never runs git or a package manager.
	Git     bool `json:"git"`
	Install bool `json:"install"`
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Frontend = slices.Clone(c.Frontend)
	out.Addons = slices.Clone(c.Addons)
	out.Examples = slices.Clone(c.Examples)
	out.RustLibraries = slices.Clone(c.RustLibraries)
	out.PythonAI = slices.Clone(c.PythonAI)
	return &out
}

// HasFrontend reports whether f is among the selected frontends.
func (c *Config) HasFrontend(f ...Frontend) bool {
	for _, sel := range c.Frontend {
		if slices.Contains(f, sel) {
			return true
		}
	}
	return false
}

// HasAddon reports whether a is among the selected addons.
func (c *Config) HasAddon(a Addon) bool { return slices.Contains(c.Addons, a) }

// HasExample reports whether e is among the selected examples.
func (c *Config) HasExample(e Example) bool { return slices.Contains(c.Examples, e) }

// WebFrontend returns the selected web frontend, or "" if none.
func (c *Config) WebFrontend() Frontend {
	for _, f := range c.Frontend {
		if f.IsWeb() {
			return f
		}
	}
	return ""
}

// NativeFrontend returns the selected native frontend, or "" if none.
func (c *Config) NativeFrontend() Frontend {
	for _, f := range c.Frontend {
		if f.IsNative() {
			return f
		}
	}
	return ""
}

// HasServer reports whether the project gets a standalone server app.
func (c *Config) HasServer() bool {
	switch c.Backend {
	case BackendNone, BackendConvex, BackendSelf, "":
		return false
	}
	return true
}

// IsNative reports whether the frontend is a mobile (Expo) app.
func (f Frontend) IsNative() bool {
	return f == FrontendNativeBare || f == FrontendNativeUniwind
}

// IsWeb reports whether the frontend is a browser app.
func (f Frontend) IsWeb() bool {
	return f != "" && f != FrontendNone && !f.IsNative()
}

// IsReact reports whether the frontend is built on React.
func (f Frontend) IsReact() bool {
	switch f {
	case FrontendTanStackRouter, FrontendReactRouter, FrontendTanStackStart, FrontendNext:
		return true
	}
	return false
}
