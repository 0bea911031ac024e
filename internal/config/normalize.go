package config

import (
	"slices"

	"github.com/agentic-research/stackgen/api"
)

// DefaultProjectName is used when a configuration names no project.
const DefaultProjectName = "my-app"

// Default returns the normalized default stack for an ecosystem.
func Default(eco api.Ecosystem) *api.Config {
	return Normalize(&api.Config{Ecosystem: eco})
}

// Normalize returns a copy of cfg with empty categories filled from the
// ecosystem defaults; empty foreign-ecosystem categories become "none".
// A multi-select holding only "none" becomes empty and duplicate
// selections are dropped. Explicit foreign selections and values mixing
// "none" with real selections are kept for the validator to report.
func Normalize(in *api.Config) *api.Config {
	c := in.Clone()
	if c.ProjectName == "" {
		c.ProjectName = DefaultProjectName
	}
	if c.Ecosystem == "" {
		c.Ecosystem = api.EcosystemTypeScript
	}

	if c.Ecosystem == api.EcosystemTypeScript {
		typeScriptDefaults(c)
	} else {
		foreignTypeScript(c)
	}
	if c.Ecosystem == api.EcosystemRust {
		or(&c.RustWebFramework, api.RustAxum)
		or(&c.RustFrontend, api.None)
		or(&c.RustORM, api.None)
		or(&c.RustAPI, api.None)
		or(&c.RustCLI, api.None)
		if c.RustLibraries == nil {
			c.RustLibraries = []api.RustLibrary{api.RustSerde}
		}
	} else {
		or(&c.RustWebFramework, api.None)
		or(&c.RustFrontend, api.None)
		or(&c.RustORM, api.None)
		or(&c.RustAPI, api.None)
		or(&c.RustCLI, api.None)
	}
	if c.Ecosystem == api.EcosystemPython {
		or(&c.PythonWebFramework, api.PythonFastAPI)
		or(&c.PythonORM, api.None)
		or(&c.PythonValidation, api.PythonPydantic)
		or(&c.PythonTaskQueue, api.None)
		or(&c.PythonQuality, api.PythonRuff)
	} else {
		or(&c.PythonWebFramework, api.None)
		or(&c.PythonORM, api.None)
		or(&c.PythonValidation, api.None)
		or(&c.PythonTaskQueue, api.None)
		or(&c.PythonQuality, api.None)
	}
	if c.Ecosystem == api.EcosystemGo {
		or(&c.GoWebFramework, api.GoGin)
		or(&c.GoORM, api.None)
		or(&c.GoAPI, api.None)
		or(&c.GoCLI, api.None)
		or(&c.GoLogging, api.GoZap)
	} else {
		or(&c.GoWebFramework, api.None)
		or(&c.GoORM, api.None)
		or(&c.GoAPI, api.None)
		or(&c.GoCLI, api.None)
		or(&c.GoLogging, api.None)
	}
	if c.Ecosystem != api.EcosystemTypeScript {
		or(&c.Database, api.DatabaseNone)
	}

	c.Frontend = collapse(c.Frontend)
	c.Addons = collapse(c.Addons)
	c.Examples = collapse(c.Examples)
	c.RustLibraries = collapse(c.RustLibraries)
	c.PythonAI = collapse(c.PythonAI)
	return c
}

// typeScriptDefaults fills empty TypeScript categories. Each default is
// picked to agree with the selections already made, so a partial
// configuration like {backend: convex} normalizes to a valid stack.
func typeScriptDefaults(c *api.Config) {
	or(&c.PackageManager, api.PackageManagerBun)
	or(&c.Backend, api.BackendHono)
	builtin := c.Backend == api.BackendConvex || c.Backend == api.BackendNone

	if c.Frontend == nil {
		c.Frontend = []api.Frontend{api.FrontendTanStackRouter}
		if c.Backend == api.BackendSelf {
			c.Frontend = []api.Frontend{api.FrontendNext}
		}
	}
	if c.Addons == nil {
		c.Addons = []api.Addon{api.AddonTurborepo}
	}

	switch c.Backend {
	case api.BackendConvex, api.BackendSelf, api.BackendNone:
		or(&c.Runtime, api.RuntimeNone)
	default:
		or(&c.Runtime, api.RuntimeBun)
	}
	if builtin {
		or(&c.Database, api.DatabaseNone)
	} else {
		or(&c.Database, api.DatabaseSQLite)
	}
	switch c.Database {
	case api.DatabaseNone:
		or(&c.ORM, api.ORMNone)
	case api.DatabaseMongoDB:
		or(&c.ORM, api.ORMMongoose)
	default:
		or(&c.ORM, api.ORMDrizzle)
	}
	switch {
	case builtin:
		or(&c.API, api.APINone)
	case c.HasFrontend(api.FrontendNuxt, api.FrontendSvelte, api.FrontendSolid):
		or(&c.API, api.APIORPC)
	default:
		or(&c.API, api.APITRPC)
	}
	if c.Backend == api.BackendNone || (!builtin && c.Database == api.DatabaseNone) {
		or(&c.Auth, api.AuthNone)
	} else {
		or(&c.Auth, api.AuthBetterAuth)
	}
	or(&c.Payments, api.PaymentsNone)
	or(&c.DBSetup, api.DBSetupNone)
	or(&c.WebDeploy, api.DeployNone)
	if c.Runtime == api.RuntimeWorkers {
		or(&c.ServerDeploy, api.DeployAlchemy)
	} else {
		or(&c.ServerDeploy, api.DeployNone)
	}
}

// foreignTypeScript sets the unset TypeScript categories of another
// ecosystem to "none". Explicit selections are kept for the validator to
// reject. The package manager stays empty.
func foreignTypeScript(c *api.Config) {
	or(&c.ORM, api.ORMNone)
	or(&c.Backend, api.BackendNone)
	or(&c.Runtime, api.RuntimeNone)
	or(&c.Auth, api.AuthNone)
	or(&c.Payments, api.PaymentsNone)
	or(&c.API, api.APINone)
	or(&c.DBSetup, api.DBSetupNone)
	or(&c.WebDeploy, api.DeployNone)
	or(&c.ServerDeploy, api.DeployNone)
}

func or[T ~string](field *T, def T) {
	if *field == "" {
		*field = def
	}
}

// collapse drops duplicates and turns ["none"] into an empty list.
func collapse[T ~string](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, 0, len(in))
	for _, v := range in {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	if len(out) == 1 && string(out[0]) == api.None {
		return out[:0]
	}
	return out
}
