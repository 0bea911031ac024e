package validate

import (
	"regexp"
	"slices"
	"strings"

	"github.com/agentic-research/stackgen/api"
)

// The tables below mirror what the template content can actually build.
// Adding a template combination means widening the matching table.

var backendRuntimes = map[api.Backend][]api.Runtime{
	api.BackendHono:    {api.RuntimeBun, api.RuntimeNode, api.RuntimeWorkers},
	api.BackendExpress: {api.RuntimeBun, api.RuntimeNode},
	api.BackendFastify: {api.RuntimeBun, api.RuntimeNode},
	api.BackendElysia:  {api.RuntimeBun, api.RuntimeNode},
	api.BackendConvex:  {api.RuntimeNone},
	api.BackendSelf:    {api.RuntimeNone},
	api.BackendNone:    {api.RuntimeNone},
}

// Categories a convex backend replaces, with the reason.
var convexExclusive = []struct{ category, reason string }{
	{"database", "Convex backend has its own built-in database"},
	{"orm", "Convex backend has its own built-in database"},
	{"dbSetup", "Convex backend has its own built-in database"},
	{"api", "Convex backend has its own API layer"},
}

// Categories that need some backend to attach to.
var backendRequired = []string{"database", "orm", "dbSetup", "api", "auth", "payments", "examples"}

var ormDatabases = map[api.ORM][]api.Database{
	api.ORMDrizzle:  {api.DatabaseSQLite, api.DatabasePostgres, api.DatabaseMySQL},
	api.ORMPrisma:   {api.DatabaseSQLite, api.DatabasePostgres, api.DatabaseMySQL, api.DatabaseMongoDB},
	api.ORMMongoose: {api.DatabaseMongoDB},
}

var dbSetupDatabases = map[api.DBSetup][]api.Database{
	api.DBSetupTurso:          {api.DatabaseSQLite},
	api.DBSetupD1:             {api.DatabaseSQLite},
	api.DBSetupNeon:           {api.DatabasePostgres},
	api.DBSetupSupabase:       {api.DatabasePostgres},
	api.DBSetupPrismaPostgres: {api.DatabasePostgres},
	api.DBSetupMongoDBAtlas:   {api.DatabaseMongoDB},
	api.DBSetupDocker:         {api.DatabasePostgres, api.DatabaseMySQL, api.DatabaseMongoDB},
}

var dbSetupORMs = map[api.DBSetup][]api.ORM{
	api.DBSetupPrismaPostgres: {api.ORMPrisma},
	api.DBSetupD1:             {api.ORMDrizzle},
}

var selfBackendFrontends = []api.Frontend{
	api.FrontendNext, api.FrontendTanStackStart, api.FrontendNuxt, api.FrontendSvelte,
}

var trpcUnsupported = []api.Frontend{api.FrontendNuxt, api.FrontendSvelte, api.FrontendSolid}

var addonFrontends = map[api.Addon][]api.Frontend{
	api.AddonPWA: {api.FrontendTanStackRouter, api.FrontendReactRouter, api.FrontendSolid, api.FrontendNext},
	api.AddonTauri: {
		api.FrontendTanStackRouter, api.FrontendReactRouter, api.FrontendNuxt,
		api.FrontendSvelte, api.FrontendSolid, api.FrontendNext,
	},
}

// ORM categories of the non-TypeScript ecosystems; all of them are SQL only.
var sqlORMCategories = []struct{ category, label string }{
	{"rustOrm", "Rust ORM"},
	{"pythonOrm", "Python ORM"},
	{"goOrm", "Go ORM"},
}

var projectNameRe = regexp.MustCompile(`^(?:@[a-z0-9~-][a-z0-9._~-]*/)?[a-z0-9~-][a-z0-9._~-]*$`)

// DefaultRules returns the full rule list in evaluation order.
func DefaultRules() []Rule {
	var rules []Rule
	rules = append(rules, membershipRules()...)
	rules = append(rules, noneExclusiveRules()...)
	rules = append(rules, ecosystemRules()...)
	rules = append(rules, runtimeRules()...)
	rules = append(rules, backendDatabaseRules()...)
	rules = append(rules, ormDatabaseRules()...)
	rules = append(rules, dbSetupRules()...)
	rules = append(rules, edgeRules()...)
	rules = append(rules, frontendRules()...)
	rules = append(rules, prerequisiteRules()...)
	return rules
}

func membershipRules() []Rule {
	rules := []Rule{{
		ID:     "membership-projectName",
		Family: FamilyMembership,
		Check: func(c *api.Config) *Issue {
			if c.ProjectName == "" {
				return fail("projectName: a value is required")
			}
			if len(c.ProjectName) > 214 || !projectNameRe.MatchString(c.ProjectName) {
				return fail("projectName: '%s' is not a valid package name (lowercase letters, digits, '-', '.', '_', '~')", c.ProjectName)
			}
			return nil
		},
	}}
	for _, cat := range api.Categories {
		rules = append(rules, Rule{
			ID:     "membership-" + cat.Name,
			Family: FamilyMembership,
			Check: func(c *api.Config) *Issue {
				// Foreign-ecosystem categories are the ecosystem family's concern.
				if cat.Ecosystem != "" && cat.Ecosystem != c.Ecosystem {
					return nil
				}
				vals := c.Values(cat.Name)
				if !cat.Multi && (len(vals) == 0 || vals[0] == "") {
					return fail("%s: a value is required", cat.Name)
				}
				for _, v := range vals {
					if !slices.Contains(cat.Values, v) {
						return fail("%s: unknown value '%s' (choose from %s)", cat.Name, v, quoteList(cat.Values, "or"))
					}
				}
				return nil
			},
		})
	}
	return rules
}

func noneExclusiveRules() []Rule {
	var rules []Rule
	for _, cat := range api.Categories {
		if !cat.Multi {
			continue
		}
		rules = append(rules, Rule{
			ID:     "none-exclusive-" + cat.Name,
			Family: FamilyNoneExclusive,
			Check: func(c *api.Config) *Issue {
				vals := c.Values(cat.Name)
				if len(vals) > 1 && slices.Contains(vals, api.None) {
					return fail("%s: cannot combine 'none' with other options", cat.Name)
				}
				return nil
			},
		})
	}
	return rules
}

func ecosystemRules() []Rule {
	var rules []Rule
	for _, cat := range api.Categories {
		if cat.Ecosystem == "" {
			continue
		}
		rules = append(rules, Rule{
			ID:     "ecosystem-" + cat.Name,
			Family: FamilyEcosystem,
			Check: func(c *api.Config) *Issue {
				if cat.Ecosystem == c.Ecosystem {
					return nil
				}
				if sel := selected(c, cat.Name); len(sel) > 0 {
					return fail("%s is a %s option; it must be 'none' for a %s project (got %s)",
						cat.Name, cat.Ecosystem, c.Ecosystem, quoteList(sel, "and"))
				}
				return nil
			},
		})
	}
	return rules
}

func runtimeRules() []Rule {
	return []Rule{{
		ID:     "runtime-backend",
		Family: FamilyRuntime,
		Check: ts(func(c *api.Config) *Issue {
			allowed, ok := backendRuntimes[c.Backend]
			if !ok || slices.Contains(allowed, c.Runtime) {
				return nil
			}
			switch {
			case c.Backend == api.BackendNone:
				return fail("No backend selected; runtime must be 'none' (got '%s')", c.Runtime)
			case slices.Equal(allowed, []api.Runtime{api.RuntimeNone}):
				return fail("Backend '%s' manages its own runtime; runtime must be 'none' (got '%s')", c.Backend, c.Runtime)
			case c.Runtime == api.RuntimeNone:
				return fail("Backend '%s' requires a runtime: %s", c.Backend, quoteList(allowed, "or"))
			case c.Runtime == api.RuntimeWorkers:
				return fail("The workers runtime only supports the 'hono' backend (got '%s')", c.Backend)
			}
			return fail("Backend '%s' does not run on '%s'; use %s", c.Backend, c.Runtime, quoteList(allowed, "or"))
		}),
	}}
}

func backendDatabaseRules() []Rule {
	var rules []Rule
	for _, ex := range convexExclusive {
		rules = append(rules, Rule{
			ID:     "convex-" + ex.category,
			Family: FamilyBackendDatabase,
			Check: ts(func(c *api.Config) *Issue {
				if c.Backend != api.BackendConvex {
					return nil
				}
				if sel := selected(c, ex.category); len(sel) > 0 {
					return fail("%s; %s must be 'none' (got %s)", ex.reason, ex.category, quoteList(sel, "and"))
				}
				return nil
			}),
		})
	}
	for _, category := range backendRequired {
		rules = append(rules, Rule{
			ID:     "no-backend-" + category,
			Family: FamilyBackendDatabase,
			Check: ts(func(c *api.Config) *Issue {
				if c.Backend != api.BackendNone {
					return nil
				}
				if sel := selected(c, category); len(sel) > 0 {
					return fail("No backend selected; %s must be 'none' (got %s)", category, quoteList(sel, "and"))
				}
				return nil
			}),
		})
	}
	return rules
}

func ormDatabaseRules() []Rule {
	return []Rule{
		{
			ID:     "orm-requires-database",
			Family: FamilyORMDatabase,
			Check: tsServer(func(c *api.Config) *Issue {
				if isSet(c.ORM) && !isSet(c.Database) {
					return fail("ORM '%s' requires a database", c.ORM)
				}
				return nil
			}),
		},
		{
			ID:     "database-requires-orm",
			Family: FamilyORMDatabase,
			Check: tsServer(func(c *api.Config) *Issue {
				if !isSet(c.Database) || isSet(c.ORM) {
					return nil
				}
				var orms []api.ORM
				for _, orm := range []api.ORM{api.ORMDrizzle, api.ORMPrisma, api.ORMMongoose} {
					if slices.Contains(ormDatabases[orm], c.Database) {
						orms = append(orms, orm)
					}
				}
				return fail("Database '%s' requires an ORM: %s", c.Database, quoteList(orms, "or"))
			}),
		},
		{
			ID:     "orm-database",
			Family: FamilyORMDatabase,
			Check: tsServer(func(c *api.Config) *Issue {
				allowed, ok := ormDatabases[c.ORM]
				if !ok || !isSet(c.Database) || slices.Contains(allowed, c.Database) {
					return nil
				}
				return fail("ORM '%s' does not support database '%s'; use %s", c.ORM, c.Database, quoteList(allowed, "or"))
			}),
		},
	}
}

func dbSetupRules() []Rule {
	return []Rule{
		{
			ID:     "db-setup-database",
			Family: FamilyDBSetup,
			Check: dbSetup(func(c *api.Config) *Issue {
				allowed := dbSetupDatabases[c.DBSetup]
				if len(allowed) == 0 || slices.Contains(allowed, c.Database) {
					return nil
				}
				return fail("Database setup '%s' requires database %s (got '%s')", c.DBSetup, quoteList(allowed, "or"), c.Database)
			}),
		},
		{
			ID:     "db-setup-orm",
			Family: FamilyDBSetup,
			Check: dbSetup(func(c *api.Config) *Issue {
				allowed := dbSetupORMs[c.DBSetup]
				if len(allowed) == 0 || slices.Contains(allowed, c.ORM) {
					return nil
				}
				return fail("Database setup '%s' requires orm %s (got '%s')", c.DBSetup, quoteList(allowed, "or"), c.ORM)
			}),
		},
		{
			ID:     "db-setup-d1-runtime",
			Family: FamilyDBSetup,
			Check: dbSetup(func(c *api.Config) *Issue {
				if c.DBSetup == api.DBSetupD1 && c.Runtime != api.RuntimeWorkers {
					return fail("Database setup 'd1' requires the workers runtime (got '%s')", c.Runtime)
				}
				return nil
			}),
		},
	}
}

func edgeRules() []Rule {
	return []Rule{
		{
			ID:     "workers-database",
			Family: FamilyEdge,
			Check: ts(func(c *api.Config) *Issue {
				if c.Runtime == api.RuntimeWorkers && c.Database == api.DatabaseMongoDB {
					return fail("The workers runtime does not support database 'mongodb' (its driver needs native sockets)")
				}
				return nil
			}),
		},
		{
			ID:     "workers-docker",
			Family: FamilyEdge,
			Check: ts(func(c *api.Config) *Issue {
				if c.Runtime == api.RuntimeWorkers && c.DBSetup == api.DBSetupDocker {
					return fail("The workers runtime cannot reach a local 'docker' database")
				}
				return nil
			}),
		},
		{
			ID:     "workers-server-deploy",
			Family: FamilyEdge,
			Check: ts(func(c *api.Config) *Issue {
				if c.Runtime == api.RuntimeWorkers && !isSet(c.ServerDeploy) {
					return fail("The workers runtime requires a server deployment; set serverDeploy to 'alchemy'")
				}
				return nil
			}),
		},
		{
			ID:     "server-deploy-runtime",
			Family: FamilyEdge,
			Check: ts(func(c *api.Config) *Issue {
				if isSet(c.ServerDeploy) && c.Runtime != api.RuntimeWorkers {
					return fail("Server deployment '%s' requires the workers runtime (got '%s')", c.ServerDeploy, c.Runtime)
				}
				return nil
			}),
		},
	}
}

func frontendRules() []Rule {
	return []Rule{
		{
			ID:     "single-web-frontend",
			Family: FamilyFrontend,
			Check: ts(func(c *api.Config) *Issue {
				if web := filter(c.Frontend, api.Frontend.IsWeb); len(web) > 1 {
					return fail("frontend: choose at most one web frontend (got %s)", quoteList(web, "and"))
				}
				return nil
			}),
		},
		{
			ID:     "single-native-frontend",
			Family: FamilyFrontend,
			Check: ts(func(c *api.Config) *Issue {
				if native := filter(c.Frontend, api.Frontend.IsNative); len(native) > 1 {
					return fail("frontend: choose at most one native frontend (got %s)", quoteList(native, "and"))
				}
				return nil
			}),
		},
		{
			ID:     "self-backend-frontend",
			Family: FamilyFrontend,
			Check: ts(func(c *api.Config) *Issue {
				if c.Backend != api.BackendSelf {
					return nil
				}
				web := c.WebFrontend()
				if slices.Contains(selfBackendFrontends, web) {
					return nil
				}
				if web == "" {
					web = api.FrontendNone
				}
				return fail("The fullstack 'self' backend supports only %s (got '%s')", quoteList(selfBackendFrontends, "or"), web)
			}),
		},
		{
			ID:     "trpc-frontend",
			Family: FamilyFrontend,
			Check: ts(func(c *api.Config) *Issue {
				if c.API != api.APITRPC {
					return nil
				}
				if web := c.WebFrontend(); slices.Contains(trpcUnsupported, web) {
					return fail("tRPC is not supported with '%s'; use 'orpc'", web)
				}
				return nil
			}),
		},
		{
			ID:     "web-deploy-frontend",
			Family: FamilyFrontend,
			Check: ts(func(c *api.Config) *Issue {
				if isSet(c.WebDeploy) && c.WebFrontend() == "" {
					return fail("Web deployment '%s' requires a web frontend", c.WebDeploy)
				}
				return nil
			}),
		},
	}
}

func prerequisiteRules() []Rule {
	rules := []Rule{
		{
			ID:     "better-auth-database",
			Family: FamilyPrerequisite,
			Check: tsServer(func(c *api.Config) *Issue {
				if c.Auth == api.AuthBetterAuth && !isSet(c.Database) {
					return fail("Better-Auth requires a database")
				}
				return nil
			}),
		},
		{
			ID:     "clerk-convex",
			Family: FamilyPrerequisite,
			Check: ts(func(c *api.Config) *Issue {
				if c.Auth == api.AuthClerk && c.Backend != api.BackendConvex {
					return fail("Clerk authentication requires the 'convex' backend (got '%s')", c.Backend)
				}
				return nil
			}),
		},
		{
			ID:     "polar-auth",
			Family: FamilyPrerequisite,
			Check: ts(func(c *api.Config) *Issue {
				if c.Payments == api.PaymentsPolar && c.Auth != api.AuthBetterAuth {
					return fail("Polar payments require 'better-auth' (got auth '%s')", c.Auth)
				}
				return nil
			}),
		},
		{
			ID:     "polar-frontend",
			Family: FamilyPrerequisite,
			Check: ts(func(c *api.Config) *Issue {
				if c.Payments == api.PaymentsPolar && c.WebFrontend() == "" {
					return fail("Polar payments require a web frontend")
				}
				return nil
			}),
		},
		{
			ID:     "polar-backend",
			Family: FamilyPrerequisite,
			Check: ts(func(c *api.Config) *Issue {
				if c.Payments == api.PaymentsPolar && c.Backend == api.BackendConvex {
					return fail("Polar payments are not supported with the 'convex' backend")
				}
				return nil
			}),
		},
		{
			ID:     "todo-database",
			Family: FamilyPrerequisite,
			Check: tsServer(func(c *api.Config) *Issue {
				if c.HasExample(api.ExampleTodo) && !isSet(c.Database) {
					return fail("The todo example requires a database")
				}
				return nil
			}),
		},
		{
			ID:     "todo-api",
			Family: FamilyPrerequisite,
			Check: tsServer(func(c *api.Config) *Issue {
				if c.HasExample(api.ExampleTodo) && !isSet(c.API) {
					return fail("The todo example requires an API layer: 'trpc' or 'orpc'")
				}
				return nil
			}),
		},
		{
			ID:     "ai-frontend",
			Family: FamilyPrerequisite,
			Check: ts(func(c *api.Config) *Issue {
				if c.HasExample(api.ExampleAI) && c.HasFrontend(api.FrontendSolid) {
					return fail("The ai example does not support the 'solid' frontend")
				}
				return nil
			}),
		},
		{
			ID:     "ai-backend",
			Family: FamilyPrerequisite,
			Check: ts(func(c *api.Config) *Issue {
				if c.HasExample(api.ExampleAI) && c.Backend == api.BackendConvex {
					return fail("The ai example requires a server backend; it is not available with 'convex'")
				}
				return nil
			}),
		},
	}
	for _, addon := range []api.Addon{api.AddonPWA, api.AddonTauri} {
		allowed := addonFrontends[addon]
		rules = append(rules, Rule{
			ID:     "addon-frontend-" + string(addon),
			Family: FamilyPrerequisite,
			Check: ts(func(c *api.Config) *Issue {
				if c.HasAddon(addon) && !slices.Contains(allowed, c.WebFrontend()) {
					return fail("Addon '%s' requires one of the web frontends %s", addon, quoteList(allowed, "or"))
				}
				return nil
			}),
		})
	}
	for _, orm := range sqlORMCategories {
		rules = append(rules, Rule{
			ID:     "sql-orm-" + orm.category,
			Family: FamilyPrerequisite,
			Check: func(c *api.Config) *Issue {
				sel := selected(c, orm.category)
				if len(sel) == 0 {
					return nil
				}
				if c.Database == api.DatabaseMongoDB || !isSet(c.Database) {
					return fail("%s '%s' requires a SQL database: 'sqlite', 'postgres' or 'mysql' (got '%s')", orm.label, sel[0], c.Database)
				}
				return nil
			},
		})
	}
	rules = append(rules, Rule{
		ID:     "django-orm",
		Family: FamilyPrerequisite,
		Check: func(c *api.Config) *Issue {
			if c.PythonWebFramework == api.PythonDjango && isSet(c.PythonORM) {
				return fail("Django ships its own ORM; pythonOrm must be 'none' (got '%s')", c.PythonORM)
			}
			return nil
		},
	})
	return rules
}

// ts restricts a check to TypeScript projects.
func ts(check func(*api.Config) *Issue) func(*api.Config) *Issue {
	return func(c *api.Config) *Issue {
		if c.Ecosystem != api.EcosystemTypeScript {
			return nil
		}
		return check(c)
	}
}

// tsServer restricts a check to TypeScript projects whose backend is not
// convex or none; those two are covered by the backend-database family.
func tsServer(check func(*api.Config) *Issue) func(*api.Config) *Issue {
	return ts(func(c *api.Config) *Issue {
		if c.Backend == api.BackendConvex || !isSet(c.Backend) {
			return nil
		}
		return check(c)
	})
}

func dbSetup(check func(*api.Config) *Issue) func(*api.Config) *Issue {
	return tsServer(func(c *api.Config) *Issue {
		if !isSet(c.DBSetup) {
			return nil
		}
		return check(c)
	})
}

func set(v string) bool { return v != "" && v != api.None }

func isSet[T ~string](v T) bool { return set(string(v)) }

// selected returns the values of category other than "" and "none".
func selected(c *api.Config, category string) []string {
	var out []string
	for _, v := range c.Values(category) {
		if set(v) {
			out = append(out, v)
		}
	}
	return out
}

func filter[T any](in []T, keep func(T) bool) []T {
	var out []T
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// quoteList renders vals as 'a', 'b' or 'c'.
func quoteList[T ~string](vals []T, conj string) string {
	q := make([]string, len(vals))
	for i, v := range vals {
		q[i] = "'" + string(v) + "'"
	}
	if len(q) <= 1 {
		return strings.Join(q, "")
	}
	return strings.Join(q[:len(q)-1], ", ") + " " + conj + " " + q[len(q)-1]
}
