package rbac

// RolePermissions is the default policy.
var RolePermissions = map[string][]string{
	"student": {
		"quiz:view",
		"take:create",
		"take:view-own",
	},
	"teacher": {
		"quiz:view",
		"quiz:create",
		"quiz:view-answers",
		"take:create",
		"take:view-own",
		"take:view-all",
	},
	"admin": {
		"*", // everything
	},
}
