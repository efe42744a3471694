package rbac

// Roles are a closed set. The platform distinguishes only teachers and
// students; anything finer-grained hangs off permissions, not new roles.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

func ValidRole(role string) bool {
	return role == RoleTeacher || role == RoleStudent
}

var RolePermissions = map[string][]string{
	RoleStudent: {
		"test:view",
		"test:submit",
		"submission:create",
		"submission:download-own",
		"material:view",
	},
	RoleTeacher: {
		"course:create",
		"course:list",
		"test:create",
		"test:view",
		"test:delete",
		"test:results",
		"assignment:*",
		"submission:list",
		"submission:grade",
		"submission:download-own",
		"material:*",
		"analytics:view",
		"gradebook:view",
	},
}
