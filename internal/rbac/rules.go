package rbac

const (
	PermEvaluationCreate  = "evaluation:create"
	PermEvaluationViewAll = "evaluation:view-all"
	PermEvaluationViewOwn = "evaluation:view-own"
	PermRuleBaseView      = "rulebase:view"
)

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		PermEvaluationViewOwn,
		PermRuleBaseView,
	},
	"teacher": {
		PermEvaluationCreate,
		PermEvaluationViewAll,
		PermRuleBaseView,
	},
	"admin": {
		"*", // everything
	},
}
