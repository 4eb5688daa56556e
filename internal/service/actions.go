package service

import (
	"fmt"
	"strings"
)

// Closed taxonomy of auditable actions.
const (
	ActionStudentSignup    = "student_signup"
	ActionAdminSignup      = "admin_signup"
	ActionLogin            = "login"
	ActionProfileUpdate    = "profile_update"
	ActionProjectSubmit    = "project_submission"
	ActionProjectUpdate    = "project_update"
	ActionProjectDelete    = "project_deletion"
	ActionStudentApproval  = "student_approval"
	ActionStudentDeletion  = "student_deletion"
	ActionProjectApproval  = "project_approval"
	ActionProjectRejection = "project_rejection"
	ActionAnalyticsView    = "analytics_view"
	ActionDashboardView    = "dashboard_view"
)

// ActionRule maps one (method, path fragment) pair to an action kind.
type ActionRule struct {
	Method     string
	PathPart   string
	Action     string
	EntityType string
	// LogResponse marks the restricted subset of actions whose response body
	// is captured in the audit metadata.
	LogResponse bool
}

// ActionClassifier resolves requests to at most one action kind using an
// explicit rules table instead of string matching scattered through handlers.
type ActionClassifier struct {
	rules []ActionRule
}

// DefaultActionRules covers every auditable mutating route of the API.
func DefaultActionRules() []ActionRule {
	return []ActionRule{
		{Method: "POST", PathPart: "/create-projects", Action: ActionProjectSubmit, EntityType: "project"},
		{Method: "PATCH", PathPart: "/update-project", Action: ActionProjectUpdate, EntityType: "project"},
		{Method: "DELETE", PathPart: "/delete-project", Action: ActionProjectDelete, EntityType: "project"},
		{Method: "PATCH", PathPart: "/approve-student/", Action: ActionStudentApproval, EntityType: "student", LogResponse: true},
		{Method: "DELETE", PathPart: "/delete-student/", Action: ActionStudentDeletion, EntityType: "student"},
		{Method: "PATCH", PathPart: "/approve-project", Action: ActionProjectApproval, EntityType: "project", LogResponse: true},
		{Method: "PATCH", PathPart: "/reject-project", Action: ActionProjectRejection, EntityType: "project", LogResponse: true},
		{Method: "POST", PathPart: "/save-profile", Action: ActionProfileUpdate, EntityType: "profile"},
	}
}

// NewActionClassifier builds a classifier from the given rules table.
func NewActionClassifier(rules []ActionRule) *ActionClassifier {
	return &ActionClassifier{rules: rules}
}

// Classify returns the rule matching the request, if any. No match means the
// request produces no audit entry.
func (c *ActionClassifier) Classify(method, path string) (ActionRule, bool) {
	for _, rule := range c.rules {
		if strings.EqualFold(rule.Method, method) && strings.Contains(path, rule.PathPart) {
			return rule, true
		}
	}
	return ActionRule{}, false
}

// RouteRef identifies one registered route for startup validation.
type RouteRef struct {
	Method string
	Path   string
}

// Validate checks at startup that every authenticated mutating route either
// matches a classification rule or is explicitly exempt, so new routes cannot
// silently escape the audit trail.
func (c *ActionClassifier) Validate(routes []RouteRef, exempt []string) error {
	for _, route := range routes {
		switch route.Method {
		case "POST", "PUT", "PATCH", "DELETE":
		default:
			continue
		}

		if isExemptRoute(route.Path, exempt) {
			continue
		}

		if _, ok := c.Classify(route.Method, route.Path); !ok {
			return fmt.Errorf("no audit classification rule for %s %s", route.Method, route.Path)
		}
	}
	return nil
}

func isExemptRoute(path string, exempt []string) bool {
	for _, fragment := range exempt {
		if fragment != "" && strings.Contains(path, fragment) {
			return true
		}
	}
	return false
}
