package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActionClassifierClassify(t *testing.T) {
	classifier := NewActionClassifier(DefaultActionRules())

	rule, ok := classifier.Classify("POST", "/api/v1/student/create-projects")
	require.True(t, ok)
	require.Equal(t, ActionProjectSubmit, rule.Action)
	require.False(t, rule.LogResponse)

	rule, ok = classifier.Classify("PATCH", "/api/v1/admin/approve-student/42")
	require.True(t, ok)
	require.Equal(t, ActionStudentApproval, rule.Action)
	require.True(t, rule.LogResponse)

	_, ok = classifier.Classify("GET", "/api/v1/student/create-projects")
	require.False(t, ok, "method must match, not just the path")

	_, ok = classifier.Classify("POST", "/api/v1/unknown")
	require.False(t, ok)
}

func TestActionClassifierValidateFlagsUncoveredRoutes(t *testing.T) {
	classifier := NewActionClassifier(DefaultActionRules())

	routes := []RouteRef{
		{Method: "POST", Path: "/api/v1/student/create-projects"},
		{Method: "GET", Path: "/api/v1/public/projects"},
		{Method: "PATCH", Path: "/api/v1/admin/approve-project"},
	}
	require.NoError(t, classifier.Validate(routes, nil))

	routes = append(routes, RouteRef{Method: "POST", Path: "/api/v1/admin/brand-new-route"})
	err := classifier.Validate(routes, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "/api/v1/admin/brand-new-route")

	require.NoError(t, classifier.Validate(routes, []string{"/brand-new-route"}), "exempt fragments suppress the failure")
}
