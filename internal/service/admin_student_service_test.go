package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/folio-go-api/internal/models"
)

func TestAdminStudentServiceApproveIsIdempotent(t *testing.T) {
	users := newUserRepoFake()
	recorder := &recorderFake{}
	svc := NewAdminStudentService(users, newProjectRepoFake(), recorder, testLogger())

	student := seedAccount(t, users, "pending@example.com", "password-1", models.RoleStudent, false)

	resp, err := svc.Approve(context.Background(), student.ID, Actor{ID: 9, Role: models.RoleAdmin})
	require.NoError(t, err)
	require.True(t, resp.IsApproved)
	require.Equal(t, []string{ActionStudentApproval}, recorder.actions)

	resp, err = svc.Approve(context.Background(), student.ID, Actor{ID: 9, Role: models.RoleAdmin})
	require.NoError(t, err, "re-approving is a silent no-op")
	require.True(t, resp.IsApproved)
	require.Len(t, recorder.actions, 1, "a no-op approval produces no second audit entry")
}

func TestAdminStudentServiceApproveRejectsNonStudents(t *testing.T) {
	users := newUserRepoFake()
	svc := NewAdminStudentService(users, newProjectRepoFake(), &recorderFake{}, testLogger())

	admin := seedAccount(t, users, "admin@example.com", "password-1", models.RoleAdmin, true)

	_, err := svc.Approve(context.Background(), admin.ID, Actor{ID: 9, Role: models.RoleAdmin})
	require.ErrorIs(t, err, ErrNotAStudent)
}

func TestAdminStudentServiceApproveUnknownID(t *testing.T) {
	svc := NewAdminStudentService(newUserRepoFake(), newProjectRepoFake(), &recorderFake{}, testLogger())

	_, err := svc.Approve(context.Background(), 404, Actor{ID: 9, Role: models.RoleAdmin})
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestAdminStudentServiceDeleteRemovesProjectsFirst(t *testing.T) {
	users := newUserRepoFake()
	projects := newProjectRepoFake()
	recorder := &recorderFake{}
	svc := NewAdminStudentService(users, projects, recorder, testLogger())

	student := seedAccount(t, users, "leaver@example.com", "password-1", models.RoleStudent, true)
	owned := models.Project{Title: "Theirs", Category: models.CategoryTextile, Status: models.ProjectStatusApproved, UserID: student.ID}
	require.NoError(t, projects.Create(context.Background(), &owned))

	require.NoError(t, svc.Delete(context.Background(), student.ID, Actor{ID: 9, Role: models.RoleAdmin}))

	require.Empty(t, projects.projects)
	_, err := users.GetByID(context.Background(), student.ID)
	require.Error(t, err)
	require.Equal(t, []string{ActionStudentDeletion}, recorder.actions)
}

func TestAdminStudentServiceDeleteRejectsNonStudents(t *testing.T) {
	users := newUserRepoFake()
	svc := NewAdminStudentService(users, newProjectRepoFake(), &recorderFake{}, testLogger())

	admin := seedAccount(t, users, "admin@example.com", "password-1", models.RoleAdmin, true)

	err := svc.Delete(context.Background(), admin.ID, Actor{ID: 9, Role: models.RoleAdmin})
	require.ErrorIs(t, err, ErrNotAStudent)
}
