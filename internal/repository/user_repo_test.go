package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/folio-go-api/internal/models"
)

func TestUserRepositoryExistsByEmailOrStudentNumber(t *testing.T) {
	db := setupTestDB(t, &models.User{})
	repo := NewUserRepository(db)
	ctx := context.Background()

	number := "FD-2024-001"
	student := models.User{
		FirstName:     "Mina",
		Email:         "mina@example.com",
		PasswordHash:  "x",
		Role:          models.RoleStudent,
		StudentNumber: &number,
		Department:    models.DepartmentFashionDesign,
	}
	require.NoError(t, repo.Create(ctx, &student))

	taken, err := repo.ExistsByEmailOrStudentNumber(ctx, "mina@example.com", "")
	require.NoError(t, err)
	require.True(t, taken)

	taken, err = repo.ExistsByEmailOrStudentNumber(ctx, "other@example.com", "FD-2024-001")
	require.NoError(t, err)
	require.True(t, taken, "student number alone should collide")

	taken, err = repo.ExistsByEmailOrStudentNumber(ctx, "other@example.com", "FD-2024-999")
	require.NoError(t, err)
	require.False(t, taken)
}

func TestUserRepositoryListPendingStudents(t *testing.T) {
	db := setupTestDB(t, &models.User{})
	repo := NewUserRepository(db)
	ctx := context.Background()

	approved := models.User{Email: "approved@example.com", PasswordHash: "x", Role: models.RoleStudent, IsApproved: true}
	pending := models.User{Email: "pending@example.com", PasswordHash: "x", Role: models.RoleStudent}
	admin := models.User{Email: "admin@example.com", PasswordHash: "x", Role: models.RoleAdmin, IsApproved: true}

	require.NoError(t, repo.Create(ctx, &approved))
	require.NoError(t, repo.Create(ctx, &pending))
	require.NoError(t, repo.Create(ctx, &admin))

	users, err := repo.ListPendingStudents(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "pending@example.com", users[0].Email)
}

func TestUserRepositorySetApproved(t *testing.T) {
	db := setupTestDB(t, &models.User{})
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := models.User{Email: "s@example.com", PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, repo.Create(ctx, &user))

	require.NoError(t, repo.SetApproved(ctx, user.ID))

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, stored.IsApproved)
}

func TestUserRepositoryReplaceProfileUnknownID(t *testing.T) {
	db := setupTestDB(t, &models.User{})
	repo := NewUserRepository(db)

	err := repo.ReplaceProfile(context.Background(), 4242, map[string]interface{}{"department": "textile"})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepositoryDelete(t *testing.T) {
	db := setupTestDB(t, &models.User{})
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := models.User{Email: "gone@example.com", PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, repo.Create(ctx, &user))

	require.NoError(t, repo.Delete(ctx, user.ID))
	require.ErrorIs(t, repo.Delete(ctx, user.ID), gorm.ErrRecordNotFound)

	_, err := repo.GetByID(ctx, user.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func setupTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrator().DropTable(entities...))
	require.NoError(t, db.AutoMigrate(entities...))
	return db
}
