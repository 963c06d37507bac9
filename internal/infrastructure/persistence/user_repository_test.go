package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(t *testing.T, email string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(email, "s3cret-pass", identity.RoleCustomer, identity.Person{
		DocumentType:   "CC",
		DocumentNumber: "1020",
		FirstName:      "ana",
		LastName:       "gómez",
		Phone:          "3001234567",
	})
	require.NoError(t, err)
	return u
}

func TestGormUserRepository_SaveAndFind(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	u := newUser(t, "ana@example.com")
	require.NoError(t, repo.Save(ctx, u))

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", byID.Email)
	assert.Equal(t, identity.RoleCustomer, byID.Role)
	assert.Equal(t, "gómez", byID.Person.LastName)
	assert.True(t, byID.VerifyPassword("s3cret-pass"))

	byEmail, err := repo.FindByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	exists, err := repo.ExistsByEmail(ctx, "Ana@Example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormUserRepository_UpdateLastLogin(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	u := newUser(t, "login@example.com")
	require.NoError(t, repo.Save(ctx, u))

	u.RecordLogin(time.Now())
	require.NoError(t, repo.Save(ctx, u))

	found, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, found.LastLoginAt)
}

func TestGormUserRepository_DuplicateEmail(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newUser(t, "dup@example.com")))
	err := repo.Save(ctx, newUser(t, "dup@example.com"))
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestGormUserRepository_FindByIDs(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	a, b := newUser(t, "a@example.com"), newUser(t, "b@example.com")
	require.NoError(t, repo.Save(ctx, a))
	require.NoError(t, repo.Save(ctx, b))

	users, err := repo.FindByIDs(ctx, []uuid.UUID{a.ID, b.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	none, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
