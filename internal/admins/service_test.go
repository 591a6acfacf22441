package admins

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/collegenews/collegenews/backend/go-services/internal/database"
	"github.com/collegenews/collegenews/backend/go-services/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newSQLiteRepo(t *testing.T) *SQLRepository {
	t.Helper()
	ctx := context.Background()
	db, err := database.OpenSQL(ctx, "sqlite", filepath.Join(t.TempDir(), "admins.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx))
	return NewSQLRepository(db)
}

func repos(t *testing.T) map[string]Repository {
	return map[string]Repository{
		"memory": NewMemoryRepository(),
		"sqlite": newSQLiteRepo(t),
	}
}

func TestEnsureSeedAndAuthenticate(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := NewService(repo).WithCost(bcrypt.MinCost)

			created, err := svc.EnsureSeed(ctx, "admin", "admin123")
			require.NoError(t, err)
			require.True(t, created)

			created, err = svc.EnsureSeed(ctx, "admin", "something-else")
			require.NoError(t, err)
			require.False(t, created, "existing admin must not be re-seeded")

			a, err := svc.Authenticate(ctx, "admin", "admin123")
			require.NoError(t, err)
			require.Equal(t, "admin", a.Username)
			require.NotEqual(t, "admin123", a.PasswordHash)
			require.NotZero(t, a.ID)

			_, err = svc.Authenticate(ctx, "admin", "wrong")
			require.ErrorIs(t, err, ErrInvalidCredentials)
			_, err = svc.Authenticate(ctx, "ghost", "admin123")
			require.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestSetPasswordAndList(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := NewService(repo).WithCost(bcrypt.MinCost)

			_, err := svc.Create(ctx, "editor", "first-pass")
			require.NoError(t, err)
			_, err = svc.Create(ctx, "editor", "another")
			require.ErrorIs(t, err, ErrExists)

			require.NoError(t, svc.SetPassword(ctx, "editor", "second-pass"))
			_, err = svc.Authenticate(ctx, "editor", "first-pass")
			require.ErrorIs(t, err, ErrInvalidCredentials)
			_, err = svc.Authenticate(ctx, "editor", "second-pass")
			require.NoError(t, err)

			require.ErrorIs(t, svc.SetPassword(ctx, "nobody", "whatever"), models.ErrNotFound)
			require.ErrorIs(t, svc.SetPassword(ctx, "editor", "short"), models.ErrValidation)

			_, err = svc.Create(ctx, "chief", "chief-pass")
			require.NoError(t, err)
			list, err := svc.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			require.Equal(t, "editor", list[0].Username)
			require.Equal(t, "chief", list[1].Username)
		})
	}
}

func TestCreateRequiresUsername(t *testing.T) {
	svc := NewService(NewMemoryRepository()).WithCost(bcrypt.MinCost)
	_, err := svc.Create(context.Background(), "  ", "password")
	require.ErrorIs(t, err, models.ErrValidation)
}
