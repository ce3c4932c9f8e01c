package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/theatre-booking/internal/database/dbtest"
	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
)

var testNow = time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

func testOptions() Options {
	return Options{
		Secret:     "test-secret",
		TTL:        time.Hour,
		BcryptCost: bcrypt.MinCost,
		Now:        func() time.Time { return testNow },
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Seeded(t, testNow)
	store := NewMemoryStore()
	svc := NewService(db, store, testOptions())
	logs := repository.NewLogRepo(db)

	require.False(t, svc.IsAuthenticated())

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "admin", "nope")
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
		assert.False(t, svc.IsAuthenticated())
	})

	t.Run("unknown user gets the same error", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost", "admin123")
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("success", func(t *testing.T) {
		before, err := logs.Count(ctx, "")
		require.NoError(t, err)

		u, err := svc.Login(ctx, "admin", "admin123")
		require.NoError(t, err)
		assert.Equal(t, "admin", u.Username)
		assert.True(t, svc.IsAdmin())

		after, err := logs.Count(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, before+1, after)

		raw, ok, err := store.Get(CurrentUserKey)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NotEmpty(t, raw)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Seeded(t, testNow)
	svc := NewService(db, NewMemoryStore(), testOptions())
	logs := repository.NewLogRepo(db)

	u, err := svc.Register(ctx, RegisterInput{Username: "ana", Password: "pw", Email: "Ana@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, u.Role)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, u, svc.Current())

	n, err := logs.Count(ctx, model.ActionUserRegister)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = logs.Count(ctx, model.ActionUserLogin)
	require.NoError(t, err)
	assert.Zero(t, n, "registration logs in without a separate login entry")

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{Username: "ana", Password: "pw", Email: "other@example.com"})
		assert.ErrorIs(t, err, model.ErrDuplicateIdentity)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{Username: "bob", Password: "pw", Email: "ana@example.com"})
		assert.ErrorIs(t, err, model.ErrDuplicateIdentity)
	})

	t.Run("missing field", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com"})
		assert.True(t, model.IsValidation(err))
	})

	users, err := repository.NewUserRepo(db).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, users)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Seeded(t, testNow)
	store := NewMemoryStore()
	svc := NewService(db, store, testOptions())
	logs := repository.NewLogRepo(db)

	require.NoError(t, svc.Logout(ctx), "logout without a session is a no-op")
	n, err := logs.Count(ctx, model.ActionUserLogout)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx))
	assert.Nil(t, svc.Current())

	n, err = logs.Count(ctx, model.ActionUserLogout)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok, err := store.Get(CurrentUserKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionRestore(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Seeded(t, testNow)
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))

	first := NewService(db, store, testOptions())
	_, err := first.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	t.Run("valid cache restores the user", func(t *testing.T) {
		second := NewService(db, store, testOptions())
		require.NotNil(t, second.Current())
		assert.Equal(t, "admin", second.Current().Username)
	})

	t.Run("expired cache is discarded", func(t *testing.T) {
		opts := testOptions()
		opts.Now = func() time.Time { return testNow.Add(2 * time.Hour) }
		late := NewService(db, store, opts)
		assert.Nil(t, late.Current())
		_, ok, err := store.Get(CurrentUserKey)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("corrupt cache is discarded", func(t *testing.T) {
		require.NoError(t, store.Set(CurrentUserKey, "{garbage"))
		svc := NewService(db, store, testOptions())
		assert.Nil(t, svc.Current())
		assert.False(t, svc.IsAuthenticated())
	})
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)
	require.NoError(t, store.Set("a", "1"))

	v, ok, err := store.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	require.NoError(t, store.Delete("a"))
	_, ok, err = store.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))
	_, _, err = store.Get("a")
	assert.Error(t, err)
	require.NoError(t, store.Set("b", "2"), "an unreadable file is replaced on write")
	v, ok, err = store.Get("b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}
