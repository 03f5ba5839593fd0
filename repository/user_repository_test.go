package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	testingutil "github.com/openlaunch/open-launch/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, err := fixtures.CreateTestUser("Grace")
	require.NoError(t, err)

	t.Run("ByEmailIgnoresCase", func(t *testing.T) {
		found, err := repo.ByEmail(ctx, strings.ToUpper(user.Email))
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("ByEmailMissing", func(t *testing.T) {
		found, err := repo.ByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("UpdatePassword", func(t *testing.T) {
		require.NoError(t, repo.UpdatePassword(ctx, user.ID, "new-hash"))
		found, err := repo.ByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", found.PasswordHash)
	})

	t.Run("UpdateMissingUserFails", func(t *testing.T) {
		assert.Error(t, repo.MarkEmailVerified(ctx, 424242, time.Now().UTC()))
	})
}
