package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/modules/user/repository"
	"anoa.com/learnhub/internal/testutil"
	"anoa.com/learnhub/pkg/password"
)

func TestSeedAdminCreatesOnce(t *testing.T) {
	db := testutil.NewDB()
	hasher := password.NewBcryptHasher(4)
	ctx := context.Background()

	require.NoError(t, SeedAdmin(ctx, db.Accounts(), hasher, "Admin@Example.com", "s3cret-pass"))
	require.NoError(t, SeedAdmin(ctx, db.Accounts(), hasher, "admin@example.com", "other-pass"))

	admin, err := db.Accounts().FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, admin.Role)
	assert.True(t, admin.IsActive)
	assert.True(t, hasher.Verify("s3cret-pass", admin.PasswordHash))
}

func TestSeedAdminSkipsWithoutCredentials(t *testing.T) {
	db := testutil.NewDB()
	require.NoError(t, SeedAdmin(context.Background(), db.Accounts(), password.NewBcryptHasher(4), "", ""))

	_, total, err := db.Accounts().FindAll(context.Background(), repository.AccountFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSeedAdminLeavesExistingAccountAlone(t *testing.T) {
	db := testutil.NewDB()
	db.SeedAccount(entity.NewAccount("admin@example.com", entity.RoleStudent, "hash"))

	require.NoError(t, SeedAdmin(context.Background(), db.Accounts(), password.NewBcryptHasher(4), "admin@example.com", "pw"))

	acc, err := db.Accounts().FindByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleStudent, acc.Role)
}
