package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anoa.com/learnhub/internal/approval"
	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/modules/transaction/dto"
	"anoa.com/learnhub/internal/testutil"
	"anoa.com/learnhub/pkg/apperror"
)

var now = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func newService(db *testutil.DB) TransactionService {
	machine := approval.NewTransactionMachine(approval.WithClock(func() time.Time { return now }))
	return NewTransactionService(db.Transactions(), machine, nil)
}

func TestCreateTransaction(t *testing.T) {
	db := testutil.NewDB()
	svc := newService(db)
	buyer := db.SeedAccount(entity.NewAccount("b@x.com", entity.RoleTransaction, "hash"))

	tx, err := svc.Create(context.Background(), buyer, dto.CreateTransactionRequest{
		Amount:          49.5,
		Currency:        "idr",
		TransactionType: entity.TransactionEnrollment,
		PaymentMethod:   entity.PaymentWallet,
	})
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, tx.AccountID)
	assert.Equal(t, "IDR", tx.Currency)
	assert.Equal(t, entity.StatusPending, tx.Status)
	assert.Regexp(t, `^TXN-\d+-[0-9A-Z]{9}$`, tx.Code)

	_, err = svc.Create(context.Background(), nil, dto.CreateTransactionRequest{})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestGetIsOwnerOrAdmin(t *testing.T) {
	db := testutil.NewDB()
	svc := newService(db)
	ctx := context.Background()

	owner := db.SeedAccount(entity.NewAccount("o@x.com", entity.RoleTransaction, "hash"))
	other := db.SeedAccount(entity.NewAccount("x@x.com", entity.RoleReview, "hash"))
	admin := db.SeedAccount(entity.NewAccount("a@x.com", entity.RoleAdmin, "hash"))
	tx := db.SeedTransaction(&entity.Transaction{AccountID: owner.ID, Code: "TXN-1", Moderation: entity.Moderation{Status: entity.StatusPending}})

	_, err := svc.Get(ctx, owner, tx.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, admin, tx.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, other, tx.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestTransactionLifecycle(t *testing.T) {
	db := testutil.NewDB()
	svc := newService(db)
	ctx := context.Background()

	admin := db.SeedAccount(entity.NewAccount("a@x.com", entity.RoleAdmin, "hash"))
	tx := db.SeedTransaction(&entity.Transaction{AccountID: admin.ID, Code: "TXN-1", Moderation: entity.Moderation{Status: entity.StatusPending}})

	_, err := svc.SetStatus(ctx, admin, tx.ID, entity.StatusCompleted, "")
	assert.Equal(t, http.StatusConflict, apperror.MapErrorToStatus(err))

	got, err := svc.Moderate(ctx, admin, tx.ID, approval.ActionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, got.Status)
	assert.Nil(t, got.CompletedAt)

	got, err = svc.SetStatus(ctx, admin, tx.ID, entity.StatusCompleted, "")
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, now, *got.CompletedAt)

	got, err = svc.SetStatus(ctx, admin, tx.ID, entity.StatusRefunded, "Customer request")
	require.NoError(t, err)
	assert.Equal(t, "Customer request", *got.Reason)

	stored, err := db.Transactions().FindByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRefunded, stored.Status)
	require.NotNil(t, stored.CompletedAt)
	assert.Equal(t, now, *stored.CompletedAt)
}

func TestListFiltersByOwner(t *testing.T) {
	db := testutil.NewDB()
	svc := newService(db)

	a := db.SeedAccount(entity.NewAccount("a@x.com", entity.RoleTransaction, "hash"))
	b := db.SeedAccount(entity.NewAccount("b@x.com", entity.RoleTransaction, "hash"))
	db.SeedTransaction(&entity.Transaction{AccountID: a.ID, Code: "TXN-1"})
	db.SeedTransaction(&entity.Transaction{AccountID: a.ID, Code: "TXN-2"})
	db.SeedTransaction(&entity.Transaction{AccountID: b.ID, Code: "TXN-3"})

	page, err := svc.List(context.Background(), dto.TransactionFilter{UserID: a.ID.String()})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}
