package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

func testBill(owner string, createdAt int64) *models.Bill {
	return &models.Bill{
		SessionID: "s1",
		Owner:     owner,
		Subtotal:  decimal.RequireFromString("12.99"),
		Total:     decimal.RequireFromString("14.09"),
		CreatedAt: createdAt,
		Items: []models.ReceiptItem{
			{ID: "i1", Name: "Pizza", Price: decimal.RequireFromString("12.99"), AssignedTo: "p1"},
		},
		Shares: []models.Share{
			{ParticipantID: "p1", DisplayName: "You", Items: []models.ShareItem{{ItemID: "i1", Name: "Pizza"}}},
			{ParticipantID: "p2", DisplayName: "Alex"},
		},
	}
}

func TestCreateAndGetBill(t *testing.T) {
	ctx := context.Background()
	store := New()

	bill := testBill("", 100)
	require.NoError(t, store.CreateBill(ctx, bill))
	assert.NotEmpty(t, bill.ID)
	assert.Equal(t, "Split with You", bill.Title)

	got, err := store.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.Title, got.Title)
	assert.True(t, got.Total.Equal(bill.Total))

	// Mutating the returned copy must not leak into the store.
	got.Items[0].AssignedTo = "p2"
	again, err := store.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, "p1", again.Items[0].AssignedTo)
}

func TestGetBillNotFound(t *testing.T) {
	_, err := New().GetBill(context.Background(), "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestCreateBillDuplicateID(t *testing.T) {
	ctx := context.Background()
	store := New()

	bill := testBill("", 100)
	bill.ID = "fixed"
	require.NoError(t, store.CreateBill(ctx, bill))
	assert.Error(t, store.CreateBill(ctx, testBillWithID("fixed")))
}

func testBillWithID(id string) *models.Bill {
	b := testBill("", 1)
	b.ID = id
	return b
}

func TestListBillsByOwner(t *testing.T) {
	ctx := context.Background()
	store := New()

	older := testBill("user-1", 100)
	newer := testBill("user-1", 200)
	other := testBill("user-2", 300)
	for _, b := range []*models.Bill{older, newer, other} {
		require.NoError(t, store.CreateBill(ctx, b))
	}

	bills, err := store.ListBills(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, newer.ID, bills[0].ID)
	assert.Equal(t, older.ID, bills[1].ID)

	none, err := store.ListBills(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}
