package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

func TestDeliveryLogStore_RecordAndList(t *testing.T) {
	store := NewDeliveryLogStore()
	ctx := context.Background()

	first := domain.DeliveryReceipt{
		BookID:      "book-1",
		ChunkIndex:  0,
		PasteURL:    "https://dpaste.org/abc",
		DeliveredAt: time.Now(),
	}
	second := domain.DeliveryReceipt{
		BookID:      "book-1",
		ChunkIndex:  1,
		PasteURL:    "https://dpaste.org/def",
		DeliveredAt: time.Now(),
	}

	require.NoError(t, store.Record(ctx, first))
	require.NoError(t, store.Record(ctx, second))

	receipts, err := store.ListByBook(ctx, "book-1")
	require.NoError(t, err)
	require.Len(t, receipts, 2)

	// Oldest first
	assert.Equal(t, 0, receipts[0].ChunkIndex)
	assert.Equal(t, 1, receipts[1].ChunkIndex)
}

func TestDeliveryLogStore_ListByBook_FiltersOtherBooks(t *testing.T) {
	store := NewDeliveryLogStore()
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, domain.DeliveryReceipt{BookID: "book-1", ChunkIndex: 0}))
	require.NoError(t, store.Record(ctx, domain.DeliveryReceipt{BookID: "book-2", ChunkIndex: 0}))

	receipts, err := store.ListByBook(ctx, "book-1")
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, "book-1", receipts[0].BookID)
}

func TestDeliveryLogStore_ListByBook_Empty(t *testing.T) {
	store := NewDeliveryLogStore()

	receipts, err := store.ListByBook(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, receipts)
}
