package datastore

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestVoyage(t *testing.T, store *SQLiteStore) Voyage {
	t.Helper()
	voyage, _, err := store.GetOrCreateMonthlyVoyage("440123456", 2025, 3, "수복호")
	require.NoError(t, err)
	return voyage
}

func TestSaveAuctionDerivesTotalPrice(t *testing.T) {
	store := createTestStore(t)
	voyage := createTestVoyage(t, store)

	auction := Auction{
		VoyageID:    voyage.ID,
		AuctionDate: time.Date(2025, 3, 10, 5, 30, 0, 0, time.Local),
		AuctionPort: "통영",
		FishSpecies: "갈치",
		Quantity:    150,
		UnitPrice:   12000,
		TotalPrice:  1, // ignored, always recomputed
	}
	require.NoError(t, store.SaveAuction(&auction))

	assert.True(t, strings.HasPrefix(auction.ID, "AUC-"))
	assert.InDelta(t, 1800000, auction.TotalPrice, 1e-9)

	auctions, err := store.GetAuctions(voyage.ID)
	require.NoError(t, err)
	require.Len(t, auctions, 1)
	assert.InDelta(t, 1800000, auctions[0].TotalPrice, 1e-9)
}

func TestSaveAuctionRequiresVoyage(t *testing.T) {
	store := createTestStore(t)

	err := store.SaveAuction(&Auction{
		VoyageID:    "440999999-2025-001",
		AuctionDate: time.Now(),
		AuctionPort: "통영",
		FishSpecies: "갈치",
		Quantity:    10,
		UnitPrice:   1000,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteAuction(t *testing.T) {
	store := createTestStore(t)
	voyage := createTestVoyage(t, store)

	auction := Auction{VoyageID: voyage.ID, AuctionDate: time.Now(), AuctionPort: "통영", FishSpecies: "갈치", Quantity: 10, UnitPrice: 1000}
	require.NoError(t, store.SaveAuction(&auction))

	require.NoError(t, store.DeleteAuction(auction.ID))

	err := store.DeleteAuction(auction.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPrivateSaleRoundTrip(t *testing.T) {
	store := createTestStore(t)
	voyage := createTestVoyage(t, store)

	buyer := "수협중매인"
	sale := PrivateSale{
		VoyageID:    voyage.ID,
		SaleDate:    time.Date(2025, 3, 12, 0, 0, 0, 0, time.Local),
		FishSpecies: "고등어",
		Quantity:    80,
		UnitPrice:   5000,
		Buyer:       &buyer,
	}
	require.NoError(t, store.SavePrivateSale(&sale))
	assert.True(t, strings.HasPrefix(sale.ID, "PRV-"))
	assert.InDelta(t, 400000, sale.TotalPrice, 1e-9)

	sales, err := store.GetPrivateSales(voyage.ID)
	require.NoError(t, err)
	require.Len(t, sales, 1)

	require.NoError(t, store.DeletePrivateSale(sale.ID))
	sales, err = store.GetPrivateSales(voyage.ID)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestExpenseRoundTrip(t *testing.T) {
	store := createTestStore(t)
	voyage := createTestVoyage(t, store)

	expense := Expense{
		VoyageID:    voyage.ID,
		ExpenseDate: time.Date(2025, 3, 8, 0, 0, 0, 0, time.Local),
		Category:    "유류비",
		Amount:      350000,
	}
	require.NoError(t, store.SaveExpense(&expense))
	assert.NotZero(t, expense.ID)

	expenses, err := store.GetExpenses(voyage.ID)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "유류비", expenses[0].Category)

	require.NoError(t, store.DeleteExpense(expense.ID))
	err = store.DeleteExpense(expense.ID)
	require.Error(t, err)
}

func TestStatistics(t *testing.T) {
	store := createTestStore(t)

	require.NoError(t, store.InsertVessel(&Vessel{VesselName: "수복호"}))
	require.NoError(t, store.InsertVessel(&Vessel{VesselName: "동산호"}))

	voyage, _, err := store.GetOrCreateMonthlyVoyage("440123456", 2025, 3, "수복호")
	require.NoError(t, err)
	other, _, err := store.GetOrCreateMonthlyVoyage("440654321", 2025, 3, "동산호")
	require.NoError(t, err)

	_, err = store.UpdateVoyage(other.ID, map[string]any{"status": StatusCompleted, "catch_amount": 500.0})
	require.NoError(t, err)
	_, err = store.UpdateVoyage(voyage.ID, map[string]any{"catch_amount": 1250.5})
	require.NoError(t, err)

	require.NoError(t, store.SaveAuction(&Auction{
		VoyageID: voyage.ID, AuctionDate: time.Now(), AuctionPort: "통영",
		FishSpecies: "갈치", Quantity: 100, UnitPrice: 10000,
	}))

	stats, err := store.Statistics()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalVessels)
	assert.Equal(t, int64(2), stats.TotalVoyages)
	assert.Equal(t, int64(1), stats.ActiveVoyages)
	assert.InDelta(t, 1750.5, stats.TotalCatchAmount, 1e-9)
	assert.InDelta(t, 1000000, stats.TotalAuctionAmount, 1e-9)
}
