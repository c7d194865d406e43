package datastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestVoyageID(t *testing.T) {
	assert.Equal(t, "440123456-2025-003", VoyageID("440123456", 2025, 3))
	assert.Equal(t, "440123456-2025-012", VoyageID("440123456", 2025, 12))
	assert.Equal(t, "440123456-2025-123", VoyageID("440123456", 2025, 123))
}

func TestGetOrCreateMonthlyVoyage(t *testing.T) {
	store := createTestStore(t)

	voyage, created, err := store.GetOrCreateMonthlyVoyage("440123456", 2025, 3, "수복호")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "440123456-2025-003", voyage.ID)
	assert.Equal(t, "수복호", voyage.VesselName)
	assert.Equal(t, 2025, voyage.Year)
	assert.Equal(t, 3, voyage.VoyageNo)
	assert.Equal(t, StatusFishing, voyage.Status)
	require.NotNil(t, voyage.DeparturePort)
	assert.Equal(t, "미정", *voyage.DeparturePort)
	require.NotNil(t, voyage.DepartureDate)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local), *voyage.DepartureDate)
	require.NotNil(t, voyage.FishingArea)
	assert.Equal(t, "2025년 3월 조업해역", *voyage.FishingArea)

	// Second call returns the same row unchanged.
	again, created, err := store.GetOrCreateMonthlyVoyage("440123456", 2025, 3, "다른이름호")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, voyage.ID, again.ID)
	assert.Equal(t, "수복호", again.VesselName, "existing row wins over new arguments")

	voyages, err := store.SearchVoyages("440123456", 2025, "")
	require.NoError(t, err)
	assert.Len(t, voyages, 1)
}

func TestGetOrCreateMonthlyVoyageValidatesKey(t *testing.T) {
	store := createTestStore(t)

	for _, tc := range []struct {
		name  string
		mmsi  string
		year  int
		month int
	}{
		{"empty mmsi", "", 2025, 3},
		{"zero year", "440123456", 0, 3},
		{"zero month", "440123456", 2025, 0},
		{"month thirteen", "440123456", 2025, 13},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := store.GetOrCreateMonthlyVoyage(tc.mmsi, tc.year, tc.month, "수복호")
			require.Error(t, err)
		})
	}
}

func TestSearchVoyagesFilters(t *testing.T) {
	store := createTestStore(t)

	_, _, err := store.GetOrCreateMonthlyVoyage("440123456", 2025, 1, "수복호")
	require.NoError(t, err)
	_, _, err = store.GetOrCreateMonthlyVoyage("440123456", 2025, 2, "수복호")
	require.NoError(t, err)
	_, _, err = store.GetOrCreateMonthlyVoyage("440123456", 2024, 12, "수복호")
	require.NoError(t, err)
	_, _, err = store.GetOrCreateMonthlyVoyage("440654321", 2025, 1, "동산호")
	require.NoError(t, err)

	all, err := store.SearchVoyages("", 0, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	byVessel, err := store.SearchVoyages("440123456", 0, "")
	require.NoError(t, err)
	assert.Len(t, byVessel, 3)

	byYear, err := store.SearchVoyages("440123456", 2025, "")
	require.NoError(t, err)
	require.Len(t, byYear, 2)
	// Newest departure first.
	assert.Equal(t, 2, byYear[0].VoyageNo)
	assert.Equal(t, 1, byYear[1].VoyageNo)

	_, err = store.UpdateVoyage("440123456-2025-001", map[string]any{"status": StatusCompleted})
	require.NoError(t, err)

	active, err := store.SearchVoyages("440123456", 0, StatusFishing)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestUpdateVoyage(t *testing.T) {
	store := createTestStore(t)

	voyage, _, err := store.GetOrCreateMonthlyVoyage("440123456", 2025, 3, "수복호")
	require.NoError(t, err)

	arrival := time.Date(2025, 3, 20, 14, 0, 0, 0, time.Local)
	updated, err := store.UpdateVoyage(voyage.ID, map[string]any{
		"status":       StatusReturned,
		"arrival_port": "통영",
		"arrival_date": arrival,
		"catch_amount": 1250.5,
		"fish_species": "갈치, 고등어",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusReturned, updated.Status)
	require.NotNil(t, updated.ArrivalPort)
	assert.Equal(t, "통영", *updated.ArrivalPort)
	assert.InDelta(t, 1250.5, updated.CatchAmount, 1e-9)
}

func TestUpdateVoyageRejectsBadInput(t *testing.T) {
	store := createTestStore(t)

	voyage, _, err := store.GetOrCreateMonthlyVoyage("440123456", 2025, 3, "수복호")
	require.NoError(t, err)

	_, err = store.UpdateVoyage(voyage.ID, map[string]any{})
	require.Error(t, err)

	_, err = store.UpdateVoyage(voyage.ID, map[string]any{"status": "표류중"})
	require.Error(t, err)

	_, err = store.UpdateVoyage(voyage.ID, map[string]any{"id": "other-id"})
	require.Error(t, err)

	_, err = store.UpdateVoyage("440999999-2025-001", map[string]any{"status": StatusReturned})
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSaveAndGetTrackPoints(t *testing.T) {
	store := createTestStore(t)

	voyage, _, err := store.GetOrCreateMonthlyVoyage("440123456", 2025, 3, "수복호")
	require.NoError(t, err)

	base := time.Date(2025, 3, 5, 6, 0, 0, 0, time.UTC)
	points := []TrackPoint{
		{Timestamp: base.Add(2 * time.Hour), Latitude: 34.82, Longitude: 128.45, Speed: floatPtr(8.2)},
		{Timestamp: base, Latitude: 34.85, Longitude: 128.42},
		{Timestamp: base.Add(time.Hour), Latitude: 34.84, Longitude: 128.43, Course: floatPtr(182)},
	}
	require.NoError(t, store.SaveTrackPoints(voyage.ID, points))

	got, err := store.GetTrackPoints(voyage.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Timestamp ascending regardless of insertion order.
	assert.True(t, got[0].Timestamp.Before(got[1].Timestamp))
	assert.True(t, got[1].Timestamp.Before(got[2].Timestamp))
	assert.InDelta(t, 34.85, got[0].Latitude, 1e-9)
}

func TestSaveTrackPointsValidation(t *testing.T) {
	store := createTestStore(t)

	err := store.SaveTrackPoints("440123456-2025-003", nil)
	require.Error(t, err, "empty batch is rejected")

	err = store.SaveTrackPoints("440999999-2025-001", []TrackPoint{
		{Timestamp: time.Now(), Latitude: 34.8, Longitude: 128.4},
	})
	require.Error(t, err, "unknown voyage is rejected")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
