package datastore

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidegrid/fishtrack-go/internal/conf"
)

// createMySQLTestStore opens a store against the MySQL server named by the
// MYSQL_TEST_* environment variables, or skips the test when none is
// configured. CI provisions the server; local runs without one skip.
func createMySQLTestStore(t *testing.T) *MySQLStore {
	t.Helper()

	host := os.Getenv("MYSQL_TEST_HOST")
	if host == "" {
		t.Skip("MySQL not configured. Set MYSQL_TEST_HOST, MYSQL_TEST_USER, MYSQL_TEST_PASSWORD, MYSQL_TEST_DATABASE to enable.")
	}

	settings := &conf.Settings{}
	settings.Output.MySQL.Enabled = true
	settings.Output.MySQL.Host = host
	settings.Output.MySQL.Port = os.Getenv("MYSQL_TEST_PORT")
	if settings.Output.MySQL.Port == "" {
		settings.Output.MySQL.Port = "3306"
	}
	settings.Output.MySQL.Username = os.Getenv("MYSQL_TEST_USER")
	settings.Output.MySQL.Password = os.Getenv("MYSQL_TEST_PASSWORD")
	settings.Output.MySQL.Database = os.Getenv("MYSQL_TEST_DATABASE")

	store := &MySQLStore{Settings: settings}
	require.NoError(t, store.Open())
	t.Cleanup(func() {
		_, err := store.DeleteAllVessels()
		assert.NoError(t, err)
		require.NoError(t, store.Close())
	})

	return store
}

func TestMySQLVesselRoundtrip(t *testing.T) {
	store := createMySQLTestStore(t)

	_, err := store.DeleteAllVessels()
	require.NoError(t, err)

	vessel := Vessel{
		VesselName:     "수복호",
		Port:           strPtr("통영"),
		RegistrationNo: strPtr("REG-MYSQL-001"),
		GroupName:      strPtr("연안회, 통영선단"),
	}
	require.NoError(t, store.InsertVessel(&vessel))

	got, err := store.GetVessel(vessel.ID)
	require.NoError(t, err)
	assert.Equal(t, "수복호", got.VesselName)
	assert.Equal(t, "통영", *got.Port)

	vessels, total, err := store.SearchVessels(VesselFilter{GroupName: "통영선단"}, 1, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, vessels, 1)
	assert.Equal(t, vessel.ID, vessels[0].ID)
}

func TestMySQLMonthlyVoyageGetOrCreate(t *testing.T) {
	store := createMySQLTestStore(t)

	voyage, created, err := store.GetOrCreateMonthlyVoyage("440123456", 2025, 4, "수복호")
	require.NoError(t, err)
	assert.True(t, created)
	t.Cleanup(func() {
		assert.NoError(t, store.DB.Delete(&Voyage{}, "id = ?", voyage.ID).Error)
	})

	again, created, err := store.GetOrCreateMonthlyVoyage("440123456", 2025, 4, "수복호")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, voyage.ID, again.ID)
}
