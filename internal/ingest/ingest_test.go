package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidegrid/fishtrack-go/internal/datastore"
	"github.com/tidegrid/fishtrack-go/internal/errors"
)

// memStore is an in-memory Store for ingest tests.
type memStore struct {
	vessels   []*datastore.Vessel
	insertErr map[string]error // keyed by vessel name
}

func (m *memStore) CountVessels() (int64, error) {
	return int64(len(m.vessels)), nil
}

func (m *memStore) DeleteAllVessels() (int64, error) {
	removed := int64(len(m.vessels))
	m.vessels = nil
	return removed, nil
}

func (m *memStore) InsertVessel(vessel *datastore.Vessel) error {
	if err, ok := m.insertErr[vessel.VesselName]; ok {
		return err
	}
	m.vessels = append(m.vessels, vessel)
	return nil
}

const censusHeader = "선명,톤수,길이,엔진종류,엔진갯수,엔진출력PS,엔진출력KW,선질,등록번호,건조일시,선적지,업종,장비명,출력,MMSI"

func censusCSV(rows ...string) string {
	return censusHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

func TestIngestParsesAndNormalizesRows(t *testing.T) {
	store := &memStore{}
	ing := NewIngestor(store)

	source := censusCSV(
		"수복호,9.77,12.5,디젤,1,240,176.5,FRP,REG-001,2015-03,부산,연안복합,GPS플로터,-,440123456",
		"동산호,-,,디젤,2,\"1,200\",882,강선,REG-002,2018-11,통영,근해안강망,-,-,440654321",
	)

	report, err := ing.Ingest(context.Background(), strings.NewReader(source), false)
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, int64(2), report.InsertedCount)
	assert.Equal(t, int64(2), report.RowsSeen)
	require.Len(t, store.vessels, 2)

	first := store.vessels[0]
	assert.Equal(t, "수복호", first.VesselName)
	require.NotNil(t, first.Tonnage)
	assert.InDelta(t, 9.77, *first.Tonnage, 1e-9)
	require.NotNil(t, first.EngineCount)
	assert.Equal(t, 1, *first.EngineCount)
	assert.Nil(t, first.EquipmentPower, "dash sentinel should surface as nil")

	second := store.vessels[1]
	assert.Nil(t, second.Tonnage, "dash sentinel should surface as nil")
	assert.Nil(t, second.Length, "blank numeric cell should surface as nil")
	require.NotNil(t, second.EnginePowerPS)
	assert.InDelta(t, 1200, *second.EnginePowerPS, 1e-9, "thousands separator stripped")
}

func TestIngestStripsByteOrderMark(t *testing.T) {
	store := &memStore{}
	ing := NewIngestor(store)

	source := "\xEF\xBB\xBF" + censusCSV("수복호,9.77,12.5,디젤,1,240,176.5,FRP,REG-001,2015-03,부산,연안복합,GPS플로터,-,440123456")

	report, err := ing.Ingest(context.Background(), strings.NewReader(source), false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.InsertedCount)
	require.Len(t, store.vessels, 1)
	assert.Equal(t, "수복호", store.vessels[0].VesselName)
}

func TestIngestSkipsWhenRegistryAlreadyLoaded(t *testing.T) {
	store := &memStore{vessels: []*datastore.Vessel{{VesselName: "기존호"}}}
	ing := NewIngestor(store)

	report, err := ing.Ingest(context.Background(), strings.NewReader(censusCSV("수복호,9.77,,,,,,,,,,,,,")), false)
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, int64(1), report.InsertedCount, "reports the existing count")
	assert.Len(t, store.vessels, 1, "no new rows loaded")
	assert.Equal(t, "기존호", store.vessels[0].VesselName)
}

func TestIngestReplaceEmptiesRegistryFirst(t *testing.T) {
	store := &memStore{vessels: []*datastore.Vessel{{VesselName: "기존호"}}}
	ing := NewIngestor(store)

	report, err := ing.Ingest(context.Background(), strings.NewReader(censusCSV("수복호,9.77,,,,,,,,,,,,,")), true)
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.InsertedCount)
	require.Len(t, store.vessels, 1)
	assert.Equal(t, "수복호", store.vessels[0].VesselName)
}

func TestIngestSkipsFailingRowsAndContinues(t *testing.T) {
	store := &memStore{insertErr: map[string]error{
		"불량호": errors.Newf("simulated insert failure").Component("datastore").Category(errors.CategoryDatabase).Build(),
	}}
	ing := NewIngestor(store)

	source := censusCSV(
		"수복호,9.77,,,,,,,,,,,,,",
		"불량호,1.0,,,,,,,,,,,,,",
		"동산호,29.0,,,,,,,,,,,,,",
	)

	report, err := ing.Ingest(context.Background(), strings.NewReader(source), false)
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.InsertedCount)
	assert.Equal(t, int64(3), report.RowsSeen)
	require.Len(t, store.vessels, 2)
	assert.Equal(t, "수복호", store.vessels[0].VesselName)
	assert.Equal(t, "동산호", store.vessels[1].VesselName)
}

func TestIngestEmptyRegistrationNumberBecomesNil(t *testing.T) {
	store := &memStore{}
	ing := NewIngestor(store)

	source := censusCSV(
		"수복호,9.77,,,,,,,,,,,,,",
		"동산호,29.0,,,,,,,,,,,,,",
	)

	_, err := ing.Ingest(context.Background(), strings.NewReader(source), false)
	require.NoError(t, err)
	require.Len(t, store.vessels, 2)
	assert.Nil(t, store.vessels[0].RegistrationNo)
	assert.Nil(t, store.vessels[1].RegistrationNo)
}

func TestIngestHonorsContextCancellation(t *testing.T) {
	store := &memStore{}
	ing := NewIngestor(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ing.Ingest(ctx, strings.NewReader(censusCSV("수복호,9.77,,,,,,,,,,,,,")), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIngestFileMissingPath(t *testing.T) {
	ing := NewIngestor(&memStore{})

	_, err := ing.IngestFile(context.Background(), "nonexistent/census.csv", false)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryFileIO, errors.GetCategory(err))
}
