package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidegrid/fishtrack-go/internal/conf"
	"github.com/tidegrid/fishtrack-go/internal/datastore"
)

// newTestAPI wires a controller against a fresh SQLite store and temp
// archive/upload directories.
func newTestAPI(t *testing.T) (*Controller, *datastore.SQLiteStore, *conf.Settings) {
	t.Helper()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "api.db")
	settings.Archive.Root = t.TempDir()
	settings.Uploads.PhotoDir = filepath.Join(t.TempDir(), "photos")
	settings.Uploads.FileDir = filepath.Join(t.TempDir(), "files")

	store := &datastore.SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	controller := New(echo.New(), store, settings)
	return controller, store, settings
}

// request performs one in-process HTTP request and decodes the JSON body.
func request(t *testing.T, c *Controller, method, target string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)

	decoded := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestHealthCheck(t *testing.T) {
	c, _, _ := newTestAPI(t)

	rec, body := request(t, c, http.MethodGet, "/api/v2/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database_status"])
}

func TestGetVesselsPaginationEnvelope(t *testing.T) {
	c, store, _ := newTestAPI(t)

	for i := 1; i <= 25; i++ {
		port := "통영"
		require.NoError(t, store.InsertVessel(&datastore.Vessel{
			VesselName: fmt.Sprintf("어선%02d호", i),
			Port:       &port,
		}))
	}

	rec, body := request(t, c, http.MethodGet, "/api/v2/registry?page=2&pageSize=10", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 25, body["total"])
	assert.EqualValues(t, 2, body["page"])
	assert.EqualValues(t, 10, body["pageSize"])
	assert.EqualValues(t, 3, body["totalPages"])

	data, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, 10)
}

func TestGetVesselsGroupFilter(t *testing.T) {
	c, store, _ := newTestAPI(t)

	groupSet := "연안회, 통영선단"
	solo := "통영선단연합"
	require.NoError(t, store.InsertVessel(&datastore.Vessel{VesselName: "수복호", GroupName: &groupSet}))
	require.NoError(t, store.InsertVessel(&datastore.Vessel{VesselName: "한려호", GroupName: &solo}))

	rec, body := request(t, c, http.MethodGet, "/api/v2/registry?groupName="+urlEscape("통영선단"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["total"])

	data := body["data"].([]any)
	require.Len(t, data, 1)
	vessel := data[0].(map[string]any)
	assert.Equal(t, "수복호", vessel["vesselName"])

	groups := vessel["groups"].([]any)
	assert.Equal(t, []any{"연안회", "통영선단"}, groups)
}

func TestGetVesselNotFound(t *testing.T) {
	c, _, _ := newTestAPI(t)

	rec, body := request(t, c, http.MethodGet, "/api/v2/registry/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, body["correlation_id"])
}

func TestUpdateVessel(t *testing.T) {
	c, store, _ := newTestAPI(t)

	vessel := datastore.Vessel{VesselName: "수복호"}
	require.NoError(t, store.InsertVessel(&vessel))

	rec, body := request(t, c, http.MethodPatch, fmt.Sprintf("/api/v2/registry/%d", vessel.ID), map[string]any{
		"port":      "부산",
		"groupName": "연안회",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]any)
	assert.Equal(t, "부산", data["port"])
	assert.Equal(t, []any{"연안회"}, data["groups"].([]any))

	// Empty patch is rejected.
	rec, _ = request(t, c, http.MethodPatch, fmt.Sprintf("/api/v2/registry/%d", vessel.ID), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadCensus(t *testing.T) {
	c, store, _ := newTestAPI(t)

	csvContent := "선명,톤수,선적지\n수복호,9.77,통영\n동산호,29.0,부산\n"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "census.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csvContent))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v2/registry/upload", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, true, report["success"])
	assert.EqualValues(t, 2, report["insertedCount"])

	count, err := store.CountVessels()
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestUploadCensusRejectsNonCSV(t *testing.T) {
	c, _, _ := newTestAPI(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "census.xlsx")
	require.NoError(t, err)
	_, err = part.Write([]byte("not a csv"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v2/registry/upload", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFacetEndpoints(t *testing.T) {
	c, store, _ := newTestAPI(t)

	port := "통영"
	businessType := "연안복합"
	require.NoError(t, store.InsertVessel(&datastore.Vessel{VesselName: "수복호", Port: &port, BusinessType: &businessType}))

	for _, target := range []string{
		"/api/v2/registry/ports",
		"/api/v2/registry/business-types",
		"/api/v2/registry/groups",
		"/api/v2/registry/organizations",
	} {
		rec, body := request(t, c, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusOK, rec.Code, target)
		_, hasData := body["data"]
		assert.True(t, hasData, target)
	}

	rec, body := request(t, c, http.MethodGet, "/api/v2/registry/ports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	facets := body["data"].([]any)
	require.Len(t, facets, 1)
	facet := facets[0].(map[string]any)
	assert.Equal(t, "통영", facet["value"])
	assert.EqualValues(t, 1, facet["count"])
}

func TestFacetCacheFlushedOnVesselUpdate(t *testing.T) {
	c, store, _ := newTestAPI(t)

	port := "통영"
	vessel := datastore.Vessel{VesselName: "수복호", Port: &port}
	require.NoError(t, store.InsertVessel(&vessel))

	// Prime the cache.
	rec, body := request(t, c, http.MethodGet, "/api/v2/registry/ports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	facets := body["data"].([]any)
	require.Len(t, facets, 1)
	assert.Equal(t, "통영", facets[0].(map[string]any)["value"])

	rec, _ = request(t, c, http.MethodPatch, fmt.Sprintf("/api/v2/registry/%d", vessel.ID), map[string]any{
		"port": "부산",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// The listing reflects the new port immediately, not after the TTL.
	rec, body = request(t, c, http.MethodGet, "/api/v2/registry/ports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	facets = body["data"].([]any)
	require.Len(t, facets, 1)
	assert.Equal(t, "부산", facets[0].(map[string]any)["value"])
}

func TestMonthlyVoyageCreateThenFetch(t *testing.T) {
	c, _, _ := newTestAPI(t)

	target := "/api/v2/voyages/monthly?mmsi=440123456&year=2025&month=3&vesselName=" + urlEscape("수복호")

	rec, body := request(t, c, http.MethodPost, target, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["created"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "440123456-2025-003", data["id"])
	assert.Equal(t, "조업중", data["status"])

	rec, body = request(t, c, http.MethodPost, target, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["created"])
}

func TestMonthlyVoyageValidation(t *testing.T) {
	c, _, _ := newTestAPI(t)

	rec, _ := request(t, c, http.MethodPost, "/api/v2/voyages/monthly?mmsi=440123456&year=2025&month=13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVoyageTrackPoints(t *testing.T) {
	c, store, _ := newTestAPI(t)

	voyage, _, err := store.GetOrCreateMonthlyVoyage("440123456", 2025, 3, "수복호")
	require.NoError(t, err)

	points := []map[string]any{
		{"timestamp": "2025-03-05T08:00:00Z", "latitude": 34.85, "longitude": 128.42},
		{"timestamp": "2025-03-05T06:00:00Z", "latitude": 34.82, "longitude": 128.45, "speed": 8.2},
	}
	rec, body := request(t, c, http.MethodPost, "/api/v2/voyages/"+voyage.ID+"/trackpoints", points)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 2, body["saved"])

	rec, body = request(t, c, http.MethodGet, "/api/v2/voyages/"+voyage.ID+"/trackpoints", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["total"])

	data := body["data"].([]any)
	first := data[0].(map[string]any)
	assert.InDelta(t, 34.82, first["latitude"].(float64), 1e-9, "timestamp ascending order")
}

func TestUpdateVoyageStatus(t *testing.T) {
	c, store, _ := newTestAPI(t)

	voyage, _, err := store.GetOrCreateMonthlyVoyage("440123456", 2025, 3, "수복호")
	require.NoError(t, err)

	rec, body := request(t, c, http.MethodPatch, "/api/v2/voyages/"+voyage.ID, map[string]any{
		"status":      "입항",
		"arrivalPort": "통영",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "입항", data["status"])

	rec, _ = request(t, c, http.MethodPatch, "/api/v2/voyages/"+voyage.ID, map[string]any{
		"status": "표류중",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAuctionValidation(t *testing.T) {
	c, store, _ := newTestAPI(t)

	voyage, _, err := store.GetOrCreateMonthlyVoyage("440123456", 2025, 3, "수복호")
	require.NoError(t, err)

	rec, body := request(t, c, http.MethodPost, "/api/v2/auctions", map[string]any{
		"voyageId":    voyage.ID,
		"auctionDate": "2025-03-10T05:30:00Z",
		"auctionPort": "통영",
		"fishSpecies": "갈치",
		"quantity":    150,
		"unitPrice":   12000,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := body["data"].(map[string]any)
	assert.InDelta(t, 1800000, data["TotalPrice"].(float64), 1e-9)

	rec, _ = request(t, c, http.MethodPost, "/api/v2/auctions", map[string]any{
		"voyageId":    voyage.ID,
		"auctionPort": "통영",
		"fishSpecies": "갈치",
		"quantity":    0,
		"unitPrice":   12000,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrackArchiveEndpoints(t *testing.T) {
	c, _, settings := newTestAPI(t)

	dir := filepath.Join(settings.Archive.Root, "440123456")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "440123456_2025_03_1.html"), []byte("<html>map</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "440123456_2024_11_1.html"), []byte("<html>old</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.txt"), []byte("skip"), 0o644))

	rec, body := request(t, c, http.MethodGet, "/api/v2/tracks/440123456", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["total"])

	rec, body = request(t, c, http.MethodGet, "/api/v2/tracks/440123456/years", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{float64(2025), float64(2024)}, body["data"].([]any))

	rec, body = request(t, c, http.MethodGet, "/api/v2/tracks/440123456/2025/months", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	months := body["data"].([]any)
	require.Len(t, months, 1)

	req := httptest.NewRequest(http.MethodGet, "/api/v2/tracks/440123456/html/440123456_2025_03_1.html", nil)
	htmlRec := httptest.NewRecorder()
	c.Echo.ServeHTTP(htmlRec, req)
	assert.Equal(t, http.StatusOK, htmlRec.Code)
	assert.Equal(t, "<html>map</html>", htmlRec.Body.String())
	assert.Contains(t, htmlRec.Header().Get(echo.HeaderContentType), "text/html")

	rec, _ = request(t, c, http.MethodGet, "/api/v2/tracks/440123456/html/440123456_2030_01_1.html", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMemoLifecycleOverHTTP(t *testing.T) {
	c, store, _ := newTestAPI(t)

	vessel := datastore.Vessel{VesselName: "수복호"}
	require.NoError(t, store.InsertVessel(&vessel))
	base := fmt.Sprintf("/api/v2/registry/%d/memos", vessel.ID)

	rec, body := request(t, c, http.MethodPost, base, map[string]any{"content": "기관 점검 예정"})
	require.Equal(t, http.StatusCreated, rec.Code)
	memo := body["data"].(map[string]any)
	memoID := int(memo["ID"].(float64))

	rec, _ = request(t, c, http.MethodPost, base, map[string]any{"content": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = request(t, c, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["total"])

	rec, body = request(t, c, http.MethodPut, fmt.Sprintf("/api/v2/registry/memos/%d", memoID), map[string]any{"content": "점검 완료"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "점검 완료", body["data"].(map[string]any)["Content"])

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v2/registry/memos/%d", memoID), nil)
	delRec := httptest.NewRecorder()
	c.Echo.ServeHTTP(delRec, req)
	assert.Equal(t, http.StatusNoContent, delRec.Code)
}

func TestStatisticsEndpoint(t *testing.T) {
	c, store, _ := newTestAPI(t)

	require.NoError(t, store.InsertVessel(&datastore.Vessel{VesselName: "수복호"}))
	_, _, err := store.GetOrCreateMonthlyVoyage("440123456", 2025, 3, "수복호")
	require.NoError(t, err)

	rec, body := request(t, c, http.MethodGet, "/api/v2/statistics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["total_vessels"])
	assert.EqualValues(t, 1, body["total_voyages"])
	assert.EqualValues(t, 1, body["active_voyages"])
}

func urlEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
