// internal/api/v2/voyages.go
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tidegrid/fishtrack-go/internal/datastore"
)

// initVoyageRoutes registers the voyage ledger endpoints
func (c *Controller) initVoyageRoutes() {
	c.Group.GET("/voyages", c.GetVoyages)
	c.Group.GET("/voyages/:id", c.GetVoyage)
	c.Group.PATCH("/voyages/:id", c.UpdateVoyage)
	c.Group.POST("/voyages/monthly", c.GetOrCreateMonthlyVoyage)
	c.Group.GET("/voyages/:id/trackpoints", c.GetTrackPoints)
	c.Group.POST("/voyages/:id/trackpoints", c.SaveTrackPoints)
	c.Group.GET("/statistics", c.GetStatistics)
}

// VoyageResponse represents a voyage in the API response
type VoyageResponse struct {
	ID            string               `json:"id"`
	MMSI          string               `json:"mmsi"`
	Year          int                  `json:"year"`
	VoyageNo      int                  `json:"voyageNo"`
	VesselName    string               `json:"vesselName"`
	DeparturePort *string              `json:"departurePort"`
	DepartureDate *time.Time           `json:"departureDate"`
	ArrivalPort   *string              `json:"arrivalPort"`
	ArrivalDate   *time.Time           `json:"arrivalDate"`
	FishingArea   *string              `json:"fishingArea"`
	CatchAmount   float64              `json:"catchAmount"`
	FishSpecies   string               `json:"fishSpecies"`
	Status        string               `json:"status"`
	TrackPoints   []TrackPointResponse `json:"trackPoints,omitempty"`
}

// TrackPointResponse represents one track point in the API response
type TrackPointResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     *float64  `json:"speed"`
	Course    *float64  `json:"course"`
}

func voyageResponse(v *datastore.Voyage) VoyageResponse {
	return VoyageResponse{
		ID:            v.ID,
		MMSI:          v.MMSI,
		Year:          v.Year,
		VoyageNo:      v.VoyageNo,
		VesselName:    v.VesselName,
		DeparturePort: v.DeparturePort,
		DepartureDate: v.DepartureDate,
		ArrivalPort:   v.ArrivalPort,
		ArrivalDate:   v.ArrivalDate,
		FishingArea:   v.FishingArea,
		CatchAmount:   v.CatchAmount,
		FishSpecies:   v.FishSpecies,
		Status:        v.Status,
	}
}

func trackPointResponses(points []datastore.TrackPoint) []TrackPointResponse {
	out := make([]TrackPointResponse, 0, len(points))
	for i := range points {
		p := &points[i]
		out = append(out, TrackPointResponse{
			Timestamp: p.Timestamp,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Speed:     p.Speed,
			Course:    p.Course,
		})
	}
	return out
}

// GetVoyages lists voyages filtered by mmsi, year and status
func (c *Controller) GetVoyages(ctx echo.Context) error {
	mmsi := ctx.QueryParam("mmsi")
	year, _ := strconv.Atoi(ctx.QueryParam("year"))
	status := ctx.QueryParam("status")

	voyages, err := c.DS.SearchVoyages(mmsi, year, status)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list voyages", statusForError(err))
	}

	data := make([]VoyageResponse, 0, len(voyages))
	for i := range voyages {
		data = append(data, voyageResponse(&voyages[i]))
	}

	return ctx.JSON(http.StatusOK, map[string]any{"data": data, "total": len(data)})
}

// GetVoyage returns one voyage with its ordered track points
func (c *Controller) GetVoyage(ctx echo.Context) error {
	id := ctx.Param("id")

	voyage, err := c.DS.GetVoyage(id)
	if err != nil {
		return c.HandleError(ctx, err, "Voyage not found", statusForError(err))
	}

	points, err := c.DS.GetTrackPoints(id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load track points", statusForError(err))
	}

	resp := voyageResponse(&voyage)
	resp.TrackPoints = trackPointResponses(points)

	return ctx.JSON(http.StatusOK, map[string]any{"data": resp})
}

// VoyageUpdateRequest carries the partial-update payload for a voyage.
type VoyageUpdateRequest struct {
	VesselName    *string    `json:"vesselName"`
	DeparturePort *string    `json:"departurePort"`
	DepartureDate *time.Time `json:"departureDate"`
	ArrivalPort   *string    `json:"arrivalPort"`
	ArrivalDate   *time.Time `json:"arrivalDate"`
	FishingArea   *string    `json:"fishingArea"`
	CatchAmount   *float64   `json:"catchAmount"`
	FishSpecies   *string    `json:"fishSpecies"`
	Status        *string    `json:"status"`
}

func (r *VoyageUpdateRequest) fields() map[string]any {
	fields := make(map[string]any)
	if r.VesselName != nil {
		fields["vessel_name"] = *r.VesselName
	}
	if r.DeparturePort != nil {
		fields["departure_port"] = *r.DeparturePort
	}
	if r.DepartureDate != nil {
		fields["departure_date"] = *r.DepartureDate
	}
	if r.ArrivalPort != nil {
		fields["arrival_port"] = *r.ArrivalPort
	}
	if r.ArrivalDate != nil {
		fields["arrival_date"] = *r.ArrivalDate
	}
	if r.FishingArea != nil {
		fields["fishing_area"] = *r.FishingArea
	}
	if r.CatchAmount != nil {
		fields["catch_amount"] = *r.CatchAmount
	}
	if r.FishSpecies != nil {
		fields["fish_species"] = *r.FishSpecies
	}
	if r.Status != nil {
		fields["status"] = *r.Status
	}
	return fields
}

// UpdateVoyage applies a partial update to a voyage
func (c *Controller) UpdateVoyage(ctx echo.Context) error {
	id := ctx.Param("id")

	var req VoyageUpdateRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	voyage, err := c.DS.UpdateVoyage(id, req.fields())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to update voyage", statusForError(err))
	}

	return ctx.JSON(http.StatusOK, map[string]any{"data": voyageResponse(&voyage)})
}

// GetOrCreateMonthlyVoyage fetches or creates the voyage for one calendar
// month of one vessel
func (c *Controller) GetOrCreateMonthlyVoyage(ctx echo.Context) error {
	mmsi := ctx.QueryParam("mmsi")
	year, _ := strconv.Atoi(ctx.QueryParam("year"))
	month, _ := strconv.Atoi(ctx.QueryParam("month"))
	vesselName := ctx.QueryParam("vesselName")

	voyage, created, err := c.DS.GetOrCreateMonthlyVoyage(mmsi, year, month, vesselName)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to resolve monthly voyage", statusForError(err))
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	return ctx.JSON(status, map[string]any{
		"data":    voyageResponse(&voyage),
		"created": created,
	})
}

// GetTrackPoints returns a voyage's track points ordered by timestamp
func (c *Controller) GetTrackPoints(ctx echo.Context) error {
	id := ctx.Param("id")

	if _, err := c.DS.GetVoyage(id); err != nil {
		return c.HandleError(ctx, err, "Voyage not found", statusForError(err))
	}

	points, err := c.DS.GetTrackPoints(id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load track points", statusForError(err))
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"data":  trackPointResponses(points),
		"total": len(points),
	})
}

// TrackPointRequest is one position sample in a track ingestion batch.
type TrackPointRequest struct {
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     *float64  `json:"speed"`
	Course    *float64  `json:"course"`
}

// SaveTrackPoints appends a batch of track points to a voyage
func (c *Controller) SaveTrackPoints(ctx echo.Context) error {
	id := ctx.Param("id")

	var req []TrackPointRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	points := make([]datastore.TrackPoint, 0, len(req))
	for i := range req {
		points = append(points, datastore.TrackPoint{
			Timestamp: req[i].Timestamp,
			Latitude:  req[i].Latitude,
			Longitude: req[i].Longitude,
			Speed:     req[i].Speed,
			Course:    req[i].Course,
		})
	}

	if err := c.DS.SaveTrackPoints(id, points); err != nil {
		return c.HandleError(ctx, err, "Failed to save track points", statusForError(err))
	}

	return ctx.JSON(http.StatusCreated, map[string]any{"saved": len(points)})
}

// GetStatistics returns the platform-wide dashboard aggregates
func (c *Controller) GetStatistics(ctx echo.Context) error {
	stats, err := c.DS.Statistics()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to compute statistics", statusForError(err))
	}
	return ctx.JSON(http.StatusOK, stats)
}
