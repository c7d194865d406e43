// internal/api/v2/registry.go
package api

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tidegrid/fishtrack-go/internal/datastore"
)

// initRegistryRoutes registers the vessel registry endpoints
func (c *Controller) initRegistryRoutes() {
	c.Group.GET("/registry", c.GetVessels)
	c.Group.GET("/registry/:id", c.GetVessel)
	c.Group.PATCH("/registry/:id", c.UpdateVessel)
	c.Group.POST("/registry/upload", c.UploadCensus)

	c.Group.GET("/registry/ports", c.GetPortFacet)
	c.Group.GET("/registry/business-types", c.GetBusinessTypeFacet)
	c.Group.GET("/registry/groups", c.GetGroupFacet)
	c.Group.GET("/registry/organizations", c.GetOrganizationFacet)
}

// VesselResponse represents a registry record in the API response
type VesselResponse struct {
	ID                   uint     `json:"id"`
	VesselName           string   `json:"vesselName"`
	Tonnage              *float64 `json:"tonnage"`
	Length               *float64 `json:"length"`
	EngineType           *string  `json:"engineType"`
	EngineCount          *int     `json:"engineCount"`
	EnginePowerPS        *float64 `json:"enginePowerPs"`
	EnginePowerKW        *float64 `json:"enginePowerKw"`
	HullMaterial         *string  `json:"hullMaterial"`
	RegistrationNo       *string  `json:"registrationNo"`
	BuildDate            *string  `json:"buildDate"`
	Port                 *string  `json:"port"`
	BusinessType         *string  `json:"businessType"`
	EquipmentName        *string  `json:"equipmentName"`
	EquipmentPower       *string  `json:"equipmentPower"`
	MMSI                 *string  `json:"mmsi"`
	LicenseLocal         *string  `json:"licenseLocal"`
	LicenseStartLocal    *string  `json:"licenseStartLocal"`
	LicenseEndLocal      *string  `json:"licenseEndLocal"`
	LicenseProvince      *string  `json:"licenseProvince"`
	LicenseStartProvince *string  `json:"licenseStartProvince"`
	LicenseEndProvince   *string  `json:"licenseEndProvince"`
	GroupName            *string  `json:"groupName"`
	Groups               []string `json:"groups"`
	Organization         *string  `json:"organization"`
	PhotoCount           int64    `json:"photoCount"`
	FileCount            int64    `json:"fileCount"`
	CreatedAt            string   `json:"createdAt"`
	UpdatedAt            string   `json:"updatedAt"`
}

func vesselResponse(v *datastore.Vessel) VesselResponse {
	resp := VesselResponse{
		ID:                   v.ID,
		VesselName:           v.VesselName,
		Tonnage:              v.Tonnage,
		Length:               v.Length,
		EngineType:           v.EngineType,
		EngineCount:          v.EngineCount,
		EnginePowerPS:        v.EnginePowerPS,
		EnginePowerKW:        v.EnginePowerKW,
		HullMaterial:         v.HullMaterial,
		RegistrationNo:       v.RegistrationNo,
		BuildDate:            v.BuildDate,
		Port:                 v.Port,
		BusinessType:         v.BusinessType,
		EquipmentName:        v.EquipmentName,
		EquipmentPower:       v.EquipmentPower,
		MMSI:                 v.MMSI,
		LicenseLocal:         v.LicenseLocal,
		LicenseStartLocal:    v.LicenseStartLocal,
		LicenseEndLocal:      v.LicenseEndLocal,
		LicenseProvince:      v.LicenseProvince,
		LicenseStartProvince: v.LicenseStartProvince,
		LicenseEndProvince:   v.LicenseEndProvince,
		GroupName:            v.GroupName,
		Organization:         v.Organization,
		PhotoCount:           v.PhotoCount,
		FileCount:            v.FileCount,
		CreatedAt:            v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            v.UpdatedAt.Format(time.RFC3339),
	}
	if v.GroupName != nil {
		resp.Groups = datastore.SplitGroupSet(*v.GroupName)
	}
	return resp
}

// GetVessels handles GET requests for the filtered, paginated registry
func (c *Controller) GetVessels(ctx echo.Context) error {
	filter := datastore.VesselFilter{
		Search:       ctx.QueryParam("search"),
		Port:         ctx.QueryParam("port"),
		BusinessType: ctx.QueryParam("businessType"),
		GroupName:    ctx.QueryParam("groupName"),
		Organization: ctx.QueryParam("organization"),
	}

	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	pageSize, _ := strconv.Atoi(ctx.QueryParam("pageSize"))
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = datastore.DefaultPageSize
	case pageSize > datastore.MaxPageSize:
		pageSize = datastore.MaxPageSize
	}

	vessels, total, err := c.DS.SearchVessels(filter, page, pageSize)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to search registry", statusForError(err))
	}

	data := make([]VesselResponse, 0, len(vessels))
	for i := range vessels {
		data = append(data, vesselResponse(&vessels[i]))
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return ctx.JSON(http.StatusOK, PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// GetVessel returns a single registry record by internal id
func (c *Controller) GetVessel(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid vessel id", http.StatusBadRequest)
	}

	vessel, err := c.DS.GetVessel(id)
	if err != nil {
		return c.HandleError(ctx, err, "Vessel not found", statusForError(err))
	}

	return ctx.JSON(http.StatusOK, map[string]any{"data": vesselResponse(&vessel)})
}

// VesselUpdateRequest carries the partial-update payload for a vessel.
// Absent fields are left untouched.
type VesselUpdateRequest struct {
	VesselName     *string  `json:"vesselName"`
	Tonnage        *float64 `json:"tonnage"`
	Length         *float64 `json:"length"`
	EngineType     *string  `json:"engineType"`
	EngineCount    *int     `json:"engineCount"`
	EnginePowerPS  *float64 `json:"enginePowerPs"`
	EnginePowerKW  *float64 `json:"enginePowerKw"`
	HullMaterial   *string  `json:"hullMaterial"`
	BuildDate      *string  `json:"buildDate"`
	Port           *string  `json:"port"`
	BusinessType   *string  `json:"businessType"`
	EquipmentName  *string  `json:"equipmentName"`
	EquipmentPower *string  `json:"equipmentPower"`
	MMSI           *string  `json:"mmsi"`
	GroupName      *string  `json:"groupName"`
	Organization   *string  `json:"organization"`
}

func (r *VesselUpdateRequest) fields() map[string]any {
	fields := make(map[string]any)
	set := func(column string, value any, present bool) {
		if present {
			fields[column] = value
		}
	}
	set("vessel_name", r.VesselName, r.VesselName != nil)
	set("tonnage", r.Tonnage, r.Tonnage != nil)
	set("length", r.Length, r.Length != nil)
	set("engine_type", r.EngineType, r.EngineType != nil)
	set("engine_count", r.EngineCount, r.EngineCount != nil)
	set("engine_power_ps", r.EnginePowerPS, r.EnginePowerPS != nil)
	set("engine_power_kw", r.EnginePowerKW, r.EnginePowerKW != nil)
	set("hull_material", r.HullMaterial, r.HullMaterial != nil)
	set("build_date", r.BuildDate, r.BuildDate != nil)
	set("port", r.Port, r.Port != nil)
	set("business_type", r.BusinessType, r.BusinessType != nil)
	set("equipment_name", r.EquipmentName, r.EquipmentName != nil)
	set("equipment_power", r.EquipmentPower, r.EquipmentPower != nil)
	set("mmsi", r.MMSI, r.MMSI != nil)
	set("group_name", r.GroupName, r.GroupName != nil)
	set("organization", r.Organization, r.Organization != nil)
	return fields
}

// UpdateVessel applies a partial update to a registry record
func (c *Controller) UpdateVessel(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid vessel id", http.StatusBadRequest)
	}

	var req VesselUpdateRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	vessel, err := c.DS.UpdateVessel(id, req.fields())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to update vessel", statusForError(err))
	}

	// An update can change port, group or organization, cached facets
	// are stale.
	c.facetCache.Flush()

	return ctx.JSON(http.StatusOK, map[string]any{"data": vesselResponse(&vessel)})
}

// UploadCensus ingests an uploaded census CSV into the registry
func (c *Controller) UploadCensus(ctx echo.Context) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return c.HandleError(ctx, err, "Census file is required", http.StatusBadRequest)
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".csv") {
		return c.HandleError(ctx, nil, "Census file must be a CSV", http.StatusBadRequest)
	}

	replace, _ := strconv.ParseBool(ctx.FormValue("replace"))

	source, err := fileHeader.Open()
	if err != nil {
		return c.HandleError(ctx, err, "Cannot read census file", http.StatusBadRequest)
	}
	defer source.Close()

	report, err := c.Ingestor.Ingest(ctx.Request().Context(), source, replace)
	if err != nil {
		return c.HandleError(ctx, err, report.Message, http.StatusInternalServerError)
	}

	// Registry contents changed, cached facets are stale.
	c.facetCache.Flush()

	return ctx.JSON(http.StatusOK, report)
}

// facet returns a cached facet listing, computing it on miss.
func (c *Controller) facet(ctx echo.Context, key string, load func() ([]datastore.FacetCount, error)) error {
	if cached, found := c.facetCache.Get(key); found {
		return ctx.JSON(http.StatusOK, map[string]any{"data": cached})
	}

	facets, err := load()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list "+key, statusForError(err))
	}
	c.facetCache.SetDefault(key, facets)

	return ctx.JSON(http.StatusOK, map[string]any{"data": facets})
}

// GetPortFacet lists distinct home ports with vessel counts
func (c *Controller) GetPortFacet(ctx echo.Context) error {
	return c.facet(ctx, "ports", c.DS.VesselPorts)
}

// GetBusinessTypeFacet lists distinct business types with vessel counts
func (c *Controller) GetBusinessTypeFacet(ctx echo.Context) error {
	return c.facet(ctx, "business-types", c.DS.VesselBusinessTypes)
}

// GetGroupFacet lists distinct group labels with vessel counts
func (c *Controller) GetGroupFacet(ctx echo.Context) error {
	return c.facet(ctx, "groups", c.DS.VesselGroups)
}

// GetOrganizationFacet lists distinct organizations with vessel counts
func (c *Controller) GetOrganizationFacet(ctx echo.Context) error {
	return c.facet(ctx, "organizations", c.DS.VesselOrganizations)
}

// parseUintParam parses a numeric path parameter.
func parseUintParam(ctx echo.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
