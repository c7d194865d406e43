// internal/api/v2/tracks.go
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tidegrid/fishtrack-go/internal/trackarchive"
)

// initTrackRoutes registers the archived route-map endpoints
func (c *Controller) initTrackRoutes() {
	c.Group.GET("/tracks/:mmsi", c.GetTrackArchive)
	c.Group.GET("/tracks/:mmsi/years", c.GetTrackArchiveYears)
	c.Group.GET("/tracks/:mmsi/:year/months", c.GetTrackArchiveMonths)
	c.Group.GET("/tracks/:mmsi/html/:filename", c.GetTrackArchiveContent)
}

// GetTrackArchive lists a vessel's archived route maps, optionally limited to
// a single year via the year query parameter.
func (c *Controller) GetTrackArchive(ctx echo.Context) error {
	mmsi := ctx.Param("mmsi")

	var entries []trackarchive.Entry
	var err error
	if raw := ctx.QueryParam("year"); raw != "" {
		year, parseErr := strconv.Atoi(raw)
		if parseErr != nil {
			return c.HandleError(ctx, parseErr, "Invalid year", http.StatusBadRequest)
		}
		entries, err = c.Archive.Months(mmsi, year)
	} else {
		entries, err = c.Archive.List(mmsi)
	}
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list track archive", statusForError(err))
	}
	return ctx.JSON(http.StatusOK, map[string]any{"data": entries, "total": len(entries)})
}

// GetTrackArchiveYears lists the years a vessel has archived maps for
func (c *Controller) GetTrackArchiveYears(ctx echo.Context) error {
	years, err := c.Archive.Years(ctx.Param("mmsi"))
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list archive years", statusForError(err))
	}
	return ctx.JSON(http.StatusOK, map[string]any{"data": years})
}

// GetTrackArchiveMonths lists the months with archived maps in a year
func (c *Controller) GetTrackArchiveMonths(ctx echo.Context) error {
	year, err := strconv.Atoi(ctx.Param("year"))
	if err != nil {
		return c.HandleError(ctx, err, "Invalid year", http.StatusBadRequest)
	}

	months, err := c.Archive.Months(ctx.Param("mmsi"), year)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list archive months", statusForError(err))
	}
	return ctx.JSON(http.StatusOK, map[string]any{"data": months})
}

// GetTrackArchiveContent serves an archived route map document
func (c *Controller) GetTrackArchiveContent(ctx echo.Context) error {
	content, err := c.Archive.Content(ctx.Param("mmsi"), ctx.Param("filename"))
	if err != nil {
		return c.HandleError(ctx, err, "Route map not found", statusForError(err))
	}
	return ctx.HTMLBlob(http.StatusOK, content)
}
