// internal/api/v2/attachments.go
package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/tidegrid/fishtrack-go/internal/conf"
	"github.com/tidegrid/fishtrack-go/internal/datastore"
)

// initAttachmentRoutes registers memo, photo and attachment endpoints
func (c *Controller) initAttachmentRoutes() {
	c.Group.GET("/registry/:id/memos", c.GetVesselMemos)
	c.Group.POST("/registry/:id/memos", c.CreateVesselMemo)
	c.Group.PUT("/registry/memos/:memoId", c.UpdateVesselMemo)
	c.Group.DELETE("/registry/memos/:memoId", c.DeleteVesselMemo)

	c.Group.GET("/registry/:id/photos", c.GetVesselPhotos)
	c.Group.POST("/registry/:id/photos", c.UploadVesselPhoto)
	c.Group.DELETE("/registry/photos/:photoId", c.DeleteVesselPhoto)
	c.Group.GET("/registry/photos/content/:name", c.GetVesselPhotoContent)

	c.Group.GET("/registry/:id/files", c.GetVesselFiles)
	c.Group.POST("/registry/:id/files", c.UploadVesselFile)
	c.Group.DELETE("/registry/files/:fileId", c.DeleteVesselFile)
	c.Group.GET("/registry/files/content/:name", c.GetVesselFileContent)
}

// MemoRequest carries a memo create or update payload.
type MemoRequest struct {
	Content string `json:"content"`
}

// GetVesselMemos lists a vessel's memos
func (c *Controller) GetVesselMemos(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid vessel id", http.StatusBadRequest)
	}

	memos, err := c.DS.GetVesselMemos(id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list memos", statusForError(err))
	}
	return ctx.JSON(http.StatusOK, map[string]any{"data": memos, "total": len(memos)})
}

// CreateVesselMemo stores a new memo against a vessel
func (c *Controller) CreateVesselMemo(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid vessel id", http.StatusBadRequest)
	}

	var req MemoRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.HandleError(ctx, nil, "Memo content is required", http.StatusBadRequest)
	}

	memo := datastore.VesselMemo{VesselID: id, Content: req.Content}
	if err := c.DS.SaveVesselMemo(&memo); err != nil {
		return c.HandleError(ctx, err, "Failed to save memo", statusForError(err))
	}

	return ctx.JSON(http.StatusCreated, map[string]any{"data": memo})
}

// UpdateVesselMemo replaces a memo's content
func (c *Controller) UpdateVesselMemo(ctx echo.Context) error {
	memoID, err := parseUintParam(ctx, "memoId")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid memo id", http.StatusBadRequest)
	}

	var req MemoRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.HandleError(ctx, nil, "Memo content is required", http.StatusBadRequest)
	}

	memo, err := c.DS.UpdateVesselMemo(memoID, req.Content)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to update memo", statusForError(err))
	}

	return ctx.JSON(http.StatusOK, map[string]any{"data": memo})
}

// DeleteVesselMemo removes a memo
func (c *Controller) DeleteVesselMemo(ctx echo.Context) error {
	memoID, err := parseUintParam(ctx, "memoId")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid memo id", http.StatusBadRequest)
	}
	if err := c.DS.DeleteVesselMemo(memoID); err != nil {
		return c.HandleError(ctx, err, "Failed to delete memo", statusForError(err))
	}
	return ctx.NoContent(http.StatusNoContent)
}

// saveUpload writes an uploaded part to dir under a fresh stored name and
// returns the stored name, absolute path and size.
func saveUpload(fileHeader *multipart.FileHeader, dir string) (storedName, path string, size int64, err error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", "", 0, fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	storedName = uuid.NewString() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	path = filepath.Join(conf.GetBasePath(dir), storedName)

	dst, err := os.Create(path)
	if err != nil {
		return "", "", 0, fmt.Errorf("creating stored file: %w", err)
	}
	defer dst.Close()

	size, err = io.Copy(dst, src)
	if err != nil {
		return "", "", 0, fmt.Errorf("writing stored file: %w", err)
	}
	return storedName, path, size, nil
}

// GetVesselPhotos lists a vessel's photos
func (c *Controller) GetVesselPhotos(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid vessel id", http.StatusBadRequest)
	}

	photos, err := c.DS.GetVesselPhotos(id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list photos", statusForError(err))
	}
	return ctx.JSON(http.StatusOK, map[string]any{"data": photos, "total": len(photos)})
}

// UploadVesselPhoto saves an uploaded photo and its metadata
func (c *Controller) UploadVesselPhoto(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid vessel id", http.StatusBadRequest)
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return c.HandleError(ctx, err, "Photo file is required", http.StatusBadRequest)
	}

	storedName, path, size, err := saveUpload(fileHeader, c.Settings.Uploads.PhotoDir)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to store photo", http.StatusInternalServerError)
	}

	isPrimary, _ := strconv.ParseBool(ctx.FormValue("isPrimary"))
	photo := datastore.VesselPhoto{
		VesselID:     id,
		Filename:     storedName,
		OriginalName: fileHeader.Filename,
		FilePath:     path,
		FileSize:     size,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		IsPrimary:    isPrimary,
	}
	if err := c.DS.SaveVesselPhoto(&photo); err != nil {
		os.Remove(path) // orphaned upload, vessel missing or row rejected
		return c.HandleError(ctx, err, "Failed to save photo", statusForError(err))
	}

	return ctx.JSON(http.StatusCreated, map[string]any{"data": photo})
}

// DeleteVesselPhoto removes a photo row and its stored file
func (c *Controller) DeleteVesselPhoto(ctx echo.Context) error {
	photoID, err := parseUintParam(ctx, "photoId")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid photo id", http.StatusBadRequest)
	}

	photo, err := c.DS.DeleteVesselPhoto(photoID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to delete photo", statusForError(err))
	}
	if err := os.Remove(photo.FilePath); err != nil && !os.IsNotExist(err) {
		c.apiLogger.Warn("failed to remove stored photo", "path", photo.FilePath, "error", err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetVesselPhotoContent serves a stored photo by name
func (c *Controller) GetVesselPhotoContent(ctx echo.Context) error {
	photo, err := c.DS.GetVesselPhotoByFilename(ctx.Param("name"))
	if err != nil {
		return c.HandleError(ctx, err, "Photo not found", statusForError(err))
	}
	return ctx.File(photo.FilePath)
}

// GetVesselFiles lists a vessel's attachment files
func (c *Controller) GetVesselFiles(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid vessel id", http.StatusBadRequest)
	}

	files, err := c.DS.GetVesselFiles(id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list files", statusForError(err))
	}
	return ctx.JSON(http.StatusOK, map[string]any{"data": files, "total": len(files)})
}

// UploadVesselFile saves an uploaded attachment and its metadata
func (c *Controller) UploadVesselFile(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid vessel id", http.StatusBadRequest)
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return c.HandleError(ctx, err, "Attachment file is required", http.StatusBadRequest)
	}

	storedName, path, size, err := saveUpload(fileHeader, c.Settings.Uploads.FileDir)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to store file", http.StatusInternalServerError)
	}

	file := datastore.VesselFile{
		VesselID:     id,
		Filename:     storedName,
		OriginalName: fileHeader.Filename,
		FilePath:     path,
		FileSize:     size,
		MimeType:     fileHeader.Header.Get("Content-Type"),
	}
	if description := ctx.FormValue("description"); description != "" {
		file.Description = &description
	}
	if err := c.DS.SaveVesselFile(&file); err != nil {
		os.Remove(path)
		return c.HandleError(ctx, err, "Failed to save file", statusForError(err))
	}

	return ctx.JSON(http.StatusCreated, map[string]any{"data": file})
}

// DeleteVesselFile removes an attachment row and its stored file
func (c *Controller) DeleteVesselFile(ctx echo.Context) error {
	fileID, err := parseUintParam(ctx, "fileId")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid file id", http.StatusBadRequest)
	}

	file, err := c.DS.DeleteVesselFile(fileID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to delete file", statusForError(err))
	}
	if err := os.Remove(file.FilePath); err != nil && !os.IsNotExist(err) {
		c.apiLogger.Warn("failed to remove stored file", "path", file.FilePath, "error", err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetVesselFileContent serves a stored attachment by name
func (c *Controller) GetVesselFileContent(ctx echo.Context) error {
	file, err := c.DS.GetVesselFileByFilename(ctx.Param("name"))
	if err != nil {
		return c.HandleError(ctx, err, "File not found", statusForError(err))
	}
	return ctx.Attachment(file.FilePath, file.OriginalName)
}
