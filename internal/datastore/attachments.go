// attachments.go: investigator memos and uploaded photo/file metadata
package datastore

import (
	"fmt"
	"time"
)

// GetVesselMemos lists a vessel's memos, newest first.
func (ds *DataStore) GetVesselMemos(vesselID uint) ([]VesselMemo, error) {
	var memos []VesselMemo
	err := ds.DB.Where("vessel_id = ?", vesselID).
		Order("created_at DESC").
		Find(&memos).Error
	if err != nil {
		return nil, fmt.Errorf("listing memos for vessel %d: %w", vesselID, err)
	}
	return memos, nil
}

// SaveVesselMemo stores a new memo after checking the vessel exists.
func (ds *DataStore) SaveVesselMemo(memo *VesselMemo) error {
	if err := ds.DB.First(&Vessel{}, memo.VesselID).Error; err != nil {
		return fmt.Errorf("getting vessel with ID %d: %w", memo.VesselID, err)
	}
	if err := ds.DB.Create(memo).Error; err != nil {
		return fmt.Errorf("saving memo: %w", err)
	}
	return nil
}

// UpdateVesselMemo replaces a memo's content and stamps updated_at.
func (ds *DataStore) UpdateVesselMemo(id uint, content string) (VesselMemo, error) {
	var memo VesselMemo
	if err := ds.DB.First(&memo, id).Error; err != nil {
		return VesselMemo{}, fmt.Errorf("getting memo %d: %w", id, err)
	}
	memo.Content = content
	memo.UpdatedAt = time.Now()
	if err := ds.DB.Save(&memo).Error; err != nil {
		return VesselMemo{}, fmt.Errorf("updating memo %d: %w", id, err)
	}
	return memo, nil
}

// DeleteVesselMemo removes a memo by id.
func (ds *DataStore) DeleteVesselMemo(id uint) error {
	return deleteByID(ds.DB, &VesselMemo{}, "memo", id)
}

// GetVesselPhotos lists a vessel's photos, primary photo first.
func (ds *DataStore) GetVesselPhotos(vesselID uint) ([]VesselPhoto, error) {
	var photos []VesselPhoto
	err := ds.DB.Where("vessel_id = ?", vesselID).
		Order("is_primary DESC, created_at ASC").
		Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("listing photos for vessel %d: %w", vesselID, err)
	}
	return photos, nil
}

// SaveVesselPhoto stores photo metadata after checking the vessel exists.
func (ds *DataStore) SaveVesselPhoto(photo *VesselPhoto) error {
	if err := ds.DB.First(&Vessel{}, photo.VesselID).Error; err != nil {
		return fmt.Errorf("getting vessel with ID %d: %w", photo.VesselID, err)
	}
	if err := ds.DB.Create(photo).Error; err != nil {
		return fmt.Errorf("saving photo: %w", err)
	}
	return nil
}

// GetVesselPhotoByFilename resolves a stored photo name to its metadata.
func (ds *DataStore) GetVesselPhotoByFilename(name string) (VesselPhoto, error) {
	var photo VesselPhoto
	if err := ds.DB.First(&photo, "filename = ?", name).Error; err != nil {
		return VesselPhoto{}, fmt.Errorf("getting photo %s: %w", name, err)
	}
	return photo, nil
}

// DeleteVesselPhoto removes a photo row and returns the removed metadata
// so the caller can delete the stored file.
func (ds *DataStore) DeleteVesselPhoto(id uint) (VesselPhoto, error) {
	var photo VesselPhoto
	if err := ds.DB.First(&photo, id).Error; err != nil {
		return VesselPhoto{}, fmt.Errorf("getting photo %d: %w", id, err)
	}
	if err := ds.DB.Delete(&VesselPhoto{}, id).Error; err != nil {
		return VesselPhoto{}, fmt.Errorf("deleting photo %d: %w", id, err)
	}
	return photo, nil
}

// GetVesselFiles lists a vessel's attachment files, newest first.
func (ds *DataStore) GetVesselFiles(vesselID uint) ([]VesselFile, error) {
	var files []VesselFile
	err := ds.DB.Where("vessel_id = ?", vesselID).
		Order("created_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("listing files for vessel %d: %w", vesselID, err)
	}
	return files, nil
}

// SaveVesselFile stores attachment metadata after checking the vessel exists.
func (ds *DataStore) SaveVesselFile(file *VesselFile) error {
	if err := ds.DB.First(&Vessel{}, file.VesselID).Error; err != nil {
		return fmt.Errorf("getting vessel with ID %d: %w", file.VesselID, err)
	}
	if err := ds.DB.Create(file).Error; err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	return nil
}

// GetVesselFileByFilename resolves a stored attachment name to its metadata.
func (ds *DataStore) GetVesselFileByFilename(name string) (VesselFile, error) {
	var file VesselFile
	if err := ds.DB.First(&file, "filename = ?", name).Error; err != nil {
		return VesselFile{}, fmt.Errorf("getting file %s: %w", name, err)
	}
	return file, nil
}

// DeleteVesselFile removes an attachment row and returns the removed
// metadata so the caller can delete the stored file.
func (ds *DataStore) DeleteVesselFile(id uint) (VesselFile, error) {
	var file VesselFile
	if err := ds.DB.First(&file, id).Error; err != nil {
		return VesselFile{}, fmt.Errorf("getting file %d: %w", id, err)
	}
	if err := ds.DB.Delete(&VesselFile{}, id).Error; err != nil {
		return VesselFile{}, fmt.Errorf("deleting file %d: %w", id, err)
	}
	return file, nil
}
