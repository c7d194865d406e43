// voyages.go: the monthly voyage ledger and its track point sub-collection
package datastore

import (
	"fmt"
	"time"

	"github.com/tidegrid/fishtrack-go/internal/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// voyageUpdatableColumns is the whitelist for partial voyage updates.
var voyageUpdatableColumns = map[string]bool{
	"vessel_name":    true,
	"departure_port": true,
	"departure_date": true,
	"arrival_port":   true,
	"arrival_date":   true,
	"fishing_area":   true,
	"catch_amount":   true,
	"fish_species":   true,
	"status":         true,
}

// VoyageID builds the composite voyage identity. The third segment is
// always the zero-padded sequence the voyage was created with; the monthly
// accessor uses the calendar month as that sequence.
func VoyageID(mmsi string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%03d", mmsi, year, seq)
}

// GetVoyage retrieves a voyage by its composite id.
func (ds *DataStore) GetVoyage(id string) (Voyage, error) {
	var voyage Voyage
	if err := ds.DB.First(&voyage, "id = ?", id).Error; err != nil {
		return Voyage{}, fmt.Errorf("getting voyage %s: %w", id, err)
	}
	return voyage, nil
}

// SearchVoyages lists voyages matching the optional mmsi, year and status
// filters, newest departure first.
func (ds *DataStore) SearchVoyages(mmsi string, year int, status string) ([]Voyage, error) {
	query := ds.DB.Model(&Voyage{})
	if mmsi != "" {
		query = query.Where("mmsi = ?", mmsi)
	}
	if year > 0 {
		query = query.Where("year = ?", year)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var voyages []Voyage
	if err := query.Order("departure_date DESC, id DESC").Find(&voyages).Error; err != nil {
		return nil, fmt.Errorf("searching voyages: %w", err)
	}
	return voyages, nil
}

// UpdateVoyage applies a partial update. An empty field set is a client
// error; a status outside the known set is rejected; updated_at is always
// stamped.
func (ds *DataStore) UpdateVoyage(id string, fields map[string]any) (Voyage, error) {
	if len(fields) == 0 {
		return Voyage{}, errors.Newf("no fields to update").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}
	for column := range fields {
		if !voyageUpdatableColumns[column] {
			return Voyage{}, errors.Newf("unknown voyage field %q", column).
				Component("datastore").
				Category(errors.CategoryValidation).
				Context("field", column).
				Build()
		}
	}
	if status, ok := fields["status"].(string); ok && !ValidVoyageStatus(status) {
		return Voyage{}, errors.Newf("unknown voyage status %q", status).
			Component("datastore").
			Category(errors.CategoryValidation).
			Context("status", status).
			Build()
	}

	var voyage Voyage
	if err := ds.DB.First(&voyage, "id = ?", id).Error; err != nil {
		return Voyage{}, fmt.Errorf("getting voyage %s: %w", id, err)
	}

	fields["updated_at"] = time.Now()
	if err := ds.DB.Model(&Voyage{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return Voyage{}, fmt.Errorf("updating voyage %s: %w", id, err)
	}

	return ds.GetVoyage(id)
}

// GetOrCreateMonthlyVoyage fetches the voyage keyed by (mmsi, year, month)
// or creates it with placeholder fields. Creation goes through a
// conflict-tolerant insert against the primary key so two concurrent
// callers converge on one row instead of racing a pre-check.
func (ds *DataStore) GetOrCreateMonthlyVoyage(mmsi string, year, month int, vesselName string) (Voyage, bool, error) {
	if mmsi == "" || year < 1 || month < 1 || month > 12 {
		return Voyage{}, false, errors.Newf("invalid monthly voyage key %s/%d/%d", mmsi, year, month).
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}

	id := VoyageID(mmsi, year, month)

	var existing Voyage
	err := ds.DB.First(&existing, "id = ?", id).Error
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Voyage{}, false, fmt.Errorf("getting voyage %s: %w", id, err)
	}

	departure := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	departurePort := "미정"
	fishingArea := fmt.Sprintf("%d년 %d월 조업해역", year, month)

	voyage := Voyage{
		ID:            id,
		MMSI:          mmsi,
		Year:          year,
		VoyageNo:      month,
		VesselName:    vesselName,
		DeparturePort: &departurePort,
		DepartureDate: &departure,
		FishingArea:   &fishingArea,
		Status:        StatusFishing,
	}

	result := ds.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&voyage)
	if result.Error != nil {
		return Voyage{}, false, fmt.Errorf("creating monthly voyage %s: %w", id, result.Error)
	}

	if result.RowsAffected == 0 {
		// Lost the race to a concurrent creator, the existing row wins.
		created, err := ds.GetVoyage(id)
		return created, false, err
	}

	return voyage, true, nil
}

// SaveTrackPoints appends a batch of track points to a voyage in one
// transaction. Points are write-once, there is no update path.
func (ds *DataStore) SaveTrackPoints(voyageID string, points []TrackPoint) error {
	if len(points) == 0 {
		return errors.Newf("no track points to save").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}

	if err := ds.DB.First(&Voyage{}, "id = ?", voyageID).Error; err != nil {
		return fmt.Errorf("getting voyage %s: %w", voyageID, err)
	}

	return ds.DB.Transaction(func(tx *gorm.DB) error {
		for i := range points {
			points[i].ID = 0
			points[i].VoyageID = voyageID
			if err := tx.Create(&points[i]).Error; err != nil {
				return fmt.Errorf("saving track point: %w", err)
			}
		}
		return nil
	})
}

// GetTrackPoints returns a voyage's track points ordered by timestamp
// ascending.
func (ds *DataStore) GetTrackPoints(voyageID string) ([]TrackPoint, error) {
	var points []TrackPoint
	err := ds.DB.Where("voyage_id = ?", voyageID).
		Order("timestamp ASC").
		Find(&points).Error
	if err != nil {
		return nil, fmt.Errorf("getting track points for voyage %s: %w", voyageID, err)
	}
	return points, nil
}
