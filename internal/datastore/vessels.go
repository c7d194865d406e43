// vessels.go: vessel registry accessors and the filter/pagination engine
package datastore

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tidegrid/fishtrack-go/internal/errors"
	"gorm.io/gorm"
)

// Pagination bounds for vessel listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// vesselAggregateSelect attaches the per-vessel photo and attachment counts
// as correlated subqueries so they are always fresh, never stored.
const vesselAggregateSelect = "vessels.*, " +
	"(SELECT COUNT(*) FROM vessel_photos WHERE vessel_photos.vessel_id = vessels.id) AS photo_count, " +
	"(SELECT COUNT(*) FROM vessel_files WHERE vessel_files.vessel_id = vessels.id) AS file_count"

// vesselUpdatableColumns is the whitelist for partial vessel updates.
var vesselUpdatableColumns = map[string]bool{
	"vessel_name":     true,
	"tonnage":         true,
	"length":          true,
	"engine_type":     true,
	"engine_count":    true,
	"engine_power_ps": true,
	"engine_power_kw": true,
	"hull_material":   true,
	"build_date":      true,
	"port":            true,
	"business_type":   true,
	"equipment_name":  true,
	"equipment_power": true,
	"mmsi":            true,
	"group_name":      true,
	"organization":    true,
}

// InsertVessel stores a new census record.
func (ds *DataStore) InsertVessel(vessel *Vessel) error {
	if err := ds.DB.Create(vessel).Error; err != nil {
		return fmt.Errorf("inserting vessel: %w", err)
	}
	return nil
}

// GetVessel retrieves a vessel by internal id, including its derived
// photo/file counts.
func (ds *DataStore) GetVessel(id uint) (Vessel, error) {
	var vessel Vessel
	err := ds.DB.Model(&Vessel{}).
		Select(vesselAggregateSelect).
		Where("vessels.id = ?", id).
		First(&vessel).Error
	if err != nil {
		return Vessel{}, fmt.Errorf("getting vessel with ID %d: %w", id, err)
	}
	return vessel, nil
}

// UpdateVessel applies a partial update. An empty field set is a client
// error; unknown columns are rejected; updated_at is always stamped.
func (ds *DataStore) UpdateVessel(id uint, fields map[string]any) (Vessel, error) {
	if len(fields) == 0 {
		return Vessel{}, errors.Newf("no fields to update").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}
	for column := range fields {
		if !vesselUpdatableColumns[column] {
			return Vessel{}, errors.Newf("unknown vessel field %q", column).
				Component("datastore").
				Category(errors.CategoryValidation).
				Context("field", column).
				Build()
		}
	}

	var vessel Vessel
	if err := ds.DB.First(&vessel, id).Error; err != nil {
		return Vessel{}, fmt.Errorf("getting vessel with ID %d: %w", id, err)
	}

	fields["updated_at"] = time.Now()
	if err := ds.DB.Model(&Vessel{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return Vessel{}, fmt.Errorf("updating vessel with ID %d: %w", id, err)
	}

	return ds.GetVessel(id)
}

// CountVessels returns the total number of census records.
func (ds *DataStore) CountVessels() (int64, error) {
	var count int64
	if err := ds.DB.Model(&Vessel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting vessels: %w", err)
	}
	return count, nil
}

// DeleteAllVessels removes every census record and reports how many were
// removed. Used by the ingestor's full-table replace.
func (ds *DataStore) DeleteAllVessels() (int64, error) {
	result := ds.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Vessel{})
	if result.Error != nil {
		return 0, fmt.Errorf("deleting all vessels: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// VesselFilter is the optional conjunction of registry list predicates.
type VesselFilter struct {
	Search       string // substring over name, mmsi, registration number
	Port         string // substring
	BusinessType string // substring
	GroupName    string // comma-set membership
	Organization string // exact
}

// predicate is one (clause, args) pair of the compiled filter. The filter
// is translated once into a parameterized query, never via string surgery
// on query text.
type predicate struct {
	clause string
	args   []any
}

// escapeLike neutralizes LIKE metacharacters in user-supplied filter text
// so % and _ match literally. The escape character is | because backslash
// literals are not portable between SQLite and MySQL.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "|", "||")
	s = strings.ReplaceAll(s, "%", "|%")
	s = strings.ReplaceAll(s, "_", "|_")
	return s
}

// predicates compiles the filter into its ordered predicate list.
func (f *VesselFilter) predicates() []predicate {
	var preds []predicate

	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		preds = append(preds, predicate{
			clause: "(vessel_name LIKE ? ESCAPE '|' OR mmsi LIKE ? ESCAPE '|' OR registration_no LIKE ? ESCAPE '|')",
			args:   []any{pattern, pattern, pattern},
		})
	}
	if f.Port != "" {
		preds = append(preds, predicate{clause: "port LIKE ? ESCAPE '|'", args: []any{"%" + escapeLike(f.Port) + "%"}})
	}
	if f.BusinessType != "" {
		preds = append(preds, predicate{clause: "business_type LIKE ? ESCAPE '|'", args: []any{"%" + escapeLike(f.BusinessType) + "%"}})
	}
	if f.GroupName != "" {
		// group_name packs a comma-joined label set into one text column.
		// Membership is the label standing alone, leading, trailing, or
		// interior, always delimited by ", ". Labels must not contain the
		// delimiter substring.
		g := escapeLike(f.GroupName)
		preds = append(preds, predicate{
			clause: "(group_name = ? OR group_name LIKE ? ESCAPE '|' OR group_name LIKE ? ESCAPE '|' OR group_name LIKE ? ESCAPE '|')",
			args:   []any{f.GroupName, g + ", %", "%, " + g, "%, " + g + ", %"},
		})
	}
	if f.Organization != "" {
		preds = append(preds, predicate{clause: "organization = ?", args: []any{f.Organization}})
	}

	return preds
}

// apply attaches every predicate to the query as one conjunction.
func (f *VesselFilter) apply(query *gorm.DB) *gorm.DB {
	for _, p := range f.predicates() {
		query = query.Where(p.clause, p.args...)
	}
	return query
}

// SearchVessels returns one page of the filtered registry plus the total
// count of the filtered set. Results are ordered by id ascending so
// pagination is deterministic. Page is 1-based; pageSize is clamped to
// [1, MaxPageSize], with 0 meaning the default.
func (ds *DataStore) SearchVessels(filter VesselFilter, page, pageSize int) ([]Vessel, int64, error) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}

	var total int64
	if err := filter.apply(ds.DB.Model(&Vessel{})).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting filtered vessels: %w", err)
	}

	var vessels []Vessel
	err := filter.apply(ds.DB.Model(&Vessel{}).Select(vesselAggregateSelect)).
		Order("vessels.id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&vessels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("searching vessels: %w", err)
	}

	return vessels, total, nil
}

// FacetCount is one distinct value of a registry column with its
// occurrence count.
type FacetCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// columnFacet lists distinct non-empty values of a column ordered by
// occurrence count descending.
func (ds *DataStore) columnFacet(column string) ([]FacetCount, error) {
	var facets []FacetCount
	err := ds.DB.Model(&Vessel{}).
		Select(column+" AS value, COUNT(*) AS count").
		Where(column+" IS NOT NULL AND "+column+" != ''").
		Group(column).
		Order("count DESC").
		Scan(&facets).Error
	if err != nil {
		return nil, fmt.Errorf("listing %s facet: %w", column, err)
	}
	return facets, nil
}

// VesselPorts lists home ports with vessel counts.
func (ds *DataStore) VesselPorts() ([]FacetCount, error) {
	return ds.columnFacet("port")
}

// VesselBusinessTypes lists business types with vessel counts.
func (ds *DataStore) VesselBusinessTypes() ([]FacetCount, error) {
	return ds.columnFacet("business_type")
}

// VesselOrganizations lists organizations with vessel counts.
func (ds *DataStore) VesselOrganizations() ([]FacetCount, error) {
	return ds.columnFacet("organization")
}

// VesselGroups lists group labels with vessel counts, ordered by label
// ascending. Unlike the other facets the comma-set in each record is split
// first, so one record contributes to every group it belongs to.
func (ds *DataStore) VesselGroups() ([]FacetCount, error) {
	var packed []string
	err := ds.DB.Model(&Vessel{}).
		Where("group_name IS NOT NULL AND group_name != ''").
		Pluck("group_name", &packed).Error
	if err != nil {
		return nil, fmt.Errorf("listing group names: %w", err)
	}

	counts := make(map[string]int64)
	for _, set := range packed {
		for _, label := range SplitGroupSet(set) {
			counts[label]++
		}
	}

	facets := make([]FacetCount, 0, len(counts))
	for label, count := range counts {
		facets = append(facets, FacetCount{Value: label, Count: count})
	}
	sort.Slice(facets, func(i, j int) bool { return facets[i].Value < facets[j].Value })

	return facets, nil
}

// SplitGroupSet parses a comma-packed group column into its set of
// trimmed, non-empty labels.
func SplitGroupSet(packed string) []string {
	var labels []string
	for _, part := range strings.Split(packed, ",") {
		if label := strings.TrimSpace(part); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}
