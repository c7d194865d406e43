package ingest

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tidegrid/fishtrack-go/internal/datastore"
	"github.com/tidegrid/fishtrack-go/internal/errors"
	"github.com/tidegrid/fishtrack-go/internal/logging"
)

// utf8BOM is the byte order marker some census exports carry.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Census column headers. The header row must match these exactly for the
// mapping to apply.
const (
	colVesselName           = "선명"
	colTonnage              = "톤수"
	colLength               = "길이"
	colEngineType           = "엔진종류"
	colEngineCount          = "엔진갯수"
	colEnginePowerPS        = "엔진출력PS"
	colEnginePowerKW        = "엔진출력KW"
	colHullMaterial         = "선질"
	colRegistrationNo       = "등록번호"
	colBuildDate            = "건조일시"
	colPort                 = "선적지"
	colBusinessType         = "업종"
	colEquipmentName        = "장비명"
	colEquipmentPower       = "출력"
	colMMSI                 = "MMSI"
	colLicenseLocal         = "어업인허가(시군구)"
	colLicenseStartLocal    = "허가시작일(시군구)"
	colLicenseEndLocal      = "허가종료일(시군구)"
	colLicenseProvince      = "어업인허가(시도)"
	colLicenseStartProvince = "허가시작일(시도)"
	colLicenseEndProvince   = "허가종료일(시도)"
)

// Store is the slice of the registry store the ingestor needs.
type Store interface {
	CountVessels() (int64, error)
	DeleteAllVessels() (int64, error)
	InsertVessel(vessel *datastore.Vessel) error
}

// Report summarizes one ingestion run.
type Report struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	InsertedCount int64  `json:"insertedCount"`
	RowsSeen      int64  `json:"rowsSeen"`
}

// Ingestor bulk-loads census files into the registry store.
type Ingestor struct {
	store  Store
	logger *slog.Logger
}

// NewIngestor returns an ingestor writing to the given store.
func NewIngestor(store Store) *Ingestor {
	logger := logging.ForService("ingest")
	if logger == nil {
		logger = slog.Default().With("service", "ingest")
	}
	return &Ingestor{store: store, logger: logger}
}

// IngestFile opens the census file at path and runs Ingest on it.
func (ing *Ingestor) IngestFile(ctx context.Context, path string, forceReplace bool) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{Message: fmt.Sprintf("cannot open census file %s", path)},
			errors.New(err).
				Component("ingest").
				Category(errors.CategoryFileIO).
				Context("path", path).
				Build()
	}
	defer f.Close()

	return ing.Ingest(ctx, f, forceReplace)
}

// Ingest streams census rows from source into the store.
//
// With records already present and forceReplace unset this is a no-op that
// reports the existing count; with forceReplace set the table is emptied
// first. A row that fails to insert is logged and skipped, only a source
// that cannot be read at all fails the whole run.
func (ing *Ingestor) Ingest(ctx context.Context, source io.Reader, forceReplace bool) (Report, error) {
	existing, err := ing.store.CountVessels()
	if err != nil {
		return Report{Message: "cannot read existing registry count"},
			errors.New(err).Component("ingest").Category(errors.CategoryDatabase).Build()
	}

	if existing > 0 && !forceReplace {
		ing.logger.Info("registry already loaded, skipping ingest", "existing", existing)
		return Report{
			Success:       true,
			Message:       fmt.Sprintf("registry already holds %d vessels", existing),
			InsertedCount: existing,
		}, nil
	}

	if existing > 0 {
		removed, err := ing.store.DeleteAllVessels()
		if err != nil {
			return Report{Message: "cannot replace existing registry"},
				errors.New(err).Component("ingest").Category(errors.CategoryDatabase).Build()
		}
		ing.logger.Info("replaced existing registry", "removed", removed)
	}

	reader, err := newCensusReader(source)
	if err != nil {
		return Report{Message: "cannot parse census header"}, err
	}

	var inserted, seen int64
	for {
		if err := ctx.Err(); err != nil {
			return Report{Message: "ingest canceled", InsertedCount: inserted, RowsSeen: seen}, err
		}

		vessel, err := reader.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row, skip and continue.
			seen++
			ing.logger.Warn("skipping unreadable census row", "row", seen, "error", err)
			continue
		}
		seen++

		if err := ing.store.InsertVessel(vessel); err != nil {
			ing.logger.Warn("skipping census row", "row", seen, "error", err)
			continue
		}
		inserted++
	}

	ing.logger.Info("census ingest complete", "inserted", inserted, "seen", seen)
	return Report{
		Success:       true,
		Message:       fmt.Sprintf("loaded %d of %d vessel records", inserted, seen),
		InsertedCount: inserted,
		RowsSeen:      seen,
	}, nil
}

// censusReader streams census rows mapped by header name.
type censusReader struct {
	csv     *csv.Reader
	columns map[string]int
}

// newCensusReader strips an optional BOM, reads the header row and builds
// the header-to-index mapping.
func newCensusReader(source io.Reader) (*censusReader, error) {
	buffered := bufio.NewReader(source)
	if peeked, err := buffered.Peek(len(utf8BOM)); err == nil && string(peeked) == string(utf8BOM) {
		if _, err := buffered.Discard(len(utf8BOM)); err != nil {
			return nil, errors.New(err).Component("ingest").Category(errors.CategoryFileParsing).Build()
		}
	}

	r := csv.NewReader(buffered)
	r.FieldsPerRecord = -1 // tolerate ragged rows, missing cells read as empty

	header, err := r.Read()
	if err != nil {
		return nil, errors.Newf("reading census header: %w", err).
			Component("ingest").
			Category(errors.CategoryFileParsing).
			Build()
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	return &censusReader{csv: r, columns: columns}, nil
}

// cell returns the named column of record, or "" when absent.
func (cr *censusReader) cell(record []string, column string) string {
	idx, ok := cr.columns[column]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// next reads and normalizes one census row.
func (cr *censusReader) next() (*datastore.Vessel, error) {
	record, err := cr.csv.Read()
	if err != nil {
		return nil, err
	}

	name := ToText(cr.cell(record, colVesselName))
	vessel := &datastore.Vessel{
		Tonnage:              ToFloat(cr.cell(record, colTonnage)),
		Length:               ToFloat(cr.cell(record, colLength)),
		EngineType:           ToText(cr.cell(record, colEngineType)),
		EngineCount:          ToInt(cr.cell(record, colEngineCount)),
		EnginePowerPS:        ToFloat(cr.cell(record, colEnginePowerPS)),
		EnginePowerKW:        ToFloat(cr.cell(record, colEnginePowerKW)),
		HullMaterial:         ToText(cr.cell(record, colHullMaterial)),
		RegistrationNo:       ToText(cr.cell(record, colRegistrationNo)),
		BuildDate:            ToText(cr.cell(record, colBuildDate)),
		Port:                 ToText(cr.cell(record, colPort)),
		BusinessType:         ToText(cr.cell(record, colBusinessType)),
		EquipmentName:        ToText(cr.cell(record, colEquipmentName)),
		EquipmentPower:       ToText(cr.cell(record, colEquipmentPower)),
		MMSI:                 ToText(cr.cell(record, colMMSI)),
		LicenseLocal:         ToText(cr.cell(record, colLicenseLocal)),
		LicenseStartLocal:    ToText(cr.cell(record, colLicenseStartLocal)),
		LicenseEndLocal:      ToText(cr.cell(record, colLicenseEndLocal)),
		LicenseProvince:      ToText(cr.cell(record, colLicenseProvince)),
		LicenseStartProvince: ToText(cr.cell(record, colLicenseStartProvince)),
		LicenseEndProvince:   ToText(cr.cell(record, colLicenseEndProvince)),
	}
	if name != nil {
		vessel.VesselName = *name
	}
	// An empty registration number is absent, not blank; storing "" would
	// collide on the unique index.
	if vessel.RegistrationNo != nil && *vessel.RegistrationNo == "" {
		vessel.RegistrationNo = nil
	}

	return vessel, nil
}
