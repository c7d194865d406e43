// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/tidegrid/fishtrack-go/internal/conf"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Interface abstracts the underlying database implementation and defines
// the operations the rest of the system may perform against the store.
type Interface interface {
	Open() error
	Close() error

	// Vessel registry
	InsertVessel(vessel *Vessel) error
	GetVessel(id uint) (Vessel, error)
	UpdateVessel(id uint, fields map[string]any) (Vessel, error)
	CountVessels() (int64, error)
	DeleteAllVessels() (int64, error)
	SearchVessels(filter VesselFilter, page, pageSize int) ([]Vessel, int64, error)
	VesselPorts() ([]FacetCount, error)
	VesselBusinessTypes() ([]FacetCount, error)
	VesselOrganizations() ([]FacetCount, error)
	VesselGroups() ([]FacetCount, error)

	// Voyage ledger
	GetVoyage(id string) (Voyage, error)
	SearchVoyages(mmsi string, year int, status string) ([]Voyage, error)
	UpdateVoyage(id string, fields map[string]any) (Voyage, error)
	GetOrCreateMonthlyVoyage(mmsi string, year, month int, vesselName string) (Voyage, bool, error)
	SaveTrackPoints(voyageID string, points []TrackPoint) error
	GetTrackPoints(voyageID string) ([]TrackPoint, error)

	// Sales and expenses
	GetAuctions(voyageID string) ([]Auction, error)
	SaveAuction(auction *Auction) error
	DeleteAuction(id string) error
	GetPrivateSales(voyageID string) ([]PrivateSale, error)
	SavePrivateSale(sale *PrivateSale) error
	DeletePrivateSale(id string) error
	GetExpenses(voyageID string) ([]Expense, error)
	SaveExpense(expense *Expense) error
	DeleteExpense(id uint) error

	// Memos and uploads
	GetVesselMemos(vesselID uint) ([]VesselMemo, error)
	SaveVesselMemo(memo *VesselMemo) error
	UpdateVesselMemo(id uint, content string) (VesselMemo, error)
	DeleteVesselMemo(id uint) error
	GetVesselPhotos(vesselID uint) ([]VesselPhoto, error)
	SaveVesselPhoto(photo *VesselPhoto) error
	GetVesselPhotoByFilename(name string) (VesselPhoto, error)
	DeleteVesselPhoto(id uint) (VesselPhoto, error)
	GetVesselFiles(vesselID uint) ([]VesselFile, error)
	SaveVesselFile(file *VesselFile) error
	GetVesselFileByFilename(name string) (VesselFile, error)
	DeleteVesselFile(id uint) (VesselFile, error)

	Statistics() (Statistics, error)
	SeedSampleVoyages() error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a store instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// Close releases the underlying database connection.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return fmt.Errorf("getting underlying database handle: %w", err)
	}
	return sqlDB.Close()
}

// performAutoMigration automates database migrations with error handling.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(
		&Vessel{}, &Voyage{}, &TrackPoint{},
		&Auction{}, &PrivateSale{}, &Expense{},
		&VesselMemo{}, &VesselPhoto{}, &VesselFile{},
	); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		log.Printf("%s database connection initialized: %s", dbType, connectionInfo)
	}

	return nil
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)
}
