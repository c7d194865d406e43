// model.go defines the data model for the vessel registry and voyage ledger
package datastore

import "time"

// Vessel represents one row of the national vessel census
type Vessel struct {
	ID                   uint    `gorm:"primaryKey"`
	VesselName           string  `gorm:"index:idx_vessels_name;not null"`
	Tonnage              *float64
	Length               *float64
	EngineType           *string
	EngineCount          *int
	EnginePowerPS        *float64 `gorm:"column:engine_power_ps"`
	EnginePowerKW        *float64 `gorm:"column:engine_power_kw"`
	HullMaterial         *string
	RegistrationNo       *string `gorm:"uniqueIndex:idx_vessels_registration"`
	BuildDate            *string
	Port                 *string `gorm:"index:idx_vessels_port"`
	BusinessType         *string
	EquipmentName        *string
	EquipmentPower       *string
	MMSI                 *string `gorm:"column:mmsi;index:idx_vessels_mmsi"`
	LicenseLocal         *string
	LicenseStartLocal    *string
	LicenseEndLocal      *string
	LicenseProvince      *string
	LicenseStartProvince *string
	LicenseEndProvince   *string
	GroupName            *string // comma-joined set of group labels
	Organization         *string
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Memos  []VesselMemo  `gorm:"foreignKey:VesselID;constraint:OnDelete:CASCADE"`
	Photos []VesselPhoto `gorm:"foreignKey:VesselID;constraint:OnDelete:CASCADE"`
	Files  []VesselFile  `gorm:"foreignKey:VesselID;constraint:OnDelete:CASCADE"`

	// Derived at read time via correlated subqueries, never stored
	PhotoCount int64 `gorm:"-:migration;->"`
	FileCount  int64 `gorm:"-:migration;->"`
}

// Voyage statuses, the closed set used by the source data.
const (
	StatusFishing   = "조업중" // at sea, actively fishing
	StatusReturned  = "입항"  // back in port, not yet settled
	StatusCompleted = "완료"  // settled
)

// VoyageStatuses lists every valid voyage status.
var VoyageStatuses = []string{StatusFishing, StatusReturned, StatusCompleted}

// ValidVoyageStatus reports whether s is one of the known statuses.
func ValidVoyageStatus(s string) bool {
	for _, known := range VoyageStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Voyage represents one fishing trip, keyed by "<mmsi>-<year>-<seq>"
type Voyage struct {
	ID            string `gorm:"primaryKey"`
	MMSI          string `gorm:"column:mmsi;index:idx_voyages_mmsi;not null"`
	Year          int    `gorm:"not null"`
	VoyageNo      int    `gorm:"not null"`
	VesselName    string `gorm:"not null"`
	DeparturePort *string
	DepartureDate *time.Time
	ArrivalPort   *string
	ArrivalDate   *time.Time
	FishingArea   *string
	CatchAmount   float64 // total catch in kg
	FishSpecies   string  // free-text species list
	Status        string  `gorm:"type:varchar(20)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	TrackPoints  []TrackPoint  `gorm:"foreignKey:VoyageID;constraint:OnDelete:CASCADE"`
	Auctions     []Auction     `gorm:"foreignKey:VoyageID;constraint:OnDelete:CASCADE"`
	PrivateSales []PrivateSale `gorm:"foreignKey:VoyageID;constraint:OnDelete:CASCADE"`
	Expenses     []Expense     `gorm:"foreignKey:VoyageID;constraint:OnDelete:CASCADE"`
}

// TrackPoint is one timestamped position sample along a voyage, write-once
type TrackPoint struct {
	ID        uint      `gorm:"primaryKey"`
	VoyageID  string    `gorm:"index:idx_track_points_voyage;not null"`
	Timestamp time.Time `gorm:"index:idx_track_points_time;not null"`
	Latitude  float64   `gorm:"not null"`
	Longitude float64   `gorm:"not null"`
	Speed     *float64 // knots
	Course    *float64 // degrees
}

// Auction is one auction-market sale recorded against a voyage
type Auction struct {
	ID          string    `gorm:"primaryKey"`
	VoyageID    string    `gorm:"index:idx_auctions_voyage;not null"`
	AuctionDate time.Time `gorm:"not null"`
	AuctionPort string    `gorm:"not null"`
	FishSpecies string    `gorm:"not null"`
	Quantity    float64   `gorm:"not null"` // kg
	UnitPrice   float64   `gorm:"not null"` // per kg
	TotalPrice  float64   `gorm:"not null"` // quantity * unit price, derived on insert
	Buyer       *string
	CreatedAt   time.Time
}

// PrivateSale is one direct (off-market) sale recorded against a voyage
type PrivateSale struct {
	ID          string    `gorm:"primaryKey"`
	VoyageID    string    `gorm:"index:idx_private_sales_voyage;not null"`
	SaleDate    time.Time `gorm:"not null"`
	FishSpecies string    `gorm:"not null"`
	Quantity    float64   `gorm:"not null"`
	UnitPrice   float64   `gorm:"not null"`
	TotalPrice  float64   `gorm:"not null"`
	Buyer       *string
	CreatedAt   time.Time
}

// Expense is one operating expense recorded against a voyage
type Expense struct {
	ID          uint      `gorm:"primaryKey"`
	VoyageID    string    `gorm:"index:idx_expenses_voyage;not null"`
	ExpenseDate time.Time `gorm:"not null"`
	Category    string    `gorm:"not null"` // fuel, ice, crew, supplies...
	Description *string
	Amount      float64 `gorm:"not null"`
	CreatedAt   time.Time
}

// VesselMemo is a free-text investigator note attached to a vessel
type VesselMemo struct {
	ID        uint   `gorm:"primaryKey"`
	VesselID  uint   `gorm:"index:idx_vessel_memos_vessel;not null"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VesselPhoto is the metadata row for one uploaded vessel photo
type VesselPhoto struct {
	ID           uint   `gorm:"primaryKey"`
	VesselID     uint   `gorm:"index:idx_vessel_photos_vessel;not null"`
	Filename     string `gorm:"uniqueIndex;not null"` // stored name on disk
	OriginalName string `gorm:"not null"`
	FilePath     string `gorm:"not null"`
	FileSize     int64
	MimeType     string
	IsPrimary    bool
	CreatedAt    time.Time
}

// VesselFile is the metadata row for one uploaded vessel attachment
type VesselFile struct {
	ID           uint   `gorm:"primaryKey"`
	VesselID     uint   `gorm:"index:idx_vessel_files_vessel;not null"`
	Filename     string `gorm:"uniqueIndex;not null"` // stored name on disk
	OriginalName string `gorm:"not null"`
	FilePath     string `gorm:"not null"`
	FileSize     int64
	MimeType     string
	Description  *string
	CreatedAt    time.Time
}
