// seed.go: one-time sample data load for the voyage ledger, invoked at
// startup. Replaces the mutable in-memory sample maps of early iterations.
package datastore

import (
	"fmt"
	"time"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func floatPtr(f float64) *float64 { return &f }

// SeedSampleVoyages inserts demonstration voyages, track points and
// auctions when the voyage table is empty. Re-running is a no-op.
func (ds *DataStore) SeedSampleVoyages() error {
	var count int64
	if err := ds.DB.Model(&Voyage{}).Count(&count).Error; err != nil {
		return fmt.Errorf("counting voyages: %w", err)
	}
	if count > 0 {
		return nil
	}

	voyages := []Voyage{
		{
			ID: "440004950-2025-001", MMSI: "440004950", Year: 2025, VoyageNo: 1,
			VesselName:    "수복호",
			DeparturePort: strPtr("속초"),
			DepartureDate: timePtr(time.Date(2025, 1, 10, 6, 0, 0, 0, time.Local)),
			ArrivalPort:   strPtr("속초"),
			ArrivalDate:   timePtr(time.Date(2025, 1, 12, 18, 0, 0, 0, time.Local)),
			FishingArea:   strPtr("동해 북부"),
			CatchAmount:   850.5,
			FishSpecies:   "오징어, 고등어",
			Status:        StatusCompleted,
		},
		{
			ID: "440004950-2025-002", MMSI: "440004950", Year: 2025, VoyageNo: 2,
			VesselName:    "수복호",
			DeparturePort: strPtr("속초"),
			DepartureDate: timePtr(time.Date(2025, 1, 15, 5, 30, 0, 0, time.Local)),
			FishingArea:   strPtr("동해 중부"),
			CatchAmount:   320.0,
			FishSpecies:   "오징어",
			Status:        StatusFishing,
		},
		{
			ID: "440133600-2025-001", MMSI: "440133600", Year: 2025, VoyageNo: 1,
			VesselName:    "동산호",
			DeparturePort: strPtr("동해"),
			DepartureDate: timePtr(time.Date(2025, 1, 8, 4, 0, 0, 0, time.Local)),
			ArrivalPort:   strPtr("동해"),
			ArrivalDate:   timePtr(time.Date(2025, 1, 14, 16, 0, 0, 0, time.Local)),
			FishingArea:   strPtr("울릉도 근해"),
			CatchAmount:   2150.0,
			FishSpecies:   "명태, 대구",
			Status:        StatusCompleted,
		},
	}

	trackPoints := []TrackPoint{
		{VoyageID: "440004950-2025-001", Timestamp: time.Date(2025, 1, 10, 6, 0, 0, 0, time.Local), Latitude: 38.2070, Longitude: 128.5918, Speed: floatPtr(8.5), Course: floatPtr(90)},
		{VoyageID: "440004950-2025-001", Timestamp: time.Date(2025, 1, 10, 12, 0, 0, 0, time.Local), Latitude: 38.2500, Longitude: 129.0000, Speed: floatPtr(5.0), Course: floatPtr(45)},
		{VoyageID: "440004950-2025-001", Timestamp: time.Date(2025, 1, 11, 6, 0, 0, 0, time.Local), Latitude: 38.3000, Longitude: 129.3000, Speed: floatPtr(2.0), Course: floatPtr(180)},
		{VoyageID: "440004950-2025-001", Timestamp: time.Date(2025, 1, 12, 12, 0, 0, 0, time.Local), Latitude: 38.2200, Longitude: 128.8000, Speed: floatPtr(10.0), Course: floatPtr(270)},
		{VoyageID: "440004950-2025-002", Timestamp: time.Date(2025, 1, 15, 5, 30, 0, 0, time.Local), Latitude: 38.2070, Longitude: 128.5918, Speed: floatPtr(9.0), Course: floatPtr(80)},
		{VoyageID: "440004950-2025-002", Timestamp: time.Date(2025, 1, 15, 14, 0, 0, 0, time.Local), Latitude: 38.5000, Longitude: 129.1000, Speed: floatPtr(3.0), Course: floatPtr(120)},
		{VoyageID: "440133600-2025-001", Timestamp: time.Date(2025, 1, 8, 4, 0, 0, 0, time.Local), Latitude: 37.5244, Longitude: 129.1144, Speed: floatPtr(10.0), Course: floatPtr(60)},
		{VoyageID: "440133600-2025-001", Timestamp: time.Date(2025, 1, 9, 12, 0, 0, 0, time.Local), Latitude: 37.2000, Longitude: 130.5000, Speed: floatPtr(4.0), Course: floatPtr(90)},
		{VoyageID: "440133600-2025-001", Timestamp: time.Date(2025, 1, 12, 8, 0, 0, 0, time.Local), Latitude: 37.5000, Longitude: 131.0000, Speed: floatPtr(2.5), Course: floatPtr(200)},
	}

	auctions := []Auction{
		{
			ID: "AUC-2025-001", VoyageID: "440004950-2025-001",
			AuctionDate: time.Date(2025, 1, 13, 5, 0, 0, 0, time.Local),
			AuctionPort: "속초공동어시장", FishSpecies: "오징어",
			Quantity: 500.0, UnitPrice: 15000, TotalPrice: 7500000,
			Buyer: strPtr("수협"),
		},
		{
			ID: "AUC-2025-002", VoyageID: "440004950-2025-001",
			AuctionDate: time.Date(2025, 1, 13, 5, 30, 0, 0, time.Local),
			AuctionPort: "속초공동어시장", FishSpecies: "고등어",
			Quantity: 350.5, UnitPrice: 8000, TotalPrice: 2804000,
			Buyer: strPtr("수협"),
		},
		{
			ID: "AUC-2025-003", VoyageID: "440133600-2025-001",
			AuctionDate: time.Date(2025, 1, 15, 6, 0, 0, 0, time.Local),
			AuctionPort: "동해어시장", FishSpecies: "명태",
			Quantity: 1500.0, UnitPrice: 12000, TotalPrice: 18000000,
			Buyer: strPtr("동해수산"),
		},
	}

	if err := ds.DB.Create(&voyages).Error; err != nil {
		return fmt.Errorf("seeding voyages: %w", err)
	}
	if err := ds.DB.Create(&trackPoints).Error; err != nil {
		return fmt.Errorf("seeding track points: %w", err)
	}
	if err := ds.DB.Create(&auctions).Error; err != nil {
		return fmt.Errorf("seeding auctions: %w", err)
	}

	return nil
}
