// sales.go: auction, private sale and expense records. These are immutable
// once recorded, there is no update path.
package datastore

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewAuctionID returns a fresh auction identity.
func NewAuctionID() string {
	return "AUC-" + uuid.NewString()
}

// NewPrivateSaleID returns a fresh private sale identity.
func NewPrivateSaleID() string {
	return "PRV-" + uuid.NewString()
}

// GetAuctions lists auctions, optionally restricted to one voyage.
func (ds *DataStore) GetAuctions(voyageID string) ([]Auction, error) {
	query := ds.DB.Model(&Auction{})
	if voyageID != "" {
		query = query.Where("voyage_id = ?", voyageID)
	}

	var auctions []Auction
	if err := query.Order("auction_date ASC").Find(&auctions).Error; err != nil {
		return nil, fmt.Errorf("listing auctions: %w", err)
	}
	return auctions, nil
}

// SaveAuction stores a new auction after checking the voyage exists. The
// derived total price is always recomputed from quantity and unit price.
func (ds *DataStore) SaveAuction(auction *Auction) error {
	if err := ds.DB.First(&Voyage{}, "id = ?", auction.VoyageID).Error; err != nil {
		return fmt.Errorf("getting voyage %s: %w", auction.VoyageID, err)
	}
	if auction.ID == "" {
		auction.ID = NewAuctionID()
	}
	auction.TotalPrice = auction.Quantity * auction.UnitPrice
	if err := ds.DB.Create(auction).Error; err != nil {
		return fmt.Errorf("saving auction: %w", err)
	}
	return nil
}

// DeleteAuction removes an auction by id.
func (ds *DataStore) DeleteAuction(id string) error {
	return deleteByID(ds.DB, &Auction{}, "auction", id)
}

// GetPrivateSales lists direct sales, optionally restricted to one voyage.
func (ds *DataStore) GetPrivateSales(voyageID string) ([]PrivateSale, error) {
	query := ds.DB.Model(&PrivateSale{})
	if voyageID != "" {
		query = query.Where("voyage_id = ?", voyageID)
	}

	var sales []PrivateSale
	if err := query.Order("sale_date ASC").Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("listing private sales: %w", err)
	}
	return sales, nil
}

// SavePrivateSale stores a new direct sale after checking the voyage
// exists, recomputing the derived total price.
func (ds *DataStore) SavePrivateSale(sale *PrivateSale) error {
	if err := ds.DB.First(&Voyage{}, "id = ?", sale.VoyageID).Error; err != nil {
		return fmt.Errorf("getting voyage %s: %w", sale.VoyageID, err)
	}
	if sale.ID == "" {
		sale.ID = NewPrivateSaleID()
	}
	sale.TotalPrice = sale.Quantity * sale.UnitPrice
	if err := ds.DB.Create(sale).Error; err != nil {
		return fmt.Errorf("saving private sale: %w", err)
	}
	return nil
}

// DeletePrivateSale removes a direct sale by id.
func (ds *DataStore) DeletePrivateSale(id string) error {
	return deleteByID(ds.DB, &PrivateSale{}, "private sale", id)
}

// GetExpenses lists expenses, optionally restricted to one voyage.
func (ds *DataStore) GetExpenses(voyageID string) ([]Expense, error) {
	query := ds.DB.Model(&Expense{})
	if voyageID != "" {
		query = query.Where("voyage_id = ?", voyageID)
	}

	var expenses []Expense
	if err := query.Order("expense_date ASC").Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	return expenses, nil
}

// SaveExpense stores a new expense after checking the voyage exists.
func (ds *DataStore) SaveExpense(expense *Expense) error {
	if err := ds.DB.First(&Voyage{}, "id = ?", expense.VoyageID).Error; err != nil {
		return fmt.Errorf("getting voyage %s: %w", expense.VoyageID, err)
	}
	if err := ds.DB.Create(expense).Error; err != nil {
		return fmt.Errorf("saving expense: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense by id.
func (ds *DataStore) DeleteExpense(id uint) error {
	return deleteByID(ds.DB, &Expense{}, "expense", id)
}

// deleteByID deletes a single row by primary key, turning a zero-row
// delete into a not-found error.
func deleteByID(db *gorm.DB, model any, kind string, id any) error {
	result := db.Where("id = ?", id).Delete(model)
	if result.Error != nil {
		return fmt.Errorf("deleting %s %v: %w", kind, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("deleting %s %v: %w", kind, id, gorm.ErrRecordNotFound)
	}
	return nil
}

// Statistics aggregates the platform-wide dashboard numbers.
type Statistics struct {
	TotalVessels       int64   `json:"total_vessels"`
	TotalVoyages       int64   `json:"total_voyages"`
	ActiveVoyages      int64   `json:"active_voyages"`
	TotalCatchAmount   float64 `json:"total_catch_amount"`
	TotalAuctionAmount float64 `json:"total_auction_amount"`
}

// Statistics computes the dashboard aggregates in one pass per table.
func (ds *DataStore) Statistics() (Statistics, error) {
	var stats Statistics

	if err := ds.DB.Model(&Vessel{}).Count(&stats.TotalVessels).Error; err != nil {
		return stats, fmt.Errorf("counting vessels: %w", err)
	}
	if err := ds.DB.Model(&Voyage{}).Count(&stats.TotalVoyages).Error; err != nil {
		return stats, fmt.Errorf("counting voyages: %w", err)
	}
	if err := ds.DB.Model(&Voyage{}).Where("status = ?", StatusFishing).Count(&stats.ActiveVoyages).Error; err != nil {
		return stats, fmt.Errorf("counting active voyages: %w", err)
	}
	if err := ds.DB.Model(&Voyage{}).Select("COALESCE(SUM(catch_amount), 0)").Scan(&stats.TotalCatchAmount).Error; err != nil {
		return stats, fmt.Errorf("summing catch amount: %w", err)
	}
	if err := ds.DB.Model(&Auction{}).Select("COALESCE(SUM(total_price), 0)").Scan(&stats.TotalAuctionAmount).Error; err != nil {
		return stats, fmt.Errorf("summing auction totals: %w", err)
	}

	return stats, nil
}
