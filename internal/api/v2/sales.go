// internal/api/v2/sales.go
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tidegrid/fishtrack-go/internal/datastore"
)

// initSalesRoutes registers the auction, private sale and expense endpoints
func (c *Controller) initSalesRoutes() {
	c.Group.GET("/auctions", c.GetAuctions)
	c.Group.POST("/auctions", c.CreateAuction)
	c.Group.DELETE("/auctions/:id", c.DeleteAuction)

	c.Group.GET("/private-sales", c.GetPrivateSales)
	c.Group.POST("/private-sales", c.CreatePrivateSale)
	c.Group.DELETE("/private-sales/:id", c.DeletePrivateSale)

	c.Group.GET("/expenses", c.GetExpenses)
	c.Group.POST("/expenses", c.CreateExpense)
	c.Group.DELETE("/expenses/:id", c.DeleteExpense)
}

// AuctionRequest carries a new auction record. The total price is derived
// server-side, never taken from the client.
type AuctionRequest struct {
	VoyageID    string    `json:"voyageId"`
	AuctionDate time.Time `json:"auctionDate"`
	AuctionPort string    `json:"auctionPort"`
	FishSpecies string    `json:"fishSpecies"`
	Quantity    float64   `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	Buyer       *string   `json:"buyer"`
}

func (r *AuctionRequest) validate() string {
	switch {
	case r.VoyageID == "":
		return "voyageId is required"
	case r.AuctionPort == "":
		return "auctionPort is required"
	case r.FishSpecies == "":
		return "fishSpecies is required"
	case r.Quantity <= 0:
		return "quantity must be positive"
	case r.UnitPrice < 0:
		return "unitPrice must not be negative"
	}
	return ""
}

// GetAuctions lists auctions, optionally for one voyage
func (c *Controller) GetAuctions(ctx echo.Context) error {
	auctions, err := c.DS.GetAuctions(ctx.QueryParam("voyageId"))
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list auctions", statusForError(err))
	}
	return ctx.JSON(http.StatusOK, map[string]any{"data": auctions, "total": len(auctions)})
}

// CreateAuction records a new auction sale against a voyage
func (c *Controller) CreateAuction(ctx echo.Context) error {
	var req AuctionRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if msg := req.validate(); msg != "" {
		return c.HandleError(ctx, nil, msg, http.StatusBadRequest)
	}

	auction := datastore.Auction{
		VoyageID:    req.VoyageID,
		AuctionDate: req.AuctionDate,
		AuctionPort: req.AuctionPort,
		FishSpecies: req.FishSpecies,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		Buyer:       req.Buyer,
	}
	if err := c.DS.SaveAuction(&auction); err != nil {
		return c.HandleError(ctx, err, "Failed to save auction", statusForError(err))
	}

	return ctx.JSON(http.StatusCreated, map[string]any{"data": auction})
}

// DeleteAuction removes an auction record
func (c *Controller) DeleteAuction(ctx echo.Context) error {
	if err := c.DS.DeleteAuction(ctx.Param("id")); err != nil {
		return c.HandleError(ctx, err, "Failed to delete auction", statusForError(err))
	}
	return ctx.NoContent(http.StatusNoContent)
}

// PrivateSaleRequest carries a new direct sale record.
type PrivateSaleRequest struct {
	VoyageID    string    `json:"voyageId"`
	SaleDate    time.Time `json:"saleDate"`
	FishSpecies string    `json:"fishSpecies"`
	Quantity    float64   `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	Buyer       *string   `json:"buyer"`
}

func (r *PrivateSaleRequest) validate() string {
	switch {
	case r.VoyageID == "":
		return "voyageId is required"
	case r.FishSpecies == "":
		return "fishSpecies is required"
	case r.Quantity <= 0:
		return "quantity must be positive"
	case r.UnitPrice < 0:
		return "unitPrice must not be negative"
	}
	return ""
}

// GetPrivateSales lists direct sales, optionally for one voyage
func (c *Controller) GetPrivateSales(ctx echo.Context) error {
	sales, err := c.DS.GetPrivateSales(ctx.QueryParam("voyageId"))
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list private sales", statusForError(err))
	}
	return ctx.JSON(http.StatusOK, map[string]any{"data": sales, "total": len(sales)})
}

// CreatePrivateSale records a new direct sale against a voyage
func (c *Controller) CreatePrivateSale(ctx echo.Context) error {
	var req PrivateSaleRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if msg := req.validate(); msg != "" {
		return c.HandleError(ctx, nil, msg, http.StatusBadRequest)
	}

	sale := datastore.PrivateSale{
		VoyageID:    req.VoyageID,
		SaleDate:    req.SaleDate,
		FishSpecies: req.FishSpecies,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		Buyer:       req.Buyer,
	}
	if err := c.DS.SavePrivateSale(&sale); err != nil {
		return c.HandleError(ctx, err, "Failed to save private sale", statusForError(err))
	}

	return ctx.JSON(http.StatusCreated, map[string]any{"data": sale})
}

// DeletePrivateSale removes a direct sale record
func (c *Controller) DeletePrivateSale(ctx echo.Context) error {
	if err := c.DS.DeletePrivateSale(ctx.Param("id")); err != nil {
		return c.HandleError(ctx, err, "Failed to delete private sale", statusForError(err))
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ExpenseRequest carries a new voyage expense record.
type ExpenseRequest struct {
	VoyageID    string    `json:"voyageId"`
	ExpenseDate time.Time `json:"expenseDate"`
	Category    string    `json:"category"`
	Description *string   `json:"description"`
	Amount      float64   `json:"amount"`
}

func (r *ExpenseRequest) validate() string {
	switch {
	case r.VoyageID == "":
		return "voyageId is required"
	case r.Category == "":
		return "category is required"
	case r.Amount <= 0:
		return "amount must be positive"
	}
	return ""
}

// GetExpenses lists expenses, optionally for one voyage
func (c *Controller) GetExpenses(ctx echo.Context) error {
	expenses, err := c.DS.GetExpenses(ctx.QueryParam("voyageId"))
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list expenses", statusForError(err))
	}
	return ctx.JSON(http.StatusOK, map[string]any{"data": expenses, "total": len(expenses)})
}

// CreateExpense records a new expense against a voyage
func (c *Controller) CreateExpense(ctx echo.Context) error {
	var req ExpenseRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if msg := req.validate(); msg != "" {
		return c.HandleError(ctx, nil, msg, http.StatusBadRequest)
	}

	expense := datastore.Expense{
		VoyageID:    req.VoyageID,
		ExpenseDate: req.ExpenseDate,
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
	}
	if err := c.DS.SaveExpense(&expense); err != nil {
		return c.HandleError(ctx, err, "Failed to save expense", statusForError(err))
	}

	return ctx.JSON(http.StatusCreated, map[string]any{"data": expense})
}

// DeleteExpense removes an expense record
func (c *Controller) DeleteExpense(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid expense id", http.StatusBadRequest)
	}
	if err := c.DS.DeleteExpense(id); err != nil {
		return c.HandleError(ctx, err, "Failed to delete expense", statusForError(err))
	}
	return ctx.NoContent(http.StatusNoContent)
}
