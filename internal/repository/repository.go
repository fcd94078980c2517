package repository

import (
	"context"

	"gorm.io/gorm"

	"exchange-diary/internal/models"
)

// Repository is the ledger store. The multi-step insert/match sequence runs
// inside InTx; the Tx-suffixed primitives operate on that transaction handle
// so a failed match rolls back as one unit.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Investment primitives (tx-scoped).
	NextInvestmentIDTx(tx *gorm.DB) (string, error)
	IsDuplicateTx(tx *gorm.DB, date, typ string, foreignAmount, exchangeRate float64) (bool, error)
	InsertInvestmentTx(tx *gorm.DB, item *models.Investment) error
	DeleteInvestmentTx(tx *gorm.DB, id string) (int64, error)
	FindInvestmentByIDTx(tx *gorm.DB, id string) (*models.Investment, error)
	FindMatchingBuyTx(tx *gorm.DB, sell *models.Investment) (*models.Investment, error)

	// Profit primitives (tx-scoped).
	InsertProfitTx(tx *gorm.DB, item *models.Profit) error
	DeleteProfitsReferencingTx(tx *gorm.DB, investmentID string) (int64, error)

	// Full wipe (tx-scoped so both tables empty or neither does).
	DeleteAllInvestmentsTx(tx *gorm.DB) error
	DeleteAllProfitsTx(tx *gorm.DB) error

	// Read/delete operations outside the matching transaction.
	FindInvestmentByID(ctx context.Context, id string) (*models.Investment, error)
	ListInvestments(ctx context.Context) ([]models.Investment, error)
	ListProfits(ctx context.Context) ([]models.Profit, error)
	DeleteProfit(ctx context.Context, id string) (int64, error)
}
