package gormrepository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"exchange-diary/internal/models"
)

const investmentIDPrefix = "INV_"

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// NextInvestmentIDTx returns the next INV_#### id by scanning the highest
// numeric suffix. Safe only under the service-level single-writer lock.
func (s *Store) NextInvestmentIDTx(tx *gorm.DB) (string, error) {
	var last models.Investment
	err := tx.
		Where("id LIKE ?", investmentIDPrefix+"%").
		Order("CAST(SUBSTR(id, 5) AS INTEGER) DESC").
		Limit(1).
		Take(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return investmentIDPrefix + "0001", nil
	}
	if err != nil {
		return "", err
	}
	n, err := strconv.Atoi(strings.TrimPrefix(last.ID, investmentIDPrefix))
	if err != nil {
		return "", fmt.Errorf("malformed investment id %q: %w", last.ID, err)
	}
	return fmt.Sprintf("%s%04d", investmentIDPrefix, n+1), nil
}

// IsDuplicateTx compares all four fields for exact equality. This is
// intentionally stricter than the matcher's amount tolerance.
func (s *Store) IsDuplicateTx(tx *gorm.DB, date, typ string, foreignAmount, exchangeRate float64) (bool, error) {
	var count int64
	err := tx.Model(&models.Investment{}).
		Where("date = ? AND type = ? AND foreignAmount = ? AND exchangeRate = ?",
			date, typ, foreignAmount, exchangeRate).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) InsertInvestmentTx(tx *gorm.DB, item *models.Investment) error {
	if item == nil {
		return nil
	}
	return tx.Create(item).Error
}

func (s *Store) DeleteInvestmentTx(tx *gorm.DB, id string) (int64, error) {
	res := tx.Where("id = ?", id).Delete(&models.Investment{})
	return res.RowsAffected, res.Error
}

func (s *Store) FindInvestmentByIDTx(tx *gorm.DB, id string) (*models.Investment, error) {
	var item models.Investment
	err := tx.Where("id = ?", id).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindMatchingBuyTx returns the oldest standing buy whose amount is within
// the 0.01 tolerance of the sell and whose date is strictly earlier. Ties on
// date resolve by id, which is insertion order.
func (s *Store) FindMatchingBuyTx(tx *gorm.DB, sell *models.Investment) (*models.Investment, error) {
	var buy models.Investment
	err := tx.
		Where("type = ?", models.TypeBuy).
		Where("ABS(foreignAmount - ?) < 0.01", sell.ForeignAmount).
		Where("date < ?", sell.Date).
		Order("date ASC, id ASC").
		Limit(1).
		Take(&buy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &buy, nil
}

func (s *Store) InsertProfitTx(tx *gorm.DB, item *models.Profit) error {
	if item == nil {
		return nil
	}
	return tx.Create(item).Error
}

func (s *Store) DeleteProfitsReferencingTx(tx *gorm.DB, investmentID string) (int64, error) {
	res := tx.
		Where("buyRecordId = ? OR sellRecordId = ?", investmentID, investmentID).
		Delete(&models.Profit{})
	return res.RowsAffected, res.Error
}

func (s *Store) FindInvestmentByID(ctx context.Context, id string) (*models.Investment, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	return s.FindInvestmentByIDTx(s.db.WithContext(ctx), id)
}

func (s *Store) ListInvestments(ctx context.Context) ([]models.Investment, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Investment
	if err := s.db.WithContext(ctx).
		Order("date DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListProfits(ctx context.Context) ([]models.Profit, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Profit
	if err := s.db.WithContext(ctx).
		Order("sellDate DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteProfit(ctx context.Context, id string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Profit{})
	return res.RowsAffected, res.Error
}

func (s *Store) DeleteAllInvestmentsTx(tx *gorm.DB) error {
	return tx.
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Investment{}).Error
}

func (s *Store) DeleteAllProfitsTx(tx *gorm.DB) error {
	return tx.
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Profit{}).Error
}
