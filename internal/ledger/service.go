package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"exchange-diary/internal/models"
	"exchange-diary/internal/repository"
)

const createdAtLayout = "2006-01-02T15:04:05Z"

// Record is one incoming candidate row, manual or OCR-derived.
type Record struct {
	Date          string  `json:"date"`
	Type          string  `json:"type"`
	ForeignAmount float64 `json:"foreignAmount"`
	ExchangeRate  float64 `json:"exchangeRate"`
	WonAmount     float64 `json:"wonAmount"`
}

// RecordResult is the per-record outcome of a batch insert. Data carries the
// stored row as inserted; when the record was a sell that matched, the row
// has already been consumed and Profit carries the realized trade.
type RecordResult struct {
	Success bool               `json:"success"`
	Data    *models.Investment `json:"data,omitempty"`
	Profit  *models.Profit     `json:"profit,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// DeleteOutcome reports an investment deletion and whether profit rows
// referencing it were cascaded away.
type DeleteOutcome struct {
	Type            string
	CascadedProfits int64
}

// Summary aggregates the realized and standing state of the ledger.
// Totals are accumulated with decimals so long profit histories do not
// drift the way float sums do.
type Summary struct {
	TradeCount        int     `json:"tradeCount"`
	TotalProfit       float64 `json:"totalProfit"`
	AverageProfitRate float64 `json:"averageProfitRate"`
	StandingBuyWon    float64 `json:"standingBuyWon"`
}

// ListResult is the full ledger view returned by GET /api/investments.
type ListResult struct {
	Investments []models.Investment `json:"investments"`
	Profits     []models.Profit     `json:"profits"`
	Summary     Summary             `json:"summary"`
}

// Service owns the record lifecycle: dedup, id assignment, and buy/sell
// matching. The mutex serializes every read-modify-write so id assignment
// cannot collide and no two concurrent sells consume the same buy.
type Service struct {
	Repo   repository.Repository
	Logger *zap.Logger

	// Now is the clock used for createdAt stamps and profit ids.
	// Defaults to time.Now; tests override it.
	Now func() time.Time

	mu sync.Mutex
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// AddRecords processes each record independently under the single-writer
// lock: one bad or duplicate record never blocks its siblings, and each
// record's insert+match runs in its own transaction.
func (s *Service) AddRecords(ctx context.Context, records []Record, source string) []RecordResult {
	source = normalizeSource(source)
	results := make([]RecordResult, 0, len(records))
	for _, rec := range records {
		s.mu.Lock()
		res := s.addOne(ctx, rec, source)
		s.mu.Unlock()
		results = append(results, res)
	}
	return results
}

func (s *Service) addOne(ctx context.Context, rec Record, source string) RecordResult {
	if err := validateRecord(rec); err != nil {
		return RecordResult{Success: false, Error: err.Error()}
	}

	var inserted *models.Investment
	var realized *models.Profit

	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		dup, err := s.Repo.IsDuplicateTx(tx, rec.Date, rec.Type, rec.ForeignAmount, rec.ExchangeRate)
		if err != nil {
			return fmt.Errorf("%w: duplicate check: %v", ErrStorage, err)
		}
		if dup {
			return ErrDuplicate
		}

		id, err := s.Repo.NextInvestmentIDTx(tx)
		if err != nil {
			return fmt.Errorf("%w: id assignment: %v", ErrStorage, err)
		}

		item := &models.Investment{
			ID:            id,
			Date:          rec.Date,
			Type:          rec.Type,
			ForeignAmount: rec.ForeignAmount,
			ExchangeRate:  rec.ExchangeRate,
			WonAmount:     rec.WonAmount,
			Source:        source,
			CreatedAt:     s.now().UTC().Format(createdAtLayout),
		}
		if err := s.Repo.InsertInvestmentTx(tx, item); err != nil {
			return fmt.Errorf("%w: insert: %v", ErrStorage, err)
		}
		inserted = item

		if item.Type != models.TypeSell {
			return nil
		}

		buy, err := s.Repo.FindMatchingBuyTx(tx, item)
		if err != nil {
			return fmt.Errorf("%w: match scan: %v", ErrStorage, err)
		}
		if buy == nil {
			// No eligible earlier buy; the sell stands unmatched.
			// Matching only runs here, never retroactively on later buys.
			return nil
		}

		profit := item.WonAmount - buy.WonAmount
		profitRate := profit / buy.WonAmount * 100

		p := &models.Profit{
			ID:            fmt.Sprintf("profit_%d_%s", s.now().UnixMilli(), item.ID),
			BuyDate:       buy.Date,
			SellDate:      item.Date,
			BuyRecordID:   buy.ID,
			SellRecordID:  item.ID,
			ForeignAmount: item.ForeignAmount,
			BuyRate:       buy.ExchangeRate,
			SellRate:      item.ExchangeRate,
			BuyWonAmount:  buy.WonAmount,
			SellWonAmount: item.WonAmount,
			Profit:        profit,
			ProfitRate:    profitRate,
			CreatedAt:     item.CreatedAt,
		}
		if err := s.Repo.InsertProfitTx(tx, p); err != nil {
			return fmt.Errorf("%w: insert profit: %v", ErrStorage, err)
		}
		if _, err := s.Repo.DeleteInvestmentTx(tx, buy.ID); err != nil {
			return fmt.Errorf("%w: delete matched buy: %v", ErrStorage, err)
		}
		if _, err := s.Repo.DeleteInvestmentTx(tx, item.ID); err != nil {
			return fmt.Errorf("%w: delete matched sell: %v", ErrStorage, err)
		}
		realized = p
		return nil
	})
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("record rejected",
				zap.String("date", rec.Date),
				zap.String("type", rec.Type),
				zap.Error(err),
			)
		}
		return RecordResult{Success: false, Error: err.Error()}
	}

	if realized != nil && s.Logger != nil {
		s.Logger.Info("sell matched",
			zap.String("buy_id", realized.BuyRecordID),
			zap.String("sell_id", realized.SellRecordID),
			zap.Float64("profit", realized.Profit),
		)
	}
	return RecordResult{Success: true, Data: inserted, Profit: realized}
}

// DeleteInvestment removes one standing entry and cascades any profit rows
// still referencing its id.
func (s *Service) DeleteInvestment(ctx context.Context, id string) (DeleteOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out DeleteOutcome
	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		item, err := s.Repo.FindInvestmentByIDTx(tx, id)
		if err != nil {
			return fmt.Errorf("%w: lookup: %v", ErrStorage, err)
		}
		if item == nil {
			return ErrNotFound
		}
		out.Type = item.Type

		cascaded, err := s.Repo.DeleteProfitsReferencingTx(tx, id)
		if err != nil {
			return fmt.Errorf("%w: cascade profits: %v", ErrStorage, err)
		}
		out.CascadedProfits = cascaded

		if _, err := s.Repo.DeleteInvestmentTx(tx, id); err != nil {
			return fmt.Errorf("%w: delete: %v", ErrStorage, err)
		}
		return nil
	})
	return out, err
}

// DeleteProfit removes one realized trade. One-way: the consumed investment
// rows are not resurrected.
func (s *Service) DeleteProfit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.Repo.DeleteProfit(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: delete profit: %v", ErrStorage, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll wipes both tables.
func (s *Service) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		if err := s.Repo.DeleteAllProfitsTx(tx); err != nil {
			return fmt.Errorf("%w: wipe profits: %v", ErrStorage, err)
		}
		if err := s.Repo.DeleteAllInvestmentsTx(tx); err != nil {
			return fmt.Errorf("%w: wipe investments: %v", ErrStorage, err)
		}
		return nil
	})
}

// List returns standing investments (date desc), realized profits
// (sellDate desc), and the aggregate summary.
func (s *Service) List(ctx context.Context) (ListResult, error) {
	investments, err := s.Repo.ListInvestments(ctx)
	if err != nil {
		return ListResult{}, fmt.Errorf("%w: list investments: %v", ErrStorage, err)
	}
	profits, err := s.Repo.ListProfits(ctx)
	if err != nil {
		return ListResult{}, fmt.Errorf("%w: list profits: %v", ErrStorage, err)
	}
	if investments == nil {
		investments = []models.Investment{}
	}
	if profits == nil {
		profits = []models.Profit{}
	}
	return ListResult{
		Investments: investments,
		Profits:     profits,
		Summary:     summarize(investments, profits),
	}, nil
}

func validateRecord(rec Record) error {
	if strings.TrimSpace(rec.Date) == "" {
		return fmt.Errorf("%w: date required", ErrValidation)
	}
	if rec.Type != models.TypeBuy && rec.Type != models.TypeSell {
		return fmt.Errorf("%w: unknown type %q", ErrValidation, rec.Type)
	}
	if rec.ForeignAmount <= 0 {
		return fmt.Errorf("%w: foreignAmount must be positive", ErrValidation)
	}
	if rec.ExchangeRate <= 0 {
		return fmt.Errorf("%w: exchangeRate must be positive", ErrValidation)
	}
	if rec.WonAmount <= 0 {
		return fmt.Errorf("%w: wonAmount must be positive", ErrValidation)
	}
	return nil
}

func normalizeSource(source string) string {
	switch source {
	case models.SourceManual:
		return models.SourceManual
	default:
		return models.SourcePhoto
	}
}
