package gormrepository

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"exchange-diary/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Investment{}, &models.Profit{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db)
}

func seedInvestment(t *testing.T, s *Store, item models.Investment) {
	t.Helper()
	err := s.InTx(context.Background(), func(tx *gorm.DB) error {
		return s.InsertInvestmentTx(tx, &item)
	})
	if err != nil {
		t.Fatalf("seed investment %s: %v", item.ID, err)
	}
}

func TestNextInvestmentID_Empty(t *testing.T) {
	s := openTestStore(t)
	err := s.InTx(context.Background(), func(tx *gorm.DB) error {
		id, err := s.NextInvestmentIDTx(tx)
		if err != nil {
			return err
		}
		if id != "INV_0001" {
			t.Fatalf("id=%s want=INV_0001", id)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
}

func TestNextInvestmentID_ScansMaxSuffix(t *testing.T) {
	s := openTestStore(t)
	seedInvestment(t, s, models.Investment{ID: "INV_0002", Date: "2024-01-01", Type: models.TypeBuy, ForeignAmount: 10, ExchangeRate: 1300, WonAmount: 13000, Source: "manual"})
	seedInvestment(t, s, models.Investment{ID: "INV_0010", Date: "2024-01-02", Type: models.TypeBuy, ForeignAmount: 20, ExchangeRate: 1300, WonAmount: 26000, Source: "manual"})

	err := s.InTx(context.Background(), func(tx *gorm.DB) error {
		id, err := s.NextInvestmentIDTx(tx)
		if err != nil {
			return err
		}
		if id != "INV_0011" {
			t.Fatalf("id=%s want=INV_0011", id)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
}

func TestIsDuplicate_ExactEqualityOnly(t *testing.T) {
	s := openTestStore(t)
	seedInvestment(t, s, models.Investment{ID: "INV_0001", Date: "2024-01-01", Type: models.TypeBuy, ForeignAmount: 100, ExchangeRate: 1300, WonAmount: 130000, Source: "manual"})

	err := s.InTx(context.Background(), func(tx *gorm.DB) error {
		dup, err := s.IsDuplicateTx(tx, "2024-01-01", models.TypeBuy, 100, 1300)
		if err != nil {
			return err
		}
		if !dup {
			t.Fatal("identical tuple should be a duplicate")
		}

		// The matcher tolerates 0.009 of drift; the duplicate check does not.
		dup, err = s.IsDuplicateTx(tx, "2024-01-01", models.TypeBuy, 100.009, 1300)
		if err != nil {
			return err
		}
		if dup {
			t.Fatal("near-equal amount must not count as duplicate")
		}

		dup, err = s.IsDuplicateTx(tx, "2024-01-01", models.TypeSell, 100, 1300)
		if err != nil {
			return err
		}
		if dup {
			t.Fatal("different type must not count as duplicate")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
}

func TestFindMatchingBuy_ToleranceAndDate(t *testing.T) {
	s := openTestStore(t)
	seedInvestment(t, s, models.Investment{ID: "INV_0001", Date: "2024-01-01", Type: models.TypeBuy, ForeignAmount: 100, ExchangeRate: 1300, WonAmount: 130000, Source: "manual"})

	sell := &models.Investment{Date: "2024-02-01", Type: models.TypeSell, ForeignAmount: 100.009, ExchangeRate: 1350, WonAmount: 135000}

	err := s.InTx(context.Background(), func(tx *gorm.DB) error {
		buy, err := s.FindMatchingBuyTx(tx, sell)
		if err != nil {
			return err
		}
		if buy == nil || buy.ID != "INV_0001" {
			t.Fatalf("buy=%+v want INV_0001 (diff 0.009 < 0.01)", buy)
		}

		sell.ForeignAmount = 100.02
		buy, err = s.FindMatchingBuyTx(tx, sell)
		if err != nil {
			return err
		}
		if buy != nil {
			t.Fatalf("buy=%+v want none (diff 0.02 >= 0.01)", buy)
		}

		// Same-day buy never matches: strict date <.
		sell.ForeignAmount = 100
		sell.Date = "2024-01-01"
		buy, err = s.FindMatchingBuyTx(tx, sell)
		if err != nil {
			return err
		}
		if buy != nil {
			t.Fatalf("buy=%+v want none (same-day)", buy)
		}

		// Future-dated buy never matches.
		sell.Date = "2023-12-31"
		buy, err = s.FindMatchingBuyTx(tx, sell)
		if err != nil {
			return err
		}
		if buy != nil {
			t.Fatalf("buy=%+v want none (buy after sell)", buy)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
}

func TestFindMatchingBuy_OldestFirst(t *testing.T) {
	s := openTestStore(t)
	seedInvestment(t, s, models.Investment{ID: "INV_0001", Date: "2024-01-10", Type: models.TypeBuy, ForeignAmount: 100, ExchangeRate: 1310, WonAmount: 131000, Source: "manual"})
	seedInvestment(t, s, models.Investment{ID: "INV_0002", Date: "2024-01-05", Type: models.TypeBuy, ForeignAmount: 100, ExchangeRate: 1305, WonAmount: 130500, Source: "manual"})

	sell := &models.Investment{Date: "2024-02-01", Type: models.TypeSell, ForeignAmount: 100}
	err := s.InTx(context.Background(), func(tx *gorm.DB) error {
		buy, err := s.FindMatchingBuyTx(tx, sell)
		if err != nil {
			return err
		}
		if buy == nil || buy.ID != "INV_0002" {
			t.Fatalf("buy=%+v want the earlier-dated INV_0002", buy)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
}

func TestFindMatchingBuy_SameDateTieBreaksByID(t *testing.T) {
	s := openTestStore(t)
	seedInvestment(t, s, models.Investment{ID: "INV_0002", Date: "2024-01-05", Type: models.TypeBuy, ForeignAmount: 100, ExchangeRate: 1305, WonAmount: 130500, Source: "manual"})
	seedInvestment(t, s, models.Investment{ID: "INV_0001", Date: "2024-01-05", Type: models.TypeBuy, ForeignAmount: 100, ExchangeRate: 1300, WonAmount: 130000, Source: "manual"})

	sell := &models.Investment{Date: "2024-02-01", Type: models.TypeSell, ForeignAmount: 100}
	err := s.InTx(context.Background(), func(tx *gorm.DB) error {
		buy, err := s.FindMatchingBuyTx(tx, sell)
		if err != nil {
			return err
		}
		if buy == nil || buy.ID != "INV_0001" {
			t.Fatalf("buy=%+v want INV_0001 (lowest id on tied date)", buy)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
}

func TestDeleteProfitsReferencing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	err := s.InTx(ctx, func(tx *gorm.DB) error {
		return s.InsertProfitTx(tx, &models.Profit{
			ID:           "profit_1700000000000_INV_0002",
			BuyDate:      "2024-01-01",
			SellDate:     "2024-02-01",
			BuyRecordID:  "INV_0001",
			SellRecordID: "INV_0002",
		})
	})
	if err != nil {
		t.Fatalf("seed profit: %v", err)
	}

	err = s.InTx(ctx, func(tx *gorm.DB) error {
		n, err := s.DeleteProfitsReferencingTx(tx, "INV_0001")
		if err != nil {
			return err
		}
		if n != 1 {
			t.Fatalf("deleted=%d want=1", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	profits, err := s.ListProfits(ctx)
	if err != nil {
		t.Fatalf("list profits: %v", err)
	}
	if len(profits) != 0 {
		t.Fatalf("profits=%d want=0", len(profits))
	}
}

func TestListOrdering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedInvestment(t, s, models.Investment{ID: "INV_0001", Date: "2024-01-01", Type: models.TypeBuy, ForeignAmount: 10, ExchangeRate: 1300, WonAmount: 13000, Source: "manual"})
	seedInvestment(t, s, models.Investment{ID: "INV_0002", Date: "2024-03-01", Type: models.TypeBuy, ForeignAmount: 20, ExchangeRate: 1300, WonAmount: 26000, Source: "manual"})

	items, err := s.ListInvestments(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].ID != "INV_0002" {
		t.Fatalf("items=%+v want date-descending order", items)
	}
}
