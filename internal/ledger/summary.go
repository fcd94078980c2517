package ledger

import (
	"github.com/shopspring/decimal"

	"exchange-diary/internal/models"
)

func summarize(investments []models.Investment, profits []models.Profit) Summary {
	totalProfit := decimal.Zero
	totalRate := decimal.Zero
	for _, p := range profits {
		totalProfit = totalProfit.Add(decimal.NewFromFloat(p.Profit))
		totalRate = totalRate.Add(decimal.NewFromFloat(p.ProfitRate))
	}

	standing := decimal.Zero
	for _, inv := range investments {
		if inv.Type == models.TypeBuy {
			standing = standing.Add(decimal.NewFromFloat(inv.WonAmount))
		}
	}

	sum := Summary{
		TradeCount:     len(profits),
		TotalProfit:    totalProfit.InexactFloat64(),
		StandingBuyWon: standing.InexactFloat64(),
	}
	if len(profits) > 0 {
		sum.AverageProfitRate = totalRate.
			Div(decimal.NewFromInt(int64(len(profits)))).
			InexactFloat64()
	}
	return sum
}
