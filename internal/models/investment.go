package models

// Transaction type literals as they appear in ingested records. The ledger
// stores them verbatim; matching keys off these exact strings.
const (
	TypeBuy  = "USD 사기"
	TypeSell = "USD 팔기"
)

// Provenance tags for ingested records.
const (
	SourcePhoto  = "photo"
	SourceManual = "manual"
)

// Investment is a standing ledger row: a buy or sell that has not yet been
// consumed by a match. Date is the economic calendar date (YYYY-MM-DD),
// compared lexicographically; CreatedAt is the UTC ingestion timestamp.
type Investment struct {
	ID            string  `gorm:"column:id;primaryKey" json:"id"`
	Date          string  `gorm:"column:date;not null;index" json:"date"`
	Type          string  `gorm:"column:type;not null" json:"type"`
	ForeignAmount float64 `gorm:"column:foreignAmount;not null" json:"foreignAmount"`
	ExchangeRate  float64 `gorm:"column:exchangeRate;not null" json:"exchangeRate"`
	WonAmount     float64 `gorm:"column:wonAmount;not null" json:"wonAmount"`
	Source        string  `gorm:"column:source;not null" json:"source"`
	CreatedAt     string  `gorm:"column:createdAt" json:"createdAt"`
}

func (Investment) TableName() string {
	return "investments"
}
