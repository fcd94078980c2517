package models

// Profit is a realized trade: one matched buy/sell pair. The record ids point
// at investment rows deleted by the match transaction, kept for lineage only.
// Immutable once created.
type Profit struct {
	ID            string  `gorm:"column:id;primaryKey" json:"id"`
	BuyDate       string  `gorm:"column:buyDate;not null" json:"buyDate"`
	SellDate      string  `gorm:"column:sellDate;not null;index" json:"sellDate"`
	BuyRecordID   string  `gorm:"column:buyRecordId;not null" json:"buyRecordId"`
	SellRecordID  string  `gorm:"column:sellRecordId;not null" json:"sellRecordId"`
	ForeignAmount float64 `gorm:"column:foreignAmount;not null" json:"foreignAmount"`
	BuyRate       float64 `gorm:"column:buyRate;not null" json:"buyRate"`
	SellRate      float64 `gorm:"column:sellRate;not null" json:"sellRate"`
	BuyWonAmount  float64 `gorm:"column:buyWonAmount;not null" json:"buyWonAmount"`
	SellWonAmount float64 `gorm:"column:sellWonAmount;not null" json:"sellWonAmount"`
	Profit        float64 `gorm:"column:profit;not null" json:"profit"`
	ProfitRate    float64 `gorm:"column:profitRate;not null" json:"profitRate"`
	CreatedAt     string  `gorm:"column:createdAt" json:"createdAt"`
}

func (Profit) TableName() string {
	return "profits"
}
