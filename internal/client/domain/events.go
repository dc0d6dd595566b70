package domain

import "github.com/aussiebroadwan/banksync/pkg/eventbus"

// Event names are "<entity>.<verb>" so unrelated features cannot collide.
var (
	TransactionPosted = eventbus.Create[TransactionPostedEvent]("transaction.posted")
	StockPriceChanged = eventbus.Create[StockPriceChangedEvent]("stock.price_changed")
	StockPurchased    = eventbus.Create[StockPurchasedEvent]("stock.purchased")
)

type TransactionPostedEvent struct {
	TargetShareID string
	NewBalance    int64
	Transaction   Transaction
}

type StockPriceChangedEvent struct {
	StockID string
	Price   int64
}

type StockPurchasedEvent struct {
	Purchase Purchase
}
