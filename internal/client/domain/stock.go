package domain

import "time"

// Stock is a tradable instrument. Price in cents, Held in units.
type Stock struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Price  int64  `json:"price"`
	Held   int64  `json:"held"`
}

// PricePoint is one sample of a stock's price history.
type PricePoint struct {
	At    time.Time `json:"at"`
	Price int64     `json:"price"`
}

// Purchase is a completed stock purchase paid from a share.
type Purchase struct {
	ID          string    `json:"id"`
	StockID     string    `json:"stockId"`
	ShareID     string    `json:"shareId"`
	Quantity    int64     `json:"quantity"`
	Total       int64     `json:"total"`
	NewBalance  int64     `json:"newBalance"` // of the paying share
	Held        int64     `json:"held"`       // units held after the purchase
	PurchasedAt time.Time `json:"purchasedAt"`
}

// PurchaseInput is the form posted to buy a stock.
type PurchaseInput struct {
	StockID  string `json:"stockId"`
	ShareID  string `json:"shareId"`
	Quantity int64  `json:"quantity"`
}

// StockFilter narrows the stocks listing.
type StockFilter struct {
	HeldOnly bool
}

// PurchaseFilter narrows the purchases listing. An empty ShareID lists the
// purchases of every share.
type PurchaseFilter struct {
	ShareID string
}
