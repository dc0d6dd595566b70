package domain

import "time"

// Transaction is a posted ledger entry against a share.
type Transaction struct {
	ID          string    `json:"id"`
	ShareID     string    `json:"shareId"`
	Amount      int64     `json:"amount"`
	NewBalance  int64     `json:"newBalance"`
	Description string    `json:"description"`
	PostedAt    time.Time `json:"postedAt"`
}

// TransactionFilter selects the transactions of one share.
type TransactionFilter struct {
	ShareID string
}

// TransactionInput is the form posted to create a transaction.
type TransactionInput struct {
	ShareID     string `json:"shareId"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}
