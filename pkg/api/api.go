// Package api defines the core data structures shared across the module.
package api

// Transaction holds one parsed purchase notification. All four fields keep
// the text exactly as extracted from the email; no currency or date parsing
// is performed.
type Transaction struct {
	Card     string `json:"card"`
	Merchant string `json:"merchant"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
}

// NewTransaction builds a Transaction from the four extracted values.
func NewTransaction(card, merchant, amount, date string) Transaction {
	return Transaction{
		Card:     card,
		Merchant: merchant,
		Amount:   amount,
		Date:     date,
	}
}

// Row converts the transaction to a spreadsheet row in the fixed column
// order {card, merchant, amount, date}.
func (t Transaction) Row() []any {
	return []any{t.Card, t.Merchant, t.Amount, t.Date}
}
