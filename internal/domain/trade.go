package domain

import "time"

// AggTrade is one aggregated trade from the public market-data feed.
type AggTrade struct {
	AggregateID  int64     `json:"aggregateId"`
	Price        string    `json:"price"`
	Quantity     string    `json:"quantity"`
	FirstTradeID int64     `json:"firstTradeId"`
	LastTradeID  int64     `json:"lastTradeId"`
	Timestamp    time.Time `json:"timestamp"`
	SellerMaker  bool      `json:"isSellerMaker"`
}

// PriceUpdate is the event broadcast to console clients when a symbol's
// latest trade price changes.
type PriceUpdate struct {
	Symbol    string    `json:"symbol"`
	Price     string    `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}
