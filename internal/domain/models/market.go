package models

import "time"

// Candle is a daily OHLCV row as stored in ClickHouse.
type Candle struct {
	Day    time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Bar converts a stored candle into an engine bar.
func (c Candle) Bar() OhlcBar {
	o, h, l, cl := c.Open, c.High, c.Low, c.Close
	return OhlcBar{Time: c.Day, Open: &o, High: &h, Low: &l, Close: &cl}
}

// OhlcBar is one sample of an OHLC window. Nil fields are provider gaps.
type OhlcBar struct {
	Time  time.Time `json:"time"`
	Open  *float64  `json:"open,omitempty"`
	High  *float64  `json:"high"`
	Low   *float64  `json:"low"`
	Close *float64  `json:"close"`
}

// Complete reports whether high, low and close are all present.
func (b OhlcBar) Complete() bool {
	return b.High != nil && b.Low != nil && b.Close != nil
}

// Quote is the live price snapshot for a symbol.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	PreviousClose float64   `json:"previous_close"`
	Timestamp     time.Time `json:"timestamp"`
}

// PriceTick is a single trade print from the live stream.
type PriceTick struct {
	Symbol    string
	Price     float64
	Volume    float64
	Timestamp int64 // unix seconds
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
