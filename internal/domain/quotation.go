package domain

import "time"

// Source records which extraction path produced a quotation.
type Source string

const (
	SourceWebpage Source = "webpage" // primary structured page
	SourcePDF     Source = "pdf"     // per-day document fallback
	SourceManual  Source = "manual"  // operator back-entry
)

// ExchangeQuotation is one day's official bid/ask/mid for the tracked pair.
// Unique per RateDate; a later capture for the same date replaces an earlier
// one.
type ExchangeQuotation struct {
	RateDate time.Time
	Pair     CurrencyPair
	Bid      float64
	Ask      float64
	Mid      float64
	Source   Source
}

// GoldQuotation is one day's gold coin price set. Prices are per one-ounce
// coin; any subset of currencies may be present. The digital token pair is
// quoted for the 0.01oz token and is either both present or both absent.
type GoldQuotation struct {
	RateDate time.Time
	USD      *float64
	ZWG      *float64
	ZAR      *float64
	GBP      *float64
	EUR      *float64
	BWP      *float64
	AUD      *float64
	PMFix    *float64

	DigitalTokenUSD *float64
	DigitalTokenZWG *float64

	Source    Source
	SourceURL string
}

// Empty reports whether no price at all was extracted.
func (g GoldQuotation) Empty() bool {
	for _, p := range []*float64{g.USD, g.ZWG, g.ZAR, g.GBP, g.EUR, g.BWP, g.AUD, g.PMFix, g.DigitalTokenUSD, g.DigitalTokenZWG} {
		if p != nil {
			return false
		}
	}
	return true
}

// HasTokenPair reports whether both digital token prices are present, the
// precondition for deriving the token ratio.
func (g GoldQuotation) HasTokenPair() bool {
	return g.DigitalTokenUSD != nil && g.DigitalTokenZWG != nil
}

// Float returns a pointer to v, for building quotations literally.
func Float(v float64) *float64 { return &v }
