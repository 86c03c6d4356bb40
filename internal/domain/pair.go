package domain

// CurrencyPair identifies a quoted currency pair, e.g. "USD/ZWG".
type CurrencyPair string

// PairUSDZWG is the only pair on the publisher's interbank table that this
// pipeline tracks.
const PairUSDZWG CurrencyPair = "USD/ZWG"

// GoldCurrencies is the fixed set of currencies the publisher quotes gold
// coin prices in, keyed by the upper-case code printed in the first table
// cell.
var GoldCurrencies = map[string]bool{
	"USD": true,
	"ZWG": true,
	"ZAR": true,
	"GBP": true,
	"EUR": true,
}
