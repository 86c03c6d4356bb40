package scrape

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/garikaib/rates-scrapper/internal/domain"
)

const digitalTokenLabel = "DIGITAL TOKEN PRICE"

var (
	exchangeDateRe = regexp.MustCompile(`(?i)EXCHANGE\s+RATES?\s*(\d{2}[-/]\d{2}[-/]\d{4})`)
	goldDateRe     = regexp.MustCompile(`(?i)GOLD\s+COIN\s+PRICE.*?(\d{2}[-/]\d{2}[-/]\d{4})`)
	dayMonthYearRe = regexp.MustCompile(`(\d{2})[-/](\d{2})[-/](\d{4})`)
	nonNumericRe   = regexp.MustCompile(`[^\d.]`)
)

// parseNumber parses a cell after stripping thousands separators. Anything
// else in the cell fails the parse.
func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parsePrice parses a cell that may carry a currency marker or other
// decoration around the number, e.g. "ZWG 121,519.17" or "USD0.1279".
func parsePrice(s string) (float64, bool) {
	cleaned := nonNumericRe.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func calendarDate(year int, month time.Month, day int) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// parseDayMonthYear parses a dd-mm-yyyy or dd/mm/yyyy token. Tokens that do
// not name a real calendar date are rejected.
func parseDayMonthYear(s string) (time.Time, bool) {
	m := dayMonthYearRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	return calendarDate(year, time.Month(month), day)
}

// matchPairRow matches the interbank row for the tracked pair: the first
// cell names both legs, the next three cells parse as bid/ask/mid.
func matchPairRow(cells []string) (bid, ask, mid float64, ok bool) {
	if len(cells) < 4 {
		return 0, 0, 0, false
	}
	if !strings.Contains(cells[0], "USD") || !strings.Contains(cells[0], "ZWG") {
		return 0, 0, 0, false
	}
	bid, ok1 := parseNumber(cells[1])
	ask, ok2 := parseNumber(cells[2])
	mid, ok3 := parseNumber(cells[3])
	if !ok1 || !ok2 || !ok3 {
		return 0, 0, 0, false
	}
	return bid, ask, mid, true
}

// matchTokenRow matches the digital token row on the gold table. The
// remaining cells are scanned for an embedded currency marker; the numeric
// remainder becomes that side's price. Later cells override earlier ones.
func matchTokenRow(cells []string) (usd, zwg *float64, ok bool) {
	if len(cells) < 2 {
		return nil, nil, false
	}
	if !strings.Contains(strings.ToUpper(strings.TrimSpace(cells[0])), digitalTokenLabel) {
		return nil, nil, false
	}
	for _, cell := range cells[1:] {
		c := strings.ToUpper(strings.TrimSpace(cell))
		switch {
		case strings.Contains(c, "USD"):
			if v, pok := parsePrice(c); pok {
				usd = domain.Float(v)
			}
		case strings.Contains(c, "ZIG"), strings.Contains(c, "ZWG"):
			if v, pok := parsePrice(c); pok {
				zwg = domain.Float(v)
			}
		}
	}
	return usd, zwg, true
}

// matchCurrencyRow matches a standard gold price row: the first cell is a
// tracked currency code, the price sits in the third cell when the table
// carries a middle column and in the second otherwise.
func matchCurrencyRow(cells []string) (code string, price float64, ok bool) {
	if len(cells) < 2 {
		return "", 0, false
	}
	code = strings.TrimSpace(cells[0])
	if !domain.GoldCurrencies[code] {
		return "", 0, false
	}
	raw := cells[1]
	if len(cells) >= 3 {
		raw = cells[2]
	}
	price, ok = parsePrice(raw)
	if !ok {
		return "", 0, false
	}
	return code, price, true
}

// goldField maps a currency code to its destination on the quotation.
func goldField(q *domain.GoldQuotation, code string) **float64 {
	switch code {
	case "USD":
		return &q.USD
	case "ZWG":
		return &q.ZWG
	case "ZAR":
		return &q.ZAR
	case "GBP":
		return &q.GBP
	case "EUR":
		return &q.EUR
	}
	return nil
}

// ParseExchangeHTML extracts the tracked pair's quotation from a page
// snapshot. The first row whose shape matches wins; the layout guarantees at
// most one such row, so this is a tie-break, not an error. Returns nil when
// no row matches. A missing or malformed heading date leaves RateDate zero.
func ParseExchangeHTML(html string) *domain.ExchangeQuotation {
	q := &domain.ExchangeQuotation{Pair: domain.PairUSDZWG, Source: domain.SourceWebpage}
	if m := exchangeDateRe.FindStringSubmatch(html); m != nil {
		if d, ok := parseDayMonthYear(m[1]); ok {
			q.RateDate = d
		}
	}
	for _, cells := range tableRows(html) {
		bid, ask, mid, ok := matchPairRow(cells)
		if !ok {
			continue
		}
		q.Bid, q.Ask, q.Mid = bid, ask, mid
		return q
	}
	return nil
}

// ParseGoldHTML extracts the gold coin quotation from a page snapshot.
// Rows run through the matchers in priority order: token row first, then
// standard currency rows (first assignment per currency wins). Unmatched
// rows are skipped silently. A digital token price without its counterpart
// is dropped so the pair is always both present or both absent. Returns nil
// when no price at all was found.
func ParseGoldHTML(html string) *domain.GoldQuotation {
	q := &domain.GoldQuotation{Source: domain.SourceWebpage}
	if m := goldDateRe.FindStringSubmatch(html); m != nil {
		if d, ok := parseDayMonthYear(m[1]); ok {
			q.RateDate = d
		}
	}
	for _, cells := range tableRows(html) {
		if usd, zwg, ok := matchTokenRow(cells); ok {
			if usd != nil {
				q.DigitalTokenUSD = usd
			}
			if zwg != nil {
				q.DigitalTokenZWG = zwg
			}
			continue
		}
		if code, price, ok := matchCurrencyRow(cells); ok {
			if f := goldField(q, code); f != nil && *f == nil {
				*f = domain.Float(price)
			}
		}
	}
	if !q.HasTokenPair() {
		q.DigitalTokenUSD, q.DigitalTokenZWG = nil, nil
	}
	if q.Empty() {
		return nil
	}
	return q
}
