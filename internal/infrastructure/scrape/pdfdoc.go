package scrape

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/garikaib/rates-scrapper/internal/domain"

	"github.com/ledongthuc/pdf"
)

// documentCurrencies is the subset quoted in the per-day price document.
var documentCurrencies = map[string]bool{"USD": true, "ZAR": true, "ZWG": true}

var documentDateRe = regexp.MustCompile(`(?i)(\d{1,2})\s*(JANUARY|FEBRUARY|MARCH|APRIL|MAY|JUNE|JULY|AUGUST|SEPTEMBER|OCTOBER|NOVEMBER|DECEMBER)\s*(\d{4})`)

var monthsByName = map[string]time.Month{
	"JANUARY": time.January, "FEBRUARY": time.February, "MARCH": time.March,
	"APRIL": time.April, "MAY": time.May, "JUNE": time.June,
	"JULY": time.July, "AUGUST": time.August, "SEPTEMBER": time.September,
	"OCTOBER": time.October, "NOVEMBER": time.November, "DECEMBER": time.December,
}

// cellGap is the horizontal distance, in points, beyond which two text runs
// on the same baseline belong to different table cells.
const cellGap = 12.0

// GoldDocumentURL builds the deterministic location of the per-day gold
// price document, e.g.
// .../Mosi-Rates/2025/December/MOSI_OA_TUNYA_PRICES_9_DECEMBER_2025.pdf.
func GoldDocumentURL(base string, day time.Time) string {
	month := day.Month().String()
	return fmt.Sprintf("%s/Mosi-Rates/%d/%s/MOSI_OA_TUNYA_PRICES_%d_%s_%d.pdf",
		strings.TrimRight(base, "/"), day.Year(), month, day.Day(), strings.ToUpper(month), day.Year())
}

// documentLines flattens the page's text runs into one string per table
// cell: runs sharing a baseline split where the horizontal gap exceeds
// cellGap, cells ordered top-to-bottom then left-to-right. The reader
// panics on malformed content streams, so this recovers into an error.
func documentLines(page pdf.Page) (lines []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed document: %v", r)
		}
	}()
	texts := page.Content().Text
	byBaseline := map[int][]pdf.Text{}
	var baselines []int
	for _, t := range texts {
		y := int(math.Round(t.Y))
		if _, ok := byBaseline[y]; !ok {
			baselines = append(baselines, y)
		}
		byBaseline[y] = append(byBaseline[y], t)
	}
	// Page coordinates grow upward, so the top line has the largest Y.
	sort.Sort(sort.Reverse(sort.IntSlice(baselines)))
	for _, y := range baselines {
		runs := byBaseline[y]
		sort.SliceStable(runs, func(i, j int) bool { return runs[i].X < runs[j].X })
		var cell strings.Builder
		end := math.Inf(-1)
		for _, r := range runs {
			if cell.Len() > 0 && r.X-end > cellGap {
				lines = append(lines, strings.TrimSpace(cell.String()))
				cell.Reset()
			}
			cell.WriteString(r.S)
			end = r.X + r.W
		}
		if cell.Len() > 0 {
			lines = append(lines, strings.TrimSpace(cell.String()))
		}
	}
	return lines, nil
}

// ParseDocumentLines extracts a gold quotation from the document's cell
// lines: each tracked currency label is followed within four lines by its
// price. The document never quotes digital token prices. Returns nil unless
// at least one price was found.
func ParseDocumentLines(lines []string) *domain.GoldQuotation {
	q := &domain.GoldQuotation{Source: domain.SourcePDF}
	if m := documentDateRe.FindStringSubmatch(strings.Join(lines, "\n")); m != nil {
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		if d, ok := calendarDate(year, monthsByName[strings.ToUpper(m[2])], day); ok {
			q.RateDate = d
		}
	}
	found := false
	for i, line := range lines {
		code := strings.TrimSpace(line)
		if !documentCurrencies[code] {
			continue
		}
		for j := i + 1; j <= i+4 && j < len(lines); j++ {
			if v, ok := parseNumber(lines[j]); ok {
				*goldField(q, code) = domain.Float(v)
				found = true
				break
			}
		}
	}
	if !found {
		return nil
	}
	return q
}

// ParseGoldDocument verifies the document signature and extracts the gold
// quotation from its first page.
func ParseGoldDocument(data []byte) (*domain.GoldQuotation, error) {
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, errors.New("not a price document")
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	if r.NumPage() < 1 {
		return nil, errors.New("document has no pages")
	}
	lines, err := documentLines(r.Page(1))
	if err != nil {
		return nil, err
	}
	return ParseDocumentLines(lines), nil
}
