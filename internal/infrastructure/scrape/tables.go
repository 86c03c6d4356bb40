package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// tableRows flattens every table row in the snapshot into its cell texts,
// in document order. Rows without data cells are dropped.
func tableRows(html string) [][]string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	var rows [][]string
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return rows
}
