package driver

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseTableRows extracts the cell texts of every table row with data
// cells from an HTML snapshot. Rows without td cells (header rows using
// th) are dropped here; content-level header rows are the row decoder's
// problem.
func ParseTableRows(html string) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
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
	return rows, nil
}
