package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// The resolver sometimes fuses a trailing price fragment onto the symbol
// ("EICHERMOT539", "UPL71"). The repair pass strips trailing digits from
// the Symbol column of already-written page CSVs, in place. Running it
// again is a no-op.

var trailingDigitsRe = regexp.MustCompile(`\d+$`)

// CleanSymbol strips trailing digits fused onto a ticker symbol.
func CleanSymbol(symbol string) string {
	return trailingDigitsRe.ReplaceAllString(symbol, "")
}

// RepairResult describes the outcome of repairing one page file.
type RepairResult struct {
	Page     int
	Path     string
	Rows     int
	Changed  int
	Suspects []string
}

// RepairAll repairs the Symbol column of every page CSV under outDir.
// Missing page files are skipped. When known is non-nil, repaired symbols
// absent from it are reported as suspects (still written; validation never
// blocks the repair).
func RepairAll(outDir string, totalPages int, known map[string]struct{}) ([]RepairResult, error) {
	var results []RepairResult
	for page := 1; page <= totalPages; page++ {
		path := filepath.Join(outDir, fmt.Sprintf("page%d", page), csvName)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		res, err := RepairFile(path, known)
		if err != nil {
			return results, fmt.Errorf("repairing %s: %w", path, err)
		}
		res.Page = page
		results = append(results, res)
	}
	return results, nil
}

// RepairFile rewrites one CSV in place with cleaned symbols.
func RepairFile(path string, known map[string]struct{}) (RepairResult, error) {
	res := RepairResult{Path: path}

	f, err := os.Open(path)
	if err != nil {
		return res, err
	}
	rows, err := csv.NewReader(f).ReadAll()
	f.Close()
	if err != nil {
		return res, err
	}
	if len(rows) == 0 {
		return res, nil
	}

	symCol := -1
	for i, h := range rows[0] {
		if h == "Symbol" {
			symCol = i
			break
		}
	}
	if symCol < 0 {
		return res, fmt.Errorf("no Symbol column in %s", path)
	}

	for _, row := range rows[1:] {
		if symCol >= len(row) {
			continue
		}
		res.Rows++
		cleaned := CleanSymbol(row[symCol])
		if cleaned != row[symCol] {
			row[symCol] = cleaned
			res.Changed++
		}
		if known != nil {
			if _, ok := known[cleaned]; !ok {
				res.Suspects = append(res.Suspects, cleaned)
			}
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return res, err
	}
	defer out.Close()
	w := csv.NewWriter(out)
	if err := w.WriteAll(rows); err != nil {
		return res, err
	}
	w.Flush()
	return res, w.Error()
}
