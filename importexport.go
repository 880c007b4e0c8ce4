package raffle

import (
	"fmt"
	"strconv"
	"strings"
)

// Column headers recognized by ImportPrizeRows, matched case-insensitively.
const (
	colName        = "name"
	colProbability = "probability"
	colQuantity    = "quantity"
	colDisplayText = "displaytext"
	colImage       = "image"
	colDisplayMode = "displaymode"
	colTextColor   = "textcolor"
	colBackground  = "backgroundcolor"
)

// ImportPrizeRows parses a header-plus-rows table into prizes. The first row
// is a header; name, probability and quantity columns are mandatory. Numeric
// fields must parse cleanly, malformed input is rejected rather than coerced.
// Each imported prize gets a fresh ID.
func ImportPrizeRows(rows [][]string) ([]Prize, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrImportFormat)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colName, colProbability, colQuantity} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrImportFormat, required)
		}
	}

	cell := func(row []string, col string) string {
		idx, ok := cols[col]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	prizes := make([]Prize, 0, len(rows)-1)
	for n, row := range rows[1:] {
		name := cell(row, colName)
		if name == "" {
			return nil, fmt.Errorf("%w: row %d: empty name", ErrImportFormat, n+2)
		}
		prob, err := strconv.ParseFloat(cell(row, colProbability), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: bad probability %q", ErrImportFormat, n+2, cell(row, colProbability))
		}
		qty, err := strconv.Atoi(cell(row, colQuantity))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: bad quantity %q", ErrImportFormat, n+2, cell(row, colQuantity))
		}

		p := Prize{
			ID:          NewPrizeID(),
			Name:        name,
			DisplayText: cell(row, colDisplayText),
			Probability: prob,
			Quantity:    qty,
			Image:       cell(row, colImage),
			DisplayMode: DisplayMode(cell(row, colDisplayMode)).orDefault(),
			Style: Style{
				TextColor:       cell(row, colTextColor),
				BackgroundColor: cell(row, colBackground),
			},
		}
		if p.Style.TextColor == "" {
			p.Style.TextColor = DefaultTextColor
		}
		if p.Style.BackgroundColor == "" {
			p.Style.BackgroundColor = DefaultBackgroundColor
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrImportFormat, n+2, err)
		}
		prizes = append(prizes, p)
	}
	return prizes, nil
}

// ExportPrizeRows renders prizes as a header-plus-rows table that
// ImportPrizeRows accepts back.
func ExportPrizeRows(prizes []Prize) [][]string {
	rows := make([][]string, 0, len(prizes)+1)
	rows = append(rows, []string{
		"Name", "Probability", "Quantity", "DisplayText", "Image",
		"DisplayMode", "TextColor", "BackgroundColor",
	})
	for _, p := range prizes {
		rows = append(rows, []string{
			p.Name,
			strconv.FormatFloat(p.Probability, 'f', -1, 64),
			strconv.Itoa(p.Quantity),
			p.DisplayText,
			p.Image,
			string(p.DisplayMode),
			p.Style.TextColor,
			p.Style.BackgroundColor,
		})
	}
	return rows
}

// ExportHistoryRows renders history entries as a table, skipping batch
// separators. Timestamps use RFC 3339.
func ExportHistoryRows(entries []HistoryEntry) [][]string {
	rows := make([][]string, 0, len(entries)+1)
	rows = append(rows, []string{"Actor", "Prize", "Probability", "DrawnAt"})
	for _, e := range entries {
		if e.Separator {
			continue
		}
		rows = append(rows, []string{
			e.Actor,
			e.DisplayLabel(),
			strconv.FormatFloat(e.Probability, 'f', -1, 64),
			e.DrawnAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return rows
}
