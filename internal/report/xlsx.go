package report

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	widthPadding = 2
	maxColWidth  = 50
)

// WriteXLSX renders s as a single-worksheet workbook: bold header row frozen
// in place, an autofilter over the populated range, and columns sized to
// their longest value.
func WriteXLSX(w io.Writer, s Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	name := s.Title
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return fmt.Errorf("naming sheet %q: %w", name, err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	widths := make([]int, len(s.Headers))
	for c, h := range s.Headers {
		if err := f.SetCellStr(name, cellName(c+1, 1), h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		widths[c] = utf8.RuneCountInString(h)
	}
	lastCol := columnName(len(s.Headers))
	if err := f.SetCellStyle(name, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for r, row := range s.Rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell := cellName(c+1, r+2)
			if err := f.SetCellValue(name, cell, v); err != nil {
				slog.Warn("skipping unwritable cell", "sheet", name, "cell", cell, "error", err)
				continue
			}
			text, ok := cellText(v)
			if !ok || c >= len(widths) {
				continue
			}
			widths[c] = max(widths[c], utf8.RuneCountInString(text))
		}
	}

	if err := f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	ref := "A1:" + lastCol + strconv.Itoa(len(s.Rows)+1)
	if err := f.AutoFilter(name, ref, nil); err != nil {
		return fmt.Errorf("adding autofilter: %w", err)
	}

	for c, width := range widths {
		col := columnName(c + 1)
		if err := f.SetColWidth(name, col, col, float64(min(width+widthPadding, maxColWidth))); err != nil {
			return fmt.Errorf("sizing column %s: %w", col, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// cellText is the text a value displays as, for width measurement. Values of
// other types are written but not measured.
func cellText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case time.Time:
		return t.Format(time.DateTime), true
	default:
		return "", false
	}
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func columnName(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}
