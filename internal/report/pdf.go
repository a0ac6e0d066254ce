package report

import (
	"fmt"
	"io"

	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	pdfMargin    = 20.0
	pdfRowHeight = 11.0
	pdfFontSize  = 6
	pdfTitleSize = 11
)

// WritePDF renders s as a landscape A4 table, repeating the header row on
// every page. Text wider than its column is cut with "...".
func WritePDF(w io.Writer, s Sheet) error {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4Landscape})
	pdf.SetInfo(gopdf.PdfInfo{Title: s.Kind + " " + s.Title, Creator: "scanledger"})

	if err := pdf.AddTTFFontData("regular", goregular.TTF); err != nil {
		return fmt.Errorf("loading regular font: %w", err)
	}
	if err := pdf.AddTTFFontData("bold", gobold.TTF); err != nil {
		return fmt.Errorf("loading bold font: %w", err)
	}

	pageW, pageH := gopdf.PageSizeA4Landscape.W, gopdf.PageSizeA4Landscape.H
	cols := max(len(s.Headers), 1)
	colW := (pageW - 2*pdfMargin) / float64(cols)

	t := &pdfTable{pdf: pdf, colW: colW}

	newPage := func() error {
		pdf.AddPage()
		y := pdfMargin
		if err := pdf.SetFont("bold", "", pdfTitleSize); err != nil {
			return err
		}
		pdf.SetXY(pdfMargin, y)
		if err := pdf.Cell(nil, s.Kind+": "+s.Title); err != nil {
			return err
		}
		t.y = y + 2*pdfRowHeight
		if err := pdf.SetFont("bold", "", pdfFontSize); err != nil {
			return err
		}
		if err := t.row(headerCells(s.Headers)); err != nil {
			return err
		}
		pdf.Line(pdfMargin, t.y, pageW-pdfMargin, t.y)
		return pdf.SetFont("regular", "", pdfFontSize)
	}

	if err := newPage(); err != nil {
		return fmt.Errorf("starting page: %w", err)
	}
	for _, row := range s.Rows {
		if t.y+pdfRowHeight > pageH-pdfMargin {
			if err := newPage(); err != nil {
				return fmt.Errorf("starting page: %w", err)
			}
		}
		if err := t.row(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	if _, err := pdf.WriteTo(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

type pdfTable struct {
	pdf  *gopdf.GoPdf
	colW float64
	y    float64
}

func (t *pdfTable) row(cells []any) error {
	for c, v := range cells {
		text := pdfText(v)
		if text == "" {
			continue
		}
		fitted, err := fit(t.pdf, text, t.colW-2)
		if err != nil {
			return err
		}
		t.pdf.SetXY(pdfMargin+float64(c)*t.colW, t.y)
		if err := t.pdf.Cell(&gopdf.Rect{W: t.colW, H: pdfRowHeight}, fitted); err != nil {
			return err
		}
	}
	t.y += pdfRowHeight
	return nil
}

func headerCells(headers []string) []any {
	out := make([]any, len(headers))
	for i, h := range headers {
		out[i] = h
	}
	return out
}

func pdfText(v any) string {
	if v == nil {
		return ""
	}
	if text, ok := cellText(v); ok {
		return text
	}
	return fmt.Sprint(v)
}

// fit shortens text until it fits in width points.
func fit(pdf *gopdf.GoPdf, text string, width float64) (string, error) {
	w, err := pdf.MeasureTextWidth(text)
	if err != nil {
		return "", err
	}
	if w <= width {
		return text, nil
	}
	runes := []rune(text)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := string(runes[:n]) + "..."
		w, err := pdf.MeasureTextWidth(candidate)
		if err != nil {
			return "", err
		}
		if w <= width {
			return candidate, nil
		}
	}
	return "", nil
}

