package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Format is a download format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ErrUnsupportedFormat is returned by ParseFormat and Write.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat accepts csv, xlsx (or excel) and pdf, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", errors.Wrapf(ErrUnsupportedFormat, "%q", s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

func (f Format) Ext() string { return string(f) }

// Table is a titled grid of text cells with an optional key/value summary.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Summary []KV
}

type KV struct {
	Key   string
	Value string
}

// Write renders t in format f.
func Write(w io.Writer, f Format, t Table) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	case FormatPDF:
		return WritePDF(w, t)
	}
	return ErrUnsupportedFormat
}

// WriteCSV writes a UTF-8 BOM (so Excel detects the encoding), the header row
// and the data rows. The summary is not part of the CSV.
func WriteCSV(w io.Writer, t Table) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return errors.Wrap(err, "write bom")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return errors.Wrap(err, "write csv rows")
	}
	return nil
}

const (
	dataSheet    = "Report"
	summarySheet = "Summary"
)

// WriteXLSX writes the rows to a "Report" sheet and the summary, if any, to a
// "Summary" sheet.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return errors.Wrap(err, "rename sheet")
	}
	for i, h := range t.Headers {
		if err := f.SetCellValue(dataSheet, cellName(i, 1), h); err != nil {
			return errors.Wrap(err, "set header")
		}
	}
	for r, row := range t.Rows {
		for i, v := range row {
			if err := f.SetCellValue(dataSheet, cellName(i, r+2), v); err != nil {
				return errors.Wrap(err, "set cell")
			}
		}
	}
	if len(t.Headers) > 0 {
		last, _ := excelize.ColumnNumberToName(len(t.Headers))
		_ = f.SetColWidth(dataSheet, "A", last, 18)
	}

	if len(t.Summary) > 0 {
		if _, err := f.NewSheet(summarySheet); err != nil {
			return errors.Wrap(err, "create summary sheet")
		}
		for i, kv := range t.Summary {
			_ = f.SetCellValue(summarySheet, cellName(0, i+1), kv.Key)
			_ = f.SetCellValue(summarySheet, cellName(1, i+1), kv.Value)
		}
		_ = f.SetColWidth(summarySheet, "A", "B", 22)
	}

	return errors.Wrap(f.Write(w), "write xlsx")
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}

// WritePDF renders an A4 page (landscape when the table is wide) with the
// title, the summary lines and the bordered table.
func WritePDF(w io.Writer, t Table) error {
	orientation := "P"
	if len(t.Headers) > 5 {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, t.Title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if len(t.Summary) > 0 {
		pdf.SetFont("Arial", "", 11)
		for _, kv := range t.Summary {
			pdf.CellFormat(0, 7, fmt.Sprintf("%s: %s", kv.Key, kv.Value), "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	if len(t.Headers) > 0 {
		pageW, _ := pdf.GetPageSize()
		left, _, right, _ := pdf.GetMargins()
		colW := (pageW - left - right) / float64(len(t.Headers))

		pdf.SetFont("Arial", "B", 10)
		for _, h := range t.Headers {
			pdf.CellFormat(colW, 8, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 10)
		for _, row := range t.Rows {
			for i := range t.Headers {
				v := ""
				if i < len(row) {
					v = row[i]
				}
				pdf.CellFormat(colW, 8, v, "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "write pdf")
	}
	return nil
}
