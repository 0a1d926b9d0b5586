package results

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"buffcomply/dashboard/models"
)

// Format is the file format of an export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Labels are the localized cell values for found / not found keywords.
type Labels struct {
	Yes string
	No  string
}

var DefaultLabels = Labels{Yes: "Sí", No: "No"}

// Cell is one exported value. Numeric cells are written unquoted in CSV and as numbers in XLSX.
type Cell struct {
	Text    string
	Number  int
	Numeric bool
}

func textCell(s string) Cell { return Cell{Text: s} }
func numberCell(n int) Cell  { return Cell{Number: n, Numeric: true, Text: strconv.Itoa(n)} }

// Table is the format-independent export payload.
type Table struct {
	Header []string
	Rows   [][]Cell
}

// BuildTable lays out entries for export. Success mode has one column per vocabulary
// keyword plus a per-URL Total; error mode has URL and Error.
func BuildTable(job models.ScrapeJobResult, entries []models.ResultEntry, mode Mode, labels Labels) Table {
	if mode == ModeErrors {
		t := Table{Header: []string{"URL", "Error"}}
		for _, entry := range entries {
			if !entry.IsError() {
				continue
			}
			t.Rows = append(t.Rows, []Cell{textCell(entry.URL), textCell(entry.Message)})
		}
		return t
	}

	vocab := job.Vocabulary()
	header := make([]string, 0, len(vocab)+2)
	header = append(header, "URL")
	header = append(header, vocab...)
	header = append(header, "Total")

	t := Table{Header: header}
	for _, entry := range entries {
		if entry.IsError() {
			continue
		}
		row := make([]Cell, 0, len(header))
		row = append(row, textCell(entry.URL))
		for _, kw := range vocab {
			if entry.Found(kw) {
				row = append(row, textCell(labels.Yes))
			} else {
				row = append(row, textCell(labels.No))
			}
		}
		row = append(row, numberCell(entry.MatchCount()))
		t.Rows = append(t.Rows, row)
	}
	return t
}

// WriteCSV writes t as comma-separated text with "\n" between rows and no trailing
// newline. Data text cells are always quoted; header cells only when they need it.
func WriteCSV(w io.Writer, t Table) error {
	bw := bufio.NewWriter(w)

	for i, h := range t.Header {
		if i > 0 {
			bw.WriteByte(',')
		}
		if needsQuotes(h) {
			bw.WriteString(quote(h))
		} else {
			bw.WriteString(h)
		}
	}

	for _, row := range t.Rows {
		bw.WriteByte('\n')
		for i, cell := range row {
			if i > 0 {
				bw.WriteByte(',')
			}
			if cell.Numeric {
				bw.WriteString(strconv.Itoa(cell.Number))
			} else {
				bw.WriteString(quote(cell.Text))
			}
		}
	}

	return bw.Flush()
}

func needsQuotes(s string) bool {
	return s == "" || strings.ContainsAny(s, ",\"\r\n") || strings.TrimSpace(s) != s
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteXLSX writes t as a single-sheet workbook.
func WriteXLSX(w io.Writer, t Table, sheet string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for col, h := range t.Header {
		ref, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, ref, h); err != nil {
			return fmt.Errorf("write header %s: %w", ref, err)
		}
	}

	for r, row := range t.Rows {
		for col, cell := range row {
			ref, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			var value interface{} = cell.Text
			if cell.Numeric {
				value = cell.Number
			}
			if err := f.SetCellValue(sheet, ref, value); err != nil {
				return fmt.Errorf("write cell %s: %w", ref, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Write renders t in the requested format.
func Write(w io.Writer, t Table, mode Mode, format Format) error {
	if format == FormatXLSX {
		return WriteXLSX(w, t, sheetName(mode))
	}
	return WriteCSV(w, t)
}

func sheetName(mode Mode) string {
	if mode == ModeErrors {
		return "Errores"
	}
	return "Resultados"
}

// Filename names the download after the job title and mode,
// e.g. "T-resultados.csv" or "T-errores.xlsx".
func Filename(title string, mode Mode, format Format) string {
	suffix := "resultados"
	if mode == ModeErrors {
		suffix = "errores"
	}
	return fmt.Sprintf("%s-%s.%s", sanitizeFilename(title), suffix, format)
}

// FilenameWithID is Filename with the job id added, for jobs that share a title.
func FilenameWithID(title, jobID string, mode Mode, format Format) string {
	return Filename(title+"-"+jobID, mode, format)
}

func sanitizeFilename(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f:
			return -1
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if cleaned == "" {
		return "export"
	}
	return cleaned
}
