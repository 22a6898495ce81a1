package csvfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/claude/healthlens/internal/analysis"
)

// MaxSize is the largest export Parse accepts.
const MaxSize = 10 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads a health CSV export into a table. Comma and semicolon
// delimiters are both accepted; the header line decides which one is used.
// Rows may be ragged, the reconciler reports missing cells per row.
func Parse(r io.Reader) (analysis.Table, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return analysis.Table{}, fmt.Errorf("reading CSV: %w", err)
	}
	if len(data) > MaxSize {
		return analysis.Table{}, fmt.Errorf("CSV exceeds %d bytes", MaxSize)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return analysis.Table{}, errors.New("empty CSV")
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return analysis.Table{}, fmt.Errorf("reading header: %w", err)
	}
	t := analysis.Table{Columns: header}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return analysis.Table{}, fmt.Errorf("reading row: %w", err)
		}
		if blank(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func sniffDelimiter(data []byte) rune {
	first, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Contains(first, []byte(";")) && !bytes.Contains(first, []byte(",")) {
		return ';'
	}
	return ','
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
