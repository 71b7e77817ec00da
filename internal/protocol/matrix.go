package protocol

import (
	"strconv"
	"strings"
)

// DefaultCurveCols is the column count of curve point tables (x, y).
const DefaultCurveCols = 2

// Matrix is a dense numeric table in row order. Cols stays meaningful
// even when the table has no rows.
type Matrix struct {
	Cols int
	Rows [][]float64
}

// ExtractMatrix parses a numeric table response. Each record carries a
// leading row index followed by exactly cols numeric fields. The
// no-data sentinel yields a zero-row matrix, not an error.
func ExtractMatrix(records []Record, cols int) (Matrix, error) {
	if cols <= 0 {
		cols = DefaultCurveCols
	}
	if NoData(records) {
		return Matrix{Cols: cols}, nil
	}
	rows := make([][]float64, 0, len(records))
	for i, rec := range records {
		if len(rec) != cols+1 {
			return Matrix{}, MalformedRowError{Row: i + 1, Fields: len(rec), Want: cols + 1}
		}
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			f, err := strconv.ParseFloat(strings.TrimSpace(rec[j+1]), 64)
			if err != nil {
				return Matrix{}, DecodeError{
					Name: "row " + strconv.Itoa(i+1),
					Kind: KindReal,
					Raw:  rec[j+1],
					Err:  err,
				}
			}
			row[j] = f
		}
		rows = append(rows, row)
	}
	return Matrix{Cols: cols, Rows: rows}, nil
}
