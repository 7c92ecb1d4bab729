// Package dataset reads and writes the tab-delimited matrices the clustering
// engines work on.
//
// The first line holds the column names (its first field is a free-form
// corner label); every other line is a row name followed by one number per
// column:
//
//	Blog	china	kids	music
//	A	0	2	1
//	B	3	0	0
package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformed is returned when the input does not follow the expected layout.
var ErrMalformed = errors.New("dataset: malformed input")

// maxLineSize bounds a single line; word matrices have very wide rows.
const maxLineSize = 64 * 1024 * 1024

// Dataset is a labeled numeric matrix.
type Dataset struct {
	Corner   string
	RowNames []string
	ColNames []string
	Rows     [][]float64
}

// Read parses a tab-delimited matrix. Blank lines are ignored.
func Read(r io.Reader) (*Dataset, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	ds := &Dataset{}
	lineNo := 0
	headerSeen := false

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")

		if !headerSeen {
			ds.Corner = fields[0]
			ds.ColNames = fields[1:]
			headerSeen = true
			continue
		}

		values := fields[1:]
		if len(values) != len(ds.ColNames) {
			return nil, fmt.Errorf("%w: line %d has %d values, header has %d columns",
				ErrMalformed, lineNo, len(values), len(ds.ColNames))
		}
		row := make([]float64, len(values))
		for j, v := range values {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d, column %q: %v", ErrMalformed, lineNo, ds.ColNames[j], err)
			}
			row[j] = f
		}
		ds.RowNames = append(ds.RowNames, fields[0])
		ds.Rows = append(ds.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if !headerSeen {
		return nil, fmt.Errorf("%w: missing header line", ErrMalformed)
	}
	return ds, nil
}

// Load reads a dataset from a file.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Write serializes ds in the same layout Read accepts.
func Write(w io.Writer, ds *Dataset) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(ds.Corner)
	for _, c := range ds.ColNames {
		bw.WriteByte('\t')
		bw.WriteString(c)
	}
	bw.WriteByte('\n')

	for i, row := range ds.Rows {
		bw.WriteString(ds.RowNames[i])
		for _, v := range row {
			bw.WriteByte('\t')
			bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Rotate returns the transposed dataset: columns become rows. Clustering the
// rotated matrix groups the columns (for a word matrix, the words).
func (ds *Dataset) Rotate() *Dataset {
	out := &Dataset{
		Corner:   ds.Corner,
		RowNames: append([]string(nil), ds.ColNames...),
		ColNames: append([]string(nil), ds.RowNames...),
		Rows:     make([][]float64, len(ds.ColNames)),
	}
	for j := range ds.ColNames {
		row := make([]float64, len(ds.Rows))
		for i := range ds.Rows {
			row[i] = ds.Rows[i][j]
		}
		out.Rows[j] = row
	}
	return out
}
