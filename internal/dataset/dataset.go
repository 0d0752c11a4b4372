// Package dataset holds the tabular data the agent answers questions about.
// A Dataset is loaded once and never mutated; every operation works on a copy
// of the underlying frame.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// FillValue replaces every missing cell.
const FillValue = "0"

// naValues are the tokens read as missing, matching pandas.read_csv defaults.
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

var (
	ErrEmpty         = errors.New("dataset has no header row")
	ErrRowTooWide    = errors.New("row has more fields than the header")
	ErrUnknownColumn = errors.New("unknown column")
)

type Dataset struct {
	frame dataframe.DataFrame
}

// Load parses CSV with a header row, fills missing cells with zero and
// detects column types.
func Load(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	if len(records) == 1 {
		return &Dataset{frame: emptyFrame(records[0])}, nil
	}

	width := len(records[0])
	for i := 1; i < len(records); i++ {
		if records[i], err = fillMissing(records[i], width); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}

	frame := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
	)
	if frame.Err != nil {
		return nil, fmt.Errorf("load records: %w", frame.Err)
	}
	return &Dataset{frame: frame}, nil
}

// emptyFrame holds the header of a CSV without data rows. Columns with no
// values to detect from are strings.
func emptyFrame(header []string) dataframe.DataFrame {
	columns := make([]series.Series, len(header))
	for i, name := range header {
		columns[i] = series.New([]string{}, series.String, name)
	}
	return dataframe.New(columns...)
}

// fillMissing pads short rows and replaces NA tokens.
func fillMissing(row []string, width int) ([]string, error) {
	if len(row) > width {
		return nil, fmt.Errorf("%w: %d fields, header has %d", ErrRowTooWide, len(row), width)
	}
	out := make([]string, width)
	for i := range out {
		if i >= len(row) {
			out[i] = FillValue
			continue
		}
		if _, na := naValues[strings.TrimSpace(row[i])]; na {
			out[i] = FillValue
			continue
		}
		out[i] = row[i]
	}
	return out, nil
}

// Frame returns a copy of the underlying dataframe.
func (d *Dataset) Frame() dataframe.DataFrame {
	return d.frame.Copy()
}

func (d *Dataset) Names() []string {
	return d.frame.Names()
}

func (d *Dataset) Nrow() int {
	return d.frame.Nrow()
}

func (d *Dataset) Ncol() int {
	return d.frame.Ncol()
}

// Records returns the header followed by every row, as strings.
func (d *Dataset) Records() [][]string {
	return d.frame.Records()
}

// Preview returns the header and the first n rows.
func (d *Dataset) Preview(n int) ([]string, [][]string) {
	records := head(d.frame, n).Records()
	if len(records) == 0 {
		return d.Names(), nil
	}
	return records[0], records[1:]
}

// Head renders the first n rows as a table.
func (d *Dataset) Head(n int) string {
	return renderTable(head(d.frame, n).Records())
}

// Describe lists the shape and the detected column types.
func (d *Dataset) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d rows x %d columns\n", d.Nrow(), d.Ncol())
	types := d.frame.Types()
	for i, name := range d.frame.Names() {
		fmt.Fprintf(&sb, "%s (%s)\n", name, types[i])
	}
	return sb.String()
}

func head(df dataframe.DataFrame, n int) dataframe.DataFrame {
	if n < 0 {
		n = 0
	}
	if n > df.Nrow() {
		n = df.Nrow()
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return df.Subset(idx)
}
