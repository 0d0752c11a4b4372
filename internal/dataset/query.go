package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

const (
	defaultHeadRows   = 5
	defaultUniqueRows = 50
	maxRows           = 100
)

var (
	ErrBadQuery   = errors.New("invalid query")
	ErrUnknownOp  = errors.New("unknown op")
	ErrNotNumeric = errors.New("column is not numeric")
)

// Condition keeps the rows where Column Cmp Value holds.
type Condition struct {
	Column string `json:"column"`
	Cmp    string `json:"cmp"`
	Value  any    `json:"value"`
}

// Query is a single read-only operation over the dataset. Where conditions
// are ANDed and applied before the operation.
type Query struct {
	Op      string      `json:"op"`
	Column  string      `json:"column,omitempty"`
	Columns []string    `json:"columns,omitempty"`
	By      []string    `json:"by,omitempty"`
	Func    string      `json:"func,omitempty"`
	Where   []Condition `json:"where,omitempty"`
	Sort    string      `json:"sort,omitempty"`
	Limit   int         `json:"limit,omitempty"`
}

var jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)

// ParseQuery extracts the first JSON object from model output, tolerating
// markdown fences and surrounding prose.
func ParseQuery(input string) (Query, error) {
	var q Query
	raw := jsonObject.FindString(strings.TrimSpace(input))
	if raw == "" {
		return q, fmt.Errorf("%w: expected a JSON object, got %q", ErrBadQuery, input)
	}
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return q, fmt.Errorf("%w: %v", ErrBadQuery, err)
	}
	if q.Op == "" {
		return q, fmt.Errorf("%w: missing \"op\"", ErrBadQuery)
	}
	return q, nil
}

// Run executes q and renders the result as text.
func (d *Dataset) Run(q Query) (string, error) {
	df, err := filter(d.Frame(), q.Where)
	if err != nil {
		return "", err
	}

	switch strings.ToLower(q.Op) {
	case "columns":
		return (&Dataset{frame: df}).Describe(), nil
	case "count":
		return strconv.Itoa(df.Nrow()), nil
	case "head":
		if df, err = selectColumns(df, q.Columns); err != nil {
			return "", err
		}
		return renderTable(head(df, limit(q.Limit, defaultHeadRows)).Records()), nil
	case "describe":
		if df, err = selectColumns(df, q.Columns); err != nil {
			return "", err
		}
		desc := df.Describe()
		if desc.Err != nil {
			return "", desc.Err
		}
		return renderTable(desc.Records()), nil
	case "unique":
		return uniqueCounts(df, q)
	case "aggregate":
		return aggregateColumn(df, q)
	case "groupby":
		return groupBy(df, q)
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownOp, q.Op)
	}
}

func limit(n, def int) int {
	if n <= 0 {
		n = def
	}
	if n > maxRows {
		n = maxRows
	}
	return n
}

func column(df dataframe.DataFrame, name string) (series.Series, error) {
	if !slices.Contains(df.Names(), name) {
		return series.Series{}, fmt.Errorf("%w %q", ErrUnknownColumn, name)
	}
	return df.Col(name), nil
}

func selectColumns(df dataframe.DataFrame, names []string) (dataframe.DataFrame, error) {
	if len(names) == 0 {
		return df, nil
	}
	for _, n := range names {
		if _, err := column(df, n); err != nil {
			return df, err
		}
	}
	out := df.Select(names)
	return out, out.Err
}

var comparators = map[string]series.Comparator{
	"==": series.Eq,
	"=":  series.Eq,
	"!=": series.Neq,
	">":  series.Greater,
	">=": series.GreaterEq,
	"<":  series.Less,
	"<=": series.LessEq,
	"in": series.In,
}

func filter(df dataframe.DataFrame, where []Condition) (dataframe.DataFrame, error) {
	for _, c := range where {
		if _, err := column(df, c.Column); err != nil {
			return df, err
		}
		cmp, ok := comparators[strings.ToLower(c.Cmp)]
		if !ok {
			return df, fmt.Errorf("%w: unsupported comparator %q", ErrBadQuery, c.Cmp)
		}

		var comparando any
		if cmp == series.In {
			values, ok := c.Value.([]any)
			if !ok {
				return df, fmt.Errorf("%w: \"in\" needs a list value", ErrBadQuery)
			}
			list := make([]string, len(values))
			for i, v := range values {
				list[i] = comparandString(v)
			}
			comparando = list
		} else {
			comparando = comparandString(c.Value)
		}

		df = df.Filter(dataframe.F{Colname: c.Column, Comparator: cmp, Comparando: comparando})
		if df.Err != nil {
			return df, fmt.Errorf("filter %s: %w", c.Column, df.Err)
		}
	}
	return df, nil
}

func comparandString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func isNumeric(s series.Series) bool {
	switch s.Type() {
	case series.Int, series.Float:
		return true
	}
	return false
}

var aggregations = map[string]dataframe.AggregationType{
	"count":  dataframe.Aggregation_COUNT,
	"sum":    dataframe.Aggregation_SUM,
	"mean":   dataframe.Aggregation_MEAN,
	"median": dataframe.Aggregation_MEDIAN,
	"min":    dataframe.Aggregation_MIN,
	"max":    dataframe.Aggregation_MAX,
	"std":    dataframe.Aggregation_STD,
}

// aggregation resolves fn and checks that column can be reduced with it.
func aggregation(fn string, column series.Series) (dataframe.AggregationType, error) {
	typ, ok := aggregations[fn]
	if !ok {
		return 0, fmt.Errorf("%w: unsupported func %q", ErrBadQuery, fn)
	}
	if typ != dataframe.Aggregation_COUNT && !isNumeric(column) {
		return 0, fmt.Errorf("%w: %s", ErrNotNumeric, column.Name)
	}
	return typ, nil
}

// reduce applies typ to s. Every func but count is NaN over no rows.
func reduce(typ dataframe.AggregationType, s series.Series) float64 {
	if typ == dataframe.Aggregation_COUNT {
		return float64(s.Len())
	}
	if s.Len() == 0 {
		return math.NaN()
	}
	switch typ {
	case dataframe.Aggregation_SUM:
		return s.Sum()
	case dataframe.Aggregation_MEAN:
		return s.Mean()
	case dataframe.Aggregation_MEDIAN:
		return s.Median()
	case dataframe.Aggregation_MIN:
		return s.Min()
	case dataframe.Aggregation_MAX:
		return s.Max()
	default:
		return s.StdDev()
	}
}

func aggregateColumn(df dataframe.DataFrame, q Query) (string, error) {
	s, err := column(df, q.Column)
	if err != nil {
		return "", err
	}
	fn := strings.ToLower(q.Func)
	typ, err := aggregation(fn, s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s) = %s", fn, q.Column, formatNumber(reduce(typ, s))), nil
}

// aggregated runs a single-column gota aggregation per group of by and
// returns the result with the aggregate column renamed to label.
func aggregated(df dataframe.DataFrame, by []string, typ dataframe.AggregationType, col, label string) (dataframe.DataFrame, error) {
	out := df.GroupBy(by...).Aggregation([]dataframe.AggregationType{typ}, []string{col})
	if out.Err != nil {
		return out, fmt.Errorf("groupby: %w", out.Err)
	}
	for _, name := range out.Names() {
		if !slices.Contains(by, name) {
			out = out.Rename(label, name)
			break
		}
	}
	out = out.Select(append(slices.Clone(by), label))
	return out, out.Err
}

// keyOrder sorts by each group key ascending.
func keyOrder(by []string) []dataframe.Order {
	orders := make([]dataframe.Order, len(by))
	for i, name := range by {
		orders[i] = dataframe.Sort(name)
	}
	return orders
}

func groupBy(df dataframe.DataFrame, q Query) (string, error) {
	if len(q.By) == 0 {
		return "", fmt.Errorf("%w: groupby needs \"by\"", ErrBadQuery)
	}
	for _, name := range q.By {
		if _, err := column(df, name); err != nil {
			return "", err
		}
	}
	valCol, err := column(df, q.Column)
	if err != nil {
		return "", err
	}
	fn := strings.ToLower(q.Func)
	typ, err := aggregation(fn, valCol)
	if err != nil {
		return "", err
	}

	label := fmt.Sprintf("%s(%s)", fn, q.Column)
	header := append(slices.Clone(q.By), label)
	if df.Nrow() == 0 {
		return renderTable([][]string{header}), nil
	}

	groups, err := aggregated(df, q.By, typ, q.Column, label)
	if err != nil {
		return "", err
	}

	// ties fall back to the group keys so the output is deterministic
	orders := keyOrder(q.By)
	switch strings.ToLower(q.Sort) {
	case "asc":
		orders = append([]dataframe.Order{dataframe.Sort(label)}, orders...)
	case "desc":
		orders = append([]dataframe.Order{dataframe.RevSort(label)}, orders...)
	}
	groups = groups.Arrange(orders...)
	if groups.Err != nil {
		return "", fmt.Errorf("sort groups: %w", groups.Err)
	}
	if q.Limit > 0 || groups.Nrow() > maxRows {
		groups = head(groups, limit(q.Limit, maxRows))
	}

	return renderTable(withValues(groups, len(q.By))), nil
}

// withValues renders the key columns of df as-is and the last column as
// numbers.
func withValues(df dataframe.DataFrame, keys int) [][]string {
	records := df.Records()
	values := df.Col(df.Names()[keys]).Float()
	for i := 1; i < len(records); i++ {
		records[i][keys] = formatNumber(values[i-1])
	}
	return records
}

func uniqueCounts(df dataframe.DataFrame, q Query) (string, error) {
	if _, err := column(df, q.Column); err != nil {
		return "", err
	}
	label := "count"
	if q.Column == label {
		label = "count(count)"
	}
	if df.Nrow() == 0 {
		return renderTable([][]string{{q.Column, label}}), nil
	}

	counts, err := aggregated(df, []string{q.Column}, dataframe.Aggregation_COUNT, q.Column, label)
	if err != nil {
		return "", err
	}
	counts = counts.Arrange(dataframe.RevSort(label), dataframe.Sort(q.Column))
	if counts.Err != nil {
		return "", fmt.Errorf("sort counts: %w", counts.Err)
	}

	total := counts.Nrow()
	counts = head(counts, limit(q.Limit, defaultUniqueRows))

	out := renderTable(withValues(counts, 1))
	if total > counts.Nrow() {
		out += fmt.Sprintf("... %d distinct values in total\n", total)
	}
	return out, nil
}

func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}

func renderTable(records [][]string) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	for _, r := range records {
		fmt.Fprintln(w, strings.Join(r, "\t"))
	}
	w.Flush()
	return sb.String()
}
