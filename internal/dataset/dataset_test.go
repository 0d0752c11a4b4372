package dataset

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salariesCSV = `grade,gender,base_salary,bonus
A,F,100000,
B,M,90000,500
A,M,,1000
B,F,80000,NA
C,F,120000,200
`

func loadSalaries(t *testing.T) *Dataset {
	t.Helper()
	ds, err := Load(strings.NewReader(salariesCSV))
	require.NoError(t, err)
	return ds
}

func TestLoad_FillsMissingWithZero(t *testing.T) {
	ds := loadSalaries(t)

	require.Equal(t, 5, ds.Nrow())
	require.Equal(t, []string{"grade", "gender", "base_salary", "bonus"}, ds.Names())

	records := ds.Records()
	assert.Equal(t, []string{"A", "F", "100000", "0"}, records[1])
	assert.Equal(t, []string{"A", "M", "0", "1000"}, records[3])
	assert.Equal(t, []string{"B", "F", "80000", "0"}, records[4])
}

func TestLoad_NATokens(t *testing.T) {
	ds, err := Load(strings.NewReader("a,b,c\nnull,None,n/a\n#N/A,<NA>,NaN\n"))
	require.NoError(t, err)

	for _, row := range ds.Records()[1:] {
		assert.Equal(t, []string{"0", "0", "0"}, row)
	}
}

func TestLoad_PadsShortRows(t *testing.T) {
	ds, err := Load(strings.NewReader("x,y\n1\n2,3\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"x", "y"}, {"1", "0"}, {"2", "3"}}, ds.Records())
}

func TestLoad_Idempotent(t *testing.T) {
	first := loadSalaries(t)
	second := loadSalaries(t)
	assert.Equal(t, first.Records(), second.Records())
}

func TestLoad_Empty(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestLoad_RowWiderThanHeader(t *testing.T) {
	_, err := Load(strings.NewReader("a,b\n1,2\n1,2,3\n"))
	require.ErrorIs(t, err, ErrRowTooWide)
	assert.Contains(t, err.Error(), "line 3")
}

func TestLoad_HeaderOnly(t *testing.T) {
	ds, err := Load(strings.NewReader("a,b\n"))
	require.NoError(t, err)

	assert.Equal(t, 0, ds.Nrow())
	assert.Equal(t, []string{"a", "b"}, ds.Names())
	assert.Equal(t, [][]string{{"a", "b"}}, ds.Records())

	header, rows := ds.Preview(5)
	assert.Equal(t, []string{"a", "b"}, header)
	assert.Empty(t, rows)
	assert.Contains(t, ds.Describe(), "0 rows x 2 columns")

	out, err := ds.Run(Query{Op: "count"})
	require.NoError(t, err)
	assert.Equal(t, "0", out)
}

func TestPreview(t *testing.T) {
	ds := loadSalaries(t)

	header, rows := ds.Preview(2)
	assert.Equal(t, []string{"grade", "gender", "base_salary", "bonus"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"B", "M", "90000", "500"}, rows[1])

	_, rows = ds.Preview(50)
	assert.Len(t, rows, 5)
}

func TestHeadAndDescribe(t *testing.T) {
	ds := loadSalaries(t)

	headText := ds.Head(1)
	assert.Contains(t, headText, "base_salary")
	assert.Contains(t, headText, "100000")
	assert.NotContains(t, headText, "90000")

	desc := ds.Describe()
	assert.Contains(t, desc, "5 rows x 4 columns")
	assert.Contains(t, desc, "base_salary (int)")
	assert.Contains(t, desc, "grade (string)")
}

func TestFrameIsACopy(t *testing.T) {
	ds := loadSalaries(t)
	before := ds.Records()

	frame := ds.Frame()
	_ = frame.Drop("grade")

	assert.Equal(t, before, ds.Records())
}

type fakeOpener struct {
	bucket, object string
	body           string
	err            error
}

func (f *fakeOpener) OpenObject(_ context.Context, bucket, object string) (io.ReadCloser, error) {
	f.bucket, f.object = bucket, object
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.body)), nil
}

func TestLoadFrom_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salaries.csv")
	require.NoError(t, os.WriteFile(path, []byte(salariesCSV), 0o600))

	ds, err := LoadFrom(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, loadSalaries(t).Records(), ds.Records())
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadFrom_GCS(t *testing.T) {
	opener := &fakeOpener{body: salariesCSV}

	ds, err := LoadFrom(context.Background(), "gs://datasets/hr/salaries_2023.csv", opener)
	require.NoError(t, err)
	assert.Equal(t, "datasets", opener.bucket)
	assert.Equal(t, "hr/salaries_2023.csv", opener.object)
	assert.Equal(t, 5, ds.Nrow())
}

func TestOpen_GCSErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, "gs://bucket-only", &fakeOpener{})
	assert.Error(t, err)

	_, err = Open(ctx, "gs://bucket/object.csv", nil)
	assert.Error(t, err)

	boom := errors.New("boom")
	_, err = Open(ctx, "gs://bucket/object.csv", &fakeOpener{err: boom})
	assert.ErrorIs(t, err, boom)
}
