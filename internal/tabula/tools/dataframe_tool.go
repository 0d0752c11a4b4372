package tools

import (
	"context"
	"fmt"
	"log"

	"tabula-backend/internal/dataset"

	"github.com/tmc/langchaingo/tools"
)

const DataframeToolName = "dataframe"

const dataframeToolDescription = `Runs one read-only query against the dataframe and returns the result as text.
The input must be a single JSON object with an "op" field. Supported ops:
- {"op":"columns"} lists the row count, column names and types.
- {"op":"count","where":[...]} counts rows.
- {"op":"head","columns":["a","b"],"limit":5} prints rows.
- {"op":"describe","columns":["a"]} prints summary statistics.
- {"op":"unique","column":"a","limit":50} prints value counts.
- {"op":"aggregate","column":"a","func":"mean"} reduces a column. func is one of count, sum, mean, median, min, max, std.
- {"op":"groupby","by":["a"],"column":"b","func":"mean","sort":"desc","limit":10} aggregates per group.
Every op accepts "where": a list of {"column":"a","cmp":"==","value":"x"} conditions that are ANDed.
cmp is one of ==, !=, >, >=, <, <=, in (value is a list for in).`

var _ tools.Tool = (*DataframeTool)(nil)

// DataframeTool exposes dataset queries to the agent.
type DataframeTool struct {
	ds *dataset.Dataset
}

func NewDataframeTool(ds *dataset.Dataset) *DataframeTool {
	return &DataframeTool{ds: ds}
}

func (t *DataframeTool) Name() string {
	return DataframeToolName
}

func (t *DataframeTool) Description() string {
	return dataframeToolDescription
}

// Call never fails: query errors go back to the model as the observation so it
// can correct itself.
func (t *DataframeTool) Call(ctx context.Context, input string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	q, err := dataset.ParseQuery(input)
	if err != nil {
		log.Printf("dataframe tool: %v", err)
		return fmt.Sprintf("Error: %v", err), nil
	}

	out, err := t.ds.Run(q)
	if err != nil {
		log.Printf("dataframe tool (%s): %v", q.Op, err)
		return fmt.Sprintf("Error: %v", err), nil
	}
	return out, nil
}
