package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"tabula-backend/internal/dataset"
	"tabula-backend/internal/tabula/prompts"
	tabulaTools "tabula-backend/internal/tabula/tools"

	lcagents "github.com/tmc/langchaingo/agents"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/tools"
)

const (
	DefaultMaxIterations = 15
	DefaultPreviewRows   = 5

	outputKey = "output"
	stepsKey  = "intermediateSteps"
)

// Step is one tool invocation made while answering.
type Step struct {
	Tool        string `json:"tool"`
	Input       string `json:"input"`
	Observation string `json:"observation"`
}

type Response struct {
	Output string `json:"output"`
	Steps  []Step `json:"steps"`
}

type options struct {
	maxIterations int
	previewRows   int
}

type Option func(*options)

// WithMaxIterations bounds the number of reasoning steps per question.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// WithPreviewRows sets how many rows of the dataset the prompt shows.
func WithPreviewRows(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.previewRows = n
		}
	}
}

// DataframeAgent answers natural language questions about a dataset by
// letting the model run queries through the dataframe tool.
type DataframeAgent struct {
	executor *lcagents.Executor
}

func NewDataframeAgent(model llms.Model, ds *dataset.Dataset, opts ...Option) *DataframeAgent {
	o := options{
		maxIterations: DefaultMaxIterations,
		previewRows:   DefaultPreviewRows,
	}
	for _, opt := range opts {
		opt(&o)
	}

	agentTools := []tools.Tool{tabulaTools.NewDataframeTool(ds)}
	prefix := prompts.DataframeAgentPrefix(ds.Nrow(), ds.Names(), ds.Head(o.previewRows))

	agent := lcagents.NewOneShotAgent(model, agentTools,
		lcagents.WithPromptPrefix(prefix),
		lcagents.WithMaxIterations(o.maxIterations),
	)
	executor := lcagents.NewExecutor(agent,
		lcagents.WithMaxIterations(o.maxIterations),
		lcagents.WithReturnIntermediateSteps(),
	)

	return &DataframeAgent{executor: executor}
}

// Invoke runs the agent on input and returns its final answer.
func (a *DataframeAgent) Invoke(ctx context.Context, input string) (*Response, error) {
	result, err := chains.Call(ctx, a.executor, map[string]any{"input": input})
	if err != nil {
		return nil, fmt.Errorf("dataframe agent: %w", err)
	}

	output, ok := result[outputKey].(string)
	if !ok {
		return nil, fmt.Errorf("dataframe agent: missing %q in result", outputKey)
	}

	response := &Response{Output: strings.TrimSpace(output)}
	if steps, ok := result[stepsKey].([]schema.AgentStep); ok {
		for _, s := range steps {
			response.Steps = append(response.Steps, Step{
				Tool:        s.Action.Tool,
				Input:       s.Action.ToolInput,
				Observation: s.Observation,
			})
		}
	}
	log.Printf("dataframe agent answered after %d tool calls", len(response.Steps))

	return response, nil
}
