package agents

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	llmHandlers "tabula-backend/internal/llm_handlers"
	"tabula-backend/internal/tabula/prompts"
)

const ExitKeyword = "exit"

// SimpleAgent is the terminal chat loop: one remote call per line.
type SimpleAgent struct {
	llmClient llmHandlers.Client
}

func NewSimpleAgent(client llmHandlers.Client) *SimpleAgent {
	return &SimpleAgent{llmClient: client}
}

// IsExit reports whether input is the exit keyword in any letter case.
func IsExit(input string) bool {
	return strings.EqualFold(strings.TrimRight(input, "\r\n"), ExitKeyword)
}

// ProcessRequest sends the fixed system instruction and message.
func (a *SimpleAgent) ProcessRequest(ctx context.Context, message string) (string, error) {
	messages := []llmHandlers.Message{
		{Role: llmHandlers.RoleUser, Content: message},
	}

	response, err := a.llmClient.Chat(ctx, prompts.CHAT_SYSTEM_PROMPT, messages)
	if err != nil {
		return "", fmt.Errorf("LLM chat error: %w", err)
	}
	return response, nil
}

// Run reads lines from in until exit, EOF or a failed remote call.
func (a *SimpleAgent) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Simple AI Agent: Type 'exit' to quit.")

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(out)
			return nil
		}

		input := scanner.Text()
		if IsExit(input) {
			fmt.Fprintln(out, "Exiting the agent. Goodbye!")
			return nil
		}

		response, err := a.ProcessRequest(ctx, input)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "AI Agent: getting the response...")
		fmt.Fprintf(out, "AI: %s\n", response)
	}
}
