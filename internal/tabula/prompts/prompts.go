package prompts

import (
	"fmt"
	"strings"
)

// CHAT_SYSTEM_PROMPT is sent ahead of every line typed into the chat loop.
var CHAT_SYSTEM_PROMPT = "You are a helpful assistant."

var DEFAULT_QUESTION = "Which grade has the highest average base salary, and compare the average female pay vs male pay?"

var CSV_PROMPT_PREFIX = `
First set the pandas display options to show all the columns,
get the column names and then answer the quesiton.
`

var CSV_PROMPT_SUFFIX = `
- **ALWAYS** before giving the Final Answer, try another method.
Then reflect on the answers of the two methods you did and ask yourself
if it answers correctly the original question.
If you are not sure, try another method.
FORMAT 4 FIGURES OR MORE WITH COMMAS.
- If the methods tried do not give the same result,reflect and
try again until you have two methods that have the same result.
- If you still cannot arrive to a consistent result, say that
you are not sure of the answer.
- If you are sure of the correct answer, create a beautiful
and thorough response using Markdown.
- **DO NOT MAKE UP AN ANSWER OR USE PRIOR KNOWLEDGE,
ONLY USE THE RESULTS OF THE CALCULATIONS YOU HAVE DONE**.
- **ALWAYS**, as part of your "Final Answer", explain how you got
to the answer on a section that starts with: "` + "\n\nExplanation:\n" + `".
In the explanation, mention the column names that you used to get
to the final answer.
`

// DATAFRAME_AGENT_PREFIX is rendered as a Go template by the agent runtime,
// so it may reference {{.tool_descriptions}} but dataset text must be escaped.
var DATAFRAME_AGENT_PREFIX = `
You are working with a dataframe named df, loaded from a CSV file.
It has %d rows and these columns: %s.
This is the result of printing the first rows of the dataframe:
%s
You cannot run arbitrary code. Every computation goes through the tools below.
Answer the following questions as best you can. You have access to the following tools:

{{.tool_descriptions}}`

// DataframeAgentPrefix fills DATAFRAME_AGENT_PREFIX for a dataset.
func DataframeAgentPrefix(rows int, columns []string, head string) string {
	return fmt.Sprintf(DATAFRAME_AGENT_PREFIX,
		rows,
		escapeTemplate(strings.Join(columns, ", ")),
		escapeTemplate(head),
	)
}

func escapeTemplate(s string) string {
	return strings.ReplaceAll(s, "{{", `{{"{{"}}`)
}
