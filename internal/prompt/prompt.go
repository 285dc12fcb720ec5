// Package prompt builds the model prompts and parses model output.
package prompt

import (
	"fmt"
	"strings"

	"github.com/remibot/remi-go/internal/database"
)

// Context is the metadata snapshot rendered once after ingestion and embedded
// in every prompt. It is never refreshed.
type Context struct {
	Table string
	text  string
}

// BuildContext renders the table name and its column metadata.
func BuildContext(table string, columns []database.Column) Context {
	var b strings.Builder
	fmt.Fprintf(&b, "Table: %s\n\nMetadata:\n", table)
	for _, c := range columns {
		fmt.Fprintf(&b, "%s (%s)\n", c.Name, c.Type)
	}
	return Context{Table: table, text: b.String()}
}

// String returns the rendered block.
func (c Context) String() string {
	return c.text
}

// SQLPrompt asks for a single fenced SQL statement answering question.
func SQLPrompt(c Context, question string) string {
	return fmt.Sprintf("%s\nQuestion: %s\n\n"+
		"Generate a SQL query to answer this question. "+
		"Return only the SQL query without any explanations or additional text. "+
		"Enclose the SQL query within triple backticks (```sql ... ```).",
		c, question)
}

// ChartPrompt asks for fenced Altair code. The generated code runs with
// exactly two globals: alt (the altair module) and engine (a SQLAlchemy
// engine connected to the table's database). It runs inside the chart
// directory, so charts are saved under a bare file name.
func ChartPrompt(c Context, request string) string {
	return fmt.Sprintf("%s\nPrompt: %s\n\n"+
		"YOUR JOB IS TO ONLY GENERATE ALTAIR VISUALIZATION CODE. "+
		"Generate the code based on the prompt using the data in the table above. "+
		"Two names are already defined and are the only ones you may rely on: "+
		"`alt` (the altair module) and `engine` (a SQLAlchemy engine connected to the database). "+
		"Import anything else you need yourself, e.g. pandas for `pandas.read_sql(query, engine)`. "+
		"Do not create your own database connection. "+
		"Save the chart with `chart.save(\"<name>.html\")` using a plain file name with no directory, "+
		"the code already runs in the output directory. Do not call `chart.show()`. "+
		"Return only the code without any explanations or additional text. "+
		"Enclose the code within triple backticks (```python ... ```).",
		c, request)
}

// SystemPrompt is the instruction for free-form conversation turns.
func SystemPrompt(c Context) string {
	return "You are an expert Data Analyst. Your job is to support the user for all of their data related tasks. " +
		"The user has access to tools that generate SQL queries and Altair visualizations using natural language prompts. " +
		"THERE IS NO NEED TO PROVIDE THE USER WITH SQL CODE OR VISUALIZATION CODE. " +
		"IF NEEDED, PROVIDE THEM WITH NATURAL LANGUAGE PROMPTS FOR THE '-t' OR '-v' COMMANDS. " +
		"Please provide clear and concise responses.\n\n" + c.String()
}

// QuestionsPrompt asks for n questions answerable from the table.
func QuestionsPrompt(c Context, n int) string {
	return fmt.Sprintf("%s\nGenerate %d interesting questions that can be answered using this table with no explanations. "+
		"ONLY PROVIDE THE QUESTIONS", c, n)
}
