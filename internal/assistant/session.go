package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/remibot/remi-go/internal/database"
	"github.com/remibot/remi-go/internal/exporter"
	"github.com/remibot/remi-go/internal/llm"
	"github.com/remibot/remi-go/internal/prompt"
	"github.com/remibot/remi-go/internal/visualize"
)

var (
	// Colors for output
	welcomeColor   = color.New(color.FgGreen)
	assistantColor = color.New(color.FgMagenta)
	codeColor      = color.New(color.FgYellow)
	errorColor     = color.New(color.FgRed)
	infoColor      = color.New(color.FgCyan)
)

// ErrInterrupt is returned by a LineReader when the user interrupts input.
var ErrInterrupt = errors.New("interrupted")

// LineReader reads one line of user input. It returns io.EOF at end of input.
type LineReader interface {
	ReadLine() (string, error)
}

// Store executes generated SQL on the shared connection.
type Store interface {
	FetchAll(ctx context.Context, query string) (*database.ResultSet, error)
}

// Session holds everything a turn needs. It keeps no history between turns;
// every prompt is rebuilt from the metadata context.
type Session struct {
	Store     Store
	Generator llm.Generator
	Runner    visualize.Runner
	Context   prompt.Context
	// ExportPath, when set, is rewritten with the rows of each successful
	// query, so it always holds the latest result.
	ExportPath string

	Out io.Writer
	Log *zap.SugaredLogger
}

// Run reads lines until exit or end of input and handles each one.
// Failures inside a turn are reported and the loop continues; only a broken
// reader or a cancelled context ends Run with an error.
func (s *Session) Run(ctx context.Context, in LineReader) error {
	s.welcome()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintln(s.Out)
		line, err := in.ReadLine()
		if errors.Is(err, ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		mode, text := Dispatch(line)
		if mode == ModeExit {
			return nil
		}
		s.Turn(ctx, mode, text)
	}
}

// Turn handles one dispatched input.
func (s *Session) Turn(ctx context.Context, mode Mode, text string) {
	start := time.Now()
	var err error
	switch mode {
	case ModeQuery:
		err = s.query(ctx, text)
	case ModeChart:
		err = s.chart(ctx, text)
	case ModeChat:
		err = s.chat(ctx, text)
	default:
		return
	}
	if err != nil {
		s.Log.Errorw("turn failed", "mode", mode.String(), "error", err)
	} else {
		s.Log.Debugw("turn complete", "mode", mode.String(), "duration", time.Since(start))
	}
}

func (s *Session) welcome() {
	welcomeColor.Fprintln(s.Out)
	welcomeColor.Fprintln(s.Out, "Welcome to the conversational interface!")
	welcomeColor.Fprintln(s.Out, "You can ask questions about the dataset and get answers based on the table metadata.")
	welcomeColor.Fprintln(s.Out, "Type 'exit' to end the conversation.")
	welcomeColor.Fprintf(s.Out, "To directly generate an SQL query, start your prompt with '%s'.\n", QueryPrefix)
	welcomeColor.Fprintf(s.Out, "To generate a visualization using Altair, start your prompt with '%s'.\n", ChartPrefix)
}

// generate streams a completion, echoing each fragment in c.
func (s *Session) generate(ctx context.Context, req llm.Request, c *color.Color) (string, error) {
	text, err := s.Generator.Stream(ctx, req, func(delta string) {
		c.Fprint(s.Out, delta)
	})
	fmt.Fprintln(s.Out)
	if err != nil {
		errorColor.Fprintf(s.Out, "Error generating response: %v\n", err)
		return "", err
	}
	return text, nil
}

func (s *Session) query(ctx context.Context, question string) error {
	fmt.Fprintln(s.Out)
	text, err := s.generate(ctx, llm.Request{Prompt: prompt.SQLPrompt(s.Context, question)}, codeColor)
	if err != nil {
		return err
	}

	sql := prompt.ExtractSQL(text)
	rs, err := s.Store.FetchAll(ctx, sql)
	if err != nil {
		errorColor.Fprintf(s.Out, "Error executing SQL query: %v\n", err)
		codeColor.Fprintf(s.Out, "Results: %s\n", exporter.FormatRows(nil))
		return fmt.Errorf("query %q: %w", sql, err)
	}

	codeColor.Fprintf(s.Out, "Results: %s\n", exporter.FormatRows(rs))
	s.Log.Infow("query executed", "rows", len(rs.Rows))

	if s.ExportPath != "" {
		n, err := exporter.WriteCSV(s.ExportPath, rs)
		if err != nil {
			errorColor.Fprintf(s.Out, "Error exporting results: %v\n", err)
			return err
		}
		infoColor.Fprintf(s.Out, "Exported %d rows to %s\n", n, s.ExportPath)
	}
	return nil
}

func (s *Session) chart(ctx context.Context, request string) error {
	fmt.Fprintln(s.Out)
	text, err := s.generate(ctx, llm.Request{Prompt: prompt.ChartPrompt(s.Context, request)}, codeColor)
	if err != nil {
		return err
	}

	if err := s.Runner.Run(ctx, prompt.ExtractPython(text)); err != nil {
		errorColor.Fprintf(s.Out, "Error executing visualization code: %v\n", err)
		return err
	}
	return nil
}

func (s *Session) chat(ctx context.Context, message string) error {
	fmt.Fprintln(s.Out)
	assistantColor.Fprint(s.Out, "Assistant: ")
	_, err := s.generate(ctx, llm.Request{
		System: prompt.SystemPrompt(s.Context),
		Prompt: message,
	}, assistantColor)
	return err
}

// Suggest asks for n questions answerable from the table, echoing the stream.
func (s *Session) Suggest(ctx context.Context, n int) ([]string, error) {
	infoColor.Fprintln(s.Out, "Generating questions...")
	text, err := s.generate(ctx, llm.Request{Prompt: prompt.QuestionsPrompt(s.Context, n)}, infoColor)
	if err != nil {
		return nil, err
	}
	return prompt.ParseQuestions(text), nil
}
