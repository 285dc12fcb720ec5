package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/ergochat/readline"

	"github.com/remibot/remi-go/internal/assistant"
)

// console reads a line after showing a prompt.
type console interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// lineEditor is the interactive console with history and line editing.
type lineEditor struct {
	rl *readline.Instance
}

func newLineEditor(historyFile string) (*lineEditor, error) {
	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start line editor: %w", err)
	}
	return &lineEditor{rl: rl}, nil
}

func (e *lineEditor) Prompt(prompt string) (string, error) {
	e.rl.SetPrompt(prompt)
	line, err := e.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return line, assistant.ErrInterrupt
	}
	return line, err
}

func (e *lineEditor) Close() error {
	return e.rl.Close()
}

// plainConsole reads from a non-terminal input such as a pipe.
type plainConsole struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newPlainConsole(in io.Reader, out io.Writer) *plainConsole {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &plainConsole{scanner: scanner, out: out}
}

func (c *plainConsole) Prompt(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return c.scanner.Text(), nil
}

func (c *plainConsole) Close() error {
	return nil
}

// userPrompt adapts a console to the session's LineReader.
type userPrompt struct {
	console
	prompt string
}

func (u userPrompt) ReadLine() (string, error) {
	return u.Prompt(u.prompt)
}
