package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/remibot/remi-go/internal/config"
	"github.com/remibot/remi-go/internal/llm"
	"github.com/remibot/remi-go/internal/logger"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// scriptedGenerator replays canned replies in order.
type scriptedGenerator struct {
	replies  []string
	requests []llm.Request
}

func (g *scriptedGenerator) Stream(_ context.Context, req llm.Request, onDelta func(string)) (string, error) {
	g.requests = append(g.requests, req)
	reply := ""
	if len(g.replies) > 0 {
		reply, g.replies = g.replies[0], g.replies[1:]
	}
	onDelta(reply)
	return reply, nil
}

// findTestdata locates the testdata directory relative to the test file.
func findTestdata(t *testing.T) string {
	for _, p := range []string{"../../testdata", "testdata"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	t.Skip("testdata directory not found")
	return ""
}

func testConfig(t *testing.T, csvPath string) *config.Config {
	t.Helper()
	return &config.Config{
		Driver:    config.DriverSQLite,
		DBPath:    filepath.Join(t.TempDir(), "remi.db"),
		CSVPath:   csvPath,
		Table:     "people",
		Delimiter: "auto",
		APIKey:    "test",
		MaxTokens: 1024,
		ChartDir:  t.TempDir(),
	}
}

func runScript(t *testing.T, cfg *config.Config, input string, gen *scriptedGenerator) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), cfg, env{
		in:        newPlainConsole(strings.NewReader(input), &out),
		out:       &out,
		log:       logger.Nop(),
		generator: gen,
	})
	return out.String(), err
}

func TestExecuteHelp(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd should be defined")
	}
	if rootCmd.Use != "remi" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "remi")
	}
	for _, name := range []string{"csv", "table", "api-key", "driver", "max-tokens", "output"} {
		if rootCmd.Flags().Lookup(name) == nil {
			t.Errorf("flag --%s not registered", name)
		}
	}
}

func TestEndToEndQuery(t *testing.T) {
	cfg := testConfig(t, filepath.Join(findTestdata(t), "sample.csv"))
	gen := &scriptedGenerator{replies: []string{
		"```sql\nSELECT name FROM people WHERE CAST(age AS INTEGER) > 40 ORDER BY name\n```",
	}}

	out, err := runScript(t, cfg, "-t who is over 40?\nexit\n", gen)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if !strings.Contains(out, "into table 'people' successfully (10 rows)") {
		t.Errorf("missing ingestion report: %q", out)
	}
	if !strings.Contains(out, `Results: [("Frank",), ("Jack",)]`) {
		t.Errorf("missing query results: %q", out)
	}
	if !strings.Contains(gen.requests[0].Prompt, "city (VARCHAR(255))") {
		t.Errorf("prompt missing metadata snapshot: %q", gen.requests[0].Prompt)
	}
}

func TestEndToEndPromptsForTable(t *testing.T) {
	cfg := testConfig(t, filepath.Join(findTestdata(t), "sample.csv"))
	cfg.Table = ""
	gen := &scriptedGenerator{replies: []string{"SELECT COUNT(*) FROM my_people"}}

	out, err := runScript(t, cfg, "my people\n-t count\nEXIT\n", gen)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out, "Enter the desired table name: ") {
		t.Errorf("missing table prompt: %q", out)
	}
	if !strings.Contains(out, "Using table name 'my_people'") {
		t.Errorf("missing sanitized table notice: %q", out)
	}
	if !strings.Contains(out, "Results: [(10,)]") {
		t.Errorf("missing count result: %q", out)
	}
}

func TestRerunKeepsRows(t *testing.T) {
	cfg := testConfig(t, filepath.Join(findTestdata(t), "sample.csv"))

	if _, err := runScript(t, cfg, "exit\n", &scriptedGenerator{}); err != nil {
		t.Fatalf("first run() error = %v", err)
	}
	gen := &scriptedGenerator{replies: []string{"SELECT COUNT(*), COUNT(DISTINCT id) FROM people"}}
	out, err := runScript(t, cfg, "-t count\n", gen)
	if err != nil {
		t.Fatalf("second run() error = %v", err)
	}
	if !strings.Contains(out, "Results: [(20, 20)]") {
		t.Errorf("expected rows from both runs: %q", out)
	}
}

func TestIngestionFailureStillStartsLoop(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing.csv"))
	gen := &scriptedGenerator{replies: []string{"Nothing is loaded yet."}}

	out, err := runScript(t, cfg, "hello\n", gen)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out, "Error inserting data") {
		t.Errorf("missing ingestion error: %q", out)
	}
	if !strings.Contains(out, "Assistant: Nothing is loaded yet.") {
		t.Errorf("loop did not start: %q", out)
	}
}

func TestConnectionFailureStops(t *testing.T) {
	cfg := testConfig(t, filepath.Join(findTestdata(t), "sample.csv"))
	cfg.Driver = config.DriverMySQL
	cfg.Host = "127.0.0.1"
	cfg.Port = 1
	cfg.User = "nobody"
	cfg.Database = "nothing"
	gen := &scriptedGenerator{}

	out, err := runScript(t, cfg, "hello\n", gen)
	if err == nil {
		t.Fatal("Expected connection error, got nil")
	}
	if !strings.Contains(out, "Error connecting to the database") {
		t.Errorf("missing connection error: %q", out)
	}
	if len(gen.requests) != 0 {
		t.Errorf("no model calls expected after connection failure, got %d", len(gen.requests))
	}
}

func TestSuggestFlag(t *testing.T) {
	cfg := testConfig(t, filepath.Join(findTestdata(t), "sample.csv"))
	cfg.Suggest = true
	gen := &scriptedGenerator{replies: []string{"1. Oldest person?\n2. Most common city?\n3. Average age?"}}

	out, err := runScript(t, cfg, "", gen)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out, "Generating questions...") || !strings.Contains(out, "Most common city?") {
		t.Errorf("missing suggestions: %q", out)
	}
}

func TestPlayBanner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banner.txt")
	if err := os.WriteFile(path, []byte("REMI"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	var out bytes.Buffer
	if err := playBanner(&out, path, 0); err != nil {
		t.Fatalf("playBanner() error = %v", err)
	}
	if out.String() != "\nREMI\n\n" {
		t.Errorf("banner output = %q", out.String())
	}

	if err := playBanner(&out, filepath.Join(t.TempDir(), "missing.txt"), 0); err == nil {
		t.Error("Expected error for missing banner, got nil")
	}
}

func TestPlainConsole(t *testing.T) {
	var out bytes.Buffer
	c := newPlainConsole(strings.NewReader("first\nsecond"), &out)
	reader := userPrompt{console: c, prompt: "> "}

	for _, want := range []string{"first", "second"} {
		got, err := reader.ReadLine()
		if err != nil || got != want {
			t.Fatalf("ReadLine() = %q, %v, want %q", got, err, want)
		}
	}
	if _, err := reader.ReadLine(); err == nil {
		t.Error("Expected EOF at end of input")
	}
	if out.String() != "> > > " {
		t.Errorf("prompts = %q", out.String())
	}
}

func TestFmtNum(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1500, "1.5K"},
		{2500000, "2.5M"},
	}
	for _, tt := range tests {
		if got := fmtNum(tt.n); got != tt.want {
			t.Errorf("fmtNum(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestProgressTrackerDisabled(t *testing.T) {
	var out bytes.Buffer
	pt := NewProgressTracker(&out, false)
	pt.Start("x")
	pt.Update("x", 10)
	pt.Stop()
	if out.Len() != 0 {
		t.Errorf("disabled tracker wrote %q", out.String())
	}
}

func TestProgressTrackerStop(t *testing.T) {
	var out bytes.Buffer
	pt := NewProgressTracker(&out, true)
	pt.Start("sample.csv → people")
	pt.Update("sample.csv", 42)
	pt.Stop()
	if !strings.HasSuffix(out.String(), "\033[?25h") {
		t.Errorf("expected cursor to be restored, got %q", out.String())
	}
}
