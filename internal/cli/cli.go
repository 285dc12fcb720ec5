// Package cli provides the command-line interface for remi.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/remibot/remi-go/internal/assistant"
	"github.com/remibot/remi-go/internal/config"
	"github.com/remibot/remi-go/internal/database"
	"github.com/remibot/remi-go/internal/importer"
	"github.com/remibot/remi-go/internal/llm"
	"github.com/remibot/remi-go/internal/logger"
	"github.com/remibot/remi-go/internal/prompt"
	"github.com/remibot/remi-go/internal/visualize"
)

var (
	// Colors for output
	successColor = color.New(color.FgGreen, color.Bold)
	infoColor    = color.New(color.FgBlue)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

// suggestionCount is how many starter questions --suggest asks for.
const suggestionCount = 3

var rootCmd = &cobra.Command{
	Use:   "remi",
	Short: "Talk to a CSV file through a language model",
	Long: `remi - a conversational data assistant

Loads a CSV file into a database table, then lets you talk about it:

  -t <question>   generate a SQL query, run it and print the rows
  -v <request>    generate Altair chart code and run it
  anything else   ask the assistant about the data
  exit            leave

Settings come from flags, REMI_* environment variables (a .env file is read
if present) and an optional YAML file given with --config.`,
	Example: `  # Load into a temporary SQLite database and chat
  remi --csv sales.csv --table sales --api-key $OPENAI_API_KEY

  # Load into MySQL and keep the table
  remi --driver mysql --host localhost --user analyst --database shop --csv orders.csv -t orders

  # Use an OpenAI-compatible endpoint and keep the latest query result in a file
  remi --csv data.csv --base-url https://api.anthropic.com/v1 --model claude-sonnet-4-5 -o results.csv`,
	SilenceUsage: true,
	RunE:         runCommand,
}

func init() {
	flags := rootCmd.Flags()
	flags.String("config", "", "YAML config file")

	flags.String("driver", config.DriverSQLite, "Datastore driver: 'sqlite' or 'mysql'")
	flags.String("host", "", "MySQL host")
	flags.Int("port", 3306, "MySQL port")
	flags.String("user", "", "MySQL user")
	flags.String("password", "", "MySQL password")
	flags.String("database", "", "MySQL database name")
	flags.StringP("db", "d", "", "SQLite database path (default: temporary file, deleted after execution)")

	flags.StringP("csv", "c", "", "CSV/TSV file to load (.gz and .bz2 supported)")
	flags.StringP("table", "t", "", "Table name (prompted for if empty)")
	flags.String("delimiter", "auto", "Field delimiter: 'comma', 'tab', or 'auto'")

	flags.String("api-key", "", "API key for the language model")
	flags.String("base-url", "", "OpenAI-compatible API base URL")
	flags.String("model", "gpt-4o-mini", "Model identifier")
	flags.Int("max-tokens", 1024, "Maximum tokens per response")

	flags.String("python", "python3", "Python interpreter for -v charts (needs altair, pandas, sqlalchemy)")
	flags.String("chart-dir", ".", "Directory charts are saved to")
	flags.StringP("output", "o", "", "Also write the latest -t result to this CSV/TSV file (rewritten on every query)")

	flags.String("banner", "", "ASCII art file to play on startup")
	flags.Bool("suggest", false, "Ask for starter questions after loading")
	flags.String("history-file", "", "Line editor history file")

	flags.String("log-level", "warn", "Log level: debug, info, warn, error")
	flags.String("log-format", "console", "Log format: 'console' or 'json'")
	flags.String("log-file", "", "Also write logs to this file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func runCommand(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return err
	}
	defer log.Sync()

	interactive := isTerminal(os.Stdin) && isTerminal(os.Stdout)

	var in console
	if interactive {
		editor, err := newLineEditor(cfg.HistoryFile)
		if err != nil {
			return err
		}
		in = editor
	} else {
		in = newPlainConsole(os.Stdin, os.Stdout)
	}
	defer in.Close()

	return run(cmd.Context(), cfg, env{
		in:       in,
		out:      os.Stdout,
		log:      log,
		progress: interactive,
	})
}

// env carries the process-level collaborators of run.
type env struct {
	in        console
	out       io.Writer
	log       *zap.SugaredLogger
	progress  bool
	generator llm.Generator // nil builds a client from cfg
}

func run(ctx context.Context, cfg *config.Config, e env) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.Banner != "" {
		if err := playBanner(e.out, cfg.Banner, bannerCharDelay); err != nil {
			e.log.Warnw("banner skipped", "error", err)
		}
	}

	table := cfg.Table
	for strings.TrimSpace(table) == "" {
		line, err := e.in.Prompt(infoColor.Sprint("Enter the desired table name: "))
		if errors.Is(err, assistant.ErrInterrupt) {
			continue
		}
		if err != nil {
			return fmt.Errorf("no table name given: %w", err)
		}
		table = line
	}
	if sanitized := database.SanitizeTableName(table); sanitized != table {
		warnColor.Fprintf(e.out, "Using table name '%s'\n", sanitized)
		table = sanitized
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		errorColor.Fprintf(e.out, "Error connecting to the database: %v\n", err)
		return err
	}
	defer func() {
		db.DB.Close()
		if db.ShouldCleanup {
			if err := db.Cleanup(); err != nil {
				warnColor.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
		}
	}()
	e.log.Infow("database connected", "driver", db.Dialect.Name(), "path", db.Path)

	if db.IsTemp {
		infoColor.Fprintf(e.out, "Using temporary database: %s\n", db.Path)
	} else if cfg.Driver == config.DriverMySQL {
		infoColor.Fprintf(e.out, "Connected to the MySQL database: %s\n", cfg.Database)
	} else {
		infoColor.Fprintf(e.out, "Opening database: %s\n", db.Path)
	}

	ingest(ctx, db, cfg, table, e)

	columns, err := db.Columns(ctx, table)
	if err != nil {
		errorColor.Fprintf(e.out, "Error retrieving table metadata: %v\n", err)
		e.log.Errorw("metadata snapshot failed", "table", table, "error", err)
	}

	generator := e.generator
	if generator == nil {
		generator = llm.NewClient(llm.Options{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		})
	}

	session := &assistant.Session{
		Store:     db,
		Generator: generator,
		Runner: &visualize.PythonRunner{
			Interpreter: cfg.Python,
			EngineURL:   db.EngineURL(),
			Dir:         cfg.ChartDir,
			Stdout:      e.out,
			Stderr:      e.out,
		},
		Context:    prompt.BuildContext(table, columns),
		ExportPath: cfg.OutputFile,
		Out:        e.out,
		Log:        e.log,
	}

	if cfg.Suggest {
		questions, err := session.Suggest(ctx, suggestionCount)
		if err != nil {
			e.log.Errorw("question suggestions failed", "error", err)
		}
		e.log.Debugw("suggested questions", "questions", questions)
	}

	return session.Run(ctx, userPrompt{console: e.in, prompt: color.CyanString("User: ")})
}

// ingest creates the table and loads the CSV file. Failures are reported and
// the conversation still starts against whatever was loaded.
func ingest(ctx context.Context, db *database.DB, cfg *config.Config, table string, e env) {
	delimiter, _ := config.ParseDelimiter(cfg.Delimiter)

	tracker := NewProgressTracker(e.out, e.progress)
	tracker.Start(getShortPath(cfg.CSVPath) + " → " + table)

	result, err := importer.Import(ctx, db, importer.FileInput{
		FilePath:  cfg.CSVPath,
		TableName: table,
		Delimiter: delimiter,
	}, tracker.Update)
	tracker.Stop()

	if err != nil {
		errorColor.Fprintf(e.out, "Error inserting data: %v\n", err)
		fields := []interface{}{"file", cfg.CSVPath, "table", table, "error", err}
		if result != nil {
			fields = append(fields, "rows_committed", result.RowCount)
		}
		e.log.Errorw("ingestion failed", fields...)
		return
	}

	e.log.Infow("ingestion complete", "file", cfg.CSVPath, "table", table, "rows", result.RowCount, "columns", len(result.Columns))
	successColor.Fprintf(e.out, "✓ Data inserted from %s into table '%s' successfully (%d rows).\n",
		cfg.CSVPath, table, result.RowCount)
}
