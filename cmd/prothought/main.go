// prothought: a personal command-line journal.
//
// Thoughts are appended to a local SQLite file with inline hashtags indexed
// as markers. They can be listed by period and marker, struck through when
// retracted, or summarized through an OpenAI-compatible chat endpoint.
//
// Usage:
//
//	prothought <thought text...>
//	prothought summarize [period] [#marker]
//	prothought conclude [period] [#marker]
//	prothought nvm
//	prothought serve
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/prothought/internal/config"
	"github.com/HendryAvila/prothought/internal/journal"
	"github.com/HendryAvila/prothought/internal/llm"
	"github.com/HendryAvila/prothought/internal/logger"
	"github.com/HendryAvila/prothought/internal/server"
	"github.com/HendryAvila/prothought/internal/skills"
)

// Exit codes: 1 covers usage errors, invalid periods and storage failures;
// 2 marks a summarization failure so scripts can tell the two apart.
const (
	exitFailure       = 1
	exitSummarization = 2
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitFailure)
	}

	if os.Args[1] == "--version" || os.Args[1] == "-v" {
		fmt.Printf("prothought v%s\n", server.Version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(exitFailure)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "serve":
		if err := runServe(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitFailure)
		}

	case "summarise", "summarize":
		periodArgs, marker := splitMarkerArg(args)
		runWithStore(cfg, func(store *journal.Store) int {
			return listThoughts(store, periodArgs, marker)
		})

	case "conclude":
		periodArgs, marker := splitMarkerArg(args)
		runWithStore(cfg, func(store *journal.Store) int {
			return concludeThoughts(cfg, store, periodArgs, marker)
		})

	case "nvm":
		runWithStore(cfg, retractLast)

	case "init-skills":
		n, err := skills.Install()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error installing skills: %v\n", err)
			os.Exit(exitFailure)
		}
		fmt.Printf("Successfully copied %d skill(s).\n", n)

	case "--help", "-h", "help":
		printUsage()

	default:
		text := strings.TrimSpace(strings.Join(os.Args[1:], " "))
		if text == "" {
			printUsage()
			os.Exit(exitFailure)
		}
		runWithStore(cfg, func(store *journal.Store) int {
			return logThought(store, text)
		})
	}
}

// runWithStore opens the journal store, runs fn, closes the store, and exits
// with fn's code when non-zero.
func runWithStore(cfg *config.Config, fn func(*journal.Store) int) {
	store, err := journal.New(journal.Config{DBPath: cfg.DBPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
		os.Exit(exitFailure)
	}

	code := fn(store)
	store.Close()
	if code != 0 {
		os.Exit(code)
	}
}

func logThought(store *journal.Store, text string) int {
	th, err := store.Append(text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error logging thought: %v\n", err)
		return exitFailure
	}

	markerInfo := ""
	if len(th.Markers) > 0 {
		markerInfo = " with markers: #" + strings.Join(th.Markers, ", #")
	}
	fmt.Printf("Saved thought at %s%s\n", th.Timestamp, markerInfo)
	return 0
}

func listThoughts(store *journal.Store, periodArgs []string, marker string) int {
	thoughts, err := store.ListForPeriod(periodArgs, marker)
	if err != nil {
		reportPeriodOrStorageError(err)
		return exitFailure
	}

	if len(thoughts) == 0 {
		markerMsg := ""
		if marker != "" {
			markerMsg = fmt.Sprintf(" with marker #%s", marker)
		}
		fmt.Printf("No thoughts found for that period%s.\n", markerMsg)
		return 0
	}

	for _, t := range thoughts {
		fmt.Printf("[%s] %s\n", t.Timestamp, t.Text)
	}
	return 0
}

func concludeThoughts(cfg *config.Config, store *journal.Store, periodArgs []string, marker string) int {
	thoughts, err := store.ListForPeriod(periodArgs, marker)
	if err != nil {
		reportPeriodOrStorageError(err)
		return exitFailure
	}

	client := llm.NewClient(llm.Config{
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
		APIKey:  cfg.LLMAPIKey,
		Timeout: cfg.LLMTimeout,
	})

	digest, err := llm.Summarize(context.Background(), client, thoughts)
	if errors.Is(err, llm.ErrNothingToSummarize) {
		fmt.Println("Nothing to summarize for that period.")
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error summarizing thoughts: %v\n", err)
		return exitSummarization
	}

	fmt.Println(digest)
	return 0
}

func retractLast(store *journal.Store) int {
	res, err := store.RetractLast()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retracting thought: %v\n", err)
		return exitFailure
	}

	switch res.Status {
	case journal.NoThoughts:
		fmt.Println("No thoughts to retract.")
	case journal.AlreadyRetracted:
		fmt.Println("Last thought is already marked as nvm.")
	default:
		fmt.Printf("Marked last thought from %s as nvm.\n", res.Timestamp)
	}
	return 0
}

func runServe(cfg *config.Config) error {
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	s, cleanup, err := server.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	return mcpserver.ServeStdio(s)
}

// splitMarkerArg separates the period tokens from the marker filter: an
// argument starting with "#" is always the marker, regardless of position.
func splitMarkerArg(args []string) ([]string, string) {
	var periodArgs []string
	var marker string

	for _, arg := range args {
		if strings.HasPrefix(arg, "#") {
			marker = strings.TrimPrefix(arg, "#")
		} else {
			periodArgs = append(periodArgs, arg)
		}
	}
	return periodArgs, marker
}

func reportPeriodOrStorageError(err error) {
	if errors.Is(err, journal.ErrInvalidPeriod) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Supported periods: %s\n", strings.Join(journal.PeriodKeywords, ", "))
		return
	}
	fmt.Fprintf(os.Stderr, "Error listing thoughts: %v\n", err)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  prothought <thought text...>
  prothought nvm
  prothought summarise [today|yesterday|lastweek|lastmonth|YYYY-MM-DD] [#marker]
  prothought summarize [today|yesterday|lastweek|lastmonth|YYYY-MM-DD] [#marker]
  prothought conclude  [today|yesterday|lastweek|lastmonth|YYYY-MM-DD] [#marker]
  prothought init-skills
  prothought serve
  prothought --version

Examples:
  prothought Working on the new feature #work #project
  prothought summarize today #work
  prothought conclude lastweek #personal
  prothought init-skills
`)
}
