package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/michaelbrown/icebreaker/internal/icebreaker"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"repl"},
	Short:   "Generate icebreakers for names typed at a prompt",
	Long: `Start a prompt where each line is a person's name. Lookups are cached for
the whole session, so asking about the same person twice skips the search.

Examples:
  icebreaker interactive
  icebreaker interactive --provider claude`,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.openStore()
	if err != nil {
		a.logger.Warn("history unavailable", "error", err)
	}

	p, err := a.pipeline(true, printToolCall)
	if err != nil {
		return err
	}

	fmt.Printf("Icebreaker - Interactive\n")
	fmt.Printf("Mode: %s | Provider: %s | Model: %s\n", a.mode, p.provider, p.model)
	fmt.Printf("Type a name, /help for commands, /quit to exit\n\n")

	home, _ := os.UserHomeDir()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36mname>\033[0m ",
		HistoryFile:     filepath.Join(home, ".icebreaker", "history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	// Per-request cancellation: Ctrl+C cancels the active run,
	// not the whole app. A second Ctrl+C while idle exits.
	var reqCancel context.CancelFunc
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			if reqCancel != nil {
				reqCancel()
			}
		}
	}()

	for {
		input, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		// Handle slash commands
		if strings.HasPrefix(input, "/") {
			if handleCommand(input, a) {
				return nil
			}
			continue
		}

		reqCtx, cancel := context.WithCancel(context.Background())
		reqCancel = cancel

		err = generateAndRecord(reqCtx, a, p, store, icebreaker.Request{Name: input})
		wasInterrupted := reqCtx.Err() != nil
		cancel()
		reqCancel = nil

		if err != nil {
			if wasInterrupted {
				fmt.Println("\n(interrupted)")
				continue
			}
			fmt.Printf("\n\033[31merror: %s\033[0m\n\n", err)
		}
	}
}

// handleCommand runs a slash command and reports whether to exit.
func handleCommand(input string, a *app) bool {
	switch strings.ToLower(strings.Fields(input)[0]) {
	case "/quit", "/exit", "/q":
		fmt.Println("Goodbye!")
		return true
	case "/providers":
		fmt.Println(strings.Join(a.downloader.Registry().Names(), ", "))
		fmt.Println()
	case "/mode":
		fmt.Println(a.mode)
		fmt.Println()
	case "/help":
		fmt.Println("Commands:")
		fmt.Println("  /help       - Show this help")
		fmt.Println("  /providers  - List profile providers")
		fmt.Println("  /mode       - Show the acquisition mode")
		fmt.Println("  /quit       - Exit")
		fmt.Println()
	default:
		fmt.Printf("Unknown command: %s (try /help)\n\n", input)
	}
	return false
}

