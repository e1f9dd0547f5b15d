package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"yai.app/assessment-assistant/internal/chatclient"
)

const chatHelp = "Commands: /retry resend the last message, /status show connection state, /quit leave"

// chatREPL maps typed lines onto a chat session.
type chatREPL struct {
	session *chatclient.Session
	out     io.Writer
}

// handle processes one line and reports whether the user asked to leave.
func (c *chatREPL) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false
	case "/quit", "/exit":
		fmt.Fprintln(c.out, "Goodbye!")
		return true
	case "/help":
		fmt.Fprintln(c.out, gray(chatHelp))
		return false
	case "/status":
		fmt.Fprintf(c.out, "%s (failed attempts: %d)\n", c.session.Status().Label(), c.session.RetryCount())
		return false
	case "/retry":
		if !c.session.Retry() {
			fmt.Fprintln(c.out, yellow("Nothing to retry yet."))
			return false
		}
		line = c.session.Input()
		fmt.Fprintln(c.out, gray("Retrying: "+line))
	}

	c.send(ctx, line)
	return false
}

func (c *chatREPL) send(ctx context.Context, text string) {
	fmt.Fprintln(c.out, gray(chatclient.StatusConnecting.Label()))
	msg, err := c.session.SendMessage(ctx, text)
	if err != nil {
		fmt.Fprintln(c.out, red(err.Error()))
		return
	}
	if msg.IsError {
		fmt.Fprintln(c.out, red(msg.Text))
		if msg.Retryable {
			fmt.Fprintln(c.out, gray("Type /retry to try again."))
		}
		return
	}
	fmt.Fprintf(c.out, "\n%s\n\n", msg.Text)
}

func runChat(ctx context.Context, repl *chatREPL) error {
	homeDir, _ := os.UserHomeDir()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       filepath.Join(homeDir, ".yai-history"),
		InterruptPrompt:   "^C",
		EOFPrompt:         "/quit",
		HistorySearchFold: true,
		Stdin:             readline.NewCancelableStdin(os.Stdin),
		Stdout:            os.Stdout,
		Stderr:            os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()
	repl.out = rl.Stdout()

	msgs := repl.session.Messages()
	fmt.Fprintf(repl.out, "%s\n\n%s\n%s\n\n", green(repl.session.Status().Label()), msgs[0].Text, gray(chatHelp))

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				fmt.Fprintln(repl.out, "Goodbye!")
				return nil
			}
			continue
		} else if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
		if repl.handle(ctx, line) {
			return nil
		}
	}
}

func newChatCmd(a *app) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the AI learning and development assistant",
		Args:  cobra.NoArgs,
		RunE: a.guarded(func(cmd *cobra.Command, args []string) error {
			client := chatclient.NewClient(a.cfg.APIBaseURL,
				chatclient.WithHTTPClient(&http.Client{Timeout: timeout}),
				chatclient.WithHarness(a.harness),
			)
			session := chatclient.NewSession(client, a.harness)
			return runChat(cmd.Context(), &chatREPL{session: session, out: cmd.OutOrStdout()})
		}),
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "per-message request timeout")
	return cmd
}
