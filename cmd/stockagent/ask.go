package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tailored-agentic-units/stockagent/kernel"
	"github.com/tailored-agentic-units/stockagent/outcome"
	"github.com/tailored-agentic-units/stockagent/server"
)

// asker runs one query within a session.
type asker interface {
	Invoke(ctx context.Context, sessionID, query string) (outcome.Outcome, error)
	Stream(ctx context.Context, sessionID, query string) iter.Seq2[kernel.ProgressEvent, error]
	Reset(ctx context.Context, sessionID string) error
}

// resetCommand clears the session when entered on its own line.
const resetCommand = "/reset"

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Ask the agent a question",
	Long: `Runs a query against a local kernel, or a running server with --remote.
With no query, reads one query per line from stdin within a single session;
a line reading /reset clears that session's history.`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().String("session", "", "Session ID (default: a new random ID)")
	askCmd.Flags().String("remote", "", "Base URL of a running stockagent server")
	askCmd.Flags().Bool("stream", true, "Print progress updates while the agent works")
	askCmd.Flags().Bool("tool-calls", false, "Print the tool calls made (local, non-streaming only)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := setupLogger(cmd, os.Stderr); err != nil {
		return err
	}

	sessionID, _ := cmd.Flags().GetString("session")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	remote, _ := cmd.Flags().GetString("remote")
	stream, _ := cmd.Flags().GetBool("stream")
	showCalls, _ := cmd.Flags().GetBool("tool-calls")

	var (
		a asker
		k *kernel.Kernel
	)
	if remote != "" {
		a = server.NewClient(nil, remote)
	} else {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Agent.APIKey == "" {
			return errMissingAPIKey
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose {
			cfg.Observers = []string{"noop"}
		}
		if k, err = kernel.New(cfg); err != nil {
			return err
		}
		a = k
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	p := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())

	ask := func(query string) error {
		switch {
		case stream:
			return p.stream(a.Stream(ctx, sessionID, query))
		case showCalls && k != nil:
			result, err := k.Run(ctx, sessionID, query)
			if err != nil {
				return err
			}
			p.outcome(result.Outcome)
			p.toolCalls(result)
			return nil
		default:
			out, err := a.Invoke(ctx, sessionID, query)
			if err != nil {
				return err
			}
			p.outcome(out)
			return nil
		}
	}

	if len(args) > 0 {
		return ask(strings.Join(args, " "))
	}

	reset := func() error {
		if err := a.Reset(ctx, sessionID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "session %s cleared\n", sessionID)
		return nil
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "session %s\n", sessionID)
	return readQueries(ctx, cmd.InOrStdin(), cmd.ErrOrStderr(), ask, reset)
}

// readQueries calls ask for each non-blank line of r, and reset for each
// resetCommand line.
func readQueries(ctx context.Context, r io.Reader, prompt io.Writer, ask func(string) error, reset func() error) error {
	interactive := false
	if f, ok := r.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}

	scanner := bufio.NewScanner(r)
	for {
		if interactive {
			fmt.Fprint(prompt, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		run := func() error { return ask(query) }
		if query == resetCommand {
			run = reset
		}
		if err := run(); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// printer writes agent output, rendering markdown on terminals.
type printer struct {
	out    io.Writer
	errOut io.Writer
	render func(string) (string, error)
}

func newPrinter(out, errOut io.Writer) *printer {
	p := &printer{out: out, errOut: errOut}

	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) || os.Getenv("NO_COLOR") != "" {
		return p
	}

	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	if r, err := glamour.NewTermRenderer(opts...); err == nil {
		p.render = r.Render
	}
	return p
}

func (p *printer) content(s string) {
	if p.render != nil {
		if rendered, err := p.render(s); err == nil {
			fmt.Fprint(p.out, rendered)
			return
		}
	}
	fmt.Fprintln(p.out, s)
}

func (p *printer) stream(events iter.Seq2[kernel.ProgressEvent, error]) error {
	for event, err := range events {
		if err != nil {
			return err
		}
		if !event.Final() {
			fmt.Fprintln(p.errOut, event.Content)
			continue
		}
		if event.RequireUserInput {
			fmt.Fprintln(p.errOut, "[needs input]")
		}
		p.content(event.Content)
	}
	return nil
}

func (p *printer) outcome(out outcome.Outcome) {
	if out.Kind != outcome.Completed {
		fmt.Fprintf(p.errOut, "[%s]\n", out.Kind)
	}
	p.content(out.Message)
}

func (p *printer) toolCalls(result *kernel.Result) {
	if len(result.ToolCalls) > 0 {
		fmt.Fprintln(p.out, "\nTool Calls:")
		for i, tc := range result.ToolCalls {
			fmt.Fprintf(p.out, "  [%d] %s(%s)\n", i+1, tc.Name, tc.Arguments)
			switch {
			case tc.IsError:
				fmt.Fprintf(p.out, "    error: %s\n", tc.Result)
			case len(tc.Result) > 200:
				fmt.Fprintf(p.out, "    -> %s...\n", tc.Result[:200])
			default:
				fmt.Fprintf(p.out, "    -> %s\n", tc.Result)
			}
		}
	}
	fmt.Fprintf(p.out, "\nIterations: %d\n", result.Iterations)
}
