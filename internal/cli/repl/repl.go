package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/yndnr/evalboard/internal/cli/output"
	"github.com/yndnr/evalboard/internal/core/domain"
	"github.com/yndnr/evalboard/internal/core/session"
)

// DefaultPrompt is printed before every input line.
const DefaultPrompt = "evalboard> "

// Channel is the connection control surface used by the connect,
// disconnect and status commands.
type Channel interface {
	Connect(ctx context.Context) error
	Disconnect()
	State() domain.ConnectionState
	Attempts() int
}

var errNoChannel = errors.New("no analysis channel configured")

type command struct {
	usage string
	help  string
	run   func(r *REPL, ctx context.Context, args []string) error
}

var commandTable map[string]command

var aliases = map[string]string{
	"n":       "next",
	"p":       "prev",
	"play":    "move",
	"analyze": "refresh",
	"eval":    "result",
	"new":     "reset",
}

func init() {
	commandTable = map[string]command{
		"load":       {"load <file>", "load a PGN file", (*REPL).cmdLoad},
		"pgn":        {"pgn <movetext>", "load a game given inline", (*REPL).cmdPGN},
		"goto":       {"goto <ply>", "jump to a ply (0 is the start)", (*REPL).cmdGoto},
		"first":      {"first", "jump to the start", (*REPL).cmdFirst},
		"last":       {"last", "jump to the final position", (*REPL).cmdLast},
		"next":       {"next", "step forward one ply", (*REPL).cmdNext},
		"prev":       {"prev", "step back one ply", (*REPL).cmdPrev},
		"move":       {"move <move>", "play a move (e2e4, Nf3, O-O)", (*REPL).cmdMove},
		"refresh":    {"refresh", "analyze the current position again", (*REPL).cmdRefresh},
		"result":     {"result", "show the latest analysis", (*REPL).cmdResult},
		"moves":      {"moves", "show the loaded game", (*REPL).cmdMoves},
		"history":    {"history", "show moves played directly", (*REPL).cmdHistory},
		"status":     {"status", "show session and connection state", (*REPL).cmdStatus},
		"connect":    {"connect", "open the analysis channel", (*REPL).cmdConnect},
		"disconnect": {"disconnect", "close the analysis channel", (*REPL).cmdDisconnect},
		"reset":      {"reset", "discard the game and start over", (*REPL).cmdReset},
		"help":       {"help [prefix]", "list commands", (*REPL).cmdHelp},
	}
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	completer *Completer
	history   *History
	formatter output.Formatter

	session *session.Session
	channel Channel

	outMu sync.Mutex
}

// Option configures a REPL.
type Option func(*REPL)

// WithInput sets the input reader.
func WithInput(in io.Reader) Option {
	return func(r *REPL) { r.input = in }
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(r *REPL) { r.output = w }
}

// WithChannel attaches the connection manager.
func WithChannel(c Channel) Option {
	return func(r *REPL) { r.channel = c }
}

// WithFormatter sets the formatter used for command output.
func WithFormatter(f output.Formatter) Option {
	return func(r *REPL) { r.formatter = f }
}

// WithHistory sets the command history.
func WithHistory(h *History) Option {
	return func(r *REPL) { r.history = h }
}

// WithPrompt overrides the prompt.
func WithPrompt(p string) Option {
	return func(r *REPL) { r.prompt = p }
}

// New creates a REPL over sess.
func New(sess *session.Session, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    DefaultPrompt,
		completer: NewCompleter(),
		history:   NewHistory(""),
		formatter: output.NewFormatter(output.FormatText),
		session:   sess,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// History returns the command history.
func (r *REPL) History() *History {
	return r.history
}

// Run starts the REPL loop. It returns on exit, quit, end of input or
// when ctx is cancelled.
func (r *REPL) Run(ctx context.Context) error {
	reader := bufio.NewReader(r.input)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		r.printf("%s", r.prompt)

		line, err := reader.ReadString('\n')
		if err == io.EOF && strings.TrimSpace(line) == "" {
			r.printf("\n")
			return nil
		}
		if err != nil && err != io.EOF {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.history.Add(line)

		if line == "exit" || line == "quit" {
			return nil
		}

		if execErr := r.Execute(ctx, line); execErr != nil {
			r.printf("Error: %v\n", execErr)
		}
		if err == io.EOF {
			r.printf("\n")
			return nil
		}
	}
}

// Execute runs one command line. Input that is not a command is played as
// a move.
func (r *REPL) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name := strings.ToLower(fields[0])
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	cmd, ok := commandTable[name]
	if !ok {
		if len(fields) == 1 {
			return r.cmdMove(ctx, fields)
		}
		return fmt.Errorf("unknown command %q (try help)", fields[0])
	}
	return cmd.run(r, ctx, fields[1:])
}

// Notify prints an analysis result for the current position. It is safe
// to call from the connection manager's callback goroutine.
func (r *REPL) Notify(res domain.AnalysisResult) {
	nav := r.session.Navigator()
	st := nav.Status()
	report := output.NewReport(nav.Position(), &st, res)

	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintln(r.output)
	if err := r.formatter.Format(r.output, report); err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
	}
}

func (r *REPL) cmdLoad(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: load <file>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	if err := r.session.Load(ctx, string(data)); err != nil {
		return err
	}
	return r.showMoves()
}

func (r *REPL) cmdPGN(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: pgn <movetext>")
	}
	if err := r.session.Load(ctx, strings.Join(args, " ")); err != nil {
		return err
	}
	return r.showMoves()
}

func (r *REPL) cmdGoto(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: goto <ply>")
	}
	ply, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid ply %q", args[0])
	}
	if err := r.session.Goto(ctx, ply-1); err != nil {
		return err
	}
	return r.showMoves()
}

func (r *REPL) cmdFirst(ctx context.Context, _ []string) error {
	if err := r.session.Goto(ctx, -1); err != nil {
		return err
	}
	return r.showMoves()
}

func (r *REPL) cmdLast(ctx context.Context, _ []string) error {
	if err := r.session.Goto(ctx, r.session.Navigator().Moves().Len()-1); err != nil {
		return err
	}
	return r.showMoves()
}

func (r *REPL) cmdNext(ctx context.Context, _ []string) error {
	if err := r.session.Next(ctx); err != nil {
		return err
	}
	return r.showMoves()
}

func (r *REPL) cmdPrev(ctx context.Context, _ []string) error {
	if err := r.session.Previous(ctx); err != nil {
		return err
	}
	return r.showMoves()
}

func (r *REPL) cmdMove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: move <move>")
	}
	res, err := r.session.Play(ctx, args[0])
	if err != nil {
		return err
	}
	line := "played " + res.Move.SAN
	if res.Status.Checkmate {
		line += " (checkmate)"
	} else if res.Status.Draw {
		line += " (draw: " + res.Status.Method + ")"
	}
	return r.show(line)
}

func (r *REPL) cmdRefresh(ctx context.Context, _ []string) error {
	return r.session.Refresh(ctx)
}

func (r *REPL) cmdResult(_ context.Context, _ []string) error {
	res, ok := r.session.Latest()
	if !ok {
		if r.session.Pending() {
			return r.show("analysis pending")
		}
		return r.show("no analysis yet")
	}
	nav := r.session.Navigator()
	st := nav.Status()
	report := output.NewReport(nav.Position(), &st, res)
	if ind, ok := r.session.Indicator(); ok {
		report.Indicator = &ind
	} else {
		report.Indicator = nil
	}
	return r.show(report)
}

func (r *REPL) cmdMoves(_ context.Context, _ []string) error {
	return r.showMoves()
}

func (r *REPL) cmdHistory(_ context.Context, _ []string) error {
	played := r.session.Navigator().History()
	if len(played) == 0 {
		return r.show("(no moves played)")
	}
	return r.show(strings.Join(played, " "))
}

func (r *REPL) cmdStatus(_ context.Context, _ []string) error {
	nav := r.session.Navigator()
	view := output.StateView{
		Position:   nav.Position(),
		Status:     nav.Status(),
		Cursor:     nav.Cursor(),
		Plies:      nav.Moves().Len(),
		History:    nav.History(),
		Connection: "none",
		Pending:    r.session.Pending(),
	}
	if r.channel != nil {
		view.Connection = r.channel.State().String()
		view.Attempts = r.channel.Attempts()
	}
	return r.show(view)
}

func (r *REPL) cmdConnect(ctx context.Context, _ []string) error {
	if r.channel == nil {
		return errNoChannel
	}
	if err := r.channel.Connect(ctx); err != nil {
		return err
	}
	return r.show("connected")
}

func (r *REPL) cmdDisconnect(_ context.Context, _ []string) error {
	if r.channel == nil {
		return errNoChannel
	}
	r.channel.Disconnect()
	return r.show("disconnected")
}

func (r *REPL) cmdReset(ctx context.Context, _ []string) error {
	if err := r.session.Reset(ctx); err != nil {
		return err
	}
	return r.show("new game")
}

func (r *REPL) cmdHelp(_ context.Context, args []string) error {
	prefix := ""
	if len(args) > 0 {
		prefix = strings.ToLower(args[0])
	}
	matches := r.completer.Complete(prefix)
	if len(matches) == 0 {
		return fmt.Errorf("no command matches %q", prefix)
	}
	t := &output.Table{}
	for _, name := range matches {
		if cmd, ok := commandTable[name]; ok {
			t.AddRow(cmd.usage, cmd.help)
		} else {
			t.AddRow(name, "leave the session")
		}
	}
	r.outMu.Lock()
	defer r.outMu.Unlock()
	return t.Render(r.output)
}

func (r *REPL) showMoves() error {
	nav := r.session.Navigator()
	if err := r.show(output.NewMoveListView(nav.Moves(), nav.Cursor())); err != nil {
		return err
	}
	return r.show(nav.Position().String())
}

func (r *REPL) show(v any) error {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	return r.formatter.Format(r.output, v)
}

func (r *REPL) printf(format string, args ...any) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintf(r.output, format, args...)
}
