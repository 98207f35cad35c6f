package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dl/rxmark/internal/input"
	"github.com/dl/rxmark/internal/output"
	"github.com/dl/rxmark/internal/session"
	"github.com/dl/rxmark/internal/watch"
)

// Exit codes returned by Run.
const (
	ExitMatch   = 0
	ExitNoMatch = 1
	ExitError   = 2
)

// Runner carries the process-level dependencies of a run.
type Runner struct {
	Out    io.Writer
	Stdin  io.Reader
	Logger *log.Logger
	// Terminal reports whether Out is an interactive terminal.
	Terminal bool
}

// Run executes a run with stdout, stdin and a stderr logger.
// Returns exit code: 0 = match found, 1 = no match, 2 = error.
func Run(ctx context.Context, cfg Config) int {
	level := log.WarnLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	r := &Runner{
		Out:   output.NewWriter(),
		Stdin: os.Stdin,
		Logger: log.NewWithOptions(os.Stderr, log.Options{
			Level: level,
		}),
		Terminal: output.StdoutIsTerminal(),
	}
	return r.Run(ctx, cfg)
}

// Run renders cfg once, or keeps re-rendering on subject changes in watch mode.
func (r *Runner) Run(ctx context.Context, cfg Config) int {
	logger := r.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	if cfg.Demo {
		if cfg.Pattern == "" {
			cfg.Pattern = DemoPattern
		}
		cfg.Text, cfg.HasText = DemoText, true
		cfg.Global, cfg.Multiline, cfg.IgnoreCase = true, true, false
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		return ExitError
	}

	// Determine color mode
	useColor := false
	switch cfg.Color {
	case ColorAlways:
		useColor = true
	case ColorNever:
		useColor = false
	case ColorAuto:
		useColor = r.Terminal
	}
	styles := output.NoStyles()
	if useColor {
		styles = output.NewStyles(nil)
	}

	formatter, err := output.NewFormatter(cfg.Format, styles)
	if err != nil {
		logger.Error("invalid format", "err", err)
		return ExitError
	}

	text, err := r.readSubject(cfg)
	if err != nil {
		logger.Error("cannot read subject text", "path", cfg.Path, "err", err)
		return ExitError
	}

	sess := session.New(cfg.AnnotateOptions())
	defer sess.Close()

	res, _ := sess.Update(func(in *session.Input) {
		in.Config = cfg.MatchConfig()
		in.Text = text
	})
	emitErr := r.emit(formatter, res, logger)

	if cfg.Watch {
		return r.runWatch(ctx, cfg, sess, formatter, logger)
	}
	if emitErr != nil {
		return ExitError
	}
	return exitCode(res)
}

func (r *Runner) readSubject(cfg Config) (string, error) {
	if cfg.HasText {
		return cfg.Text, nil
	}
	if cfg.Path == "" || cfg.Path == "-" {
		return input.ReadText(input.NewStreamReader(r.Stdin), "")
	}
	return input.ReadText(input.NewFileReader(input.DefaultMaxSize), cfg.Path)
}

// emit formats res and writes it to Out. Nothing is written when
// formatting fails.
func (r *Runner) emit(formatter output.Formatter, res session.Result, logger *log.Logger) error {
	if res.Err != nil {
		logger.Warn("pattern rejected", "pattern", res.Input.Config.Pattern, "err", res.Err)
	} else {
		logger.Debug("rendered", "matches", len(res.Annotation.Report), "bytes", len(res.Input.Text))
	}
	out, err := formatter.Format(nil, res)
	if err != nil {
		logger.Error("format failed", "err", err)
		return err
	}
	if _, err := r.Out.Write(out); err != nil {
		logger.Warn("write failed", "err", err)
		return err
	}
	return nil
}

func (r *Runner) runWatch(ctx context.Context, cfg Config, sess *session.Session, formatter output.Formatter, logger *log.Logger) int {
	watcher, err := watch.New(watch.DefaultDebounce)
	if err != nil {
		logger.Error("failed to create watcher", "err", err)
		return ExitError
	}
	defer watcher.Close()

	if err := watcher.Add(cfg.Path); err != nil {
		logger.Error("failed to watch", "path", cfg.Path, "err", err)
		return ExitError
	}

	reader := input.NewFileReader(input.DefaultMaxSize)
	events := watcher.Events()
	for {
		select {
		case <-ctx.Done():
			return exitCode(sess.Result())

		case evt, ok := <-events:
			if !ok {
				return exitCode(sess.Result())
			}
			if evt.Err != nil {
				logger.Warn("watch error", "err", evt.Err)
				continue
			}

			switch evt.Type {
			case watch.EventModified, watch.EventCreated:
				start := time.Now()
				text, err := input.ReadText(reader, evt.Path)
				if err != nil {
					logger.Warn("read error", "path", evt.Path, "err", err)
					continue
				}
				res, changed := sess.SetText(text)
				if !changed {
					logger.Debug("subject unchanged", "path", evt.Path)
					continue
				}
				r.clear()
				if err := r.emit(formatter, res, logger); err != nil {
					continue
				}
				logger.Debug("recomputed", "path", evt.Path, "event", evt.Type, "took", time.Since(start))

			case watch.EventDeleted:
				logger.Warn("watched file removed", "path", evt.Path)
			}
		}
	}
}

// clear wipes the previous rendering when writing to a terminal.
func (r *Runner) clear() {
	if !r.Terminal {
		return
	}
	if c, ok := r.Out.(interface{ Clear() error }); ok {
		c.Clear()
	}
}

func exitCode(res session.Result) int {
	switch {
	case res.Err != nil:
		return ExitError
	case res.Matched():
		return ExitMatch
	default:
		return ExitNoMatch
	}
}
