package tmux

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/NielsdaWheelz/ncluster/internal/errors"
	"github.com/NielsdaWheelz/ncluster/internal/exec"
	"github.com/NielsdaWheelz/ncluster/internal/naming"
)

// WindowName is the name of the single window every task session owns.
const WindowName = "0"

// Session is the handle for one task's tmux session. It knows nothing about
// whether the text it injects succeeds; completion is observed through the
// filesystem by the caller.
type Session struct {
	client Client
	id     string
	logger *slog.Logger
}

// NewSession returns a handle for the session named id. It does not touch tmux.
func NewSession(client Client, id string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{client: client, id: id, logger: logger.With("session", id)}
}

// ID returns the tmux session name.
func (s *Session) ID() string { return s.id }

// Target returns the tmux target of the session's window.
func (s *Session) Target() string { return naming.WindowTarget(s.id) }

// Create kills any previous session with the same identity and starts a fresh
// detached one. cwd may be empty.
func (s *Session) Create(ctx context.Context, cwd string) error {
	if err := s.client.KillSession(ctx, s.id); err != nil {
		return s.wrap("kill-session", err)
	}
	s.logger.Info("creating tmux session", "cwd", cwd)
	if err := s.client.NewSession(ctx, s.id, WindowName, cwd); err != nil {
		return s.wrap("new-session", err)
	}
	return nil
}

// SendKeys types text into the session's window and presses Enter.
func (s *Session) SendKeys(ctx context.Context, text string) error {
	s.logger.Debug("tmux> " + text)
	if err := s.client.SendLiteral(ctx, s.Target(), text); err != nil {
		return s.wrap("send-keys", err)
	}
	if err := s.client.SendKeys(ctx, s.Target(), []Key{KeyEnter}); err != nil {
		return s.wrap("send-keys", err)
	}
	return nil
}

// ConnectInstructions returns the command a human runs to watch the session.
func (s *Session) ConnectInstructions() string {
	return "tmux a -t " + s.id
}

// PipeOutput appends everything the window prints to logFile.
func (s *Session) PipeOutput(ctx context.Context, logFile string) error {
	cmd := "cat >> " + naming.ShellQuote(logFile)
	if err := s.client.PipePane(ctx, s.Target(), cmd); err != nil {
		return s.wrap("pipe-pane", err)
	}
	return nil
}

// Capture returns the window's scrollback.
func (s *Session) Capture(ctx context.Context) (string, error) {
	out, err := s.client.CapturePane(ctx, s.Target())
	if err != nil {
		return "", s.wrap("capture-pane", err)
	}
	return out, nil
}

// Exists reports whether the session is running.
func (s *Session) Exists(ctx context.Context) (bool, error) {
	ok, err := s.client.HasSession(ctx, s.id)
	if err != nil {
		return false, s.wrap("has-session", err)
	}
	return ok, nil
}

// Attach attaches the current terminal to the session. Returns
// E_SESSION_NOT_FOUND if the session is not running.
func (s *Session) Attach(ctx context.Context) error {
	ok, err := s.Exists(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewWithDetails(errors.ESessionNotFound,
			fmt.Sprintf("tmux session %s not found", s.id),
			map[string]string{"session": s.id})
	}
	if err := s.client.Attach(ctx, s.id); err != nil {
		return s.wrap("attach", err)
	}
	return nil
}

// wrap converts a client failure into a coded error. Context errors pass
// through unchanged.
func (s *Session) wrap(op string, err error) error {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	details := map[string]string{"op": op, "session": s.id}
	if exec.IsNotFound(err) {
		return errors.WrapWithDetails(errors.ETmuxNotInstalled, "tmux not found on PATH", err, details)
	}
	return errors.WrapWithDetails(errors.ETmuxFailed, fmt.Sprintf("tmux %s failed", op), err, details)
}
