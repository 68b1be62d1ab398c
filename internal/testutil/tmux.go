package testutil

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"testing"

	"github.com/NielsdaWheelz/ncluster/internal/tmux"
)

// ShellClient is a tmux.Client that runs each line typed into a session with
// sh -c, one at a time, in the directory the session was created in.
type ShellClient struct {
	mu       sync.Mutex
	sessions map[string]*shellSession

	Killed   []string
	Created  []string
	Sent     []string
	Piped    []string
	Attached []string

	// FailNew makes NewSession fail.
	FailNew bool
}

var _ tmux.Client = (*ShellClient)(nil)

type shellSession struct {
	cwd     string
	pending strings.Builder
	queue   chan string
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewShellClient returns a ShellClient whose sessions are stopped when t ends.
func NewShellClient(t *testing.T) *ShellClient {
	c := &ShellClient{sessions: make(map[string]*shellSession)}
	t.Cleanup(c.shutdown)
	return c
}

func sessionOf(target string) string {
	if i := strings.LastIndex(target, ":"); i >= 0 {
		return target[:i]
	}
	return target
}

func (c *ShellClient) HasSession(ctx context.Context, name string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[name]
	return ok, nil
}

func (c *ShellClient) NewSession(ctx context.Context, name, window, cwd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailNew {
		return fmt.Errorf("tmux new-session failed (exit=1): no server")
	}
	if _, ok := c.sessions[name]; ok {
		return fmt.Errorf("tmux new-session failed (exit=1): duplicate session: %s", name)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s := &shellSession{cwd: cwd, queue: make(chan string, 64), cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		for text := range s.queue {
			cmd := exec.CommandContext(runCtx, "sh", "-c", text)
			cmd.Dir = s.cwd
			_ = cmd.Run()
		}
	}()
	c.sessions[name] = s
	c.Created = append(c.Created, name)
	return nil
}

func (c *ShellClient) KillSession(ctx context.Context, name string) error {
	c.mu.Lock()
	s, ok := c.sessions[name]
	delete(c.sessions, name)
	c.Killed = append(c.Killed, name)
	c.mu.Unlock()

	if ok {
		s.stop()
	}
	return nil
}

func (s *shellSession) stop() {
	s.cancel()
	close(s.queue)
	<-s.done
}

func (c *ShellClient) SendKeys(ctx context.Context, target string, keys []tmux.Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[sessionOf(target)]
	if !ok {
		return fmt.Errorf("tmux send-keys failed (exit=1): can't find pane: %s", target)
	}
	for _, k := range keys {
		if k == tmux.KeyEnter {
			line := s.pending.String()
			s.pending.Reset()
			c.Sent = append(c.Sent, line)
			s.queue <- line
		}
	}
	return nil
}

func (c *ShellClient) SendLiteral(ctx context.Context, target, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[sessionOf(target)]
	if !ok {
		return fmt.Errorf("tmux send-keys failed (exit=1): can't find pane: %s", target)
	}
	s.pending.WriteString(text)
	return nil
}

func (c *ShellClient) Attach(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Attached = append(c.Attached, name)
	return nil
}

func (c *ShellClient) CapturePane(ctx context.Context, target string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.Sent, "\n") + "\n", nil
}

func (c *ShellClient) PipePane(ctx context.Context, target, shellCmd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Piped = append(c.Piped, target+" "+shellCmd)
	return nil
}

// SentCount returns the number of lines typed into any session.
func (c *ShellClient) SentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Sent)
}

func (c *ShellClient) shutdown() {
	c.mu.Lock()
	sessions := c.sessions
	c.sessions = make(map[string]*shellSession)
	c.mu.Unlock()
	for _, s := range sessions {
		s.stop()
	}
}
