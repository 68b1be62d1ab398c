package cobra

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NielsdaWheelz/ncluster/internal/config"
	"github.com/NielsdaWheelz/ncluster/internal/errors"
)

// executeCmd runs the root command with args and returns stdout, stderr and the error.
func executeCmd(args ...string) (string, string, error) {
	globalOpts = GlobalOpts{}
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRoot_Help(t *testing.T) {
	stdout, _, err := executeCmd("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"ncluster", "task", "job", "exec", "attach", "tail"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestRoot_Version(t *testing.T) {
	stdout, _, err := executeCmd("version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(stdout, "ncluster ") {
		t.Errorf("version output = %q, want prefix %q", stdout, "ncluster ")
	}
}

func TestRoot_UnknownCommand(t *testing.T) {
	_, _, err := executeCmd("frobnicate")
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("error = %q, want unknown command", err)
	}
}

func TestAttachCmd_MissingArg(t *testing.T) {
	_, _, err := executeCmd("attach")
	if err == nil {
		t.Fatal("expected error for missing task argument")
	}
	if !strings.Contains(err.Error(), "accepts 1 arg") {
		t.Errorf("error = %q, want arg count error", err)
	}
}

func TestJobCmd_RequiresName(t *testing.T) {
	_, _, err := executeCmd("job", "--tasks", "2")
	if err == nil {
		t.Fatal("expected error for missing --name")
	}
	if !strings.Contains(err.Error(), "name") {
		t.Errorf("error = %q, want mention of name", err)
	}
}

func TestExecCmd_RequiresCommand(t *testing.T) {
	_, _, err := executeCmd("exec", "--name", "demo")
	if err == nil {
		t.Fatal("expected error for missing command")
	}
}

func TestRoot_InvalidConfig(t *testing.T) {
	for _, name := range []string{config.EnvLogDir, config.EnvTaskDir, config.EnvScratchDir} {
		t.Setenv(name, "")
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("no_such_key: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, _, err := executeCmd("--config", path, "kill", "demo")
	if errors.GetCode(err) != errors.EInvalidConfig {
		t.Fatalf("code = %q, want %q (err=%v)", errors.GetCode(err), errors.EInvalidConfig, err)
	}
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish"} {
		t.Run(shell, func(t *testing.T) {
			stdout, _, err := executeCmd("completion", shell)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(stdout, "ncluster") {
				t.Errorf("%s completion does not mention ncluster", shell)
			}
		})
	}
}

func TestCompletion_UnsupportedShell(t *testing.T) {
	_, _, err := executeCmd("completion", "tcsh")
	if errors.GetCode(err) != errors.EUsage {
		t.Fatalf("code = %q, want %q", errors.GetCode(err), errors.EUsage)
	}
}

func TestCompletion_Output(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "_ncluster")
	_, stderr, err := executeCmd("completion", "zsh", "--output", out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(data) == 0 {
		t.Error("completion file is empty")
	}
	if !strings.Contains(stderr, "wrote zsh completion") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug logged without verbose: %q", buf.String())
	}
	NewLogger(&buf, true).Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug not logged with verbose: %q", buf.String())
	}
	if !NewLogger(&buf, false).Enabled(context.Background(), slog.LevelWarn) {
		t.Error("warn should be enabled by default")
	}
}

func TestNormalizeFlagName(t *testing.T) {
	cmd := NewRootCmd()
	task, _, err := cmd.Find([]string{"task"})
	if err != nil {
		t.Fatal(err)
	}
	if err := task.ParseFlags([]string{"--install_script", "/tmp/x.sh"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	if got, _ := task.Flags().GetString("install-script"); got != "/tmp/x.sh" {
		t.Errorf("install-script = %q, want %q", got, "/tmp/x.sh")
	}
}
