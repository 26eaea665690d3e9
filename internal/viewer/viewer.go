package viewer

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// Viewer opens character avatars (a local file or an image URL) outside the terminal
type Viewer struct {
	command string   // configured viewer command, empty for system default
	args    []string // additional arguments placed before the target
	logger  *slog.Logger

	// start runs the command without waiting for it
	start func(name string, args ...string) error
}

// candidateViewers are tried in order when no viewer is configured
var candidateViewers = map[string][]string{
	"darwin":  {},
	"linux":   {"feh", "eog", "sxiv"},
	"windows": {},
}

// NewViewer creates a viewer. An empty command uses a detected viewer or the system default.
func NewViewer(command string, args []string, logger *slog.Logger) *Viewer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Viewer{
		command: command,
		args:    args,
		logger:  logger,
		start:   startDetached,
	}
}

// Open shows target in the configured viewer, a detected one, or the system default
func (v *Viewer) Open(target string) error {
	// Tier 1: User configured a specific viewer
	if v.command != "" {
		if _, err := exec.LookPath(v.command); err != nil {
			return fmt.Errorf("viewer %q not found: %w", v.command, err)
		}
		v.logger.Info("opening image", "command", v.command, "args", v.args, "target", target)
		return v.start(v.command, append(append([]string{}, v.args...), target)...)
	}

	// Tier 2: First installed candidate
	for _, name := range candidateViewers[runtime.GOOS] {
		if _, err := exec.LookPath(name); err != nil {
			v.logger.Debug("viewer not available", "viewer", name)
			continue
		}
		if err := v.start(name, target); err == nil {
			v.logger.Info("opened image with detected viewer", "viewer", name)
			return nil
		}
	}

	// Tier 3: System default handler
	name, args := defaultHandler(target)
	v.logger.Info("opening image with system default", "os", runtime.GOOS, "target", target)
	return v.start(name, args...)
}

// defaultHandler returns the platform's "open with default app" command
func defaultHandler(target string) (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "cmd", []string{"/c", "start", "", target}
	default:
		return "xdg-open", []string{target}
	}
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the child once it exits
	go func() { _ = cmd.Wait() }()
	return nil
}
