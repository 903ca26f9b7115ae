// Package firewall builds and runs the console's fixed catalogue of ufw
// commands. Every externally supplied token is shape-validated and
// sanitized before it becomes part of an argument vector.
package firewall

import (
	"context"
	"strconv"
	"strings"

	"github.com/brandyscotchland/timminet/hostexec"
)

// DefaultLogPath is where ufw writes its log on most distributions.
const DefaultLogPath = "/var/log/ufw.log"

// logTailLines bounds how much of the firewall log one request returns.
const logTailLines = 100

// Manager exposes the firewall operations. Mutating operations expect
// the caller to already hold the admin role; the role gate lives in the
// session layer.
type Manager struct {
	run hostexec.Runner
	// LogPath overrides DefaultLogPath.
	LogPath string
}

// NewManager returns a Manager executing through run.
func NewManager(run hostexec.Runner) *Manager {
	return &Manager{run: run}
}

// Status is the parsed outcome of `ufw status verbose`.
type Status struct {
	Active bool   `json:"active"`
	Rules  []Rule `json:"rules"`
	Raw    string `json:"raw"`
}

// Rule is the best-effort parse of one rule line. Lines that do not
// match the expected shape are preserved verbatim in Status.Raw.
type Rule struct {
	Port     string `json:"port"`
	Action   string `json:"action"`
	From     string `json:"from"`
	Protocol string `json:"protocol"`
	Comment  string `json:"comment"`
}

// NumberedRule is one entry of `ufw status numbered`.
type NumberedRule struct {
	Number int    `json:"number"`
	Rule   string `json:"rule"`
	Raw    string `json:"raw"`
}

// LogEntry is the best-effort parse of one firewall log line; lines that
// cannot be split keep only Raw.
type LogEntry struct {
	Timestamp string `json:"timestamp,omitempty"`
	Message   string `json:"message,omitempty"`
	Raw       string `json:"raw"`
}

// CommandOutput carries the raw text of a mutating command back to the
// caller.
type CommandOutput struct {
	Output string `json:"output"`
}

// Status reports whether the firewall is active together with the parsed
// rule table.
func (m *Manager) Status(ctx context.Context) (*Status, error) {
	res, err := m.run.Run(ctx, "ufw", "status", "verbose")
	if err != nil {
		return nil, err
	}
	return parseStatusVerbose(res.Stdout), nil
}

// Rules returns the numbered rule listing used for deletions.
func (m *Manager) Rules(ctx context.Context) ([]NumberedRule, error) {
	res, err := m.run.Run(ctx, "ufw", "status", "numbered")
	if err != nil {
		return nil, err
	}
	return parseNumbered(res.Stdout), nil
}

// Enable turns the firewall on. The --force flag replaces the
// interactive confirmation prompt.
func (m *Manager) Enable(ctx context.Context) (*CommandOutput, error) {
	res, err := m.run.Run(ctx, "ufw", "--force", "enable")
	if err != nil {
		return nil, err
	}
	return &CommandOutput{Output: res.Stdout}, nil
}

// Disable turns the firewall off.
func (m *Manager) Disable(ctx context.Context) (*CommandOutput, error) {
	res, err := m.run.Run(ctx, "ufw", "disable")
	if err != nil {
		return nil, err
	}
	return &CommandOutput{Output: res.Stdout}, nil
}

// Reset restores the firewall to its installation defaults.
func (m *Manager) Reset(ctx context.Context) (*CommandOutput, error) {
	res, err := m.run.Run(ctx, "ufw", "--force", "reset")
	if err != nil {
		return nil, err
	}
	return &CommandOutput{Output: res.Stdout}, nil
}

// Allow adds an allow rule for port, optionally restricted to a protocol
// and a source address.
func (m *Manager) Allow(ctx context.Context, port, protocol, from string) (*CommandOutput, error) {
	return m.addRule(ctx, "allow", port, protocol, from)
}

// Deny adds a deny rule for port, optionally restricted to a protocol
// and a source address.
func (m *Manager) Deny(ctx context.Context, port, protocol, from string) (*CommandOutput, error) {
	return m.addRule(ctx, "deny", port, protocol, from)
}

func (m *Manager) addRule(ctx context.Context, action, port, protocol, from string) (*CommandOutput, error) {
	port = hostexec.Sanitize(strings.TrimSpace(port))
	protocol = hostexec.Sanitize(strings.TrimSpace(protocol))
	from = hostexec.Sanitize(strings.TrimSpace(from))

	if _, err := parsePort(port); err != nil {
		return nil, err
	}
	if protocol != "" && protocol != "tcp" && protocol != "udp" {
		return nil, hostexec.InvalidInputErrorFmt("invalid protocol %q", protocol)
	}
	if strings.ContainsAny(from, " \t") {
		return nil, hostexec.InvalidInputErrorFmt("invalid source address %q", from)
	}

	var args []string
	if from != "" {
		args = []string{action, "from", from, "to", "any", "port", port}
		if protocol != "" {
			args = append(args, "proto", protocol)
		}
	} else {
		spec := port
		if protocol != "" {
			spec += "/" + protocol
		}
		args = []string{action, spec}
	}

	res, err := m.run.Run(ctx, "ufw", args...)
	if err != nil {
		return nil, err
	}
	return &CommandOutput{Output: res.Stdout}, nil
}

// DeleteRule removes the rule with the given position in the numbered
// listing.
func (m *Manager) DeleteRule(ctx context.Context, number int) (*CommandOutput, error) {
	if number < 1 {
		return nil, hostexec.InvalidInputErrorFmt("invalid rule number %d", number)
	}
	res, err := m.run.Run(ctx, "ufw", "--force", "delete", strconv.Itoa(number))
	if err != nil {
		return nil, err
	}
	return &CommandOutput{Output: res.Stdout}, nil
}

// Logs returns the tail of the firewall log, parsed line by line.
func (m *Manager) Logs(ctx context.Context) ([]LogEntry, error) {
	path := m.LogPath
	if path == "" {
		path = DefaultLogPath
	}
	res, err := m.run.Run(ctx, "tail", "-n", strconv.Itoa(logTailLines), path)
	if err != nil {
		return nil, err
	}
	return parseLogs(res.Stdout), nil
}

func parsePort(port string) (int, error) {
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return 0, hostexec.InvalidInputErrorFmt("invalid port %q", port)
	}
	return n, nil
}
