// Package hostinfo lists the host's local accounts and login sessions
// by parsing the standard system tools. Read-only; the console only ever
// displays these facts.
package hostinfo

import (
	"context"
	"strconv"
	"strings"

	"github.com/brandyscotchland/timminet/hostexec"
)

// lastSessionCount bounds how many historical logins one request
// returns.
const lastSessionCount = 20

// Collector queries host account and session facts through the command
// runner.
type Collector struct {
	run hostexec.Runner
}

// NewCollector returns a Collector executing through run.
func NewCollector(run hostexec.Runner) *Collector {
	return &Collector{run: run}
}

// SystemUser is one passwd entry.
type SystemUser struct {
	Username string `json:"username"`
	UID      int    `json:"uid"`
	GID      int    `json:"gid"`
	Home     string `json:"home"`
	Shell    string `json:"shell"`
}

// ActiveSession is one currently logged-in terminal session.
type ActiveSession struct {
	User     string `json:"user"`
	Terminal string `json:"terminal"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	From     string `json:"from"`
	Raw      string `json:"raw"`
}

// PastSession is one historical login from the wtmp log; lines that do
// not match the expected shape keep only Raw.
type PastSession struct {
	User     string `json:"user,omitempty"`
	Terminal string `json:"terminal,omitempty"`
	From     string `json:"from,omitempty"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	Duration string `json:"duration,omitempty"`
	Raw      string `json:"raw"`
}

// SystemUsers returns the host's login-capable, non-system accounts.
func (c *Collector) SystemUsers(ctx context.Context) ([]SystemUser, error) {
	res, err := c.run.Run(ctx, "getent", "passwd")
	if err != nil {
		return nil, err
	}
	return parsePasswd(res.Stdout), nil
}

// Sessions returns the active terminal sessions and the recent login
// history.
func (c *Collector) Sessions(ctx context.Context) ([]ActiveSession, []PastSession, error) {
	whoRes, err := c.run.Run(ctx, "who", "-u")
	if err != nil {
		return nil, nil, err
	}
	lastRes, err := c.run.Run(ctx, "last", "-n", strconv.Itoa(lastSessionCount))
	if err != nil {
		return nil, nil, err
	}
	return parseWho(whoRes.Stdout), parseLast(lastRes.Stdout), nil
}

// parsePasswd keeps regular accounts with a usable shell; system
// accounts (uid < 1000) and nologin shells are filtered out.
func parsePasswd(out string) []SystemUser {
	users := []SystemUser{}
	for _, line := range strings.Split(out, "\n") {
		parts := strings.Split(strings.TrimSpace(line), ":")
		if len(parts) < 7 {
			continue
		}
		uid, err := strconv.Atoi(parts[2])
		if err != nil || uid < 1000 {
			continue
		}
		gid, _ := strconv.Atoi(parts[3])
		shell := parts[6]
		if strings.HasSuffix(shell, "nologin") || shell == "/bin/false" {
			continue
		}
		users = append(
			users, SystemUser{
				Username: parts[0],
				UID:      uid,
				GID:      gid,
				Home:     parts[5],
				Shell:    shell,
			},
		)
	}
	return users
}

func parseWho(out string) []ActiveSession {
	sessions := []ActiveSession{}
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		parts := strings.Fields(trimmed)
		if len(parts) < 5 {
			continue
		}
		s := ActiveSession{
			User:     parts[0],
			Terminal: parts[1],
			Date:     parts[2],
			Time:     parts[3],
			From:     "local",
			Raw:      trimmed,
		}
		if len(parts) > 5 {
			s.From = parts[5]
		}
		sessions = append(sessions, s)
	}
	return sessions
}

func parseLast(out string) []PastSession {
	sessions := []PastSession{}
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "wtmp begins") {
			continue
		}
		parts := strings.Fields(trimmed)
		if len(parts) < 7 {
			sessions = append(sessions, PastSession{Raw: trimmed})
			continue
		}
		s := PastSession{
			User:     parts[0],
			Terminal: parts[1],
			From:     parts[2],
			Start:    strings.Join(parts[3:7], " "),
			Raw:      trimmed,
		}
		if len(parts) > 8 {
			s.End = parts[8]
		}
		if len(parts) > 9 {
			s.Duration = strings.Trim(parts[9], "()")
		}
		sessions = append(sessions, s)
		if len(sessions) == lastSessionCount {
			break
		}
	}
	return sessions
}
