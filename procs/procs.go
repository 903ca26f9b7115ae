// Package procs answers process inventory queries and delivers signals
// to processes through the privileged command layer.
package procs

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/brandyscotchland/timminet/hostexec"
)

const (
	// DefaultListLimit bounds an unqualified process listing.
	DefaultListLimit = 50
	// DefaultSearchLimit bounds a search result.
	DefaultSearchLimit = 20
	// topCount is how many processes the stats summary ranks.
	topCount = 5
)

// validSignals is the fixed allow-list of signal names Kill accepts.
var validSignals = map[string]bool{
	"TERM": true,
	"KILL": true,
	"HUP":  true,
	"INT":  true,
	"QUIT": true,
	"USR1": true,
	"USR2": true,
}

// Manager exposes the process operations. Kill expects the caller to
// already hold the admin role; the role gate lives in the session layer.
type Manager struct {
	list Lister
	run  hostexec.Runner
}

// NewManager returns a Manager reading snapshots from list and signaling
// through run.
func NewManager(list Lister, run hostexec.Runner) *Manager {
	return &Manager{list: list, run: run}
}

// ListResult is a sorted, truncated snapshot together with state counts
// over the full table.
type ListResult struct {
	Total     int    `json:"total"`
	Running   int    `json:"running"`
	Sleeping  int    `json:"sleeping"`
	Blocked   int    `json:"blocked"`
	Processes []Info `json:"processes"`
	Timestamp int64  `json:"timestamp"`
}

// UserProcesses is the per-user view with resource totals.
type UserProcesses struct {
	Username     string  `json:"username"`
	ProcessCount int     `json:"process_count"`
	Processes    []Info  `json:"processes"`
	TotalCPU     float64 `json:"total_cpu"`
	TotalMem     float64 `json:"total_mem"`
}

// SearchResult is a query-filtered snapshot.
type SearchResult struct {
	Query       string `json:"query"`
	ResultCount int    `json:"result_count"`
	Processes   []Info `json:"processes"`
}

// Stats summarizes the process table for the dashboard.
type Stats struct {
	Total           int    `json:"total"`
	Running         int    `json:"running"`
	Sleeping        int    `json:"sleeping"`
	Blocked         int    `json:"blocked"`
	RunningServices int    `json:"running_services"`
	TopByCPU        []Info `json:"top_by_cpu"`
	TopByMemory     []Info `json:"top_by_memory"`
	Timestamp       int64  `json:"timestamp"`
}

// KillResult reports a delivered signal.
type KillResult struct {
	Pid    int32  `json:"pid"`
	Signal string `json:"signal"`
}

// List returns the process table sorted by the given key (cpu, memory,
// name or pid; cpu when empty) and truncated to limit.
func (m *Manager) List(ctx context.Context, sortKey string, limit int) (*ListResult, error) {
	snapshot, err := m.list.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	sortInfos(snapshot, sortKey)

	res := &ListResult{Total: len(snapshot), Timestamp: time.Now().UnixMilli()}
	res.Running, res.Sleeping, res.Blocked = countStates(snapshot)
	if len(snapshot) > limit {
		snapshot = snapshot[:limit]
	}
	res.Processes = snapshot
	return res, nil
}

// Get returns the process with the given pid.
func (m *Manager) Get(ctx context.Context, pid int32) (*Info, error) {
	if pid <= 0 {
		return nil, hostexec.InvalidInputErrorFmt("invalid pid %d", pid)
	}
	snapshot, err := m.list.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for i := range snapshot {
		if snapshot[i].Pid == pid {
			return &snapshot[i], nil
		}
	}
	return nil, hostexec.NotFoundErrorFmt("process %d not found", pid)
}

// Search returns processes whose name, command or user contains query.
func (m *Manager) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	if len(query) < 2 {
		return nil, hostexec.InvalidInputError("query must be at least 2 characters")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	snapshot, err := m.list.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	matches := []Info{}
	for _, p := range snapshot {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Command), needle) ||
			strings.Contains(strings.ToLower(p.User), needle) {
			matches = append(matches, p)
		}
	}
	sortInfos(matches, "cpu")
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return &SearchResult{Query: query, ResultCount: len(matches), Processes: matches}, nil
}

// ByUser returns the processes owned by username with cpu/mem totals.
func (m *Manager) ByUser(ctx context.Context, username string) (*UserProcesses, error) {
	snapshot, err := m.list.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := &UserProcesses{Username: username, Processes: []Info{}}
	for _, p := range snapshot {
		if p.User != username {
			continue
		}
		out.Processes = append(out.Processes, p)
		out.TotalCPU += p.CPU
		out.TotalMem += p.Mem
	}
	sortInfos(out.Processes, "cpu")
	out.ProcessCount = len(out.Processes)
	return out, nil
}

// Stats summarizes the table: state counts, the top consumers by cpu and
// memory, and the number of running systemd services (best effort, zero
// when systemctl is unavailable).
func (m *Manager) Stats(ctx context.Context) (*Stats, error) {
	snapshot, err := m.list.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Stats{Total: len(snapshot), Timestamp: time.Now().UnixMilli()}
	stats.Running, stats.Sleeping, stats.Blocked = countStates(snapshot)

	byCPU := append([]Info(nil), snapshot...)
	sortInfos(byCPU, "cpu")
	stats.TopByCPU = top(byCPU, topCount)

	byMem := append([]Info(nil), snapshot...)
	sortInfos(byMem, "memory")
	stats.TopByMemory = top(byMem, topCount)

	if res, err := m.run.Run(
		ctx, "systemctl", "list-units", "--type=service", "--state=running", "--no-pager",
	); err == nil {
		for _, line := range strings.Split(res.Stdout, "\n") {
			if strings.Contains(line, ".service") && strings.Contains(line, "running") {
				stats.RunningServices++
			}
		}
	}
	return stats, nil
}

// Kill delivers signal to pid. PID 1 is refused unconditionally and the
// signal name must come from the fixed allow-list. The process's
// existence is verified before signaling.
func (m *Manager) Kill(ctx context.Context, pid int32, signal string) (*KillResult, error) {
	if pid <= 0 {
		return nil, hostexec.InvalidInputErrorFmt("invalid pid %d", pid)
	}
	if pid == 1 {
		return nil, hostexec.ForbiddenTargetError("cannot signal the init process")
	}
	if signal == "" {
		signal = "TERM"
	}
	if !validSignals[signal] {
		return nil, hostexec.InvalidInputErrorFmt("invalid signal %q", signal)
	}
	exists, err := m.list.Exists(ctx, pid)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, hostexec.NotFoundErrorFmt("process %d not found", pid)
	}
	if _, err = m.run.Run(ctx, "kill", "-"+signal, strconv.Itoa(int(pid))); err != nil {
		return nil, err
	}
	return &KillResult{Pid: pid, Signal: signal}, nil
}

func sortInfos(infos []Info, key string) {
	switch key {
	case "memory":
		sort.SliceStable(infos, func(i, j int) bool { return infos[i].Mem > infos[j].Mem })
	case "name":
		sort.SliceStable(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	case "pid":
		sort.SliceStable(infos, func(i, j int) bool { return infos[i].Pid < infos[j].Pid })
	default:
		sort.SliceStable(infos, func(i, j int) bool { return infos[i].CPU > infos[j].CPU })
	}
}

func countStates(infos []Info) (running, sleeping, blocked int) {
	for _, p := range infos {
		switch p.State {
		case process.Running:
			running++
		case process.Sleep, process.Idle:
			sleeping++
		case process.Blocked, process.Wait, process.Lock, process.Stop:
			blocked++
		}
	}
	return
}

func top(infos []Info, n int) []Info {
	if len(infos) > n {
		infos = infos[:n]
	}
	return infos
}
