package procs

import (
	"context"

	"github.com/shirou/gopsutil/v4/process"
)

// Info is one process as reported by the host inventory.
type Info struct {
	Pid     int32   `json:"pid"`
	Ppid    int32   `json:"ppid"`
	Name    string  `json:"name"`
	Command string  `json:"command"`
	User    string  `json:"user"`
	State   string  `json:"state"`
	TTY     string  `json:"tty"`
	CPU     float64 `json:"cpu"`
	Mem     float64 `json:"mem"`
	MemRSS  uint64  `json:"mem_rss"`
	MemVSZ  uint64  `json:"mem_vsz"`
	Nice    int32   `json:"nice"`
	Started int64   `json:"started"`
	Threads int32   `json:"threads"`
}

// Lister supplies process snapshots. The production implementation reads
// the host; tests substitute a fixed snapshot.
type Lister interface {
	Snapshot(ctx context.Context) ([]Info, error)
	Exists(ctx context.Context, pid int32) (bool, error)
}

// HostLister reads the host's process table through gopsutil.
type HostLister struct{}

// Snapshot returns all visible processes. Fields a process refuses to
// reveal are left zero rather than failing the whole snapshot.
func (HostLister) Snapshot(ctx context.Context) ([]Info, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]Info, 0, len(procs))
	for _, p := range procs {
		info := Info{Pid: p.Pid}
		info.Name, _ = p.NameWithContext(ctx)
		info.Command, _ = p.CmdlineWithContext(ctx)
		if info.Command == "" {
			info.Command = info.Name
		}
		info.User, _ = p.UsernameWithContext(ctx)
		info.TTY, _ = p.TerminalWithContext(ctx)
		info.Ppid, _ = p.PpidWithContext(ctx)
		info.Nice, _ = p.NiceWithContext(ctx)
		info.Started, _ = p.CreateTimeWithContext(ctx)
		info.Threads, _ = p.NumThreadsWithContext(ctx)
		info.CPU, _ = p.CPUPercentWithContext(ctx)
		if mem, err := p.MemoryPercentWithContext(ctx); err == nil {
			info.Mem = float64(mem)
		}
		if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
			info.MemRSS = mi.RSS
			info.MemVSZ = mi.VMS
		}
		if st, err := p.StatusWithContext(ctx); err == nil && len(st) > 0 {
			info.State = st[0]
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Exists reports whether a process with the given pid is present.
func (HostLister) Exists(ctx context.Context, pid int32) (bool, error) {
	return process.PidExistsWithContext(ctx, pid)
}
