package testctl

import (
	"os/exec"
	"sync"
)

// ProcManager tracks started processes and can kill them all on cleanup.
type ProcManager struct {
	mu    sync.Mutex
	procs []*exec.Cmd
}

func NewProcManager() *ProcManager { return &ProcManager{} }

func (pm *ProcManager) Add(cmd *exec.Cmd) {
	pm.mu.Lock()
	pm.procs = append(pm.procs, cmd)
	pm.mu.Unlock()
}

// KillAll kills every tracked process that is still running. Best effort.
func (pm *ProcManager) KillAll() {
	pm.mu.Lock()
	procs := pm.procs
	pm.procs = nil
	pm.mu.Unlock()
	for _, c := range procs {
		if c != nil && c.Process != nil && c.ProcessState == nil {
			_ = c.Process.Kill()
		}
	}
}
