package runutil

import "runtime"

// EffectiveThreads returns the worker count for a --threads value:
// values <= 0 mean one worker per CPU.
func EffectiveThreads(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU()
}
