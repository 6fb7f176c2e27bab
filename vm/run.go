package vm

import (
	"os"
	"runtime/debug"
	"strconv"
)

// RunProgram executes m to completion, disabling the garbage collector for
// the duration of the run. The program's own memory (stack, call stack,
// frame-size stack and MEMORY) is allocated up front as part of the
// Machine value; nothing but the list heap allocates during execution, and
// list pushes are rare enough relative to instruction dispatch that GC
// pauses mid-run are pure overhead worth suppressing.
func (m *Machine) RunProgram() (code int64, err error) {
	key, ok := os.LookupEnv("GOGC")
	if !ok {
		key = "100"
	}
	gcPercent, parseErr := strconv.ParseInt(key, 10, 32)
	if parseErr != nil {
		gcPercent = 100
	}

	debug.SetGCPercent(-1)
	defer debug.SetGCPercent(int(gcPercent))

	return m.Run()
}
