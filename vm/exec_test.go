package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func runProgram(t *testing.T, globals, entrypoint int64, instrs []Instruction, stdin string) (stdout string, code int64, err error) {
	t.Helper()

	raw := asm(t, globals, entrypoint, instrs)
	path := writeProgram(t, raw)

	p, loadErr := Load(path)
	require.NoError(t, loadErr)
	defer p.Close()

	var out bytes.Buffer
	m := New(p, strings.NewReader(stdin), &out)
	code, err = m.Run()
	return out.String(), code, err
}

// Scenario 1: print constant 42.
func TestE2EPrintConstant42(t *testing.T) {
	out, code, err := runProgram(t, 0, 0, []Instruction{
		in(CONST, 42),
		in(SYSCALL, SysPrint),
		in(CONST, 0),
		in(SYSCALL, SysExit),
	}, "")

	require.NoError(t, err)
	require.Equal(t, int64(0), code)
	require.Equal(t, "42\n", out)
}

// Scenario 2: add two inputs.
func TestE2EAddTwoInputs(t *testing.T) {
	out, code, err := runProgram(t, 0, 0, []Instruction{
		in(SYSCALL, SysInput),
		in(SYSCALL, SysInput),
		in(ADD, 0),
		in(SYSCALL, SysPrint),
		in(CONST, 0),
		in(SYSCALL, SysExit),
	}, "3\n4\n")

	require.NoError(t, err)
	require.Equal(t, int64(0), code)
	require.Equal(t, "7\n", out)
}

// Scenario 3: identity function call.
func TestE2EIdentityFunctionCall(t *testing.T) {
	instrs := []Instruction{
		in(ENTER, enterArg(1, 0)), // 0
		in(LOAD, 0),               // 1
		in(SYSCALL, SysPrint),     // 2
		in(RET, 0),                // 3
		in(CONST, 99),             // 4: entrypoint
		in(CALL, 0),               // 5
		in(CONST, 0),              // 6
		in(SYSCALL, SysExit),      // 7
	}
	out, code, err := runProgram(t, 0, 4, instrs, "")

	require.NoError(t, err)
	require.Equal(t, int64(0), code)
	require.Equal(t, "99\n", out)
}

// Scenario 4: division by zero.
func TestE2EDivisionByZero(t *testing.T) {
	_, code, err := runProgram(t, 0, 0, []Instruction{
		in(CONST, 1),
		in(CONST, 0),
		in(DIV, 0),
	}, "")

	require.ErrorIs(t, err, errDivByZero)
	require.Equal(t, int64(-1), code)
}

// Scenario 5: list round trip.
func TestE2EListRoundTrip(t *testing.T) {
	instrs := []Instruction{
		in(SYSCALL, SysList), // 0: push new handle
		in(GSTORE, 0),        // 1: globals[0] = handle

		in(CONST, 10),        // 2
		in(GLOAD, 0),         // 3
		in(SYSCALL, SysListPush), // 4: list.push(10)

		in(CONST, 20),            // 5
		in(GLOAD, 0),             // 6
		in(SYSCALL, SysListPush), // 7: list.push(20)

		in(GLOAD, 0),            // 8
		in(SYSCALL, SysListLen), // 9: push len -> 2
		in(SYSCALL, SysPrint),   // 10: print "2"

		in(CONST, 0),            // 11: index 0
		in(GLOAD, 0),            // 12
		in(SYSCALL, SysListGet), // 13: push list[0] -> 10
		in(SYSCALL, SysPrint),   // 14: print "10"

		in(CONST, 0),
		in(SYSCALL, SysExit),
	}
	out, code, err := runProgram(t, 1, 0, instrs, "")

	require.NoError(t, err)
	require.Equal(t, int64(0), code)
	require.Equal(t, "2\n10\n", out)
}

// Unref down to zero must actually deallocate: the handle stops resolving
// once refs hits exactly zero, mirroring the reference runtime's
// `if (!--refs)` dealloc call rather than leaving it reachable forever.
func TestUnrefToZeroDeallocatesHandle(t *testing.T) {
	instrs := []Instruction{
		in(SYSCALL, SysList), // 0: push new handle, refs = 0
		in(GSTORE, 0),        // 1: globals[0] = handle

		in(GLOAD, 0),
		in(SYSCALL, SysListRef), // refs: 0 -> 1

		in(GLOAD, 0),
		in(SYSCALL, SysListUnref), // refs: 1 -> 0, deallocates

		in(CONST, 0),            // index
		in(GLOAD, 0),            // the now-dangling handle
		in(SYSCALL, SysListGet), // must fault: handle no longer resolves
	}
	_, code, err := runProgram(t, 1, 0, instrs, "")

	require.ErrorIs(t, err, errListHandle)
	require.Equal(t, int64(-1), code)
}

// Scenario 6: slice copy is independent of its source list.
func TestE2ESliceCopyIndependence(t *testing.T) {
	push := func(v int64) []Instruction {
		return []Instruction{in(CONST, v), in(GLOAD, 0), in(SYSCALL, SysListPush)}
	}

	var instrs []Instruction
	instrs = append(instrs, in(SYSCALL, SysList), in(GSTORE, 0)) // globals[0] = h
	for _, v := range []int64{1, 2, 3, 4} {
		instrs = append(instrs, push(v)...)
	}

	// slice(h, 1, 3) -> globals[1]
	instrs = append(instrs,
		in(CONST, 3),             // right
		in(CONST, 1),             // left
		in(GLOAD, 0),             // handle (top)
		in(SYSCALL, SysListSlice),
		in(GSTORE, 1),
	)

	// print len(sliced), sliced[0], sliced[1]
	instrs = append(instrs,
		in(GLOAD, 1), in(SYSCALL, SysListLen), in(SYSCALL, SysPrint),
		in(CONST, 0), in(GLOAD, 1), in(SYSCALL, SysListGet), in(SYSCALL, SysPrint),
		in(CONST, 1), in(GLOAD, 1), in(SYSCALL, SysListGet), in(SYSCALL, SysPrint),
	)

	// sliced[0] = 999, then re-read original h[1] to prove independence
	instrs = append(instrs,
		in(CONST, 999), in(CONST, 0), in(GLOAD, 1), in(SYSCALL, SysListSet),
		in(CONST, 1), in(GLOAD, 0), in(SYSCALL, SysListGet), in(SYSCALL, SysPrint),
	)

	instrs = append(instrs, in(CONST, 0), in(SYSCALL, SysExit))

	out, code, err := runProgram(t, 2, 0, instrs, "")

	require.NoError(t, err)
	require.Equal(t, int64(0), code)
	require.Equal(t, "2\n2\n3\n2\n", out)
}

func TestRuntimeStackUnderflow(t *testing.T) {
	_, code, err := runProgram(t, 0, 0, []Instruction{
		in(ADD, 0),
	}, "")
	require.ErrorIs(t, err, errStackUnderflow)
	require.Equal(t, int64(-1), code)
}

func TestRuntimeUnknownOpcode(t *testing.T) {
	_, code, err := runProgram(t, 0, 0, []Instruction{
		in(Opcode(0x19), 0),
	}, "")
	require.ErrorIs(t, err, errUnknownOpcode)
	require.Equal(t, int64(-1), code)
}

func TestRuntimeLeaveIsFault(t *testing.T) {
	_, code, err := runProgram(t, 0, 0, []Instruction{
		in(LEAVE, 0),
	}, "")
	require.ErrorIs(t, err, errLeaveReached)
	require.Equal(t, int64(-1), code)
}

func TestRuntimeUnknownSyscall(t *testing.T) {
	_, code, err := runProgram(t, 0, 0, []Instruction{
		in(SYSCALL, 999),
	}, "")
	require.ErrorIs(t, err, errUnknownSyscall)
	require.Equal(t, int64(-1), code)
}

func TestRuntimeCallTargetMustBeEnter(t *testing.T) {
	_, code, err := runProgram(t, 0, 0, []Instruction{
		in(CALL, 1),
		in(CONST, 1), // not ENTER
	}, "")
	require.ErrorIs(t, err, errCallNotEnter)
	require.Equal(t, int64(-1), code)
}

func TestRuntimeImplicitFaultOnExhaustion(t *testing.T) {
	_, code, err := runProgram(t, 0, 0, []Instruction{
		in(CONST, 1),
	}, "")
	require.ErrorIs(t, err, errProgramExhausted)
	require.Equal(t, int64(-1), code)
}

func TestConstAddLaw(t *testing.T) {
	out, _, err := runProgram(t, 0, 0, []Instruction{
		in(CONST, 7),
		in(CONST, 35),
		in(ADD, 0),
		in(SYSCALL, SysPrint),
		in(CONST, 0),
		in(SYSCALL, SysExit),
	}, "")
	require.NoError(t, err)
	require.Equal(t, "42\n", out)
}
