package vm

import (
	"bufio"
	"io"
	"os"
)

// Bounded arrays are policy, not protocol (§9): they may be raised, but the
// bytecode must not assume a larger limit than this.
const (
	MaxStackDepth = 256
	MaxMem        = 16 * MaxStackDepth
)

// Machine holds every piece of mutable state owned by one run: the operand
// stack, call stack, frame-size stack and MEMORY, plus the list heap and
// host I/O streams. Nothing here is process-global — moving the stacks off
// of global storage into a value passed into Run is required for
// testability and reentrancy (§9).
type Machine struct {
	program *Program

	ip int64

	stack    [MaxStackDepth]int64
	stackLen int64

	callstack    [MaxStackDepth]int64
	callstackLen int64

	framesize    [MaxStackDepth]int64
	framesizeLen int64

	mem [MaxMem]int64
	top int64 // current top of the call-frame region ("mem" in §3/§4.4)

	lists *listHeap

	stdin  *bufio.Reader
	stdout *bufio.Writer
}

// New constructs a Machine ready to execute p, with stdin/stdout wired to
// the given streams (os.Stdin/os.Stdout in production, buffers in tests).
func New(p *Program, in io.Reader, out io.Writer) *Machine {
	m := &Machine{
		program: p,
		ip:      p.Entrypoint,
		top:     p.Globals,
		lists:   newListHeap(),
		stdin:   bufio.NewReader(in),
		stdout:  bufio.NewWriter(out),
	}
	return m
}

// NewStd is a convenience constructor wiring standard input/output.
func NewStd(p *Program) *Machine {
	return New(p, os.Stdin, os.Stdout)
}

func (m *Machine) push(v int64) error {
	if m.stackLen >= MaxStackDepth {
		return errStackOverflow
	}
	m.stack[m.stackLen] = v
	m.stackLen++
	return nil
}

func (m *Machine) pop() (int64, error) {
	if m.stackLen <= 0 {
		return 0, errStackUnderflow
	}
	m.stackLen--
	return m.stack[m.stackLen], nil
}

func (m *Machine) peek() (int64, error) {
	if m.stackLen <= 0 {
		return 0, errStackUnderflow
	}
	return m.stack[m.stackLen-1], nil
}

func (m *Machine) pushCall(addr int64) error {
	if m.callstackLen >= MaxStackDepth {
		return errCallStackOverflow
	}
	m.callstack[m.callstackLen] = addr
	m.callstackLen++
	return nil
}

func (m *Machine) popCall() (int64, error) {
	if m.callstackLen <= 0 {
		return 0, errCallStackUnderflow
	}
	m.callstackLen--
	return m.callstack[m.callstackLen], nil
}

func (m *Machine) pushFrameSize(size int64) error {
	if m.framesizeLen >= MaxStackDepth {
		return errFrameStackOverflow
	}
	m.framesize[m.framesizeLen] = size
	m.framesizeLen++
	return nil
}

func (m *Machine) popFrameSize() (int64, error) {
	if m.framesizeLen <= 0 {
		return 0, errFrameStackUnder
	}
	m.framesizeLen--
	return m.framesize[m.framesizeLen], nil
}

// loadLocal reads frame-relative slot a (§4.4: LOAD a pushes MEMORY[mem-a]).
func (m *Machine) loadLocal(a int64) (int64, error) {
	frameSize := int64(0)
	if m.framesizeLen > 0 {
		frameSize = m.framesize[m.framesizeLen-1]
	}
	if a < 0 || a >= frameSize {
		return 0, errLocalRange
	}
	return m.mem[m.top-a], nil
}

func (m *Machine) storeLocal(a, v int64) error {
	frameSize := int64(0)
	if m.framesizeLen > 0 {
		frameSize = m.framesize[m.framesizeLen-1]
	}
	if a < 0 || a >= frameSize {
		return errLocalRange
	}
	m.mem[m.top-a] = v
	return nil
}

func (m *Machine) loadGlobal(a int64) (int64, error) {
	if a < 0 || a >= m.program.Globals {
		return 0, errGlobalRange
	}
	return m.mem[a], nil
}

func (m *Machine) storeGlobal(a, v int64) error {
	if a < 0 || a >= m.program.Globals {
		return errGlobalRange
	}
	m.mem[a] = v
	return nil
}
