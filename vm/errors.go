package vm

import "errors"

// Sentinel errors for every fault category in the error taxonomy. All of
// them are fatal: the caller reports a single diagnostic line and the
// process exits with code -1. None of them wrap further context; compare
// with errors.Is the same way the teacher's VM compares errProgramFinished,
// errSegmentationFault and friends.
var (
	// Loader errors (§4.1, §7).
	errOpenFile        = errors.New("could not open file")
	errSizeQuery       = errors.New("could not query file size")
	errMmap            = errors.New("could not map file")
	errBadMagic        = errors.New("bad magic")
	errTruncated       = errors.New("truncated bytecode")
	errEntrypointRange = errors.New("entrypoint out of range")

	// Bytecode / control-flow errors at runtime.
	errUnknownOpcode  = errors.New("unknown opcode")
	errUnknownSyscall = errors.New("unknown syscall")
	errLeaveReached   = errors.New("reached LEAVE")
	errJumpRange      = errors.New("jump target out of range")
	errCallNotEnter   = errors.New("call target is not ENTER")

	// Stack errors.
	errStackOverflow      = errors.New("operand stack overflow")
	errStackUnderflow     = errors.New("operand stack underflow")
	errCallStackOverflow  = errors.New("call stack overflow")
	errCallStackUnderflow = errors.New("call stack underflow")
	errFrameStackOverflow = errors.New("frame-size stack overflow")
	errFrameStackUnder    = errors.New("frame-size stack underflow")

	// Memory errors.
	errLocalRange  = errors.New("local address out of range")
	errGlobalRange = errors.New("global address out of range")
	errMemRange    = errors.New("mem exceeds MAX_MEM")

	// Arithmetic errors.
	errDivByZero = errors.New("division by zero")
	errModByZero = errors.New("modulo by zero")

	// List errors.
	errListHandle      = errors.New("unknown list handle")
	errListIndexRange  = errors.New("list index out of range")
	errListSliceBounds = errors.New("invalid list slice bounds")

	// Host I/O errors.
	errHostIO      = errors.New("input-output error")
	errMalformedInt = errors.New("malformed integer on input")

	// errProgramExhausted is the implicit fault produced when ip runs past
	// the end of the program without a SYS_EXIT (§4.4 main loop). Run
	// returns it with code -1 without writing a diagnostic line.
	errProgramExhausted = errors.New("ran out of instructions")
)
