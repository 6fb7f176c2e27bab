package vm

import "fmt"

// Run executes the program from its entrypoint until SYS_EXIT, an implicit
// fault (ip running past the end of the program), or a runtime check
// failure. It returns the process exit code and the fault that caused
// termination, if any; a nil error means SYS_EXIT was reached normally.
func (m *Machine) Run() (code int64, err error) {
	defer m.stdout.Flush()

	for {
		if m.ip < 0 || m.ip >= m.program.Len() {
			return -1, errProgramExhausted
		}

		instr := m.program.Fetch(m.ip)
		nextIP := m.ip + 1

		switch instr.Op {
		case LOAD:
			v, e := m.loadLocal(instr.Arg)
			if e != nil {
				return -1, m.fault(instr, e)
			}
			if e := m.push(v); e != nil {
				return -1, m.fault(instr, e)
			}

		case STORE:
			v, e := m.pop()
			if e != nil {
				return -1, m.fault(instr, e)
			}
			if e := m.storeLocal(instr.Arg, v); e != nil {
				return -1, m.fault(instr, e)
			}

		case GLOAD:
			v, e := m.loadGlobal(instr.Arg)
			if e != nil {
				return -1, m.fault(instr, e)
			}
			if e := m.push(v); e != nil {
				return -1, m.fault(instr, e)
			}

		case GSTORE:
			v, e := m.pop()
			if e != nil {
				return -1, m.fault(instr, e)
			}
			if e := m.storeGlobal(instr.Arg, v); e != nil {
				return -1, m.fault(instr, e)
			}

		case CONST:
			if e := m.push(instr.Arg); e != nil {
				return -1, m.fault(instr, e)
			}

		case ADD, SUB, MUL, DIV, MOD:
			if e := m.arith(instr.Op); e != nil {
				return -1, m.fault(instr, e)
			}

		case AND, OR:
			if e := m.logical(instr.Op); e != nil {
				return -1, m.fault(instr, e)
			}

		case LT, LE, GT, GE, EQ, NE:
			if e := m.compareOp(instr.Op); e != nil {
				return -1, m.fault(instr, e)
			}

		case JMP:
			if instr.Arg < 0 || instr.Arg >= m.program.Len() {
				return -1, m.fault(instr, errJumpRange)
			}
			nextIP = instr.Arg

		case JZ, JNZ:
			r, e := m.pop()
			if e != nil {
				return -1, m.fault(instr, e)
			}
			if instr.Arg < 0 || instr.Arg >= m.program.Len() {
				return -1, m.fault(instr, errJumpRange)
			}
			taken := r == 0
			if instr.Op == JNZ {
				taken = r != 0
			}
			if taken {
				nextIP = instr.Arg
			}

		case CALL:
			if instr.Arg < 0 || instr.Arg >= m.program.Len() {
				return -1, m.fault(instr, errJumpRange)
			}
			if m.program.Fetch(instr.Arg).Op != ENTER {
				return -1, m.fault(instr, errCallNotEnter)
			}
			if e := m.pushCall(nextIP); e != nil {
				return -1, m.fault(instr, e)
			}
			nextIP = instr.Arg

		case SYSCALL:
			exited, exitCode, e := m.dispatchSyscall(instr.Arg)
			if e != nil {
				return -1, m.fault(instr, e)
			}
			if exited {
				return exitCode, nil
			}

		case RET:
			addr, e := m.popCall()
			if e != nil {
				return -1, m.fault(instr, e)
			}
			size, e := m.popFrameSize()
			if e != nil {
				return -1, m.fault(instr, e)
			}
			if m.top-size < m.program.Globals {
				return -1, m.fault(instr, errMemRange)
			}
			m.top -= size
			nextIP = addr

		case ENTER:
			nArgs, nLocals := splitEnterArg(instr.Arg)
			frameSize := nArgs + nLocals
			if m.top+frameSize >= MaxMem {
				return -1, m.fault(instr, errMemRange)
			}
			if e := m.pushFrameSize(frameSize); e != nil {
				return -1, m.fault(instr, e)
			}
			m.top += frameSize
			for i := int64(0); i < nArgs; i++ {
				v, e := m.pop()
				if e != nil {
					return -1, m.fault(instr, e)
				}
				m.mem[m.top-i] = v
			}

		case LEAVE:
			return -1, m.fault(instr, errLeaveReached)

		default:
			return -1, m.fault(instr, errUnknownOpcode)
		}

		m.ip = nextIP
	}
}

// fault writes the one diagnostic line the error taxonomy calls for (§7)
// and returns err unchanged so the caller can decide the process exit code.
// Any buffered SYS_PRINT output is flushed first so the diagnostic always
// appears after whatever the program already printed.
func (m *Machine) fault(instr Instruction, err error) error {
	m.stdout.Flush()
	fmt.Printf("%s at instruction %d (%s)\n", err, m.ip, instr.Op)
	return err
}

func (m *Machine) arith(op Opcode) error {
	r, err := m.pop()
	if err != nil {
		return err
	}
	top, err := m.peek()
	if err != nil {
		return err
	}

	var result int64
	switch op {
	case ADD:
		result = int64(uint64(top) + uint64(r))
	case SUB:
		result = int64(uint64(top) - uint64(r))
	case MUL:
		result = int64(uint64(top) * uint64(r))
	case DIV:
		if r == 0 {
			return errDivByZero
		}
		result = top / r
	case MOD:
		if r == 0 {
			return errModByZero
		}
		result = top % r
	}
	m.stack[m.stackLen-1] = result
	return nil
}

func (m *Machine) logical(op Opcode) error {
	r, err := m.pop()
	if err != nil {
		return err
	}
	top, err := m.peek()
	if err != nil {
		return err
	}

	left, right := top != 0, r != 0
	var result bool
	if op == AND {
		result = left && right
	} else {
		result = left || right
	}
	m.stack[m.stackLen-1] = boolToWord(result)
	return nil
}

func (m *Machine) compareOp(op Opcode) error {
	r, err := m.pop()
	if err != nil {
		return err
	}
	top, err := m.peek()
	if err != nil {
		return err
	}

	var result bool
	switch op {
	case LT:
		result = top < r
	case LE:
		result = top <= r
	case GT:
		result = top > r
	case GE:
		result = top >= r
	case EQ:
		result = top == r
	case NE:
		result = top != r
	}
	m.stack[m.stackLen-1] = boolToWord(result)
	return nil
}

func boolToWord(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
