package vm

import "fmt"

// Syscall numbers, fixed constants per §4.3.
const (
	SysExit = 0

	SysList      = 20
	SysListGet   = 21
	SysListSet   = 22
	SysListPush  = 23
	SysListLen   = 24
	SysListClear = 25
	SysListSlice = 26
	SysListRef   = 27
	SysListUnref = 28

	SysPrint = 100
	SysInput = 101
)

// dispatchSyscall routes syscall n, marshalling its operands from (and its
// result to) the operand stack per the table in §4.3. It returns
// (exited, code, err): exited is true only for SYS_EXIT, in which case code
// is the value to return to the host.
func (m *Machine) dispatchSyscall(n int64) (exited bool, code int64, err error) {
	switch n {
	case SysExit:
		c, err := m.pop()
		if err != nil {
			return false, 0, err
		}
		return true, c, nil

	case SysList:
		handle := m.lists.alloc(newList())
		return false, 0, m.push(handle)

	case SysListGet:
		handle, err := m.pop()
		if err != nil {
			return false, 0, err
		}
		idx, err := m.pop()
		if err != nil {
			return false, 0, err
		}
		l, err := m.lists.resolve(handle)
		if err != nil {
			return false, 0, err
		}
		v, err := l.get(idx)
		if err != nil {
			return false, 0, err
		}
		return false, 0, m.push(v)

	case SysListSet:
		handle, err := m.pop()
		if err != nil {
			return false, 0, err
		}
		idx, err := m.pop()
		if err != nil {
			return false, 0, err
		}
		val, err := m.pop()
		if err != nil {
			return false, 0, err
		}
		l, err := m.lists.resolve(handle)
		if err != nil {
			return false, 0, err
		}
		return false, 0, l.set(idx, val)

	case SysListPush:
		handle, err := m.pop()
		if err != nil {
			return false, 0, err
		}
		val, err := m.pop()
		if err != nil {
			return false, 0, err
		}
		l, err := m.lists.resolve(handle)
		if err != nil {
			return false, 0, err
		}
		l.push(val)
		return false, 0, nil

	case SysListLen:
		handle, err := m.pop()
		if err != nil {
			return false, 0, err
		}
		l, err := m.lists.resolve(handle)
		if err != nil {
			return false, 0, err
		}
		return false, 0, m.push(l.len())

	case SysListClear:
		handle, err := m.pop()
		if err != nil {
			return false, 0, err
		}
		l, err := m.lists.resolve(handle)
		if err != nil {
			return false, 0, err
		}
		l.clear()
		return false, 0, nil

	case SysListSlice:
		handle, err := m.pop()
		if err != nil {
			return false, 0, err
		}
		left, err := m.pop()
		if err != nil {
			return false, 0, err
		}
		right, err := m.pop()
		if err != nil {
			return false, 0, err
		}
		l, err := m.lists.resolve(handle)
		if err != nil {
			return false, 0, err
		}
		sliced, err := l.slice(left, right)
		if err != nil {
			return false, 0, err
		}
		return false, 0, m.push(m.lists.alloc(sliced))

	case SysListRef:
		handle, err := m.pop()
		if err != nil {
			return false, 0, err
		}
		l, err := m.lists.resolve(handle)
		if err != nil {
			return false, 0, err
		}
		l.ref()
		return false, 0, nil

	case SysListUnref:
		handle, err := m.pop()
		if err != nil {
			return false, 0, err
		}
		l, err := m.lists.resolve(handle)
		if err != nil {
			return false, 0, err
		}
		if l.unref() {
			delete(m.lists.objects, handle)
		}
		return false, 0, nil

	case SysPrint:
		val, err := m.pop()
		if err != nil {
			return false, 0, err
		}
		_, err = fmt.Fprintf(m.stdout, "%d\n", val)
		if err != nil {
			return false, 0, errHostIO
		}
		return false, 0, nil

	case SysInput:
		v, err := readInt(m.stdin)
		if err != nil {
			return false, 0, err
		}
		return false, 0, m.push(v)

	default:
		return false, 0, errUnknownSyscall
	}
}
