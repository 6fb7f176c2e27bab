package vm

// dynList is the refcounted dynamic list object described in §3/§4.2: a
// growable sequence of machine words with bounds-checked access. The core
// never exposes it directly to bytecode; only an opaque handle travels on
// the operand stack, and every operation goes through the syscalls in
// syscall.go.
type dynList struct {
	refs     int64
	data     []int64
	size     int64
	capacity int64
}

func newList() *dynList {
	return &dynList{}
}

func listFromData(words []int64) *dynList {
	data := make([]int64, len(words))
	copy(data, words)
	return &dynList{data: data, size: int64(len(words)), capacity: int64(len(words))}
}

func (l *dynList) get(i int64) (int64, error) {
	if i < 0 || i >= l.size {
		return 0, errListIndexRange
	}
	return l.data[i], nil
}

func (l *dynList) set(i, v int64) error {
	if i < 0 || i >= l.size {
		return errListIndexRange
	}
	l.data[i] = v
	return nil
}

// push appends v, growing capacity geometrically (double, starting from an
// initial capacity of 1) exactly as §4.2 specifies.
func (l *dynList) push(v int64) {
	if l.size == l.capacity {
		newCap := l.capacity * 2
		if newCap == 0 {
			newCap = 1
		}
		grown := make([]int64, newCap)
		copy(grown, l.data[:l.size])
		l.data = grown
		l.capacity = newCap
	}
	l.data[l.size] = v
	l.size++
}

func (l *dynList) len() int64 {
	return l.size
}

func (l *dynList) clear() {
	l.size = 0
}

// validSliceBound reports whether v is either the -1 sentinel or a genuine
// in-range bound. Note v == size is NOT valid for a non-sentinel bound:
// only -1 may translate to size, matching the reference runtime's check
// (rejects left >= size || right >= size before sentinel translation).
func validSliceBound(v, size int64) bool {
	return v == -1 || (v >= 0 && v < size)
}

// slice returns a new, independent list holding a deep copy of
// l.data[left:right]. The sentinels left == -1 and right == -1 mean 0 and
// l.size respectively; any other negative bound, any bound outside
// [0, l.size), and an explicit bound equal to l.size are all fatal.
// Sentinel translation happens after the initial bounds check so a
// (-1, -1) pair always passes it, per §4.2.
func (l *dynList) slice(left, right int64) (*dynList, error) {
	if !validSliceBound(left, l.size) || !validSliceBound(right, l.size) {
		return nil, errListSliceBounds
	}
	if left == -1 {
		left = 0
	}
	if right == -1 {
		right = l.size
	}
	if left > right {
		return nil, errListSliceBounds
	}
	return listFromData(l.data[left:right]), nil
}

// ref increments the refcount; unref decrements it and reports whether the
// count reached exactly zero on this call, mirroring the reference
// runtime's `if (!--refs)` check bit for bit: unref on a list whose refs is
// already zero decrements into negative territory and reports false, it
// does not re-trigger deallocation. The caller (SysListUnref) is
// responsible for actually dropping the object from the heap when this
// returns true — dynList itself does not know its own handle.
func (l *dynList) ref() {
	l.refs++
}

func (l *dynList) unref() bool {
	l.refs--
	return l.refs == 0
}

// listHeap is the typed heap that realizes "opaque list handles on an
// integer stack" (§9's open design question) without casting pointers
// through machine words: handles are heap-assigned integers, resolved
// through this map.
type listHeap struct {
	objects map[int64]*dynList
	next    int64
}

func newListHeap() *listHeap {
	return &listHeap{objects: make(map[int64]*dynList)}
}

func (h *listHeap) alloc(l *dynList) int64 {
	h.next++
	handle := h.next
	h.objects[handle] = l
	return handle
}

func (h *listHeap) resolve(handle int64) (*dynList, error) {
	l, ok := h.objects[handle]
	if !ok {
		return nil, errListHandle
	}
	return l, nil
}
