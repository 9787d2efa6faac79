package xlsx

import "unsafe"

// Shared string tables hold many short text runs. Interning them into large
// shared chunks instead of one allocation per run keeps the table cheap for
// the wide workbooks this decoder targets.
const arenaChunkSize = 32 * 1024

type arena struct {
	buf []byte
}

func (a *arena) intern(b []byte) string {
	n := len(b)
	if n == 0 {
		return ""
	}
	if cap(a.buf)-len(a.buf) < n {
		size := arenaChunkSize
		if n > size {
			size = n
		}
		a.buf = make([]byte, 0, size)
	}

	pos := len(a.buf)
	a.buf = append(a.buf, b...)
	return unsafe.String(&a.buf[pos], n)
}
