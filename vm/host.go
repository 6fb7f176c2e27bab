package vm

import (
	"bufio"
	"io"
)

// readInt implements SYS_INPUT's parsing algorithm from §6: skip leading
// spaces/newlines/carriage returns, read an optional '-' then one or more
// ASCII digits, and stop at the first non-digit, unreading it so it stays
// in the stdin buffer for the next read. Any other sequence is fatal.
func readInt(r *bufio.Reader) (int64, error) {
	c, err := skipSpace(r)
	if err != nil {
		return 0, err
	}

	neg := false
	if c == '-' {
		neg = true
		c, err = r.ReadByte()
		if err != nil {
			return 0, errMalformedInt
		}
	}

	if c < '0' || c > '9' {
		return 0, errMalformedInt
	}

	var v int64
	for c >= '0' && c <= '9' {
		v = v*10 + int64(c-'0')
		c, err = r.ReadByte()
		if err == io.EOF {
			c = 0
			break
		}
		if err != nil {
			return 0, errHostIO
		}
	}
	if c != 0 {
		r.UnreadByte()
	}

	if neg {
		v = -v
	}
	return v, nil
}

// skipSpace discards leading ' ', '\n', '\r' bytes and returns the first
// byte that is none of those.
func skipSpace(r *bufio.Reader) (byte, error) {
	for {
		c, err := r.ReadByte()
		if err != nil {
			return 0, errHostIO
		}
		if c != ' ' && c != '\n' && c != '\r' {
			return c, nil
		}
	}
}
