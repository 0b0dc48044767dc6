package device

import "bytes"

// MaxLineLength bounds one line from the device. Longer lines are dropped up
// to their terminating '\n'.
const MaxLineLength = 64 * 1024

// lineSplitter cuts a byte stream into '\n' terminated lines. Only bytes fed
// since the last line are searched, and at most MaxLineLength are held.
type lineSplitter struct {
	partial  []byte
	overflow bool
	dropped  int
}

// feed splits data and calls emit for every complete line. The slice passed
// to emit is only valid for the call. feed stops early when emit returns
// false.
func (l *lineSplitter) feed(data []byte, emit func(line []byte) bool) bool {
	for len(data) > 0 {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			l.hold(data)
			return true
		}
		l.hold(data[:idx])
		data = data[idx+1:]

		overflow := l.overflow
		line := l.partial
		l.partial = l.partial[:0]
		l.overflow = false
		if overflow {
			l.dropped++
			continue
		}
		if !emit(line) {
			return false
		}
	}
	return true
}

func (l *lineSplitter) hold(b []byte) {
	if l.overflow {
		return
	}
	if len(l.partial)+len(b) > MaxLineLength {
		l.partial = l.partial[:0]
		l.overflow = true
		return
	}
	l.partial = append(l.partial, b...)
}

// pending is the number of bytes held for an unterminated line.
func (l *lineSplitter) pending() int {
	return len(l.partial)
}
