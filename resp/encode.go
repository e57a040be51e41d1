package resp

import (
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// containerSizeHint is the per-element byte estimate used to pre-size
// a container's backing buffer before encoding its children, per the
// design note that container encoding should size proportionally to
// child count rather than grow one append at a time.
const containerSizeHint = 32

// Encode serializes f into its RESP wire form. Total: every Frame
// implementation encodes successfully, there is no error return. The
// backing buffer is drawn from a pool and released back to it once its
// bytes are copied out, so repeated Encode calls do not each pay a
// fresh allocation.
func Encode(f Frame) []byte {
	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)
	if hint := EstimatedSize(f); cap(bb.B) < hint {
		bb.B = make([]byte, 0, hint)
	}

	writeFrame(bb, f)

	out := make([]byte, bb.Len())
	copy(out, bb.Bytes())
	return out
}

func writeFrame(bb *bytebufferpool.ByteBuffer, f Frame) {
	switch v := f.(type) {
	case SimpleString:
		writeSimpleLine(bb, '+', string(v))
	case SimpleError:
		writeSimpleLine(bb, '-', string(v))
	case Integer:
		writeSimpleLine(bb, ':', strconv.FormatInt(int64(v), 10))
	case BulkString:
		writeBulkString(bb, v)
	case NullBulkString:
		_, _ = bb.WriteString("$-1\r\n")
	case Array:
		writeArray(bb, v)
	case NullArray:
		_, _ = bb.WriteString("*-1\r\n")
	case Null:
		_, _ = bb.WriteString("_\r\n")
	case Boolean:
		if v {
			_, _ = bb.WriteString("#t\r\n")
		} else {
			_, _ = bb.WriteString("#f\r\n")
		}
	case Double:
		writeDouble(bb, float64(v))
	case *Map:
		writeMap(bb, v)
	case Set:
		writeSet(bb, v)
	default:
		// Unreachable for any Frame produced by this package: every
		// concrete type above implements isFrame() and is exhaustively
		// handled. A future variant added without an encode case would
		// hit this branch — fail loudly rather than emit nothing.
		panic("resp: encode: unhandled frame type")
	}
}

func writeSimpleLine(bb *bytebufferpool.ByteBuffer, prefix byte, s string) {
	_ = bb.WriteByte(prefix)
	_, _ = bb.WriteString(s)
	_, _ = bb.Write(crlf)
}

func writeBulkString(bb *bytebufferpool.ByteBuffer, b []byte) {
	_ = bb.WriteByte('$')
	_, _ = bb.WriteString(strconv.Itoa(len(b)))
	_, _ = bb.Write(crlf)
	_, _ = bb.Write(b)
	_, _ = bb.Write(crlf)
}

// doubleLowThreshold and doubleHighThreshold bound the magnitude range
// in which a Double is emitted in plain decimal; outside (1e-8, 1e+8) it
// switches to scientific notation (see formatScientific), matching the
// original encoder's compactness/round-trip tradeoff.
const (
	doubleLowThreshold  = 1e-8
	doubleHighThreshold = 1e8
)

func writeDouble(bb *bytebufferpool.ByteBuffer, f float64) {
	_ = bb.WriteByte(',')
	abs := f
	if abs < 0 {
		abs = -abs
	}
	if abs != 0 && (abs > doubleHighThreshold || abs < doubleLowThreshold) {
		_, _ = bb.WriteString(formatScientific(f))
	} else {
		_, _ = bb.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
	}
	_, _ = bb.Write(crlf)
}

// formatScientific renders f as "[+|-]d.ddde[-]N": the mantissa always
// carries an explicit sign, the exponent carries "-" only when negative
// and has no leading zeros, e.g. "+1.23456e8"/"-1.23456e-9".
func formatScientific(f float64) string {
	s := strconv.FormatFloat(f, 'e', -1, 64)
	if s[0] != '-' {
		s = "+" + s
	}
	// Go renders the exponent as e.g. "e+08"/"e-09"; the wire format
	// wants a bare sign with no leading zero, e.g. "e8"/"e-9".
	eIdx := -1
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == 'e' {
			eIdx = i
			break
		}
	}
	if eIdx == -1 {
		return s
	}
	mantissa := s[:eIdx]
	exp := s[eIdx+1:]
	sign := "+"
	if exp[0] == '+' || exp[0] == '-' {
		if exp[0] == '-' {
			sign = "-"
		}
		exp = exp[1:]
	}
	for len(exp) > 1 && exp[0] == '0' {
		exp = exp[1:]
	}
	if sign == "+" {
		return mantissa + "e" + exp
	}
	return mantissa + "e-" + exp
}

func writeArray(bb *bytebufferpool.ByteBuffer, a Array) {
	_ = bb.WriteByte('*')
	_, _ = bb.WriteString(strconv.Itoa(len(a)))
	_, _ = bb.Write(crlf)
	for _, elem := range a {
		writeFrame(bb, elem)
	}
}

func writeMap(bb *bytebufferpool.ByteBuffer, m *Map) {
	_ = bb.WriteByte('%')
	_, _ = bb.WriteString(strconv.Itoa(m.Len()))
	_, _ = bb.Write(crlf)
	m.Each(func(key string, value Frame) {
		writeSimpleLine(bb, '+', key)
		writeFrame(bb, value)
	})
}

func writeSet(bb *bytebufferpool.ByteBuffer, s Set) {
	_ = bb.WriteByte('~')
	_, _ = bb.WriteString(strconv.Itoa(len(s)))
	_, _ = bb.Write(crlf)
	for _, elem := range s {
		writeFrame(bb, elem)
	}
}

// EstimatedSize returns the len*32 sizing hint Encode uses to pre-grow
// its pooled buffer for container frames, per the design note on
// proportional pre-sizing.
func EstimatedSize(f Frame) int {
	switch v := f.(type) {
	case Array:
		return len(v) * containerSizeHint
	case Set:
		return len(v) * containerSizeHint
	case *Map:
		return v.Len() * containerSizeHint
	default:
		return containerSizeHint
	}
}
