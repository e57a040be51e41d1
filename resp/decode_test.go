package resp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"respd/resp"
)

func TestDecodeSimpleFrames(t *testing.T) {
	cases := []struct {
		name string
		wire string
		want resp.Frame
	}{
		{"simple string", "+OK\r\n", resp.SimpleString("OK")},
		{"simple string empty", "+\r\n", resp.SimpleString("")},
		{"simple error", "-ERR oops\r\n", resp.SimpleError("ERR oops")},
		{"integer positive", ":1000\r\n", resp.Integer(1000)},
		{"integer negative", ":-42\r\n", resp.Integer(-42)},
		{"integer zero", ":0\r\n", resp.Integer(0)},
		{"bulk string", "$5\r\nhello\r\n", resp.BulkString("hello")},
		{"bulk string empty", "$0\r\n\r\n", resp.BulkString("")},
		{"null bulk string", "$-1\r\n", resp.NullBulkString{}},
		{"null array", "*-1\r\n", resp.NullArray{}},
		{"null", "_\r\n", resp.Null{}},
		{"boolean true", "#t\r\n", resp.Boolean(true)},
		{"boolean false", "#f\r\n", resp.Boolean(false)},
		{"double plain", ",3.14\r\n", resp.Double(3.14)},
		{"double integer-valued", ",10\r\n", resp.Double(10)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frame, n, err := resp.Decode([]byte(tc.wire))
			require.NoError(t, err)
			assert.Equal(t, len(tc.wire), n)
			assert.True(t, resp.Equal(tc.want, frame), "got %#v, want %#v", frame, tc.want)
		})
	}
}

func TestDecodeArray(t *testing.T) {
	wire := "*3\r\n:1\r\n:2\r\n:3\r\n"
	frame, n, err := resp.Decode([]byte(wire))
	require.NoError(t, err)
	assert.Equal(t, len(wire), n)

	want := resp.Array{resp.Integer(1), resp.Integer(2), resp.Integer(3)}
	assert.True(t, resp.Equal(want, frame))
}

func TestDecodeNestedArray(t *testing.T) {
	wire := "*2\r\n*2\r\n+a\r\n+b\r\n$3\r\nfoo\r\n"
	frame, n, err := resp.Decode([]byte(wire))
	require.NoError(t, err)
	assert.Equal(t, len(wire), n)

	want := resp.Array{
		resp.Array{resp.SimpleString("a"), resp.SimpleString("b")},
		resp.BulkString("foo"),
	}
	assert.True(t, resp.Equal(want, frame))
}

func TestDecodeEmptyArray(t *testing.T) {
	frame, n, err := resp.Decode([]byte("*0\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.True(t, resp.Equal(resp.Array{}, frame))
}

func TestDecodeSet(t *testing.T) {
	wire := "~3\r\n:1\r\n:2\r\n:1\r\n"
	frame, n, err := resp.Decode([]byte(wire))
	require.NoError(t, err)
	assert.Equal(t, len(wire), n)

	set, ok := frame.(resp.Set)
	require.True(t, ok)
	assert.Len(t, set, 2, "duplicate element must be deduplicated")
}

func TestDecodeMap(t *testing.T) {
	wire := "%2\r\n+first\r\n:1\r\n+second\r\n:2\r\n"
	frame, n, err := resp.Decode([]byte(wire))
	require.NoError(t, err)
	assert.Equal(t, len(wire), n)

	m, ok := frame.(*resp.Map)
	require.True(t, ok)
	assert.Equal(t, 2, m.Len())

	v, ok := m.Get("first")
	require.True(t, ok)
	assert.True(t, resp.Equal(resp.Integer(1), v))

	v, ok = m.Get("second")
	require.True(t, ok)
	assert.True(t, resp.Equal(resp.Integer(2), v))
}

func TestDecodeMapOrdering(t *testing.T) {
	wire := "%3\r\n+zeta\r\n:1\r\n+alpha\r\n:2\r\n+mid\r\n:3\r\n"
	frame, _, err := resp.Decode([]byte(wire))
	require.NoError(t, err)

	m := frame.(*resp.Map)
	var keys []string
	m.Each(func(key string, value resp.Frame) {
		keys = append(keys, key)
	})
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, keys)
}

// TestDecodeIncremental feeds a complete frame's bytes one at a time and
// asserts Decode reports ErrNotComplete until the final byte arrives, at
// which point it decodes correctly and reports consuming every byte.
func TestDecodeIncremental(t *testing.T) {
	cases := []struct {
		name string
		wire string
	}{
		{"simple string", "+hello world\r\n"},
		{"bulk string", "$5\r\nhello\r\n"},
		{"array", "*2\r\n:1\r\n:2\r\n"},
		{"nested array", "*2\r\n*1\r\n+a\r\n$3\r\nfoo\r\n"},
		{"map", "%1\r\n+k\r\n:7\r\n"},
		{"null bulk string", "$-1\r\n"},
		{"null array", "*-1\r\n"},
		{"boolean true", "#t\r\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			full := []byte(tc.wire)
			for i := 0; i < len(full)-1; i++ {
				_, _, err := resp.Decode(full[:i])
				assert.ErrorIs(t, err, resp.ErrNotComplete, "prefix length %d should be incomplete", i)
			}
			_, n, err := resp.Decode(full)
			require.NoError(t, err)
			assert.Equal(t, len(full), n)
		})
	}
}

// TestExpectedLengthMatchesDecode checks ExpectedLength agrees with the
// byte count Decode itself reports consuming, across every frame kind.
func TestExpectedLengthMatchesDecode(t *testing.T) {
	wires := []string{
		"+OK\r\n",
		"-ERR bad\r\n",
		":123\r\n",
		"$3\r\nfoo\r\n",
		"$-1\r\n",
		"*2\r\n:1\r\n:2\r\n",
		"*-1\r\n",
		"_\r\n",
		"#t\r\n",
		"#f\r\n",
		",1.5\r\n",
		"%1\r\n+k\r\n:1\r\n",
		"~2\r\n:1\r\n:2\r\n",
	}

	for _, wire := range wires {
		buf := []byte(wire)
		n, err := resp.ExpectedLength(buf)
		require.NoError(t, err)

		_, consumed, err := resp.Decode(buf)
		require.NoError(t, err)
		assert.Equal(t, consumed, n, "ExpectedLength/Decode mismatch for %q", wire)
	}
}

func TestExpectedLengthNotComplete(t *testing.T) {
	_, err := resp.ExpectedLength([]byte("$5\r\nhel"))
	assert.ErrorIs(t, err, resp.ErrNotComplete)

	_, err = resp.ExpectedLength([]byte(""))
	assert.ErrorIs(t, err, resp.ErrNotComplete)

	_, err = resp.ExpectedLength([]byte("*2\r\n:1\r\n"))
	assert.ErrorIs(t, err, resp.ErrNotComplete)
}

func TestDecodeNullDisambiguation(t *testing.T) {
	// "$-1\r\n" must decode as NullBulkString, never fall through to the
	// bulk string length parser (which would choke on "-1" as a length).
	frame, n, err := resp.Decode([]byte("$-1\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	_, ok := frame.(resp.NullBulkString)
	assert.True(t, ok)

	frame, n, err = resp.Decode([]byte("*-1\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	_, ok = frame.(resp.NullArray)
	assert.True(t, ok)
}

func TestDecodeInvalidFrameType(t *testing.T) {
	_, _, err := resp.Decode([]byte("?garbage\r\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, resp.ErrNotComplete)

	var decErr *resp.DecodeError
	assert.ErrorAs(t, err, &decErr)
}

func TestDecodeInvalidIntegerIsFatal(t *testing.T) {
	_, _, err := resp.Decode([]byte(":not-a-number\r\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, resp.ErrNotComplete)
}

func TestDecodeNegativeBulkLengthOtherThanMinusOneIsFatal(t *testing.T) {
	_, _, err := resp.Decode([]byte("$-2\r\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, resp.ErrNotComplete)
}

func TestDecodeBulkStringMissingTrailingCRLF(t *testing.T) {
	_, _, err := resp.Decode([]byte("$3\r\nfooXX"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, resp.ErrNotComplete)
}
