// Package respio wires the RESP codec (package resp) into the
// connection engine's Framer/Decoder/Encoder function types, and
// supplies the ServerHook that turns a fatal codec error into a
// logged, closed connection.
package respio

import (
	"github.com/pkg/errors"

	"respd/command"
	"respd/internal/boot"
	"respd/internal/decoder"
	"respd/internal/encoder"
	"respd/internal/framer"
	"respd/internal/handler"
	"respd/internal/hook"
	"respd/metrics"
	"respd/resp"
)

// Framer slices complete RESP frames off the front of the connection's
// growing read buffer using resp.ExpectedLength — boundary detection
// only, it never materializes a Frame and never consumes bytes it
// cannot yet complete. A NotComplete result simply ends the loop,
// leaving the remaining bytes for the next read; any other error is
// fatal and is propagated so the connection engine's hook can close
// the connection.
func Framer() framer.Framer {
	return func(c boot.Conn, buf []byte) (frames [][]byte, remaining []byte, err error) {
		pos := 0
		for pos < len(buf) {
			n, lerr := resp.ExpectedLength(buf[pos:])
			if lerr != nil {
				if errors.Is(lerr, resp.ErrNotComplete) {
					break
				}
				return frames, buf[pos:], lerr
			}
			frame := make([]byte, n)
			copy(frame, buf[pos:pos+n])
			frames = append(frames, frame)
			pos += n
		}
		remaining = buf[pos:]
		return frames, remaining, nil
	}
}

// Decoder turns one Framer-sliced frame's bytes into a resp.Frame.
// Because the Framer already proved the slice holds exactly one
// complete frame, this should not itself observe NotComplete in
// practice; any decode error here is still propagated as fatal.
func Decoder() decoder.Decoder {
	return func(c boot.Conn, buf []byte) (any, error) {
		frame, _, err := resp.Decode(buf)
		if err != nil {
			return nil, err
		}
		return frame, nil
	}
}

// Encoder serializes a resp.Frame reply back to wire bytes.
func Encoder() encoder.Encoder {
	return func(c boot.Conn, msg any) ([]byte, error) {
		frame, ok := msg.(resp.Frame)
		if !ok {
			return nil, errors.Errorf("respio: encoder: unsupported message type %T", msg)
		}
		return resp.Encode(frame), nil
	}
}

// Hook closes a connection on any fatal codec error (framer or
// decoder) after logging it at warn level, and keeps the optional
// active-connections gauge in step with connect/close events. All
// other lifecycle events fall back to hook.ServerEvent's no-ops.
type Hook struct {
	hook.ServerEvent
	Log     boot.Logger
	Metrics *metrics.Metrics
}

// NewHook returns a Hook that logs through log and, if m is non-nil,
// tracks active connections in it.
func NewHook(log boot.Logger, m *metrics.Metrics) *Hook {
	return &Hook{Log: log, Metrics: m}
}

func (h *Hook) OnConnect(c boot.Conn) {
	h.Log.Debug("conn %s connected from %s", c.ID(), c.RemoteAddr())
	if h.Metrics != nil {
		h.Metrics.ConnectionOpened()
	}
}

func (h *Hook) OnClose(c boot.Conn) {
	h.Log.Debug("conn %s closed", c.ID())
	if h.Metrics != nil {
		h.Metrics.ConnectionClosed()
	}
}

func (h *Hook) OnError(c boot.Conn, err error) {
	h.Log.Warn("conn %s fatal decode error: %v", c.ID(), err)
	c.Close()
}

func (h *Hook) OnRead(c boot.Conn, buf []byte, err error) {
	if err != nil {
		h.Log.Warn("conn %s fatal frame error: %v", c.ID(), err)
		c.Close()
	}
}

// CommandHandler parses the decoded frame sitting in ctx.Payload() into
// a Command, executes it against exec, and sends the reply frame back
// over the connection. A parse failure (malformed command shape, wrong
// arity, wrong argument type) replies with a SimpleError and leaves the
// connection open — only codec-level errors close the connection, command
// errors are ordinary RESP replies.
func CommandHandler(exec *command.Executor, m *metrics.Metrics) handler.Handler {
	return func(ctx handler.Context, next func()) {
		frame, ok := ctx.Payload().(resp.Frame)
		if !ok {
			next()
			return
		}

		cmd, err := command.Parse(frame)
		if err != nil {
			if m != nil {
				m.CommandProcessed("unknown", metrics.OutcomeError)
			}
			_ = ctx.Conn().Send(resp.SimpleError("ERR " + err.Error()))
			next()
			return
		}

		_ = ctx.Conn().Send(exec.Execute(cmd))
		next()
	}
}

// RateLimitReject is the handler.RateLimitHandler callback that replies
// with a rate-limit error instead of letting the chain reach
// CommandHandler. It deliberately does not call next.
func RateLimitReject(ctx handler.Context, next func()) {
	_ = ctx.Conn().Send(resp.SimpleError("ERR rate limited"))
}
