package boot

import (
	"context"
	"net"
	"respd/pkg/attrs"
	"respd/pkg/pool"
)

type Server interface {
	Addr() net.Addr
	Context() context.Context
	IsRunning() bool
	Stop()
}

type Client interface {
	Dial() (Conn, error)
}

type Conn interface {
	ID() string
	Context() context.Context
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
	Attrs() Attrs
	IsActive() bool
	Send(msg any) error
	Close()
}

type Attrs = attrs.Attrs[any, any]

// Pool is the full pkg/pool.Pool surface, not just Submit: Conn needs
// SubmitCtx to build a per-connection pool.OrderedExecutor that
// serializes its frame dispatch (see Conn.Recv).
type Pool = pool.Pool

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}
