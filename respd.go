// Package respd is a RESP (REdis Serialization Protocol) key-value
// server core: wire codec, sharded concurrent store, command parser
// and executor, wired into a TCP connection engine with optional
// per-connection rate limiting and Prometheus metrics.
package respd

import (
	"context"
	"fmt"
	"respd/internal/boot"
	"respd/internal/boot/tcp"
	"respd/internal/conf"
	"respd/internal/decoder"
	"respd/internal/encoder"
	"respd/internal/framer"
	"respd/internal/handler"
	"respd/internal/hook"
	"respd/internal/respio"
	"time"
)

type Server = boot.Server
type Client = boot.Client
type Conn = boot.Conn

type Attrs = boot.Attrs
type Pool = boot.Pool
type Logger = boot.Logger

type ServerHook = hook.ServerHook
type ConnHook = hook.ConnHook
type ServerEvent = hook.ServerEvent
type ConnEvent = hook.ConnEvent

type Framer = framer.Framer

var RawFramer = framer.RawFramer
var LineFramer = framer.LineFramer
var DelimiterFramer = framer.DelimiterFramer
var FixedLengthFramer = framer.FixedLengthFramer
var LengthFieldFramer = framer.LengthFieldFramer

type Decoder = decoder.Decoder

var RawDecoder = decoder.RawDecoder
var StringDecoder = decoder.StringDecoder

type Encoder = encoder.Encoder

var GenericEncoder = encoder.GenericEncoder

type Handler = handler.Handler
type Context = handler.Context

var RateLimitHandler = handler.RateLimitHandler

type Config = conf.Config
type Option = func(*Config)

// WithPool 设置协程池
func WithPool(p Pool) Option {
	return func(c *Config) {
		c.Pool = p
	}
}

// WithLogger 设置日志器
func WithLogger(l Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithFramer 设置消息帧解析器
func WithFramer(f Framer) Option {
	return func(c *Config) {
		c.Framer = f
	}
}

// WithDecoder 设置消息解码器
func WithDecoder(d Decoder) Option {
	return func(c *Config) {
		c.Decoder = d
	}
}

// WithEncoder 设置消息编码器
func WithEncoder(e Encoder) Option {
	return func(c *Config) {
		c.Encoder = e
	}
}

// WithHandlers 设置全局处理器链
func WithHandlers(Handlers ...Handler) Option {
	return func(c *Config) {
		c.Handlers = Handlers
	}
}

// WithLocalAddr 设置本地地址，仅客户端有效
func WithLocalAddr(addr string) Option {
	return func(c *Config) {
		c.LocalAddr = addr
	}
}

// WithIDGenerator 设置连接唯一 ID 生成器
func WithIDGenerator(gen func() string) Option {
	return func(c *Config) {
		c.IDGenerator = gen
	}
}

// WithNoDelay 设置 TCP_NODELAY
func WithNoDelay(nd bool) Option {
	return func(c *Config) {
		c.NoDelay = nd
	}
}

// WithKeepAlive 设置 TCP KeepAlive
func WithKeepAlive(ka bool) Option {
	return func(c *Config) {
		c.KeepAlive = ka
	}
}

// WithKeepAlivePeriod 设置 TCP KeepAlive 探测间隔
func WithKeepAlivePeriod(period time.Duration) Option {
	return func(c *Config) {
		c.KeepAlivePeriod = period
	}
}

// WithWriteTimeout 设置单次写操作超时
func WithWriteTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.WriteTimeout = timeout
	}
}

// WithReadBufferSize 设置读缓冲区大小
func WithReadBufferSize(size int) Option {
	return func(c *Config) {
		c.ReadBufferSize = size
	}
}

// WithIdleTimeout 设置连接空闲超时
func WithIdleTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.IdleTimeout = timeout
	}
}

// WithTickInterval 设置内部定时任务周期
func WithTickInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.TickInterval = interval
	}
}

// initConfig 初始化配置。Framer/Decoder/Encoder 默认即为 RESP 编解码实现；
// conf.Config 自身保持协议无关，RESP 相关的默认值只在这一层接入。
func initConfig(opts ...Option) conf.Config {
	cfg := conf.Config{
		Framer:  respio.Framer(),
		Decoder: respio.Decoder(),
		Encoder: respio.Encoder(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	// 设置默认配置
	cfg.WithDefault()
	return cfg
}

// Serve starts a TCP RESP server, blocking until ctx is done, Stop() is
// called on the Server passed to hook.OnStart, or a fatal listener error
// occurs.
func Serve(ctx context.Context, hook hook.ServerHook, addr string, opts ...Option) error {
	cfg := initConfig(opts...)

	switch cfg.Network {
	case "tcp", "tcp4", "tcp6":
		srv := tcp.NewServer(ctx, cfg, hook, addr)
		return srv.Listen()
	default:
		return fmt.Errorf("unknown network: %s", cfg.Network)
	}
}

// Dial connects to a TCP RESP server.
func Dial(ctx context.Context, hook hook.ConnHook, addr string, opts ...Option) (boot.Conn, error) {
	cfg := initConfig(opts...)

	var c boot.Client
	switch cfg.Network {
	case "tcp", "tcp4", "tcp6":
		c = tcp.NewClient(ctx, cfg, hook, addr)
	default:
		return nil, fmt.Errorf("unknown network: %s", cfg.Network)
	}

	return c.Dial()
}
