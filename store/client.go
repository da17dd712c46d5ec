package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	basebigt "github.com/streamingfast/cfstore/base/bigt"
	"go.opencensus.io/trace"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// DefaultFamily is the column family created when `CreateTable` receives none.
const DefaultFamily = "cf1"

// Client is the CRUD facade over a Bigtable instance. A Client is created by
// `Open`, `New` or `NewFromProperties`, is safe for concurrent use and must be
// closed by its owner. Operations called after `Close` fail with
// `ErrNotConnected`.
type Client struct {
	bt         *basebigt.Bigtable
	compressor Compressor
	closed     *atomic.Bool
}

func Open(ctx context.Context, config *basebigt.Config, opts ...option.ClientOption) (*Client, error) {
	if config == nil {
		return nil, &OpError{Op: "open", Kind: KindInvalidArgument, Err: invalidArgument("nil config")}
	}

	if err := config.Validate(); err != nil {
		return nil, &OpError{Op: "open", Kind: KindInvalidArgument, Err: fmt.Errorf("%w: %s", ErrInvalidArgument, err)}
	}

	compressor, err := NewCompressor(config.Compression)
	if err != nil {
		return nil, &OpError{Op: "open", Kind: KindInvalidArgument, Err: fmt.Errorf("%w: %s", ErrInvalidArgument, err)}
	}

	bt, err := basebigt.New(ctx, config, opts...)
	if err != nil {
		zlog.Error("unable to connect", zap.Object("config", config), zap.Error(err))
		return nil, &OpError{Op: "open", Kind: KindConnection, Err: err}
	}

	return &Client{
		bt:         bt,
		compressor: compressor,
		closed:     atomic.NewBool(false),
	}, nil
}

// New opens a Client out of a DSN, see `basebigt.ParseDSN` for the format.
func New(ctx context.Context, dsn string, opts ...option.ClientOption) (*Client, error) {
	config, err := basebigt.ParseDSN(dsn)
	if err != nil {
		return nil, &OpError{Op: "open", Kind: KindInvalidArgument, Err: fmt.Errorf("%w: %s", ErrInvalidArgument, err)}
	}

	return Open(ctx, config, opts...)
}

// NewFromProperties opens a Client out of a properties file, see
// `basebigt.LoadProperties` for the recognized keys.
func NewFromProperties(ctx context.Context, path string, opts ...option.ClientOption) (*Client, error) {
	config, err := basebigt.LoadProperties(path)
	if err != nil {
		if errors.Is(err, basebigt.ErrInvalidConfig) {
			return nil, &OpError{Op: "open", Kind: KindInvalidArgument, Err: fmt.Errorf("%w: %s", ErrInvalidArgument, err)}
		}
		return nil, &OpError{Op: "open", Kind: KindIO, Err: err}
	}

	return Open(ctx, config, opts...)
}

func (c *Client) Config() *basebigt.Config {
	return c.bt.Config()
}

// Close releases both the data and the admin connections. Calling it more
// than once is a no-op.
func (c *Client) Close() error {
	if !c.closed.CAS(false, true) {
		return nil
	}

	if err := c.bt.Close(); err != nil {
		zlog.Warn("closing connection", zap.Error(err))
		return &OpError{Op: "close", Kind: KindClose, Err: err}
	}

	zlog.Debug("connection closed")
	return nil
}

func (c *Client) ensureOpen() error {
	if c.closed.Load() {
		return ErrNotConnected
	}
	return nil
}

// operation tracks a single facade call so that it is traced, measured and
// logged once at its boundary.
type operation struct {
	name   string
	table  string
	start  time.Time
	span   *trace.Span
	fields []zap.Field
}

func (c *Client) startOp(ctx context.Context, name, table string, fields ...zap.Field) (context.Context, *operation) {
	ctx, span := c.bt.StartSpan(ctx, "bigtable", name, trace.StringAttribute("table", table))

	return ctx, &operation{
		name:   name,
		table:  table,
		start:  time.Now(),
		span:   span,
		fields: append(fields, zap.String("op", name), zap.String("table", table)),
	}
}

// end turns `*errp` into an `*OpError` when set, then records the outcome.
func (o *operation) end(errp *error) {
	defer o.span.End()

	err := *errp
	recordOperation(o.name, o.start, err)

	fields := append(o.fields, zap.Duration("elapsed", time.Since(o.start)))
	if err == nil {
		zlog.Debug("operation completed", fields...)
		return
	}

	opErr := newOpError(o.name, o.table, err)
	*errp = opErr

	o.span.SetStatus(trace.Status{Code: trace.StatusCodeUnknown, Message: opErr.Error()})
	zlog.Error("operation failed", append(fields, zap.Stringer("kind", opErr.Kind), zap.Error(err))...)
}
