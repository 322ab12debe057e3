package memory

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/axon-gpu/axon/internal/driver"
)

// Option configures a Context.
type Option func(*Context)

// WithLogger attaches a structured logger. The default is a no-op logger.
// The logger's Fatal path is used when an implicit release fails; install a
// fatal hook if the process must not exit on that path.
func WithLogger(log *zap.Logger) Option {
	return func(c *Context) { c.log = log }
}

// Context binds owning handles to a driver. Every handle created through a
// Context allocates from, copies through, and releases into that context's
// driver; handles from different contexts never mix in a single copy.
type Context struct {
	drv driver.Driver
	log *zap.Logger
}

// NewContext creates a context over the given driver.
func NewContext(d driver.Driver, opts ...Option) *Context {
	c := &Context{drv: d, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Driver returns the bound driver.
func (c *Context) Driver() driver.Driver { return c.drv }

// CreateStream creates an ordered execution queue on the bound driver.
func (c *Context) CreateStream(nonBlocking bool, priority int) (*driver.Stream, error) {
	return c.drv.CreateStream(nonBlocking, priority)
}

// Synchronize blocks until all of the driver's streams drain.
func (c *Context) Synchronize() error {
	return c.drv.Synchronize()
}

// zstSentinel backs the token for allocations of zero-size elements.
// Handles over such elements perform no driver call but still need a
// representation distinct from "released" (the zero token).
var zstSentinel byte

func sentinelPtr(region driver.Region) driver.Ptr {
	return driver.NewPtr(unsafe.Pointer(&zstSentinel), 0, 0, region)
}

func isSentinel(p driver.Ptr) bool {
	return p.Raw() == unsafe.Pointer(&zstSentinel)
}
