//go:build windows

// Package webgpu implements the driver contract over a WebGPU device.
// Device-region allocations are GPU storage buffers; Locked and Unified
// regions stay in host memory, since WebGPU exposes no pinned or managed
// host allocations. Copies with a device endpoint go through the GPU queue
// with staging buffers.
package webgpu

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
	"go.uber.org/zap"

	"github.com/axon-gpu/axon/internal/driver"
)

// Option configures a Driver.
type Option func(*Driver)

// WithLogger attaches a structured logger. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(d *Driver) { d.log = log }
}

// allocation is one owner-table slot: a GPU buffer for the device region,
// host bytes otherwise.
type allocation struct {
	gpu    *wgpu.Buffer
	host   []byte
	region driver.Region
	size   uintptr
	freed  bool
}

// Driver is a WebGPU-backed accelerator runtime.
type Driver struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	mu         sync.Mutex
	allocs     map[uint64]*allocation
	nextHandle uint64

	streamMu sync.Mutex
	streamID int32
	streams  []*driver.Stream

	log *zap.Logger
}

var _ driver.Driver = (*Driver)(nil)

// New creates a WebGPU driver. Returns an error if no adapter or device is
// available.
func New(opts ...Option) (d *Driver, err error) {
	// Recover from panic if the wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			d = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	d = &Driver{
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    queue,
		allocs:   make(map[uint64]*allocation),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Name identifies the driver implementation.
func (d *Driver) Name() string { return "webgpu" }

// Alloc reserves size bytes. Device-region memory is a GPU storage buffer
// with no host mapping; Locked and Unified fall back to host memory.
func (d *Driver) Alloc(region driver.Region, size uintptr) (driver.Ptr, error) {
	if !region.Allocatable() {
		return driver.Ptr{}, fmt.Errorf("webgpu: alloc in %s: %w", region, driver.ErrRegionMismatch)
	}
	if size == 0 {
		return driver.Ptr{}, fmt.Errorf("webgpu: alloc in %s: %w", region, driver.ErrInvalidSize)
	}

	a := &allocation{region: region, size: size}
	var raw unsafe.Pointer
	if region == driver.Device {
		// Copy sizes must be 4-byte aligned on the GPU queue.
		a.gpu = d.device.CreateBuffer(&wgpu.BufferDescriptor{
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
			Size:  alignCopy(uint64(size)),
		})
		if a.gpu == nil {
			return driver.Ptr{}, fmt.Errorf("webgpu: alloc %d bytes: %w", size, driver.ErrOutOfMemory)
		}
	} else {
		a.host = make([]byte, size)
		raw = unsafe.Pointer(&a.host[0])
	}

	d.mu.Lock()
	d.nextHandle++
	handle := d.nextHandle
	d.allocs[handle] = a
	d.mu.Unlock()

	d.log.Debug("alloc",
		zap.Uint64("handle", handle),
		zap.Stringer("region", region),
		zap.Uint64("bytes", uint64(size)))

	return driver.NewPtr(raw, handle, size, region), nil
}

// Free releases an allocation.
func (d *Driver) Free(p driver.Ptr) error {
	a, err := d.lookup(p)
	if err != nil {
		return err
	}

	d.mu.Lock()
	a.freed = true
	gpu := a.gpu
	a.gpu = nil
	a.host = nil
	d.mu.Unlock()

	if gpu != nil {
		gpu.Release()
	}
	return nil
}

// Memcpy copies n bytes between endpoints, blocking until complete.
func (d *Driver) Memcpy(dst, src driver.Ptr, n uintptr) error {
	if n == 0 {
		return nil
	}
	if n > dst.Size() || n > src.Size() {
		return fmt.Errorf("webgpu: memcpy %d bytes exceeds endpoint allocation", n)
	}

	dstBuf, dstHost, err := d.resolve(dst)
	if err != nil {
		return err
	}
	srcBuf, srcHost, err := d.resolve(src)
	if err != nil {
		return err
	}

	switch {
	case dstBuf == nil && srcBuf == nil:
		copy(dstHost[:n], srcHost[:n])
		return nil
	case dstBuf != nil && srcBuf == nil:
		return d.writeBuffer(dstBuf, srcHost[:n])
	case dstBuf == nil && srcBuf != nil:
		data, err := d.readBuffer(srcBuf, alignCopy(uint64(n)))
		if err != nil {
			return err
		}
		copy(dstHost[:n], data[:n])
		return nil
	default:
		encoder := d.device.CreateCommandEncoder(nil)
		encoder.CopyBufferToBuffer(srcBuf, 0, dstBuf, 0, alignCopy(uint64(n)))
		d.queue.Submit(encoder.Finish(nil))
		return nil
	}
}

// MemcpyAsync enqueues the copy on s. Transfer errors surface in the log,
// not to the caller; an enqueued copy has no one left to report to.
func (d *Driver) MemcpyAsync(dst, src driver.Ptr, n uintptr, s *driver.Stream) error {
	if n == 0 {
		return nil
	}
	if n > dst.Size() || n > src.Size() {
		return fmt.Errorf("webgpu: memcpy %d bytes exceeds endpoint allocation", n)
	}
	s.Submit(func() {
		if err := d.Memcpy(dst, src, n); err != nil {
			d.log.Error("async memcpy failed", zap.Error(err))
		}
	})
	return nil
}

// CreateStream creates an ordered execution queue owned by this driver.
func (d *Driver) CreateStream(nonBlocking bool, priority int) (*driver.Stream, error) {
	id := int(atomic.AddInt32(&d.streamID, 1))
	s := driver.NewStream(id, nonBlocking, priority)

	d.streamMu.Lock()
	d.streams = append(d.streams, s)
	d.streamMu.Unlock()

	return s, nil
}

// Synchronize blocks until every stream created by this driver drains.
func (d *Driver) Synchronize() error {
	d.streamMu.Lock()
	streams := make([]*driver.Stream, len(d.streams))
	copy(streams, d.streams)
	d.streamMu.Unlock()

	for _, s := range streams {
		s.Synchronize()
	}
	return nil
}

// Close destroys streams, releases live GPU buffers, and tears down the
// WebGPU device.
func (d *Driver) Close() error {
	d.streamMu.Lock()
	streams := d.streams
	d.streams = nil
	d.streamMu.Unlock()

	for _, s := range streams {
		s.Destroy()
	}

	d.mu.Lock()
	live := 0
	for _, a := range d.allocs {
		if !a.freed {
			live++
			if a.gpu != nil {
				a.gpu.Release()
				a.gpu = nil
			}
		}
	}
	d.mu.Unlock()
	if live > 0 {
		d.log.Warn("driver closed with live allocations", zap.Int("count", live))
	}

	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
	return nil
}

func (d *Driver) lookup(p driver.Ptr) (*allocation, error) {
	if p.Region() == driver.Host || p.Handle() == 0 {
		return nil, fmt.Errorf("webgpu: %s token: %w", p.Region(), driver.ErrBadHandle)
	}
	d.mu.Lock()
	a, ok := d.allocs[p.Handle()]
	d.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("webgpu: handle %d: %w", p.Handle(), driver.ErrBadHandle)
	}
	if a.freed {
		return nil, fmt.Errorf("webgpu: handle %d: %w", p.Handle(), driver.ErrDoubleFree)
	}
	if a.region != p.Region() {
		return nil, fmt.Errorf("webgpu: %s token against %s slot: %w",
			p.Region(), a.region, driver.ErrRegionMismatch)
	}
	return a, nil
}

// resolve maps an endpoint to either a GPU buffer or host bytes.
func (d *Driver) resolve(p driver.Ptr) (*wgpu.Buffer, []byte, error) {
	if p.Region() == driver.Host {
		return nil, unsafe.Slice((*byte)(p.Raw()), p.Size()), nil
	}
	a, err := d.lookup(p)
	if err != nil {
		return nil, nil, err
	}
	if a.gpu != nil {
		return a.gpu, nil, nil
	}
	return nil, a.host, nil
}

// writeBuffer uploads host bytes into a GPU buffer through a staging buffer
// created mapped with the data already in place.
func (d *Driver) writeBuffer(dst *wgpu.Buffer, data []byte) error {
	size := alignCopy(uint64(len(data)))
	staging := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageCopySrc,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	defer staging.Release()

	mappedPtr := staging.GetMappedRange(0, size)
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, data)
	staging.Unmap()

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(staging, 0, dst, 0, size)
	d.queue.Submit(encoder.Finish(nil))
	return nil
}

// readBuffer reads a GPU buffer back through a mappable staging buffer.
func (d *Driver) readBuffer(src *wgpu.Buffer, size uint64) ([]byte, error) {
	staging := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	d.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(d.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("webgpu: failed to map staging buffer: %w", err)
	}
	mappedPtr := staging.GetMappedRange(0, size)
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	result := make([]byte, size)
	copy(result, mappedSlice)
	staging.Unmap()

	return result, nil
}

// alignCopy rounds a copy size up to the 4-byte granularity GPU queue
// copies require.
func alignCopy(n uint64) uint64 {
	return (n + 3) &^ 3
}
