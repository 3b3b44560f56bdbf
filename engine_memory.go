package wcbridge

import (
	"context"
	"fmt"
	"sync"
)

// MemoryEngine is an in-process Engine. Codec parameters and allocations
// live in Go maps behind a mutex; catalog queries go to a pluggable Catalog.
//
// Addresses are opaque: each Malloc returns a fresh non-zero base and CopyIn
// and CopyOut accept any range inside a single allocation.
type MemoryEngine struct {
	catalog Catalog

	mu      sync.Mutex
	params  map[Handle]CodecParameters
	nextH   Handle
	blocks  map[Addr][]byte
	nextA   Addr
	version int
}

var _ Engine = (*MemoryEngine)(nil)

// MemoryEngineOption configures a MemoryEngine.
type MemoryEngineOption func(*MemoryEngine)

// WithCatalog replaces the builtin codec and pixel format tables.
func WithCatalog(c Catalog) MemoryEngineOption {
	return func(e *MemoryEngine) {
		e.catalog = c
	}
}

// WithReportedVersion sets the engine major version reported by Version.
func WithReportedVersion(v int) MemoryEngineOption {
	return func(e *MemoryEngine) {
		e.version = v
	}
}

// allocation alignment; keeps addresses of distinct blocks far apart.
const memoryEngineAlign = 1 << 32

// NewMemoryEngine creates an engine with the builtin catalog.
func NewMemoryEngine(opts ...MemoryEngineOption) *MemoryEngine {
	e := &MemoryEngine{
		catalog: BuiltinCatalog{},
		params:  make(map[Handle]CodecParameters),
		blocks:  make(map[Addr][]byte),
		version: 5,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Version returns the engine major version used to pick frame layouts.
func (e *MemoryEngine) Version() int {
	return e.version
}

func (e *MemoryEngine) CodecName(ctx context.Context, id CodecID) (string, error) {
	return e.catalog.CodecName(ctx, id)
}

func (e *MemoryEngine) CodecDescriptorByName(ctx context.Context, name string) (*CodecDescriptor, error) {
	return e.catalog.CodecDescriptorByName(ctx, name)
}

func (e *MemoryEngine) PixFmtDescriptor(ctx context.Context, format int) (*PixFmtDescriptor, error) {
	return e.catalog.PixFmtDescriptor(ctx, format)
}

func (e *MemoryEngine) AllocCodecParameters(ctx context.Context) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextH++
	e.params[e.nextH] = DefaultCodecParameters()
	return e.nextH, nil
}

func (e *MemoryEngine) ReadCodecParameters(ctx context.Context, h Handle) (CodecParameters, error) {
	if err := ctx.Err(); err != nil {
		return CodecParameters{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.params[h]
	if !ok {
		return CodecParameters{}, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	return p, nil
}

func (e *MemoryEngine) WriteCodecParameters(ctx context.Context, h Handle, p CodecParameters) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.params[h]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	e.params[h] = p
	return nil
}

func (e *MemoryEngine) Malloc(ctx context.Context, size int) (Addr, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if size < 0 {
		return 0, fmt.Errorf("malloc: negative size %d", size)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextA += memoryEngineAlign
	e.blocks[e.nextA] = make([]byte, size)
	return e.nextA, nil
}

func (e *MemoryEngine) CopyIn(ctx context.Context, addr Addr, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	block, off, err := e.locate(addr, len(data))
	if err != nil {
		return err
	}
	copy(block[off:], data)
	return nil
}

func (e *MemoryEngine) CopyOut(ctx context.Context, addr Addr, size int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	block, off, err := e.locate(addr, size)
	if err != nil {
		return nil, err
	}
	out := make([]byte, size)
	copy(out, block[off:off+size])
	return out, nil
}

// locate resolves addr to its allocation and checks that size bytes fit.
// Caller must hold e.mu.
func (e *MemoryEngine) locate(addr Addr, size int) ([]byte, int, error) {
	base := addr &^ (memoryEngineAlign - 1)
	block, ok := e.blocks[base]
	if !ok || size < 0 {
		return nil, 0, fmt.Errorf("%w: %#x", ErrInvalidAddress, uint64(addr))
	}
	off := int(addr - base)
	if off+size > len(block) {
		return nil, 0, fmt.Errorf("%w: %#x+%d exceeds allocation of %d bytes",
			ErrInvalidAddress, uint64(addr), size, len(block))
	}
	return block, off, nil
}
