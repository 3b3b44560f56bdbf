package wcbridge

import (
	"errors"
	"fmt"
)

// ErrBufferTooSmall is returned by CopyTo when the destination cannot hold
// the data.
var ErrBufferTooSmall = errors.New("destination buffer too small")

// ChunkType indicates whether a chunk can be decoded independently.
type ChunkType int

const (
	ChunkTypeKey ChunkType = iota
	ChunkTypeDelta
)

func (t ChunkType) String() string {
	switch t {
	case ChunkTypeKey:
		return "key"
	case ChunkTypeDelta:
		return "delta"
	default:
		return "unknown"
	}
}

// EncodedChunk is a platform encoded audio or video chunk. Timestamps and
// durations are in microseconds.
type EncodedChunk interface {
	Type() ChunkType
	Timestamp() int64
	Duration() int64
	ByteLength() int
	CopyTo(dst []byte) error
}

// EncodedChunkInit holds the fields a chunk is constructed from. With
// Transfer set the chunk takes ownership of Data instead of copying it.
type EncodedChunkInit struct {
	Type      ChunkType
	Timestamp int64
	Duration  int64
	Data      []byte
	Transfer  bool
}

// ChunkMetadata accompanies chunks produced by an encoder. DecoderConfig is
// set when the encoder emits a new configuration.
type ChunkMetadata struct {
	DecoderConfig *DecoderConfig
}

// Chunk is the builtin EncodedChunk.
type Chunk struct {
	typ       ChunkType
	timestamp int64
	duration  int64
	data      []byte
}

var _ EncodedChunk = (*Chunk)(nil)

// NewChunk creates a chunk from init.
func NewChunk(init EncodedChunkInit) *Chunk {
	data := init.Data
	if !init.Transfer && data != nil {
		data = make([]byte, len(init.Data))
		copy(data, init.Data)
	}
	return &Chunk{
		typ:       init.Type,
		timestamp: init.Timestamp,
		duration:  init.Duration,
		data:      data,
	}
}

func newChunk(init EncodedChunkInit) (EncodedChunk, error) {
	return NewChunk(init), nil
}

func (c *Chunk) Type() ChunkType  { return c.typ }
func (c *Chunk) Timestamp() int64 { return c.timestamp }
func (c *Chunk) Duration() int64  { return c.duration }
func (c *Chunk) ByteLength() int  { return len(c.data) }

// Data returns the chunk's bytes without copying. Callers must not modify it.
func (c *Chunk) Data() []byte { return c.data }

func (c *Chunk) CopyTo(dst []byte) error {
	if len(dst) < len(c.data) {
		return fmt.Errorf("%w: have %d, need %d", ErrBufferTooSmall, len(dst), len(c.data))
	}
	copy(dst, c.data)
	return nil
}

// chunkBytes returns the bytes of any EncodedChunk, avoiding a copy for the
// builtin type.
func chunkBytes(c EncodedChunk) ([]byte, error) {
	if bc, ok := c.(*Chunk); ok {
		return bc.data, nil
	}
	data := make([]byte, c.ByteLength())
	if err := c.CopyTo(data); err != nil {
		return nil, err
	}
	return data, nil
}
