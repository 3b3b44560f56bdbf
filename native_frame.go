package wcbridge

import (
	"context"
	"fmt"
)

// Rect is a pixel rectangle.
type Rect struct {
	X, Y          int
	Width, Height int
}

// NativeVideoFrame is a platform raw video frame. Timestamps are in
// microseconds.
type NativeVideoFrame interface {
	Format() VideoPixelFormat
	CodedWidth() int
	CodedHeight() int
	VisibleRect() Rect
	Timestamp() int64

	// AllocationSize is the number of bytes CopyTo writes.
	AllocationSize() int

	// CopyTo writes the visible pixels, tightly packed plane after plane,
	// and returns where each plane landed.
	CopyTo(ctx context.Context, dst []byte) ([]PlaneLayout, error)
}

// NativeAudioData is a platform raw audio buffer. Timestamps are in
// microseconds.
type NativeAudioData interface {
	Format() AudioSampleFormat
	SampleRate() int
	NumberOfFrames() int
	NumberOfChannels() int
	Timestamp() int64

	// AllocationSize is the number of bytes CopyTo writes for plane.
	AllocationSize(plane int) int

	// CopyTo writes one plane: a single channel for planar formats, or all
	// interleaved samples for plane 0 of an interleaved format.
	CopyTo(ctx context.Context, dst []byte, plane int) error
}

// VideoFrameInit describes the buffer a VideoFrame is built from.
type VideoFrameInit struct {
	Format      VideoPixelFormat
	CodedWidth  int
	CodedHeight int
	Timestamp   int64
	Layout      []PlaneLayout
	Transfer    bool
}

// VideoFrame is the builtin NativeVideoFrame. Its visible rectangle is the
// whole coded area.
type VideoFrame struct {
	init   VideoFrameInit
	pl     pixelLayout
	data   []byte
	layout []PlaneLayout
}

var _ NativeVideoFrame = (*VideoFrame)(nil)

// NewVideoFrame creates a frame over data. Without a layout, data is taken
// as tightly packed planes.
func NewVideoFrame(data []byte, init VideoFrameInit) (*VideoFrame, error) {
	pl, ok := pixelLayouts[init.Format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPixelFormat, init.Format)
	}
	layout := init.Layout
	if layout == nil {
		layout, _ = pl.packedLayout(init.CodedWidth, init.CodedHeight)
	}
	if len(layout) != pl.planes {
		return nil, fmt.Errorf("%w: %s has %d planes, layout has %d",
			ErrLayoutMismatch, init.Format, pl.planes, len(layout))
	}
	for p, l := range layout {
		width, rows := pl.planeSize(p, init.CodedWidth, init.CodedHeight)
		if rows > 0 && (l.Stride < width || l.Offset+(rows-1)*l.Stride+width > len(data)) {
			return nil, fmt.Errorf("%w: plane %d (offset %d, stride %d) outside %d byte buffer",
				ErrLayoutMismatch, p, l.Offset, l.Stride, len(data))
		}
	}
	if !init.Transfer {
		data = append([]byte(nil), data...)
	}
	return &VideoFrame{init: init, pl: pl, data: data, layout: layout}, nil
}

func newVideoFrame(data []byte, init VideoFrameInit) (NativeVideoFrame, error) {
	return NewVideoFrame(data, init)
}

func (f *VideoFrame) Format() VideoPixelFormat { return f.init.Format }
func (f *VideoFrame) CodedWidth() int          { return f.init.CodedWidth }
func (f *VideoFrame) CodedHeight() int         { return f.init.CodedHeight }
func (f *VideoFrame) Timestamp() int64         { return f.init.Timestamp }

func (f *VideoFrame) VisibleRect() Rect {
	return Rect{Width: f.init.CodedWidth, Height: f.init.CodedHeight}
}

// Layout returns the frame's own plane layout.
func (f *VideoFrame) Layout() []PlaneLayout { return f.layout }

// Data returns the frame's buffer without copying.
func (f *VideoFrame) Data() []byte { return f.data }

func (f *VideoFrame) AllocationSize() int {
	_, size := f.pl.packedLayout(f.init.CodedWidth, f.init.CodedHeight)
	return size
}

func (f *VideoFrame) CopyTo(ctx context.Context, dst []byte) ([]PlaneLayout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, size := f.pl.packedLayout(f.init.CodedWidth, f.init.CodedHeight)
	if len(dst) < size {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrBufferTooSmall, len(dst), size)
	}
	for p, src := range f.layout {
		width, rows := f.pl.planeSize(p, f.init.CodedWidth, f.init.CodedHeight)
		for y := 0; y < rows; y++ {
			copy(dst[out[p].Offset+y*out[p].Stride:][:width], f.data[src.Offset+y*src.Stride:][:width])
		}
	}
	return out, nil
}

// AudioDataInit describes an AudioData. Data holds all planes back to back
// for planar formats.
type AudioDataInit struct {
	Format           AudioSampleFormat
	SampleRate       int
	NumberOfFrames   int
	NumberOfChannels int
	Timestamp        int64
	Data             []byte
	Transfer         bool
}

// AudioData is the builtin NativeAudioData.
type AudioData struct {
	init AudioDataInit
	sl   sampleLayout
}

var _ NativeAudioData = (*AudioData)(nil)

// NewAudioData creates an audio buffer from init.
func NewAudioData(init AudioDataInit) (*AudioData, error) {
	sl, ok := sampleLayouts[init.Format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSampleFormat, init.Format)
	}
	need := init.NumberOfFrames * init.NumberOfChannels * sl.kind.size()
	if len(init.Data) < need {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrBufferTooSmall, len(init.Data), need)
	}
	if !init.Transfer {
		init.Data = append([]byte(nil), init.Data...)
	}
	return &AudioData{init: init, sl: sl}, nil
}

func newAudioData(init AudioDataInit) (NativeAudioData, error) {
	return NewAudioData(init)
}

func (a *AudioData) Format() AudioSampleFormat { return a.init.Format }
func (a *AudioData) SampleRate() int           { return a.init.SampleRate }
func (a *AudioData) NumberOfFrames() int       { return a.init.NumberOfFrames }
func (a *AudioData) NumberOfChannels() int     { return a.init.NumberOfChannels }
func (a *AudioData) Timestamp() int64          { return a.init.Timestamp }

// Data returns the samples without copying, planes back to back.
func (a *AudioData) Data() []byte { return a.init.Data }

func (a *AudioData) AllocationSize(plane int) int {
	size := a.init.NumberOfFrames * a.sl.kind.size()
	if !a.sl.planar {
		size *= a.init.NumberOfChannels
	}
	return size
}

func (a *AudioData) CopyTo(ctx context.Context, dst []byte, plane int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	planes := 1
	if a.sl.planar {
		planes = a.init.NumberOfChannels
	}
	if plane < 0 || plane >= planes {
		return fmt.Errorf("plane %d out of range [0, %d)", plane, planes)
	}
	size := a.AllocationSize(plane)
	if len(dst) < size {
		return fmt.Errorf("%w: have %d, need %d", ErrBufferTooSmall, len(dst), size)
	}
	copy(dst, a.init.Data[plane*size:(plane+1)*size])
	return nil
}
