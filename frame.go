// Engine frame types and the pixel and sample format tables shared by the
// frame converters.
package wcbridge

import "errors"

// Frame conversion errors.
var (
	ErrUnsupportedPixelFormat  = errors.New("unsupported pixel format")
	ErrUnsupportedSampleFormat = errors.New("unsupported sample format")
	ErrLayoutMismatch          = errors.New("plane layout does not match pixel format")
	ErrFrameDataMismatch       = errors.New("frame data does not match frame kind")
)

// Engine pixel formats (AVPixelFormat numbering) the bridge converts.
const (
	PixFmtYUV420P  = 0
	PixFmtYUV422P  = 4
	PixFmtYUV444P  = 5
	PixFmtNV12     = 23
	PixFmtRGBA     = 26
	PixFmtBGRA     = 28
	PixFmtYUVA420P = 33
)

// Engine sample formats (AVSampleFormat numbering).
const (
	SampleFmtU8   = 0
	SampleFmtS16  = 1
	SampleFmtS32  = 2
	SampleFmtFLT  = 3
	SampleFmtU8P  = 5
	SampleFmtS16P = 6
	SampleFmtS32P = 7
	SampleFmtFLTP = 8
)

// VideoPixelFormat is a platform pixel format name.
type VideoPixelFormat string

const (
	PixelFormatI420  VideoPixelFormat = "I420"
	PixelFormatI420A VideoPixelFormat = "I420A"
	PixelFormatI422  VideoPixelFormat = "I422"
	PixelFormatNV12  VideoPixelFormat = "NV12"
	PixelFormatRGBA  VideoPixelFormat = "RGBA"
	PixelFormatRGBX  VideoPixelFormat = "RGBX"
	PixelFormatBGRA  VideoPixelFormat = "BGRA"
	PixelFormatBGRX  VideoPixelFormat = "BGRX"
)

// AudioSampleFormat is a platform sample format name.
type AudioSampleFormat string

const (
	SampleFormatU8        AudioSampleFormat = "u8"
	SampleFormatS16       AudioSampleFormat = "s16"
	SampleFormatS32       AudioSampleFormat = "s32"
	SampleFormatF32       AudioSampleFormat = "f32"
	SampleFormatU8Planar  AudioSampleFormat = "u8-planar"
	SampleFormatS16Planar AudioSampleFormat = "s16-planar"
	SampleFormatS32Planar AudioSampleFormat = "s32-planar"
	SampleFormatF32Planar AudioSampleFormat = "f32-planar"
)

// pixelLayout describes how a pixel format splits into planes.
type pixelLayout struct {
	engine int
	planes int
	bpp    int // bytes per pixel in plane 0
	cwlog2 int // chroma width shift for planes 1 and 2
	chlog2 int // chroma height shift for planes 1 and 2
}

var pixelLayouts = map[VideoPixelFormat]pixelLayout{
	PixelFormatI420:  {PixFmtYUV420P, 3, 1, 1, 1},
	PixelFormatI420A: {PixFmtYUVA420P, 4, 1, 1, 1},
	PixelFormatI422:  {PixFmtYUV422P, 3, 1, 1, 0},
	PixelFormatNV12:  {PixFmtNV12, 2, 1, 0, 1},
	PixelFormatRGBA:  {PixFmtRGBA, 1, 4, 0, 0},
	PixelFormatRGBX:  {PixFmtRGBA, 1, 4, 0, 0},
	PixelFormatBGRA:  {PixFmtBGRA, 1, 4, 0, 0},
	PixelFormatBGRX:  {PixFmtBGRA, 1, 4, 0, 0},
}

// nativePixelFormat maps an engine pixel format to its platform name.
func nativePixelFormat(format int) (VideoPixelFormat, bool) {
	switch format {
	case PixFmtYUV420P:
		return PixelFormatI420, true
	case PixFmtYUVA420P:
		return PixelFormatI420A, true
	case PixFmtYUV422P:
		return PixelFormatI422, true
	case PixFmtNV12:
		return PixelFormatNV12, true
	case PixFmtRGBA:
		return PixelFormatRGBA, true
	case PixFmtBGRA:
		return PixelFormatBGRA, true
	default:
		return "", false
	}
}

// PlaneCount returns the number of planes of a platform pixel format, or 0
// when the format is unknown.
func (f VideoPixelFormat) PlaneCount() int {
	return pixelLayouts[f].planes
}

// planeSize returns the width in bytes and the row count of plane p of a
// width x height frame.
func (l pixelLayout) planeSize(p, width, height int) (int, int) {
	w, h := width, height
	if p == 1 || p == 2 {
		w >>= l.cwlog2
		h >>= l.chlog2
	}
	return w * l.bpp, h
}

// packedLayout returns the tightly packed plane layout of a width x height
// frame and its total size.
func (l pixelLayout) packedLayout(width, height int) ([]PlaneLayout, int) {
	layout := make([]PlaneLayout, l.planes)
	offset := 0
	for p := range layout {
		stride, rows := l.planeSize(p, width, height)
		layout[p] = PlaneLayout{Offset: offset, Stride: stride}
		offset += stride * rows
	}
	return layout, offset
}

// sampleLayout describes a sample format.
type sampleLayout struct {
	engine int
	planar bool
	kind   sampleKind
}

var sampleLayouts = map[AudioSampleFormat]sampleLayout{
	SampleFormatU8:        {SampleFmtU8, false, sampleU8},
	SampleFormatS16:       {SampleFmtS16, false, sampleS16},
	SampleFormatS32:       {SampleFmtS32, false, sampleS32},
	SampleFormatF32:       {SampleFmtFLT, false, sampleF32},
	SampleFormatU8Planar:  {SampleFmtU8P, true, sampleU8},
	SampleFormatS16Planar: {SampleFmtS16P, true, sampleS16},
	SampleFormatS32Planar: {SampleFmtS32P, true, sampleS32},
	SampleFormatF32Planar: {SampleFmtFLTP, true, sampleF32},
}

// nativeSampleFormat maps an engine sample format to its platform name.
func nativeSampleFormat(format int) (AudioSampleFormat, bool) {
	for name, l := range sampleLayouts {
		if l.engine == format {
			return name, true
		}
	}
	return "", false
}

// IsPlanar reports whether each channel is stored in its own plane.
func (f AudioSampleFormat) IsPlanar() bool {
	return sampleLayouts[f].planar
}

// BytesPerSample returns the size of one sample, or 0 for an unknown format.
func (f AudioSampleFormat) BytesPerSample() int {
	l, ok := sampleLayouts[f]
	if !ok {
		return 0
	}
	return l.kind.size()
}

// PlaneLayout locates one plane inside a packed frame buffer.
type PlaneLayout struct {
	Offset int
	Stride int
}

// FrameData is the payload of an engine frame. It is one of PackedPlanes,
// RowPlanes, InterleavedSamples or PlanarSamples.
type FrameData interface {
	frameData()
}

// PackedPlanes is a single buffer holding every plane, located by Layout.
type PackedPlanes struct {
	Data   []byte
	Layout []PlaneLayout
}

// RowPlanes is the legacy video layout: one slice of rows per plane.
type RowPlanes [][][]byte

// InterleavedSamples holds all channels' samples interleaved in one buffer.
type InterleavedSamples struct {
	Samples SampleBuffer
}

// PlanarSamples holds one sample buffer per channel.
type PlanarSamples []SampleBuffer

func (PackedPlanes) frameData()       {}
func (RowPlanes) frameData()          {}
func (InterleavedSamples) frameData() {}
func (PlanarSamples) frameData()      {}

// Frame is a decoded engine frame. Video frames use Width and Height; audio
// frames use SampleRate, NbSamples and Channels. Format is an engine pixel
// or sample format.
type Frame struct {
	Format   int
	Data     FrameData
	PTS      I64
	TimeBase Rational

	Width  int
	Height int

	SampleRate int
	NbSamples  int
	Channels   int
}
