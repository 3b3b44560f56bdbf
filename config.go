package wcbridge

import "github.com/sirupsen/logrus"

// ProprietaryCodec names an engine codec the platform has no codec string
// for. It is carried to a polyfilled decoder or encoder as-is.
type ProprietaryCodec struct {
	Codec string
	Ctx   ProprietaryContext
}

// ProprietaryContext is the codec context a polyfill needs to open the codec.
type ProprietaryContext struct {
	Channels   int
	SampleRate int
}

// CodecSpec is either a platform codec string or a proprietary codec.
type CodecSpec struct {
	Name        string
	Proprietary *ProprietaryCodec
}

// Codec returns a CodecSpec holding a codec string.
func Codec(s string) CodecSpec {
	return CodecSpec{Name: s}
}

// IsZero reports whether neither form is set.
func (c CodecSpec) IsZero() bool {
	return c.Name == "" && c.Proprietary == nil
}

// Token returns the codec name without its dotted parameters ("avc1" for
// "avc1.42e01e"), or the proprietary codec name.
func (c CodecSpec) Token() string {
	if c.Proprietary != nil {
		return c.Proprietary.Codec
	}
	return codecToken(c.Name)
}

func (c CodecSpec) String() string {
	if c.Proprietary != nil {
		return "proprietary:" + c.Proprietary.Codec
	}
	return c.Name
}

// DecoderConfig is the platform decoder configuration produced for a stream.
// Audio configs carry SampleRate and NumberOfChannels; video configs carry
// CodedWidth and CodedHeight.
type DecoderConfig struct {
	Codec            CodecSpec
	Description      []byte
	SampleRate       int
	NumberOfChannels int
	CodedWidth       int
	CodedHeight      int
}

// EncoderConfig is the platform-side configuration a stream is created from.
type EncoderConfig struct {
	Codec            CodecSpec
	SampleRate       int
	NumberOfChannels int
	Width            int
	Height           int
	Framerate        float64
}

// ProprietaryFallback reports whether a polyfill can handle an engine codec
// the platform does not know. A nil fallback handles nothing.
type ProprietaryFallback func(codec string) bool

// Constructors overrides the native object constructors, for environments
// where chunks and frames come from a polyfill.
type Constructors struct {
	NewEncodedAudioChunk func(EncodedChunkInit) (EncodedChunk, error)
	NewEncodedVideoChunk func(EncodedChunkInit) (EncodedChunk, error)
	NewVideoFrame        func(data []byte, init VideoFrameInit) (NativeVideoFrame, error)
	NewAudioData         func(init AudioDataInit) (NativeAudioData, error)
}

// Option configures a conversion.
type Option func(*options)

type options struct {
	constructors  Constructors
	timeBase      *Rational
	transfer      bool
	proprietary   ProprietaryFallback
	engineVersion int
	log           logrus.FieldLogger
}

func newOptions(opts []Option) *options {
	o := &options{
		constructors: Constructors{
			NewEncodedAudioChunk: newChunk,
			NewEncodedVideoChunk: newChunk,
			NewVideoFrame:        newVideoFrame,
			NewAudioData:         newAudioData,
		},
		engineVersion: 5,
		log:           logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithConstructors replaces the native constructors. Nil fields keep the
// builtin implementation.
func WithConstructors(c Constructors) Option {
	return func(o *options) {
		if c.NewEncodedAudioChunk != nil {
			o.constructors.NewEncodedAudioChunk = c.NewEncodedAudioChunk
		}
		if c.NewEncodedVideoChunk != nil {
			o.constructors.NewEncodedVideoChunk = c.NewEncodedVideoChunk
		}
		if c.NewVideoFrame != nil {
			o.constructors.NewVideoFrame = c.NewVideoFrame
		}
		if c.NewAudioData != nil {
			o.constructors.NewAudioData = c.NewAudioData
		}
	}
}

// WithTimeBase sets the timebase of engine frame timestamps, overriding the
// frame's own.
func WithTimeBase(tb Rational) Option {
	return func(o *options) {
		o.timeBase = &tb
	}
}

// WithTransfer lets native objects take ownership of engine buffers instead
// of copying them.
func WithTransfer(transfer bool) Option {
	return func(o *options) {
		o.transfer = transfer
	}
}

// WithProprietaryFallback enables configs for codecs the platform does not
// know, when fn accepts them.
func WithProprietaryFallback(fn ProprietaryFallback) Option {
	return func(o *options) {
		o.proprietary = fn
	}
}

// WithEngineVersion sets the engine major version. Versions below 5 produce
// per-row frame planes instead of a single buffer with a layout.
func WithEngineVersion(major int) Option {
	return func(o *options) {
		o.engineVersion = major
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}
