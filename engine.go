package wcbridge

import (
	"context"
	"errors"
)

// Engine errors.
var (
	ErrUnknownHandle  = errors.New("unknown codec parameters handle")
	ErrInvalidAddress = errors.New("invalid engine address")
	ErrUnknownFormat  = errors.New("unknown pixel format")
	ErrLibavNotLoaded = errors.New("libav libraries not loaded")
)

// Handle is an opaque reference to engine-owned codec parameters.
type Handle uint64

// Addr is an address in the engine's memory space. Zero is the null address.
type Addr uint64

// CodecParameters mirrors the engine's codec parameters struct. Reads and
// writes move the whole struct in one request.
type CodecParameters struct {
	CodecType      MediaType
	CodecID        CodecID
	Format         int // pixel or sample format
	Profile        int
	Level          int
	Width          int
	Height         int
	SampleRate     int
	Channels       int
	Extradata      Addr
	ExtradataSize  int
	ColorRange     int
	ColorPrimaries int
	ColorTRC       int
	ColorSpace     int
	ChromaLocation int
}

// DefaultCodecParameters returns the values a freshly allocated parameters
// struct holds.
func DefaultCodecParameters() CodecParameters {
	return CodecParameters{
		CodecType:      MediaTypeUnknown,
		Format:         -1,
		Profile:        ProfileUnknown,
		Level:          ProfileUnknown,
		ColorPrimaries: 2, // unspecified
		ColorTRC:       2,
		ColorSpace:     2,
	}
}

// CodecDescriptor describes a codec known to the engine.
type CodecDescriptor struct {
	ID   CodecID
	Type MediaType
	Name string
}

// PixFmtDescriptor describes the layout of an engine pixel format.
type PixFmtDescriptor struct {
	Name         string
	NbComponents int
	Log2ChromaW  int
	Log2ChromaH  int
	Depth        [4]int // bit depth per component
}

// CompDepth returns the bit depth of component i.
func (d *PixFmtDescriptor) CompDepth(i int) int {
	if i < 0 || i >= len(d.Depth) {
		return 0
	}
	return d.Depth[i]
}

// Catalog answers the engine's static codec and pixel format queries.
type Catalog interface {
	// CodecName returns the engine's short name for id ("h264", "aac", ...).
	CodecName(ctx context.Context, id CodecID) (string, error)

	// CodecDescriptorByName returns nil, nil when the engine does not know name.
	CodecDescriptorByName(ctx context.Context, name string) (*CodecDescriptor, error)

	// PixFmtDescriptor returns the descriptor of a pixel format.
	PixFmtDescriptor(ctx context.Context, format int) (*PixFmtDescriptor, error)
}

// ParameterStore reads and writes engine codec parameters.
type ParameterStore interface {
	AllocCodecParameters(ctx context.Context) (Handle, error)
	ReadCodecParameters(ctx context.Context, h Handle) (CodecParameters, error)
	WriteCodecParameters(ctx context.Context, h Handle, p CodecParameters) error
}

// Memory copies bytes in and out of the engine's address space.
type Memory interface {
	Malloc(ctx context.Context, size int) (Addr, error)
	CopyIn(ctx context.Context, addr Addr, data []byte) error
	CopyOut(ctx context.Context, addr Addr, size int) ([]byte, error)
}

// Engine is the capability set the bridge needs from a codec engine. Every
// method is a request that may cross a thread or process boundary.
type Engine interface {
	Catalog
	ParameterStore
	Memory
}

// StreamDescriptor is the engine's description of one demuxed or muxed stream.
type StreamDescriptor struct {
	Index     int
	CodecID   CodecID
	CodecType MediaType
	CodecPar  Handle
	TimeBase  Rational
}

// StreamContext is the minimal engine-facing stream produced from a platform
// config: codec parameters plus the timebase to mux or encode with.
type StreamContext struct {
	CodecPar Handle
	TimeBase Rational
}

// readExtradata copies a stream's extradata out of the engine, or returns nil
// when the parameters carry none.
func readExtradata(ctx context.Context, e Engine, p CodecParameters) ([]byte, error) {
	if p.Extradata == 0 {
		return nil, nil
	}
	return e.CopyOut(ctx, p.Extradata, p.ExtradataSize)
}
