package wcbridge

import (
	"context"
	"fmt"
)

// codecMeta contains static metadata about an engine codec.
type codecMeta struct {
	ID   CodecID
	Type MediaType
	Name string
}

// Static codec table in engine numbering.
var builtinCodecs = []codecMeta{
	{CodecIDMJPEG, MediaTypeVideo, "mjpeg"},
	{CodecIDH264, MediaTypeVideo, "h264"},
	{CodecIDVP8, MediaTypeVideo, "vp8"},
	{CodecIDVP9, MediaTypeVideo, "vp9"},
	{CodecIDHEVC, MediaTypeVideo, "hevc"},
	{CodecIDAV1, MediaTypeVideo, "av1"},
	{CodecIDPCMS16LE, MediaTypeAudio, "pcm_s16le"},
	{CodecIDPCMU8, MediaTypeAudio, "pcm_u8"},
	{CodecIDPCMMulaw, MediaTypeAudio, "pcm_mulaw"},
	{CodecIDPCMAlaw, MediaTypeAudio, "pcm_alaw"},
	{CodecIDPCMS32LE, MediaTypeAudio, "pcm_s32le"},
	{CodecIDPCMS24LE, MediaTypeAudio, "pcm_s24le"},
	{CodecIDPCMF32LE, MediaTypeAudio, "pcm_f32le"},
	{CodecIDMP2, MediaTypeAudio, "mp2"},
	{CodecIDMP3, MediaTypeAudio, "mp3"},
	{CodecIDAAC, MediaTypeAudio, "aac"},
	{CodecIDAC3, MediaTypeAudio, "ac3"},
	{CodecIDVorbis, MediaTypeAudio, "vorbis"},
	{CodecIDFLAC, MediaTypeAudio, "flac"},
	{CodecIDOpus, MediaTypeAudio, "opus"},
}

// Static pixel format table, indexed by engine pixel format number.
var builtinPixFmts = map[int]PixFmtDescriptor{
	0:  {"yuv420p", 3, 1, 1, [4]int{8, 8, 8}},
	1:  {"yuyv422", 3, 1, 0, [4]int{8, 8, 8}},
	2:  {"rgb24", 3, 0, 0, [4]int{8, 8, 8}},
	3:  {"bgr24", 3, 0, 0, [4]int{8, 8, 8}},
	4:  {"yuv422p", 3, 1, 0, [4]int{8, 8, 8}},
	5:  {"yuv444p", 3, 0, 0, [4]int{8, 8, 8}},
	6:  {"yuv410p", 3, 2, 2, [4]int{8, 8, 8}},
	7:  {"yuv411p", 3, 2, 0, [4]int{8, 8, 8}},
	8:  {"gray", 1, 0, 0, [4]int{8}},
	12: {"yuvj420p", 3, 1, 1, [4]int{8, 8, 8}},
	13: {"yuvj422p", 3, 1, 0, [4]int{8, 8, 8}},
	14: {"yuvj444p", 3, 0, 0, [4]int{8, 8, 8}},
	23: {"nv12", 3, 1, 1, [4]int{8, 8, 8}},
	24: {"nv21", 3, 1, 1, [4]int{8, 8, 8}},
	25: {"argb", 4, 0, 0, [4]int{8, 8, 8, 8}},
	26: {"rgba", 4, 0, 0, [4]int{8, 8, 8, 8}},
	27: {"abgr", 4, 0, 0, [4]int{8, 8, 8, 8}},
	28: {"bgra", 4, 0, 0, [4]int{8, 8, 8, 8}},
	33: {"yuva420p", 4, 1, 1, [4]int{8, 8, 8, 8}},
	62: {"yuv420p10le", 3, 1, 1, [4]int{10, 10, 10}},
	64: {"yuv422p10le", 3, 1, 0, [4]int{10, 10, 10}},
	68: {"yuv444p10le", 3, 0, 0, [4]int{10, 10, 10}},
}

// BuiltinCatalog answers catalog queries from static tables in engine
// numbering. It needs no native library.
type BuiltinCatalog struct{}

var _ Catalog = BuiltinCatalog{}

// CodecName returns the codec's short name, or "unknown_codec" like the engine.
func (BuiltinCatalog) CodecName(_ context.Context, id CodecID) (string, error) {
	for _, c := range builtinCodecs {
		if c.ID == id {
			return c.Name, nil
		}
	}
	if id == CodecIDNone {
		return "none", nil
	}
	return "unknown_codec", nil
}

// CodecDescriptorByName looks a codec up by its short name.
func (BuiltinCatalog) CodecDescriptorByName(_ context.Context, name string) (*CodecDescriptor, error) {
	for _, c := range builtinCodecs {
		if c.Name == name {
			return &CodecDescriptor{ID: c.ID, Type: c.Type, Name: c.Name}, nil
		}
	}
	return nil, nil
}

// PixFmtDescriptor returns the descriptor of a known pixel format.
func (BuiltinCatalog) PixFmtDescriptor(_ context.Context, format int) (*PixFmtDescriptor, error) {
	d, ok := builtinPixFmts[format]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
	return &d, nil
}
