package wcbridge

import "strings"

// CodecID is the engine's numeric codec identifier (AVCodecID numbering).
type CodecID int32

const (
	CodecIDNone     CodecID = 0
	CodecIDMJPEG    CodecID = 7
	CodecIDH264     CodecID = 27
	CodecIDVP8      CodecID = 139
	CodecIDVP9      CodecID = 167
	CodecIDHEVC     CodecID = 173
	CodecIDAV1      CodecID = 226
	CodecIDPCMS16LE CodecID = 0x10000
	CodecIDPCMU8    CodecID = 0x10005
	CodecIDPCMMulaw CodecID = 0x10006
	CodecIDPCMAlaw  CodecID = 0x10007
	CodecIDPCMS32LE CodecID = 0x10008
	CodecIDPCMS24LE CodecID = 0x1000c
	CodecIDPCMF32LE CodecID = 0x10015
	CodecIDMP2      CodecID = 0x15000
	CodecIDMP3      CodecID = 0x15001
	CodecIDAAC      CodecID = 0x15002
	CodecIDAC3      CodecID = 0x15003
	CodecIDVorbis   CodecID = 0x15005
	CodecIDFLAC     CodecID = 0x1500c
	CodecIDOpus     CodecID = 0x1503c
)

// MediaType is the engine's codec type (AVMediaType numbering).
type MediaType int32

const (
	MediaTypeUnknown  MediaType = -1
	MediaTypeVideo    MediaType = 0
	MediaTypeAudio    MediaType = 1
	MediaTypeData     MediaType = 2
	MediaTypeSubtitle MediaType = 3
)

func (m MediaType) String() string {
	switch m {
	case MediaTypeVideo:
		return "video"
	case MediaTypeAudio:
		return "audio"
	case MediaTypeData:
		return "data"
	case MediaTypeSubtitle:
		return "subtitle"
	default:
		return "unknown"
	}
}

// Engine profile values the stream converters care about.
const (
	ProfileUnknown = -99

	ProfileAACLow  = 1
	ProfileAACHE   = 4
	ProfileAACHEv2 = 28

	ProfileH264Baseline = 66
	ProfileH264Main     = 77
	ProfileH264Extended = 88
	ProfileH264High     = 100

	// ProfileH264Constrained is or'ed into the profile when constraint_set1 applies.
	ProfileH264Constrained = 1 << 9
)

// Colour and chroma constants written by the config -> stream converter.
const (
	ColorRangeUnspecified = 0
	ColorRangeJPEG        = 2

	ChromaLocationUnspecified = 0
	ChromaLocationLeft        = 1
	ChromaLocationCenter      = 2
	ChromaLocationTopLeft     = 3
)

// VideoCodec identifies the video codec family of a codec string.
type VideoCodec int

const (
	VideoCodecUnknown VideoCodec = iota
	VideoCodecVP8
	VideoCodecVP9
	VideoCodecH264
	VideoCodecH265
	VideoCodecAV1
)

func (c VideoCodec) String() string {
	switch c {
	case VideoCodecVP8:
		return "VP8"
	case VideoCodecVP9:
		return "VP9"
	case VideoCodecH264:
		return "H264"
	case VideoCodecH265:
		return "H265"
	case VideoCodecAV1:
		return "AV1"
	default:
		return "Unknown"
	}
}

// MimeType returns the RTP MIME type for this codec.
func (c VideoCodec) MimeType() string {
	switch c {
	case VideoCodecVP8:
		return "video/VP8"
	case VideoCodecVP9:
		return "video/VP9"
	case VideoCodecH264:
		return "video/H264"
	case VideoCodecH265:
		return "video/H265"
	case VideoCodecAV1:
		return "video/AV1"
	default:
		return ""
	}
}

// ClockRate returns the RTP clock rate for this codec.
func (c VideoCodec) ClockRate() uint32 {
	// All video codecs use 90kHz clock
	return 90000
}

// DefaultPayloadType returns a typical payload type for this codec.
// Note: Actual payload type is negotiated via SDP.
func (c VideoCodec) DefaultPayloadType() uint8 {
	switch c {
	case VideoCodecVP8:
		return 96
	case VideoCodecVP9:
		return 98
	case VideoCodecH264:
		return 102
	case VideoCodecH265:
		return 104
	case VideoCodecAV1:
		return 35
	default:
		return 96
	}
}

// AudioCodec identifies the audio codec family of a codec string.
type AudioCodec int

const (
	AudioCodecUnknown AudioCodec = iota
	AudioCodecOpus
	AudioCodecG711A // A-law (PCMA)
	AudioCodecG711U // μ-law (PCMU)
	AudioCodecAAC
	AudioCodecFLAC
	AudioCodecMP3
	AudioCodecVorbis
	AudioCodecPCM
)

func (c AudioCodec) String() string {
	switch c {
	case AudioCodecOpus:
		return "Opus"
	case AudioCodecG711A:
		return "PCMA"
	case AudioCodecG711U:
		return "PCMU"
	case AudioCodecAAC:
		return "AAC"
	case AudioCodecFLAC:
		return "FLAC"
	case AudioCodecMP3:
		return "MP3"
	case AudioCodecVorbis:
		return "Vorbis"
	case AudioCodecPCM:
		return "PCM"
	default:
		return "Unknown"
	}
}

// MimeType returns the RTP MIME type for this codec, or "" when the codec
// has no RTP mapping.
func (c AudioCodec) MimeType() string {
	switch c {
	case AudioCodecOpus:
		return "audio/opus"
	case AudioCodecG711A:
		return "audio/PCMA"
	case AudioCodecG711U:
		return "audio/PCMU"
	case AudioCodecAAC:
		return "audio/AAC"
	default:
		return ""
	}
}

// ClockRate returns the RTP clock rate for this codec.
func (c AudioCodec) ClockRate() uint32 {
	switch c {
	case AudioCodecOpus:
		return 48000
	case AudioCodecG711A, AudioCodecG711U:
		return 8000
	default:
		return 48000
	}
}

// DefaultPayloadType returns a typical payload type for this codec.
func (c AudioCodec) DefaultPayloadType() uint8 {
	switch c {
	case AudioCodecOpus:
		return 111
	case AudioCodecG711A:
		return 8 // Static payload type
	case AudioCodecG711U:
		return 0 // Static payload type
	case AudioCodecAAC:
		return 97
	default:
		return 111
	}
}

// codecToken returns the part of a codec string before the first dot.
func codecToken(codec string) string {
	if i := strings.IndexByte(codec, '.'); i >= 0 {
		return codec[:i]
	}
	return codec
}

// VideoCodecOf classifies a platform video codec string.
func VideoCodecOf(codec string) VideoCodec {
	switch codecToken(codec) {
	case "vp8":
		return VideoCodecVP8
	case "vp09":
		return VideoCodecVP9
	case "avc1", "avc3":
		return VideoCodecH264
	case "hev1", "hvc1":
		return VideoCodecH265
	case "av01":
		return VideoCodecAV1
	default:
		return VideoCodecUnknown
	}
}

// AudioCodecOf classifies a platform audio codec string.
func AudioCodecOf(codec string) AudioCodec {
	switch tok := codecToken(codec); tok {
	case "opus":
		return AudioCodecOpus
	case "alaw":
		return AudioCodecG711A
	case "ulaw":
		return AudioCodecG711U
	case "mp4a":
		return AudioCodecAAC
	case "flac":
		return AudioCodecFLAC
	case "mp3":
		return AudioCodecMP3
	case "vorbis":
		return AudioCodecVorbis
	default:
		if strings.HasPrefix(tok, "pcm-") {
			return AudioCodecPCM
		}
		return AudioCodecUnknown
	}
}

// engineCodecName maps a platform codec token to the engine's codec name.
// Tokens without a mapping pass through unchanged.
func engineCodecName(token string) string {
	switch token {
	case "mp4a":
		return "aac"
	case "pcm-u8":
		return "pcm_u8"
	case "pcm-s16":
		return "pcm_s16le"
	case "pcm-s24":
		return "pcm_s24le"
	case "pcm-s32":
		return "pcm_s32le"
	case "pcm-f32":
		return "pcm_f32le"
	case "av01":
		return "av1"
	case "avc1", "avc3":
		return "h264"
	case "hev1", "hvc1":
		return "hevc"
	case "vp09":
		return "vp9"
	default:
		return token
	}
}
