// Package wcbridge converts between a libav-style codec engine's stream,
// packet and frame structures and WebCodecs-style platform objects.
//
// Key pieces include:
//   - Stream/config conversion: AudioStreamToConfig, VideoStreamToConfig and
//     their inverses ConfigToAudioStream, ConfigToVideoStream
//   - Codec string builders and parsers for AV1, H.264, HEVC, VP8 and VP9
//   - Packet/chunk conversion with split 64-bit timestamps (I64)
//   - Frame conversion between engine frames and native video frames and
//     audio data, packed or per-row plane layouts
//   - RTP packetization, WebRTC tracks and a WebM sink for bridged chunks
//
// # Architecture
//
//	Demux:  StreamDescriptor -> *StreamToConfig -> DecoderConfig
//	        Packet -> PacketToEncoded*Chunk -> EncodedChunk
//	        Frame -> LAFrameTo* -> NativeVideoFrame/NativeAudioData
//	Mux:    EncoderConfig -> ConfigTo*Stream -> StreamContext
//	        EncodedChunk -> Encoded*ChunkToPacket -> Packet
//	        NativeVideoFrame/NativeAudioData -> *ToLAFrame -> Frame
//
// # Engines
//
// Conversions talk to the engine through the Engine capability interface.
// MemoryEngine keeps everything in process. LibavCatalog answers codec and
// pixel format queries from libavcodec/libavutil loaded with purego; set
// WCBRIDGE_LIBAV_DIR to the directory containing the libraries. The remote
// package carries Engine over a websocket.
//
// Unsupported codecs are not errors: the converters return a nil config so
// callers can fall back to another decoder.
package wcbridge
