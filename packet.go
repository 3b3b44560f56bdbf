package wcbridge

import (
	"context"
	"fmt"
)

// PacketFlagKey marks a packet that starts a keyframe.
const PacketFlagKey = 1

// Packet is an engine packet. Timestamps are in TimeBase units.
type Packet struct {
	Data        []byte
	PTS         I64
	DTS         I64
	Duration    I64
	TimeBase    Rational
	StreamIndex int
	Flags       int
}

// IsKey reports whether the keyframe flag is set.
func (p *Packet) IsKey() bool {
	return p.Flags&PacketFlagKey != 0
}

// packetTimes converts a packet's pts and duration to microseconds, using
// the packet's timebase or, when it has none, the stream's.
func packetTimes(p *Packet, s *StreamDescriptor) (timestamp, duration int64) {
	tb := p.TimeBase
	if tb.IsZero() && s != nil {
		tb = s.TimeBase
	}
	return ToMicroseconds(p.PTS.Float64(), tb), ToMicroseconds(p.Duration.Float64(), tb)
}

// PacketToEncodedAudioChunk converts an engine packet to an audio chunk.
// Audio chunks are always key chunks.
func PacketToEncodedAudioChunk(p *Packet, s *StreamDescriptor, opts ...Option) (EncodedChunk, error) {
	o := newOptions(opts)
	ts, dur := packetTimes(p, s)
	return o.constructors.NewEncodedAudioChunk(EncodedChunkInit{
		Type:      ChunkTypeKey,
		Timestamp: ts,
		Duration:  dur,
		Data:      p.Data,
		Transfer:  o.transfer,
	})
}

// PacketToEncodedVideoChunk converts an engine packet to a video chunk, key
// when the packet's keyframe flag is set and delta otherwise.
func PacketToEncodedVideoChunk(p *Packet, s *StreamDescriptor, opts ...Option) (EncodedChunk, error) {
	o := newOptions(opts)
	ts, dur := packetTimes(p, s)
	typ := ChunkTypeDelta
	if p.IsKey() {
		typ = ChunkTypeKey
	}
	return o.constructors.NewEncodedVideoChunk(EncodedChunkInit{
		Type:      typ,
		Timestamp: ts,
		Duration:  dur,
		Data:      p.Data,
		Transfer:  o.transfer,
	})
}

// EncodedAudioChunkToPacket converts an audio chunk to an engine packet in
// the stream's timebase. The engine and metadata are accepted for symmetry
// with EncodedVideoChunkToPacket but not used: audio streams take their
// extradata from the config they were created with.
func EncodedAudioChunkToPacket(_ context.Context, _ Engine, c EncodedChunk, _ *ChunkMetadata, s StreamContext, streamIndex int) (*Packet, error) {
	return encodedChunkToPacket(c, s, streamIndex)
}

// EncodedVideoChunkToPacket converts a video chunk to an engine packet in
// the stream's timebase. Key chunks set PacketFlagKey.
//
// When meta carries a decoder config description and the stream has no
// extradata yet, the description becomes the stream's extradata. Later
// descriptions are ignored. Callers must serialize calls per stream.
func EncodedVideoChunkToPacket(ctx context.Context, e Engine, c EncodedChunk, meta *ChunkMetadata, s StreamContext, streamIndex int) (*Packet, error) {
	p, err := encodedChunkToPacket(c, s, streamIndex)
	if err != nil {
		return nil, err
	}
	if c.Type() == ChunkTypeKey {
		p.Flags = PacketFlagKey
	}
	if err := latchExtradata(ctx, e, meta, s); err != nil {
		return nil, err
	}
	return p, nil
}

// encodedChunkToPacket copies the chunk data and rescales its times. pts and
// dts are equal: chunks carry no reordering.
func encodedChunkToPacket(c EncodedChunk, s StreamContext, streamIndex int) (*Packet, error) {
	data := make([]byte, c.ByteLength())
	if err := c.CopyTo(data); err != nil {
		return nil, fmt.Errorf("copy chunk: %w", err)
	}
	pts := SplitI64(FromMicroseconds(c.Timestamp(), s.TimeBase))
	return &Packet{
		Data:        data,
		PTS:         pts,
		DTS:         pts,
		Duration:    SplitI64(FromMicroseconds(c.Duration(), s.TimeBase)),
		TimeBase:    s.TimeBase,
		StreamIndex: streamIndex,
	}, nil
}

// latchExtradata stores the metadata's description as the stream's
// extradata when the stream has none.
func latchExtradata(ctx context.Context, e Engine, meta *ChunkMetadata, s StreamContext) error {
	if s.CodecPar == 0 || meta == nil || meta.DecoderConfig == nil || len(meta.DecoderConfig.Description) == 0 {
		return nil
	}
	par, err := e.ReadCodecParameters(ctx, s.CodecPar)
	if err != nil {
		return fmt.Errorf("read codec parameters: %w", err)
	}
	if par.Extradata != 0 {
		return nil
	}
	desc := meta.DecoderConfig.Description
	addr, err := e.Malloc(ctx, len(desc))
	if err != nil {
		return fmt.Errorf("malloc extradata: %w", err)
	}
	if err := e.CopyIn(ctx, addr, desc); err != nil {
		return fmt.Errorf("copy extradata: %w", err)
	}
	par.Extradata = addr
	par.ExtradataSize = len(desc)
	if err := e.WriteCodecParameters(ctx, s.CodecPar, par); err != nil {
		return fmt.Errorf("write codec parameters: %w", err)
	}
	return nil
}
