package wcbridge

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
)

// DefaultMTU is the RTP packet size used when none is given (UDP safe).
const DefaultMTU = 1200

// rtpHeaderSize is the fixed RTP header without CSRCs or extensions.
const rtpHeaderSize = 12

// ErrNoPayloader is returned when a codec has no RTP payload format.
var ErrNoPayloader = errors.New("codec has no RTP payload format")

// ChunkPacketizer splits encoded chunks of one stream into RTP packets.
// H.264 and H.265 chunks may be length-prefixed (when the config carries an
// avcC or hvcC description) or Annex-B; with a description, key chunks get
// the record's parameter sets prepended.
type ChunkPacketizer struct {
	ssrc        uint32
	payloadType uint8
	mtu         int
	clockRate   uint32
	sequencer   rtp.Sequencer
	payloader   rtp.Payloader
	paramSets   []byte // Annex-B; non-nil when chunks are length-prefixed
	mu          sync.Mutex
}

// NewChunkPacketizer creates a packetizer for the stream config describes.
// A non-positive mtu selects DefaultMTU.
func NewChunkPacketizer(config *DecoderConfig, ssrc uint32, payloadType uint8, mtu int) (*ChunkPacketizer, error) {
	if config == nil || config.Codec.IsZero() {
		return nil, fmt.Errorf("%w: empty config", ErrNoPayloader)
	}
	if mtu <= 0 {
		mtu = DefaultMTU
	}
	payloader, clockRate, err := payloaderFor(config.Codec)
	if err != nil {
		return nil, err
	}
	p := &ChunkPacketizer{
		ssrc:        ssrc,
		payloadType: payloadType,
		mtu:         mtu,
		clockRate:   clockRate,
		sequencer:   rtp.NewRandomSequencer(),
		payloader:   payloader,
	}
	if len(config.Description) > 0 && config.Description[0] == 1 {
		ps, err := lengthPrefixedParamSets(VideoCodecOf(config.Codec.Name), config.Description)
		if err != nil {
			return nil, err
		}
		p.paramSets = ps
	}
	return p, nil
}

// lengthPrefixedParamSets parses an avcC or hvcC description and returns its
// parameter sets in Annex-B form. Other codecs return nil.
func lengthPrefixedParamSets(vc VideoCodec, desc []byte) ([]byte, error) {
	var (
		lengthSize int
		sets       func() ([]byte, error)
	)
	switch vc {
	case VideoCodecH264:
		rec, err := ParseAVCDecoderConfig(desc)
		if err != nil {
			return nil, err
		}
		lengthSize, sets = rec.LengthSize, rec.ParameterSetsAnnexB
	case VideoCodecH265:
		rec, err := ParseHEVCDecoderConfig(desc)
		if err != nil {
			return nil, err
		}
		lengthSize, sets = rec.LengthSize, rec.ParameterSetsAnnexB
	default:
		return nil, nil
	}
	if lengthSize != 4 {
		return nil, fmt.Errorf("%w: NAL length size %d", ErrMalformedExtradata, lengthSize)
	}
	ps, err := sets()
	if err != nil {
		return nil, err
	}
	if ps == nil {
		ps = []byte{}
	}
	return ps, nil
}

func payloaderFor(c CodecSpec) (rtp.Payloader, uint32, error) {
	if c.Proprietary != nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrNoPayloader, c)
	}
	switch vc := VideoCodecOf(c.Name); vc {
	case VideoCodecH264:
		return &codecs.H264Payloader{}, vc.ClockRate(), nil
	case VideoCodecH265:
		return &codecs.H265Payloader{}, vc.ClockRate(), nil
	case VideoCodecVP8:
		return &codecs.VP8Payloader{EnablePictureID: true}, vc.ClockRate(), nil
	case VideoCodecVP9:
		return &codecs.VP9Payloader{}, vc.ClockRate(), nil
	case VideoCodecAV1:
		return &codecs.AV1Payloader{}, vc.ClockRate(), nil
	}
	switch ac := AudioCodecOf(c.Name); ac {
	case AudioCodecOpus:
		return &codecs.OpusPayloader{}, ac.ClockRate(), nil
	case AudioCodecG711A, AudioCodecG711U:
		return &codecs.G711Payloader{}, ac.ClockRate(), nil
	}
	return nil, 0, fmt.Errorf("%w: %s", ErrNoPayloader, c)
}

// RTPTimestamp converts a microsecond timestamp to RTP clock ticks. The
// result wraps modulo 2^32.
func RTPTimestamp(us int64, clockRate uint32) uint32 {
	hi, lo := us/1_000_000, us%1_000_000
	return uint32(hi*int64(clockRate) + lo*int64(clockRate)/1_000_000)
}

// Packetize converts one chunk into RTP packets. The marker bit is set on
// the last packet of the chunk.
func (p *ChunkPacketizer) Packetize(c EncodedChunk) ([]*rtp.Packet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := chunkBytes(c)
	if err != nil {
		return nil, fmt.Errorf("read chunk: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	if p.paramSets != nil {
		if data, err = AVCCToAnnexB(data); err != nil {
			return nil, err
		}
		if c.Type() == ChunkTypeKey {
			data = append(append([]byte(nil), p.paramSets...), data...)
		}
	}

	payloads := p.payloader.Payload(uint16(p.mtu-rtpHeaderSize), data)
	ts := RTPTimestamp(c.Timestamp(), p.clockRate)
	packets := make([]*rtp.Packet, len(payloads))
	for i, payload := range payloads {
		packets[i] = &rtp.Packet{
			Header: rtp.Header{
				Version:        2,
				Marker:         i == len(payloads)-1,
				PayloadType:    p.payloadType,
				SequenceNumber: p.sequencer.NextSequenceNumber(),
				Timestamp:      ts,
				SSRC:           p.ssrc,
			},
			Payload: payload,
		}
	}
	return packets, nil
}

// ClockRate returns the RTP clock rate of the stream.
func (p *ChunkPacketizer) ClockRate() uint32 { return p.clockRate }

// SSRC returns the synchronization source.
func (p *ChunkPacketizer) SSRC() uint32 { return p.ssrc }

// SetSSRC changes the synchronization source.
func (p *ChunkPacketizer) SetSSRC(ssrc uint32) { p.mu.Lock(); p.ssrc = ssrc; p.mu.Unlock() }

// PayloadType returns the RTP payload type.
func (p *ChunkPacketizer) PayloadType() uint8 { return p.payloadType }

// SetPayloadType changes the RTP payload type.
func (p *ChunkPacketizer) SetPayloadType(pt uint8) { p.mu.Lock(); p.payloadType = pt; p.mu.Unlock() }
