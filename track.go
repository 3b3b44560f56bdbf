package wcbridge

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pion/webrtc/v4"
)

// ChunkTrack implements pion's webrtc.TrackLocal for a stream of encoded
// chunks. Every binding gets its own packetizer using the negotiated payload
// type and SSRC.
type ChunkTrack struct {
	id       string
	streamID string
	rid      string
	kind     webrtc.RTPCodecType
	config   *DecoderConfig
	codec    webrtc.RTPCodecCapability
	mtu      int

	bindMu   sync.RWMutex
	bindings []*chunkBinding
}

type chunkBinding struct {
	ctx        webrtc.TrackLocalContext
	packetizer *ChunkPacketizer
}

var _ webrtc.TrackLocal = (*ChunkTrack)(nil)

// NewChunkTrack creates a track for chunks described by config.
func NewChunkTrack(config *DecoderConfig, id, streamID string) (*ChunkTrack, error) {
	codec, ok := CodecCapability(config)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPayloader, config.Codec)
	}
	kind := webrtc.RTPCodecTypeVideo
	if strings.HasPrefix(codec.MimeType, "audio/") {
		kind = webrtc.RTPCodecTypeAudio
	}
	return &ChunkTrack{
		id:       id,
		streamID: streamID,
		kind:     kind,
		config:   config,
		codec:    codec,
		mtu:      DefaultMTU,
	}, nil
}

// Codec returns the codec capability.
func (t *ChunkTrack) Codec() webrtc.RTPCodecCapability { return t.codec }

func (t *ChunkTrack) ID() string                { return t.id }
func (t *ChunkTrack) RID() string               { return t.rid }
func (t *ChunkTrack) StreamID() string          { return t.streamID }
func (t *ChunkTrack) Kind() webrtc.RTPCodecType { return t.kind }

// Bind implements webrtc.TrackLocal.
func (t *ChunkTrack) Bind(ctx webrtc.TrackLocalContext) (webrtc.RTPCodecParameters, error) {
	params := webrtc.RTPCodecParameters{RTPCodecCapability: t.codec}
	for _, p := range ctx.CodecParameters() {
		if strings.EqualFold(p.MimeType, t.codec.MimeType) {
			params = p
			break
		}
	}

	packetizer, err := NewChunkPacketizer(t.config, uint32(ctx.SSRC()), uint8(params.PayloadType), t.mtu)
	if err != nil {
		return webrtc.RTPCodecParameters{}, err
	}

	t.bindMu.Lock()
	defer t.bindMu.Unlock()
	t.bindings = append(t.bindings, &chunkBinding{ctx: ctx, packetizer: packetizer})
	return params, nil
}

// Unbind implements webrtc.TrackLocal.
func (t *ChunkTrack) Unbind(ctx webrtc.TrackLocalContext) error {
	t.bindMu.Lock()
	defer t.bindMu.Unlock()

	for i, b := range t.bindings {
		if b.ctx.ID() == ctx.ID() {
			t.bindings = append(t.bindings[:i], t.bindings[i+1:]...)
			break
		}
	}
	return nil
}

// WriteChunk packetizes c for every bound context and writes the packets.
func (t *ChunkTrack) WriteChunk(c EncodedChunk) error {
	t.bindMu.RLock()
	defer t.bindMu.RUnlock()

	for _, b := range t.bindings {
		packets, err := b.packetizer.Packetize(c)
		if err != nil {
			return err
		}
		for _, p := range packets {
			if _, err := b.ctx.WriteStream().WriteRTP(&p.Header, p.Payload); err != nil {
				return err
			}
		}
	}
	return nil
}
