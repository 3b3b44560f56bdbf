package relay

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/thesyncim/wcbridge"
)

// WebMSink writes relayed chunks to a WebM stream. The stream is opened once
// every expected track is configured; chunks arriving earlier, and video
// deltas before the first keyframe, are dropped.
type WebMSink struct {
	open   func() (io.WriteCloser, error)
	tracks []Track
	log    logrus.FieldLogger

	mu      sync.Mutex
	configs map[Track]*wcbridge.DecoderConfig
	w       *wcbridge.WebMWriter
	keyed   bool
}

var _ Sink = (*WebMSink)(nil)

// NewWebMSink creates a sink that calls open to get its destination once
// all of tracks are known.
func NewWebMSink(open func() (io.WriteCloser, error), log logrus.FieldLogger, tracks ...Track) *WebMSink {
	return &WebMSink{
		open:    open,
		tracks:  tracks,
		log:     log.WithField("sink", "webm"),
		configs: make(map[Track]*wcbridge.DecoderConfig),
	}
}

func (s *WebMSink) index(t Track) int {
	for i, tt := range s.tracks {
		if tt == t {
			return i
		}
	}
	return -1
}

func (s *WebMSink) AddTrack(t Track, config *wcbridge.DecoderConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index(t) < 0 || s.w != nil {
		return nil
	}
	s.configs[t] = config
	if len(s.configs) < len(s.tracks) {
		return nil
	}

	configs := make([]*wcbridge.DecoderConfig, len(s.tracks))
	for i, tt := range s.tracks {
		configs[i] = s.configs[tt]
	}
	out, err := s.open()
	if err != nil {
		return fmt.Errorf("open webm output: %w", err)
	}
	w, err := wcbridge.NewWebMWriter(out, configs, wcbridge.WithLogger(s.log))
	if err != nil {
		out.Close()
		return err
	}
	s.w = w
	s.log.WithField("tracks", len(configs)).Info("webm output started")
	return nil
}

func (s *WebMSink) WriteChunk(t Track, c wcbridge.EncodedChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(t)
	if s.w == nil || i < 0 {
		return nil
	}
	if !s.keyed {
		if t != TrackVideo && s.index(TrackVideo) >= 0 {
			return nil
		}
		if c.Type() != wcbridge.ChunkTypeKey {
			return nil
		}
		s.keyed = true
	}
	return s.w.WriteChunk(i, c)
}

func (s *WebMSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return nil
	}
	err := s.w.Close()
	s.w = nil
	return err
}

// RTPSink packetizes relayed chunks and writes each RTP packet to w, one
// write per packet (a connected UDP socket, typically). Tracks whose codec
// has no RTP payload format are skipped. Video uses ssrc and audio ssrc+1.
type RTPSink struct {
	w    io.Writer
	ssrc uint32
	mtu  int
	log  logrus.FieldLogger

	mu          sync.Mutex
	packetizers map[Track]*wcbridge.ChunkPacketizer
}

var _ Sink = (*RTPSink)(nil)

// NewRTPSink creates an RTP sink. A non-positive mtu selects
// wcbridge.DefaultMTU.
func NewRTPSink(w io.Writer, ssrc uint32, mtu int, log logrus.FieldLogger) *RTPSink {
	return &RTPSink{
		w:           w,
		ssrc:        ssrc,
		mtu:         mtu,
		log:         log.WithField("sink", "rtp"),
		packetizers: make(map[Track]*wcbridge.ChunkPacketizer),
	}
}

// PayloadType returns the payload type a track is sent with.
func PayloadType(config *wcbridge.DecoderConfig) uint8 {
	if vc := wcbridge.VideoCodecOf(config.Codec.Name); vc != wcbridge.VideoCodecUnknown {
		return vc.DefaultPayloadType()
	}
	return wcbridge.AudioCodecOf(config.Codec.Name).DefaultPayloadType()
}

func (s *RTPSink) AddTrack(t Track, config *wcbridge.DecoderConfig) error {
	p, err := wcbridge.NewChunkPacketizer(config, s.ssrc+uint32(t), PayloadType(config), s.mtu)
	if errors.Is(err, wcbridge.ErrNoPayloader) {
		s.log.WithFields(logrus.Fields{"track": t, "codec": config.Codec}).Warn("codec has no RTP payload format, track not sent")
		return nil
	}
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.packetizers[t] = p
	s.mu.Unlock()
	return nil
}

func (s *RTPSink) WriteChunk(t Track, c wcbridge.EncodedChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.packetizers[t]
	if !ok {
		return nil
	}
	packets, err := p.Packetize(c)
	if err != nil {
		return err
	}
	for _, pkt := range packets {
		raw, err := pkt.Marshal()
		if err != nil {
			return fmt.Errorf("marshal rtp: %w", err)
		}
		if _, err := s.w.Write(raw); err != nil {
			return err
		}
	}
	return nil
}

func (s *RTPSink) Close() error {
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
