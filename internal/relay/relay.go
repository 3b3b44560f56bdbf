// Package relay bridges an RTMP publish into wcbridge chunks and hands them
// to sinks (a WebM file, RTP over UDP).
//
// FLV tags carry H.264 (AVC) video and AAC audio. Sequence headers become
// engine streams via wcbridge.NewAVCStream and wcbridge.NewAACStream, which
// are then converted to decoder configs; every later tag becomes an engine
// packet and then an encoded chunk.
package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/thesyncim/wcbridge"
)

// Track identifies a relayed stream.
type Track int

const (
	TrackVideo Track = iota
	TrackAudio
)

func (t Track) String() string {
	switch t {
	case TrackVideo:
		return "video"
	case TrackAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// FLV codec identifiers.
const (
	flvCodecAVC = 7
	flvSoundAAC = 10
)

// flvTimeBase is the timebase of RTMP/FLV timestamps.
var flvTimeBase = wcbridge.Rational{Num: 1, Den: 1000}

// ErrUnsupportedCodec is returned for FLV tags the relay cannot bridge.
var ErrUnsupportedCodec = errors.New("unsupported FLV codec")

// Sink consumes relayed chunks. AddTrack is called once per track before
// its first chunk.
type Sink interface {
	AddTrack(t Track, config *wcbridge.DecoderConfig) error
	WriteChunk(t Track, c wcbridge.EncodedChunk) error
	Close() error
}

// Relay converts the FLV tags of one publish session. It is not safe for
// concurrent use; go-rtmp delivers a connection's messages in order.
type Relay struct {
	engine wcbridge.Engine
	sinks  []Sink
	log    logrus.FieldLogger

	streams [2]*wcbridge.StreamDescriptor
	configs [2]*wcbridge.DecoderConfig
}

// New creates a relay that registers streams in engine and feeds sinks.
// A nil log uses the standard logger.
func New(engine wcbridge.Engine, log logrus.FieldLogger, sinks ...Sink) *Relay {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Relay{engine: engine, sinks: sinks, log: log}
}

// Config returns the decoder config of t once its sequence header arrived.
func (r *Relay) Config(t Track) *wcbridge.DecoderConfig {
	return r.configs[t]
}

// VideoTag handles the body of an FLV video tag received at ts
// milliseconds.
func (r *Relay) VideoTag(ctx context.Context, ts uint32, data []byte) error {
	if len(data) < 5 {
		return nil
	}
	frameType := data[0] >> 4
	if codecID := data[0] & 0x0F; codecID != flvCodecAVC {
		return fmt.Errorf("%w: video codec id %d", ErrUnsupportedCodec, codecID)
	}
	// Composition time is a signed 24-bit offset.
	cts := int32(uint32(data[2])<<16|uint32(data[3])<<8|uint32(data[4])) << 8 >> 8
	body := data[5:]

	switch data[1] {
	case 0:
		// Repeated sequence headers are common; the first one wins.
		if r.configs[TrackVideo] != nil {
			return nil
		}
		s, err := wcbridge.NewAVCStream(ctx, r.engine, int(TrackVideo), body, flvTimeBase)
		if err != nil {
			return fmt.Errorf("avc sequence header: %w", err)
		}
		cfg, err := wcbridge.VideoStreamToConfig(ctx, r.engine, s, wcbridge.WithLogger(r.log))
		if err != nil {
			return err
		}
		return r.addTrack(TrackVideo, s, cfg)

	case 1:
		s := r.streams[TrackVideo]
		if s == nil {
			return nil
		}
		p := &wcbridge.Packet{
			Data:        body,
			PTS:         wcbridge.SplitI64(int64(ts) + int64(cts)),
			DTS:         wcbridge.SplitI64(int64(ts)),
			TimeBase:    flvTimeBase,
			StreamIndex: s.Index,
		}
		if frameType == 1 {
			p.Flags |= wcbridge.PacketFlagKey
		}
		c, err := wcbridge.PacketToEncodedVideoChunk(p, s)
		if err != nil {
			return err
		}
		return r.write(TrackVideo, c)
	}
	return nil
}

// AudioTag handles the body of an FLV audio tag received at ts
// milliseconds.
func (r *Relay) AudioTag(ctx context.Context, ts uint32, data []byte) error {
	if len(data) < 2 {
		return nil
	}
	if format := data[0] >> 4; format != flvSoundAAC {
		return fmt.Errorf("%w: sound format %d", ErrUnsupportedCodec, format)
	}
	body := data[2:]

	switch data[1] {
	case 0:
		if r.configs[TrackAudio] != nil {
			return nil
		}
		s, err := wcbridge.NewAACStream(ctx, r.engine, int(TrackAudio), body)
		if err != nil {
			return fmt.Errorf("aac sequence header: %w", err)
		}
		cfg, err := wcbridge.AudioStreamToConfig(ctx, r.engine, s, wcbridge.WithLogger(r.log))
		if err != nil {
			return err
		}
		return r.addTrack(TrackAudio, s, cfg)

	case 1:
		s := r.streams[TrackAudio]
		if s == nil {
			return nil
		}
		c, err := wcbridge.PacketToEncodedAudioChunk(&wcbridge.Packet{
			Data:        body,
			PTS:         wcbridge.SplitI64(int64(ts)),
			DTS:         wcbridge.SplitI64(int64(ts)),
			TimeBase:    flvTimeBase,
			StreamIndex: s.Index,
		}, s)
		if err != nil {
			return err
		}
		return r.write(TrackAudio, c)
	}
	return nil
}

func (r *Relay) addTrack(t Track, s *wcbridge.StreamDescriptor, cfg *wcbridge.DecoderConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: no decoder config for %s stream", ErrUnsupportedCodec, t)
	}
	r.streams[t], r.configs[t] = s, cfg
	r.log.WithFields(logrus.Fields{
		"track":  t,
		"codec":  cfg.Codec,
		"width":  cfg.CodedWidth,
		"height": cfg.CodedHeight,
		"rate":   cfg.SampleRate,
	}).Info("relay track ready")

	for _, sink := range r.sinks {
		if err := sink.AddTrack(t, cfg); err != nil {
			return fmt.Errorf("add %s track: %w", t, err)
		}
	}
	return nil
}

func (r *Relay) write(t Track, c wcbridge.EncodedChunk) error {
	for _, sink := range r.sinks {
		if err := sink.WriteChunk(t, c); err != nil {
			return fmt.Errorf("write %s chunk: %w", t, err)
		}
	}
	return nil
}

// Close closes every sink and returns the first error.
func (r *Relay) Close() error {
	var first error
	for _, sink := range r.sinks {
		if err := sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
