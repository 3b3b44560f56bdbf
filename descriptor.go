package wcbridge

import (
	"context"
	"fmt"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/mpeg4audio"
)

// NewAVCStream creates an engine H.264 stream from an avcC record, filling
// dimensions, profile and level from its first SPS. The record becomes the
// stream's extradata.
func NewAVCStream(ctx context.Context, e Engine, index int, avcC []byte, tb Rational) (*StreamDescriptor, error) {
	rec, err := ParseAVCDecoderConfig(avcC)
	if err != nil {
		return nil, err
	}
	if len(rec.SPS) == 0 {
		return nil, fmt.Errorf("%w: avcC has no SPS", ErrMalformedExtradata)
	}
	var sps h264.SPS
	if err := sps.Unmarshal(rec.SPS[0]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExtradata, err)
	}

	return newStream(ctx, e, index, "h264", tb, avcC, func(p *CodecParameters) {
		p.Format = PixFmtYUV420P
		p.Width = sps.Width()
		p.Height = sps.Height()
		p.Profile = int(sps.ProfileIdc)
		if p.Profile == ProfileH264Baseline && rec.ProfileCompatibility&0x40 != 0 {
			p.Profile |= ProfileH264Constrained
		}
		p.Level = int(sps.LevelIdc)
	})
}

// NewAACStream creates an engine AAC stream from an AudioSpecificConfig. The
// config becomes the stream's extradata and the timebase is 1/sampleRate.
func NewAACStream(ctx context.Context, e Engine, index int, asc []byte) (*StreamDescriptor, error) {
	var conf mpeg4audio.AudioSpecificConfig
	if err := conf.Unmarshal(asc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExtradata, err)
	}

	tb := Rational{Num: 1, Den: conf.SampleRate}
	return newStream(ctx, e, index, "aac", tb, asc, func(p *CodecParameters) {
		p.SampleRate = conf.SampleRate
		p.Channels = conf.ChannelCount
		// Engine AAC profiles are the object type minus one.
		p.Profile = int(conf.Type) - 1
	})
}

// newStream allocates codec parameters for an engine codec, copies in the
// extradata and lets fill set the codec-specific fields.
func newStream(ctx context.Context, e Engine, index int, codec string, tb Rational, extradata []byte, fill func(*CodecParameters)) (*StreamDescriptor, error) {
	desc, err := e.CodecDescriptorByName(ctx, codec)
	if err != nil {
		return nil, fmt.Errorf("codec descriptor %q: %w", codec, err)
	}
	if desc == nil {
		return nil, fmt.Errorf("engine does not know codec %q", codec)
	}
	h, err := e.AllocCodecParameters(ctx)
	if err != nil {
		return nil, fmt.Errorf("alloc codec parameters: %w", err)
	}
	par, err := e.ReadCodecParameters(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("read codec parameters: %w", err)
	}
	par.CodecType = desc.Type
	par.CodecID = desc.ID
	fill(&par)

	if len(extradata) > 0 {
		addr, err := e.Malloc(ctx, len(extradata))
		if err != nil {
			return nil, fmt.Errorf("malloc extradata: %w", err)
		}
		if err := e.CopyIn(ctx, addr, extradata); err != nil {
			return nil, fmt.Errorf("copy extradata: %w", err)
		}
		par.Extradata = addr
		par.ExtradataSize = len(extradata)
	}
	if err := e.WriteCodecParameters(ctx, h, par); err != nil {
		return nil, fmt.Errorf("write codec parameters: %w", err)
	}
	return &StreamDescriptor{
		Index:     index,
		CodecID:   desc.ID,
		CodecType: desc.Type,
		CodecPar:  h,
		TimeBase:  tb,
	}, nil
}
