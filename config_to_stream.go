package wcbridge

import (
	"context"
	"fmt"
	"math"
)

// maxTimeBaseNum bounds the power-of-two search for a fractional frame rate.
const maxTimeBaseNum = 1 << 30

// ConfigToAudioStream allocates engine codec parameters for an audio config.
// When the engine does not know the codec the parameters stay at their
// defaults. The timebase is 1/sampleRate, or microseconds without a rate.
func ConfigToAudioStream(ctx context.Context, e Engine, cfg *EncoderConfig) (StreamContext, error) {
	name := engineCodecName(cfg.Codec.Token())

	desc, err := e.CodecDescriptorByName(ctx, name)
	if err != nil {
		return StreamContext{}, fmt.Errorf("codec descriptor %q: %w", name, err)
	}
	h, err := e.AllocCodecParameters(ctx)
	if err != nil {
		return StreamContext{}, fmt.Errorf("alloc codec parameters: %w", err)
	}
	if desc != nil {
		par, err := e.ReadCodecParameters(ctx, h)
		if err != nil {
			return StreamContext{}, fmt.Errorf("read codec parameters: %w", err)
		}
		par.CodecType = desc.Type
		par.CodecID = desc.ID
		if cfg.SampleRate != 0 {
			par.SampleRate = cfg.SampleRate
		}
		if cfg.NumberOfChannels != 0 {
			par.Channels = cfg.NumberOfChannels
		}
		if err := e.WriteCodecParameters(ctx, h, par); err != nil {
			return StreamContext{}, fmt.Errorf("write codec parameters: %w", err)
		}
	}

	tb := MicrosecondTimeBase
	if cfg.SampleRate != 0 {
		tb.Den = cfg.SampleRate
	}
	return StreamContext{CodecPar: h, TimeBase: tb}, nil
}

// ConfigToVideoStream allocates engine codec parameters for a video config
// and parses the codec string's parameters into them. When the engine does
// not know the codec the parameters stay at their defaults.
func ConfigToVideoStream(ctx context.Context, e Engine, cfg *EncoderConfig) (StreamContext, error) {
	name := engineCodecName(cfg.Codec.Token())

	desc, err := e.CodecDescriptorByName(ctx, name)
	if err != nil {
		return StreamContext{}, fmt.Errorf("codec descriptor %q: %w", name, err)
	}
	h, err := e.AllocCodecParameters(ctx)
	if err != nil {
		return StreamContext{}, fmt.Errorf("alloc codec parameters: %w", err)
	}
	if desc != nil {
		par, err := e.ReadCodecParameters(ctx, h)
		if err != nil {
			return StreamContext{}, fmt.Errorf("read codec parameters: %w", err)
		}
		par.CodecType = desc.Type
		par.CodecID = desc.ID
		par.Format = PixFmtYUV420P
		par.ColorRange = ColorRangeUnspecified
		par.ChromaLocation = ChromaLocationUnspecified
		par.Width = cfg.Width
		par.Height = cfg.Height
		if cfg.Codec.Proprietary == nil {
			ApplyCodecString(cfg.Codec.Name, &par)
		}
		if err := e.WriteCodecParameters(ctx, h, par); err != nil {
			return StreamContext{}, fmt.Errorf("write codec parameters: %w", err)
		}
	}

	return StreamContext{CodecPar: h, TimeBase: FrameRateTimeBase(cfg.Framerate)}, nil
}

// FrameRateTimeBase picks a timebase whose denominator counts frames:
//
//   - integer rates use 1/rate
//   - NTSC-style rates use 1001/(rate*1001)
//   - other rates double numerator and denominator until the denominator is
//     an integer, capped at a numerator of 2^30 after which it is rounded
//
// A zero or invalid rate yields microseconds.
func FrameRateTimeBase(framerate float64) Rational {
	if framerate <= 0 || math.IsNaN(framerate) || math.IsInf(framerate, 0) || framerate > math.MaxInt32 {
		return MicrosecondTimeBase
	}
	if framerate == math.Trunc(framerate) {
		return Rational{Num: 1, Den: int(framerate)}
	}
	if fr1001 := framerate * 1001; fr1001 == math.Trunc(fr1001) {
		return Rational{Num: 1001, Den: int(fr1001)}
	}
	num, den := 1, framerate
	for den != math.Trunc(den) && num < maxTimeBaseNum && den*2 <= math.MaxInt32 {
		num *= 2
		den *= 2
	}
	return Rational{Num: num, Den: int(roundHalfUp(den))}
}
