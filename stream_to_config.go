package wcbridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// AudioStreamToConfig converts an engine audio stream to a platform decoder
// config. It returns nil when the platform has no codec string for the
// stream's codec and no proprietary fallback accepts it.
func AudioStreamToConfig(ctx context.Context, e Engine, s *StreamDescriptor, opts ...Option) (*DecoderConfig, error) {
	o := newOptions(opts)

	name, err := e.CodecName(ctx, s.CodecID)
	if err != nil {
		return nil, fmt.Errorf("codec name: %w", err)
	}
	par, err := e.ReadCodecParameters(ctx, s.CodecPar)
	if err != nil {
		return nil, fmt.Errorf("read codec parameters: %w", err)
	}
	extradata, err := readExtradata(ctx, e, par)
	if err != nil {
		return nil, fmt.Errorf("read extradata: %w", err)
	}

	cfg := &DecoderConfig{
		SampleRate:       par.SampleRate,
		NumberOfChannels: par.Channels,
	}
	switch name {
	case "flac":
		cfg.Codec = Codec("flac")
		cfg.Description = extradata
	case "mp3":
		cfg.Codec = Codec("mp3")
	case "aac":
		switch par.Profile {
		case ProfileAACLow:
			cfg.Codec = Codec("mp4a.40.2")
		case ProfileAACHE:
			cfg.Codec = Codec("mp4a.40.5")
		case ProfileAACHEv2:
			cfg.Codec = Codec("mp4a.40.29")
		}
		cfg.Description = extradata
	case "opus":
		cfg.Codec = Codec("opus")
	case "vorbis":
		cfg.Codec = Codec("vorbis")
		cfg.Description = extradata
	default:
		proprietaryConfig(o, cfg, name, par, extradata)
	}
	return finishConfig(o, cfg, name, s), nil
}

// VideoStreamToConfig converts an engine video stream to a platform decoder
// config, building the codec string from the codec parameters and extradata.
// It returns nil when no codec string can be built and no proprietary
// fallback accepts the codec.
func VideoStreamToConfig(ctx context.Context, e Engine, s *StreamDescriptor, opts ...Option) (*DecoderConfig, error) {
	o := newOptions(opts)

	name, err := e.CodecName(ctx, s.CodecID)
	if err != nil {
		return nil, fmt.Errorf("codec name: %w", err)
	}
	par, err := e.ReadCodecParameters(ctx, s.CodecPar)
	if err != nil {
		return nil, fmt.Errorf("read codec parameters: %w", err)
	}
	extradata, err := readExtradata(ctx, e, par)
	if err != nil {
		return nil, fmt.Errorf("read extradata: %w", err)
	}

	cfg := &DecoderConfig{
		CodedWidth:  par.Width,
		CodedHeight: par.Height,
	}
	switch name {
	case "av1":
		pix, err := pixFmtOrZero(ctx, e, par.Format)
		if err != nil {
			return nil, err
		}
		cfg.Codec = Codec(AV1CodecString(par.Profile, par.Level, pix))

	case "h264":
		codec, ok := H264CodecStringFromSPS(extradata)
		if !ok {
			if len(extradata) > 0 && extradata[0] == 0 {
				o.log.WithField("size", len(extradata)).Debug("h264 extradata has no leading SPS, synthesizing codec string")
			}
			codec, ok = H264CodecString(par.Profile, par.Level)
		}
		if !ok {
			o.log.WithField("profile", par.Profile).Debug("no codec string for constrained h264 profile")
			return nil, nil
		}
		cfg.Codec = Codec(codec)
		if len(extradata) > 0 && extradata[0] != 0 {
			cfg.Description = extradata
		}

	case "hevc":
		if codec, ok := HEVCCodecStringFromRecord(extradata); ok {
			cfg.Codec = Codec(codec)
			cfg.Description = extradata
		} else {
			if len(extradata) > 0 {
				o.log.WithField("size", len(extradata)).Debug("hevc extradata too short, synthesizing codec string")
			}
			cfg.Codec = Codec(HEVCCodecString(par.Profile, par.Level))
		}

	case "vp8":
		cfg.Codec = Codec("vp8")

	case "vp9":
		pix, err := pixFmtOrZero(ctx, e, par.Format)
		if err != nil {
			return nil, err
		}
		cfg.Codec = Codec(VP9CodecString(par.Profile, par.Level, pix))

	default:
		proprietaryConfig(o, cfg, name, par, extradata)
	}
	return finishConfig(o, cfg, name, s), nil
}

// pixFmtOrZero looks up a pixel format descriptor. An unset or unknown
// format yields a zero descriptor, so the codec string falls back to its
// defaults.
func pixFmtOrZero(ctx context.Context, e Engine, format int) (*PixFmtDescriptor, error) {
	pix, err := e.PixFmtDescriptor(ctx, format)
	if errors.Is(err, ErrUnknownFormat) {
		return &PixFmtDescriptor{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pixel format descriptor: %w", err)
	}
	if pix == nil {
		return &PixFmtDescriptor{}, nil
	}
	return pix, nil
}

// proprietaryConfig fills cfg for a codec the platform does not know when the
// fallback accepts it.
func proprietaryConfig(o *options, cfg *DecoderConfig, name string, par CodecParameters, extradata []byte) {
	if o.proprietary == nil || !o.proprietary(name) {
		return
	}
	cfg.Codec = CodecSpec{Proprietary: &ProprietaryCodec{
		Codec: name,
		Ctx: ProprietaryContext{
			Channels:   par.Channels,
			SampleRate: par.SampleRate,
		},
	}}
	if len(extradata) > 0 {
		cfg.Description = extradata
	}
}

func finishConfig(o *options, cfg *DecoderConfig, name string, s *StreamDescriptor) *DecoderConfig {
	if cfg.Codec.IsZero() {
		o.log.WithFields(logrus.Fields{
			"stream": s.Index,
			"codec":  name,
		}).Debug("stream cannot be bridged")
		return nil
	}
	o.log.WithFields(logrus.Fields{
		"stream": s.Index,
		"codec":  cfg.Codec.String(),
	}).Debug("stream config")
	return cfg
}
