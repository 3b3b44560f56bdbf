package wcbridge

import (
	"context"
	"testing"
)

func TestConfigToVideoStream(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		codec   string
		id      CodecID
		profile int
		level   int
	}{
		{"avc1.64001f", CodecIDH264, 100, 31},
		{"hvc1.1.6.L93.B0", CodecIDHEVC, 1, 93},
		{"vp09.02.10.10.01.09.16.09.01", CodecIDVP9, 2, 10},
		{"av01.0.04M.08", CodecIDAV1, 0, 4},
		{"vp8", CodecIDVP8, ProfileUnknown, ProfileUnknown},
	}
	for _, tt := range tests {
		e := NewMemoryEngine()
		sc, err := ConfigToVideoStream(ctx, e, &EncoderConfig{Codec: Codec(tt.codec), Width: 1920, Height: 1080, Framerate: 25})
		if err != nil {
			t.Fatalf("ConfigToVideoStream(%q): %v", tt.codec, err)
		}
		if sc.TimeBase != (Rational{1, 25}) {
			t.Errorf("ConfigToVideoStream(%q).TimeBase = %+v, want 1/25", tt.codec, sc.TimeBase)
		}
		p, err := e.ReadCodecParameters(ctx, sc.CodecPar)
		if err != nil {
			t.Fatalf("ReadCodecParameters: %v", err)
		}
		if p.CodecID != tt.id || p.CodecType != MediaTypeVideo {
			t.Errorf("ConfigToVideoStream(%q) codec = %d/%s, want %d/video", tt.codec, p.CodecID, p.CodecType, tt.id)
		}
		if p.Profile != tt.profile || p.Level != tt.level {
			t.Errorf("ConfigToVideoStream(%q) profile/level = %d/%d, want %d/%d", tt.codec, p.Profile, p.Level, tt.profile, tt.level)
		}
		if p.Width != 1920 || p.Height != 1080 || p.Format != PixFmtYUV420P {
			t.Errorf("ConfigToVideoStream(%q) = %dx%d format %d", tt.codec, p.Width, p.Height, p.Format)
		}
	}
}

func TestConfigToVideoStreamUnknown(t *testing.T) {
	ctx := context.Background()
	e := NewMemoryEngine()
	sc, err := ConfigToVideoStream(ctx, e, &EncoderConfig{Codec: Codec("theora"), Width: 16, Height: 16})
	if err != nil {
		t.Fatalf("ConfigToVideoStream(theora): %v", err)
	}
	if sc.TimeBase != MicrosecondTimeBase {
		t.Errorf("TimeBase = %+v, want microseconds", sc.TimeBase)
	}
	p, _ := e.ReadCodecParameters(ctx, sc.CodecPar)
	if p != DefaultCodecParameters() {
		t.Errorf("parameters = %+v, want defaults", p)
	}
}

func TestConfigToVideoStreamProprietary(t *testing.T) {
	ctx := context.Background()
	e := NewMemoryEngine()
	// The proprietary name is the engine name; no codec string is parsed.
	sc, err := ConfigToVideoStream(ctx, e, &EncoderConfig{
		Codec: CodecSpec{Proprietary: &ProprietaryCodec{Codec: "mjpeg"}},
	})
	if err != nil {
		t.Fatalf("ConfigToVideoStream: %v", err)
	}
	p, _ := e.ReadCodecParameters(ctx, sc.CodecPar)
	if p.CodecID != CodecIDMJPEG || p.Profile != ProfileUnknown {
		t.Errorf("parameters = %+v", p)
	}
}

func TestConfigToAudioStream(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		codec string
		id    CodecID
	}{
		{"mp4a.40.2", CodecIDAAC},
		{"opus", CodecIDOpus},
		{"flac", CodecIDFLAC},
		{"pcm-s16", CodecIDPCMS16LE},
		{"pcm-f32", CodecIDPCMF32LE},
	}
	for _, tt := range tests {
		e := NewMemoryEngine()
		sc, err := ConfigToAudioStream(ctx, e, &EncoderConfig{Codec: Codec(tt.codec), SampleRate: 44100, NumberOfChannels: 2})
		if err != nil {
			t.Fatalf("ConfigToAudioStream(%q): %v", tt.codec, err)
		}
		if sc.TimeBase != (Rational{1, 44100}) {
			t.Errorf("ConfigToAudioStream(%q).TimeBase = %+v, want 1/44100", tt.codec, sc.TimeBase)
		}
		p, _ := e.ReadCodecParameters(ctx, sc.CodecPar)
		if p.CodecID != tt.id || p.CodecType != MediaTypeAudio || p.SampleRate != 44100 || p.Channels != 2 {
			t.Errorf("ConfigToAudioStream(%q) = %+v", tt.codec, p)
		}
	}

	e := NewMemoryEngine()
	sc, err := ConfigToAudioStream(ctx, e, &EncoderConfig{Codec: Codec("opus")})
	if err != nil {
		t.Fatalf("ConfigToAudioStream(opus, no rate): %v", err)
	}
	if sc.TimeBase != MicrosecondTimeBase {
		t.Errorf("TimeBase without a sample rate = %+v, want microseconds", sc.TimeBase)
	}
}
