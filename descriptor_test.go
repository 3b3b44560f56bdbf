package wcbridge

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestNewAVCStream(t *testing.T) {
	ctx := context.Background()
	e := NewMemoryEngine()
	rec, err := MarshalAVCDecoderConfig(testSPS, testPPS)
	if err != nil {
		t.Fatalf("MarshalAVCDecoderConfig: %v", err)
	}

	s, err := NewAVCStream(ctx, e, 0, rec, Rational{1, 1000})
	if err != nil {
		t.Fatalf("NewAVCStream: %v", err)
	}
	if s.CodecID != CodecIDH264 || s.CodecType != MediaTypeVideo || s.TimeBase != (Rational{1, 1000}) {
		t.Errorf("NewAVCStream = %+v", s)
	}

	p, _ := e.ReadCodecParameters(ctx, s.CodecPar)
	if p.Width != 1920 || p.Height != 1080 {
		t.Errorf("size = %dx%d, want 1920x1080", p.Width, p.Height)
	}
	if want := ProfileH264Baseline | ProfileH264Constrained; p.Profile != want {
		t.Errorf("Profile = %d, want %d", p.Profile, want)
	}
	if p.Level != 40 {
		t.Errorf("Level = %d, want 40", p.Level)
	}
	extradata, err := e.CopyOut(ctx, p.Extradata, p.ExtradataSize)
	if err != nil || !bytes.Equal(extradata, rec) {
		t.Errorf("extradata = %x, %v, want %x", extradata, err, rec)
	}

	cfg, err := VideoStreamToConfig(ctx, e, s)
	if err != nil {
		t.Fatalf("VideoStreamToConfig: %v", err)
	}
	if cfg == nil || cfg.Codec.Name != "avc1.42e028" {
		t.Errorf("VideoStreamToConfig = %+v, want avc1.42e028", cfg)
	}
}

func TestNewAVCStreamErrors(t *testing.T) {
	ctx := context.Background()
	tests := map[string][]byte{
		"empty":   nil,
		"annex-b": annexB(testSPS, testPPS),
		"no sps":  {1, 0x42, 0xc0, 0x28, 0xff, 0xe0, 0x00},
	}
	for name, rec := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewAVCStream(ctx, NewMemoryEngine(), 0, rec, MicrosecondTimeBase)
			if !errors.Is(err, ErrMalformedExtradata) {
				t.Errorf("NewAVCStream error = %v, want ErrMalformedExtradata", err)
			}
		})
	}
}

func TestNewAACStream(t *testing.T) {
	ctx := context.Background()
	e := NewMemoryEngine()
	// AAC-LC, 44100 Hz, stereo.
	asc := []byte{0x12, 0x10}

	s, err := NewAACStream(ctx, e, 1, asc)
	if err != nil {
		t.Fatalf("NewAACStream: %v", err)
	}
	if s.Index != 1 || s.CodecID != CodecIDAAC || s.TimeBase != (Rational{1, 44100}) {
		t.Errorf("NewAACStream = %+v", s)
	}
	p, _ := e.ReadCodecParameters(ctx, s.CodecPar)
	if p.SampleRate != 44100 || p.Channels != 2 || p.Profile != 1 {
		t.Errorf("parameters = rate %d channels %d profile %d, want 44100 2 1", p.SampleRate, p.Channels, p.Profile)
	}

	if _, err := NewAACStream(ctx, e, 1, []byte{0x12}); !errors.Is(err, ErrMalformedExtradata) {
		t.Errorf("NewAACStream(short) error = %v, want ErrMalformedExtradata", err)
	}
}
