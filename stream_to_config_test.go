package wcbridge

import (
	"bytes"
	"context"
	"testing"
)

// newTestStream registers a stream for codec in e with the fields set by fill
// and the given extradata.
func newTestStream(t *testing.T, e *MemoryEngine, codec string, extradata []byte, fill func(*CodecParameters)) *StreamDescriptor {
	t.Helper()
	s, err := newStream(context.Background(), e, 0, codec, MicrosecondTimeBase, extradata, fill)
	if err != nil {
		t.Fatalf("newStream(%q): %v", codec, err)
	}
	return s
}

func TestAudioStreamToConfig(t *testing.T) {
	asc := []byte{0x12, 0x10}
	tests := []struct {
		codec     string
		profile   int
		extradata []byte
		want      string
		wantDesc  []byte
	}{
		{"aac", ProfileAACLow, asc, "mp4a.40.2", asc},
		{"aac", ProfileAACHE, asc, "mp4a.40.5", asc},
		{"aac", ProfileAACHEv2, nil, "mp4a.40.29", nil},
		{"flac", ProfileUnknown, []byte("fLaC"), "flac", []byte("fLaC")},
		{"mp3", ProfileUnknown, []byte{1, 2}, "mp3", nil},
		{"opus", ProfileUnknown, []byte("OpusHead"), "opus", nil},
		{"vorbis", ProfileUnknown, []byte{2, 30}, "vorbis", []byte{2, 30}},
	}
	for _, tt := range tests {
		e := NewMemoryEngine()
		s := newTestStream(t, e, tt.codec, tt.extradata, func(p *CodecParameters) {
			p.Profile = tt.profile
			p.SampleRate = 48000
			p.Channels = 2
		})
		cfg, err := AudioStreamToConfig(context.Background(), e, s)
		if err != nil {
			t.Fatalf("AudioStreamToConfig(%s): %v", tt.codec, err)
		}
		if cfg == nil {
			t.Fatalf("AudioStreamToConfig(%s) = nil", tt.codec)
		}
		if cfg.Codec.Name != tt.want {
			t.Errorf("AudioStreamToConfig(%s).Codec = %q, want %q", tt.codec, cfg.Codec.Name, tt.want)
		}
		if !bytes.Equal(cfg.Description, tt.wantDesc) {
			t.Errorf("AudioStreamToConfig(%s).Description = %x, want %x", tt.codec, cfg.Description, tt.wantDesc)
		}
		if cfg.SampleRate != 48000 || cfg.NumberOfChannels != 2 {
			t.Errorf("AudioStreamToConfig(%s) rate/channels = %d/%d, want 48000/2", tt.codec, cfg.SampleRate, cfg.NumberOfChannels)
		}
	}
}

func TestAudioStreamToConfigUnknown(t *testing.T) {
	e := NewMemoryEngine()
	s := newTestStream(t, e, "ac3", []byte{0x0b, 0x77}, func(p *CodecParameters) {
		p.SampleRate = 44100
		p.Channels = 6
	})

	cfg, err := AudioStreamToConfig(context.Background(), e, s)
	if err != nil || cfg != nil {
		t.Fatalf("AudioStreamToConfig(ac3) = %+v, %v, want nil, nil", cfg, err)
	}

	// AAC Main has no codec string either.
	main := newTestStream(t, e, "aac", nil, func(p *CodecParameters) { p.Profile = 0 })
	if cfg, _ := AudioStreamToConfig(context.Background(), e, main); cfg != nil {
		t.Errorf("AudioStreamToConfig(aac main) = %+v, want nil", cfg)
	}

	cfg, err = AudioStreamToConfig(context.Background(), e, s,
		WithProprietaryFallback(func(codec string) bool { return codec == "ac3" }))
	if err != nil {
		t.Fatalf("AudioStreamToConfig(ac3, fallback): %v", err)
	}
	if cfg == nil || cfg.Codec.Proprietary == nil {
		t.Fatalf("AudioStreamToConfig(ac3, fallback) = %+v, want proprietary config", cfg)
	}
	want := ProprietaryCodec{Codec: "ac3", Ctx: ProprietaryContext{Channels: 6, SampleRate: 44100}}
	if *cfg.Codec.Proprietary != want {
		t.Errorf("proprietary codec = %+v, want %+v", *cfg.Codec.Proprietary, want)
	}
	if !bytes.Equal(cfg.Description, []byte{0x0b, 0x77}) {
		t.Errorf("proprietary description = %x, want 0b77", cfg.Description)
	}
}

func TestVideoStreamToConfig(t *testing.T) {
	annexB := []byte{0, 0, 0, 1, 0x67, 0x64, 0x00, 0x28, 0xac, 0xd9}
	avcC, err := MarshalAVCDecoderConfig(testSPS, testPPS)
	if err != nil {
		t.Fatalf("MarshalAVCDecoderConfig: %v", err)
	}
	hvcC := []byte{0x01, 0x01, 0x60, 0, 0, 0, 0x90, 0, 0, 0, 0, 0, 93, 0xf0, 0x00}

	tests := []struct {
		name      string
		codec     string
		format    int
		profile   int
		level     int
		extradata []byte
		want      string
		wantDesc  []byte
	}{
		{"av1", "av1", PixFmtYUV420P, 0, 1, nil, "av01.00.01M.08.0.110", nil},
		{"av1 10-bit 4:4:4", "av1", 68, 1, 8, nil, "av01.01.08M.10.0.000", nil},
		{"h264 annex-b sps", "h264", PixFmtYUV420P, 66, 30, annexB, "avc1.640028", nil},
		{"h264 avcC", "h264", PixFmtYUV420P, ProfileH264Baseline | ProfileH264Constrained, 40, avcC, "avc1.42e028", avcC},
		{"h264 no extradata", "h264", PixFmtYUV420P, ProfileUnknown, ProfileUnknown, nil, "avc1.4d000a", nil},
		{"hevc record", "hevc", PixFmtYUV420P, 1, 93, hvcC, "hvc1.1.6.L93.90", hvcC},
		{"hevc short record", "hevc", PixFmtYUV420P, 1, 120, []byte{1, 2, 3}, "hev1.1.4.L120.B01", nil},
		{"vp8", "vp8", PixFmtYUV420P, ProfileUnknown, ProfileUnknown, nil, "vp8", nil},
		{"vp9", "vp9", PixFmtYUV420P, 0, 10, nil, "vp09.00.10.08.01.1.1.1.0", nil},
		{"vp9 4:2:2", "vp9", PixFmtYUV422P, 1, 21, nil, "vp09.01.21.08.02.1.1.1.0", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewMemoryEngine()
			s := newTestStream(t, e, tt.codec, tt.extradata, func(p *CodecParameters) {
				p.Format = tt.format
				p.Profile = tt.profile
				p.Level = tt.level
				p.Width = 1280
				p.Height = 720
			})
			cfg, err := VideoStreamToConfig(context.Background(), e, s)
			if err != nil {
				t.Fatalf("VideoStreamToConfig: %v", err)
			}
			if cfg == nil {
				t.Fatal("VideoStreamToConfig = nil")
			}
			if cfg.Codec.Name != tt.want {
				t.Errorf("Codec = %q, want %q", cfg.Codec.Name, tt.want)
			}
			if !bytes.Equal(cfg.Description, tt.wantDesc) {
				t.Errorf("Description = %x, want %x", cfg.Description, tt.wantDesc)
			}
			if cfg.CodedWidth != 1280 || cfg.CodedHeight != 720 {
				t.Errorf("coded size = %dx%d, want 1280x720", cfg.CodedWidth, cfg.CodedHeight)
			}
		})
	}
}

func TestVideoStreamToConfigNil(t *testing.T) {
	e := NewMemoryEngine()
	ctx := context.Background()

	// Constrained High has no constraint byte.
	h264 := newTestStream(t, e, "h264", nil, func(p *CodecParameters) {
		p.Profile = ProfileH264High | ProfileH264Constrained
		p.Level = 40
	})
	if cfg, err := VideoStreamToConfig(ctx, e, h264); err != nil || cfg != nil {
		t.Errorf("VideoStreamToConfig(constrained high) = %+v, %v, want nil, nil", cfg, err)
	}

	mjpeg := newTestStream(t, e, "mjpeg", nil, func(*CodecParameters) {})
	if cfg, err := VideoStreamToConfig(ctx, e, mjpeg); err != nil || cfg != nil {
		t.Errorf("VideoStreamToConfig(mjpeg) = %+v, %v, want nil, nil", cfg, err)
	}

	cfg, err := VideoStreamToConfig(ctx, e, mjpeg, WithProprietaryFallback(func(string) bool { return true }))
	if err != nil || cfg == nil || cfg.Codec.Proprietary == nil || cfg.Codec.Proprietary.Codec != "mjpeg" {
		t.Errorf("VideoStreamToConfig(mjpeg, fallback) = %+v, %v", cfg, err)
	}
}

func TestVideoStreamToConfigUnknownPixelFormat(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		codec  string
		format int
		want   string
	}{
		{"vp9 unset", "vp9", -1, "vp09.00.10.08.03.1.1.1.0"},
		{"vp9 unknown", "vp9", 999, "vp09.00.10.08.03.1.1.1.0"},
		{"av1 unset", "av1", -1, "av01.00.01M.00.1.110"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewMemoryEngine()
			s := newTestStream(t, e, tt.codec, nil, func(p *CodecParameters) {
				p.Format = tt.format
				if tt.codec == "vp9" {
					p.Profile, p.Level = 0, 10
				} else {
					p.Profile, p.Level = 0, 1
				}
			})
			cfg, err := VideoStreamToConfig(ctx, e, s)
			if err != nil {
				t.Fatalf("VideoStreamToConfig: %v", err)
			}
			if cfg == nil || cfg.Codec.Name != tt.want {
				t.Errorf("VideoStreamToConfig = %+v, want %s", cfg, tt.want)
			}
		})
	}
}
