package wcbridge

import (
	"context"
	"testing"
)

func pixFmt(t *testing.T, format int) *PixFmtDescriptor {
	t.Helper()
	d, err := BuiltinCatalog{}.PixFmtDescriptor(context.Background(), format)
	if err != nil {
		t.Fatalf("PixFmtDescriptor(%d): %v", format, err)
	}
	return d
}

func TestAV1CodecString(t *testing.T) {
	tests := []struct {
		profile, level, format int
		want                   string
	}{
		{0, 1, PixFmtYUV420P, "av01.00.01M.08.0.110"},
		{1, 8, PixFmtYUV444P, "av01.01.08M.08.0.000"},
		{2, 13, 64, "av01.02.13M.10.0.100"},
		{0, 4, 8, "av01.00.04M.08.1.110"}, // gray
		{ProfileUnknown, ProfileUnknown, 62, "av01.00.00M.10.0.110"},
	}
	for _, tt := range tests {
		got := AV1CodecString(tt.profile, tt.level, pixFmt(t, tt.format))
		if got != tt.want {
			t.Errorf("AV1CodecString(%d, %d, %d) = %q, want %q", tt.profile, tt.level, tt.format, got, tt.want)
		}
	}
}

func TestH264CodecString(t *testing.T) {
	tests := []struct {
		profile, level int
		want           string
		ok             bool
	}{
		{ProfileH264Baseline | ProfileH264Constrained, 30, "avc1.42e01e", true},
		{ProfileH264Main | ProfileH264Constrained, 31, "avc1.4d601f", true},
		{ProfileH264Extended | ProfileH264Constrained, 40, "avc1.582028", true},
		{ProfileH264High, 40, "avc1.640028", true},
		{ProfileUnknown, ProfileUnknown, "avc1.4d000a", true},
		{ProfileH264High | ProfileH264Constrained, 40, "", false},
	}
	for _, tt := range tests {
		got, ok := H264CodecString(tt.profile, tt.level)
		if got != tt.want || ok != tt.ok {
			t.Errorf("H264CodecString(%d, %d) = %q, %v, want %q, %v", tt.profile, tt.level, got, ok, tt.want, tt.ok)
		}
	}
}

func TestH264CodecStringFromSPS(t *testing.T) {
	tests := []struct {
		name  string
		extra []byte
		want  string
		ok    bool
	}{
		{"4-byte start code", []byte{0, 0, 0, 1, 0x67, 0x64, 0x00, 0x28, 0xac}, "avc1.640028", true},
		{"3-byte start code", []byte{0, 0, 1, 0x67, 0x42, 0xc0, 0x1e, 0xd9}, "avc1.42c01e", true},
		{"pps first", []byte{0, 0, 0, 1, 0x68, 0xce, 0x3c, 0x80}, "", false},
		{"avcC record", []byte{1, 0x64, 0x00, 0x28, 0xff, 0xe1, 0x00, 0x19}, "", false},
		{"short", []byte{0, 0, 0, 1, 0x67}, "", false},
	}
	for _, tt := range tests {
		got, ok := H264CodecStringFromSPS(tt.extra)
		if got != tt.want || ok != tt.ok {
			t.Errorf("%s: H264CodecStringFromSPS = %q, %v, want %q, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestHEVCCodecStringFromRecord(t *testing.T) {
	// Version 1, Main profile at main tier, level 3.1, one constraint byte.
	rec := []byte{
		0x01, 0x01,
		0x60, 0x00, 0x00, 0x00,
		0x90, 0x00, 0x00, 0x00, 0x00, 0x00,
		93,
	}
	got, ok := HEVCCodecStringFromRecord(rec)
	if !ok || got != "hvc1.1.6.L93.90" {
		t.Errorf("HEVCCodecStringFromRecord = %q, %v, want %q, true", got, ok, "hvc1.1.6.L93.90")
	}

	high := append([]byte(nil), rec...)
	high[1] = 0x62 // space 1, high tier, Main 10
	high[2] = 0x20
	high[6] = 0
	high[12] = 120
	got, _ = HEVCCodecStringFromRecord(high)
	if want := "hvc1.A2.4.H120"; got != want {
		t.Errorf("HEVCCodecStringFromRecord(high tier) = %q, want %q", got, want)
	}

	if _, ok := HEVCCodecStringFromRecord(rec[:12]); ok {
		t.Error("HEVCCodecStringFromRecord accepted a truncated record")
	}
}

func TestHEVCCodecString(t *testing.T) {
	if got, want := HEVCCodecString(1, 93), "hev1.1.4.L93.B01"; got != want {
		t.Errorf("HEVCCodecString(1, 93) = %q, want %q", got, want)
	}
}

func TestVP9CodecString(t *testing.T) {
	tests := []struct {
		profile, level, format int
		want                   string
	}{
		{0, 10, PixFmtYUV420P, "vp09.00.10.08.01.1.1.1.0"},
		{1, 31, PixFmtYUV422P, "vp09.01.31.08.02.1.1.1.0"},
		{3, 41, 68, "vp09.03.41.10.03.1.1.1.0"},
		{ProfileUnknown, ProfileUnknown, PixFmtYUV420P, "vp09.00.10.08.01.1.1.1.0"},
	}
	for _, tt := range tests {
		got := VP9CodecString(tt.profile, tt.level, pixFmt(t, tt.format))
		if got != tt.want {
			t.Errorf("VP9CodecString(%d, %d, %d) = %q, want %q", tt.profile, tt.level, tt.format, got, tt.want)
		}
	}
}

func TestApplyCodecString(t *testing.T) {
	tests := []struct {
		codec string
		check func(p CodecParameters) bool
	}{
		{"avc1.64001f", func(p CodecParameters) bool { return p.Profile == 100 && p.Level == 31 }},
		{"avc3.42E01E", func(p CodecParameters) bool { return p.Profile == 66 && p.Level == 30 }},
		{"hvc1.1.6.L93.B0", func(p CodecParameters) bool { return p.Profile == 1 && p.Level == 93 }},
		{"hev1.A2.4.H120", func(p CodecParameters) bool { return p.Profile == 2 && p.Level == 120 }},
		{"av01.0.04M.10.0.112.09.16.09.1", func(p CodecParameters) bool {
			return p.Profile == 0 && p.Level == 4 && p.ChromaLocation == ChromaLocationTopLeft &&
				p.ColorPrimaries == 9 && p.ColorTRC == 16 && p.ColorSpace == 9 && p.ColorRange == ColorRangeJPEG
		}},
		{"av01.1.08M.08.0.000", func(p CodecParameters) bool { return p.Profile == 1 && p.Format == PixFmtYUV444P }},
		{"vp09.02.10.10.01.09.16.09.01", func(p CodecParameters) bool {
			return p.Profile == 2 && p.Level == 10 && p.ChromaLocation == ChromaLocationTopLeft &&
				p.ColorPrimaries == 9 && p.ColorTRC == 16 && p.ColorSpace == 9 && p.ColorRange == ColorRangeJPEG
		}},
		{"vp09.00.41.08.02", func(p CodecParameters) bool { return p.Level == 41 && p.Format == PixFmtYUV422P }},
		// Unparsable fields are left alone.
		{"avc1.zz", func(p CodecParameters) bool { return p.Profile == ProfileUnknown && p.Level == ProfileUnknown }},
		{"vp09.xx.yy", func(p CodecParameters) bool { return p.Profile == ProfileUnknown && p.Level == ProfileUnknown }},
		{"vp8", func(p CodecParameters) bool { return p == DefaultCodecParameters() }},
	}
	for _, tt := range tests {
		p := DefaultCodecParameters()
		ApplyCodecString(tt.codec, &p)
		if !tt.check(p) {
			t.Errorf("ApplyCodecString(%q) = %+v", tt.codec, p)
		}
	}
}

func TestCodecStringRoundTrip(t *testing.T) {
	yuv420 := pixFmt(t, PixFmtYUV420P)
	for _, profile := range []int{0, 1, 2} {
		for _, level := range []int{0, 5, 13, 31} {
			var p CodecParameters

			p = DefaultCodecParameters()
			ApplyCodecString(AV1CodecString(profile, level, yuv420), &p)
			if p.Profile != profile || p.Level != level {
				t.Errorf("av1 round trip (%d, %d) = (%d, %d)", profile, level, p.Profile, p.Level)
			}

			p = DefaultCodecParameters()
			ApplyCodecString(VP9CodecString(profile, level, yuv420), &p)
			if p.Profile != profile || p.Level != level {
				t.Errorf("vp9 round trip (%d, %d) = (%d, %d)", profile, level, p.Profile, p.Level)
			}

			p = DefaultCodecParameters()
			ApplyCodecString(HEVCCodecString(profile, level), &p)
			if p.Profile != profile || p.Level != level {
				t.Errorf("hevc round trip (%d, %d) = (%d, %d)", profile, level, p.Profile, p.Level)
			}
		}
	}
	for _, profile := range []int{ProfileH264Baseline, ProfileH264Main, ProfileH264High} {
		s, ok := H264CodecString(profile, 31)
		if !ok {
			t.Fatalf("H264CodecString(%d, 31) failed", profile)
		}
		p := DefaultCodecParameters()
		ApplyCodecString(s, &p)
		if p.Profile != profile || p.Level != 31 {
			t.Errorf("h264 round trip (%d, 31) = (%d, %d)", profile, p.Profile, p.Level)
		}
	}
}

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"04M", 4, true},
		{" 12", 12, true},
		{"-3x", -3, true},
		{"H", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseLeadingInt(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseLeadingInt(%q) = %d, %v, want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
