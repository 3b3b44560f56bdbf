package wcbridge

import (
	"fmt"
	"strconv"
)

// H264CodecStringFromSPS extracts an "avc1" codec string from extradata that
// starts with an Annex-B SPS: a 4-byte (00 00 00 01) or 3-byte (00 00 01)
// start code followed by a NAL header of type 7. The three bytes after the
// NAL header (profile_idc, constraint flags, level_idc) are hex encoded.
// It reports false when extradata is not in that shape.
func H264CodecStringFromSPS(extradata []byte) (string, bool) {
	off := -1
	switch {
	case len(extradata) >= 8 && extradata[0] == 0 && extradata[1] == 0 && extradata[2] == 0 && extradata[3] == 1:
		off = 4
	case len(extradata) >= 7 && extradata[0] == 0 && extradata[1] == 0 && extradata[2] == 1:
		off = 3
	}
	if off < 0 || extradata[off]&0x1F != 7 {
		return "", false
	}
	return fmt.Sprintf("avc1.%02x%02x%02x", extradata[off+1], extradata[off+2], extradata[off+3]), true
}

// H264CodecString synthesizes an "avc1" codec string from engine profile and
// level values. An unset profile means Main and an unset level means 1.0.
// When the constrained flag is set, baseline, main and extended map to the
// constraint bytes e0, 60 and 20; any other constrained profile has no codec
// string and false is returned.
func H264CodecString(profile, level int) (string, bool) {
	if profile < 0 {
		profile = ProfileH264Main
	}
	profileB := profile & 0xFF
	constraints := 0
	if profile&ProfileH264Constrained != 0 {
		switch profileB {
		case ProfileH264Baseline:
			constraints = 0xE0
		case ProfileH264Main:
			constraints = 0x60
		case ProfileH264Extended:
			constraints = 0x20
		default:
			return "", false
		}
	}
	if level < 0 {
		level = 10
	}
	return fmt.Sprintf("avc1.%02x%02x%02x", profileB, constraints, level), true
}

// applyH264CodecString parses avc1.PPCCLL. Other shapes are ignored.
func applyH264CodecString(parts []string, p *CodecParameters) {
	if len(parts) != 2 || len(parts[1]) != 6 {
		return
	}
	profile, err := strconv.ParseUint(parts[1][0:2], 16, 8)
	if err != nil {
		return
	}
	level, err := strconv.ParseUint(parts[1][4:6], 16, 8)
	if err != nil {
		return
	}
	p.Profile = int(profile)
	p.Level = int(level)
}
