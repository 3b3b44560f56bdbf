package wcbridge

import (
	"strconv"
	"strings"
)

// ApplyCodecString parses the dotted suffix of a video codec string into p:
// profile, level, chroma location or format, colour description and range.
// Fields the string does not carry are left untouched. Unknown codec
// families are ignored.
func ApplyCodecString(codec string, p *CodecParameters) {
	parts := strings.Split(codec, ".")
	switch engineCodecName(parts[0]) {
	case "av1":
		applyAV1CodecString(parts, p)
	case "h264":
		applyH264CodecString(parts, p)
	case "hevc":
		applyHEVCCodecString(parts, p)
	case "vp9":
		applyVP9CodecString(parts, p)
	}
}

// parseLeadingInt parses the decimal integer at the start of s, ignoring
// leading spaces and any trailing non-digits ("04M" -> 4).
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return v, true
}

// setLeadingInt stores the leading integer of s in dst when there is one.
func setLeadingInt(dst *int, s string) {
	if v, ok := parseLeadingInt(s); ok {
		*dst = v
	}
}

// pad2 left-pads a decimal value to two digits.
func pad2(v int) string {
	s := strconv.Itoa(v)
	if len(s) < 2 {
		s = "0" + s
	}
	return s
}
