package wcbridge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pion/webrtc/v4"
)

var videoRTCPFeedback = []webrtc.RTCPFeedback{
	{Type: "goog-remb"},
	{Type: "ccm", Parameter: "fir"},
	{Type: "nack"},
	{Type: "nack", Parameter: "pli"},
}

// CodecCapability maps a decoder config to the WebRTC codec capability a
// track carrying it would negotiate. The fmtp line is derived from the codec
// string. It reports false for codecs without an RTP payload format.
func CodecCapability(config *DecoderConfig) (webrtc.RTPCodecCapability, bool) {
	if config == nil || config.Codec.Proprietary != nil || config.Codec.Name == "" {
		return webrtc.RTPCodecCapability{}, false
	}
	codec := config.Codec.Name
	parts := strings.Split(codec, ".")

	if vc := VideoCodecOf(codec); vc != VideoCodecUnknown {
		c := webrtc.RTPCodecCapability{
			MimeType:     vc.MimeType(),
			ClockRate:    vc.ClockRate(),
			RTCPFeedback: videoRTCPFeedback,
		}
		switch vc {
		case VideoCodecH264:
			c.SDPFmtpLine = h264Fmtp(parts)
		case VideoCodecVP9:
			c.SDPFmtpLine = vp9Fmtp(parts)
		case VideoCodecAV1:
			c.SDPFmtpLine = av1Fmtp(parts)
		case VideoCodecH265:
			c.SDPFmtpLine = hevcFmtp(parts)
		}
		return c, true
	}

	switch ac := AudioCodecOf(codec); ac {
	case AudioCodecOpus:
		return webrtc.RTPCodecCapability{
			MimeType:    ac.MimeType(),
			ClockRate:   ac.ClockRate(),
			Channels:    2,
			SDPFmtpLine: "minptime=10;useinbandfec=1",
		}, true
	case AudioCodecG711A, AudioCodecG711U:
		return webrtc.RTPCodecCapability{
			MimeType:  ac.MimeType(),
			ClockRate: ac.ClockRate(),
		}, true
	}
	return webrtc.RTPCodecCapability{}, false
}

// h264Fmtp uses the codec string's profile/constraint/level bytes as the
// profile-level-id, falling back to constrained baseline 3.1.
func h264Fmtp(parts []string) string {
	plid := "42e01f"
	if len(parts) == 2 && len(parts[1]) == 6 {
		if _, err := strconv.ParseUint(parts[1], 16, 32); err == nil {
			plid = strings.ToLower(parts[1])
		}
	}
	return "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=" + plid
}

func vp9Fmtp(parts []string) string {
	profile := 0
	if len(parts) > 1 {
		setLeadingInt(&profile, parts[1])
	}
	return fmt.Sprintf("profile-id=%d", profile)
}

// av1Fmtp reads "av01.P.LLT": profile, level index and the M/H tier letter.
func av1Fmtp(parts []string) string {
	profile, level, tier := 0, 5, 0
	if len(parts) > 1 {
		setLeadingInt(&profile, parts[1])
	}
	if len(parts) > 2 {
		setLeadingInt(&level, parts[2])
		if strings.HasSuffix(parts[2], "H") {
			tier = 1
		}
	}
	return fmt.Sprintf("level-idx=%d;profile=%d;tier=%d", level, profile, tier)
}

// hevcFmtp reads "hvc1.[ABC]P.C.TL.*": profile, tier letter and level.
func hevcFmtp(parts []string) string {
	profile, tier, level := 1, 0, 93
	if len(parts) > 1 {
		setLeadingInt(&profile, strings.TrimLeft(parts[1], "ABC"))
	}
	if len(parts) > 3 && len(parts[3]) > 1 {
		if parts[3][0] == 'H' {
			tier = 1
		}
		setLeadingInt(&level, parts[3][1:])
	}
	return fmt.Sprintf("level-id=%d;profile-id=%d;tier-flag=%d", level, profile, tier)
}
