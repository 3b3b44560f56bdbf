package wcbridge

import (
	"encoding/binary"
	"math/bits"
	"strconv"
	"strings"
)

// hevcRecordMinLen is the shortest HEVCDecoderConfigurationRecord prefix
// that carries general_level_idc.
const hevcRecordMinLen = 13

// HEVCCodecStringFromRecord builds an "hvc1" codec string from the head of
// an HEVCDecoderConfigurationRecord (ISO/IEC 14496-15 8.3.3):
//
//	hvc1.[A|B|C]<profile_idc>.<reversed compat flags>.<L|H><level_idc>[.<constraint bytes>]
//
// Constraint bytes are emitted from the first to the last non-zero byte.
// It reports false when the record is too short.
func HEVCCodecStringFromRecord(rec []byte) (string, bool) {
	if len(rec) < hevcRecordMinLen {
		return "", false
	}
	var b strings.Builder
	b.WriteString("hvc1.")
	switch rec[1] >> 6 {
	case 1:
		b.WriteByte('A')
	case 2:
		b.WriteByte('B')
	case 3:
		b.WriteByte('C')
	}
	b.WriteString(strconv.Itoa(int(rec[1] & 0x1F)))
	b.WriteByte('.')

	compat := bits.Reverse32(binary.BigEndian.Uint32(rec[2:6]))
	b.WriteString(strconv.FormatUint(uint64(compat), 16))
	b.WriteByte('.')

	if rec[1]&0x20 == 0 {
		b.WriteByte('L')
	} else {
		b.WriteByte('H')
	}
	b.WriteString(strconv.Itoa(int(rec[12])))

	last := -1
	for i := 11; i >= 6; i-- {
		if rec[i] != 0 {
			last = i
			break
		}
	}
	for i := 6; i <= last; i++ {
		b.WriteByte('.')
		b.WriteString(strconv.FormatUint(uint64(rec[i]), 16))
	}
	return b.String(), true
}

// HEVCCodecString is the fixed-shape fallback used when no configuration
// record is available.
func HEVCCodecString(profile, level int) string {
	return "hev1." + strconv.Itoa(profile) + ".4.L" + strconv.Itoa(level) + ".B01"
}

// applyHEVCCodecString parses hev1|hvc1.[A|B|C]P.C.TL[...]: the profile
// (profile-space letter skipped) and the level after the tier letter.
func applyHEVCCodecString(parts []string, p *CodecParameters) {
	if len(parts) > 1 {
		setLeadingInt(&p.Profile, strings.TrimLeft(parts[1], "ABC"))
	}
	if len(parts) > 3 && len(parts[3]) > 0 {
		setLeadingInt(&p.Level, parts[3][1:])
	}
}
