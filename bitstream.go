package wcbridge

import (
	"errors"
	"fmt"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h265"
)

// ErrMalformedExtradata is returned when a codec configuration record cannot
// be parsed.
var ErrMalformedExtradata = errors.New("malformed codec configuration record")

// isAnnexBStartCode checks for H.264/H.265 Annex-B start codes.
// Per ITU-T H.264 Annex B, NAL units are prefixed with:
//   - 4-byte start code: 0x00000001
//   - 3-byte start code: 0x000001
func isAnnexBStartCode(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	if data[0] == 0 && data[1] == 0 && data[2] == 0 && data[3] == 1 {
		return true
	}
	return data[0] == 0 && data[1] == 0 && data[2] == 1
}

// AVCDecoderConfig is a parsed AVCDecoderConfigurationRecord (avcC), the
// description an H.264 decoder config carries.
// Per ISO/IEC 14496-15 5.3.3.1:
//   - configurationVersion (8 bits): always 1
//   - AVCProfileIndication, profile_compatibility, AVCLevelIndication
//   - lengthSizeMinusOne (2 low bits of byte 4)
//   - numOfSequenceParameterSets (5 low bits of byte 5), each 16-bit length + SPS
//   - numOfPictureParameterSets (8 bits), each 16-bit length + PPS
type AVCDecoderConfig struct {
	ProfileIndication    uint8
	ProfileCompatibility uint8
	LevelIndication      uint8
	LengthSize           int
	SPS                  [][]byte
	PPS                  [][]byte
}

// ParseAVCDecoderConfig parses an avcC record.
func ParseAVCDecoderConfig(rec []byte) (*AVCDecoderConfig, error) {
	if len(rec) < 7 || rec[0] != 1 {
		return nil, fmt.Errorf("%w: not an avcC record", ErrMalformedExtradata)
	}
	c := &AVCDecoderConfig{
		ProfileIndication:    rec[1],
		ProfileCompatibility: rec[2],
		LevelIndication:      rec[3],
		LengthSize:           int(rec[4]&0x03) + 1,
	}

	i := 5
	readSets := func(n int) ([][]byte, error) {
		var sets [][]byte
		for k := 0; k < n; k++ {
			if i+2 > len(rec) {
				return nil, fmt.Errorf("%w: truncated parameter set length", ErrMalformedExtradata)
			}
			l := int(rec[i])<<8 | int(rec[i+1])
			i += 2
			if i+l > len(rec) {
				return nil, fmt.Errorf("%w: parameter set of %d bytes overruns record", ErrMalformedExtradata, l)
			}
			sets = append(sets, append([]byte(nil), rec[i:i+l]...))
			i += l
		}
		return sets, nil
	}

	numSPS := int(rec[i] & 0x1F)
	i++
	var err error
	if c.SPS, err = readSets(numSPS); err != nil {
		return nil, err
	}
	if i >= len(rec) {
		return c, nil
	}
	numPPS := int(rec[i])
	i++
	if c.PPS, err = readSets(numPPS); err != nil {
		return nil, err
	}
	return c, nil
}

// MarshalAVCDecoderConfig builds an avcC record from one SPS and one PPS with
// 4-byte NAL lengths.
func MarshalAVCDecoderConfig(sps, pps []byte) ([]byte, error) {
	if len(sps) < 4 {
		return nil, fmt.Errorf("%w: SPS too short", ErrMalformedExtradata)
	}
	rec := []byte{1, sps[1], sps[2], sps[3], 0xFC | 3, 0xE0 | 1}
	rec = append(rec, byte(len(sps)>>8), byte(len(sps)))
	rec = append(rec, sps...)
	rec = append(rec, 1, byte(len(pps)>>8), byte(len(pps)))
	rec = append(rec, pps...)
	return rec, nil
}

// ParameterSetsAnnexB returns the record's SPS and PPS as an Annex-B access
// unit, suitable for prepending to a keyframe.
func (c *AVCDecoderConfig) ParameterSetsAnnexB() ([]byte, error) {
	au := make(h264.AnnexB, 0, len(c.SPS)+len(c.PPS))
	au = append(au, c.SPS...)
	au = append(au, c.PPS...)
	return au.Marshal()
}

// AVCCToAnnexB converts a length-prefixed (4-byte) H.264 access unit to
// Annex-B. Data already in Annex-B is returned unchanged.
func AVCCToAnnexB(data []byte) ([]byte, error) {
	if isAnnexBStartCode(data) {
		return data, nil
	}
	var avcc h264.AVCC
	if err := avcc.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("unmarshal AVCC: %w", err)
	}
	return h264.AnnexB(avcc).Marshal()
}

// AnnexBToAVCC converts an Annex-B H.264 access unit to 4-byte
// length-prefixed form. Data without a start code is returned unchanged.
func AnnexBToAVCC(data []byte) ([]byte, error) {
	if !isAnnexBStartCode(data) {
		return data, nil
	}
	var au h264.AnnexB
	if err := au.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("unmarshal Annex-B: %w", err)
	}
	return h264.AVCC(au).Marshal()
}

// splitSPSPPS returns the first SPS and PPS of an Annex-B access unit.
func splitSPSPPS(data []byte) (sps, pps []byte) {
	var au h264.AnnexB
	if err := au.Unmarshal(data); err != nil {
		return nil, nil
	}
	for _, nalu := range au {
		if len(nalu) == 0 {
			continue
		}
		switch h264.NALUType(nalu[0] & 0x1F) {
		case h264.NALUTypeSPS:
			if sps == nil {
				sps = nalu
			}
		case h264.NALUTypePPS:
			if pps == nil {
				pps = nalu
			}
		}
	}
	return sps, pps
}

// AnnexBToAVCDecoderConfig builds an avcC record from Annex-B extradata that
// carries an SPS and a PPS.
func AnnexBToAVCDecoderConfig(data []byte) ([]byte, error) {
	sps, pps := splitSPSPPS(data)
	if sps == nil || pps == nil {
		return nil, fmt.Errorf("%w: Annex-B extradata lacks SPS or PPS", ErrMalformedExtradata)
	}
	return MarshalAVCDecoderConfig(sps, pps)
}

// hevcRecordHeaderLen is the fixed part of an HEVCDecoderConfigurationRecord
// before numOfArrays.
const hevcRecordHeaderLen = 22

// HEVCDecoderConfig is a parsed HEVCDecoderConfigurationRecord (hvcC). Only
// the NAL length size and the VPS, SPS and PPS arrays are kept.
type HEVCDecoderConfig struct {
	LengthSize int
	VPS        [][]byte
	SPS        [][]byte
	PPS        [][]byte
}

// ParseHEVCDecoderConfig parses an hvcC record (ISO/IEC 14496-15 8.3.3).
// Arrays of other NAL types (SEI) are skipped.
func ParseHEVCDecoderConfig(rec []byte) (*HEVCDecoderConfig, error) {
	if len(rec) < hevcRecordHeaderLen+1 || rec[0] != 1 {
		return nil, fmt.Errorf("%w: not an hvcC record", ErrMalformedExtradata)
	}
	c := &HEVCDecoderConfig{LengthSize: int(rec[21]&0x03) + 1}

	numArrays := int(rec[hevcRecordHeaderLen])
	i := hevcRecordHeaderLen + 1
	for a := 0; a < numArrays; a++ {
		if i+3 > len(rec) {
			return nil, fmt.Errorf("%w: truncated NAL array header", ErrMalformedExtradata)
		}
		typ := h265.NALUType(rec[i] & 0x3F)
		n := int(rec[i+1])<<8 | int(rec[i+2])
		i += 3
		for k := 0; k < n; k++ {
			if i+2 > len(rec) {
				return nil, fmt.Errorf("%w: truncated NAL length", ErrMalformedExtradata)
			}
			l := int(rec[i])<<8 | int(rec[i+1])
			i += 2
			if i+l > len(rec) {
				return nil, fmt.Errorf("%w: NAL unit of %d bytes overruns record", ErrMalformedExtradata, l)
			}
			nalu := append([]byte(nil), rec[i:i+l]...)
			i += l
			switch typ {
			case h265.NALUType_VPS_NUT:
				c.VPS = append(c.VPS, nalu)
			case h265.NALUType_SPS_NUT:
				c.SPS = append(c.SPS, nalu)
			case h265.NALUType_PPS_NUT:
				c.PPS = append(c.PPS, nalu)
			}
		}
	}
	return c, nil
}

// ParameterSetsAnnexB returns the record's VPS, SPS and PPS as an Annex-B
// access unit.
func (c *HEVCDecoderConfig) ParameterSetsAnnexB() ([]byte, error) {
	au := make(h264.AnnexB, 0, len(c.VPS)+len(c.SPS)+len(c.PPS))
	au = append(au, c.VPS...)
	au = append(au, c.SPS...)
	au = append(au, c.PPS...)
	return au.Marshal()
}
