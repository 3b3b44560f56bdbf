package wcbridge

import "strconv"

// AV1CodecString builds an "av01" codec string from the sequence profile and
// level and the pixel format's bit depth, component count and chroma
// subsampling. The tier is always main and the optional colour fields are
// omitted.
//
// A monochrome format (fewer than two components) is written with
// subsampling 1,1. The chroma sample position is always 0. Unset (negative)
// profile and level are written as 0.
func AV1CodecString(profile, level int, pix *PixFmtDescriptor) string {
	if profile < 0 {
		profile = 0
	}
	if level < 0 {
		level = 0
	}
	codec := "av01.0" + strconv.Itoa(profile)
	codec += "." + pad2(level) + "M"
	codec += "." + pad2(pix.CompDepth(0))

	subX, subY := pix.Log2ChromaW, pix.Log2ChromaH
	if pix.NbComponents < 2 {
		codec += ".1"
		subX, subY = 1, 1
	} else {
		codec += ".0"
	}
	codec += "." + strconv.Itoa(subX) + strconv.Itoa(subY) + "0"
	return codec
}

// applyAV1CodecString parses
// av01.P.LLT.DD[.M.CCC[.cp[.tc[.mc[.F]]]]].
func applyAV1CodecString(parts []string, p *CodecParameters) {
	if len(parts) > 1 {
		setLeadingInt(&p.Profile, parts[1])
	}
	if len(parts) > 2 {
		setLeadingInt(&p.Level, parts[2])
	}
	if len(parts) > 5 {
		switch parts[5] {
		case "112":
			p.ChromaLocation = ChromaLocationTopLeft
		case "111":
			p.ChromaLocation = ChromaLocationLeft
		case "100":
			p.Format = PixFmtYUV422P
		case "000":
			p.Format = PixFmtYUV444P
		}
	}
	if len(parts) > 6 {
		setLeadingInt(&p.ColorPrimaries, parts[6])
	}
	if len(parts) > 7 {
		setLeadingInt(&p.ColorTRC, parts[7])
	}
	if len(parts) > 8 {
		setLeadingInt(&p.ColorSpace, parts[8])
	}
	if len(parts) > 9 && parts[9] == "1" {
		p.ColorRange = ColorRangeJPEG
	}
}
