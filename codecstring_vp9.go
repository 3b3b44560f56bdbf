package wcbridge

import "strconv"

// VP9 chroma subsampling codes used in codec strings.
const (
	vp9Chroma420 = 1
	vp9Chroma422 = 2
	vp9Chroma444 = 3
)

// VP9CodecString builds a "vp09" codec string. Unset profile and level
// become 00 and 10; a zero bit depth becomes 08. The colour fields are
// always BT.709 limited range (".1.1.1.0").
func VP9CodecString(profile, level int, pix *PixFmtDescriptor) string {
	profileS := "00"
	if profile >= 0 {
		profileS = pad2(profile)
	}
	levelS := "10"
	if level >= 0 {
		levelS = pad2(level)
	}
	bitDepth := pix.CompDepth(0)
	if bitDepth == 0 {
		bitDepth = 8
	}

	chroma := vp9Chroma444
	switch {
	case pix.Log2ChromaW > 0 && pix.Log2ChromaH > 0:
		chroma = vp9Chroma420
	case pix.Log2ChromaW > 0 || pix.Log2ChromaH > 0:
		chroma = vp9Chroma422
	}
	return "vp09." + profileS + "." + levelS + "." + pad2(bitDepth) +
		".0" + strconv.Itoa(chroma) + ".1.1.1.0"
}

// applyVP9CodecString parses vp09.PP.LL.DD[.CC[.cp[.tc[.mc[.FF]]]]].
func applyVP9CodecString(parts []string, p *CodecParameters) {
	if len(parts) > 1 {
		setLeadingInt(&p.Profile, parts[1])
	}
	if len(parts) > 2 {
		setLeadingInt(&p.Level, parts[2])
	}
	if len(parts) > 4 {
		switch parts[4] {
		case "01":
			p.ChromaLocation = ChromaLocationTopLeft
		case "00":
			p.ChromaLocation = ChromaLocationCenter
		case "02":
			p.Format = PixFmtYUV422P
		case "03":
			p.Format = PixFmtYUV444P
		}
	}
	if len(parts) > 5 {
		setLeadingInt(&p.ColorPrimaries, parts[5])
	}
	if len(parts) > 6 {
		setLeadingInt(&p.ColorTRC, parts[6])
	}
	if len(parts) > 7 {
		setLeadingInt(&p.ColorSpace, parts[7])
	}
	if len(parts) > 8 && parts[8] == "01" {
		p.ColorRange = ColorRangeJPEG
	}
}
