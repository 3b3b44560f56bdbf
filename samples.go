package wcbridge

import (
	"encoding/binary"
	"math"
)

type sampleKind int

const (
	sampleU8 sampleKind = iota
	sampleS16
	sampleS32
	sampleF32
)

func (k sampleKind) size() int {
	switch k {
	case sampleU8:
		return 1
	case sampleS16:
		return 2
	default:
		return 4
	}
}

// newBuffer returns a zeroed buffer of n samples.
func (k sampleKind) newBuffer(n int) SampleBuffer {
	switch k {
	case sampleU8:
		return make(U8Samples, n)
	case sampleS16:
		return make(S16Samples, n)
	case sampleS32:
		return make(S32Samples, n)
	default:
		return make(F32Samples, n)
	}
}

// SampleBuffer is a typed audio sample buffer. Bytes and SetBytes use
// little-endian encoding.
type SampleBuffer interface {
	Len() int
	ByteLen() int
	Bytes() []byte
	SetBytes(b []byte)
}

// U8Samples holds unsigned 8-bit samples.
type U8Samples []uint8

// S16Samples holds signed 16-bit samples.
type S16Samples []int16

// S32Samples holds signed 32-bit samples.
type S32Samples []int32

// F32Samples holds 32-bit float samples.
type F32Samples []float32

func (s U8Samples) Len() int     { return len(s) }
func (s U8Samples) ByteLen() int { return len(s) }
func (s U8Samples) Bytes() []byte {
	b := make([]byte, len(s))
	copy(b, s)
	return b
}
func (s U8Samples) SetBytes(b []byte) { copy(s, b) }

func (s S16Samples) Len() int     { return len(s) }
func (s S16Samples) ByteLen() int { return 2 * len(s) }
func (s S16Samples) Bytes() []byte {
	b := make([]byte, 2*len(s))
	for i, v := range s {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(v))
	}
	return b
}
func (s S16Samples) SetBytes(b []byte) {
	for i := range s {
		if 2*i+2 > len(b) {
			return
		}
		s[i] = int16(binary.LittleEndian.Uint16(b[2*i:]))
	}
}

func (s S32Samples) Len() int     { return len(s) }
func (s S32Samples) ByteLen() int { return 4 * len(s) }
func (s S32Samples) Bytes() []byte {
	b := make([]byte, 4*len(s))
	for i, v := range s {
		binary.LittleEndian.PutUint32(b[4*i:], uint32(v))
	}
	return b
}
func (s S32Samples) SetBytes(b []byte) {
	for i := range s {
		if 4*i+4 > len(b) {
			return
		}
		s[i] = int32(binary.LittleEndian.Uint32(b[4*i:]))
	}
}

func (s F32Samples) Len() int     { return len(s) }
func (s F32Samples) ByteLen() int { return 4 * len(s) }
func (s F32Samples) Bytes() []byte {
	b := make([]byte, 4*len(s))
	for i, v := range s {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return b
}
func (s F32Samples) SetBytes(b []byte) {
	for i := range s {
		if 4*i+4 > len(b) {
			return
		}
		s[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
}
