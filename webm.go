package wcbridge

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/at-wat/ebml-go/mkvcore"
	"github.com/at-wat/ebml-go/webm"
	"github.com/sirupsen/logrus"
)

// ErrNoMatroskaCodec is returned for decoder configs with no Matroska codec ID.
var ErrNoMatroskaCodec = errors.New("codec has no Matroska codec ID")

// msTimeBase is the default Matroska timecode scale.
var msTimeBase = Rational{Num: 1, Den: 1000}

// matroskaCodecID maps a codec string to its Matroska codec ID.
func matroskaCodecID(c CodecSpec) (string, bool) {
	if c.Proprietary != nil {
		return "", false
	}
	switch VideoCodecOf(c.Name) {
	case VideoCodecH264:
		return "V_MPEG4/ISO/AVC", true
	case VideoCodecH265:
		return "V_MPEGH/ISO/HEVC", true
	case VideoCodecVP8:
		return "V_VP8", true
	case VideoCodecVP9:
		return "V_VP9", true
	case VideoCodecAV1:
		return "V_AV1", true
	}
	switch AudioCodecOf(c.Name) {
	case AudioCodecOpus:
		return "A_OPUS", true
	case AudioCodecAAC:
		return "A_AAC", true
	case AudioCodecVorbis:
		return "A_VORBIS", true
	case AudioCodecFLAC:
		return "A_FLAC", true
	case AudioCodecMP3:
		return "A_MPEG/L3", true
	}
	return "", false
}

// opusHead builds the identification header Matroska carries as Opus
// CodecPrivate (RFC 7845 5.1) with channel mapping family 0.
func opusHead(channels, sampleRate int) []byte {
	h := make([]byte, 19)
	copy(h, "OpusHead")
	h[8] = 1
	h[9] = byte(channels)
	binary.LittleEndian.PutUint16(h[10:], 0)
	binary.LittleEndian.PutUint32(h[12:], uint32(sampleRate))
	return h
}

func trackEntry(n int, config *DecoderConfig) (webm.TrackEntry, error) {
	codecID, ok := matroskaCodecID(config.Codec)
	if !ok {
		return webm.TrackEntry{}, fmt.Errorf("%w: %s", ErrNoMatroskaCodec, config.Codec)
	}
	e := webm.TrackEntry{
		Name:         config.Codec.Name,
		TrackNumber:  uint64(n),
		TrackUID:     uint64(n),
		CodecID:      codecID,
		CodecPrivate: config.Description,
	}
	if VideoCodecOf(config.Codec.Name) != VideoCodecUnknown {
		e.TrackType = 1
		e.Video = &webm.Video{
			PixelWidth:  uint64(config.CodedWidth),
			PixelHeight: uint64(config.CodedHeight),
		}
		return e, nil
	}
	e.TrackType = 2
	e.Audio = &webm.Audio{
		SamplingFrequency: float64(config.SampleRate),
		Channels:          uint64(config.NumberOfChannels),
	}
	if codecID == "A_OPUS" && len(e.CodecPrivate) == 0 {
		e.CodecPrivate = opusHead(config.NumberOfChannels, config.SampleRate)
	}
	return e, nil
}

// WebMWriter writes encoded chunks into a Matroska/WebM stream, one track
// per decoder config. Track indexes follow the order of the configs. H.264
// chunks are stored as given, so they must be length-prefixed when the
// config's description is an avcC record.
type WebMWriter struct {
	mu      sync.Mutex
	writers []webm.BlockWriteCloser
	log     logrus.FieldLogger

	// fatal is set from the muxer goroutine.
	fatalMu sync.Mutex
	fatal   error
}

// NewWebMWriter writes the EBML header and track list to w. Closing the
// writer closes w.
func NewWebMWriter(w io.WriteCloser, configs []*DecoderConfig, opts ...Option) (*WebMWriter, error) {
	o := newOptions(opts)
	if len(configs) == 0 {
		return nil, errors.New("webm: no tracks")
	}
	tracks := make([]webm.TrackEntry, len(configs))
	for i, c := range configs {
		e, err := trackEntry(i+1, c)
		if err != nil {
			return nil, err
		}
		tracks[i] = e
	}

	m := &WebMWriter{log: o.log.WithField("component", "webm")}
	writers, err := webm.NewSimpleBlockWriter(w, tracks, mkvcore.WithOnFatalHandler(func(err error) {
		m.log.WithError(err).Warn("webm writer failed")
		m.fatalMu.Lock()
		m.fatal = err
		m.fatalMu.Unlock()
	}))
	if err != nil {
		return nil, fmt.Errorf("webm: %w", err)
	}
	m.writers = writers
	return m, nil
}

// WriteChunk appends c to track as a SimpleBlock with a millisecond
// timecode.
func (m *WebMWriter) WriteChunk(track int, c EncodedChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fatalMu.Lock()
	fatal := m.fatal
	m.fatalMu.Unlock()
	if fatal != nil {
		return fatal
	}
	if track < 0 || track >= len(m.writers) {
		return fmt.Errorf("webm: track %d out of range [0, %d)", track, len(m.writers))
	}
	data, err := chunkBytes(c)
	if err != nil {
		return fmt.Errorf("read chunk: %w", err)
	}
	ts := FromMicroseconds(c.Timestamp(), msTimeBase)
	if _, err := m.writers[track].Write(c.Type() == ChunkTypeKey, ts, data); err != nil {
		return fmt.Errorf("webm: write block: %w", err)
	}
	return nil
}

// Close finalizes every track.
func (m *WebMWriter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var first error
	for _, w := range m.writers {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	m.writers = nil
	return first
}
