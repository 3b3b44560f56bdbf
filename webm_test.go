package wcbridge

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"
)

// syncBuffer collects the muxer's output, which is written from its own
// goroutine.
type syncBuffer struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed chan struct{}
	once   sync.Once
}

func newSyncBuffer() *syncBuffer { return &syncBuffer{closed: make(chan struct{})} }

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Close() error {
	b.once.Do(func() { close(b.closed) })
	return nil
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

func TestMatroskaCodecID(t *testing.T) {
	tests := []struct {
		codec string
		want  string
	}{
		{"avc1.42e01e", "V_MPEG4/ISO/AVC"},
		{"hev1.1.4.L93.B01", "V_MPEGH/ISO/HEVC"},
		{"vp8", "V_VP8"},
		{"vp09.00.10.08", "V_VP9"},
		{"av01.0.04M.08", "V_AV1"},
		{"opus", "A_OPUS"},
		{"mp4a.40.2", "A_AAC"},
		{"vorbis", "A_VORBIS"},
		{"flac", "A_FLAC"},
		{"mp3", "A_MPEG/L3"},
		{"pcm-s16", ""},
	}
	for _, tt := range tests {
		got, ok := matroskaCodecID(Codec(tt.codec))
		if got != tt.want || ok != (tt.want != "") {
			t.Errorf("matroskaCodecID(%q) = %q, %v, want %q", tt.codec, got, ok, tt.want)
		}
	}
}

func TestOpusHead(t *testing.T) {
	want := []byte{
		'O', 'p', 'u', 's', 'H', 'e', 'a', 'd',
		1, 2, 0, 0,
		0x80, 0xbb, 0, 0, // 48000
		0, 0, 0,
	}
	if got := opusHead(2, 48000); !bytes.Equal(got, want) {
		t.Errorf("opusHead(2, 48000) = %x, want %x", got, want)
	}
}

func TestWebMWriter(t *testing.T) {
	out := newSyncBuffer()
	w, err := NewWebMWriter(out, []*DecoderConfig{
		{Codec: Codec("vp09.00.10.08"), CodedWidth: 320, CodedHeight: 240},
		{Codec: Codec("opus"), SampleRate: 48000, NumberOfChannels: 2},
	})
	if err != nil {
		t.Fatalf("NewWebMWriter: %v", err)
	}

	chunks := []struct {
		track int
		chunk *Chunk
	}{
		{0, NewChunk(EncodedChunkInit{Type: ChunkTypeKey, Timestamp: 0, Data: []byte{0x82, 0x49, 0x83}})},
		{1, NewChunk(EncodedChunkInit{Type: ChunkTypeKey, Timestamp: 0, Data: []byte{0xfc, 0xff}})},
		{1, NewChunk(EncodedChunkInit{Type: ChunkTypeKey, Timestamp: 20000, Data: []byte{0xfc, 0xfe}})},
		{0, NewChunk(EncodedChunkInit{Type: ChunkTypeDelta, Timestamp: 33333, Data: []byte{0x86, 0x00}})},
	}
	for _, c := range chunks {
		if err := w.WriteChunk(c.track, c.chunk); err != nil {
			t.Fatalf("WriteChunk(%d): %v", c.track, err)
		}
	}
	if err := w.WriteChunk(2, chunks[0].chunk); err == nil {
		t.Error("WriteChunk(2) succeeded with two tracks")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case <-out.closed:
	case <-time.After(5 * time.Second):
		t.Fatal("output not closed")
	}
	data := out.Bytes()
	if !bytes.HasPrefix(data, []byte{0x1A, 0x45, 0xDF, 0xA3}) {
		t.Fatalf("output does not start with an EBML header: % x", data[:min(len(data), 8)])
	}
	for _, s := range []string{"webm", "V_VP9", "A_OPUS", "OpusHead"} {
		if !bytes.Contains(data, []byte(s)) {
			t.Errorf("output lacks %q", s)
		}
	}
}

func TestNewWebMWriterErrors(t *testing.T) {
	if _, err := NewWebMWriter(newSyncBuffer(), nil); err == nil {
		t.Error("NewWebMWriter with no tracks succeeded")
	}
	_, err := NewWebMWriter(newSyncBuffer(), []*DecoderConfig{{Codec: Codec("pcm-s16")}})
	if !errors.Is(err, ErrNoMatroskaCodec) {
		t.Errorf("NewWebMWriter(pcm) error = %v, want ErrNoMatroskaCodec", err)
	}
}
