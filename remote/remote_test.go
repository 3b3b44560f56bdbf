package remote

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thesyncim/wcbridge"
)

func newTestClient(t *testing.T) (*Client, *wcbridge.MemoryEngine) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	engine := wcbridge.NewMemoryEngine()
	srv := httptest.NewServer(NewServer(engine, log))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), log)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, engine
}

func TestClientCatalog(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	name, err := client.CodecName(ctx, wcbridge.CodecIDH264)
	require.NoError(t, err)
	assert.Equal(t, "h264", name)

	desc, err := client.CodecDescriptorByName(ctx, "opus")
	require.NoError(t, err)
	require.NotNil(t, desc)
	assert.Equal(t, wcbridge.CodecIDOpus, desc.ID)
	assert.Equal(t, wcbridge.MediaTypeAudio, desc.Type)

	desc, err = client.CodecDescriptorByName(ctx, "no-such-codec")
	require.NoError(t, err)
	assert.Nil(t, desc)

	pix, err := client.PixFmtDescriptor(ctx, wcbridge.PixFmtYUV420P)
	require.NoError(t, err)
	assert.Equal(t, 3, pix.NbComponents)
	assert.Equal(t, 1, pix.Log2ChromaW)
	assert.Equal(t, 8, pix.CompDepth(0))

	_, err = client.PixFmtDescriptor(ctx, 9999)
	assert.ErrorIs(t, err, wcbridge.ErrUnknownFormat)
}

func TestClientParametersAndMemory(t *testing.T) {
	client, engine := newTestClient(t)
	ctx := context.Background()

	h, err := client.AllocCodecParameters(ctx)
	require.NoError(t, err)

	par, err := client.ReadCodecParameters(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, wcbridge.DefaultCodecParameters(), par)

	par.Width, par.Height = 640, 480
	require.NoError(t, client.WriteCodecParameters(ctx, h, par))

	local, err := engine.ReadCodecParameters(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, 640, local.Width)
	assert.Equal(t, 480, local.Height)

	addr, err := client.Malloc(ctx, 4)
	require.NoError(t, err)
	require.NoError(t, client.CopyIn(ctx, addr, []byte{1, 2, 3, 4}))
	data, err := client.CopyOut(ctx, addr+1, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3, 4}, data)

	_, err = client.ReadCodecParameters(ctx, h+100)
	assert.ErrorIs(t, err, wcbridge.ErrUnknownHandle)

	_, err = client.CopyOut(ctx, addr, 5)
	assert.ErrorIs(t, err, wcbridge.ErrInvalidAddress)
}

func TestClientConcurrentCalls(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := client.AllocCodecParameters(ctx)
			if err != nil {
				errs <- err
				return
			}
			_, err = client.ReadCodecParameters(ctx, h)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestClientDrivesStreamConversion(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	sc, err := wcbridge.ConfigToVideoStream(ctx, client, &wcbridge.EncoderConfig{
		Codec:     wcbridge.Codec("vp09.02.10.10.01.09.16.09.01"),
		Width:     1280,
		Height:    720,
		Framerate: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, wcbridge.Rational{Num: 1, Den: 30}, sc.TimeBase)

	par, err := client.ReadCodecParameters(ctx, sc.CodecPar)
	require.NoError(t, err)
	assert.Equal(t, wcbridge.CodecIDVP9, par.CodecID)
	assert.Equal(t, 2, par.Profile)
	assert.Equal(t, 10, par.Level)
	assert.Equal(t, 1280, par.Width)
	assert.Equal(t, wcbridge.ChromaLocationTopLeft, par.ChromaLocation)
	assert.Equal(t, 9, par.ColorPrimaries)
	assert.Equal(t, 16, par.ColorTRC)
	assert.Equal(t, 9, par.ColorSpace)
	assert.Equal(t, wcbridge.ColorRangeJPEG, par.ColorRange)
}

func TestClientClosed(t *testing.T) {
	client, _ := newTestClient(t)
	require.NoError(t, client.Close())

	_, err := client.AllocCodecParameters(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClientContextCancel(t *testing.T) {
	client, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CodecName(ctx, wcbridge.CodecIDVP8)
	assert.ErrorIs(t, err, context.Canceled)
}
