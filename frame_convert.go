package wcbridge

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// frameTimestamp converts an engine pts to microseconds. The timebase comes
// from the options, then from the frame; without either the pts is returned
// as-is.
func frameTimestamp(o *options, f *Frame) int64 {
	tb := f.TimeBase
	if o.timeBase != nil {
		tb = *o.timeBase
	}
	if tb.IsZero() {
		return f.PTS.Int64()
	}
	return ToMicroseconds(f.PTS.Float64(), tb)
}

// LAFrameToVideoFrame converts an engine video frame to a native frame.
// Row-plane data is flattened into one buffer; packed data and its layout
// pass through. Unknown pixel formats fail with ErrUnsupportedPixelFormat.
func LAFrameToVideoFrame(f *Frame, opts ...Option) (NativeVideoFrame, error) {
	o := newOptions(opts)

	format, ok := nativePixelFormat(f.Format)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedPixelFormat, f.Format)
	}
	planes := format.PlaneCount()

	var (
		data     []byte
		layout   []PlaneLayout
		transfer bool
	)
	switch d := f.Data.(type) {
	case PackedPlanes:
		if len(d.Layout) != planes {
			return nil, fmt.Errorf("%w: %s has %d planes, layout has %d",
				ErrLayoutMismatch, format, planes, len(d.Layout))
		}
		data, layout, transfer = d.Data, d.Layout, o.transfer
	case RowPlanes:
		if len(d) != planes {
			return nil, fmt.Errorf("%w: %s has %d planes, frame has %d",
				ErrLayoutMismatch, format, planes, len(d))
		}
		data, layout = flattenRowPlanes(d)
		transfer = true
	default:
		return nil, fmt.Errorf("%w: %T in a video frame", ErrFrameDataMismatch, f.Data)
	}

	ts := frameTimestamp(o, f)
	o.log.WithFields(logrus.Fields{
		"format":    format,
		"width":     f.Width,
		"height":    f.Height,
		"timestamp": ts,
	}).Debug("engine frame to video frame")

	return o.constructors.NewVideoFrame(data, VideoFrameInit{
		Format:      format,
		CodedWidth:  f.Width,
		CodedHeight: f.Height,
		Timestamp:   ts,
		Layout:      layout,
		Transfer:    transfer,
	})
}

// flattenRowPlanes concatenates every row of every plane. Each plane's
// stride is the length of its first row.
func flattenRowPlanes(planes RowPlanes) ([]byte, []PlaneLayout) {
	layout := make([]PlaneLayout, len(planes))
	size := 0
	for p, rows := range planes {
		stride := 0
		if len(rows) > 0 {
			stride = len(rows[0])
		}
		layout[p] = PlaneLayout{Offset: size, Stride: stride}
		size += len(rows) * stride
	}
	data := make([]byte, size)
	for p, rows := range planes {
		offset := layout[p].Offset
		for _, row := range rows {
			copy(data[offset:offset+layout[p].Stride], row)
			offset += layout[p].Stride
		}
	}
	return data, layout
}

// LAFrameToAudioData converts an engine audio frame to native audio data.
// Planar samples are concatenated channel after channel. Unknown sample
// formats fail with ErrUnsupportedSampleFormat.
func LAFrameToAudioData(f *Frame, opts ...Option) (NativeAudioData, error) {
	o := newOptions(opts)

	format, ok := nativeSampleFormat(f.Format)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSampleFormat, f.Format)
	}

	var data []byte
	switch d := f.Data.(type) {
	case InterleavedSamples:
		if d.Samples != nil {
			data = d.Samples.Bytes()
		}
	case PlanarSamples:
		size := 0
		for _, plane := range d {
			size += plane.ByteLen()
		}
		data = make([]byte, 0, size)
		for _, plane := range d {
			data = append(data, plane.Bytes()...)
		}
	default:
		return nil, fmt.Errorf("%w: %T in an audio frame", ErrFrameDataMismatch, f.Data)
	}

	return o.constructors.NewAudioData(AudioDataInit{
		Format:           format,
		SampleRate:       f.SampleRate,
		NumberOfFrames:   f.NbSamples,
		NumberOfChannels: f.Channels,
		Timestamp:        frameTimestamp(o, f),
		Data:             data,
		Transfer:         true,
	})
}

// VideoFrameToLAFrame copies a native video frame into an engine frame in
// the microsecond timebase. Engines older than version 5 (WithEngineVersion)
// get RowPlanes; newer ones get PackedPlanes.
func VideoFrameToLAFrame(ctx context.Context, vf NativeVideoFrame, opts ...Option) (*Frame, error) {
	o := newOptions(opts)

	pl, ok := pixelLayouts[vf.Format()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPixelFormat, vf.Format())
	}
	data := make([]byte, vf.AllocationSize())
	if _, err := vf.CopyTo(ctx, data); err != nil {
		return nil, fmt.Errorf("copy video frame: %w", err)
	}

	rect := vf.VisibleRect()
	f := &Frame{
		Format:   pl.engine,
		PTS:      SplitI64(vf.Timestamp()),
		TimeBase: MicrosecondTimeBase,
		Width:    rect.Width,
		Height:   rect.Height,
	}

	layout, size := pl.packedLayout(rect.Width, rect.Height)
	if size > len(data) {
		return nil, fmt.Errorf("%w: %s %dx%d needs %d bytes, frame copied %d",
			ErrLayoutMismatch, vf.Format(), rect.Width, rect.Height, size, len(data))
	}
	if o.engineVersion >= 5 {
		f.Data = PackedPlanes{Data: data, Layout: layout}
		return f, nil
	}

	rows := make(RowPlanes, pl.planes)
	for p := range rows {
		width, n := pl.planeSize(p, rect.Width, rect.Height)
		rows[p] = make([][]byte, n)
		for y := range rows[p] {
			off := layout[p].Offset + y*width
			rows[p][y] = data[off : off+width : off+width]
		}
	}
	f.Data = rows
	return f, nil
}

// AudioDataToLAFrame copies native audio data into an engine frame in the
// microsecond timebase, one typed buffer per channel for planar formats.
func AudioDataToLAFrame(ctx context.Context, ad NativeAudioData, opts ...Option) (*Frame, error) {
	o := newOptions(opts)

	sl, ok := sampleLayouts[ad.Format()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSampleFormat, ad.Format())
	}
	o.log.WithFields(logrus.Fields{
		"format":   ad.Format(),
		"frames":   ad.NumberOfFrames(),
		"channels": ad.NumberOfChannels(),
	}).Debug("audio data to engine frame")
	f := &Frame{
		Format:     sl.engine,
		PTS:        SplitI64(ad.Timestamp()),
		TimeBase:   MicrosecondTimeBase,
		SampleRate: ad.SampleRate(),
		NbSamples:  ad.NumberOfFrames(),
		Channels:   ad.NumberOfChannels(),
	}

	if sl.planar {
		planes := make(PlanarSamples, ad.NumberOfChannels())
		for p := range planes {
			buf := sl.kind.newBuffer(ad.NumberOfFrames())
			raw := make([]byte, buf.ByteLen())
			if err := ad.CopyTo(ctx, raw, p); err != nil {
				return nil, fmt.Errorf("copy audio plane %d: %w", p, err)
			}
			buf.SetBytes(raw)
			planes[p] = buf
		}
		f.Data = planes
		return f, nil
	}

	buf := sl.kind.newBuffer(ad.NumberOfFrames() * ad.NumberOfChannels())
	raw := make([]byte, buf.ByteLen())
	if err := ad.CopyTo(ctx, raw, 0); err != nil {
		return nil, fmt.Errorf("copy audio: %w", err)
	}
	buf.SetBytes(raw)
	f.Data = InterleavedSamples{Samples: buf}
	return f, nil
}
