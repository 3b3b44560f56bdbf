package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thesyncim/wcbridge"
)

type parseResult struct {
	Codec    string                   `json:"codec"`
	Media    string                   `json:"media"`
	Params   wcbridge.CodecParameters `json:"params"`
	TimeBase wcbridge.Rational        `json:"time_base"`
}

func newParseCommand(a *app) *cobra.Command {
	var cfg wcbridge.EncoderConfig
	cmd := &cobra.Command{
		Use:   "parse <codec-string>",
		Short: "Parse a platform codec string into engine codec parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.engine()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			cfg.Codec = wcbridge.Codec(args[0])

			var sc wcbridge.StreamContext
			media := "video"
			if wcbridge.VideoCodecOf(args[0]) == wcbridge.VideoCodecUnknown {
				media = "audio"
				sc, err = wcbridge.ConfigToAudioStream(ctx, e, &cfg)
			} else {
				sc, err = wcbridge.ConfigToVideoStream(ctx, e, &cfg)
			}
			if err != nil {
				return err
			}
			par, err := e.ReadCodecParameters(ctx, sc.CodecPar)
			if err != nil {
				return err
			}
			if par.CodecID == wcbridge.CodecIDNone {
				a.log.WithField("codec", args[0]).Warn("engine does not know this codec")
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(parseResult{Codec: args[0], Media: media, Params: par, TimeBase: sc.TimeBase}); err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&cfg.Width, "width", 0, "video width")
	f.IntVar(&cfg.Height, "height", 0, "video height")
	f.Float64Var(&cfg.Framerate, "framerate", 0, "video frame rate")
	f.IntVar(&cfg.SampleRate, "sample-rate", 0, "audio sample rate")
	f.IntVar(&cfg.NumberOfChannels, "channels", 0, "audio channels")
	return cmd
}
