package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thesyncim/wcbridge"
)

func newCodecStringCommand(a *app) *cobra.Command {
	var (
		profile, level int
		pixFmt         int
		record         string
	)
	cmd := &cobra.Command{
		Use:   "codec-string <av1|h264|hevc|vp8|vp9>",
		Short: "Build a platform codec string from engine codec parameters",
		Example: `  wcbridge codec-string av1 --profile 0 --level 1
  wcbridge codec-string h264 --profile 578 --level 30
  wcbridge codec-string hevc --record 01016000...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.engine()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var codec string
			switch args[0] {
			case "av1", "vp9":
				pix, err := e.PixFmtDescriptor(ctx, pixFmt)
				if err != nil {
					return err
				}
				if args[0] == "av1" {
					codec = wcbridge.AV1CodecString(profile, level, pix)
				} else {
					codec = wcbridge.VP9CodecString(profile, level, pix)
				}
			case "h264":
				var ok bool
				if record != "" {
					rec, err := hex.DecodeString(record)
					if err != nil {
						return fmt.Errorf("--record: %w", err)
					}
					codec, ok = wcbridge.H264CodecStringFromSPS(rec)
				}
				if !ok {
					codec, ok = wcbridge.H264CodecString(profile, level)
				}
				if !ok {
					return fmt.Errorf("no codec string for h264 profile %d", profile)
				}
			case "hevc":
				var ok bool
				if record != "" {
					rec, err := hex.DecodeString(record)
					if err != nil {
						return fmt.Errorf("--record: %w", err)
					}
					codec, ok = wcbridge.HEVCCodecStringFromRecord(rec)
				}
				if !ok {
					codec = wcbridge.HEVCCodecString(profile, level)
				}
			case "vp8":
				codec = "vp8"
			default:
				return fmt.Errorf("unknown codec %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), codec)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&profile, "profile", wcbridge.ProfileUnknown, "engine profile")
	f.IntVar(&level, "level", wcbridge.ProfileUnknown, "engine level")
	f.IntVar(&pixFmt, "pix-fmt", wcbridge.PixFmtYUV420P, "engine pixel format (av1, vp9)")
	f.StringVar(&record, "record", "", "hex extradata: Annex-B SPS (h264) or hvcC record (hevc)")
	return cmd
}
