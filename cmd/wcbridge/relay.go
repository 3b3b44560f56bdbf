package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thesyncim/wcbridge/internal/relay"
)

func newRelayCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Accept RTMP publishes and relay them to WebM files and/or RTP",
		Long: `Accepts H.264/AAC RTMP publishes, bridges them into encoded chunks and
writes them to a WebM file (--webm, "{stream}" is replaced by the stream
name) and/or sends them as RTP over UDP (--rtp host:port).

  ffmpeg -re -i in.mp4 -c:v libx264 -c:a aac -f flv rtmp://localhost:1935/live/test`,
		RunE: func(cmd *cobra.Command, args []string) error {
			webmPath := a.v.GetString("relay.webm")
			rtpAddr := a.v.GetString("relay.rtp")
			if webmPath == "" && rtpAddr == "" {
				return fmt.Errorf("nothing to relay to: set --webm and/or --rtp")
			}
			e, err := a.engine()
			if err != nil {
				return err
			}

			ssrc := uint32(a.v.GetUint("relay.ssrc"))
			if ssrc == 0 {
				ssrc = rand.Uint32()
			}
			mtu := a.v.GetInt("relay.mtu")
			tracks := []relay.Track{relay.TrackVideo}
			if !a.v.GetBool("relay.no-audio") {
				tracks = append(tracks, relay.TrackAudio)
			}

			newSinks := func(stream string) ([]relay.Sink, error) {
				var sinks []relay.Sink
				log := a.log.WithField("stream", stream)
				if webmPath != "" {
					path := strings.ReplaceAll(webmPath, "{stream}", sanitize(stream))
					sinks = append(sinks, relay.NewWebMSink(func() (io.WriteCloser, error) {
						log.WithField("path", path).Info("writing webm")
						return os.Create(path)
					}, log, tracks...))
				}
				if rtpAddr != "" {
					conn, err := net.Dial("udp", rtpAddr)
					if err != nil {
						return nil, fmt.Errorf("rtp destination: %w", err)
					}
					sinks = append(sinks, relay.NewRTPSink(conn, ssrc, mtu, log))
				}
				return sinks, nil
			}

			listen := a.v.GetString("relay.listen")
			ln, err := net.Listen("tcp", listen)
			if err != nil {
				return err
			}
			a.log.WithField("addr", ln.Addr().String()).Info("rtmp relay listening")
			err = relay.NewServer(cmd.Context(), e, newSinks, a.log).Serve(ln)
			if cmd.Context().Err() != nil {
				return nil
			}
			return err
		},
	}
	f := cmd.Flags()
	f.String("listen", ":1935", "RTMP listen address")
	f.String("webm", "", `WebM output path, "{stream}" expands to the stream name`)
	f.String("rtp", "", "RTP destination host:port (UDP)")
	f.Uint32("ssrc", 0, "RTP SSRC of the video track, audio uses ssrc+1 (0 = random)")
	f.Int("mtu", 1200, "RTP packet size")
	f.Bool("no-audio", false, "relay video only")
	for _, name := range []string{"listen", "webm", "rtp", "ssrc", "mtu", "no-audio"} {
		mustBind(a.v, "relay."+name, f.Lookup(name))
	}
	return cmd
}

// sanitize keeps stream names usable as file name parts.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, name)
}
