package relay

import (
	"bytes"
	"context"
	"io"
	"net"

	"github.com/sirupsen/logrus"
	"github.com/thesyncim/wcbridge"
	"github.com/yutopp/go-rtmp"
	rtmpmsg "github.com/yutopp/go-rtmp/message"
)

// SinkFactory returns the sinks for a new publish of streamName.
type SinkFactory func(streamName string) ([]Sink, error)

// Server accepts RTMP publishers and relays each publish session.
type Server struct {
	ctx      context.Context
	engine   wcbridge.Engine
	newSinks SinkFactory
	log      logrus.FieldLogger
}

// NewServer creates an RTMP relay server. Every session registers its
// streams in engine. ctx bounds engine calls made by sessions.
func NewServer(ctx context.Context, engine wcbridge.Engine, newSinks SinkFactory, log logrus.FieldLogger) *Server {
	return &Server{ctx: ctx, engine: engine, newSinks: newSinks, log: log}
}

// Serve accepts connections on ln until it fails or ctx is done.
func (s *Server) Serve(ln net.Listener) error {
	srv := rtmp.NewServer(&rtmp.ServerConfig{
		OnConnect: func(conn net.Conn) (io.ReadWriteCloser, *rtmp.ConnConfig) {
			log := s.log.WithField("remote", conn.RemoteAddr().String())
			return conn, &rtmp.ConnConfig{
				Handler: &handler{server: s, log: log},
				ControlState: rtmp.StreamControlStateConfig{
					DefaultBandwidthWindowSize: 6 * 1024 * 1024,
				},
				Logger: log,
			}
		},
	})
	go func() {
		<-s.ctx.Done()
		srv.Close()
	}()
	return srv.Serve(ln)
}

type handler struct {
	rtmp.DefaultHandler
	server *Server
	log    logrus.FieldLogger
	relay  *Relay
}

func (h *handler) OnPublish(_ *rtmp.StreamContext, _ uint32, cmd *rtmpmsg.NetStreamPublish) error {
	h.log.WithField("stream", cmd.PublishingName).Info("rtmp publish")
	sinks, err := h.server.newSinks(cmd.PublishingName)
	if err != nil {
		return err
	}
	if h.relay != nil {
		h.relay.Close()
	}
	h.relay = New(h.server.engine, h.log.WithField("stream", cmd.PublishingName), sinks...)
	return nil
}

func (h *handler) OnVideo(timestamp uint32, payload io.Reader) error {
	if h.relay == nil {
		return nil
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, payload); err != nil {
		return err
	}
	if err := h.relay.VideoTag(h.server.ctx, timestamp, buf.Bytes()); err != nil {
		h.log.WithError(err).Warn("video tag dropped")
	}
	return nil
}

func (h *handler) OnAudio(timestamp uint32, payload io.Reader) error {
	if h.relay == nil {
		return nil
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, payload); err != nil {
		return err
	}
	if err := h.relay.AudioTag(h.server.ctx, timestamp, buf.Bytes()); err != nil {
		h.log.WithError(err).Warn("audio tag dropped")
	}
	return nil
}

func (h *handler) OnClose() {
	h.log.Info("rtmp disconnected")
	if h.relay != nil {
		if err := h.relay.Close(); err != nil {
			h.log.WithError(err).Warn("closing relay sinks")
		}
		h.relay = nil
	}
}
