package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/thesyncim/wcbridge"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server serves an Engine to websocket clients. It implements http.Handler.
type Server struct {
	engine wcbridge.Engine
	log    logrus.FieldLogger
}

// NewServer creates a server for e. A nil logger uses logrus' standard
// logger.
func NewServer(e wcbridge.Engine, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{engine: e, log: log.WithField("component", "engine-server")}
}

// ServeHTTP upgrades the connection and answers requests until the client
// goes away. Requests are handled concurrently.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := s.log.WithField("remote", r.RemoteAddr)
	log.Debug("engine client connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var (
		writeMu sync.Mutex
		wg      sync.WaitGroup
	)
	defer wg.Wait()

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("engine client read failed")
			}
			return
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := s.handle(ctx, &req)

			writeMu.Lock()
			defer writeMu.Unlock()
			if err := conn.WriteJSON(resp); err != nil {
				log.WithError(err).WithField("id", req.ID).Debug("engine reply not delivered")
			}
		}()
	}
}

func (s *Server) handle(ctx context.Context, req *Request) *Response {
	result, err := s.dispatch(ctx, req)
	resp := &Response{ID: req.ID}
	if err != nil {
		s.log.WithFields(logrus.Fields{"method": req.Method, "id": req.ID}).WithError(err).Debug("engine request failed")
		resp.Error = wireError(err)
		return resp
	}
	raw, err := json.Marshal(result)
	if err != nil {
		resp.Error = wireError(fmt.Errorf("encode %s result: %w", req.Method, err))
		return resp
	}
	resp.Result = raw
	return resp
}

func decodeParams[T any](req *Request) (T, error) {
	var p T
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return p, fmt.Errorf("decode %s params: %w", req.Method, err)
	}
	return p, nil
}

func (s *Server) dispatch(ctx context.Context, req *Request) (any, error) {
	switch req.Method {
	case MethodCodecName:
		p, err := decodeParams[codecNameParams](req)
		if err != nil {
			return nil, err
		}
		return s.engine.CodecName(ctx, p.ID)

	case MethodCodecDescriptorByName:
		p, err := decodeParams[nameParams](req)
		if err != nil {
			return nil, err
		}
		return s.engine.CodecDescriptorByName(ctx, p.Name)

	case MethodPixFmtDescriptor:
		p, err := decodeParams[formatParams](req)
		if err != nil {
			return nil, err
		}
		return s.engine.PixFmtDescriptor(ctx, p.Format)

	case MethodAllocCodecParameters:
		return s.engine.AllocCodecParameters(ctx)

	case MethodReadCodecParameters:
		p, err := decodeParams[handleParams](req)
		if err != nil {
			return nil, err
		}
		return s.engine.ReadCodecParameters(ctx, p.Handle)

	case MethodWriteCodecParameters:
		p, err := decodeParams[writeParams](req)
		if err != nil {
			return nil, err
		}
		return struct{}{}, s.engine.WriteCodecParameters(ctx, p.Handle, p.Params)

	case MethodMalloc:
		p, err := decodeParams[mallocParams](req)
		if err != nil {
			return nil, err
		}
		return s.engine.Malloc(ctx, p.Size)

	case MethodCopyIn:
		p, err := decodeParams[copyInParams](req)
		if err != nil {
			return nil, err
		}
		return struct{}{}, s.engine.CopyIn(ctx, p.Addr, p.Data)

	case MethodCopyOut:
		p, err := decodeParams[copyOutParams](req)
		if err != nil {
			return nil, err
		}
		return s.engine.CopyOut(ctx, p.Addr, p.Size)

	default:
		return nil, fmt.Errorf("unknown method %q", req.Method)
	}
}
