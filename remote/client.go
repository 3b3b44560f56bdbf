package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/thesyncim/wcbridge"
)

// Client is a wcbridge.Engine whose calls are served by a remote Server.
// It is safe for concurrent use.
type Client struct {
	conn *websocket.Conn
	log  logrus.FieldLogger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan *Response
	err     error // set once the connection fails

	done chan struct{}
}

var _ wcbridge.Engine = (*Client)(nil)

// Dial connects to a Server at url ("ws://host:port/path").
func Dial(ctx context.Context, url string, log logrus.FieldLogger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial engine %s: %w", url, err)
	}
	return NewClient(conn, log), nil
}

// NewClient wraps an established connection and starts reading replies.
func NewClient(conn *websocket.Conn, log logrus.FieldLogger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Client{
		conn:    conn,
		log:     log.WithField("component", "engine-client"),
		pending: make(map[string]chan *Response),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		var resp Response
		if err := c.conn.ReadJSON(&resp); err != nil {
			c.fail(err)
			return
		}
		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()
		if !ok {
			c.log.WithField("id", resp.ID).Debug("reply for unknown request")
			continue
		}
		ch <- &resp
	}
}

// fail records the first connection error and releases every waiter.
func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = fmt.Errorf("%w: %v", ErrClosed, err)
	}
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

// Close closes the connection and fails outstanding calls.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Client) call(ctx context.Context, method string, params, result any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	req := Request{ID: uuid.NewString(), Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("encode %s params: %w", method, err)
		}
		req.Params = raw
	}

	ch := make(chan *Response, 1)
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return err
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(&req)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(req.ID)
		return fmt.Errorf("send %s: %w", method, err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			c.mu.Lock()
			defer c.mu.Unlock()
			return c.err
		}
		if resp.Error != nil {
			return fmt.Errorf("%s: %w", method, resp.Error)
		}
		if result == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
		return nil
	case <-ctx.Done():
		c.forget(req.ID)
		return ctx.Err()
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) CodecName(ctx context.Context, id wcbridge.CodecID) (string, error) {
	var name string
	err := c.call(ctx, MethodCodecName, codecNameParams{ID: id}, &name)
	return name, err
}

func (c *Client) CodecDescriptorByName(ctx context.Context, name string) (*wcbridge.CodecDescriptor, error) {
	var desc *wcbridge.CodecDescriptor
	if err := c.call(ctx, MethodCodecDescriptorByName, nameParams{Name: name}, &desc); err != nil {
		return nil, err
	}
	return desc, nil
}

func (c *Client) PixFmtDescriptor(ctx context.Context, format int) (*wcbridge.PixFmtDescriptor, error) {
	var desc *wcbridge.PixFmtDescriptor
	if err := c.call(ctx, MethodPixFmtDescriptor, formatParams{Format: format}, &desc); err != nil {
		return nil, err
	}
	return desc, nil
}

func (c *Client) AllocCodecParameters(ctx context.Context) (wcbridge.Handle, error) {
	var h wcbridge.Handle
	err := c.call(ctx, MethodAllocCodecParameters, nil, &h)
	return h, err
}

func (c *Client) ReadCodecParameters(ctx context.Context, h wcbridge.Handle) (wcbridge.CodecParameters, error) {
	var p wcbridge.CodecParameters
	err := c.call(ctx, MethodReadCodecParameters, handleParams{Handle: h}, &p)
	return p, err
}

func (c *Client) WriteCodecParameters(ctx context.Context, h wcbridge.Handle, p wcbridge.CodecParameters) error {
	return c.call(ctx, MethodWriteCodecParameters, writeParams{Handle: h, Params: p}, nil)
}

func (c *Client) Malloc(ctx context.Context, size int) (wcbridge.Addr, error) {
	var addr wcbridge.Addr
	err := c.call(ctx, MethodMalloc, mallocParams{Size: size}, &addr)
	return addr, err
}

func (c *Client) CopyIn(ctx context.Context, addr wcbridge.Addr, data []byte) error {
	return c.call(ctx, MethodCopyIn, copyInParams{Addr: addr, Data: data}, nil)
}

func (c *Client) CopyOut(ctx context.Context, addr wcbridge.Addr, size int) ([]byte, error) {
	var data []byte
	err := c.call(ctx, MethodCopyOut, copyOutParams{Addr: addr, Size: size}, &data)
	return data, err
}
