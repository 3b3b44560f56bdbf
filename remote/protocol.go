// Package remote carries the wcbridge Engine capability set over a
// websocket, so the engine can live in another process.
//
// Each request is a JSON text message with a unique id; the server answers
// with a message carrying the same id. Requests may be answered out of
// order.
package remote

import (
	"encoding/json"
	"errors"

	"github.com/thesyncim/wcbridge"
)

// Engine methods.
const (
	MethodCodecName             = "codec_name"
	MethodCodecDescriptorByName = "codec_descriptor_by_name"
	MethodPixFmtDescriptor      = "pix_fmt_descriptor"
	MethodAllocCodecParameters  = "alloc_codec_parameters"
	MethodReadCodecParameters   = "read_codec_parameters"
	MethodWriteCodecParameters  = "write_codec_parameters"
	MethodMalloc                = "malloc"
	MethodCopyIn                = "copy_in"
	MethodCopyOut               = "copy_out"
)

// ErrClosed is returned for requests on a closed client.
var ErrClosed = errors.New("remote engine connection closed")

// Request is one engine call.
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response answers the request with the same ID. Exactly one of Result and
// Error is set.
type Response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

// Error is an engine error on the wire. Code identifies the wcbridge
// sentinel it wraps, if any.
type Error struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

// Unwrap returns the sentinel named by Code so errors.Is works across the
// connection.
func (e *Error) Unwrap() error { return sentinels[e.Code] }

var sentinels = map[string]error{
	"unknown_handle":   wcbridge.ErrUnknownHandle,
	"invalid_address":  wcbridge.ErrInvalidAddress,
	"unknown_format":   wcbridge.ErrUnknownFormat,
	"libav_not_loaded": wcbridge.ErrLibavNotLoaded,
}

func wireError(err error) *Error {
	e := &Error{Message: err.Error()}
	for code, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			e.Code = code
			break
		}
	}
	return e
}

type codecNameParams struct {
	ID wcbridge.CodecID `json:"id"`
}

type nameParams struct {
	Name string `json:"name"`
}

type formatParams struct {
	Format int `json:"format"`
}

type handleParams struct {
	Handle wcbridge.Handle `json:"handle"`
}

type writeParams struct {
	Handle wcbridge.Handle          `json:"handle"`
	Params wcbridge.CodecParameters `json:"params"`
}

type mallocParams struct {
	Size int `json:"size"`
}

type copyInParams struct {
	Addr wcbridge.Addr `json:"addr"`
	Data []byte        `json:"data"`
}

type copyOutParams struct {
	Addr wcbridge.Addr `json:"addr"`
	Size int           `json:"size"`
}
