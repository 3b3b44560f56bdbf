//go:build !darwin && !linux

package wcbridge

import "context"

// LibavCatalog is unavailable on this platform.
type LibavCatalog struct{}

func NewLibavCatalog() (*LibavCatalog, error) {
	return nil, ErrLibavNotLoaded
}

func IsLibavAvailable() bool { return false }

func (c *LibavCatalog) Version() int { return 0 }

func (c *LibavCatalog) CodecName(context.Context, CodecID) (string, error) {
	return "", ErrLibavNotLoaded
}

func (c *LibavCatalog) CodecDescriptorByName(context.Context, string) (*CodecDescriptor, error) {
	return nil, ErrLibavNotLoaded
}

func (c *LibavCatalog) PixFmtDescriptor(context.Context, int) (*PixFmtDescriptor, error) {
	return nil, ErrLibavNotLoaded
}
