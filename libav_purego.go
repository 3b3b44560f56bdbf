//go:build darwin || linux

// LibavCatalog answers catalog queries from the system's FFmpeg libraries,
// loaded at runtime with purego.
//
// Library locations checked (in order):
//   - WCBRIDGE_AVCODEC_PATH / WCBRIDGE_AVUTIL_PATH environment variables
//   - WCBRIDGE_LIBAV_DIR environment variable
//   - next to the executable, and build/ffi under the module root
//   - System library paths

package wcbridge

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
)

var (
	libavOnce    sync.Once
	libavInitErr error

	avcodecHandle uintptr
	avutilHandle  uintptr
)

// libav function pointers
var (
	avcodecVersion             func() uint32
	avcodecGetName             func(id int32) uintptr
	avcodecDescriptorGetByName func(name string) uintptr
	avPixFmtDescGet            func(format int32) uintptr
	avutilVersion              func() uint32
)

// Struct offsets for libavutil >= 57 / libavcodec >= 59 on 64-bit targets.
const (
	avCodecDescriptorIDOff   = 0
	avCodecDescriptorTypeOff = 4
	avCodecDescriptorNameOff = 8

	avPixFmtDescNameOff         = 0
	avPixFmtDescNbComponentsOff = 8
	avPixFmtDescLog2ChromaWOff  = 9
	avPixFmtDescLog2ChromaHOff  = 10
	avPixFmtDescCompOff         = 24
	avComponentDescSize         = 20
	avComponentDescDepthOff     = 16
)

func loadLibav() error {
	libavOnce.Do(func() {
		libavInitErr = loadLibavLibs()
	})
	return libavInitErr
}

func loadLibavLibs() error {
	var err error
	avutilHandle, err = dlopenFirst(libavLibPaths("avutil", "WCBRIDGE_AVUTIL_PATH", []int{60, 59, 58, 57}))
	if err != nil {
		return fmt.Errorf("%w: avutil: %v", ErrLibavNotLoaded, err)
	}
	avcodecHandle, err = dlopenFirst(libavLibPaths("avcodec", "WCBRIDGE_AVCODEC_PATH", []int{62, 61, 60, 59}))
	if err != nil {
		return fmt.Errorf("%w: avcodec: %v", ErrLibavNotLoaded, err)
	}

	purego.RegisterLibFunc(&avutilVersion, avutilHandle, "avutil_version")
	purego.RegisterLibFunc(&avPixFmtDescGet, avutilHandle, "av_pix_fmt_desc_get")
	purego.RegisterLibFunc(&avcodecVersion, avcodecHandle, "avcodec_version")
	purego.RegisterLibFunc(&avcodecGetName, avcodecHandle, "avcodec_get_name")
	purego.RegisterLibFunc(&avcodecDescriptorGetByName, avcodecHandle, "avcodec_descriptor_get_by_name")

	if major := int(avutilVersion() >> 16); major < 57 {
		return fmt.Errorf("%w: libavutil %d is too old", ErrLibavNotLoaded, major)
	}
	return nil
}

func dlopenFirst(paths []string) (uintptr, error) {
	var lastErr error
	for _, path := range paths {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			return handle, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("not found in any standard location")
	}
	return 0, lastErr
}

// LibavCatalog is a Catalog backed by the native libavcodec and libavutil.
type LibavCatalog struct{}

var _ Catalog = (*LibavCatalog)(nil)

// NewLibavCatalog loads the libav libraries. It returns ErrLibavNotLoaded
// (wrapped) when they cannot be found.
func NewLibavCatalog() (*LibavCatalog, error) {
	if err := loadLibav(); err != nil {
		return nil, err
	}
	return &LibavCatalog{}, nil
}

// IsLibavAvailable reports whether the libav libraries can be loaded.
func IsLibavAvailable() bool {
	return loadLibav() == nil
}

// Version returns the major version of the loaded libavcodec.
func (c *LibavCatalog) Version() int {
	return int(avcodecVersion() >> 16)
}

func (c *LibavCatalog) CodecName(ctx context.Context, id CodecID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return goStringFromPtr(avcodecGetName(int32(id))), nil
}

func (c *LibavCatalog) CodecDescriptorByName(ctx context.Context, name string) (*CodecDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d := avcodecDescriptorGetByName(name)
	runtime.KeepAlive(name)
	if d == 0 {
		return nil, nil
	}
	return &CodecDescriptor{
		ID:   CodecID(readI32(d, avCodecDescriptorIDOff)),
		Type: MediaType(readI32(d, avCodecDescriptorTypeOff)),
		Name: goStringFromPtr(readPtr(d, avCodecDescriptorNameOff)),
	}, nil
}

func (c *LibavCatalog) PixFmtDescriptor(ctx context.Context, format int) (*PixFmtDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d := avPixFmtDescGet(int32(format))
	if d == 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
	desc := &PixFmtDescriptor{
		Name:         goStringFromPtr(readPtr(d, avPixFmtDescNameOff)),
		NbComponents: readU8(d, avPixFmtDescNbComponentsOff),
		Log2ChromaW:  readU8(d, avPixFmtDescLog2ChromaWOff),
		Log2ChromaH:  readU8(d, avPixFmtDescLog2ChromaHOff),
	}
	for i := 0; i < desc.NbComponents && i < len(desc.Depth); i++ {
		off := uintptr(avPixFmtDescCompOff + i*avComponentDescSize + avComponentDescDepthOff)
		desc.Depth[i] = readI32(d, off)
	}
	return desc, nil
}
