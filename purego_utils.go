//go:build darwin || linux

// Shared helpers for the purego-loaded libav libraries.

package wcbridge

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"unsafe"
)

// goStringFromPtr converts a C string pointer to a Go string.
func goStringFromPtr(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	p := unsafe.Pointer(ptr)
	var length int
	for {
		if *(*byte)(unsafe.Add(p, length)) == 0 {
			break
		}
		length++
		if length > 1024 { // Safety limit
			break
		}
	}
	if length == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(p), length))
}

// readU8 and readI32 read struct fields at a byte offset from a C pointer.
func readU8(base uintptr, off uintptr) int {
	return int(*(*uint8)(unsafe.Add(unsafe.Pointer(base), off)))
}

func readI32(base uintptr, off uintptr) int {
	return int(*(*int32)(unsafe.Add(unsafe.Pointer(base), off)))
}

func readPtr(base uintptr, off uintptr) uintptr {
	return *(*uintptr)(unsafe.Add(unsafe.Pointer(base), off))
}

// findModuleRoot walks up the directory tree from the current working directory
// to find the module root (directory containing go.mod).
func findModuleRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// libavLibPaths returns candidate paths for a libav library such as
// "avcodec". versions lists the sonames to try, newest first.
func libavLibPaths(name, envVar string, versions []int) []string {
	var names []string
	for _, v := range versions {
		if runtime.GOOS == "darwin" {
			names = append(names, "lib"+name+"."+strconv.Itoa(v)+".dylib")
		} else {
			names = append(names, "lib"+name+".so."+strconv.Itoa(v))
		}
	}
	if runtime.GOOS == "darwin" {
		names = append(names, "lib"+name+".dylib")
	} else {
		names = append(names, "lib"+name+".so")
	}

	var paths []string

	// Environment variable overrides
	if envPath := os.Getenv(envVar); envPath != "" {
		paths = append(paths, envPath)
	}
	if envDir := os.Getenv("WCBRIDGE_LIBAV_DIR"); envDir != "" {
		for _, n := range names {
			paths = append(paths, filepath.Join(envDir, n))
		}
	}

	// Try to find based on executable location
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		for _, n := range names {
			paths = append(paths,
				filepath.Join(exeDir, n),
				filepath.Join(exeDir, "..", "lib", n),
			)
		}
	}

	if root := findModuleRoot(); root != "" {
		for _, n := range names {
			paths = append(paths, filepath.Join(root, "build", "ffi", n))
		}
	}

	// System paths
	for _, n := range names {
		switch runtime.GOOS {
		case "darwin":
			paths = append(paths,
				n,
				"/usr/local/lib/"+n,
				"/opt/homebrew/lib/"+n,
			)
		case "linux":
			paths = append(paths,
				n,
				"/usr/local/lib/"+n,
				"/usr/lib/"+n,
				"/usr/lib/x86_64-linux-gnu/"+n,
				"/usr/lib/aarch64-linux-gnu/"+n,
			)
		}
	}
	return paths
}
