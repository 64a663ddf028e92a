package mkbootimg

import (
	"errors"
	"math"
	"os"

	"github.com/edsrzf/mmap-go"
)

// Blob is a read-only view of a whole input file.
type Blob struct {
	Path string
	Data []byte

	m mmap.MMap
}

// Close releases the mapping. Data must not be used afterwards.
func (b *Blob) Close() error {
	if b == nil || b.m == nil {
		return nil
	}

	m := b.m
	b.m = nil
	b.Data = nil
	return m.Unmap()
}

// LoadFile maps the file at path into memory. Empty files yield an empty,
// non-nil Data slice.
func LoadFile(path string) (*Blob, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, eMsg(err, "opening file")
	}
	defer file.Close()

	st, err := file.Stat()
	if err != nil {
		return nil, eMsg(err, "sizing file")
	}

	if !st.Mode().IsRegular() {
		return nil, errors.New("not a regular file")
	}

	if st.Size() > math.MaxUint32 {
		return nil, errors.New("file too large for a boot image section")
	}

	if st.Size() == 0 {
		return &Blob{Path: path, Data: []byte{}}, nil
	}

	m, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, eMsg(err, "mapping file")
	}

	if int64(len(m)) != st.Size() {
		m.Unmap()
		return nil, errors.New("short read")
	}

	return &Blob{Path: path, Data: m, m: m}, nil
}

// loadSection loads one named input, wrapping failures in a *LoadError.
func loadSection(section, path string) (*Blob, error) {
	b, err := LoadFile(path)
	if err != nil {
		return nil, &LoadError{Section: section, Path: path, Err: err}
	}

	return b, nil
}
