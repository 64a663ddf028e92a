package mkbootimg

import (
	"bytes"
	"errors"
	"io"

	gzip "github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Compression types/modes
const (
	CompGzip = iota
	CompLz4
	CompLzo
	CompXz
	CompBzip2
	CompLzma
	CompUnknown
)

var compNames = map[int]string{
	CompGzip:  "gzip",
	CompLz4:   "lz4",
	CompLzo:   "lzo",
	CompXz:    "xz",
	CompBzip2: "bzip2",
	CompLzma:  "lzma",
}

// CompName returns the name of a compression mode.
func CompName(cMode int) string {
	if name, ok := compNames[cMode]; ok {
		return name
	}

	return "raw"
}

// ParseCompressor maps a compressor name to its mode. Only modes this package
// can write are accepted.
func ParseCompressor(name string) (int, error) {
	switch name {
	case "gzip":
		return CompGzip, nil
	case "lz4":
		return CompLz4, nil
	case "xz":
		return CompXz, nil
	default:
		return CompUnknown, configErr("ramdisk compression", "unsupported format %q", name)
	}
}

// CompressRamdisk compresses the input ramdisk in a certain mode.
func CompressRamdisk(ramdisk []byte, cMode int) ([]byte, error) {
	var buf bytes.Buffer
	var writer io.WriteCloser
	var err error

	switch cMode {
	case CompGzip:
		writer, err = gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return nil, eMsg(err, "preparing to compress ramdisk")
		}
	case CompLz4:
		lw := lz4.NewWriter(&buf)
		err = lw.Apply(lz4.CompressionLevelOption(lz4.Level9))
		if err != nil {
			return nil, eMsg(err, "preparing to compress ramdisk")
		}
		writer = lw
	case CompXz:
		writer, err = xz.NewWriter(&buf)
		if err != nil {
			return nil, eMsg(err, "preparing to compress ramdisk")
		}
	default:
		return nil, eMsg(errors.New("Ramdisk compression format is not supported"), "preparing to compress ramdisk")
	}

	_, err = writer.Write(ramdisk)
	if err != nil {
		return nil, eMsg(err, "compressing ramdisk")
	}

	switch cMode {
	case CompGzip:
		err = writer.(*gzip.Writer).Flush()
	}

	if err != nil {
		return nil, eMsg(err, "finishing up ramdisk compression")
	}

	err = writer.Close()
	if err != nil {
		return nil, eMsg(err, "cleaning up ramdisk compression")
	}

	return buf.Bytes(), nil
}

// DetectCompressor detects the compressor used for the input ramdisk.
func DetectCompressor(compr []byte) int {
	switch {
	case bytes.HasPrefix(compr, []byte("BZh")):
		return CompBzip2
	case bytes.HasPrefix(compr, []byte("\x1f\x8b")), bytes.HasPrefix(compr, []byte("\x1f\x9e")):
		return CompGzip
	case bytes.HasPrefix(compr, []byte("\x04\x22\x4d\x18")):
		return CompLz4
	case bytes.HasPrefix(compr, []byte("\x89LZO")):
		return CompLzo
	case bytes.HasPrefix(compr, []byte("\x5d\x00\x00")):
		return CompLzma
	case bytes.HasPrefix(compr, []byte("\xfd7zXZ")):
		return CompXz
	default:
		return CompUnknown
	}
}

// ExtractRamdisk decompresses the provided ramdisk.
func ExtractRamdisk(compr []byte, cMode int) (ramdisk []byte, err error) {
	var reader io.Reader

	switch cMode {
	case CompGzip:
		gReader, err := gzip.NewReader(bytes.NewReader(compr))
		if err != nil {
			return nil, eMsg(err, "preparing to extract ramdisk")
		}
		defer gReader.Close()
		reader = gReader
	case CompLz4:
		reader = lz4.NewReader(bytes.NewReader(compr))
	case CompXz:
		xReader, err := xz.NewReader(bytes.NewReader(compr))
		if err != nil {
			return nil, eMsg(err, "preparing to extract ramdisk")
		}
		reader = xReader
	default:
		return nil, eMsg(errors.New(CompName(cMode)+" is not supported"), "preparing to extract ramdisk")
	}

	ramdisk, err = io.ReadAll(reader)
	if err != nil {
		return nil, eMsg(err, "extracting ramdisk")
	}

	return
}

// CompressRamdisk compresses the Image's ramdisk.
func (img *Image) CompressRamdisk(cMode int) (err error) {
	rd, err := CompressRamdisk(img.Ramdisk, cMode)
	if err != nil {
		return
	}

	img.Ramdisk = rd
	return
}
