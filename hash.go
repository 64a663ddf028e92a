package mkbootimg

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"math"

	"github.com/cespare/xxhash"
)

// ID hash algorithms
const (
	HashSHA1   = "sha1"
	HashSHA256 = "sha256"
	HashXXH64  = "xxhash"
)

// NewIDHash returns a fresh hash for the named ID algorithm. An empty name
// selects SHA-1, the algorithm stock bootloaders and tools expect.
func NewIDHash(name string) (hash.Hash, error) {
	switch name {
	case "", HashSHA1:
		return sha1.New(), nil
	case HashSHA256:
		return sha256.New(), nil
	case HashXXH64:
		return xxhash.New(), nil
	default:
		return nil, configErr("id hash", "unknown algorithm %q", name)
	}
}

// logicalSizes returns the section sizes without any MTK block.
func (img *Image) logicalSizes() (sizes sectionSizes, err error) {
	size := func(name string, data []byte) (uint32, error) {
		if uint64(len(data)) > math.MaxUint32 {
			return 0, configErr(name, "section too large (%d bytes)", len(data))
		}
		return uint32(len(data)), nil
	}

	if sizes.kernel, err = size("kernel", img.Kernel); err != nil {
		return
	}
	if sizes.ramdisk, err = size("ramdisk", img.Ramdisk); err != nil {
		return
	}
	if sizes.second, err = size("second", img.Second); err != nil {
		return
	}
	sizes.dt, err = size("dt", img.DeviceTree)
	return
}

// checksum feeds the sections and their sizes into h. Absent second stage
// data still contributes its (zero) size; the device tree is only included
// when present.
func (img *Image) checksum(h hash.Hash, sizes sectionSizes) []byte {
	var le [4]byte
	writeSize := func(size uint32) {
		binary.LittleEndian.PutUint32(le[:], size)
		h.Write(le[:])
	}

	h.Write(img.Kernel)
	writeSize(sizes.kernel)
	h.Write(img.Ramdisk)
	writeSize(sizes.ramdisk)
	h.Write(img.Second)
	writeSize(sizes.second)
	if img.DeviceTree != nil {
		h.Write(img.DeviceTree)
		writeSize(sizes.dt)
	}

	return h.Sum(nil)
}

// ID computes the header ID over the logical section contents and sizes.
// Digests longer than the ID field are truncated; shorter ones are
// zero-padded.
func (img *Image) ID() (id [BootIDSize]byte, err error) {
	h, err := NewIDHash(img.IDHash)
	if err != nil {
		return
	}

	sizes, err := img.logicalSizes()
	if err != nil {
		return
	}

	copy(id[:], img.checksum(h, sizes))
	return
}
