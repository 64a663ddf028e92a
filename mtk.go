package mkbootimg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// MTK header-prefix block layout
const (
	MtkMagic     = "\x88\x16\x88\x58"
	MtkBlockSize = 512
	mtkNameEnd   = 40
)

// MTK block kinds
const (
	MtkKindKernel   = "kernel"
	MtkKindRootfs   = "rootfs"
	MtkKindRecovery = "recovery"
)

var mtkTags = map[string]string{
	MtkKindKernel:   "KERNEL",
	MtkKindRootfs:   "ROOTFS",
	MtkKindRecovery: "RECOVERY",
}

// MtkMode selects whether and how MTK blocks prefix the kernel and ramdisk.
type MtkMode int

// MTK modes
const (
	MtkNone MtkMode = iota
	MtkBoot
	MtkRecovery
)

// ParseMtkMode parses the --mtk selector. An empty string disables the
// extension.
func ParseMtkMode(s string) (MtkMode, error) {
	switch s {
	case "":
		return MtkNone, nil
	case "boot":
		return MtkBoot, nil
	case "recovery":
		return MtkRecovery, nil
	default:
		return MtkNone, configErr("mtk", "ramdisk type must be boot or recovery, got %q", s)
	}
}

func (m MtkMode) String() string {
	switch m {
	case MtkBoot:
		return "boot"
	case MtkRecovery:
		return "recovery"
	default:
		return "none"
	}
}

// Enabled reports whether MTK blocks are written.
func (m MtkMode) Enabled() bool {
	return m == MtkBoot || m == MtkRecovery
}

// ramdiskKind returns the block kind placed ahead of the ramdisk.
func (m MtkMode) ramdiskKind() string {
	if m == MtkRecovery {
		return MtkKindRecovery
	}

	return MtkKindRootfs
}

// mtkSize encodes a payload size the way MediaTek's tooling does: the size is
// printed as eight hex digits, scanned back into a 32-bit integer and stored
// in native (little-endian) byte order.
func mtkSize(size uint32) ([4]byte, error) {
	var out [4]byte

	hex := fmt.Sprintf("%08x", size)
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return out, err
	}

	binary.LittleEndian.PutUint32(out[:], uint32(v))
	return out, nil
}

// NewMtkBlock builds the 512-byte MTK block announcing a payload of the given
// kind and size.
func NewMtkBlock(kind string, size uint32) ([]byte, error) {
	tag, ok := mtkTags[kind]
	if !ok {
		return nil, &VendorBlockError{Kind: kind, Err: errors.New("unknown block kind")}
	}

	sz, err := mtkSize(size)
	if err != nil {
		return nil, &VendorBlockError{Kind: kind, Err: err}
	}

	block := make([]byte, MtkBlockSize)
	copy(block, MtkMagic)
	copy(block[4:8], sz[:])
	copy(block[8:mtkNameEnd], tag)
	for i := mtkNameEnd; i < MtkBlockSize; i++ {
		block[i] = 0xff
	}

	return block, nil
}

// MtkBlock is a decoded MTK header block.
type MtkBlock struct {
	Size uint32
	Tag  string
}

// Kind maps the block tag back to its block kind, or "" when the tag is not
// one this package writes.
func (b *MtkBlock) Kind() string {
	for kind, tag := range mtkTags {
		if tag == b.Tag {
			return kind
		}
	}

	return ""
}

// ParseMtkBlock decodes an MTK block. It returns nil when data does not start
// with the MTK magic.
func ParseMtkBlock(data []byte) *MtkBlock {
	if len(data) < MtkBlockSize || !bytes.HasPrefix(data, []byte(MtkMagic)) {
		return nil
	}

	return &MtkBlock{
		Size: binary.LittleEndian.Uint32(data[4:8]),
		Tag:  cString(data[8:mtkNameEnd]),
	}
}

// mtkBlocks builds the kernel and ramdisk blocks for the image's MTK mode.
// Both are nil when the extension is disabled.
func (img *Image) mtkBlocks(sizes sectionSizes) (kernel, ramdisk []byte, err error) {
	if !img.Mtk.Enabled() {
		return nil, nil, nil
	}

	if sizes.kernel > math.MaxUint32-MtkBlockSize {
		return nil, nil, &VendorBlockError{Kind: MtkKindKernel, Err: errors.New("payload too large")}
	}
	if sizes.ramdisk > math.MaxUint32-MtkBlockSize {
		return nil, nil, &VendorBlockError{Kind: img.Mtk.ramdiskKind(), Err: errors.New("payload too large")}
	}

	kernel, err = NewMtkBlock(MtkKindKernel, sizes.kernel)
	if err != nil {
		return nil, nil, err
	}

	ramdisk, err = NewMtkBlock(img.Mtk.ramdiskKind(), sizes.ramdisk)
	if err != nil {
		return nil, nil, err
	}

	return kernel, ramdisk, nil
}

// diskSizes returns the section sizes as stored on disk, including MTK
// blocks.
func (img *Image) diskSizes(logical sectionSizes) sectionSizes {
	disk := logical
	if img.Mtk.Enabled() {
		disk.kernel += MtkBlockSize
		disk.ramdisk += MtkBlockSize
	}

	return disk
}
