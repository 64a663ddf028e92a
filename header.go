package mkbootimg

import (
	"bytes"
	"encoding/binary"
)

// sectionSizes holds one size per section, in the order they are written.
type sectionSizes struct {
	kernel  uint32
	ramdisk uint32
	second  uint32
	dt      uint32
}

// ValidPageSize reports whether size is a supported flash page size.
func ValidPageSize(size uint32) bool {
	for _, ps := range PageSizes {
		if size == ps {
			return true
		}
	}

	return false
}

// checkMetadata validates the parts of the Image that end up in the header
// verbatim.
func (img *Image) checkMetadata() error {
	if !ValidPageSize(img.PageSize) {
		return configErr("page size", "unsupported page size %d", img.PageSize)
	}

	if len(img.Board) >= BootNameSize {
		return configErr("board", "board name too large (%d bytes, max %d)", len(img.Board), BootNameSize-1)
	}

	if len(img.Cmdline) > MaxCmdlineSize {
		return configErr("cmdline", "kernel commandline too large (%d bytes, max %d)", len(img.Cmdline), MaxCmdlineSize)
	}

	return nil
}

// splitCmdline splits a command line into the primary and supplemental header
// fields. The primary field always keeps a trailing NUL.
func splitCmdline(cmdline string) (primary [BootArgsSize]byte, extra [BootExtraArgsSize]byte) {
	n := copy(primary[:BootArgsSize-1], cmdline)
	if n < len(cmdline) {
		copy(extra[:], cmdline[n:])
	}

	return
}

// header builds the raw header for the given section sizes. The ID is left
// zeroed.
func (img *Image) header(sizes sectionSizes) (*RawImage, error) {
	if err := img.checkMetadata(); err != nil {
		return nil, err
	}

	hdr := &RawImage{
		KernelSize: sizes.kernel,
		KernelAddr: img.Base + img.KernelOffset,

		RamdiskSize: sizes.ramdisk,
		RamdiskAddr: img.Base + img.RamdiskOffset,

		SecondSize: sizes.second,
		SecondAddr: img.Base + img.SecondOffset,

		TagsAddr: img.Base + img.TagsOffset,
		PageSize: img.PageSize,
		DtSize:   sizes.dt,
	}

	copy(hdr.Magic[:], BootMagic)
	copy(hdr.Board[:], img.Board)
	hdr.Cmdline, hdr.ExtraCmdline = splitCmdline(img.Cmdline)

	return hdr, nil
}

// Header returns the header as it is written to disk: sizes include any MTK
// block and the ID is computed over the logical sections.
func (img *Image) Header() (*RawImage, error) {
	p, err := img.plan()
	if err != nil {
		return nil, err
	}

	return p.hdr, nil
}

// MarshalBinary encodes the header in its little-endian on-disk form.
func (hdr *RawImage) MarshalBinary() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize))
	if err := binary.Write(buf, binary.LittleEndian, hdr); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a header from its on-disk form.
func (hdr *RawImage) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return &FormatError{Message: "header truncated"}
	}

	return binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, hdr)
}

// BoardName returns the board name without NUL padding.
func (hdr *RawImage) BoardName() string {
	return cString(hdr.Board[:])
}

// FullCmdline returns the command line, joined with its supplemental part.
func (hdr *RawImage) FullCmdline() string {
	return cString(hdr.Cmdline[:]) + cString(hdr.ExtraCmdline[:])
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}

	return string(b)
}
