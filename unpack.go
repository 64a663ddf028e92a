package mkbootimg

import (
	"bytes"
	"fmt"
	"io"
)

// Unpacked is a boot image read back from disk.
type Unpacked struct {
	Header RawImage

	// Logical section sizes, without MTK blocks.
	KernelSize  uint32
	RamdiskSize uint32

	// MTK blocks found ahead of the kernel and ramdisk, if any.
	KernelMtk  *MtkBlock
	RamdiskMtk *MtkBlock

	Image *Image
}

// skipPadding skips the padding that follows an item of itemSize bytes.
func skipPadding(fin io.Seeker, itemSize int64, pageSize uint32) error {
	_, err := fin.Seek(paddingSize(pageSize, itemSize), io.SeekCurrent)
	return err
}

// readSection reads one section of size bytes and decodes the MTK block it
// may start with. end is the length of the input; a section running past it
// is rejected before anything is allocated.
func readSection(fin io.ReadSeeker, end int64, name string, size, pageSize uint32) (data []byte, blk *MtkBlock, err error) {
	off, err := fin.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, nil, eMsg(err, "locating "+name)
	}
	if size > 0 && int64(size) > end-off {
		return nil, nil, &FormatError{Message: fmt.Sprintf("%s of %d bytes at 0x%x runs past end of image (%d bytes)", name, size, off, end)}
	}

	data = make([]byte, size)
	if _, err = io.ReadFull(fin, data); err != nil {
		return nil, nil, eMsg(err, "reading "+name+" from input")
	}

	if err = skipPadding(fin, int64(size), pageSize); err != nil {
		return nil, nil, eMsg(err, "seeking past "+name+" padding")
	}

	return data, ParseMtkBlock(data), nil
}

// UnpackImage unpacks an image and reads all the embedded data blocks.
func UnpackImage(fin io.ReadSeeker) (*Unpacked, error) {
	end, err := fin.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, eMsg(err, "finding input size")
	}

	if _, err := fin.Seek(0, io.SeekStart); err != nil {
		return nil, eMsg(err, "seeking to read header")
	}

	headerBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(fin, headerBuf); err != nil {
		return nil, eMsg(err, "reading header from input")
	}

	if !bytes.HasPrefix(headerBuf, []byte(BootMagic)) {
		return nil, &FormatError{Message: "missing " + BootMagic + " magic"}
	}

	u := &Unpacked{}
	if err := u.Header.UnmarshalBinary(headerBuf); err != nil {
		return nil, err
	}
	hdr := &u.Header

	if !ValidPageSize(hdr.PageSize) {
		return nil, &FormatError{Message: fmt.Sprintf("unsupported page size %d", hdr.PageSize)}
	}

	if err := skipPadding(fin, HeaderSize, hdr.PageSize); err != nil {
		return nil, eMsg(err, "seeking past header padding")
	}

	kernel, kblk, err := readSection(fin, end, "kernel", hdr.KernelSize, hdr.PageSize)
	if err != nil {
		return nil, err
	}

	ramdisk, rblk, err := readSection(fin, end, "ramdisk", hdr.RamdiskSize, hdr.PageSize)
	if err != nil {
		return nil, err
	}

	var second []byte
	if hdr.SecondSize > 0 {
		second, _, err = readSection(fin, end, "second stage bootloader", hdr.SecondSize, hdr.PageSize)
		if err != nil {
			return nil, err
		}
	}

	var deviceTree []byte
	if hdr.DtSize > 0 {
		deviceTree, _, err = readSection(fin, end, "device tree", hdr.DtSize, hdr.PageSize)
		if err != nil {
			return nil, err
		}
	}

	mtk := MtkNone
	if kblk != nil && rblk != nil &&
		int64(kblk.Size) == int64(len(kernel))-MtkBlockSize &&
		int64(rblk.Size) == int64(len(ramdisk))-MtkBlockSize {
		switch rblk.Kind() {
		case MtkKindRootfs:
			mtk = MtkBoot
		case MtkKindRecovery:
			mtk = MtkRecovery
		}
	}
	if mtk == MtkNone {
		// Only a matched pair whose sizes agree with the header counts as
		// the MTK layout.
		kblk, rblk = nil, nil
	} else {
		kernel, ramdisk = kernel[MtkBlockSize:], ramdisk[MtkBlockSize:]
	}

	u.KernelMtk, u.RamdiskMtk = kblk, rblk
	u.KernelSize, u.RamdiskSize = uint32(len(kernel)), uint32(len(ramdisk))

	u.Image = &Image{
		Board:   hdr.BoardName(),
		Cmdline: hdr.FullCmdline(),

		Base:          hdr.KernelAddr - DefaultKernelOffset,
		KernelOffset:  DefaultKernelOffset,
		RamdiskOffset: hdr.RamdiskAddr - hdr.KernelAddr + DefaultKernelOffset,
		SecondOffset:  hdr.SecondAddr - hdr.KernelAddr + DefaultKernelOffset,
		TagsOffset:    hdr.TagsAddr - hdr.KernelAddr + DefaultKernelOffset,
		PageSize:      hdr.PageSize,

		Kernel:     kernel,
		Ramdisk:    ramdisk,
		Second:     second,
		DeviceTree: deviceTree,

		Mtk: mtk,
	}

	return u, nil
}

// Verify recomputes the header ID with the named algorithm and reports
// whether it matches.
func (u *Unpacked) Verify(idHash string) (bool, error) {
	img := *u.Image
	img.IDHash = idHash

	id, err := img.ID()
	if err != nil {
		return false, err
	}

	return id == u.Header.ID, nil
}

// UnpackImageBytes unpacks an image from the given byte slice.
func UnpackImageBytes(data []byte) (*Unpacked, error) {
	return UnpackImage(bytes.NewReader(data))
}
