package mkbootimg

import (
	"io"
	"os"
)

// padding is the zero source for page padding; it is never written to.
var padding [MaxPageSize]byte

// paddingSize calculates the amount of padding needed to align itemSize to
// pageSize.
func paddingSize(pageSize uint32, itemSize int64) int64 {
	ps := int64(pageSize)
	return (ps - itemSize%ps) % ps
}

// PaddingSize calculates the amount of padding necessary for the Image's page
// size.
func (img *Image) PaddingSize(itemSize int64) int64 {
	return paddingSize(img.PageSize, itemSize)
}

// countWriter tracks the bytes written and turns short writes into errors.
type countWriter struct {
	w io.Writer
	n int64
}

func (cw *countWriter) Write(p []byte) (n int, err error) {
	n, err = cw.w.Write(p)
	cw.n += int64(n)
	if err == nil && n != len(p) {
		err = io.ErrShortWrite
	}

	return
}

// writePadding writes zero padding for a section of itemSize bytes.
func (img *Image) writePadding(out io.Writer, itemSize int64) (err error) {
	size := img.PaddingSize(itemSize)
	if size == 0 {
		return
	}

	_, err = out.Write(padding[:size])
	return
}

// writePaddedSection writes the optional MTK block and data to the output,
// then pads the pair to the page size.
func (img *Image) writePaddedSection(out io.Writer, block, data []byte) (err error) {
	if block != nil {
		if _, err = out.Write(block); err != nil {
			return
		}
	}

	if _, err = out.Write(data); err != nil {
		return
	}

	return img.writePadding(out, int64(len(block)+len(data)))
}

// packPlan is everything needed to emit an image besides the section data.
type packPlan struct {
	hdr          *RawImage
	kernelBlock  []byte
	ramdiskBlock []byte
}

// plan builds the on-disk header and MTK blocks. Logical sizes feed the ID
// and the MTK blocks; disk sizes, which include the blocks, go into the
// header.
func (img *Image) plan() (*packPlan, error) {
	logical, err := img.logicalSizes()
	if err != nil {
		return nil, err
	}

	hdr, err := img.header(img.diskSizes(logical))
	if err != nil {
		return nil, err
	}

	h, err := NewIDHash(img.IDHash)
	if err != nil {
		return nil, err
	}
	copy(hdr.ID[:], img.checksum(h, logical))

	kb, rb, err := img.mtkBlocks(logical)
	if err != nil {
		return nil, err
	}

	return &packPlan{hdr: hdr, kernelBlock: kb, ramdiskBlock: rb}, nil
}

// WriteHeader writes the Image's header in Android boot format, padded to a
// full page.
func (img *Image) WriteHeader(out io.Writer) error {
	p, err := img.plan()
	if err != nil {
		return err
	}

	return img.writeHeader(out, p.hdr)
}

func (img *Image) writeHeader(out io.Writer, hdr *RawImage) error {
	hdrBytes, err := hdr.MarshalBinary()
	if err != nil {
		return err
	}

	if _, err = out.Write(hdrBytes); err != nil {
		return err
	}

	return img.writePadding(out, int64(len(hdrBytes)))
}

// writeData writes the data chunks (kernel, ramdisk, etc) to the output.
func (img *Image) writeData(out io.Writer, p *packPlan) (err error) {
	err = img.writePaddedSection(out, p.kernelBlock, img.Kernel)
	if err != nil {
		return
	}

	err = img.writePaddedSection(out, p.ramdiskBlock, img.Ramdisk)
	if err != nil {
		return
	}

	if img.Second != nil {
		err = img.writePaddedSection(out, nil, img.Second)
		if err != nil {
			return
		}
	}

	if img.DeviceTree != nil {
		err = img.writePaddedSection(out, nil, img.DeviceTree)
		if err != nil {
			return
		}
	}

	return
}

// WriteTo writes the complete image to out. All validation happens before
// the first byte is written.
func (img *Image) WriteTo(out io.Writer) (int64, error) {
	p, err := img.plan()
	if err != nil {
		return 0, err
	}

	cw := &countWriter{w: out}
	if err = img.writeHeader(cw, p.hdr); err != nil {
		return cw.n, err
	}

	err = img.writeData(cw, p)
	return cw.n, err
}

// WriteFile writes the image to path. If writing fails the partial file is
// removed and a *WriteError is returned.
func (img *Image) WriteFile(path string) error {
	p, err := img.plan()
	if err != nil {
		return err
	}

	return img.writeFile(path, p)
}

func (img *Image) writeFile(path string, p *packPlan) error {
	return writeFile(path, func(out io.Writer) error {
		if err := img.writeHeader(out, p.hdr); err != nil {
			return err
		}
		return img.writeData(out, p)
	})
}

// writeFile creates path and fills it with write. The file is deleted again
// when write or close fails.
func writeFile(path string, write func(io.Writer) error) (err error) {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return &WriteError{Path: path, Err: eMsg(err, "creating output file")}
	}

	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = &WriteError{Path: path, Err: cerr}
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if werr := write(&countWriter{w: out}); werr != nil {
		return &WriteError{Path: path, Err: werr}
	}

	return nil
}

// Extent locates one section in an image.
type Extent struct {
	Name   string
	Offset int64
	// Size is the number of bytes written for the section, including any
	// MTK block.
	Size int64
	// Padded is Size rounded up to the page size.
	Padded int64
}

// Layout returns the position of every section the image would contain,
// along with the total image size.
func (img *Image) Layout() ([]Extent, int64, error) {
	p, err := img.plan()
	if err != nil {
		return nil, 0, err
	}

	extents, size := img.layout(p)
	return extents, size, nil
}

func (img *Image) layout(p *packPlan) ([]Extent, int64) {
	var extents []Extent
	var off int64
	add := func(name string, size int64) {
		padded := size + img.PaddingSize(size)
		extents = append(extents, Extent{Name: name, Offset: off, Size: size, Padded: padded})
		off += padded
	}

	add("header", HeaderSize)
	add("kernel", int64(p.hdr.KernelSize))
	add("ramdisk", int64(p.hdr.RamdiskSize))
	if img.Second != nil {
		add("second", int64(p.hdr.SecondSize))
	}
	if img.DeviceTree != nil {
		add("dt", int64(p.hdr.DtSize))
	}

	return extents, off
}
