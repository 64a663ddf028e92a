package mkbootimg

// NoRamdisk as the ramdisk path builds an image with an empty ramdisk.
const NoRamdisk = "NONE"

// Options holds every input of a build, as given on the command line.
type Options struct {
	Output  string
	Kernel  string
	Ramdisk string
	Second  string
	Dt      string

	Cmdline string
	Board   string

	Base          uint32
	KernelOffset  uint32
	RamdiskOffset uint32
	SecondOffset  uint32
	TagsOffset    uint32
	PageSize      uint32

	// Mtk is "", "boot" or "recovery".
	Mtk string
	// IDHash names the header ID algorithm; empty means sha1.
	IDHash string
	// RamdiskCompress, when set, compresses the ramdisk before packing.
	RamdiskCompress string
}

// DefaultOptions returns Options carrying the stock load layout.
func DefaultOptions() Options {
	return Options{
		Base:          DefaultBase,
		KernelOffset:  DefaultKernelOffset,
		RamdiskOffset: DefaultRamdiskOffset,
		SecondOffset:  DefaultSecondOffset,
		TagsOffset:    DefaultTagsOffset,
		PageSize:      DefaultPageSize,
		IDHash:        HashSHA1,
	}
}

// Result describes a written image.
type Result struct {
	Header  *RawImage
	Extents []Extent
	Size    int64
}

// validate checks everything that can be checked without touching a file.
func (o *Options) validate() (mtk MtkMode, cMode int, err error) {
	cMode = CompUnknown

	if o.Output == "" {
		return mtk, cMode, configErr("output", "no output filename specified")
	}
	if o.Kernel == "" {
		return mtk, cMode, configErr("kernel", "no kernel image specified")
	}
	if o.Ramdisk == "" {
		return mtk, cMode, configErr("ramdisk", "no ramdisk image specified")
	}

	if mtk, err = ParseMtkMode(o.Mtk); err != nil {
		return
	}
	if _, err = NewIDHash(o.IDHash); err != nil {
		return
	}
	if o.RamdiskCompress != "" {
		if cMode, err = ParseCompressor(o.RamdiskCompress); err != nil {
			return
		}
	}

	img := Image{Board: o.Board, Cmdline: o.Cmdline, PageSize: o.PageSize}
	err = img.checkMetadata()
	return
}

// compressInput compresses the loaded ramdisk read from path.
func (img *Image) compressInput(cMode int, path string) error {
	if err := img.CompressRamdisk(cMode); err != nil {
		return &LoadError{Section: "ramdisk compression", Path: path, Err: err}
	}
	return nil
}

// Build loads the inputs named by opts and writes the boot image. Errors are
// one of *ConfigError, *LoadError, *VendorBlockError or *WriteError; only a
// *WriteError means the output file was ever created, and in that case it
// has been removed again. A ramdisk that fails to compress is reported as a
// *LoadError with Section "ramdisk compression".
func Build(opts Options) (*Result, error) {
	mtk, cMode, err := opts.validate()
	if err != nil {
		return nil, err
	}

	img := &Image{
		Board:   opts.Board,
		Cmdline: opts.Cmdline,

		Base:          opts.Base,
		KernelOffset:  opts.KernelOffset,
		RamdiskOffset: opts.RamdiskOffset,
		SecondOffset:  opts.SecondOffset,
		TagsOffset:    opts.TagsOffset,
		PageSize:      opts.PageSize,

		Mtk:    mtk,
		IDHash: opts.IDHash,
	}

	var blobs []*Blob
	defer func() {
		for _, b := range blobs {
			b.Close()
		}
	}()

	load := func(section, path string) ([]byte, error) {
		b, err := loadSection(section, path)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, b)
		return b.Data, nil
	}

	if img.Kernel, err = load("kernel", opts.Kernel); err != nil {
		return nil, err
	}

	if opts.Ramdisk != NoRamdisk {
		if img.Ramdisk, err = load("ramdisk", opts.Ramdisk); err != nil {
			return nil, err
		}

		if cMode != CompUnknown {
			if err = img.compressInput(cMode, opts.Ramdisk); err != nil {
				return nil, err
			}
		}
	}

	if opts.Second != "" {
		if img.Second, err = load("secondstage", opts.Second); err != nil {
			return nil, err
		}
	}

	if opts.Dt != "" {
		if img.DeviceTree, err = load("device tree image", opts.Dt); err != nil {
			return nil, err
		}
	}

	p, err := img.plan()
	if err != nil {
		return nil, err
	}

	if err = img.writeFile(opts.Output, p); err != nil {
		return nil, err
	}

	extents, size := img.layout(p)
	return &Result{Header: p.hdr, Extents: extents, Size: size}, nil
}
