package mkbootimg

// Boot image format constants
const (
	BootMagic         = "ANDROID!"
	BootMagicSize     = 8
	BootNameSize      = 16
	BootArgsSize      = 512
	BootExtraArgsSize = 1024
	BootIDSize        = 32

	// MaxCmdlineSize is the longest command line that fits in Cmdline and
	// ExtraCmdline combined.
	MaxCmdlineSize = BootArgsSize + BootExtraArgsSize - 2
)

// HeaderSize is the size of a serialized RawImage.
const HeaderSize = 1632

// Default load layout
const (
	DefaultBase          = 0x10000000
	DefaultKernelOffset  = 0x00008000
	DefaultRamdiskOffset = 0x01000000
	DefaultSecondOffset  = 0x00f00000
	DefaultTagsOffset    = 0x00000100
	DefaultPageSize      = 2048
)

// PageSizes lists the supported flash page sizes.
var PageSizes = [...]uint32{2048, 4096, 8192, 16384, 32768, 65536, 131072}

// MaxPageSize is the largest supported page size.
const MaxPageSize = 131072

// Image represents the contents of a boot image.
//
// Second and DeviceTree are optional: a nil slice means the section is absent,
// while an empty non-nil slice is a present section of size zero.
type Image struct {
	Board   string
	Cmdline string

	Base          uint32
	KernelOffset  uint32
	RamdiskOffset uint32
	SecondOffset  uint32
	TagsOffset    uint32
	PageSize      uint32

	Kernel     []byte
	Ramdisk    []byte
	Second     []byte
	DeviceTree []byte

	// Mtk selects the MediaTek header-prefix extension.
	Mtk MtkMode
	// IDHash names the algorithm used for the header ID.
	IDHash string
}

// NewImage returns an Image with the stock load layout and page size.
func NewImage() *Image {
	return &Image{
		Base:          DefaultBase,
		KernelOffset:  DefaultKernelOffset,
		RamdiskOffset: DefaultRamdiskOffset,
		SecondOffset:  DefaultSecondOffset,
		TagsOffset:    DefaultTagsOffset,
		PageSize:      DefaultPageSize,
		IDHash:        HashSHA1,
	}
}

// RawImage directly correlates to the Android boot image header.
type RawImage struct {
	// Android header magic
	Magic [BootMagicSize]byte

	// Size of the kernel in bytes
	KernelSize uint32
	// Kernel physical load address
	KernelAddr uint32

	// Size of the ramdisk in bytes
	RamdiskSize uint32
	// Ramdisk physical load address
	RamdiskAddr uint32

	// Size of the second stage bootloader in bytes
	SecondSize uint32
	// Second stage bootloader physical load address
	SecondAddr uint32

	// Kernel tags physical load address
	TagsAddr uint32
	// Flash page size
	PageSize uint32
	// Size of the device tree in bytes
	DtSize uint32
	// Reserved, always zero
	Unused uint32

	// Product/board name
	Board [BootNameSize]byte
	// Kernel command line
	Cmdline [BootArgsSize]byte

	// Digest of the sections and their sizes
	ID [BootIDSize]byte

	// Supplemental cmdline data for compatibility with older formats
	ExtraCmdline [BootExtraArgsSize]byte
}
