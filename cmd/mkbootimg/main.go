package main

import (
	"errors"
	"fmt"
	"mkbootimg"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	flag "github.com/spf13/pflag"
	"github.com/xyproto/env/v2"
)

func main() {
	opts := mkbootimg.DefaultOptions()
	var verbose bool

	flag.StringVarP(&opts.Output, "output", "o", "", "Path to write the boot image to.")
	flag.StringVar(&opts.Kernel, "kernel", "", "Kernel image.")
	flag.StringVar(&opts.Ramdisk, "ramdisk", "", "Ramdisk image, or NONE for an empty ramdisk.")
	flag.StringVar(&opts.Second, "second", "", "Second stage bootloader image.")
	flag.StringVar(&opts.Dt, "dt", "", "Device tree image.")
	flag.StringVar(&opts.Cmdline, "cmdline", "", "Kernel command line.")
	flag.StringVar(&opts.Board, "board", "", "Board name.")
	hexVar(&opts.Base, "base", opts.Base, "Base load address (hex).")
	hexVar(&opts.KernelOffset, "kernel_offset", opts.KernelOffset, "Kernel offset from base (hex).")
	hexVar(&opts.RamdiskOffset, "ramdisk_offset", opts.RamdiskOffset, "Ramdisk offset from base (hex).")
	hexVar(&opts.SecondOffset, "second_offset", opts.SecondOffset, "Second stage offset from base (hex).")
	hexVar(&opts.TagsOffset, "tags_offset", opts.TagsOffset, "Kernel tags offset from base (hex).")
	flag.Uint32Var(&opts.PageSize, "pagesize", opts.PageSize, "Flash page size.")
	flag.StringVar(&opts.Mtk, "mtk", "", "Add MTK headers; ramdisk type is boot or recovery.")
	flag.StringVar(&opts.IDHash, "id-hash", env.Str("MKBOOTIMG_ID_HASH", mkbootimg.HashSHA1), "Header ID algorithm: sha1, sha256 or xxhash.")
	flag.StringVar(&opts.RamdiskCompress, "ramdisk-compress", "", "Compress the ramdisk first: gzip, lz4 or xz.")
	flag.BoolVarP(&verbose, "verbose", "v", false, "Print progress even when not on a terminal.")

	flag.Usage = usage
	flag.ErrHelp = errors.New("")
	flag.Parse()

	if flag.NArg() > 0 {
		usage()
		os.Exit(1)
	}

	interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	quiet := env.Bool("MKBOOTIMG_QUIET") || !(interactive || verbose)
	say := func(format string, args ...any) {
		if !quiet {
			fmt.Printf(format, args...)
		}
	}

	if opts.Mtk != "" {
		say(" - MTK headers enabled (%s)\n", opts.Mtk)
	}
	say(" - Packing kernel '%s' and ramdisk '%s'\n", opts.Kernel, opts.Ramdisk)

	res, err := mkbootimg.Build(opts)
	checkBuild(err)

	for _, e := range res.Extents {
		say("   %-8s @ 0x%08x  %s (%s padded)\n", e.Name, e.Offset,
			humanize.IBytes(uint64(e.Size)), humanize.IBytes(uint64(e.Padded)))
	}
	say(" - Finished! Output is '%s' (%s).\n", opts.Output, humanize.IBytes(uint64(res.Size)))
}
