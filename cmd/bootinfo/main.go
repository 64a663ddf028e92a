package main

import (
	"errors"
	"fmt"
	"mkbootimg"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"
	"github.com/xyproto/env/v2"
)

// errorLines splits err into one line per step, dropping the cause that
// each wrapped message repeats after ';'.
func errorLines(err error) []string {
	lines := mkbootimg.GetErrors(err)
	for i, e := range lines {
		if j := strings.IndexByte(e, ';'); j >= 0 {
			lines[i] = e[:j]
		}
	}
	return lines
}

func checkMsg(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, " ! Error %s!\n", msg)
		for _, e := range errorLines(err) {
			fmt.Fprintf(os.Stderr, " ! %s\n", e)
		}
		os.Exit(2)
	}
}

func main() {
	var idHash string
	var extractDir string
	var decompress bool

	flag.StringVar(&idHash, "id-hash", env.Str("MKBOOTIMG_ID_HASH", mkbootimg.HashSHA1), "Header ID algorithm to verify with.")
	flag.StringVarP(&extractDir, "extract", "x", "", "Write the sections into this directory.")
	flag.BoolVarP(&decompress, "decompress", "d", false, "Decompress the ramdisk when extracting.")

	flag.ErrHelp = errors.New("")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Println("Usage: bootinfo [-x dir] [-d] <boot.img>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	inputPath := flag.Arg(0)

	in, err := os.Open(inputPath)
	checkMsg(err, "opening image for reading")
	defer in.Close()

	u, err := mkbootimg.UnpackImage(in)
	checkMsg(err, "reading image")

	hdr := &u.Header
	img := u.Image
	fmt.Printf("board        %q\n", img.Board)
	fmt.Printf("cmdline      %q\n", img.Cmdline)
	fmt.Printf("page size    %d\n", hdr.PageSize)
	fmt.Printf("kernel       0x%08x  %s\n", hdr.KernelAddr, humanize.IBytes(uint64(u.KernelSize)))
	fmt.Printf("ramdisk      0x%08x  %s (%s)\n", hdr.RamdiskAddr, humanize.IBytes(uint64(u.RamdiskSize)),
		mkbootimg.CompName(mkbootimg.DetectCompressor(img.Ramdisk)))
	fmt.Printf("second       0x%08x  %s\n", hdr.SecondAddr, humanize.IBytes(uint64(hdr.SecondSize)))
	fmt.Printf("tags         0x%08x\n", hdr.TagsAddr)
	fmt.Printf("dt           %s\n", humanize.IBytes(uint64(hdr.DtSize)))
	fmt.Printf("mtk          %s\n", img.Mtk)
	fmt.Printf("id           %x\n", hdr.ID)

	ok, err := u.Verify(idHash)
	checkMsg(err, "computing id")
	if ok {
		fmt.Printf("id check     ok (%s)\n", idHash)
	} else {
		fmt.Printf("id check     MISMATCH (%s)\n", idHash)
	}

	if extractDir != "" {
		extract(img, extractDir, decompress)
	}

	if !ok {
		os.Exit(1)
	}
}

func extract(img *mkbootimg.Image, dir string, decompress bool) {
	err := os.MkdirAll(dir, 0755)
	checkMsg(err, "creating output directory")

	ramdisk := img.Ramdisk
	ramdiskName := "ramdisk"
	if cMode := mkbootimg.DetectCompressor(ramdisk); cMode != mkbootimg.CompUnknown {
		if decompress {
			ramdisk, err = mkbootimg.ExtractRamdisk(ramdisk, cMode)
			checkMsg(err, "extracting ramdisk")
			ramdiskName = "ramdisk.cpio"
		} else {
			ramdiskName += "." + mkbootimg.CompName(cMode)
		}
	}

	sections := []struct {
		name string
		data []byte
	}{
		{"kernel", img.Kernel},
		{ramdiskName, ramdisk},
		{"second", img.Second},
		{"dt", img.DeviceTree},
	}

	for _, s := range sections {
		if len(s.data) == 0 {
			continue
		}

		path := filepath.Join(dir, s.name)
		err = os.WriteFile(path, s.data, 0644)
		checkMsg(err, "writing "+path)
		fmt.Printf(" - Wrote %s (%s)\n", path, humanize.IBytes(uint64(len(s.data))))
	}
}
