package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"
)

// hexValue is a uint32 flag that is always parsed as hex, with or without a
// 0x prefix.
type hexValue uint32

func newHexValue(val uint32, p *uint32) *hexValue {
	*p = val
	return (*hexValue)(p)
}

func (h *hexValue) Set(s string) error {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return err
	}

	*h = hexValue(v)
	return nil
}

func (h *hexValue) Type() string {
	return "hex"
}

func (h *hexValue) String() string {
	return fmt.Sprintf("0x%08x", uint32(*h))
}

func hexVar(p *uint32, name string, value uint32, usage string) {
	flag.Var(newHexValue(value, p), name, usage)
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: mkbootimg
       --kernel <filename>
       --ramdisk <filename>
       [ --second <2ndbootloader-filename> ]
       [ --cmdline <kernel-commandline> ]
       [ --board <boardname> ]
       [ --base <address> ]
       [ --pagesize <pagesize> ]
       [ --dt <filename> ]
       [ --ramdisk_offset <address> ]
       [ --tags_offset <address> ]
       [ --mtk <ramdisk-type> ]
       -o|--output <filename>

`)
	flag.PrintDefaults()
}
