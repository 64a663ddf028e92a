package main

import (
	"errors"
	"fmt"
	"mkbootimg"
	"os"
	"strings"
)

// checkBuild reports a Build failure, naming the input or output at fault.
func checkBuild(err error) {
	if err == nil {
		return
	}

	var (
		cfgErr   *mkbootimg.ConfigError
		loadErr  *mkbootimg.LoadError
		mtkErr   *mkbootimg.VendorBlockError
		writeErr *mkbootimg.WriteError
	)

	var what string
	var cause error
	switch {
	case errors.As(err, &cfgErr):
		fmt.Fprintf(os.Stderr, " ! Error: %s!\n", cfgErr.Message)
		usage()
		os.Exit(1)
	case errors.As(err, &loadErr):
		what = fmt.Sprintf("loading %s '%s'", loadErr.Section, loadErr.Path)
		cause = loadErr.Err
	case errors.As(err, &mtkErr):
		what = "initializing mtk boot.img data"
		cause = mtkErr
	case errors.As(err, &writeErr):
		what = fmt.Sprintf("writing '%s'", writeErr.Path)
		cause = writeErr.Err
	default:
		what = "building image"
		cause = err
	}

	fmt.Fprintf(os.Stderr, " ! Error %s!\n", what)
	for _, e := range mkbootimg.GetErrors(cause) {
		if i := strings.IndexByte(e, ';'); i >= 0 {
			e = e[:i]
		}
		fmt.Fprintf(os.Stderr, " ! %s\n", e)
	}
	os.Exit(1)
}
