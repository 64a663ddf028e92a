package mkbootimg_test

import (
	"bytes"
	"mkbootimg"
	"os"
	"path/filepath"
	"testing"
)

func fill(size int, b byte) []byte {
	return bytes.Repeat([]byte{b}, size)
}

func testImage(kernelSize, ramdiskSize int) *mkbootimg.Image {
	img := mkbootimg.NewImage()
	img.Kernel = fill(kernelSize, 'K')
	img.Ramdisk = fill(ramdiskSize, 'R')
	return img
}

func writeTemp(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
