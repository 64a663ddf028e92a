package mkbootimg_test

import (
	"bytes"
	"errors"
	"mkbootimg"
	"os"
	"path/filepath"
	"testing"
)

func buildOptions(t *testing.T) (mkbootimg.Options, string) {
	t.Helper()

	dir := t.TempDir()
	opts := mkbootimg.DefaultOptions()
	opts.Kernel = writeTemp(t, dir, "zImage", fill(1000, 'K'))
	opts.Ramdisk = writeTemp(t, dir, "ramdisk.cpio.gz", fill(2000, 'R'))
	opts.Output = filepath.Join(dir, "boot.img")
	return opts, dir
}

func TestBuild(t *testing.T) {
	opts, _ := buildOptions(t)

	res, err := mkbootimg.Build(opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Size != 6144 {
		t.Fatalf("Except 6144 bytes, But: %d", res.Size)
	}

	data, err := os.ReadFile(opts.Output)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 6144 {
		t.Fatalf("file size, Except: 6144, But: %d", len(data))
	}

	u, err := mkbootimg.UnpackImageBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if u.Header.KernelAddr != 0x10008000 || u.Header.RamdiskAddr != 0x11000000 ||
		u.Header.SecondAddr != 0x10f00000 || u.Header.TagsAddr != 0x10000100 {
		t.Fatalf("default addresses wrong: %+v", u.Header)
	}
	if ok, err := u.Verify(opts.IDHash); err != nil || !ok {
		t.Fatalf("id verification failed: %v %v", ok, err)
	}
}

func TestBuildMtkWithOptionalSections(t *testing.T) {
	opts, dir := buildOptions(t)
	opts.Mtk = "recovery"
	opts.PageSize = 4096
	opts.Second = writeTemp(t, dir, "second", fill(100, 'S'))
	opts.Dt = writeTemp(t, dir, "dt.img", fill(5000, 'D'))

	res, err := mkbootimg.Build(opts)
	if err != nil {
		t.Fatal(err)
	}
	// header + kernel + ramdisk + second + dt (two pages)
	if res.Size != 4096*6 {
		t.Fatalf("Except %d bytes, But: %d", 4096*6, res.Size)
	}

	data, err := os.ReadFile(opts.Output)
	if err != nil {
		t.Fatal(err)
	}
	u, err := mkbootimg.UnpackImageBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if u.Image.Mtk != mkbootimg.MtkRecovery || u.KernelSize != 1000 || u.RamdiskSize != 2000 {
		t.Fatalf("unexpected image: mtk %v sizes %d/%d", u.Image.Mtk, u.KernelSize, u.RamdiskSize)
	}
	if !bytes.Equal(u.Image.DeviceTree, fill(5000, 'D')) {
		t.Fatal("device tree mismatch")
	}
}

func TestBuildNoRamdisk(t *testing.T) {
	opts, _ := buildOptions(t)
	opts.Ramdisk = mkbootimg.NoRamdisk

	res, err := mkbootimg.Build(opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Header.RamdiskSize != 0 || res.Size != 4096 {
		t.Fatalf("Except empty ramdisk and 4096 bytes, But: %d and %d", res.Header.RamdiskSize, res.Size)
	}
}

func TestBuildCompressRamdisk(t *testing.T) {
	opts, _ := buildOptions(t)
	opts.RamdiskCompress = "gzip"

	if _, err := mkbootimg.Build(opts); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(opts.Output)
	if err != nil {
		t.Fatal(err)
	}
	u, err := mkbootimg.UnpackImageBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if mkbootimg.DetectCompressor(u.Image.Ramdisk) != mkbootimg.CompGzip {
		t.Fatal("ramdisk not gzip compressed")
	}
}

func TestBuildConfigErrors(t *testing.T) {
	tests := map[string]func(*mkbootimg.Options){
		"output":   func(o *mkbootimg.Options) { o.Output = "" },
		"kernel":   func(o *mkbootimg.Options) { o.Kernel = "" },
		"ramdisk":  func(o *mkbootimg.Options) { o.Ramdisk = "" },
		"pagesize": func(o *mkbootimg.Options) { o.PageSize = 1000 },
		"board":    func(o *mkbootimg.Options) { o.Board = "0123456789abcdef" },
		"mtk":      func(o *mkbootimg.Options) { o.Mtk = "vendor" },
		"hash":     func(o *mkbootimg.Options) { o.IDHash = "crc32" },
		"compress": func(o *mkbootimg.Options) { o.RamdiskCompress = "lzo" },
		"missing":  func(o *mkbootimg.Options) { o.Kernel = filepath.Join(filepath.Dir(o.Kernel), "nope") },
	}

	for name, mutate := range tests {
		opts, _ := buildOptions(t)
		mutate(&opts)

		_, err := mkbootimg.Build(opts)
		var cfgErr *mkbootimg.ConfigError
		var loadErr *mkbootimg.LoadError
		if name == "missing" {
			if !errors.As(err, &loadErr) || loadErr.Section != "kernel" {
				t.Fatalf("%s: Except LoadError, But: %v", name, err)
			}
		} else if !errors.As(err, &cfgErr) {
			t.Fatalf("%s: Except ConfigError, But: %v", name, err)
		}

		if opts.Output != "" {
			if _, err := os.Stat(opts.Output); !os.IsNotExist(err) {
				t.Fatalf("%s: output created before failure", name)
			}
		}
	}
}

func TestBuildUncreatableOutput(t *testing.T) {
	opts, dir := buildOptions(t)
	opts.Output = filepath.Join(dir, "missing", "boot.img")

	_, err := mkbootimg.Build(opts)
	var writeErr *mkbootimg.WriteError
	if !errors.As(err, &writeErr) || writeErr.Path != opts.Output {
		t.Fatalf("Except WriteError, But: %v", err)
	}
}
