package mkbootimg_test

import (
	"bytes"
	"errors"
	"io"
	"mkbootimg"
	"os"
	"path/filepath"
	"testing"
)

func TestPaddingSize(t *testing.T) {
	items := []int64{0, 1, 511, 512, 1632, 2047, 2048, 2049, 4095, 4096, 65535, 131071, 131072, 131073, 1 << 20, 1<<20 + 7}

	for _, ps := range mkbootimg.PageSizes {
		img := mkbootimg.NewImage()
		img.PageSize = ps

		for _, item := range items {
			pad := img.PaddingSize(item)
			if pad < 0 || pad >= int64(ps) {
				t.Fatalf("page %d item %d: padding %d out of range", ps, item, pad)
			}
			if (item+pad)%int64(ps) != 0 {
				t.Fatalf("page %d item %d: padding %d does not align", ps, item, pad)
			}
			if item%int64(ps) == 0 && pad != 0 {
				t.Fatalf("page %d item %d: aligned item got padding %d", ps, item, pad)
			}
		}
	}
}

func TestWritePlain(t *testing.T) {
	img := testImage(1000, 2000)

	var buf bytes.Buffer
	n, err := img.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 6144 || buf.Len() != 6144 {
		t.Fatalf("Except: 6144 bytes, But: %d (reported %d)", buf.Len(), n)
	}

	out := buf.Bytes()
	if !bytes.Equal(out[2048:3048], img.Kernel) {
		t.Fatal("kernel not at 2048")
	}
	if !bytes.Equal(out[3048:4096], make([]byte, 1048)) {
		t.Fatal("kernel padding not zero")
	}
	if !bytes.Equal(out[4096:6096], img.Ramdisk) {
		t.Fatal("ramdisk not at 4096")
	}
	if !bytes.Equal(out[mkbootimg.HeaderSize:2048], make([]byte, 2048-mkbootimg.HeaderSize)) {
		t.Fatal("header padding not zero")
	}
}

func TestWriteMtk(t *testing.T) {
	img := testImage(1000, 2000)
	img.Mtk = mkbootimg.MtkBoot

	var buf bytes.Buffer
	if _, err := img.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.Bytes()

	// header page, kernel 1512 -> 2048, ramdisk 2512 -> 4096
	if len(out) != 2048+2048+4096 {
		t.Fatalf("Except: %d bytes, But: %d", 2048+2048+4096, len(out))
	}

	checkMtkBlock(t, out[2048:2560], []byte{0xe8, 0x03, 0x00, 0x00}, "KERNEL")
	if !bytes.Equal(out[2560:3560], img.Kernel) {
		t.Fatal("kernel not after its MTK block")
	}
	checkMtkBlock(t, out[4096:4608], []byte{0xd0, 0x07, 0x00, 0x00}, "ROOTFS")
	if !bytes.Equal(out[4608:6608], img.Ramdisk) {
		t.Fatal("ramdisk not after its MTK block")
	}

	hdr, err := img.Header()
	if err != nil {
		t.Fatal(err)
	}
	if hdr.KernelSize != 1512 || hdr.RamdiskSize != 2512 {
		t.Fatalf("on-disk sizes, Except: 1512/2512, But: %d/%d", hdr.KernelSize, hdr.RamdiskSize)
	}

	plain := testImage(1000, 2000)
	if id, _ := plain.ID(); id != hdr.ID {
		t.Fatal("MTK blocks leaked into the id")
	}
}

func TestWriteMtkRecovery(t *testing.T) {
	img := testImage(10, 20)
	img.Mtk = mkbootimg.MtkRecovery

	var buf bytes.Buffer
	if _, err := img.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	checkMtkBlock(t, buf.Bytes()[4096:4608], []byte{0x14, 0x00, 0x00, 0x00}, "RECOVERY")
}

func TestWriteOptionalSections(t *testing.T) {
	img := testImage(1000, 2000)
	img.Second = fill(3000, 'S')
	img.DeviceTree = fill(10, 'D')

	extents, total, err := img.Layout()
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := img.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	if int64(buf.Len()) != total {
		t.Fatalf("layout says %d bytes, wrote %d", total, buf.Len())
	}

	expect := []struct {
		name   string
		offset int64
	}{{"header", 0}, {"kernel", 2048}, {"ramdisk", 4096}, {"second", 6144}, {"dt", 10240}}
	if len(extents) != len(expect) {
		t.Fatalf("Except %d extents, But: %d", len(expect), len(extents))
	}
	for i, e := range expect {
		if extents[i].Name != e.name || extents[i].Offset != e.offset {
			t.Fatalf("extent %d, Except: %s@%d, But: %s@%d", i, e.name, e.offset, extents[i].Name, extents[i].Offset)
		}
	}
	if total != 12288 {
		t.Fatalf("Except 12288 bytes, But: %d", total)
	}
	if !bytes.Equal(buf.Bytes()[6144:9144], img.Second) {
		t.Fatal("second not at 6144")
	}
}

type limitWriter struct {
	n int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	if len(p) > w.n {
		n := w.n
		w.n = 0
		return n, nil
	}
	w.n -= len(p)
	return len(p), nil
}

func TestWriteShort(t *testing.T) {
	img := testImage(1000, 2000)

	n, err := img.WriteTo(&limitWriter{n: 3000})
	if !errors.Is(err, io.ErrShortWrite) {
		t.Fatalf("Except ErrShortWrite, But: %v", err)
	}
	if n != 3000 {
		t.Fatalf("Except 3000 bytes counted, But: %d", n)
	}
}

func TestWriteFile(t *testing.T) {
	img := testImage(1000, 2000)
	img.Mtk = mkbootimg.MtkBoot

	var buf bytes.Buffer
	if _, err := img.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "boot.img")
	if err := img.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, buf.Bytes()) {
		t.Fatalf("file differs from WriteTo output, Except: %d bytes, But: %d", buf.Len(), len(data))
	}

	err = img.WriteFile(filepath.Join(t.TempDir(), "missing", "boot.img"))
	var writeErr *mkbootimg.WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("Except WriteError, But: %v", err)
	}
}
