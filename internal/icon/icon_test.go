package icon

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func encodePNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

type icoEntry struct {
	dim  byte // 0 means 256
	data []byte
}

func buildICO(entries ...icoEntry) []byte {
	const headerSize, entrySize = 6, 16

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint16(0))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(len(entries)))

	offset := headerSize + entrySize*len(entries)
	for _, e := range entries {
		buf.Write([]byte{e.dim, e.dim, 0, 0})
		binary.Write(&buf, binary.LittleEndian, uint16(1))
		binary.Write(&buf, binary.LittleEndian, uint16(32))
		binary.Write(&buf, binary.LittleEndian, uint32(len(e.data)))
		binary.Write(&buf, binary.LittleEndian, uint32(offset))
		offset += len(e.data)
	}
	for _, e := range entries {
		buf.Write(e.data)
	}
	return buf.Bytes()
}

// encodeDIB builds a 32bpp ICO bitmap entry: a BITMAPINFOHEADER with doubled
// height, bottom-up BGRA rows, then the 1bpp AND mask.
func encodeDIB(w, h int, c color.NRGBA) []byte {
	var buf bytes.Buffer
	for _, v := range []any{
		uint32(40), int32(w), int32(2 * h), uint16(1), uint16(32),
		uint32(0), uint32(w * h * 4), int32(0), int32(0), uint32(0), uint32(0),
	} {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	for i := 0; i < w*h; i++ {
		buf.Write([]byte{c.B, c.G, c.R, c.A})
	}
	maskStride := ((w + 31) / 32) * 4
	buf.Write(make([]byte, maskStride*h))
	return buf.Bytes()
}

func TestDecode_PNG(t *testing.T) {
	data := encodePNG(t, 3, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 128})

	img, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width != 3 || img.Height != 2 {
		t.Fatalf("size = %dx%d", img.Width, img.Height)
	}
	if len(img.RGBA) != 3*2*4 {
		t.Fatalf("pixel bytes = %d", len(img.RGBA))
	}
	if got := img.RGBA[:4]; got[0] != 10 || got[1] != 20 || got[2] != 30 || got[3] != 128 {
		t.Fatalf("first pixel = %v", got)
	}
}

func TestImage_BGRA(t *testing.T) {
	img := &Image{Width: 1, Height: 1, RGBA: []byte{1, 2, 3, 4}}
	got := img.BGRA()
	if !bytes.Equal(got, []byte{3, 2, 1, 4}) {
		t.Fatalf("BGRA = %v", got)
	}
}

func TestDecode_ICOPicksLargestPNGEntry(t *testing.T) {
	small := encodePNG(t, 16, 16, color.NRGBA{R: 1, A: 255})
	medium := encodePNG(t, 32, 32, color.NRGBA{G: 1, A: 255})

	img, err := Decode(buildICO(icoEntry{16, small}, icoEntry{32, medium}))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width != 32 || img.Height != 32 {
		t.Fatalf("picked %dx%d, want 32x32", img.Width, img.Height)
	}
}

func TestDecode_ICOBitmapEntry(t *testing.T) {
	img, err := Decode(buildICO(icoEntry{2, encodeDIB(2, 2, color.NRGBA{R: 200, G: 100, B: 50, A: 255})}))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width != 2 || img.Height != 2 {
		t.Fatalf("size = %dx%d, want 2x2", img.Width, img.Height)
	}
	if len(img.RGBA) != 2*2*4 {
		t.Fatalf("pixel bytes = %d", len(img.RGBA))
	}
}

func TestDecode_ICOTruncated(t *testing.T) {
	data := buildICO(icoEntry{2, encodeDIB(2, 2, color.NRGBA{A: 255})})
	if _, err := Decode(data[:len(data)-20]); err == nil {
		t.Fatalf("expected error for truncated ico")
	}
}

func TestDecode_Garbage(t *testing.T) {
	if _, err := Decode([]byte("not an icon")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := Decode(append(append([]byte{}, pngSignature...), 0, 1, 2)); err == nil {
		t.Fatalf("expected error for truncated png")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "icon.png")
	if err := os.WriteFile(path, encodePNG(t, 4, 4, color.NRGBA{A: 255}), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.png")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}
