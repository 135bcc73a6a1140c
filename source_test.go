package mp4_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/tetsuo/mp4probe"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "probe.mp4")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSeekSource(t *testing.T) {
	data := make([]byte, 10000)
	for i := range data {
		data[i] = byte(i)
	}
	f, err := os.Open(writeTemp(t, data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	src, err := mp4.NewSeekSource(f, 256, 2)
	if err != nil {
		t.Fatalf("NewSeekSource: %v", err)
	}
	if src.Size() != int64(len(data)) {
		t.Fatalf("Size = %d, want %d", src.Size(), len(data))
	}

	// Out of order reads exercise both the buffer and re-seeks.
	for _, off := range []int64{9000, 0, 255, 4096, 9990, 1} {
		p := make([]byte, 10)
		n, err := src.ReadAt(p, off)
		if err != nil || n != len(p) {
			t.Fatalf("ReadAt(%d) = %d, %v", off, n, err)
		}
		if !bytes.Equal(p, data[off:off+10]) {
			t.Errorf("ReadAt(%d) = % x, want % x", off, p, data[off:off+10])
		}
	}

	p := make([]byte, 20)
	n, err := src.ReadAt(p, 9990)
	if n != 10 || !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadAt past end = %d, %v; want 10, ErrUnexpectedEOF", n, err)
	}
}

func TestWalkSeekSourceMatchesBytesReader(t *testing.T) {
	var b builder
	b.leaf("ftyp", []byte("isom\x00\x00\x02\x00isomavc1"))
	b.start("moov").
		leaf("mvhd", mvhdV1(100, 200, 1000, 61000)).
		start("trak").start("mdia").start("minf").start("stbl").
		start("stsd").raw(stsdHeader(0, 1)...).
		leaf("avc1", visualEntry(1920, 1080)).
		end().end().end().end().end().
		end()
	b.leaf("mdat", make([]byte, 5000))

	want, err := mp4.Walk(b.source(), mp4.Options{})
	if err != nil {
		t.Fatalf("Walk(bytes.Reader): %v", err)
	}

	f, err := os.Open(writeTemp(t, b.bytes()))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	src, err := mp4.NewSeekSource(f, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	got, err := mp4.Walk(src, mp4.Options{})
	if err != nil {
		t.Fatalf("Walk(SeekSource): %v", err)
	}
	if got.Duration != 61 || got.Width != 1920 || got.Height != 1080 {
		t.Errorf("metadata = %+v", got)
	}
	if got.Duration != want.Duration || got.Width != want.Width || got.TrackCount != want.TrackCount {
		t.Errorf("SeekSource walk = %+v, bytes.Reader walk = %+v", got, want)
	}
}
