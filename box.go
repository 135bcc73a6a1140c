// Package mp4 walks the box tree of ISO Base Media File Format (MP4) files
// and collects presentation metadata from it.
package mp4

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIO reports that a byte range could not be fully read.
	ErrIO = errors.New("mp4: i/o error")
	// ErrMalformed reports input that violates the box structure.
	ErrMalformed = errors.New("mp4: malformed box")
)

// BoxType is a 4-byte box type identifier. It is kept as raw bytes since
// some vendor tags are not ASCII.
type BoxType [4]byte

// String renders the tag for display, reading bytes above 0x7F as Latin-1
// (so 0xA9 prints as the copyright sign).
func (t BoxType) String() string {
	var sb strings.Builder
	for _, c := range t {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

// newBoxType creates a BoxType from a 4-character string.
func newBoxType(s string) BoxType {
	var t BoxType
	copy(t[:], s)
	return t
}

// Known box types.
var (
	TypeFtyp = newBoxType("ftyp")
	TypeMoov = newBoxType("moov")
	TypeMvhd = newBoxType("mvhd")
	TypeTrak = newBoxType("trak")
	TypeTkhd = newBoxType("tkhd")
	TypeMdia = newBoxType("mdia")
	TypeMdhd = newBoxType("mdhd")
	TypeHdlr = newBoxType("hdlr")
	TypeMinf = newBoxType("minf")
	TypeDinf = newBoxType("dinf")
	TypeStbl = newBoxType("stbl")
	TypeStsd = newBoxType("stsd")
	TypeStts = newBoxType("stts")
	TypeCtts = newBoxType("ctts")
	TypeStsc = newBoxType("stsc")
	TypeStsz = newBoxType("stsz")
	TypeStz2 = newBoxType("stz2")
	TypeStco = newBoxType("stco")
	TypeCo64 = newBoxType("co64")
	TypeStss = newBoxType("stss")
	TypeMvex = newBoxType("mvex")
	TypeMoof = newBoxType("moof")
	TypeTraf = newBoxType("traf")
	TypeMfra = newBoxType("mfra")
	TypeUdta = newBoxType("udta")
	TypeIlst = newBoxType("ilst")
	TypeMeta = newBoxType("meta")
	TypeMean = newBoxType("mean")
	TypeName = newBoxType("name")
	TypeData = newBoxType("data")
	TypeMdat = newBoxType("mdat")
	TypeFree = newBoxType("free")
	TypeUUID = newBoxType("uuid")
	TypeTx3g = newBoxType("tx3g")
	TypeDash = newBoxType("----")

	TypeMp4a = newBoxType("mp4a")
	TypeSamr = newBoxType("samr")
	TypeSawb = newBoxType("sawb")
	TypeEsds = newBoxType("esds")

	TypeMp4v = newBoxType("mp4v")
	TypeS263 = newBoxType("s263")
	TypeH263 = newBoxType("H263")
	Typeh263 = newBoxType("h263")
	TypeAvc1 = newBoxType("avc1")
	TypeAvcC = newBoxType("avcC")
	TypeD263 = newBoxType("d263")

	// TypeXyz is the QuickTime location tag, spelled with a leading 0xA9.
	TypeXyz = BoxType{0xA9, 'x', 'y', 'z'}
)

// Header is a resolved box header.
type Header struct {
	Type       BoxType
	Offset     int64  // absolute offset of the size field
	Size       uint64 // total size including header
	HeaderSize int    // 8, or 16 for the 64-bit size form
}

// DataOffset returns the absolute offset of the box payload.
func (h Header) DataOffset() int64 {
	return h.Offset + int64(h.HeaderSize)
}

// DataSize returns the payload size.
func (h Header) DataSize() int64 {
	return int64(h.Size) - int64(h.HeaderSize)
}

// End returns the absolute offset just past the box.
func (h Header) End() int64 {
	return h.Offset + int64(h.Size)
}

// ReadHeader resolves the box header at off.
//
// A declared size of 1 selects the 64-bit extended size, which must be at
// least 16. Any other declared size below 8 is malformed, including 0.
// Boxes reaching past the end of src fail with ErrIO.
func ReadHeader(src Source, off int64) (Header, error) {
	var hdr [16]byte
	if err := readAt(src, hdr[:8], off); err != nil {
		return Header{}, err
	}

	h := Header{
		Offset:     off,
		Size:       uint64(u32(hdr[:4])),
		HeaderSize: 8,
	}
	copy(h.Type[:], hdr[4:8])

	if h.Size == 1 {
		if err := readAt(src, hdr[8:16], off+8); err != nil {
			return Header{}, err
		}
		h.Size = u64(hdr[8:16])
		h.HeaderSize = 16
		if h.Size < 16 {
			return Header{}, fmt.Errorf("%w: box %s @ %d: extended size %d below 16", ErrMalformed, h.Type, off, h.Size)
		}
	} else if h.Size < 8 {
		return Header{}, fmt.Errorf("%w: box %s @ %d: size %d below 8", ErrMalformed, h.Type, off, h.Size)
	}

	if remain := src.Size() - off; remain < 0 || h.Size > uint64(remain) {
		return Header{}, fmt.Errorf("%w: box %s @ %d: size %d runs past end of file (%d bytes left)", ErrIO, h.Type, off, h.Size, remain)
	}
	return h, nil
}
