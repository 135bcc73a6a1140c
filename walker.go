package mp4

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tetsuo/mp4probe/track"
)

// DefaultMaxDepth bounds container nesting when Options.MaxDepth is zero.
const DefaultMaxDepth = 64

// Options configures a walk.
type Options struct {
	// MaxDepth is the deepest nesting level a box may sit at; top-level
	// boxes are at depth 0.
	MaxDepth int
	// Logger receives a Debug record per visited box. Nil discards.
	Logger *slog.Logger
	// Trace, if set, is called for every visited box before it is parsed.
	Trace func(TraceEntry)
}

// TraceEntry describes one visited box.
type TraceEntry struct {
	Type   BoxType
	Offset int64
	Size   uint64
	Depth  int
	// UserType is the extended type of uuid boxes, uuid.Nil otherwise.
	UserType uuid.UUID
}

// WriteTrace returns a trace func printing one indented line per box to w.
func WriteTrace(w io.Writer) func(TraceEntry) {
	return func(e TraceEntry) {
		indent := strings.Repeat("    ", e.Depth)
		if e.UserType != uuid.Nil {
			fmt.Fprintf(w, "%sbox: %s @ %d size %d usertype %s\n", indent, e.Type, e.Offset, e.Size, e.UserType)
			return
		}
		fmt.Fprintf(w, "%sbox: %s @ %d size %d\n", indent, e.Type, e.Offset, e.Size)
	}
}

type boxClass uint8

const (
	classOpaque boxClass = iota
	classContainer
	classSampleDescription
	classAudioEntry
	classVideoEntry
	classMovieHeader
)

// boxClasses decides how each tag is parsed. Tags missing from the table
// are opaque.
var boxClasses = map[BoxType]boxClass{
	TypeMoov: classContainer,
	TypeTrak: classContainer,
	TypeMdia: classContainer,
	TypeMinf: classContainer,
	TypeDinf: classContainer,
	TypeStbl: classContainer,
	TypeMvex: classContainer,
	TypeMoof: classContainer,
	TypeTraf: classContainer,
	TypeMfra: classContainer,
	TypeUdta: classContainer,
	TypeIlst: classContainer,

	TypeStsd: classSampleDescription,

	TypeMp4a: classAudioEntry,
	TypeSamr: classAudioEntry,
	TypeSawb: classAudioEntry,

	TypeMp4v: classVideoEntry,
	TypeS263: classVideoEntry,
	TypeH263: classVideoEntry,
	Typeh263: classVideoEntry,
	TypeAvc1: classVideoEntry,

	TypeMvhd: classMovieHeader,

	TypeTkhd: classOpaque,
	TypeStco: classOpaque,
	TypeCo64: classOpaque,
	TypeStsc: classOpaque,
	TypeStsz: classOpaque,
	TypeStz2: classOpaque,
	TypeStts: classOpaque,
	TypeCtts: classOpaque,
	TypeStss: classOpaque,
	TypeEsds: classOpaque,
	TypeAvcC: classOpaque,
	TypeD263: classOpaque,
	TypeMeta: classOpaque,
	TypeMean: classOpaque,
	TypeName: classOpaque,
	TypeData: classOpaque,
	TypeMdat: classOpaque,
	TypeHdlr: classOpaque,
	TypeTx3g: classOpaque,
	TypeDash: classOpaque,
	TypeXyz:  classOpaque,
}

// IsContainerBox reports whether t is walked as a plain sequence of
// child boxes.
func IsContainerBox(t BoxType) bool {
	return boxClasses[t] == classContainer
}

type walker struct {
	src      Source
	log      *slog.Logger
	trace    func(TraceEntry)
	maxDepth int

	meta *Metadata
	cur  *track.Track // innermost open trak
}

// Walk parses every top-level box of src and returns the metadata found.
//
// The walk ends normally at end of file, or when fewer bytes remain than a
// box header needs. On error the metadata gathered so far is returned with
// it.
func Walk(src Source, opts Options) (*Metadata, error) {
	w := &walker{
		src:      src,
		log:      opts.Logger,
		trace:    opts.Trace,
		maxDepth: opts.MaxDepth,
		meta:     &Metadata{},
	}
	if w.log == nil {
		w.log = slog.New(slog.DiscardHandler)
	}
	if w.maxDepth <= 0 {
		w.maxDepth = DefaultMaxDepth
	}

	size := src.Size()
	off := int64(0)
	for off < size {
		h, err := ReadHeader(src, off)
		if errors.Is(err, errShortRead) {
			w.meta.TrailingBytes = size - off
			w.log.Debug("trailing bytes", "offset", off, "count", w.meta.TrailingBytes)
			break
		}
		if err != nil {
			return w.meta, err
		}
		if err := w.enter(h, size, 0); err != nil {
			return w.meta, err
		}
		off = h.End()
	}
	return w.meta, nil
}

// walkRange dispatches the boxes that tile [start, stop) inside parent.
func (w *walker) walkRange(parent Header, start, stop int64, depth int) error {
	off := start
	for off < stop {
		next, err := w.walkOne(off, stop, depth)
		if err != nil {
			return fmt.Errorf("in %s: %w", parent.Type, err)
		}
		off = next
	}
	if off != stop {
		return fmt.Errorf("%w: box %s @ %d: children end at %d, box ends at %d", ErrMalformed, parent.Type, parent.Offset, off, stop)
	}
	return nil
}

// walkOne parses the box at off, which must end at or before stop, and
// returns the offset just past it.
func (w *walker) walkOne(off, stop int64, depth int) (int64, error) {
	h, err := ReadHeader(w.src, off)
	if err != nil {
		return off, err
	}
	if err := w.enter(h, stop, depth); err != nil {
		return off, err
	}
	return h.End(), nil
}

func (w *walker) enter(h Header, stop int64, depth int) error {
	if h.End() > stop {
		return fmt.Errorf("%w: box %s @ %d: size %d overruns parent ending at %d", ErrMalformed, h.Type, h.Offset, h.Size, stop)
	}
	if depth > w.maxDepth {
		return fmt.Errorf("%w: box %s @ %d: nested deeper than %d", ErrMalformed, h.Type, h.Offset, w.maxDepth)
	}
	if err := w.visit(h, depth); err != nil {
		return err
	}
	return w.dispatch(h, depth)
}

func (w *walker) visit(h Header, depth int) error {
	e := TraceEntry{Type: h.Type, Offset: h.Offset, Size: h.Size, Depth: depth}
	if h.Type == TypeUUID && h.DataSize() >= 16 && w.trace != nil {
		var ut [16]byte
		if err := readAt(w.src, ut[:], h.DataOffset()); err != nil {
			return err
		}
		e.UserType = uuid.UUID(ut)
	}
	w.log.Debug("box", "type", h.Type.String(), "offset", h.Offset, "size", h.Size, "depth", depth)
	if w.trace != nil {
		w.trace(e)
	}
	return nil
}

func (w *walker) dispatch(h Header, depth int) error {
	switch boxClasses[h.Type] {
	case classContainer:
		if h.Type == TypeTrak {
			parent := w.cur
			w.cur = w.meta.openTrack()
			defer func() { w.cur = parent }()
		}
		return w.walkRange(h, h.DataOffset(), h.End(), depth+1)
	case classSampleDescription:
		return w.parseStsd(h, depth)
	case classAudioEntry:
		return w.parseAudioEntry(h, depth)
	case classVideoEntry:
		return w.parseVisualEntry(h, depth)
	case classMovieHeader:
		return w.parseMvhd(h)
	}
	return nil
}
