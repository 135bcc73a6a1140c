package mp4

import "fmt"

// Fixed payload prefixes of the typed leaf boxes.
const (
	stsdHeaderLen   = 8  // version+flags, entry_count
	audioEntryLen   = 28 // SampleEntry + AudioSampleEntry fields
	visualEntryLen  = 78 // SampleEntry + VisualSampleEntry fields
	mvhdHeaderLen   = 32 // version+flags through duration (v1 layout)
	sampleEntryBase = 8  // reserved[6], data_reference_index
)

func malformed(h Header, format string, args ...any) error {
	return fmt.Errorf("%w: box %s @ %d: %s", ErrMalformed, h.Type, h.Offset, fmt.Sprintf(format, args...))
}

// --- stsd ---

// parseStsd walks exactly entry_count sample entries.
func (w *walker) parseStsd(h Header, depth int) error {
	if h.DataSize() < stsdHeaderLen {
		return malformed(h, "payload %d shorter than %d", h.DataSize(), stsdHeaderLen)
	}
	var b [stsdHeaderLen]byte
	if err := readAt(w.src, b[:], h.DataOffset()); err != nil {
		return err
	}
	if vf := u32(b[0:4]); vf != 0 {
		return malformed(h, "version/flags 0x%08x, want 0", vf)
	}
	count := u32(b[4:8])

	off := h.DataOffset() + stsdHeaderLen
	stop := h.End()
	for i := uint32(0); i < count; i++ {
		if off >= stop {
			return malformed(h, "entry %d of %d starts at box end", i+1, count)
		}
		next, err := w.walkOne(off, stop, depth+1)
		if err != nil {
			return fmt.Errorf("in %s: %w", h.Type, err)
		}
		off = next
	}
	if off != stop {
		return malformed(h, "%d entries end at %d, box ends at %d", count, off, stop)
	}
	return nil
}

// --- mp4a, samr, sawb / AudioSampleEntry ---

func (w *walker) parseAudioEntry(h Header, depth int) error {
	w.meta.HasAudio = true
	if h.DataSize() < audioEntryLen {
		return malformed(h, "audio sample entry payload %d shorter than %d", h.DataSize(), audioEntryLen)
	}
	var b [audioEntryLen]byte
	if err := readAt(w.src, b[:], h.DataOffset()); err != nil {
		return err
	}
	dataRef := u16(b[6:8])
	channels := u16(b[16:18])
	sampleSize := u16(b[18:20])
	sampleRate := u32(b[24:28]) >> 16 // 16.16 fixed point

	w.meta.Channels = channels
	w.meta.SampleRate = sampleRate
	if w.cur != nil {
		w.cur.SetAudio(h.Type.String(), dataRef, channels, sampleSize, sampleRate)
	}
	w.log.Debug("audio sample entry", "type", h.Type.String(), "channels", channels, "sampleSize", sampleSize, "sampleRate", sampleRate)

	return w.walkRange(h, h.DataOffset()+audioEntryLen, h.End(), depth+1)
}

// --- mp4v, s263, H263, h263, avc1 / VisualSampleEntry ---

func (w *walker) parseVisualEntry(h Header, depth int) error {
	w.meta.HasVideo = true
	if h.DataSize() < visualEntryLen {
		return malformed(h, "visual sample entry payload %d shorter than %d", h.DataSize(), visualEntryLen)
	}
	var b [visualEntryLen]byte
	if err := readAt(w.src, b[:], h.DataOffset()); err != nil {
		return err
	}
	dataRef := u16(b[6:8])
	width := u16(b[sampleEntryBase+16:])
	height := u16(b[sampleEntryBase+18:])

	w.meta.Width = width
	w.meta.Height = height
	if w.cur != nil {
		w.cur.SetVideo(h.Type.String(), dataRef, width, height)
	}
	w.log.Debug("visual sample entry", "type", h.Type.String(), "width", width, "height", height)

	return w.walkRange(h, h.DataOffset()+visualEntryLen, h.End(), depth+1)
}

// --- mvhd ---

// parseMvhd reads the times, timescale and duration of the movie header.
// Metadata is only touched once the header is known to be valid.
func (w *walker) parseMvhd(h Header) error {
	if h.DataSize() < mvhdHeaderLen {
		return malformed(h, "payload %d shorter than %d", h.DataSize(), mvhdHeaderLen)
	}
	var b [mvhdHeaderLen]byte
	if err := readAt(w.src, b[:], h.DataOffset()); err != nil {
		return err
	}

	var (
		ctime, mtime int64
		timescale    uint32
		units        uint64
	)
	switch version := b[0]; version {
	case 1:
		ctime = int64(u64(b[4:12]))
		mtime = int64(u64(b[12:20]))
		timescale = u32(b[20:24])
		units = u64(b[24:32])
	case 0:
		ctime = int64(u32(b[4:8]))
		mtime = int64(u32(b[8:12]))
		timescale = u32(b[12:16])
		units = uint64(u32(b[16:20]))
	default:
		return malformed(h, "unsupported version %d", version)
	}
	if timescale == 0 {
		return malformed(h, "timescale is 0")
	}

	m := w.meta
	m.CreationTime = ctime
	m.ModificationTime = mtime
	m.Timescale = timescale
	m.DurationUnits = units
	m.Duration = units / uint64(timescale)
	w.log.Debug("movie header", "timescale", timescale, "duration", m.Duration)
	return nil
}
