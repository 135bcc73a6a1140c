package mp4_test

import (
	"bytes"
	"encoding/binary"

	"github.com/tetsuo/mp4probe"
)

// builder assembles box trees in memory. start/end nest; sizes are
// patched in end.
type builder struct {
	buf   []byte
	stack []int
}

func (b *builder) start(typ string) *builder {
	b.stack = append(b.stack, len(b.buf))
	b.buf = binary.BigEndian.AppendUint32(b.buf, 0)
	b.buf = append(b.buf, typ[:4]...)
	return b
}

func (b *builder) end() *builder {
	i := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	binary.BigEndian.PutUint32(b.buf[i:], uint32(len(b.buf)-i))
	return b
}

func (b *builder) raw(p ...byte) *builder {
	b.buf = append(b.buf, p...)
	return b
}

func (b *builder) leaf(typ string, payload []byte) *builder {
	return b.start(typ).raw(payload...).end()
}

func (b *builder) bytes() []byte { return b.buf }

func (b *builder) source() *bytes.Reader { return bytes.NewReader(b.buf) }

func be16(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }
func be32(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }
func be64(v uint64) []byte { return binary.BigEndian.AppendUint64(nil, v) }

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// mvhdV0 is a 32-byte version 0 movie header prefix.
func mvhdV0(ctime, mtime, timescale, duration uint32) []byte {
	return cat([]byte{0, 0, 0, 0}, be32(ctime), be32(mtime), be32(timescale), be32(duration), make([]byte, 12))
}

// mvhdV1 is a 32-byte version 1 movie header prefix.
func mvhdV1(ctime, mtime uint64, timescale uint32, duration uint64) []byte {
	return cat([]byte{1, 0, 0, 0}, be64(ctime), be64(mtime), be32(timescale), be64(duration))
}

// audioEntry is the 28-byte AudioSampleEntry prefix.
func audioEntry(channels, sampleSize uint16, rate uint32) []byte {
	return cat(make([]byte, 6), be16(1), make([]byte, 8), be16(channels), be16(sampleSize), make([]byte, 4), be32(rate<<16))
}

// visualEntry is the 78-byte VisualSampleEntry prefix.
func visualEntry(width, height uint16) []byte {
	p := cat(make([]byte, 6), be16(1), make([]byte, 16), be16(width), be16(height))
	return append(p, make([]byte, 78-len(p))...)
}

func stsdHeader(vf, count uint32) []byte {
	return cat(be32(vf), be32(count))
}

// collect returns a trace func appending to entries.
func collect(entries *[]mp4.TraceEntry) func(mp4.TraceEntry) {
	return func(e mp4.TraceEntry) { *entries = append(*entries, e) }
}
