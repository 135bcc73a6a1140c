// Package track holds per-track records collected while walking an MP4 box
// tree.
package track

import "fmt"

// Kind distinguishes video and audio tracks.
type Kind int

const (
	KindUnknown Kind = iota
	KindVideo
	KindAudio
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	}
	return "unknown"
}

// MarshalText renders the kind by name in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText is the inverse of MarshalText. Unknown names decode as
// KindUnknown.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "video":
		*k = KindVideo
	case "audio":
		*k = KindAudio
	default:
		*k = KindUnknown
	}
	return nil
}

// Track holds the sample-entry facts of one trak box. When a track carries
// several sample entries of one kind, the last one wins.
type Track struct {
	Index int    `json:"index"` // 1-based, in file order
	Kind  Kind   `json:"kind"`
	Codec string `json:"codec,omitempty"` // sample entry type, e.g. "avc1"

	DataReferenceIndex uint16 `json:"dataReferenceIndex,omitempty"`

	Width  uint16 `json:"width,omitempty"`
	Height uint16 `json:"height,omitempty"`

	ChannelCount uint16 `json:"channelCount,omitempty"`
	SampleSize   uint16 `json:"sampleSize,omitempty"`
	SampleRate   uint32 `json:"sampleRate,omitempty"`
}

// SetVideo records a visual sample entry.
func (t *Track) SetVideo(codec string, dataRef, width, height uint16) {
	t.Kind = KindVideo
	t.Codec = codec
	t.DataReferenceIndex = dataRef
	t.Width = width
	t.Height = height
}

// SetAudio records an audio sample entry.
func (t *Track) SetAudio(codec string, dataRef, channels, sampleSize uint16, sampleRate uint32) {
	t.Kind = KindAudio
	t.Codec = codec
	t.DataReferenceIndex = dataRef
	t.ChannelCount = channels
	t.SampleSize = sampleSize
	t.SampleRate = sampleRate
}

func (t *Track) String() string {
	switch t.Kind {
	case KindVideo:
		return fmt.Sprintf("track %d: video %s %dx%d", t.Index, t.Codec, t.Width, t.Height)
	case KindAudio:
		return fmt.Sprintf("track %d: audio %s %d ch %d Hz", t.Index, t.Codec, t.ChannelCount, t.SampleRate)
	}
	return fmt.Sprintf("track %d: unknown", t.Index)
}

// Find returns the track with the given index, or nil.
func Find(tracks []*Track, index int) *Track {
	for _, t := range tracks {
		if t.Index == index {
			return t
		}
	}
	return nil
}

// Last returns the last track of the given kind, or nil.
func Last(tracks []*Track, kind Kind) *Track {
	for i := len(tracks) - 1; i >= 0; i-- {
		if tracks[i].Kind == kind {
			return tracks[i]
		}
	}
	return nil
}

// Count returns the number of tracks of the given kind.
func Count(tracks []*Track, kind Kind) int {
	n := 0
	for _, t := range tracks {
		if t.Kind == kind {
			n++
		}
	}
	return n
}
