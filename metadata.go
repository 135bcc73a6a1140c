package mp4

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/tetsuo/mp4probe/track"
)

// Metadata accumulates presentation-level facts found while walking a file.
// Each Walk builds its own Metadata.
type Metadata struct {
	TrackCount uint32 `json:"trackCount"`
	HasVideo   bool   `json:"hasVideo"`
	HasAudio   bool   `json:"hasAudio"`

	// Set by mvhd. Times are seconds since 1904-01-01 UTC.
	Duration         uint64 `json:"duration"` // seconds
	Timescale        uint32 `json:"timescale,omitempty"`
	DurationUnits    uint64 `json:"durationUnits,omitempty"`
	CreationTime     int64  `json:"creationTime"`
	ModificationTime int64  `json:"modificationTime"`

	// Last video and audio sample entries seen.
	Width      uint16 `json:"width,omitempty"`
	Height     uint16 `json:"height,omitempty"`
	Channels   uint16 `json:"channels,omitempty"`
	SampleRate uint32 `json:"sampleRate,omitempty"`

	Tracks []*track.Track `json:"tracks,omitempty"`

	// TrailingBytes counts bytes after the last top-level box that were
	// too few to hold a box header.
	TrailingBytes int64 `json:"trailingBytes,omitempty"`
}

// Created returns CreationTime as a time.Time.
func (m *Metadata) Created() time.Time { return MP4Time(m.CreationTime) }

// Modified returns ModificationTime as a time.Time.
func (m *Metadata) Modified() time.Time { return MP4Time(m.ModificationTime) }

func (m *Metadata) openTrack() *track.Track {
	m.TrackCount++
	t := &track.Track{Index: len(m.Tracks) + 1}
	m.Tracks = append(m.Tracks, t)
	return t
}

// WriteSummary prints a human-readable summary of the presentation.
func (m *Metadata) WriteSummary(w io.Writer) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, "summary of this presentation\n")
	fmt.Fprintf(&b, "  duration: %d s\n", m.Duration)
	fmt.Fprintf(&b, "  created at: %s\n", FormatMP4Time(m.CreationTime))
	fmt.Fprintf(&b, "  last modified at: %s\n", FormatMP4Time(m.ModificationTime))
	fmt.Fprintf(&b, "  has %d track(s)\n", m.TrackCount)

	if m.HasVideo {
		fmt.Fprintf(&b, "    video track info:\n")
		fmt.Fprintf(&b, "      width: %d\n", m.Width)
		fmt.Fprintf(&b, "      height: %d\n", m.Height)
	}
	if m.HasAudio {
		fmt.Fprintf(&b, "    audio track info:\n")
		fmt.Fprintf(&b, "      channels: %d\n", m.Channels)
		fmt.Fprintf(&b, "      sample rate: %d Hz\n", m.SampleRate)
	}
	if len(m.Tracks) > 1 {
		for _, t := range m.Tracks {
			fmt.Fprintf(&b, "  %s\n", t)
		}
	}
	if m.TrailingBytes > 0 {
		fmt.Fprintf(&b, "  %d trailing byte(s) ignored\n", m.TrailingBytes)
	}

	_, err := w.Write(b.Bytes())
	return err
}
