package track_test

import (
	"encoding/json"
	"testing"

	"github.com/tetsuo/mp4probe/track"
)

func TestTrackSetters(t *testing.T) {
	var tr track.Track
	tr.SetVideo("avc1", 1, 640, 480)
	if tr.Kind != track.KindVideo || tr.Width != 640 || tr.Height != 480 {
		t.Errorf("after SetVideo: %+v", tr)
	}
	if got := tr.String(); got != "track 0: video avc1 640x480" {
		t.Errorf("String = %q", got)
	}

	tr.SetAudio("mp4a", 1, 2, 16, 44100)
	if tr.Kind != track.KindAudio || tr.ChannelCount != 2 || tr.SampleRate != 44100 {
		t.Errorf("after SetAudio: %+v", tr)
	}
}

func TestFindLastCount(t *testing.T) {
	tracks := []*track.Track{
		{Index: 1, Kind: track.KindVideo},
		{Index: 2, Kind: track.KindAudio},
		{Index: 3, Kind: track.KindVideo},
		{Index: 4},
	}
	if got := track.Find(tracks, 2); got == nil || got.Kind != track.KindAudio {
		t.Errorf("Find(2) = %+v", got)
	}
	if got := track.Find(tracks, 9); got != nil {
		t.Errorf("Find(9) = %+v, want nil", got)
	}
	if got := track.Last(tracks, track.KindVideo); got == nil || got.Index != 3 {
		t.Errorf("Last(video) = %+v", got)
	}
	if got := track.Last(tracks[:1], track.KindAudio); got != nil {
		t.Errorf("Last(audio) = %+v, want nil", got)
	}
	if got := track.Count(tracks, track.KindVideo); got != 2 {
		t.Errorf("Count(video) = %d, want 2", got)
	}
	if got := track.Count(tracks, track.KindUnknown); got != 1 {
		t.Errorf("Count(unknown) = %d, want 1", got)
	}
}

func TestKindJSON(t *testing.T) {
	b, err := json.Marshal(track.Track{Index: 1, Kind: track.KindAudio, Codec: "mp4a"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), `{"index":1,"kind":"audio","codec":"mp4a"}`; got != want {
		t.Errorf("json = %s, want %s", got, want)
	}

	var back track.Track
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back.Kind != track.KindAudio {
		t.Errorf("decoded kind = %v", back.Kind)
	}
}
