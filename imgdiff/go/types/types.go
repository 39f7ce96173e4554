// Package types holds the records passed between the stages of an imgdiff run.
package types

import (
	"encoding/json"

	"go.skia.org/imgdiff/go/skerr"
)

// State is the classification of a compared pair.
type State int

const (
	// ByteEqual means the raw file bytes are identical.
	ByteEqual State = iota
	// PixelEqual means the files differ but decode to identical pixels.
	PixelEqual
	// Missing means one side could not be opened.
	Missing
	// Incomparable means decoding failed or the dimensions differ.
	Incomparable
	// Diff means the decoded pixels differ.
	Diff
)

// AllStates lists every State in report order.
var AllStates = []State{ByteEqual, PixelEqual, Missing, Incomparable, Diff}

var stateNames = map[State]string{
	ByteEqual:    "byte-equal",
	PixelEqual:   "pixel-equal",
	Missing:      "missing",
	Incomparable: "incomparable",
	Diff:         "pixel-diff",
}

// String returns the name used in reports and JSON.
func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// ParseState is the inverse of State.String.
func ParseState(name string) (State, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return 0, skerr.Fmt("unknown state %q", name)
}

// MarshalJSON encodes the state by name.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a state name.
func (s *State) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return skerr.Wrap(err)
	}
	parsed, err := ParseState(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// WorkItem is one baseline/candidate pairing. The matcher fills in the
// paths, the comparator writes everything else exactly once.
type WorkItem struct {
	GoodPath string `json:"good"`
	BadPath  string `json:"bad"`

	State State `json:"state"`

	// NumPixels is width*height of the compared images, set once both decoded
	// with equal dimensions.
	NumPixels int `json:"pixels,omitempty"`
	// NumDiffPixels counts pixels where any channel differs.
	NumDiffPixels int `json:"diff_pixels,omitempty"`
	// MaxChannelDelta is the largest single channel difference.
	MaxChannelDelta uint8 `json:"max_channel_delta,omitempty"`
	// MaxRGBADiffs holds the largest difference per channel.
	MaxRGBADiffs [4]int `json:"max_rgba_diffs"`

	// DiffKey names the stored delta image, MaskKey the highlight mask.
	// Either may be empty if storing failed.
	DiffKey string `json:"diff_key,omitempty"`
	MaskKey string `json:"mask_key,omitempty"`
}

// PixelDiffPercent returns the share of differing pixels in [0, 100].
func (w *WorkItem) PixelDiffPercent() float64 {
	if w.NumPixels == 0 {
		return 0
	}
	return 100 * float64(w.NumDiffPixels) / float64(w.NumPixels)
}
