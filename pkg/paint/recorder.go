// Package paint collects and renders the colours a walk assigns to source ranges.
package paint

import (
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/panbanda/livewalk/pkg/walkthrough"
)

// Layer distinguishes background statement colouring from foreground highlights.
type Layer int

const (
	Background Layer = iota
	Foreground
)

func (l Layer) String() string {
	if l == Foreground {
		return "foreground"
	}
	return "background"
}

// Call is a single paint request in the order the walker issued it.
type Call struct {
	Layer Layer
	Color walkthrough.Color
	Range walkthrough.Range
}

// Annotation is the authoritative colour of one source range.
type Annotation struct {
	Role      string `json:"role" toon:"role"`
	Color     string `json:"color" toon:"color"`
	Layer     string `json:"layer" toon:"layer"`
	Start     int    `json:"start" toon:"start"`
	Stop      int    `json:"stop" toon:"stop"`
	StartLine int    `json:"start_line" toon:"start_line"`
	EndLine   int    `json:"end_line" toon:"end_line"`
	Text      string `json:"text,omitempty" toon:"text,omitempty"`

	color walkthrough.Color
}

// Recorder is a walkthrough.Painter that remembers every call. A range painted
// more than once takes the colour of the latest call.
type Recorder struct {
	mu         sync.Mutex
	source     []byte
	lineStarts []int
	calls      []Call
}

// NewRecorder creates a recorder for the given source. Source may be nil, in
// which case annotations carry no text and line numbers are 0.
func NewRecorder(source []byte) *Recorder {
	r := &Recorder{source: source}
	if source != nil {
		r.lineStarts = append(r.lineStarts, 0)
		for i, b := range source {
			if b == '\n' {
				r.lineStarts = append(r.lineStarts, i+1)
			}
		}
	}
	return r
}

// PaintBackground implements walkthrough.Painter.
func (r *Recorder) PaintBackground(c walkthrough.Color, rng walkthrough.Range) {
	r.record(Background, c, rng)
}

// PaintForeground implements walkthrough.Painter.
func (r *Recorder) PaintForeground(c walkthrough.Color, rng walkthrough.Range) {
	r.record(Foreground, c, rng)
}

func (r *Recorder) record(layer Layer, c walkthrough.Color, rng walkthrough.Range) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Layer: layer, Color: c, Range: rng})
}

// Calls returns a copy of every call in issue order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Source returns the source the recorder was created with.
func (r *Recorder) Source() []byte {
	return r.source
}

// RoleAt returns the authoritative background role of a range.
func (r *Recorder) RoleAt(rng walkthrough.Range) (walkthrough.Role, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.calls) - 1; i >= 0; i-- {
		if c := r.calls[i]; c.Layer == Background && c.Range == rng {
			return c.Color.Role, true
		}
	}
	return 0, false
}

type layerRange struct {
	layer Layer
	rng   walkthrough.Range
}

// Annotations returns one entry per painted range and layer, ordered by start
// offset with enclosing ranges before the ranges they contain.
func (r *Recorder) Annotations() []Annotation {
	r.mu.Lock()
	latest := make(map[layerRange]walkthrough.Color, len(r.calls))
	for _, c := range r.calls {
		latest[layerRange{c.Layer, c.Range}] = c.Color
	}
	r.mu.Unlock()

	out := make([]Annotation, 0, len(latest))
	for key, c := range latest {
		out = append(out, r.annotate(key.layer, c, key.rng))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Stop != b.Stop {
			return a.Stop > b.Stop
		}
		return a.Layer < b.Layer
	})
	return out
}

func (r *Recorder) annotate(layer Layer, c walkthrough.Color, rng walkthrough.Range) Annotation {
	a := Annotation{
		Role:      c.Role.String(),
		Color:     c.RGB.Hex(),
		Layer:     layer.String(),
		Start:     rng.Start,
		Stop:      rng.Stop,
		StartLine: r.lineOf(rng.Start),
		EndLine:   r.lineOf(rng.Stop - 1),
		Text:      rng.Slice(r.source),
		color:     c,
	}
	if a.EndLine < a.StartLine {
		a.EndLine = a.StartLine
	}
	return a
}

// lineOf returns the 1-based line holding offset, or 0 without source.
func (r *Recorder) lineOf(offset int) int {
	if len(r.lineStarts) == 0 || offset < 0 {
		return 0
	}
	return sort.Search(len(r.lineStarts), func(i int) bool {
		return r.lineStarts[i] > offset
	})
}

// Lines returns the set of lines touched by background ranges of the given role.
func (r *Recorder) Lines(role walkthrough.Role) *roaring.Bitmap {
	bm := roaring.New()
	for _, a := range r.Annotations() {
		if a.Layer != Background.String() || a.color.Role != role || a.StartLine == 0 {
			continue
		}
		bm.AddRange(uint64(a.StartLine), uint64(a.EndLine)+1)
	}
	return bm
}

// Counts returns how many ranges ended up in each background role.
func (r *Recorder) Counts() map[walkthrough.Role]int {
	counts := make(map[walkthrough.Role]int)
	for _, a := range r.Annotations() {
		if a.Layer == Background.String() {
			counts[a.color.Role]++
		}
	}
	return counts
}
