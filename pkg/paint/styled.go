package paint

import (
	"strings"

	"github.com/panbanda/livewalk/pkg/walkthrough"
)

// Segment is a run of source bytes sharing one background and foreground.
// A nil colour means the run was left unpainted on that layer.
type Segment struct {
	Text       string
	Background *walkthrough.Color
	Foreground *walkthrough.Color
}

// StyledLine is one source line, without its newline, split into segments.
type StyledLine struct {
	Number   int
	Role     string // background role of a statement starting on this line
	Segments []Segment
}

// Styled resolves the recorded annotations onto the source, line by line.
func (r *Recorder) Styled() []StyledLine {
	source := r.Source()
	bgs := make([]*walkthrough.Color, len(source))
	fgs := make([]*walkthrough.Color, len(source))
	lineRole := make(map[int]string)

	// Annotations come outer first, so inner ranges overwrite their parents.
	for _, a := range r.Annotations() {
		c := a.color
		target := bgs
		if a.Layer == Foreground.String() {
			target = fgs
		} else if a.StartLine > 0 {
			lineRole[a.StartLine] = a.Role
		}
		for i := max(a.Start, 0); i < a.Stop && i < len(source); i++ {
			target[i] = &c
		}
	}

	lines := strings.SplitAfter(string(source), "\n")
	styled := make([]StyledLine, 0, len(lines))
	offset := 0
	for n, line := range lines {
		if line == "" {
			continue
		}
		text := strings.TrimSuffix(line, "\n")
		sl := StyledLine{Number: n + 1, Role: lineRole[n+1]}
		for start := 0; start < len(text); {
			bg, fg := bgs[offset+start], fgs[offset+start]
			end := start + 1
			for end < len(text) && bgs[offset+end] == bg && fgs[offset+end] == fg {
				end++
			}
			sl.Segments = append(sl.Segments, Segment{Text: text[start:end], Background: bg, Foreground: fg})
			start = end
		}
		styled = append(styled, sl)
		offset += len(line)
	}
	return styled
}
