package paint

import "github.com/panbanda/livewalk/pkg/walkthrough"

// Multi fans every paint call out to each painter in order.
type Multi []walkthrough.Painter

// PaintBackground implements walkthrough.Painter.
func (m Multi) PaintBackground(c walkthrough.Color, r walkthrough.Range) {
	for _, p := range m {
		if p != nil {
			p.PaintBackground(c, r)
		}
	}
}

// PaintForeground implements walkthrough.Painter.
func (m Multi) PaintForeground(c walkthrough.Color, r walkthrough.Range) {
	for _, p := range m {
		if p != nil {
			p.PaintForeground(c, r)
		}
	}
}
