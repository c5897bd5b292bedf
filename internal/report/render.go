// Package report renders a walk as a standalone HTML page with each file's
// source painted the way an editor overlay would show it.
package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/panbanda/livewalk/pkg/analyzer/liveness"
	"github.com/panbanda/livewalk/pkg/paint"
	"github.com/panbanda/livewalk/pkg/walkthrough"
)

//go:embed template.html
var templateFS embed.FS

// Metadata describes where a report came from.
type Metadata struct {
	Title       string
	Values      string // values document or revision the walk used
	Version     string
	GeneratedAt time.Time
}

// RenderData contains all data needed to render the report.
type RenderData struct {
	Metadata         Metadata
	Stats            []Stat
	Legend           []LegendEntry
	Files            []FileView
	BrokenConditions []string
	UnknownFields    []string
}

// Stat is a labelled headline number.
type Stat struct {
	Label string
	Value int
}

// LegendEntry shows one role's colour.
type LegendEntry struct {
	Role  string
	Hex   string
	Lines int
}

// FileView is one walked file.
type FileView struct {
	Path             string
	Anchor           string
	BrokenConditions []string
	ConfigFields     []string
	Lines            []paint.StyledLine
}

// Renderer generates HTML reports.
type Renderer struct {
	tmpl    *template.Template
	palette walkthrough.Palette
}

// NewRenderer creates a renderer that colours roles from p.
func NewRenderer(p walkthrough.Palette) (*Renderer, error) {
	printer := message.NewPrinter(language.English)
	title := cases.Title(language.English)

	funcMap := template.FuncMap{
		"num": func(n int) string {
			return printer.Sprintf("%d", n)
		},
		"title": func(s string) string {
			return title.String(strings.ReplaceAll(s, "_", " "))
		},
		"segmentStyle": func(seg paint.Segment) template.CSS {
			var b strings.Builder
			if seg.Background != nil {
				fmt.Fprintf(&b, "background:%s;", seg.Background.RGB.Hex())
			}
			if seg.Foreground != nil {
				fmt.Fprintf(&b, "color:%s;font-weight:bold;", seg.Foreground.RGB.Hex())
			}
			return template.CSS(b.String())
		},
		"segmentRole": func(seg paint.Segment) string {
			switch {
			case seg.Foreground != nil:
				return seg.Foreground.Role.String()
			case seg.Background != nil:
				return seg.Background.Role.String()
			default:
				return ""
			}
		},
	}

	tmplContent, err := templateFS.ReadFile("template.html")
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("report").Funcs(funcMap).Parse(string(tmplContent))
	if err != nil {
		return nil, err
	}

	return &Renderer{tmpl: tmpl, palette: p}, nil
}

// Render writes the analysis as HTML.
func (r *Renderer) Render(w io.Writer, a *liveness.Analysis, meta Metadata) error {
	return r.tmpl.Execute(w, r.data(a, meta))
}

// RenderToFile writes the analysis as HTML to path.
func (r *Renderer) RenderToFile(path string, a *liveness.Analysis, meta Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Render(f, a, meta); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (r *Renderer) data(a *liveness.Analysis, meta Metadata) *RenderData {
	if meta.Title == "" {
		meta.Title = "Branch liveness"
	}
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = a.AnalyzedAt
	}

	data := &RenderData{
		Metadata: meta,
		Stats: []Stat{
			{"Files", a.Summary.TotalFiles},
			{"Functions", a.Summary.TotalFunctions},
			{"Broken conditions", len(a.Summary.BrokenConditions)},
			{"Config fields", len(a.Summary.ConfigFields)},
		},
		BrokenConditions: a.Summary.BrokenConditions,
		UnknownFields:    a.Summary.UnknownFields,
	}

	for _, role := range walkthrough.Roles() {
		data.Legend = append(data.Legend, LegendEntry{
			Role:  role.String(),
			Hex:   r.palette.Color(role).RGB.Hex(),
			Lines: a.Summary.Lines[role.String()],
		})
	}

	for i := range a.Files {
		fr := &a.Files[i]
		view := FileView{
			Path:             fr.Path,
			Anchor:           fmt.Sprintf("file-%d", i+1),
			BrokenConditions: fr.BrokenConditions,
		}
		seen := make(map[string]bool)
		for _, f := range fr.ConfigFields {
			if !seen[f.Name] {
				seen[f.Name] = true
				view.ConfigFields = append(view.ConfigFields, f.Name)
			}
		}
		if rec := fr.Recorder(); rec != nil {
			view.Lines = rec.Styled()
		}
		data.Files = append(data.Files, view)
	}

	return data
}
