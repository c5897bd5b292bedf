package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/panbanda/livewalk/pkg/analyzer/liveness"
	"github.com/panbanda/livewalk/pkg/paint"
	"github.com/panbanda/livewalk/pkg/walkthrough"
)

// LivenessReport renders a liveness analysis as tables plus, optionally, the
// annotated source of every file.
type LivenessReport struct {
	Analysis    *liveness.Analysis
	Palette     walkthrough.Palette
	ShowSource  bool
	LineNumbers bool
}

// NewLivenessReport wraps an analysis for output.
func NewLivenessReport(a *liveness.Analysis, p walkthrough.Palette, showSource, lineNumbers bool) *LivenessReport {
	return &LivenessReport{Analysis: a, Palette: p, ShowSource: showSource, LineNumbers: lineNumbers}
}

func (r *LivenessReport) RenderData() any {
	return r.Analysis
}

func (r *LivenessReport) RenderText(w io.Writer, colored bool) error {
	if r.ShowSource {
		for i := range r.Analysis.Files {
			fr := &r.Analysis.Files[i]
			if fr.Recorder() == nil {
				continue
			}
			if colored {
				color.New(color.Bold).Fprintln(w, fr.Path)
			} else {
				fmt.Fprintln(w, fr.Path)
			}
			fmt.Fprintln(w, strings.Repeat("-", len(fr.Path)))
			rn := paint.Renderer{Color: colored, LineNumbers: r.LineNumbers}
			if err := rn.Render(w, fr.Recorder()); err != nil {
				return err
			}
			fmt.Fprintln(w)
		}
	}

	for _, t := range r.tables(colored) {
		if err := t.RenderText(w, colored); err != nil {
			return err
		}
	}
	return nil
}

func (r *LivenessReport) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "# Liveness\n\n")

	if r.ShowSource {
		for i := range r.Analysis.Files {
			fr := &r.Analysis.Files[i]
			if fr.Recorder() == nil {
				continue
			}
			fmt.Fprintf(w, "### %s\n\n```\n", fr.Path)
			rn := paint.Renderer{LineNumbers: r.LineNumbers}
			if err := rn.Render(w, fr.Recorder()); err != nil {
				return err
			}
			fmt.Fprintf(w, "```\n\n")
		}
	}

	for _, t := range r.tables(false) {
		if err := t.RenderMarkdown(w); err != nil {
			return err
		}
	}
	return nil
}

func (r *LivenessReport) tables(colored bool) []*Table {
	s := r.Analysis.Summary

	var roleRows [][]string
	for _, role := range walkthrough.Roles() {
		name := role.String()
		ranges, lines := s.Ranges[name], s.Lines[name]
		if ranges == 0 && lines == 0 {
			continue
		}
		label := name
		if colored {
			label = RoleColor(r.Palette.Color(role).RGB.Hex(), name)
		}
		roleRows = append(roleRows, []string{label, strconv.Itoa(ranges), strconv.Itoa(lines)})
	}

	tables := []*Table{
		NewTable(
			"Liveness Summary",
			[]string{"Role", "Ranges", "Lines"},
			roleRows,
			[]string{fmt.Sprintf("%d files", s.TotalFiles), fmt.Sprintf("%d functions", s.TotalFunctions), ""},
			s,
		),
	}

	if len(s.BrokenConditions) > 0 {
		files := make(map[string][]string)
		for _, fr := range r.Analysis.Files {
			for _, c := range uniq(fr.BrokenConditions) {
				files[c] = append(files[c], fr.Path)
			}
		}
		rows := make([][]string, 0, len(s.BrokenConditions))
		for _, c := range s.BrokenConditions {
			rows = append(rows, []string{c, strings.Join(files[c], ", ")})
		}
		tables = append(tables, NewTable("Unresolved Conditions", []string{"Condition", "Files"}, rows, nil, s.BrokenConditions))
	}

	var fieldRows [][]string
	for _, fr := range r.Analysis.Files {
		for _, f := range fr.ConfigFields {
			known := "yes"
			if !f.Known {
				known = "no"
			}
			fieldRows = append(fieldRows, []string{f.Name, fmt.Sprintf("%s:%d:%d", fr.Path, f.Line, f.Column), known})
		}
	}
	if len(fieldRows) > 0 {
		tables = append(tables, NewTable("Configuration Fields", []string{"Field", "Location", "Known"}, fieldRows, nil, s.ConfigFields))
	}

	return tables
}

func uniq(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// RoleColor colours text with a #rrggbb palette colour.
func RoleColor(hex, text string) string {
	rgb, err := walkthrough.ParseRGB(hex)
	if err != nil {
		return text
	}
	return color.RGB(int(rgb.R), int(rgb.G), int(rgb.B)).Sprint(text)
}
