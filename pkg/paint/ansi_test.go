package paint

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/livewalk/pkg/walkthrough"
)

func recordSample() (*Recorder, string) {
	src := "void f() {\n\tif (on) {\n\t\tgo();\n\t}\n}\n"
	rec := NewRecorder([]byte(src))
	rec.PaintBackground(palette.Color(walkthrough.RoleTrueCondition), rangeOf(src, "on"))
	rec.PaintBackground(palette.Color(walkthrough.RoleActiveStatement), rangeOf(src, "go();"))
	return rec, src
}

func TestRenderer_Plain(t *testing.T) {
	rec, src := recordSample()

	var buf bytes.Buffer
	require.NoError(t, Renderer{}.Render(&buf, rec))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[1], "true_condition"))
	assert.True(t, strings.HasSuffix(lines[1], "\tif (on) {"))
	assert.True(t, strings.HasPrefix(lines[2], "active_statement"))
	assert.True(t, strings.HasSuffix(lines[2], "\t\tgo();"))
	assert.NotContains(t, buf.String(), "\x1b[")

	// Stripping the tag column gives back the source.
	var rebuilt strings.Builder
	for _, l := range lines {
		rebuilt.WriteString(l[strings.Index(l, "| ")+2:])
		rebuilt.WriteString("\n")
	}
	assert.Equal(t, src, rebuilt.String())
}

func TestRenderer_LineNumbers(t *testing.T) {
	rec, _ := recordSample()

	var buf bytes.Buffer
	require.NoError(t, Renderer{LineNumbers: true}.Render(&buf, rec))

	lines := strings.Split(buf.String(), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "1 "))
	assert.True(t, strings.HasPrefix(lines[2], "3 active_statement"))
}

func TestRenderer_Color(t *testing.T) {
	rec, _ := recordSample()

	var buf bytes.Buffer
	require.NoError(t, Renderer{Color: true}.Render(&buf, rec))

	out := buf.String()
	active := palette.Color(walkthrough.RoleActiveStatement).RGB
	assert.Contains(t, out, "48;2;")
	assert.Contains(t, out, "go();")
	assert.Contains(t, out, strings.Join([]string{"48;2", itoa(active.R), itoa(active.G), itoa(active.B)}, ";"))
	assert.NotContains(t, out, "active_statement")
}

func itoa(v uint8) string {
	return strconv.Itoa(int(v))
}
