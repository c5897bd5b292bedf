package progress

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/panbanda/livewalk/pkg/analyzer"
)

func TestTrackerOnFile(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTrackerTo(&buf, "Walking", 2)

	var fn analyzer.ProgressFunc = tr.OnFile
	fn(2, 2, "firmware/knock.cpp")
	fn(1, 2, "firmware/init/init_maf.cpp")

	if got := tr.bar.State().CurrentNum; got != 1 {
		t.Errorf("CurrentNum = %d, want the last reported count", got)
	}
	if !strings.Contains(buf.String(), "knock.cpp") {
		t.Errorf("progress output missing file name: %q", buf.String())
	}

	tr.FinishSuccess()
}

func TestTrackerOnFileGrowsTotal(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTrackerTo(&buf, "Walking", 1)

	tr.OnFile(1, 3, "a.cpp")
	if got := tr.bar.GetMax(); got != 3 {
		t.Errorf("GetMax() = %d, want 3", got)
	}
}

func TestTrackerWarn(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var buf bytes.Buffer
	tr := NewTrackerTo(&buf, "Walking", 1)
	tr.Warn("Skipped %s: %v", "notes.txt", errors.New("unsupported language"))

	if !strings.Contains(buf.String(), "Skipped notes.txt: unsupported language\n") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTrackerFinishError(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTrackerTo(&buf, "Walking", 1)
	tr.OnFile(1, 1, "a.cpp")
	tr.FinishError(errors.New("boom"))

	if !strings.Contains(buf.String(), "Walking error: boom") {
		t.Errorf("output = %q", buf.String())
	}
}
