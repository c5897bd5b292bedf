package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/livewalk/pkg/walkthrough"
)

func TestMap(t *testing.T) {
	m := Map{"isEnabled": true, "hasMaf": false}

	v, ok := m.Value("isEnabled")
	assert.True(t, ok)
	assert.True(t, v)

	v, ok = m.Value("hasMaf")
	assert.True(t, ok)
	assert.False(t, v)

	_, ok = m.Value("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"hasMaf", "isEnabled"}, m.Keys())
}

func TestUnknown(t *testing.T) {
	_, ok := Unknown{}.Value("anything")
	assert.False(t, ok)
}

func TestOverlay(t *testing.T) {
	overlay := Overlay{
		Map{"a": false},
		nil,
		Map{"a": true, "b": true},
		Unknown{},
	}

	tests := []struct {
		condition string
		wantValue bool
		wantOK    bool
	}{
		{"a", false, true},
		{"b", true, true},
		{"c", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.condition, func(t *testing.T) {
			v, ok := overlay.Value(tt.condition)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantValue, v)
		})
	}
}

func TestOverlay_SatisfiesValueSource(t *testing.T) {
	var _ walkthrough.ValueSource = Overlay{}
	var _ walkthrough.ValueSource = Map{}
	var _ walkthrough.ValueSource = Unknown{}
	var _ walkthrough.ValueSource = (*File)(nil)
}

func TestParseAssignments(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    Map
		wantErr bool
	}{
		{
			name:  "simple",
			pairs: []string{"isEnabled=true", "hasMaf=0"},
			want:  Map{"isEnabled": true, "hasMaf": false},
		},
		{
			name:  "equality condition splits at last equals",
			pairs: []string{"mode==1=true"},
			want:  Map{"mode==1": true},
		},
		{
			name:  "whitespace dropped from condition",
			pairs: []string{"a && b = false"},
			want:  Map{"a&&b": false},
		},
		{name: "missing value", pairs: []string{"isEnabled"}, wantErr: true},
		{name: "empty condition", pairs: []string{"=true"}, wantErr: true},
		{name: "not a bool", pairs: []string{"x=maybe"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAssignments(tt.pairs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMap_Normalize(t *testing.T) {
	m := Map{"a && b": true, " rpm > 100 ": false}
	assert.Equal(t, Map{"a&&b": true, "rpm>100": false}, m.Normalize())
}
