package layermap

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/gdsii/design"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    []Pair
		wantErr bool
	}{
		{in: "5,0", want: []Pair{{5, 0}}},
		{in: " 49 , 25 ", want: []Pair{{49, 25}}},
		{in: "1,2,3,4", want: []Pair{{1, 2}, {3, 4}}},
		{in: "7", want: []Pair{{7, 0}}},
		{in: "1,2,3", want: []Pair{{1, 2}, {3, 0}}},
		{in: "65535,65535", want: []Pair{{65535, 65535}}},
		{in: "", wantErr: true},
		{in: "5,", wantErr: true},
		{in: "a,0", wantErr: true},
		{in: "65536,0", wantErr: true},
		{in: "-1,0", wantErr: true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q): expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.in, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("Parse(%q): got %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Parse(%q)[%d]: got %v, want %v", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func testFoundry() (*design.Foundry, map[string]*design.Layer) {
	layers := map[string]*design.Layer{
		"metal1": {Name: "metal1"},
		"metal2": {Name: "metal2"},
		"via":    {Name: "via"},
		"bad":    {Name: "bad"},
		"pseudo": {Name: "pseudo", Pseudo: true},
		"badpin": {Name: "badpin"},
	}
	f := &design.Foundry{
		Name: "mosis",
		Layers: map[string]design.LayerMapping{
			"metal1": {GDS: "49,0", Text: "49,25", Pin: "49,2"},
			"metal2": {GDS: "51,0"},
			"via":    {GDS: "50,0,50,1"},
			"bad":    {GDS: "x"},
			"badpin": {GDS: "60,0", Pin: "y"},
		},
	}
	return f, layers
}

func TestResolve(t *testing.T) {
	f, layers := testFoundry()
	r := New(f, nil)

	m1 := r.Resolve(layers["metal1"])
	if !m1.Valid() || m1.Pairs[0] != (Pair{49, 0}) {
		t.Errorf("metal1: got %+v", m1)
	}
	if m1.Text == nil || *m1.Text != (Pair{49, 25}) {
		t.Errorf("metal1 text: got %v", m1.Text)
	}
	if m1.Pin == nil || *m1.Pin != (Pair{49, 2}) {
		t.Errorf("metal1 pin: got %v", m1.Pin)
	}

	m2 := r.Resolve(layers["metal2"])
	if !m2.Valid() || m2.Text != nil || m2.Pin != nil {
		t.Errorf("metal2: got %+v", m2)
	}

	via := r.Resolve(layers["via"])
	if len(via.Pairs) != 2 || via.Pairs[1] != (Pair{50, 1}) {
		t.Errorf("via: got %+v", via)
	}

	if r.Resolve(layers["bad"]).Valid() {
		t.Error("bad mapping should be invalid")
	}
	if r.Resolve(layers["pseudo"]).Valid() {
		t.Error("unmapped pseudo layer should be invalid")
	}
	if r.Resolve(nil).Valid() {
		t.Error("nil layer should be invalid")
	}

	badpin := r.Resolve(layers["badpin"])
	if !badpin.Valid() || badpin.Pin != nil {
		t.Errorf("badpin: got %+v", badpin)
	}
}

func TestResolveCachesPerRun(t *testing.T) {
	f, layers := testFoundry()
	r := New(f, nil)

	first := r.Resolve(layers["metal2"])
	f.Layers["metal2"] = design.LayerMapping{GDS: "99,9"}
	second := r.Resolve(layers["metal2"])
	if second.Pairs[0] != first.Pairs[0] {
		t.Errorf("resolution changed within a run: %v -> %v", first.Pairs[0], second.Pairs[0])
	}
	if r.Len() != 1 {
		t.Errorf("Len: got %d, want 1", r.Len())
	}

	fresh := New(f, nil)
	if got := fresh.Resolve(layers["metal2"]).Pairs[0]; got != (Pair{99, 9}) {
		t.Errorf("new resolver: got %v", got)
	}
}

func TestResolveDiagnostics(t *testing.T) {
	f, layers := testFoundry()
	core, logs := observer.New(zap.DebugLevel)
	r := New(f, zap.New(core))

	r.Resolve(layers["pseudo"])
	r.Resolve(layers["pseudo"])
	r.Resolve(layers["bad"])

	if n := logs.FilterMessage("layer has no GDS mapping").Len(); n != 1 {
		t.Errorf("pseudo diagnostics: got %d, want 1", n)
	}
	if n := logs.FilterMessage("invalid GDS mapping, layer not written").Len(); n != 1 {
		t.Errorf("invalid mapping diagnostics: got %d, want 1", n)
	}
}

func TestNilFoundry(t *testing.T) {
	r := New(nil, nil)
	if r.Resolve(&design.Layer{Name: "m1"}).Valid() {
		t.Error("nil foundry should resolve nothing")
	}
}
