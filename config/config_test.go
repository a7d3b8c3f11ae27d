package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("expected a missing file to be a non-error, got %v", err)
	}
	want := Defaults()
	if cfg.Width != want.Width || cfg.TimeSteps != want.TimeSteps || cfg.Axis != want.Axis {
		t.Fatal("expected defaults back for a missing config file")
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Defaults()
	if cfg.Width != want.Width || cfg.TimeSteps != want.TimeSteps || cfg.Axis != want.Axis {
		t.Fatal("expected defaults back for an empty path")
	}
}

func TestSaveThenLoadOverlaysOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := Defaults()
	cfg.TimeSteps = 9999
	cfg.Width = 128

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.TimeSteps != 9999 || loaded.Width != 128 {
		t.Fatalf("expected overridden fields to round-trip, got %+v", loaded)
	}
	// Fields the saved file didn't touch should still carry the defaults.
	if loaded.PixelSize != Defaults().PixelSize {
		t.Fatalf("expected untouched fields to keep their default, got %v", loaded.PixelSize)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("width: [this is not, a scalar\n"), 0o644); err != nil {
		t.Fatalf("test setup failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected malformed YAML to return an error")
	}
}

func TestToParametersWiresSelectedMaterials(t *testing.T) {
	cfg := Defaults()
	cfg.SelectedMaterials = []int{1, 3}

	p, err := cfg.ToParameters()
	if err != nil {
		t.Fatalf("ToParameters failed: %v", err)
	}
	if !p.IsMaterialSelected(1) || !p.IsMaterialSelected(3) {
		t.Fatal("expected materials 1 and 3 to be selected")
	}
	if p.IsMaterialSelected(2) {
		t.Fatal("expected material 2 to be unselected")
	}
}

func TestToParametersRejectsUnknownAxis(t *testing.T) {
	cfg := Defaults()
	cfg.Axis = "w"
	if _, err := cfg.ToParameters(); err == nil {
		t.Fatal("expected an unknown axis string to produce an error")
	}
}

func TestParseAxisAcceptsAllThreeCasesAndDefaultsEmptyToX(t *testing.T) {
	cases := map[string]int{"": 0, "x": 0, "X": 0, "y": 1, "Y": 1, "z": 2, "Z": 2}
	for in, want := range cases {
		axis, err := parseAxis(in)
		if err != nil {
			t.Fatalf("parseAxis(%q) failed: %v", in, err)
		}
		if int(axis) != want {
			t.Fatalf("parseAxis(%q) = %d, want %d", in, axis, want)
		}
	}
}
