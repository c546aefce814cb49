package zergmgr

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseDocument(t *testing.T) {
	data := []byte(`
; pool config
[overlord]
master = true
plugin = zergpool

[zergling-1]
plugin = python3
plugin = startpaused
logdate
ini-paste = /apps/web.ini
`)

	doc, err := ParseDocument(data)
	if err != nil {
		t.Fatal(err)
	}

	sections := doc.Sections()
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	if sections[0].Name != "overlord" || sections[1].Name != "zergling-1" {
		t.Errorf("section order = %q, %q", sections[0].Name, sections[1].Name)
	}

	sec := doc.Section("zergling-1")
	if sec == nil {
		t.Fatal("zergling-1 section missing")
	}

	// Repeated keys accumulate; Get sees the last value
	if got := sec.GetAll("plugin"); len(got) != 2 || got[0] != "python3" || got[1] != "startpaused" {
		t.Errorf("GetAll(plugin) = %v", got)
	}
	if v, ok := sec.Get("plugin"); !ok || v != "startpaused" {
		t.Errorf("Get(plugin) = %q, %v", v, ok)
	}

	// A bare key is a flag
	if v, ok := sec.Get("logdate"); !ok || v != FlagValue {
		t.Errorf("Get(logdate) = %q, %v", v, ok)
	}

	if v, _ := sec.Get("ini-paste"); v != "/apps/web.ini" {
		t.Errorf("Get(ini-paste) = %q", v)
	}
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		line int
	}{
		{"entry outside section", "master = true\n", 1},
		{"unclosed header", "[overlord\nmaster = true\n", 1},
		{"invalid section name", "\n[bad name]\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.data))
			if err == nil {
				t.Fatal("expected parse error")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error type = %T, want *ParseError", err)
			}
			if perr.Line != tt.line {
				t.Errorf("Line = %d, want %d", perr.Line, tt.line)
			}
		})
	}
}

func TestParseDocumentDuplicateSectionRestarts(t *testing.T) {
	doc, err := ParseDocument([]byte("[a]\nx = 1\n[b]\ny = 2\n[a]\nz = 3\n"))
	if err != nil {
		t.Fatal(err)
	}

	sections := doc.Sections()
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	// The second [a] resets the section but keeps its original position
	if sections[0].Name != "a" {
		t.Errorf("first section = %q, want a", sections[0].Name)
	}
	a := doc.Section("a")
	if _, ok := a.Get("x"); ok {
		t.Error("x survived section restart")
	}
	if v, _ := a.Get("z"); v != "3" {
		t.Errorf("z = %q, want 3", v)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := NewDocument()
	sec := doc.EnsureSection("overlord")
	sec.Append("master", FlagValue)
	sec.Append("master-fifo", "/run/a.fifo")
	sec.Append("master-fifo", "/run/a.fifo.restart")
	sec.AppendFlag("logdate")

	parsed, err := ParseDocument(doc.Marshal())
	if err != nil {
		t.Fatal(err)
	}

	got := parsed.Section("overlord")
	if got == nil {
		t.Fatal("overlord section lost")
	}
	if got.Len() != sec.Len() {
		t.Fatalf("pair count = %d, want %d", got.Len(), sec.Len())
	}
	for i, p := range got.Pairs() {
		want := sec.Pairs()[i]
		if p != want {
			t.Errorf("pair %d = %+v, want %+v", i, p, want)
		}
	}
}

func TestSectionReset(t *testing.T) {
	sec := &Section{Name: "s"}
	sec.Append("plugin", "python3")
	sec.Append("zerg", "/run/zerg.socket")
	sec.Append("plugin", "startpaused")

	sec.Reset("plugin")

	if got := sec.GetAll("plugin"); got != nil {
		t.Errorf("plugin values after Reset = %v", got)
	}
	if v, ok := sec.Get("zerg"); !ok || v != "/run/zerg.socket" {
		t.Errorf("zerg = %q, %v", v, ok)
	}
}

func TestDocumentSetSection(t *testing.T) {
	doc := NewDocument()
	doc.EnsureSection("first").Append("stale", "yes")
	doc.EnsureSection("second")

	doc.SetSection("first", Pair{"fresh", "yes"})

	sec := doc.Section("first")
	if _, ok := sec.Get("stale"); ok {
		t.Error("stale pair survived SetSection")
	}
	if v, _ := sec.Get("fresh"); v != "yes" {
		t.Errorf("fresh = %q", v)
	}
	// Rebuilt section moves to the end
	sections := doc.Sections()
	if sections[len(sections)-1].Name != "first" {
		t.Errorf("last section = %q, want first", sections[len(sections)-1].Name)
	}
}

func TestDocumentDeleteSection(t *testing.T) {
	doc := NewDocument()
	doc.EnsureSection("keep")
	doc.EnsureSection("drop")

	doc.DeleteSection("drop")
	doc.DeleteSection("absent")

	if doc.Has("drop") {
		t.Error("drop still present")
	}
	if !doc.Has("keep") {
		t.Error("keep removed")
	}
}

func TestLoadDocument(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("missing file is empty document", func(t *testing.T) {
		doc, err := LoadDocument(filepath.Join(tmpDir, "absent.ini"))
		if err != nil {
			t.Fatal(err)
		}
		if len(doc.Sections()) != 0 {
			t.Errorf("got %d sections, want 0", len(doc.Sections()))
		}
	})

	t.Run("write then load", func(t *testing.T) {
		path := filepath.Join(tmpDir, "pool.ini")
		doc := NewDocument()
		doc.EnsureSection("overlord").Append("master", FlagValue)
		if err := doc.WriteFile(path); err != nil {
			t.Fatal(err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != FileMode {
			t.Errorf("mode = %v, want %v", info.Mode().Perm(), os.FileMode(FileMode))
		}

		loaded, err := LoadDocument(path)
		if err != nil {
			t.Fatal(err)
		}
		if v, _ := loaded.Section("overlord").Get("master"); v != FlagValue {
			t.Errorf("master = %q", v)
		}
	})
}
