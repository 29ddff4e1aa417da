package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIdentifierKnownAndFallback(t *testing.T) {
	if got := Identifier("com.apple.finder.plist"); got != "apple-finder" {
		t.Fatalf("got %q", got)
	}
	if got := Identifier("com.example.custom.plist"); got != "com.example.custom.plist" {
		t.Fatalf("expected fallback to filename, got %q", got)
	}
}

func TestLoadArtifactDefinitionsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "defs.yaml")
	content := "artifact_definition: MacOSFinderPlistFile\n" +
		"property_list_identifier: com.apple.finder.plist\n" +
		"---\n" +
		"artifact_definition: MacOSDockPlistFile\n" +
		"property_list_identifier: com.apple.dock.plist\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r := New()
	if err := r.LoadArtifactDefinitions(path); err != nil {
		t.Fatalf("LoadArtifactDefinitions: %v", err)
	}
	if r.Len() != 2 {
		t.Fatalf("got %d definitions, want 2", r.Len())
	}
	def, ok := r.Lookup("com.apple.finder.plist")
	if !ok || def.ArtifactDefinition != "MacOSFinderPlistFile" {
		t.Fatalf("unexpected lookup result: %+v, %v", def, ok)
	}
}

func TestLoadArtifactDefinitionsRejectsIncomplete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("artifact_definition: OnlyThis\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r := New()
	if err := r.LoadArtifactDefinitions(path); err == nil {
		t.Fatal("expected an error for a definition missing property_list_identifier")
	}
}
