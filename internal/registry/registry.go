// Package registry maps well-known property-list file names to short,
// human-readable identifiers and to the DFIR artifact definitions that
// describe them, so plistrc extract can label a schema by identifier
// instead of a bare filename when one is known.
package registry

// Definition pairs an artifact definition name with the property-list
// identifier it describes, per one entry of a YAML definitions file.
type Definition struct {
	ArtifactDefinition     string `yaml:"artifact_definition"`
	PropertyListIdentifier string `yaml:"property_list_identifier"`
}

// knownIdentifiers maps common macOS/iOS plist file names to a short
// identifier. The original extractor left this table unpopulated; these
// entries are the small, frequently-referenced set from Apple's own
// property-list naming conventions.
var knownIdentifiers = map[string]string{
	"com.apple.loginwindow.plist":         "apple-loginwindow",
	"com.apple.finder.plist":              "apple-finder",
	"com.apple.dock.plist":                "apple-dock",
	"com.apple.airport.preferences.plist": "apple-airport-preferences",
	"com.apple.Bluetooth.plist":           "apple-bluetooth",
	"com.apple.systempreferences.plist":   "apple-systempreferences",
	"com.apple.screensaver.plist":         "apple-screensaver",
	"com.apple.bird.plist":                "apple-bird",
	"com.apple.Safari.plist":              "apple-safari",
	"com.apple.spotlight.plist":           "apple-spotlight",
}

// Identifier returns the known short identifier for fileName, falling back
// to fileName unchanged exactly as the original extractor does
// (plist_identifier = path_segments[-1]).
func Identifier(fileName string) string {
	if id, ok := knownIdentifiers[fileName]; ok {
		return id
	}
	return fileName
}

// Registry holds artifact-definition pairings loaded from one or more YAML
// definitions files, keyed by property-list identifier. plistrc extract
// loads it from --artifact-definitions but does not look definitions up;
// schema labels come from Identifier alone.
type Registry struct {
	byIdentifier map[string]Definition
}

// New returns an empty Registry, ready for Add or LoadArtifactDefinitions.
func New() *Registry {
	return &Registry{byIdentifier: make(map[string]Definition)}
}

// Add records a single definition, keyed by its property-list identifier.
func (r *Registry) Add(def Definition) {
	r.byIdentifier[def.PropertyListIdentifier] = def
}

// Lookup returns the artifact definition registered for identifier, if any.
func (r *Registry) Lookup(identifier string) (Definition, bool) {
	def, ok := r.byIdentifier[identifier]
	return def, ok
}

// Len reports how many definitions are registered.
func (r *Registry) Len() int {
	return len(r.byIdentifier)
}
