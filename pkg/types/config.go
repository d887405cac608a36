// Package types contains the persisted configuration structures shared
// across the rig CLI.
package types

// Config is the global configuration document. One document is loaded per
// invocation, mutated in memory, and explicitly saved back to disk.
type Config struct {
	// Schema reference (for editor support)
	Schema string `json:"$schema,omitempty"`

	// Minimum log level ("DEBUG"|"INFO"|"WARN"|"ERROR")
	LogLevel string `json:"logLevel,omitempty"`

	// Variables available to task templates and tap modules
	Variables map[string]string `json:"variables,omitempty"`

	// Linked tap repositories, keyed by tap name
	TapLinks map[string]*TapLink `json:"tapLinks,omitempty"`
}

// TapLink is the persisted registration of an external tap repository.
type TapLink struct {
	// Name is the lookup key inside Config.TapLinks.
	Name string `json:"name"`

	// Path is the filesystem location of the tap repository. A link with
	// an empty Path is inert: the resolver treats it as absent.
	Path string `json:"path"`

	// Tasks is the path to the tap's custom task entry file, when the
	// repository contributes one.
	Tasks string `json:"tasks,omitempty"`

	// Description comes from the tap's manifest, when present.
	Description string `json:"description,omitempty"`
}

// Configured reports whether the link points at a usable repository.
func (l *TapLink) Configured() bool {
	return l != nil && l.Path != ""
}

// TapManifest is the optional tap.yaml file at the root of a tap repository.
type TapManifest struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
}
