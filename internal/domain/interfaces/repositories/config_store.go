// Package repositories defines interfaces for data access layers.
package repositories

// ConfigStore is a free-form key/value configuration tree addressed by dotted
// keys such as "modules.package_names.android".
type ConfigStore interface {
	// Get returns the value at key and whether it was set
	Get(key string) (string, bool)

	// Set stores value at key, creating intermediate sections
	Set(key, value string)
}

// ProjectRepository loads and persists the project configuration
type ProjectRepository interface {
	ConfigStore

	// Save writes pending changes back to storage
	Save() error
}
