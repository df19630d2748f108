package config

// File mirrors the pynix.yaml schema. Durations are strings in Go duration
// syntax ("24h", "30m") so the file stays hand-editable.
type File struct {
	Namespace string         `yaml:"namespace"`
	Python    PythonSection  `yaml:"python"`
	Nixpkgs   NixpkgsSection `yaml:"nixpkgs"`
	Cache     CacheSection   `yaml:"cache"`
	Daemon    DaemonSection  `yaml:"daemon"`
}

// PythonSection selects the target interpreter.
type PythonSection struct {
	Version string `yaml:"version"`
}

// NixpkgsSection selects the package source. A pinned rev wins over the
// channel.
type NixpkgsSection struct {
	Channel string `yaml:"channel"`
	Rev     string `yaml:"rev"`
}

// CacheSection configures the disk cache.
type CacheSection struct {
	Dir        string `yaml:"dir"`
	CatalogTTL string `yaml:"catalog_ttl"`
}

// DaemonSection configures the resolution daemon. Enabled is a pointer so
// an absent key keeps the default instead of reading as false.
type DaemonSection struct {
	Enabled     *bool  `yaml:"enabled"`
	IdleTimeout string `yaml:"idle_timeout"`
}
