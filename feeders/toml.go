package feeders

import (
	"github.com/BurntSushi/toml"
)

// TomlFeeder is a feeder that reads TOML files
type TomlFeeder struct {
	Path string
	// Key selects a top-level table of the file.
	Key    string
	logger DebugLogger
}

// NewTomlFeeder creates a new TomlFeeder that reads from the specified TOML file
func NewTomlFeeder(filePath string) *TomlFeeder {
	return &TomlFeeder{Path: filePath}
}

// WithKey reads only the named top-level table.
func (t *TomlFeeder) WithKey(key string) *TomlFeeder {
	t.Key = key
	return t
}

// SetVerboseDebug enables verbose debug logging; nil disables it.
func (t *TomlFeeder) SetVerboseDebug(logger DebugLogger) {
	t.logger = logger
}

// Feed implements Feeder.
func (t *TomlFeeder) Feed(target any) error {
	return fileFeed(t.Path, t.Key, "toml", target, toml.Unmarshal, tomlSection, t.logger)
}

func tomlSection(data []byte, key string) ([]byte, bool, error) {
	var all map[string]toml.Primitive
	md, err := toml.Decode(string(data), &all)
	if err != nil {
		return nil, false, err
	}
	prim, ok := all[key]
	if !ok {
		return nil, false, nil
	}
	var table map[string]any
	if err := md.PrimitiveDecode(prim, &table); err != nil {
		return nil, false, err
	}
	out, err := toml.Marshal(table)
	return out, true, err
}
