package feeders

import (
	"gopkg.in/yaml.v3"
)

// YamlFeeder is a feeder that reads YAML files
type YamlFeeder struct {
	Path string
	// Key selects a top-level section of the file.
	Key    string
	logger DebugLogger
}

// NewYamlFeeder creates a new YamlFeeder that reads from the specified YAML file
func NewYamlFeeder(filePath string) *YamlFeeder {
	return &YamlFeeder{Path: filePath}
}

// WithKey reads only the named top-level section.
func (y *YamlFeeder) WithKey(key string) *YamlFeeder {
	y.Key = key
	return y
}

// SetVerboseDebug enables verbose debug logging; nil disables it.
func (y *YamlFeeder) SetVerboseDebug(logger DebugLogger) {
	y.logger = logger
}

// Feed implements Feeder.
func (y *YamlFeeder) Feed(target any) error {
	return fileFeed(y.Path, y.Key, "yaml", target, yaml.Unmarshal, yamlSection, y.logger)
}

func yamlSection(data []byte, key string) ([]byte, bool, error) {
	var all map[string]yaml.Node
	if err := yaml.Unmarshal(data, &all); err != nil {
		return nil, false, err
	}
	node, ok := all[key]
	if !ok {
		return nil, false, nil
	}
	out, err := yaml.Marshal(&node)
	return out, true, err
}
