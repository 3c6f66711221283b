package feeders

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONFeeder is a feeder that reads JSON files
type JSONFeeder struct {
	Path string
	// Key selects a top-level member of the document.
	Key    string
	logger DebugLogger
}

// NewJSONFeeder creates a new JSONFeeder that reads from the specified JSON file
func NewJSONFeeder(filePath string) *JSONFeeder {
	return &JSONFeeder{Path: filePath}
}

// WithKey reads only the named top-level member.
func (j *JSONFeeder) WithKey(key string) *JSONFeeder {
	j.Key = key
	return j
}

// SetVerboseDebug enables verbose debug logging; nil disables it.
func (j *JSONFeeder) SetVerboseDebug(logger DebugLogger) {
	j.logger = logger
}

// Feed implements Feeder.
func (j *JSONFeeder) Feed(target any) error {
	return fileFeed(j.Path, j.Key, "json", target, json.Unmarshal, jsonSection, j.logger)
}

func jsonSection(data []byte, key string) ([]byte, bool, error) {
	var all map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, false, err
	}
	raw, ok := all[key]
	if !ok {
		return nil, false, nil
	}
	return raw, true, nil
}
