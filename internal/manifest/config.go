package manifest

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Candidates are the manifest file names looked up in the project root,
// in priority order.
var Candidates = []string{
	"manifest.cue",
	"manifest.yaml",
	"manifest.yml",
	"manifest.toml",
	"manifest.json",
}

// Section is the path of the console section inside a manifest.
var Section = []string{"extra", "console"}

// Config is the console section of a project manifest.
type Config struct {
	// Bootstrap is the script run before discovery; empty for none.
	Bootstrap string
	// Providers are identifiers of additional command providers.
	Providers []string
}

// IsZero reports whether c carries no settings.
func (c Config) IsZero() bool {
	return c.Bootstrap == "" && len(c.Providers) == 0
}

// parse decodes a manifest and extracts its console section. Anything
// unusable degrades to the zero Config; each field degrades on its own.
func parse(filename string, data []byte) Config {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".cue":
		return parseCUE(filename, data)
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Config{}
		}
		return fromDocument(doc)
	case ".toml":
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return Config{}
		}
		return fromDocument(doc)
	case ".json":
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return Config{}
		}
		return fromDocument(doc)
	}
	return Config{}
}

func fromDocument(doc map[string]any) Config {
	section := doc
	for _, key := range Section {
		next, ok := section[key].(map[string]any)
		if !ok {
			return Config{}
		}
		section = next
	}

	var cfg Config
	if s, ok := section["bootstrap"].(string); ok {
		cfg.Bootstrap = s
	}
	switch p := section["provider"].(type) {
	case string:
		cfg.Providers = single(p)
	case []any:
		cfg.Providers = stringList(p)
	}
	return cfg
}

// single normalizes one provider identifier to a list.
func single(id string) []string {
	if id == "" {
		return nil
	}
	return []string{id}
}

// stringList returns items as strings, or nil if any item is not one.
func stringList(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil
		}
		out = append(out, s)
	}
	return out
}

func parseCUE(filename string, data []byte) Config {
	v := cuecontext.New().CompileBytes(data, cue.Filename(filename))
	if v.Err() != nil {
		return Config{}
	}
	section := v.LookupPath(cue.MakePath(cue.Str(Section[0]), cue.Str(Section[1])))
	if !section.Exists() || section.IncompleteKind() != cue.StructKind {
		return Config{}
	}

	var cfg Config
	if b := section.LookupPath(cue.ParsePath("bootstrap")); b.Exists() {
		if s, err := b.String(); err == nil {
			cfg.Bootstrap = s
		}
	}
	if p := section.LookupPath(cue.ParsePath("provider")); p.Exists() {
		cfg.Providers = cueProviders(p)
	}
	return cfg
}

func cueProviders(v cue.Value) []string {
	switch v.Kind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil
		}
		return single(s)
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil
		}
		var out []string
		for iter.Next() {
			s, err := iter.Value().String()
			if err != nil {
				return nil
			}
			out = append(out, s)
		}
		return out
	}
	return nil
}
