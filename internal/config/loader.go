package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/1broseidon/animg/internal/runtimepath"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the default config file location.
const EnvConfigPath = "ANIMG_CONFIG"

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

// Source records where a config value came from.
type Source struct {
	Kind   SourceKind
	Name   string // for default
	File   string
	Line   int
	Column int
}

func (s Source) position() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // YAML path -> file position of the last writer
	Files   []string          // every loaded file, in merge order
}

// DefaultConfigPath returns $ANIMG_CONFIG when set, else the XDG location.
func DefaultConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return expandHome(p), nil
	}
	return runtimepath.ConfigPath(), nil
}

// Load reads the merged configuration from the standard location and returns an
// effective config ready for use by the daemon.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources loads config and returns file-level sources for introspection.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path and its includes. A missing file yields defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	l := &loader{
		visited: make(map[string]bool),
		sources: make(map[string]Source),
	}

	if _, err := os.Stat(path); err == nil {
		if err := l.load(path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg, err := BuildEffectiveConfig(l.raw)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, l.locate(err)
	}
	return &LoadResult{Config: cfg, Sources: l.sources, Files: l.files}, nil
}

// loader merges a config file after the files it includes, depth first.
type loader struct {
	raw     RawConfig
	sources map[string]Source
	files   []string

	visited map[string]bool
	chain   []string
}

func (l *loader) load(path string) error {
	canon := canonicalPath(path)
	for _, open := range l.chain {
		if open == canon {
			return fmt.Errorf("include cycle detected: %s -> %s", strings.Join(l.chain, " -> "), canon)
		}
	}
	if l.visited[canon] {
		return nil
	}
	l.visited[canon] = true

	data, err := os.ReadFile(canon)
	if err != nil {
		return fmt.Errorf("%s: failed to read: %w", canon, err)
	}
	var raw RawConfig
	if err := decodeStrictYAML(data, &raw); err != nil {
		return fmt.Errorf("%s: %w", canon, err)
	}
	positions, err := nodePositions(data, canon)
	if err != nil {
		return fmt.Errorf("%s: failed to parse yaml: %w", canon, err)
	}

	l.chain = append(l.chain, canon)
	for i, inc := range raw.Include {
		at := positions[fmt.Sprintf("include[%d]", i)]
		paths, err := expandInclude(canon, inc)
		if err != nil {
			return fmt.Errorf("%s: include %q: %w", at.position(), inc, err)
		}
		for _, p := range paths {
			if err := l.load(p); err != nil {
				return err
			}
		}
	}
	l.chain = l.chain[:len(l.chain)-1]

	// The including file wins over everything it includes.
	l.raw = l.raw.merge(raw)
	for key, src := range positions {
		if !strings.HasPrefix(key, "include") {
			l.sources[key] = src
		}
	}
	l.files = append(l.files, canon)
	return nil
}

// locate adds the file position of the offending key to a validation error.
func (l *loader) locate(err error) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := l.sources[verr.Path]; ok {
		verr.Source = src
	}
	return err
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}

// expandInclude resolves one include entry relative to the including file.
// An entry may name a file, a directory (its *.yaml and *.yml files, sorted)
// or a glob pattern.
func expandInclude(baseFile, include string) ([]string, error) {
	if strings.TrimSpace(include) == "" {
		return nil, fmt.Errorf("path is empty")
	}
	path := expandHome(include)
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(baseFile), path)
	}

	if strings.ContainsAny(path, "*?[") {
		matches, err := filepath.Glob(path)
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		return matches, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		switch strings.ToLower(filepath.Ext(ent.Name())) {
		case ".yaml", ".yml":
			if !ent.IsDir() {
				files = append(files, filepath.Join(path, ent.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// nodePositions maps every mapping key path ("store.driver") and every
// include entry ("include[0]") of a document to its value's position.
func nodePositions(data []byte, file string) (map[string]Source, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out := make(map[string]Source)
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	var walk func(n *yaml.Node, prefix string)
	walk = func(n *yaml.Node, prefix string) {
		if n.Kind != yaml.MappingNode {
			return
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i].Value, n.Content[i+1]
			if prefix != "" {
				key = prefix + "." + key
			}
			out[key] = Source{Kind: SourceFile, File: file, Line: val.Line, Column: val.Column}
			if key == "include" && val.Kind == yaml.SequenceNode {
				for j, item := range val.Content {
					out[fmt.Sprintf("include[%d]", j)] = Source{Kind: SourceFile, File: file, Line: item.Line, Column: item.Column}
				}
			} else if key == "include" {
				out["include[0]"] = out[key]
			}
			walk(val, key)
		}
	}
	walk(root, "")
	return out, nil
}
