// Package config — .xclockit.yaml configuration file and bundle discovery.
//
// When a .xclockit.yaml file exists in the project root it declares the
// bundles to operate on and the merge behavior. Without one, xclockit falls
// back to scanning the root for *.xcloc directories.
package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/xclockit/xcloc"
)

// ConfigFileName is the default config file name.
const ConfigFileName = ".xclockit.yaml"

// File is the top-level .xclockit.yaml structure.
type File struct {
	// SourceLang overrides the source language used when creating bundles
	// (default "en"). Loaded bundles always use their manifest's value.
	SourceLang string `yaml:"source_lang,omitempty"`
	// Bundles is an explicit list of bundle paths relative to the config
	// file. When empty, *.xcloc directories are discovered by scanning.
	Bundles []string `yaml:"bundles,omitempty"`
	// Merge controls the merge-update behavior on save.
	Merge MergeSettings `yaml:"merge,omitempty"`
}

// MergeSettings mirrors xcloc.MergeOptions in the config file.
type MergeSettings struct {
	// Notes enables writing translator notes during merge (default true).
	Notes bool `yaml:"notes"`
	// CreateMissing makes merge append trans-units for ids that are absent
	// from the existing document instead of skipping them (default false,
	// matching Xcode's own import behavior).
	CreateMissing bool `yaml:"create_missing"`
}

// Default returns the configuration used when no .xclockit.yaml exists.
func Default() *File {
	return &File{
		SourceLang: "en",
		Merge:      MergeSettings{Notes: true},
	}
}

// Load reads .xclockit.yaml from rootDir. When the file does not exist the
// defaults are returned; a present but malformed file is an error.
func Load(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	f := Default()
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if f.SourceLang == "" {
		f.SourceLang = "en"
	}
	return f, nil
}

// MergeOptions converts the config settings to codec merge options.
func (f *File) MergeOptions() xcloc.MergeOptions {
	return xcloc.MergeOptions{
		Notes:         f.Merge.Notes,
		CreateMissing: f.Merge.CreateMissing,
	}
}

// BundlePaths resolves the bundles to operate on: the explicit list when
// declared, otherwise the result of scanning rootDir.
func (f *File) BundlePaths(rootDir string) ([]string, error) {
	if len(f.Bundles) > 0 {
		paths := make([]string, 0, len(f.Bundles))
		for _, b := range f.Bundles {
			paths = append(paths, filepath.Join(rootDir, b))
		}
		return paths, nil
	}
	return DiscoverBundles(rootDir)
}

// DiscoverBundles scans rootDir recursively for *.xcloc directories.
// Hidden directories are skipped and discovered bundles are not descended
// into. The result is sorted.
func DiscoverBundles(rootDir string) ([]string, error) {
	var bundles []string
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != rootDir && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}
		if strings.HasSuffix(name, xcloc.Extension) {
			bundles = append(bundles, path)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", rootDir, err)
	}
	sort.Strings(bundles)
	return bundles, nil
}
