// Package lockfile implements xclockit.lock — a lock file that tracks MD5
// checksums of unit source text per bundle. This enables incremental work:
// status can report exactly which strings are new or changed since the last
// recorded edit instead of flagging whole bundles.
//
// The lock file is stored in the project root as xclockit.lock.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// LockFileName is the default lock file name.
const LockFileName = "xclockit.lock"

// Version is the lock file format version.
const Version = 1

// LockFile represents the xclockit.lock file structure.
type LockFile struct {
	Version   int                          `yaml:"version"`
	Checksums map[string]map[string]string `yaml:"checksums"` // bundle -> unit id -> md5

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// Load reads a lock file from the given directory.
// Returns an empty lock file if the file doesn't exist.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lf.path = path

	if lf.Checksums == nil {
		lf.Checksums = make(map[string]map[string]string)
	}

	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}

	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}

	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// BundleKey builds a stable lock file key for a bundle path.
func BundleKey(bundlePath string) string {
	return filepath.ToSlash(bundlePath)
}

// UnitContent builds the source content string for hashing. The note is
// included so a changed translator note also flags the unit.
func UnitContent(source, note string) string {
	if note != "" {
		return source + "\x00" + note
	}
	return source
}

// IsChanged checks whether a unit's source content has changed since it was
// last recorded. Returns true if the unit is new or its content differs.
func (lf *LockFile) IsChanged(bundle, id, sourceContent string) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	ids, ok := lf.Checksums[bundle]
	if !ok {
		return true
	}
	oldHash, ok := ids[id]
	if !ok {
		return true
	}
	return oldHash != Hash(sourceContent)
}

// Update records the checksum of a unit's source content.
func (lf *LockFile) Update(bundle, id, sourceContent string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.Checksums[bundle] == nil {
		lf.Checksums[bundle] = make(map[string]string)
	}
	lf.Checksums[bundle][id] = Hash(sourceContent)
}

// UpdateBatch records checksums for multiple unit ids at once.
func (lf *LockFile) UpdateBatch(bundle string, entries map[string]string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.Checksums[bundle] == nil {
		lf.Checksums[bundle] = make(map[string]string)
	}
	for id, sourceContent := range entries {
		lf.Checksums[bundle][id] = Hash(sourceContent)
	}
}

// FilterChanged returns only the unit ids whose source content has changed
// since the last record. The input maps unit id -> sourceContent.
func (lf *LockFile) FilterChanged(bundle string, entries map[string]string) map[string]string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	existing := lf.Checksums[bundle]
	changed := make(map[string]string)

	for id, content := range entries {
		hash := Hash(content)
		if existing == nil || existing[id] != hash {
			changed[id] = content
		}
	}

	return changed
}

// Clean removes recorded ids that are no longer present in the bundle.
// This prevents stale entries from accumulating.
func (lf *LockFile) Clean(bundle string, currentIDs []string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	existing := lf.Checksums[bundle]
	if existing == nil {
		return
	}

	valid := make(map[string]bool, len(currentIDs))
	for _, id := range currentIDs {
		valid[id] = true
	}

	for id := range existing {
		if !valid[id] {
			delete(existing, id)
		}
	}
}

// RemoveBundle removes all checksums for a bundle.
func (lf *LockFile) RemoveBundle(bundle string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	delete(lf.Checksums, bundle)
}

// Stats returns the number of bundles and total unit ids in the lock file.
func (lf *LockFile) Stats() (bundles, units int) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	bundles = len(lf.Checksums)
	for _, m := range lf.Checksums {
		units += len(m)
	}
	return
}

// Bundles returns the sorted list of bundle keys.
func (lf *LockFile) Bundles() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	bundles := make([]string, 0, len(lf.Checksums))
	for b := range lf.Checksums {
		bundles = append(bundles, b)
	}
	sort.Strings(bundles)
	return bundles
}

// Summary returns a human-readable summary string.
func (lf *LockFile) Summary() string {
	bundles, units := lf.Stats()
	if bundles == 0 {
		return "empty"
	}

	var parts []string
	for _, b := range lf.Bundles() {
		n := len(lf.Checksums[b])
		parts = append(parts, fmt.Sprintf("%s: %d units", b, n))
	}
	return fmt.Sprintf("%d bundles, %d units (%s)", bundles, units, strings.Join(parts, ", "))
}
