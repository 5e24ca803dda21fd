// Package xcloc implements reading and writing of Apple .xcloc localization
// catalog bundles.
//
// A bundle is a directory holding a JSON manifest (contents.json) and one
// XLIFF 1.2 translation file per target locale:
//
//	<name>.xcloc/
//	  contents.json
//	  Localized Contents/<targetLocale>.xliff
//
// Load reconstructs the in-memory model; Save writes it back, either by
// materializing a brand-new bundle (fresh write) or by merging the current
// unit state into the existing files in place. The merge path preserves
// everything it does not have to touch byte-for-byte: attribute order,
// whitespace, unrelated elements, and every trans-unit whose id was not
// updated. The codec never drops units and never leaves a partially written
// file behind.
package xcloc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestName is the manifest file name inside a bundle.
const ManifestName = "contents.json"

// LocalizedDir is the directory holding the per-locale translation files.
const LocalizedDir = "Localized Contents"

// Extension is the bundle directory extension.
const Extension = ".xcloc"

// Bundle is the in-memory aggregate of one .xcloc directory: its manifest
// and the ordered list of translation units of the target locale. Unit
// order is the order encountered in the translation file and is preserved
// across a load, edit, save cycle.
type Bundle struct {
	// Path is the bundle directory this aggregate was loaded from.
	Path string
	// Manifest is the parsed contents.json. Treated as immutable.
	Manifest *Manifest
	// Units are the translation units in document order.
	Units []Unit
}

// TranslationRelPath returns the bundle-relative path of the translation
// file for a target locale.
func TranslationRelPath(targetLocale string) string {
	return filepath.Join(LocalizedDir, targetLocale+".xliff")
}

// Load reads the bundle at path: the manifest, then the translation file
// derived from the manifest's targetLocale. It fails with
// ErrMissingManifest or ErrMissingTranslationFile when a file is absent,
// and with *FormatError when one cannot be parsed.
func Load(path string) (*Bundle, error) {
	manifestPath := filepath.Join(path, ManifestName)
	manifestData, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("loading %s: %w", path, ErrMissingManifest)
		}
		return nil, fmt.Errorf("reading %s: %w", manifestPath, err)
	}
	m, err := ParseManifest(manifestData)
	if err != nil {
		return nil, withPath(err, manifestPath)
	}

	xliffPath := filepath.Join(path, TranslationRelPath(m.TargetLocale))
	xliffData, err := os.ReadFile(xliffPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("loading %s: %w", path, ErrMissingTranslationFile)
		}
		return nil, fmt.Errorf("reading %s: %w", xliffPath, err)
	}
	units, err := ParseXLIFF(xliffData, m.DevelopmentRegion, m.TargetLocale)
	if err != nil {
		return nil, withPath(err, xliffPath)
	}

	return &Bundle{Path: path, Manifest: m, Units: units}, nil
}

// withPath attaches a file path to a *FormatError propagated from a parse.
func withPath(err error, path string) error {
	var fe *FormatError
	if errors.As(err, &fe) && fe.Path == "" {
		fe.Path = path
	}
	return err
}

// Save writes the bundle to dest with default merge options (notes enabled,
// no creation of units missing from an existing document). An empty dest
// means the bundle's own path.
func (b *Bundle) Save(dest string) error {
	return b.SaveWith(dest, MergeOptions{Notes: true})
}

// SaveWith writes the bundle to dest. When dest does not exist yet, the
// full directory layout is materialized from scratch; when it does, the
// manifest is re-serialized (unchanged values reproduce identical bytes)
// and the translation file is merge-updated in place. Both files are
// written atomically: a crash mid-save never leaves a half-written file.
func (b *Bundle) SaveWith(dest string, opts MergeOptions) error {
	if dest == "" {
		dest = b.Path
	}
	xliffPath := filepath.Join(dest, TranslationRelPath(b.Manifest.TargetLocale))

	if _, err := os.Stat(dest); os.IsNotExist(err) {
		// Fresh write: materialize the whole layout.
		if err := os.MkdirAll(filepath.Dir(xliffPath), 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dest, err)
		}
		if err := writeFileAtomic(filepath.Join(dest, ManifestName), b.Manifest.Marshal()); err != nil {
			return err
		}
		return writeFileAtomic(xliffPath, MarshalXLIFF(b.Units, b.Manifest.DevelopmentRegion, b.Manifest.TargetLocale))
	}

	if err := writeFileAtomic(filepath.Join(dest, ManifestName), b.Manifest.Marshal()); err != nil {
		return err
	}

	existing, err := os.ReadFile(xliffPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Bundle directory exists but the translation file does not:
			// fall back to a fresh write of just that file.
			if err := os.MkdirAll(filepath.Dir(xliffPath), 0755); err != nil {
				return fmt.Errorf("creating %s: %w", filepath.Dir(xliffPath), err)
			}
			return writeFileAtomic(xliffPath, MarshalXLIFF(b.Units, b.Manifest.DevelopmentRegion, b.Manifest.TargetLocale))
		}
		return fmt.Errorf("reading %s: %w", xliffPath, err)
	}
	merged, err := MergeXLIFF(existing, b.Units, opts)
	if err != nil {
		return withPath(err, xliffPath)
	}
	return writeFileAtomic(xliffPath, merged)
}

// writeFileAtomic writes data to path via a temp file in the same directory
// followed by a rename, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".xclockit-*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Editing
// ---------------------------------------------------------------------------

// UnitByID returns a pointer to the unit with the given id, or nil.
func (b *Bundle) UnitByID(id string) *Unit {
	for i := range b.Units {
		if b.Units[i].ID == id {
			return &b.Units[i]
		}
	}
	return nil
}

// SetTarget sets the translated text of one unit.
// Returns false when the id does not exist.
func (b *Bundle) SetTarget(id, target string) bool {
	u := b.UnitByID(id)
	if u == nil {
		return false
	}
	u.Target = target
	return true
}

// SetNote sets the note of one unit. Returns false when the id does not exist.
func (b *Bundle) SetNote(id, note string) bool {
	u := b.UnitByID(id)
	if u == nil {
		return false
	}
	u.Note = note
	return true
}

// ClearTargets empties the translated text of every unit. A bulk clear is
// just this followed by a normal Save.
func (b *Bundle) ClearTargets() {
	for i := range b.Units {
		b.Units[i].Target = ""
	}
}

// Stats returns (total, translated, untranslated) unit counts.
func (b *Bundle) Stats() (total, translated, untranslated int) {
	for i := range b.Units {
		total++
		if b.Units[i].IsTranslated() {
			translated++
		} else {
			untranslated++
		}
	}
	return
}
