package xcloc

import (
	"bytes"
	"encoding/json"
)

// ToolInfo describes the tool that produced the bundle, as recorded in
// contents.json. All fields are free-form strings and are written back
// verbatim.
type ToolInfo struct {
	ToolBuildNumber string `json:"toolBuildNumber"`
	ToolID          string `json:"toolID"`
	ToolName        string `json:"toolName"`
	ToolVersion     string `json:"toolVersion"`
}

// Manifest mirrors the contents.json file of an .xcloc bundle.
// It is immutable once loaded: the codec never rewrites its values, it only
// re-serializes them.
type Manifest struct {
	// DevelopmentRegion is the source locale of the project (e.g. "en").
	DevelopmentRegion string `json:"developmentRegion"`
	// TargetLocale is the locale this bundle translates into (e.g. "zh-Hans").
	// It also names the .xliff file under "Localized Contents".
	TargetLocale string `json:"targetLocale"`
	// ToolInfo identifies the exporting tool.
	ToolInfo ToolInfo `json:"toolInfo"`
	// Version is the bundle format version (e.g. "1.0").
	Version string `json:"version"`
}

// ParseManifest parses contents.json data. It fails with *FormatError when
// the bytes are not a JSON object or a required field is absent.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, formatErrf(err, "parsing manifest")
	}
	if m.DevelopmentRegion == "" {
		return nil, formatErrf(nil, "manifest missing developmentRegion")
	}
	if m.TargetLocale == "" {
		return nil, formatErrf(nil, "manifest missing targetLocale")
	}
	if m.Version == "" {
		return nil, formatErrf(nil, "manifest missing version")
	}
	return &m, nil
}

// Marshal serialises the manifest to contents.json bytes. It is a pure
// function: the same manifest always produces byte-identical output (fixed
// key order, two-space indentation, no HTML escaping), so an unmodified
// manifest round-trips exactly.
func (m *Manifest) Marshal() []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	// Encoding a struct of plain strings cannot fail.
	_ = enc.Encode(m)
	return buf.Bytes()
}
