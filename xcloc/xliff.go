package xcloc

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// Unit represents a single translatable string: a stable identifier, the
// source text, the (possibly empty) translated text, and an optional note.
// Identity is by ID; IDs are unique within a bundle.
type Unit struct {
	// ID is the trans-unit id attribute (the stable key).
	ID string
	// Source is the original text. Immutable after parse.
	Source string
	// Target is the translated text. Empty means untranslated.
	Target string
	// Note is the translator note. Empty means the unit carries no note.
	Note string
}

// IsTranslated reports whether the unit has a non-empty translation.
func (u *Unit) IsTranslated() bool { return u.Target != "" }

// scanState tracks where the parser currently is inside the document.
type scanState int

const (
	scanDocument scanState = iota // outside any trans-unit
	scanUnit                     // inside <trans-unit>, between children
	scanSource                   // inside <source>
	scanTarget                   // inside <target>
	scanNote                     // inside <note>
)

// ParseXLIFF parses XLIFF 1.2 data into the ordered list of translation
// units it contains. Parsing is a single forward pass over element events;
// no tree is materialized.
//
// Leading/trailing whitespace of source/target/note text is trimmed,
// internal whitespace is preserved. A unit with no <target> yields
// Target == ""; one with no <note> yields Note == "".
//
// sourceLocale and targetLocale are cross-checked against the <file>
// element's declared languages when both sides are non-empty; a mismatch is
// a *FormatError. Any malformed XML (including an unclosed trans-unit)
// fails the whole parse — a partial list is never returned.
func ParseXLIFF(data []byte, sourceLocale, targetLocale string) ([]Unit, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		units     []Unit
		seen      = make(map[string]bool)
		cur       Unit
		text      strings.Builder
		state     = scanDocument
		depth     int // extra element nesting inside source/target/note
		inUnit    bool
		hasSource bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, formatErrf(err, "parsing xliff")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch state {
			case scanSource, scanTarget, scanNote:
				// Inline markup inside a text element — keep only its
				// character data.
				depth++

			case scanDocument:
				switch t.Name.Local {
				case "file":
					if lang := attrValue(t, "source-language"); lang != "" && sourceLocale != "" && lang != sourceLocale {
						return nil, formatErrf(nil, "source-language %q does not match expected %q", lang, sourceLocale)
					}
					if lang := attrValue(t, "target-language"); lang != "" && targetLocale != "" && lang != targetLocale {
						return nil, formatErrf(nil, "target-language %q does not match expected %q", lang, targetLocale)
					}
				case "trans-unit":
					id := attrValue(t, "id")
					if id == "" {
						return nil, formatErrf(nil, "trans-unit without id attribute")
					}
					if seen[id] {
						return nil, formatErrf(nil, "duplicate trans-unit id %q", id)
					}
					seen[id] = true
					cur = Unit{ID: id}
					hasSource = false
					inUnit = true
					state = scanUnit
				}

			case scanUnit:
				switch t.Name.Local {
				case "source":
					text.Reset()
					depth = 0
					state = scanSource
				case "target":
					text.Reset()
					depth = 0
					state = scanTarget
				case "note":
					text.Reset()
					depth = 0
					state = scanNote
				default:
					// Unknown child (e.g. context-group) — skip entirely.
					if err := dec.Skip(); err != nil {
						return nil, formatErrf(err, "parsing trans-unit %q", cur.ID)
					}
				}
			}

		case xml.CharData:
			switch state {
			case scanSource, scanTarget, scanNote:
				text.Write(t)
			}

		case xml.EndElement:
			switch state {
			case scanSource, scanTarget, scanNote:
				if depth > 0 {
					depth--
					continue
				}
				s := strings.TrimSpace(text.String())
				switch state {
				case scanSource:
					cur.Source = s
					hasSource = true
				case scanTarget:
					cur.Target = s
				case scanNote:
					cur.Note = s
				}
				state = scanUnit

			case scanUnit:
				if t.Name.Local == "trans-unit" {
					if !hasSource {
						return nil, formatErrf(nil, "trans-unit %q has no source element", cur.ID)
					}
					units = append(units, cur)
					inUnit = false
					state = scanDocument
				}
			}
		}
	}

	if inUnit {
		return nil, formatErrf(nil, "unclosed trans-unit %q", cur.ID)
	}
	return units, nil
}

// attrValue returns the value of the named attribute on a start element,
// or "" when absent.
func attrValue(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// ---------------------------------------------------------------------------
// Fresh write
// ---------------------------------------------------------------------------

// xliffNamespace is the XLIFF 1.2 document namespace.
const xliffNamespace = "urn:oasis:names:tc:xliff:document:1.2"

// MarshalXLIFF builds a minimal XLIFF 1.2 document from scratch: one <file>
// section with the given languages and a plaintext datatype, and one
// trans-unit per unit with source, target and note children in that fixed
// order. The target is always written (empty when untranslated); the note
// only when present. Output formatting is deterministic: two-space
// indentation, no self-closing elements.
func MarshalXLIFF(units []Unit, sourceLocale, targetLocale string) []byte {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<xliff xmlns=\"" + xliffNamespace + "\" version=\"1.2\">\n")
	b.WriteString("  <file source-language=\"" + xmlEscapeAttr(sourceLocale) +
		"\" target-language=\"" + xmlEscapeAttr(targetLocale) +
		"\" datatype=\"plaintext\">\n")
	b.WriteString("    <body>\n")
	for _, u := range units {
		b.WriteString("      <trans-unit id=\"" + xmlEscapeAttr(u.ID) + "\">\n")
		b.WriteString("        <source>" + xmlEscapeText(u.Source) + "</source>\n")
		b.WriteString("        <target>" + xmlEscapeText(u.Target) + "</target>\n")
		if u.Note != "" {
			b.WriteString("        <note>" + xmlEscapeText(u.Note) + "</note>\n")
		}
		b.WriteString("      </trans-unit>\n")
	}
	b.WriteString("    </body>\n")
	b.WriteString("  </file>\n")
	b.WriteString("</xliff>\n")
	return []byte(b.String())
}

// xmlEscapeText escapes element text content.
func xmlEscapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// xmlEscapeAttr escapes a double-quoted attribute value.
func xmlEscapeAttr(s string) string {
	s = xmlEscapeText(s)
	return strings.ReplaceAll(s, `"`, "&quot;")
}
