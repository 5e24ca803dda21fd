package xcloc

import (
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strconv"
	"strings"
)

// MergeOptions controls the merge-update path of the writer.
type MergeOptions struct {
	// Notes enables replace-or-insert handling of <note> elements for units
	// that carry a note. When false, notes in the document are never touched.
	Notes bool
	// CreateMissing appends a fresh trans-unit to the body for every supplied
	// unit whose id has no element in the document. When false (the default),
	// such units are dropped from consideration for the call.
	CreateMissing bool
}

// span is a half-open byte range [start, end) in the source document.
type span struct {
	start, end int
}

// childSpan records where a source/target/note child of a trans-unit lives:
// the full element range and the inner text range between its tags.
type childSpan struct {
	present     bool
	selfClosing bool
	elem        span
	inner       span
}

// unitSpan records a trans-unit element and the positions of its children.
type unitSpan struct {
	id     string
	elem   span
	source childSpan
	target childSpan
	note   childSpan
}

// xliffIndex is the positional index of a document, built by one decoder
// pass. It is the structural metadata that makes in-place updates possible:
// everything outside the recorded spans is copied verbatim on merge.
type xliffIndex struct {
	units []unitSpan
	byID  map[string]int
	// bodyClose is the byte offset of the first </body> end tag, -1 if none.
	bodyClose int
}

// indexXLIFF tokenizes the document once, tracking decoder byte offsets, and
// returns the span index. Malformed XML fails with *FormatError.
func indexXLIFF(data []byte) (*xliffIndex, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	idx := &xliffIndex{byID: make(map[string]int), bodyClose: -1}

	var (
		cur        *unitSpan // trans-unit being scanned, nil outside
		curChild   *childSpan
		childDepth int // nesting inside curChild
		unitDepth  int // nesting inside cur, excluding tracked children
	)

	for {
		pos := int(dec.InputOffset())
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, formatErrf(err, "parsing xliff")
		}
		end := int(dec.InputOffset())

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case curChild != nil:
				childDepth++

			case cur != nil:
				name := t.Name.Local
				var c *childSpan
				switch name {
				case "source":
					c = &cur.source
				case "target":
					c = &cur.target
				case "note":
					c = &cur.note
				}
				if c != nil && unitDepth == 0 && !c.present {
					c.present = true
					c.elem = span{start: pos}
					c.inner = span{start: end}
					curChild = c
					childDepth = 0
				} else {
					unitDepth++
				}

			case t.Name.Local == "trans-unit":
				id := attrValue(t, "id")
				if id == "" {
					return nil, formatErrf(nil, "trans-unit without id attribute")
				}
				if _, dup := idx.byID[id]; dup {
					return nil, formatErrf(nil, "duplicate trans-unit id %q", id)
				}
				idx.byID[id] = len(idx.units)
				idx.units = append(idx.units, unitSpan{id: id, elem: span{start: pos}})
				cur = &idx.units[len(idx.units)-1]
				unitDepth = 0
			}

		case xml.EndElement:
			switch {
			case curChild != nil:
				if childDepth > 0 {
					childDepth--
					continue
				}
				// A self-closing element yields a virtual EndElement that
				// consumes no input.
				curChild.selfClosing = end == curChild.inner.start
				if curChild.selfClosing {
					curChild.inner.end = curChild.inner.start
				} else {
					curChild.inner.end = pos
				}
				curChild.elem.end = end
				curChild = nil

			case cur != nil:
				if unitDepth > 0 {
					unitDepth--
					continue
				}
				cur.elem.end = end
				cur = nil

			default:
				if t.Name.Local == "body" && idx.bodyClose < 0 {
					idx.bodyClose = pos
				}
			}
		}
	}

	return idx, nil
}

// edit is a single splice over the original bytes: the span is replaced by
// text. start == end means a pure insertion.
type edit struct {
	span span
	text string
}

// MergeXLIFF merges the desired end state of units into an existing XLIFF
// document and returns the new bytes. Only the target (and, with
// opts.Notes, note) content of matching trans-units changes; unmatched
// units, surrounding elements, attribute order and whitespace are preserved
// byte-for-byte. A missing <target> is inserted immediately after <source>
// (never after a note); a missing <note> after <target>.
//
// The merge is idempotent: applying the same unit list to its own output
// produces byte-identical bytes. Unit IDs must be unique; supplying the same
// id twice fails the call. If the document cannot be indexed the call fails
// with *FormatError and produces no output.
func MergeXLIFF(data []byte, units []Unit, opts MergeOptions) ([]byte, error) {
	idx, err := indexXLIFF(data)
	if err != nil {
		return nil, err
	}

	var edits []edit
	var missing []Unit
	seen := make(map[string]bool, len(units))
	for _, u := range units {
		if seen[u.ID] {
			return nil, formatErrf(nil, "duplicate unit id %q supplied", u.ID)
		}
		seen[u.ID] = true
		i, ok := idx.byID[u.ID]
		if !ok {
			if opts.CreateMissing {
				missing = append(missing, u)
			}
			continue
		}
		edits = unitEdits(edits, data, &idx.units[i], u, opts)
	}

	if len(missing) > 0 {
		if idx.bodyClose < 0 {
			return nil, formatErrf(nil, "document has no body element")
		}
		edits = append(edits, appendUnitsEdit(data, idx.bodyClose, missing))
	}

	return applyEdits(data, edits), nil
}

// unitEdits computes the splices for one matched unit.
func unitEdits(edits []edit, data []byte, us *unitSpan, u Unit, opts MergeOptions) []edit {
	wantNote := opts.Notes && u.Note != ""

	replaceInner := func(c *childSpan, name, value string) []edit {
		text := xmlEscapeText(value)
		if c.selfClosing {
			if value == "" {
				return edits // empty element already means empty text
			}
			return append(edits, edit{c.elem, "<" + name + ">" + text + "</" + name + ">"})
		}
		// Leave the span alone when it already carries the desired text,
		// whichever escaping or surrounding whitespace the document used for
		// it. The parser trims, so the comparison must trim too.
		inner := string(data[c.inner.start:c.inner.end])
		if inner == text || strings.TrimSpace(unescapeXML(inner)) == value {
			return edits
		}
		return append(edits, edit{c.inner, text})
	}

	switch {
	case us.target.present:
		edits = replaceInner(&us.target, "target", u.Target)
		if wantNote {
			if us.note.present {
				edits = replaceInner(&us.note, "note", u.Note)
			} else {
				ind := lineIndent(data, us.target.elem.start)
				at := us.target.elem.end
				edits = append(edits, edit{span{at, at}, "\n" + ind + "<note>" + xmlEscapeText(u.Note) + "</note>"})
			}
		}

	case us.source.present:
		// No target child: insert one right after </source>, on its own line
		// at the source's indentation. An empty target is not materialized.
		ind := lineIndent(data, us.source.elem.start)
		var insert string
		if u.Target != "" {
			insert = "\n" + ind + "<target>" + xmlEscapeText(u.Target) + "</target>"
		}
		if wantNote && !us.note.present {
			insert += "\n" + ind + "<note>" + xmlEscapeText(u.Note) + "</note>"
		}
		if insert != "" {
			at := us.source.elem.end
			edits = append(edits, edit{span{at, at}, insert})
		}
		if wantNote && us.note.present {
			edits = replaceInner(&us.note, "note", u.Note)
		}
	}
	return edits
}

// appendUnitsEdit builds the insertion that materializes brand-new
// trans-units just before </body>, in fresh-write shape at the document's
// own indentation.
func appendUnitsEdit(data []byte, bodyClose int, units []Unit) edit {
	bodyInd := lineIndent(data, bodyClose)
	unitInd := bodyInd + "  "
	childInd := unitInd + "  "

	var b strings.Builder
	for _, u := range units {
		b.WriteString(unitInd + "<trans-unit id=\"" + xmlEscapeAttr(u.ID) + "\">\n")
		b.WriteString(childInd + "<source>" + xmlEscapeText(u.Source) + "</source>\n")
		b.WriteString(childInd + "<target>" + xmlEscapeText(u.Target) + "</target>\n")
		if u.Note != "" {
			b.WriteString(childInd + "<note>" + xmlEscapeText(u.Note) + "</note>\n")
		}
		b.WriteString(unitInd + "</trans-unit>\n")
	}

	// When </body> sits on its own indented line, insert before the
	// indentation so the block's lines align; otherwise break the line.
	lineStart := bodyClose - len(bodyInd)
	if lineStart >= 0 && string(data[lineStart:bodyClose]) == bodyInd {
		return edit{span{lineStart, lineStart}, b.String()}
	}
	return edit{span{bodyClose, bodyClose}, "\n" + b.String() + bodyInd}
}

// unescapeXML resolves the predefined XML entities and numeric character
// references in s. Unknown entities are left as-is.
func unescapeXML(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '&' {
			b.WriteByte(s[i])
			i++
			continue
		}
		semi := strings.IndexByte(s[i:], ';')
		if semi < 0 {
			b.WriteString(s[i:])
			break
		}
		ent := s[i+1 : i+semi]
		switch {
		case ent == "amp":
			b.WriteByte('&')
		case ent == "lt":
			b.WriteByte('<')
		case ent == "gt":
			b.WriteByte('>')
		case ent == "quot":
			b.WriteByte('"')
		case ent == "apos":
			b.WriteByte('\'')
		case strings.HasPrefix(ent, "#"):
			num := ent[1:]
			base := 10
			if strings.HasPrefix(num, "x") || strings.HasPrefix(num, "X") {
				num = num[1:]
				base = 16
			}
			n, err := strconv.ParseInt(num, base, 32)
			if err != nil {
				b.WriteString(s[i : i+semi+1])
			} else {
				b.WriteRune(rune(n))
			}
		default:
			b.WriteString(s[i : i+semi+1])
		}
		i += semi + 1
	}
	return b.String()
}

// lineIndent returns the leading whitespace of the line containing pos,
// up to pos at most.
func lineIndent(data []byte, pos int) string {
	lineStart := pos
	for lineStart > 0 && data[lineStart-1] != '\n' {
		lineStart--
	}
	end := lineStart
	for end < pos && (data[end] == ' ' || data[end] == '\t') {
		end++
	}
	return string(data[lineStart:end])
}

// applyEdits splices the edits into a fresh copy of the document.
// Edits never overlap: each touches a distinct child span.
func applyEdits(data []byte, edits []edit) []byte {
	if len(edits) == 0 {
		return append([]byte(nil), data...)
	}
	sort.Slice(edits, func(i, j int) bool {
		if edits[i].span.start != edits[j].span.start {
			return edits[i].span.start < edits[j].span.start
		}
		return edits[i].span.end < edits[j].span.end
	})

	var out bytes.Buffer
	pos := 0
	for _, e := range edits {
		out.Write(data[pos:e.span.start])
		out.WriteString(e.text)
		pos = e.span.end
	}
	out.Write(data[pos:])
	return out.Bytes()
}
