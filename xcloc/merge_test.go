package xcloc

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const mergeFixture = `<?xml version="1.0" encoding="UTF-8"?>
<xliff xmlns="urn:oasis:names:tc:xliff:document:1.2" version="1.2">
  <file source-language="en" target-language="zh-Hans" datatype="plaintext" original="App.strings">
    <body>
      <trans-unit id="A" xml:space="preserve">
        <source>Alpha</source>
        <target>阿尔法</target>
        <note>first letter</note>
      </trans-unit>
      <trans-unit id="B">
        <source>Beta</source>
        <target>old beta</target>
      </trans-unit>
      <trans-unit id="C">
        <source>Gamma</source>
        <note>  spacing  kept  </note>
      </trans-unit>
    </body>
  </file>
</xliff>
`

// unitBlock cuts the raw bytes of one trans-unit element out of a document.
func unitBlock(t *testing.T, doc []byte, id string) []byte {
	t.Helper()
	open := []byte(`<trans-unit id="` + id + `"`)
	start := bytes.Index(doc, open)
	if start < 0 {
		t.Fatalf("unit %s not found", id)
	}
	end := bytes.Index(doc[start:], []byte("</trans-unit>"))
	if end < 0 {
		t.Fatalf("unit %s not closed", id)
	}
	return doc[start : start+end]
}

func TestMergeXLIFF_Isolation(t *testing.T) {
	in := []byte(mergeFixture)
	units := []Unit{
		{ID: "A", Source: "Alpha", Target: "阿尔法", Note: "first letter"},
		{ID: "B", Source: "Beta", Target: "新贝塔"},
		{ID: "C", Source: "Gamma", Target: ""},
	}

	out, err := MergeXLIFF(in, units, MergeOptions{Notes: true})
	if err != nil {
		t.Fatalf("MergeXLIFF error: %v", err)
	}

	// A and C were not changed semantically: byte-identical, attribute order,
	// whitespace and notes included.
	if !bytes.Equal(unitBlock(t, out, "A"), unitBlock(t, in, "A")) {
		t.Errorf("unit A changed:\n got %s\nwant %s", unitBlock(t, out, "A"), unitBlock(t, in, "A"))
	}
	if !bytes.Equal(unitBlock(t, out, "C"), unitBlock(t, in, "C")) {
		t.Errorf("unit C changed:\n got %s\nwant %s", unitBlock(t, out, "C"), unitBlock(t, in, "C"))
	}

	// Everything outside the body is untouched.
	if !bytes.Contains(out, []byte(`datatype="plaintext" original="App.strings"`)) {
		t.Error("file element attributes disturbed")
	}

	// B carries the new target.
	back, err := ParseXLIFF(out, "en", "zh-Hans")
	if err != nil {
		t.Fatalf("reparse error: %v", err)
	}
	for _, u := range back {
		if u.ID == "B" && u.Target != "新贝塔" {
			t.Errorf("B target: got %q, want 新贝塔", u.Target)
		}
	}
}

func TestMergeXLIFF_Idempotent(t *testing.T) {
	units := []Unit{
		{ID: "A", Source: "Alpha", Target: "re-alpha", Note: "rewritten"},
		{ID: "B", Source: "Beta", Target: "re-beta"},
		{ID: "C", Source: "Gamma", Target: "re-gamma"},
	}

	once, err := MergeXLIFF([]byte(mergeFixture), units, MergeOptions{Notes: true})
	if err != nil {
		t.Fatalf("first merge: %v", err)
	}
	twice, err := MergeXLIFF(once, units, MergeOptions{Notes: true})
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}
	if !bytes.Equal(once, twice) {
		t.Errorf("merge not idempotent:\nfirst  %s\nsecond %s", once, twice)
	}
}

func TestMergeXLIFF_InsertsTargetAfterSource(t *testing.T) {
	// C has a note but no target: the inserted target must land between
	// source and note, never after the note.
	out, err := MergeXLIFF([]byte(mergeFixture), []Unit{{ID: "C", Target: "伽马"}}, MergeOptions{})
	if err != nil {
		t.Fatalf("MergeXLIFF error: %v", err)
	}

	block := string(unitBlock(t, out, "C"))
	si := strings.Index(block, "</source>")
	ti := strings.Index(block, "<target>")
	ni := strings.Index(block, "<note>")
	if ti < 0 {
		t.Fatalf("no target inserted:\n%s", block)
	}
	if !(si < ti && ti < ni) {
		t.Errorf("insertion order wrong (source=%d target=%d note=%d):\n%s", si, ti, ni, block)
	}

	want := "<source>Gamma</source>\n        <target>伽马</target>"
	if !strings.Contains(block, want) {
		t.Errorf("target not on its own indented line after source:\n%s", block)
	}
}

func TestMergeXLIFF_SelfClosingTarget(t *testing.T) {
	doc := `<xliff version="1.2"><file><body>
  <trans-unit id="a">
    <source>Hi</source>
    <target/>
  </trans-unit>
</body></file></xliff>`

	out, err := MergeXLIFF([]byte(doc), []Unit{{ID: "a", Target: "Привет"}}, MergeOptions{})
	if err != nil {
		t.Fatalf("MergeXLIFF error: %v", err)
	}
	if !bytes.Contains(out, []byte("<target>Привет</target>")) {
		t.Errorf("self-closing target not expanded:\n%s", out)
	}
	if bytes.Contains(out, []byte("<target/>")) {
		t.Errorf("self-closing target left behind:\n%s", out)
	}
}

func TestMergeXLIFF_NoteHandling(t *testing.T) {
	t.Run("replaces existing note", func(t *testing.T) {
		out, err := MergeXLIFF([]byte(mergeFixture),
			[]Unit{{ID: "A", Target: "阿尔法", Note: "updated"}}, MergeOptions{Notes: true})
		if err != nil {
			t.Fatalf("MergeXLIFF error: %v", err)
		}
		block := string(unitBlock(t, out, "A"))
		if !strings.Contains(block, "<note>updated</note>") {
			t.Errorf("note not replaced:\n%s", block)
		}
	})

	t.Run("inserts note after target", func(t *testing.T) {
		out, err := MergeXLIFF([]byte(mergeFixture),
			[]Unit{{ID: "B", Target: "old beta", Note: "fresh note"}}, MergeOptions{Notes: true})
		if err != nil {
			t.Fatalf("MergeXLIFF error: %v", err)
		}
		block := string(unitBlock(t, out, "B"))
		want := "<target>old beta</target>\n        <note>fresh note</note>"
		if !strings.Contains(block, want) {
			t.Errorf("note not inserted after target:\n%s", block)
		}
	})

	t.Run("notes disabled leaves notes alone", func(t *testing.T) {
		out, err := MergeXLIFF([]byte(mergeFixture),
			[]Unit{{ID: "A", Target: "阿尔法", Note: "updated"}}, MergeOptions{})
		if err != nil {
			t.Fatalf("MergeXLIFF error: %v", err)
		}
		block := string(unitBlock(t, out, "A"))
		if !strings.Contains(block, "<note>first letter</note>") {
			t.Errorf("note changed despite Notes=false:\n%s", block)
		}
	})
}

func TestMergeXLIFF_UnknownIDSkipped(t *testing.T) {
	in := []byte(mergeFixture)
	out, err := MergeXLIFF(in, []Unit{{ID: "nope", Source: "New", Target: "x"}}, MergeOptions{})
	if err != nil {
		t.Fatalf("MergeXLIFF error: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Errorf("document changed by unmatched unit:\n%s", out)
	}
}

func TestMergeXLIFF_CreateMissing(t *testing.T) {
	in := []byte(mergeFixture)
	u := Unit{ID: "D", Source: "Delta", Target: "德尔塔", Note: "fourth"}

	out, err := MergeXLIFF(in, []Unit{u}, MergeOptions{Notes: true, CreateMissing: true})
	if err != nil {
		t.Fatalf("MergeXLIFF error: %v", err)
	}

	block := string(unitBlock(t, out, "D"))
	for _, want := range []string{
		"<source>Delta</source>", "<target>德尔塔</target>", "<note>fourth</note>",
	} {
		if !strings.Contains(block, want) {
			t.Errorf("created unit missing %q:\n%s", want, block)
		}
	}

	// Created before </body>, at the document's indentation.
	if !strings.Contains(string(out), "      </trans-unit>\n    </body>") {
		t.Errorf("created unit badly placed:\n%s", out)
	}

	back, err := ParseXLIFF(out, "en", "zh-Hans")
	if err != nil {
		t.Fatalf("reparse error: %v", err)
	}
	if got := back[len(back)-1]; got != u {
		t.Errorf("created unit: got %+v, want %+v", got, u)
	}
}

func TestMergeXLIFF_DuplicateUnitIDsRejected(t *testing.T) {
	out, err := MergeXLIFF([]byte(mergeFixture),
		[]Unit{{ID: "A", Target: "x"}, {ID: "A", Target: "y"}}, MergeOptions{})
	if err == nil {
		t.Fatal("MergeXLIFF accepted duplicate unit ids")
	}
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("error is %T, want *FormatError", err)
	}
	if out != nil {
		t.Fatalf("got output despite error: %s", out)
	}
}

func TestMergeXLIFF_PaddedContentLeftAlone(t *testing.T) {
	// The document pads the target text with newlines and indentation; the
	// parser trims that on load, so writing the parsed values back must not
	// collapse the padding of an untouched unit.
	doc := `<xliff version="1.2"><file source-language="en" target-language="ru"><body>
  <trans-unit id="a">
    <source>hi</source>
    <target>
      привет
    </target>
  </trans-unit>
  <trans-unit id="b">
    <source>bye</source>
    <target>пока</target>
  </trans-unit>
</body></file></xliff>`

	units, err := ParseXLIFF([]byte(doc), "en", "ru")
	if err != nil {
		t.Fatalf("ParseXLIFF error: %v", err)
	}
	if units[0].Target != "привет" {
		t.Fatalf("parsed target: got %q", units[0].Target)
	}

	// Edit only unit b, pass the whole parsed list through the merge.
	units[1].Target = "до свидания"
	out, err := MergeXLIFF([]byte(doc), units, MergeOptions{Notes: true})
	if err != nil {
		t.Fatalf("MergeXLIFF error: %v", err)
	}

	if !bytes.Equal(unitBlock(t, out, "a"), unitBlock(t, []byte(doc), "a")) {
		t.Errorf("untouched padded unit rewritten:\n got %s\nwant %s",
			unitBlock(t, out, "a"), unitBlock(t, []byte(doc), "a"))
	}
	if !bytes.Contains(out, []byte("<target>до свидания</target>")) {
		t.Errorf("edited target missing:\n%s", out)
	}
}

func TestMergeXLIFF_MalformedFailsClosed(t *testing.T) {
	malformed := []byte(`<xliff><file><body><trans-unit id="a"><source>x</source>`)

	out, err := MergeXLIFF(malformed, []Unit{{ID: "a", Target: "y"}}, MergeOptions{})
	if err == nil {
		t.Fatal("MergeXLIFF succeeded on malformed input")
	}
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("error is %T, want *FormatError", err)
	}
	if out != nil {
		t.Fatalf("got output despite error: %s", out)
	}
}

func TestMergeXLIFF_EscapedContentLeftAlone(t *testing.T) {
	// The document escapes the ampersand with a character reference; passing
	// the same semantic value must not rewrite those bytes.
	doc := `<xliff version="1.2"><file><body>
  <trans-unit id="a">
    <source>Fish &#38; Chips</source>
    <target>Fish &#38; Chips</target>
  </trans-unit>
</body></file></xliff>`

	out, err := MergeXLIFF([]byte(doc), []Unit{{ID: "a", Target: "Fish & Chips"}}, MergeOptions{})
	if err != nil {
		t.Fatalf("MergeXLIFF error: %v", err)
	}
	if !bytes.Equal(out, []byte(doc)) {
		t.Errorf("semantically unchanged document rewritten:\n%s", out)
	}
}
