package processor

import (
	"encoding/json"
	"reflect"
	"testing"
)

const sampleJSON = `{
  "title": "Hello World",
  "count": 3,
  "ratio": 1.50,
  "nested": {
    "items": [
      "Save",
      true,
      null,
      "  padded  "
    ],
    "empty": {},
    "list": []
  },
  "zeta": "<b>Bold & loud</b>"
}
`

func TestJSONProcessor_IdentityRoundTrip(t *testing.T) {
	out := roundTrip(t, NewJSONProcessor(), sampleJSON, func(s string) string { return s })
	if out != sampleJSON {
		t.Errorf("identity round trip changed the file:\n%s", out)
	}

	var before, after any
	if err := json.Unmarshal([]byte(sampleJSON), &before); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(out), &after); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Error("identity round trip is not deep-equal")
	}
}

func TestJSONProcessor_Leaves(t *testing.T) {
	doc, err := NewJSONProcessor().Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	leaves := collectLeaves(doc)
	wantPaths := []string{"/title", "/nested/items/0", "/nested/items/3", "/zeta"}
	if len(leaves) != len(wantPaths) {
		t.Fatalf("expected %d leaves, got %d", len(wantPaths), len(leaves))
	}
	for i, l := range leaves {
		if l.pos.Path != wantPaths[i] {
			t.Errorf("leaf %d: expected path %q, got %q", i, wantPaths[i], l.pos.Path)
		}
	}
	if leaves[2].text != "  padded  " {
		t.Errorf("leaf text should keep whitespace, got %q", leaves[2].text)
	}
}

func TestJSONProcessor_KeysNotTranslated(t *testing.T) {
	out := roundTrip(t, NewJSONProcessor(), `{"greeting": "hello"}`, upper)
	want := "{\n  \"greeting\": \"HELLO\"\n}\n"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestJSONProcessor_NonASCIILiteral(t *testing.T) {
	doc, err := NewJSONProcessor().Parse([]byte(`["Hello"]`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for pos := range doc.Leaves() {
		if err := doc.Replace(pos, "こんにちは <ok>"); err != nil {
			t.Fatal(err)
		}
	}
	out, err := NewJSONProcessor().Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := "[\n  \"こんにちは <ok>\"\n]\n"
	if string(out) != want {
		t.Errorf("expected %q, got %q", want, string(out))
	}
}

func TestJSONProcessor_ScalarRoot(t *testing.T) {
	out := roundTrip(t, NewJSONProcessor(), `"just text"`, upper)
	if out != "\"JUST TEXT\"\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestJSONProcessor_EscapedPointer(t *testing.T) {
	doc, err := NewJSONProcessor().Parse([]byte(`{"a/b": {"c~d": "x"}}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	leaves := collectLeaves(doc)
	if len(leaves) != 1 || leaves[0].pos.Path != "/a~1b/c~0d" {
		t.Errorf("unexpected leaves %+v", leaves)
	}
}

func TestJSONProcessor_Latin1Input(t *testing.T) {
	// "Café" in windows-1252
	data := []byte{'"', 'C', 'a', 'f', 0xE9, '"'}
	doc, err := NewJSONProcessor().Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	texts := leafTexts(doc)
	if len(texts) != 1 || texts[0] != "Café" {
		t.Errorf("expected decoded text, got %q", texts)
	}
}

func TestJSONProcessor_ParseErrors(t *testing.T) {
	p := NewJSONProcessor()
	for _, input := range []string{`{"a": }`, `{"a": 1} {"b": 2}`, ``, `[1, 2`} {
		if _, err := p.Parse([]byte(input)); err == nil {
			t.Errorf("expected parse error for %q", input)
		}
	}
}

func TestJSONProcessor_ContentType(t *testing.T) {
	p := NewJSONProcessor()
	if p.ContentType() != "json" {
		t.Errorf("expected 'json', got %q", p.ContentType())
	}
	if !reflect.DeepEqual(p.Extensions(), []string{".json"}) {
		t.Errorf("unexpected extensions %v", p.Extensions())
	}
}
