package playlist

import (
	"strings"
	"testing"
)

func TestDictPreservesInsertionOrder(t *testing.T) {
	d := NewDict()
	d.Set("Zebra", Integer(1))
	d.Set("Apple", Integer(2))
	d.Set("Mango", Integer(3))
	d.Set("Apple", Integer(4)) // replace must not reorder

	var keys []string
	d.Each(func(key string, _ Value) { keys = append(keys, key) })
	if got := strings.Join(keys, ","); got != "Zebra,Apple,Mango" {
		t.Fatalf("key order = %s, want Zebra,Apple,Mango", got)
	}
	if got := d.IntValue("Apple"); got != 4 {
		t.Fatalf("replaced value = %d, want 4", got)
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	doc := NewDocument()
	doc.Root.Set("Major Version", Integer(1))
	doc.Root.Set("Name", String(`Mix <&> "quoted"`))
	doc.Root.Set("Date", Date("2024-01-02T03:04:05Z"))
	doc.Root.Set("Show Content Ratings", Boolean(true))

	inner := NewDict()
	inner.Set("Track ID", Integer(100))
	arr := NewArray()
	arr.Append(inner)
	doc.Root.Set("Playlists", arr)

	var b strings.Builder
	if err := doc.Encode(&b); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, `<!DOCTYPE plist PUBLIC "-//Apple Computer//DTD PLIST 1.0//EN"`) {
		t.Error("missing plist DOCTYPE")
	}
	if !strings.Contains(out, `<plist version="1.0">`) {
		t.Error("missing plist root element")
	}

	parsed, err := Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := parsed.Root.StringValue("Name"); got != `Mix <&> "quoted"` {
		t.Errorf("Name = %q after round trip", got)
	}
	if got := parsed.Root.IntValue("Major Version"); got != 1 {
		t.Errorf("Major Version = %d, want 1", got)
	}
	v, ok := parsed.Root.Get("Show Content Ratings")
	if !ok || v != Boolean(true) {
		t.Errorf("Show Content Ratings = %v, want true", v)
	}
	playlists, ok := parsed.Root.ArrayValue("Playlists")
	if !ok || len(playlists.Values) != 1 {
		t.Fatalf("Playlists array missing after round trip")
	}
	entry, ok := playlists.Values[0].(*Dict)
	if !ok || entry.IntValue("Track ID") != 100 {
		t.Errorf("nested dict did not round trip")
	}
}

func TestParseToleratesUnknownElements(t *testing.T) {
	const input = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>Name</key>
	<string>Road Mix</string>
	<key>Mystery</key>
	<widget>ignored</widget>
	<key>Count</key>
	<integer>2</integer>
</dict>
</plist>`

	doc, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := doc.Root.StringValue("Name"); got != "Road Mix" {
		t.Errorf("Name = %q", got)
	}
	if got := doc.Root.IntValue("Count"); got != 2 {
		t.Errorf("Count = %d, want 2", got)
	}
	if _, ok := doc.Root.Get("Mystery"); ok {
		t.Error("unknown element should have been dropped")
	}
}

func TestParseRejectsNonPlist(t *testing.T) {
	if _, err := Parse(strings.NewReader("<html><body/></html>")); err == nil {
		t.Fatal("expected error for non-plist document")
	}
	if _, err := Parse(strings.NewReader("not xml at all")); err == nil {
		t.Fatal("expected error for junk input")
	}
}
