package playlist

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Value is a node in a property-list document. Implementations are String,
// Integer, Boolean, Date, *Dict, and *Array.
type Value interface {
	plistTag() string
}

// String is a plist <string> value.
type String string

// Integer is a plist <integer> value.
type Integer int64

// Boolean is a plist <true/> or <false/> marker.
type Boolean bool

// Date is a plist <date> value. It keeps the serialized timestamp verbatim
// so foreign documents round-trip without reformatting.
type Date string

func (String) plistTag() string  { return "string" }
func (Integer) plistTag() string { return "integer" }
func (Boolean) plistTag() string { return "boolean" }
func (Date) plistTag() string    { return "date" }
func (*Dict) plistTag() string   { return "dict" }
func (*Array) plistTag() string  { return "array" }

type dictEntry struct {
	key   string
	value Value
}

// Dict is an ordered key/value association. Keys keep insertion order on
// write; Set replaces an existing key in place.
type Dict struct {
	entries []dictEntry
}

// NewDict returns an empty ordered dictionary.
func NewDict() *Dict { return &Dict{} }

// Set stores value under key, preserving the position of an existing key.
func (d *Dict) Set(key string, value Value) {
	for i := range d.entries {
		if d.entries[i].key == key {
			d.entries[i].value = value
			return
		}
	}
	d.entries = append(d.entries, dictEntry{key: key, value: value})
}

// Get returns the value stored under key.
func (d *Dict) Get(key string) (Value, bool) {
	for i := range d.entries {
		if d.entries[i].key == key {
			return d.entries[i].value, true
		}
	}
	return nil, false
}

// Len reports the number of keys.
func (d *Dict) Len() int { return len(d.entries) }

// Each calls fn for every key/value pair in insertion order.
func (d *Dict) Each(fn func(key string, value Value)) {
	for i := range d.entries {
		fn(d.entries[i].key, d.entries[i].value)
	}
}

// DictValue returns the nested dictionary stored under key.
func (d *Dict) DictValue(key string) (*Dict, bool) {
	v, ok := d.Get(key)
	if !ok {
		return nil, false
	}
	sub, ok := v.(*Dict)
	return sub, ok
}

// ArrayValue returns the nested array stored under key.
func (d *Dict) ArrayValue(key string) (*Array, bool) {
	v, ok := d.Get(key)
	if !ok {
		return nil, false
	}
	arr, ok := v.(*Array)
	return arr, ok
}

// StringValue returns the string stored under key, or empty.
func (d *Dict) StringValue(key string) string {
	if v, ok := d.Get(key); ok {
		if s, ok := v.(String); ok {
			return string(s)
		}
	}
	return ""
}

// IntValue returns the integer stored under key, or 0. String values
// holding digits are accepted for tolerance with hand-edited documents.
func (d *Dict) IntValue(key string) int64 {
	v, ok := d.Get(key)
	if !ok {
		return 0
	}
	switch v := v.(type) {
	case Integer:
		return int64(v)
	case String:
		n, _ := strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
		return n
	}
	return 0
}

// Array is an ordered list of values.
type Array struct {
	Values []Value
}

// NewArray returns an empty array.
func NewArray() *Array { return &Array{} }

// Append adds a value at the end of the array.
func (a *Array) Append(value Value) {
	a.Values = append(a.Values, value)
}

// Document is a complete property list with a dictionary root.
type Document struct {
	Root *Dict
}

// NewDocument returns a document with an empty root dictionary.
func NewDocument() *Document {
	return &Document{Root: NewDict()}
}

const plistDoctype = `<!DOCTYPE plist PUBLIC "-//Apple Computer//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">`

// Encode writes the document as UTF-8 XML with the property-list DOCTYPE.
func (doc *Document) Encode(w io.Writer) error {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(plistDoctype)
	b.WriteString("\n")
	b.WriteString(`<plist version="1.0">`)
	b.WriteString("\n")
	writeDict(&b, doc.Root, 0)
	b.WriteString("</plist>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteByte('\t')
	}
}

func writeEscaped(b *strings.Builder, s string) {
	// xml.EscapeText never fails on a strings.Builder.
	_ = xml.EscapeText(b, []byte(s))
}

func writeValue(b *strings.Builder, v Value, depth int) {
	switch v := v.(type) {
	case String:
		indent(b, depth)
		b.WriteString("<string>")
		writeEscaped(b, string(v))
		b.WriteString("</string>\n")
	case Integer:
		indent(b, depth)
		fmt.Fprintf(b, "<integer>%d</integer>\n", int64(v))
	case Date:
		indent(b, depth)
		b.WriteString("<date>")
		writeEscaped(b, string(v))
		b.WriteString("</date>\n")
	case Boolean:
		indent(b, depth)
		if v {
			b.WriteString("<true/>\n")
		} else {
			b.WriteString("<false/>\n")
		}
	case *Dict:
		writeDict(b, v, depth)
	case *Array:
		indent(b, depth)
		if len(v.Values) == 0 {
			b.WriteString("<array/>\n")
			return
		}
		b.WriteString("<array>\n")
		for _, item := range v.Values {
			writeValue(b, item, depth+1)
		}
		indent(b, depth)
		b.WriteString("</array>\n")
	}
}

func writeDict(b *strings.Builder, d *Dict, depth int) {
	indent(b, depth)
	if d == nil || len(d.entries) == 0 {
		b.WriteString("<dict/>\n")
		return
	}
	b.WriteString("<dict>\n")
	for _, e := range d.entries {
		indent(b, depth+1)
		b.WriteString("<key>")
		writeEscaped(b, e.key)
		b.WriteString("</key>\n")
		writeValue(b, e.value, depth+1)
	}
	indent(b, depth)
	b.WriteString("</dict>\n")
}

// Parse reads a property-list document. Unknown elements are skipped and a
// dangling key without a value is dropped, so documents written by other
// tools still yield their recognizable parts.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("no plist element found")
			}
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "plist" {
			return nil, fmt.Errorf("unexpected root element %q", start.Name.Local)
		}
		break
	}

	root, err := parseRoot(dec)
	if err != nil {
		return nil, err
	}
	return &Document{Root: root}, nil
}

func parseRoot(dec *xml.Decoder) (*Dict, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			if tok.Name.Local != "dict" {
				return nil, fmt.Errorf("plist root is %q, expected dict", tok.Name.Local)
			}
			v, err := parseValue(dec, tok)
			if err != nil {
				return nil, err
			}
			d, ok := v.(*Dict)
			if !ok {
				return nil, fmt.Errorf("plist root did not parse as a dict")
			}
			return d, nil
		case xml.EndElement:
			return nil, fmt.Errorf("plist element has no root dict")
		}
	}
}

func parseValue(dec *xml.Decoder, start xml.StartElement) (Value, error) {
	switch start.Name.Local {
	case "dict":
		return parseDict(dec)
	case "array":
		return parseArray(dec)
	case "string":
		text, err := collectText(dec)
		return String(text), err
	case "date":
		text, err := collectText(dec)
		return Date(text), err
	case "integer":
		text, err := collectText(dec)
		if err != nil {
			return nil, err
		}
		n, _ := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		return Integer(n), nil
	case "true":
		if err := dec.Skip(); err != nil {
			return nil, err
		}
		return Boolean(true), nil
	case "false":
		if err := dec.Skip(); err != nil {
			return nil, err
		}
		return Boolean(false), nil
	default:
		if err := dec.Skip(); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func parseDict(dec *xml.Decoder) (*Dict, error) {
	d := NewDict()
	pendingKey := ""
	haveKey := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			if tok.Name.Local == "key" {
				text, err := collectText(dec)
				if err != nil {
					return nil, err
				}
				pendingKey = text
				haveKey = true
				continue
			}
			v, err := parseValue(dec, tok)
			if err != nil {
				return nil, err
			}
			if haveKey && v != nil {
				d.Set(pendingKey, v)
			}
			haveKey = false
		case xml.EndElement:
			return d, nil
		}
	}
}

func parseArray(dec *xml.Decoder) (*Array, error) {
	a := NewArray()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			v, err := parseValue(dec, tok)
			if err != nil {
				return nil, err
			}
			if v != nil {
				a.Append(v)
			}
		case xml.EndElement:
			return a, nil
		}
	}
}

func collectText(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch tok := tok.(type) {
		case xml.CharData:
			b.Write(tok)
		case xml.EndElement:
			return b.String(), nil
		case xml.StartElement:
			if err := dec.Skip(); err != nil {
				return "", err
			}
		}
	}
}
