// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

package xmlscan

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf16"
)

const infopathNamespace = "http://schemas.microsoft.com/office/infopath/2003/myXSD/2006-04-19T07:22:55"

const sampleForm = `<?xml version="1.0" encoding="UTF-8"?>
<?mso-infoPathSolution solutionVersion="1.0.0.1" productVersion="14.0.0" PIVersion="1.0.0.0" ?>
<my:myFields xmlns:my="` + infopathNamespace + `" xmlns:other="urn:other">
	<my:title>Application</my:title>
	<my:felt31>
		x0lGQRQAAAABAAAA
	</my:felt31>
	<my:felt32></my:felt32>
	<my:felt33/>
	<other:felt40>b3RoZXI=</other:felt40>
	<my:group>
		<my:felt7>bmVzdGVk</my:felt7>
	</my:group>
	<my:feltx>not-a-field</my:feltx>
</my:myFields>
`

func collect(t *testing.T, document string, selector Selector) []Field {
	t.Helper()
	var fields []Field
	err := Scan(strings.NewReader(document), selector, func(field Field) error {
		fields = append(fields, field)
		return nil
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return fields
}

func fieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = field.Name
	}
	return names
}

func TestScan_DefaultSelector(t *testing.T) {
	selector, err := NewSelector("", "")
	if err != nil {
		t.Fatalf("NewSelector: %v", err)
	}

	fields := collect(t, sampleForm, selector)
	got := strings.Join(fieldNames(fields), ",")
	want := "felt31,felt32,felt33,felt40,felt7"
	if got != want {
		t.Fatalf("fields = %s, want %s", got, want)
	}

	if fields[0].Text != "x0lGQRQAAAABAAAA" {
		t.Errorf("felt31 text = %q, want trimmed base64", fields[0].Text)
	}
	if fields[0].Namespace != infopathNamespace {
		t.Errorf("felt31 namespace = %q", fields[0].Namespace)
	}
	if fields[0].Line == 0 {
		t.Error("felt31 line should be recorded")
	}
	if fields[1].Text != "" || fields[2].Text != "" {
		t.Errorf("empty elements should have empty text, got %q and %q", fields[1].Text, fields[2].Text)
	}
	if fields[4].Text != "bmVzdGVk" {
		t.Errorf("nested felt7 text = %q", fields[4].Text)
	}
}

func TestScan_NamespacePinned(t *testing.T) {
	selector, err := NewSelector(DefaultFieldPattern, infopathNamespace)
	if err != nil {
		t.Fatalf("NewSelector: %v", err)
	}

	fields := collect(t, sampleForm, selector)
	for _, field := range fields {
		if field.Name == "felt40" {
			t.Fatal("felt40 is in another namespace and should not match")
		}
	}
	if len(fields) != 4 {
		t.Errorf("got %d fields, want 4", len(fields))
	}
}

func TestScan_CustomPattern(t *testing.T) {
	selector, err := NewSelector(`^title$`, "")
	if err != nil {
		t.Fatalf("NewSelector: %v", err)
	}
	fields := collect(t, sampleForm, selector)
	if len(fields) != 1 || fields[0].Text != "Application" {
		t.Fatalf("fields = %+v, want the title element", fields)
	}
}

func TestScan_LeadingTextOnly(t *testing.T) {
	document := `<root><felt1> aGVhZA== <child>ignored</child> tail </felt1></root>`
	selector, _ := NewSelector("", "")

	fields := collect(t, document, selector)
	if len(fields) != 1 {
		t.Fatalf("got %d fields, want 1", len(fields))
	}
	if fields[0].Text != "aGVhZA==" {
		t.Errorf("Text = %q, want only the text before the first child", fields[0].Text)
	}
}

func TestScan_CDATA(t *testing.T) {
	document := `<root><felt1><![CDATA[Y2RhdGE=]]></felt1></root>`
	selector, _ := NewSelector("", "")

	fields := collect(t, document, selector)
	if len(fields) != 1 || fields[0].Text != "Y2RhdGE=" {
		t.Fatalf("fields = %+v, want CDATA text", fields)
	}
}

func TestScan_UTF16Document(t *testing.T) {
	document := `<?xml version="1.0" encoding="UTF-16"?><root><felt2>dXRmMTY=</felt2></root>`
	units := utf16.Encode([]rune(document))
	encoded := []byte{0xFF, 0xFE}
	for _, unit := range units {
		encoded = append(encoded, byte(unit), byte(unit>>8))
	}
	selector, _ := NewSelector("", "")

	fields := collect(t, string(encoded), selector)
	if len(fields) != 1 || fields[0].Text != "dXRmMTY=" {
		t.Fatalf("fields = %+v, want felt2 from UTF-16 document", fields)
	}
}

func TestScan_UTF8ByteOrderMark(t *testing.T) {
	document := "\xEF\xBB\xBF<root><felt3>Ym9t</felt3></root>"
	selector, _ := NewSelector("", "")

	fields := collect(t, document, selector)
	if len(fields) != 1 || fields[0].Text != "Ym9t" {
		t.Fatalf("fields = %+v, want felt3", fields)
	}
}

func TestScan_Latin1Document(t *testing.T) {
	document := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><root><title>S\xF8knad</title><felt1>bGF0aW4=</felt1></root>"
	selector, _ := NewSelector(`^(felt\d+|title)$`, "")

	fields := collect(t, document, selector)
	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(fields))
	}
	if fields[0].Text != "Søknad" {
		t.Errorf("title = %q, want Søknad", fields[0].Text)
	}
}

func TestScan_MalformedDocument(t *testing.T) {
	selector, _ := NewSelector("", "")
	err := Scan(strings.NewReader("<root><felt1>abc</root>"), selector, func(Field) error { return nil })
	if err == nil {
		t.Fatal("Scan should fail on mismatched tags")
	}
}

func TestScan_VisitErrorStops(t *testing.T) {
	selector, _ := NewSelector("", "")
	stop := errors.New("stop")

	calls := 0
	err := Scan(strings.NewReader(sampleForm), selector, func(Field) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("Scan error = %v, want visit error", err)
	}
	if calls != 1 {
		t.Errorf("visit called %d times, want 1", calls)
	}
}

func TestNewSelector_InvalidPattern(t *testing.T) {
	if _, err := NewSelector("felt(", ""); err == nil {
		t.Fatal("NewSelector should reject an invalid pattern")
	}
}
