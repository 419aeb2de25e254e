// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package ooxml parses an XLSX archive into an xlcore.Workbook and writes
// it back out, touching only the parts an edit actually changed (§4.12,
// §4.13). Everything it doesn't model structurally — conditional
// formatting, drawings, page setup, entire untouched worksheets — is
// captured as opaque bytes at read time and re-emitted verbatim.
package ooxml

import (
	"encoding/xml"
	"strings"
)

// rawElement captures one XML element's own attributes plus its exact
// inner-XML bytes, without interpreting its children. Decoding into this
// struct is how the reader preserves subtrees it doesn't model (§4.12):
// encoding/xml's innerxml tag copies the source bytes between the start
// and end tag verbatim, so round-tripping an untouched element is exact
// down to whitespace and attribute formatting of its descendants.
type rawElement struct {
	Name  string
	Attrs []xml.Attr
	Inner []byte
}

// decodeRaw reads the element start (already consumed from d) and
// everything up to its matching end tag into a rawElement.
func decodeRaw(d *xml.Decoder, start xml.StartElement) (rawElement, error) {
	var body struct {
		Attrs []xml.Attr `xml:",any,attr"`
		Inner []byte     `xml:",innerxml"`
	}
	if err := d.DecodeElement(&body, &start); err != nil {
		return rawElement{}, err
	}
	return rawElement{Name: start.Name.Local, Attrs: body.Attrs, Inner: body.Inner}, nil
}

// render reproduces the element's start tag, its captured inner bytes,
// and its end tag. Attribute order matches the order the decoder saw
// them in, which for Go's encoding/xml is document order.
func (re rawElement) render(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(re.Name)
	for _, a := range re.Attrs {
		writeAttr(b, a.Name.Local, a.Value)
	}
	if len(re.Inner) == 0 {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	b.Write(re.Inner)
	b.WriteString("</")
	b.WriteString(re.Name)
	b.WriteByte('>')
}

func writeAttr(b *strings.Builder, name, value string) {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(escapeAttr(value))
	b.WriteByte('"')
}

func escapeAttr(s string) string {
	r := strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

func escapeText(s string) string {
	r := strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;")
	return r.Replace(s)
}

// attrValue returns the value of the named attribute, ignoring its
// namespace prefix, and whether it was present.
func attrValue(attrs []xml.Attr, local string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// isNamespaceDecl reports whether attr is an "xmlns" or "xmlns:prefix"
// declaration, the attributes the namespace-pollution law (§8 law 9)
// forbids on any element but the part root.
func isNamespaceDecl(attr xml.Attr) bool {
	return attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns"
}

// stripNamespaceDecls returns attrs with any xmlns/xmlns:* entries
// removed, so a preserved child element inherits its parent's scope
// instead of redeclaring it (§4.13 step 3/4).
func stripNamespaceDecls(attrs []xml.Attr) []xml.Attr {
	out := attrs[:0:0]
	for _, a := range attrs {
		if !isNamespaceDecl(a) {
			out = append(out, a)
		}
	}
	return out
}
