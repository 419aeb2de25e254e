// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// parseSharedStrings reads xl/sharedStrings.xml into an ordered string
// table. Rich-text <si> entries (multiple <r> runs) are flattened to
// their plain concatenation, and the worksheet reader stores such a cell
// as plain xlcore.Text: run boundaries and run formatting are not kept.
func parseSharedStrings(data []byte) ([]string, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	for {
		tok, err := d.Token()
		if err != nil {
			if err.Error() == "EOF" {
				break
			}
			return nil, fmt.Errorf("ooxml: sharedStrings.xml: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "si" {
			continue
		}
		var si struct {
			T string `xml:"t"`
			R []struct {
				T string `xml:"t"`
			} `xml:"r"`
		}
		if err := d.DecodeElement(&si, &start); err != nil {
			return nil, fmt.Errorf("ooxml: sharedStrings.xml: si: %w", err)
		}
		if len(si.R) > 0 {
			var b strings.Builder
			for _, r := range si.R {
				b.WriteString(r.T)
			}
			out = append(out, b.String())
		} else {
			out = append(out, si.T)
		}
	}
	return out, nil
}

// emitSharedStrings regenerates xl/sharedStrings.xml from the current
// table, always in the reader's original-then-appended order: strings
// already present keep their index, new ones are appended, so every
// cell's stored index remains valid (§4.13's sharedStrings regeneration).
func emitSharedStrings(table []string) []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, `<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="%d" uniqueCount="%d">`, len(table), len(table))
	for _, s := range table {
		b.WriteString("<si><t")
		if needsPreserveSpace(s) {
			b.WriteString(` xml:space="preserve"`)
		}
		b.WriteByte('>')
		b.WriteString(escapeText(s))
		b.WriteString("</t></si>")
	}
	b.WriteString("</sst>")
	return []byte(b.String())
}

func needsPreserveSpace(s string) bool {
	if s == "" {
		return false
	}
	return s[0] == ' ' || s[len(s)-1] == ' ' || strings.Contains(s, "\n") || strings.Contains(s, "\t")
}

// internString returns the index of s in table, appending it if it's
// not already present, and the (possibly grown) table.
func internString(table []string, s string) (int, []string) {
	for i, existing := range table {
		if existing == s {
			return i, table
		}
	}
	return len(table), append(table, s)
}
