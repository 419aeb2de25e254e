// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xlcore/xlcore"
)

// schemaOrder is the fixed OOXML child-element sequence for a worksheet
// part (§4.13 step 4). Regeneration walks this list in order; any
// element this package doesn't see is appended at the trailing
// "unknown" slot.
var schemaOrder = []string{
	"sheetPr", "dimension", "sheetViews", "sheetFormatPr", "cols",
	"sheetData", "mergeCells", "conditionalFormatting",
	"printOptions", "pageMargins", "pageSetup", "headerFooter",
	"rowBreaks", "colBreaks", "customProperties",
	"drawing", "legacyDrawing", "picture", "oleObjects", "controls", "extLst",
}

func schemaOrderIndex(name string) int {
	for i, n := range schemaOrder {
		if n == name {
			return i
		}
	}
	return len(schemaOrder) // unknown siblings sort to the trailing slot
}

// worksheetRoot carries the root element's own attributes, needed only
// when the sheet is later regenerated.
type worksheetRoot struct {
	Name  xml.Name
	Attrs []xml.Attr
}

// parseWorksheetXML parses one xl/worksheets/sheetN.xml part into a
// Sheet, decoding sheetData and mergeCells structurally and capturing
// every other child verbatim (§4.12).
func parseWorksheetXML(data []byte, name string, sheetID int, state string, sharedStrings []string, reg *xlcore.StyleRegistry) (*xlcore.Sheet, worksheetRoot, error) {
	sheet := xlcore.NewSheet(name, sheetID)
	sheet.State = state
	var root worksheetRoot

	d := xml.NewDecoder(bytes.NewReader(data))
	rootSeen := false
	for {
		tok, err := d.Token()
		if err != nil {
			if err.Error() == "EOF" {
				break
			}
			return nil, root, fmt.Errorf("ooxml: worksheet %q: %w", name, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !rootSeen {
			root = worksheetRoot{Name: start.Name, Attrs: append([]xml.Attr(nil), start.Attr...)}
			rootSeen = true
			continue
		}
		re, err := decodeRaw(d, start)
		if err != nil {
			return nil, root, fmt.Errorf("ooxml: worksheet %q: element %q: %w", name, start.Name.Local, err)
		}
		switch re.Name {
		case "sheetData":
			if err := parseSheetData(re.Inner, sheet, sharedStrings, reg); err != nil {
				return nil, root, fmt.Errorf("ooxml: worksheet %q: sheetData: %w", name, err)
			}
		case "mergeCells":
			parseMergeCells(re.Inner, sheet)
		case "cols":
			parseCols(re.Inner, sheet)
			sheet.Preserved = append(sheet.Preserved, xlcore.PreservedElement{Name: re.Name, XML: []byte(renderElement(re))})
		default:
			sheet.Preserved = append(sheet.Preserved, xlcore.PreservedElement{Name: re.Name, XML: []byte(renderElement(re))})
		}
	}
	return sheet, root, nil
}

func renderElement(re rawElement) string {
	var b strings.Builder
	re.render(&b)
	return b.String()
}

type cellRaw struct {
	Ref   string `xml:"r,attr"`
	Type  string `xml:"t,attr"`
	Style string `xml:"s,attr"`
	F     *struct {
		Text string `xml:",chardata"`
	} `xml:"f"`
	V     *string `xml:"v"`
	Is    *struct {
		T string `xml:"t"`
	} `xml:"is"`
}

func parseSheetData(inner []byte, sheet *xlcore.Sheet, sharedStrings []string, reg *xlcore.StyleRegistry) error {
	d := xml.NewDecoder(bytes.NewReader(inner))
	for {
		tok, err := d.Token()
		if err != nil {
			return nil
		}
		rowStart, ok := tok.(xml.StartElement)
		if !ok || rowStart.Name.Local != "row" {
			continue
		}
		rowIdx := -1
		if v, ok := attrValue(rowStart.Attr, "r"); ok {
			n, _ := strconv.Atoi(v)
			rowIdx = n - 1
		}
		props := xlcore.RowProps{}
		if v, ok := attrValue(rowStart.Attr, "ht"); ok {
			props.Height, _ = strconv.ParseFloat(v, 64)
			props.HasHeight = true
		}
		if v, ok := attrValue(rowStart.Attr, "hidden"); ok {
			props.Hidden = v == "1"
		}
		if v, ok := attrValue(rowStart.Attr, "outlineLevel"); ok {
			props.OutlineLevel, _ = strconv.Atoi(v)
		}
		if v, ok := attrValue(rowStart.Attr, "customHeight"); ok {
			props.CustomHeight = v == "1"
		}
		if rowIdx >= 0 && (props.HasHeight || props.Hidden || props.OutlineLevel != 0) {
			*sheet = *sheet.SetRowProperties(rowIdx, props)
		}

		re, err := decodeRaw(d, rowStart)
		if err != nil {
			return err
		}
		cd := xml.NewDecoder(bytes.NewReader(re.Inner))
		for {
			ct, err := cd.Token()
			if err != nil {
				break
			}
			cellStart, ok := ct.(xml.StartElement)
			if !ok || cellStart.Name.Local != "c" {
				continue
			}
			var c cellRaw
			if err := cd.DecodeElement(&c, &cellStart); err != nil {
				return err
			}
			if c.Ref == "" {
				continue
			}
			ref, err := xlcore.ParseARef(c.Ref)
			if err != nil {
				return fmt.Errorf("cell %q: %w", c.Ref, err)
			}
			value, err := decodeCellValue(c, sharedStrings)
			if err != nil {
				return fmt.Errorf("cell %q: %w", c.Ref, err)
			}
			styleID := 0
			hasStyle := false
			if c.Style != "" {
				sid, _ := strconv.Atoi(c.Style)
				if _, ok := reg.Lookup(sid); ok {
					styleID, hasStyle = sid, true
				}
			}
			if hasStyle {
				*sheet = *sheet.PutStyled(ref, value, styleID)
			} else {
				*sheet = *sheet.Put(ref, value)
			}
		}
	}
}

func decodeCellValue(c cellRaw, sharedStrings []string) (xlcore.CellValue, error) {
	var raw string
	if c.V != nil {
		raw = *c.V
	}
	switch c.Type {
	case "s":
		idx, err := strconv.Atoi(raw)
		if err != nil || idx < 0 || idx >= len(sharedStrings) {
			return xlcore.Empty, fmt.Errorf("invalid shared string index %q", raw)
		}
		str := xlcore.Text(sharedStrings[idx])
		return withFormula(c, str), nil
	case "inlineStr":
		text := ""
		if c.Is != nil {
			text = c.Is.T
		}
		return withFormula(c, xlcore.Text(text)), nil
	case "str":
		return withFormula(c, xlcore.Text(raw)), nil
	case "b":
		return withFormula(c, xlcore.Bool(raw == "1")), nil
	case "e":
		return withFormula(c, xlcore.Error(xlcore.ErrorCode(raw))), nil
	default:
		if c.F == nil && raw == "" {
			return xlcore.Empty, nil
		}
		var d decimal.Decimal
		if raw != "" {
			var err error
			d, err = decimal.NewFromString(raw)
			if err != nil {
				return xlcore.Empty, fmt.Errorf("invalid numeric value %q", raw)
			}
		}
		return withFormula(c, xlcore.Number(d)), nil
	}
}

// withFormula wraps cached into a Formula cell when the source cell
// carried an <f> element, otherwise returns cached unchanged.
func withFormula(c cellRaw, cached xlcore.CellValue) xlcore.CellValue {
	if c.F == nil {
		return cached
	}
	cc := cached
	return xlcore.Formula(c.F.Text, &cc)
}

func parseMergeCells(inner []byte, sheet *xlcore.Sheet) {
	d := xml.NewDecoder(bytes.NewReader(inner))
	for {
		tok, err := d.Token()
		if err != nil {
			return
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "mergeCell" {
			continue
		}
		v, ok := attrValue(start.Attr, "ref")
		d.Skip()
		if !ok {
			continue
		}
		rng, err := xlcore.ParseCellRange(v)
		if err != nil {
			continue
		}
		*sheet = *sheet.Merge(rng)
	}
}

func parseCols(inner []byte, sheet *xlcore.Sheet) {
	d := xml.NewDecoder(bytes.NewReader(inner))
	for {
		tok, err := d.Token()
		if err != nil {
			return
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "col" {
			continue
		}
		min, max := 0, 0
		if v, ok := attrValue(start.Attr, "min"); ok {
			min, _ = strconv.Atoi(v)
		}
		if v, ok := attrValue(start.Attr, "max"); ok {
			max, _ = strconv.Atoi(v)
		}
		props := xlcore.ColProps{}
		if v, ok := attrValue(start.Attr, "width"); ok {
			props.Width, _ = strconv.ParseFloat(v, 64)
			props.HasWidth = true
		}
		if v, ok := attrValue(start.Attr, "hidden"); ok {
			props.Hidden = v == "1"
		}
		if v, ok := attrValue(start.Attr, "outlineLevel"); ok {
			props.OutlineLevel, _ = strconv.Atoi(v)
		}
		if v, ok := attrValue(start.Attr, "customWidth"); ok {
			props.CustomWidth = v == "1"
		}
		d.Skip()
		for col := min; col <= max && col > 0; col++ {
			*sheet = *sheet.SetColumnProperties(col-1, props)
		}
	}
}

// emitWorksheetXML regenerates one worksheet part from the current
// Sheet model: sheetData and mergeCells are rebuilt from the model,
// every other captured subtree is re-emitted verbatim in schema order
// (§4.13 steps 4-5).
// schemaSlot pairs a preserved or regenerated worksheet child element with
// its position in the OOXML schema order, so the slots can be sorted into
// place before being concatenated (§4.13 step 4/5).
type schemaSlot struct {
	order int
	xml   string
}

func emitWorksheetXML(sheet *xlcore.Sheet, root worksheetRoot, table *[]string, reg *xlcore.StyleRegistry) []byte {
	var slots []schemaSlot
	for _, pe := range sheet.Preserved {
		slots = append(slots, schemaSlot{order: schemaOrderIndex(pe.Name), xml: stripNamespacesFromBytes(pe.XML)})
	}
	slots = append(slots, schemaSlot{order: schemaOrderIndex("sheetData"), xml: emitSheetData(sheet, table)})
	if len(sheet.Merges()) > 0 {
		slots = append(slots, schemaSlot{order: schemaOrderIndex("mergeCells"), xml: emitMergeCells(sheet)})
	}
	stableSortSlots(slots)

	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteByte('<')
	b.WriteString(root.Name.Local)
	for _, a := range root.Attrs {
		writeAttr(&b, qualifiedAttrName(a), a.Value)
	}
	b.WriteByte('>')
	for _, s := range slots {
		b.WriteString(s.xml)
	}
	b.WriteString("</")
	b.WriteString(root.Name.Local)
	b.WriteByte('>')
	return []byte(b.String())
}

// stableSortSlots is an insertion sort on the small per-sheet slot list,
// stable so repeated elements like conditionalFormatting keep their
// relative order (§4.13 step 4's "conditionalFormatting*").
func stableSortSlots(slots []schemaSlot) {
	for i := 1; i < len(slots); i++ {
		j := i
		for j > 0 && slots[j-1].order > slots[j].order {
			slots[j-1], slots[j] = slots[j], slots[j-1]
			j--
		}
	}
}

// stripNamespacesFromBytes removes any xmlns attribute from a captured
// element's own start tag at render time, satisfying the namespace-
// pollution law (§8 law 9) for elements that were decoded (and hence
// already lost any declarations their own children carried, which
// "innerxml" preserves verbatim and is left untouched).
func stripNamespacesFromBytes(xmlBytes []byte) string {
	d := xml.NewDecoder(bytes.NewReader(xmlBytes))
	tok, err := d.Token()
	if err != nil {
		return string(xmlBytes)
	}
	start, ok := tok.(xml.StartElement)
	if !ok {
		return string(xmlBytes)
	}
	re, err := decodeRaw(d, start)
	if err != nil {
		return string(xmlBytes)
	}
	re.Attrs = stripNamespaceDecls(re.Attrs)
	var b strings.Builder
	re.render(&b)
	return b.String()
}

func emitSheetData(sheet *xlcore.Sheet, table *[]string) string {
	var b strings.Builder
	b.WriteString("<sheetData>")
	cells := sheet.NonEmptyCells()
	row := -1
	rowOpen := false
	closeRow := func() {
		if rowOpen {
			b.WriteString("</row>")
			rowOpen = false
		}
	}
	for _, c := range cells {
		if c.Ref.Row != row {
			closeRow()
			row = c.Ref.Row
			fmt.Fprintf(&b, `<row r="%d">`, row+1)
			rowOpen = true
		}
		emitCell(&b, c, table)
	}
	closeRow()
	b.WriteString("</sheetData>")
	return b.String()
}

func emitCell(b *strings.Builder, c xlcore.Cell, table *[]string) {
	fmt.Fprintf(b, `<c r="%s"`, c.Ref.String())
	if c.HasStyle {
		fmt.Fprintf(b, ` s="%d"`, c.StyleID)
	}
	value := c.Value
	formulaSrc, cached, isFormula := value.AsFormula()
	if isFormula && cached != nil {
		value = *cached
	}
	switch value.Kind() {
	case xlcore.KindNumber:
		n, _ := value.AsNumber()
		b.WriteByte('>')
		if isFormula {
			fmt.Fprintf(b, "<f>%s</f>", escapeText(formulaSrc))
		}
		fmt.Fprintf(b, "<v>%s</v></c>", n.String())
	case xlcore.KindBool:
		bv, _ := value.AsBool()
		b.WriteString(` t="b">`)
		if isFormula {
			fmt.Fprintf(b, "<f>%s</f>", escapeText(formulaSrc))
		}
		v := "0"
		if bv {
			v = "1"
		}
		fmt.Fprintf(b, "<v>%s</v></c>", v)
	case xlcore.KindError:
		ev, _ := value.AsError()
		b.WriteString(` t="e">`)
		if isFormula {
			fmt.Fprintf(b, "<f>%s</f>", escapeText(formulaSrc))
		}
		fmt.Fprintf(b, "<v>%s</v></c>", string(ev))
	case xlcore.KindDateTime:
		t, _ := value.AsDateTime()
		b.WriteByte('>')
		if isFormula {
			fmt.Fprintf(b, "<f>%s</f>", escapeText(formulaSrc))
		}
		fmt.Fprintf(b, "<v>%s</v></c>", xlcore.TimeToSerial(t).String())
	case xlcore.KindText, xlcore.KindRichText:
		text, _ := value.AsText()
		if text == "" {
			if runs, ok := value.AsRichText(); ok {
				var rb strings.Builder
				for _, r := range runs {
					rb.WriteString(r.Text)
				}
				text = rb.String()
			}
		}
		if isFormula {
			b.WriteString(` t="str">`)
			fmt.Fprintf(b, "<f>%s</f><v>%s</v></c>", escapeText(formulaSrc), escapeText(text))
			return
		}
		idx, newTable := internString(*table, text)
		*table = newTable
		fmt.Fprintf(b, ` t="s"><v>%d</v></c>`, idx)
	default:
		b.WriteString("/>")
	}
}

func emitMergeCells(sheet *xlcore.Sheet) string {
	merges := sheet.Merges()
	var b strings.Builder
	fmt.Fprintf(&b, `<mergeCells count="%d">`, len(merges))
	for _, m := range merges {
		fmt.Fprintf(&b, `<mergeCell ref="%s"/>`, m.String())
	}
	b.WriteString("</mergeCells>")
	return b.String()
}
