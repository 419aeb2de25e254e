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

	"github.com/xlcore/xlcore"
)

// stylesXML is the subset of xl/styles.xml this package models
// structurally: number formats, fonts, fills, borders, and the cellXfs
// table that ties them together into the ids a cell's "s" attribute
// references. Unknown sibling elements (dxfs, tableStyles, extLst, ...)
// are collected into Unknown as raw elements; emitStylesXML does not
// write them back, so they are absent from a regenerated styles part.
type stylesXML struct {
	NumFmts  map[int]string
	Fonts    []xlcore.Font
	Fills    []xlcore.Fill
	Borders  []xlcore.Border
	CellXfs  []cellXf
	Unknown  []rawElement
}

type cellXf struct {
	NumFmtID   int
	FontID     int
	FillID     int
	BorderID   int
	Horizontal string
	Vertical   string
	Indent     int
	WrapText   bool
}

// parseStylesXML builds a StyleRegistry from xl/styles.xml, in the same
// dense, zero-based id order Excel itself uses for cellXfs so that a
// cell's stored style id keeps meaning without translation.
func parseStylesXML(data []byte) (*xlcore.StyleRegistry, []rawElement, error) {
	sx := &stylesXML{NumFmts: map[int]string{}}
	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := d.Token()
		if err != nil {
			if err.Error() == "EOF" {
				break
			}
			return nil, nil, fmt.Errorf("ooxml: styles.xml: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local == "styleSheet" {
			continue // root; nothing to capture beyond its namespace scope
		}
		re, err := decodeRaw(d, start)
		if err != nil {
			return nil, nil, fmt.Errorf("ooxml: styles.xml: element %q: %w", start.Name.Local, err)
		}
		switch re.Name {
		case "numFmts":
			parseNumFmts(re.Inner, sx.NumFmts)
		case "fonts":
			sx.Fonts = parseFonts(re.Inner)
		case "fills":
			sx.Fills = parseFills(re.Inner)
		case "borders":
			sx.Borders = parseBorders(re.Inner)
		case "cellXfs":
			sx.CellXfs = parseCellXfs(re.Inner)
		default:
			sx.Unknown = append(sx.Unknown, re)
		}
	}
	reg := xlcore.NewStyleRegistry()
	for _, xf := range sx.CellXfs {
		style := xlcore.Style{NumberFormat: "General"}
		if nf, ok := sx.NumFmts[xf.NumFmtID]; ok {
			style.NumberFormat = nf
		} else if builtin, ok := builtinNumFmts[xf.NumFmtID]; ok {
			style.NumberFormat = builtin
		}
		if xf.FontID >= 0 && xf.FontID < len(sx.Fonts) {
			style.Font = sx.Fonts[xf.FontID]
		}
		if xf.FillID >= 0 && xf.FillID < len(sx.Fills) {
			style.Fill = sx.Fills[xf.FillID]
		}
		if xf.BorderID >= 0 && xf.BorderID < len(sx.Borders) {
			style.Border = sx.Borders[xf.BorderID]
		}
		style.Alignment = xlcore.Alignment{Horizontal: xf.Horizontal, Vertical: xf.Vertical, Indent: xf.Indent, WrapText: xf.WrapText}
		reg.Register(style)
	}
	return reg, sx.Unknown, nil
}

// builtinNumFmts covers the fixed, always-available Excel number format
// ids that never appear in a workbook's own <numFmts> table.
var builtinNumFmts = map[int]string{
	0: "General", 1: "0", 2: "0.00", 3: "#,##0", 4: "#,##0.00",
	9: "0%", 10: "0.00%", 11: "0.00E+00", 12: "# ?/?", 13: "# ??/??",
	14: "m/d/yy", 15: "d-mmm-yy", 16: "d-mmm", 17: "mmm-yy", 18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM", 20: "h:mm", 21: "h:mm:ss", 22: "m/d/yy h:mm",
	37: "#,##0 ;(#,##0)", 38: "#,##0 ;[Red](#,##0)",
	39: "#,##0.00;(#,##0.00)", 40: "#,##0.00;[Red](#,##0.00)",
	45: "mm:ss", 46: "[h]:mm:ss", 47: "mmss.0", 48: "##0.0E+0", 49: "@",
}

func parseNumFmts(inner []byte, out map[int]string) {
	d := xml.NewDecoder(bytes.NewReader(inner))
	for {
		tok, err := d.Token()
		if err != nil {
			return
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "numFmt" {
			continue
		}
		var elem struct {
			ID   int    `xml:"numFmtId,attr"`
			Code string `xml:"formatCode,attr"`
		}
		if d.DecodeElement(&elem, &start) == nil {
			out[elem.ID] = elem.Code
		}
	}
}

func parseFonts(inner []byte) []xlcore.Font {
	d := xml.NewDecoder(bytes.NewReader(inner))
	var out []xlcore.Font
	for {
		tok, err := d.Token()
		if err != nil {
			return out
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "font" {
			continue
		}
		re, err := decodeRaw(d, start)
		if err != nil {
			return out
		}
		out = append(out, fontFromRaw(re))
	}
}

func fontFromRaw(re rawElement) xlcore.Font {
	var f xlcore.Font
	d := xml.NewDecoder(bytes.NewReader(re.Inner))
	for {
		tok, err := d.Token()
		if err != nil {
			return f
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		elemAttrs := start.Attr
		switch start.Name.Local {
		case "name":
			if v, ok := attrValue(elemAttrs, "val"); ok {
				f.Name = v
			}
		case "sz":
			if v, ok := attrValue(elemAttrs, "val"); ok {
				f.Size, _ = strconv.ParseFloat(v, 64)
			}
		case "b":
			f.Bold = boolAttr(elemAttrs)
		case "i":
			f.Italic = boolAttr(elemAttrs)
		case "u":
			f.Underline = true
		case "color":
			if v, ok := attrValue(elemAttrs, "rgb"); ok {
				f.Color = v
			}
		}
		d.Skip()
	}
}

// boolAttr implements OOXML's "presence means true unless val=0/false"
// convention for the <b/>, <i/> style flags.
func boolAttr(attrs []xml.Attr) bool {
	if v, ok := attrValue(attrs, "val"); ok {
		return v != "0" && !strings.EqualFold(v, "false")
	}
	return true
}

func parseFills(inner []byte) []xlcore.Fill {
	d := xml.NewDecoder(bytes.NewReader(inner))
	var out []xlcore.Fill
	for {
		tok, err := d.Token()
		if err != nil {
			return out
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "fill" {
			continue
		}
		re, err := decodeRaw(d, start)
		if err != nil {
			return out
		}
		out = append(out, fillFromRaw(re))
	}
}

func fillFromRaw(re rawElement) xlcore.Fill {
	var fill xlcore.Fill
	d := xml.NewDecoder(bytes.NewReader(re.Inner))
	for {
		tok, err := d.Token()
		if err != nil {
			return fill
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "patternFill" {
			continue
		}
		if v, ok := attrValue(start.Attr, "patternType"); ok {
			fill.Pattern = v
		}
		pd, err := decodeRaw(d, start)
		if err != nil {
			return fill
		}
		inner := xml.NewDecoder(bytes.NewReader(pd.Inner))
		for {
			t, err := inner.Token()
			if err != nil {
				break
			}
			s, ok := t.(xml.StartElement)
			if !ok {
				continue
			}
			switch s.Name.Local {
			case "fgColor":
				if v, ok := attrValue(s.Attr, "rgb"); ok {
					fill.FgColor = v
				}
			case "bgColor":
				if v, ok := attrValue(s.Attr, "rgb"); ok {
					fill.BgColor = v
				}
			}
			inner.Skip()
		}
		return fill
	}
}

func parseBorders(inner []byte) []xlcore.Border {
	d := xml.NewDecoder(bytes.NewReader(inner))
	var out []xlcore.Border
	for {
		tok, err := d.Token()
		if err != nil {
			return out
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "border" {
			continue
		}
		re, err := decodeRaw(d, start)
		if err != nil {
			return out
		}
		out = append(out, borderFromRaw(re))
	}
}

func borderFromRaw(re rawElement) xlcore.Border {
	var b xlcore.Border
	d := xml.NewDecoder(bytes.NewReader(re.Inner))
	for {
		tok, err := d.Token()
		if err != nil {
			return b
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		side := borderSideFromAttrs(start.Attr)
		switch start.Name.Local {
		case "left":
			b.Left = side
		case "right":
			b.Right = side
		case "top":
			b.Top = side
		case "bottom":
			b.Bottom = side
		}
		d.Skip()
	}
}

func borderSideFromAttrs(attrs []xml.Attr) xlcore.BorderSide {
	side := xlcore.BorderSide{}
	if v, ok := attrValue(attrs, "style"); ok {
		side.Style = v
	}
	return side
}

func parseCellXfs(inner []byte) []cellXf {
	d := xml.NewDecoder(bytes.NewReader(inner))
	var out []cellXf
	for {
		tok, err := d.Token()
		if err != nil {
			return out
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "xf" {
			continue
		}
		xf := cellXf{}
		if v, ok := attrValue(start.Attr, "numFmtId"); ok {
			xf.NumFmtID, _ = strconv.Atoi(v)
		}
		if v, ok := attrValue(start.Attr, "fontId"); ok {
			xf.FontID, _ = strconv.Atoi(v)
		}
		if v, ok := attrValue(start.Attr, "fillId"); ok {
			xf.FillID, _ = strconv.Atoi(v)
		}
		if v, ok := attrValue(start.Attr, "borderId"); ok {
			xf.BorderID, _ = strconv.Atoi(v)
		}
		re, err := decodeRaw(d, start)
		if err != nil {
			return out
		}
		ad := xml.NewDecoder(bytes.NewReader(re.Inner))
		for {
			t, err := ad.Token()
			if err != nil {
				break
			}
			s, ok := t.(xml.StartElement)
			if !ok || s.Name.Local != "alignment" {
				continue
			}
			if v, ok := attrValue(s.Attr, "horizontal"); ok {
				xf.Horizontal = v
			}
			if v, ok := attrValue(s.Attr, "vertical"); ok {
				xf.Vertical = v
			}
			if v, ok := attrValue(s.Attr, "indent"); ok {
				xf.Indent, _ = strconv.Atoi(v)
			}
			if v, ok := attrValue(s.Attr, "wrapText"); ok {
				xf.WrapText = v == "1" || strings.EqualFold(v, "true")
			}
			ad.Skip()
		}
		out = append(out, xf)
	}
}

// emitStylesXML regenerates xl/styles.xml from the registry in dense id
// order, so cellXfs[i] is exactly the style registered under id i.
func emitStylesXML(reg *xlcore.StyleRegistry) []byte {
	fontOf := map[string]int{}
	fillOf := map[string]int{}
	borderOf := map[string]int{}
	numFmtOf := map[string]int{}
	var fonts []xlcore.Font
	var fills []xlcore.Fill
	var borders []xlcore.Border
	var customFmts []struct {
		ID   int
		Code string
	}
	nextCustomID := 164 // first id outside the builtin range

	var xfs []cellXf
	for i := 0; i < reg.Len(); i++ {
		style, _ := reg.Lookup(i)
		fontKey := fmt.Sprintf("%+v", style.Font)
		fid, ok := fontOf[fontKey]
		if !ok {
			fid = len(fonts)
			fonts = append(fonts, style.Font)
			fontOf[fontKey] = fid
		}
		fillKey := fmt.Sprintf("%+v", style.Fill)
		flid, ok := fillOf[fillKey]
		if !ok {
			flid = len(fills)
			fills = append(fills, style.Fill)
			fillOf[fillKey] = flid
		}
		borderKey := fmt.Sprintf("%+v", style.Border)
		bid, ok := borderOf[borderKey]
		if !ok {
			bid = len(borders)
			borders = append(borders, style.Border)
			borderOf[borderKey] = bid
		}
		numFmtID := numFmtIDFor(style.NumberFormat, numFmtOf, &customFmts, &nextCustomID)
		xfs = append(xfs, cellXf{
			NumFmtID: numFmtID, FontID: fid, FillID: flid, BorderID: bid,
			Horizontal: style.Alignment.Horizontal, Vertical: style.Alignment.Vertical,
			Indent: style.Alignment.Indent, WrapText: style.Alignment.WrapText,
		})
	}

	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<styleSheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">`)
	if len(customFmts) > 0 {
		fmt.Fprintf(&b, `<numFmts count="%d">`, len(customFmts))
		for _, nf := range customFmts {
			fmt.Fprintf(&b, `<numFmt numFmtId="%d" formatCode="%s"/>`, nf.ID, escapeAttr(nf.Code))
		}
		b.WriteString("</numFmts>")
	}
	fmt.Fprintf(&b, `<fonts count="%d">`, len(fonts))
	for _, f := range fonts {
		emitFont(&b, f)
	}
	b.WriteString("</fonts>")
	fmt.Fprintf(&b, `<fills count="%d">`, len(fills))
	for _, fl := range fills {
		emitFill(&b, fl)
	}
	b.WriteString("</fills>")
	fmt.Fprintf(&b, `<borders count="%d">`, len(borders))
	for _, bd := range borders {
		emitBorder(&b, bd)
	}
	b.WriteString("</borders>")
	b.WriteString(`<cellStyleXfs count="1"><xf numFmtId="0" fontId="0" fillId="0" borderId="0"/></cellStyleXfs>`)
	fmt.Fprintf(&b, `<cellXfs count="%d">`, len(xfs))
	for _, xf := range xfs {
		emitXf(&b, xf)
	}
	b.WriteString("</cellXfs>")
	b.WriteString("</styleSheet>")
	return []byte(b.String())
}

func numFmtIDFor(code string, seen map[string]int, custom *[]struct {
	ID   int
	Code string
}, next *int) int {
	if code == "" || code == "General" {
		return 0
	}
	for id, builtin := range builtinNumFmts {
		if builtin == code {
			return id
		}
	}
	if id, ok := seen[code]; ok {
		return id
	}
	id := *next
	*next++
	seen[code] = id
	*custom = append(*custom, struct {
		ID   int
		Code string
	}{ID: id, Code: code})
	return id
}

func trimFloatStr(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func emitFont(b *strings.Builder, f xlcore.Font) {
	b.WriteString("<font>")
	if f.Bold {
		b.WriteString("<b/>")
	}
	if f.Italic {
		b.WriteString("<i/>")
	}
	if f.Underline {
		b.WriteString("<u/>")
	}
	if f.Size != 0 {
		fmt.Fprintf(b, `<sz val="%s"/>`, trimFloatStr(f.Size))
	}
	if f.Color != "" {
		fmt.Fprintf(b, `<color rgb="%s"/>`, escapeAttr(f.Color))
	}
	if f.Name != "" {
		fmt.Fprintf(b, `<name val="%s"/>`, escapeAttr(f.Name))
	}
	b.WriteString("</font>")
}

func emitFill(b *strings.Builder, fl xlcore.Fill) {
	b.WriteString("<fill>")
	pattern := fl.Pattern
	if pattern == "" {
		pattern = "none"
	}
	fmt.Fprintf(b, `<patternFill patternType="%s">`, escapeAttr(pattern))
	if fl.FgColor != "" {
		fmt.Fprintf(b, `<fgColor rgb="%s"/>`, escapeAttr(fl.FgColor))
	}
	if fl.BgColor != "" {
		fmt.Fprintf(b, `<bgColor rgb="%s"/>`, escapeAttr(fl.BgColor))
	}
	b.WriteString("</patternFill></fill>")
}

func emitBorder(b *strings.Builder, bd xlcore.Border) {
	b.WriteString("<border>")
	emitBorderSide(b, "left", bd.Left)
	emitBorderSide(b, "right", bd.Right)
	emitBorderSide(b, "top", bd.Top)
	emitBorderSide(b, "bottom", bd.Bottom)
	b.WriteString("</border>")
}

func emitBorderSide(b *strings.Builder, name string, side xlcore.BorderSide) {
	if side.Style == "" {
		fmt.Fprintf(b, "<%s/>", name)
		return
	}
	fmt.Fprintf(b, `<%s style="%s">`, name, escapeAttr(side.Style))
	if side.Color != "" {
		fmt.Fprintf(b, `<color rgb="%s"/>`, escapeAttr(side.Color))
	}
	fmt.Fprintf(b, "</%s>", name)
}

func emitXf(b *strings.Builder, xf cellXf) {
	fmt.Fprintf(b, `<xf numFmtId="%d" fontId="%d" fillId="%d" borderId="%d" xfId="0"`, xf.NumFmtID, xf.FontID, xf.FillID, xf.BorderID)
	if xf.NumFmtID != 0 {
		b.WriteString(` applyNumberFormat="1"`)
	}
	hasAlign := xf.Horizontal != "" || xf.Vertical != "" || xf.Indent != 0 || xf.WrapText
	if !hasAlign {
		b.WriteString("/>")
		return
	}
	b.WriteString(` applyAlignment="1"><alignment`)
	if xf.Horizontal != "" {
		fmt.Fprintf(b, ` horizontal="%s"`, escapeAttr(xf.Horizontal))
	}
	if xf.Vertical != "" {
		fmt.Fprintf(b, ` vertical="%s"`, escapeAttr(xf.Vertical))
	}
	if xf.Indent != 0 {
		fmt.Fprintf(b, ` indent="%d"`, xf.Indent)
	}
	if xf.WrapText {
		b.WriteString(` wrapText="1"`)
	}
	b.WriteString("/></xf>")
}
