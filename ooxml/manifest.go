// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxml

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/richardlehane/mscfb"
)

// Part is one ZIP entry of the source archive, recorded in its original
// position. It carries the *zip.File so the patcher can stream it back
// out byte-for-byte (no decompress/recompress round trip) when nothing
// touched it.
type Part struct {
	Name string
	File *zip.File
}

// Manifest is every part of the source archive, in original entry
// order — the basis for §4.13 step 1's byte-exact pass-through of
// everything the patcher doesn't regenerate.
type Manifest struct {
	Parts []Part
}

// ByName returns the part with the given archive path, if present.
func (m Manifest) ByName(name string) (Part, bool) {
	for _, p := range m.Parts {
		if p.Name == name {
			return p, true
		}
	}
	return Part{}, false
}

// ErrEncrypted is returned by Open when the input is a CFB/OLE compound
// file rather than a ZIP — the container ECMA-376 agile encryption
// wraps an XLSX in. Decrypting it is out of this package's scope; the
// input is recognised by its CFB signature and rejected with this error
// rather than a confusing zip-format error.
var ErrEncrypted = fmt.Errorf("ooxml: input is an encrypted or legacy compound-file workbook, not a plain XLSX ZIP")

// cfbMagic is the leading signature of a Compound File Binary document
// (D0 CF 11 E0 ...), the container format OLE/legacy xls and
// password-protected xlsx both use.
var cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// detectCFB reports whether data begins with the CFB signature — the
// container both legacy .xls and password-protected (agile-encrypted)
// .xlsx use. The signature alone is sufficient to reject the input
// before the ZIP reader would produce a confusing "not a zip" error;
// mscfb.New then walks the storage's entries, but its result is
// discarded and its failure doesn't change the verdict.
func detectCFB(data []byte) bool {
	if len(data) < len(cfbMagic) || !bytes.Equal(data[:len(cfbMagic)], cfbMagic) {
		return false
	}
	if r, err := mscfb.New(bytes.NewReader(data)); err == nil {
		for {
			if _, err := r.Next(); err != nil {
				break // io.EOF on a well-formed storage, some other error on a truncated one; either way we're done probing
			}
		}
	}
	return true
}

// readManifest opens the ZIP archive and records every entry in its
// original order.
func readManifest(zr *zip.Reader) Manifest {
	m := Manifest{Parts: make([]Part, 0, len(zr.File))}
	for _, f := range zr.File {
		m.Parts = append(m.Parts, Part{Name: f.Name, File: f})
	}
	return m
}

// readPart fully reads a ZIP entry's decompressed content.
func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("ooxml: opening part %q: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("ooxml: reading part %q: %w", f.Name, err)
	}
	return data, nil
}
