package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// opcPackage is the zip container: raw parts plus lazily parsed XML
type opcPackage struct {
	parts map[string][]byte
	order []string
	docs  map[string]*etree.Document
}

func readPackage(r io.ReaderAt, size int64) (*opcPackage, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	pkg := &opcPackage{
		parts: make(map[string][]byte, len(zr.File)),
		docs:  make(map[string]*etree.Document),
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}
		pkg.parts[f.Name] = data
		pkg.order = append(pkg.order, f.Name)
	}
	return pkg, nil
}

func (p *opcPackage) has(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// xml returns the parsed document of a part, parsing it on first use
func (p *opcPackage) xml(name string) (*etree.Document, error) {
	if doc, ok := p.docs[name]; ok {
		return doc, nil
	}
	data, ok := p.parts[name]
	if !ok {
		return nil, fmt.Errorf("part %s not found", name)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	p.docs[name] = doc
	return doc, nil
}

// putXML registers a new XML part
func (p *opcPackage) putXML(name string, doc *etree.Document) {
	if !p.has(name) {
		p.order = append(p.order, name)
	}
	p.parts[name] = nil
	p.docs[name] = doc
}

// putBinary registers a new binary part
func (p *opcPackage) putBinary(name string, data []byte) {
	if !p.has(name) {
		p.order = append(p.order, name)
	}
	p.parts[name] = data
	delete(p.docs, name)
}

// nextName returns the first free part name prefixN.ext, counting from 1
func (p *opcPackage) nextName(prefix, ext string) string {
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s%d%s", prefix, n, ext)
		if !p.has(name) {
			return name
		}
	}
}

func (p *opcPackage) write(w io.Writer) error {
	zw := zip.NewWriter(w)

	names := append([]string(nil), p.order...)
	// [Content_Types].xml leads the archive
	sort.SliceStable(names, func(i, j int) bool {
		return names[i] == contentTypesPart && names[j] != contentTypesPart
	})

	for _, name := range names {
		data := p.parts[name]
		if doc, ok := p.docs[name]; ok {
			var buf bytes.Buffer
			if _, err := doc.WriteTo(&buf); err != nil {
				return fmt.Errorf("serialize %s: %w", name, err)
			}
			data = buf.Bytes()
		}

		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	return zw.Close()
}

// relsName returns the relationships part of a part: dir/_rels/base.rels
func relsName(part string) string {
	dir, base := path.Split(part)
	return dir + "_rels/" + base + ".rels"
}

// resolve turns a relationship target into a part name
func resolve(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join(path.Dir(source), target))
}

// relative returns the target string that reaches part from source
func relative(source, part string) string {
	from := strings.Split(path.Dir(source), "/")
	to := strings.Split(part, "/")

	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	up := strings.Repeat("../", len(from)-i)
	return up + strings.Join(to[i:], "/")
}

func newXMLDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	return doc
}
