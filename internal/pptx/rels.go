package pptx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// relationships wraps one .rels part
type relationships struct {
	source string // part the relationships belong to
	doc    *etree.Document
}

// loadRels opens the relationships of source, creating an empty part when
// the source has none yet
func (p *opcPackage) loadRels(source string) (*relationships, error) {
	name := relsName(source)
	if !p.has(name) {
		doc := newXMLDocument()
		doc.CreateElement("Relationships").CreateAttr("xmlns", nsRels)
		p.putXML(name, doc)
		return &relationships{source: source, doc: doc}, nil
	}
	doc, err := p.xml(name)
	if err != nil {
		return nil, err
	}
	return &relationships{source: source, doc: doc}, nil
}

func (r *relationships) root() *etree.Element {
	return r.doc.Root()
}

// target resolves a relationship id to a part name
func (r *relationships) target(id string) (string, bool) {
	for _, rel := range r.root().ChildElements() {
		if rel.SelectAttrValue("Id", "") != id {
			continue
		}
		if rel.SelectAttrValue("TargetMode", "") == "External" {
			return "", false
		}
		return resolve(r.source, rel.SelectAttrValue("Target", "")), true
	}
	return "", false
}

// firstOfType resolves the first relationship of the given type
func (r *relationships) firstOfType(typ string) (string, bool) {
	for _, rel := range r.root().ChildElements() {
		if rel.SelectAttrValue("Type", "") == typ {
			return resolve(r.source, rel.SelectAttrValue("Target", "")), true
		}
	}
	return "", false
}

// add appends a relationship to part and returns its new id
func (r *relationships) add(typ, part string) string {
	next := 0
	for _, rel := range r.root().ChildElements() {
		id := rel.SelectAttrValue("Id", "")
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "rId")); err == nil && n > next {
			next = n
		}
	}
	id := "rId" + strconv.Itoa(next+1)

	sub(r.root(), "Relationship",
		"Id", id,
		"Type", typ,
		"Target", relative(r.source, part),
	)
	return id
}
