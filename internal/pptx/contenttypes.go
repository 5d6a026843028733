package pptx

import (
	"strings"

	"github.com/beevik/etree"
)

const contentTypesPart = "[Content_Types].xml"

type contentTypes struct {
	doc *etree.Document
}

func (p *opcPackage) contentTypes() (*contentTypes, error) {
	doc, err := p.xml(contentTypesPart)
	if err != nil {
		return nil, err
	}
	return &contentTypes{doc: doc}, nil
}

// ensureDefault registers a content type for a file extension
func (c *contentTypes) ensureDefault(ext, contentType string) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, d := range children(c.doc.Root(), "Default") {
		if strings.EqualFold(d.SelectAttrValue("Extension", ""), ext) {
			return
		}
	}
	def := etree.NewElement("Default")
	def.CreateAttr("Extension", ext)
	def.CreateAttr("ContentType", contentType)

	// Defaults precede overrides
	root := c.doc.Root()
	idx := len(root.Child)
	if first := firstChild(root, "Override"); first != nil {
		idx = first.Index()
	}
	root.InsertChildAt(idx, def)
}

// addOverride registers the content type of one part
func (c *contentTypes) addOverride(part, contentType string) {
	sub(c.doc.Root(), "Override",
		"PartName", "/"+part,
		"ContentType", contentType,
	)
}
