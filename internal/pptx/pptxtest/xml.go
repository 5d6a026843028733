package pptxtest

import (
	"fmt"
	"strings"
)

const (
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP   = "http://schemas.openxmlformats.org/presentationml/2006/main"
	relNS = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"

	header = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`
	nsAttr = `xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `"`
)

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func (d Deck) contentTypes() string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	override := func(part, ct string) {
		fmt.Fprintf(&b, `<Override PartName="/%s" ContentType="application/vnd.openxmlformats-officedocument.%s"/>`, part, ct)
	}
	override("ppt/presentation.xml", "presentationml.presentation.main+xml")
	override("ppt/slideMasters/slideMaster1.xml", "presentationml.slideMaster+xml")
	override("ppt/slideLayouts/slideLayout1.xml", "presentationml.slideLayout+xml")
	override("ppt/theme/theme1.xml", "theme+xml")
	for i := range d.Slides {
		override(fmt.Sprintf("ppt/slides/slide%d.xml", i+1), "presentationml.slide+xml")
	}
	b.WriteString(`</Types>`)
	return b.String()
}

// slideRelID numbers slide relationships in reverse so that readers must
// follow sldIdLst rather than relationship ids or part names
func (d Deck) slideRelID(i int) string {
	return fmt.Sprintf("rId%d", 2+len(d.Slides)-1-i)
}

func (d Deck) presentation() string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString(`<p:presentation ` + nsAttr + `>`)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i := range d.Slides {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="%s"/>`, 256+i, d.slideRelID(i))
	}
	b.WriteString(`</p:sldIdLst>`)
	b.WriteString(`<p:sldSz cx="12192000" cy="6858000"/><p:notesSz cx="6858000" cy="9144000"/>`)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func (d Deck) presentationRels() string {
	list := []string{rel("rId1", "slideMaster", "slideMasters/slideMaster1.xml")}
	for i := range d.Slides {
		list = append(list, rel(d.slideRelID(i), "slide", fmt.Sprintf("slides/slide%d.xml", i+1)))
	}
	list = append(list, rel(fmt.Sprintf("rId%d", len(d.Slides)+2), "theme", "theme/theme1.xml"))
	return rels(list...)
}

func rel(id, typ, target string) string {
	return fmt.Sprintf(`<Relationship Id="%s" Type="%s%s" Target="%s"/>`, id, relNS, typ, target)
}

func rels(list ...string) string {
	return header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		strings.Join(list, "") + `</Relationships>`
}

func slide(shapes []Shape) string {
	return header + `<p:sld ` + nsAttr + `><p:cSld>` + tree(shapes) + `</p:cSld>` +
		`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`
}

func layout(shapes []Shape) string {
	return header + `<p:sldLayout ` + nsAttr + ` preserve="1"><p:cSld name="Fixture">` + tree(shapes) + `</p:cSld>` +
		`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`
}

func master(shapes []Shape) string {
	return header + `<p:sldMaster ` + nsAttr + `><p:cSld>` + tree(shapes) + `</p:cSld>` +
		`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" ` +
		`accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
		`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst></p:sldMaster>`
}

func tree(shapes []Shape) string {
	var b strings.Builder
	b.WriteString(`<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`)
	b.WriteString(`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`)
	for i, s := range shapes {
		b.WriteString(s.xml(i + 2))
	}
	b.WriteString(`</p:spTree>`)
	return b.String()
}

func (s Shape) xml(id int) string {
	name := s.Name
	if name == "" {
		name = fmt.Sprintf("Shape %d", id)
	}
	if s.Table != nil {
		return s.tableXML(id, name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr/><p:nvPr>`, id, escaper.Replace(name))
	if s.Placeholder != "" || s.PlaceholderIdx > 0 {
		b.WriteString(`<p:ph`)
		if s.Placeholder != "" {
			fmt.Fprintf(&b, ` type="%s"`, s.Placeholder)
		}
		if s.PlaceholderIdx > 0 {
			fmt.Fprintf(&b, ` idx="%d"`, s.PlaceholderIdx)
		}
		b.WriteString(`/>`)
	}
	b.WriteString(`</p:nvPr></p:nvSpPr><p:spPr>`)
	if s.Width > 0 && s.Height > 0 {
		b.WriteString(s.xfrm("a:xfrm"))
	}
	b.WriteString(`</p:spPr>`)
	if !s.NoText {
		b.WriteString(`<p:txBody><a:bodyPr/><a:lstStyle/>`)
		for _, line := range strings.Split(s.Text, "\n") {
			if line == "" {
				b.WriteString(`<a:p><a:endParaRPr lang="es-ES"/></a:p>`)
				continue
			}
			fmt.Fprintf(&b, `<a:p><a:r><a:rPr lang="es-ES"/><a:t>%s</a:t></a:r></a:p>`, escaper.Replace(line))
		}
		b.WriteString(`</p:txBody>`)
	}
	b.WriteString(`</p:sp>`)
	return b.String()
}

func (s Shape) xfrm(tag string) string {
	return fmt.Sprintf(`<%s><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></%s>`, tag, s.Left, s.Top, s.Width, s.Height, tag)
}

func (s Shape) tableXML(id int, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="%d" name="%s"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>`, id, escaper.Replace(name))
	b.WriteString(s.xfrm("p:xfrm"))
	b.WriteString(`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl><a:tblGrid>`)
	cols := 0
	if len(s.Table) > 0 {
		cols = len(s.Table[0])
	}
	for i := 0; i < cols; i++ {
		b.WriteString(`<a:gridCol w="914400"/>`)
	}
	b.WriteString(`</a:tblGrid>`)
	for _, row := range s.Table {
		b.WriteString(`<a:tr h="370840">`)
		for _, cell := range row {
			fmt.Fprintf(&b, `<a:tc><a:txBody><a:bodyPr/><a:lstStyle/><a:p><a:r><a:rPr lang="es-ES"/><a:t>%s</a:t></a:r></a:p></a:txBody><a:tcPr/></a:tc>`, escaper.Replace(cell))
		}
		b.WriteString(`</a:tr>`)
	}
	b.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)
	return b.String()
}
