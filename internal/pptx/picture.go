package pptx

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedImage is returned for image data PowerPoint cannot embed
var ErrUnsupportedImage = errors.New("unsupported image format")

// imageTypes maps sniffed MIME types to the part extension they are stored under
var imageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpeg",
	"image/gif":  ".gif",
	"image/bmp":  ".bmp",
	"image/tiff": ".tiff",
}

// AddPicture embeds image data as a new picture shape at g
func (s *Slide) AddPicture(data []byte, g Geometry, name string) (*Shape, error) {
	mtype := mimetype.Detect(data)
	ext, ok := imageTypes[mtype.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mtype.String())
	}

	pkg := s.pres.pkg
	part := pkg.nextName("ppt/media/image", ext)
	pkg.putBinary(part, data)
	s.pres.types.ensureDefault(ext, mtype.String())
	rid := s.rels.add(relImage, part)

	id := s.nextShapeID()
	if name == "" {
		name = "Picture " + strconv.Itoa(id)
	}

	pic := etree.NewElement("p:pic")
	nv := sub(pic, "p:nvPicPr")
	sub(nv, "p:cNvPr", "id", strconv.Itoa(id), "name", name)
	locks := sub(nv, "p:cNvPicPr")
	sub(locks, "a:picLocks", "noChangeAspect", "1")
	sub(nv, "p:nvPr")

	fill := sub(pic, "p:blipFill")
	sub(fill, "a:blip", "r:embed", rid)
	stretch := sub(fill, "a:stretch")
	sub(stretch, "a:fillRect")

	spPr := sub(pic, "p:spPr")
	writeXfrm(spPr, "a:xfrm", g)
	geom := sub(spPr, "a:prstGeom", "prst", "rect")
	sub(geom, "a:avLst")

	return s.appendShape(pic, KindPicture), nil
}

func writeXfrm(parent *etree.Element, tag string, g Geometry) {
	xfrm := sub(parent, tag)
	sub(xfrm, "a:off", "x", itoa(g.Left), "y", itoa(g.Top))
	sub(xfrm, "a:ext", "cx", itoa(g.Width), "cy", itoa(g.Height))
}
