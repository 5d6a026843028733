package pipeline

import (
	"errors"
	"io/fs"

	"github.com/ppiankov/pulsedeck/internal/inject"
	"github.com/ppiankov/pulsedeck/internal/model"
	"github.com/ppiankov/pulsedeck/internal/pptx"
)

// Placement is where a token resolved in a template
type Placement struct {
	Token string
	Slide int // 1-based
	Shape string
	Kind  string
}

// TemplateReport describes how a template lines up with the fill plan
type TemplateReport struct {
	Path       string
	Slides     int
	Shapes     int // Shapes with text
	Found      []Placement
	Missing    []string
	Duplicates []string
}

// InspectTemplate indexes a template without filling it
func InspectTemplate(path string) (*TemplateReport, error) {
	pres, err := pptx.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &model.TemplateError{Path: path, Err: model.ErrTemplateNotFound}
	}
	if err != nil {
		return nil, &model.TemplateError{Path: path, Err: err}
	}

	ix := inject.BuildIndex(pres)
	rep := &TemplateReport{
		Path:       path,
		Slides:     len(pres.Slides()),
		Shapes:     ix.Len(),
		Duplicates: ix.Duplicates(),
	}
	for _, tok := range planTokens {
		sh, loc, ok := ix.Find(tok)
		if !ok {
			rep.Missing = append(rep.Missing, tok)
			continue
		}
		rep.Found = append(rep.Found, Placement{
			Token: tok,
			Slide: loc.Slide + 1,
			Shape: sh.Name(),
			Kind:  sh.Kind().String(),
		})
	}
	return rep, nil
}
