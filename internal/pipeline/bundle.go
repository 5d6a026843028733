package pipeline

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ppiankov/pulsedeck/internal/ingest"
	"github.com/ppiankov/pulsedeck/internal/model"
	"github.com/ppiankov/pulsedeck/internal/pptx"
)

// NewRequestID returns a short random request identifier
func NewRequestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// ClientNameFromPath derives a client name from an export file name: its
// first whitespace-separated word, without extension
func ClientNameFromPath(path string) string {
	base := filepath.Base(path)
	if fields := strings.Fields(base); len(fields) > 0 {
		base = fields[0]
	}
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug makes name safe for file names: accents dropped, whitespace to
// underscores, anything outside [A-Za-z0-9._-] removed
func Slug(name string) string {
	plain, _, err := transform.String(stripMarks, name)
	if err != nil {
		plain = name
	}
	plain = strings.Join(strings.Fields(plain), "_")

	var b strings.Builder
	for _, r := range plain {
		if r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) || strings.ContainsRune("._-", r) {
			b.WriteRune(r)
		}
	}
	slug := strings.Trim(b.String(), "._-")
	if slug == "" {
		return "Reporte"
	}
	return slug
}

// writeBundle writes <slug>_<id>.zip holding the deck and the cleaned export,
// the latter in the encoding and delimiter the input was read with
func writeBundle(dir, clientName, requestID, inputPath string, pres *pptx.Presentation, ds *model.Dataset, opts ingest.Options) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	name := Slug(clientName) + "_" + requestID
	bundlePath := filepath.Join(dir, name+".zip")

	f, err := os.Create(bundlePath)
	if err != nil {
		return "", fmt.Errorf("create bundle: %w", err)
	}

	zw := zip.NewWriter(f)
	err = writeEntries(zw, name, requestID, inputPath, pres, ds, opts)
	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(bundlePath)
		return "", err
	}
	return bundlePath, nil
}

func writeEntries(zw *zip.Writer, name, requestID, inputPath string, pres *pptx.Presentation, ds *model.Dataset, opts ingest.Options) error {
	now := time.Now()

	w, err := zw.CreateHeader(&zip.FileHeader{Name: name + ".pptx", Method: zip.Deflate, Modified: now})
	if err != nil {
		return err
	}
	if err := pres.Write(w); err != nil {
		return fmt.Errorf("write deck: %w", err)
	}

	csvName := fmt.Sprintf("%s_%s_(resultado).csv", ClientNameFromPath(inputPath), requestID)
	w, err = zw.CreateHeader(&zip.FileHeader{Name: csvName, Method: zip.Deflate, Modified: now})
	if err != nil {
		return err
	}
	if err := ingest.Write(w, ds, opts); err != nil {
		return fmt.Errorf("write cleaned export: %w", err)
	}
	return nil
}
