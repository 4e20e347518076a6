package source

import (
	"fmt"
	"image"
	"image/draw"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/skip2/go-qrcode"
)

// Source loads a named image asset as a straight-alpha raster. Images without
// an alpha channel come back fully opaque.
type Source interface {
	Load(path string) (*image.NRGBA, error)
}

// QRPrefix marks an asset path that is generated rather than read from disk.
const QRPrefix = "qr:"

// MultiSource resolves asset paths against a resource directory and picks a
// loader by the form of the path:
//
//	qr:<text>      generated QR code
//	doc.pdf[#N]    page N (1-based, default 1) of a PDF
//	anything else  image file
type MultiSource struct {
	Dir   string
	Files *FileSource
	PDF   *PDFSource
	QR    *QRSource
}

func NewMultiSource(dir string, dpi, qrSize int) *MultiSource {
	return &MultiSource{
		Dir:   dir,
		Files: &FileSource{},
		PDF:   &PDFSource{DPI: dpi},
		QR:    &QRSource{Size: qrSize, Level: qrcode.Medium},
	}
}

func (s *MultiSource) Load(path string) (*image.NRGBA, error) {
	if strings.HasPrefix(path, QRPrefix) {
		return s.QR.Load(strings.TrimPrefix(path, QRPrefix))
	}
	if file, _, ok := splitPDFPage(path); ok {
		return s.PDF.Load(s.resolve(file) + strings.TrimPrefix(path, file))
	}
	return s.Files.Load(s.resolve(path))
}

func (s *MultiSource) resolve(path string) string {
	if s.Dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.Dir, path)
}

// PDFSource renders one page of a PDF document.
type PDFSource struct {
	DPI int
}

func (p *PDFSource) Load(path string) (*image.NRGBA, error) {
	file, page, ok := splitPDFPage(path)
	if !ok {
		return nil, fmt.Errorf("%s is not a PDF asset", path)
	}

	doc, err := fitz.New(file)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if page < 1 || page > doc.NumPage() {
		return nil, fmt.Errorf("%s has %d pages, page %d requested", file, doc.NumPage(), page)
	}

	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	img, err := doc.ImageDPI(page-1, float64(dpi))
	if err != nil {
		return nil, err
	}
	return ToNRGBA(img), nil
}

// splitPDFPage splits "doc.pdf#3" into ("doc.pdf", 3). A bare "doc.pdf"
// selects page 1.
func splitPDFPage(path string) (string, int, bool) {
	file, frag := path, ""
	if i := strings.LastIndex(path, "#"); i >= 0 {
		file, frag = path[:i], path[i+1:]
	}
	if !strings.EqualFold(filepath.Ext(file), ".pdf") {
		return "", 0, false
	}
	if frag == "" {
		return file, 1, true
	}
	page, err := strconv.Atoi(frag)
	if err != nil {
		return "", 0, false
	}
	return file, page, true
}

// ToNRGBA converts any image to a zero-origin straight-alpha raster.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	n := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(n, n.Bounds(), img, b.Min, draw.Src)
	return n
}
