// Package source loads the raster assets image layers draw: picture
// files and PDF pages. Everything is loaded before the first frame is
// evaluated.
package source

import (
	"fmt"
	"image"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// DefaultDPI is the resolution PDF pages are rasterized at.
const DefaultDPI = 150

// Source is a paged collection of images. Pages are 0-based.
type Source interface {
	PageCount() int
	GetPageDimensions(index int) (width, height float64, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// Key names one asset: the file itself, or "file.pdf#3" for the third
// page of a document.
func Key(path string, page int) string {
	if page <= 0 {
		return path
	}
	return fmt.Sprintf("%s#%d", path, page)
}

// ParseKey splits a key into its path and 1-based page. Page is 0 for
// plain image files.
func ParseKey(key string) (string, int) {
	i := strings.LastIndexByte(key, '#')
	if i < 0 {
		return key, 0
	}
	page, err := strconv.Atoi(key[i+1:])
	if err != nil || page <= 0 {
		return key, 0
	}
	return key[:i], page
}

// IsPDF reports whether path names a PDF document.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Open picks the source for path: a PDF document, or image files
// matched by path as a glob pattern or directory.
func Open(path string) (Source, error) {
	if IsPDF(path) {
		return NewFitzPDFSource(path)
	}
	return NewImageSource(path)
}

// FitzPDFSource renders PDF pages with MuPDF.
type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) GetPageDimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

// RenderPage opens its own document handle, so pages can be rendered
// from several goroutines at once.
func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	if index < 0 || index >= f.PageCount() {
		return nil, fmt.Errorf("%s: page %d out of range [1, %d]", f.path, index+1, f.PageCount())
	}
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
