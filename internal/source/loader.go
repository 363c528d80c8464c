package source

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Resolver turns asset paths from a composition file into asset keys.
// Relative paths are taken from Dir, the directory of the file.
type Resolver struct {
	Dir string
}

// Path makes p absolute against the resolver directory.
func (r Resolver) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || r.Dir == "" {
		return p
	}
	return filepath.Join(r.Dir, p)
}

// Expand lists the keys behind pattern: one per page of a PDF, one per
// image matched by a glob or found in a directory.
func (r Resolver) Expand(pattern string) ([]string, error) {
	path := r.Path(pattern)
	if IsPDF(path) && !hasGlob(path) {
		src, err := NewFitzPDFSource(path)
		if err != nil {
			return nil, err
		}
		defer src.Close()
		keys := make([]string, src.PageCount())
		for i := range keys {
			keys[i] = Key(path, i+1)
		}
		return keys, nil
	}

	src, err := NewImageSource(path)
	if err != nil {
		return nil, err
	}
	return src.Paths(), nil
}

// Assets maps asset keys to decoded images. It is read-only once loaded.
type Assets map[string]image.Image

// Load decodes every key with at most workers files open at once. PDF
// documents are opened once and their pages rendered at dpi.
func Load(ctx context.Context, keys []string, dpi, workers int) (Assets, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	uniq := make(map[string]bool, len(keys))
	for _, k := range keys {
		uniq[k] = true
	}
	sorted := make([]string, 0, len(uniq))
	for k := range uniq {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var (
		mu     sync.Mutex
		assets = make(Assets, len(sorted))
		docs   = map[string]*FitzPDFSource{}
	)
	defer func() {
		for _, d := range docs {
			d.Close()
		}
	}()
	for _, k := range sorted {
		if path, page := ParseKey(k); page > 0 {
			if _, ok := docs[path]; ok {
				continue
			}
			d, err := NewFitzPDFSource(path)
			if err != nil {
				return nil, err
			}
			docs[path] = d
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for _, k := range sorted {
		k := k
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var (
				img image.Image
				err error
			)
			if path, page := ParseKey(k); page > 0 {
				img, err = docs[path].RenderPage(page-1, dpi)
			} else {
				img, err = (&ImageSource{paths: []string{k}}).RenderPage(0, dpi)
			}
			if err != nil {
				return fmt.Errorf("load asset %s: %w", k, err)
			}
			mu.Lock()
			assets[k] = img
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return assets, nil
}
