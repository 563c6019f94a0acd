package catalog

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/jbind/java"
)

// Stats summarizes a Load call.
type Stats struct {
	Units   int
	Classes int
	Skipped int
	Failed  int
}

// Loader reads class files from jars, directories and single files into a
// Sink. Every jar is its own unit; loose class files take the name of the
// directory passed to Load.
type Loader struct {
	Sink    Sink
	Workers int

	units   atomic.Int64
	classes atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64
}

func NewLoader(sink Sink, workers int) *Loader {
	if workers <= 0 {
		workers = 4
	}
	return &Loader{Sink: sink, Workers: workers}
}

// Load reads every path. Unreadable class files are counted and logged;
// only errors from the sink or from opening a top-level path abort.
func (l *Loader) Load(ctx context.Context, paths ...string) (Stats, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.Workers)

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return l.stats(), fmt.Errorf("failed to load %s: %w", path, err)
		}
		if info.IsDir() {
			if err := l.walkDir(gctx, g, path); err != nil {
				return l.stats(), err
			}
			continue
		}
		switch filepath.Ext(path) {
		case ".jar", ".zip":
			g.Go(func() error { return l.loadJar(gctx, path) })
		case ".class":
			g.Go(func() error { return l.loadClassFile(gctx, unitName(filepath.Dir(path)), path) })
		default:
			log.Warningf("skipping %s: not a jar or class file", path)
		}
	}

	err := g.Wait()
	return l.stats(), err
}

func (l *Loader) stats() Stats {
	return Stats{
		Units:   int(l.units.Load()),
		Classes: int(l.classes.Load()),
		Skipped: int(l.skipped.Load()),
		Failed:  int(l.failed.Load()),
	}
}

func (l *Loader) walkDir(ctx context.Context, g *errgroup.Group, root string) error {
	unit := unitName(root)
	sawClass := false
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".jar":
			g.Go(func() error { return l.loadJar(ctx, path) })
		case ".class":
			sawClass = true
			g.Go(func() error { return l.loadClassFile(ctx, unit, path) })
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", root, err)
	}
	if sawClass {
		l.units.Add(1)
	}
	return nil
}

func (l *Loader) loadJar(ctx context.Context, path string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		log.Errorf("failed to open %s: %s", path, err)
		l.failed.Add(1)
		return nil
	}
	defer r.Close()

	l.units.Add(1)
	return l.loadZip(ctx, unitName(path), &r.Reader)
}

func (l *Loader) loadZip(ctx context.Context, unit string, r *zip.Reader) error {
	var jarFiles []*zip.File
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		switch filepath.Ext(f.Name) {
		case ".class":
			if err := l.loadZipEntry(ctx, unit, f); err != nil {
				return err
			}
		case ".jar":
			jarFiles = append(jarFiles, f)
		}
	}

	for _, jarFile := range jarFiles {
		if err := l.loadJarInZip(ctx, jarFile); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) loadJarInZip(ctx context.Context, jarFile *zip.File) error {
	data, err := readZipFile(jarFile)
	if err != nil {
		log.Errorf("failed to read %s: %s", jarFile.Name, err)
		l.failed.Add(1)
		return nil
	}
	jarReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		log.Errorf("failed to open nested jar %s: %s", jarFile.Name, err)
		l.failed.Add(1)
		return nil
	}
	l.units.Add(1)
	return l.loadZip(ctx, unitName(jarFile.Name), jarReader)
}

func (l *Loader) loadZipEntry(ctx context.Context, unit string, f *zip.File) error {
	if skipClassFile(f.Name) {
		l.skipped.Add(1)
		return nil
	}
	data, err := readZipFile(f)
	if err != nil {
		log.Errorf("failed to read %s!%s: %s", unit, f.Name, err)
		l.failed.Add(1)
		return nil
	}
	return l.add(ctx, unit, f.Name, "jar", bytes.NewReader(data))
}

func (l *Loader) loadClassFile(ctx context.Context, unit, path string) error {
	if skipClassFile(path) {
		l.skipped.Add(1)
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		log.Errorf("failed to open %s: %s", path, err)
		l.failed.Add(1)
		return nil
	}
	defer f.Close()
	return l.add(ctx, unit, path, "class", f)
}

func (l *Loader) add(ctx context.Context, unit, name, source string, r io.Reader) error {
	decl, err := java.DeclarationFromReader(unit, r)
	if err != nil {
		log.Warningf("failed to parse %s: %s", name, err)
		l.failed.Add(1)
		return nil
	}
	if _, err := l.Sink.Add(ctx, unit, decl); err != nil {
		return fmt.Errorf("failed to add %s: %w", decl.Class.Name, err)
	}
	l.classes.Add(1)
	classesLoaded.WithLabelValues(source).Inc()
	return nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func skipClassFile(name string) bool {
	base := filepath.Base(name)
	return base == "module-info.class" || base == "package-info.class"
}

// unitName is the base name of a jar or directory without extension.
func unitName(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
