package convert

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"mjmlc/archive"
	"mjmlc/loader"
	"mjmlc/mjml"
	"mjmlc/parser"
	"mjmlc/render"
	"mjmlc/state"
)

// Run is the action of render command: every document found in source is
// parsed and rendered to destination.
func Run(ctx context.Context, cmd *cli.Command) error {
	return run(ctx, cmd, false)
}

// Validate is the action of validate command: documents are parsed and
// rendered, nothing is written.
func Validate(ctx context.Context, cmd *cli.Command) error {
	return run(ctx, cmd, true)
}

func run(ctx context.Context, cmd *cli.Command, validateOnly bool) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	var dst string
	if !validateOnly {
		dst = cmd.Args().Get(1)
		if len(dst) == 0 {
			if dst, err = os.Getwd(); err != nil {
				return fmt.Errorf("unable to get working directory: %w", err)
			}
		}
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
		if cmd.Args().Len() > 2 {
			log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
		}
	} else if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, validate does not need destination", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	// command line flags take precedence over configuration
	if cmd.Bool("strict") {
		env.Cfg.Parse.Strict = true
	}
	if cmd.Bool("async") {
		env.Cfg.Include.Async = true
	}
	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		if env.CodePage, err = ianaindex.IANA.Encoding(cp); err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	p := &processor{ctx: ctx, env: env, log: log, dst: dst, validateOnly: validateOnly}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Bool("validate", validateOnly))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)), zap.Int("documents", p.count), zap.Int("failed", len(multierr.Errors(p.errs))))
	}(time.Now())

	if err := p.process(src); err != nil {
		return err
	}
	if p.errs != nil {
		return fmt.Errorf("%d of %d documents failed: %w", len(multierr.Errors(p.errs)), p.count, p.errs)
	}
	return nil
}

// processor walks sources collecting per document failures, single broken
// document does not stop processing of the rest.
type processor struct {
	ctx          context.Context
	env          *state.LocalEnv
	log          *zap.Logger
	dst          string
	validateOnly bool

	count int
	errs  error
}

// process determines the input type (directory, archive, or single file) and
// processes accordingly. Path may continue inside archive.
func (p *processor) process(src string) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := p.ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			return p.processDir(head)
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			inside := filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator)))
			if err := p.processArchive(head, inside, ""); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			return nil
		}

		if len(tail) != 0 || !isDocumentName(head) {
			return fmt.Errorf("input was not recognized as %s document (%s)", documentExt, head)
		}
		p.processFile(head, filepath.Base(head))
		return nil
	}
	return fmt.Errorf("input source was not found (%s)", src)
}

// processDir processes documents and archives under directory. Entries are
// visited in natural name order so "welcome2" goes before "welcome10".
func (p *processor) processDir(dir string) error {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := p.ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			p.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	slices.SortFunc(paths, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case natural.Less(a, b):
			return -1
		}
		return 1
	})

	before := p.count
	for _, path := range paths {
		if err := p.ctx.Err(); err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		if isDocumentName(path) {
			p.processFile(path, rel)
			continue
		}
		isArchive, err := isArchiveFile(path)
		if err != nil {
			p.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		if !isArchive {
			p.log.Debug("Skipping file, not recognized as document or archive", zap.String("file", path))
			continue
		}
		if err := p.processArchive(path, "", filepath.Dir(rel)); err != nil {
			p.fail(path, fmt.Errorf("unable to process archive: %w", err))
		}
	}
	if p.count == before {
		p.log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return nil
}

// processFile processes document on disk, "src" is its path relative to
// requested source.
func (p *processor) processFile(path, src string) {
	data, err := os.ReadFile(path)
	if err != nil {
		p.count++
		p.fail(src, err)
		return
	}
	root := p.env.Cfg.Include.Root
	if root == "" {
		root = filepath.Dir(path)
	}
	p.processDocument(documentText(data), src, os.DirFS(root))
}

// processArchive processes documents inside archive under "pathIn", output
// keeps their archive paths under "pathOut".
func (p *processor) processArchive(arcPath, pathIn, pathOut string) error {
	a, err := archive.Open(arcPath)
	if err != nil {
		return err
	}
	defer a.Close()

	before := p.count
	err = a.Walk(pathIn, func(arc string, f *zip.File) error {
		if err := p.ctx.Err(); err != nil {
			return err
		}
		if !isDocumentName(f.Name) {
			p.log.Debug("Skipping file, not recognized as document", zap.String("archive", arc), zap.String("file", f.Name))
			return nil
		}

		src := filepath.Join(pathOut, filepath.FromSlash(p.archiveName(f)))

		text, err := readZipFile(f)
		if err != nil {
			p.count++
			p.fail(src, err)
			return nil
		}
		includes, err := a.Sub(path.Dir(f.Name))
		if err != nil {
			p.count++
			p.fail(src, err)
			return nil
		}
		p.processDocument(text, src, includes)
		return nil
	})
	if err == nil && p.count == before {
		p.log.Debug("Nothing to process", zap.String("archive", arcPath), zap.String("path", pathIn))
	}
	return err
}

// archiveName returns entry name decoded with forced code page if needed.
func (p *processor) archiveName(f *zip.File) string {
	cp := p.env.CodePage
	if cp == nil || !f.NonUTF8 {
		return f.Name
	}
	n, err := cp.NewDecoder().String(f.Name)
	if err != nil {
		charset, _ := ianaindex.IANA.Name(cp)
		p.log.Warn("Unable to convert archive name from specified encoding",
			zap.String("charset", charset), zap.String("path", f.Name), zap.Error(err))
		return f.Name
	}
	return n
}

func readZipFile(f *zip.File) (string, error) {
	r, err := f.Open()
	if err != nil {
		return "", err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return documentText(data), nil
}

func (p *processor) fail(src string, err error) {
	p.log.Error("Unable to process document", zap.String("source", src), zap.Error(err))
	p.errs = multierr.Append(p.errs, fmt.Errorf("%s: %w", src, err))
}

// processDocument parses and renders single document. "src" is part of the
// source path (always including file name) relative to the original path.
// Includes are resolved against "includes".
func (p *processor) processDocument(text, src string, includes fs.FS) {
	p.count++
	if err := p.document(text, src, includes); err != nil {
		p.fail(src, err)
	}
}

func (p *processor) document(text, src string, includes fs.FS) (rerr error) {
	env := p.env
	log := p.log.With(zap.String("source", src))

	var outputName string
	log.Info("Processing document")
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Processing ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("processing panic: %v", r)
		} else if rerr == nil {
			log.Info("Processing document completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	env.Rpt.StoreData(filepath.ToSlash(filepath.Join("source", src)), []byte(text))

	doc, err := parseDocument(p.ctx, text, src, includes, env, log)
	if err != nil {
		return err
	}
	env.Rpt.StoreData(filepath.ToSlash(filepath.Join("tree", src+".txt")), []byte(mjml.Dump(doc.Root)))

	html, err := render.Render(doc, env.Cfg.Render.Options(), log)
	if err != nil {
		return fmt.Errorf("unable to render: %w", err)
	}
	if p.validateOnly {
		return nil
	}

	outputName = buildOutputPath(doc, src, p.dst, env)
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := os.WriteFile(outputName, []byte(html), 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	env.Rpt.Store(filepath.ToSlash(filepath.Join("result", src+env.Cfg.Output.Extension)), outputName)
	return nil
}

// parseDocument parses text resolving includes with configured loader.
// Warnings are logged, in strict mode they fail the document.
func parseDocument(ctx context.Context, text, src string, includes fs.FS, env *state.LocalEnv, log *zap.Logger) (*mjml.Document, error) {
	l := loader.NewFS(includes, env.Cfg.Include.MaxIncludes, log)

	var (
		doc *mjml.Document
		err error
	)
	if env.Cfg.Include.Async {
		doc, err = parser.ParseContext(ctx, text, parser.Options{AsyncLoader: l, Origin: src}, log)
	} else {
		doc, err = parser.Parse(text, parser.Options{Loader: l, Origin: src}, log)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to parse: %w", err)
	}

	var warnings error
	for _, w := range doc.Warnings {
		log.Warn("Document problem", zap.Stringer("warning", w))
		warnings = multierr.Append(warnings, errors.New(w.String()))
	}
	if env.Cfg.Parse.Strict && warnings != nil {
		return nil, fmt.Errorf("strict mode, %d warnings: %w", len(doc.Warnings), warnings)
	}
	return doc, nil
}
