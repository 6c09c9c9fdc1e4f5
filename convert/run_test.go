package convert

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"mjmlc/config"
	"mjmlc/state"
)

const (
	welcomeDoc = `<mjml lang="en">
  <mj-head><mj-title>Welcome aboard</mj-title></mj-head>
  <mj-body>
    <mj-section>
      <mj-column>
        <mj-include path="parts/text.mjml" />
      </mj-column>
    </mj-section>
  </mj-body>
</mjml>`
	textPart  = `<mj-text>Hello from include</mj-text>`
	simpleDoc = `<mjml><mj-body><mj-section><mj-column><mj-text>Simple</mj-text></mj-column></mj-section></mj-body></mjml>`
)

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	env.Cfg = cfg
	return ctx, env
}

func newProcessor(ctx context.Context, env *state.LocalEnv, dst string) *processor {
	return &processor{ctx: ctx, env: env, log: env.Log, dst: dst}
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("output not produced: %v", err)
	}
	return string(data)
}

func TestProcess_File(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	writeFiles(t, src, map[string]string{
		"welcome.mjml":    welcomeDoc,
		"parts/text.mjml": textPart,
	})

	p := newProcessor(ctx, env, dst)
	if err := p.process(filepath.Join(src, "welcome.mjml")); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if p.errs != nil || p.count != 1 {
		t.Fatalf("count = %d, errs = %v", p.count, p.errs)
	}

	out := readOutput(t, filepath.Join(dst, "welcome.html"))
	if !strings.Contains(out, "Hello from include") {
		t.Errorf("included text missing from output")
	}
	if !strings.Contains(out, "Welcome aboard") {
		t.Errorf("title missing from output")
	}
}

func TestProcess_AsyncMatchesSync(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"welcome.mjml":    welcomeDoc,
		"parts/text.mjml": textPart,
	})

	outputs := make([]string, 0, 2)
	for _, async := range []bool{false, true} {
		ctx, env := setupTestEnv(t)
		env.Cfg.Include.Async = async
		dst := t.TempDir()
		if err := newProcessor(ctx, env, dst).process(filepath.Join(src, "welcome.mjml")); err != nil {
			t.Fatalf("process(async=%v) error = %v", async, err)
		}
		outputs = append(outputs, readOutput(t, filepath.Join(dst, "welcome.html")))
	}
	if outputs[0] != outputs[1] {
		t.Fatal("asynchronous includes changed output")
	}
}

func TestProcess_Dir(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"simple.mjml":    simpleDoc,
		"nested/b.MJML":  simpleDoc,
		"notes.txt":      "not a document",
		"broken.mjml":    `<mjml><mj-body><mj-section>`,
		"nested/c2.mjml": simpleDoc,
	})

	t.Run("keep dirs", func(t *testing.T) {
		ctx, env := setupTestEnv(t)
		dst := t.TempDir()
		p := newProcessor(ctx, env, dst)
		if err := p.process(src); err != nil {
			t.Fatalf("process() error = %v", err)
		}
		if p.count != 4 {
			t.Errorf("count = %d, want 4", p.count)
		}
		if errs := multierr.Errors(p.errs); len(errs) != 1 || !strings.Contains(errs[0].Error(), "broken.mjml") {
			t.Errorf("errs = %v, want single failure of broken.mjml", p.errs)
		}
		for _, name := range []string{"simple.html", "nested/b.html", "nested/c2.html"} {
			readOutput(t, filepath.Join(dst, filepath.FromSlash(name)))
		}
	})

	t.Run("no dirs", func(t *testing.T) {
		ctx, env := setupTestEnv(t)
		env.NoDirs = true
		dst := t.TempDir()
		if err := newProcessor(ctx, env, dst).process(src); err != nil {
			t.Fatalf("process() error = %v", err)
		}
		readOutput(t, filepath.Join(dst, "b.html"))
	})
}

func TestProcess_Archive(t *testing.T) {
	ctx, env := setupTestEnv(t)
	dir, dst := t.TempDir(), t.TempDir()
	zipPath := filepath.Join(dir, "mails.zip")

	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	for name, content := range map[string]string{
		"mail/welcome.mjml":    welcomeDoc,
		"mail/parts/text.mjml": textPart,
	} {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	p := newProcessor(ctx, env, dst)
	if err := p.process(filepath.Join(zipPath, "mail", "welcome.mjml")); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if p.count != 1 || p.errs != nil {
		t.Fatalf("count = %d, errs = %v", p.count, p.errs)
	}
	out := readOutput(t, filepath.Join(dst, "mail", "welcome.html"))
	if !strings.Contains(out, "Hello from include") {
		t.Errorf("include inside archive was not resolved")
	}
}

func TestProcess_Overwrite(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	writeFiles(t, src, map[string]string{"simple.mjml": simpleDoc})
	doc := filepath.Join(src, "simple.mjml")

	if err := newProcessor(ctx, env, dst).process(doc); err != nil {
		t.Fatal(err)
	}

	p := newProcessor(ctx, env, dst)
	if err := p.process(doc); err != nil {
		t.Fatal(err)
	}
	if p.errs == nil || !strings.Contains(p.errs.Error(), "already exists") {
		t.Fatalf("expected existing output to fail, got %v", p.errs)
	}

	env.Overwrite = true
	p = newProcessor(ctx, env, dst)
	if err := p.process(doc); err != nil || p.errs != nil {
		t.Fatalf("overwrite failed: %v %v", err, p.errs)
	}
}

func TestProcess_Strict(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, map[string]string{"dup.mjml": `<mjml><mj-body><mj-section><mj-column>
<mj-text color="red" color="blue">Twice</mj-text>
</mj-column></mj-section></mj-body></mjml>`})

	for _, strict := range []bool{false, true} {
		ctx, env := setupTestEnv(t)
		env.Cfg.Parse.Strict = strict
		p := newProcessor(ctx, env, t.TempDir())
		if err := p.process(filepath.Join(src, "dup.mjml")); err != nil {
			t.Fatal(err)
		}
		if failed := p.errs != nil; failed != strict {
			t.Errorf("strict=%v: errs = %v", strict, p.errs)
		}
	}
}

func TestProcess_Validate(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src := t.TempDir()
	writeFiles(t, src, map[string]string{"simple.mjml": simpleDoc})

	p := newProcessor(ctx, env, "")
	p.validateOnly = true
	if err := p.process(src); err != nil || p.errs != nil {
		t.Fatalf("validate failed: %v %v", err, p.errs)
	}
	if _, err := os.Stat("simple.html"); err == nil {
		t.Fatal("validate produced output")
	}
}

func TestProcess_NotFound(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src := t.TempDir()
	writeFiles(t, src, map[string]string{"notes.txt": "text"})

	p := newProcessor(ctx, env, t.TempDir())
	if err := p.process(filepath.Join(src, "absent", "x.mjml")); err == nil {
		t.Error("expected error for missing source")
	}
	if err := p.process(filepath.Join(src, "notes.txt")); err == nil {
		t.Error("expected error for non document source")
	}
}

func TestRun_Command(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	writeFiles(t, src, map[string]string{
		"good.mjml": simpleDoc,
		"bad.mjml":  `<mjml><mj-body>`,
	})

	cmd := &cli.Command{
		Name:   "render",
		Action: Run,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "strict"},
			&cli.BoolFlag{Name: "async"},
			&cli.StringFlag{Name: "force-zip-cp"},
			&cli.BoolFlag{Name: "nodirs"},
			&cli.BoolFlag{Name: "overwrite"},
		},
	}
	err := cmd.Run(ctx, []string{"render", "--async", "--force-zip-cp", "windows-1251", src, dst})
	if err == nil || !strings.Contains(err.Error(), "1 of 2 documents failed") {
		t.Fatalf("Run() error = %v", err)
	}
	if !env.Cfg.Include.Async || env.CodePage == nil {
		t.Errorf("flags were not applied: async=%v codepage=%v", env.Cfg.Include.Async, env.CodePage)
	}
	readOutput(t, filepath.Join(dst, "good.html"))
}
