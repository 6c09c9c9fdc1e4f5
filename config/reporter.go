package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/maruel/natural"

	"mjmlc/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates initialized empty report.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	r := &Report{entries: make(map[string]entry)}

	if f, err := os.Create(conf.Destination); err == nil {
		r.file = f
	} else if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err == nil {
		r.file = f
	} else {
		return nil, fmt.Errorf("unable to create report: %w", err)
	}
	return r, nil
}

type entry struct {
	// path of the file on disk, empty for in-memory data
	path  string
	stamp time.Time
	data  []byte
}

// Report accumulates everything needed to troubleshoot a run: configuration,
// logs, processed documents with their trees and rendered results. It is
// written out as zip archive on Close. All methods are safe to call on nil
// report, which means no report was requested.
type Report struct {
	mu      sync.Mutex
	entries map[string]entry
	file    *os.File
}

// Close finalizes debug report.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	defer r.file.Close()
	return r.finalize()
}

// Name returns name of underlying file.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store remembers file to be put in the archive on Close, file content is
// taken at that time.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	if p, err := filepath.Abs(path); err == nil {
		path = p
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, exists := r.entries[name]; exists && old.path != path {
		panic(fmt.Sprintf("Attempt to overwrite file in the report for [%s]: was %s, now %s", name, old.path, path))
	}
	r.entries[name] = entry{path: path}
}

// StoreData saves data to be put in the archive under requested name. Repeated
// names are versioned, so the same document processed twice keeps both
// copies.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	e := entry{data: slices.Clone(data), stamp: time.Now()}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		name = fmt.Sprintf("%s-%d", name, e.stamp.UnixNano())
	}
	r.entries[name] = e
}

func (r *Report) finalize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	arc := zip.NewWriter(r.file)
	now := time.Now()

	names, manifest := prepareManifest(r.entries, now)
	if err := saveFile(arc, "MANIFEST", now, manifest); err != nil {
		return err
	}
	for _, name := range names {
		e := r.entries[name]
		if e.path == "" {
			if err := saveFile(arc, name, e.stamp, bytes.NewReader(e.data)); err != nil {
				return err
			}
			continue
		}
		if err := saveDiskFile(arc, name, e.path); err != nil {
			return err
		}
	}
	return arc.Close()
}

// saveDiskFile copies regular file into archive, absent files are skipped.
func saveDiskFile(arc *zip.Writer, name, path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return saveFile(arc, name, info.ModTime(), f)
}

// prepareManifest lists entries in natural order, so numbered documents stay
// in sequence.
func prepareManifest(entries map[string]entry, now time.Time) ([]string, *bytes.Buffer) {
	names := make([]string, 0, len(entries))
	for k := range entries {
		names = append(names, k)
	}
	slices.SortFunc(names, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case natural.Less(a, b):
			return -1
		}
		return 1
	})

	var buf bytes.Buffer
	for _, name := range names {
		e := entries[name]
		stamp, origin := e.stamp, e.path
		if stamp.IsZero() {
			stamp = now
		}
		if origin == "" {
			origin = "(data, " + fmt.Sprint(len(e.data)) + " bytes)"
		}
		buf.WriteString(strings.Join([]string{stamp.UTC().Format(time.UnixDate), name, origin}, "\t") + "\n")
	}
	return names, &buf
}

func saveFile(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
