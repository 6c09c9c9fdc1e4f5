package convert

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"mjmlc/config"
	"mjmlc/mjml"
	"mjmlc/state"
)

// buildOutputPath returns output file path for the document. "src" is the
// source path relative to what was requested on command line. Name comes from
// user template when configured and expands to something, otherwise from
// source name. Source directory structure is kept unless NoDirs is set.
func buildOutputPath(doc *mjml.Document, src, dst string, env *state.LocalEnv) string {
	outDir := dst
	if !env.NoDirs {
		outDir = filepath.Join(dst, filepath.Dir(src))
	}
	ext := env.Cfg.Output.Extension

	if tmpl := env.Cfg.Output.NameTemplate; tmpl != "" {
		expanded, err := expandTemplate(doc, config.OutputNameTemplateFieldName, tmpl, src)
		if err != nil {
			env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		} else if segments := splitPath(filepath.FromSlash(strings.TrimSpace(expanded))); len(segments) > 0 {
			parts := []string{outDir}
			for _, s := range segments {
				parts = append(parts, cleanPathSegment(s, env))
			}
			parts[len(parts)-1] += ext
			return filepath.Join(parts...)
		}
	}

	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(outDir, cleanPathSegment(base, env)+ext)
}

// splitPath breaks path into non empty segments, leading separators and
// current directory references are dropped.
func splitPath(path string) []string {
	segments := strings.Split(path, string(filepath.Separator))
	return slices.DeleteFunc(segments, func(s string) bool {
		return s == "" || s == "." || s == ".."
	})
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Output.Transliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
