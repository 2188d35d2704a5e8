package convert

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"csv2js/config"
	"csv2js/state"
)

// buildOutputPath returns output file path for destination directory. Name is
// produced by user-defined template (which may include subdirectories) or is
// derived from the variable name. It cleans up path and if requested
// transliterates it.
func buildOutputPath(r *result, dst string, format config.OutputFmt, env *state.LocalEnv) string {
	defaultFile := buildDefaultFileName(r.variable, format, env)

	if env.Cfg.Output.NameTemplate == "" {
		return filepath.Join(dst, defaultFile)
	}

	expandedName := expandOutputNameTemplate(r, format, env)
	if expandedName == "" {
		// fallback to default name if template expansion failed
		return filepath.Join(dst, defaultFile)
	}

	return assemblePathWithSubdirs(dst, expandedName, format, env)
}

func buildDefaultFileName(baseName string, format config.OutputFmt, env *state.LocalEnv) string {
	if env.Cfg.Output.FileNameTransliterate {
		baseName = slug.Make(baseName)
	}
	return config.CleanFileName(baseName) + format.Ext()
}

func expandOutputNameTemplate(r *result, format config.OutputFmt, env *state.LocalEnv) string {
	values := buildValues(config.OutputNameTemplateFieldName, r, format, env.RunID)
	expandedName, err := expandTemplate(config.OutputNameTemplateFieldName, env.Cfg.Output.NameTemplate, values)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(filepath.FromSlash(expandedName))
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output path,
// cleaning and transliterating segments as needed
func assemblePathWithSubdirs(outDir, expandedName string, format config.OutputFmt, env *state.LocalEnv) string {
	pathSegments := splitAndCleanPath(expandedName)

	if len(pathSegments) == 0 {
		return filepath.Join(outDir, buildDefaultFileName("output", format, env))
	}

	fileName := cleanPathSegment(pathSegments[len(pathSegments)-1], env) + format.Ext()
	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)

	for _, segment := range pathSegments[:len(pathSegments)-1] {
		dirParts = append(dirParts, cleanPathSegment(segment, env))
	}

	dirParts = append(dirParts, fileName)
	return filepath.Join(dirParts...)
}

// splitAndCleanPath drops empty, "." and ".." segments and volume names so
// expanded template never leaves destination directory.
func splitAndCleanPath(path string) []string {
	segments := strings.FieldsFunc(filepath.ToSlash(path), func(r rune) bool { return r == '/' })
	return slices.DeleteFunc(segments, func(s string) bool {
		return s == "." || s == ".." || filepath.VolumeName(s) != ""
	})
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Output.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
