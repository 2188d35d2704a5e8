package convert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"csv2js/archive"
	"csv2js/config"
	"csv2js/state"
)

// placeholderText is used when there is no input at all, so renderers still
// have something to show.
const placeholderText = "data\nmissing"

var ErrUnsupportedSource = errors.New("unsupported source")

// source is raw content of a single input. Name becomes file label in merged
// table.
type source struct {
	name   string
	origin string
	data   []byte
}

// inputDescription is the document pointing to actual data files.
type inputDescription struct {
	FileRelationships []string `json:"file_relationships"`
}

// collectSources reads all arguments in order. Local paths are read
// immediately, URLs are downloaded concurrently. Unreadable local sources are
// logged and skipped.
func collectSources(ctx context.Context, args []string, log *zap.Logger) ([]source, error) {
	env := state.EnvFromContext(ctx)

	if len(args) == 0 {
		return sourcesFromEnvironment(ctx, &env.Cfg.Input, log)
	}

	var (
		groups = make([][]source, len(args))
		urls   []string
		slots  []int
	)
	for i, arg := range args {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isURL(arg) {
			urls = append(urls, arg)
			slots = append(slots, i)
			continue
		}
		src, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		if err := process(ctx, src, func(s source) { groups[i] = append(groups[i], s) }, log); err != nil {
			log.Error("Unable to read source", zap.String("source", arg), zap.Error(err))
		}
	}

	if len(urls) > 0 {
		data, err := newFetcher(&env.Cfg.Input.HTTP, log).getAll(ctx, urls)
		if err != nil {
			return nil, err
		}
		for i, u := range urls {
			groups[slots[i]] = []source{{name: labelFromURL(u), origin: u, data: data[i]}}
		}
	}
	return slices.Concat(groups...), nil
}

// sourcesFromEnvironment follows input description lookup order: JSON text in
// environment variable, URL of JSON in environment variable, local JSON file.
// With none of them present placeholder is returned.
func sourcesFromEnvironment(ctx context.Context, cfg *config.InputConfig, log *zap.Logger) ([]source, error) {
	f := newFetcher(&cfg.HTTP, log)

	var (
		text string
		from string
	)
	if v, ok := os.LookupEnv(cfg.Env.InputJSON); ok && len(v) > 0 {
		log.Info("Reading input description from environment", zap.String("variable", cfg.Env.InputJSON))
		text, from = v, cfg.Env.InputJSON
	} else if v, ok := os.LookupEnv(cfg.Env.InputJSONURL); ok && len(v) > 0 {
		log.Info("Reading input description from URL", zap.String("variable", cfg.Env.InputJSONURL), zap.String("url", v))
		data, err := f.getText(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("unable to get input description: %w", err)
		}
		text, from = data, v
	} else if fi, err := os.Stat(cfg.JSONPath); len(cfg.JSONPath) > 0 && err == nil && fi.Mode().IsRegular() {
		log.Info("Reading input description from file", zap.String("file", cfg.JSONPath))
		data, err := os.ReadFile(cfg.JSONPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read input description: %w", err)
		}
		text, from = string(data), cfg.JSONPath
	} else {
		log.Warn("No input found, producing placeholder")
		return []source{{name: "input", origin: "placeholder", data: []byte(placeholderText)}}, nil
	}

	var desc inputDescription
	if err := json.Unmarshal([]byte(text), &desc); err != nil {
		return nil, fmt.Errorf("unable to parse input description from %s: %w", from, err)
	}
	if desc.FileRelationships == nil {
		return nil, fmt.Errorf("input description from %s has no file_relationships", from)
	}

	data, err := f.getAll(ctx, desc.FileRelationships)
	if err != nil {
		return nil, err
	}
	res := make([]source, 0, len(data))
	for i, u := range desc.FileRelationships {
		res = append(res, source{name: labelFromURL(u), origin: u, data: data[i]})
	}
	return res, nil
}

// process determines the input type (directory, archive with optional path
// inside, or single file) and reads everything it finds.
func process(ctx context.Context, src string, add func(source), log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
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
			return processDir(ctx, head, add, log)
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			pathIn := filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator)))
			count, err := processArchive(ctx, head, pathIn, add, log)
			if err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			if count == 0 {
				return fmt.Errorf("nothing to process in %s under %q", head, pathIn)
			}
			return nil
		}

		if len(tail) != 0 {
			return fmt.Errorf("input source was not found (%s)", src)
		}
		buf, err := readHead(head)
		if err != nil {
			return err
		}
		if ok, kind := isTabularContent(buf); !ok {
			return fmt.Errorf("%w: %s looks like %s", ErrUnsupportedSource, src, kind.MIME.Value)
		}
		data, err := os.ReadFile(head)
		if err != nil {
			return err
		}
		add(source{name: filepath.Base(head), origin: head, data: data})
		return nil
	}
	return fmt.Errorf("input source was not found (%s)", src)
}

// processDir walks directory tree in natural order reading recognized
// tabular files and archives. Symbolic links are not followed.
func processDir(ctx context.Context, dir string, add func(source), log *zap.Logger) error {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
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

	count := 0
	for _, path := range paths {
		rel := filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator)))

		isArchive, err := isArchiveFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		if isArchive {
			n, err := processArchive(ctx, path, "", func(s source) {
				s.name = rel + "/" + s.name
				add(s)
			}, log)
			if err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			} else if n == 0 {
				log.Debug("Nothing to process", zap.String("archive", path))
			}
			count += n
			continue
		}

		ok, err := isTabularFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		if !ok {
			log.Debug("Skipping file, not recognized as tabular data or archive", zap.String("file", path))
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error("Unable to read file", zap.String("file", path), zap.Error(err))
			continue
		}
		count++
		add(source{name: rel, origin: path, data: data})
	}
	if count == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return nil
}

// processArchive reads all tabular files inside archive under "pathIn" and
// returns their number.
func processArchive(ctx context.Context, path, pathIn string, add func(source), log *zap.Logger) (int, error) {
	cp := state.EnvFromContext(ctx).CodePage
	single := len(pathIn) > 0 && !strings.HasSuffix(pathIn, "/")

	count := 0
	err := archive.Walk(path, pathIn, cp, func(arc string, e archive.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		// explicitly named file does not have to follow naming conventions
		if !(single && e.Name == pathIn) && !isTabularName(e.Name) {
			log.Debug("Skipping file, not recognized as tabular data", zap.String("archive", arc), zap.String("file", e.Name))
			return nil
		}

		r, err := e.File.Open()
		if err != nil {
			log.Error("Unable to open file in archive", zap.String("archive", arc), zap.String("file", e.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		data, err := io.ReadAll(r)
		if err != nil {
			log.Error("Unable to read file in archive", zap.String("archive", arc), zap.String("file", e.Name), zap.Error(err))
			return nil
		}
		if ok, kind := isTabularContent(data[:min(len(data), headSize)]); !ok {
			log.Debug("Skipping file in archive", zap.String("archive", arc), zap.String("file", e.Name), zap.String("type", kind.MIME.Value))
			return nil
		}
		count++
		add(source{name: e.Name, origin: arc + "/" + e.Name, data: data})
		return nil
	})
	return count, err
}
