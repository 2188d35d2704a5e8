// Package convert implements program commands: it collects tabular sources,
// merges them into a dataset and writes it out.
package convert

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"csv2js/config"
	"csv2js/state"
	"csv2js/tabular"
)

var jsIdentifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// job describes single conversion independently of CLI framework.
type job struct {
	args   []string
	dst    string
	format config.OutputFmt
}

// Flags returns command line flags shared by convert and watch.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "to", Value: config.OutputFmtJs.String(),
			Usage: "conversion output `TYPE` (supported types: " + strings.Join(config.OutputFmtNames(), ", ") + ")"},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write result to `DESTINATION` (file or existing directory) instead of STDOUT"},
		&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "continue even if destination exits, overwrite files"},
		&cli.StringFlag{Name: "label", Usage: "`NAME` of the column identifying source file of every row"},
		&cli.BoolFlag{Name: "no-label", Usage: "never add source file column, even for multiple sources"},
		&cli.StringFlag{Name: "variable", Usage: "JavaScript variable `NAME` for js output"},
		&cli.StringFlag{Name: "force-zip-cp",
			Usage: "Force `ENCODING` for ALL non UTF-8 file names in processed archives (see IANA.org for character set names)"},
	}
}

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert").With(zap.String("run", env.RunID))

	j, err := prepareJob(cmd, env, log)
	if err != nil {
		return err
	}

	log.Info("Processing starting", zap.Strings("sources", j.args), zap.String("destination", j.dst), zap.Stringer("format", j.format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	_, err = convert(ctx, j, log)
	return err
}

// prepareJob applies command line flags on top of configuration.
func prepareJob(cmd *cli.Command, env *state.LocalEnv, log *zap.Logger) (*job, error) {
	format, err := config.ParseOutputFmt(cmd.String("to"))
	if err != nil {
		log.Warn("Unknown output format requested, switching to js", zap.Error(err))
		format = config.OutputFmtJs
	}

	env.Overwrite, env.NoLabel = cmd.Bool("overwrite"), cmd.Bool("no-label")
	if label := cmd.String("label"); len(label) > 0 {
		env.Cfg.Output.LabelColumn = label
	}
	if variable := cmd.String("variable"); len(variable) > 0 {
		env.Cfg.Output.Variable = variable
	}
	if !jsIdentifier.MatchString(env.Cfg.Output.Variable) {
		return nil, fmt.Errorf("variable name %q is not a valid identifier", env.Cfg.Output.Variable)
	}

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	dst := cmd.String("out")
	if len(dst) > 0 {
		if dst, err = filepath.Abs(dst); err != nil {
			return nil, err
		}
	} else if !format.Streamable() {
		return nil, fmt.Errorf("output type %s requires destination", format)
	}
	return &job{args: cmd.Args().Slice(), dst: dst, format: format}, nil
}

func tabularOptions(env *state.LocalEnv) *tabular.Options {
	cfg := env.Cfg
	return &tabular.Options{
		Delimiters:        cfg.Input.Delimiters,
		SniffLines:        cfg.Input.SniffLines,
		NoGCT:             !cfg.Input.GCT,
		LabelColumn:       cfg.Output.LabelColumn,
		NoLabel:           env.NoLabel,
		IntFormat:         cfg.Output.IntFormat,
		FloatFormat:       cfg.Output.FloatFormat,
		CategoricalSample: cfg.Output.CategoricalSample,
		PrimaryKey:        cfg.Output.PrimaryKey,
		DatasetID:         cfg.Output.DatasetID,
		DatasetName:       cfg.Output.DatasetName,
	}
}

// convert reads all sources, merges them and writes the dataset. Sources
// which cannot be decoded or parsed are skipped.
func convert(ctx context.Context, j *job, log *zap.Logger) (*result, error) {
	env := state.EnvFromContext(ctx)

	srcs, err := collectSources(ctx, j.args, log)
	if err != nil {
		return nil, err
	}
	if len(srcs) == 0 {
		return nil, errors.New("no input data found")
	}

	opts := tabularOptions(env)
	r := &result{variable: env.Cfg.Output.Variable}

	files := make([]*tabular.File, 0, len(srcs))
	for _, s := range srcs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := decodeText(s.data, env.Cfg.Input.Charset)
		if err != nil {
			log.Error("Unable to decode source", zap.String("source", s.origin), zap.Error(err))
			continue
		}
		f, err := tabular.Parse(s.name, text, opts, log)
		if err != nil {
			log.Error("Unable to parse source", zap.String("source", s.origin), zap.Error(err))
			continue
		}
		log.Debug("Source parsed", zap.String("source", s.origin), zap.String("label", s.name),
			zap.Int("columns", len(f.Header)), zap.Int("rows", len(f.Rows)))
		files = append(files, f)
		r.sources = append(r.sources, s)
	}
	if len(files) == 0 {
		return nil, errors.New("none of the sources could be read")
	}

	r.table = tabular.Merge(files, opts)
	r.descriptor = r.table.Descriptor(opts)

	err = writeResult(r, j.dst, j.format, env, log)
	storeDebugDump(env, r)
	if err != nil {
		return nil, err
	}
	log.Info("Dataset written", zap.String("to", r.output),
		zap.Int("sources", len(r.sources)), zap.Int("columns", len(r.table.Header)), zap.Int("rows", len(r.table.Rows)))
	return r, nil
}
