package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"csv2js/config"
	"csv2js/dataset"
	"csv2js/state"
	"csv2js/tabular"
)

// stdout is where output goes when no destination is given.
var stdout io.Writer = os.Stdout

// result is everything produced by a single conversion.
type result struct {
	sources    []source
	table      *tabular.Table
	descriptor dataset.Descriptor
	variable   string
	output     string
}

// render produces streamable representation of the result, every format ends
// with a newline.
func render(r *result, format config.OutputFmt) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case config.OutputFmtJs:
		data, err = dataset.Render(r.variable, []dataset.Descriptor{r.descriptor})
	case config.OutputFmtJson:
		data, err = dataset.MarshalList([]dataset.Descriptor{r.descriptor})
	case config.OutputFmtTsv:
		data = []byte(r.table.TSV(r.descriptor.Desc.Separator))
	default:
		return nil, fmt.Errorf("output type %s cannot be rendered as text", format)
	}
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// writeResult puts result to STDOUT, into destination directory or into
// destination file and verifies what was written.
func writeResult(r *result, dst string, format config.OutputFmt, env *state.LocalEnv, log *zap.Logger) error {
	if len(dst) == 0 {
		data, err := render(r, format)
		if err != nil {
			return err
		}
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("unable to write output: %w", err)
		}
		r.output = "STDOUT"
		env.Rpt.StoreData("result"+format.Ext(), data)
		return verifyDescriptors([]dataset.Descriptor{r.descriptor}, log)
	}

	outputName := dst
	if fi, err := os.Stat(dst); err == nil && fi.IsDir() {
		outputName = buildOutputPath(r, dst, format, env)
	}
	r.output = outputName

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Debug("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if format == config.OutputFmtSqlite {
		if err := writeSQLite(outputName, r); err != nil {
			return fmt.Errorf("unable to write database: %w", err)
		}
	} else {
		data, err := render(r, format)
		if err != nil {
			return err
		}
		if err := os.WriteFile(outputName, data, 0644); err != nil {
			return fmt.Errorf("unable to write output: %w", err)
		}
	}

	// Store conversion result for debugging
	if err := env.Rpt.StoreCopy("result"+format.Ext(), outputName); err != nil {
		log.Warn("Unable to store result in report", zap.Error(err))
	}

	switch format {
	case config.OutputFmtJs, config.OutputFmtJson:
		return verifyFile(outputName, log)
	case config.OutputFmtSqlite:
		return multierr.Append(verifySQLite(outputName, r), verifyDescriptors([]dataset.Descriptor{r.descriptor}, log))
	default:
		return verifyDescriptors([]dataset.Descriptor{r.descriptor}, log)
	}
}

// verifyFile reads descriptors back from the written file.
func verifyFile(path string, log *zap.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	list, _, err := dataset.Load(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("unable to read back %s: %w", path, err)
	}
	return verifyDescriptors(list, log)
}

var errVerification = errors.New("verification failed")

func verifyDescriptors(list []dataset.Descriptor, log *zap.Logger) (err error) {
	for i := range list {
		rpt := dataset.Verify(&list[i])
		for _, w := range rpt.Warnings() {
			log.Debug("Verification warning", zap.String("dataset", rpt.DatasetID), zap.Error(w))
		}
		if e := rpt.Err(); e != nil {
			err = multierr.Append(err, e)
		}
	}
	if err != nil {
		return fmt.Errorf("%w: %w", errVerification, err)
	}
	return nil
}
