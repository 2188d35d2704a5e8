package convert

import (
	"context"
	"errors"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"csv2js/dataset"
	"csv2js/state"
)

// loadFile reads dataset file in either JS or JSON form.
func loadFile(path string) ([]dataset.Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	list, _, err := dataset.Load(f)
	if err != nil {
		return nil, fmt.Errorf("unable to load %s: %w", path, err)
	}
	return list, nil
}

// Verify checks dataset files and prints everything found. Only error
// findings make command fail.
func Verify(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("verify")

	files := cmd.Args().Slice()
	if len(files) == 0 {
		return errors.New("no dataset files specified")
	}
	return verifyFiles(files, log)
}

func verifyFiles(files []string, log *zap.Logger) (err error) {
	for _, file := range files {
		list, e := loadFile(file)
		if e != nil {
			err = multierr.Append(err, e)
			continue
		}
		for i := range list {
			rpt := dataset.Verify(&list[i])
			fmt.Fprintf(stdout, "%s: dataset %q: %d columns, %d rows\n", file, rpt.DatasetID, rpt.Columns, rpt.Rows)
			for _, f := range rpt.Findings {
				fmt.Fprintf(stdout, "\t%s: %s\n", f.Severity, f.Error())
			}
			if e := rpt.Err(); e != nil {
				err = multierr.Append(err, fmt.Errorf("%s: %w", file, e))
			}
		}
		log.Debug("Verified", zap.String("file", file), zap.Int("datasets", len(list)))
	}
	return err
}

// Decode prints embedded payload of the dataset.
func Decode(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("decode")

	if cmd.Args().Len() != 1 {
		return errors.New("exactly one dataset file expected")
	}
	return decodeFile(cmd.Args().First(), cmd.String("id"), cmd.String("out"), cmd.Bool("overwrite"), log)
}

func decodeFile(file, id, dst string, overwrite bool, log *zap.Logger) error {
	list, err := loadFile(file)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return fmt.Errorf("%s has no datasets", file)
	}

	d := &list[0]
	if len(id) > 0 {
		d = nil
		for i := range list {
			if list[i].ID == id {
				d = &list[i]
				break
			}
		}
		if d == nil {
			return fmt.Errorf("dataset %q not found in %s", id, file)
		}
	}

	_, text, err := dataset.DecodeDataURI(d.URL)
	if err != nil {
		return fmt.Errorf("dataset %q: %w", d.ID, err)
	}
	data := []byte(text + "\n")

	if len(dst) == 0 {
		_, err = stdout.Write(data)
		return err
	}
	if _, err := os.Stat(dst); err == nil && !overwrite {
		return fmt.Errorf("output file already exists: %s", dst)
	}
	log.Debug("Writing payload", zap.String("dataset", d.ID), zap.String("to", dst))
	return os.WriteFile(dst, data, 0644)
}
