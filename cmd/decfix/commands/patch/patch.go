package patch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/sergeii/decfix/cmd/decfix/application"
	"github.com/sergeii/decfix/cmd/decfix/commander"
	"github.com/sergeii/decfix/cmd/decfix/container"
	"github.com/sergeii/decfix/internal/core/usecases/patchsave"
	"github.com/sergeii/decfix/internal/metrics"
	"github.com/sergeii/decfix/internal/savefile"
	"github.com/sergeii/decfix/pkg/dec/platform"
)

var ErrPatchFailed = errors.New("failed to patch save file")

type Config struct {
	SaveFile        string   `validate:"required,file"`
	PasswordFile    string   `validate:"omitempty,file"`
	OutputDirectory string
	Targets         []string `validate:"required,min=1,dive,platform"`
	MetricsFile     string
}

type deps struct {
	fx.In

	Container container.Container
	Metrics   *metrics.Collector
	Logger    *zerolog.Logger
}

func run(ctx context.Context, cfg Config, d deps) error {
	doc, err := savefile.Load(cfg.SaveFile)
	if err != nil {
		return err
	}

	outputDirectory := cfg.OutputDirectory
	if outputDirectory == "" {
		outputDirectory = filepath.Dir(cfg.SaveFile)
	}

	failed := 0
	for _, name := range cfg.Targets {
		target, err := platform.Parse(name)
		if err != nil {
			return err
		}
		outputPath := savefile.OutputPath(outputDirectory, cfg.SaveFile, target.String())
		_, err = d.Container.PatchSave.Execute(ctx, patchsave.NewRequest(doc, target, outputPath))
		if err != nil {
			var blockErr *patchsave.BlockError
			if !errors.As(err, &blockErr) {
				return err
			}
			d.Logger.Error().Stringer("target", target).Msg("Aborted save file for target")
			failed++
		}
	}

	if cfg.MetricsFile != "" {
		if err := d.Metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w for %d target(s)", ErrPatchFailed, failed)
	}
	return nil
}

type command struct {
	SaveFile        string   `arg:""     help:"Save file to create patched versions of" type:"path"`
	PasswordFile    string   `short:"p"  help:"Password file (containing JSON array of strings)" type:"path"`
	OutputDirectory string   `short:"o"  help:"Directory to output, defaults to the directory of the save file" type:"path"` // nolint:lll
	Target          []string `default:"windows,mono" help:"Platforms to produce patched save files for"`
	MetricsFile     string   `help:"Write run metrics to this file in the Prometheus text format" type:"path"`
}

func (c *command) Run(_ *commander.Globals, builder *application.Builder) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg := Config{
		SaveFile:        c.SaveFile,
		PasswordFile:    c.PasswordFile,
		OutputDirectory: c.OutputDirectory,
		Targets:         c.Target,
		MetricsFile:     c.MetricsFile,
	}

	var d deps
	app := builder.
		Add(
			fx.Supply(application.PasswordConfig{PasswordFile: cfg.PasswordFile}),
			fx.Invoke(func(validate *validator.Validate) error {
				return validate.Struct(&cfg)
			}),
			fx.Populate(&d),
		).
		Build()
	if err := app.Err(); err != nil {
		return err
	}

	return run(ctx, cfg, d)
}

type CLI struct {
	Patch command `cmd:"" help:"Create patched copies of a save file for other platforms"`
}
