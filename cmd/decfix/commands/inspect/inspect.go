package inspect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-playground/validator/v10"
	"go.uber.org/fx"

	"github.com/sergeii/decfix/cmd/decfix/application"
	"github.com/sergeii/decfix/cmd/decfix/commander"
	"github.com/sergeii/decfix/cmd/decfix/container"
	"github.com/sergeii/decfix/internal/savefile"
)

var ErrUnrecognizedBlocks = errors.New("some DEC files could not be recognized")

type Config struct {
	SaveFile     string `validate:"required,file"`
	PasswordFile string `validate:"omitempty,file"`
}

type command struct {
	SaveFile     string `arg:""    help:"Save file to inspect"                               type:"path"`
	PasswordFile string `short:"p" help:"Password file (containing JSON array of strings)" type:"path"`
}

func (c *command) Run(_ *commander.Globals, builder *application.Builder) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg := Config{
		SaveFile:     c.SaveFile,
		PasswordFile: c.PasswordFile,
	}

	var ctr container.Container
	app := builder.
		Add(
			fx.Supply(application.PasswordConfig{PasswordFile: cfg.PasswordFile}),
			fx.Invoke(func(validate *validator.Validate) error {
				return validate.Struct(&cfg)
			}),
			fx.Populate(&ctr),
		).
		Build()
	if err := app.Err(); err != nil {
		return err
	}

	doc, err := savefile.Load(cfg.SaveFile)
	if err != nil {
		return err
	}
	result, err := ctr.InspectSave.Execute(ctx, doc)
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		return fmt.Errorf("%w (%d of %d)", ErrUnrecognizedBlocks, result.Failed, len(result.Reports))
	}
	return nil
}

type CLI struct {
	Inspect command `cmd:"" help:"Recognize the DEC files of a save file without changing anything"`
}
