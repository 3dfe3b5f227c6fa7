package main

import (
	"github.com/alecthomas/kong"
	"go.uber.org/fx"

	"github.com/sergeii/decfix/cmd/decfix/application"
	"github.com/sergeii/decfix/cmd/decfix/commander"
	"github.com/sergeii/decfix/cmd/decfix/commands/inspect"
	"github.com/sergeii/decfix/cmd/decfix/commands/patch"
	"github.com/sergeii/decfix/cmd/decfix/logging"
)

func main() {
	cli := commander.CLI{}
	cli.Plugins = kong.Plugins{
		&patch.CLI{},
		&inspect.CLI{},
	}
	ctx := kong.Parse(
		&cli,
		kong.Name("decfix"),
		kong.Description("Re-encode DEC files of a Hacknet save for another platform"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Summary:   true,
			Tree:      true,
			FlagsLast: true,
		}),
	)

	builder := application.NewBuilder(
		application.Module,
		fx.Supply(logging.Config{
			LogLevel:  cli.Globals.LogLevel,
			LogOutput: cli.Globals.LogOutput,
		}),
		fx.Provide(logging.Provide),
		fx.WithLogger(logging.FxLogger),
	)

	if err := ctx.Run(&cli.Globals, builder); err != nil {
		ctx.FatalIfErrorf(err)
	}
}
