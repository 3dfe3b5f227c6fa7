package application

import (
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/sergeii/decfix/cmd/decfix/container"
	"github.com/sergeii/decfix/cmd/decfix/logging"
	"github.com/sergeii/decfix/internal/core/dictionary"
	"github.com/sergeii/decfix/internal/metrics"
	"github.com/sergeii/decfix/internal/passwords"
	"github.com/sergeii/decfix/internal/validation"
)

type PasswordConfig struct {
	PasswordFile string
}

func provideDictionary(
	cfg PasswordConfig,
	collector *metrics.Collector,
	logger *zerolog.Logger,
) (dictionary.Dictionary, error) {
	candidates, err := passwords.Collect(cfg.PasswordFile, logger)
	if err != nil {
		return dictionary.Dictionary{}, err
	}
	dict := dictionary.Build(candidates)
	collector.DictionarySize.Set(float64(dict.Len()))
	logger.Debug().Int("passwords", len(candidates)).Int("hashes", dict.Len()).Msg("Built password dictionary")
	return dict, nil
}

type Builder struct {
	opts []fx.Option
}

func NewBuilder(opts ...fx.Option) *Builder {
	return &Builder{
		opts: opts,
	}
}

func (b *Builder) Add(opts ...fx.Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

func (b *Builder) Build() *fx.App {
	return fx.New(b.opts...)
}

var Module = fx.Module("application",
	fx.Invoke(logging.NoGlobal),
	fx.Provide(clockwork.NewRealClock),
	fx.Provide(validation.New),
	fx.Provide(metrics.New),
	fx.Provide(provideDictionary),
	container.Module,
)
