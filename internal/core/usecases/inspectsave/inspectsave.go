package inspectsave

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sergeii/decfix/internal/core/usecases/recognizeblock"
	"github.com/sergeii/decfix/internal/savefile"
	"github.com/sergeii/decfix/pkg/dec/frame"
)

type Report struct {
	Name   string
	Result recognizeblock.Result
	Err    error
}

type Result struct {
	Reports []Report
	Failed  int
}

// UseCase recognizes every DEC block of a save file without changing anything.
// Unlike patching, a broken block does not stop the inspection.
type UseCase struct {
	recognizer recognizeblock.UseCase
	logger     *zerolog.Logger
}

func New(recognizer recognizeblock.UseCase, logger *zerolog.Logger) UseCase {
	return UseCase{
		recognizer: recognizer,
		logger:     logger,
	}
}

func (uc UseCase) Execute(ctx context.Context, doc *savefile.Document) (Result, error) {
	var result Result
	for _, field := range doc.Fields() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		loc := strings.Index(field.Value, frame.Prefix)
		if loc == -1 {
			continue
		}
		lines := frame.SplitBlock(field.Value[loc:])
		recognized, err := uc.recognizer.Execute(recognizeblock.NewRequest(field.Name, lines))
		report := Report{Name: field.Name, Result: recognized, Err: err}
		result.Reports = append(result.Reports, report)
		if err != nil {
			result.Failed++
			uc.logger.Error().Err(err).Str("file", field.Name).Msg("Unable to recognize DEC file")
			continue
		}
		event := uc.logger.Info().
			Str("file", field.Name).
			Stringer("platform", recognized.Platform).
			Int32("hash", recognized.Hash).
			Str("resolution", string(recognized.Resolution)).
			Str("header", recognized.File.Header.Header).
			Str("signature", recognized.File.Header.Signature)
		if recognized.Resolved {
			event = event.Str("password", recognized.Password)
		}
		event.Msg("Recognized DEC file")
	}
	return result, nil
}
