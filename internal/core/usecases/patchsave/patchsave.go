package patchsave

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/sergeii/decfix/internal/core/usecases/recognizeblock"
	"github.com/sergeii/decfix/internal/core/usecases/transcodeblock"
	"github.com/sergeii/decfix/internal/metrics"
	"github.com/sergeii/decfix/internal/savefile"
	"github.com/sergeii/decfix/pkg/dec/frame"
	"github.com/sergeii/decfix/pkg/dec/platform"
)

// BlockError is a fatal error of a single block.
// It aborts the whole pass for the target.
type BlockError struct {
	Name string
	Data string
	Err  error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("error for file %s: %s", e.Name, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

type Request struct {
	Document   *savefile.Document
	Target     platform.Platform
	OutputPath string
}

func NewRequest(doc *savefile.Document, target platform.Platform, outputPath string) Request {
	return Request{
		Document:   doc,
		Target:     target,
		OutputPath: outputPath,
	}
}

type Result struct {
	Written   bool
	Reencoded int
	Dumped    int
	Skipped   int
	// Ignored counts prefixed fields that do not form a two-line block
	Ignored int
}

type UseCase struct {
	recognizer recognizeblock.UseCase
	transcoder transcodeblock.UseCase
	clock      clockwork.Clock
	metrics    *metrics.Collector
	logger     *zerolog.Logger
}

func New(
	recognizer recognizeblock.UseCase,
	transcoder transcodeblock.UseCase,
	clock clockwork.Clock,
	metrics *metrics.Collector,
	logger *zerolog.Logger,
) UseCase {
	return UseCase{
		recognizer: recognizer,
		transcoder: transcoder,
		clock:      clock,
		metrics:    metrics,
		logger:     logger,
	}
}

func (uc UseCase) Execute(ctx context.Context, req Request) (Result, error) {
	started := uc.clock.Now()
	defer func() {
		uc.metrics.DocumentDurations.WithLabelValues(req.Target.String()).Observe(uc.clock.Since(started).Seconds())
	}()

	uc.logger.Info().Stringer("target", req.Target).Msg("Processing save file for target")

	result, replacements, err := uc.patch(ctx, req)
	if err != nil {
		uc.metrics.DocumentsFailed.WithLabelValues(req.Target.String()).Inc()
		return result, err
	}

	if len(replacements) == 0 {
		uc.logger.Info().Stringer("target", req.Target).Msg("Skipping write of save file (no changes needed)")
		return result, nil
	}

	data, err := req.Document.Render(replacements)
	if err != nil {
		return result, err
	}
	if err = os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return result, err
	}
	uc.logger.Info().Stringer("target", req.Target).Str("path", req.OutputPath).Msg("Saving patched save file")
	if err = os.WriteFile(req.OutputPath, data, 0o644); err != nil { // nolint: gosec
		return result, err
	}

	result.Written = true
	uc.metrics.DocumentsWritten.WithLabelValues(req.Target.String()).Inc()
	uc.logger.Info().
		Stringer("target", req.Target).
		Int("reencoded", result.Reencoded).Int("dumped", result.Dumped).Int("skipped", result.Skipped).
		Dur("elapsed", uc.clock.Since(started)).
		Msg("Finished save file")

	return result, nil
}

func (uc UseCase) patch(ctx context.Context, req Request) (Result, map[int]string, error) {
	var result Result
	replacements := make(map[int]string)

	for _, field := range req.Document.Fields() {
		if err := ctx.Err(); err != nil {
			return result, nil, err
		}
		loc := strings.Index(field.Value, frame.Prefix)
		if loc == -1 {
			continue
		}
		lines := frame.SplitBlock(field.Value[loc:])
		if len(lines) != 2 {
			uc.logger.Warn().Str("file", field.Name).Int("lines", len(lines)).Msg("Ignoring incomplete DEC file")
			result.Ignored++
			continue
		}

		recognized, err := uc.recognizer.Execute(recognizeblock.NewRequest(field.Name, lines))
		if err != nil {
			return result, nil, uc.fail(field, err)
		}
		transcoded, err := uc.transcoder.Execute(transcodeblock.NewRequest(field.Name, recognized, req.Target))
		if err != nil {
			return result, nil, uc.fail(field, err)
		}

		switch transcoded.Outcome {
		case transcodeblock.Skipped:
			result.Skipped++
			continue
		case transcodeblock.Reencoded:
			result.Reencoded++
		case transcodeblock.Dumped:
			result.Dumped++
		}
		replacements[field.Index] = field.Value[:loc] + transcoded.Text
	}

	return result, replacements, nil
}

func (uc UseCase) fail(field savefile.Field, err error) error {
	uc.logger.Error().
		Err(err).Str("file", field.Name).Str("data", field.Value).
		Msg("Unable to process DEC file")
	return &BlockError{
		Name: field.Name,
		Data: field.Value,
		Err:  err,
	}
}
