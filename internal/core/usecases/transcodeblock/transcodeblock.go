package transcodeblock

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sergeii/decfix/internal/core/usecases/recognizeblock"
	"github.com/sergeii/decfix/internal/metrics"
	"github.com/sergeii/decfix/pkg/dec/frame"
	"github.com/sergeii/decfix/pkg/dec/platform"
)

type Outcome string

const (
	Skipped   Outcome = "skipped"
	Reencoded Outcome = "reencoded"
	Dumped    Outcome = "dumped"
)

type Request struct {
	Name       string
	Recognized recognizeblock.Result
	Target     platform.Platform
}

func NewRequest(name string, recognized recognizeblock.Result, target platform.Platform) Request {
	return Request{
		Name:       name,
		Recognized: recognized,
		Target:     target,
	}
}

type Result struct {
	Outcome Outcome
	// Text replaces the block starting at frame.Prefix. Empty when skipped.
	Text string
}

type UseCase struct {
	metrics *metrics.Collector
	logger  *zerolog.Logger
}

func New(metrics *metrics.Collector, logger *zerolog.Logger) UseCase {
	return UseCase{
		metrics: metrics,
		logger:  logger,
	}
}

func (uc UseCase) Execute(req Request) (Result, error) {
	if !req.Target.Valid() {
		return Result{}, fmt.Errorf("%w: %d", platform.ErrUnknownPlatform, int(req.Target))
	}

	result := uc.transcode(req)
	uc.metrics.BlocksTranscoded.WithLabelValues(req.Target.String(), string(result.Outcome)).Inc()

	return result, nil
}

func (uc UseCase) transcode(req Request) Result {
	origin := req.Recognized

	if !origin.Resolved {
		uc.logger.Info().
			Str("file", req.Name).Stringer("platform", origin.Platform).Stringer("target", req.Target).
			Msg("No password for file, dumped fallback")
		return Result{Outcome: Dumped, Text: Dump(origin.File)}
	}

	// only a known password lets us skip, otherwise the content is dumped above
	if origin.Platform == req.Target {
		uc.logger.Info().
			Str("file", req.Name).Stringer("platform", origin.Platform).
			Msg("Skipped file (same platform)")
		return Result{Outcome: Skipped}
	}

	text := frame.Encrypt(
		origin.File.Message,
		origin.File.Header,
		int32(req.Target.Hash(origin.Password)),
		int32(req.Target.EmptyHash()),
	)
	uc.logger.Info().
		Str("file", req.Name).Stringer("platform", origin.Platform).Stringer("target", req.Target).
		Msg("Re-encoded file")

	return Result{Outcome: Reencoded, Text: text}
}

// Dump renders a decrypted file for manual inspection.
// The output is not a DEC block and cannot be parsed back.
func Dump(file frame.File) string {
	var sb strings.Builder
	header := file.Header
	sb.WriteString("Header:\n" + header.Header + "\n")
	sb.WriteString("IP:\n" + header.Signature + "\n")
	if header.HasExtension {
		sb.WriteString("Extension:\n" + header.Extension + "\n")
	}
	sb.WriteString("Key:\n" + header.Key + "\n")
	sb.WriteString(file.Message)
	return sb.String()
}
