package recognizeblock

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sergeii/decfix/internal/core/dictionary"
	"github.com/sergeii/decfix/internal/metrics"
	"github.com/sergeii/decfix/pkg/dec/cipher"
	"github.com/sergeii/decfix/pkg/dec/frame"
	"github.com/sergeii/decfix/pkg/dec/platform"
)

// keyOffset is the encrypted value of 'E' under a zero key,
// i.e. the first marker token minus the password hash
const keyOffset = 158485

var (
	ErrMissingKey      = errors.New("no constphrase specified in DEC header")
	ErrNotValidDecFile = errors.New("DEC file not valid, parsing failed")
)

var plausibleSignature = regexp.MustCompile(`^[a-zA-Z0-9.-]*$`)

type Resolution string

const (
	Matched   Resolution = "matched"
	Collision Resolution = "collision"
	Heuristic Resolution = "heuristic"
	Default   Resolution = "default"
)

type Request struct {
	Name  string
	Lines []string
}

func NewRequest(name string, lines []string) Request {
	return Request{
		Name:  name,
		Lines: lines,
	}
}

type Result struct {
	File     frame.File
	Platform platform.Platform
	// Password is only meaningful when Resolved is set
	Password   string
	Resolved   bool
	Hash       int32
	Resolution Resolution
}

type UseCase struct {
	dict    dictionary.Dictionary
	metrics *metrics.Collector
	logger  *zerolog.Logger
}

func New(
	dict dictionary.Dictionary,
	metrics *metrics.Collector,
	logger *zerolog.Logger,
) UseCase {
	return UseCase{
		dict:    dict,
		metrics: metrics,
		logger:  logger,
	}
}

func (uc UseCase) Execute(req Request) (Result, error) {
	result, err := uc.recognize(req)
	if err != nil {
		uc.metrics.BlocksFailed.WithLabelValues(failureReason(err)).Inc()
		return Result{}, err
	}
	uc.metrics.BlocksRecognized.WithLabelValues(result.Platform.String(), string(result.Resolution)).Inc()
	return result, nil
}

func (uc UseCase) recognize(req Request) (Result, error) {
	header, err := frame.ParseHeader(req.Lines, int32(platform.Windows.EmptyHash()))
	if err != nil {
		return Result{}, err
	}

	hash, err := parseKey(header.Key)
	if err != nil {
		return Result{}, err
	}

	if entries := uc.dict.Lookup(hash); len(entries) > 0 {
		resolution := Matched
		if len(entries) > 1 {
			resolution = Collision
			uc.metrics.BlocksCollided.Inc()
			uc.logger.Warn().
				Str("file", req.Name).Int("count", len(entries)).Str("candidates", formatEntries(entries)).
				Msg("Collision, choosing one password arbitrarily")
		}
		// the first entry wins, no other candidate is tried
		entry := entries[0]
		file, err := verify(req.Lines, hash, entry.Platform)
		if err != nil {
			return Result{}, err
		}
		return Result{
			File:       file,
			Platform:   entry.Platform,
			Password:   entry.Password,
			Resolved:   true,
			Hash:       hash,
			Resolution: resolution,
		}, nil
	}

	uc.logger.Warn().
		Str("file", req.Name).Int32("hash", hash).
		Msg("Unknown password detected, falling back to heuristic header check")

	for _, p := range platform.Members() {
		signature, err := frame.DecryptSignature(req.Lines, int32(p.EmptyHash()))
		if err != nil {
			return Result{}, err
		}
		if !plausibleSignature.MatchString(signature) {
			continue
		}
		// only the first plausible platform is verified
		file, err := verify(req.Lines, hash, p)
		if err != nil {
			return Result{}, err
		}
		return Result{File: file, Platform: p, Hash: hash, Resolution: Heuristic}, nil
	}

	uc.logger.Warn().
		Str("file", req.Name).Stringer("platform", platform.Windows).
		Msg("Heuristic header check failed, using default platform")

	file, err := verify(req.Lines, hash, platform.Windows)
	if err != nil {
		return Result{}, err
	}
	return Result{File: file, Platform: platform.Windows, Hash: hash, Resolution: Default}, nil
}

func verify(lines []string, hash int32, p platform.Platform) (frame.File, error) {
	file, ok, err := frame.Decrypt(lines, hash, int32(p.EmptyHash()))
	if err != nil {
		return frame.File{}, err
	}
	if !ok {
		return frame.File{}, ErrNotValidDecFile
	}
	return file, nil
}

func parseKey(key string) (int32, error) {
	tokens := strings.Fields(key)
	if len(tokens) == 0 {
		return 0, ErrMissingKey
	}
	value, err := strconv.ParseInt(tokens[0], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w '%s'", cipher.ErrMalformedToken, tokens[0])
	}
	return int32(value) - keyOffset, nil
}

func formatEntries(entries []dictionary.Entry) string {
	var sb strings.Builder
	for _, entry := range entries {
		sb.WriteString(entry.Platform.String())
		sb.WriteByte(':')
		sb.WriteString(entry.Password)
		sb.WriteByte(';')
	}
	return sb.String()
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingKey):
		return "missing_key"
	case errors.Is(err, frame.ErrInvalidHeaderShape):
		return "invalid_header_shape"
	case errors.Is(err, cipher.ErrMalformedToken):
		return "malformed_token"
	case errors.Is(err, ErrNotValidDecFile):
		return "not_valid"
	default:
		return "other"
	}
}
