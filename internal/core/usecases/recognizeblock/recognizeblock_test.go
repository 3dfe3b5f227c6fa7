package recognizeblock_test

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergeii/decfix/internal/core/dictionary"
	"github.com/sergeii/decfix/internal/core/usecases/recognizeblock"
	"github.com/sergeii/decfix/internal/metrics"
	"github.com/sergeii/decfix/pkg/dec/cipher"
	"github.com/sergeii/decfix/pkg/dec/frame"
	"github.com/sergeii/decfix/pkg/dec/platform"
)

const unknownHash = 12345

func encode(message string, header frame.Header, key int32, p platform.Platform) []string {
	return frame.SplitBlock(frame.Encrypt(message, header, key, int32(p.EmptyHash())))
}

func makeUseCase(passwords []string) (recognizeblock.UseCase, *metrics.Collector, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf)
	collector := metrics.New()
	uc := recognizeblock.New(dictionary.Build(passwords), collector, &logger)
	return uc, collector, buf
}

func TestRecognizeBlockUseCase_EmptyPasswordOnWindows(t *testing.T) {
	uc, collector, _ := makeUseCase([]string{"", "test"})
	lines := encode("secret", frame.Header{Header: "H", Signature: "1.2.3.4"}, 5886, platform.Windows)

	result, err := uc.Execute(recognizeblock.NewRequest("foo.dec", lines))
	require.NoError(t, err)

	assert.Equal(t, platform.Windows, result.Platform)
	assert.True(t, result.Resolved)
	assert.Equal(t, "", result.Password)
	assert.Equal(t, int32(5886), result.Hash)
	assert.Equal(t, recognizeblock.Matched, result.Resolution)
	assert.Equal(t, "H", result.File.Header.Header)
	assert.Equal(t, "1.2.3.4", result.File.Header.Signature)
	assert.Equal(t, "secret", result.File.Message)

	matched := collector.BlocksRecognized.WithLabelValues("windows", "matched")
	assert.Equal(t, 1.0, testutil.ToFloat64(matched))
}

func TestRecognizeBlockUseCase_PasswordOnMono(t *testing.T) {
	uc, _, _ := makeUseCase([]string{"", "test"})
	header := frame.Header{Header: "Note", Signature: "mono.host", Extension: "txt", HasExtension: true}
	lines := encode("hello\tworld", header, int32(platform.Mono.Hash("test")), platform.Mono)

	result, err := uc.Execute(recognizeblock.NewRequest("bar.dec", lines))
	require.NoError(t, err)

	assert.Equal(t, platform.Mono, result.Platform)
	assert.True(t, result.Resolved)
	assert.Equal(t, "test", result.Password)
	assert.Equal(t, "txt", result.File.Header.Extension)
	assert.True(t, result.File.Header.HasExtension)
	assert.Equal(t, "hello\tworld", result.File.Message)
}

func TestRecognizeBlockUseCase_Collision(t *testing.T) {
	// "a" and "ab" share a windows hash
	uc, collector, buf := makeUseCase([]string{"", "a", "ab"})
	lines := encode("secret", frame.Header{Header: "H", Signature: "sig"}, int32(platform.Windows.Hash("ab")), platform.Windows)

	result, err := uc.Execute(recognizeblock.NewRequest("collide.dec", lines))
	require.NoError(t, err)

	assert.Equal(t, platform.Windows, result.Platform)
	assert.True(t, result.Resolved)
	assert.Equal(t, "a", result.Password)
	assert.Equal(t, recognizeblock.Collision, result.Resolution)
	assert.Equal(t, "secret", result.File.Message)

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "windows:a;windows:ab;")
	assert.Contains(t, buf.String(), `"file":"collide.dec"`)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.BlocksCollided))
}

func TestRecognizeBlockUseCase_HeuristicPicksMono(t *testing.T) {
	uc, _, buf := makeUseCase([]string{"", "test"})
	// under the windows empty key the dots shift into '*', which is not plausible
	lines := encode("secret", frame.Header{Header: "H", Signature: "1.2.3.4"}, unknownHash, platform.Mono)

	result, err := uc.Execute(recognizeblock.NewRequest("heur.dec", lines))
	require.NoError(t, err)

	assert.Equal(t, platform.Mono, result.Platform)
	assert.False(t, result.Resolved)
	assert.Equal(t, "", result.Password)
	assert.Equal(t, int32(unknownHash), result.Hash)
	assert.Equal(t, recognizeblock.Heuristic, result.Resolution)
	assert.Equal(t, "1.2.3.4", result.File.Header.Signature)
	assert.Equal(t, "secret", result.File.Message)
	assert.Contains(t, buf.String(), "Unknown password detected")
}

func TestRecognizeBlockUseCase_HeuristicDoesNotFallThrough(t *testing.T) {
	uc, collector, _ := makeUseCase([]string{""})
	emptyKey := int32(platform.Windows.EmptyHash())
	// plausible under windows, but the marker is wrong for the derived hash
	lines := []string{
		frame.Prefix +
			cipher.EncryptString("H", emptyKey) + "::" +
			cipher.EncryptString("abc", emptyKey) + "::" +
			cipher.EncryptString("EXXXXXX", unknownHash),
		cipher.EncryptString("body", unknownHash),
	}

	_, err := uc.Execute(recognizeblock.NewRequest("bad.dec", lines))
	assert.ErrorIs(t, err, recognizeblock.ErrNotValidDecFile)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.BlocksFailed.WithLabelValues("not_valid")))
}

func TestRecognizeBlockUseCase_DefaultsToWindows(t *testing.T) {
	uc, _, buf := makeUseCase([]string{""})
	// the space is never plausible
	lines := encode("secret", frame.Header{Header: "H", Signature: "a b"}, unknownHash, platform.Windows)

	result, err := uc.Execute(recognizeblock.NewRequest("default.dec", lines))
	require.NoError(t, err)

	assert.Equal(t, platform.Windows, result.Platform)
	assert.False(t, result.Resolved)
	assert.Equal(t, recognizeblock.Default, result.Resolution)
	assert.Equal(t, "a b", result.File.Header.Signature)
	assert.Equal(t, "secret", result.File.Message)
	assert.Contains(t, buf.String(), "Heuristic header check failed")
}

func TestRecognizeBlockUseCase_MatchedButMarkerWrong(t *testing.T) {
	uc, _, _ := makeUseCase([]string{""})
	emptyKey := int32(platform.Windows.EmptyHash())
	lines := []string{
		frame.Prefix +
			cipher.EncryptString("H", emptyKey) + "::" +
			cipher.EncryptString("sig", emptyKey) + "::" +
			cipher.EncryptString("EXXXXXX", emptyKey),
		cipher.EncryptString("body", emptyKey),
	}

	_, err := uc.Execute(recognizeblock.NewRequest("bad.dec", lines))
	assert.ErrorIs(t, err, recognizeblock.ErrNotValidDecFile)
}

func TestRecognizeBlockUseCase_Errors(t *testing.T) {
	emptyKey := int32(platform.Windows.EmptyHash())
	head := frame.Prefix + cipher.EncryptString("H", emptyKey) + "::" + cipher.EncryptString("sig", emptyKey) + "::"
	tests := []struct {
		name       string
		lines      []string
		wantErr    error
		wantReason string
	}{
		{
			"empty key",
			[]string{head, "1"},
			recognizeblock.ErrMissingKey,
			"missing_key",
		},
		{
			"blank key",
			[]string{head + "   ", "1"},
			recognizeblock.ErrMissingKey,
			"missing_key",
		},
		{
			"non numeric key",
			[]string{head + "abc 123", "1"},
			cipher.ErrMalformedToken,
			"malformed_token",
		},
		{
			"three segments",
			[]string{"#DEC_ENC::1::2", "1"},
			frame.ErrInvalidHeaderShape,
			"invalid_header_shape",
		},
		{
			"single line",
			[]string{head + "158485"},
			frame.ErrInvalidHeaderShape,
			"invalid_header_shape",
		},
		{
			"malformed signature",
			[]string{head[:len(head)-2] + " x::158485", "1"},
			cipher.ErrMalformedToken,
			"malformed_token",
		},
		{
			"malformed body",
			[]string{head + cipher.EncryptString("ENCODED", emptyKey), "1 2 x"},
			cipher.ErrMalformedToken,
			"malformed_token",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, collector, _ := makeUseCase([]string{""})
			_, err := uc.Execute(recognizeblock.NewRequest("err.dec", tt.lines))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1.0, testutil.ToFloat64(collector.BlocksFailed.WithLabelValues(tt.wantReason)))
		})
	}
}
