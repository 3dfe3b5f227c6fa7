package inspectsave_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergeii/decfix/internal/core/dictionary"
	"github.com/sergeii/decfix/internal/core/usecases/inspectsave"
	"github.com/sergeii/decfix/internal/core/usecases/recognizeblock"
	"github.com/sergeii/decfix/internal/metrics"
	"github.com/sergeii/decfix/internal/savefile"
	"github.com/sergeii/decfix/pkg/dec/frame"
	"github.com/sergeii/decfix/pkg/dec/platform"
)

func TestInspectSaveUseCase(t *testing.T) {
	header := frame.Header{Header: "H", Signature: "1.2.3.4"}
	win := frame.Encrypt("a", header, int32(platform.Windows.Hash("yuna")), int32(platform.Windows.EmptyHash()))
	unknown := frame.Encrypt("b", header, 12345, int32(platform.Mono.EmptyHash()))
	data := []byte(`<save>` +
		`<file name="plain.txt">hello</file>` +
		`<file name="win.dec">` + win + `</file>` +
		`<file name="bad.dec">#DEC_ENC::1::2` + "\n" + `3</file>` +
		`<file name="unknown.dec">` + unknown + `</file>` +
		`</save>`)
	doc, err := savefile.Parse(data)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	logger := zerolog.New(buf)
	recognizer := recognizeblock.New(dictionary.Build([]string{"", "yuna"}), metrics.New(), &logger)
	uc := inspectsave.New(recognizer, &logger)

	result, err := uc.Execute(context.TODO(), doc)
	require.NoError(t, err)

	require.Len(t, result.Reports, 3)
	assert.Equal(t, 1, result.Failed)

	assert.Equal(t, "win.dec", result.Reports[0].Name)
	assert.NoError(t, result.Reports[0].Err)
	assert.Equal(t, platform.Windows, result.Reports[0].Result.Platform)
	assert.Equal(t, "yuna", result.Reports[0].Result.Password)

	assert.Equal(t, "bad.dec", result.Reports[1].Name)
	assert.ErrorIs(t, result.Reports[1].Err, frame.ErrInvalidHeaderShape)

	assert.Equal(t, "unknown.dec", result.Reports[2].Name)
	assert.Equal(t, platform.Mono, result.Reports[2].Result.Platform)
	assert.False(t, result.Reports[2].Result.Resolved)

	assert.Contains(t, buf.String(), `"password":"yuna"`)
	assert.Contains(t, buf.String(), "Unable to recognize DEC file")
}
