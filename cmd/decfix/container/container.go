package container

import (
	"go.uber.org/fx"

	"github.com/sergeii/decfix/internal/core/usecases/inspectsave"
	"github.com/sergeii/decfix/internal/core/usecases/patchsave"
	"github.com/sergeii/decfix/internal/core/usecases/recognizeblock"
	"github.com/sergeii/decfix/internal/core/usecases/transcodeblock"
)

type Container struct {
	RecognizeBlock recognizeblock.UseCase
	TranscodeBlock transcodeblock.UseCase
	PatchSave      patchsave.UseCase
	InspectSave    inspectsave.UseCase
}

func New(
	recognizeBlockUseCase recognizeblock.UseCase,
	transcodeBlockUseCase transcodeblock.UseCase,
	patchSaveUseCase patchsave.UseCase,
	inspectSaveUseCase inspectsave.UseCase,
) Container {
	return Container{
		RecognizeBlock: recognizeBlockUseCase,
		TranscodeBlock: transcodeBlockUseCase,
		PatchSave:      patchSaveUseCase,
		InspectSave:    inspectSaveUseCase,
	}
}

var Module = fx.Module("container",
	fx.Provide(recognizeblock.New),
	fx.Provide(transcodeblock.New),
	fx.Provide(patchsave.New),
	fx.Provide(inspectsave.New),
	fx.Provide(New),
)
