package stt

// Config captures runtime settings for whisper transcription.
type Config struct {
	// Model is the whisper model size (e.g. "base", "small", "large-v3").
	Model string
	// Device selects compute: DeviceAuto probes for CUDA at runtime,
	// DeviceCPU and DeviceCUDA force a choice.
	Device string
	// UvxBinary runs whisper from its Python distribution.
	UvxBinary string
}

// Whisper configuration constants.
const (
	DefaultModel = "base"

	DeviceAuto = "auto"
	DeviceCPU  = "cpu"
	DeviceCUDA = "cuda"

	UvxCommand     = "uvx"
	whisperPackage = "openai-whisper"

	// cudaProbeBinary signals accelerated compute when present on PATH.
	cudaProbeBinary = "nvidia-smi"
)
