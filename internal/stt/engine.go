package stt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"ytscribe/internal/logging"
	"ytscribe/internal/services"
	"ytscribe/internal/textutil"
)

// CommandRunner executes an external command (for testing).
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Engine transcribes audio files with the openai-whisper CLI, run through uvx
// so no ambient Python environment is required.
type Engine struct {
	cfg      Config
	runner   CommandRunner
	lookPath func(string) (string, error)
	logger   *slog.Logger
}

// NewEngine creates a whisper transcription engine.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Device == "" {
		cfg.Device = DeviceAuto
	}
	if cfg.UvxBinary == "" {
		cfg.UvxBinary = UvxCommand
	}
	return &Engine{
		cfg:      cfg,
		lookPath: exec.LookPath,
		logger:   logging.NewComponentLogger(logger, "stt"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Engine) WithCommandRunner(runner CommandRunner) *Engine {
	e.runner = runner
	return e
}

// WithLookPath sets a custom binary prober (for testing).
func (e *Engine) WithLookPath(lookPath func(string) (string, error)) *Engine {
	e.lookPath = lookPath
	return e
}

// Model returns the configured model name for logging.
func (e *Engine) Model() string {
	return e.cfg.Model
}

// Available reports whether the transcription capability is installed. This
// is a configuration fact checked up front, not discovered mid-pipeline.
func (e *Engine) Available() bool {
	_, err := e.lookPath(e.cfg.UvxBinary)
	return err == nil
}

// ResolveDevice picks the compute device. Auto prefers CUDA when the probe
// binary is present, otherwise CPU.
func (e *Engine) ResolveDevice() string {
	switch e.cfg.Device {
	case DeviceCPU, DeviceCUDA:
		return e.cfg.Device
	default:
		if _, err := e.lookPath(cudaProbeBinary); err == nil {
			return DeviceCUDA
		}
		return DeviceCPU
	}
}

// Transcribe converts the audio file at source to plain text, writing
// whisper's artifacts into outputDir. It fails with a configuration error
// when the capability is missing and an external tool error when decoding
// fails.
func (e *Engine) Transcribe(ctx context.Context, source, outputDir string) (string, error) {
	if source == "" {
		return "", services.Wrap(services.ErrExternalTool, "stt", "transcribe", "source path required", nil)
	}
	if !e.Available() {
		return "", services.Wrap(services.ErrConfiguration, "stt", "transcribe",
			fmt.Sprintf("%s not installed; the speech-to-text fallback is unavailable", e.cfg.UvxBinary), nil)
	}
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "stt", "transcribe", "ensure output dir", err)
	}

	device := e.ResolveDevice()
	e.logger.Info("transcribing audio",
		logging.String("model", e.cfg.Model),
		logging.String("device", device),
	)

	if err := e.run(ctx, e.cfg.UvxBinary, e.buildArgs(source, outputDir, device)...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "stt", "transcribe", "whisper decode failed", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	textPath := filepath.Join(outputDir, baseName+".txt")
	raw, err := os.ReadFile(textPath)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "stt", "transcribe", "read whisper output", err)
	}

	text := textutil.CollapseWhitespace(string(raw))
	if text == "" {
		return "", services.Wrap(services.ErrExternalTool, "stt", "transcribe", "whisper produced empty output", nil)
	}
	return text, nil
}

// buildArgs constructs the uvx command arguments for whisper.
func (e *Engine) buildArgs(source, outputDir, device string) []string {
	args := []string{
		"--from", whisperPackage,
		"whisper",
		source,
		"--model", e.cfg.Model,
		"--output_dir", outputDir,
		"--output_format", "txt",
		"--device", device,
		"--verbose", "False",
	}
	// Half precision is only safe on CUDA; whisper warns and falls back
	// noisily on CPU.
	if device == DeviceCUDA {
		args = append(args, "--fp16", "True")
	} else {
		args = append(args, "--fp16", "False")
	}
	return args
}

func (e *Engine) run(ctx context.Context, name string, args ...string) error {
	if e.runner != nil {
		return e.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
