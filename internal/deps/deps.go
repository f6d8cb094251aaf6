package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"ytscribe/internal/config"
)

// Requirement defines an external binary the pipeline relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the external binaries for the configured toolchain.
// Captions need no binaries at all; yt-dlp and uvx only matter once the
// speech-to-text fallback runs, and nvidia-smi merely unlocks CUDA decode.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Audio.YtDlpBinary,
			Description: "Downloads the audio stream when no captions exist",
		},
		{
			Name:        "uvx",
			Command:     cfg.STT.UvxBinary,
			Description: "Runs openai-whisper for the speech-to-text fallback",
			Optional:    true,
		},
		{
			Name:        "nvidia-smi",
			Command:     "nvidia-smi",
			Description: "Enables CUDA decode for whisper when present",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
