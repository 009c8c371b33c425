package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/leonardotrapani/scribebot/internal/provider"
)

// Status represents the installation status of a dependency
type Status struct {
	Name      string
	Installed bool
	Path      string
	Version   string
}

// Check looks binary up on PATH (or uses it as a path) and reads the first
// line printed by versionFlag.
func Check(binary, versionFlag string) Status {
	status := Status{Name: binary}
	path, err := exec.LookPath(binary)
	if err != nil {
		return status
	}
	status.Installed = true
	status.Path = path

	output, err := exec.Command(path, versionFlag).Output()
	if err == nil {
		lines := strings.Split(string(output), "\n")
		if len(lines) > 0 {
			status.Version = strings.TrimSpace(lines[0])
		}
	}
	return status
}

// CheckWhisperCli checks if whisper-cli is installed and returns its status
func CheckWhisperCli() Status {
	return Check("whisper-cli", "--version")
}

// CheckFFmpeg checks the configured ffmpeg binary; empty means "ffmpeg".
func CheckFFmpeg(path string) Status {
	if path == "" {
		path = "ffmpeg"
	}
	return Check(path, "-version")
}

// Required lists the external binaries needed for a transcription provider.
func Required(providerName, ffmpegPath string) []Status {
	out := []Status{CheckFFmpeg(ffmpegPath)}
	if provider.BaseProviderName(providerName) == provider.ProviderWhisperCpp {
		out = append(out, CheckWhisperCli())
	}
	return out
}

// Verify returns an error naming every missing binary.
func Verify(statuses []Status) error {
	var missing []string
	for _, s := range statuses {
		if !s.Installed {
			missing = append(missing, s.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required programs: %s", strings.Join(missing, ", "))
}
