package system

import (
	"context"
	"fmt"
	"math/bits"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// FFmpegPath is the ffmpeg binary used for probing and encoding.
var FFmpegPath = "ffmpeg"

// ScriptExtensions are the file suffixes FindLatestScript looks for.
var ScriptExtensions = []string{".flip", ".txt"}

// HasFFmpeg reports whether the ffmpeg binary can be found.
func HasFFmpeg() bool {
	_, err := exec.LookPath(FFmpegPath)
	return err == nil
}

func GetBestH264Encoder(ctx context.Context) string {
	// Hardware encoders first, libx264 as the fallback.
	encoders := []string{"h264_videotoolbox", "h264_nvenc"}

	out, err := exec.CommandContext(ctx, FFmpegPath, "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, enc := range encoders {
		if strings.Contains(string(out), enc) {
			return enc
		}
	}
	return "libx264"
}

// availableMemory is swapped out in tests.
var availableMemory = func() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Available, nil
}

// CheckFrameBudget fails when growing a timeline from current to target
// frames of frameBytes each would not fit in the memory currently available.
// If available memory cannot be determined the check passes.
func CheckFrameBudget(frameBytes uint64, current, target int) error {
	if target <= current {
		return nil
	}
	avail, err := availableMemory()
	if err != nil || avail == 0 {
		return nil
	}
	hi, need := bits.Mul64(frameBytes, uint64(target-current))
	if hi != 0 {
		return fmt.Errorf("growing timeline to %d frames of %s each overflows memory accounting",
			target, FormatBytes(frameBytes))
	}
	if need > avail {
		return fmt.Errorf("growing timeline to %d frames needs %s, only %s available",
			target, FormatBytes(need), FormatBytes(avail))
	}
	return nil
}

// ProcessMemory returns the resident set size of the current process.
func ProcessMemory() (uint64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	info, err := p.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}

func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// FindLatestScript returns the most recently modified script file in dir.
func FindLatestScript(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExtension(f.Name(), ScriptExtensions) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no script files found in %s", dir)
	}

	return latestFile, nil
}

func hasExtension(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
