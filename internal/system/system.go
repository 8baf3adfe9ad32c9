package system

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Frames kept in flight are capped between these bounds regardless of
// available memory.
const (
	minInFlight = 2
	maxInFlight = 256
)

// openFileTarget is the soft open file limit renders ask for.
const openFileTarget = 2048

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		slog.Warn("cannot read open file limit", "err", err)
		return
	}

	limit, ok := raisedLimit(rLimit.Cur, rLimit.Max)
	if !ok {
		return
	}
	rLimit.Cur = limit
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		slog.Warn("cannot raise open file limit", "err", err)
		return
	}
	slog.Debug("open file limit raised", "limit", rLimit.Cur)
}

// raisedLimit returns the new soft limit, capped by the hard one. It reports
// false when cur is already high enough and nothing should change.
func raisedLimit(cur, hard uint64) (uint64, bool) {
	target := uint64(openFileTarget)
	if target > hard {
		target = hard
	}
	if cur >= target {
		return cur, false
	}
	return target, true
}

// DefaultWorkers returns the number of physical cores, falling back to
// logical CPUs when the platform does not report them.
func DefaultWorkers() int {
	n, err := cpu.Counts(false)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// MaxInFlightFrames bounds how many RGBA frames of the given size may be held
// at once, using a quarter of the currently available memory.
func MaxInFlightFrames(width, height int) int {
	frame := uint64(width) * uint64(height) * 4
	if frame == 0 {
		return maxInFlight
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return minInFlight * 8
	}
	return clampInFlight(vm.Available / 4 / frame)
}

func clampInFlight(n uint64) int {
	if n < minInFlight {
		return minInFlight
	}
	if n > maxInFlight {
		return maxInFlight
	}
	return int(n)
}

// FindLatestComposition returns the most recently modified YAML file in dir.
func FindLatestComposition(dir string) (string, error) {
	return findLatest(dir, ".yaml", ".yml")
}

// FindLatestSource returns the most recently modified PDF or image in dir.
func FindLatestSource(dir string) (string, error) {
	return findLatest(dir, ".pdf", ".jpg", ".jpeg", ".png")
}

func findLatest(dir string, extensions ...string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExtension(f.Name(), extensions) {
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
		return "", fmt.Errorf("no %s files found in %s", strings.Join(extensions, "/"), dir)
	}
	return latestFile, nil
}

func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// GetBestH264Encoder picks a hardware encoder when ffmpeg offers one.
// Priority: VideoToolbox (macOS), NVENC (NVIDIA), libx264.
func GetBestH264Encoder() string {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	return pickEncoder(string(out))
}

func pickEncoder(encoders string) string {
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(encoders, name) {
			return name
		}
	}
	return "libx264"
}
