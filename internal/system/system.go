package system

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

// GetMediaDuration asks ffprobe for the duration of a media file in
// seconds.
func GetMediaDuration(ctx context.Context, ffprobe, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, ffprobe, "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %v, output: %s", path, err, strings.TrimSpace(string(out)))
	}
	return parseDuration(string(out))
}

func parseDuration(out string) (float64, error) {
	d, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(out), err)
	}
	return d, nil
}

var (
	encoderOnce sync.Once
	encoderName string
)

// GetBestH264Encoder returns the first hardware H.264 encoder ffmpeg
// offers, falling back to libx264. ffmpeg is queried once per process.
func GetBestH264Encoder(ctx context.Context, ffmpeg string) string {
	encoderOnce.Do(func() {
		out, err := exec.CommandContext(ctx, ffmpeg, "-hide_banner", "-encoders").CombinedOutput()
		if err != nil {
			log.Printf("[!] Не удалось получить список энкодеров: %v", err)
			encoderName = "libx264"
			return
		}
		encoderName = pickEncoder(string(out))
	})
	return encoderName
}

// Priority: VideoToolbox (macOS), NVENC (NVIDIA), then software.
func pickEncoder(encoders string) string {
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(encoders, " "+name+" ") {
			return name
		}
	}
	return "libx264"
}

// RecommendedWorkers bounds requested render workers by logical CPUs and
// by the memory needed to hold frameBytes-sized buffers, keeping a
// quarter of the available memory free. It returns at least 1.
func RecommendedWorkers(requested int, frameBytes int64) int {
	n := requested
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if cpus, err := cpu.Counts(true); err == nil && cpus > 0 && n > cpus {
		n = cpus
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		n = boundByMemory(n, vm.Available, frameBytes)
	} else {
		log.Printf("[!] Не удалось получить объём памяти: %v", err)
	}
	return max(n, 1)
}

// Each worker holds a frame in flight plus one waiting to be encoded.
func boundByMemory(n int, available uint64, frameBytes int64) int {
	if frameBytes <= 0 {
		return n
	}
	budget := available / 4 * 3
	perWorker := uint64(frameBytes) * 2
	if limit := int(budget / perWorker); limit < n {
		return limit
	}
	return n
}
