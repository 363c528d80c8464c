package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// StreamParams describes a video stream of raw frames.
type StreamParams struct {
	Width, Height int
	FPS           int
	Output        string
	Encoder       string
	Quality       int
}

// MuxParams attaches an audio track to an encoded video. AudioFilter is
// an ffmpeg audio filter applied to the track after skipping AudioOffset
// seconds; Duration is the video length in seconds the audio is cut to.
type MuxParams struct {
	Video       string
	Audio       string
	AudioFilter string
	AudioOffset float64
	Duration    float64
	Output      string
}

// FrameWriter receives frames in presentation order.
type FrameWriter interface {
	WriteFrame(img *image.RGBA) error
	Close() error
}

type VideoEncoder interface {
	Start(ctx context.Context, params StreamParams) (FrameWriter, error)
	Mux(ctx context.Context, params MuxParams) error
	Concatenate(ctx context.Context, videoPaths []string, finalPath string, tmpDir string) error
}

// FFmpegEncoder drives an ffmpeg binary; an empty Binary means "ffmpeg"
// from PATH.
type FFmpegEncoder struct {
	Binary string
}

func (e *FFmpegEncoder) binary() string {
	if e.Binary == "" {
		return "ffmpeg"
	}
	return e.Binary
}

// Start launches ffmpeg reading rawvideo rgba frames on stdin. Cancelling
// ctx kills the process.
func (e *FFmpegEncoder) Start(ctx context.Context, params StreamParams) (FrameWriter, error) {
	if params.Width <= 0 || params.Height <= 0 || params.FPS <= 0 {
		return nil, fmt.Errorf("invalid stream %dx%d @ %d fps", params.Width, params.Height, params.FPS)
	}
	if err := os.MkdirAll(filepath.Dir(params.Output), 0755); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, e.binary(), streamArgs(params)...)
	s := &stream{cmd: cmd, width: params.Width, height: params.Height}
	cmd.Stdout = &s.log
	cmd.Stderr = &s.log

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	s.stdin = stdin
	return s, nil
}

func streamArgs(p StreamParams) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", strconv.Itoa(p.FPS),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", p.Encoder,
	}
	args = append(args, qualityArgs(p.Encoder, p.Quality)...)
	args = append(args, "-movflags", "+faststart", p.Output)
	return args
}

// Качество в зависимости от энкодера
func qualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox не везде поддерживает -q:v, используем битрейт: 75 -> 7.5 Мбит/с
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", strconv.Itoa(quality)}
	default: // libx264
		return []string{"-crf", strconv.Itoa(quality), "-preset", "medium"}
	}
}

type stream struct {
	cmd           *exec.Cmd
	stdin         io.WriteCloser
	log           bytes.Buffer // written by exec until Wait returns
	width, height int
	closed        bool
	err           error
}

func (s *stream) WriteFrame(img *image.RGBA) error {
	if s.closed {
		return fmt.Errorf("write to closed stream")
	}
	if b := img.Bounds(); b.Dx() != s.width || b.Dy() != s.height {
		return fmt.Errorf("frame %v does not match stream %dx%d", b, s.width, s.height)
	}
	if err := writeRawRGBA(s.stdin, img); err != nil {
		s.finish()
		return fmt.Errorf("write raw error: %w, output: %s", err, s.log.String())
	}
	return nil
}

// Close ends the input and waits for ffmpeg to finish the file.
func (s *stream) Close() error { return s.finish() }

func (s *stream) finish() error {
	if s.closed {
		return s.err
	}
	s.closed = true
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		s.err = fmt.Errorf("ffmpeg wait error: %w, output: %s", err, s.log.String())
	}
	return s.err
}

// writeRawRGBA writes tightly packed rows, copying when img is a
// sub-image or has padding.
func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	if img.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		packed := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(packed, packed.Bounds(), img, bounds.Min, draw.Src)
		img = packed
	}
	_, err := w.Write(img.Pix[:bounds.Dx()*bounds.Dy()*4])
	return err
}

// Mux copies the video stream and encodes the filtered audio track next
// to it.
func (e *FFmpegEncoder) Mux(ctx context.Context, params MuxParams) error {
	cmd := exec.CommandContext(ctx, e.binary(), muxArgs(params)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg mux error: %v, output: %s", err, string(out))
	}
	return nil
}

func muxArgs(p MuxParams) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", p.Video,
	}
	if p.AudioOffset > 0 {
		args = append(args, "-ss", strconv.FormatFloat(p.AudioOffset, 'f', 3, 64))
	}
	args = append(args,
		"-i", p.Audio,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
	)
	if p.AudioFilter != "" {
		args = append(args, "-af", p.AudioFilter)
	}
	args = append(args, "-c:a", "aac", "-b:a", "192k")
	if p.Duration > 0 {
		args = append(args, "-t", strconv.FormatFloat(p.Duration, 'f', 3, 64))
	}
	return append(args, "-movflags", "+faststart", p.Output)
}

// Concatenate joins videos with identical stream parameters using the
// concat demuxer, without re-encoding.
func (e *FFmpegEncoder) Concatenate(ctx context.Context, videoPaths []string, finalPath string, tmpDir string) error {
	if len(videoPaths) == 0 {
		return fmt.Errorf("nothing to concatenate")
	}
	concatFilePath := filepath.Join(tmpDir, "inputs.txt")
	if err := os.WriteFile(concatFilePath, []byte(concatList(videoPaths)), 0644); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, e.binary(), "-y",
		"-f", "concat", "-safe", "0", "-i", concatFilePath,
		"-c", "copy", finalPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg concat error: %v, output: %s", err, string(out))
	}
	return nil
}

func concatList(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		absPath, err := filepath.Abs(p)
		if err != nil {
			absPath = p
		}
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(absPath, "'", `'\''`))
	}
	return b.String()
}
