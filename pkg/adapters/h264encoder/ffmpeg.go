package h264encoder

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// FindFFmpeg locates the ffmpeg binary. Priority: custom path, FFMPEG_PATH,
// PATH, then common install locations. A custom or FFMPEG_PATH value that
// does not exist is an error rather than a fallthrough.
func FindFFmpeg(custom string) (string, error) {
	if custom != "" {
		if _, err := os.Stat(custom); err != nil {
			return "", fmt.Errorf("%w: custom path %s", ErrFFmpegNotFound, custom)
		}
		return custom, nil
	}

	if env := os.Getenv("FFMPEG_PATH"); env != "" {
		if _, err := os.Stat(env); err != nil {
			return "", fmt.Errorf("%w: FFMPEG_PATH %s", ErrFFmpegNotFound, env)
		}
		return env, nil
	}

	name := "ffmpeg"
	if runtime.GOOS == "windows" {
		name = "ffmpeg.exe"
	}
	if p, err := exec.LookPath(name); err == nil {
		return p, nil
	}

	for _, p := range commonLocations(runtime.GOOS) {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrFFmpegNotFound
}

// IsAvailable reports whether ffmpeg can be found.
func IsAvailable(custom string) bool {
	_, err := FindFFmpeg(custom)
	return err == nil
}

func commonLocations(goos string) []string {
	switch goos {
	case "windows":
		return []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
		}
	case "darwin":
		return []string{"/opt/homebrew/bin/ffmpeg", "/usr/local/bin/ffmpeg"}
	default:
		return []string{"/usr/bin/ffmpeg", "/usr/local/bin/ffmpeg", "/snap/bin/ffmpeg"}
	}
}

// buildArgs returns the ffmpeg command line for rawvideo RGBA on stdin to an
// H.264 MP4 at out.
func buildArgs(width, height int, fps float64, crf, bitrate int, out string) []string {
	args := []string{
		"-y",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprintf("%g", fps),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "fast",
		"-pix_fmt", "yuv420p",
		"-crf", fmt.Sprintf("%d", crf),
	}
	if bitrate > 0 {
		args = append(args, "-maxrate", fmt.Sprintf("%dk", bitrate), "-bufsize", fmt.Sprintf("%dk", 2*bitrate))
	}
	// yuv420p needs even dimensions.
	if width%2 != 0 || height%2 != 0 {
		args = append(args, "-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2")
	}
	return append(args, "-movflags", "+faststart", out)
}

// crfOf clamps a quality value to the x264 CRF range. Zero means 23.
func crfOf(quality int) int {
	switch {
	case quality <= 0:
		return 23
	case quality > 51:
		return 51
	}
	return quality
}
