package video

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"
)

// Probe holds video stream metadata from ffprobe.
type Probe struct {
	Width    int
	Height   int
	FPS      float64
	HasVideo bool
}

type ffprobeVideoResult struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"` // e.g. "30/1" or "24000/1001"
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
}

// ProbeMedia uses ffprobe to get video stream metadata.
// Returns HasVideo=false if no video stream exists.
func ProbeMedia(ctx context.Context, input string) (Probe, error) {
	ffprobe, err := exec.LookPath("ffprobe")
	if err != nil {
		return Probe{}, fmt.Errorf("ffprobe not found")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "v:0",
		input,
	)
	cmd.Stdin = nil

	output, err := cmd.Output()
	if err != nil {
		return Probe{}, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbe(output)
}

func parseProbe(output []byte) (Probe, error) {
	var result ffprobeVideoResult
	if err := json.Unmarshal(output, &result); err != nil {
		return Probe{}, fmt.Errorf("parsing ffprobe output: %w", err)
	}

	for _, s := range result.Streams {
		if s.CodecType != "video" {
			continue
		}
		fps := parseFraction(s.AvgFrameRate)
		if fps <= 0 {
			fps = parseFraction(s.RFrameRate)
		}
		if fps <= 0 {
			fps = 24 // sensible fallback
		}
		return Probe{
			Width:    s.Width,
			Height:   s.Height,
			FPS:      fps,
			HasVideo: true,
		}, nil
	}

	return Probe{HasVideo: false}, nil
}

// frameRate picks the decode rate for a file: its own rate rounded to whole
// frames, never above limit.
func frameRate(probed float64, limit int) int {
	fps := int(math.Round(probed))
	if fps < 1 {
		return limit
	}
	return min(fps, limit)
}

// parseFraction parses "num/den" into a float64.
func parseFraction(s string) float64 {
	num, den, ok := splitFraction(s)
	if !ok {
		f, _ := strconv.ParseFloat(s, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

func splitFraction(s string) (string, string, bool) {
	for i, c := range s {
		if c == '/' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

// fitWithin scales w×h down to fit maxW×maxH, keeping the aspect ratio and
// even dimensions as ffmpeg's scaler prefers.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	if w <= maxW && h <= maxH {
		return w &^ 1, h &^ 1
	}
	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	fw := int(math.Round(float64(w)*scale)) &^ 1
	fh := int(math.Round(float64(h)*scale)) &^ 1
	return max(fw, 2), max(fh, 2)
}
