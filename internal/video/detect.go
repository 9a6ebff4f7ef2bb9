package video

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsupportedInput is returned for local files whose extension is neither
// a still image nor a known video container.
var ErrUnsupportedInput = errors.New("unsupported input format")

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

var videoExts = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".webm": true,
	".mov":  true,
	".avi":  true,
	".m4v":  true,
	".mpg":  true,
	".mpeg": true,
	".ts":   true,
	".flv":  true,
	".wmv":  true,
	".ogv":  true,
	".3gp":  true,
	".y4m":  true,
}

// IsImageExt returns true if the extension is a still image format codecam decodes itself.
func IsImageExt(ext string) bool {
	return imageExts[strings.ToLower(ext)]
}

// IsVideoExt returns true if the extension is a video file handed to ffmpeg.
func IsVideoExt(ext string) bool {
	return videoExts[strings.ToLower(ext)]
}

// IsURL reports whether input is a network stream rather than a local path.
func IsURL(input string) bool {
	for _, p := range []string{"http://", "https://", "rtsp://", "rtmp://", "udp://"} {
		if strings.HasPrefix(input, p) {
			return true
		}
	}
	return false
}

func isDeviceFor(input, goos string) bool {
	if input == "" {
		return true
	}
	switch goos {
	case "linux":
		return strings.HasPrefix(input, "/dev/video")
	case "darwin":
		// avfoundation indices: "0", "1", ...
		return strings.Trim(input, "0123456789") == ""
	case "windows":
		return strings.HasPrefix(input, "video=")
	}
	return false
}

// kind classifies an input argument.
type kind uint8

const (
	kindCamera kind = iota
	kindVideo
	kindImage
	kindPattern
	kindUnsupported
)

func classify(input, goos string) kind {
	switch {
	case input == PatternInput:
		return kindPattern
	case IsURL(input):
		return kindVideo
	case isDeviceFor(input, goos):
		return kindCamera
	}

	// Local files go by extension. Without one (a FIFO, say) ffmpeg decides.
	switch ext := filepath.Ext(input); {
	case IsImageExt(ext):
		return kindImage
	case ext == "" || IsVideoExt(ext):
		return kindVideo
	default:
		return kindUnsupported
	}
}
