package converters

import (
	"context"

	"github.com/eskil/fileforge/internal/convert"
)

var (
	audioFormats = []convert.Format{"mp3", "wav", "ogg", "flac", "aac", "opus", "m4a"}
	videoFormats = []convert.Format{"mp4", "mov", "avi", "mkv", "webm"}
)

// FFmpeg transcodes audio and video through the ffmpeg command line tool.
// Audio converts to any other audio format; video converts to any other
// video format, to gif, or down to an audio track.
type FFmpeg struct {
	binary string
	caps   convert.Capabilities
}

// NewFFmpeg creates the ffmpeg converter. binary defaults to "ffmpeg" when
// empty.
func NewFFmpeg(binary string) *FFmpeg {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{binary: binary, caps: ffmpegCapabilities()}
}

func ffmpegCapabilities() convert.Capabilities {
	caps := convert.Capabilities{
		Outputs: make(map[convert.Format][]convert.Format),
	}
	for _, in := range audioFormats {
		caps.Inputs = append(caps.Inputs, in)
		caps.Outputs[in] = others(audioFormats, in)
	}
	for _, in := range videoFormats {
		caps.Inputs = append(caps.Inputs, in)
		outs := others(videoFormats, in)
		outs = append(outs, "gif")
		outs = append(outs, audioFormats...)
		caps.Outputs[in] = outs
	}
	return caps
}

// others returns formats minus the given one, preserving order.
func others(formats []convert.Format, skip convert.Format) []convert.Format {
	outs := make([]convert.Format, 0, len(formats)-1)
	for _, f := range formats {
		if f != skip {
			outs = append(outs, f)
		}
	}
	return outs
}

func (f *FFmpeg) Name() string {
	return "ffmpeg"
}

func (f *FFmpeg) Capabilities() convert.Capabilities {
	return f.caps
}

func (f *FFmpeg) Convert(ctx context.Context, req convert.Request) error {
	// -y: the target path is ours to overwrite. Output format is inferred
	// from the target extension.
	return runCommand(ctx, f.binary, "-y", "-i", req.SourcePath, req.TargetPath)
}
