package transcoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/darwin242209/LuminaTiktok/internal/config"
	"github.com/darwin242209/LuminaTiktok/internal/domain"
)

// stderrTailBytes bounds the diagnostic output carried in transcode errors.
const stderrTailBytes = 2048

// Processor runs ffmpeg to re-encode downloaded media into H.264/AAC MP4.
type Processor struct {
	ffmpegPath  string
	ffprobePath string
	videoCodec  string
	audioCodec  string
	logger      *slog.Logger
}

// NewProcessor creates a new transcoder. ffmpeg must be present; ffprobe
// is optional and only used for informational probing.
func NewProcessor(cfg config.TranscodeConfig, logger *slog.Logger) (*Processor, error) {
	ffmpegPath := cfg.FFmpegPath
	if ffmpegPath == "" {
		path, err := exec.LookPath("ffmpeg")
		if err != nil {
			return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
		}
		ffmpegPath = path
	}

	ffprobePath := cfg.FFprobePath
	if ffprobePath == "" {
		if path, err := exec.LookPath("ffprobe"); err == nil {
			ffprobePath = path
		} else {
			logger.Warn("ffprobe not found in PATH, input probing disabled")
		}
	}

	return &Processor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		videoCodec:  cfg.VideoCodec,
		audioCodec:  cfg.AudioCodec,
		logger:      logger,
	}, nil
}

// Transcode re-encodes inputPath into a new container at outputPath.
// Process start is logged for diagnosis only; the outcome is decided by
// the process exit, exactly once per job. A failed transcode is terminal
// and never retried. Cancelling ctx kills the ffmpeg process.
func (p *Processor) Transcode(ctx context.Context, inputPath, outputPath string) error {
	if info, err := p.Probe(ctx, inputPath); err == nil && info != nil {
		p.logger.Info("input stream info",
			"duration_s", info.Duration,
			"width", info.Width,
			"height", info.Height,
			"video_codec", info.VideoCodec,
			"audio_codec", info.AudioCodec,
		)
	}

	args := []string{
		"-i", inputPath,
		"-c:v", p.videoCodec,
		"-c:a", p.audioCodec,
		"-y",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	p.logger.Info("ffmpeg started",
		"command", p.ffmpegPath+" "+strings.Join(args, " "),
	)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", domain.ErrTranscodeFailed, ctx.Err())
		}
		return fmt.Errorf("%w: %w: %s", domain.ErrTranscodeFailed, err, tail(stderr.Bytes()))
	}

	p.logger.Info("ffmpeg completed", "output", outputPath)
	return nil
}

// StreamInfo contains basic metadata about a media file.
type StreamInfo struct {
	Duration   float64
	Width      int
	Height     int
	VideoCodec string
	AudioCodec string
	HasAudio   bool
}

// Probe extracts stream metadata via ffprobe. Returns nil without error
// when ffprobe is unavailable; probing is informational only.
func (p *Processor) Probe(ctx context.Context, path string) (*StreamInfo, error) {
	if p.ffprobePath == "" {
		return nil, nil
	}

	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}

	type ffprobeFormat struct {
		Duration string `json:"duration"`
	}
	type ffprobeStream struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	}
	type ffprobeOutput struct {
		Format  ffprobeFormat   `json:"format"`
		Streams []ffprobeStream `json:"streams"`
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := &StreamInfo{}
	if parsed.Format.Duration != "" {
		if dur, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
			info.Duration = dur
		}
	}

	for _, s := range parsed.Streams {
		switch s.CodecType {
		case "video":
			if info.VideoCodec == "" {
				info.VideoCodec = s.CodecName
			}
			if info.Width == 0 && s.Width > 0 {
				info.Width = s.Width
			}
			if info.Height == 0 && s.Height > 0 {
				info.Height = s.Height
			}
		case "audio":
			info.HasAudio = true
			if info.AudioCodec == "" {
				info.AudioCodec = s.CodecName
			}
		}
	}

	return info, nil
}

// tail returns the last chunk of ffmpeg diagnostic output.
func tail(b []byte) string {
	if len(b) > stderrTailBytes {
		b = b[len(b)-stderrTailBytes:]
	}
	return strings.TrimSpace(string(b))
}
