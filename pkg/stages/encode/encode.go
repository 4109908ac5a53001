// Package encode implements the video encoding stage.
package encode

import (
	"context"
	"fmt"

	"github.com/user/sceneshow/pkg/pipeline"
	"github.com/user/sceneshow/pkg/ports"
	"github.com/user/sceneshow/pkg/rendererr"
)

const stageName = "encode"

// Stage encodes frames into a video.
type Stage struct {
	encoder ports.VideoEncoder
	logger  ports.Logger
}

// NewStage creates a new encode stage.
func NewStage(encoder ports.VideoEncoder, logger ports.Logger) *Stage {
	return &Stage{
		encoder: encoder,
		logger:  logger.WithComponent("encode"),
	}
}

// Session feeds frames to the encoder as they are produced. Every encoder
// failure is fatal and aborts the encoder, so no half-written output is kept.
type Session struct {
	encoder ports.VideoEncoder
	logger  ports.Logger

	started bool
	closed  bool
	count   int
	lastTs  int
	last    pipeline.Frame
	fps     float64
}

// NewSession starts a streamed encode.
func (s *Stage) NewSession() *Session {
	return &Session{encoder: s.encoder, logger: s.logger, lastTs: -1}
}

// Begin initializes the encoder.
func (ss *Session) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	if width <= 0 || height <= 0 || fps <= 0 {
		return ss.fail(fmt.Errorf("invalid output %dx%d at %gfps", width, height, fps))
	}
	if err := ss.encoder.Begin(width, height, fps, opts); err != nil {
		return ss.fail(fmt.Errorf("begin encoding: %w", err))
	}
	ss.started = true
	ss.fps = fps
	ss.logger.Debug("Encoding %dx%d at %.2f fps", width, height, fps)
	return nil
}

// Write encodes one frame. Frames must arrive with strictly increasing
// timestamps.
func (ss *Session) Write(frame pipeline.Frame) error {
	if !ss.started || ss.closed {
		return ss.fail(fmt.Errorf("write on an inactive session"))
	}
	if frame.TimestampMs <= ss.lastTs {
		return ss.fail(fmt.Errorf("frame %d timestamp %dms does not follow %dms", frame.Index, frame.TimestampMs, ss.lastTs))
	}
	if err := ss.encoder.EncodeFrame(frame.Image, frame.TimestampMs); err != nil {
		return ss.fail(fmt.Errorf("encode frame %d at %dms: %w", frame.Index, frame.TimestampMs, err))
	}
	ss.lastTs = frame.TimestampMs
	ss.last = frame
	ss.count++
	return nil
}

// Finish holds the last frame for outroMs and finalizes the video.
func (ss *Session) Finish(outroMs int) (pipeline.EncodeResult, error) {
	if !ss.started || ss.closed {
		return pipeline.EncodeResult{}, ss.fail(fmt.Errorf("finish on an inactive session"))
	}
	if ss.count == 0 {
		return pipeline.EncodeResult{}, ss.fail(fmt.Errorf("no frames to encode"))
	}

	duration := ss.lastTs + frameMs(ss.fps)
	if outroMs > 0 {
		outroTs := ss.lastTs + outroMs
		if err := ss.encoder.EncodeFrame(ss.last.Image, outroTs); err != nil {
			return pipeline.EncodeResult{}, ss.fail(fmt.Errorf("encode outro frame: %w", err))
		}
		duration = outroTs
	}

	data, err := ss.encoder.End()
	if err != nil {
		return pipeline.EncodeResult{}, ss.fail(fmt.Errorf("end encoding: %w", err))
	}
	ss.closed = true

	ss.logger.Debug("Encoded %d frames, %d bytes", ss.count, len(data))
	return pipeline.EncodeResult{
		VideoData:  data,
		FrameCount: ss.count,
		DurationMs: duration,
		FileSize:   int64(len(data)),
	}, nil
}

// Abort discards the encode. It is safe to call more than once and after
// Finish.
func (ss *Session) Abort() {
	if ss.closed {
		return
	}
	ss.closed = true
	ss.encoder.Abort()
}

func (ss *Session) fail(err error) error {
	ss.Abort()
	return rendererr.Wrap(stageName, -1, "", fmt.Errorf("%w: %w", rendererr.ErrEncodingFailure, err))
}

func frameMs(fps float64) int {
	if fps <= 0 {
		return 0
	}
	return int(1000/fps + 0.5)
}

// Execute encodes collected frames. Cancellation is checked per frame and
// aborts the encoder.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	if len(input.Frames) == 0 {
		return pipeline.EncodeResult{}, rendererr.Wrap(stageName, -1, "", fmt.Errorf("%w: no frames to encode", rendererr.ErrEncodingFailure))
	}

	width, height := input.Width, input.Height
	if width <= 0 || height <= 0 {
		b := input.Frames[0].Image.Bounds()
		width, height = b.Dx(), b.Dy()
	}

	ss := s.NewSession()
	if err := ss.Begin(width, height, input.FPS, input.Options); err != nil {
		return pipeline.EncodeResult{}, err
	}

	for _, frame := range input.Frames {
		if ctx.Err() != nil {
			ss.Abort()
			return pipeline.EncodeResult{}, rendererr.Cancelled(ctx)
		}
		if err := ss.Write(frame); err != nil {
			return pipeline.EncodeResult{}, err
		}
	}

	return ss.Finish(input.OutroMs)
}
