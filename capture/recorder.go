package capture

import (
	"errors"
	"fmt"
	"image"
	"io"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/image/draw"

	"github.com/richinsley/goshaderdemo/log"
)

var logger = log.New("capture")

const defaultCodec = "libx264"

// RecorderOptions configures a Recorder.
type RecorderOptions struct {
	OutputFile string
	Width      int
	Height     int
	FPS        int

	// Video codec passed to ffmpeg as c:v. Defaults to libx264.
	Codec string

	// Path of the ffmpeg binary. Empty uses the one on PATH.
	FFmpegPath string
}

// Recorder streams raw RGBA frames into an ffmpeg process.
type Recorder struct {
	opts   RecorderOptions
	bounds image.Rectangle
	frame  *image.RGBA

	mu     sync.Mutex
	pipe   *io.PipeWriter
	errc   chan error
	closed bool
	frames int64
}

// ffmpegArgs returns the input and output arguments of the ffmpeg command.
func ffmpegArgs(o RecorderOptions) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"format":    "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", o.Width, o.Height),
		"framerate": o.FPS,
	}

	codec := o.Codec
	if codec == "" {
		codec = defaultCodec
	}
	outputArgs = ffmpeg.KwArgs{
		"c:v":     codec,
		"pix_fmt": "yuv420p",
	}
	return inputArgs, outputArgs
}

// NewRecorder starts ffmpeg writing to o.OutputFile.
func NewRecorder(o RecorderOptions) (*Recorder, error) {
	if o.OutputFile == "" {
		return nil, errors.New("capture: no output file")
	}
	if o.Width <= 0 || o.Height <= 0 {
		return nil, fmt.Errorf("capture: invalid frame size %dx%d", o.Width, o.Height)
	}
	if o.FPS <= 0 {
		o.FPS = 60
	}

	inputArgs, outputArgs := ffmpegArgs(o)
	pr, pw := io.Pipe()

	cmd := ffmpeg.Input("pipe:", inputArgs).
		Output(o.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pr).ErrorToStdOut()
	if o.FFmpegPath != "" {
		cmd = cmd.SetFfmpegPath(o.FFmpegPath)
	}

	r := &Recorder{
		opts:   o,
		bounds: image.Rect(0, 0, o.Width, o.Height),
		frame:  image.NewRGBA(image.Rect(0, 0, o.Width, o.Height)),
		pipe:   pw,
		errc:   make(chan error, 1),
	}

	go func() {
		err := cmd.Run()
		// unblock writers if ffmpeg exits early
		pr.CloseWithError(io.ErrClosedPipe)
		r.errc <- err
	}()

	logger.Infof("recording %dx%d@%d to %s", o.Width, o.Height, o.FPS, o.OutputFile)
	return r, nil
}

// WriteFrame converts img to RGBA at the recorder's size and sends it to
// ffmpeg.
func (r *Recorder) WriteFrame(img image.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errors.New("capture: recorder closed")
	}

	src := img
	if rgba, ok := img.(*image.RGBA); !ok || rgba.Bounds() != r.bounds || rgba.Stride != 4*r.opts.Width {
		if img.Bounds().Size() == r.bounds.Size() {
			draw.Draw(r.frame, r.bounds, img, img.Bounds().Min, draw.Src)
		} else {
			draw.ApproxBiLinear.Scale(r.frame, r.bounds, img, img.Bounds(), draw.Src, nil)
		}
		src = r.frame
	}

	if _, err := r.pipe.Write(src.(*image.RGBA).Pix); err != nil {
		return fmt.Errorf("capture: write frame %d: %w", r.frames, err)
	}
	r.frames++
	return nil
}

// Frames returns the number of frames sent to ffmpeg.
func (r *Recorder) Frames() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Close finishes the stream and waits for ffmpeg to exit.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.pipe.Close()
	r.mu.Unlock()

	if err := <-r.errc; err != nil {
		return fmt.Errorf("capture: ffmpeg: %w", err)
	}
	logger.Infof("wrote %d frames to %s", r.frames, r.opts.OutputFile)
	return nil
}
