package encoder

import (
	"fmt"
	"io"
	"log"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/zohnannor/shadertoy/options"
)

// Frame represents a single rendered frame's data, ready for encoding.
type Frame struct {
	Pixels []byte
	PTS    int64
}

// Encoder pipes raw RGBA frames into an ffmpeg process and writes the
// encoded video to the configured output file.
type Encoder struct {
	opts *options.ShaderOptions
}

func New(opts *options.ShaderOptions) *Encoder {
	return &Encoder{opts: opts}
}

func (e *Encoder) args() (inputArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", *e.opts.Width, *e.opts.Height),
		"framerate": *e.opts.FPS,
	}
	outputArgs = ffmpeg.KwArgs{
		"c:v":     "libx264",
		"pix_fmt": "yuv420p",
		// OpenGL reads back the bottom row first.
		"vf": "vflip",
	}
	return
}

// Run is the Consumer. It starts ffmpeg and feeds it frames from frameChan
// until the channel closes, then waits for the encode to finish.
func (e *Encoder) Run(frameChan <-chan *Frame) error {
	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := e.args()

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(*e.opts.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()

	if *e.opts.FFMPEGPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(*e.opts.FFMPEGPath)
	}

	errc := make(chan error, 1)
	go func() {
		err := ffmpegCmd.Run()
		// If ffmpeg fails to start or dies mid-encode, nothing reads the
		// pipe again; close it so a blocked Write returns instead of
		// wedging the whole record loop.
		pipeReader.CloseWithError(err)
		errc <- err
	}()

	for frame := range frameChan {
		if _, err := pipeWriter.Write(frame.Pixels); err != nil {
			log.Printf("Error writing frame %d to FFmpeg: %v", frame.PTS, err)
			// Keep draining so the producer can finish and close the channel.
			for range frameChan {
			}
			break
		}
	}

	pipeWriter.Close()
	return <-errc
}
