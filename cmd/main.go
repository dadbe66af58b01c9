package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/zohnannor/shadertoy/glfwcontext"
	"github.com/zohnannor/shadertoy/options"
	"github.com/zohnannor/shadertoy/renderer"
	"github.com/zohnannor/shadertoy/watcher"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	opts := &options.ShaderOptions{
		ShaderPath: flag.String("shader", "shader.glsl", "Fragment shader file to render and watch for changes"),
		Mode:       flag.String("mode", "view", "Mode: 'view' or 'record'"),
		Duration:   flag.Float64("duration", 10.0, "Duration to record in seconds"),
		FPS:        flag.Int("fps", 60, "Frames per second for recording"),
		Width:      flag.Int("width", 800, "Width of the window / recorded output"),
		Height:     flag.Int("height", 600, "Height of the window / recorded output"),
		OutputFile: flag.String("output", "output.mp4", "Output file name for recording"),
		FFMPEGPath: flag.String("ffmpeg", "", "Path to ffmpeg executable"),
		Help:       flag.Bool("help", false, "Show help message"),
	}
	flag.Parse()

	if *opts.Help {
		fmt.Println("Live-reloading fullscreen shader viewer")
		flag.PrintDefaults()
		return
	}

	if err := run(opts); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(opts *options.ShaderOptions) error {
	if err := glfwcontext.InitGraphics(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %w", err)
	}
	defer glfwcontext.TerminateGraphics()

	// In record mode the window is hidden and rendering goes to an FBO.
	recordMode := *opts.Mode == "record"
	ctx, err := glfwcontext.New(opts, !recordMode)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer ctx.Shutdown()

	r, err := renderer.NewRenderer(*opts.Width, *opts.Height, recordMode, ctx)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer r.Shutdown()

	initial := ""
	if src, err := os.ReadFile(*opts.ShaderPath); err != nil {
		log.Printf("Could not read %s: %v", *opts.ShaderPath, err)
	} else {
		initial = string(src)
	}
	if err := r.LoadInitial(initial); err != nil {
		return err
	}

	w, err := watcher.New(*opts.ShaderPath)
	if err != nil {
		return fmt.Errorf("failed to watch shader file: %w", err)
	}
	defer w.Close()
	log.Printf("Shader hot reload enabled, watching %s", *opts.ShaderPath)

	if recordMode {
		err = r.RunOffscreen(opts, w.Sources())
		if err != nil {
			return fmt.Errorf("offscreen rendering failed: %w", err)
		}
		log.Printf("Successfully rendered to %s", *opts.OutputFile)
		return nil
	}

	ctx.RegisterKeyCallback(glfw.KeySpace, r.TogglePause)
	ctx.RegisterKeyCallback(glfw.KeyR, r.RestartClock)
	ctx.RegisterKeyCallback(glfw.KeyF12, r.RequestScreenshot)

	log.Println("Starting interactive render loop...")
	r.Run(w.Sources())
	return nil
}
