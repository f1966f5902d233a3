package main

import (
	"os"
	"runtime"

	"github.com/richinsley/glsketch/options"
	"github.com/urfave/cli"
)

func init() {
	// GLFW and GL calls must stay on the main thread.
	runtime.LockOSThread()
}

func sketchFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: options.DefaultWidth,
			Usage: "window width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: options.DefaultHeight,
			Usage: "window height",
		},
		cli.StringFlag{
			Name:  "vert",
			Usage: "vertex shader file (defaults to the built-in pass-through)",
		},
		cli.StringFlag{
			Name:  "frag",
			Usage: "fragment shader file (defaults to the built-in effect)",
		},
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "glsketch"
	app.Usage = "render a full-screen animated fragment shader"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "open a window and animate the shader",
			Flags: append(sketchFlags(),
				cli.BoolFlag{
					Name:  "hidpi",
					Usage: "scale the viewport by the display pixel ratio",
				},
				cli.BoolTFlag{
					Name:  "vsync",
					Usage: "synchronize buffer swaps with the display refresh",
				},
				cli.BoolFlag{
					Name:  "stats",
					Usage: "show frame rate in the window title",
				},
			),
			Action: Run,
		},
		{
			Name:  "record",
			Usage: "render the shader offscreen into a video file",
			Description: `
Render a fixed number of frames into a hidden window, advancing the timer by
exactly 1/fps per frame, and pipe them through ffmpeg.`,
			Flags: append(sketchFlags(),
				cli.DurationFlag{
					Name:  "duration",
					Value: options.DefaultDuration,
					Usage: "length of the recording",
				},
				cli.IntFlag{
					Name:  "fps",
					Value: options.DefaultFPS,
					Usage: "frames per second",
				},
				cli.StringFlag{
					Name:  "output, o",
					Value: options.DefaultOutput,
					Usage: "output video file",
				},
				cli.StringFlag{
					Name:  "codec",
					Value: options.DefaultCodec,
					Usage: "video codec (h264 or hevc)",
				},
				cli.StringFlag{
					Name:  "ffmpeg",
					Usage: "path to the ffmpeg executable",
				},
				cli.BoolFlag{
					Name:  "headless",
					Usage: "render into an EGL pbuffer instead of a hidden window (linux only)",
				},
			),
			Action: Record,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}
