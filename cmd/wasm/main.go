//go:build js && wasm

package main

import (
	"context"

	"github.com/richinsley/glsketch/log"
	"github.com/richinsley/glsketch/options"
	"github.com/richinsley/glsketch/renderer"
	"github.com/richinsley/glsketch/shader"
	"github.com/richinsley/glsketch/webgl"
)

const (
	canvasID         = "canvas"
	vertexScriptID   = "vert-shader"
	fragmentScriptID = "frag-shader"
)

var logger = log.New("glsketch")

// scriptOrDefault reads a shader from the page, falling back to the embedded
// source when the page does not provide one.
func scriptOrDefault(id, fallback string) string {
	source, err := webgl.ScriptText(id)
	if err != nil || source == "" {
		logger.Infof("using built-in shader for %q", id)
		return fallback
	}
	return source
}

func main() {
	opts := options.New()
	opts.HiDPI = true

	canvas, err := webgl.NewCanvas(canvasID, opts.HiDPI)
	if err != nil {
		logger.Errorf("%v", err)
		return
	}
	gl, err := webgl.NewGL(canvas)
	if err != nil {
		logger.Error("Unable to initialize WebGL. Your browser or machine may not support it.")
		return
	}

	shaders := renderer.Shaders{
		Vertex:   scriptOrDefault(vertexScriptID, shader.DefaultVertexShader()),
		Fragment: scriptOrDefault(fragmentScriptID, shader.DefaultFragmentShader()),
	}
	r := renderer.New(canvas, gl, nil, shaders, opts)
	if err = r.Initialize(); err != nil {
		return
	}

	<-webgl.Animate(context.Background(), r)
	r.Shutdown()
	canvas.Shutdown()
}
