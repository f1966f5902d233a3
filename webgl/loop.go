//go:build js && wasm

package webgl

import (
	"context"
	"syscall/js"

	"github.com/richinsley/glsketch/renderer"
)

// Animate schedules r.Step on every animation frame until ctx is done or the
// renderer stops running. The returned channel closes when the loop ends.
func Animate(ctx context.Context, r *renderer.Renderer) <-chan struct{} {
	done := make(chan struct{})

	var frame js.Func
	frame = js.FuncOf(func(js.Value, []js.Value) interface{} {
		if ctx.Err() != nil || r.State() != renderer.Running {
			frame.Release()
			close(done)
			return nil
		}
		r.Step()
		js.Global().Call("requestAnimationFrame", frame)
		return nil
	})
	js.Global().Call("requestAnimationFrame", frame)
	return done
}
