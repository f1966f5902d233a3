//go:build !linux

package headless

import (
	"fmt"

	"github.com/richinsley/glsketch/graphics"
)

// New is only implemented on Linux.
func New(width, height int) (graphics.Context, error) {
	return nil, fmt.Errorf("%w: EGL headless rendering is not supported on this platform", graphics.ErrNoContext)
}
