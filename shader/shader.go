package shader

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

// Names of the inputs the renderer wires. User shaders must declare them with
// these names to be driven.
const (
	PositionAttribute = "a_position"
	TimeUniform       = "time"
	ResolutionUniform = "u_resolution"
)

//go:embed default.vert
var defaultVertexSource string

//go:embed default.frag
var defaultFragmentSource string

// DefaultVertexShader passes the quad through in clip space.
func DefaultVertexShader() string {
	return defaultVertexSource
}

// DefaultFragmentShader is the animated effect drawn when no fragment shader is supplied.
func DefaultFragmentShader() string {
	return defaultFragmentSource
}

// Load reads a shader source from path. An empty path returns fallback.
func Load(path, fallback string) (string, error) {
	if path == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read shader %s: %w", path, err)
	}
	source := string(data)
	if strings.TrimSpace(source) == "" {
		return "", fmt.Errorf("shader %s is empty", path)
	}
	return source, nil
}

// Sources loads the vertex and fragment sources, falling back to the embedded defaults.
func Sources(vertexPath, fragmentPath string) (vertex, fragment string, err error) {
	if vertex, err = Load(vertexPath, DefaultVertexShader()); err != nil {
		return "", "", err
	}
	if fragment, err = Load(fragmentPath, DefaultFragmentShader()); err != nil {
		return "", "", err
	}
	return vertex, fragment, nil
}
