package translator

import (
	"context"
	"fmt"
	"sync"

	"github.com/richinsley/glsketch/graphics"
	gst "github.com/richinsley/goshadertranslator"
)

// Source is a shader ready to be handed to the GL driver.
type Source struct {
	Code string
	// names maps identifiers in the original source to the identifiers in Code.
	names map[string]string
}

// NewSource builds a Source with an explicit name mapping.
func NewSource(code string, names map[string]string) *Source {
	return &Source{Code: code, names: names}
}

// Name returns the identifier that orig was renamed to, or orig itself.
func (s *Source) Name(orig string) string {
	if mapped, ok := s.names[orig]; ok && mapped != "" {
		return mapped
	}
	return orig
}

// Translator turns WebGL-dialect shader sources into sources the current GL
// driver accepts.
type Translator interface {
	Translate(source string, stage graphics.ShaderStage) (*Source, error)
}

// Passthrough hands sources to the driver untouched. WebGL hosts use it.
type Passthrough struct{}

func (Passthrough) Translate(source string, stage graphics.ShaderStage) (*Source, error) {
	return NewSource(source, nil), nil
}

var (
	translatorOnce sync.Once
	translator     *gst.ShaderTranslator
	translatorErr  error
)

func getTranslator() (*gst.ShaderTranslator, error) {
	translatorOnce.Do(func() {
		translator, translatorErr = gst.NewShaderTranslator(context.Background())
	})
	return translator, translatorErr
}

// GLSL translates WebGL shaders to desktop GLSL 4.10 using the ANGLE based
// goshadertranslator. Identifiers may be renamed; Source.Name resolves them.
type GLSL struct {
	tr *gst.ShaderTranslator
}

// NewGLSL returns a translator backed by the process-wide goshadertranslator instance.
func NewGLSL() (*GLSL, error) {
	tr, err := getTranslator()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader translator: %w", err)
	}
	return &GLSL{tr: tr}, nil
}

func (t *GLSL) Translate(source string, stage graphics.ShaderStage) (*Source, error) {
	out, err := t.tr.TranslateShader(source, stage.String(), gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return nil, fmt.Errorf("%s shader translation failed: %w", stage, err)
	}

	names := make(map[string]string, len(out.Variables))
	for name, v := range out.Variables {
		names[name] = v.MappedName
	}
	return NewSource(out.Code, names), nil
}
