package params

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// Default shading parameters.
const (
	DefaultAnimateSpeed  float32 = 1
	DefaultSpecularColor         = "#ffff00"
)

// Params are the run-time tunable shading parameters. They are read once per frame as a snapshot.
type Params struct {
	AnimateSpeed  float32 `yaml:"animateSpeed"`
	SpecularColor string  `yaml:"specularColor"`
	Ambient       float32 `yaml:"ambient"`
	Diffuse       float32 `yaml:"diffuse"`
	Specular      float32 `yaml:"specular"`
	Shininess     float32 `yaml:"shininess"`
}

// Default returns the default parameters.
func Default() Params {
	return Params{
		AnimateSpeed:  DefaultAnimateSpeed,
		SpecularColor: DefaultSpecularColor,
		Ambient:       material.DefaultAmbient,
		Diffuse:       material.DefaultDiffuse,
		Specular:      material.DefaultSpecular,
		Shininess:     material.DefaultShininess,
	}
}

// Validate rejects negative terms and malformed colors.
func (p Params) Validate() error {
	if _, err := common.HexToRGB(p.SpecularColor); err != nil {
		return fmt.Errorf("specularColor: %w", err)
	}
	for name, v := range map[string]float32{
		"ambient":   p.Ambient,
		"diffuse":   p.Diffuse,
		"specular":  p.Specular,
		"shininess": p.Shininess,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %v", name, v)
		}
	}
	return nil
}

// SpecularRGB returns the parsed specular color, or yellow if the color does not parse.
func (p Params) SpecularRGB() mgl32.Vec3 {
	rgb, err := common.HexToRGB(p.SpecularColor)
	if err != nil {
		return mgl32.Vec3{1, 1, 0}
	}
	return rgb
}

// Material returns the Blinn-Phong material the parameters describe.
func (p Params) Material() material.Material {
	return material.NewMaterial("scene",
		material.WithAmbient(p.Ambient),
		material.WithDiffuse(p.Diffuse),
		material.WithSpecular(p.Specular),
		material.WithShininess(p.Shininess),
	)
}
