package colors

import (
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

const (
	// MinLuma — минимальная яркость (Y в YIQ) ника на тёмном фоне.
	MinLuma = 0.5

	maxCorrectionSteps = 50
)

// ErrInvalidColor возвращается для строк, которые не являются hex-цветом.
var ErrInvalidColor = errors.New("invalid hex color")

type rgb struct {
	r, g, b float64 // 0..255
}

type yiq struct {
	y, i, q float64
}

// Correct поднимает светлоту цвета в HSL, пока яркость в YIQ ниже MinLuma.
// Результат всегда в форме #rrggbb в нижнем регистре.
func Correct(hex string) (string, error) {
	c, err := parseHex(hex)
	if err != nil {
		return "", err
	}

	color := c.yiq()
	for step := 0; color.y < MinLuma && step < maxCorrectionSteps; step++ {
		h, s, l := color.rgb().colorful().Hsl()
		l = clamp(0.1+0.9*l, 0, 1)
		color = fromColorful(colorful.Hsl(h, s, l)).yiq()
	}

	return color.rgb().colorful().Clamped().Hex(), nil
}

// Correct позволяет передавать Manager в парсер как ColorTable.
func (m *Manager) Correct(hex string) (string, error) {
	return Correct(hex)
}

// Luma возвращает яркость Y цвета в YIQ.
func Luma(hex string) (float64, error) {
	c, err := parseHex(hex)
	if err != nil {
		return 0, err
	}
	return c.yiq().y, nil
}

func parseHex(hex string) (rgb, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return rgb{}, errors.Wrapf(ErrInvalidColor, "%q", hex)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rgb{}, errors.Wrapf(ErrInvalidColor, "%q", hex)
	}

	return rgb{
		r: float64(v >> 16 & 0xff),
		g: float64(v >> 8 & 0xff),
		b: float64(v & 0xff),
	}, nil
}

func (c rgb) yiq() yiq {
	return yiq{
		y: (0.299*c.r + 0.587*c.g + 0.114*c.b) / 255,
		i: (0.596*c.r - 0.275*c.g - 0.321*c.b) / 255,
		q: (0.212*c.r - 0.523*c.g + 0.311*c.b) / 255,
	}
}

func (c yiq) rgb() rgb {
	return rgb{
		r: clamp((c.y+0.956*c.i+0.621*c.q)*255, 0, 255),
		g: clamp((c.y-0.272*c.i-0.647*c.q)*255, 0, 255),
		b: clamp((c.y-1.105*c.i+1.702*c.q)*255, 0, 255),
	}
}

func (c rgb) colorful() colorful.Color {
	return colorful.Color{R: c.r / 255, G: c.g / 255, B: c.b / 255}
}

func fromColorful(c colorful.Color) rgb {
	return rgb{r: c.R * 255, g: c.G * 255, b: c.B * 255}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
