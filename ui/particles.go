package ui

import (
	"math/rand/v2"
	"strings"

	runewidth "github.com/mattn/go-runewidth"

	"github.com/leolalee/library/reader"
)

const (
	maxParticles  = 25
	particleRows  = 3
	particleSpeed = 0.8

	// Positions are percentages of the band.
	particleMin       = 2.0
	particleMax       = 98.0
	particleBounce    = 0.8
	particleJitter    = 0.03
	particleTopSpeed  = 0.25
	particleInitSpeed = 0.15
)

var craftEmojis = []string{"🧶", "🪡", "🧵", "💕", "💖", "💝", "💞"}

// particleCount is the number of particles drawn for a density setting.
func particleCount(density int) int {
	return reader.ClampParticleDensity(density) * maxParticles / reader.MaxParticleDensity
}

func particleBandHeight(density int) int {
	if particleCount(density) == 0 {
		return 0
	}
	return particleRows
}

type particle struct {
	emoji  string
	x, y   float64
	vx, vy float64
}

// particleField drifts craft emoji around a band at the top of the screen.
type particleField struct {
	rng       *rand.Rand
	particles []particle
}

func newParticleField(n int, rng *rand.Rand) *particleField {
	f := &particleField{rng: rng}
	f.resize(n)
	return f
}

// resize keeps existing particles where they are and adds or drops the rest.
func (f *particleField) resize(n int) {
	n = max(0, n)
	if n <= len(f.particles) {
		f.particles = f.particles[:n]
		return
	}
	for i := len(f.particles); i < n; i++ {
		f.particles = append(f.particles, particle{
			emoji: craftEmojis[i%len(craftEmojis)],
			x:     f.rng.Float64()*90 + 5,
			y:     f.rng.Float64()*90 + 5,
			vx:    (f.rng.Float64()*2 - 1) * particleInitSpeed,
			vy:    (f.rng.Float64()*2 - 1) * particleInitSpeed,
		})
	}
}

func (f *particleField) step(mult float64) {
	limit := particleTopSpeed * mult
	for i := range f.particles {
		p := &f.particles[i]
		p.x, p.vx = bounce(p.x+p.vx*mult, p.vx)
		p.y, p.vy = bounce(p.y+p.vy*mult, p.vy)
		p.vx = clampSpeed(p.vx+f.jitter(mult), limit)
		p.vy = clampSpeed(p.vy+f.jitter(mult), limit)
	}
}

func (f *particleField) jitter(mult float64) float64 {
	return (f.rng.Float64()*particleJitter - particleJitter/2) * mult
}

func bounce(pos, speed float64) (float64, float64) {
	switch {
	case pos < particleMin:
		return particleMin + 0.1, -speed * particleBounce
	case pos > particleMax:
		return particleMax - 0.1, -speed * particleBounce
	}
	return pos, speed
}

func clampSpeed(v, limit float64) float64 {
	return max(-limit, min(limit, v))
}

func (f *particleField) view(t theme, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	// Cells holding the right half of a wide emoji are empty strings.
	grid := make([][]string, height)
	for r := range grid {
		grid[r] = make([]string, width)
		for c := range grid[r] {
			grid[r][c] = " "
		}
	}

	for _, p := range f.particles {
		w := max(1, runewidth.StringWidth(p.emoji))
		if w > width {
			continue
		}
		col := int(p.x / 100 * float64(width-w))
		row := min(height-1, int(p.y/100*float64(height)))
		if !free(grid[row][col : col+w]) {
			continue
		}
		grid[row][col] = p.emoji
		for k := 1; k < w; k++ {
			grid[row][col+k] = ""
		}
	}

	lines := make([]string, height)
	for r, cells := range grid {
		lines[r] = t.subtle.Render(strings.Join(cells, ""))
	}
	return strings.Join(lines, "\n")
}

func free(cells []string) bool {
	for _, c := range cells {
		if c != " " {
			return false
		}
	}
	return true
}
