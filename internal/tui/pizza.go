package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	pizzaSlices = 8
	pizzaRadius = 5
	// pizzaAspect widens columns so the pie looks round in a terminal cell grid.
	pizzaAspect = 2

	crustRune     = '#'
	cheeseRune    = ':'
	pepperoniRune = 'o'
	eatenRune     = ' '
)

//nolint:gochecknoglobals // Static palette.
var (
	crustStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("130"))
	cheeseStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	pepperoniStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)
	confettiStyles = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("51")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("201")),
	}
)

// slicesEaten maps interval progress to the number of slices gone.
func slicesEaten(progress float64) int {
	if progress <= 0 || math.IsNaN(progress) {
		return 0
	}
	if progress >= 1 {
		return pizzaSlices
	}
	return int(math.Floor(progress * pizzaSlices))
}

// pizzaArt draws the pie as plain text rows. Slices are numbered clockwise
// from twelve o'clock and the first eaten of them are left blank.
func pizzaArt(eaten int) []string {
	rows := make([]string, 0, 2*pizzaRadius+1)
	sliceAngle := 2 * math.Pi / pizzaSlices
	for y := -pizzaRadius; y <= pizzaRadius; y++ {
		var b strings.Builder
		for x := -pizzaRadius * pizzaAspect; x <= pizzaRadius*pizzaAspect; x++ {
			dx := float64(x) / pizzaAspect
			dy := float64(y)
			dist := math.Hypot(dx, dy)
			if dist > pizzaRadius+0.25 {
				b.WriteRune(' ')
				continue
			}
			angle := math.Atan2(dx, -dy)
			if angle < 0 {
				angle += 2 * math.Pi
			}
			slice := int(angle / sliceAngle)
			switch {
			case slice < eaten:
				b.WriteRune(eatenRune)
			case dist > pizzaRadius-0.75:
				b.WriteRune(crustRune)
			case (x*7+y*13)%9 == 0:
				b.WriteRune(pepperoniRune)
			default:
				b.WriteRune(cheeseRune)
			}
		}
		rows = append(rows, strings.TrimRight(b.String(), " "))
	}
	return rows
}

// renderPizza colors pizzaArt for display.
func renderPizza(progress float64) string {
	rows := pizzaArt(slicesEaten(progress))
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, r := range row {
			switch r {
			case crustRune:
				b.WriteString(crustStyle.Render(string(r)))
			case cheeseRune:
				b.WriteString(cheeseStyle.Render(string(r)))
			case pepperoniRune:
				b.WriteString(pepperoniStyle.Render(string(r)))
			default:
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// renderConfetti returns a celebratory strip; seed shifts the colors so
// successive frames differ.
func renderConfetti(width, seed int) string {
	pieces := []rune("*+.o~")
	var b strings.Builder
	for i := 0; i < width; i++ {
		if (i+seed)%3 == 2 {
			b.WriteRune(' ')
			continue
		}
		idx := (i + seed) % len(pieces)
		b.WriteString(confettiStyles[(i*3+seed)%len(confettiStyles)].Render(string(pieces[idx])))
	}
	return b.String()
}
