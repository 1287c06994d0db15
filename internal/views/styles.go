package views

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

// ViewStyles are the lipgloss styles for the text around the waveform.
type ViewStyles struct {
	Title    lipgloss.Style
	Normal   lipgloss.Style
	Label    lipgloss.Style
	Selected lipgloss.Style
	Status   lipgloss.Style
}

func getCommonStyles() *ViewStyles {
	return &ViewStyles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		Normal:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Selected: lipgloss.NewStyle().Background(lipgloss.Color("7")).Foreground(lipgloss.Color("0")),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

// Palette colors the waveform cells. Colors are hex strings resolved against
// the terminal profile at render time.
type Palette struct {
	Wave         string
	Crop         string
	ContextNear  string // context window edge next to the crop
	ContextFar   string
	Beat         string
	Downbeat     string
	Handle       string
	ActiveHandle string
	Playhead     string
}

func DefaultPalette() Palette {
	return Palette{
		Wave:         "#6c6c6c",
		Crop:         "#5fd7ff",
		ContextNear:  "#d7875f",
		ContextFar:   "#3a3a3a",
		Beat:         "#8a7a30",
		Downbeat:     "#ffd75f",
		Handle:       "#ffffff",
		ActiveHandle: "#ff5fd7",
		Playhead:     "#ff5f5f",
	}
}

// contextShade blends from the far color to the near color; t is 0 at the
// far edge of the window and 1 next to the crop.
func (p Palette) contextShade(t float64) string {
	far, err := colorful.Hex(p.ContextFar)
	if err != nil {
		return p.ContextNear
	}
	near, err := colorful.Hex(p.ContextNear)
	if err != nil {
		return p.ContextNear
	}
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return far.BlendLab(near, t).Clamped().Hex()
}

func paint(profile termenv.Profile, s, fg, bg string) string {
	style := profile.String(s)
	if fg != "" {
		style = style.Foreground(profile.Color(fg))
	}
	if bg != "" {
		style = style.Background(profile.Color(bg))
	}
	return style.String()
}
