package views

import (
	"fmt"
	"strings"

	"github.com/schollz/gowaveform"
)

const segmentsPerChar = 8

// columnCache keeps the min/max pairs of the last rendered span so redraws
// that do not scroll or zoom skip decoding.
type columnCache struct {
	path       string
	start, end float64
	width      int
	data       []int16
}

func (c *columnCache) columns(path string, start, end float64, width int) ([]int16, error) {
	if c.data != nil && c.path == path && c.start == start && c.end == end && c.width == width {
		return c.data, nil
	}
	wf, err := gowaveform.LoadWaveform(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load waveform: %w", err)
	}
	view, err := wf.GenerateView(gowaveform.WaveformOptions{
		Start: start,
		End:   end,
		Width: width,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate view: %w", err)
	}
	if view == nil {
		return nil, fmt.Errorf("failed to generate view: no data")
	}
	c.path, c.start, c.end, c.width = path, start, end, width
	c.data = view.Data
	return c.data, nil
}

// rasterize plots min/max pairs into a grid eight segments tall per cell.
func rasterize(data []int16, width, height int) [][]bool {
	virtualHeight := height * segmentsPerChar
	grid := make([][]bool, virtualHeight)
	for i := range grid {
		grid[i] = make([]bool, width)
	}

	var maxAbs int16
	for _, val := range data {
		if val < 0 {
			if -val > maxAbs {
				maxAbs = -val
			}
		} else if val > maxAbs {
			maxAbs = val
		}
	}
	if maxAbs == 0 {
		maxAbs = 1
	}

	center := virtualHeight / 2
	for i := 0; i < len(data)/2 && i < width; i++ {
		minY := center - int(float64(data[i*2])/float64(maxAbs)*float64(center))
		maxY := center - int(float64(data[i*2+1])/float64(maxAbs)*float64(center))
		minY = clampInt(minY, 0, virtualHeight-1)
		maxY = clampInt(maxY, 0, virtualHeight-1)
		if minY > maxY {
			minY, maxY = maxY, minY
		}
		for y := minY; y <= maxY; y++ {
			grid[y][i] = true
		}
	}
	return grid
}

// upperHalfChar returns the glyph for a cell above the center line, where
// the waveform rises from the bottom of the cell.
func upperHalfChar(grid [][]bool, x, y int) string {
	baseY := y * segmentsPerChar
	for i := 0; i < segmentsPerChar; i++ {
		segY := baseY + i
		if segY < len(grid) && grid[segY][x] {
			return risingBlocks[segmentsPerChar-i-1]
		}
	}
	return " "
}

// lowerHalfChar returns the glyph for a cell below the center line, where
// the waveform hangs from the top of the cell.
func lowerHalfChar(grid [][]bool, x, y int) string {
	baseY := y * segmentsPerChar
	for i := segmentsPerChar - 1; i >= 0; i-- {
		segY := baseY + i
		if segY < len(grid) && grid[segY][x] {
			return hangingBlocks[i]
		}
	}
	return " "
}

// Indexed by filled eighths minus one.
var (
	risingBlocks  = [segmentsPerChar]string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}
	hangingBlocks = [segmentsPerChar]string{"▔", "\U0001FB02", "\U0001FB03", "▀", "\U0001FB04", "\U0001FB05", "\U0001FB06", "█"}
)

func glyphAt(grid [][]bool, x, y, height int) string {
	if y < height/2 {
		return upperHalfChar(grid, x, y)
	}
	return lowerHalfChar(grid, x, y)
}

// timestampRuler draws tick marks and labels for [start, end].
func timestampRuler(width int, start, end float64) string {
	duration := end - start
	if width <= 0 || !(duration > 0) {
		return "\n\n"
	}

	var precision int
	var interval float64
	switch {
	case duration < 0.1:
		precision, interval = 4, 0.01
	case duration < 1.0:
		precision, interval = 3, 0.05
	case duration < 10.0:
		precision, interval = 2, 0.5
	case duration < 60.0:
		precision, interval = 1, 2.0
	default:
		precision, interval = 0, 10.0
	}

	numTimestamps := int(duration / interval)
	if numTimestamps < 5 {
		numTimestamps = 5
		interval = duration / float64(numTimestamps)
	} else if numTimestamps > 15 {
		numTimestamps = 12
		interval = duration / float64(numTimestamps)
	}

	tickLine := []rune(strings.Repeat(" ", width))
	labelLine := []rune(strings.Repeat(" ", width))
	for i := 0; i <= numTimestamps; i++ {
		t := start + float64(i)*interval
		if t > end {
			t = end
		}
		pos := int(float64(width-1) * (t - start) / duration)
		if pos < 0 || pos >= width {
			continue
		}
		tickLine[pos] = '|'

		label := fmt.Sprintf("%.*f", precision, t)
		startPos := pos - len(label)/2
		if startPos+len(label) > width {
			startPos = width - len(label)
		}
		if startPos < 0 {
			startPos = 0
		}
		for j, ch := range label {
			if startPos+j < width {
				labelLine[startPos+j] = ch
			}
		}
	}
	return string(tickLine) + "\n" + string(labelLine) + "\n"
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
