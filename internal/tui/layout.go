// pattern: Functional Core

package tui

// Layout holds the heights of the stacked UI regions.
type Layout struct {
	Width     int
	Header    int // Title + subtitle
	Input     int // Query line
	Results   int // Result rows (dynamic)
	StatusBar int // Status + help
	LogLine   int // Latest log entry
}

const (
	headerHeight    = 2
	inputHeight     = 2 // Prompt + blank line
	statusBarHeight = 1
	logLineHeight   = 1
	resultHeight    = 2 // Name line + path line
	minResults      = 1
)

// ComputeLayout calculates regions based on terminal dimensions.
func ComputeLayout(width, height int) Layout {
	fixed := headerHeight + inputHeight + statusBarHeight + logLineHeight
	available := height - fixed
	if available < resultHeight*minResults {
		available = resultHeight * minResults
	}
	return Layout{
		Width:     width,
		Header:    headerHeight,
		Input:     inputHeight,
		Results:   available,
		StatusBar: statusBarHeight,
		LogLine:   logLineHeight,
	}
}

// VisibleResults is how many results fit in the results region.
func (l Layout) VisibleResults() int {
	n := l.Results / resultHeight
	if n < minResults {
		n = minResults
	}
	return n
}
