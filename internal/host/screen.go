// Package host is the reference presentation surface: a terminal stand-in
// for the fixed-tile image, six-line text panel, and beep-cued selection
// list described in §1. It is a Host implementation (twee.Host) and is
// entirely outside the language core — swapping it for a real windowing
// and audio backend should require no change to package twee.
package host

import (
	"log"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/twee-engine/twee"
	"github.com/twee-engine/twee/internal/host/hostconfig"
)

// TerminalScreen renders VM callbacks to a tcell terminal screen and turns
// terminal input events into VM.PlayerInput calls. Grounded on
// framegrace-texelation's direct apps/*/*.go use of tcell/v2 (style
// construction, SetContent, Show), simplified down from a tiled window
// manager to one fixed-layout panel.
type TerminalScreen struct {
	screen tcell.Screen
	cfg    *hostconfig.Config

	imageName  string
	textLines  []string
	selections []twee.Selection
	selected   int
	fatal      string
}

// NewTerminalScreen opens a tcell screen using the given settings. Callers
// must call Close when done.
func NewTerminalScreen(cfg *hostconfig.Config) (*TerminalScreen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()
	return &TerminalScreen{screen: screen, cfg: cfg}, nil
}

func (t *TerminalScreen) Close() {
	t.screen.Fini()
}

// SetText implements twee.Host: split the pre-wrapped page on its newline
// separators and redraw the text panel.
func (t *TerminalScreen) SetText(text string) {
	if text == "" {
		t.textLines = nil
	} else {
		t.textLines = strings.Split(text, "\n")
	}
	t.redraw()
}

func (t *TerminalScreen) SetImage(name string) {
	t.imageName = name
	t.redraw()
}

func (t *TerminalScreen) SetMusic(name string, track int) {
	// Out of scope per §1 ("Any specific binding to a multimedia or
	// game-music-emulation library"); the reference host only logs the
	// cue so a real backend's wiring point is visible.
	if name == "" {
		log.Printf("host: music stopped")
		return
	}
	log.Printf("host: music %q track %d", name, track)
}

func (t *TerminalScreen) SetSelections(selections []twee.Selection) {
	t.selections = selections
	t.selected = 0
	if len(selections) > 0 {
		t.beep()
	}
	t.redraw()
}

func (t *TerminalScreen) FatalError(message string) {
	t.fatal = message
	t.redraw()
}

func (t *TerminalScreen) beep() {
	if t.cfg != nil && !t.cfg.GetBool("audio.enabled") {
		return
	}
	if err := t.screen.Beep(); err != nil {
		log.Printf("host: beep failed: %v", err)
	}
}

// PollInput blocks for the next terminal event. Up/Down move the selection
// highlight; Enter or space calls VM.PlayerInput with the highlighted
// index; non-key events are ignored. It returns false when the host should
// exit (Ctrl-C or 'q').
func (t *TerminalScreen) PollInput(vm *twee.VM) bool {
	ev := t.screen.PollEvent()
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return true
	}
	switch {
	case key.Key() == tcell.KeyCtrlC:
		return false
	case key.Rune() == 'q':
		return false
	case len(t.selections) > 0 && key.Key() == tcell.KeyUp:
		t.selected = wrapIndex(t.selected-1, len(t.selections))
		t.redraw()
	case len(t.selections) > 0 && key.Key() == tcell.KeyDown:
		t.selected = wrapIndex(t.selected+1, len(t.selections))
		t.redraw()
	case key.Key() == tcell.KeyEnter || key.Rune() == ' ':
		vm.PlayerInput(t.selected)
	}
	return true
}

func wrapIndex(i, n int) int {
	if n == 0 {
		return 0
	}
	return ((i % n) + n) % n
}

// redraw repaints the fixed tile, text panel, and selection list. This is
// the host's own layout and carries no VM semantics.
func (t *TerminalScreen) redraw() {
	t.screen.Clear()
	width, height := t.screen.Size()

	tileStyle := tcell.StyleDefault.Background(colorForName(t.imageName))
	tileHeight := height / 2
	for y := 0; y < tileHeight; y++ {
		for x := 0; x < width; x++ {
			t.screen.SetContent(x, y, ' ', nil, tileStyle)
		}
	}

	textStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for i, line := range t.textLines {
		drawString(t.screen, 1, tileHeight+1+i, line, textStyle)
	}

	selStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	highlightStyle := selStyle.Reverse(true)
	base := tileHeight + 1 + len(t.textLines) + 1
	for i, sel := range t.selections {
		style := selStyle
		if i == t.selected {
			style = highlightStyle
		}
		drawString(t.screen, 1, base+i, sel.Text, style)
	}

	if t.fatal != "" {
		drawString(t.screen, 1, height-1, "error: "+t.fatal, tcell.StyleDefault.Foreground(tcell.ColorRed))
	}

	t.screen.Show()
}

func drawString(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
