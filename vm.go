package twee

import (
	"fmt"
	"math/rand"
	"strings"
)

// VMState enumerates the four states a VM can be in (§3, §4.5). The VM
// never executes a command while in any state but Running.
type VMState int

const (
	Running VMState = iota
	ScreenPause
	WaitingForSelection
	Stopped
)

func (s VMState) String() string {
	switch s {
	case Running:
		return "Running"
	case ScreenPause:
		return "ScreenPause"
	case WaitingForSelection:
		return "WaitingForSelection"
	case Stopped:
		return "Stopped"
	}
	return "Unknown"
}

// Selection is one pending hyperlink choice (§3).
type Selection struct {
	Text   string
	Target string
}

// Host is the callback surface the VM drives (§6). A host implementation
// owns rendering, audio and input dispatch; the VM only ever calls out
// through this interface and never blocks waiting for a response.
type Host interface {
	SetText(text string)
	SetImage(name string)
	SetMusic(name string, track int)
	SetSelections(selections []Selection)
	FatalError(message string)
}

// NopHost is a Host that discards every callback, useful for parser/VM
// tests that only care about final state, not side effects.
type NopHost struct{}

func (NopHost) SetText(string)             {}
func (NopHost) SetImage(string)            {}
func (NopHost) SetMusic(string, int)       {}
func (NopHost) SetSelections([]Selection)  {}
func (NopHost) FatalError(string)          {}

// DefaultLineMaxLen is the word-wrap width used when the VM is not given a
// narrower one (§9 "line_max_len ... conventionally window_width - 2"; a
// 30-character SMS-style tile panel yields 28).
const DefaultLineMaxLen = 28

// pageSize is the number of wrapped lines flushed to the host per page.
const pageSize = 6

// pageSlide is how far the paging window advances per player_input; the
// overlap (pageSize - pageSlide == 1 line) is load-bearing retro behaviour
// (§4.5 paging rule, §9 "Text paging overlap").
const pageSlide = 5

// VM is the tree-walking interpreter for a parsed Program (§4.5). Its
// struct shape is grounded on the VM/StackFrame split in
// _examples/other_examples/6af83eae_MongooseMoo-barn__vm-vm.go.go (Stack,
// Frames, FP, tick-limited Run/Resume), reduced from a register-machine
// activation record down to the passage+IP pair a command-list interpreter
// needs, with the teacher's own vm.go deliberately not used as a model
// (it is a bytecode PEG matcher, a different shape of problem entirely).
type VM struct {
	program *Program
	host    Host

	passage string
	ip      int

	vars  map[string]Value
	calls callStack

	state VMState

	textBuf      strings.Builder
	pendingLines []string

	selections []Selection

	lineMaxLen int
	randSrc    *rand.Rand
}

// NewVM constructs a VM positioned at the Start passage (§3: its absence is
// a fatal load-time error, reported here via a plain error since the
// program hasn't started running yet).
func NewVM(program *Program, host Host) (*VM, error) {
	if _, ok := program.Passages[startPassageName]; !ok {
		return nil, fmt.Errorf("missing required passage %q", startPassageName)
	}
	return &VM{
		program:    program,
		host:       host,
		passage:    startPassageName,
		ip:         0,
		vars:       make(map[string]Value),
		state:      Running,
		lineMaxLen: DefaultLineMaxLen,
		randSrc:    newDefaultRand(),
	}, nil
}

// SetRand overrides the source random() draws from, letting tests pin the
// sequence (SPEC_FULL §4).
func (vm *VM) SetRand(r *rand.Rand) { vm.randSrc = r }

func (vm *VM) rand() *rand.Rand { return vm.randSrc }

// SetLineWidth overrides the word-wrap width Pause uses (§9 line_max_len).
func (vm *VM) SetLineWidth(n int) { vm.lineMaxLen = n }

// State reports the VM's current state.
func (vm *VM) State() VMState { return vm.state }

// CurrentPassage reports the name of the passage presently executing.
func (vm *VM) CurrentPassage() string { return vm.passage }

// Var reads a variable for inspection (tests, debugging); production code
// should go through expression evaluation instead.
func (vm *VM) Var(name string) (Value, bool) {
	v, ok := vm.vars[name]
	return v, ok
}

// fatal raises a VM runtime error: it invokes the host's FatalError
// callback and transitions to Stopped (§4.5, §7 taxon 2). It is always the
// last thing a run() call does.
func (vm *VM) fatal(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	vm.state = Stopped
	vm.host.FatalError(msg)
}

func (vm *VM) currentPassage() *Passage {
	return vm.program.Passages[vm.passage]
}

// Run executes instructions until the next suspension point: Pause,
// end-of-passage with pending text or selections, Stopped, or a fatal
// error (§4.5, §5). It is a no-op when the VM is not Running.
func (vm *VM) Run() {
	for vm.state == Running {
		p := vm.currentPassage()
		if p == nil {
			// Can only happen if a Jump/Call target was validated at
			// dispatch time and the program mutated underneath us, which
			// the immutable-after-parse invariant rules out; guarded here
			// defensively rather than assumed.
			vm.fatal("current passage %q no longer exists", vm.passage)
			return
		}
		if vm.ip >= len(p.Commands) {
			vm.endOfPassage()
			return
		}
		cmd := p.Commands[vm.ip]
		if !vm.exec(cmd) {
			return
		}
	}
}

// endOfPassage implements the end-of-passage transitions (§4.5). Pending
// selections take priority over a plain text flush: a passage that ends
// with both narrative text and selections (§8 scenario 2, "Pick:" followed
// by two "[[...]]" links) must land in WaitingForSelection on the very
// first run(), not ScreenPause, so any buffered text is emitted as a
// single set_text and the selections are offered immediately — it is only
// when no selections are pending that text paging (flushPause, possibly
// spanning several ScreenPause ticks) applies.
func (vm *VM) endOfPassage() {
	if len(vm.selections) > 0 {
		vm.flushTextForSelections()
		vm.state = WaitingForSelection
		vm.host.SetSelections(vm.selections)
		return
	}
	if vm.textBuf.Len() > 0 {
		vm.flushPause()
		return
	}
	vm.state = Stopped
}

// flushTextForSelections emits any buffered text as one set_text call
// ahead of offering selections. Unlike flushPause, it never pages: going
// straight to WaitingForSelection means there is no ScreenPause tick in
// which to show a second page, so the invariant "text buffer is empty
// whenever state is not Running and there is no paging in progress" holds
// without populating pendingLines.
func (vm *VM) flushTextForSelections() {
	if vm.textBuf.Len() == 0 {
		return
	}
	wrapped := wrapText(vm.textBuf.String(), vm.lineMaxLen)
	vm.textBuf.Reset()
	vm.host.SetText(strings.Join(wrapped, "\n"))
}

// exec runs a single command, returning false if Run should stop looping
// (a suspension or a fatal error occurred).
func (vm *VM) exec(cmd Command) bool {
	switch cmd.Kind {
	case CmdPrintText:
		vm.textBuf.WriteString(cmd.Text)
		vm.ip++
		return true

	case CmdPause:
		// Guarded by "text buffer non-empty" (§4.5): an empty buffer means
		// there is nothing to page, so Pause falls through as a no-op
		// rather than showing an empty screen (§8 boundary case "passage
		// containing only <<pause>>").
		if vm.textBuf.Len() == 0 {
			vm.ip++
			return true
		}
		vm.flushPause()
		return false

	case CmdJumpToPassage:
		if _, ok := vm.program.Passages[cmd.Target]; !ok {
			vm.fatal("Unknown jump target %q.", cmd.Target)
			return false
		}
		vm.passage = cmd.Target
		vm.ip = 0
		return true

	case CmdCallPassage:
		if _, ok := vm.program.Passages[cmd.Target]; !ok {
			vm.fatal("Unknown call target %q.", cmd.Target)
			return false
		}
		if !vm.calls.push(callFrame{Passage: vm.passage, IP: vm.ip + 1}) {
			vm.fatal("call stack overflow calling %q", cmd.Target)
			return false
		}
		vm.passage = cmd.Target
		vm.ip = 0
		return true

	case CmdReturnPassage:
		frame, ok := vm.calls.pop()
		if !ok {
			vm.fatal("return with empty call stack")
			return false
		}
		vm.passage = frame.Passage
		vm.ip = frame.IP
		return true

	case CmdSetMusic:
		track, err := vm.Eval(cmd.TrackExpr)
		if err != nil {
			vm.fatal("%s", err)
			return false
		}
		vm.host.SetMusic(cmd.Name, int(track.AsInt()))
		vm.ip++
		return true

	case CmdSetImage:
		vm.host.SetImage(cmd.Name)
		vm.ip++
		return true

	case CmdAddSelection:
		if _, ok := vm.program.Passages[cmd.Target]; !ok {
			vm.fatal("Unknown selection target %q.", cmd.Target)
			return false
		}
		vm.selections = append(vm.selections, Selection{Text: cmd.SelectionText, Target: cmd.Target})
		vm.ip++
		return true

	case CmdIf:
		cond, err := vm.Eval(cmd.Condition)
		if err != nil {
			vm.fatal("%s", err)
			return false
		}
		if cond.AsBool() {
			vm.ip++
		} else {
			vm.ip += cmd.SkipCount
		}
		return true

	case CmdSetVariable:
		v, err := vm.Eval(cmd.Expr)
		if err != nil {
			vm.fatal("%s", err)
			return false
		}
		vm.vars[cmd.VarName] = v
		vm.ip++
		return true

	case CmdPrintResult:
		v, err := vm.Eval(cmd.Expr)
		if err != nil {
			vm.fatal("%s", err)
			return false
		}
		vm.textBuf.WriteString(v.AsString())
		vm.ip++
		return true
	}

	vm.fatal("unhandled command kind %d", cmd.Kind)
	return false
}

// flushPause implements the shared Pause / end-of-passage-with-text flush
// path (§4.5): wrap the buffer, emit the first page, store the rest.
func (vm *VM) flushPause() {
	wrapped := wrapText(vm.textBuf.String(), vm.lineMaxLen)
	vm.textBuf.Reset()
	vm.pendingLines = wrapped
	vm.state = ScreenPause
	vm.emitPage()
}

// emitPage sends up to pageSize lines from the head of pendingLines.
func (vm *VM) emitPage() {
	n := pageSize
	if n > len(vm.pendingLines) {
		n = len(vm.pendingLines)
	}
	vm.host.SetText(strings.Join(vm.pendingLines[:n], "\n"))
}

// PlayerInput dispatches a confirm/dismiss event (§6). It is ignored when
// the VM is Running or Stopped (§3: "the VM never runs when state is
// ScreenPause, WaitingForSelection, or Stopped" — conversely player_input
// only has an effect in exactly those two suspended states).
func (vm *VM) PlayerInput(i int) {
	switch vm.state {
	case ScreenPause:
		vm.advancePage()
	case WaitingForSelection:
		vm.chooseSelection(i)
	}
}

// advancePage implements the ScreenPause row of the state table: slide the
// paging window by pageSlide, so the last line of the page just shown is
// the first line of the next one, or resume Running once nothing remains.
func (vm *VM) advancePage() {
	if len(vm.pendingLines) <= pageSize {
		vm.pendingLines = nil
		vm.state = Running
		return
	}
	advance := pageSlide
	if advance > len(vm.pendingLines) {
		advance = len(vm.pendingLines)
	}
	vm.pendingLines = vm.pendingLines[advance:]
	vm.emitPage()
}

// chooseSelection implements the WaitingForSelection row: a valid index
// jumps to its target passage and resumes Running; an out-of-range index
// is simply ignored per §6 ("ignored when state is Running or Stopped" —
// an invalid index while WaitingForSelection is likewise a no-op rather
// than a fatal error, since it is host-originated input, not program data).
func (vm *VM) chooseSelection(i int) {
	if i < 0 || i >= len(vm.selections) {
		return
	}
	target := vm.selections[i].Target
	vm.selections = nil
	vm.host.SetSelections(nil)
	vm.passage = target
	vm.ip = 0
	vm.state = Running
}

// wrapText greedily word-wraps s to width-character lines. It is the kind
// of pure helper the spec calls out as an external collaborator (§1 "Text-
// wrapping utility ... (pure helpers)"); a default implementation lives
// here because the VM's Pause behaviour depends on it, but it touches
// nothing VM-internal and could be swapped for a host-supplied wrapper.
func wrapText(s string, width int) []string {
	if width <= 0 {
		width = DefaultLineMaxLen
	}
	var lines []string
	for _, paragraph := range strings.Split(s, "\n") {
		if paragraph == "" {
			lines = append(lines, "")
			continue
		}
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		var line strings.Builder
		for _, w := range words {
			if line.Len() == 0 {
				line.WriteString(w)
				continue
			}
			if line.Len()+1+len(w) > width {
				lines = append(lines, line.String())
				line.Reset()
				line.WriteString(w)
				continue
			}
			line.WriteByte(' ')
			line.WriteString(w)
		}
		lines = append(lines, line.String())
	}
	return lines
}
