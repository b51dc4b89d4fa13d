package twee

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser is a recursive-descent parser over one passage's token stream,
// with explicit mode management of the underlying Tokenizer (§4.3).
// Grounded on the teacher's hand-written descent parsers
// (grammar_parser_wirth.go's parseWirthExpression/parseWirthOr/
// parseWirthTerm ladder) for the precedence-ladder shape, generalized per
// design note "Parser tables" into a single parseBinary(level) helper.
type Parser struct {
	passage string
	tok     *Tokenizer
}

// ParsePassage parses a single raw passage body into its Command sequence.
func ParsePassage(raw RawPassage) (*Passage, error) {
	p := &Parser{
		passage: raw.Name,
		tok:     NewTokenizer(raw.Name, raw.Body, raw.StartLine),
	}
	cmds, err := p.parseBody(0)
	if err != nil {
		return nil, err
	}
	return &Passage{Name: raw.Name, Commands: cmds, StartLine: raw.StartLine}, nil
}

// ParseProgram preprocesses source and parses every passage into a
// Program. It does not validate that any passage's jump/call/selection
// targets exist — that is a runtime concern (§1 Non-goals) — but it does
// require a "Start" passage to exist, since its absence is a load-time
// fatal error per §3.
func ParseProgram(source string) (*Program, error) {
	raws := Preprocess(source)
	passages := make(map[string]*Passage, len(raws))
	for _, raw := range raws {
		p, err := ParsePassage(raw)
		if err != nil {
			return nil, err
		}
		passages[p.Name] = p
	}
	if _, ok := passages[startPassageName]; !ok {
		return nil, fmt.Errorf("missing required passage %q", startPassageName)
	}
	return &Program{Passages: passages}, nil
}

func (p *Parser) errorf(pos Position, wrapped error, format string, args ...any) error {
	return newParseError(p.passage, pos, wrapped, fmt.Sprintf(format, args...))
}

func (p *Parser) unexpected(pos Position, got Token, expected ...string) error {
	e := newParseError(p.passage, pos, ErrUnexpectedToken,
		fmt.Sprintf("unexpected token %s", describeToken(got)), expected...)
	return e
}

func describeToken(t Token) string {
	if t.Value != "" {
		return fmt.Sprintf("%s(%q)", t.Kind, t.Value)
	}
	return t.Kind.String()
}

// parseBody parses the top-level passage body in narrative mode, always
// running to EOF; its int argument is ignored. If-bodies are parsed by
// parseIfBody instead, which stops at the matching "<<endif>>".
func (p *Parser) parseBody(_ int) ([]Command, error) {
	cmds, _, err := p.parseCommandSequence(nil)
	return cmds, err
}

// stopPredicate reports whether the upcoming narrative-mode token should
// end the current command sequence without being consumed.
type stopPredicate func(p *Parser) (bool, error)

// parseCommandSequence parses narrative-mode content (text, macros,
// specials, selections) until EOF or until stop reports true. stop is
// consulted only right before dispatch, with the tokenizer already back in
// narrative mode and *not* having consumed the lookahead. The returned bool
// reports whether stop ever fired (false means the sequence ran to EOF
// instead).
func (p *Parser) parseCommandSequence(stop stopPredicate) ([]Command, bool, error) {
	var cmds []Command
	p.tok.CommandMode = false

	for {
		p.tok.CommandMode = false
		if stop != nil {
			done, err := stop(p)
			if err != nil {
				return nil, false, err
			}
			if done {
				return cmds, true, nil
			}
		}

		peeked := p.tok.Peek(1)
		next := peeked[0]

		switch next.Kind {
		case TokEOF:
			return cmds, false, nil

		case TokText:
			tok := p.tok.Next()
			cmds = append(cmds, Command{Kind: CmdPrintText, Text: tok.Value})

		case TokCommandStart:
			p.tok.Next() // consume <<
			cmd, more, err := p.parseCommand()
			if err != nil {
				return nil, false, err
			}
			cmds = append(cmds, cmd)
			cmds = append(cmds, more...)

		case TokSpecialOpen:
			p.tok.Next() // consume [
			cmd, err := p.parseSpecial()
			if err != nil {
				return nil, false, err
			}
			cmds = append(cmds, cmd)

		case TokAsterisk:
			isSelection, err := p.looksLikeSelectionStart()
			if err != nil {
				return nil, false, err
			}
			if isSelection {
				cmd, err := p.parseSelection()
				if err != nil {
					return nil, false, err
				}
				cmds = append(cmds, cmd)
			} else {
				// Reinterpreted as plain text: consume the asterisk itself
				// as a one-character text command.
				tok := p.tok.Next()
				cmds = append(cmds, Command{Kind: CmdPrintText, Text: tok.Value})
			}

		default:
			return nil, false, p.unexpected(next.Pos, next)
		}
	}
}

// looksLikeSelectionStart checks for "* [[" with exactly one mandatory
// space between the asterisk and "[[" (§4.3/§6), without consuming
// anything.
func (p *Parser) looksLikeSelectionStart() (bool, error) {
	saved := p.tok.snapshot()
	defer p.tok.restore(saved)

	p.tok.CommandMode = false
	asterisk := p.tok.Next()
	if asterisk.Kind != TokAsterisk {
		return false, nil
	}
	if p.tok.atEOF() {
		return false, nil
	}
	if p.tok.peekRune() != ' ' {
		return false, nil
	}
	t := *p.tok
	t.advance() // consume the single mandatory space
	return t.peekRune() == '[' && t.peekRuneAt(1) == '[', nil
}

// parseSelection parses "* [[TEXT|TARGET]]" and consumes one trailing
// newline (§4.3).
func (p *Parser) parseSelection() (Command, error) {
	p.tok.CommandMode = false
	p.tok.Next() // '*'
	if !p.tok.atEOF() && p.tok.peekRune() == ' ' {
		p.tok.advance()
	}
	open1 := p.tok.Next()
	if open1.Kind != TokSpecialOpen {
		return Command{}, p.unexpected(open1.Pos, open1, "[")
	}
	open2 := p.tok.Next()
	if open2.Kind != TokSpecialOpen {
		return Command{}, p.unexpected(open2.Pos, open2, "[")
	}

	text, err := p.readUntilRunes("|]")
	if err != nil {
		return Command{}, err
	}
	sep := p.tok.Next()
	if sep.Kind != TokSpecialSeparator {
		return Command{}, p.unexpected(sep.Pos, sep, "|")
	}
	target, err := p.readUntilRunes("]")
	if err != nil {
		return Command{}, err
	}
	close1 := p.tok.Next()
	if close1.Kind != TokSpecialClose {
		return Command{}, p.unexpected(close1.Pos, close1, "]")
	}
	close2 := p.tok.Next()
	if close2.Kind != TokSpecialClose {
		return Command{}, p.unexpected(close2.Pos, close2, "]")
	}
	p.consumeTrailingNewline()

	return Command{
		Kind:          CmdAddSelection,
		SelectionText: strings.TrimSpace(text),
		Target:        strings.TrimSpace(target),
	}, nil
}

// readUntilRunes accumulates raw Text tokens until the next rune under the
// cursor is one of stopRunes, without consuming it. Used for the selection
// syntax, which isn't well served by the narrative tokenizer's Text
// boundaries (it stops at '|' and ']' already, which is exactly what we
// need here).
func (p *Parser) readUntilRunes(stopRunes string) (string, error) {
	var b strings.Builder
	for {
		if p.tok.atEOF() {
			return b.String(), nil
		}
		if strings.ContainsRune(stopRunes, p.tok.peekRune()) {
			return b.String(), nil
		}
		tok := p.tok.Next()
		if tok.Kind == TokEOF {
			return b.String(), nil
		}
		b.WriteString(tok.Value)
	}
}

func (p *Parser) consumeTrailingNewline() {
	if !p.tok.atEOF() && p.tok.peekRune() == '\n' {
		p.tok.advance()
	}
}

// parseSpecial parses the body of a "[...]" special after the opening '['
// has been consumed. Currently only img[NAME] is recognised (§4.3); a
// bracketed word with no inner '[' (e.g. "[sub]") is not a special and is
// kept as literal text.
func (p *Parser) parseSpecial() (Command, error) {
	p.tok.CommandMode = true
	nameTok := p.tok.Next()
	if nameTok.Kind != TokIdentifier {
		return Command{}, p.unexpected(nameTok.Pos, nameTok, "identifier")
	}
	if p.tok.peekRune() == ']' {
		p.tok.advance()
		return Command{Kind: CmdPrintText, Text: "[" + nameTok.Value + "]"}, nil
	}
	switch strings.ToLower(nameTok.Value) {
	case "img":
		p.tok.CommandMode = false
		open := p.tok.Next()
		if open.Kind != TokSpecialOpen {
			return Command{}, p.unexpected(open.Pos, open, "[")
		}
		name, err := p.readUntilRunes("]")
		if err != nil {
			return Command{}, err
		}
		close1 := p.tok.Next()
		if close1.Kind != TokSpecialClose {
			return Command{}, p.unexpected(close1.Pos, close1, "]")
		}
		close2 := p.tok.Next()
		if close2.Kind != TokSpecialClose {
			return Command{}, p.unexpected(close2.Pos, close2, "]")
		}
		p.consumeTrailingNewline()
		return Command{Kind: CmdSetImage, Name: strings.TrimSpace(name)}, nil
	}
	return Command{}, newParseError(p.passage, nameTok.Pos, ErrUnknownSpecial,
		fmt.Sprintf("unknown special %q", nameTok.Value))
}

// parseCommand parses the body of a "<<...>>" macro after CommandStart has
// been consumed; it returns the primary Command plus any additional
// Commands that must follow it in sequence (used by "if", whose body
// commands are spliced in after the If command itself).
func (p *Parser) parseCommand() (Command, []Command, error) {
	p.tok.CommandMode = true
	nameTok := p.tok.Next()
	if nameTok.Kind != TokIdentifier {
		return Command{}, nil, p.unexpected(nameTok.Pos, nameTok, "identifier")
	}

	switch strings.ToLower(nameTok.Value) {
	case "pause":
		if err := p.expectCommandEnd(); err != nil {
			return Command{}, nil, err
		}
		return Command{Kind: CmdPause}, nil, nil

	case "jump":
		target, err := p.parseTargetName()
		if err != nil {
			return Command{}, nil, err
		}
		return Command{Kind: CmdJumpToPassage, Target: target}, nil, nil

	case "call":
		target, err := p.parseTargetName()
		if err != nil {
			return Command{}, nil, err
		}
		return Command{Kind: CmdCallPassage, Target: target}, nil, nil

	case "return":
		if err := p.expectCommandEnd(); err != nil {
			return Command{}, nil, err
		}
		return Command{Kind: CmdReturnPassage}, nil, nil

	case "music":
		return p.parseMusic()

	case "if":
		return p.parseIf()

	case "set":
		return p.parseSet()

	case "print":
		return p.parsePrint()
	}

	return Command{}, nil, newParseError(p.passage, nameTok.Pos, ErrUnknownCommand,
		fmt.Sprintf("unknown command %q", nameTok.Value))
}

// parseTargetName reads the passage-name operand of jump/call. The target
// is authored as narrative text up to ">>", matching the spec's "Text" of
// the target name (§4.3's "target-passage-name-as-Text").
func (p *Parser) parseTargetName() (string, error) {
	p.tok.CommandMode = false
	name, err := p.readUntilRunes(">")
	if err != nil {
		return "", err
	}
	if err := p.expectCommandEnd(); err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}

func (p *Parser) expectCommandEnd() error {
	p.tok.CommandMode = true
	end := p.tok.Next()
	if end.Kind != TokCommandEnd {
		return p.unexpected(end.Pos, end, ">>")
	}
	p.consumeTrailingNewline()
	return nil
}

func (p *Parser) parseMusic() (Command, []Command, error) {
	strTok := p.tok.Next()
	if strTok.Kind != TokString {
		return Command{}, nil, p.unexpected(strTok.Pos, strTok, "string")
	}
	name := unquote(strTok.Value)

	track := IntExpr(0)
	comma := p.peekCommand()
	if comma.Kind == TokComma {
		p.tok.Next()
		e, err := p.parseExpression()
		if err != nil {
			return Command{}, nil, err
		}
		track = e
	}
	if err := p.expectCommandEnd(); err != nil {
		return Command{}, nil, err
	}
	return Command{Kind: CmdSetMusic, Name: name, TrackExpr: track}, nil, nil
}

func (p *Parser) peekCommand() Token {
	p.tok.CommandMode = true
	return p.tok.Peek(1)[0]
}

// parseIf parses "if <expr>>>" followed by a body of commands, terminated
// by a matching "<<endif>>". Nested if/endif is supported (SPEC_FULL §4,
// §9 open question #2) simply by recursion: an inner "<<if ...>>" token is
// dispatched through the ordinary TokCommandStart case below, which calls
// parseCommand -> parseIf again and fully consumes that inner if's own
// "<<endif>>" before returning — so the stop predicate here only ever
// needs to recognise the *next* unmatched "<<endif>>" as its own. The
// result is a single If{Condition, SkipCount} command followed by the
// flattened body commands, per §4.3/§3.
func (p *Parser) parseIf() (Command, []Command, error) {
	cond, err := p.parseExpression()
	if err != nil {
		return Command{}, nil, err
	}
	if err := p.expectCommandEnd(); err != nil {
		return Command{}, nil, err
	}

	body, err := p.parseIfBody()
	if err != nil {
		return Command{}, nil, err
	}

	ifCmd := Command{Kind: CmdIf, Condition: cond, SkipCount: len(body) + 1}
	return ifCmd, body, nil
}

// peekMacroName reports whether the tokenizer, currently in narrative mode,
// is positioned right at "<<IDENT" and returns that identifier's text
// (case-folded) without consuming anything. Peek(n) alone can't answer
// this: the second token has to be scanned in command mode, and plain
// Peek keeps whatever mode was set when it's called.
func (p *Parser) peekMacroName() (string, bool) {
	saved := p.tok.snapshot()
	defer p.tok.restore(saved)

	p.tok.CommandMode = false
	start := p.tok.Next()
	if start.Kind != TokCommandStart {
		return "", false
	}
	p.tok.CommandMode = true
	name := p.tok.Next()
	if name.Kind != TokIdentifier {
		return "", false
	}
	return strings.ToLower(name.Value), true
}

// parseIfBody parses narrative-mode content until the matching "<<endif>>"
// and consumes it. An unterminated if (body runs to EOF) is a dedicated
// parse error per §7.
func (p *Parser) parseIfBody() ([]Command, error) {
	stop := func(pp *Parser) (bool, error) {
		name, ok := pp.peekMacroName()
		if !ok || name != "endif" {
			return false, nil
		}
		// Consume "<<endif>>" ourselves and signal done.
		pp.tok.CommandMode = false
		pp.tok.Next() // <<
		pp.tok.CommandMode = true
		pp.tok.Next() // endif
		end := pp.tok.Next()
		if end.Kind != TokCommandEnd {
			return false, pp.unexpected(end.Pos, end, ">>")
		}
		pp.consumeTrailingNewline()
		return true, nil
	}

	cmds, stopped, err := p.parseCommandSequence(stop)
	if err != nil {
		return nil, err
	}
	if !stopped {
		pos := p.tok.pos()
		return nil, newParseError(p.passage, pos, ErrUnterminatedIf, "unterminated if: missing <<endif>>")
	}
	return cmds, nil
}

func unquote(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	return unescapeBackslashes(raw)
}

func unescapeBackslashes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			b.WriteByte(s[i])
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func (p *Parser) parseSet() (Command, []Command, error) {
	nameTok := p.tok.Next()
	if nameTok.Kind != TokIdentifier {
		return Command{}, nil, p.unexpected(nameTok.Pos, nameTok, "identifier")
	}
	eq := p.tok.Next()
	if eq.Kind != TokAssign {
		return Command{}, nil, p.unexpected(eq.Pos, eq, "=")
	}
	expr, err := p.parseExpression()
	if err != nil {
		return Command{}, nil, err
	}
	if err := p.expectCommandEnd(); err != nil {
		return Command{}, nil, err
	}
	return Command{Kind: CmdSetVariable, VarName: nameTok.Value, Expr: expr}, nil, nil
}

func (p *Parser) parsePrint() (Command, []Command, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return Command{}, nil, err
	}
	if err := p.expectCommandEnd(); err != nil {
		return Command{}, nil, err
	}
	return Command{Kind: CmdPrintResult, Expr: expr}, nil, nil
}

// ---- Expression grammar (§4.3) ----
//
// Precedence, lowest to highest: Cond(or,and) -> Equality -> Comparison ->
// AddSub -> MulDiv -> Unary -> Atom. parseBinary(level) consults a small
// per-level operator table (design note "Parser tables") instead of one
// hand-written function per level.

type binOpEntry struct {
	tok TokenKind
	op  BinaryOp
}

var precedenceLevels = [][]binOpEntry{
	{ // level 0: or/and (spec lists them at one level, both left-assoc)
		{TokOr, BinOr},
		{TokAnd, BinAnd},
	},
	{ // level 1: equality
		{TokEquals, BinEq},
		{TokIs, BinEq},
		{TokNotEqual, BinNotEq},
		{TokNotEqualWeird, BinNotEq},
	},
	{ // level 2: comparison
		{TokLesserThan, BinLt},
		{TokGreaterThan, BinGt},
		{TokLesserEqual, BinLe},
		{TokGreaterEqual, BinGe},
	},
	{ // level 3: add/sub
		{TokAdd, BinAdd},
		{TokSubtract, BinSub},
	},
	{ // level 4: mul/div/rem
		{TokMultiply, BinMul},
		{TokDivide, BinDiv},
		{TokRemainder, BinRem},
	},
}

func (p *Parser) parseExpression() (Expression, error) {
	p.tok.CommandMode = true
	return p.parseBinary(0)
}

func (p *Parser) parseBinary(level int) (Expression, error) {
	if level >= len(precedenceLevels) {
		return p.parseUnary()
	}

	left, err := p.parseBinary(level + 1)
	if err != nil {
		return Expression{}, err
	}

	for {
		next := p.tok.Peek(1)[0]
		op, matched := matchLevel(precedenceLevels[level], next.Kind)
		if !matched {
			return left, nil
		}
		p.tok.Next()

		shortCircuit := (op == BinOr || op == BinAnd)
		if shortCircuit {
			left, err = p.parseShortCircuit(op, left)
			if err != nil {
				return Expression{}, err
			}
			continue
		}

		right, err := p.parseBinary(level + 1)
		if err != nil {
			return Expression{}, err
		}
		left = BinaryExpr(op, left, right)
	}
}

func matchLevel(entries []binOpEntry, kind TokenKind) (BinaryOp, bool) {
	for _, e := range entries {
		if e.tok == kind {
			return e.op, true
		}
	}
	return 0, false
}

// parseShortCircuit is split out only to make the short-circuit intent of
// or/and explicit at the call site; the actual short-circuiting happens at
// evaluation time (eval.go), not here — the parser always parses both
// sides so the AST is well-formed, but Eval never visits the right
// side's value when short-circuiting applies (§4.4/§8).
func (p *Parser) parseShortCircuit(op BinaryOp, left Expression) (Expression, error) {
	right, err := p.parseBinary(1)
	if err != nil {
		return Expression{}, err
	}
	return BinaryExpr(op, left, right), nil
}

func (p *Parser) parseUnary() (Expression, error) {
	next := p.tok.Peek(1)[0]
	switch next.Kind {
	case TokNot:
		p.tok.Next()
		operand, err := p.parseUnary()
		if err != nil {
			return Expression{}, err
		}
		return UnaryExpr(UnaryLogicalNot, operand), nil
	case TokSubtract:
		p.tok.Next()
		operand, err := p.parseUnary()
		if err != nil {
			return Expression{}, err
		}
		return UnaryExpr(UnaryNegate, operand), nil
	}
	return p.parseAtom()
}

func (p *Parser) parseAtom() (Expression, error) {
	tok := p.tok.Next()
	switch tok.Kind {
	case TokNumber:
		n, err := strconv.ParseInt(tok.Value, 10, 32)
		if err != nil {
			return Expression{}, p.errorf(tok.Pos, nil, "invalid number literal %q", tok.Value)
		}
		return IntExpr(int32(n)), nil

	case TokString:
		return StringExpr(unquote(tok.Value)), nil

	case TokTrue:
		return BoolExpr(true), nil

	case TokFalse:
		return BoolExpr(false), nil

	case TokParenOpen:
		inner, err := p.parseBinary(0)
		if err != nil {
			return Expression{}, err
		}
		close := p.tok.Next()
		if close.Kind != TokParenClose {
			return Expression{}, p.unexpected(close.Pos, close, ")")
		}
		return inner, nil

	case TokIdentifier:
		if p.tok.Peek(1)[0].Kind == TokParenOpen {
			p.tok.Next() // (
			args, err := p.parseArgList()
			if err != nil {
				return Expression{}, err
			}
			return CallExpr(tok.Value, args), nil
		}
		return VariableExpr(tok.Value), nil
	}

	return Expression{}, p.unexpected(tok.Pos, tok, "expression")
}

func (p *Parser) parseArgList() ([]Expression, error) {
	var args []Expression
	if p.tok.Peek(1)[0].Kind == TokParenClose {
		p.tok.Next()
		return args, nil
	}
	for {
		arg, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		next := p.tok.Next()
		switch next.Kind {
		case TokComma:
			continue
		case TokParenClose:
			return args, nil
		default:
			return nil, p.unexpected(next.Pos, next, ",", ")")
		}
	}
}
