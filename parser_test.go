package twee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProgram_RequiresStartPassage(t *testing.T) {
	_, err := ParseProgram("::NotStart\nhi\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Start")
}

func TestParsePassage_PrintAndPause(t *testing.T) {
	prog, err := ParseProgram("::Start\nHello<<pause>>\n")
	require.NoError(t, err)

	start := prog.Passages["Start"]
	require.Len(t, start.Commands, 2)
	assert.Equal(t, CmdPrintText, start.Commands[0].Kind)
	assert.Equal(t, "Hello", start.Commands[0].Text)
	assert.Equal(t, CmdPause, start.Commands[1].Kind)
}

func TestParsePassage_Selection(t *testing.T) {
	prog, err := ParseProgram("::Start\nPick:\n* [[Left|L]]\n* [[Right|R]]\n")
	require.NoError(t, err)

	start := prog.Passages["Start"]
	var sels []Command
	for _, c := range start.Commands {
		if c.Kind == CmdAddSelection {
			sels = append(sels, c)
		}
	}
	require.Len(t, sels, 2)
	assert.Equal(t, "Left", sels[0].SelectionText)
	assert.Equal(t, "L", sels[0].Target)
	assert.Equal(t, "Right", sels[1].SelectionText)
	assert.Equal(t, "R", sels[1].Target)
}

func TestParsePassage_LeadingAsteriskNotASelectionIsText(t *testing.T) {
	prog, err := ParseProgram("::Start\n* just an aside\n")
	require.NoError(t, err)
	start := prog.Passages["Start"]
	// The asterisk becomes its own one-character PrintText, followed by the
	// rest of the line as a second PrintText.
	require.Len(t, start.Commands, 2)
	assert.Equal(t, CmdPrintText, start.Commands[0].Kind)
	assert.Equal(t, "*", start.Commands[0].Text)
	assert.Equal(t, CmdPrintText, start.Commands[1].Kind)
	assert.Equal(t, " just an aside", start.Commands[1].Text)
}

func TestParsePassage_SetAndPrintExpression(t *testing.T) {
	prog, err := ParseProgram("::Start\n<<set x = 2>><<set y = 3>><<print x * y + 1>><<pause>>\n")
	require.NoError(t, err)
	start := prog.Passages["Start"]

	require.Len(t, start.Commands, 4)
	assert.Equal(t, CmdSetVariable, start.Commands[0].Kind)
	assert.Equal(t, "x", start.Commands[0].VarName)
	assert.Equal(t, CmdPrintResult, start.Commands[2].Kind)

	// x * y + 1 should parse as (x * y) + 1: MulDiv binds tighter than
	// AddSub (§4.3 precedence table).
	expr := start.Commands[2].Expr
	require.Equal(t, ExprBinary, expr.Kind)
	assert.Equal(t, BinAdd, expr.BinOp)
	require.Equal(t, ExprBinary, expr.Left.Kind)
	assert.Equal(t, BinMul, expr.Left.BinOp)
}

func TestParsePassage_IfEndIf(t *testing.T) {
	prog, err := ParseProgram("::Start\n<<if x is 1>>yes<<endif>>after\n")
	require.NoError(t, err)
	start := prog.Passages["Start"]

	require.True(t, len(start.Commands) >= 2)
	ifCmd := start.Commands[0]
	require.Equal(t, CmdIf, ifCmd.Kind)
	// body is one PrintText("yes"); skip_count = len(body)+1 = 2.
	assert.Equal(t, 2, ifCmd.SkipCount)
	assert.Equal(t, CmdPrintText, start.Commands[1].Kind)
	assert.Equal(t, "yes", start.Commands[1].Text)
}

func TestParsePassage_NestedIf(t *testing.T) {
	src := "::Start\n<<if a>><<if b>>both<<endif>>only a<<endif>>after\n"
	prog, err := ParseProgram(src)
	require.NoError(t, err)
	start := prog.Passages["Start"]

	outer := start.Commands[0]
	require.Equal(t, CmdIf, outer.Kind)
	// outer body: innerIf, "both"(PrintText), "only a"(PrintText) = 3
	// instructions, so skip_count = 4.
	assert.Equal(t, 4, outer.SkipCount)

	inner := start.Commands[1]
	require.Equal(t, CmdIf, inner.Kind)
	assert.Equal(t, 2, inner.SkipCount)
}

func TestParsePassage_UnterminatedIfIsParseError(t *testing.T) {
	_, err := ParseProgram("::Start\n<<if x>>no endif\n")
	require.Error(t, err)
	var pe ParseError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, pe, ErrUnterminatedIf)
}

func TestParsePassage_UnknownCommandIsParseError(t *testing.T) {
	_, err := ParseProgram("::Start\n<<nonsense>>\n")
	require.Error(t, err)
	var pe ParseError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, pe, ErrUnknownCommand)
}

func TestParsePassage_UnknownSpecialIsParseError(t *testing.T) {
	_, err := ParseProgram("::Start\n[bogus[x]]\n")
	require.Error(t, err)
	var pe ParseError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, pe, ErrUnknownSpecial)
}

func TestParsePassage_CallReturn(t *testing.T) {
	prog, err := ParseProgram("::Start\nA<<call Sub>>B<<pause>>\n::Sub\n[sub]<<return>>\n")
	require.NoError(t, err)

	start := prog.Passages["Start"]
	require.Len(t, start.Commands, 4)
	assert.Equal(t, CmdCallPassage, start.Commands[1].Kind)
	assert.Equal(t, "Sub", start.Commands[1].Target)

	sub := prog.Passages["Sub"]
	require.Len(t, sub.Commands, 2)
	assert.Equal(t, CmdPrintText, sub.Commands[0].Kind)
	assert.Equal(t, "[sub]", sub.Commands[0].Text)
	assert.Equal(t, CmdReturnPassage, sub.Commands[1].Kind)
}

func TestParsePassage_MusicDefaultTrack(t *testing.T) {
	prog, err := ParseProgram("::Start\n<<music \"theme\">>\n")
	require.NoError(t, err)
	start := prog.Passages["Start"]
	require.Len(t, start.Commands, 1)
	cmd := start.Commands[0]
	assert.Equal(t, CmdSetMusic, cmd.Kind)
	assert.Equal(t, "theme", cmd.Name)
	require.Equal(t, ExprInt, cmd.TrackExpr.Kind)
	assert.Equal(t, int32(0), cmd.TrackExpr.IntVal)
}

func TestParsePassage_MusicExplicitTrack(t *testing.T) {
	prog, err := ParseProgram("::Start\n<<music \"theme\", 2>>\n")
	require.NoError(t, err)
	cmd := prog.Passages["Start"].Commands[0]
	require.Equal(t, ExprInt, cmd.TrackExpr.Kind)
	assert.Equal(t, int32(2), cmd.TrackExpr.IntVal)
}

func TestParsePassage_FunctionCall(t *testing.T) {
	prog, err := ParseProgram("::Start\n<<set x = random(1, 6)>>\n")
	require.NoError(t, err)
	cmd := prog.Passages["Start"].Commands[0]
	require.Equal(t, ExprFunctionCall, cmd.Expr.Kind)
	assert.Equal(t, "random", cmd.Expr.FuncName)
	require.Len(t, cmd.Expr.Args, 2)
}

func TestParsePassage_EmptyBody(t *testing.T) {
	prog, err := ParseProgram("::Start\n")
	require.NoError(t, err)
	assert.Empty(t, prog.Passages["Start"].Commands)
}
