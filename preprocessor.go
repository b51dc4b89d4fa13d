package twee

import "strings"

// RawPassage is the preprocessor's output for one `::`-delimited block,
// before tokenizing/parsing its body (§4.1).
type RawPassage struct {
	Name      string
	Body      string
	StartLine int
}

// Preprocess splits source into passages. Line endings are normalised to
// \n first; everything before the first `::` line is ignored. Grounded on
// the line-oriented, line-number-tracking preprocessing pass in
// _examples/other_examples/588824bc_mrdon-twist__internal-proxy-scripting-
// parser-preprocessor.go.go, adapted from macro expansion to passage
// splitting.
func Preprocess(source string) []RawPassage {
	source = normalizeLineEndings(source)
	source = strings.TrimPrefix(source, "\xef\xbb\xbf")

	lines := strings.Split(source, "\n")

	var passages []RawPassage
	var cur *RawPassage
	var bodyLines []string

	flush := func() {
		if cur == nil {
			return
		}
		body := strings.Join(bodyLines, "\n")
		body = strings.TrimRight(body, "\n\r ")
		cur.Body = body
		passages = append(passages, *cur)
	}

	for i, line := range lines {
		lineNum := i + 1
		if strings.HasPrefix(line, "::") {
			flush()
			name := strings.TrimSpace(line[2:])
			cur = &RawPassage{Name: name, StartLine: lineNum + 1}
			bodyLines = bodyLines[:0]
			continue
		}
		if cur == nil {
			continue // before the first passage: ignored
		}
		bodyLines = append(bodyLines, line)
	}
	flush()

	return passages
}

func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}
