package engine

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// mdWriter serialises a goldmark tree back to Markdown.
type mdWriter struct {
	source       []byte
	s            Settings
	footnoteRefs map[int][]byte
}

func formatMarkdown(doc *Document, s Settings) ([]byte, error) {
	w := &mdWriter{source: doc.Source, s: s, footnoteRefs: map[int][]byte{}}
	w.collectFootnotes(doc.Root)

	var parts []string
	if doc.HasFrontmatter {
		fm, err := encodeFrontmatter(doc.Frontmatter)
		if err != nil {
			return nil, err
		}
		parts = append(parts, fm)
	}
	if body := w.blocks(doc.Root, "\n\n"); body != "" {
		parts = append(parts, body)
	}

	out := strings.TrimRight(strings.Join(parts, "\n\n"), "\n")
	if out == "" {
		return []byte{}, nil
	}
	return []byte(out + "\n"), nil
}

func (w *mdWriter) collectFootnotes(root ast.Node) {
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if fn, ok := n.(*east.Footnote); ok && entering {
			w.footnoteRefs[fn.Index] = fn.Ref
		}
		return ast.WalkContinue, nil
	})
}

// blocks renders the block children of parent joined by sep.
func (w *mdWriter) blocks(parent ast.Node, sep string) string {
	var (
		b    strings.Builder
		prev ast.Node
	)
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		out := w.block(c)
		if prev != nil {
			b.WriteString(sep)
			// Two adjacent lists would merge into one when re-parsed.
			if prev.Kind() == ast.KindList && c.Kind() == ast.KindList {
				b.WriteString("<!---->\n\n")
			}
		}
		b.WriteString(out)
		prev = c
	}
	return b.String()
}

func (w *mdWriter) block(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return w.inlines(n)
	case *ast.Heading:
		return w.heading(n)
	case *ast.ThematicBreak:
		return w.rule()
	case *ast.FencedCodeBlock:
		var info string
		if n.Info != nil {
			info = string(n.Info.Segment.Value(w.source))
		}
		return w.code(n.Lines(), info)
	case *ast.CodeBlock:
		return w.code(n.Lines(), "")
	case *ast.HTMLBlock:
		return strings.TrimRight(htmlBlockText(n, w.source), "\n")
	case *ast.Blockquote:
		return prefixLines(w.blocks(n, "\n\n"), "> ", ">")
	case *ast.List:
		return w.list(n)
	case *east.Table:
		return w.table(n)
	case *east.DefinitionList:
		return w.definitionList(n)
	case *east.FootnoteList:
		return w.footnotes(n)
	default:
		return w.blocks(n, "\n\n")
	}
}

func (w *mdWriter) heading(n *ast.Heading) string {
	content := w.inlines(n)
	if w.s.Setext && n.Level <= 2 && content != "" && !strings.Contains(content, "\n") {
		char := "="
		if n.Level == 2 {
			char = "-"
		}
		return content + "\n" + strings.Repeat(char, max(3, runewidth.StringWidth(content)))
	}

	content = strings.ReplaceAll(strings.ReplaceAll(content, "\\\n", " "), "\n", " ")
	hashes := strings.Repeat("#", n.Level)
	if content == "" {
		return hashes
	}
	if w.s.CloseAtx {
		return hashes + " " + content + " " + hashes
	}
	return hashes + " " + content
}

func (w *mdWriter) rule() string {
	sep := ""
	if w.s.RuleSpaces {
		sep = " "
	}
	return strings.TrimSuffix(strings.Repeat(w.s.Rule+sep, w.s.RuleRepetition), sep)
}

func (w *mdWriter) code(lines *text.Segments, info string) string {
	content := strings.TrimSuffix(segmentsText(lines, w.source), "\n")
	if !w.s.Fences && info == "" && strings.TrimSpace(content) != "" {
		return prefixLines(content, "    ", "")
	}

	char := w.s.Fence
	if char == "`" && strings.Contains(info, "`") {
		char = "~"
	}
	fence := strings.Repeat(char, max(3, longestRun(content, char[0])+1))
	if content == "" {
		return fence + info + "\n" + fence
	}
	return fence + info + "\n" + content + "\n" + fence
}

func (w *mdWriter) list(n *ast.List) string {
	var items []string
	i := 0
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		marker := w.s.Bullet
		if n.IsOrdered() {
			num := n.Start
			if w.s.IncrementListMarker {
				num += i
			}
			marker = strconv.Itoa(num) + w.s.BulletOrdered
		}
		items = append(items, w.listItem(c, marker, n.IsTight))
		i++
	}

	sep := "\n"
	if !n.IsTight {
		sep = "\n\n"
	}
	return strings.Join(items, sep)
}

func (w *mdWriter) listItem(item ast.Node, marker string, tight bool) string {
	sep := "\n\n"
	if tight {
		sep = "\n"
	}
	content := w.blocks(item, sep)
	if content == "" {
		return marker
	}

	size := len(marker) + 1
	switch w.s.ListItemIndent {
	case "tab":
		size = roundToTab(size)
	case "mixed":
		if !tight {
			size = roundToTab(size)
		}
	}

	indent := strings.Repeat(" ", size)
	first := marker + strings.Repeat(" ", size-len(marker))
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		switch {
		case i == 0:
			lines[i] = first + line
		case line != "":
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}

func (w *mdWriter) table(n *east.Table) string {
	cols := len(n.Alignments)
	var rows [][]string
	for r := n.FirstChild(); r != nil; r = r.NextSibling() {
		var cells []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, escapePipes(w.inlines(c)))
		}
		cols = max(cols, len(cells))
		rows = append(rows, cells)
	}

	widths := make([]int, cols)
	for i := range widths {
		widths[i] = 3
	}
	for _, cells := range rows {
		for i, cell := range cells {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	align := func(i int) east.Alignment {
		if i < len(n.Alignments) {
			return n.Alignments[i]
		}
		return east.AlignNone
	}

	out := make([]string, 0, len(rows)+1)
	for r, cells := range rows {
		padded := make([]string, cols)
		for i := range padded {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			padded[i] = pad(cell, widths[i], align(i))
		}
		out = append(out, "| "+strings.Join(padded, " | ")+" |")

		if r == 0 {
			delims := make([]string, cols)
			for i := range delims {
				delims[i] = delimiter(widths[i], align(i))
			}
			out = append(out, "| "+strings.Join(delims, " | ")+" |")
		}
	}
	return strings.Join(out, "\n")
}

func (w *mdWriter) definitionList(n *east.DefinitionList) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *east.DefinitionTerm:
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(w.inlines(c))
		case *east.DefinitionDescription:
			b.WriteString("\n")
			b.WriteString(hangingIndent(w.blocks(c, "\n\n"), ": ", "  "))
		}
	}
	return b.String()
}

func (w *mdWriter) footnotes(n *east.FootnoteList) string {
	var defs []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		fn, ok := c.(*east.Footnote)
		if !ok {
			continue
		}
		label := "[^" + string(fn.Ref) + "]: "
		defs = append(defs, hangingIndent(w.blocks(fn, "\n\n"), label, "    "))
	}
	return strings.Join(defs, "\n\n")
}

func (w *mdWriter) inlines(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.inline(&b, c)
	}
	return b.String()
}

func (w *mdWriter) inline(b *strings.Builder, n ast.Node) {
	switch n := n.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(w.source))
		switch {
		case n.HardLineBreak():
			b.WriteString("\\\n")
		case n.SoftLineBreak():
			b.WriteString("\n")
		}
	case *ast.String:
		b.Write(n.Value)
	case *ast.CodeSpan:
		b.WriteString(codeSpan(inlineText(n, w.source)))
	case *ast.Emphasis:
		marker := w.s.Emphasis
		if n.Level >= 2 {
			marker = w.s.Strong
		}
		if marker == "_" && w.intraword(n) {
			marker = "*"
		}
		marker = strings.Repeat(marker, min(n.Level, 2))
		b.WriteString(marker + w.inlines(n) + marker)
	case *ast.Link:
		b.WriteString("[" + w.inlines(n) + "](" + w.destination(n.Destination, n.Title) + ")")
	case *ast.Image:
		b.WriteString("![" + inlineText(n, w.source) + "](" + w.destination(n.Destination, n.Title) + ")")
	case *ast.AutoLink:
		label := string(n.Label(w.source))
		if n.AutoLinkType == ast.AutoLinkEmail || strings.Contains(label, ":") {
			label = "<" + label + ">"
		}
		b.WriteString(label)
	case *ast.RawHTML:
		b.WriteString(segmentsText(n.Segments, w.source))
	case *east.Strikethrough:
		b.WriteString("~~" + w.inlines(n) + "~~")
	case *east.TaskCheckBox:
		if n.IsChecked {
			b.WriteString("[x] ")
		} else {
			b.WriteString("[ ] ")
		}
	case *east.FootnoteLink:
		ref, ok := w.footnoteRefs[n.Index]
		if !ok {
			ref = []byte(strconv.Itoa(n.Index))
		}
		b.WriteString("[^" + string(ref) + "]")
	case *east.FootnoteBacklink:
	default:
		b.WriteString(w.inlines(n))
	}
}

func (w *mdWriter) destination(dest, title []byte) string {
	d := string(dest)
	if d == "" || strings.ContainsAny(d, " \t()<>") {
		d = "<" + strings.NewReplacer("<", "\\<", ">", "\\>").Replace(d) + ">"
	}
	if len(title) == 0 {
		return d
	}
	q := w.s.Quote
	t := strings.NewReplacer(`\`, `\\`, q, `\`+q).Replace(string(util.UnescapePunctuations(title)))
	return d + " " + q + t + q
}

// intraword reports whether n sits between word characters. Underscore
// delimiters cannot open or close emphasis there.
func (w *mdWriter) intraword(n ast.Node) bool {
	return isWordRune(w.edgeRune(n.PreviousSibling(), true)) ||
		isWordRune(w.edgeRune(n.NextSibling(), false))
}

func (w *mdWriter) edgeRune(n ast.Node, last bool) rune {
	var value []byte
	switch n := n.(type) {
	case *ast.Text:
		if last && (n.SoftLineBreak() || n.HardLineBreak()) {
			return '\n'
		}
		value = n.Segment.Value(w.source)
	case *ast.String:
		value = n.Value
	}
	if len(value) == 0 {
		return utf8.RuneError
	}
	if last {
		r, _ := utf8.DecodeLastRune(value)
		return r
	}
	r, _ := utf8.DecodeRune(value)
	return r
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func codeSpan(content string) string {
	fence := strings.Repeat("`", longestRun(content, '`')+1)
	if strings.HasPrefix(content, "`") || strings.HasSuffix(content, "`") ||
		(strings.HasPrefix(content, " ") && strings.HasSuffix(content, " ") && strings.TrimSpace(content) != "") {
		content = " " + content + " "
	}
	return fence + content + fence
}

func longestRun(s string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	return longest
}

func prefixLines(s, prefix, blank string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = blank
			continue
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func hangingIndent(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		switch {
		case i == 0:
			lines[i] = first + line
		case line != "":
			lines[i] = rest + line
		}
	}
	return strings.Join(lines, "\n")
}

func roundToTab(n int) int {
	return (n + 3) / 4 * 4
}

func escapePipes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '|' && (i == 0 || s[i-1] != '\\') {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func pad(cell string, width int, align east.Alignment) string {
	gap := width - runewidth.StringWidth(cell)
	if gap <= 0 {
		return cell
	}
	switch align {
	case east.AlignRight:
		return strings.Repeat(" ", gap) + cell
	case east.AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + cell + strings.Repeat(" ", gap-left)
	default:
		return cell + strings.Repeat(" ", gap)
	}
}

func delimiter(width int, align east.Alignment) string {
	switch align {
	case east.AlignLeft:
		return ":" + strings.Repeat("-", width-1)
	case east.AlignRight:
		return strings.Repeat("-", width-1) + ":"
	case east.AlignCenter:
		return ":" + strings.Repeat("-", width-2) + ":"
	default:
		return strings.Repeat("-", width)
	}
}
