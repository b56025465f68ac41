package application

import (
	"bytes"
	"fmt"
	stdhtml "html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const (
	maxLength = 200

	// CopyAckDuration is how long a copy button shows its "copied" state.
	CopyAckDuration = 2 * time.Second

	highlightStyle = "tokyonight-night"
)

// NodeKind is the closed set of node variants that get their own presentation rule.
type NodeKind int

const (
	KindOther NodeKind = iota
	KindParagraph
	KindCodeInline
	KindCodeBlock
	KindImage
)

func (k NodeKind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindCodeInline:
		return "code-inline"
	case KindCodeBlock:
		return "code-block"
	case KindImage:
		return "image"
	}
	return "other"
}

func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ClassifyNode maps a goldmark node onto a NodeKind.
func ClassifyNode(n ast.Node) NodeKind {
	switch n.(type) {
	case *ast.Paragraph:
		return KindParagraph
	case *ast.CodeSpan:
		return KindCodeInline
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return KindCodeBlock
	case *ast.Image:
		return KindImage
	}
	return KindOther
}

// Block is one top-level element of a rendered document.
type Block struct {
	Kind     NodeKind `json:"kind"`
	Text     string   `json:"text"`
	Language string   `json:"language,omitempty"`
	Src      string   `json:"src,omitempty"`
	Caption  string   `json:"caption,omitempty"`
}

// Document is a rendered post body.
type Document struct {
	Meta    FrontMatter `json:"meta"`
	Title   string      `json:"title"`
	Snippet string      `json:"snippet"`
	Body    string      `json:"body"`
	HTML    string      `json:"html"`
	Blocks  []Block     `json:"blocks"`
}

// MarkdownRenderer defines the interface for converting post markdown to a Document.
type MarkdownRenderer interface {
	Render(markdown []byte) (*Document, error)
}

type MarkdownRendererImpl struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

func NewMarkdownRenderer() MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&unwrapParagraphTransformer{}, 100),
			),
		),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(
				util.Prioritized(newPresentationRenderer(), 100),
			),
		),
	)

	return &MarkdownRendererImpl{
		md:        md,
		sanitizer: newSanitizer(),
	}
}

func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("figure", "figcaption", "button")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)).
		OnElements("code", "span", "pre", "div", "figure", "figcaption", "img", "button", "p")
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^button$`)).OnElements("button")
	p.AllowAttrs("aria-label").OnElements("button")
	p.AllowAttrs("loading").Matching(regexp.MustCompile(`^lazy$`)).OnElements("img")
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	p.AllowDataAttributes()
	return p
}

// Render strips front matter, renders the body and sanitizes the resulting HTML.
func (r *MarkdownRendererImpl) Render(markdown []byte) (*Document, error) {
	raw := string(markdown)
	meta, _ := ParseFrontMatter(raw)
	body := ExtractBody(raw)
	source := []byte(body)

	root := r.md.Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, source, root); err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	title := meta.Title
	if title == "" {
		title = extractPostTitle(source)
	}

	return &Document{
		Meta:    meta,
		Title:   title,
		Snippet: extractSnippet(source),
		Body:    body,
		HTML:    string(r.sanitizer.SanitizeBytes(buf.Bytes())),
		Blocks:  collectBlocks(root, source),
	}, nil
}

func collectBlocks(root ast.Node, source []byte) []Block {
	blocks := make([]Block, 0, root.ChildCount())
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		b := Block{Kind: ClassifyNode(n), Text: plainText(n, source)}
		switch node := n.(type) {
		case *ast.FencedCodeBlock:
			b.Language = string(node.Language(source))
		case *ast.Image:
			b.Src = string(node.Destination)
			b.Caption = b.Text
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// plainText flattens every text segment below n into one string.
func plainText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	writePlainText(&buf, n, source)
	return buf.String()
}

func writePlainText(buf *bytes.Buffer, n ast.Node, source []byte) {
	switch node := n.(type) {
	case *ast.Text:
		buf.Write(node.Segment.Value(source))
		if node.SoftLineBreak() || node.HardLineBreak() {
			buf.WriteByte('\n')
		}
		return
	case *ast.String:
		buf.Write(node.Value)
		return
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(source))
		}
		return
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		writePlainText(buf, c, source)
	}
}

// unwrapParagraphTransformer lifts an image or code block that is the only child of a
// paragraph out of it. Mixed paragraphs are kept and rendered as a div instead of <p>.
type unwrapParagraphTransformer struct{}

func (t *unwrapParagraphTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	var targets []*ast.Paragraph
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		para, ok := n.(*ast.Paragraph)
		if !ok || para.ChildCount() != 1 {
			return ast.WalkContinue, nil
		}
		switch ClassifyNode(para.FirstChild()) {
		case KindImage, KindCodeBlock:
			targets = append(targets, para)
		}
		return ast.WalkSkipChildren, nil
	})

	for _, para := range targets {
		parent := para.Parent()
		if parent == nil {
			continue
		}
		child := para.FirstChild()
		para.RemoveChild(para, child)
		parent.ReplaceChild(parent, para, child)
	}
}

// presentationRenderer renders the NodeKinds with custom presentation rules.
type presentationRenderer struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

func newPresentationRenderer() renderer.NodeRenderer {
	return &presentationRenderer{
		style: styles.Get(highlightStyle),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
	}
}

func (r *presentationRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindParagraph, r.renderNode)
	reg.Register(ast.KindCodeSpan, r.renderNode)
	reg.Register(ast.KindFencedCodeBlock, r.renderNode)
	reg.Register(ast.KindCodeBlock, r.renderNode)
	reg.Register(ast.KindImage, r.renderNode)
}

func (r *presentationRenderer) renderNode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch ClassifyNode(node) {
	case KindParagraph:
		return r.renderParagraph(w, node, entering)
	case KindCodeInline:
		return r.renderCodeInline(w, source, node, entering)
	case KindCodeBlock:
		return r.renderCodeBlock(w, source, node, entering)
	case KindImage:
		return r.renderImage(w, source, node, entering)
	}
	return ast.WalkContinue, nil
}

func (r *presentationRenderer) renderParagraph(w util.BufWriter, node ast.Node, entering bool) (ast.WalkStatus, error) {
	tag := "p"
	if holdsBlockContent(node) {
		tag = `div class="paragraph"`
	}
	if entering {
		_, _ = w.WriteString("<" + tag + ">")
	} else if tag == "p" {
		_, _ = w.WriteString("</p>\n")
	} else {
		_, _ = w.WriteString("</div>\n")
	}
	return ast.WalkContinue, nil
}

// holdsBlockContent reports whether a paragraph has a child rendered as a block,
// which a <p> may not contain.
func holdsBlockContent(para ast.Node) bool {
	for c := para.FirstChild(); c != nil; c = c.NextSibling() {
		switch ClassifyNode(c) {
		case KindImage, KindCodeBlock:
			return true
		}
	}
	return false
}

func (r *presentationRenderer) renderCodeInline(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<code class="inline-code">`)
	_, _ = w.WriteString(stdhtml.EscapeString(plainText(node, source)))
	_, _ = w.WriteString(`</code>`)
	return ast.WalkSkipChildren, nil
}

func (r *presentationRenderer) renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	code := plainText(node, source)
	lang := ""
	if fenced, ok := node.(*ast.FencedCodeBlock); ok {
		lang = string(fenced.Language(source))
	}

	// content analysis misreads short snippets, so only the declared language selects a lexer
	lexer := lexers.Fallback
	if lang != "" {
		if l := lexers.Get(lang); l != nil {
			lexer = l
		}
	}

	_, _ = w.WriteString(`<div class="code-block">`)
	_, _ = w.WriteString(`<pre class="chroma">`)
	_, _ = w.WriteString(`<button type="button" class="copy-button" aria-label="copy code" data-copy-text="`)
	_, _ = w.WriteString(stdhtml.EscapeString(code))
	_, _ = w.WriteString(`" data-copied-ms="`)
	_, _ = w.WriteString(strconv.FormatInt(CopyAckDuration.Milliseconds(), 10))
	_, _ = w.WriteString(`">copy</button>`)
	if lang != "" {
		_, _ = w.WriteString(`<code class="language-` + sanitizeLanguage(lang) + `">`)
	} else {
		_, _ = w.WriteString(`<code>`)
	}

	if err := r.highlight(w, lexer, code); err != nil {
		log.Debug().Err(err).Str("language", lang).Msg("Falling back to plain code block")
		_, _ = w.WriteString(stdhtml.EscapeString(code))
	}

	_, _ = w.WriteString("</code></pre></div>\n")
	return ast.WalkContinue, nil
}

func (r *presentationRenderer) highlight(w util.BufWriter, lexer chroma.Lexer, code string) error {
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.style, iterator); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func (r *presentationRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	img := node.(*ast.Image)
	alt := plainText(img, source)

	_, _ = w.WriteString(`<figure class="post-figure"><img src="`)
	if !gmhtml.IsDangerousURL(img.Destination) {
		_, _ = w.WriteString(stdhtml.EscapeString(string(img.Destination)))
	}
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.WriteString(stdhtml.EscapeString(alt))
	_, _ = w.WriteString(`"`)
	if len(img.Title) > 0 {
		_, _ = w.WriteString(` title="`)
		_, _ = w.WriteString(stdhtml.EscapeString(string(img.Title)))
		_, _ = w.WriteString(`"`)
	}
	_, _ = w.WriteString(` loading="lazy">`)
	if alt != "" {
		_, _ = w.WriteString(`<figcaption>`)
		_, _ = w.WriteString(stdhtml.EscapeString(alt))
		_, _ = w.WriteString(`</figcaption>`)
	}
	_, _ = w.WriteString(`</figure>`)
	return ast.WalkSkipChildren, nil
}

var languagePattern = regexp.MustCompile(`[^a-zA-Z0-9_+-]`)

func sanitizeLanguage(lang string) string {
	return languagePattern.ReplaceAllString(lang, "")
}

func extractPostTitle(markdown []byte) string {
	lines := strings.SplitN(string(markdown), "\n", 2)
	if len(lines) == 0 {
		return ""
	}

	title, found := strings.CutPrefix(strings.TrimSpace(lines[0]), "# ")
	if !found {
		return ""
	}

	return strings.TrimSpace(title)
}

func extractSnippet(markdown []byte) string {
	var paragraphLines []string

	for _, line := range strings.Split(string(markdown), "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "#") {
			if len(paragraphLines) > 0 {
				break
			}
			continue
		}

		if trimmed == "" {
			if len(paragraphLines) > 0 {
				break
			}
			continue
		}

		// code fences, rules, lists, tables and images end the first paragraph
		if strings.HasPrefix(trimmed, "```") ||
			strings.HasPrefix(trimmed, "---") ||
			strings.HasPrefix(trimmed, "***") ||
			strings.HasPrefix(trimmed, "- ") ||
			strings.HasPrefix(trimmed, "* ") ||
			strings.HasPrefix(trimmed, "+ ") ||
			strings.HasPrefix(trimmed, "|") ||
			strings.HasPrefix(trimmed, "![") {
			if len(paragraphLines) > 0 {
				break
			}
			continue
		}

		paragraphLines = append(paragraphLines, trimmed)
	}

	if len(paragraphLines) == 0 {
		return ""
	}

	snippet := strings.Join(paragraphLines, " ")

	if len(snippet) > maxLength {
		snippet = truncateAtRune(snippet, maxLength)
		if lastSpace := strings.LastIndexAny(snippet, " \t"); lastSpace > 0 {
			snippet = snippet[:lastSpace]
		}
		snippet += "..."
	}

	return snippet
}

// truncateAtRune cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncateAtRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
