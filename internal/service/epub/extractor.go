package epub

import (
	"bytes"
	"fmt"
	"strings"

	"epub2audio/internal/service/segment"
	"epub2audio/internal/service/textfix"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Chapter — глава книги: заголовок и упорядоченные куски текста для синтеза.
type Chapter struct {
	Header string
	Parts  []string
}

var headingAtoms = []atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

// Extractor достаёт главы из EPUB и режет их текст на куски.
type Extractor struct {
	segmenter       *segment.Segmenter
	headerDelimiter string
	logger          *zap.SugaredLogger
}

func NewExtractor(seg *segment.Segmenter, headerDelimiter string, logger *zap.SugaredLogger) *Extractor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Extractor{segmenter: seg, headerDelimiter: headerDelimiter, logger: logger}
}

// ExtractFile открывает книгу по пути и возвращает её главы.
func (e *Extractor) ExtractFile(filePath string) ([]Chapter, error) {
	book, err := Open(filePath)
	if err != nil {
		return nil, err
	}
	defer book.Close()
	return e.Extract(book)
}

// Extract возвращает по одной главе на каждый контентный документ книги, в порядке манифеста.
func (e *Extractor) Extract(book *Book) ([]Chapter, error) {
	docs := book.Documents()
	chapters := make([]Chapter, 0, len(docs))
	for _, it := range docs {
		content, err := book.ReadItem(it)
		if err != nil {
			return nil, err
		}
		ch, err := e.chapter(it, content)
		if err != nil {
			return nil, fmt.Errorf("chapter %s: %w", it.Name(), err)
		}
		e.logger.Infow("Chapter extracted", "name", it.Name(), "header", ch.Header, "parts", len(ch.Parts))
		chapters = append(chapters, ch)
	}
	return chapters, nil
}

func (e *Extractor) chapter(it Item, content []byte) (Chapter, error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return Chapter{}, fmt.Errorf("parsing HTML: %w", err)
	}
	body := findBody(doc)
	if body == nil {
		return Chapter{Header: it.Name()}, nil
	}

	nodes := elements(body)

	// Заголовок: h1..h6 по порядку уровней, внутри уровня — по порядку в документе
	var headers []string
	for _, a := range headingAtoms {
		for _, n := range nodes {
			if n.DataAtom == a {
				headers = append(headers, textfix.Fix(text(n)))
			}
		}
	}
	header := strings.Join(headers, e.headerDelimiter)
	if header == "" {
		header = it.Name()
	}

	// Каждый тег разбирается отдельно, поэтому текст вложенных тегов
	// попадает в parts и от родителя, и от потомка.
	var parts []string
	for _, n := range nodes {
		p := textfix.Fix(text(n))
		if segment.ContainsChinese(p) {
			parts = append(parts, e.segmenter.Segment(p)...)
		}
	}

	return Chapter{Header: header, Parts: parts}, nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

// elements возвращает все элементы-потомки root (без самого root) в порядке документа.
func elements(root *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

// text склеивает все текстовые узлы внутри n; содержимое script/style пропускается.
func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Template:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
