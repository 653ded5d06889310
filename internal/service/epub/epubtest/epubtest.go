// Package epubtest собирает минимальные EPUB архивы для тестов.
package epubtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"testing"
)

// Doc — один XHTML документ книги.
type Doc struct {
	Href string // путь относительно OPF, напр. "text/ch1.xhtml"
	Body string // содержимое <body>
}

// Build возвращает байты EPUB с OPF в OEBPS/content.opf и документами в порядке docs.
// В манифест также добавляется навигационный документ, который не должен попадать в главы.
func Build(title string, docs ...Doc) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	write := func(name, content string) error {
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		_, err = w.Write([]byte(content))
		return err
	}

	if err := write("mimetype", "application/epub+zip"); err != nil {
		return nil, err
	}
	container := `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`
	if err := write("META-INF/container.xml", container); err != nil {
		return nil, err
	}

	var manifest, spine bytes.Buffer
	manifest.WriteString(`    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>` + "\n")
	manifest.WriteString(`    <item id="css" href="style.css" media-type="text/css"/>` + "\n")
	for i, d := range docs {
		fmt.Fprintf(&manifest, `    <item id="doc%d" href="%s" media-type="application/xhtml+xml"/>`+"\n", i, d.Href)
		fmt.Fprintf(&spine, `    <itemref idref="doc%d"/>`+"\n", i)
	}
	opf := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>%s</dc:title>
  </metadata>
  <manifest>
%s  </manifest>
  <spine>
%s  </spine>
</package>`, title, manifest.String(), spine.String())
	if err := write("OEBPS/content.opf", opf); err != nil {
		return nil, err
	}
	if err := write("OEBPS/nav.xhtml", xhtml(`<nav><h1>目录</h1></nav>`)); err != nil {
		return nil, err
	}
	if err := write("OEBPS/style.css", "body { margin: 0 }"); err != nil {
		return nil, err
	}
	for _, d := range docs {
		name, err := url.PathUnescape(d.Href)
		if err != nil {
			return nil, err
		}
		if err := write("OEBPS/"+name, xhtml(d.Body)); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile собирает EPUB и сохраняет его во временную директорию теста.
func WriteFile(t testing.TB, title string, docs ...Doc) string {
	t.Helper()
	data, err := Build(title, docs...)
	if err != nil {
		t.Fatalf("build epub: %v", err)
	}
	p := filepath.Join(t.TempDir(), "book.epub")
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("write epub: %v", err)
	}
	return p
}

func xhtml(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>t</title></head>
<body>` + body + `</body>
</html>`
}
