package epub

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
)

const containerPath = "META-INF/container.xml"

var (
	ErrNoContainer = errors.New("epub: META-INF/container.xml not found")
	ErrNoRootFile  = errors.New("epub: no rootfile in container.xml")
	ErrMissingItem = errors.New("epub: manifest item not found in archive")
)

// Структуры разбора container.xml и OPF
type container struct {
	XMLName   xml.Name   `xml:"container"`
	RootFiles []rootFile `xml:"rootfiles>rootfile"`
}

type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

type opfPackage struct {
	XMLName  xml.Name `xml:"package"`
	Title    string   `xml:"metadata>title"`
	Manifest struct {
		Items []Item `xml:"item"`
	} `xml:"manifest"`
}

// Item — элемент манифеста книги.
type Item struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`

	// путь внутри архива
	path string
}

// Name возвращает внутреннее имя элемента: href относительно OPF без URL-экранирования.
func (it Item) Name() string {
	if name, err := url.PathUnescape(it.Href); err == nil {
		return name
	}
	return it.Href
}

// IsDocument — XHTML/HTML контент, не навигационный документ EPUB3.
func (it Item) IsDocument() bool {
	switch it.MediaType {
	case "application/xhtml+xml", "text/html":
	default:
		return false
	}
	for _, p := range strings.Fields(it.Properties) {
		if p == "nav" {
			return false
		}
	}
	return true
}

// Book — открытый EPUB архив.
type Book struct {
	Title string
	Items []Item

	files  map[string]*zip.File
	closer io.Closer
}

// Open открывает EPUB файл по пути.
func Open(filePath string) (*Book, error) {
	rc, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening EPUB file: %w", err)
	}
	b, err := newBook(&rc.Reader)
	if err != nil {
		rc.Close()
		return nil, err
	}
	b.closer = rc
	return b, nil
}

// NewReader читает EPUB из произвольного io.ReaderAt.
func NewReader(r io.ReaderAt, size int64) (*Book, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening EPUB archive: %w", err)
	}
	return newBook(zr)
}

func newBook(zr *zip.Reader) (*Book, error) {
	b := &Book{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		b.files[f.Name] = f
	}

	var c container
	if err := b.decodeXML(containerPath, &c); err != nil {
		if errors.Is(err, ErrMissingItem) {
			return nil, ErrNoContainer
		}
		return nil, fmt.Errorf("parsing container.xml: %w", err)
	}
	if len(c.RootFiles) == 0 {
		return nil, ErrNoRootFile
	}

	opfPath := c.RootFiles[0].FullPath
	var pkg opfPackage
	if err := b.decodeXML(opfPath, &pkg); err != nil {
		return nil, fmt.Errorf("parsing OPF file %s: %w", opfPath, err)
	}

	opfDir := path.Dir(opfPath)
	b.Title = strings.TrimSpace(pkg.Title)
	b.Items = make([]Item, 0, len(pkg.Manifest.Items))
	for _, it := range pkg.Manifest.Items {
		it.path = path.Join(opfDir, it.Name())
		b.Items = append(b.Items, it)
	}
	return b, nil
}

// Documents возвращает контентные документы в порядке манифеста.
func (b *Book) Documents() []Item {
	docs := make([]Item, 0, len(b.Items))
	for _, it := range b.Items {
		if it.IsDocument() {
			docs = append(docs, it)
		}
	}
	return docs
}

// ReadItem читает содержимое элемента манифеста.
func (b *Book) ReadItem(it Item) ([]byte, error) {
	return b.readFile(it.path)
}

func (b *Book) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

func (b *Book) readFile(name string) ([]byte, error) {
	f, ok := b.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingItem, name)
	}
	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (b *Book) decodeXML(name string, v any) error {
	data, err := b.readFile(name)
	if err != nil {
		return err
	}
	return xml.Unmarshal(data, v)
}
