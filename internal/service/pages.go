package service

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/templui/plateshare/internal/markdown"
)

var ErrPageNotFound = errors.New("page not found")

// Page is a static markdown page such as about or contact.
type Page struct {
	Slug    string
	Title   string
	Summary string
	Content template.HTML
}

type PageService struct {
	fsys   fs.FS
	parser *markdown.Parser
	reload bool

	mu    sync.RWMutex
	pages map[string]*Page
}

// NewPageService reads pages/<slug>.md from fsys. With reload set every
// lookup reads the file again, so edits show up without a restart.
func NewPageService(fsys fs.FS, reload bool) *PageService {
	return &PageService{
		fsys:   fsys,
		parser: markdown.NewParser(),
		reload: reload,
		pages:  make(map[string]*Page),
	}
}

func (s *PageService) Page(slug string) (*Page, error) {
	if !s.reload {
		s.mu.RLock()
		page, ok := s.pages[slug]
		s.mu.RUnlock()
		if ok {
			return page, nil
		}
	}

	page, err := s.load(slug)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pages[slug] = page
	s.mu.Unlock()
	return page, nil
}

func (s *PageService) load(slug string) (*Page, error) {
	if slug == "" || strings.ContainsAny(slug, "/\\.") {
		return nil, ErrPageNotFound
	}

	source, err := fs.ReadFile(s.fsys, path.Join("pages", slug+".md"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("failed to read page %s: %w", slug, err)
	}

	doc, err := s.parser.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page %s: %w", slug, err)
	}

	title := doc.String("title")
	if title == "" {
		title = cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
	}

	return &Page{
		Slug:    slug,
		Title:   title,
		Summary: doc.String("summary"),
		Content: doc.HTML,
	}, nil
}
