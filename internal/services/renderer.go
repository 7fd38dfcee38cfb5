package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/ledongthuc/pdf"

	"alfredoptarigan/intelliapply/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer turns resume data into PDF documents.
type Renderer interface {
	ResumePDF(ctx context.Context, resume *models.ResumeSchema) ([]byte, error)
	CoverLetterPDF(ctx context.Context, resume *models.ResumeSchema, letter string) ([]byte, error)
}

type htmlPrinter func(ctx context.Context, html string) ([]byte, error)

type pageCounter func(pdfBytes []byte) (int, error)

type renderer struct {
	standard    *template.Template
	compact     *template.Template
	coverLetter *template.Template
	print       htmlPrinter
	countPages  pageCounter
}

// NewRenderer renders through headless Chrome.
func NewRenderer(timeout time.Duration) (Renderer, error) {
	return newRenderer(chromePrinter(timeout), countPDFPages)
}

func newRenderer(print htmlPrinter, count pageCounter) (*renderer, error) {
	load := func(page string) (*template.Template, error) {
		t, err := template.New(page).Funcs(templateFuncs).ParseFS(templateFS,
			"templates/"+page, "templates/resume_header.html", "templates/resume_sections.html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		return t, nil
	}

	r := &renderer{print: print, countPages: count}
	var err error
	if r.standard, err = load("resume.html"); err != nil {
		return nil, err
	}
	if r.compact, err = load("resume_compact.html"); err != nil {
		return nil, err
	}
	if r.coverLetter, err = load("cover_letter.html"); err != nil {
		return nil, err
	}
	return r, nil
}

// ResumePDF renders the standard layout and falls back to the compact one when
// the result runs past a single page.
func (r *renderer) ResumePDF(ctx context.Context, resume *models.ResumeSchema) ([]byte, error) {
	pdfBytes, err := r.renderPDF(ctx, r.standard, resume)
	if err != nil {
		return nil, err
	}

	pages, err := r.countPages(pdfBytes)
	if err != nil {
		log.Printf("⚠️  Failed to count resume pages, keeping standard layout: %v\n", err)
		return pdfBytes, nil
	}
	if pages <= 1 {
		return pdfBytes, nil
	}

	log.Printf("📄 Standard layout ran to %d pages, switching to compact\n", pages)
	return r.renderPDF(ctx, r.compact, resume)
}

func (r *renderer) CoverLetterPDF(ctx context.Context, resume *models.ResumeSchema, letter string) ([]byte, error) {
	data := struct {
		Resume     *models.ResumeSchema
		LetterHTML template.HTML
	}{
		Resume:     resume,
		LetterHTML: letterHTML(letter),
	}
	return r.renderPDF(ctx, r.coverLetter, data)
}

func (r *renderer) renderPDF(ctx context.Context, t *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", t.Name(), err)
	}
	return r.print(ctx, buf.String())
}

// letterHTML escapes the letter and keeps its line breaks.
func letterHTML(letter string) template.HTML {
	escaped := template.HTMLEscapeString(strings.TrimSpace(letter))
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br/>"))
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"title": func(s string) string {
		s = strings.ReplaceAll(s, "_", " ")
		if s == "" {
			return s
		}
		r := []rune(s)
		r[0] = unicode.ToUpper(r[0])
		return string(r)
	},
	"contactLine": func(p models.PersonalInfo) []string {
		var parts []string
		for _, v := range []string{p.Email, p.Phone, p.Location, p.LinkedIn, p.GitHub, p.Portfolio} {
			if v = strings.TrimSpace(v); v != "" {
				parts = append(parts, v)
			}
		}
		return parts
	},
}

func chromePrinter(timeout time.Duration) htmlPrinter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return func(ctx context.Context, html string) ([]byte, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)

		allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
		defer cancel()

		taskCtx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		// PathEscape encodes spaces as %20, which data URLs require
		dataURL := "data:text/html;charset=utf-8," + url.PathEscape(html)

		var pdfData []byte
		err := chromedp.Run(taskCtx,
			chromedp.Navigate(dataURL),
			chromedp.WaitReady("body"),
			chromedp.ActionFunc(func(ctx context.Context) error {
				var err error
				pdfData, _, err = page.PrintToPDF().
					WithPrintBackground(true).
					WithPaperWidth(8.5).
					WithPaperHeight(11.0).
					WithPreferCSSPageSize(true).
					Do(ctx)
				return err
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("chrome pdf generation failed: %w", err)
		}

		return pdfData, nil
	}
}

func countPDFPages(pdfBytes []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return 0, fmt.Errorf("failed to read rendered pdf: %w", err)
	}
	return reader.NumPage(), nil
}
