package http

import (
	"context"
	"encoding/base64"
	"fmt"
	stdhttp "net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"gerbier/site/internal/db"
	"gerbier/site/internal/http/templates"
	"gerbier/site/internal/post"
	"gerbier/site/internal/render"
	"gerbier/site/internal/slug"
)

const (
	htmlContentType      = "text/html; charset=utf-8"
	recentPostsLimit     = 3
	excerptLimit         = 180
	errorFallbackMessage = "Nous ne pouvons pas traiter votre demande pour le moment."
	notFoundMessage      = "Article non trouvé. Il a peut-être été déplacé ou supprimé."
)

type htmlResponse struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Location    string `header:"Location"`
	Body        []byte
}

type pdfResponse struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Disposition string `header:"Content-Disposition"`
	Body        []byte
}

type postInput struct {
	Slug string `path:"slug"`
}

type publicationsInput struct {
	Category string `query:"category"`
}

type healthResponse struct {
	Status int
	Body   struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
}

func (s *Server) registerHomeRoute() {
	huma.Get(s.api, "/", s.homeHandler, htmlOperation("Home page", stdhttp.StatusInternalServerError))
}

func (s *Server) registerBioRoute() {
	huma.Get(s.api, "/bio", s.bioHandler, htmlOperation("Biography page", stdhttp.StatusInternalServerError))
}

func (s *Server) registerPublicationsRoute() {
	huma.Get(s.api, "/publications", s.publicationsHandler, htmlOperation(
		"Publications directory",
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) registerPostRoute() {
	huma.Get(s.api, "/posts/{slug}", s.postHandler, htmlOperation(
		"Read a publication",
		stdhttp.StatusNotFound,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) registerPostPDFRoute() {
	huma.Get(s.api, "/posts/{slug}/pdf", s.postPDFHandler, func(op *huma.Operation) {
		op.Summary = "Download a publication's PDF document"
	})
}

func (s *Server) registerHealthRoute() {
	huma.Get(s.api, "/healthz", s.healthHandler, func(op *huma.Operation) {
		op.Summary = "Health check"
	})
}

func (s *Server) homeHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	posts, err := s.posts.GetPublishedPosts(ctx)
	if err != nil {
		// degrade to an empty list, the page itself still renders
		s.recordError(ctx, err, "loading recent posts", nil)
		posts = nil
	}

	if len(posts) > recentPostsLimit {
		posts = posts[:recentPostsLimit]
	}

	data := templates.HomePageData{
		Author: s.siteAuthor,
		Recent: s.postCards(posts),
	}

	body, err := renderComponent(ctx, templates.HomePage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering home page", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) bioHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	body, err := renderComponent(ctx, templates.BioPage(templates.BioPageData{Author: s.siteAuthor}))
	if err != nil {
		s.recordError(ctx, err, "rendering bio page", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) publicationsHandler(ctx context.Context, input *publicationsInput) (*htmlResponse, error) {
	selected := strings.TrimSpace(input.Category)

	posts, err := s.posts.GetPublishedPosts(ctx)
	if err != nil {
		s.recordError(ctx, err, "loading publications", nil)
		posts = nil
	}

	categories, err := s.posts.ListCategories(ctx)
	if err != nil {
		s.recordError(ctx, err, "loading categories", nil)
		categories = nil
	}

	if selected != "" {
		filtered := make([]post.Post, 0, len(posts))
		for _, p := range posts {
			if slug.Slugify(p.Category) == selected {
				filtered = append(filtered, p)
			}
		}
		posts = filtered
	}

	chips := make([]templates.CategoryChip, 0, len(categories))
	for _, c := range categories {
		chips = append(chips, templates.CategoryChip{
			Name:     c.Name,
			Slug:     c.Slug,
			Selected: c.Slug == selected,
		})
	}

	data := templates.PublicationsPageData{
		Categories: chips,
		Selected:   selected,
		Posts:      s.postCards(posts),
	}

	body, err := renderComponent(ctx, templates.PublicationsPage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering publications page", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) postHandler(ctx context.Context, input *postInput) (*htmlResponse, error) {
	p, err := s.publishedPost(ctx, input.Slug)
	if err != nil {
		s.recordError(ctx, err, "loading post", logrus.Fields{"slug": input.Slug})
	}
	if p == nil {
		return s.renderErrorResponse(ctx, stdhttp.StatusNotFound, notFoundMessage)
	}

	if p.ContentType == post.ContentTypePDF {
		data := templates.PDFPageData{
			Title:       p.Title,
			Author:      p.Author,
			DocumentURL: "/posts/" + p.Slug + "/pdf",
		}
		body, renderErr := renderComponent(ctx, templates.PDFPage(data))
		if renderErr != nil {
			s.recordError(ctx, renderErr, "rendering pdf page", logrus.Fields{"slug": p.Slug})
			return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
		}
		return newHTMLResponse(stdhttp.StatusOK, body), nil
	}

	html, err := s.renderer.RenderHTML(p.Content)
	if err != nil {
		s.recordError(ctx, err, "rendering post content", logrus.Fields{"slug": p.Slug})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	data := templates.PostPageData{
		Title:         p.Title,
		Author:        p.Author,
		PublishedDate: publishedDate(p),
		Tags:          p.Tags,
		Category:      p.Category,
		FeaturedImage: p.FeaturedImage,
		HTML:          html,
	}

	body, err := renderComponent(ctx, templates.PostPage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering post page", logrus.Fields{"slug": p.Slug})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) postPDFHandler(ctx context.Context, input *postInput) (*pdfResponse, error) {
	p, err := s.publishedPost(ctx, input.Slug)
	if err != nil {
		s.recordError(ctx, err, "loading pdf post", logrus.Fields{"slug": input.Slug})
		return nil, huma.Error500InternalServerError(errorFallbackMessage)
	}
	if p == nil || p.ContentType != post.ContentTypePDF || p.PDFData == "" {
		return nil, huma.Error404NotFound(notFoundMessage)
	}

	document, err := base64.StdEncoding.DecodeString(stripDataURIPrefix(p.PDFData))
	if err != nil {
		s.recordError(ctx, eris.Wrap(err, "decoding pdf payload"), "decoding pdf payload", logrus.Fields{"slug": p.Slug})
		return nil, huma.Error500InternalServerError(errorFallbackMessage)
	}

	return &pdfResponse{
		Status:      stdhttp.StatusOK,
		ContentType: "application/pdf",
		Disposition: fmt.Sprintf("inline; filename=%q", p.Slug+".pdf"),
		Body:        document,
	}, nil
}

func (s *Server) healthHandler(ctx context.Context, _ *struct{}) (*healthResponse, error) {
	resp := &healthResponse{}
	resp.Body.Status = "ok"
	resp.Body.Database = "ok"

	sqlDB, err := db.SQLDB(s.db)
	if err != nil {
		s.recordError(ctx, err, "obtaining sql db", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	} else if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
		s.recordError(ctx, pingErr, "pinging database", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	}

	if resp.Status == 0 {
		resp.Status = stdhttp.StatusOK
	}

	return resp, nil
}

// publishedPost loads a post by slug and hides drafts from the public
// surface. A nil post with a nil error means not found.
func (s *Server) publishedPost(ctx context.Context, rawSlug string) (*post.Post, error) {
	p, err := s.posts.GetPostBySlug(ctx, strings.TrimSpace(rawSlug))
	if err != nil {
		return nil, err
	}
	if p == nil || !p.Published {
		return nil, nil
	}
	return p, nil
}

func (s *Server) postCards(posts []post.Post) []templates.PostCard {
	cards := make([]templates.PostCard, 0, len(posts))
	for _, p := range posts {
		cards = append(cards, templates.PostCard{
			Title:         p.Title,
			Slug:          p.Slug,
			Excerpt:       s.excerptFor(p),
			Category:      p.Category,
			Tags:          p.Tags,
			PublishedDate: publishedDate(&p),
			FeaturedImage: p.FeaturedImage,
			IsPDF:         p.ContentType == post.ContentTypePDF,
		})
	}
	return cards
}

func (s *Server) excerptFor(p post.Post) string {
	if strings.TrimSpace(p.Excerpt) != "" {
		return p.Excerpt
	}
	if p.ContentType == post.ContentTypePDF {
		return ""
	}

	html, err := s.renderer.RenderHTML(p.Content)
	if err != nil {
		return ""
	}
	return render.PlainExcerpt(html, excerptLimit)
}

func publishedDate(p *post.Post) string {
	if p.PublishedAt == nil {
		return ""
	}
	return p.PublishedAt.Format("02/01/2006")
}

func stripDataURIPrefix(payload string) string {
	if idx := strings.Index(payload, "base64,"); idx >= 0 {
		return payload[idx+len("base64,"):]
	}
	return payload
}

func newHTMLResponse(status int, body []byte) *htmlResponse {
	return &htmlResponse{
		Status:      status,
		ContentType: htmlContentType,
		Body:        body,
	}
}

func htmlOperation(summary string, statuses ...int) func(op *huma.Operation) {
	return func(op *huma.Operation) {
		if summary != "" {
			op.Summary = summary
		}
		if op.Responses == nil {
			op.Responses = map[string]*huma.Response{}
		}

		statusCodes := append([]int{stdhttp.StatusOK}, statuses...)
		for _, status := range statusCodes {
			code := strconv.Itoa(status)
			op.Responses[code] = &huma.Response{
				Description: stdhttp.StatusText(status),
				Content: map[string]*huma.MediaType{
					htmlContentType: {
						Schema: &huma.Schema{Type: "string"},
					},
				},
			}
		}
	}
}

func (s *Server) renderErrorResponse(ctx context.Context, status int, message string) (*htmlResponse, error) {
	label := fmt.Sprintf("%d %s", status, stdhttp.StatusText(status))
	component := templates.ErrorPage(templates.ErrorPageData{
		StatusLabel: label,
		Message:     message,
	})

	body, err := renderComponent(ctx, component)
	if err != nil {
		s.recordError(ctx, err, "rendering error page", logrus.Fields{"status": status})
		fallback := []byte(fmt.Sprintf("<html><body><h1>%s</h1><p>%s</p></body></html>", label, message))
		return newHTMLResponse(status, fallback), nil
	}

	return newHTMLResponse(status, body), nil
}

func (s *Server) recordError(ctx context.Context, err error, message string, fields logrus.Fields) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}
		entry.Error(message)
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	if s.sentry != nil {
		s.sentry.CaptureException(err)
	}
}
