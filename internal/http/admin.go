package http

import (
	"context"
	"encoding/base64"
	"errors"
	stdhttp "net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"gerbier/site/internal/content"
	"gerbier/site/internal/imaging"
	"gerbier/site/internal/post"
)

type loginInput struct {
	Body struct {
		Username string `json:"username" required:"true"`
		Password string `json:"password" required:"true"`
	}
}

type loginOutput struct {
	Body struct {
		Token string `json:"token"`
	}
}

type authorizationInput struct {
	Authorization string `header:"Authorization"`
}

type emptyResponse struct {
	Status int
}

type listPostsOutput struct {
	Body struct {
		Posts []post.Post `json:"posts"`
	}
}

type postIDInput struct {
	ID string `path:"id"`
}

type postOutput struct {
	Body post.Post
}

type savePostInput struct {
	Body post.Post
}

type uploadImageInput struct {
	Body struct {
		Filename string `json:"filename" required:"true"`
		Data     string `json:"data" required:"true"`
		Kind     string `json:"kind,omitempty" enum:"inline,featured"`
	}
}

type uploadImageOutput struct {
	Body struct {
		ID          string `json:"id"`
		Payload     string `json:"payload"`
		Placeholder string `json:"placeholder"`
	}
}

type listCategoriesOutput struct {
	Body struct {
		Categories []post.Category `json:"categories"`
	}
}

type createCategoryInput struct {
	Body struct {
		Name string `json:"name" required:"true"`
	}
}

type categoryOutput struct {
	Status int
	Body   post.Category
}

func (s *Server) registerAdminRoutes() {
	huma.Post(s.api, "/api/login", s.loginHandler, func(op *huma.Operation) {
		op.Summary = "Sign in to the authoring surface"
	})
	huma.Post(s.api, "/api/logout", s.logoutHandler, func(op *huma.Operation) {
		op.Summary = "Revoke the current session"
		op.DefaultStatus = stdhttp.StatusNoContent
	})

	huma.Get(s.api, "/api/posts", s.listPostsHandler, func(op *huma.Operation) {
		op.Summary = "List every post, drafts included"
	})
	huma.Get(s.api, "/api/posts/{id}", s.getPostHandler, func(op *huma.Operation) {
		op.Summary = "Load a post by identifier"
	})
	huma.Put(s.api, "/api/posts", s.savePostHandler, func(op *huma.Operation) {
		op.Summary = "Create or update a post"
	})
	huma.Delete(s.api, "/api/posts/{id}", s.deletePostHandler, func(op *huma.Operation) {
		op.Summary = "Delete a post"
		op.DefaultStatus = stdhttp.StatusNoContent
	})

	huma.Post(s.api, "/api/images", s.uploadImageHandler, func(op *huma.Operation) {
		op.Summary = "Compress an image for embedding"
	})

	huma.Get(s.api, "/api/categories", s.listCategoriesHandler, func(op *huma.Operation) {
		op.Summary = "List categories"
	})
	huma.Post(s.api, "/api/categories", s.createCategoryHandler, func(op *huma.Operation) {
		op.Summary = "Create a category"
	})
}

func (s *Server) loginHandler(ctx context.Context, input *loginInput) (*loginOutput, error) {
	token, ok, err := s.auth.Login(input.Body.Username, input.Body.Password)
	if err != nil {
		s.recordError(ctx, err, "issuing session token", nil)
		return nil, huma.Error500InternalServerError("login unavailable")
	}
	if !ok {
		if s.logger != nil {
			s.logger.WithField("username", input.Body.Username).Warn("rejected login attempt")
		}
		return nil, huma.Error401Unauthorized("invalid credentials")
	}

	out := &loginOutput{}
	out.Body.Token = token
	return out, nil
}

func (s *Server) logoutHandler(_ context.Context, input *authorizationInput) (*emptyResponse, error) {
	if token := bearerFromHeader(input.Authorization); token != "" {
		s.auth.Logout(token)
	}
	return &emptyResponse{Status: stdhttp.StatusNoContent}, nil
}

func (s *Server) listPostsHandler(ctx context.Context, _ *struct{}) (*listPostsOutput, error) {
	posts, err := s.posts.GetAllPosts(ctx)
	if err != nil {
		s.recordError(ctx, err, "listing posts", nil)
		return nil, huma.Error500InternalServerError(errorFallbackMessage)
	}

	out := &listPostsOutput{}
	out.Body.Posts = posts
	if out.Body.Posts == nil {
		out.Body.Posts = []post.Post{}
	}
	return out, nil
}

func (s *Server) getPostHandler(ctx context.Context, input *postIDInput) (*postOutput, error) {
	p, err := s.posts.GetPostByID(ctx, input.ID)
	if err != nil {
		s.recordError(ctx, err, "loading post by id", logrus.Fields{"post_id": input.ID})
		return nil, huma.Error500InternalServerError(errorFallbackMessage)
	}
	if p == nil {
		return nil, huma.Error404NotFound("post not found")
	}

	return &postOutput{Body: *p}, nil
}

func (s *Server) savePostHandler(ctx context.Context, input *savePostInput) (*postOutput, error) {
	p := input.Body
	saved, err := s.posts.SavePost(ctx, &p)
	if err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(eris.Cause(err), &validationErrs) {
			return nil, huma.Error422UnprocessableEntity(validationErrs.Error())
		}
		s.recordError(ctx, err, "saving post", logrus.Fields{"post_id": p.ID})
		return nil, huma.Error500InternalServerError(errorFallbackMessage)
	}

	return &postOutput{Body: *saved}, nil
}

func (s *Server) deletePostHandler(ctx context.Context, input *postIDInput) (*emptyResponse, error) {
	if err := s.posts.DeletePost(ctx, input.ID); err != nil {
		if strings.Contains(eris.Cause(err).Error(), "required") {
			return nil, huma.Error400BadRequest("post id is required")
		}
		s.recordError(ctx, err, "deleting post", logrus.Fields{"post_id": input.ID})
		return nil, huma.Error500InternalServerError(errorFallbackMessage)
	}

	return &emptyResponse{Status: stdhttp.StatusNoContent}, nil
}

func (s *Server) uploadImageHandler(ctx context.Context, input *uploadImageInput) (*uploadImageOutput, error) {
	raw, err := base64.StdEncoding.DecodeString(stripDataURIPrefix(input.Body.Data))
	if err != nil {
		return nil, huma.Error400BadRequest("image data must be base64 encoded")
	}

	kind := imaging.Inline
	if input.Body.Kind == "featured" {
		kind = imaging.Featured
	}

	payload, err := s.compressor.Compress(ctx, raw, kind)
	if err != nil {
		s.recordError(ctx, err, "compressing image", logrus.Fields{"filename": input.Body.Filename})
		return nil, huma.Error422UnprocessableEntity("image could not be processed")
	}

	id := content.NewImageID()

	out := &uploadImageOutput{}
	out.Body.ID = id
	out.Body.Payload = payload
	out.Body.Placeholder = content.Placeholder(altFromFilename(input.Body.Filename), id)
	return out, nil
}

func (s *Server) listCategoriesHandler(ctx context.Context, _ *struct{}) (*listCategoriesOutput, error) {
	categories, err := s.posts.ListCategories(ctx)
	if err != nil {
		s.recordError(ctx, err, "listing categories", nil)
		return nil, huma.Error500InternalServerError(errorFallbackMessage)
	}

	out := &listCategoriesOutput{}
	out.Body.Categories = categories
	if out.Body.Categories == nil {
		out.Body.Categories = []post.Category{}
	}
	return out, nil
}

func (s *Server) createCategoryHandler(ctx context.Context, input *createCategoryInput) (*categoryOutput, error) {
	c, err := s.posts.CreateCategory(ctx, input.Body.Name)
	if err != nil {
		if strings.Contains(eris.Cause(err).Error(), "required") {
			return nil, huma.Error400BadRequest("category name is required")
		}
		s.recordError(ctx, err, "creating category", logrus.Fields{"category": input.Body.Name})
		return nil, huma.Error500InternalServerError(errorFallbackMessage)
	}

	return &categoryOutput{Status: stdhttp.StatusCreated, Body: *c}, nil
}

func bearerFromHeader(header string) string {
	header = strings.TrimSpace(header)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func altFromFilename(filename string) string {
	base := filename
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return strings.TrimSpace(base)
}
