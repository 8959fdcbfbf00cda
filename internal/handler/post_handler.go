package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"board/internal/auth"
	"board/internal/errors"
	"board/internal/service"
	"board/internal/view"
)

// PostHandler handles post endpoints.
type PostHandler struct {
	svc service.PostService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(svc service.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

// PostRequest represents a new or edited message.
type PostRequest struct {
	Message string `json:"message" form:"message" validate:"required"`
}

// DeletePostRequest identifies the post to delete.
type DeletePostRequest struct {
	ID uint `json:"id" form:"id" validate:"required"`
}

func (h *PostHandler) bindMessage(c echo.Context) (string, error) {
	var req PostRequest
	if err := c.Bind(&req); err != nil {
		return "", errors.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return "", errors.Validation("message cannot be empty")
	}
	return req.Message, nil
}

// Create godoc
// @Summary Create a post
// @Tags posts
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param request body PostRequest true "Message"
// @Success 302 "Redirect to /"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /post [post]
func (h *PostHandler) Create(c echo.Context) error {
	scope := auth.ScopeFrom(c)
	message, err := h.bindMessage(c)
	if err != nil {
		return err
	}
	if _, err := h.svc.Create(c.Request().Context(), scope.User, message); err != nil {
		return err
	}
	return done(c, "/", "post created")
}

// Edit godoc
// @Summary Edit one of your posts
// @Tags posts
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param id query int true "Post ID"
// @Param request body PostRequest true "New message"
// @Success 302 "Redirect to /"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /post/edit [post]
func (h *PostHandler) Edit(c echo.Context) error {
	scope := auth.ScopeFrom(c)
	id, err := parseID(c.QueryParam("id"), "invalid post id")
	if err != nil {
		return err
	}
	message, err := h.bindMessage(c)
	if err != nil {
		return err
	}
	if err := h.svc.Edit(c.Request().Context(), scope.User, id, message); err != nil {
		return err
	}
	return done(c, "/", "post updated")
}

// Delete godoc
// @Summary Delete one of your posts
// @Tags posts
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param request body DeletePostRequest true "Post ID"
// @Success 302 "Redirect to /"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /post/delete [post]
func (h *PostHandler) Delete(c echo.Context) error {
	scope := auth.ScopeFrom(c)
	var req DeletePostRequest
	if err := c.Bind(&req); err != nil {
		return errors.Validation("invalid post id")
	}
	if err := c.Validate(&req); err != nil {
		return errors.Validation("invalid post id")
	}
	if err := h.svc.Delete(c.Request().Context(), scope.User, req.ID); err != nil {
		return err
	}
	return done(c, "/", "post deleted")
}

// Show renders a single post.
func (h *PostHandler) Show(c echo.Context) error {
	id, err := parseID(c.Param("id"), "invalid post id")
	if err != nil {
		return err
	}
	post, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if WantsJSON(c) {
		return c.JSON(http.StatusOK, post)
	}
	return c.Render(http.StatusOK, view.PostPage, view.PostData{
		Base: base(auth.ScopeFrom(c), "Post by "+post.Username),
		Post: post,
	})
}

// Index renders the front page with the most recent posts.
func (h *PostHandler) Index(c echo.Context) error {
	posts, err := h.svc.ListRecent(c.Request().Context(), service.DefaultRecentPosts)
	if err != nil {
		return err
	}
	if WantsJSON(c) {
		return c.JSON(http.StatusOK, posts)
	}
	return c.Render(http.StatusOK, view.IndexPage, view.IndexData{
		Base:  base(auth.ScopeFrom(c), "The Board"),
		Posts: posts,
	})
}
