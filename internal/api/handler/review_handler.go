package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/yamdb-api/internal/core/domain"
	"github.com/yamdb/yamdb-api/internal/core/ports"
)

// ReviewHandler serves reviews and the comments under them.
type ReviewHandler struct {
	service ports.ReviewService
}

func NewReviewHandler(service ports.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

type reviewRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score" validate:"omitempty,min=1,max=10"`
}

type reviewResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func toReviewResponse(r *domain.Review) reviewResponse {
	return reviewResponse{ID: r.ID, Text: r.Text, Author: r.Author, Score: r.Score, PubDate: r.PubDate}
}

type commentRequest struct {
	Text string `json:"text" validate:"required"`
}

type commentResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

func toCommentResponse(c *domain.Comment) commentResponse {
	return commentResponse{ID: c.ID, Text: c.Text, Author: c.Author, PubDate: c.PubDate}
}

func reviewPath(c echo.Context) (titleID, reviewID int64, err error) {
	if titleID, err = pathID(c, "title_id", domain.ErrTitleNotFound); err != nil {
		return 0, 0, err
	}
	if c.Param("review_id") == "" {
		return titleID, 0, nil
	}
	reviewID, err = pathID(c, "review_id", domain.ErrReviewNotFound)
	return titleID, reviewID, err
}

// ListReviews returns the reviews of a title.
//
// @Summary      List reviews
// @Tags         reviews
// @Produce      json
// @Param        title_id   path   int  true   "Title id"
// @Param        page       query  int  false  "Page number"
// @Param        page_size  query  int  false  "Page size"
// @Success      200  {object}  pageResponse[reviewResponse]
// @Failure      404  {object}  map[string]string
// @Router       /titles/{title_id}/reviews/ [get]
func (h *ReviewHandler) ListReviews(c echo.Context) error {
	titleID, _, err := reviewPath(c)
	if err != nil {
		return err
	}
	page := pageRequest(c)
	reviews, total, err := h.service.ListReviews(c.Request().Context(), titleID, page)
	if err != nil {
		return err
	}
	out := make([]reviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, toReviewResponse(r))
	}
	return c.JSON(http.StatusOK, newPage(c, page, total, out))
}

// GetReview returns one review.
//
// @Summary      Retrieve a review
// @Tags         reviews
// @Produce      json
// @Param        title_id   path      int  true  "Title id"
// @Param        review_id  path      int  true  "Review id"
// @Success      200        {object}  reviewResponse
// @Failure      404        {object}  map[string]string
// @Router       /titles/{title_id}/reviews/{review_id}/ [get]
func (h *ReviewHandler) GetReview(c echo.Context) error {
	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return err
	}
	review, err := h.service.GetReview(c.Request().Context(), titleID, reviewID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReviewResponse(review))
}

// CreateReview posts the caller's review of a title.
//
// @Summary      Create a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id  path      int            true  "Title id"
// @Param        body      body      reviewRequest  true  "Text and score"
// @Success      201       {object}  reviewResponse
// @Failure      400       {object}  map[string][]string
// @Failure      401       {object}  map[string]string
// @Router       /titles/{title_id}/reviews/ [post]
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	titleID, _, err := reviewPath(c)
	if err != nil {
		return err
	}
	var req reviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	review, err := h.service.CreateReview(c.Request().Context(), ctxUser(c), titleID,
		ports.ReviewInput{Text: req.Text, Score: req.Score})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toReviewResponse(review))
}

// UpdateReview edits a review. Allowed for its author, moderators and admins.
//
// @Summary      Update a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id   path      int            true  "Title id"
// @Param        review_id  path      int            true  "Review id"
// @Param        body       body      reviewRequest  true  "Fields to change"
// @Success      200        {object}  reviewResponse
// @Failure      403        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Router       /titles/{title_id}/reviews/{review_id}/ [patch]
func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return err
	}
	var req reviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	review, err := h.service.UpdateReview(c.Request().Context(), ctxUser(c), c.Request().Method,
		titleID, reviewID, ports.ReviewInput{Text: req.Text, Score: req.Score})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReviewResponse(review))
}

// DeleteReview removes a review with its comments.
//
// @Summary      Delete a review
// @Tags         reviews
// @Security     BearerAuth
// @Param        title_id   path  int  true  "Title id"
// @Param        review_id  path  int  true  "Review id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /titles/{title_id}/reviews/{review_id}/ [delete]
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteReview(c.Request().Context(), ctxUser(c), c.Request().Method, titleID, reviewID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListComments returns the comments on a review.
//
// @Summary      List comments
// @Tags         comments
// @Produce      json
// @Param        title_id   path   int  true   "Title id"
// @Param        review_id  path   int  true   "Review id"
// @Param        page       query  int  false  "Page number"
// @Param        page_size  query  int  false  "Page size"
// @Success      200  {object}  pageResponse[commentResponse]
// @Failure      404  {object}  map[string]string
// @Router       /titles/{title_id}/reviews/{review_id}/comments/ [get]
func (h *ReviewHandler) ListComments(c echo.Context) error {
	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return err
	}
	page := pageRequest(c)
	comments, total, err := h.service.ListComments(c.Request().Context(), titleID, reviewID, page)
	if err != nil {
		return err
	}
	out := make([]commentResponse, 0, len(comments))
	for _, cm := range comments {
		out = append(out, toCommentResponse(cm))
	}
	return c.JSON(http.StatusOK, newPage(c, page, total, out))
}

func commentID(c echo.Context) (int64, error) {
	return pathID(c, "comment_id", domain.ErrCommentNotFound)
}

// GetComment returns one comment.
//
// @Summary      Retrieve a comment
// @Tags         comments
// @Produce      json
// @Param        title_id    path      int  true  "Title id"
// @Param        review_id   path      int  true  "Review id"
// @Param        comment_id  path      int  true  "Comment id"
// @Success      200         {object}  commentResponse
// @Failure      404         {object}  map[string]string
// @Router       /titles/{title_id}/reviews/{review_id}/comments/{comment_id}/ [get]
func (h *ReviewHandler) GetComment(c echo.Context) error {
	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return err
	}
	id, err := commentID(c)
	if err != nil {
		return err
	}
	comment, err := h.service.GetComment(c.Request().Context(), titleID, reviewID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCommentResponse(comment))
}

// CreateComment posts a comment on a review.
//
// @Summary      Create a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id   path      int             true  "Title id"
// @Param        review_id  path      int             true  "Review id"
// @Param        body       body      commentRequest  true  "Text"
// @Success      201        {object}  commentResponse
// @Failure      400        {object}  map[string][]string
// @Failure      401        {object}  map[string]string
// @Router       /titles/{title_id}/reviews/{review_id}/comments/ [post]
func (h *ReviewHandler) CreateComment(c echo.Context) error {
	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return err
	}
	var req commentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.service.CreateComment(c.Request().Context(), ctxUser(c), titleID, reviewID, req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toCommentResponse(comment))
}

// UpdateComment edits a comment. Allowed for its author, moderators and admins.
//
// @Summary      Update a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id    path      int             true  "Title id"
// @Param        review_id   path      int             true  "Review id"
// @Param        comment_id  path      int             true  "Comment id"
// @Param        body        body      commentRequest  true  "Text"
// @Success      200         {object}  commentResponse
// @Failure      403         {object}  map[string]string
// @Failure      404         {object}  map[string]string
// @Router       /titles/{title_id}/reviews/{review_id}/comments/{comment_id}/ [patch]
func (h *ReviewHandler) UpdateComment(c echo.Context) error {
	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return err
	}
	id, err := commentID(c)
	if err != nil {
		return err
	}
	var req commentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.service.UpdateComment(c.Request().Context(), ctxUser(c), c.Request().Method,
		titleID, reviewID, id, req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCommentResponse(comment))
}

// DeleteComment removes a comment.
//
// @Summary      Delete a comment
// @Tags         comments
// @Security     BearerAuth
// @Param        title_id    path  int  true  "Title id"
// @Param        review_id   path  int  true  "Review id"
// @Param        comment_id  path  int  true  "Comment id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /titles/{title_id}/reviews/{review_id}/comments/{comment_id}/ [delete]
func (h *ReviewHandler) DeleteComment(c echo.Context) error {
	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return err
	}
	id, err := commentID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteComment(c.Request().Context(), ctxUser(c), c.Request().Method, titleID, reviewID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
