package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/yamdb-api/internal/core/domain"
	"github.com/yamdb/yamdb-api/internal/core/ports"
)

// TaxonomyHandler serves categories or genres.
type TaxonomyHandler struct {
	service ports.TaxonomyService
}

func NewTaxonomyHandler(service ports.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{service: service}
}

type taxonRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

// List returns entries ordered by name, optionally filtered by ?search=.
//
// @Summary      List categories or genres
// @Tags         catalog
// @Produce      json
// @Param        search     query  string  false  "Name substring"
// @Param        page       query  int     false  "Page number"
// @Param        page_size  query  int     false  "Page size"
// @Success      200  {object}  pageResponse[domain.Taxon]
// @Router       /categories/ [get]
// @Router       /genres/ [get]
func (h *TaxonomyHandler) List(c echo.Context) error {
	page := pageRequest(c)
	items, total, err := h.service.List(c.Request().Context(), c.QueryParam("search"), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPage(c, page, total, items))
}

// Create adds an entry.
//
// @Summary      Create a category or genre
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      taxonRequest  true  "Name and slug"
// @Success      201   {object}  domain.Taxon
// @Failure      400   {object}  map[string][]string
// @Router       /categories/ [post]
// @Router       /genres/ [post]
func (h *TaxonomyHandler) Create(c echo.Context) error {
	var req taxonRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	taxon, err := h.service.Create(c.Request().Context(), domain.Taxon{Name: req.Name, Slug: req.Slug})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, taxon)
}

// Delete removes an entry and detaches it from titles.
//
// @Summary      Delete a category or genre
// @Tags         catalog
// @Security     BearerAuth
// @Param        slug  path  string  true  "Slug"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /categories/{slug}/ [delete]
// @Router       /genres/{slug}/ [delete]
func (h *TaxonomyHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("slug")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// TitleHandler serves titles.
type TitleHandler struct {
	service ports.TitleService
}

func NewTitleHandler(service ports.TitleService) *TitleHandler {
	return &TitleHandler{service: service}
}

type titleRequest struct {
	Name        *string  `json:"name" validate:"omitempty,max=256"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre" validate:"omitempty,dive,slug"`
	Category    *string  `json:"category" validate:"omitempty,slug"`
}

func (r titleRequest) toDomain() domain.TitleInput {
	return domain.TitleInput{
		Name:        r.Name,
		Year:        r.Year,
		Description: r.Description,
		Category:    r.Category,
		Genres:      r.Genre,
	}
}

type titleResponse struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Year        int              `json:"year"`
	Rating      *int             `json:"rating"`
	Description string           `json:"description"`
	Genre       []domain.Genre   `json:"genre"`
	Category    *domain.Category `json:"category"`
}

func toTitleResponse(t *domain.Title) titleResponse {
	genres := t.Genres
	if genres == nil {
		genres = []domain.Genre{}
	}
	return titleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       genres,
		Category:    t.Category,
	}
}

// List returns titles filtered by category, genre, name and year.
//
// @Summary      List titles
// @Tags         titles
// @Produce      json
// @Param        category   query  string  false  "Category slug"
// @Param        genre      query  string  false  "Genre slug"
// @Param        name       query  string  false  "Name substring"
// @Param        year       query  int     false  "Year"
// @Param        page       query  int     false  "Page number"
// @Param        page_size  query  int     false  "Page size"
// @Success      200  {object}  pageResponse[titleResponse]
// @Router       /titles/ [get]
func (h *TitleHandler) List(c echo.Context) error {
	filter := domain.TitleFilter{
		Category: c.QueryParam("category"),
		Genre:    c.QueryParam("genre"),
		Name:     c.QueryParam("name"),
	}
	if raw := c.QueryParam("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return domain.NewValidationError("year", "enter a number")
		}
		filter.Year = year
	}

	page := pageRequest(c)
	titles, total, err := h.service.List(c.Request().Context(), filter, page)
	if err != nil {
		return err
	}
	out := make([]titleResponse, 0, len(titles))
	for _, t := range titles {
		out = append(out, toTitleResponse(t))
	}
	return c.JSON(http.StatusOK, newPage(c, page, total, out))
}

// Get returns one title.
//
// @Summary      Retrieve a title
// @Tags         titles
// @Produce      json
// @Param        title_id  path      int  true  "Title id"
// @Success      200       {object}  titleResponse
// @Failure      404       {object}  map[string]string
// @Router       /titles/{title_id}/ [get]
func (h *TitleHandler) Get(c echo.Context) error {
	id, err := pathID(c, "title_id", domain.ErrTitleNotFound)
	if err != nil {
		return err
	}
	title, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTitleResponse(title))
}

// Create adds a title.
//
// @Summary      Create a title
// @Tags         titles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      titleRequest  true  "Title; genre and category by slug"
// @Success      201   {object}  titleResponse
// @Failure      400   {object}  map[string][]string
// @Router       /titles/ [post]
func (h *TitleHandler) Create(c echo.Context) error {
	var req titleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	title, err := h.service.Create(c.Request().Context(), req.toDomain())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTitleResponse(title))
}

// Update partially updates a title.
//
// @Summary      Update a title
// @Tags         titles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id  path      int           true  "Title id"
// @Param        body      body      titleRequest  true  "Fields to change"
// @Success      200       {object}  titleResponse
// @Failure      400       {object}  map[string][]string
// @Failure      404       {object}  map[string]string
// @Router       /titles/{title_id}/ [patch]
func (h *TitleHandler) Update(c echo.Context) error {
	id, err := pathID(c, "title_id", domain.ErrTitleNotFound)
	if err != nil {
		return err
	}
	var req titleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	title, err := h.service.Update(c.Request().Context(), id, req.toDomain())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTitleResponse(title))
}

// Delete removes a title with its reviews and comments.
//
// @Summary      Delete a title
// @Tags         titles
// @Security     BearerAuth
// @Param        title_id  path  int  true  "Title id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /titles/{title_id}/ [delete]
func (h *TitleHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "title_id", domain.ErrTitleNotFound)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
