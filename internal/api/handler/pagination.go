package handler

import (
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/yamdb-api/internal/core/domain"
)

// pageResponse is the envelope of every paginated listing.
type pageResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// pageRequest reads ?page= and ?page_size=; bad values fall back to defaults.
func pageRequest(c echo.Context) domain.PageRequest {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	return domain.PageRequest{Page: page, Size: size}.Normalize()
}

func newPage[T any](c echo.Context, page domain.PageRequest, total int64, results []T) pageResponse[T] {
	if results == nil {
		results = []T{}
	}
	resp := pageResponse[T]{Count: total, Results: results}
	if int64(page.Page*page.Size) < total {
		resp.Next = pageLink(c, page.Page+1)
	}
	if page.Page > 1 {
		resp.Previous = pageLink(c, page.Page-1)
	}
	return resp
}

func pageLink(c echo.Context, page int) *string {
	u := *c.Request().URL
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	link := (&url.URL{Path: u.Path, RawQuery: u.RawQuery}).String()
	return &link
}
