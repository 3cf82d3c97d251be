// Package pagination extracts optional limit/offset query parameters.
// Endpoints default to returning the full result set; a limit is applied
// only when the caller asks for one.
package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const MaxLimit = 500

// Params holds pagination parameters extracted from a request.
type Params struct {
	Limit  int
	Offset int
}

// FromContext extracts limit/offset from the echo context. A missing or
// non-positive limit means unbounded.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 0 {
		limit = 0
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// Bounded reports whether a limit was requested.
func (p Params) Bounded() bool { return p.Limit > 0 }

// Window applies the params to an in-memory slice length, returning the
// [start, end) index range.
func (p Params) Window(total int) (int, int) {
	start := p.Offset
	if start > total {
		start = total
	}
	end := total
	if p.Bounded() && start+p.Limit < end {
		end = start + p.Limit
	}
	return start, end
}
