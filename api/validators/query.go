package validators

import (
	"net/http"

	"github.com/angelmondragon/icecream-backend/pkg/pagination"
)

// PaginationFromQuery reads limit and order leniently; bad values fall back
// to def and newest first.
func PaginationFromQuery(r *http.Request, def int) pagination.Params {
	q := r.URL.Query()
	return pagination.Parse(q.Get("limit"), q.Get("order"), def)
}
