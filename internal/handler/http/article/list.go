package article

import (
	"net/http"
	"strconv"
	"time"

	"catchup-feed/internal/common/pagination"
	"catchup-feed/internal/handler/http/auth"
	"catchup-feed/internal/handler/http/respond"
	"catchup-feed/internal/pkg/search"
	"catchup-feed/internal/repository"
)

type ListHandler struct {
	Articles   repository.ArticleRepository
	Pagination pagination.Config
}

// ServeHTTP lists or searches the authenticated user's articles.
//
// Query params:
//   - keyword: space-separated AND-joined search terms; when absent, falls
//     back to a plain paginated list (page/limit).
//   - topic_id, from, to: optional filters, applied alongside keyword.
//
// @Summary      List or search articles
// @Tags         articles
// @Security     BearerAuth
// @Produce      json
// @Param        keyword query string false "space-separated AND keywords"
// @Param        topic_id query int false "filter by matched topic id"
// @Param        from query string false "RFC3339 lower bound on published_at"
// @Param        to query string false "RFC3339 upper bound on published_at"
// @Param        page query int false "pagination page, 1-based (ignored when keyword is set)"
// @Param        limit query int false "pagination limit (ignored when keyword is set)"
// @Success      200 {array} DTO
// @Failure      400 {string} string "invalid input"
// @Router       /articles [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserFromContext(r.Context())
	q := r.URL.Query()

	keywordParam := q.Get("keyword")
	if keywordParam == "" {
		h.list(w, r, userID, q)
		return
	}

	keywords, err := search.ParseKeywords(keywordParam, search.DefaultMaxKeywordCount, search.DefaultMaxKeywordLength)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	filters, err := parseFilters(q)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	list, err := h.Articles.Search(r.Context(), userID, keywords, filters)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(list))
}

func (h ListHandler) list(w http.ResponseWriter, r *http.Request, userID string, q map[string][]string) {
	params, err := pagination.ParseQueryParams(r, h.Pagination)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	offset := (params.Page - 1) * params.Limit

	list, err := h.Articles.ListPaginated(r.Context(), userID, offset, params.Limit)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(list))
}

func parseFilters(q map[string][]string) (repository.ArticleSearchFilters, error) {
	var filters repository.ArticleSearchFilters

	if v := getParam(q, "topic_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filters, errInvalidTopicID
		}
		filters.TopicID = &id
	}
	if v := getParam(q, "from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filters, errInvalidFrom
		}
		filters.From = &t
	}
	if v := getParam(q, "to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filters, errInvalidTo
		}
		filters.To = &t
	}
	return filters, nil
}

func getParam(q map[string][]string, key string) string {
	vs, ok := q[key]
	if !ok || len(vs) == 0 {
		return ""
	}
	return vs[0]
}
