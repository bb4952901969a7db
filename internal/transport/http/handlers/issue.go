package handlers

import (
	"net/http"
	"strconv"
	"time"

	apierrors "github.com/pribylovaa/go-single-use-links/internal/errors"
	"github.com/pribylovaa/go-single-use-links/internal/metrics"
	"github.com/pribylovaa/go-single-use-links/internal/service"
)

// issueResponse — ответ выпуска ссылки.
type issueResponse struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	ValidUntil int64  `json:"validuntil"`
}

// IssueLink выпускает одноразовую подписанную ссылку.
//
// GET /issue?file=<resource>&timeout=<seconds>
//
// Маппинг ошибок:
//   - пустой file, кривой или неположительный timeout -> 400 с указанием параметра;
//   - прочее (подписант, хранилище) -> 500 без раскрытия деталей.
func (h *Handlers) IssueLink(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	file := q.Get("file")
	if file == "" {
		apierrors.WriteError(w, r, service.ErrEmptyResource)
		return
	}

	seconds, err := strconv.ParseInt(q.Get("timeout"), 10, 64)
	if err != nil || seconds <= 0 {
		apierrors.WriteError(w, r, service.ErrInvalidLifetime)
		return
	}

	link, err := h.Service.IssueLink(r.Context(), file, time.Duration(seconds)*time.Second)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	metrics.LinksIssued.Inc()

	writeJSON(w, http.StatusOK, issueResponse{
		ID:         link.ID.String(),
		URL:        link.URL,
		ValidUntil: link.ExpiresAt.Unix(),
	})
}
