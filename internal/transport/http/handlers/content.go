package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/go-single-use-links/internal/errors"
	"github.com/pribylovaa/go-single-use-links/internal/metrics"
	"github.com/pribylovaa/go-single-use-links/internal/service"
)

// Content — погашение токена и выдача защищаемого контента.
//
// GET <content_path>/<resource>?id=<uuid>&...подпись...
//
// Порядок решений:
//  1. отсутствие/пустой/кривой id -> 400, до хранилища дело не доходит;
//  2. битая подпись ссылки -> 403;
//  3. погашение: разрешено -> запрос уходит источнику контента как есть;
//     токена нет или срок истёк -> 302 на fallback с err=not_found
//     (наружи эти исходы сознательно неразличимы, чтобы не давать
//     перебирать идентификаторы); сбой хранилища -> 500, никогда не
//     редирект — временный сбой не должен выглядеть как «уже использовано».
func (h *Handlers) Content(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "*")
	q := r.URL.Query()

	// Первое вхождение id выигрывает (семантика url.Values.Get).
	rawID := q.Get("id")
	if rawID == "" {
		metrics.Redemptions.WithLabelValues(metrics.OutcomeClientError).Inc()
		apierrors.WriteError(w, r, service.ErrEmptyTokenID)
		return
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		metrics.Redemptions.WithLabelValues(metrics.OutcomeClientError).Inc()
		apierrors.WriteError(w, r, service.ErrInvalidTokenID)
		return
	}

	if err := h.Signer.Verify(resource, id, q); err != nil {
		metrics.Redemptions.WithLabelValues(metrics.OutcomeClientError).Inc()
		apierrors.WriteError(w, r, err)
		return
	}

	token, err := h.Service.RedeemToken(r.Context(), rawID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenNotFound):
			metrics.Redemptions.WithLabelValues(metrics.OutcomeNotFound).Inc()
			h.redirectFallback(w, r)
		case errors.Is(err, service.ErrTokenExpired):
			metrics.Redemptions.WithLabelValues(metrics.OutcomeExpired).Inc()
			h.redirectFallback(w, r)
		default:
			metrics.Redemptions.WithLabelValues(metrics.OutcomeError).Inc()
			apierrors.WriteError(w, r, err)
		}
		return
	}

	metrics.Redemptions.WithLabelValues(metrics.OutcomeAllowed).Inc()

	// Ресурс берём из погашенной записи: хранилище — источник истины.
	h.Origin.Serve(w, r, token.Resource)
}

// redirectFallback отправляет клиента на страницу повторной аутентификации.
// Код ошибки в параметре err один для всех отказов.
func (h *Handlers) redirectFallback(w http.ResponseWriter, r *http.Request) {
	dest := h.Links.FallbackURL

	if u, err := url.Parse(dest); err == nil {
		q := u.Query()
		q.Set("err", "not_found")
		u.RawQuery = q.Encode()
		dest = u.String()
	}

	http.Redirect(w, r, dest, http.StatusFound)
}
