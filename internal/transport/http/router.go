package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-single-use-links/internal/transport/http/handlers"
	"github.com/pribylovaa/go-single-use-links/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(h *handlers.Handlers, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	// Выпуск ссылок.
	root.Get("/issue", h.IssueLink)

	// Погашение: защищаемый контент под настроенным префиксом.
	contentPath := strings.TrimSuffix(h.Links.ContentPath, "/")
	if contentPath == "" {
		contentPath = "/content"
	}
	root.Get(contentPath+"/*", h.Content)

	return root
}
