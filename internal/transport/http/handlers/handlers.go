// handlers содержит HTTP-эндпоинты сервиса одноразовых ссылок.
// Здесь выполняется только разбор запроса и маппинг ошибок доменного слоя
// в HTTP; вся бизнес-логика находится в пакете service.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pribylovaa/go-single-use-links/internal/config"
	"github.com/pribylovaa/go-single-use-links/internal/service"
	"github.com/pribylovaa/go-single-use-links/internal/signer"
)

// ContentOrigin — нижестоящий источник защищаемого контента,
// к которому пропускается запрос после успешного погашения токена.
type ContentOrigin interface {
	Serve(w http.ResponseWriter, r *http.Request, key string)
}

// Handlers агрегирует зависимости HTTP-слоя.
type Handlers struct {
	Service *service.Service
	Signer  signer.Signer
	Origin  ContentOrigin
	Links   config.LinksConfig
}

// New создаёт Handlers.
func New(svc *service.Service, sg signer.Signer, origin ContentOrigin, links config.LinksConfig) *Handlers {
	return &Handlers{
		Service: svc,
		Signer:  sg,
		Origin:  origin,
		Links:   links,
	}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
