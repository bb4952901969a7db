// origin отдаёт защищаемый контент из MinIO/S3.
//
// Это «нижестоящий» обработчик, к которому пропускается запрос после успешного
// погашения токена; сам по себе он ничего не знает про токены и подписи.
package origin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pribylovaa/go-single-use-links/internal/config"
	"github.com/pribylovaa/go-single-use-links/internal/pkg/log"
)

// S3Origin — источник контента поверх minio-go клиента.
type S3Origin struct {
	cfg    config.S3Config
	client *mclient.Client
}

// New создает и инициализирует клиент MinIO.
// Нормализует endpoint (убирает схему), подбирает Secure по схеме
// и выполняет fail-fast-проверку доступности бакета.
func New(ctx context.Context, cfg config.S3Config) (*S3Origin, error) {
	const op = "origin.New"

	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.RootUser, cfg.RootPassword, ""),
		Secure: secure,
	})

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, cfg.Bucket)
	}

	return &S3Origin{cfg: cfg, client: client}, nil
}

// Serve стримит объект key из бакета в ответ.
func (o *S3Origin) Serve(w http.ResponseWriter, r *http.Request, key string) {
	const op = "origin.Serve"

	lg := log.From(r.Context())

	obj, err := o.client.GetObject(r.Context(), o.cfg.Bucket, key, mclient.GetObjectOptions{})
	if err != nil {
		lg.Error("origin_get_failed",
			slog.String("op", op),
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		if resp := mclient.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			http.NotFound(w, r)
			return
		}

		lg.Error("origin_stat_failed",
			slog.String("op", op),
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))

	if _, err := io.Copy(w, obj); err != nil {
		// Ответ уже начат; остаётся зафиксировать обрыв в логах.
		lg.Warn("origin_copy_interrupted",
			slog.String("op", op),
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
	}
}
