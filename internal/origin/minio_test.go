package origin

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pribylovaa/go-single-use-links/internal/config"
)

// Интеграционные тесты для пакета origin:
// — поднимают реальный MinIO через testcontainers-go;
// — проверяют:
//    New: успешное подключение (с и без схемы в endpoint) и ошибку при
//    отсутствии бакета;
//    Serve: стриминг существующего объекта с заголовками и 404 на
//    отсутствующий ключ.
//
// Запуск:
//   GO_TEST_INTEGRATION=1 go test ./internal/origin -v -race -count=1

func startMinio(t *testing.T, createBucket bool) (*S3Origin, func(), string) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	const (
		image        = "docker.io/minio/minio:latest"
		rootUser     = "root"
		rootPassword = "rootpass"
		bucket       = "content"
	)
	req := tc.ContainerRequest{
		Image: image,
		Env: map[string]string{
			"MINIO_ROOT_USER":     rootUser,
			"MINIO_ROOT_PASSWORD": rootPassword,
		},
		Cmd:          []string{"server", "/data", "--console-address", ":9001"},
		ExposedPorts: []string{"9000/tcp", "9001/tcp"},
		WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "9000/tcp")
	endpoint := fmt.Sprintf("http://%s:%s", host, port.Port())

	if createBucket {
		admin, err := mclient.New(host+":"+port.Port(), &mclient.Options{
			Creds:  credentials.NewStaticV4(rootUser, rootPassword, ""),
			Secure: false,
		})
		require.NoError(t, err)
		err = admin.MakeBucket(ctx, bucket, mclient.MakeBucketOptions{Region: "us-east-1"})
		require.NoError(t, err)
	}

	cfg := config.S3Config{
		Endpoint:     endpoint,
		Bucket:       bucket,
		RootUser:     rootUser,
		RootPassword: rootPassword,
	}

	o, newErr := New(ctx, cfg)
	if !createBucket {
		require.Error(t, newErr)
		_ = c.Terminate(context.Background())
		return nil, func() {}, ""
	}
	require.NoError(t, newErr)

	cleanup := func() {
		_ = c.Terminate(context.Background())
	}
	return o, cleanup, endpoint
}

// putObject — кладёт объект в бакет напрямую, мимо origin.
func putObject(t *testing.T, o *S3Origin, key, contentType string, body []byte) {
	t.Helper()
	_, err := o.client.PutObject(context.Background(), o.cfg.Bucket, key,
		bytes.NewReader(body), int64(len(body)),
		mclient.PutObjectOptions{ContentType: contentType})
	require.NoError(t, err)
}

func TestIntegration_New_BucketMustExist(t *testing.T) {
	// Без предварительного создания бакета New должен вернуть ошибку.
	_, _, _ = startMinio(t, false)
}

func TestIntegration_New_EndpointWithoutScheme_OK(t *testing.T) {
	o, cleanup, endpoint := startMinio(t, true)
	defer cleanup()
	_ = o

	u, err := url.Parse(endpoint)
	require.NoError(t, err)

	o2, err := New(context.Background(), config.S3Config{
		Endpoint:     u.Host,
		Bucket:       "content",
		RootUser:     "root",
		RootPassword: "rootpass",
	})
	require.NoError(t, err)
	_ = o2
}

func TestIntegration_Serve_OK(t *testing.T) {
	o, cleanup, _ := startMinio(t, true)
	defer cleanup()

	body := []byte("fake mp4 payload")
	putObject(t, o, "video.mp4", "video/mp4", body)

	req := httptest.NewRequest(http.MethodGet, "/content/video.mp4", nil)
	rec := httptest.NewRecorder()
	o.Serve(rec, req, "video.mp4")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, body, rec.Body.Bytes())
	require.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	require.Equal(t, fmt.Sprint(len(body)), rec.Header().Get("Content-Length"))
}

func TestIntegration_Serve_MissingKey_NotFound(t *testing.T) {
	o, cleanup, _ := startMinio(t, true)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/content/missing.mp4", nil)
	rec := httptest.NewRecorder()
	o.Serve(rec, req, "missing.mp4")

	require.Equal(t, http.StatusNotFound, rec.Code)
}
