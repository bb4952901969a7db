package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-single-use-links/internal/signer"
	"github.com/pribylovaa/go-single-use-links/internal/storage/memory"
)

// clock — управляемый источник времени для сценарных тестов.
type clock struct {
	mu  sync.Mutex
	cur time.Time
}

func newClock(unix int64) *clock {
	return &clock{cur: time.Unix(unix, 0).UTC()}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *clock) Set(unix int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = time.Unix(unix, 0).UTC()
}

// newServiceWithMemory — сервис поверх реального хранилища в памяти
// и реального HMAC-подписанта.
func newServiceWithMemory(t *testing.T, clk *clock) *Service {
	t.Helper()
	cfg := testLinksCfg()
	svc := New(memory.New(), signer.NewHMACSigner(cfg.Domain, cfg.ContentPath, cfg.Secret), cfg)
	return svc.WithNow(clk.Now)
}

func TestRedeemToken_HappyPath_ThenReplay(t *testing.T) {
	clk := newClock(1000)
	svc := newServiceWithMemory(t, clk)
	ctx := context.Background()

	link, err := svc.IssueLink(ctx, "video.mp4", 300*time.Second)
	require.NoError(t, err)

	// Первое предъявление в пределах срока — доступ разрешён.
	clk.Set(1100)
	token, err := svc.RedeemToken(ctx, link.ID.String())
	require.NoError(t, err)
	require.Equal(t, "video.mp4", token.Resource)
	require.Equal(t, link.ID, token.ID)

	// Повтор той же ссылки — токена больше нет.
	clk.Set(1150)
	_, err = svc.RedeemToken(ctx, link.ID.String())
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestRedeemToken_Expired_ConsumesRecord(t *testing.T) {
	clk := newClock(1000)
	svc := newServiceWithMemory(t, clk)
	ctx := context.Background()

	link, err := svc.IssueLink(ctx, "video.mp4", 10*time.Second)
	require.NoError(t, err)

	// Срок истёк: отказ, но запись изъята тем же consume.
	clk.Set(1020)
	_, err = svc.RedeemToken(ctx, link.ID.String())
	require.ErrorIs(t, err, ErrTokenExpired)

	// Повтор видит уже отсутствие записи, а не второй expired.
	_, err = svc.RedeemToken(ctx, link.ID.String())
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestRedeemToken_ExpiryBoundary(t *testing.T) {
	clk := newClock(1000)
	svc := newServiceWithMemory(t, clk)
	ctx := context.Background()

	link, err := svc.IssueLink(ctx, "video.mp4", 300*time.Second)
	require.NoError(t, err)

	// Ровно в момент истечения токен уже недействителен.
	clk.Set(1300)
	_, err = svc.RedeemToken(ctx, link.ID.String())
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestRedeemToken_BadID_NoStoreCall(t *testing.T) {
	// Мок без ожиданий: любой вызов хранилища провалит тест.
	svc, _, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	_, err := svc.RedeemToken(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptyTokenID)

	_, err = svc.RedeemToken(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, ErrInvalidTokenID)
}

func TestRedeemToken_UnknownID(t *testing.T) {
	clk := newClock(1000)
	svc := newServiceWithMemory(t, clk)

	_, err := svc.RedeemToken(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestRedeemToken_StoreError_NotConflatedWithNotFound(t *testing.T) {
	svc, mockSt, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	storeErr := errors.New("storage.postgres.ConsumeToken: connection reset")
	mockSt.EXPECT().
		ConsumeToken(gomock.Any(), gomock.Any()).
		Return(nil, storeErr)

	_, err := svc.RedeemToken(context.Background(), uuid.NewString())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrTokenNotFound)
	require.NotErrorIs(t, err, ErrTokenExpired)
	require.ErrorIs(t, err, storeErr)
}

func TestRedeemToken_Concurrent_SingleWinner(t *testing.T) {
	clk := newClock(1000)
	svc := newServiceWithMemory(t, clk)
	ctx := context.Background()

	link, err := svc.IssueLink(ctx, "video.mp4", time.Hour)
	require.NoError(t, err)

	const goroutines = 64

	var (
		wg       sync.WaitGroup
		allowed  atomic.Int64
		notFound atomic.Int64
	)
	start := make(chan struct{})

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			_, err := svc.RedeemToken(ctx, link.ID.String())
			switch {
			case err == nil:
				allowed.Add(1)
			case errors.Is(err, ErrTokenNotFound):
				notFound.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	require.Equal(t, int64(1), allowed.Load(), "ровно один победитель")
	require.Equal(t, int64(goroutines-1), notFound.Load())
}
