package signer

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// signAndParse — подписывает ссылку и разбирает её обратно в path и query.
func signAndParse(t *testing.T, s Signer, resource string, id uuid.UUID, expiresAt time.Time) *url.URL {
	t.Helper()

	signed, err := s.Sign(resource, id, expiresAt)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	return u
}

func TestHMACSigner_SignVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	s := NewHMACSigner("cdn.example.com", "/content", "secret")
	id := uuid.New()
	exp := time.Now().Add(time.Hour).UTC()

	u := signAndParse(t, s, "video.mp4", id, exp)
	require.Equal(t, "https", u.Scheme)
	require.Equal(t, "cdn.example.com", u.Host)
	require.Equal(t, "/content/video.mp4", u.Path)

	q := u.Query()
	require.Equal(t, id.String(), q.Get("id"))
	require.NotEmpty(t, q.Get("exp"))
	require.NotEmpty(t, q.Get("sig"))

	require.NoError(t, s.Verify("video.mp4", id, q))
}

func TestHMACSigner_Verify_TamperedParams(t *testing.T) {
	t.Parallel()

	s := NewHMACSigner("cdn.example.com", "/content", "secret")
	id := uuid.New()
	u := signAndParse(t, s, "video.mp4", id, time.Now().Add(time.Hour))
	q := u.Query()

	// Чужой ресурс.
	require.ErrorIs(t, s.Verify("other.mp4", id, q), ErrBadSignature)

	// Чужой id.
	require.ErrorIs(t, s.Verify("video.mp4", uuid.New(), q), ErrBadSignature)

	// Продлённый exp.
	tampered := cloneValues(q)
	tampered.Set("exp", "9999999999")
	require.ErrorIs(t, s.Verify("video.mp4", id, tampered), ErrBadSignature)

	// Подменённая подпись.
	tampered = cloneValues(q)
	tampered.Set("sig", "AAAA"+tampered.Get("sig")[4:])
	require.ErrorIs(t, s.Verify("video.mp4", id, tampered), ErrBadSignature)
}

func TestHMACSigner_Verify_MissingParams(t *testing.T) {
	t.Parallel()

	s := NewHMACSigner("cdn.example.com", "/content", "secret")
	id := uuid.New()
	u := signAndParse(t, s, "video.mp4", id, time.Now().Add(time.Hour))
	q := u.Query()

	noSig := cloneValues(q)
	noSig.Del("sig")
	require.ErrorIs(t, s.Verify("video.mp4", id, noSig), ErrBadSignature)

	noExp := cloneValues(q)
	noExp.Del("exp")
	require.ErrorIs(t, s.Verify("video.mp4", id, noExp), ErrBadSignature)

	badExp := cloneValues(q)
	badExp.Set("exp", "not-a-number")
	require.ErrorIs(t, s.Verify("video.mp4", id, badExp), ErrBadSignature)
}

func TestHMACSigner_Verify_WrongSecret(t *testing.T) {
	t.Parallel()

	a := NewHMACSigner("cdn.example.com", "/content", "secret-a")
	b := NewHMACSigner("cdn.example.com", "/content", "secret-b")

	id := uuid.New()
	u := signAndParse(t, a, "video.mp4", id, time.Now().Add(time.Hour))

	require.ErrorIs(t, b.Verify("video.mp4", id, u.Query()), ErrBadSignature)
}

// TestHMACSigner_Verify_ExpiredLinkStillAuthentic — подпись истёкшей ссылки
// сходится: решение об истечении принимает редимер, а не подписант.
func TestHMACSigner_Verify_ExpiredLinkStillAuthentic(t *testing.T) {
	t.Parallel()

	s := NewHMACSigner("cdn.example.com", "/content", "secret")
	id := uuid.New()
	u := signAndParse(t, s, "video.mp4", id, time.Now().Add(-time.Hour))

	require.NoError(t, s.Verify("video.mp4", id, u.Query()))
}

func TestHMACSigner_DefaultContentPath(t *testing.T) {
	t.Parallel()

	s := NewHMACSigner("cdn.example.com", "", "secret")
	u := signAndParse(t, s, "video.mp4", uuid.New(), time.Now().Add(time.Hour))
	require.Equal(t, "/content/video.mp4", u.Path)
}

func TestHMACSigner_Sign_EmptyDomain(t *testing.T) {
	t.Parallel()

	s := NewHMACSigner("", "/content", "secret")
	_, err := s.Sign("video.mp4", uuid.New(), time.Now().Add(time.Hour))
	require.Error(t, err)
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}
