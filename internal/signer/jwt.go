package signer

import (
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTSigner подписывает ссылки компактным HS256 JWT в параметре sig.
//
// Формат ссылки: https://<domain><contentPath>/<resource>?id=<uuid>&sig=<jwt>.
// Ресурс, id и срок зашиты в клеймы токена, поэтому отдельный параметр exp
// не нужен.
type JWTSigner struct {
	domain      string
	contentPath string
	secret      []byte
	issuer      string
}

type linkClaims struct {
	Resource string `json:"res"`
	jwt.RegisteredClaims
}

// NewJWTSigner создаёт подписанта. Пустой contentPath означает "/content".
func NewJWTSigner(domain, contentPath, secret, issuer string) *JWTSigner {
	if contentPath == "" {
		contentPath = "/content"
	}

	return &JWTSigner{
		domain:      domain,
		contentPath: contentPath,
		secret:      []byte(secret),
		issuer:      issuer,
	}
}

// Sign возвращает подписанную ссылку на ресурс.
func (s *JWTSigner) Sign(resource string, id uuid.UUID, expiresAt time.Time) (string, error) {
	const op = "signer.JWTSigner.Sign"

	if s.domain == "" {
		return "", fmt.Errorf("%s: empty domain", op)
	}

	claims := linkClaims{
		Resource: resource,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	u := url.URL{
		Scheme: "https",
		Host:   s.domain,
		Path:   path.Join(s.contentPath, resource),
	}

	q := url.Values{}
	q.Set("id", id.String())
	q.Set("sig", signed)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Verify проверяет подпись JWT из параметра sig и соответствие клеймов запросу.
// Истечение клейма exp здесь сознательно не проверяется (см. док пакета):
// парсер работает с выключенной валидацией клеймов, сверяются только подпись,
// алгоритм, издатель, ресурс и id.
func (s *JWTSigner) Verify(resource string, id uuid.UUID, query url.Values) error {
	const op = "signer.JWTSigner.Verify"

	sig := query.Get("sig")
	if sig == "" {
		return fmt.Errorf("%s: %w", op, ErrBadSignature)
	}

	token, err := jwt.ParseWithClaims(sig, &linkClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrBadSignature)
			}

			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrBadSignature)
	}

	claims, ok := token.Claims.(*linkClaims)
	if !ok || !token.Valid {
		return fmt.Errorf("%s: %w", op, ErrBadSignature)
	}

	if claims.Issuer != s.issuer || claims.Resource != resource || claims.Subject != id.String() {
		return fmt.Errorf("%s: %w", op, ErrBadSignature)
	}

	return nil
}

var _ Signer = (*JWTSigner)(nil)
