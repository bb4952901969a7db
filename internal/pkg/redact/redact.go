// redact прячет чувствительные значения в логах.
package redact

// TokenID оставляет от идентификатора токена первые 8 символов:
// достаточно для корреляции записей, недостаточно для погашения.
func TokenID(s string) string {
	if len(s) <= 8 {
		return "***"
	}

	return s[:8] + "***"
}

// Secret полностью скрывает значение ключа подписи.
func Secret() string { return "[REDACTED_SECRET]" }
