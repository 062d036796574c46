// Package urlutil предоставляет утилиты для безопасной работы с URL.
package urlutil

import "net/url"

// MaskURL маскирует URL для безопасного попадания в диагностический лог.
// Скрывает path и query параметры, которые могут содержать токены или
// credentials (Pushgateway auth, DSN параметры).
// Пример: "http://pushgateway:9091/metrics/job/x" → "http://pushgateway:9091/***"
func MaskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "***invalid-url***"
	}
	// Показываем только scheme и host
	return u.Scheme + "://" + u.Host + "/***"
}
