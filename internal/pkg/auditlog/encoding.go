package auditlog

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// normalizeName приводит имя (уровня, кодировки, потока) к нижнему
// регистру без обрамляющих пробелов для регистронезависимого сравнения.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// legacyEncodings — алиасы кодировок, привычные по конфигурациям
// legacy ETL (cp-нотация и latin-1), которых нет в IANA индексе
// под этими именами.
var legacyEncodings = map[string]encoding.Encoding{
	"cp1251":   charmap.Windows1251,
	"cp866":    charmap.CodePage866,
	"koi8r":    charmap.KOI8R,
	"latin-1":  charmap.ISO8859_1,
	"latin1":   charmap.ISO8859_1,
	"cp1252":   charmap.Windows1252,
	"iso88595": charmap.ISO8859_5,
}

// resolveEncoding разрешает имя текстовой кодировки из конфигурации
// в encoding.Encoding. Возвращает nil для UTF-8 (записи уже в UTF-8,
// трансформация не нужна). Неизвестное имя — ошибка конфигурации.
func resolveEncoding(name string) (encoding.Encoding, error) {
	switch normalizeName(name) {
	case "", "utf-8", "utf8":
		return nil, nil
	}

	if enc, ok := legacyEncodings[normalizeName(name)]; ok {
		return enc, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// newEncoder создаёт encoder с заменой несериализуемых рун:
// символ вне целевой кодировки заменяется substitute-байтом,
// а не роняет запись. Для nil encoding возвращает nil (passthrough).
func newEncoder(enc encoding.Encoding) *encoding.Encoder {
	if enc == nil {
		return nil
	}
	return encoding.ReplaceUnsupported(enc.NewEncoder())
}
