package i18n

import (
	"fmt"
	"sync/atomic"
)

var locale atomic.Value

func init() {
	locale.Store("en")
}

func Locale() string {
	return locale.Load().(string)
}

// L formats the message of key in the current locale. Keys missing from a
// locale fall back to English.
func L(key string, args ...any) string {
	msg, ok := translations[Locale()][key]

	if !ok {
		msg = EN[key]
	}

	return fmt.Sprintf(msg, args...)
}

func SetLocale(name string) error {
	if name == "" {
		return nil
	}

	if _, exist := translations[name]; !exist {
		return fmt.Errorf("unsupported locale %s", name)
	}

	locale.Store(name)

	return nil
}
