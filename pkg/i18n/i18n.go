package i18n

import (
	"embed"
	"encoding/json"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var locales embed.FS

var (
	mu     sync.RWMutex
	bundle *goi18n.Bundle
	once   sync.Once
)

// Init builds the bundle with the embedded English and Indonesian messages.
// Calling it more than once is harmless.
func Init() {
	once.Do(func() {
		b := goi18n.NewBundle(language.English)
		b.RegisterUnmarshalFunc("json", json.Unmarshal)
		for _, name := range []string{"locales/active.en.json", "locales/active.id.json"} {
			if _, err := b.LoadMessageFileFS(locales, name); err != nil {
				panic("i18n: load embedded " + name + ": " + err.Error())
			}
		}
		mu.Lock()
		bundle = b
		mu.Unlock()
	})
}

// Load adds an extra message file from disk, overriding embedded messages with the same id.
func Load(path string) error {
	Init()
	mu.Lock()
	defer mu.Unlock()
	_, err := bundle.LoadMessageFile(path)
	return err
}

// Translate localizes messageID for the Accept-Language style list langs.
// fallback is returned when no bundle entry matches.
func Translate(messageID, fallback string, langs ...string) string {
	Init()
	mu.RLock()
	defer mu.RUnlock()

	loc := goi18n.NewLocalizer(bundle, langs...)
	if msg, _ := loc.Localize(&goi18n.LocalizeConfig{MessageID: messageID}); msg != "" {
		return msg
	}
	if fallback != "" {
		return fallback
	}
	return messageID
}
