package calendar

import (
	"embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yml
var localesFS embed.FS

// Catalog is a Translator and Names backed by the embedded locale files
type Catalog struct {
	lang      string
	localizer *i18n.Localizer
}

// NewCatalog loads the embedded translations for lang. An empty lang is
// taken from $LC_ALL, $LC_TIME or $LANG.
func NewCatalog(lang string) (*Catalog, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yml", yaml.Unmarshal)

	entries, err := localesFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localesFS, "locales/"+entry.Name()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", entry.Name(), err)
		}
	}

	if lang == "" {
		lang = envLanguage()
	}
	lang = normalizeLanguage(lang)

	return &Catalog{
		lang:      lang,
		localizer: i18n.NewLocalizer(bundle, lang, "en"),
	}, nil
}

// Language returns the BCP 47 tag the catalog was created for
func (c *Catalog) Language() string {
	return c.lang
}

// Translate returns the translation of msgID, or msgID when there is none
func (c *Catalog) Translate(msgID string) string {
	s, err := c.localizer.Localize(&i18n.LocalizeConfig{MessageID: msgID})
	if err != nil || s == "" {
		return msgID
	}
	return s
}

// MonthName returns the localized full month name
func (c *Catalog) MonthName(m time.Month) string {
	id := "month:" + strconv.Itoa(int(m))
	if s := c.Translate(id); s != id {
		return s
	}
	return m.String()
}

// WeekdayAbbrev returns the localized abbreviated weekday name
func (c *Catalog) WeekdayAbbrev(d time.Weekday) string {
	id := "weekday:abbr:" + strconv.Itoa(int(d))
	if s := c.Translate(id); s != id {
		return s
	}
	return d.String()[:3]
}

func envLanguage() string {
	for _, key := range []string{"LC_ALL", "LC_TIME", "LANG"} {
		if v := os.Getenv(key); v != "" && v != "C" && v != "POSIX" {
			return v
		}
	}
	return "en"
}

// normalizeLanguage turns a POSIX locale such as "de_DE.UTF-8@euro" into a
// BCP 47 tag.
func normalizeLanguage(locale string) string {
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	locale = strings.ReplaceAll(locale, "_", "-")

	tag, err := language.Parse(locale)
	if err != nil {
		return "en"
	}
	return tag.String()
}
