package i18n

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	// LangParam is the query parameter used to pick a language.
	LangParam = "lang"
	// LangCookie stores the visitor's language choice.
	LangCookie = "st_lang"
)

// Negotiator picks a catalog locale for a request.
type Negotiator struct {
	locales []string
	matcher language.Matcher
}

// NewNegotiator builds a negotiator over the catalog's locales with
// defaultLocale preferred when nothing matches.
func NewNegotiator(c *Catalog, defaultLocale string) *Negotiator {
	locales := c.Locales()
	if c.Has(defaultLocale) {
		ordered := []string{defaultLocale}
		for _, l := range locales {
			if l != defaultLocale {
				ordered = append(ordered, l)
			}
		}
		locales = ordered
	}

	tags := make([]language.Tag, 0, len(locales))
	kept := make([]string, 0, len(locales))
	for _, l := range locales {
		tag, err := language.Parse(l)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		kept = append(kept, l)
	}
	return &Negotiator{locales: kept, matcher: language.NewMatcher(tags)}
}

// Default returns the fallback locale.
func (n *Negotiator) Default() string {
	if len(n.locales) == 0 {
		return BaseLocale
	}
	return n.locales[0]
}

// Supported returns the locales in preference order.
func (n *Negotiator) Supported() []string {
	return append([]string(nil), n.locales...)
}

// Match returns the best supported locale for the given BCP 47 values.
func (n *Negotiator) Match(values ...string) string {
	var tags []language.Tag
	for _, v := range values {
		if tag, err := language.Parse(strings.TrimSpace(v)); err == nil {
			tags = append(tags, tag)
		}
	}
	return n.matchTags(tags)
}

func (n *Negotiator) matchTags(tags []language.Tag) string {
	if len(tags) == 0 || len(n.locales) == 0 {
		return n.Default()
	}
	_, idx, conf := n.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(n.locales) {
		return n.Default()
	}
	return n.locales[idx]
}

// Resolve picks the locale for r from the lang query parameter, then the
// language cookie, then Accept-Language. The bool reports whether the
// choice came from the query and should be persisted.
func (n *Negotiator) Resolve(r *http.Request) (string, bool) {
	if r == nil {
		return n.Default(), false
	}
	if v := strings.TrimSpace(r.URL.Query().Get(LangParam)); v != "" {
		if tag, err := language.Parse(v); err == nil {
			return n.matchTags([]language.Tag{tag}), true
		}
	}
	if c, err := r.Cookie(LangCookie); err == nil {
		if tag, err := language.Parse(c.Value); err == nil {
			return n.matchTags([]language.Tag{tag}), false
		}
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			return n.matchTags(tags), false
		}
	}
	return n.Default(), false
}

// SetCookie persists locale on the response.
func SetCookie(w http.ResponseWriter, locale string) {
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookie,
		Value:    locale,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
