package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	siteerrors "github.com/safetrade/site/internal/errors"
)

// BaseLocale is the locale every other catalog falls back to.
const BaseLocale = "en-US"

//go:embed locales/*.yaml
var embedded embed.FS

type catalogFile struct {
	Locale   string         `yaml:"locale"`
	Name     string         `yaml:"name"`
	Messages map[string]any `yaml:"messages"`
}

type localeCatalog struct {
	name     string
	messages map[string]string
}

// Catalog holds the flattened messages of every loaded locale.
type Catalog struct {
	base    string
	locales map[string]*localeCatalog
}

// LoadEmbedded loads the catalogs compiled into the binary.
func LoadEmbedded() (*Catalog, error) {
	return Load(embedded)
}

// Load reads locales/*.yaml from fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, siteerrors.New("S010").Wrap(err)
	}
	if len(paths) == 0 {
		return nil, siteerrors.New("S010").WithDetail("no locales/*.yaml files")
	}
	sort.Strings(paths)

	c := &Catalog{base: BaseLocale, locales: map[string]*localeCatalog{}}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, siteerrors.New("S010").WithDetail(p).Wrap(err)
		}
		if err := c.add(p, data); err != nil {
			return nil, err
		}
	}
	if _, ok := c.locales[BaseLocale]; !ok {
		return nil, siteerrors.New("S011").WithDetailf("base locale %s is missing", BaseLocale)
	}
	return c, nil
}

func (c *Catalog) add(p string, data []byte) error {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return siteerrors.New("S010").WithDetail(p).Wrap(err)
	}

	locale := strings.TrimSpace(file.Locale)
	if locale == "" {
		return siteerrors.New("S010").WithDetailf("%s: locale is required", p)
	}
	if want := strings.TrimSuffix(path.Base(p), ".yaml"); locale != want {
		return siteerrors.New("S010").WithDetailf("%s: locale %q must match file name %q", p, locale, want)
	}
	if _, dup := c.locales[locale]; dup {
		return siteerrors.New("S010").WithDetailf("%s: locale %q defined twice", p, locale)
	}
	if len(file.Messages) == 0 {
		return siteerrors.New("S010").WithDetailf("%s: messages map is required", p)
	}

	flat := make(map[string]string)
	if err := flatten("", file.Messages, flat); err != nil {
		return siteerrors.New("S010").WithDetail(p).Wrap(err)
	}
	name := file.Name
	if name == "" {
		name = locale
	}
	c.locales[locale] = &localeCatalog{name: name, messages: flat}
	return nil
}

func flatten(prefix string, in map[string]any, out map[string]string) error {
	for k, v := range in {
		key := strings.TrimSpace(k)
		if key == "" {
			return fmt.Errorf("blank key under %q", prefix)
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		switch val := v.(type) {
		case map[string]any:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		case string:
			out[key] = val
		case int, int64, float64, bool:
			out[key] = fmt.Sprint(val)
		case nil:
			return fmt.Errorf("key %q has no value", key)
		default:
			return fmt.Errorf("key %q: unsupported value of type %T", key, v)
		}
	}
	return nil
}

// Locales returns the loaded locale identifiers, base locale first.
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.locales))
	for locale := range c.locales {
		if locale != c.base {
			out = append(out, locale)
		}
	}
	sort.Strings(out)
	return append([]string{c.base}, out...)
}

// Has reports whether locale was loaded.
func (c *Catalog) Has(locale string) bool {
	_, ok := c.locales[locale]
	return ok
}

// Name returns the display name of locale.
func (c *Catalog) Name(locale string) string {
	if lc, ok := c.locales[locale]; ok {
		return lc.name
	}
	return locale
}

// Message returns the message for key in locale, falling back to the base
// locale.
func (c *Catalog) Message(locale, key string) (string, bool) {
	if lc, ok := c.locales[locale]; ok {
		if msg, ok := lc.messages[key]; ok {
			return msg, true
		}
	}
	if locale != c.base {
		if msg, ok := c.locales[c.base].messages[key]; ok {
			return msg, true
		}
	}
	return "", false
}

// Missing returns base-locale keys that locale does not define, sorted.
func (c *Catalog) Missing(locale string) []string {
	lc, ok := c.locales[locale]
	if !ok {
		return nil
	}
	var out []string
	for key := range c.locales[c.base].messages {
		if _, ok := lc.messages[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// Translator returns a Translator bound to locale. Unknown locales use the
// base locale.
func (c *Catalog) Translator(locale string) Translator {
	if !c.Has(locale) {
		locale = c.base
	}
	return catalogTranslator{catalog: c, locale: locale}
}

type catalogTranslator struct {
	catalog *Catalog
	locale  string
}

func (t catalogTranslator) T(key string) string {
	if msg, ok := t.catalog.Message(t.locale, key); ok {
		return msg
	}
	return key
}

func (t catalogTranslator) Locale() string { return t.locale }
