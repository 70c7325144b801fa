package i18n

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the language the translation keys are written in.
const BaseLocale = "en"

//go:embed catalog.yaml
var embeddedCatalog []byte

type catalogFile struct {
	Locales map[string]map[string]string `yaml:"locales"`
}

// Catalog translates texts for the closest configured locale. Lookups go
// through an x/text message catalog; sources keeps the decoded entries so
// catalogs can be layered.
type Catalog struct {
	tags    []language.Tag
	matcher language.Matcher
	builder *catalog.Builder
	sources map[language.Tag]map[string]string
}

// Default returns the catalog shipped with the binary.
func Default() *Catalog {
	c, err := Parse(embeddedCatalog)
	if err != nil {
		panic(fmt.Sprintf("i18n: embedded catalog: %v", err))
	}
	return c
}

// Load reads a catalog file and layers it over the embedded one.
func Load(path string) (*Catalog, error) {
	base := Default()
	if path == "" {
		return base, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	extra, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	merged, err := base.merge(extra)
	if err != nil {
		return nil, fmt.Errorf("merge catalog %s: %w", path, err)
	}
	return merged, nil
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	messages := map[language.Tag]map[string]string{}
	for code, entries := range file.Locales {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("locale %q: %w", code, err)
		}
		messages[tag] = entries
	}
	return newCatalog(messages)
}

func newCatalog(messages map[language.Tag]map[string]string) (*Catalog, error) {
	base := language.Make(BaseLocale)
	tags := []language.Tag{base}
	extra := make([]language.Tag, 0, len(messages))
	for tag := range messages {
		if tag != base {
			extra = append(extra, tag)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].String() < extra[j].String() })
	tags = append(tags, extra...)

	builder := catalog.NewBuilder(catalog.Fallback(base))
	for _, tag := range tags {
		keys := make([]string, 0, len(messages[tag]))
		for key := range messages[tag] {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			value := messages[tag][key]
			if value == "" {
				continue
			}
			// Entries are printf formats; placeholders are {n}, not verbs.
			if err := builder.SetString(tag, key, escapePercent(value)); err != nil {
				return nil, fmt.Errorf("register %s message %q: %w", tag, key, err)
			}
		}
	}

	return &Catalog{
		tags:    tags,
		matcher: language.NewMatcher(tags),
		builder: builder,
		sources: messages,
	}, nil
}

func (c *Catalog) merge(other *Catalog) (*Catalog, error) {
	merged := map[language.Tag]map[string]string{}
	for _, src := range []*Catalog{c, other} {
		for tag, entries := range src.sources {
			if merged[tag] == nil {
				merged[tag] = map[string]string{}
			}
			for k, v := range entries {
				merged[tag][k] = v
			}
		}
	}
	return newCatalog(merged)
}

// Locales lists the supported locales, base first.
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.tags))
	for _, tag := range c.tags {
		out = append(out, tag.String())
	}
	return out
}

// Text translates key for lang and fills {n} placeholders.
// Unknown keys and locales fall back to the key itself.
func (c *Catalog) Text(lang, key string, args ...any) string {
	if c == nil {
		return Format(key, args...)
	}
	msg := key
	if tag, ok := c.match(lang); ok {
		p := message.NewPrinter(tag, message.Catalog(c.builder))
		msg = p.Sprintf(message.Key(key, escapePercent(key)))
	}
	return Format(msg, args...)
}

func escapePercent(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

func (c *Catalog) match(lang string) (language.Tag, bool) {
	if strings.TrimSpace(lang) == "" {
		return language.Tag{}, false
	}
	requested, err := language.Parse(lang)
	if err != nil {
		return language.Tag{}, false
	}
	_, idx, confidence := c.matcher.Match(requested)
	if confidence == language.No {
		return language.Tag{}, false
	}
	return c.tags[idx], true
}

// Format replaces {0}, {1}, ... with the matching argument.
// Placeholders without an argument are left untouched.
func Format(format string, args ...any) string {
	if len(args) == 0 || !strings.Contains(format, "{") {
		return format
	}

	var b strings.Builder
	b.Grow(len(format))
	for i := 0; i < len(format); i++ {
		if format[i] != '{' {
			b.WriteByte(format[i])
			continue
		}
		end := strings.IndexByte(format[i:], '}')
		if end < 0 {
			b.WriteString(format[i:])
			break
		}
		n, err := strconv.Atoi(format[i+1 : i+end])
		if err != nil || n < 0 || n >= len(args) {
			b.WriteByte('{')
			continue
		}
		fmt.Fprint(&b, args[n])
		i += end
	}
	return b.String()
}
