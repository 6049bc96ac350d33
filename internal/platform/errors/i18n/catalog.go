// Package i18n renders user-facing messages for domain error codes.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"
)

// Code is a machine-readable error code (duplicated from the errors package
// to avoid an import cycle).
type Code = string

// BaseLocale is the fallback locale.
const BaseLocale = "en-US"

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

var (
	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{
		BaseLocale: NewCatalog(BaseLocale, enUS),
	}
)

// NewCatalog builds a catalog from a code-to-template map.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	copied := make(map[Code]string, len(messages))
	for code, tmpl := range messages {
		copied[code] = tmpl
	}
	return &Catalog{locale: locale, messages: copied}
}

// RegisterCatalog installs a catalog for a locale, replacing any existing one.
func RegisterCatalog(locale string, catalog *Catalog) {
	if catalog == nil || strings.TrimSpace(locale) == "" {
		return
	}
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[locale] = catalog
}

// GetCatalog returns the catalog for the given locale, falling back to en-US.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = BaseLocale
	}

	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	if c, ok := catalogs[requested]; ok {
		return c
	}
	return catalogs[BaseLocale]
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found, and to the
// raw template text if the template fails to parse or execute. Templates are
// always executed even with nil metadata so variables render as empty rather
// than failing.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return code
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}
