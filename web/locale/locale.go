// Package locale loads the translation bundle and resolves messages for the
// language each request asks for.
package locale

import (
	"io/fs"
	"strings"

	"github.com/opsdesk/helpdesk/logger"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

const (
	localizerKey = "localizer"
	langCookie   = "lang"
)

var i18nBundle *i18n.Bundle

// InitLocalizer parses every file under translation/ in fsys.
func InitLocalizer(fsys fs.FS) error {
	bundle := i18n.NewBundle(language.MustParse("en-US"))
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	err := fs.WalkDir(fsys, "translation", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		_, err = bundle.ParseMessageFileBytes(data, path)
		return err
	})
	if err != nil {
		return err
	}

	i18nBundle = bundle
	return nil
}

// createTemplateData turns "name==value" pairs into message template data.
func createTemplateData(params []string) map[string]any {
	templateData := make(map[string]any, len(params))
	for _, param := range params {
		parts := strings.SplitN(param, "==", 2)
		if len(parts) != 2 {
			continue
		}
		templateData[parts[0]] = parts[1]
	}
	return templateData
}

// NewLocalizer returns a localizer for the given preference list,
// e.g. an Accept-Language header value.
func NewLocalizer(langs ...string) *i18n.Localizer {
	if i18nBundle == nil {
		return nil
	}
	return i18n.NewLocalizer(i18nBundle, langs...)
}

// Localize resolves key with l. Missing messages fall back to the key itself.
func Localize(l *i18n.Localizer, key string, params ...string) string {
	if l == nil {
		return key
	}
	msg, err := l.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: createTemplateData(params),
	})
	if err != nil {
		logger.Warningf("Failed to localize message %q: %v", key, err)
		return key
	}
	return msg
}

// LocalizerMiddleware picks the language from the lang cookie or the
// Accept-Language header and stores the localizer on the request.
func LocalizerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var langs []string
		if cookie, err := c.Request.Cookie(langCookie); err == nil && cookie.Value != "" {
			langs = append(langs, cookie.Value)
		}
		langs = append(langs, c.GetHeader("Accept-Language"))
		c.Set(localizerKey, NewLocalizer(langs...))
		c.Next()
	}
}

// I18n localizes key for the current request.
func I18n(c *gin.Context, key string, params ...string) string {
	v, _ := c.Get(localizerKey)
	l, _ := v.(*i18n.Localizer)
	return Localize(l, key, params...)
}
