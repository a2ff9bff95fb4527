package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "en", DetectLanguage("en-US,en;q=0.9"))
	assert.Equal(t, "en", DetectLanguage("EN-gb"))
	assert.Equal(t, "it", DetectLanguage("it-IT,it;q=0.8"))
	assert.Equal(t, "en", DetectLanguage("fr-FR;q=0.9, en;q=0.5"))
	assert.Equal(t, "it", DetectLanguage(""))
}

func TestTranslations(t *testing.T) {
	assert.Equal(t, "Required", T("en", "required"))
	assert.Equal(t, "Obbligatorio", T("it", "required"))
	assert.Equal(t, "__nope__", T("en", "__nope__"))
	assert.Equal(t, "Obbligatorio", T("es", "required"), "unknown language falls back to Italian")
	assert.Equal(t, "Calcolati", T("it", "fieldset.calculated"))
	assert.Equal(t, "Da fatturare", T("it", "invoice_status.DF"))
}

func TestTablesHaveSameKeys(t *testing.T) {
	for code := range messages[Italian] {
		_, ok := messages[English][code]
		assert.True(t, ok, "missing english message %q", code)
	}
	assert.Len(t, messages[English], len(messages[Italian]))
}

func TestContext(t *testing.T) {
	assert.Equal(t, Default, LangFrom(context.Background()))
	assert.Equal(t, "en", LangFrom(WithLang(context.Background(), "en")))
}
