package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestTranslator_Match(t *testing.T) {
	tr, err := New("es")
	require.NoError(t, err)

	assert.Equal(t, "es", tr.Match().String())
	assert.Equal(t, "es", tr.Match("", "  ").String())
	assert.Equal(t, "en", tr.Match("en-US").String())
	assert.Equal(t, "pt", tr.Match("pt-BR,pt;q=0.9").String())
	assert.Equal(t, "fr", tr.Match("fr", "en").String())
	assert.Equal(t, "es", tr.Match("de-DE").String())
}

func TestTranslator_Message(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)

	assert.Equal(t, "URL inválida", tr.Message(language.Spanish, URLInvalid))
	assert.Equal(t, "Invalid URL", tr.Message(language.German, URLInvalid))
	assert.Equal(t, "missing", tr.Message(language.French, Key("missing")))

	yes, no := tr.YesNo(language.Portuguese)
	assert.Equal(t, "Sim", yes)
	assert.Equal(t, "Não", no)
}

func TestCatalogIsComplete(t *testing.T) {
	for key := range catalog["es"] {
		for _, code := range Supported() {
			assert.NotEmpty(t, catalog[code][key], "%s missing %s", code, key)
		}
	}
}

func TestNew_RejectsUnsupportedDefault(t *testing.T) {
	_, err := New("de")
	assert.Error(t, err)

	_, err = New("not a tag!")
	assert.Error(t, err)
}
