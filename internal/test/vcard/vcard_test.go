package vcard_test

import (
	"database/sql"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"woodlinks-backend/internal/models"
	"woodlinks-backend/internal/vcard"
)

func TestEscape(t *testing.T) {
	assert.Equal(t, `a\,b\;c\\d\ne`, vcard.Escape("a,b;c\\d\ne"))
	assert.Equal(t, `one\ntwo`, vcard.Escape("one\r\ntwo"))
}

func TestBuild(t *testing.T) {
	card := &models.Card{
		Slug:        "yamada",
		Title:       "Yamada, Taro",
		Description: sql.NullString{String: "Furniture maker", Valid: true},
		AvatarURL:   sql.NullString{String: "https://storage.test/avatar.png", Valid: true},
	}
	contents := []models.CardContent{
		{Type: models.ContentTypePhone, Value: "+81 90-1234-5678"},
		{Type: models.ContentTypeEmail, Value: "taro@example.com"},
		{Type: models.ContentTypeLink, Value: "https://example.com"},
		{Type: models.ContentTypeText, Label: "Hours", Value: "Mon-Fri"},
	}

	out := vcard.Build(vcard.Contact{
		Card:         card,
		Contents:     contents,
		Organization: "Yamada Woodworks",
		ProfileURL:   "https://woodlinks.test/p/yamada",
	})

	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	assert.Equal(t, []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		`FN:Yamada\, Taro`,
		`N:Yamada\, Taro;;;;`,
		"ORG:Yamada Woodworks",
		"TEL;TYPE=CELL:+81 90-1234-5678",
		"EMAIL;TYPE=INTERNET:taro@example.com",
		"URL:https://example.com",
		"URL:https://woodlinks.test/p/yamada",
		"PHOTO;VALUE=URI:https://storage.test/avatar.png",
		`NOTE:Furniture maker\nHours: Mon-Fri`,
		"END:VCARD",
	}, lines)
}

func TestBuild_FoldsLongLines(t *testing.T) {
	card := &models.Card{
		Title:       "Long",
		Description: sql.NullString{String: strings.Repeat("木", 60), Valid: true},
	}
	out := vcard.Build(vcard.Contact{Card: card})

	for _, line := range strings.Split(out, "\r\n") {
		assert.LessOrEqual(t, len(line), 75)
		assert.True(t, utf8.ValidString(line), "line split inside a rune: %q", line)
	}

	// Unfolding restores the original value.
	unfolded := strings.ReplaceAll(out, "\r\n ", "")
	require.Contains(t, unfolded, "NOTE:"+strings.Repeat("木", 60)+"\r\n")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "yamada.vcf", vcard.Filename("yamada"))
}
