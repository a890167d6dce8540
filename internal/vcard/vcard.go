// Package vcard renders a card profile as a vCard 3.0 document.
package vcard

import (
	"strings"
	"unicode/utf8"

	"woodlinks-backend/internal/models"
)

const (
	ContentType = "text/vcard; charset=utf-8"
	crlf        = "\r\n"
	maxLineLen  = 75
)

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", `\n`,
	",", `\,`,
	";", `\;`,
)

// Escape applies vCard 3.0 text escaping.
func Escape(value string) string {
	return escaper.Replace(value)
}

// Contact holds everything that goes into the exported file.
type Contact struct {
	Card         *models.Card
	Contents     []models.CardContent
	Organization string
	ProfileURL   string
}

func Build(contact Contact) string {
	var b strings.Builder
	write := func(name, value string) {
		writeFolded(&b, name+":"+value)
	}

	name := Escape(contact.Card.Title)
	write("BEGIN", "VCARD")
	write("VERSION", "3.0")
	write("FN", name)
	write("N", name+";;;;")
	if contact.Organization != "" {
		write("ORG", Escape(contact.Organization))
	}

	var notes []string
	if contact.Card.Description.Valid && contact.Card.Description.String != "" {
		notes = append(notes, contact.Card.Description.String)
	}

	for _, block := range contact.Contents {
		value := strings.TrimSpace(block.Value)
		if value == "" {
			continue
		}
		switch block.Type {
		case models.ContentTypePhone:
			write("TEL;TYPE=CELL", Escape(value))
		case models.ContentTypeEmail:
			write("EMAIL;TYPE=INTERNET", Escape(value))
		case models.ContentTypeLink:
			write("URL", Escape(value))
		case models.ContentTypeText:
			if block.Label != "" {
				value = block.Label + ": " + value
			}
			notes = append(notes, value)
		}
	}

	if contact.ProfileURL != "" {
		write("URL", Escape(contact.ProfileURL))
	}
	if contact.Card.AvatarURL.Valid && contact.Card.AvatarURL.String != "" {
		write("PHOTO;VALUE=URI", contact.Card.AvatarURL.String)
	}
	if len(notes) > 0 {
		write("NOTE", Escape(strings.Join(notes, "\n")))
	}
	write("END", "VCARD")

	return b.String()
}

// writeFolded splits lines longer than 75 octets, continuing with a single
// leading space and never cutting a UTF-8 sequence.
func writeFolded(b *strings.Builder, line string) {
	limit := maxLineLen
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString(crlf + " ")
		line = line[cut:]
		limit = maxLineLen - 1
	}
	b.WriteString(line)
	b.WriteString(crlf)
}

// Filename is the attachment name offered to the browser.
func Filename(slug string) string {
	return slug + ".vcf"
}
