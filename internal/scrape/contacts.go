package scrape

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/forskolor/internal/model"
)

// ContactParser extracts contact entries from a detail page.
// Blocks without an e-mail address produce no entry.
type ContactParser interface {
	ParseContacts(body []byte) ([]model.ContactEntry, error)
}

// Class names used by the directory's contact markup.
const (
	DefaultContactSelector = ".unit-contact"
	DefaultRoleSelector    = ".unit-contact__title"
	DefaultNameSelector    = ".unit-contact__name"
)

// mailtoPattern matches a quoted mailto attribute value in rendered HTML.
var mailtoPattern = regexp.MustCompile(`"mailto:([^"]+)"`)

// ClassContactParser finds contact blocks by CSS class.
type ClassContactParser struct {
	contactSelector string
	roleSelector    string
	nameSelector    string
}

// NewClassContactParser returns a parser for the directory's current markup.
func NewClassContactParser() *ClassContactParser {
	return &ClassContactParser{
		contactSelector: DefaultContactSelector,
		roleSelector:    DefaultRoleSelector,
		nameSelector:    DefaultNameSelector,
	}
}

// ParseContacts implements ContactParser.
func (p *ClassContactParser) ParseContacts(body []byte) ([]model.ContactEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDetailParse, err)
	}

	var (
		entries []model.ContactEntry
		walkErr error
	)
	doc.Find(p.contactSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		inner, err := sel.Html()
		if err != nil {
			walkErr = fmt.Errorf("%w: %w", ErrDetailParse, err)
			return false
		}

		email, ok := extractEmail(inner)
		if !ok {
			return true
		}

		entry := model.ContactEntry{
			Email: email,
			Name:  model.PlaceholderName,
		}
		if role := sel.Find(p.roleSelector).First(); role.Length() > 0 {
			entry.Role = cleanText(role.Text())
		}
		if name := sel.Find(p.nameSelector).First(); name.Length() > 0 {
			entry.Name = cleanText(name.Text())
		}
		entries = append(entries, entry)
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return entries, nil
}

// extractEmail returns the address of the first mailto link in the rendered
// block. Query parameters such as ?subject= are dropped.
func extractEmail(inner string) (string, bool) {
	m := mailtoPattern.FindStringSubmatch(inner)
	if m == nil {
		return "", false
	}
	email := html.UnescapeString(m[1])
	if i := strings.IndexByte(email, '?'); i >= 0 {
		email = email[:i]
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return "", false
	}
	return email, true
}

// cleanText collapses whitespace and normalizes to NFC so names typed with
// combining diacritics compare equal to precomposed ones.
func cleanText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
