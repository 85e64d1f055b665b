// Package i18n translates the customer-facing strings of menu rows. Stored
// names are in the default language; other languages come from a dictionary.
package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"

	"juicebar-system/internal/services/menu/dto"
)

type Translator interface {
	Translate(lang, text string) string
}

// Identity returns every string unchanged.
type Identity struct{}

func (Identity) Translate(_, text string) string { return text }

// Dictionary maps language -> source text -> translation. Requested languages
// are matched to the closest dictionary (en-US uses en); missing entries fall
// back to the source text.
type Dictionary struct {
	matcher language.Matcher
	// tables[i] holds the translations for the i-th matcher tag; index 0 is the
	// default language and has none.
	tables []map[string]string
}

func NewDictionary(defaultLang string, entries map[string]map[string]string) *Dictionary {
	base, err := language.Parse(defaultLang)
	if err != nil {
		base = language.Und
	}
	tags := []language.Tag{base}
	tables := []map[string]string{nil}
	for lang, m := range entries {
		tag, err := language.Parse(lang)
		if err != nil || tag == base {
			continue
		}
		tags = append(tags, tag)
		tables = append(tables, m)
	}
	return &Dictionary{matcher: language.NewMatcher(tags), tables: tables}
}

// LoadDictionary reads a JSON file shaped {"en": {"Яблоко": "Apple"}}.
func LoadDictionary(path, defaultLang string) (*Dictionary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	var entries map[string]map[string]string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse dictionary %s: %w", path, err)
	}
	return NewDictionary(defaultLang, entries), nil
}

func (d *Dictionary) Translate(lang, text string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" || text == "" {
		return text
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return text
	}
	_, idx, conf := d.matcher.Match(tag)
	if conf == language.No || idx == 0 {
		return text
	}
	if t, ok := d.tables[idx][text]; ok && t != "" {
		return t
	}
	return text
}

// Snapshot returns a translated copy; the cached snapshot is never mutated.
func Snapshot(tr Translator, lang string, snap *dto.MenuSnapshot) *dto.MenuSnapshot {
	if snap == nil || lang == "" {
		return snap
	}
	out := *snap
	out.Categories = make([]dto.MenuCategory, len(snap.Categories))
	for i, c := range snap.Categories {
		c.Name = tr.Translate(lang, c.Name)
		items := make([]dto.MenuItem, len(c.Items))
		for j, it := range c.Items {
			it.Name = tr.Translate(lang, it.Name)
			it.Description = tr.Translate(lang, it.Description)
			it.Ingredients = Ingredients(tr, lang, it.Ingredients)
			items[j] = it
		}
		c.Items = items
		out.Categories[i] = c
	}
	return &out
}

func Ingredients(tr Translator, lang string, rows []dto.OfferedIngredient) []dto.OfferedIngredient {
	if lang == "" {
		return rows
	}
	out := make([]dto.OfferedIngredient, len(rows))
	for i, r := range rows {
		r.Name = tr.Translate(lang, r.Name)
		r.Description = tr.Translate(lang, r.Description)
		out[i] = r
	}
	return out
}

func Modal(tr Translator, lang string, data *dto.ModalData) *dto.ModalData {
	if data == nil || lang == "" {
		return data
	}
	out := *data
	out.Ingredients = Ingredients(tr, lang, data.Ingredients)
	out.AdditionalItems = make([]dto.AdditionalItem, len(data.AdditionalItems))
	for i, a := range data.AdditionalItems {
		a.Name = tr.Translate(lang, a.Name)
		out.AdditionalItems[i] = a
	}
	return &out
}
