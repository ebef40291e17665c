package status

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a status message independent of locale.
type Key string

const (
	EnterUMF       Key = "enter_umf"
	Calculating    Key = "calculating"
	NoSolutions    Key = "no_solutions"
	SolveFailed    Key = "solve_failed"    // %s: error message
	Found          Key = "found"           // %d: count
	ServerDown     Key = "server_down"     // %s: base URL
	MassesFallback Key = "masses_fallback" // %s: error message
	LoadFailed     Key = "load_failed"     // %s: error message
	SaveFailed     Key = "save_failed"     // %s: error message
	Restored       Key = "restored"
	SelectOxide    Key = "select_oxide"
	SolutionTitle  Key = "solution_title" // %d: index, %d: materials
	ErrorLabel     Key = "error_label"    // %.2f: error percent
	DiffLegend     Key = "diff_legend"
	OxideInUse     Key = "oxide_in_use" // %s: oxide
)

var (
	English = language.English
	Russian = language.Russian
)

var entries = map[language.Tag]map[Key]string{
	English: {
		EnterUMF:       "Enter UMF values to solve.",
		Calculating:    "Calculating...",
		NoSolutions:    "No suitable solutions found.",
		SolveFailed:    "Solve failed: %s",
		Found:          "%d solutions",
		ServerDown:     "Solver at %s is unavailable.",
		MassesFallback: "Using built-in molar masses (%s).",
		LoadFailed:     "Saved formula could not be read (%s); keeping the current one.",
		SaveFailed:     "Formula could not be saved: %s",
		Restored:       "Formula restored.",
		SelectOxide:    "Select oxide",
		SolutionTitle:  "Solution #%d (%d materials)",
		ErrorLabel:     "Error: %.2f%%",
		DiffLegend:     "Difference from target UMF:",
		OxideInUse:     "%s is already used by another row.",
	},
	Russian: {
		EnterUMF:       "Введите значения UMF для решения.",
		Calculating:    "Расчет...",
		NoSolutions:    "Не удалось найти подходящие решения.",
		SolveFailed:    "Ошибка при поиске решения: %s",
		Found:          "Найдено решений: %d",
		ServerDown:     "Сервер %s недоступен.",
		MassesFallback: "Используются встроенные молярные массы (%s).",
		LoadFailed:     "Не удалось прочитать сохраненную формулу (%s); оставлена текущая.",
		SaveFailed:     "Не удалось сохранить формулу: %s",
		Restored:       "Формула восстановлена.",
		SelectOxide:    "Выберите оксид",
		SolutionTitle:  "Решение #%d (%d материалов)",
		ErrorLabel:     "Погрешность: %.2f%%",
		DiffLegend:     "Разница с целевым UMF:",
		OxideInUse:     "%s уже используется в другой строке.",
	},
}

var cat = build()

func build() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(English))
	for tag, msgs := range entries {
		for key, text := range msgs {
			if err := b.SetString(tag, string(key), text); err != nil {
				panic(fmt.Sprintf("status catalog %s/%s: %v", tag, key, err))
			}
		}
	}
	return b
}

// Supported lists the locales with a catalog.
func Supported() []language.Tag { return []language.Tag{English, Russian} }

// ParseLocale matches s ("en", "ru-RU", ...) against the supported locales.
func ParseLocale(s string) (language.Tag, error) {
	if s == "" {
		return English, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("parse locale %q: %w", s, err)
	}
	m := language.NewMatcher(Supported())
	_, idx, conf := m.Match(tag)
	if conf == language.No {
		return language.Und, fmt.Errorf("unsupported locale %q", s)
	}
	return Supported()[idx], nil
}

// Printer formats status messages for one locale.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// NewPrinter returns a printer for tag.
func NewPrinter(tag language.Tag) *Printer {
	return &Printer{tag: tag, p: message.NewPrinter(tag, message.Catalog(cat))}
}

// Locale returns the printer's language.
func (p *Printer) Locale() language.Tag { return p.tag }

// Sprintf renders key with args.
func (p *Printer) Sprintf(key Key, args ...any) string {
	return p.p.Sprintf(string(key), args...)
}

// Line is a status message not yet rendered, so state can carry it without
// knowing the locale.
type Line struct {
	Key  Key   `json:"key"`
	Args []any `json:"args,omitempty"`
}

// New builds a Line.
func New(key Key, args ...any) Line { return Line{Key: key, Args: args} }

// IsZero reports whether l carries no message.
func (l Line) IsZero() bool { return l.Key == "" }

// Render renders l, or "" for the zero Line.
func (p *Printer) Render(l Line) string {
	if l.IsZero() {
		return ""
	}
	return p.Sprintf(l.Key, l.Args...)
}
