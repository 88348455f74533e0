// Package chart maps a plot-type choice and one or two column names onto a
// renderable chart description, and draws that description as SVG.
package chart

import (
	"fmt"
	"strings"
)

// Kind is a plot type offered by the picker.
type Kind int

const (
	KindNone Kind = iota
	KindBar
	KindHistogram
	KindScatter
	KindLine
	KindBubble
	KindPie
)

var kindNames = [...]struct {
	slug  string
	label string
}{
	KindNone:      {"none", "Select plot type"},
	KindBar:       {"bar", "Bar plot"},
	KindHistogram: {"histogram", "Histogram"},
	KindScatter:   {"scatter", "Scatter plot"},
	KindLine:      {"line", "Line plot"},
	KindBubble:    {"bubble", "Bubble chart"},
	KindPie:       {"pie", "Pie chart"},
}

// Kinds returns every kind in picker order, starting with KindNone.
func Kinds() []Kind {
	return []Kind{KindNone, KindBar, KindHistogram, KindScatter, KindLine, KindBubble, KindPie}
}

func (k Kind) valid() bool {
	return k >= KindNone && int(k) < len(kindNames)
}

// Label is the text shown in the picker.
func (k Kind) Label() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k].label
}

// Slug is the identifier used in query strings and JSON.
func (k Kind) Slug() string {
	if !k.valid() {
		return ""
	}
	return kindNames[k].slug
}

func (k Kind) String() string { return k.Label() }

// MarshalText encodes the kind by slug.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.Slug()), nil
}

// UnmarshalText accepts anything ParseKind does.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Bivariate reports whether the kind takes a second column.
func (k Kind) Bivariate() bool {
	switch k {
	case KindScatter, KindLine, KindBubble, KindPie:
		return true
	}
	return false
}

// ParseKind resolves a slug or picker label, ignoring case. The empty string
// is KindNone.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return KindNone, nil
	}
	for _, k := range Kinds() {
		if strings.EqualFold(s, k.Slug()) || strings.EqualFold(s, k.Label()) {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("unknown plot type %q", s)
}

// Family is the chart shape a kind renders as. Bubble renders as scatter.
type Family string

const (
	FamilyBar       Family = "bar"
	FamilyHistogram Family = "histogram"
	FamilyScatter   Family = "scatter"
	FamilyLine      Family = "line"
	FamilyPie       Family = "pie"
)
