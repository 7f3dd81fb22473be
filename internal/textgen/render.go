// Package textgen turns templates into finished sentences: token rendering
// and the fallback sentence assembler.
package textgen

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/rules"
)

// Placeholders used when a participant is missing.
const (
	unknownName       = "a pawn"
	unknownPronoun    = "they"
	unknownObjective  = "them"
	unknownPossessive = "their"
	unknownValue      = "unknown"
)

// Render replaces {PAWN_*}, {OBSERVER_*} and {OBSERVED_*} tokens in one
// left-to-right pass. Inserted values are never rescanned and unknown tokens
// are copied through untouched. {PAWN_*} refers to the object.
// part may be empty; it feeds the part-specific tokens.
func Render(template string, subject, object *pawn.Pawn, part pawn.BodyPart) string {
	if !strings.Contains(template, "{") {
		return template
	}
	res := resolver{observer: subject, observed: object, part: part}

	var b strings.Builder
	b.Grow(len(template) + 32)
	for i := 0; i < len(template); {
		open := strings.IndexByte(template[i:], '{')
		if open < 0 {
			b.WriteString(template[i:])
			break
		}
		open += i
		b.WriteString(template[i:open])

		end := strings.IndexByte(template[open+1:], '}')
		if end < 0 {
			b.WriteString(template[open:])
			break
		}
		end += open + 1
		name := template[open+1 : end]

		val, ok := res.lookup(name)
		if !ok {
			// Emit the brace alone and keep scanning; "{{X}" still resolves X.
			b.WriteByte('{')
			i = open + 1
			continue
		}
		if name == "OBSERVED_pronoun" && sentenceStart(b.String()) {
			val = capitalize(val)
		}
		b.WriteString(val)
		i = end + 1
	}
	return b.String()
}

func sentenceStart(prefix string) bool {
	trimmed := strings.TrimRight(prefix, " ")
	return trimmed == "" || (strings.HasSuffix(trimmed, ".") && strings.HasSuffix(prefix, " "))
}

type resolver struct {
	observer *pawn.Pawn
	observed *pawn.Pawn
	part     pawn.BodyPart
}

func (r resolver) lookup(token string) (string, bool) {
	prefix, field, ok := strings.Cut(token, "_")
	if !ok || field == "" {
		return "", false
	}
	var self, other *pawn.Pawn
	switch prefix {
	case "PAWN", "OBSERVED":
		self, other = r.observed, r.observer
	case "OBSERVER":
		self, other = r.observer, r.observed
	default:
		return "", false
	}
	if prefix == "PAWN" {
		switch field {
		case "nameShort", "nameFull", "nameShortPossessive", "gender", "pronoun",
			"subjective", "objective", "possessive", "kindDef", "faction":
		default:
			return "", false
		}
	}
	return resolveField(field, self, other, r.part)
}

// resolveField resolves one field for self; other is the counterpart pawn.
func resolveField(field string, self, other *pawn.Pawn, part pawn.BodyPart) (string, bool) {
	switch field {
	case "nameShort":
		if self == nil {
			return unknownName, true
		}
		return self.ShortName(), true
	case "nameFull":
		if self == nil {
			return unknownName, true
		}
		return self.LongName(), true
	case "nameShortPossessive":
		if self == nil {
			return unknownPossessive, true
		}
		return Possessive(self.ShortName()), true
	case "gender":
		if self == nil {
			return unknownValue, true
		}
		return strings.ToLower(string(self.Gender)), true
	case "pronoun", "subjective":
		if self == nil {
			return unknownPronoun, true
		}
		return self.Gender.Pronoun(), true
	case "objective":
		if self == nil {
			return unknownObjective, true
		}
		return self.Gender.Objective(), true
	case "possessive":
		if self == nil {
			return unknownPossessive, true
		}
		return self.Gender.Possessive(), true
	case "kindDef":
		if self == nil || self.Kind == "" {
			return unknownValue, true
		}
		return strings.ToLower(self.Kind), true
	case "faction":
		if self == nil || self.Faction == "" {
			return "None", true
		}
		return self.Faction, true
	case "ageBiologicalYears":
		if self == nil {
			return unknownValue, true
		}
		return strconv.Itoa(self.AgeYears), true
	case "needState", "needSexState":
		state := rules.NeedStateOf(self)
		if state == rules.NeedAny {
			return "N/A", true
		}
		return strings.ToLower(string(state)), true
	case "relationLabel":
		// What self is to the other pawn.
		if self == nil || other == nil {
			return "pawn", true
		}
		if rel := other.MostImportantRelation(self.ID); rel != "" {
			return strings.ToLower(rel), true
		}
		return "pawn", true
	case "nudityStatus":
		return rules.NudityStatus(self), true
	case "coveringStatus":
		return rules.CoveringStatus(self), true
	case "nudityAndCoveringStatus":
		return rules.NudityAndCoveringStatus(self), true
	case "genitalSpecificLabel":
		return partLabel(self, pawn.PartGenitals), true
	case "partSpecificLabel":
		if part == "" {
			return "body", true
		}
		return partLabel(self, part), true
	case "sizeLabel":
		if self == nil || part == "" {
			return unknownValue, true
		}
		if p, ok := self.Part(part); ok {
			return rules.SizeLabel(p.Severity), true
		}
		return unknownValue, true
	}
	return "", false
}

func partLabel(p *pawn.Pawn, bp pawn.BodyPart) string {
	if p != nil {
		if part, ok := p.Part(bp); ok && part.Label != "" {
			return part.Label
		}
	}
	switch bp {
	case pawn.PartChest:
		return "chest"
	case pawn.PartGenitals:
		return "genitals"
	case pawn.PartAnus:
		return "rear"
	}
	return "body"
}

// Possessive adds an apostrophe, with an s unless the name already ends in one.
func Possessive(name string) string {
	if name == "" {
		return unknownPossessive
	}
	if strings.HasSuffix(name, "s") || strings.HasSuffix(name, "S") {
		return name + "'"
	}
	return name + "'s"
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Finish trims, capitalizes and terminates a sentence. Empty stays empty.
func Finish(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = capitalize(s)
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}
