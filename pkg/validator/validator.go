package validator

import (
	"regexp"
	"strings"
	"unicode"
)

var phoneRegex = regexp.MustCompile(`^\+[0-9]{10,15}$`)

func digitsAndPlus(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '+' {
			return r
		}
		return -1
	}, phone)
}

// ValidatePhone reports whether phone is an E.164 number after stripping
// punctuation.
func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(digitsAndPlus(phone))
}

// FormatPhone normalizes a phone number to E.164. Numbers without a country
// code are treated as North American.
func FormatPhone(phone string) string {
	cleanPhone := digitsAndPlus(phone)

	if !strings.HasPrefix(cleanPhone, "+") {
		if len(cleanPhone) == 11 && strings.HasPrefix(cleanPhone, "1") {
			cleanPhone = "+" + cleanPhone
		} else {
			cleanPhone = "+1" + cleanPhone
		}
	}

	return cleanPhone
}

func ValidateNamePart(name string) bool {
	if len(name) < 2 {
		return false
	}

	for _, r := range name {
		if !unicode.IsLetter(r) && r != '-' && r != ' ' && r != '\'' {
			return false
		}
	}

	return true
}

func FormatName(name string) string {
	if len(name) == 0 {
		return ""
	}

	parts := strings.Fields(name)
	for i, part := range parts {
		subparts := strings.Split(part, "-")
		for j, subpart := range subparts {
			if len(subpart) > 0 {
				subparts[j] = strings.ToUpper(subpart[:1]) + strings.ToLower(subpart[1:])
			}
		}
		parts[i] = strings.Join(subparts, "-")
	}

	return strings.Join(parts, " ")
}

// SanitizeString drops characters that could break out of HTML or SQL
// contexts from free-text fields such as slot notes.
func SanitizeString(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '<' || r == '>' || r == '&' || r == '"' || r == '`' || r == ';' {
			return -1
		}
		return r
	}, s))
}
