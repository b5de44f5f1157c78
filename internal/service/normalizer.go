package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// normalizeEmail lowercases and trims the provided email.
func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// sanitizeString collapses whitespace and trims the result.
func sanitizeString(value string) string {
	value = whitespaceRegex.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// normalizeDescription sanitizes a transfer note. Blank notes become nil.
func normalizeDescription(desc *string) (*string, error) {
	if desc == nil {
		return nil, nil
	}
	clean := sanitizeString(*desc)
	if clean == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(clean) > domain.MaxDescriptionLength {
		return nil, domain.Invalid(domain.ErrInvalidInput, "description must be at most 255 characters")
	}
	return &clean, nil
}
