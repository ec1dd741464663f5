package auth

import (
	"bufio"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agext/levenshtein"
	"github.com/techbyhenry/acode-api/internal/domain"
)

// Password policy defaults.
const (
	DefaultPasswordMinLength   = 8
	DefaultMaxSimilarity       = 0.7
	MaxPasswordBytes           = 72 // bcrypt ignores anything longer
	minimumSimilarityPartRunes = 3
)

//go:embed common_passwords.txt
var commonPasswordsList string

var nonWord = regexp.MustCompile(`\W+`)

// PasswordAttribute is a user attribute a password must not resemble.
type PasswordAttribute struct {
	Name  string // e.g. "email"
	Value string
}

// PasswordPolicy checks candidate passwords. The zero value is not usable;
// construct with NewPasswordPolicy.
type PasswordPolicy struct {
	minLength     int
	maxSimilarity float64
	common        map[string]struct{}
}

// NewPasswordPolicy creates a policy with the built-in common password list.
// A non-positive minLength selects DefaultPasswordMinLength.
func NewPasswordPolicy(minLength int) *PasswordPolicy {
	if minLength <= 0 {
		minLength = DefaultPasswordMinLength
	}
	return &PasswordPolicy{
		minLength:     minLength,
		maxSimilarity: DefaultMaxSimilarity,
		common:        parseCommonPasswords(commonPasswordsList),
	}
}

func parseCommonPasswords(list string) map[string]struct{} {
	set := make(map[string]struct{})
	sc := bufio.NewScanner(strings.NewReader(list))
	for sc.Scan() {
		line := strings.ToLower(strings.TrimSpace(sc.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[line] = struct{}{}
	}
	return set
}

// Validate returns a *domain.PasswordPolicyError listing every rule the
// password breaks, or nil. Rules are checked in a fixed order: similarity
// to attrs, minimum length, maximum length, common passwords, entirely
// numeric.
func (p *PasswordPolicy) Validate(password string, attrs ...PasswordAttribute) error {
	var violations []string

	for _, attr := range attrs {
		if p.tooSimilar(password, attr.Value) {
			violations = append(violations, fmt.Sprintf("The password is too similar to the %s.", attr.Name))
			break
		}
	}

	if utf8.RuneCountInString(password) < p.minLength {
		violations = append(violations, fmt.Sprintf(
			"This password is too short. It must contain at least %d characters.", p.minLength))
	}
	if len(password) > MaxPasswordBytes {
		violations = append(violations, fmt.Sprintf(
			"This password is too long. It must contain no more than %d bytes.", MaxPasswordBytes))
	}

	if _, ok := p.common[strings.ToLower(strings.TrimSpace(password))]; ok {
		violations = append(violations, "This password is too common.")
	}

	if isNumeric(password) {
		violations = append(violations, "This password is entirely numeric.")
	}

	if len(violations) == 0 {
		return nil
	}
	return &domain.PasswordPolicyError{Violations: violations}
}

// tooSimilar compares the password to the whole attribute value and to each
// of its word segments, so "alice.smith@x.com" also guards "alice" and
// "smith".
func (p *PasswordPolicy) tooSimilar(password, value string) bool {
	if value == "" {
		return false
	}
	pw := strings.ToLower(password)
	value = strings.ToLower(value)

	candidates := append([]string{value}, nonWord.Split(value, -1)...)
	for _, part := range candidates {
		if utf8.RuneCountInString(part) < minimumSimilarityPartRunes {
			continue
		}
		if levenshtein.Similarity(pw, part, nil) >= p.maxSimilarity {
			return true
		}
	}
	return false
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
