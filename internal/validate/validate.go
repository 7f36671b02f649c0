// Package validate holds field-level checks applied on record writes. The
// detection engine never uses these: malformed values still flow through
// normalization and scoring.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/veridata/mdm/internal/core/normalize"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email checks basic address shape.
func Email(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// TaxID accepts a CPF (11 digits) or CNPJ (14 digits), formatted or not, and
// verifies the check digits.
func TaxID(doc string) error {
	digits := normalize.Identifier(doc)
	switch len(digits) {
	case 11:
		return cpf(digits)
	case 14:
		return cnpj(digits)
	default:
		return fmt.Errorf("tax id must have 11 (CPF) or 14 (CNPJ) digits, got %d", len(digits))
	}
}

func cpf(digits string) error {
	if allSame(digits) {
		return fmt.Errorf("invalid CPF")
	}
	if int(digits[9]-'0') != cpfDigit(digits[:9]) {
		return fmt.Errorf("invalid CPF check digit")
	}
	if int(digits[10]-'0') != cpfDigit(digits[:10]) {
		return fmt.Errorf("invalid CPF check digit")
	}
	return nil
}

// cpfDigit computes the verifier for a 9- or 10-digit prefix: weights run
// from len+1 down to 2, remainder below 2 maps to 0.
func cpfDigit(prefix string) int {
	total := 0
	for i := 0; i < len(prefix); i++ {
		total += int(prefix[i]-'0') * (len(prefix) + 1 - i)
	}
	rem := total % 11
	if rem < 2 {
		return 0
	}
	return 11 - rem
}

var (
	cnpjWeightsFirst  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeightsSecond = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

func cnpj(digits string) error {
	if allSame(digits) {
		return fmt.Errorf("invalid CNPJ")
	}
	if int(digits[12]-'0') != cnpjDigit(digits[:12], cnpjWeightsFirst) {
		return fmt.Errorf("invalid CNPJ check digit")
	}
	if int(digits[13]-'0') != cnpjDigit(digits[:13], cnpjWeightsSecond) {
		return fmt.Errorf("invalid CNPJ check digit")
	}
	return nil
}

func cnpjDigit(prefix string, weights []int) int {
	total := 0
	for i := 0; i < len(prefix); i++ {
		total += int(prefix[i]-'0') * weights[i]
	}
	rem := total % 11
	if rem < 2 {
		return 0
	}
	return 11 - rem
}

func allSame(digits string) bool {
	return strings.Count(digits, digits[:1]) == len(digits)
}

// ProductCode requires a non-empty code without whitespace.
func ProductCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("product code is required")
	}
	if strings.ContainsAny(code, " \t\n") {
		return fmt.Errorf("product code must not contain whitespace")
	}
	return nil
}

// Name requires a non-blank display name.
func Name(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}
