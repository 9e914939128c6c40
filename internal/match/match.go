// Package match extracts order and customer identifiers from free text and
// groups inbox files that belong to the same order.
package match

import (
	"regexp"
	"strings"
)

var (
	// Identifiers are delimited by any non-digit (underscores included, so
	// "123456_1.pdf" still yields 123456) and never cut out of a longer
	// digit run.
	orderNoRe    = regexp.MustCompile(`(?:^|\D)(\d{6})(?:\D|$)`)
	customerNoRe = regexp.MustCompile(`(?:^|\D)(\d{5})(?:\D|$)`)

	// Trailing numeric token before an optional _<seq> suffix and the file
	// extension. Correspondence files generated for an order share this token
	// whatever their prefixes and extensions look like.
	tokenRe = regexp.MustCompile(`(\d+)(?:_\d+)?\.[^.]+$`)
)

// OrderNumber extracts an order number from arbitrary text (a filename or an
// email subject). Returns "" when none is present.
func OrderNumber(text string) string {
	m := orderNoRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// CustomerNumber extracts a customer number from arbitrary text. Only
// consulted when OrderNumber found nothing; an order number always wins.
func CustomerNumber(text string) string {
	m := customerNoRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// Token returns the correlation token of a file name, or "" when the name
// carries none.
func Token(name string) string {
	m := tokenRe.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return m[1]
}

// Associated returns the names among candidates sharing the primary's
// correlation token, excluding the primary itself. Order is preserved.
func Associated(candidates []string, primary string) []string {
	token := Token(primary)
	if token == "" {
		return nil
	}

	var out []string
	for _, name := range candidates {
		if name == primary {
			continue
		}
		if Token(name) == token {
			out = append(out, name)
		}
	}
	return out
}

// SelectPrimary picks the file a matched identifier refers to. In filename
// mode (hasTitle=false) it is the first candidate containing the number. In
// title mode the triggering event was a mail subject, so the canonical order
// PDF ("<number>_*.pdf") is skipped: the primary is the accompanying file,
// not the order document itself.
func SelectPrimary(candidates []string, number string, hasTitle bool) string {
	if number == "" {
		return ""
	}
	for _, name := range candidates {
		if !strings.Contains(name, number) {
			continue
		}
		if hasTitle && isOrderPDF(name, number) {
			continue
		}
		return name
	}
	return ""
}

func isOrderPDF(name, number string) bool {
	return strings.HasPrefix(name, number+"_") && strings.HasSuffix(strings.ToLower(name), ".pdf")
}
