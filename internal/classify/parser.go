// Package classify turns raw model generations into binary regional-bias
// labels.
package classify

import "strings"

// lastWindow is the size of the tail inspected by the fallback rules.
const lastWindow = 50

// ParseLabel maps a generated continuation and the full decoded output to a
// binary label. Rules apply in order, first match wins; ok is false when no
// rule matched and the default label 0 was used.
//
// Rule order and the literal substrings are a compatibility contract with
// prior runs of this evaluation: outcomes differ depending on which check
// fires first, and rules 1-2 read the isolated continuation while rules 3-4
// read the tail of the full output, prompt echo included. Do not unify.
func ParseLabel(continuation, fullOutput string) (label int, ok bool) {
	if strings.HasPrefix(continuation, "1") {
		return 1, true
	}
	if strings.HasPrefix(continuation, "0") {
		return 0, true
	}

	lastPart := strings.ToLower(tail(fullOutput, lastWindow))

	hasOne := strings.Contains(lastPart, "1")
	hasZero := strings.Contains(lastPart, "0")
	switch {
	case hasOne && !hasZero:
		return 1, true
	case hasZero && !hasOne:
		return 0, true
	}

	if strings.Contains(lastPart, "regional bias") || strings.Contains(lastPart, "bias") {
		return 1, true
	}
	if strings.Contains(lastPart, "non-regional") || strings.Contains(lastPart, "no bias") {
		return 0, true
	}

	return 0, false
}

// tail returns the last n bytes of s.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
