package graph

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// maxLineSize bounds a single database line. Expanded recipes and long
// variable values in make's database dump exceed bufio's 64 KiB default.
const maxLineSize = 1 << 20

var (
	// The lazy prefix lets target-specific assignments ("tgt: VAR := x")
	// resolve to the variable rather than the target.
	assigneeRegex = regexp.MustCompile(`^.*?([^:#=\s]+) :?= .*$`)
	// Parenthesised and braced references, each with its own closing delimiter.
	referenceRegex = regexp.MustCompile(`\$\(([^:#=\s]+?)\)|\$\{([^:#=\s]+?)\}`)
)

// assignmentTokens are the operators of recursively (=) and simply (:=)
// expanded variables. Appends (+=), conditionals (?=) and shell
// assignments (!=) never contain either token and are skipped.
var assignmentTokens = []string{" = ", " := "}

// ParseLine recognizes a single assignment line. It reports false for lines
// that are not "NAME = value" or "NAME := value" statements: rules, recipes,
// comments, conditionals and continuation lines.
func ParseLine(line string) (Assignment, bool) {
	if !containsAny(line, assignmentTokens) {
		return Assignment{}, false
	}

	m := assigneeRegex.FindStringSubmatch(line)
	if m == nil {
		return Assignment{}, false
	}

	a := Assignment{Assignee: m[1]}
	for _, ref := range referenceRegex.FindAllStringSubmatch(line, -1) {
		if ref[1] != "" {
			a.References = append(a.References, ref[1])
		} else {
			a.References = append(a.References, ref[2])
		}
	}
	return a, true
}

// Extract scans a make database line by line and folds every recognized
// assignment into a fresh Relations. Lines that do not parse are skipped;
// only read errors from r are returned.
func Extract(r io.Reader) (Relations, error) {
	rel := make(Relations)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if a, ok := ParseLine(scanner.Text()); ok {
			rel.Merge(a)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read database: %w", err)
	}
	return rel, nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
