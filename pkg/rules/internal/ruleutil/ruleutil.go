// Package ruleutil holds helpers shared by the built-in rules.
package ruleutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Num formats a metric value without trailing zeros.
func Num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Contains reports whether name is in list.
func Contains(list []string, name string) bool {
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}

var closingDelimiters = map[byte]byte{'(': ')', '{': '}', '[': ']', '<': '>'}

// CompileDelimited compiles a delimited pattern like "/^get/i" or
// "(^(set|get))i". Supported trailing flags are i, m, s and U. A pattern
// that does not start with a delimiter is compiled as is.
func CompileDelimited(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty pattern")
	}

	open := pattern[0]
	closing, paired := closingDelimiters[open]
	if !paired {
		closing = open
	}
	isDelimiter := paired || strings.IndexByte(`/#~!@%|`, open) >= 0
	end := strings.LastIndexByte(pattern, closing)
	if !isDelimiter || end <= 0 {
		return regexp.Compile(pattern)
	}

	body, flags := pattern[1:end], pattern[end+1:]
	var goFlags strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's', 'U':
			goFlags.WriteRune(f)
		default:
			return nil, fmt.Errorf("unsupported pattern flag %q in %s", f, pattern)
		}
	}
	if goFlags.Len() > 0 {
		body = "(?" + goFlags.String() + ")" + body
	}
	return regexp.Compile(body)
}
