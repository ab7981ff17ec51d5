// Package naming provides rules about type, method and function names.
package naming
