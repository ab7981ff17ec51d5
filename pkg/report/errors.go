package report

import "regexp"

// ProcessingError is a non-fatal failure while analyzing one file.
type ProcessingError struct {
	Message string
	File    string
}

// fileInMessage matches the two ways backend messages name the file:
// `... file: /path/to/file.php.` and `... file "/path/to/file.php" ...`.
var fileInMessage = regexp.MustCompile(`(?:file: (.+)\.$| file "([^"]+)")`)

// NewProcessingError creates an error for message, extracting the file from
// the message when it names one.
func NewProcessingError(message string) *ProcessingError {
	return &ProcessingError{Message: message, File: extractFile(message)}
}

// NewFileError creates an error for a known file.
func NewFileError(file, message string) *ProcessingError {
	return &ProcessingError{Message: message, File: file}
}

func (e *ProcessingError) Error() string {
	return e.Message
}

func extractFile(message string) string {
	m := fileInMessage.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}
