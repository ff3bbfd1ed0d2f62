package utils

import (
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"os"
)

// FormatGoCodeString formats Go source code from a string and returns a string
func FormatGoCodeString(source string) (string, error) {
	formatted, err := format.Source([]byte(source))
	if err != nil {
		if parseErr := ValidateGoCode(source); parseErr != nil {
			return source, fmt.Errorf("invalid Go syntax: %w", parseErr)
		}
		return source, err
	}
	return string(formatted), nil
}

// WriteGoFile formats code and writes it to filename
func WriteGoFile(filename, code string) error {
	formatted, err := FormatGoCodeString(code)
	if err != nil {
		return fmt.Errorf("failed to format %s: %w", filename, err)
	}
	return os.WriteFile(filename, []byte(formatted), 0o644)
}

// ValidateGoCode checks if the provided code is valid Go syntax
func ValidateGoCode(code string) error {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "", code, parser.ParseComments)
	return err
}
