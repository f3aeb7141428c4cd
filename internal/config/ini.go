package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"rasim/internal/common"
	"rasim/internal/rasim"
)

// IniFile represents a parsed INI file.
// It maps section names to a map of key-value pairs.
// Global properties (before any section) are stored in the "" (empty string) section.
// Section and key names are lower-cased; values are kept as written.
type IniFile struct {
	Sections map[string]map[string]string
}

// NewIniFile creates a new empty IniFile
func NewIniFile() *IniFile {
	return &IniFile{
		Sections: map[string]map[string]string{"": {}},
	}
}

// ParseIni reads an INI file from an io.Reader.
// Lines that are neither a section header, a key=value pair, a comment nor
// blank are reported with their 1-based line number.
func ParseIni(r io.Reader) (*IniFile, error) {
	ini := NewIniFile()
	scanner := bufio.NewScanner(r)
	currentSection := ""
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			if _, exists := ini.Sections[currentSection]; !exists {
				ini.Sections[currentSection] = make(map[string]string)
			}
			continue
		}

		key, val, ok := strings.Cut(line, "=")
		if !ok {
			return nil, common.NewErrorWithIdxMsg(rasim.ErrSevError, rasim.ErrConfigParse,
				rasim.TrcIndex(lineNum), fmt.Sprintf("expected key = value, got %q", line))
		}

		ini.Sections[currentSection][strings.ToLower(strings.TrimSpace(key))] = stripComment(val)
	}
	if err := scanner.Err(); err != nil {
		return nil, common.NewErrorMsg(rasim.ErrSevError, rasim.ErrFileError, err.Error())
	}

	return ini, nil
}

// stripComment drops a trailing comment from a value. A ';' or '#' only
// starts a comment at the beginning of the value or after whitespace, so
// values such as runs/#3.trc are kept whole.
func stripComment(val string) string {
	for i := 0; i < len(val); i++ {
		if val[i] != ';' && val[i] != '#' {
			continue
		}
		if i == 0 || val[i-1] == ' ' || val[i-1] == '\t' {
			val = val[:i]
			break
		}
	}
	return strings.TrimSpace(val)
}

// GetSection returns the key-value map for a given section, or nil if not found
func (ini *IniFile) GetSection(sectionName string) map[string]string {
	return ini.Sections[strings.ToLower(sectionName)]
}

// Value looks up a key, reporting whether it was present.
func (ini *IniFile) Value(sectionName, key string) (string, bool) {
	sec := ini.GetSection(sectionName)
	if sec == nil {
		return "", false
	}
	v, ok := sec[strings.ToLower(key)]
	return v, ok
}
