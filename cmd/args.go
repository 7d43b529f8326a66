package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const minTermLength = 4

// executablePattern matches launcher names such as serverinstall_47_101.
var executablePattern = regexp.MustCompile(`\w+_(\d+)_(\d+)`)

// request is what the command line asks to install.
type request struct {
	PackID       int64
	VersionID    int64 // 0 when no version was given
	Term         string
	FromFilename bool // ids were taken from the executable name
}

func (r request) isSearch() bool { return r.Term != "" }

// parseArgs turns positional arguments into a request. Without arguments the
// executable name is tried; errShowHelp is returned when that fails too.
func parseArgs(args []string, executable string) (request, error) {
	if len(args) == 0 {
		if req, ok := parseExecutableName(executable); ok {
			return req, nil
		}
		return request{}, errShowHelp
	}

	packID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return request{Term: strings.Join(args, " ")}, nil
	}
	if packID <= 0 {
		return request{}, fmt.Errorf("invalid pack id %d", packID)
	}

	req := request{PackID: packID}
	switch len(args) {
	case 1:
	case 2:
		versionID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || versionID <= 0 {
			return request{}, fmt.Errorf("invalid version id '%s'", args[1])
		}
		req.VersionID = versionID
	default:
		return request{}, errors.New("expected <packId> [<versionId>] or a search term")
	}
	return req, nil
}

// parseExecutableName reads pack and version ids from a renamed binary.
func parseExecutableName(executable string) (request, bool) {
	if executable == "" {
		return request{}, false
	}
	base := filepath.Base(executable)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	m := executablePattern.FindStringSubmatch(base)
	if m == nil {
		return request{}, false
	}
	packID, err1 := strconv.ParseInt(m[1], 10, 64)
	versionID, err2 := strconv.ParseInt(m[2], 10, 64)
	if err1 != nil || err2 != nil || packID <= 0 || versionID <= 0 {
		return request{}, false
	}
	return request{PackID: packID, VersionID: versionID, FromFilename: true}, true
}

// validateTerm checks a search term before it is sent to the catalog.
func validateTerm(term string) error {
	trimmed := strings.TrimSpace(term)
	if utf8.RuneCountInString(trimmed) < minTermLength {
		return withCode(exitTermTooShort, fmt.Errorf("search term must be at least %d characters", minTermLength))
	}
	if !utf8.ValidString(trimmed) {
		return withCode(exitTermInvalid, errors.New("search term is not valid UTF-8"))
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return withCode(exitTermInvalid, fmt.Errorf("search term contains invalid character %q", r))
		}
	}
	return nil
}
