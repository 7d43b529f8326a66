package cmd

import (
	"errors"
	"testing"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		exe     string
		want    request
		wantErr error
	}{
		{"pack only", []string{"47"}, "serverinstall", request{PackID: 47}, nil},
		{"pack and version", []string{"47", "101"}, "serverinstall", request{PackID: 47, VersionID: 101}, nil},
		{"search term", []string{"all", "the", "mods"}, "serverinstall", request{Term: "all the mods"}, nil},
		{"from executable", nil, "/opt/bin/serverinstall_47_101", request{PackID: 47, VersionID: 101, FromFilename: true}, nil},
		{"from windows executable", nil, `serverinstall_5_2001.exe`, request{PackID: 5, VersionID: 2001, FromFilename: true}, nil},
		{"no args plain executable", nil, "/usr/local/bin/serverinstall", request{}, errShowHelp},
		{"no args no executable", nil, "", request{}, errShowHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args, tt.exe)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("parseArgs() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseArgs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseArgsInvalid(t *testing.T) {
	for _, args := range [][]string{
		{"47", "latest"},
		{"47", "0"},
		{"0"},
		{"47", "101", "3"},
	} {
		if _, err := parseArgs(args, "serverinstall"); err == nil {
			t.Errorf("parseArgs(%v) expected error", args)
		}
	}
}

func TestValidateTerm(t *testing.T) {
	tests := []struct {
		term string
		code int
	}{
		{"all the mods", exitOK},
		{"sky", exitTermTooShort},
		{"  ab  ", exitTermTooShort},
		{"ünïcødé", exitOK},
		{"bad\x01term", exitTermInvalid},
		{"bad\xfftext", exitTermInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			if got := exitCodeFor(validateTerm(tt.term)); got != tt.code {
				t.Errorf("validateTerm(%q) exit code = %d, want %d", tt.term, got, tt.code)
			}
		})
	}
}
