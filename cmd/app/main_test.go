package main

import (
	"strings"
	"testing"
)

func TestReadNote(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{"args joined", []string{"Client", "wants", "demo."}, "ignored", "Client wants demo."},
		{"stdin newline dropped", nil, "Client wants demo.\n", "Client wants demo."},
		{"stdin crlf dropped", nil, "Client wants demo.\r\n", "Client wants demo."},
		{"inner newlines kept", nil, "line one\nline two\n\n", "line one\nline two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readNote(tt.args, strings.NewReader(tt.stdin))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("readNote = %q, want %q", got, tt.want)
			}
		})
	}
}
