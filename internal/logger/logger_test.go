package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLevel(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
	}{
		{level: "debug", wantDebug: true},
		{level: "info", wantDebug: false},
		{level: "", wantDebug: false},
		{level: "nonsense", wantDebug: false},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		log := New(&buf, tt.level)
		log.Debug().Msg("dbg")
		log.Info().Msg("[+] out.png written")

		if got := strings.Contains(buf.String(), "dbg"); got != tt.wantDebug {
			t.Errorf("level %q: debug logged = %v, want %v", tt.level, got, tt.wantDebug)
		}
		if !strings.Contains(buf.String(), "[+] out.png written") {
			t.Errorf("level %q: info line missing from %q", tt.level, buf.String())
		}
	}
}
