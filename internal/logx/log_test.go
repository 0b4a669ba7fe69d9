package logx

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// fakeUART satisfies drivers.UART.
type fakeUART struct{ bytes.Buffer }

func (f *fakeUART) Buffered() int { return 0 }

func TestSetLogLevel(t *testing.T) {
	original := GetLogLevel()
	defer SetLogLevel(original)

	for _, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		SetLogLevel(lvl)
		if got := GetLogLevel(); got != lvl {
			t.Fatalf("GetLogLevel() = %v, want %v", got, lvl)
		}
	}
}

func TestComponentAttribute(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	defer SetLogger(nil)

	LogInfo(ComponentPort, "claimed", "pin", "PE9")
	out := buf.String()
	if !strings.Contains(out, "component=port") || !strings.Contains(out, "pin=PE9") {
		t.Fatalf("missing attributes: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	original := GetLogLevel()
	defer SetLogLevel(original)

	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetLogger(nil)

	SetLogLevel(slog.LevelWarn)
	LogDebug(ComponentLamps, "hidden")
	LogWarn(ComponentLamps, "shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("debug record leaked: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("warn record missing: %s", buf.String())
	}
}

func TestUARTWriter(t *testing.T) {
	u := &fakeUART{}
	SetOutput(UARTWriter{U: u})
	defer SetLogger(nil)

	LogError(ComponentProgram, "halted")
	if !strings.Contains(u.String(), "msg=halted") {
		t.Fatalf("uart sink got %q", u.String())
	}

	n, err := UARTWriter{}.Write([]byte("dropped"))
	if err != nil || n != 7 {
		t.Fatalf("nil uart write = %d, %v", n, err)
	}
}

func TestDriversVersion(t *testing.T) {
	if DriversVersion() == "" {
		t.Fatal("empty drivers version")
	}
}
