package console

import (
	"bytes"
	"io"
	"os"
	"testing"
	"time"

	"github.com/uptechstar/uptech-go/pkg/adcio"
	"github.com/uptechstar/uptech-go/pkg/output"
)

func captureStdout(f func()) string {
	r, w, _ := os.Pipe()
	stdout := os.Stdout
	os.Stdout = w
	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()
	f()
	_ = w.Close()
	os.Stdout = stdout
	return <-outC
}

func TestConsolePublish(t *testing.T) {
	c := NewConsole()
	ts := time.Date(2026, 8, 25, 14, 41, 54, 0, time.UTC)
	lines := byte(0b00000101)
	snap := output.Snapshot{
		Readings:  []adcio.Reading{{Channel: 0, Raw: 512, Volts: 1.65, Timestamp: ts}},
		Lines:     &lines,
		Timestamp: ts,
	}
	out := captureStdout(func() { _ = c.Publish(snap) })
	want := "2026-08-25T14:41:54Z channel=0 raw=512 volts=1.6500\n" +
		"2026-08-25T14:41:54Z lines=00000101\n"
	if out != want {
		t.Fatalf("console output mismatch:\n got: %q\nwant: %q", out, want)
	}
}
