package logflags

import "testing"

func TestLoggerHasSubsystemField(t *testing.T) {
	entry := Logger()
	if entry.Data["subsystem"] != "gdb-index" {
		t.Fatalf("expected subsystem field to be 'gdb-index'; was <%v>", entry.Data["subsystem"])
	}
}
