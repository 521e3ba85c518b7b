package command

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReview(t *testing.T) {
	server := newMockServer(t)
	path := writePGN(t, "[Event \"Test\"]\n\n1. e4 e5 2. Nf3 *\n")

	out, _, err := runApp(t, "next\nnext\nstatus\nexit\n",
		"--server", server.URL, "review", "--no-channel", path)
	if err != nil {
		t.Fatalf("review error = %v", err)
	}

	for _, want := range []string{"1. e4 e5 2. Nf3", "1. e4 [e5] 2. Nf3", "evalboard>", "+0.35"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// load, next, next
	if n := len(server.analyzeRequests()); n != 3 {
		t.Errorf("fallback requests = %d, want 3", n)
	}
}

func TestReview_ChannelUnavailable(t *testing.T) {
	server := newMockServer(t)
	path := writePGN(t, "1. d4 *\n")

	out, errOut, err := runApp(t, "exit\n", "--server", server.URL, "--log-level", "warn", "review", path)
	if err != nil {
		t.Fatalf("review error = %v", err)
	}
	if !strings.Contains(errOut, "channel unavailable") {
		t.Errorf("stderr = %q", errOut)
	}
	if !strings.Contains(out, "+0.35") {
		t.Errorf("fallback result missing:\n%s", out)
	}
}

func TestReview_Errors(t *testing.T) {
	server := newMockServer(t)

	if _, _, err := runApp(t, "", "--server", server.URL, "review"); err == nil {
		t.Error("review without file should fail")
	}
	if _, _, err := runApp(t, "", "--server", server.URL, "review", filepath.Join(t.TempDir(), "none.pgn")); err == nil {
		t.Error("review of missing file should fail")
	}
	if _, _, err := runApp(t, "", "--server", server.URL, "review", "--no-channel", writePGN(t, "1. e5")); err == nil {
		t.Error("review of illegal game should fail")
	}
}

func TestPlay(t *testing.T) {
	server := newMockServer(t)

	out, _, err := runApp(t, "e4\ne5\nhistory\nquit\n", "--server", server.URL, "play", "--no-channel")
	if err != nil {
		t.Fatalf("play error = %v", err)
	}
	if !strings.Contains(out, "played e4") || !strings.Contains(out, "e4 e5") {
		t.Errorf("output = %q", out)
	}
	// initial position, e4, e5
	if n := len(server.analyzeRequests()); n != 3 {
		t.Errorf("fallback requests = %d, want 3", n)
	}
}

func TestPlay_FromFEN(t *testing.T) {
	server := newMockServer(t)
	fen := "8/4P3/8/8/8/8/k7/7K w - - 0 1"

	out, _, err := runApp(t, "e7e8q\nexit\n", "--server", server.URL, "play", "--no-channel", "--fen", fen)
	if err != nil {
		t.Fatalf("play error = %v", err)
	}
	if !strings.Contains(out, "played e8=Q") {
		t.Errorf("output = %q", out)
	}

	reqs := server.analyzeRequests()
	if len(reqs) != 2 || reqs[0]["position"] != fen {
		t.Errorf("requests = %v", reqs)
	}
}

func TestPlay_InvalidFEN(t *testing.T) {
	server := newMockServer(t)
	if _, _, err := runApp(t, "", "--server", server.URL, "play", "--fen", "garbage"); err == nil {
		t.Error("invalid FEN should fail")
	}
}

func TestPlay_HistorySaved(t *testing.T) {
	server := newMockServer(t)
	historyFile := filepath.Join(t.TempDir(), "history")
	t.Setenv("EVALBOARD_HISTORY_FILE", historyFile)

	if _, _, err := runApp(t, "e4\nexit\n", "--server", server.URL, "play", "--no-channel"); err != nil {
		t.Fatalf("play error = %v", err)
	}
	data, err := os.ReadFile(historyFile)
	if err != nil {
		t.Fatalf("history not saved: %v", err)
	}
	if string(data) != "e4\nexit\n" {
		t.Errorf("history = %q", data)
	}
}
