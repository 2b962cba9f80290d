package hooks

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wahlandcase/ticketprefix/internal/apperror"
	"github.com/wahlandcase/ticketprefix/internal/config"
	"github.com/wahlandcase/ticketprefix/internal/git"
	"github.com/wahlandcase/ticketprefix/internal/logger"
	"github.com/wahlandcase/ticketprefix/internal/testutil"
)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func newHandler(t *testing.T, fx *testutil.Repo) *Handler {
	t.Helper()
	repo, err := git.Open(fx.Dir, "origin", logger.Discard())
	if err != nil {
		t.Fatalf("git.Open: %v", err)
	}
	return NewHandler(loadConfig(t), repo, logger.Discard())
}

func writeMsg(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "COMMIT_EDITMSG")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readMsg(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestCommitMsg(t *testing.T) {
	fx := testutil.NewRepo(t)
	fx.Checkout("feat/JIRA-123-demo", true)
	h := newHandler(t, fx)

	tests := []struct {
		name    string
		message string
		reject  bool
	}{
		{"prefixed", "JIRA-123 add parser\n", false},
		{"ticket anywhere", "add parser for JIRA-7 import\n", false},
		{"missing", "add parser\n", true},
		{"comments before subject", "# Please enter the commit message\n\nadd parser\n", true},
		{"merge", "Merge branch 'main' into feat/JIRA-123-demo\n", false},
		{"revert", "Revert \"add parser\"\n", false},
		{"fixup", "fixup! add parser\n", false},
		{"squash", "squash! add parser\n", false},
		{"empty", "# only comments\n\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.CommitMsg(writeMsg(t, tt.message))
			if tt.reject {
				if !errors.Is(err, apperror.ErrHookRejected) {
					t.Fatalf("err = %v, want ErrHookRejected", err)
				}
				if hint := apperror.HintFor(err); !strings.Contains(hint, "JIRA-123 add parser") {
					t.Errorf("hint = %q, want a suggestion using the branch ticket", hint)
				}
				return
			}
			if err != nil {
				t.Errorf("CommitMsg: %v", err)
			}
		})
	}
}

func TestPrepareCommitMsg(t *testing.T) {
	fx := testutil.NewRepo(t)
	fx.Checkout("feat/JIRA-123-demo", true)
	h := newHandler(t, fx)

	tests := []struct {
		name    string
		message string
		source  string
		want    string
	}{
		{"message flag", "add parser\n", "message", "JIRA-123 add parser\n"},
		{"editor template", "\n# Please enter the commit message\n", "", "JIRA-123 \n\n# Please enter the commit message\n"},
		{"already prefixed", "JIRA-9 add parser\n", "message", "JIRA-9 add parser\n"},
		{"merge source", "Merge branch 'main'\n", "merge", "Merge branch 'main'\n"},
		{"squash source", "squash msg\n", "squash", "squash msg\n"},
		{"amend", "old subject\n", "commit", "old subject\n"},
		{"fixup subject", "fixup! add parser\n", "message", "fixup! add parser\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeMsg(t, tt.message)
			if err := h.PrepareCommitMsg(path, tt.source); err != nil {
				t.Fatalf("PrepareCommitMsg: %v", err)
			}
			if got := readMsg(t, path); got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrepareCommitMsg_NoTicketInBranch(t *testing.T) {
	fx := testutil.NewRepo(t)
	fx.Checkout("cleanup", true)
	h := newHandler(t, fx)

	path := writeMsg(t, "add parser\n")
	if err := h.PrepareCommitMsg(path, "message"); err != nil {
		t.Fatal(err)
	}
	if got := readMsg(t, path); got != "add parser\n" {
		t.Errorf("message changed to %q", got)
	}
}

func pushLine(ref, local, remote string) string {
	return ref + " " + local + " " + ref + " " + remote + "\n"
}

func TestPrePush(t *testing.T) {
	t.Run("new branch checks whole range", func(t *testing.T) {
		fx := testutil.NewRepo(t)
		fx.Checkout("feat/JIRA-123-demo", true)
		fx.Commit("JIRA-123 good")
		bad := fx.Commit("forgot ticket")
		h := newHandler(t, fx)

		err := h.PrePush(strings.NewReader(pushLine("refs/heads/feat/JIRA-123-demo", bad.String(), zeroHash)))
		if !errors.Is(err, apperror.ErrHookRejected) {
			t.Fatalf("err = %v, want ErrHookRejected", err)
		}
		if !strings.Contains(err.Error(), bad.String()[:7]) || strings.Contains(err.Error(), "good") {
			t.Errorf("error should name only the offending commit: %v", err)
		}
	})

	t.Run("existing branch checks only new commits", func(t *testing.T) {
		fx := testutil.NewRepo(t)
		fx.Checkout("feature", true)
		old := fx.Commit("legacy commit without ticket")
		tip := fx.Commit("JIRA-1 new work")
		h := newHandler(t, fx)

		err := h.PrePush(strings.NewReader(pushLine("refs/heads/feature", tip.String(), old.String())))
		if err != nil {
			t.Fatalf("PrePush: %v", err)
		}
	})

	t.Run("merges are allowed", func(t *testing.T) {
		fx := testutil.NewRepo(t)
		fx.Checkout("feature", true)
		fx.Commit("JIRA-1 work")
		fx.Checkout("main", false)
		mainWork := fx.Commit("main work")
		fx.Checkout("feature", false)
		tip := fx.Merge("Merge branch 'main' into feature", mainWork)
		h := newHandler(t, fx)

		if err := h.PrePush(strings.NewReader(pushLine("refs/heads/feature", tip.String(), zeroHash))); err != nil {
			t.Fatalf("PrePush: %v", err)
		}
	})

	t.Run("deletes tags and base branches are ignored", func(t *testing.T) {
		fx := testutil.NewRepo(t)
		tip := fx.Commit("main commit without ticket")
		h := newHandler(t, fx)

		input := pushLine("refs/heads/feature", zeroHash, tip.String()) +
			pushLine("refs/tags/v1.0.0", tip.String(), zeroHash) +
			pushLine("refs/heads/main", tip.String(), zeroHash)
		if err := h.PrePush(strings.NewReader(input)); err != nil {
			t.Fatalf("PrePush: %v", err)
		}
	})
}
