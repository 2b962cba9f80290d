package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/wahlandcase/ticketprefix/internal/apperror"
	"github.com/wahlandcase/ticketprefix/internal/config"
	"github.com/wahlandcase/ticketprefix/internal/git"
	"github.com/wahlandcase/ticketprefix/internal/logger"
	"github.com/wahlandcase/ticketprefix/internal/models"
	"github.com/wahlandcase/ticketprefix/internal/testutil"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

type stubConfirm struct {
	answer bool
	err    error
	called bool
	plan   *models.RewritePlan
}

func (s *stubConfirm) Confirm(plan *models.RewritePlan, _ models.RepoInfo) (bool, error) {
	s.called = true
	s.plan = plan
	return s.answer, s.err
}

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

// featureRepo builds main plus a feature branch with unprefixed commits
func featureRepo(t *testing.T, branch string, subjects ...string) *testutil.Repo {
	t.Helper()
	fx := testutil.NewRepo(t)
	fx.Checkout(branch, true)
	for _, s := range subjects {
		fx.Commit(s)
	}
	return fx
}

func newRunner(t *testing.T, fx *testutil.Repo, confirm Confirmer) (*Runner, *bytes.Buffer) {
	t.Helper()
	repo, err := git.Open(fx.Dir, "origin", logger.Discard())
	if err != nil {
		t.Fatalf("git.Open: %v", err)
	}
	var out bytes.Buffer
	return NewRunner(loadConfig(t), repo, confirm, &out, logger.Discard()), &out
}

func TestRun_DryRunPrintsDiffsWithoutMutation(t *testing.T) {
	fx := featureRepo(t, "feat/JIRA-123-demo", "add parser", "wire parser", "fix typo")
	head := fx.Head()
	confirm := &stubConfirm{answer: true}
	r, out := newRunner(t, fx, confirm)

	if err := r.Run(context.Background(), Options{DryRun: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	for _, s := range []string{"add parser", "wire parser", "fix typo"} {
		if !strings.Contains(got, "- "+s+"\n") || !strings.Contains(got, "+ JIRA-123 "+s+"\n") {
			t.Errorf("missing diff for %q in:\n%s", s, got)
		}
	}
	if strings.Count(got, "\n+ ") != 3 {
		t.Errorf("want 3 diffs, got:\n%s", got)
	}
	if fx.Head() != head {
		t.Error("dry run moved the branch")
	}
	if confirm.called {
		t.Error("dry run must not ask for confirmation")
	}
	if r.State() != StateDone {
		t.Errorf("state = %s, want Done", r.State())
	}
}

func TestRun_RemoteWithoutForceBlocksBeforeMutation(t *testing.T) {
	fx := featureRepo(t, "feat/JIRA-123-demo", "add parser")
	fx.PushRemote("origin", "feat/JIRA-123-demo")
	head := fx.Head()
	confirm := &stubConfirm{answer: true}
	r, _ := newRunner(t, fx, confirm)

	err := r.Run(context.Background(), Options{})
	if !errors.Is(err, apperror.ErrUnpushedSafety) {
		t.Fatalf("err = %v, want ErrUnpushedSafety", err)
	}
	if apperror.ExitCode(err) == 0 {
		t.Error("exit code must be non-zero")
	}
	if fx.Head() != head || fx.RefExists(git.BackupRefName("feat/JIRA-123-demo")) {
		t.Error("repository was mutated")
	}
	if confirm.called {
		t.Error("blocked run must not reach confirmation")
	}
	if r.State() != StateFailed {
		t.Errorf("state = %s, want Failed", r.State())
	}
}

func TestRun_RemoteWithForce(t *testing.T) {
	fx := featureRepo(t, "feat/JIRA-123-demo", "add parser")
	fx.PushRemote("origin", "feat/JIRA-123-demo")
	r, _ := newRunner(t, fx, AutoConfirm{})

	if err := r.Run(context.Background(), Options{Force: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := fx.CommitObject(fx.Head()).Message; got != "JIRA-123 add parser" {
		t.Errorf("message = %q", got)
	}
}

func TestRun_DirtyTree(t *testing.T) {
	fx := featureRepo(t, "feat/JIRA-123-demo", "add parser")
	fx.WriteFile("file1.txt", "edited\n")
	r, _ := newRunner(t, fx, AutoConfirm{})

	if err := r.Run(context.Background(), Options{}); !errors.Is(err, apperror.ErrDirtyWorkingTree) {
		t.Fatalf("err = %v, want ErrDirtyWorkingTree", err)
	}
}

func TestRun_RewritesAndCleansUp(t *testing.T) {
	fx := featureRepo(t, "feat/JIRA-123-demo", "add parser", "JIRA-123 wire parser", "fix typo")
	base := fx.BranchHead("main")
	r, out := newRunner(t, fx, AutoConfirm{})

	if err := r.Run(context.Background(), Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := fx.FirstParentLog(fx.Head(), base)
	want := []string{"JIRA-123 fix typo", "JIRA-123 wire parser", "JIRA-123 add parser"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if fx.RefExists(git.BackupRefName("feat/JIRA-123-demo")) {
		t.Error("backup ref left behind")
	}
	if !strings.Contains(out.String(), "Rewrote 2 commit(s)") {
		t.Errorf("summary missing:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "git reset --hard") {
		t.Error("summary should include the undo hint")
	}
	if r.State() != StateDone {
		t.Errorf("state = %s, want Done", r.State())
	}
}

func TestRun_Declined(t *testing.T) {
	fx := featureRepo(t, "feat/JIRA-123-demo", "add parser")
	head := fx.Head()
	r, _ := newRunner(t, fx, &stubConfirm{answer: false})

	err := r.Run(context.Background(), Options{})
	if !IsUserAbort(err) {
		t.Fatalf("err = %v, want not-confirmed", err)
	}
	if fx.Head() != head {
		t.Error("declined run moved the branch")
	}
}

func TestRun_ConfirmError(t *testing.T) {
	fx := featureRepo(t, "feat/JIRA-123-demo", "add parser")
	r, _ := newRunner(t, fx, &stubConfirm{err: ErrNotInteractive})

	if err := r.Run(context.Background(), Options{}); !errors.Is(err, ErrNotInteractive) {
		t.Fatalf("err = %v, want ErrNotInteractive", err)
	}
}

func TestRun_ReplaceMode(t *testing.T) {
	fx := featureRepo(t, "feat/JIRA-124-release", "RELEASE_0.3.1 JIRA-123 some message")
	r, _ := newRunner(t, fx, AutoConfirm{})

	if err := r.Run(context.Background(), Options{Replace: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := fx.CommitObject(fx.Head()).Message
	if strings.Contains(got, "JIRA-123") || strings.Count(got, "JIRA-124") != 1 {
		t.Errorf("message = %q, want exactly one JIRA-124 and no JIRA-123", got)
	}
}

func TestRun_NothingToDo(t *testing.T) {
	fx := featureRepo(t, "feat/JIRA-123-demo", "JIRA-123 done already")
	head := fx.Head()
	confirm := &stubConfirm{answer: true}
	r, out := newRunner(t, fx, confirm)

	if err := r.Run(context.Background(), Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if confirm.called || fx.Head() != head {
		t.Error("nothing to do should not confirm or rewrite")
	}
	if !strings.Contains(out.String(), "nothing to do") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRun_OnBaseBranch(t *testing.T) {
	fx := testutil.NewRepo(t)
	r, _ := newRunner(t, fx, AutoConfirm{})

	err := r.Run(context.Background(), Options{Ticket: "JIRA-1", DryRun: true})
	if !errors.Is(err, apperror.ErrRangeResolution) {
		t.Fatalf("err = %v, want ErrRangeResolution", err)
	}
}

func TestResolvePrefix(t *testing.T) {
	fx := featureRepo(t, "feature/no-ticket-here", "work")
	r, _ := newRunner(t, fx, AutoConfirm{})

	tests := []struct {
		name    string
		branch  string
		opts    Options
		want    string
		wantErr error
	}{
		{"from branch", "feat/JIRA-123-demo", Options{}, "JIRA-123", nil},
		{"ticket flag", "feat/JIRA-123-demo", Options{Ticket: "ABC-99"}, "ABC-99", nil},
		{"prefix wins", "feat/JIRA-123-demo", Options{Ticket: "ABC-99", Prefix: "hotfix:"}, "hotfix:", nil},
		{"invalid ticket", "feat/JIRA-123-demo", Options{Ticket: "abc-1"}, "", apperror.ErrInvalidTicketFormat},
		{"ticket too long", "x", Options{Ticket: "ABCDEFGHIJK-1"}, "", apperror.ErrInvalidTicketFormat},
		{"no ticket", "feature/no-ticket-here", Options{}, "", apperror.ErrInvalidTicketFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.resolvePrefix(tt.branch, tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolvePrefix: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolvePrefix() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	if StateAwaitConfirmation.String() != "AwaitConfirmation" || State(99).String() != "Unknown" {
		t.Error("unexpected state names")
	}
}
