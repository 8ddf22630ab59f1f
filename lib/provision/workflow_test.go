// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/vaultkeys/vaultkeys/lib/bitwarden"
	"github.com/vaultkeys/vaultkeys/lib/secret"
	"github.com/vaultkeys/vaultkeys/lib/sshagent"
)

// fakeVault scripts the four vault operations. A nil error field means
// the operation succeeds with the configured value.
type fakeVault struct {
	versionErr error

	status    bitwarden.VaultStatus
	statusErr error

	unlockToken string
	unlockErr   error
	unlocks     int

	items    []bitwarden.Item
	listErr  error
	listings int
}

func (v *fakeVault) Version(ctx context.Context) (string, error) {
	if v.versionErr != nil {
		return "", v.versionErr
	}
	return "2024.6.0", nil
}

func (v *fakeVault) Status(ctx context.Context, token *secret.Buffer) (bitwarden.VaultStatus, error) {
	return v.status, v.statusErr
}

func (v *fakeVault) Unlock(ctx context.Context, password *secret.Buffer) (*secret.Buffer, error) {
	v.unlocks++
	if v.unlockErr != nil {
		return nil, v.unlockErr
	}
	return secret.NewFromBytes([]byte(v.unlockToken))
}

func (v *fakeVault) ListItems(ctx context.Context, token *secret.Buffer) ([]bitwarden.Item, error) {
	v.listings++
	if v.listErr != nil {
		return nil, v.listErr
	}
	return v.items, nil
}

// fakeAgent records submissions and can reject specific key names.
type fakeAgent struct {
	ensureErr error
	rejected  map[string]error // private key material -> error
	added     []string
}

func (a *fakeAgent) Ensure(ctx context.Context) (sshagent.Env, error) {
	if a.ensureErr != nil {
		return sshagent.Env{}, a.ensureErr
	}
	return sshagent.Env{SocketPath: "/tmp/agent.sock", PID: 42}, nil
}

func (a *fakeAgent) AddKey(ctx context.Context, env sshagent.Env, privateKey string) error {
	if err := a.rejected[privateKey]; err != nil {
		return err
	}
	a.added = append(a.added, privateKey)
	return nil
}

func promptReturning(t *testing.T, password string) (PasswordPrompt, *int) {
	t.Helper()
	calls := new(int)
	return func() (*secret.Buffer, error) {
		*calls++
		return secret.NewFromBytes([]byte(password))
	}, calls
}

func sshItem(name, key, fingerprint string) bitwarden.Item {
	return bitwarden.Item{
		Name:   name,
		SSHKey: &bitwarden.SSHKey{PrivateKey: key, KeyFingerprint: fingerprint},
	}
}

func TestRun_NoKeysInVault(t *testing.T) {
	t.Parallel()

	vault := &fakeVault{unlockToken: "fresh", items: []bitwarden.Item{{Name: "bank login"}}}
	agent := &fakeAgent{}
	prompt, _ := promptReturning(t, "pw")

	workflow := New(vault, agent, prompt, nil, nil, Options{})
	summary, err := workflow.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Keys) != 0 {
		t.Errorf("summary.Keys = %d, want 0", len(summary.Keys))
	}
	if len(agent.added) != 0 {
		t.Error("agent was invoked with no qualifying keys")
	}
	if workflow.State() != StateDone {
		t.Errorf("state = %s, want done", workflow.State())
	}
}

func TestRun_ExcludesEntriesWithoutPrivateKey(t *testing.T) {
	t.Parallel()

	vault := &fakeVault{unlockToken: "fresh", items: []bitwarden.Item{
		sshItem("github", "KEY1", "AA:BB"),
		{Name: "gitlab", SSHKey: &bitwarden.SSHKey{}},
	}}
	agent := &fakeAgent{}
	prompt, _ := promptReturning(t, "pw")

	workflow := New(vault, agent, prompt, nil, nil, Options{})
	summary, err := workflow.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Keys) != 1 || summary.Keys[0].Name != "github" {
		t.Fatalf("summary.Keys = %+v, want exactly the github entry", summary.Keys)
	}
	if summary.Keys[0].Fingerprint != "AA:BB" {
		t.Errorf("fingerprint = %q, want the vault's stored value", summary.Keys[0].Fingerprint)
	}
}

func TestRun_DryRunNeverInvokesAgent(t *testing.T) {
	t.Parallel()

	vault := &fakeVault{unlockToken: "fresh", items: []bitwarden.Item{
		sshItem("github", "KEY1", "AA"),
		sshItem("gitlab", "KEY2", "BB"),
	}}
	agent := &fakeAgent{}
	prompt, _ := promptReturning(t, "pw")

	workflow := New(vault, agent, prompt, nil, nil, Options{DryRun: true})
	summary, err := workflow.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.DryRun {
		t.Error("summary.DryRun = false")
	}
	if len(summary.Keys) != 2 {
		t.Fatalf("summary.Keys = %d, want 2", len(summary.Keys))
	}
	if len(agent.added) != 0 {
		t.Error("dry run must never invoke the agent")
	}
}

func TestRun_FailSoftPerKey(t *testing.T) {
	t.Parallel()

	vault := &fakeVault{unlockToken: "fresh", items: []bitwarden.Item{
		sshItem("first", "K1", "F1"),
		sshItem("broken", "K2", "F2"),
		sshItem("last", "K3", "F3"),
	}}
	agent := &fakeAgent{rejected: map[string]error{"K2": errors.New("invalid format")}}
	prompt, _ := promptReturning(t, "pw")

	workflow := New(vault, agent, prompt, nil, nil, Options{})
	summary, err := workflow.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v (per-key failure must not abort the run)", err)
	}

	if got := summary.Added() + summary.Failed(); got != 3 {
		t.Errorf("Added+Failed = %d, want the full selection length 3", got)
	}
	if summary.Added() != 2 || summary.Failed() != 1 {
		t.Errorf("Added = %d Failed = %d, want 2/1", summary.Added(), summary.Failed())
	}
	if len(agent.added) != 2 || agent.added[0] != "K1" || agent.added[1] != "K3" {
		t.Errorf("agent.added = %v, want keys after the failure still attempted", agent.added)
	}
	if kind := KindOf(summary.Keys[1].Err); kind != KindKeyAddFailed {
		t.Errorf("failed key error kind = %q, want key_add_failed", kind)
	}
	if workflow.State() != StateDone {
		t.Errorf("state = %s, want done despite a per-key failure", workflow.State())
	}
}

func TestRun_NameFilter(t *testing.T) {
	t.Parallel()

	vault := &fakeVault{unlockToken: "fresh", items: []bitwarden.Item{
		sshItem("GitHub deploy", "K1", "F1"),
		sshItem("bastion", "K2", "F2"),
		sshItem("github personal", "K3", "F3"),
	}}
	agent := &fakeAgent{}
	prompt, _ := promptReturning(t, "pw")

	workflow := New(vault, agent, prompt, nil, nil, Options{NameFilter: "GITHUB"})
	summary, err := workflow.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Keys) != 2 {
		t.Fatalf("summary.Keys = %d, want 2", len(summary.Keys))
	}
	if summary.Keys[0].Name != "GitHub deploy" || summary.Keys[1].Name != "github personal" {
		t.Errorf("selection order = %+v, want vault order preserved", summary.Keys)
	}
}

func TestRun_ReusesUnlockedInheritedToken(t *testing.T) {
	t.Parallel()

	token, err := secret.NewFromBytes([]byte("inherited"))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	defer token.Close()

	vault := &fakeVault{
		status: bitwarden.VaultStatus{Status: "unlocked"},
		items:  []bitwarden.Item{sshItem("github", "K1", "F1")},
	}
	agent := &fakeAgent{}
	prompt, promptCalls := promptReturning(t, "pw")

	workflow := New(vault, agent, prompt, nil, nil, Options{SessionToken: token})
	if _, err := workflow.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if *promptCalls != 0 {
		t.Error("prompt was called despite an unlocked inherited token")
	}
	if vault.unlocks != 0 {
		t.Error("unlock was called despite an unlocked inherited token")
	}
}

func TestRun_PromptsWhenInheritedTokenNotUsable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    bitwarden.VaultStatus
		statusErr error
	}{
		{"locked", bitwarden.VaultStatus{Status: "locked"}, nil},
		{"unauthenticated", bitwarden.VaultStatus{Status: "unauthenticated"}, nil},
		{"missing status field", bitwarden.VaultStatus{}, nil},
		{"malformed status response", bitwarden.VaultStatus{}, errors.New("parsing bw status response: invalid character")},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			token, err := secret.NewFromBytes([]byte("stale"))
			if err != nil {
				t.Fatalf("NewFromBytes: %v", err)
			}
			defer token.Close()

			vault := &fakeVault{
				status:      test.status,
				statusErr:   test.statusErr,
				unlockToken: "fresh",
				items:       []bitwarden.Item{sshItem("github", "K1", "F1")},
			}
			agent := &fakeAgent{}
			prompt, promptCalls := promptReturning(t, "pw")

			workflow := New(vault, agent, prompt, nil, nil, Options{SessionToken: token})
			if _, err := workflow.Run(context.Background()); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if *promptCalls != 1 {
				t.Errorf("prompt calls = %d, want 1", *promptCalls)
			}
			if vault.unlocks != 1 {
				t.Errorf("unlocks = %d, want 1", vault.unlocks)
			}
		})
	}
}

func TestRun_FatalKinds(t *testing.T) {
	t.Parallel()

	prompt, _ := promptReturning(t, "pw")

	tests := []struct {
		name     string
		vault    *fakeVault
		agent    *fakeAgent
		wantKind Kind
	}{
		{
			name:     "vault CLI missing",
			vault:    &fakeVault{versionErr: errors.New("exec: bw: not found")},
			agent:    &fakeAgent{},
			wantKind: KindPrerequisiteMissing,
		},
		{
			name:     "agent unavailable",
			vault:    &fakeVault{},
			agent:    &fakeAgent{ensureErr: errors.New("ssh-agent exited 1")},
			wantKind: KindAgentUnavailable,
		},
		{
			name:     "unlock rejected",
			vault:    &fakeVault{unlockErr: errors.New("Invalid master password")},
			agent:    &fakeAgent{},
			wantKind: KindAuthFailed,
		},
		{
			name:     "listing failed",
			vault:    &fakeVault{unlockToken: "fresh", listErr: errors.New("bw list items exited 1")},
			agent:    &fakeAgent{},
			wantKind: KindVaultQueryFailed,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			workflow := New(test.vault, test.agent, prompt, nil, nil, Options{})
			_, err := workflow.Run(context.Background())
			if err == nil {
				t.Fatal("expected fatal error")
			}
			if kind := KindOf(err); kind != test.wantKind {
				t.Errorf("kind = %q, want %q", kind, test.wantKind)
			}
			if workflow.State() != StateAborted {
				t.Errorf("state = %s, want aborted", workflow.State())
			}
		})
	}
}

func TestRun_AgentFailureHappensBeforeVaultInteraction(t *testing.T) {
	t.Parallel()

	vault := &fakeVault{}
	agent := &fakeAgent{ensureErr: errors.New("launch failed")}
	prompt, promptCalls := promptReturning(t, "pw")

	workflow := New(vault, agent, prompt, nil, nil, Options{})
	if _, err := workflow.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if vault.unlocks != 0 || vault.listings != 0 || *promptCalls != 0 {
		t.Error("vault was consulted after the agent stage already failed")
	}
}

// suspendRecorder verifies the prompt is bracketed by suspend/resume.
type suspendRecorder struct {
	events []string
}

func (r *suspendRecorder) Begin(int, string)   { r.events = append(r.events, "begin") }
func (r *suspendRecorder) Advance(int, string) {}
func (r *suspendRecorder) Suspend()            { r.events = append(r.events, "suspend") }
func (r *suspendRecorder) Resume()             { r.events = append(r.events, "resume") }
func (r *suspendRecorder) End()                { r.events = append(r.events, "end") }

func TestRun_PromptSuspendsReporter(t *testing.T) {
	t.Parallel()

	vault := &fakeVault{unlockToken: "fresh", items: nil}
	agent := &fakeAgent{}
	recorder := &suspendRecorder{}

	var observedState State
	workflow := New(vault, agent, nil, recorder, nil, Options{})
	workflow.prompt = func() (*secret.Buffer, error) {
		observedState = workflow.State()
		return secret.NewFromBytes([]byte("pw"))
	}

	if _, err := workflow.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if observedState != StateSuspended {
		t.Errorf("state during prompt = %s, want suspended", observedState)
	}

	want := []string{"begin", "suspend", "resume", "end"}
	if fmt.Sprint(recorder.events) != fmt.Sprint(want) {
		t.Errorf("reporter events = %v, want %v", recorder.events, want)
	}
}
