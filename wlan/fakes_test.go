package wlan_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/NVIDIA/wlancore/wlan"
)

// recordingFsm is a ClientFsmApi that records every call it receives in
// order, so tests can assert on call sequencing the way AIStore's
// xact fakes record lifecycle transitions.
type recordingFsm struct {
	mu    sync.Mutex
	id    wlan.IfaceID
	calls []string
	alive bool
	done  chan struct{}
}

func newRecordingFsm(id wlan.IfaceID) *recordingFsm {
	return &recordingFsm{id: id, done: make(chan struct{})}
}

func (f *recordingFsm) Connect(_ context.Context, cand wlan.BssCandidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("Connect(%s)", cand.Network.SSID))
	f.alive = true
	return nil
}

func (f *recordingFsm) Disconnect(_ context.Context, reason wlan.ConnectReason) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("Disconnect(%d)", reason))
	f.alive = false
	return nil
}

func (f *recordingFsm) IsAlive() bool { return f.alive }

func (f *recordingFsm) Done() <-chan struct{} { return f.done }

func (f *recordingFsm) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// recordingApFsm mirrors recordingFsm for the AP-side interface.
type recordingApFsm struct {
	mu    sync.Mutex
	id    wlan.IfaceID
	calls []string
	done  chan struct{}
}

func newRecordingApFsm(id wlan.IfaceID) *recordingApFsm {
	return &recordingApFsm{id: id, done: make(chan struct{})}
}

func (f *recordingApFsm) Start(_ context.Context, cfg wlan.ApConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("Start(%s)", cfg.SSID))
	return nil
}

func (f *recordingApFsm) Stop(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "Stop")
	return nil
}

func (f *recordingApFsm) Exit(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "Exit")
	close(f.done)
	return nil
}

func (f *recordingApFsm) Done() <-chan struct{} { return f.done }

func (f *recordingApFsm) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// fakePhy is a minimal PhyManager recording SetCountryCode invocations
// and the client enable state the loop's atomic phases toggle.
type fakePhy struct {
	mu                  sync.Mutex
	clientsEnabled      bool
	countryCalls        [][2]byte
	setCountryErr       error
	createApID          wlan.IfaceID
	createAllClientsIDs []wlan.IfaceID
}

func (p *fakePhy) GetClient() (wlan.IfaceID, bool)            { return 0, false }
func (p *fakePhy) GetWpa3CapableClient() (wlan.IfaceID, bool) { return 0, false }

func (p *fakePhy) CreateOrGetApIface(ctx context.Context) (wlan.IfaceID, bool, error) {
	return p.createApID, false, nil
}

func (p *fakePhy) CreateAllClientIfaces(ctx context.Context, reason wlan.ConnectReason) ([]wlan.IfaceID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clientsEnabled = true
	return p.createAllClientsIDs, nil
}

func (p *fakePhy) DestroyAllClientIfaces(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clientsEnabled = false
	return nil
}

func (p *fakePhy) DestroyApIface(ctx context.Context, id wlan.IfaceID) error { return nil }

func (p *fakePhy) SetCountryCode(ctx context.Context, code [2]byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.countryCalls = append(p.countryCalls, code)
	return p.setCountryErr
}

func (p *fakePhy) ClientConnectionsEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clientsEnabled
}

func (p *fakePhy) HasWpa3ClientIface() bool { return false }
func (p *fakePhy) OnIfaceRemoved(id wlan.IfaceID) {}
func (p *fakePhy) RecordDefect(d wlan.Defect)     {}

func (p *fakePhy) CountryCalls() [][2]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][2]byte, len(p.countryCalls))
	copy(out, p.countryCalls)
	return out
}

// fakeMonitor answers QueryIface/GetClientSme deterministically for a
// fixed iface role map.
type fakeMonitor struct {
	mu         sync.Mutex
	roles      map[wlan.IfaceID]wlan.Role
	smeCalls   []wlan.IfaceID
	queryErr   error
}

func newFakeMonitor() *fakeMonitor {
	return &fakeMonitor{roles: make(map[wlan.IfaceID]wlan.Role)}
}

func (m *fakeMonitor) QueryIface(ctx context.Context, id wlan.IfaceID) (wlan.Role, wlan.StateMachineMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return 0, wlan.StateMachineMetadata{}, m.queryErr
	}
	role := m.roles[id]
	return role, wlan.StateMachineMetadata{IfaceID: id, Role: role}, nil
}

func (m *fakeMonitor) GetClientSme(ctx context.Context, id wlan.IfaceID) (wlan.ClientSmeHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.smeCalls = append(m.smeCalls, id)
	return fmt.Sprintf("sme-%d", id), nil
}

func (m *fakeMonitor) GetApSme(ctx context.Context, id wlan.IfaceID) (wlan.ApSmeHandle, error) {
	return fmt.Sprintf("ap-sme-%d", id), nil
}

func (m *fakeMonitor) GetFeatureSupport(ctx context.Context, id wlan.IfaceID) (wlan.FeatureSupport, error) {
	return fakeFeatureSupport{}, nil
}

func (m *fakeMonitor) SmeCalls() []wlan.IfaceID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]wlan.IfaceID, len(m.smeCalls))
	copy(out, m.smeCalls)
	return out
}

type fakeFeatureSupport struct{}

func (fakeFeatureSupport) QuerySecuritySupport(ctx context.Context) (wlan.SecuritySupport, error) {
	return wlan.SecuritySupport{}, nil
}

type fakeSaved struct {
	count int
}

func (s fakeSaved) KnownNetworkCount() int { return s.count }
func (fakeSaved) Store(id wlan.NetworkIdentifier, cred wlan.Credential) error { return nil }

// fakeBssSelector always returns one fixed candidate for the given
// network, or reports not-found when told to.
type fakeBssSelector struct {
	mu        sync.Mutex
	found     bool
	candidate wlan.BssCandidate
	err       error
}

func (b *fakeBssSelector) SelectBss(ctx context.Context, network wlan.NetworkIdentifier, cred wlan.Credential) (wlan.BssCandidate, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return wlan.BssCandidate{}, false, b.err
	}
	return b.candidate, b.found, nil
}

type fakeNetSelector struct{}

func (fakeNetSelector) SelectNetwork(ctx context.Context) (wlan.NetworkIdentifier, wlan.Credential, bool, error) {
	return wlan.NetworkIdentifier{}, wlan.Credential{}, false, nil
}
