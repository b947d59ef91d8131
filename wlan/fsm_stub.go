package wlan

import "context"

// defaultClientFsm and defaultApFsm are the event loop's fallback FSM
// handles, used when a deployment doesn't supply its own
// DeviceMonitor-backed implementation. The FSM's own
// state-machine internals are owned by another subsystem and are
// opaque here; these stubs only track liveness so the loop's
// bookkeeping ("either client.fsm is alive or the
// interface is listed by idle_clients()") has something concrete to
// call during tests and local CLI use.
type defaultClientFsm struct {
	id    IfaceID
	alive bool
	done  chan struct{}
}

func (f *defaultClientFsm) Connect(_ context.Context, _ BssCandidate) error {
	f.alive = true
	if f.done == nil {
		f.done = make(chan struct{})
	}
	return nil
}

func (f *defaultClientFsm) Disconnect(_ context.Context, _ ConnectReason) error {
	f.alive = false
	return nil
}

func (f *defaultClientFsm) IsAlive() bool { return f.alive }

func (f *defaultClientFsm) Done() <-chan struct{} {
	if f.done == nil {
		f.done = make(chan struct{})
	}
	return f.done
}

type defaultApFsm struct {
	id      IfaceID
	sme     ApSmeHandle
	running bool
	done    chan struct{}
}

func (f *defaultApFsm) Start(_ context.Context, _ ApConfig) error {
	f.running = true
	return nil
}

func (f *defaultApFsm) Stop(_ context.Context) error {
	f.running = false
	return nil
}

func (f *defaultApFsm) Exit(_ context.Context) error {
	f.running = false
	if f.done != nil {
		close(f.done)
	}
	return nil
}

func (f *defaultApFsm) Done() <-chan struct{} {
	if f.done == nil {
		f.done = make(chan struct{})
	}
	return f.done
}
