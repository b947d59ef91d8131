package wlan

import (
	"context"
	"time"
)

// ClientSmeHandle, ApSmeHandle, ScanHandle are opaque transport-bound
// handles; this core never inspects their contents (scopes
// wire/transport glue out).
type (
	ClientSmeHandle any
	ApSmeHandle     any
	ScanHandle      any
)

// PhyManager is the collaborator interface the event loop uses to
// query and claim PHY-backed client interfaces.
type PhyManager interface {
	GetClient() (IfaceID, bool)
	GetWpa3CapableClient() (IfaceID, bool)
	CreateOrGetApIface(ctx context.Context) (IfaceID, bool, error)
	CreateAllClientIfaces(ctx context.Context, reason ConnectReason) ([]IfaceID, error)
	DestroyAllClientIfaces(ctx context.Context) error
	DestroyApIface(ctx context.Context, id IfaceID) error
	SetCountryCode(ctx context.Context, code [2]byte) error
	ClientConnectionsEnabled() bool
	HasWpa3ClientIface() bool
	OnIfaceRemoved(id IfaceID)
	RecordDefect(d Defect)
}

// DeviceMonitor is the collaborator interface the event loop uses to
// query interface state out-of-band.
type DeviceMonitor interface {
	QueryIface(ctx context.Context, id IfaceID) (Role, StateMachineMetadata, error)
	GetClientSme(ctx context.Context, id IfaceID) (ClientSmeHandle, error)
	GetApSme(ctx context.Context, id IfaceID) (ApSmeHandle, error)
	GetFeatureSupport(ctx context.Context, id IfaceID) (FeatureSupport, error)
}

type FeatureSupport interface {
	QuerySecuritySupport(ctx context.Context) (SecuritySupport, error)
}

// ClientFsmApi and ApFsmApi are consumed as opaque per-interface
// command channels; their own state-machine internals belong to
// another subsystem.
type ClientFsmApi interface {
	Connect(ctx context.Context, candidate BssCandidate) error
	Disconnect(ctx context.Context, reason ConnectReason) error
	IsAlive() bool
	// Done closes when the FSM task itself terminates, independent of
	// any Disconnect call; the liveness probe that the event loop's
	// per-interface FSM-termination select-arm watches.
	Done() <-chan struct{}
}

type ApFsmApi interface {
	Start(ctx context.Context, cfg ApConfig) error
	Stop(ctx context.Context) error
	Exit(ctx context.Context) error
	Done() <-chan struct{}
}

type SavedNetworks interface {
	KnownNetworkCount() int
	Store(id NetworkIdentifier, cred Credential) error
}

// TelemetryEvent enumerates the events the event loop reports.
type TelemetryEvent struct {
	Kind           TelemetryEventKind
	Reset          bool
	StopApDuration time.Duration
}

type TelemetryEventKind int

const (
	EvStartEstablishConnection TelemetryEventKind = iota
	EvClearEstablishConnectionStartTime
	EvStopAp
	EvRoamingScan
)

type Telemetry interface {
	Send(ev TelemetryEvent)
}

// Listeners is the client/AP state-update sink external observers
// subscribe through.
type Listeners interface {
	OnClientStateUpdate(id IfaceID, state ClientListenerState)
	OnApStateUpdate(id IfaceID, state ApListenerState)
}

type ClientListenerState int

const (
	ClientStateConnecting ClientListenerState = iota
	ClientStateConnected
	ClientStateFailed
	ClientStateDisconnected
)

type ApListenerState int

const (
	ApStateStarting ApListenerState = iota
	ApStateStarted
	ApStateStopped
	ApStateFailed
)

// BssSelector and NetworkSelector are the (out-of-scope here)
// collaborators that produce BSS/network-selection futures; this core
// only consumes their results.
type BssSelector interface {
	SelectBss(ctx context.Context, network NetworkIdentifier, cred Credential) (BssCandidate, bool, error)
}

type NetworkSelector interface {
	SelectNetwork(ctx context.Context) (NetworkIdentifier, Credential, bool, error)
}

type ScanProxy struct {
	IfaceID IfaceID
	Handle  ScanHandle
}
