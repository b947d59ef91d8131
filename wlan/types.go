// Package wlan implements the single-threaded cooperative event loop
// that owns the lifecycle of a device's wireless client and AP
// interfaces: admission of external requests, per-interface state
// machine orchestration, reconnection policy, roaming, country-code
// application, and defect reporting.
//
// Grounded on AIStore's xact/xreg registry (renew/find bookkeeping
// of in-flight work keyed by id) and its hk-driven periodic jobs,
// adapted from future-based xaction tracking to future-based FSM and
// selection-result tracking.
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package wlan

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

var js = jsoniter.ConfigFastest

// IfaceID identifies a client or AP interface; unique across both
// containers (invariant).
type IfaceID uint16

type Role int

const (
	RoleClient Role = iota
	RoleAp
	RoleMesh
)

type NetworkIdentifier struct {
	SSID        string
	SecurityType string
}

type Credential struct {
	Password string
	PSK      []byte
}

type ConnectReason int

const (
	ReasonUnspecified ConnectReason = iota
	ReasonStartup
	ReasonIdleInterfaceAutoconnect
	ReasonRetryAfterFailedConnectAttempt
	ReasonRoamConnect
	ReasonFidlConnectRequest
)

type SecuritySupport struct {
	Wpa3Supported bool
	SaeSupported  bool
}

// ClientInterface mirrors ClientInterface record.
type ClientInterface struct {
	ID              IfaceID
	SmeHandle       ClientSmeHandle
	Config          *NetworkIdentifier
	Fsm             ClientFsmApi
	SecuritySupport SecuritySupport
	LastRoamTime    time.Time
}

// ApConfig is the (opaque to this core) configuration an AP is started
// with; only the fields the loop itself inspects are modeled.
type ApConfig struct {
	SSID       string
	Credential Credential
}

// ApInterface mirrors ApInterface record.
type ApInterface struct {
	ID          IfaceID
	Config      *ApConfig
	Fsm         ApFsmApi
	EnabledTime *time.Time
}

type StateMachineMetadata struct {
	IfaceID IfaceID
	Role    Role
}

type ConnectAttemptRequest struct {
	Network    NetworkIdentifier
	Credential Credential
	Reason     ConnectReason
	Attempts   uint8
}

// Defect is the tagged union of fault conditions the event loop
// records against an interface.
type DefectKind int

const (
	DefectPhy DefectKind = iota
	DefectIface
)

type PhyFailure struct {
	PhyID uint16
	Event string
}

type IfaceFailure struct {
	IfaceID IfaceID
	Event   string
}

type Defect struct {
	Kind  DefectKind
	Phy   PhyFailure
	Iface IfaceFailure
}

// MarshalJSON/UnmarshalJSON let a Defect travel through structured
// logging and any future telemetry sink without hand-rolled encoding.
func (d Defect) MarshalJSON() ([]byte, error) {
	type alias Defect
	return js.Marshal(alias(d))
}

func (d *Defect) UnmarshalJSON(b []byte) error {
	type alias Defect
	return js.Unmarshal(b, (*alias)(d))
}

type ConnectionStats struct {
	IfaceID IfaceID
	RSSIDbm int32
	SNRDb   int32
	TxRateMbps float64
}

// BssCandidate is the opaque-to-this-core outcome of BSS selection.
type BssCandidate struct {
	IfaceID IfaceID
	BSSID   [6]byte
	Network NetworkIdentifier
	Credential Credential
}
