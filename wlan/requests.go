package wlan

// Each request type implements Request (Atomic) and carries its own
// reply channel, the way a single-threaded actor admits external work
// without blocking the loop on the caller.

type ConnectRequest struct {
	Network    NetworkIdentifier
	Credential Credential
	Reason     ConnectReason
	Reply      chan<- error
}

func (ConnectRequest) Atomic() bool { return false }

type DisconnectRequest struct {
	Network NetworkIdentifier
	Reason  ConnectReason
	Reply   chan<- error
}

func (DisconnectRequest) Atomic() bool { return true }

type RecordIdleIfaceRequest struct {
	IfaceID IfaceID
	Reply   chan<- struct{}
}

func (RecordIdleIfaceRequest) Atomic() bool { return false }

type HasIdleIfaceRequest struct {
	Reply chan<- bool
}

func (HasIdleIfaceRequest) Atomic() bool { return false }

type AddIfaceRequest struct {
	IfaceID IfaceID
	Reply   chan<- error
}

func (AddIfaceRequest) Atomic() bool { return false }

type RemoveIfaceRequest struct {
	IfaceID IfaceID
	Reply   chan<- error
}

func (RemoveIfaceRequest) Atomic() bool { return false }

type GetScanProxyRequest struct {
	Reply chan<- ScanProxyResult
}

type ScanProxyResult struct {
	Proxy ScanProxy
	Err   error
}

func (GetScanProxyRequest) Atomic() bool { return false }

type StartClientConnectionsRequest struct {
	Reply chan<- error
}

func (StartClientConnectionsRequest) Atomic() bool { return false }

type StopClientConnectionsRequest struct {
	Reason ConnectReason
	Reply  chan<- error
}

func (StopClientConnectionsRequest) Atomic() bool { return true }

type StartApRequest struct {
	Config ApConfig
	Reply  chan<- error
}

func (StartApRequest) Atomic() bool { return false }

type StopApRequest struct {
	SSID       string
	Credential Credential
	Reply      chan<- error
}

func (StopApRequest) Atomic() bool { return true }

type StopAllApsRequest struct {
	Reply chan<- error
}

func (StopAllApsRequest) Atomic() bool { return true }

type HasWpa3IfaceRequest struct {
	Reply chan<- bool
}

func (HasWpa3IfaceRequest) Atomic() bool { return false }

type SetCountryRequest struct {
	Code  [2]byte
	Reply chan<- error
}

func (SetCountryRequest) Atomic() bool { return true }
