package wlan

import (
	"context"
	"time"

	"github.com/NVIDIA/wlancore/internal/cmn/debug"
	"github.com/NVIDIA/wlancore/internal/config"
	"github.com/NVIDIA/wlancore/internal/hk"
	"github.com/NVIDIA/wlancore/internal/nlog"
)

// ifaceAny is the OperationQueue key used for futures that are not yet
// tied to a specific interface (e.g. network selection, which picks
// the interface as part of its result).
const ifaceAny IfaceID = 0xffff

const reconnectTimerName = "wlan-reconnect-monitor"

// EventLoop is the single-threaded cooperative reactor that owns an
// interface manager's state: it multiplexes FSM terminations, the
// reconnect timer, deferred
// operation futures, selection futures, periodic stats, defects, and
// the atomic-gated inbound request stream. Only one case ever runs at
// a time. Run's select loop is the only place that mutates Store.
//
// Grounded on AIStore's xact/xreg dispatch loop style (a registry
// of in-flight work plus a single place that reconciles completions)
// and on hk's periodic-job pattern for the reconnect timer.
type EventLoop struct {
	store *IfaceStore
	ops   *OperationQueue
	gate  *AtomicRequestGate
	hk    *hk.HK
	cfg   config.WLAN

	phy     PhyManager
	monitor DeviceMonitor
	saved   SavedNetworks
	telem   Telemetry
	listen  Listeners
	bssSel  BssSelector
	netSel  NetworkSelector

	newClientFsm func(IfaceID) ClientFsmApi
	newApFsm     func(IfaceID) ApFsmApi

	statsCh  chan ConnectionStats
	defectCh chan Defect

	reconnectInterval time.Duration

	pendingAddIface    map[IfaceID]chan<- error
	pendingRemoveIface map[IfaceID]chan<- error
}

type Deps struct {
	Phy     PhyManager
	Monitor DeviceMonitor
	Saved   SavedNetworks
	Telem   Telemetry
	Listen  Listeners
	BssSel  BssSelector
	NetSel  NetworkSelector

	// NewClientFsm and NewApFsm override how the loop constructs a
	// fresh FSM handle when none exists yet for an interface. Nil
	// falls back to the built-in liveness-only stub; tests supply a
	// recording fake here to assert on FSM call ordering.
	NewClientFsm func(IfaceID) ClientFsmApi
	NewApFsm     func(IfaceID) ApFsmApi
}

func NewEventLoop(cfg config.WLAN, deps Deps, requests <-chan Request) *EventLoop {
	newClientFsm := deps.NewClientFsm
	if newClientFsm == nil {
		newClientFsm = func(id IfaceID) ClientFsmApi { return &defaultClientFsm{id: id} }
	}
	newApFsm := deps.NewApFsm
	if newApFsm == nil {
		newApFsm = func(id IfaceID) ApFsmApi { return &defaultApFsm{id: id} }
	}
	l := &EventLoop{
		store:             NewIfaceStore(),
		ops:               NewOperationQueue(),
		gate:              NewAtomicRequestGate(requests),
		hk:                hk.New(),
		cfg:               cfg,
		phy:               deps.Phy,
		monitor:           deps.Monitor,
		saved:             deps.Saved,
		telem:             deps.Telem,
		listen:            deps.Listen,
		bssSel:            deps.BssSel,
		netSel:            deps.NetSel,
		newClientFsm:      newClientFsm,
		newApFsm:          newApFsm,
		statsCh:           make(chan ConnectionStats, 16),
		defectCh:          make(chan Defect, 16),
		reconnectInterval: cfg.ReconnectMinInterval,

		pendingAddIface:    make(map[IfaceID]chan<- error),
		pendingRemoveIface: make(map[IfaceID]chan<- error),
	}
	return l
}

func (l *EventLoop) Store() *IfaceStore { return l.store }

// StatsChan and DefectChan are the inbound streams an external
// transport adapter feeds (scheduling model, items 5-6).
func (l *EventLoop) StatsChan() chan<- ConnectionStats { return l.statsCh }
func (l *EventLoop) DefectChan() chan<- Defect         { return l.defectCh }

// Run drives the loop until ctx is cancelled or the inbound request
// stream closes, the loop's only unrecoverable termination condition.
func (l *EventLoop) Run(ctx context.Context) error {
	go l.hk.Run()
	defer l.hk.Stop()
	l.scheduleReconnect()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case res, ok := <-l.ops.Results():
			if !ok {
				return nil
			}
			l.handleFutureResult(ctx, res)

		case stat := <-l.statsCh:
			l.handleStats(ctx, stat)

		case d := <-l.defectCh:
			if encoded, err := d.MarshalJSON(); err == nil {
				nlog.Infof("wlan: defect %s", encoded)
			}
			l.ops.Launch(ctx, FutureDefect, 0, func(ctx context.Context) (any, error) {
				l.phy.RecordDefect(d)
				return nil, nil
			})

		case g, ok := <-l.gate.Out():
			if !ok {
				return nil // inbound stream closed: uninhabited-result termination
			}
			l.dispatch(ctx, g)
		}
	}
}

// dispatch handles one gated request to completion before Run selects
// again. Atomic requests are handled synchronously here (rather than
// as a spawned goroutine touching Store concurrently with Run's other
// arms) precisely so that Store mutations never race: the loop is
// single-threaded, and the Token only needs to keep the *inbound*
// stream from advancing while this call is in progress, which
// synchronous handling gives for free. SetCountry's best-effort
// restoration phase, which runs outside the token, is the one
// deliberate exception, see handleSetCountry.
func (l *EventLoop) dispatch(ctx context.Context, g Gated) {
	switch req := g.Req.(type) {
	case ConnectRequest:
		l.handleConnect(ctx, req)
	case DisconnectRequest:
		req.Reply <- l.handleDisconnect(ctx, req)
		g.Tok.Release()
	case RecordIdleIfaceRequest:
		l.store.RecordIdle(req.IfaceID)
		req.Reply <- struct{}{}
	case HasIdleIfaceRequest:
		req.Reply <- l.store.HasIdleIface()
	case AddIfaceRequest:
		l.handleAddIface(ctx, req)
	case RemoveIfaceRequest:
		l.handleRemoveIface(ctx, req)
	case GetScanProxyRequest:
		l.handleGetScanProxy(req)
	case StartClientConnectionsRequest:
		l.handleStartClientConnections(ctx, req)
	case StopClientConnectionsRequest:
		req.Reply <- l.stopClientConnections(ctx)
		g.Tok.Release()
	case StartApRequest:
		l.handleStartAp(ctx, req)
	case StopApRequest:
		req.Reply <- l.handleStopAp(ctx, req)
		g.Tok.Release()
	case StopAllApsRequest:
		req.Reply <- l.stopAllAps(ctx)
		g.Tok.Release()
	case HasWpa3IfaceRequest:
		req.Reply <- l.phy.HasWpa3ClientIface() || l.store.HasWpa3Iface()
	case SetCountryRequest:
		l.handleSetCountry(ctx, req, g.Tok)
	default:
		debug.Assert(false, "unhandled request type")
	}
}

//
// Connect ("Connect")
//

func (l *EventLoop) handleConnect(ctx context.Context, req ConnectRequest) {
	for _, c := range l.store.AllClients() {
		if c.Config != nil && *c.Config == req.Network {
			req.Reply <- nil // already connected: no-op success
			return
		}
	}
	if l.listen != nil {
		for _, c := range l.store.AllClients() {
			l.listen.OnClientStateUpdate(c.ID, ClientStateConnecting)
		}
	}
	l.telem.Send(TelemetryEvent{Kind: EvStartEstablishConnection, Reset: true})
	l.launchBssSelection(ctx, req, 1)
}

func (l *EventLoop) launchBssSelection(ctx context.Context, req ConnectRequest, attempt uint8) {
	l.ops.Cancel(FutureNetworkSelection, ifaceAny)
	l.ops.Launch(ctx, FutureBssSelection, ifaceAny, func(ctx context.Context) (any, error) {
		cand, found, err := l.bssSel.SelectBss(ctx, req.Network, req.Credential)
		if err != nil {
			return nil, err
		}
		if !found {
			return connectAttemptOutcome{req: req, attempt: attempt, found: false}, nil
		}
		return connectAttemptOutcome{req: req, attempt: attempt, found: true, candidate: cand}, nil
	})
}

type connectAttemptOutcome struct {
	req       ConnectRequest
	attempt   uint8
	found     bool
	candidate BssCandidate
}

func (l *EventLoop) onBssSelectionResult(ctx context.Context, res FutureResult) {
	if res.Err != nil {
		nlog.Warnf("wlan: bss selection failed: %v", res.Err)
		return
	}
	outcome := res.Payload.(connectAttemptOutcome)
	if !outcome.found {
		if outcome.attempt >= l.cfg.MaxConnectAttempts {
			if l.listen != nil {
				for _, c := range l.store.AllClients() {
					l.listen.OnClientStateUpdate(c.ID, ClientStateFailed)
				}
			}
			outcome.req.Reply <- errNoCandidate
			return
		}
		l.launchBssSelection(ctx, outcome.req, outcome.attempt+1)
		return
	}
	l.connectToCandidate(ctx, outcome.candidate, outcome.req)
}

func (l *EventLoop) connectToCandidate(ctx context.Context, cand BssCandidate, req ConnectRequest) {
	c, ok := l.store.Client(cand.IfaceID)
	if !ok {
		req.Reply <- cosErrNotFound("client iface", cand.IfaceID)
		return
	}
	isNewFsm := c.Fsm == nil
	if isNewFsm {
		fsm, err := l.constructClientFsm(ctx, c)
		if err != nil {
			req.Reply <- err
			return
		}
		c.Fsm = fsm
		// a freshly constructed FSM always clears any stale SME state
		// with a startup disconnect before the real connect attempt.
		_ = c.Fsm.Disconnect(ctx, ReasonStartup)
	}
	if err := c.Fsm.Connect(ctx, cand); err != nil {
		c.Fsm = nil
		req.Reply <- err
		return
	}
	if isNewFsm {
		l.watchClientFsm(ctx, c.ID, c.Fsm)
	}
	l.ops.Cancel(FutureNetworkSelection, ifaceAny)
	network := cand.Network
	c.Config = &network
	c.LastRoamTime = time.Now()
	l.store.ClearIdle(c.ID)
	if l.listen != nil {
		l.listen.OnClientStateUpdate(c.ID, ClientStateConnected)
	}
	l.telem.Send(TelemetryEvent{Kind: EvClearEstablishConnectionStartTime})
	req.Reply <- nil
}

// constructClientFsm builds a fresh FSM handle for a client interface
// about to connect for the first time (Connect: "if no FSM
// exists for the chosen iface, construct one"), fetching its SME handle
// from the DeviceMonitor the same way AddIface does.
func (l *EventLoop) constructClientFsm(ctx context.Context, c *ClientInterface) (ClientFsmApi, error) {
	if c.SmeHandle == nil {
		sme, err := l.monitor.GetClientSme(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		c.SmeHandle = sme
	}
	return l.newClientFsm(c.ID), nil
}

// watchClientFsm and watchApFsm register a FutureFsmTermination future
// per live FSM (scheduling model, item 1: "terminations of
// per-interface FSM futures"). The event loop learns of a termination
// through onFsmTermination, never by polling.
func (l *EventLoop) watchClientFsm(ctx context.Context, id IfaceID, fsm ClientFsmApi) {
	l.ops.Launch(ctx, FutureFsmTermination, id, func(ctx context.Context) (any, error) {
		select {
		case <-fsm.Done():
		case <-ctx.Done():
		}
		return nil, nil
	})
}

func (l *EventLoop) watchApFsm(ctx context.Context, id IfaceID, fsm ApFsmApi) {
	l.ops.Launch(ctx, FutureFsmTermination, id, func(ctx context.Context) (any, error) {
		select {
		case <-fsm.Done():
		case <-ctx.Done():
		}
		return nil, nil
	})
}

//
// Disconnect (atomic)
//

func (l *EventLoop) handleDisconnect(ctx context.Context, req DisconnectRequest) error {
	for _, c := range l.store.AllClients() {
		if c.Config != nil && *c.Config == req.Network {
			if c.Fsm == nil {
				c.Config = nil
				l.store.RecordIdle(c.ID)
				return nil
			}
			if err := c.Fsm.Disconnect(ctx, req.Reason); err != nil {
				c.Fsm = nil
				return err
			}
			c.Config = nil
			l.store.RecordIdle(c.ID)
			return nil
		}
	}
	return nil // no match: no client is connected to this network, nothing to do
}

//
// AddIface / RemoveIface
//

// addIfaceOutcome carries everything handleAddIface's background
// query needs applied to Store; the mutation itself happens in
// onDeferredOpResult, back on the loop goroutine, so Store is never
// touched from the spawned future.
type addIfaceOutcome struct {
	role Role
	sme  ClientSmeHandle
	sec  SecuritySupport
	apSme ApSmeHandle
}

func (l *EventLoop) handleAddIface(ctx context.Context, req AddIfaceRequest) {
	l.ops.Launch(ctx, FutureDeferredOp, req.IfaceID, func(ctx context.Context) (any, error) {
		role, _, err := l.monitor.QueryIface(ctx, req.IfaceID)
		if err != nil {
			return nil, err
		}
		switch role {
		case RoleClient:
			sme, err := l.monitor.GetClientSme(ctx, req.IfaceID)
			if err != nil {
				return nil, err
			}
			var sec SecuritySupport
			if fs, err := l.monitor.GetFeatureSupport(ctx, req.IfaceID); err == nil {
				sec, _ = fs.QuerySecuritySupport(ctx)
			}
			return addIfaceOutcome{role: RoleClient, sme: sme, sec: sec}, nil
		case RoleAp:
			apSme, err := l.monitor.GetApSme(ctx, req.IfaceID)
			if err != nil {
				return nil, err
			}
			return addIfaceOutcome{role: RoleAp, apSme: apSme}, nil
		default: // Mesh is explicitly unsupported (AddIface)
			return nil, errMeshUnsupported
		}
	})
	l.pendingAddIface[req.IfaceID] = req.Reply
}

// removeIfaceOutcome records whether the removed id was a client, so
// onDeferredOpResult knows whether recovered ids should be added.
type removeIfaceOutcome struct {
	wasClient bool
	newIDs    []IfaceID
}

func (l *EventLoop) handleRemoveIface(ctx context.Context, req RemoveIfaceRequest) {
	_, wasClient := l.store.Client(req.IfaceID)
	if wasClient {
		l.store.RemoveClient(req.IfaceID)
	} else {
		l.store.RemoveAp(req.IfaceID)
	}
	l.ops.Launch(ctx, FutureDeferredOp, req.IfaceID, func(ctx context.Context) (any, error) {
		l.phy.OnIfaceRemoved(req.IfaceID) // drop PHY's reference before recreating anything
		if !wasClient {
			return removeIfaceOutcome{}, nil
		}
		newIDs, err := l.phy.CreateAllClientIfaces(ctx, ReasonIdleInterfaceAutoconnect)
		if err != nil {
			nlog.Warnf("wlan: best-effort client iface recovery failed: %v", err)
		}
		return removeIfaceOutcome{wasClient: true, newIDs: newIDs}, nil
	})
	l.pendingRemoveIface[req.IfaceID] = req.Reply
}

func (l *EventLoop) onDeferredOpResult(ctx context.Context, res FutureResult) {
	if reply, ok := l.pendingAddIface[res.IfaceID]; ok {
		delete(l.pendingAddIface, res.IfaceID)
		if res.Err == nil {
			outcome := res.Payload.(addIfaceOutcome)
			switch outcome.role {
			case RoleClient:
				l.store.AddClient(&ClientInterface{ID: res.IfaceID, SmeHandle: outcome.sme, SecuritySupport: outcome.sec})
				l.store.RecordIdle(res.IfaceID)
			case RoleAp:
				fsm := l.newApFsm(res.IfaceID)
				l.store.AddAp(&ApInterface{ID: res.IfaceID, Fsm: fsm})
				l.watchApFsm(ctx, res.IfaceID, fsm)
			}
		}
		reply <- res.Err
		return
	}
	if reply, ok := l.pendingRemoveIface[res.IfaceID]; ok {
		delete(l.pendingRemoveIface, res.IfaceID)
		outcome, _ := res.Payload.(removeIfaceOutcome)
		for _, id := range outcome.newIDs {
			l.store.AddClient(&ClientInterface{ID: id})
			l.store.RecordIdle(id)
		}
		if outcome.wasClient && l.store.ClientCount() == 0 {
			nlog.Infof("wlan: no client interfaces remain; connections disabled")
		}
		reply <- res.Err
		return
	}
	// a future whose requester already gave up
}

//
// GetScanProxy
//

func (l *EventLoop) handleGetScanProxy(req GetScanProxyRequest) {
	for _, c := range l.store.AllClients() {
		req.Reply <- ScanProxyResult{Proxy: ScanProxy{IfaceID: c.ID, Handle: c.SmeHandle}}
		return
	}
	req.Reply <- ScanProxyResult{Err: errNoClientIface}
}

//
// Start/Stop client connections
//

func (l *EventLoop) handleStartClientConnections(ctx context.Context, req StartClientConnectionsRequest) {
	ids, err := l.phy.CreateAllClientIfaces(ctx, ReasonStartup)
	if err == nil {
		for _, id := range ids {
			if _, ok := l.store.Client(id); !ok {
				l.store.AddClient(&ClientInterface{ID: id})
				l.store.RecordIdle(id)
			}
		}
	}
	req.Reply <- err
}

func (l *EventLoop) stopClientConnections(ctx context.Context) error {
	for _, c := range l.store.AllClients() {
		if c.Fsm != nil {
			_ = c.Fsm.Disconnect(ctx, ReasonUnspecified)
		}
	}
	return l.phy.DestroyAllClientIfaces(ctx)
}

//
// AP lifecycle
//

func (l *EventLoop) handleStartAp(ctx context.Context, req StartApRequest) {
	id, _, err := l.phy.CreateOrGetApIface(ctx)
	if err != nil {
		req.Reply <- err
		return
	}
	ap, ok := l.store.Ap(id)
	if !ok {
		fsm := l.newApFsm(id)
		ap = &ApInterface{ID: id, Fsm: fsm}
		l.store.AddAp(ap)
		l.watchApFsm(ctx, id, fsm)
	}
	if err := ap.Fsm.Start(ctx, req.Config); err != nil {
		req.Reply <- err
		return
	}
	cfg := req.Config
	ap.Config = &cfg
	if ap.EnabledTime == nil {
		now := time.Now()
		ap.EnabledTime = &now // set exactly on the no-AP -> AP-started transition
	}
	if l.listen != nil {
		l.listen.OnApStateUpdate(id, ApStateStarted)
	}
	req.Reply <- nil
}

func (l *EventLoop) handleStopAp(ctx context.Context, req StopApRequest) error {
	for _, ap := range l.store.AllAps() {
		if ap.Config != nil && ap.Config.SSID == req.SSID {
			return l.stopOneAp(ctx, ap)
		}
	}
	return nil
}

func (l *EventLoop) stopOneAp(ctx context.Context, ap *ApInterface) error {
	if err := ap.Fsm.Stop(ctx); err != nil {
		return err
	}
	l.emitStopApTelemetry(ap)
	ap.Config = nil
	ap.EnabledTime = nil
	if l.listen != nil {
		l.listen.OnApStateUpdate(ap.ID, ApStateStopped)
	}
	return l.phy.DestroyApIface(ctx, ap.ID)
}

// emitStopApTelemetry fires "StopAp{duration}" iff EnabledTime was
// non-None (AP invariant).
func (l *EventLoop) emitStopApTelemetry(ap *ApInterface) {
	if ap.EnabledTime == nil {
		return
	}
	l.telem.Send(TelemetryEvent{Kind: EvStopAp, StopApDuration: time.Since(*ap.EnabledTime)})
}

func (l *EventLoop) stopAllAps(ctx context.Context) error {
	var firstErr error
	for _, ap := range l.store.AllAps() {
		if err := l.stopOneAp(ctx, ap); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

//
// SetCountry (atomic, all-or-nothing stop-clients/stop-aps/set-country;
// restoration afterward is best-effort)
//

func (l *EventLoop) handleSetCountry(ctx context.Context, req SetCountryRequest, tok *Token) {
	clientsWereEnabled := l.phy.ClientConnectionsEnabled()
	apConfigs := make([]ApConfig, 0)
	for _, ap := range l.store.AllAps() {
		if ap.Config != nil {
			apConfigs = append(apConfigs, *ap.Config)
		}
	}

	err := l.setCountryAtomicPhase(ctx, req.Code)
	tok.Release() // atomic phase ends here regardless of outcome
	req.Reply <- err

	if err != nil {
		return
	}
	// best-effort restoration, outside the token
	if clientsWereEnabled {
		if _, startErr := l.phy.CreateAllClientIfaces(ctx, ReasonStartup); startErr != nil {
			nlog.Warnf("wlan: best-effort client reconnect after SetCountry failed: %v", startErr)
		}
	}
	for _, cfg := range apConfigs {
		id, _, err := l.phy.CreateOrGetApIface(ctx)
		if err != nil {
			nlog.Warnf("wlan: best-effort AP restart after SetCountry failed: %v", err)
			continue
		}
		ap, ok := l.store.Ap(id)
		if !ok {
			fsm := l.newApFsm(id)
			ap = &ApInterface{ID: id, Fsm: fsm}
			l.store.AddAp(ap)
			l.watchApFsm(ctx, id, fsm)
		}
		if err := ap.Fsm.Start(ctx, cfg); err != nil {
			nlog.Warnf("wlan: best-effort AP restart after SetCountry failed: %v", err)
			continue
		}
		cfgCopy := cfg
		ap.Config = &cfgCopy
		now := time.Now()
		ap.EnabledTime = &now
	}
}

func (l *EventLoop) setCountryAtomicPhase(ctx context.Context, code [2]byte) error {
	if err := l.stopClientConnections(ctx); err != nil {
		return err
	}
	if err := l.stopAllAps(ctx); err != nil {
		return err
	}
	return l.phy.SetCountryCode(ctx, code)
}

//
// Reconnect monitor ("Auto-reconnect loop", 1s..10s backoff)
//

func (l *EventLoop) scheduleReconnect() {
	l.hk.Reg(reconnectTimerName, l.fireReconnect, l.reconnectInterval)
}

func (l *EventLoop) fireReconnect() time.Duration {
	eligible := l.store.HasIdleIface() &&
		l.saved.KnownNetworkCount() > 0 &&
		!l.ops.Outstanding(FutureNetworkSelection, ifaceAny)
	if !eligible {
		return l.reconnectInterval
	}
	ctx := context.Background()
	l.ops.Launch(ctx, FutureNetworkSelection, ifaceAny, func(ctx context.Context) (any, error) {
		network, cred, found, err := l.netSel.SelectNetwork(ctx)
		if err != nil {
			return nil, err
		}
		return networkSelectionOutcome{found: found, network: network, credential: cred}, nil
	})
	return l.reconnectInterval
}

type networkSelectionOutcome struct {
	found      bool
	network    NetworkIdentifier
	credential Credential
}

func (l *EventLoop) onNetworkSelectionResult(ctx context.Context, res FutureResult) {
	if res.Err != nil || res.Payload == nil {
		l.backoffReconnect()
		return
	}
	outcome := res.Payload.(networkSelectionOutcome)
	if !outcome.found {
		l.backoffReconnect()
		return
	}
	l.reconnectInterval = l.cfg.ReconnectMinInterval
	l.hk.Reg(reconnectTimerName, l.fireReconnect, l.reconnectInterval)
	for _, id := range l.store.IdleClients() {
		c, ok := l.store.Client(id)
		if !ok || c.Fsm != nil {
			continue
		}
		fsm, err := l.constructClientFsm(ctx, c)
		if err != nil {
			continue
		}
		c.Fsm = fsm
		_ = c.Fsm.Disconnect(ctx, ReasonStartup)
		cand := BssCandidate{IfaceID: id, Network: outcome.network, Credential: outcome.credential}
		if err := c.Fsm.Connect(ctx, cand); err != nil {
			c.Fsm = nil
			continue
		}
		l.watchClientFsm(ctx, id, c.Fsm)
		net := outcome.network
		c.Config = &net
		c.LastRoamTime = time.Now()
		l.store.ClearIdle(id)
	}
}

func (l *EventLoop) backoffReconnect() {
	l.reconnectInterval *= 2
	if l.reconnectInterval > l.cfg.ReconnectMaxInterval {
		l.reconnectInterval = l.cfg.ReconnectMaxInterval
	}
	l.hk.Reg(reconnectTimerName, l.fireReconnect, l.reconnectInterval)
}

//
// Roaming ("Roaming")
//

func (l *EventLoop) handleStats(ctx context.Context, stat ConnectionStats) {
	c, ok := l.store.Client(stat.IfaceID)
	if !ok || c.Config == nil {
		return
	}
	if l.ops.Outstanding(FutureRoamSearch, stat.IfaceID) {
		return
	}
	if time.Since(c.LastRoamTime) < l.cfg.DurationBetweenRoamScans {
		return
	}
	score := scoreConnection(stat)
	if score >= l.cfg.ThresholdBadConnection {
		return
	}
	l.telem.Send(TelemetryEvent{Kind: EvRoamingScan})
	c.LastRoamTime = time.Now()
	// candidate switchover is an explicit to-be-specified refinement
	// (Roaming); this just records the scan.
}

// scoreConnection is a placeholder scoring function; with
// THRESHOLD_BAD_CONNECTION is left at 0.0: no positive score ever
// triggers a roam scan until that policy value is raised.
func scoreConnection(stat ConnectionStats) float64 {
	return float64(stat.RSSIDbm+100) / 100.0
}

//
// FSM termination / deferred-op / selection-result dispatch
//

func (l *EventLoop) handleFutureResult(ctx context.Context, res FutureResult) {
	switch res.Kind {
	case FutureBssSelection:
		l.onBssSelectionResult(ctx, res)
	case FutureNetworkSelection:
		l.onNetworkSelectionResult(ctx, res)
	case FutureDeferredOp:
		l.onDeferredOpResult(ctx, res)
	case FutureFsmTermination:
		l.onFsmTermination(ctx, res)
	case FutureRoamSearch, FutureDefect:
		// no responder waits on these
	}
}

// onFsmTermination handles an FSM future completing: client FSM
// termination always triggers idle-marking and a reconnect attempt;
// AP FSM termination triggers PHY iface destruction.
func (l *EventLoop) onFsmTermination(ctx context.Context, res FutureResult) {
	if c, ok := l.store.Client(res.IfaceID); ok {
		c.Fsm = nil
		c.Config = nil
		l.store.RecordIdle(res.IfaceID)
		l.fireReconnect() // immediate network-selection attempt; the timer's schedule is unchanged
		return
	}
	if _, ok := l.store.Ap(res.IfaceID); ok {
		_ = l.phy.DestroyApIface(ctx, res.IfaceID)
		l.store.RemoveAp(res.IfaceID)
	}
}
