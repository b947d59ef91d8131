package wlan_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/NVIDIA/wlancore/internal/config"
	"github.com/NVIDIA/wlancore/wlan"
)

func newTestLoop(cfg config.WLAN, monitor *fakeMonitor, phy *fakePhy, bssSel *fakeBssSelector, clientFsms map[wlan.IfaceID]*recordingFsm, apFsms map[wlan.IfaceID]*recordingApFsm) (*wlan.EventLoop, chan wlan.Request) {
	requests := make(chan wlan.Request)
	deps := wlan.Deps{
		Phy:     phy,
		Monitor: monitor,
		Saved:   fakeSaved{},
		Telem:   wlan.NoopTelemetry{},
		BssSel:  bssSel,
		NetSel:  fakeNetSelector{},
		NewClientFsm: func(id wlan.IfaceID) wlan.ClientFsmApi {
			fsm := newRecordingFsm(id)
			if clientFsms != nil {
				clientFsms[id] = fsm
			}
			return fsm
		},
		NewApFsm: func(id wlan.IfaceID) wlan.ApFsmApi {
			fsm := newRecordingApFsm(id)
			if apFsms != nil {
				apFsms[id] = fsm
			}
			return fsm
		},
	}
	loop := wlan.NewEventLoop(cfg, deps, requests)
	return loop, requests
}

var _ = Describe("EventLoop", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
	})

	AfterEach(func() {
		cancel()
	})

	// Connect to an unconfigured iface.
	It("queries the client SME and drives Disconnect(Startup) then Connect on a fresh FSM", func() {
		monitor := newFakeMonitor()
		phy := &fakePhy{}
		network := wlan.NetworkIdentifier{SSID: "test", SecurityType: "wpa"}
		cred := wlan.Credential{Password: "test_password"}
		cand := wlan.BssCandidate{IfaceID: 0, Network: network, Credential: cred}
		bssSel := &fakeBssSelector{found: true, candidate: cand}
		clientFsms := make(map[wlan.IfaceID]*recordingFsm)

		loop, requests := newTestLoop(config.Default().WLAN, monitor, phy, bssSel, clientFsms, nil)
		loop.Store().AddClient(&wlan.ClientInterface{ID: 0})
		loop.Store().RecordIdle(0)

		go loop.Run(ctx)
		defer close(requests)

		reply := make(chan error, 1)
		requests <- wlan.ConnectRequest{Network: network, Credential: cred, Reply: reply}

		var err error
		Eventually(reply, time.Second).Should(Receive(&err))
		Expect(err).NotTo(HaveOccurred())

		Expect(monitor.SmeCalls()).To(ContainElement(wlan.IfaceID(0)))

		c, ok := loop.Store().Client(0)
		Expect(ok).To(BeTrue())
		Expect(c.Config).NotTo(BeNil())
		Expect(*c.Config).To(Equal(network))
		Expect(c.LastRoamTime).NotTo(BeZero())

		fsm, ok := clientFsms[0]
		Expect(ok).To(BeTrue())
		Expect(fsm.Calls()).To(Equal([]string{"Disconnect(1)", "Connect(test)"}))
	})

	// SetCountry success path with one AP and
	// clients-enabled=true.
	It("stops clients, stops APs, sets the country code, then restarts both", func() {
		monitor := newFakeMonitor()
		phy := &fakePhy{clientsEnabled: true, createAllClientsIDs: []wlan.IfaceID{5}, createApID: 2}
		bssSel := &fakeBssSelector{}

		loop, requests := newTestLoop(config.Default().WLAN, monitor, phy, bssSel, nil, nil)
		loop.Store().AddClient(&wlan.ClientInterface{ID: 1})
		apCfg := wlan.ApConfig{SSID: "hotspot"}
		apFsm := newRecordingApFsm(2)
		loop.Store().AddAp(&wlan.ApInterface{ID: 2, Config: &apCfg, Fsm: apFsm})

		go loop.Run(ctx)
		defer close(requests)

		reply := make(chan error, 1)
		requests <- wlan.SetCountryRequest{Code: [2]byte{0, 0}, Reply: reply}

		var err error
		Eventually(reply, time.Second).Should(Receive(&err))
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() [][2]byte { return phy.CountryCalls() }, time.Second).Should(HaveLen(1))
		Expect(phy.CountryCalls()[0]).To(Equal([2]byte{0, 0}))

		Eventually(func() bool { return phy.ClientConnectionsEnabled() }, time.Second).Should(BeTrue())
		Eventually(func() []string { return apFsm.Calls() }, time.Second).Should(ContainElement("Stop"))
		Eventually(func() []string { return apFsm.Calls() }, time.Second).Should(Equal([]string{"Stop", "Start(hotspot)"}))
	})

	// atomic gate enforcement.
	It("defers a non-atomic request behind an in-flight atomic request's token", func() {
		monitor := newFakeMonitor()
		phy := &fakePhy{}
		bssSel := &fakeBssSelector{}

		loop, requests := newTestLoop(config.Default().WLAN, monitor, phy, bssSel, nil, nil)
		_ = loop

		go loop.Run(ctx)
		defer close(requests)

		disconnectReply := make(chan error, 1)
		idleReply := make(chan bool, 1)

		requests <- wlan.DisconnectRequest{
			Network: wlan.NetworkIdentifier{SSID: "never-configured"},
			Reply:   disconnectReply,
		}
		requests <- wlan.HasIdleIfaceRequest{Reply: idleReply}

		Eventually(idleReply, time.Second).Should(Receive())
		// the idle probe is only dispatched after the atomic request has
		// replied and released its token, so its reply is already there.
		Expect(disconnectReply).To(Receive())
	})
})
