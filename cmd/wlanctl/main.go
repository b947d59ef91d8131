// Command wlanctl drives a local wlan.EventLoop from the command
// line, a thin operational shell around the core event loop, the
// transport/FIDL binding that would otherwise host it being out of
// scope here. Modeled on AIStore's cmd/cli and on
// newtron's cobra-based command tree.
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NVIDIA/wlancore/internal/cmn/cos"
	"github.com/NVIDIA/wlancore/internal/config"
	"github.com/NVIDIA/wlancore/wlan"
)

var cfgPath string

func main() {
	root := &cobra.Command{
		Use:   "wlanctl",
		Short: "Drive a local wlan interface-manager event loop",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config overriding defaults")
	root.AddCommand(newStatusCmd(), newSetCountryCmd())

	if err := root.Execute(); err != nil {
		cos.ExitLogf("%v", err)
	}
}

func loadConfig() *config.Config {
	if cfgPath == "" {
		return config.Default()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		cos.ExitLogf("%v", err)
	}
	return cfg
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print whether a freshly started loop has an idle client interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			requests := make(chan wlan.Request)
			loop := wlan.NewEventLoop(cfg.WLAN, noopDeps(), requests)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go loop.Run(ctx)

			fmt.Printf("idle ifaces: %v\n", loop.Store().HasIdleIface())
			close(requests)
			return nil
		},
	}
}

func newSetCountryCmd() *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "set-country <code>",
		Short: "Apply a two-letter country code via the atomic SetCountry request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code = args[0]
			if len(code) != 2 {
				return fmt.Errorf("country code must be exactly 2 characters, got %q", code)
			}
			cfg := loadConfig()
			requests := make(chan wlan.Request)
			loop := wlan.NewEventLoop(cfg.WLAN, noopDeps(), requests)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go loop.Run(ctx)

			reply := make(chan error, 1)
			requests <- wlan.SetCountryRequest{Code: [2]byte{code[0], code[1]}, Reply: reply}
			err := <-reply
			close(requests)
			return err
		},
	}
	return cmd
}

// noopDeps wires every collaborator to a trivial implementation so the
// CLI can exercise the loop without a real PHY/transport behind it.
func noopDeps() wlan.Deps {
	return wlan.Deps{
		Phy:     noopPhy{},
		Monitor: noopMonitor{},
		Saved:   noopSaved{},
		Telem:   wlan.NoopTelemetry{},
		Listen:  nil,
		BssSel:  noopBssSelector{},
		NetSel:  noopNetSelector{},
	}
}

type noopPhy struct{}

func (noopPhy) GetClient() (wlan.IfaceID, bool)            { return 0, false }
func (noopPhy) GetWpa3CapableClient() (wlan.IfaceID, bool) { return 0, false }
func (noopPhy) CreateOrGetApIface(ctx context.Context) (wlan.IfaceID, bool, error) {
	return 0, false, fmt.Errorf("no PHY manager configured")
}
func (noopPhy) CreateAllClientIfaces(ctx context.Context, reason wlan.ConnectReason) ([]wlan.IfaceID, error) {
	return nil, nil
}
func (noopPhy) DestroyAllClientIfaces(ctx context.Context) error   { return nil }
func (noopPhy) DestroyApIface(ctx context.Context, id wlan.IfaceID) error { return nil }
func (noopPhy) SetCountryCode(ctx context.Context, code [2]byte) error    { return nil }
func (noopPhy) ClientConnectionsEnabled() bool                           { return false }
func (noopPhy) HasWpa3ClientIface() bool                                 { return false }
func (noopPhy) OnIfaceRemoved(id wlan.IfaceID)                           {}
func (noopPhy) RecordDefect(d wlan.Defect)                               {}

type noopMonitor struct{}

func (noopMonitor) QueryIface(ctx context.Context, id wlan.IfaceID) (wlan.Role, wlan.StateMachineMetadata, error) {
	return wlan.RoleClient, wlan.StateMachineMetadata{}, fmt.Errorf("no device monitor configured")
}
func (noopMonitor) GetClientSme(ctx context.Context, id wlan.IfaceID) (wlan.ClientSmeHandle, error) {
	return nil, fmt.Errorf("no device monitor configured")
}
func (noopMonitor) GetApSme(ctx context.Context, id wlan.IfaceID) (wlan.ApSmeHandle, error) {
	return nil, fmt.Errorf("no device monitor configured")
}
func (noopMonitor) GetFeatureSupport(ctx context.Context, id wlan.IfaceID) (wlan.FeatureSupport, error) {
	return nil, fmt.Errorf("no device monitor configured")
}

type noopSaved struct{}

func (noopSaved) KnownNetworkCount() int                                       { return 0 }
func (noopSaved) Store(id wlan.NetworkIdentifier, cred wlan.Credential) error { return nil }

type noopBssSelector struct{}

func (noopBssSelector) SelectBss(ctx context.Context, network wlan.NetworkIdentifier, cred wlan.Credential) (wlan.BssCandidate, bool, error) {
	return wlan.BssCandidate{}, false, nil
}

type noopNetSelector struct{}

func (noopNetSelector) SelectNetwork(ctx context.Context) (wlan.NetworkIdentifier, wlan.Credential, bool, error) {
	return wlan.NetworkIdentifier{}, wlan.Credential{}, false, nil
}
