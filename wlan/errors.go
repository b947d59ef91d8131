package wlan

import (
	"fmt"

	"github.com/NVIDIA/wlancore/internal/cmn/cos"
)

var (
	errNoCandidate    = fmt.Errorf("wlan: no bss candidate found after max connect attempts")
	errMeshUnsupported = fmt.Errorf("wlan: mesh role is not supported")
	errNoClientIface  = fmt.Errorf("wlan: no client interface available for scan proxy")
)

func cosErrNotFound(what string, id IfaceID) error {
	return cos.NewErrNotFound("%s %d", what, id)
}
