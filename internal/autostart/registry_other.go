//go:build !windows

package autostart

import "fmt"

func openRunKeyStore() (runKeyStore, error) {
	return nil, fmt.Errorf("%w: the registry is only available on windows", ErrUnsupported)
}
