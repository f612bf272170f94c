//go:build windows

package autostart

import (
	"errors"
	"fmt"
	"io/fs"

	"golang.org/x/sys/windows/registry"
)

// registryRunKey is the runKeyStore backed by HKEY_CURRENT_USER.
type registryRunKey struct{}

func openRunKeyStore() (runKeyStore, error) {
	return registryRunKey{}, nil
}

func (registryRunKey) GetString(name string) (string, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		return "", notExist(err)
	}
	defer k.Close()

	value, _, err := k.GetStringValue(name)
	if err != nil {
		return "", notExist(err)
	}
	return value, nil
}

func (registryRunKey) SetString(name, value string) error {
	// CreateKey opens the key when it already exists.
	k, _, err := registry.CreateKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("opening run key: %w", err)
	}
	defer k.Close()
	return k.SetStringValue(name, value)
}

func (registryRunKey) Delete(name string) error {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return notExist(err)
	}
	defer k.Close()
	return notExist(k.DeleteValue(name))
}

func notExist(err error) error {
	if errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("%w: %v", fs.ErrNotExist, err)
	}
	return err
}
