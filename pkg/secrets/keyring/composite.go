// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package keyring

import (
	"strings"
	"sync"

	"github.com/stacklok/kernelhive/pkg/logger"
)

// compositeProvider delegates to the first backend that reports itself
// available. The choice is made once, on first use.
type compositeProvider struct {
	providers []Provider

	once   sync.Once
	active Provider
}

// NewCompositeProvider tries providers in order.
func NewCompositeProvider(providers ...Provider) Provider {
	return &compositeProvider{providers: providers}
}

// NewDefaultProvider returns the system keyring, falling back to the kernel
// keyring on Linux hosts without a Secret Service.
func NewDefaultProvider() Provider {
	providers := []Provider{NewSystemProvider()}
	if keyctl, err := NewKeyctlProvider(); err == nil {
		providers = append(providers, keyctl)
	} else {
		logger.Debugf("keyctl backend not usable: %v", err)
	}
	return NewCompositeProvider(providers...)
}

func (c *compositeProvider) getActiveProvider() Provider {
	c.once.Do(func() {
		for _, p := range c.providers {
			if p.IsAvailable() {
				logger.Debugf("using %s for secure storage", p.Name())
				c.active = p
				return
			}
		}
	})
	return c.active
}

func (c *compositeProvider) Set(service, key, value string) error {
	p := c.getActiveProvider()
	if p == nil {
		return ErrUnavailable
	}
	return p.Set(service, key, value)
}

func (c *compositeProvider) Get(service, key string) (string, error) {
	p := c.getActiveProvider()
	if p == nil {
		return "", ErrUnavailable
	}
	return p.Get(service, key)
}

func (c *compositeProvider) Delete(service, key string) error {
	p := c.getActiveProvider()
	if p == nil {
		return ErrUnavailable
	}
	return p.Delete(service, key)
}

func (c *compositeProvider) DeleteAll(service string) error {
	p := c.getActiveProvider()
	if p == nil {
		return ErrUnavailable
	}
	return p.DeleteAll(service)
}

func (c *compositeProvider) IsAvailable() bool {
	return c.getActiveProvider() != nil
}

func (c *compositeProvider) Name() string {
	if p := c.getActiveProvider(); p != nil {
		return p.Name()
	}
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return "unavailable (" + strings.Join(names, ", ") + ")"
}
