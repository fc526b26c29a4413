// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"github.com/mileusna/useragent"
)

// Client describes where a request came from. It is attached to login
// events for auditing.
type Client struct {
	IP      string
	Country string
	Browser string
	OS      string
	Device  string
}

// ParseClient fills browser, OS and device class from a User-Agent header.
func ParseClient(ip, userAgent string) Client {
	ua := useragent.Parse(userAgent)

	c := Client{IP: ip, Browser: ua.Name, OS: ua.OS}
	if c.Browser == "" {
		c.Browser = "Unknown"
	}
	if c.OS == "" {
		c.OS = "Unknown"
	}

	switch {
	case ua.Mobile:
		c.Device = "mobile"
	case ua.Tablet:
		c.Device = "tablet"
	case ua.Bot:
		c.Device = "bot"
	default:
		c.Device = "desktop"
	}
	return c
}

// metadata returns the non-empty fields as event metadata.
func (c Client) metadata(meta map[string]any) map[string]any {
	for k, v := range map[string]string{
		"ip":      c.IP,
		"country": c.Country,
		"browser": c.Browser,
		"os":      c.OS,
		"device":  c.Device,
	} {
		if v != "" {
			meta[k] = v
		}
	}
	return meta
}
