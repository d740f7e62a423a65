// Copyright (C) 2021 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package analytics reports anonymous usage of bridgeup. Reporting can be
// turned off with 'bridgeup config analytics disable'.
package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/analytics-go/v3"
	"github.com/spf13/viper"
	"github.com/toitlang/bridgeup/cmd/bridgeup/directory"
)

type Config struct {
	Disabled bool   `mapstructure:"disabled" yaml:"disabled" json:"disabled"`
	ClientID string `mapstructure:"cid" yaml:"cid" json:"cid"`
}

// Settings selects the Segment project events are sent to. Without a write
// key nothing is reported.
type Settings struct {
	WriteKey string
	// Endpoint overrides the Segment API endpoint when set.
	Endpoint string
}

// LoadConfig reads the analytics settings from cfg, assigning and storing a
// fresh client id if there is none yet.
func LoadConfig(cfg *viper.Viper) (Config, error) {
	var res Config
	rewrite := true
	if cfg.IsSet(directory.AnalyticsCfgKey) {
		if err := cfg.UnmarshalKey(directory.AnalyticsCfgKey, &res); err == nil {
			rewrite = res.ClientID == ""
		}
	}

	if rewrite {
		res.ClientID = uuid.New().String()
		cfg.Set(directory.AnalyticsCfgKey, res)
		if err := directory.WriteConfig(cfg); err != nil {
			return res, err
		}
	}
	return res, nil
}

func GetClient(settings Settings) (Client, error) {
	if settings.WriteKey == "" {
		return &proxyClient{disabled: true, Client: nopClient{}}, nil
	}

	cfg, err := directory.GetUserConfig()
	if err != nil {
		return nil, err
	}

	res, err := LoadConfig(cfg)
	if err != nil {
		return nil, err
	}

	client, err := analytics.NewWithConfig(settings.WriteKey, analytics.Config{
		Interval:  time.Millisecond,
		BatchSize: 1,
		Endpoint:  settings.Endpoint,
		Logger:    noopLogger{},
	})
	if err != nil {
		return nil, err
	}

	return &proxyClient{
		disabled:    res.Disabled,
		anonymousID: res.ClientID,
		Client:      client,
	}, nil
}

type noopLogger struct{}

func (noopLogger) Logf(format string, args ...interface{})   {}
func (noopLogger) Errorf(format string, args ...interface{}) {}

type nopClient struct{}

func (nopClient) Enqueue(analytics.Message) error { return nil }
func (nopClient) Close() error                    { return nil }

type Client interface {
	analytics.Client
	Disable(bool)
}

type proxyClient struct {
	disabled bool
	analytics.Client
	anonymousID string
}

func (c *proxyClient) Disable(b bool) {
	c.disabled = b
}

func (c *proxyClient) Enqueue(msg analytics.Message) error {
	if c.disabled {
		return nil
	}

	return c.Client.Enqueue(populate(msg, c.anonymousID))
}

func populate(msg analytics.Message, anonymousID string) analytics.Message {
	switch t := msg.(type) {
	case analytics.Page:
		if t.AnonymousId == "" {
			t.AnonymousId = anonymousID
		}
		return t
	case analytics.Track:
		if t.AnonymousId == "" {
			t.AnonymousId = anonymousID
		}
		return t
	default:
		return msg
	}
}

// Transition builds the event sent after every bootloader attempt.
func Transition(deviceType string, strategy string, err error) analytics.Track {
	properties := analytics.NewProperties().
		Set("device_type", deviceType).
		Set("strategy", strategy).
		Set("success", err == nil)
	return analytics.Track{
		Event:      "Bootloader Transition",
		Properties: properties,
	}
}
