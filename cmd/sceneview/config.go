package main

import (
	"context"
	"fmt"
	"os"

	"github.com/binzume/sceneview/auth"
	"github.com/binzume/sceneview/engine"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/oauth2/clientcredentials"
	yaml "gopkg.in/yaml.v2"
)

// Config is the content of a -config file. Flags that are set explicitly win.
//
//	root: ./models
//	width: 1280
//	height: 720
//	log_level: debug
//	server:
//	  base_url: https://example.com/docs
//	  client_id: xxxx
//	  client_secret: yyyy
//	  token_url: https://example.com/oauth/token
//	  scopes: [data:read]
type Config struct {
	Root     string        `yaml:"root"`
	Width    int           `yaml:"width"`
	Height   int           `yaml:"height"`
	LogLevel string        `yaml:"log_level"`
	Server   *ServerConfig `yaml:"server"`
}

type ServerConfig struct {
	BaseURL      string   `yaml:"base_url"`
	Token        string   `yaml:"token"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	TokenURL     string   `yaml:"token_url"`
	Scopes       []string `yaml:"scopes"`
}

func defaultConfig() *Config {
	return &Config{
		Root:     ".",
		Width:    800,
		Height:   600,
		LogLevel: "info",
	}
}

func loadConfig(path string) (*Config, error) {
	conf := defaultConfig()
	if path == "" {
		return conf, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.UnmarshalStrict(data, conf); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if conf.Width <= 0 || conf.Height <= 0 {
		return nil, fmt.Errorf("%s: invalid size %dx%d", path, conf.Width, conf.Height)
	}
	return conf, nil
}

// tokenProvider returns nil when documents are read without authorization.
func (c *Config) tokenProvider(ctx context.Context) engine.AccessTokenProvider {
	s := c.Server
	switch {
	case s == nil:
		return nil
	case s.ClientID != "" && s.TokenURL != "":
		return auth.ClientCredentials(ctx, &clientcredentials.Config{
			ClientID:     s.ClientID,
			ClientSecret: s.ClientSecret,
			TokenURL:     s.TokenURL,
			Scopes:       s.Scopes,
		})
	case s.Token != "":
		return auth.Static(s.Token, 3600)
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lv, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	conf := zap.NewDevelopmentConfig()
	conf.Level = zap.NewAtomicLevelAt(lv)
	conf.DisableStacktrace = true
	return conf.Build()
}
