package config

import (
	"fmt"
	"strings"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer

	// Base URL for provider redirect targets, resolved in order of
	// precedence: PublicBaseURL, SiteURL, DeployHost.
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
	SiteURL       string `env:"SITE_URL"`
	DeployHost    string `env:"DEPLOY_HOST"`

	DatabasePath string `env:"DATABASE_PATH" envDefault:"checkout.db"`

	ExchangeRate ExchangeRate `envPrefix:"EXCHANGE_RATE_"`
	Paypal       Paypal       `envPrefix:"PAYPAL_"`
	Razorpay     Razorpay     `envPrefix:"RAZORPAY_"`
}

type Paypal struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
}

type Razorpay struct {
	KeyID         string `env:"KEY_ID"`
	KeySecret     string `env:"KEY_SECRET"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

type ExchangeRate struct {
	APIURL string `env:"API_URL" envDefault:"https://api.exchangerate.host/latest"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

// ResolveBaseURL returns the absolute base URL used to build provider
// return/cancel redirect targets. Payment providers reject relative URLs,
// so a missing base URL is a hard configuration error.
func (c *Config) ResolveBaseURL() (string, error) {
	if base := strings.TrimSuffix(c.PublicBaseURL, "/"); base != "" {
		return base, nil
	}
	if base := strings.TrimSuffix(c.SiteURL, "/"); base != "" {
		return base, nil
	}
	if host := strings.TrimSuffix(c.DeployHost, "/"); host != "" {
		return "https://" + host, nil
	}
	return "", fmt.Errorf("no base URL configured: set PUBLIC_BASE_URL, SITE_URL or DEPLOY_HOST")
}
