package db

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// BuildConnectionString converts a ConnectionConfig to a PostgreSQL URI,
// the form pgx.ParseConfig accepts. Redshift speaks the same wire protocol.
func BuildConnectionString(config *dwh.ConnectionConfig) string {
	u := &url.URL{
		Scheme: "postgresql",
		Host:   fmt.Sprintf("%s:%d", config.Host, config.Port),
		Path:   "/" + config.Database,
	}

	if config.Username != "" {
		if config.Password != "" {
			u.User = url.UserPassword(config.Username, config.Password)
		} else {
			u.User = url.User(config.Username)
		}
	}

	query := url.Values{}
	if config.SSLMode != "" {
		query.Set("sslmode", config.SSLMode)
	}
	if config.AppName != "" {
		query.Set("application_name", config.AppName)
	}
	if config.ConnectTimeout > 0 {
		query.Set("connect_timeout", strconv.Itoa(int(config.ConnectTimeout.Seconds())))
	}
	u.RawQuery = query.Encode()

	return u.String()
}

// RedactedConnectionString is BuildConnectionString without the password, for logs.
func RedactedConnectionString(config *dwh.ConnectionConfig) string {
	c := *config
	if c.Password != "" {
		c.Password = "xxxxx"
	}
	return BuildConnectionString(&c)
}
