package db

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// TokenBasedConnector implements dwh.Connector for providers that issue
// short-lived credentials. They replace the configured password, and the
// user when the provider names one.
type TokenBasedConnector struct {
	config       *dwh.ConnectionConfig
	provider     CredentialProvider
	providerName string
	logger       dwh.Logger

	dial func(ctx context.Context, config *dwh.ConnectionConfig, logger dwh.Logger) (dwh.Session, error)
}

// NewTokenBasedConnector creates a connector that uses a CredentialProvider for authentication.
// providerName is used in error/warning messages (e.g., "AWS IAM").
func NewTokenBasedConnector(config *dwh.ConnectionConfig, provider CredentialProvider, providerName string, logger dwh.Logger) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:       config,
		provider:     provider,
		providerName: providerName,
		logger:       logger,
		dial:         connect,
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (dwh.Session, error) {
	creds, err := c.provider.GetCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s credentials: %w: %w", c.providerName, err, dwh.ErrConnectionFailed)
	}

	if time.Until(creds.ExpiresOn) < 5*time.Minute {
		c.logger.Info("Warning: %s credentials expire in %v", c.providerName, time.Until(creds.ExpiresOn).Round(time.Second))
	}
	c.logger.Verbose("Acquired credentials from %s", c.provider)

	configWithCreds := *c.config
	configWithCreds.Password = creds.Password
	if creds.Username != "" {
		configWithCreds.Username = creds.Username
	}

	return c.dial(ctx, &configWithCreds, c.logger)
}

// newAWSConnector creates a token-based connector backed by Redshift cluster credentials.
func newAWSConnector(config *dwh.ConnectionConfig, logger dwh.Logger) (dwh.Connector, error) {
	clusterID := config.ClusterID
	if clusterID == "" {
		clusterID = clusterIDFromHost(config.Host)
	}
	provider, err := NewRedshiftCredentialProvider(clusterID, config.AWSRegion, config.Username, config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM credential provider: %w: %w", err, dwh.ErrInvalidConfig)
	}
	return NewTokenBasedConnector(config, provider, "AWS IAM", logger), nil
}
