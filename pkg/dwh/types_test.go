package dwh

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConnection() ConnectionConfig {
	return ConnectionConfig{
		Host:     "example.redshift.amazonaws.com",
		Port:     5439,
		Database: "dev",
		Username: "awsuser",
		Password: "secret",
	}
}

func TestConnectionConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ConnectionConfig)
		wantErr string
	}{
		{"valid", func(*ConnectionConfig) {}, ""},
		{"missing host", func(c *ConnectionConfig) { c.Host = "" }, "CLUSTER.HOST"},
		{"missing database", func(c *ConnectionConfig) { c.Database = "" }, "CLUSTER.DB_NAME"},
		{"missing user", func(c *ConnectionConfig) { c.Username = "" }, "CLUSTER.DB_USER"},
		{"zero port", func(c *ConnectionConfig) { c.Port = 0 }, "CLUSTER.DB_PORT"},
		{"port out of range", func(c *ConnectionConfig) { c.Port = 70000 }, "CLUSTER.DB_PORT"},
		{"missing password", func(c *ConnectionConfig) { c.Password = "" }, "CLUSTER.DB_PASSWORD"},
		{"iam without region", func(c *ConnectionConfig) {
			c.AuthMethod = AuthMethodAWSIAM
			c.Password = ""
		}, "CLUSTER.AWS_REGION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConnection()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConnectionConfig_Validate_ReportsEveryProblem(t *testing.T) {
	c := ConnectionConfig{}
	err := c.Validate()
	require.Error(t, err)
	for _, key := range []string{"HOST", "DB_NAME", "DB_USER", "DB_PORT", "DB_PASSWORD"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestConnectionConfig_Validate_UnknownAuthMethod(t *testing.T) {
	c := validConnection()
	c.AuthMethod = AuthMethod(42)
	err := c.Validate()
	assert.True(t, errors.Is(err, ErrUnsupportedAuthMethod))
}

func TestPipelineConfig_Validate(t *testing.T) {
	cfg := PipelineConfig{Connection: validConnection()}
	assert.NoError(t, cfg.Validate())

	cfg.Timeout = -time.Second
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestParseAuthMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    AuthMethod
		wantErr bool
	}{
		{"", AuthMethodStandard, false},
		{"standard", AuthMethodStandard, false},
		{"AWS-IAM", AuthMethodAWSIAM, false},
		{"iam", AuthMethodAWSIAM, false},
		{"kerberos", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAuthMethod(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedAuthMethod)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthMethod_String(t *testing.T) {
	assert.Equal(t, "standard", AuthMethodStandard.String())
	assert.Equal(t, "aws-iam", AuthMethodAWSIAM.String())
	assert.Equal(t, "unknown(9)", AuthMethod(9).String())
	assert.True(t, AuthMethodAWSIAM.IsValid())
	assert.False(t, AuthMethod(9).IsValid())
}
