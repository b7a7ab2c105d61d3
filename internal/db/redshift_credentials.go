package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/redshift"
)

// credentialDuration is how long issued passwords stay valid. Redshift
// accepts 900 to 3600 seconds.
const credentialDuration = 15 * time.Minute

// clusterCredentialsAPI is the slice of the Redshift API the provider calls.
type clusterCredentialsAPI interface {
	GetClusterCredentials(ctx context.Context, params *redshift.GetClusterCredentialsInput, optFns ...func(*redshift.Options)) (*redshift.GetClusterCredentialsOutput, error)
}

// RedshiftCredentialProvider obtains temporary database credentials with
// redshift:GetClusterCredentials. AWS credentials come from the default chain
// (environment variables, shared config files, instance or task roles).
type RedshiftCredentialProvider struct {
	clusterID string
	region    string
	username  string
	database  string

	newClient func(ctx context.Context, region string) (clusterCredentialsAPI, error)
}

// NewRedshiftCredentialProvider creates a provider for an existing database user.
func NewRedshiftCredentialProvider(clusterID, region, username, database string) (*RedshiftCredentialProvider, error) {
	if clusterID == "" {
		return nil, fmt.Errorf("AWS IAM auth requires a cluster identifier (CLUSTER.CLUSTER_IDENTIFIER or a Redshift endpoint in CLUSTER.HOST)")
	}
	if region == "" {
		return nil, fmt.Errorf("AWS IAM auth requires region (CLUSTER.AWS_REGION)")
	}
	if username == "" {
		return nil, fmt.Errorf("AWS IAM auth requires database username")
	}
	return &RedshiftCredentialProvider{
		clusterID: clusterID,
		region:    region,
		username:  username,
		database:  database,
		newClient: defaultRedshiftClient,
	}, nil
}

func defaultRedshiftClient(ctx context.Context, region string) (clusterCredentialsAPI, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return redshift.NewFromConfig(cfg), nil
}

// GetCredentials requests a temporary password for the configured user.
// The user is not auto-created.
func (p *RedshiftCredentialProvider) GetCredentials(ctx context.Context) (Credentials, error) {
	client, err := p.newClient(ctx, p.region)
	if err != nil {
		return Credentials{}, err
	}

	input := &redshift.GetClusterCredentialsInput{
		ClusterIdentifier: aws.String(p.clusterID),
		DbUser:            aws.String(p.username),
		DurationSeconds:   aws.Int32(int32(credentialDuration / time.Second)),
		AutoCreate:        aws.Bool(false),
	}
	if p.database != "" {
		input.DbName = aws.String(p.database)
	}

	out, err := client.GetClusterCredentials(ctx, input)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to get cluster credentials for %s: %w", p.clusterID, err)
	}
	if aws.ToString(out.DbPassword) == "" {
		return Credentials{}, errors.New("GetClusterCredentials returned no password")
	}

	expiresOn := aws.ToTime(out.Expiration)
	if expiresOn.IsZero() {
		expiresOn = time.Now().Add(credentialDuration)
	}

	return Credentials{
		Username:  aws.ToString(out.DbUser),
		Password:  aws.ToString(out.DbPassword),
		ExpiresOn: expiresOn,
	}, nil
}

// String returns a human-readable representation of the provider.
func (p *RedshiftCredentialProvider) String() string {
	return fmt.Sprintf("RedshiftCredentialProvider(cluster=%s, region=%s, user=%s)", p.clusterID, p.region, p.username)
}

// clusterIDFromHost takes the cluster identifier from a Redshift endpoint:
// <cluster>.<id>.<region>.redshift.amazonaws.com.
func clusterIDFromHost(host string) string {
	if !strings.Contains(host, ".redshift.") {
		return ""
	}
	id, _, _ := strings.Cut(host, ".")
	return id
}
