// Package config reads the pipeline configuration: an INI file with a
// cluster group and the ingestion groups, overridable from the environment.
//
// Example dwh.cfg:
//
//	[CLUSTER]
//	HOST=sparkify.abc123.us-west-2.redshift.amazonaws.com
//	DB_NAME=dev
//	DB_USER=awsuser
//	DB_PASSWORD=...
//	DB_PORT=5439
//	CONNECT_TIMEOUT=10
//
//	[IAM_ROLE]
//	ARN='arn:aws:iam::123456789012:role/dwhRole'
//
//	[S3]
//	LOG_DATA='s3://udacity-dend/log_data'
//	LOG_JSONPATH='s3://udacity-dend/log_json_path.json'
//	SONG_DATA='s3://udacity-dend/song_data'
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// EnvPrefix prefixes environment overrides: DWH_CLUSTER_HOST, DWH_S3_LOG_DATA, ...
const EnvPrefix = "DWH"

// Keys, as viper sees them (section.key, lower case).
const (
	KeyHost        = "cluster.host"
	KeyDatabase    = "cluster.db_name"
	KeyUser        = "cluster.db_user"
	KeyPassword    = "cluster.db_password"
	KeyPort        = "cluster.db_port"
	KeySSLMode     = "cluster.sslmode"
	KeyAuthMethod  = "cluster.auth_method"
	KeyAWSRegion   = "cluster.aws_region"
	KeyClusterID   = "cluster.cluster_identifier"
	KeyConnTimeout = "cluster.connect_timeout"
	KeyRoleARN     = "iam_role.arn"
	KeyLogData     = "s3.log_data"
	KeyLogJSONPath = "s3.log_jsonpath"
	KeySongData    = "s3.song_data"
	KeyS3Region    = "s3.region"
)

var allKeys = []string{
	KeyHost, KeyDatabase, KeyUser, KeyPassword, KeyPort, KeySSLMode, KeyAuthMethod, KeyAWSRegion,
	KeyClusterID, KeyConnTimeout, KeyRoleARN, KeyLogData, KeyLogJSONPath, KeySongData, KeyS3Region,
}

// Config is the parsed configuration source.
type Config struct {
	Connection dwh.ConnectionConfig
	Ingestion  dwh.IngestionConfig
}

// Load reads the INI file at path and applies environment overrides.
// An empty path reads the environment only.
//
// Load validates what it must parse (port, auth method). Missing keys are
// reported by dwh.ConnectionConfig.Validate and catalog construction.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range allKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	v.SetDefault(KeySSLMode, dwh.DefaultSSLMode)

	if path != "" {
		groups, err := readINI(path)
		if err != nil {
			return nil, err
		}
		if err := v.MergeConfigMap(groups); err != nil {
			return nil, fmt.Errorf("read config %s: %w: %w", path, err, dwh.ErrInvalidConfig)
		}
	}

	get := func(key string) string { return unquote(v.GetString(key)) }

	var errs []error

	port := 0
	if raw := get(KeyPort); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("CLUSTER.DB_PORT %q is not a number: %w", raw, dwh.ErrInvalidConfig))
		}
		port = p
	}

	var connectTimeout time.Duration
	if raw := get(KeyConnTimeout); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 0 {
			errs = append(errs, fmt.Errorf("CLUSTER.CONNECT_TIMEOUT %q is not a number of seconds: %w", raw, dwh.ErrInvalidConfig))
		}
		connectTimeout = time.Duration(secs) * time.Second
	}

	authMethod, err := dwh.ParseAuthMethod(get(KeyAuthMethod))
	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	// PGPASSWORD is honoured like libpq does, only when nothing else set a password.
	password := get(KeyPassword)
	if password == "" {
		password = os.Getenv("PGPASSWORD")
	}

	return &Config{
		Connection: dwh.ConnectionConfig{
			Host:       get(KeyHost),
			Port:       port,
			Database:   get(KeyDatabase),
			Username:   get(KeyUser),
			Password:   password,
			SSLMode:    get(KeySSLMode),
			AuthMethod: authMethod,
			AWSRegion:  get(KeyAWSRegion),
			ClusterID:  get(KeyClusterID),
			AppName:    dwh.ApplicationName,

			ConnectTimeout: connectTimeout,
		},
		Ingestion: dwh.IngestionConfig{
			LogData:     get(KeyLogData),
			LogJSONPath: get(KeyLogJSONPath),
			SongData:    get(KeySongData),
			RoleARN:     get(KeyRoleARN),
			Region:      get(KeyS3Region),
		},
	}, nil
}

// readINI parses the file into viper's nested group/key layout.
// Group and key names are case-insensitive.
func readINI(path string) (map[string]any, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w: %w", path, ErrConfigNotFound, dwh.ErrInvalidConfig)
		}
		return nil, fmt.Errorf("read config %s: %w: %w", path, err, dwh.ErrInvalidConfig)
	}

	file, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w: %w", path, err, dwh.ErrInvalidConfig)
	}

	groups := make(map[string]any)
	for _, section := range file.Sections() {
		keys := section.Keys()
		if len(keys) == 0 {
			continue
		}
		values := make(map[string]any, len(keys))
		for _, key := range keys {
			values[key.Name()] = key.Value()
		}
		groups[section.Name()] = values
	}
	return groups, nil
}

// unquote strips one pair of surrounding quotes; the catalog does its own quoting.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
