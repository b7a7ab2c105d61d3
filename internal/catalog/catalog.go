package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/vvka-141/sparkify-dwh/internal/checksum"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// Phase identifies which statement group a statement belongs to.
type Phase string

const (
	PhaseDrop   Phase = "drop"
	PhaseCreate Phase = "create"
	PhaseCopy   Phase = "copy"
	PhaseInsert Phase = "insert"
)

// Statement is one fully rendered SQL statement.
type Statement struct {
	Name  string `yaml:"name"`
	Phase Phase  `yaml:"phase"`
	Table string `yaml:"table"`
	SQL   string `yaml:"sql"`
}

// Dialect selects warehouse-specific DDL.
type Dialect string

const (
	// DialectRedshift renders IDENTITY(0,1) surrogate keys. It is the default.
	DialectRedshift Dialect = "redshift"

	// DialectPostgres renders a standard identity column so the schema and
	// transforms can run against PostgreSQL.
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) identityClause() (string, error) {
	switch d {
	case DialectRedshift:
		return "IDENTITY(0,1)", nil
	case DialectPostgres:
		return "GENERATED BY DEFAULT AS IDENTITY (START WITH 0 MINVALUE 0 INCREMENT BY 1)", nil
	default:
		return "", fmt.Errorf("unknown dialect %q: %w", string(d), dwh.ErrInvalidConfig)
	}
}

// Option configures catalog construction.
type Option func(*options)

type options struct {
	dialect Dialect
}

// WithDialect overrides the default Redshift dialect.
func WithDialect(d Dialect) Option {
	return func(o *options) { o.dialect = d }
}

// Catalog is the immutable set of statements for one configuration.
type Catalog struct {
	drop   []Statement
	create []Statement
	copy   []Statement
	insert []Statement
}

// New renders every statement for the given ingestion values.
// It fails with dwh.ErrInvalidConfig, listing every problem, if a required
// value is missing or malformed; no statement is produced in that case.
func New(ingestion dwh.IngestionConfig, opts ...Option) (*Catalog, error) {
	o := options{dialect: DialectRedshift}
	for _, opt := range opts {
		opt(&o)
	}

	identity, err := o.dialect.identityClause()
	if err != nil {
		return nil, err
	}

	if err := ValidateIngestion(ingestion); err != nil {
		return nil, err
	}

	c := &Catalog{}

	for _, table := range tableOrder {
		c.drop = append(c.drop, Statement{
			Name:  "drop_" + table,
			Phase: PhaseDrop,
			Table: table,
			SQL:   "DROP TABLE IF EXISTS " + table,
		})
	}

	creates := map[string]string{
		TableStagingEvents: createStagingEvents,
		TableStagingSongs:  createStagingSongs,
		TableSongplay:      fmt.Sprintf(createSongplayFormat, identity),
		TableUser:          createUser,
		TableSong:          createSong,
		TableArtist:        createArtist,
		TableTime:          createTime,
	}
	for _, table := range tableOrder {
		c.create = append(c.create, Statement{
			Name:  "create_" + table,
			Phase: PhaseCreate,
			Table: table,
			SQL:   creates[table],
		})
	}

	c.copy = []Statement{
		{
			Name:  "copy_staging_events",
			Phase: PhaseCopy,
			Table: TableStagingEvents,
			SQL: renderCopy(TableStagingEvents, ingestion.LogData, ingestion.RoleARN,
				normalizeJSONPath(ingestion.LogJSONPath), "TIMEFORMAT AS 'epochmillisecs'", ingestion.Region),
		},
		{
			Name:  "copy_staging_songs",
			Phase: PhaseCopy,
			Table: TableStagingSongs,
			SQL:   renderCopy(TableStagingSongs, ingestion.SongData, ingestion.RoleARN, "auto", "", ingestion.Region),
		},
	}

	c.insert = []Statement{
		{Name: "insert_songplays", Phase: PhaseInsert, Table: TableSongplay, SQL: insertSongplay},
		{Name: "insert_users", Phase: PhaseInsert, Table: TableUser, SQL: insertUser},
		{Name: "insert_songs", Phase: PhaseInsert, Table: TableSong, SQL: insertSong},
		{Name: "insert_artists", Phase: PhaseInsert, Table: TableArtist, SQL: insertArtist},
		{Name: "insert_time", Phase: PhaseInsert, Table: TableTime, SQL: insertTime},
	}

	return c, nil
}

// Drop returns the DROP TABLE statements.
func (c *Catalog) Drop() []Statement { return clone(c.drop) }

// Create returns the CREATE TABLE statements.
func (c *Catalog) Create() []Statement { return clone(c.create) }

// Copy returns the bulk-copy statements.
func (c *Catalog) Copy() []Statement { return clone(c.copy) }

// Insert returns the insert-select transform statements.
func (c *Catalog) Insert() []Statement { return clone(c.insert) }

// Setup returns the drop statements followed by the create statements.
func (c *Catalog) Setup() []Statement { return concat(c.drop, c.create) }

// Load returns the load phase: the bulk-copy statements.
func (c *Catalog) Load() []Statement { return c.Copy() }

// Transform returns the transform phase: the insert statements.
func (c *Catalog) Transform() []Statement { return c.Insert() }

// All returns every statement in execution order: drop, create, copy, insert.
func (c *Catalog) All() []Statement { return concat(c.drop, c.create, c.copy, c.insert) }

// ValidateIngestion checks the values substituted into the copy statements.
func ValidateIngestion(in dwh.IngestionConfig) error {
	var errs []error

	checkLocation := func(key, value string) {
		switch {
		case value == "":
			errs = append(errs, fmt.Errorf("%s is required: %w", key, dwh.ErrInvalidConfig))
		case !isS3Location(value):
			errs = append(errs, fmt.Errorf("%s must be an s3://bucket/prefix location, got %q: %w", key, value, dwh.ErrInvalidConfig))
		}
	}

	checkLocation("S3.LOG_DATA", in.LogData)
	checkLocation("S3.SONG_DATA", in.SongData)

	switch jp := normalizeJSONPath(in.LogJSONPath); {
	case jp == "":
		errs = append(errs, fmt.Errorf("S3.LOG_JSONPATH is required: %w", dwh.ErrInvalidConfig))
	case jp == "auto" || jp == "auto ignorecase":
	case !isS3Location(jp):
		errs = append(errs, fmt.Errorf("S3.LOG_JSONPATH must be 'auto', 'auto ignorecase' or an s3:// path, got %q: %w", in.LogJSONPath, dwh.ErrInvalidConfig))
	}

	if err := validateRole(in.RoleARN); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateRole(role string) error {
	if role == "" {
		return fmt.Errorf("IAM_ROLE.ARN is required: %w", dwh.ErrInvalidConfig)
	}
	if strings.EqualFold(role, "default") {
		return nil
	}
	parsed, err := arn.Parse(role)
	if err != nil {
		return fmt.Errorf("IAM_ROLE.ARN %q is not a valid ARN (%v): %w", role, err, dwh.ErrInvalidConfig)
	}
	if parsed.Service != "iam" || !strings.HasPrefix(parsed.Resource, "role/") {
		return fmt.Errorf("IAM_ROLE.ARN %q must name an IAM role (arn:aws:iam::<account>:role/<name>): %w", role, dwh.ErrInvalidConfig)
	}
	return nil
}

func renderCopy(table, from, role, format, extra, region string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "COPY %s FROM %s", table, quoteLiteral(from))
	if strings.EqualFold(role, "default") {
		b.WriteString(" IAM_ROLE default")
	} else {
		fmt.Fprintf(&b, " IAM_ROLE %s", quoteLiteral(role))
	}
	fmt.Fprintf(&b, " FORMAT AS JSON %s", quoteLiteral(format))
	if extra != "" {
		b.WriteString(" " + extra)
	}
	if region != "" {
		fmt.Fprintf(&b, " REGION %s", quoteLiteral(region))
	}
	return b.String()
}

// quoteLiteral renders s as a single-quoted SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func isS3Location(s string) bool {
	rest, ok := strings.CutPrefix(s, "s3://")
	if !ok {
		return false
	}
	bucket, _, _ := strings.Cut(rest, "/")
	return bucket != ""
}

func normalizeJSONPath(s string) string {
	s = strings.TrimSpace(s)
	if lower := strings.ToLower(s); lower == "auto" || lower == "auto ignorecase" {
		return lower
	}
	return s
}

// Fingerprint identifies an exact statement sequence. Reordering, adding or
// changing any statement yields a different value.
func Fingerprint(statements []Statement) string {
	sqls := make([]string, len(statements))
	for i, stmt := range statements {
		sqls[i] = stmt.SQL
	}
	return checksum.Plan(sqls)
}

func clone(s []Statement) []Statement {
	return append([]Statement(nil), s...)
}

func concat(groups ...[]Statement) []Statement {
	var out []Statement
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
