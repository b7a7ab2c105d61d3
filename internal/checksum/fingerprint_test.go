package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "SELECT  *\n\tFROM   t", "SELECT * FROM t"},
		{"trims", "  SELECT 1  \n", "SELECT 1"},
		{"line comment", "-- header\nSELECT 1 -- trailing\n", "SELECT 1"},
		{"block comment", "SELECT /* inline */ 1", "SELECT 1"},
		{"unterminated block comment", "SELECT 1 /* open", "SELECT 1"},
		{"keeps literal spacing", "SELECT 'a  -- b'", "SELECT 'a  -- b'"},
		{"escaped quote", "SELECT 'it''s  here'  ,  2", "SELECT 'it''s  here' , 2"},
		{"keeps case", "COPY t FROM 's3://Bucket/Key'", "COPY t FROM 's3://Bucket/Key'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestFingerprint_IgnoresFormatting(t *testing.T) {
	a := Fingerprint("INSERT INTO user_table\nSELECT 1")
	b := Fingerprint("-- users\nINSERT   INTO user_table SELECT 1")

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprint_DistinguishesLiterals(t *testing.T) {
	assert.NotEqual(t,
		Fingerprint("COPY t FROM 's3://bucket/a'"),
		Fingerprint("COPY t FROM 's3://bucket/A'"))
}

func TestPlan_OrderMatters(t *testing.T) {
	forward := Plan([]string{"DROP TABLE a", "CREATE TABLE a (x int)"})
	backward := Plan([]string{"CREATE TABLE a (x int)", "DROP TABLE a"})

	assert.NotEqual(t, forward, backward)
	assert.Equal(t, forward, Plan([]string{"DROP  TABLE a", "CREATE TABLE a (x int)"}))
}

func TestShort(t *testing.T) {
	assert.Equal(t, "abc", Short("abc"))
	assert.Equal(t, "0123456789ab", Short("0123456789abcdef"))
}
