package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Event is one row of staging_events_table.
type Event struct {
	UserID    *int32
	FirstName string
	LastName  string
	Gender    string
	Level     string
	Page      string
	Song      *string
	Artist    *string
	Length    *float64
	SessionID int32
	Location  string
	UserAgent string
	TS        time.Time
}

// Song is one row of staging_songs_table.
type Song struct {
	SongID    string
	Title     string
	ArtistID  string
	Name      string
	Location  string
	Latitude  string
	Longitude string
	Duration  float64
	Year      int32
}

// StagingBuilder provides a fluent API for building staging rows.
//
// Example usage:
//
//	NewStagingBuilder().
//	    AddSong(Song{SongID: "SOA", Title: "Song A", ArtistID: "ARA", Name: "Artist A"}).
//	    AddPlay(10, "paid", "Song A", "Artist A", ts).
//	    Seed(ctx, conn)
type StagingBuilder struct {
	events []Event
	songs  []Song
}

// NewStagingBuilder creates an empty builder.
func NewStagingBuilder() *StagingBuilder {
	return &StagingBuilder{}
}

// AddEvent adds an arbitrary event row.
func (b *StagingBuilder) AddEvent(e Event) *StagingBuilder {
	b.events = append(b.events, e)
	return b
}

// AddPlay adds a NextSong event for userID.
func (b *StagingBuilder) AddPlay(userID int32, level, song, artist string, ts time.Time) *StagingBuilder {
	length := 200.5
	return b.AddEvent(Event{
		UserID:    &userID,
		FirstName: fmt.Sprintf("First%d", userID),
		LastName:  fmt.Sprintf("Last%d", userID),
		Gender:    "F",
		Level:     level,
		Page:      "NextSong",
		Song:      &song,
		Artist:    &artist,
		Length:    &length,
		SessionID: 100 + userID,
		Location:  "Portland, OR",
		UserAgent: "Mozilla/5.0",
		TS:        ts,
	})
}

// AddSong adds a song catalog row.
func (b *StagingBuilder) AddSong(s Song) *StagingBuilder {
	b.songs = append(b.songs, s)
	return b
}

var eventColumns = []string{
	"userid", "firstname", "lastname", "gender", "level", "page", "song", "artist",
	"length", "sessionid", "location", "useragent", "ts",
}

var songColumns = []string{
	"num_songs", "song_id", "title", "artist_id", "artist_name", "artist_location",
	"artist_latitude", "artist_longitude", "duration", "year",
}

// Seed bulk-inserts the rows into the staging tables, which must exist.
func (b *StagingBuilder) Seed(ctx context.Context, conn *pgx.Conn) error {
	eventRows := make([][]any, len(b.events))
	for i, e := range b.events {
		eventRows[i] = []any{
			e.UserID, e.FirstName, e.LastName, e.Gender, e.Level, e.Page, e.Song, e.Artist,
			e.Length, e.SessionID, e.Location, e.UserAgent, e.TS,
		}
	}
	if _, err := conn.CopyFrom(ctx, pgx.Identifier{"staging_events_table"}, eventColumns, pgx.CopyFromRows(eventRows)); err != nil {
		return fmt.Errorf("seed staging events: %w", err)
	}

	songRows := make([][]any, len(b.songs))
	for i, s := range b.songs {
		songRows[i] = []any{
			int32(1), s.SongID, s.Title, s.ArtistID, s.Name, s.Location,
			s.Latitude, s.Longitude, s.Duration, s.Year,
		}
	}
	if _, err := conn.CopyFrom(ctx, pgx.Identifier{"staging_songs_table"}, songColumns, pgx.CopyFromRows(songRows)); err != nil {
		return fmt.Errorf("seed staging songs: %w", err)
	}
	return nil
}
