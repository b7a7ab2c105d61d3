package catalog

// Table names. Every table carries the _table suffix in DDL and DML alike.
const (
	TableStagingEvents = "staging_events_table"
	TableStagingSongs  = "staging_songs_table"
	TableSongplay      = "songplay_table"
	TableUser          = "user_table"
	TableSong          = "song_table"
	TableArtist        = "artist_table"
	TableTime          = "time_table"
)

// tableOrder is the order tables are dropped and created in.
var tableOrder = []string{
	TableStagingEvents,
	TableStagingSongs,
	TableSongplay,
	TableUser,
	TableSong,
	TableArtist,
	TableTime,
}

const createStagingEvents = `CREATE TABLE IF NOT EXISTS staging_events_table (
    artist        varchar,
    auth          varchar,
    firstName     varchar,
    gender        varchar,
    itemInSession int,
    lastName      varchar,
    length        decimal,
    level         varchar,
    location      varchar,
    method        varchar,
    page          varchar,
    registration  decimal,
    sessionId     int,
    song          varchar,
    status        int,
    ts            timestamp,
    userAgent     varchar,
    userId        int
)`

const createStagingSongs = `CREATE TABLE IF NOT EXISTS staging_songs_table (
    num_songs        int,
    artist_id        varchar,
    artist_latitude  varchar,
    artist_longitude varchar,
    artist_location  varchar,
    artist_name      varchar,
    song_id          varchar,
    title            varchar,
    duration         numeric,
    year             int
)`

// createSongplayFormat takes the dialect's identity column clause.
const createSongplayFormat = `CREATE TABLE IF NOT EXISTS songplay_table (
    songplay_id int %s PRIMARY KEY,
    start_time  varchar NOT NULL,
    user_id     int NOT NULL,
    level       varchar,
    song_id     varchar NOT NULL,
    artist_id   varchar NOT NULL,
    session_id  int,
    location    varchar,
    user_agent  varchar
)`

const createUser = `CREATE TABLE IF NOT EXISTS user_table (
    user_id    int PRIMARY KEY,
    first_name varchar,
    last_name  varchar,
    gender     varchar,
    level      varchar
)`

const createSong = `CREATE TABLE IF NOT EXISTS song_table (
    song_id   varchar PRIMARY KEY,
    title     varchar,
    artist_id varchar NOT NULL,
    year      int,
    duration  numeric
)`

const createArtist = `CREATE TABLE IF NOT EXISTS artist_table (
    artist_id varchar PRIMARY KEY,
    name      varchar,
    location  varchar,
    latitude  numeric,
    longitude numeric
)`

const createTime = `CREATE TABLE IF NOT EXISTS time_table (
    start_time timestamp PRIMARY KEY,
    hour       int,
    day        varchar,
    week       int,
    month      varchar,
    year       int,
    weekday    varchar
)`
