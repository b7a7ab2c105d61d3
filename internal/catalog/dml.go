package catalog

// PlayPage is the page value of an event that records a song being played.
const PlayPage = "NextSong"

// playedSongs is the join every transform reads: play events matched to the
// song catalog on (title, artist name). Events without a match drop out here.
const playedSongs = `
    FROM staging_events_table e
    JOIN staging_songs_table s
        ON e.song = s.title AND e.artist = s.artist_name
    WHERE e.page = '` + PlayPage + `'`

const insertSongplay = `INSERT INTO songplay_table (start_time, user_id, level, song_id, artist_id, session_id, location, user_agent)
SELECT DISTINCT
    CAST(e.ts AS varchar) AS start_time,
    e.userId              AS user_id,
    e.level,
    s.song_id,
    s.artist_id,
    e.sessionId           AS session_id,
    e.location,
    e.userAgent           AS user_agent` + playedSongs + `
    AND e.userId IS NOT NULL
    AND e.ts IS NOT NULL`

// The latest event of each user decides level and profile fields.
const insertUser = `INSERT INTO user_table (user_id, first_name, last_name, gender, level)
SELECT DISTINCT user_id, first_name, last_name, gender, level
FROM (
    SELECT
        e.userId    AS user_id,
        e.firstName AS first_name,
        e.lastName  AS last_name,
        e.gender,
        e.level,
        ROW_NUMBER() OVER (PARTITION BY e.userId ORDER BY e.ts DESC, e.level DESC) AS seen_rank` + playedSongs + `
    AND e.userId IS NOT NULL
) ranked
WHERE seen_rank = 1`

const insertSong = `INSERT INTO song_table (song_id, title, artist_id, year, duration)
SELECT DISTINCT song_id, title, artist_id, year, duration
FROM (
    SELECT
        s.song_id,
        s.title,
        s.artist_id,
        s.year,
        s.duration,
        ROW_NUMBER() OVER (PARTITION BY s.song_id ORDER BY s.title, s.artist_id) AS song_rank` + playedSongs + `
    AND s.song_id IS NOT NULL
) ranked
WHERE song_rank = 1`

const insertArtist = `INSERT INTO artist_table (artist_id, name, location, latitude, longitude)
SELECT DISTINCT artist_id, name, location, latitude, longitude
FROM (
    SELECT
        s.artist_id,
        s.artist_name                         AS name,
        s.artist_location                     AS location,
        CAST(NULLIF(s.artist_latitude, '') AS numeric)  AS latitude,
        CAST(NULLIF(s.artist_longitude, '') AS numeric) AS longitude,
        ROW_NUMBER() OVER (PARTITION BY s.artist_id ORDER BY s.artist_name, s.artist_location) AS artist_rank` + playedSongs + `
    AND s.artist_id IS NOT NULL
) ranked
WHERE artist_rank = 1`

// weekday follows EXTRACT(DOW): 0 is Sunday.
const insertTime = `INSERT INTO time_table (start_time, hour, day, week, month, year, weekday)
SELECT DISTINCT
    e.ts                                     AS start_time,
    CAST(EXTRACT(HOUR FROM e.ts) AS int)     AS hour,
    CAST(EXTRACT(DAY FROM e.ts) AS varchar)  AS day,
    CAST(EXTRACT(WEEK FROM e.ts) AS int)     AS week,
    CAST(EXTRACT(MONTH FROM e.ts) AS varchar) AS month,
    CAST(EXTRACT(YEAR FROM e.ts) AS int)     AS year,
    CAST(EXTRACT(DOW FROM e.ts) AS varchar)  AS weekday` + playedSongs + `
    AND e.ts IS NOT NULL`

// DiagnoseLoadSQL returns the load error logged by the session's last COPY.
// It is queried after a failed COPY to explain which file and column broke.
// A COPY that failed before reading any row (access denied, missing prefix)
// logs nothing and the query returns no rows.
const DiagnoseLoadSQL = `SELECT TRIM(filename), line_number, TRIM(colname), TRIM(err_reason)
FROM stl_load_errors
WHERE query = pg_last_copy_id()
ORDER BY starttime DESC
LIMIT 1`
