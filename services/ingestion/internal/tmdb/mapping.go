package tmdb

import (
	"strings"
	"time"

	"github.com/example/cinewhisper/services/ingestion/internal/store"
)

// dateLayout is the only date format TMDB emits.
const dateLayout = "2006-01-02"

// NormalizeMovie converts a raw trending record into a typed Movie.
// Every field is default-on-missing: absent or mistyped keys produce the
// zero value, never an error. Records without a usable id normalize to
// TMDBID == 0 and are dropped by the pipeline.
func NormalizeMovie(raw RawRecord) store.Movie {
	return store.Movie{
		TMDBID:           intField(raw, "id"),
		Title:            strField(raw, "title"),
		OriginalTitle:    strField(raw, "original_title"),
		Overview:         strField(raw, "overview"),
		PosterPath:       strField(raw, "poster_path"),
		BackdropPath:     strField(raw, "backdrop_path"),
		Adult:            boolField(raw, "adult"),
		Video:            boolField(raw, "video"),
		OriginalLanguage: strField(raw, "original_language"),
		GenreIDs:         intSliceField(raw, "genre_ids"),
		Popularity:       floatField(raw, "popularity"),
		ReleaseDate:      ParseDate(strField(raw, "release_date")),
		VoteAverage:      floatField(raw, "vote_average"),
		VoteCount:        intField(raw, "vote_count"),
	}
}

// NormalizeTVShow converts a raw trending record into a typed TVShow.
func NormalizeTVShow(raw RawRecord) store.TVShow {
	return store.TVShow{
		TMDBID:           intField(raw, "id"),
		Name:             strField(raw, "name"),
		OriginalName:     strField(raw, "original_name"),
		Overview:         strField(raw, "overview"),
		PosterPath:       strField(raw, "poster_path"),
		BackdropPath:     strField(raw, "backdrop_path"),
		Adult:            boolField(raw, "adult"),
		OriginalLanguage: strField(raw, "original_language"),
		GenreIDs:         intSliceField(raw, "genre_ids"),
		Popularity:       floatField(raw, "popularity"),
		FirstAirDate:     ParseDate(strField(raw, "first_air_date")),
		VoteAverage:      floatField(raw, "vote_average"),
		VoteCount:        intField(raw, "vote_count"),
		OriginCountry:    strSliceField(raw, "origin_country"),
	}
}

// ParseDate parses a YYYY-MM-DD value. Empty or unparsable input yields nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &d
}

// ── field extraction ───────────────────────────────────────────────────────
// encoding/json decodes every JSON number into float64, so numeric fields
// go through a float64 assertion regardless of their domain type.

func strField(raw RawRecord, key string) string {
	v, _ := raw[key].(string)
	return v
}

func boolField(raw RawRecord, key string) bool {
	v, _ := raw[key].(bool)
	return v
}

func floatField(raw RawRecord, key string) float64 {
	v, _ := raw[key].(float64)
	return v
}

func intField(raw RawRecord, key string) int64 {
	v, _ := raw[key].(float64)
	return int64(v)
}

func intSliceField(raw RawRecord, key string) []int64 {
	out := []int64{}
	arr, _ := raw[key].([]any)
	for _, el := range arr {
		if f, ok := el.(float64); ok {
			out = append(out, int64(f))
		}
	}
	return out
}

func strSliceField(raw RawRecord, key string) []string {
	out := []string{}
	arr, _ := raw[key].([]any)
	for _, el := range arr {
		if s, ok := el.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
