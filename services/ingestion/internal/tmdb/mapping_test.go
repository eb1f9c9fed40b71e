package tmdb

import (
	"testing"
	"time"
)

func TestNormalizeMovie_AllFields(t *testing.T) {
	raw := RawRecord{
		"id":                float64(603),
		"title":             "The Matrix",
		"original_title":    "The Matrix",
		"overview":          "A hacker learns the truth.",
		"poster_path":       "/p.jpg",
		"backdrop_path":     "/b.jpg",
		"adult":             false,
		"video":             true,
		"original_language": "en",
		"genre_ids":         []any{float64(28), float64(878)},
		"popularity":        81.5,
		"release_date":      "1999-03-31",
		"vote_average":      8.2,
		"vote_count":        float64(24000),
	}

	m := NormalizeMovie(raw)
	if m.TMDBID != 603 {
		t.Fatalf("TMDBID = %d, want 603", m.TMDBID)
	}
	if m.Title != "The Matrix" || m.Overview != "A hacker learns the truth." {
		t.Fatalf("unexpected text fields: %+v", m)
	}
	if !m.Video || m.Adult {
		t.Fatalf("bool fields wrong: video=%v adult=%v", m.Video, m.Adult)
	}
	if len(m.GenreIDs) != 2 || m.GenreIDs[0] != 28 || m.GenreIDs[1] != 878 {
		t.Fatalf("GenreIDs = %v", m.GenreIDs)
	}
	if m.ReleaseDate == nil || m.ReleaseDate.Format("2006-01-02") != "1999-03-31" {
		t.Fatalf("ReleaseDate = %v", m.ReleaseDate)
	}
	if m.VoteCount != 24000 || m.Popularity != 81.5 {
		t.Fatalf("numeric fields wrong: %+v", m)
	}
}

func TestNormalizeMovie_MissingFieldsDefault(t *testing.T) {
	m := NormalizeMovie(RawRecord{"id": float64(42)})
	if m.TMDBID != 42 {
		t.Fatalf("TMDBID = %d", m.TMDBID)
	}
	if m.Title != "" || m.Overview != "" || m.PosterPath != "" {
		t.Fatalf("string fields should default empty: %+v", m)
	}
	if m.GenreIDs == nil || len(m.GenreIDs) != 0 {
		t.Fatalf("GenreIDs should be non-nil empty, got %#v", m.GenreIDs)
	}
	if m.ReleaseDate != nil {
		t.Fatalf("ReleaseDate should be nil, got %v", m.ReleaseDate)
	}
	if m.Popularity != 0 || m.VoteCount != 0 || m.Adult || m.Video {
		t.Fatalf("scalar fields should be zero: %+v", m)
	}
}

func TestNormalizeMovie_MistypedFieldsDefault(t *testing.T) {
	m := NormalizeMovie(RawRecord{
		"id":        "not-a-number",
		"title":     float64(7),
		"genre_ids": "nope",
		"adult":     "yes",
	})
	if m.TMDBID != 0 {
		t.Fatalf("mistyped id should yield 0, got %d", m.TMDBID)
	}
	if m.Title != "" || m.Adult {
		t.Fatalf("mistyped fields should default: %+v", m)
	}
	if len(m.GenreIDs) != 0 {
		t.Fatalf("GenreIDs = %v", m.GenreIDs)
	}
}

func TestNormalizeTVShow_OriginCountry(t *testing.T) {
	s := NormalizeTVShow(RawRecord{
		"id":             float64(1399),
		"name":           "Game of Thrones",
		"origin_country": []any{"US", "GB"},
		"first_air_date": "2011-04-17",
	})
	if s.TMDBID != 1399 || s.Name != "Game of Thrones" {
		t.Fatalf("unexpected show: %+v", s)
	}
	if len(s.OriginCountry) != 2 || s.OriginCountry[0] != "US" || s.OriginCountry[1] != "GB" {
		t.Fatalf("OriginCountry = %v", s.OriginCountry)
	}
	if s.FirstAirDate == nil || s.FirstAirDate.Format("2006-01-02") != "2011-04-17" {
		t.Fatalf("FirstAirDate = %v", s.FirstAirDate)
	}
}

func TestParseDate(t *testing.T) {
	d := ParseDate("2024-03-01")
	if d == nil {
		t.Fatal("valid date parsed to nil")
	}
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Fatalf("ParseDate = %v, want %v", d, want)
	}

	if got := ParseDate(""); got != nil {
		t.Fatalf("empty date should be nil, got %v", got)
	}
	if got := ParseDate("not-a-date"); got != nil {
		t.Fatalf("garbage date should be nil, got %v", got)
	}
	if got := ParseDate("2024-13-45"); got != nil {
		t.Fatalf("out-of-range date should be nil, got %v", got)
	}
}
