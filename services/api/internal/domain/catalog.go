package domain

import "time"

const dateLayout = "2006-01-02"

// Date marshals as a bare YYYY-MM-DD string, the only date shape the
// catalog API exposes. A nil *Date renders as JSON null.
type Date time.Time

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(d).Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	t, err := time.Parse(`"`+dateLayout+`"`, s)
	if err != nil {
		return err
	}
	*d = Date(t)
	return nil
}

func NewDate(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	d := Date(*t)
	return &d
}

type Movie struct {
	TMDBID           int64     `json:"tmdb_id"`
	MediaType        MediaType `json:"media_type"`
	Title            string    `json:"title"`
	OriginalTitle    string    `json:"original_title"`
	Overview         string    `json:"overview"`
	PosterPath       string    `json:"poster_path"`
	BackdropPath     string    `json:"backdrop_path"`
	Adult            bool      `json:"adult"`
	Video            bool      `json:"video"`
	OriginalLanguage string    `json:"original_language"`
	GenreIDs         []int64   `json:"genre_ids"`
	Popularity       float64   `json:"popularity"`
	ReleaseDate      *Date     `json:"release_date"`
	VoteAverage      float64   `json:"vote_average"`
	VoteCount        int64     `json:"vote_count"`
}

type TVShow struct {
	TMDBID           int64     `json:"tmdb_id"`
	MediaType        MediaType `json:"media_type"`
	Name             string    `json:"name"`
	OriginalName     string    `json:"original_name"`
	Overview         string    `json:"overview"`
	PosterPath       string    `json:"poster_path"`
	BackdropPath     string    `json:"backdrop_path"`
	Adult            bool      `json:"adult"`
	OriginalLanguage string    `json:"original_language"`
	GenreIDs         []int64   `json:"genre_ids"`
	Popularity       float64   `json:"popularity"`
	FirstAirDate     *Date     `json:"first_air_date"`
	OriginCountry    []string  `json:"origin_country"`
	VoteAverage      float64   `json:"vote_average"`
	VoteCount        int64     `json:"vote_count"`
}
