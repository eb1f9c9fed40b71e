package store

import "encoding/json"

// Sequence columns (genre_ids, origin_country) are stored as JSONB.
// Decoding must exactly invert encoding, including the empty sequence;
// SQL NULL and JSON null both decode to an empty slice.

func encodeInt64s(v []int64) []byte {
	if v == nil {
		v = []int64{}
	}
	b, _ := json.Marshal(v)
	return b
}

func decodeInt64s(b []byte) []int64 {
	var out []int64
	if len(b) > 0 {
		_ = json.Unmarshal(b, &out)
	}
	if out == nil {
		out = []int64{}
	}
	return out
}

func encodeStrings(v []string) []byte {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return b
}

func decodeStrings(b []byte) []string {
	var out []string
	if len(b) > 0 {
		_ = json.Unmarshal(b, &out)
	}
	if out == nil {
		out = []string{}
	}
	return out
}
