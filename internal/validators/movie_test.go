package validators

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMovieFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		movieName   string
		score       float64
		genres      string
		year        int32
		wantErr     bool
		errContains []string
	}{
		{
			name:      "valid movie",
			movieName: "Movie 1",
			score:     8.5,
			genres:    "Action",
			year:      2020,
		},
		{
			name:      "boundaries are inclusive",
			movieName: strings.Repeat("n", MaxMovieNameLength),
			score:     MaxMovieScore,
			genres:    strings.Repeat("g", MaxMovieGenresLength),
			year:      MinMovieYear,
		},
		{
			name:      "zero score and last year",
			movieName: "Silent",
			score:     0,
			genres:    "Drama",
			year:      MaxMovieYear,
		},
		{
			name:      "multibyte name counted in characters",
			movieName: strings.Repeat("é", MaxMovieNameLength),
			score:     5,
			genres:    "Comédie",
			year:      1999,
		},
		{
			name:        "blank name",
			movieName:   "   ",
			score:       5,
			genres:      "Drama",
			year:        2000,
			wantErr:     true,
			errContains: []string{"name is required"},
		},
		{
			name:        "name too long",
			movieName:   strings.Repeat("n", MaxMovieNameLength+1),
			score:       5,
			genres:      "Drama",
			year:        2000,
			wantErr:     true,
			errContains: []string{"name must be at most 100 characters"},
		},
		{
			name:        "genres too long",
			movieName:   "Movie",
			score:       5,
			genres:      strings.Repeat("g", MaxMovieGenresLength+1),
			year:        2000,
			wantErr:     true,
			errContains: []string{"genres must be at most 200 characters"},
		},
		{
			name:        "negative score",
			movieName:   "Movie",
			score:       -0.1,
			genres:      "Drama",
			year:        2000,
			wantErr:     true,
			errContains: []string{"score must be between"},
		},
		{
			name:        "NaN score",
			movieName:   "Movie",
			score:       math.NaN(),
			genres:      "Drama",
			year:        2000,
			wantErr:     true,
			errContains: []string{"score must be between"},
		},
		{
			name:        "year before cinema",
			movieName:   "Movie",
			score:       5,
			genres:      "Drama",
			year:        1887,
			wantErr:     true,
			errContains: []string{"year must be between 1888 and 2100"},
		},
		{
			name:        "all violations reported",
			movieName:   "",
			score:       10.5,
			genres:      "",
			year:        2101,
			wantErr:     true,
			errContains: []string{"name is required", "score must be between", "genres is required", "year must be between"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateMovieFields(tt.movieName, tt.score, tt.genres, tt.year)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.errContains {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}
