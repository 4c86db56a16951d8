// Package validators provides validation functions for Marena entities.
package validators

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Field constraints of a movie record. They mirror the CHECK and varchar
// constraints of the movies table.
const (
	MaxMovieNameLength   = 100
	MaxMovieGenresLength = 200
	MinMovieScore        = 0.0
	MaxMovieScore        = 10.0
	MinMovieYear         = 1888
	MaxMovieYear         = 2100
)

// ValidateMovieFields validates the data fields of a movie.
// All violations are reported, joined into a single error.
//
// Requirements:
//   - name: non-blank, at most 100 characters
//   - score: between 0 and 10 inclusive
//   - genres: non-blank, at most 200 characters
//   - year: between 1888 and 2100 inclusive
func ValidateMovieFields(name string, score float64, genres string, year int32) error {
	var errs []error

	if err := validateText("name", name, MaxMovieNameLength); err != nil {
		errs = append(errs, err)
	}
	if math.IsNaN(score) || score < MinMovieScore || score > MaxMovieScore {
		errs = append(errs, fmt.Errorf("score must be between %g and %g, got %g", MinMovieScore, MaxMovieScore, score))
	}
	if err := validateText("genres", genres, MaxMovieGenresLength); err != nil {
		errs = append(errs, err)
	}
	if year < MinMovieYear || year > MaxMovieYear {
		errs = append(errs, fmt.Errorf("year must be between %d and %d, got %d", MinMovieYear, MaxMovieYear, year))
	}

	return errors.Join(errs...)
}

func validateText(field, value string, maxLength int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	// Lengths are counted in characters, like varchar(n)
	if n := utf8.RuneCountInString(value); n > maxLength {
		return fmt.Errorf("%s must be at most %d characters, got %d", field, maxLength, n)
	}
	return nil
}
