// Package filter evaluates playlist entries against user-supplied
// constraints before they are queued for download.
package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/vbraga/tubefetch/internal/model"
)

// Set holds the entry filters for one download run. The zero value accepts
// everything. Entries with missing metadata pass the filters that need it.
type Set struct {
	MinDuration int    // seconds, 0 = no limit
	MaxDuration int    // seconds, 0 = no limit
	DateFrom    string // YYYYMMDD inclusive lower bound
	DateTo      string // YYYYMMDD inclusive upper bound
	MatchTitle  string // substring, or regexp when MatchRegex is set
	MatchRegex  bool

	titleRe *regexp.Regexp
}

// Compile validates the filter set and pre-compiles the title regexp.
func (s *Set) Compile() error {
	if s.MatchRegex && s.MatchTitle != "" {
		re, err := regexp.Compile("(?i)" + s.MatchTitle)
		if err != nil {
			return goerr.Wrap(err, "invalid title pattern",
				goerr.T(model.ErrTagInput), goerr.V("pattern", s.MatchTitle))
		}
		s.titleRe = re
	}
	return nil
}

// IsZero reports whether no filter is configured
func (s *Set) IsZero() bool {
	return s.MinDuration == 0 && s.MaxDuration == 0 &&
		s.DateFrom == "" && s.DateTo == "" && s.MatchTitle == ""
}

// Evaluate decides whether an entry should be skipped. The returned reason
// is empty when the entry passes.
func (s *Set) Evaluate(entry model.VideoInfo) (skip bool, reason string) {
	if s.MinDuration > 0 && entry.Duration > 0 && entry.Duration < s.MinDuration {
		return true, fmt.Sprintf("duration %ds below minimum %ds", entry.Duration, s.MinDuration)
	}
	if s.MaxDuration > 0 && entry.Duration > 0 && entry.Duration > s.MaxDuration {
		return true, fmt.Sprintf("duration %ds above maximum %ds", entry.Duration, s.MaxDuration)
	}

	if s.DateFrom != "" && entry.UploadDate != "" && entry.UploadDate < s.DateFrom {
		return true, "uploaded before " + s.DateFrom
	}
	if s.DateTo != "" && entry.UploadDate != "" && entry.UploadDate > s.DateTo {
		return true, "uploaded after " + s.DateTo
	}

	if s.MatchTitle != "" {
		if s.titleRe != nil {
			if !s.titleRe.MatchString(entry.Title) {
				return true, "title does not match pattern"
			}
		} else if !strings.Contains(strings.ToLower(entry.Title), strings.ToLower(s.MatchTitle)) {
			return true, "title does not contain " + strconv.Quote(s.MatchTitle)
		}
	}

	return false, ""
}

// ParseDuration accepts plain seconds, mm:ss, or hh:mm:ss and returns the
// total number of seconds.
func ParseDuration(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if secs, err := strconv.Atoi(s); err == nil {
		if secs < 0 {
			return 0, goerr.New("duration cannot be negative",
				goerr.T(model.ErrTagInput), goerr.V("value", s))
		}
		return secs, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, goerr.New("invalid duration format",
			goerr.T(model.ErrTagInput), goerr.V("value", s))
	}

	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, goerr.New("invalid duration format",
				goerr.T(model.ErrTagInput), goerr.V("value", s))
		}
		total = total*60 + n
	}
	return total, nil
}

// ParseDate accepts YYYY-MM-DD, YYYYMMDD, or DD/MM/YYYY and normalizes to
// the YYYYMMDD form yt-dlp reports upload dates in.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}

	for _, layout := range []string{"2006-01-02", "20060102", "02/01/2006"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format("20060102"), nil
		}
	}
	return "", goerr.New("invalid date format",
		goerr.T(model.ErrTagInput), goerr.V("value", s))
}
