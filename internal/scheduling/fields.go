package scheduling

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"
)

const (
	maxNameLen  = 100
	maxEmailLen = 100
	maxPhoneLen = 20
)

// same shape the booking form checks before submitting
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// layouts accepted for dateTime, most specific first; the offset-less ones
// are read in the service's location
var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func (s *Service) parseTime(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.Truncate(time.Microsecond), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, s.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s must be an ISO-8601 timestamp", ErrInvalidField, field)
}

func checkLen(field, v string, max int) error {
	if utf8.RuneCountInString(v) > max {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidField, field, max)
	}
	return nil
}

func checkEmail(v string) error {
	if err := checkLen("patientEmail", v, maxEmailLen); err != nil {
		return err
	}
	if !emailPattern.MatchString(v) {
		return fmt.Errorf("%w: patientEmail is not a valid e-mail address", ErrInvalidField)
	}
	return nil
}

// normalizePhone rewrites numbers libphonenumber recognises to E.164 and
// leaves anything else as typed. Empty input means "no phone".
func (s *Service) normalizePhone(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*raw)
	if v == "" {
		return nil, nil
	}
	if err := checkLen("patientPhone", v, maxPhoneLen); err != nil {
		return nil, err
	}
	if num, err := phonenumbers.Parse(v, s.region); err == nil && phonenumbers.IsValidNumber(num) {
		v = phonenumbers.Format(num, phonenumbers.E164)
	}
	return &v, nil
}

// optionalText maps an explicit empty string to nil.
func optionalText(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
