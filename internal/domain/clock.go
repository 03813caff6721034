package domain

import (
	"regexp"
	"time"
)

var sendTimeRe = regexp.MustCompile(`^[0-2]\d:[0-5]\d$`)

// ValidSendTime reports whether s is a well-formed "HH:mm" send time.
func ValidSendTime(s string) bool {
	if !sendTimeRe.MatchString(s) {
		return false
	}
	// The pattern admits 24:xx–29:xx; reject those explicitly.
	return s < "24:00"
}

// ValidateTZ checks that tz is a valid IANA location.
func ValidateTZ(tz string) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", err
	}
	return loc.String(), nil
}

// LocalHHMM formats t in the given timezone as "HH:mm".
func LocalHHMM(t time.Time, tz string) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", err
	}
	return t.In(loc).Format("15:04"), nil
}

// LocalDate formats t in the given timezone as "YYYY-MM-DD".
func LocalDate(t time.Time, tz string) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", err
	}
	return t.In(loc).Format("2006-01-02"), nil
}

// IsSendCandidate reports whether u should receive a delivery at instant now:
// the user's local wall clock matches the configured send time to the minute,
// and nothing was delivered to them yet on the current local date.
func IsSendCandidate(now time.Time, u *User) bool {
	hhmm, err := LocalHHMM(now, u.Timezone)
	if err != nil {
		return false
	}
	if hhmm != u.SendTime {
		return false
	}
	date, err := LocalDate(now, u.Timezone)
	if err != nil {
		return false
	}
	return u.LastSentDate != date
}
