package assess

import (
	"strings"
	"time"
	"unicode"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

// specialChars is the character class counted as "special" when scoring a
// pre-shared key.
const specialChars = `!@#$%^&*(),.?":{}|<>`

// Recommendation strings attached when a character class is missing.
const (
	recLength    = "Increase password length (at least 12-16 characters)."
	recLowercase = "Include lowercase letters."
	recUppercase = "Include uppercase letters."
	recDigits    = "Include numbers."
	recSpecial   = "Include special characters (e.g., !@#$%^&*)."
)

// PasswordVerdict is the outcome of scoring one PSK.
type PasswordVerdict struct {
	Strength        string
	Recommendations []string
}

// ScorePassword rates a pre-shared key: up to 2 points for length (>=16 two,
// >=12 one), one point per character class present. 6 or more is Strong,
// 4 or more Moderate, anything below Weak. Each failed check contributes its
// fixed recommendation.
func ScorePassword(psk string) PasswordVerdict {
	score := 0
	var recs []string

	switch {
	case len(psk) >= 16:
		score += 2
	case len(psk) >= 12:
		score++
	default:
		recs = append(recs, recLength)
	}

	if strings.ContainsFunc(psk, unicode.IsLower) {
		score++
	} else {
		recs = append(recs, recLowercase)
	}
	if strings.ContainsFunc(psk, unicode.IsUpper) {
		score++
	} else {
		recs = append(recs, recUppercase)
	}
	if strings.ContainsFunc(psk, unicode.IsDigit) {
		score++
	} else {
		recs = append(recs, recDigits)
	}
	if strings.ContainsAny(psk, specialChars) {
		score++
	} else {
		recs = append(recs, recSpecial)
	}

	strength := "Weak"
	switch {
	case score >= 6:
		strength = "Strong"
	case score >= 4:
		strength = "Moderate"
	}
	return PasswordVerdict{Strength: strength, Recommendations: recs}
}

// newPasswordAlert wraps a verdict into the publishable payload.
func newPasswordAlert(ssid string, v PasswordVerdict, ts time.Time) *domain.PasswordAssessmentAlert {
	recs := v.Recommendations
	if recs == nil {
		recs = []string{}
	}
	return &domain.PasswordAssessmentAlert{
		SSID:            ssid,
		Strength:        v.Strength,
		Recommendations: recs,
		Timestamp:       domain.FormatAlertTime(ts),
	}
}
