// Package telegram verifies Telegram login-widget payloads.
package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// MaxAuthAge bounds how old a widget payload may be before it is rejected.
const MaxAuthAge = 24 * time.Hour

var (
	ErrHashMismatch = errors.New("telegram auth hash mismatch")
	ErrExpired      = errors.New("telegram auth data expired")
)

// AuthData is the payload the Telegram login widget posts back to us.
type AuthData struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	PhotoURL  string `json:"photo_url"`
	AuthDate  int64  `json:"auth_date"`
	Hash      string `json:"hash"`
}

// Verify checks the widget HMAC against the bot token and rejects stale
// payloads. The secret key is SHA256(botToken); the signed message is the
// sorted key=value lines of every present field except hash.
func Verify(d AuthData, botToken string, now time.Time) error {
	if d.ID == 0 || d.Hash == "" {
		return ErrHashMismatch
	}

	expected := Sign(d, botToken)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(d.Hash))) {
		return ErrHashMismatch
	}

	if d.AuthDate <= 0 || now.Sub(time.Unix(d.AuthDate, 0)) > MaxAuthAge {
		return ErrExpired
	}

	return nil
}

// Sign computes the widget hash for d under botToken.
func Sign(d AuthData, botToken string) string {
	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(checkString(d)))
	return hex.EncodeToString(mac.Sum(nil))
}

func checkString(d AuthData) string {
	pairs := []string{
		fmt.Sprintf("auth_date=%d", d.AuthDate),
		fmt.Sprintf("id=%d", d.ID),
	}
	if d.FirstName != "" {
		pairs = append(pairs, "first_name="+d.FirstName)
	}
	if d.LastName != "" {
		pairs = append(pairs, "last_name="+d.LastName)
	}
	if d.Username != "" {
		pairs = append(pairs, "username="+d.Username)
	}
	if d.PhotoURL != "" {
		pairs = append(pairs, "photo_url="+d.PhotoURL)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "\n")
}
