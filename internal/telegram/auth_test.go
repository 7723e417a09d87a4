package telegram

import (
	"strings"
	"testing"
	"time"
)

const testBotToken = "110201543:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw"

func signedData(t *testing.T, authDate int64) AuthData {
	t.Helper()

	d := AuthData{
		ID:        44366172,
		FirstName: "Nino",
		Username:  "nino_trades",
		PhotoURL:  "https://t.me/i/userpic/320/nino.jpg",
		AuthDate:  authDate,
	}
	d.Hash = Sign(d, testBotToken)
	return d
}

func TestVerify(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	t.Run("valid payload", func(t *testing.T) {
		d := signedData(t, now.Unix()-60)
		if err := Verify(d, testBotToken, now); err != nil {
			t.Fatalf("Verify() = %v, want nil", err)
		}
	})

	t.Run("uppercase hash accepted", func(t *testing.T) {
		d := signedData(t, now.Unix()-60)
		d.Hash = strings.ToUpper(d.Hash)
		if err := Verify(d, testBotToken, now); err != nil {
			t.Fatalf("Verify() with uppercase hash = %v, want nil", err)
		}
	})

	t.Run("tampered field", func(t *testing.T) {
		d := signedData(t, now.Unix()-60)
		d.Username = "someone_else"
		if err := Verify(d, testBotToken, now); err != ErrHashMismatch {
			t.Fatalf("Verify() = %v, want ErrHashMismatch", err)
		}
	})

	t.Run("wrong bot token", func(t *testing.T) {
		d := signedData(t, now.Unix()-60)
		if err := Verify(d, "other-token", now); err != ErrHashMismatch {
			t.Fatalf("Verify() = %v, want ErrHashMismatch", err)
		}
	})

	t.Run("missing hash", func(t *testing.T) {
		d := signedData(t, now.Unix()-60)
		d.Hash = ""
		if err := Verify(d, testBotToken, now); err != ErrHashMismatch {
			t.Fatalf("Verify() = %v, want ErrHashMismatch", err)
		}
	})

	t.Run("stale auth_date", func(t *testing.T) {
		d := signedData(t, now.Add(-25*time.Hour).Unix())
		if err := Verify(d, testBotToken, now); err != ErrExpired {
			t.Fatalf("Verify() = %v, want ErrExpired", err)
		}
	})
}

func TestCheckStringSortedAndSkipsEmpty(t *testing.T) {
	d := AuthData{ID: 7, AuthDate: 100, Username: "zed"}
	got := checkString(d)
	want := "auth_date=100\nid=7\nusername=zed"
	if got != want {
		t.Fatalf("checkString() = %q, want %q", got, want)
	}
}
