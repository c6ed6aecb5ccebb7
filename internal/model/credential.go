package model

import "time"

// Credential is the airdrop token pair. It is only ever replaced whole.
type Credential struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"` // unix seconds
}

// Expiry returns ExpiresAt as a time.Time.
func (c Credential) Expiry() time.Time {
	return time.Unix(c.ExpiresAt, 0)
}

// Expired reports whether the credential's expiry is at or before now.
func (c Credential) Expired(now time.Time) bool {
	return !now.Before(c.Expiry())
}
