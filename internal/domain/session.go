package domain

import "time"

// PickingSession models one remote "pick photos" session. Transitions are
// server-driven: the session is created remotely and polled until the user
// commits their picks in the external picker UI.
type PickingSession struct {
	ID            string `json:"id"`
	PickerURI     string `json:"pickerUri"`
	MediaItemsSet bool   `json:"mediaItemsSet"`
}

// AuthToken is the persisted OAuth token triple. Owned exclusively by the
// authorization manager. The access token is valid only while now < Expiry.
type AuthToken struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Valid reports whether the access token can still be used.
func (t AuthToken) Valid(now time.Time) bool {
	return t.AccessToken != "" && now.Before(t.Expiry)
}
