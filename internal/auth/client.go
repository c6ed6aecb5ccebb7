// Package auth keeps the airdrop credential fresh and hands it to the backend.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dm/minerdeck/internal/model"
)

var (
	// ErrMissingToken is returned when a refresh response carries no access token.
	ErrMissingToken = errors.New("refresh response missing token")
	// ErrMissingExpiry is returned when neither the response nor the token's
	// exp claim says when the new credential expires.
	ErrMissingExpiry = errors.New("refresh response missing expiresAt")
)

// RefreshClient calls the external refresh endpoint.
type RefreshClient struct {
	URL        string
	HTTPClient *http.Client
}

// Refresh exchanges refreshToken for a new credential.
func (c *RefreshClient) Refresh(ctx context.Context, refreshToken string) (*model.Credential, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("refresh url missing")
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return nil, fmt.Errorf("refresh request failed with status %d", resp.StatusCode)
	}

	var cred model.Credential
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&cred); err != nil {
		return nil, fmt.Errorf("decode refresh response: %w", err)
	}
	if cred.Token == "" {
		return nil, ErrMissingToken
	}
	if cred.ExpiresAt == 0 {
		exp, err := tokenExpiry(cred.Token)
		if err != nil {
			return nil, err
		}
		cred.ExpiresAt = exp.Unix()
	}
	return &cred, nil
}

// tokenExpiry reads the exp claim of a JWT without verifying its signature.
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, ErrMissingExpiry
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, ErrMissingExpiry
	}
	return exp.Time, nil
}
