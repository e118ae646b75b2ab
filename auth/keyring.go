// Package auth stores the analytics endpoint token in the system keyring.
package auth

import (
	"github.com/lectern-player/lectern/constant"
	"github.com/zalando/go-keyring"
)

const user = "analytics-token"

// SetToken saves the bearer token sent with analytics uploads.
func SetToken(token string) error {
	return keyring.Set(constant.Lectern, user, token)
}

// GetToken returns the saved token, or keyring.ErrNotFound.
func GetToken() (string, error) {
	return keyring.Get(constant.Lectern, user)
}

func DeleteToken() error {
	return keyring.Delete(constant.Lectern, user)
}
