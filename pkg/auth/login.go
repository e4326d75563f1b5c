package auth

import (
	"net/http"
	"net/url"

	"github.com/rhuss/opexcore/pkg/api"
)

// PasswordForm builds the OAuth2 resource-owner password form that the
// FastAPI-based panels accept on their token endpoints.
func PasswordForm(username, password string) url.Values {
	return url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
	}
}

// MapLoginError normalizes the error of a login call. Panels answer bad
// credentials with 401, 403, 400 or 422 depending on the backend; all of
// them become authentication_error. Other errors pass through.
func MapLoginError(err error) error {
	apiErr, ok := api.AsAPIError(err)
	if !ok || apiErr.Type != api.ErrorTypeBusiness {
		return err
	}
	switch apiErr.Status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusNotFound:
		c := *apiErr
		c.Type = api.ErrorTypeAuthentication
		return &c
	default:
		return err
	}
}
