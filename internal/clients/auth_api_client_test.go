package clients

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	srv, rec := newCatalog(t, http.StatusOK, `{"token":"jwt-abc","username":"mario"}`)
	client := NewAuthAPIClient(srv.URL, "", nil, discardLogger())

	res, err := client.Login(context.Background(), "mario@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", res.Token)
	assert.Equal(t, "mario@example.com", res.Email)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, DefaultLoginPath, rec.path)
	assert.Empty(t, rec.headers.Get("Authorization"))
	assert.Equal(t, "mario@example.com", rec.body["email"])
	assert.Equal(t, "secret", rec.body["password"])
}

func TestLogin_CustomPath(t *testing.T) {
	srv, rec := newCatalog(t, http.StatusOK, `{"token":"t"}`)
	client := NewAuthAPIClient(srv.URL, "/api/login", nil, discardLogger())

	_, err := client.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "/api/login", rec.path)
}

func TestLogin_Rejected(t *testing.T) {
	srv, _ := newCatalog(t, http.StatusUnauthorized, `{"error":"bad credentials"}`)
	client := NewAuthAPIClient(srv.URL, "", nil, discardLogger())

	res, err := client.Login(context.Background(), "a@b.c", "wrong")
	assert.Nil(t, res)
	var remoteErr *RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusUnauthorized, remoteErr.StatusCode)
}

func TestLogin_MissingToken(t *testing.T) {
	srv, _ := newCatalog(t, http.StatusOK, `{"username":"nobody"}`)
	client := NewAuthAPIClient(srv.URL, "", nil, discardLogger())

	res, err := client.Login(context.Background(), "a@b.c", "pw")
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrEmptyToken))
}
