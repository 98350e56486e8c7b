package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textback/internal/pkg/sms/port"
)

func TestTwilioSendSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "token", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "+15550001111", r.PostForm.Get("From"))
		assert.Equal(t, "+15552220000", r.PostForm.Get("To"))
		assert.Equal(t, "hello", r.PostForm.Get("Body"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM42","status":"queued"}`))
	}))
	defer srv.Close()

	gw := NewTwilioGateway(srv.URL, "AC123", "token")
	receipt, err := gw.Send(context.Background(), "+15550001111", "+15552220000", "hello")
	require.NoError(t, err)
	assert.Equal(t, "SM42", receipt.ProviderID)
	assert.Equal(t, "queued", receipt.Status)
}

func TestTwilioFatalRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"The 'To' number is not a valid phone number."}`))
	}))
	defer srv.Close()

	gw := NewTwilioGateway(srv.URL, "AC123", "token")
	_, err := gw.Send(context.Background(), "+15550001111", "bogus", "hello")
	require.Error(t, err)
	assert.True(t, port.IsFatal(err))

	var ge *port.GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, 21211, ge.Code)
}

func TestTwilioTransientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"code":20503,"message":"Service unavailable"}`))
	}))
	defer srv.Close()

	gw := NewTwilioGateway(srv.URL, "AC123", "token")
	_, err := gw.Send(context.Background(), "+15550001111", "+15552220000", "hello")
	require.Error(t, err)
	assert.False(t, port.IsFatal(err))
}

func TestTwilioAuthFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":20003,"message":"Authenticate"}`))
	}))
	defer srv.Close()

	gw := NewTwilioGateway(srv.URL, "AC123", "token")
	_, err := gw.Send(context.Background(), "+15550001111", "+15552220000", "hello")
	require.Error(t, err)
	assert.True(t, port.IsFatal(err))
}
