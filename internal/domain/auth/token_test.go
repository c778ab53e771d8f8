package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)

	token, err := issuer.Issue("42", "jdoe", "ADMIN", KindEmployee)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, KindEmployee, claims.Kind)
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewIssuer([]byte("secret-a"), time.Hour)
	other := NewIssuer([]byte("secret-b"), time.Hour)

	token, err := issuer.Issue("1", "jdoe", "STAFF", KindEmployee)
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), -time.Minute)

	token, err := issuer.Issue("1", "jdoe", "CUSTOMER", KindCustomer)
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)

	_, err := issuer.Verify("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
