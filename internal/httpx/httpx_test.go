package httpx_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clyst/marketplace-service/internal/httpx"
)

func TestUserID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int64
		wantOK bool
	}{
		{"valid", "42", 42, true},
		{"missing", "", 0, false},
		{"non-numeric", "abc", 0, false},
		{"zero", "0", 0, false},
		{"negative", "-3", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("x-user-id", tt.header)
			}
			id, err := httpx.UserID(r)
			if tt.wantOK {
				require.NoError(t, err)
				assert.Equal(t, tt.want, id)
			} else {
				assert.ErrorIs(t, err, httpx.ErrNoUser)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	type body struct {
		Title string `json:"title" validate:"required"`
	}

	t.Run("valid", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"vase"}`))
		var b body
		require.NoError(t, httpx.Decode(r, &b))
		assert.Equal(t, "vase", b.Title)
	})

	t.Run("malformed json", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{`))
		var b body
		assert.Error(t, httpx.Decode(r, &b))
	})

	t.Run("failed validation", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{}`))
		var b body
		err := httpx.Decode(r, &b)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Title")
	})
}
