package treasury

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const csvBody = "Date,\"1 Yr\",\"10 Yr\"\n01/15/2025,4.50,4.30\n"

func TestFetchSendsBrowserUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, csvBody)
	}))
	defer srv.Close()

	c := New("ust", srv.URL+"/%d?y=%d", "", 5*time.Second)
	body, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, csvBody, string(body))
	assert.Contains(t, gotUA, "Mozilla/5.0")
}

func TestFetchFallsBackToPreviousYear(t *testing.T) {
	year := time.Now().Year()
	var years []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		y, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/"))
		years = append(years, y)
		if y == year {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, csvBody)
	}))
	defer srv.Close()

	c := New("ust", srv.URL+"/%d?y=%d", "agent", 5*time.Second)
	body, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, csvBody, string(body))
	assert.Equal(t, []int{year, year - 1}, years)
}

func TestFetchReportsLastError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New("ust", srv.URL+"/%d?y=%d", "agent", 5*time.Second)
	_, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
