package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scripted struct {
	results []Result
	errs    []error
	calls   int
}

func (s *scripted) Geocode(_ context.Context, _ string) (Result, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return Result{}, s.errs[i]
	}
	if i < len(s.results) {
		return s.results[i], nil
	}
	return Result{}, nil
}

func TestRetrying_SucceedsAfterEmptyAnswers(t *testing.T) {
	inner := &scripted{results: []Result{{}, {}, {Address: "147 Train St, Boston, MA", Lat: 42.29, Lon: -71.06}}}
	r := &Retrying{Inner: inner, Unit: time.Millisecond}

	res, err := r.Geocode(context.Background(), "147 TRAIN ST Boston, MA")
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, 42.29, res.Lat)
	assert.True(t, res.Found())
}

func TestRetrying_GivesUp(t *testing.T) {
	inner := &scripted{}
	r := &Retrying{Inner: inner, Unit: time.Millisecond}

	_, err := r.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 4, inner.calls)
}

func TestRetrying_ErrorStopsRetries(t *testing.T) {
	boom := errors.New("boom")
	inner := &scripted{errs: []error{nil, boom}}
	r := &Retrying{Inner: inner, Unit: time.Millisecond}

	_, err := r.Geocode(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, inner.calls)
}

func TestRetrying_ContextCancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	r := &Retrying{Inner: &scripted{}, Unit: time.Hour}
	_, err := r.Geocode(ctx, "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewRetrying_Pacing(t *testing.T) {
	r := NewRetrying(&scripted{results: []Result{{Address: "a"}}}, 100)
	require.NotNil(t, r.Limiter)

	_, err := r.Geocode(context.Background(), "x")
	assert.NoError(t, err)

	assert.Nil(t, NewRetrying(&scripted{}, 0).Limiter)
}

func TestGoogle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		switch r.URL.Query().Get("address") {
		case "147 TRAIN ST Boston, MA":
			w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"147 Train St, Boston, MA 02122, USA",
				"geometry":{"location":{"lat":42.2876,"lng":-71.0502}}}]}`))
		case "limit":
			w.Write([]byte(`{"status":"OVER_QUERY_LIMIT","results":[]}`))
		case "denied":
			w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key","results":[]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	g := &Google{APIKey: "secret", BaseURL: srv.URL, Client: srv.Client()}
	ctx := context.Background()

	res, err := g.Geocode(ctx, "147 TRAIN ST Boston, MA")
	require.NoError(t, err)
	assert.Equal(t, "147 Train St, Boston, MA 02122, USA", res.Address)
	assert.Equal(t, -71.0502, res.Lon)

	res, err = g.Geocode(ctx, "limit")
	require.NoError(t, err)
	assert.False(t, res.Found())

	_, err = g.Geocode(ctx, "denied")
	assert.ErrorContains(t, err, "REQUEST_DENIED")

	_, err = g.Geocode(ctx, "boom")
	assert.Error(t, err)
}
