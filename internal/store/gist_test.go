package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kintai-app/apiserver/config"
	"github.com/kintai-app/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGistServer emulates the two gist API calls the store uses: GET
// /gists/{id} and PATCH /gists/{id}.
type fakeGistServer struct {
	content string
}

func (f *fakeGistServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/gists/gist123", r.URL.Path)

		switch r.Method {
		case http.MethodGet:
			doc := gistDocument{Files: map[string]gistFile{}}
			if f.content != "" {
				doc.Files[gistFileName] = gistFile{Content: f.content}
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(doc)
		case http.MethodPatch:
			var doc gistDocument
			if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&doc)) {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.content = doc.Files[gistFileName].Content
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func newTestGistStore(t *testing.T, fake *fakeGistServer) *GistStore {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	return NewGistStore(config.GistConfig{
		ID:      "gist123",
		Token:   "test-token",
		APIBase: server.URL,
	})
}

func TestGistStoreAvailable(t *testing.T) {
	ctx := context.Background()
	assert.True(t, NewGistStore(config.GistConfig{ID: "x", Token: "y"}).Available(ctx))
	assert.False(t, NewGistStore(config.GistConfig{ID: "x"}).Available(ctx))
	assert.False(t, NewGistStore(config.GistConfig{Token: "y"}).Available(ctx))
}

func TestGistStoreLoadEmptyGist(t *testing.T) {
	gs := newTestGistStore(t, &fakeGistServer{})

	data, err := gs.Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestGistStoreSaveLoadRoundTrip(t *testing.T) {
	gs := newTestGistStore(t, &fakeGistServer{})
	ctx := context.Background()

	in := types.UserAttendance{
		"2025-07-08": {CheckIn: "09:00", TravelCost: "500"},
	}
	require.NoError(t, gs.Save(ctx, "alice", in))

	out, err := gs.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestGistStoreUpdateFieldPreservesOtherUsers(t *testing.T) {
	existing := types.AttendanceStore{
		"bob": {"2025-07-01": {CheckIn: "10:00"}},
	}
	raw, err := json.Marshal(existing)
	require.NoError(t, err)

	fake := &fakeGistServer{content: string(raw)}
	gs := newTestGistStore(t, fake)
	ctx := context.Background()

	require.NoError(t, gs.UpdateField(ctx, "alice", "2025-07-08", "check_in", "09:00"))

	alice, err := gs.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "09:00", alice["2025-07-08"].CheckIn)

	bob, err := gs.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "10:00", bob["2025-07-01"].CheckIn)
}

func TestGistStoreFetchErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	gs := NewGistStore(config.GistConfig{ID: "gist123", Token: "bad", APIBase: server.URL})
	_, err := gs.Load(context.Background(), "alice")
	assert.Error(t, err)
}
