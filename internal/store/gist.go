package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kintai-app/apiserver/config"
	"github.com/kintai-app/apiserver/types"
)

const gistFileName = "attendance_data.json"

// GistStore persists the whole attendance store as a single JSON file in
// a GitHub Gist. It is the second fallback behind the primary document
// store, mirroring the shape the local-file backend uses.
type GistStore struct {
	client  *http.Client
	apiBase string
	gistID  string
	token   string
}

func NewGistStore(cfg config.GistConfig) *GistStore {
	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = "https://api.github.com"
	}
	return &GistStore{
		client:  &http.Client{Timeout: 15 * time.Second},
		apiBase: apiBase,
		gistID:  cfg.ID,
		token:   cfg.Token,
	}
}

func (g *GistStore) Name() string { return "gist" }

func (g *GistStore) Available(ctx context.Context) bool {
	return g.gistID != "" && g.token != ""
}

func (g *GistStore) Load(ctx context.Context, username string) (types.UserAttendance, error) {
	all, err := g.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	data, ok := all[username]
	if !ok {
		return types.UserAttendance{}, nil
	}
	return data, nil
}

func (g *GistStore) Save(ctx context.Context, username string, data types.UserAttendance) error {
	all, err := g.loadAll(ctx)
	if err != nil {
		return err
	}
	all[username] = data
	return g.saveAll(ctx, all)
}

// UpdateField is a whole-document read-modify-write: the gist API has no
// partial update, so concurrent writers can lose fields on this degraded
// path, exactly as on the local-file path.
func (g *GistStore) UpdateField(ctx context.Context, username, date, field, value string) error {
	all, err := g.loadAll(ctx)
	if err != nil {
		return err
	}
	user := all[username]
	if user == nil {
		user = types.UserAttendance{}
	}
	rec := user[date]
	if !rec.SetField(field, value) {
		return fmt.Errorf("unknown attendance field %q", field)
	}
	user[date] = rec
	all[username] = user
	return g.saveAll(ctx, all)
}

type gistFile struct {
	Content string `json:"content"`
}

type gistDocument struct {
	Files map[string]gistFile `json:"files"`
}

func (g *GistStore) loadAll(ctx context.Context) (types.AttendanceStore, error) {
	doc, err := g.fetch(ctx)
	if err != nil {
		return nil, err
	}

	file, ok := doc.Files[gistFileName]
	if !ok || file.Content == "" {
		return types.AttendanceStore{}, nil
	}

	all := types.AttendanceStore{}
	if err := json.Unmarshal([]byte(file.Content), &all); err != nil {
		return nil, fmt.Errorf("gist %s is not valid attendance data: %w", gistFileName, err)
	}
	return all, nil
}

func (g *GistStore) saveAll(ctx context.Context, all types.AttendanceStore) error {
	content, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}

	payload := gistDocument{
		Files: map[string]gistFile{
			gistFileName: {Content: string(content)},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, g.gistURL(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	g.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gist update returned status %d", resp.StatusCode)
	}
	return nil
}

func (g *GistStore) fetch(ctx context.Context) (gistDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.gistURL(), nil)
	if err != nil {
		return gistDocument{}, err
	}
	g.setHeaders(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return gistDocument{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return gistDocument{}, fmt.Errorf("gist fetch returned status %d", resp.StatusCode)
	}

	var doc gistDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return gistDocument{}, err
	}
	return doc, nil
}

func (g *GistStore) gistURL() string {
	return fmt.Sprintf("%s/gists/%s", g.apiBase, g.gistID)
}

func (g *GistStore) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "token "+g.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}
