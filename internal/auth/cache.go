package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/oauth2"
)

// Cache persists a token between runs.
type Cache interface {
	// Load returns nil, nil when nothing has been cached yet.
	Load() (*oauth2.Token, error)
	Save(tok *oauth2.Token) error
}

// FileCache stores the token as JSON in a single file.
type FileCache struct {
	Path string
}

func NewFileCache(path string) *FileCache {
	return &FileCache{Path: path}
}

func (c *FileCache) Load() (*oauth2.Token, error) {
	raw, err := os.ReadFile(c.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("decode token cache %s: %w", c.Path, err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, fmt.Errorf("token cache %s holds no token", c.Path)
	}

	return &tok, nil
}

func (c *FileCache) Save(tok *oauth2.Token) error {
	raw, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.Path, raw, 0o600)
}
