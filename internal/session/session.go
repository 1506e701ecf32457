// Package session keeps the CSRF token between runs. The token is what the
// server handed out in its csrftoken cookie; the client only passes it back.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	fileName = "session.json"
	envToken = "TADA_CSRF_TOKEN"
)

type Source string

const (
	SourceEnv  Source = "env"
	SourceFile Source = "file"
)

type Token struct {
	Value   string    `json:"csrf_token"`
	Source  Source    `json:"-"`
	SavedAt time.Time `json:"saved_at"`
}

// Store reads and writes the session file at Path.
type Store struct {
	Path string
}

// DefaultPath is ~/.tada/session.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".tada", fileName), nil
}

// Open returns a store at path, or at DefaultPath when path is empty.
func Open(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &Store{Path: path}, nil
}

// Get returns the token from TADA_CSRF_TOKEN, else from the file. It returns
// nil, nil when neither holds one.
func (s *Store) Get() (*Token, error) {
	if env := strings.TrimSpace(os.Getenv(envToken)); env != "" {
		return &Token{Value: env, Source: SourceEnv}, nil
	}
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var tok Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if strings.TrimSpace(tok.Value) == "" {
		return nil, nil
	}
	tok.Source = SourceFile
	return &tok, nil
}

// Set writes token to the file, owner-only.
func (s *Store) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(Token{Value: token, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(s.Path, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Save is Set that skips the write when the file already holds token.
func (s *Store) Save(token string) error {
	if token == "" {
		return nil
	}
	if cur, err := s.readFile(); err == nil && cur == token {
		return nil
	}
	return s.Set(token)
}

func (s *Store) readFile() (string, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return "", err
	}
	var tok Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return "", err
	}
	return tok.Value, nil
}

// Delete removes the file; a missing file is not an error.
func (s *Store) Delete() error {
	if err := os.Remove(s.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}
