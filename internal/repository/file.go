package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/atinyakov/usersvc/internal/models"
)

// FileUserRepository persists the whole user collection as one indented
// JSON array in a single file.
type FileUserRepository struct {
	// Path is the location of the users file.
	Path string
}

// NewFileUserRepository creates a FileUserRepository for the file at path.
// The file does not have to exist yet.
func NewFileUserRepository(path string) *FileUserRepository {
	return &FileUserRepository{Path: path}
}

// ReadUsers loads and parses the users file.
// A missing file is an empty collection. Any other read failure, or content
// that is not a JSON array of users, is reported as ErrStorage.
func (r *FileUserRepository) ReadUsers(ctx context.Context) (models.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.Collection{}, nil
		}
		return nil, storageError("read users", err)
	}

	users := models.Collection{}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, storageError("parse users", err)
	}
	if users == nil {
		// the file held a literal null
		users = models.Collection{}
	}
	return users, nil
}

// WriteUsers serializes users and replaces the users file.
// The data goes to a temporary file in the same directory first, which is
// then renamed over Path, so a failed write leaves the old file intact.
func (r *FileUserRepository) WriteUsers(ctx context.Context, users models.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if users == nil {
		users = models.Collection{}
	}

	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return storageError("encode users", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.Path), filepath.Base(r.Path)+".*.tmp")
	if err != nil {
		return storageError("create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return storageError("write users", err)
	}
	if err := tmp.Close(); err != nil {
		return storageError("close temp file", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return storageError("chmod temp file", err)
	}
	if err := os.Rename(tmpName, r.Path); err != nil {
		return storageError("replace users file", err)
	}
	return nil
}
