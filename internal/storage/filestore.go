package storage

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/andrasd/parlor/internal/model/chat"
)

var (
	ErrNotFound  = errors.New("session not found")
	ErrCorrupt   = errors.New("session record corrupt")
	ErrInvalidID = errors.New("invalid session id")
)

// FileStore keeps one JSON slot per session id under dir.
type FileStore struct {
	dir        string
	baseSystem string
}

// NewFileStore creates the sessions directory if needed.
func NewFileStore(dir, baseSystem string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create sessions dir %s", dir)
	}
	return &FileStore{dir: dir, baseSystem: baseSystem}, nil
}

// path resolves a slot location. An id must name a plain file directly under
// fs.dir: anything carrying a path separator or a leading dot is refused, so
// an id can never address a file outside the sessions directory.
func (fs *FileStore) path(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return "", errors.Wrapf(ErrInvalidID, "%q", id)
	}
	return filepath.Join(fs.dir, id+".json"), nil
}

// Exists reports whether a slot is present for id.
func (fs *FileStore) Exists(id string) bool {
	p, err := fs.path(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// EncodeRecord returns the session's persisted document form, which doubles
// as the structured-record export payload.
func (fs *FileStore) EncodeRecord(s *chat.Session) ([]byte, error) {
	return NewRecord(s, fs.baseSystem).Encode()
}

// Save writes the full raw session state to its slot, replacing any
// previous record. Temporary sessions are never written; saving one is a
// successful no-op.
func (fs *FileStore) Save(s *chat.Session) error {
	if s.Temporary {
		return nil
	}

	slot, err := fs.path(s.ID)
	if err != nil {
		return err
	}
	data, err := fs.EncodeRecord(s)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(fs.dir, ".session-*")
	if err != nil {
		return errors.Wrap(err, "stage session record")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, "write session %s", s.ID)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, "write session %s", s.ID)
	}
	if err := os.Rename(tmpName, slot); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, "replace session %s", s.ID)
	}

	log.Debug().Str("session", s.ID).Int("turns", s.Turns.Len()).Msg("session saved")
	return nil
}

// Load reads a slot and rebuilds the session, filling absent record fields
// from defaults. Continuation normalization is not applied here; the stored
// history is the raw turn sequence.
func (fs *FileStore) Load(id string, defaults chat.GenerationParams) (*chat.Session, error) {
	slot, err := fs.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(slot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "%q", id)
		}
		return nil, errors.Wrapf(err, "read session %s", id)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "%q: %v", id, err)
	}
	return r.Session(id, defaults), nil
}

// Rename moves (or, with keepOriginal, copies) the slot to the identifier
// derived from newLabel. The caller owns updating its in-memory session id
// on success.
func (fs *FileStore) Rename(id, newLabel string, keepOriginal bool) (string, error) {
	newID := chat.RenamedID(id, newLabel)
	oldPath, err := fs.path(id)
	if err != nil {
		return "", err
	}
	newPath, err := fs.path(newID)
	if err != nil {
		return "", err
	}

	if keepOriginal {
		if err := copyFile(oldPath, newPath); err != nil {
			return "", errors.Wrapf(err, "copy session %s", id)
		}
	} else {
		if err := os.Rename(oldPath, newPath); err != nil {
			return "", errors.Wrapf(err, "rename session %s", id)
		}
	}
	return newID, nil
}

// Delete removes the slot only. Clearing in-memory state is the caller's
// separate decision.
func (fs *FileStore) Delete(id string) error {
	slot, err := fs.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(slot); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrNotFound, "%q", id)
		}
		return errors.Wrapf(err, "delete session %s", id)
	}
	return nil
}

// List enumerates the persisted session identifiers, sorted.
func (fs *FileStore) List() ([]string, error) {
	dirEntries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list sessions in %s", fs.dir)
	}

	ids := make([]string, 0, len(dirEntries))
	for _, entry := range dirEntries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
