package espn

import (
	"io/fs"
	"path"

	sonic "github.com/bytedance/sonic"

	"github.com/courtsidehq/sportsdata/internal/domain/league"
	"github.com/courtsidehq/sportsdata/internal/platform/logging"
)

// localStore reads the bundled per-league JSON tree
// ({dir}/db/espn/{league}/...). It is the cheapest data source and therefore
// consulted first; a missing or malformed file is never an error, just a
// miss.
type localStore struct {
	fsys   fs.FS
	dir    string
	logger *logging.Logger
}

func newLocalStore(fsys fs.FS, dir string, logger *logging.Logger) localStore {
	if logger == nil {
		logger = logging.Default()
	}
	return localStore{fsys: fsys, dir: dir, logger: logger}
}

func (s localStore) enabled() bool {
	return s.fsys != nil
}

func (s localStore) leaguePath(lg league.League, name string) string {
	return path.Join(s.dir, "db", "espn", lg.String(), name)
}

// read returns the decoded contents of a bundled file, or false on any
// failure. Team files ship as objects, teams.json sometimes as a bare array,
// so the result is untyped.
func (s localStore) read(filePath string) (any, bool) {
	if !s.enabled() {
		return nil, false
	}

	raw, err := fs.ReadFile(s.fsys, filePath)
	if err != nil {
		return nil, false
	}

	var out any
	if err := sonic.Unmarshal(raw, &out); err != nil {
		s.logger.Warn("malformed local data file, ignoring", "path", filePath, "error", err)
		return nil, false
	}
	if out == nil {
		return nil, false
	}
	return out, true
}

func (s localStore) readObject(filePath string) (map[string]any, bool) {
	value, ok := s.read(filePath)
	if !ok {
		return nil, false
	}
	obj, ok := value.(map[string]any)
	if !ok || len(obj) == 0 {
		return nil, false
	}
	return obj, true
}

func decodeObject(raw []byte) (map[string]any, error) {
	var payload map[string]any
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
