package repositories

import (
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"socialfeed/app/logger"
)

// Open opens (or creates) the Badger database at path. Badger's own log output
// is routed through log at debug level and above.
func Open(path string, log *logger.Logger) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(badgerLogger{log: log}).
		WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", path, err)
	}
	return db, nil
}

// OpenInMemory opens a throwaway in-memory database.
func OpenInMemory() (*badger.DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory badger: %w", err)
	}
	return db, nil
}

type badgerLogger struct {
	log *logger.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.log.Error("badger: " + trim(format, args))
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.log.Warn("badger: " + trim(format, args))
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.log.Debug("badger: " + trim(format, args))
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.log.Debug("badger: " + trim(format, args))
}

func trim(format string, args []interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
