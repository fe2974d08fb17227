package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"socialfeed/app/logger"
	"socialfeed/app/repositories"
)

var errCancelled = errors.New("operation cancelled")

// maintenance runs the database subcommands against the Badger directory at
// dbPath. Prompts are read from in and messages written to out.
type maintenance struct {
	dbPath string
	in     io.Reader
	out    io.Writer
	log    *logger.Logger
}

func (m maintenance) exists() bool {
	_, err := os.Stat(m.dbPath)
	return err == nil
}

// confirm asks a yes/no question unless yes is already set.
func (m maintenance) confirm(question string, yes bool) bool {
	if yes {
		return true
	}
	fmt.Fprintf(m.out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(m.in).ReadString('\n')
	answer = strings.TrimSpace(answer)
	return answer == "y" || answer == "Y"
}

// clean removes the database.
func (m maintenance) clean(yes bool) error {
	if !m.exists() {
		fmt.Fprintln(m.out, "Database is already clean (does not exist)")
		return nil
	}

	if !m.confirm("Are you sure you want to clean the database? This cannot be undone.", yes) {
		fmt.Fprintln(m.out, "Operation cancelled")
		return errCancelled
	}

	if err := os.RemoveAll(m.dbPath); err != nil {
		return fmt.Errorf("failed to clean database: %w", err)
	}
	fmt.Fprintln(m.out, "Database cleaned successfully")
	return nil
}

// initDB creates a new empty database.
func (m maintenance) initDB() error {
	if m.exists() {
		fmt.Fprintln(m.out, "Database already exists. Use 'clean' first if you want to reinitialize.")
		return nil
	}

	if err := os.MkdirAll(m.dbPath, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := repositories.Open(m.dbPath, m.log)
	if err != nil {
		return err
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	fmt.Fprintln(m.out, "Database initialized successfully")
	return nil
}

// backup writes a full Badger backup into dir and returns the file path.
func (m maintenance) backup(dir string) (string, error) {
	if !m.exists() {
		return "", fmt.Errorf("no database exists to backup at %s", m.dbPath)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	db, err := repositories.Open(m.dbPath, m.log)
	if err != nil {
		return "", err
	}
	defer db.Close()

	backupFile := filepath.Join(dir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}

	if err := writeBackup(db, f); err != nil {
		os.Remove(backupFile)
		return "", err
	}

	fmt.Fprintf(m.out, "Database backed up successfully to %s\n", backupFile)
	return backupFile, nil
}

// writeBackup streams a full backup of db into w and closes it. A failed
// Close means the backup was not fully written.
func writeBackup(db *badger.DB, w io.WriteCloser) error {
	if _, err := db.Backup(w, 0); err != nil {
		w.Close()
		return fmt.Errorf("failed to backup database: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// restore replaces the database with the contents of backupFile.
func (m maintenance) restore(backupFile string, yes bool) (err error) {
	fi, err := os.Stat(backupFile)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("backup file does not exist: %s", backupFile)
	}
	if err != nil {
		return fmt.Errorf("failed to stat backup file: %w", err)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("backup file is empty: %s", backupFile)
	}

	if m.exists() {
		if !m.confirm("Existing database found. Do you want to replace it?", yes) {
			fmt.Fprintln(m.out, "Operation cancelled")
			return errCancelled
		}
		if err := os.RemoveAll(m.dbPath); err != nil {
			return fmt.Errorf("failed to remove existing database: %w", err)
		}
	}

	if err := os.MkdirAll(m.dbPath, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := repositories.Open(m.dbPath, m.log)
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred during restore: %v", r)
		}
	}()
	if err := db.Load(f, 4); err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}

	fmt.Fprintln(m.out, "Database restored successfully")
	return nil
}
