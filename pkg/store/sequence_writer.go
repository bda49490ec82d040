package store

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SequenceWriterConfig holds configuration for a sequence file writer
type SequenceWriterConfig struct {
	FilePath      string        // Path to the container file
	FsyncInterval time.Duration // How often to fsync (0 = every write)
	BufferSize    int           // Write buffer size
	Append        bool          // Keep existing content, for resumed encodes
}

// SequenceWriter appends symbols to a container file. It satisfies
// io.Writer, so EncodeStream can write to it directly.
type SequenceWriter struct {
	file       *os.File
	writer     *bufio.Writer
	fsyncTimer *time.Timer
	config     SequenceWriterConfig
	mutex      sync.Mutex
	offset     int64 // Current write offset
}

// NewSequenceWriter opens or creates the file named by config
func NewSequenceWriter(config SequenceWriterConfig) (*SequenceWriter, error) {
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
		return nil, err
	}

	flags := os.O_CREATE | os.O_WRONLY
	if config.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(config.FilePath, flags, 0600)
	if err != nil {
		return nil, err
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	if config.BufferSize <= 0 {
		config.BufferSize = 64 * 1024
	}

	writer := &SequenceWriter{
		file:   file,
		writer: bufio.NewWriterSize(file, config.BufferSize),
		config: config,
		offset: stat.Size(),
	}

	if config.FsyncInterval > 0 {
		writer.fsyncTimer = time.AfterFunc(config.FsyncInterval, func() {
			writer.mutex.Lock()
			defer writer.mutex.Unlock()
			_ = writer.sync()
		})
	}

	return writer, nil
}

// Write appends p and syncs according to the configured interval
func (w *SequenceWriter) Write(p []byte) (int, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	n, err := w.writer.Write(p)
	w.offset += int64(n)
	if err != nil {
		return n, err
	}

	if w.config.FsyncInterval == 0 {
		if err := w.sync(); err != nil {
			return n, err
		}
	} else if w.fsyncTimer != nil {
		w.fsyncTimer.Reset(w.config.FsyncInterval)
	}

	return n, nil
}

// Sync forces a fsync to disk
func (w *SequenceWriter) Sync() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.sync()
}

func (w *SequenceWriter) sync() error {
	if err := w.writer.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close syncs and closes the file
func (w *SequenceWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.fsyncTimer != nil {
		w.fsyncTimer.Stop()
	}

	if err := w.sync(); err != nil {
		_ = w.file.Close()
		return err
	}

	return w.file.Close()
}

// Size returns the number of symbols in the file
func (w *SequenceWriter) Size() int64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.offset
}

// Path returns the file path
func (w *SequenceWriter) Path() string {
	return w.config.FilePath
}
