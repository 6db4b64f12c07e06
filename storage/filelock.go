package storage

import (
	"os"
	"syscall"
	"time"
)

// lockRetryInterval is how often Lock re-attempts a contended flock.
const lockRetryInterval = 10 * time.Millisecond

// FileLock keeps two pipeline invocations from writing the same transcript
// directory at once. Scheduled runs can outlive their interval (a slow
// Whisper batch, a throttled download), and the next cron tick must not
// interleave with them. The lock is advisory, via flock(2) on a sidecar
// ".lock" file, so a crashed run never leaves the directory wedged.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock prepares a lock guarding path. Nothing is acquired until
// Lock is called; the flock target is path + ".lock".
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path + ".lock"}
}

// Lock acquires the exclusive lock, polling until timeout. It returns
// ErrLockTimeout when another process still holds it at the deadline.
func (l *FileLock) Lock(timeout time.Duration) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return &StorageError{Op: "lock", Path: l.path, Err: err}
	}

	deadline := time.Now().Add(timeout)
	for {
		if syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB) == nil {
			l.file = f
			return nil
		}
		if time.Now().After(deadline) {
			f.Close()
			return ErrLockTimeout
		}
		time.Sleep(lockRetryInterval)
	}
}

// Unlock releases the lock and removes the sidecar file. Unlocking a lock
// that was never acquired is a no-op.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}
	syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	l.file.Close()
	os.Remove(l.path)
	l.file = nil
	return nil
}
