//go:build linux || darwin

package krypto

import "golang.org/x/sys/unix"

// LockMemory pins the slice's pages so they cannot be swapped to disk.
func LockMemory(b []byte) error { return unix.Mlock(b) }

// UnlockMemory releases pages pinned by LockMemory.
func UnlockMemory(b []byte) error { return unix.Munlock(b) }
