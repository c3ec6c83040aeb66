//go:build !windows

package gateways

import "syscall"

// detachedAttr starts the child in a new session, away from our process group
func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
