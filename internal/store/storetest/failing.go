// Package storetest holds KV doubles shared by tests of packages that
// persist through store.KV.
package storetest

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by Failing for every failed operation.
var ErrUnavailable = errors.New("storetest: backend unavailable")

// Failing is a KV whose writes all fail, like storage that is full or
// disabled. Reads fail only when FailReads is set; otherwise they report a
// missing key.
type Failing struct {
	FailReads bool
}

func (f Failing) Get(context.Context, string) (string, bool, error) {
	if f.FailReads {
		return "", false, ErrUnavailable
	}
	return "", false, nil
}

func (Failing) Set(context.Context, string, string) error { return ErrUnavailable }
func (Failing) Remove(context.Context, string) error      { return ErrUnavailable }
