package main

import (
	"io"
	"os"
	"testing"

	"github.com/bft-labs/actionq/pkg/log"
)

func testLogger(t *testing.T) *log.ZerologAdapter {
	t.Helper()
	l, err := log.New(log.Options{Level: "error", Out: io.Discard})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func touch(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return f.Close()
}
