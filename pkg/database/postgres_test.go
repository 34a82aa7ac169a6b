package database

import (
	"strings"
	"testing"

	"github.com/sproutsell/agricredit/pkg/config"
)

func TestNewRequiresDatabaseURL(t *testing.T) {
	cfg := &config.Config{}

	_, err := New(cfg)
	if err == nil {
		t.Fatal("New() succeeded without DATABASE_URL")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("Expected DATABASE_URL error, got %v", err)
	}
}
