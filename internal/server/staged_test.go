package server

import (
	"testing"

	"github.com/yarhs-io/yarhs/internal/config"
)

func TestStagedEndpointTakeIfSetClearsAfterRead(t *testing.T) {
	var s StagedEndpoint

	if _, ok := s.TakeIfSet(); ok {
		t.Fatal("TakeIfSet should report unset before any Set call")
	}

	s.Set(config.Endpoint{Host: "127.0.0.1", Port: 9090})

	ep, ok := s.TakeIfSet()
	if !ok {
		t.Fatal("TakeIfSet should report set after Set")
	}
	if ep.Port != 9090 {
		t.Fatalf("ep.Port = %d, want 9090", ep.Port)
	}

	if _, ok := s.TakeIfSet(); ok {
		t.Fatal("TakeIfSet should clear the staged value after being consumed")
	}
}

func TestStagedEndpointClearDiscardsWithoutReturning(t *testing.T) {
	var s StagedEndpoint
	s.Set(config.Endpoint{Host: "127.0.0.1", Port: 9090})
	s.Clear()

	if _, ok := s.TakeIfSet(); ok {
		t.Fatal("TakeIfSet should report unset after Clear")
	}
}
