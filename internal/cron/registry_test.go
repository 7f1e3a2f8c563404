package cron

import (
	"context"
	"testing"
)

type namedJob struct {
	name string
}

func (j *namedJob) Name() string              { return j.name }
func (j *namedJob) Run(context.Context) error { return nil }

func TestRegistryKeepsCycleOrder(t *testing.T) {
	overdue := &namedJob{name: "rental-overdue"}
	refresh := &namedJob{name: "alerts-refresh"}
	registry := NewRegistry(overdue, nil, refresh)

	names := registry.Names()
	if len(names) != 2 || names[0] != "rental-overdue" || names[1] != "alerts-refresh" {
		t.Fatalf("unexpected order %v", names)
	}

	jobs := registry.Jobs()
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("internal slice leaked")
	}
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	registry := NewRegistry(&namedJob{name: "alerts-refresh"})
	if registry.Register(&namedJob{name: "alerts-refresh"}) {
		t.Fatalf("expected duplicate to be rejected")
	}
	if len(registry.Jobs()) != 1 {
		t.Fatalf("expected one job, got %d", len(registry.Jobs()))
	}
}
