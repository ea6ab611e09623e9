package wizard

import (
	"testing"
	"time"

	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

func TestInstanceStore_GetReturnsCopy(t *testing.T) {
	s := NewInstanceStore(time.Minute)
	s.Put(&model.WizardInstance{ID: "w1", Values: model.Record{"name": "Ada"}})

	got, ok := s.Get("w1")
	if !ok {
		t.Fatal("instance not found")
	}
	got.Values["name"] = "mutated"

	again, _ := s.Get("w1")
	if again.Values["name"] != "Ada" {
		t.Errorf("stored values mutated through the returned copy: %v", again.Values)
	}
}

func TestInstanceStore_expiredInstanceInvisible(t *testing.T) {
	s := NewInstanceStore(10 * time.Millisecond)
	s.Put(&model.WizardInstance{ID: "w1"})

	time.Sleep(30 * time.Millisecond)
	if _, ok := s.Get("w1"); ok {
		t.Error("expired instance still visible")
	}
}

func TestInstanceStore_evictExpired(t *testing.T) {
	s := NewInstanceStore(10 * time.Millisecond)
	s.Put(&model.WizardInstance{ID: "w1"})
	s.Put(&model.WizardInstance{ID: "w2"})

	time.Sleep(30 * time.Millisecond)
	s.evictExpired()
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0 after eviction", s.Len())
	}
}

func TestInstanceStore_Delete(t *testing.T) {
	s := NewInstanceStore(time.Minute)
	s.Put(&model.WizardInstance{ID: "w1"})
	s.Delete("w1")

	if _, ok := s.Get("w1"); ok {
		t.Error("deleted instance still visible")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}
