package core

import (
	"testing"
	"time"
)

func TestPtr(t *testing.T) {
	t.Run("bool", func(t *testing.T) {
		value := true
		ptr := Ptr(value)
		if ptr == nil {
			t.Fatal("Expected non-nil pointer")
		}
		if *ptr != value {
			t.Errorf("Expected *ptr to be %v, got %v", value, *ptr)
		}
		if ptr == &value {
			t.Error("Expected different memory address from original variable")
		}
	})

	t.Run("duration", func(t *testing.T) {
		ptr := Ptr(2 * time.Second)
		if *ptr != 2*time.Second {
			t.Errorf("Expected *ptr to be 2s, got %s", *ptr)
		}
	})

	t.Run("independent copies", func(t *testing.T) {
		a, b := Ptr(1), Ptr(1)
		*a = 2
		if *b != 1 {
			t.Errorf("Expected second pointer to be unaffected, got %d", *b)
		}
	})
}
