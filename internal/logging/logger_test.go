package logging

import "testing"

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) { called = true })
	Logf("test message")
	if !called {
		t.Error("custom logger was not called")
	}

	SetLogger(nil)
	noOpCalled := false
	fallback := func(format string, v ...interface{}) { noOpCalled = true }
	_ = fallback
	Logf("test message") // must not panic, must not call anything
	if noOpCalled {
		t.Error("no-op logger should not trigger callbacks")
	}
}

func TestLogfDefault(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should not be nil by default")
	}
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()
	Logf("test message: %s", "value")
}
