// Package testutil provides common testing utilities and assertion helpers
package testutil

import (
	"errors"
	"reflect"
	"testing"
)

// AssertEqual checks if two values are equal and reports a test failure if not
func AssertEqual(t *testing.T, got, want interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		msg := formatMessage(msgAndArgs...)
		t.Errorf("%sexpected: %v\ngot: %v", msg, want, got)
	}
}

// AssertNotEqual checks if two values are not equal and reports a test failure if they are
func AssertNotEqual(t *testing.T, got, want interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if reflect.DeepEqual(got, want) {
		msg := formatMessage(msgAndArgs...)
		t.Errorf("%sexpected values to be different, but both are: %v", msg, got)
	}
}

// AssertNil checks if value is nil
func AssertNil(t *testing.T, value interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if !isNil(value) {
		msg := formatMessage(msgAndArgs...)
		t.Errorf("%sexpected nil, got: %v", msg, value)
	}
}

// AssertNotNil checks if value is not nil
func AssertNotNil(t *testing.T, value interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if isNil(value) {
		msg := formatMessage(msgAndArgs...)
		t.Errorf("%sexpected non-nil value, got nil", msg)
	}
}

// AssertError checks if error is not nil
func AssertError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	if err == nil {
		msg := formatMessage(msgAndArgs...)
		t.Errorf("%sexpected error, got nil", msg)
	}
}

// AssertNoError checks if error is nil
func AssertNoError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	if err != nil {
		msg := formatMessage(msgAndArgs...)
		t.Fatalf("%sunexpected error: %v", msg, err)
	}
}

// AssertErrorIs checks if error matches expected error via errors.Is
func AssertErrorIs(t *testing.T, got, want error, msgAndArgs ...interface{}) {
	t.Helper()
	if !errors.Is(got, want) {
		msg := formatMessage(msgAndArgs...)
		t.Errorf("%sexpected error: %v\ngot: %v", msg, want, got)
	}
}

// AssertTrue checks if condition is true
func AssertTrue(t *testing.T, condition bool, msgAndArgs ...interface{}) {
	t.Helper()
	if !condition {
		msg := formatMessage(msgAndArgs...)
		t.Errorf("%sexpected true, got false", msg)
	}
}

// AssertFalse checks if condition is false
func AssertFalse(t *testing.T, condition bool, msgAndArgs ...interface{}) {
	t.Helper()
	if condition {
		msg := formatMessage(msgAndArgs...)
		t.Errorf("%sexpected false, got true", msg)
	}
}

// AssertLen checks if collection has expected length
func AssertLen(t *testing.T, collection interface{}, expectedLen int, msgAndArgs ...interface{}) {
	t.Helper()
	value := reflect.ValueOf(collection)
	actualLen := value.Len()
	if actualLen != expectedLen {
		msg := formatMessage(msgAndArgs...)
		t.Errorf("%sexpected length: %d\ngot: %d", msg, expectedLen, actualLen)
	}
}

// Helper functions

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	}

	return false
}

func formatMessage(msgAndArgs ...interface{}) string {
	if len(msgAndArgs) == 0 {
		return ""
	}
	if len(msgAndArgs) == 1 {
		return msgAndArgs[0].(string) + ": "
	}
	return ""
}
