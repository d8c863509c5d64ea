package util

import (
	"reflect"
	"sync"
)

type ErrorString string

func (self ErrorString) Error() string {
	return string(self)
}

func PanicIfNotNil(value interface{}) {
	if !IsReallyNil(value) {
		panic(value)
	}
}

func IsReallyNil(value interface{}) bool {
	if value == nil {
		return true
	}
	switch reflect_value := reflect.ValueOf(value); reflect_value.Kind() {
	case reflect.Chan, reflect.Func, reflect.Map, reflect.Ptr,
		reflect.UnsafePointer, reflect.Interface, reflect.Slice:
		return reflect_value.IsNil()
	default:
		return false
	}
}

func LockUnlock(l sync.Locker) func() {
	l.Lock()
	return l.Unlock
}

// Try runs the action and returns whatever it panicked with, nil otherwise.
func Try(action func()) (recovered interface{}) {
	defer func() {
		recovered = recover()
	}()
	action()
	return
}
