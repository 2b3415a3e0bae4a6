package camera

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCategoryOf(t *testing.T) {
	tests := map[string]Category{
		NameNotAllowed:             CategoryPermissionDenied,
		NamePermissionDenied:       CategoryPermissionDenied,
		NameNotFound:               CategoryDeviceNotFound,
		NameDevicesNotFound:        CategoryDeviceNotFound,
		NameNotReadable:            CategoryDeviceBusy,
		NameTrackStart:             CategoryDeviceBusy,
		NameNotSupported:           CategoryUnsupported,
		NameOverconstrained:        CategoryConstraintUnsatisfiable,
		NameConstraintNotSatisfied: CategoryConstraintUnsatisfiable,
		"SecurityError":            CategoryUnknown,
		"AbortError":               CategoryUnknown,
		"TypeError":                CategoryUnknown,
		"SomethingElseError":       CategoryUnknown,
	}
	for name, want := range tests {
		if got := CategoryOf(name); got != want {
			t.Errorf("CategoryOf(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err   error
		cat   Category
		retry bool
	}{
		{&PlatformError{Name: NameNotAllowed}, CategoryPermissionDenied, true},
		{&PlatformError{Name: NameNotFound}, CategoryDeviceNotFound, false},
		{&PlatformError{Name: NameNotReadable}, CategoryDeviceBusy, true},
		{&PlatformError{Name: NameNotSupported}, CategoryUnsupported, false},
		{&PlatformError{Name: NameOverconstrained}, CategoryConstraintUnsatisfiable, true},
		{fmt.Errorf("opening: %w", &PlatformError{Name: NameTrackStart}), CategoryDeviceBusy, true},
		{&PlatformError{Name: "TypeError"}, CategoryUnknown, true},
		{errBoom, CategoryUnknown, true},
	}
	for _, tt := range tests {
		ce := Classify(tt.err)
		if ce.Category != tt.cat || ce.Retry != tt.retry {
			t.Errorf("Classify(%v) = %v retry=%v, want %v retry=%v", tt.err, ce.Category, ce.Retry, tt.cat, tt.retry)
		}
		if ce.Message == "" {
			t.Errorf("Classify(%v) has no message", tt.err)
		}
		if !errors.Is(ce, tt.err) {
			t.Errorf("Classify(%v) does not wrap its cause", tt.err)
		}
	}

	if Classify(nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
}

func TestClassifyKeepsCategorizedErrors(t *testing.T) {
	orig := newError(CategoryInsecureContext, errBoom)
	if got := Classify(fmt.Errorf("wrapped: %w", orig)); got != orig {
		t.Errorf("Expected the original *Error, got %+v", got)
	}
}

func TestUnknownMessageCarriesDetail(t *testing.T) {
	ce := Classify(&PlatformError{Name: "WeirdError", Message: "driver exploded"})
	if !strings.HasPrefix(ce.Message, "Unable to access camera.") {
		t.Errorf("Unexpected message %q", ce.Message)
	}
	if !strings.Contains(ce.Message, "driver exploded") {
		t.Errorf("Expected platform detail in %q", ce.Message)
	}
}

func TestIsOverconstrained(t *testing.T) {
	if !IsOverconstrained(overconstrained()) {
		t.Error("Expected OverconstrainedError to be overconstrained")
	}
	if !IsOverconstrained(Classify(overconstrained())) {
		t.Error("Expected classified overconstrained error to stay overconstrained")
	}
	if IsOverconstrained(&PlatformError{Name: NameNotAllowed}) || IsOverconstrained(errBoom) {
		t.Error("Only constraint failures are overconstrained")
	}
}

func TestCategoryMarshalText(t *testing.T) {
	b, err := CategoryDeviceBusy.MarshalText()
	if err != nil || string(b) != "DeviceBusy" {
		t.Errorf("Unexpected text %q (%v)", b, err)
	}
	if Category(99).String() != "Unknown" {
		t.Error("Out of range categories should read Unknown")
	}
}
