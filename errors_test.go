package modtl

import (
	"errors"
	"testing"
)

func TestTranslationError(t *testing.T) {
	cause := errors.New("underlying error")
	err := &TranslationError{Message: "translation failed", Cause: cause}

	if err.Error() != "translation failed: underlying error" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}

	// Without cause
	err2 := &TranslationError{Message: "simple error"}
	if err2.Error() != "simple error" {
		t.Errorf("unexpected error message: %s", err2.Error())
	}
}

func TestProviderError(t *testing.T) {
	err := &ProviderError{Message: "rate limited", Retryable: true}

	if err.Error() != "provider error: rate limited" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	if !err.Retryable {
		t.Error("error should be retryable")
	}
}

func TestTranslationError_WrapsProviderError(t *testing.T) {
	perr := &ProviderError{Message: "unexpected status 403 Forbidden"}
	err := error(&TranslationError{Message: `translating "Hello"`, Cause: perr})

	var target *ProviderError
	if !errors.As(err, &target) {
		t.Fatal("errors.As should find the provider error")
	}
	if target.Message != "unexpected status 403 Forbidden" {
		t.Errorf("unexpected provider message: %s", target.Message)
	}
}

func TestCacheError(t *testing.T) {
	err := &CacheError{Message: "connection failed"}

	if err.Error() != "cache error: connection failed" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestProcessorError(t *testing.T) {
	err := &ProcessorError{Message: "parse failed", ContentType: "xml"}

	if err.Error() != "processor error (xml): parse failed" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "api-key", Message: "required"}

	if err.Error() != "config error: api-key: required" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	cause := errors.New("missing ) in regexp")
	err2 := &ConfigError{Field: "skip-regex", Message: "invalid pattern", Cause: cause}
	if !errors.Is(err2, cause) {
		t.Error("ConfigError should unwrap to its cause")
	}
}
