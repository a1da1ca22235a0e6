package validation

import "testing"

func TestRequired(t *testing.T) {
	v := Violations{}
	Required("name", "  ", v)
	if v["name"] != "required" {
		t.Fatalf("expected required violation, got %v", v)
	}
	v2 := Violations{}
	Required("name", "ok", v2)
	if !v2.Empty() {
		t.Fatalf("expected no violations, got %v", v2)
	}
}

func TestEmail(t *testing.T) {
	v := Violations{}
	Email("email", "not-an-email", v)
	if v["email"] != "invalid_email" {
		t.Fatalf("expected invalid_email, got %v", v)
	}
	v2 := Violations{}
	Email("email", "a@x.com", v2)
	if !v2.Empty() {
		t.Fatalf("unexpected violations: %v", v2)
	}
	// empty value is left to Required
	v3 := Violations{}
	Email("email", "", v3)
	if !v3.Empty() {
		t.Fatalf("empty email should not be flagged here: %v", v3)
	}
}

func TestOneOf(t *testing.T) {
	v := Violations{}
	OneOf("role", "root", []string{"superadmin", "admin", "user"}, v)
	if v["role"] != "not_allowed" {
		t.Fatalf("expected not_allowed, got %v", v)
	}
	v2 := Violations{}
	OneOf("role", "admin", []string{"superadmin", "admin", "user"}, v2)
	if !v2.Empty() {
		t.Fatalf("unexpected violations: %v", v2)
	}
}
