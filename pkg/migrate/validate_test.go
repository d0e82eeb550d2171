package migrate

import "testing"

func TestValidateDir_AcceptsShippedMigrations(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir(migrations) returned error: %v", err)
	}
}

func TestValidateDir_RejectsEmptyDirArg(t *testing.T) {
	if err := ValidateDir(""); err == nil {
		t.Fatal("expected error for empty dir")
	}
}
