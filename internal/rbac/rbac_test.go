package rbac

import (
	"reflect"
	"testing"
)

func TestNormalizeAliases(t *testing.T) {
	tests := []struct {
		raw  string
		want Action
	}{
		{"view", ActionView},
		{"Consultar", ActionView},
		{"incluir", ActionCreate},
		{"EDITAR", ActionEdit},
		{"excluir", ActionDelete},
		{"aprovar", ActionApprove},
		{" definicao ", ActionSettings},
	}
	for _, tt := range tests {
		got, ok := Normalize(tt.raw)
		if !ok || got != tt.want {
			t.Fatalf("Normalize(%q) = %v, %v; want %v", tt.raw, got, ok, tt.want)
		}
	}
	if _, ok := Normalize("sudo"); ok {
		t.Fatal("unknown action names must not normalize")
	}
}

func TestFromStringsDropsUnknownNames(t *testing.T) {
	perms := FromStrings([]string{"consultar", "aprovar", "launch-missiles"})
	if !perms.Can(ActionView) || !perms.Can(ActionApprove) {
		t.Fatalf("expected view and approve, got %v", perms.Strings())
	}
	if perms.Can(ActionDelete) || perms.Can(ActionSettings) {
		t.Fatalf("unknown names must grant nothing, got %v", perms.Strings())
	}
}

func TestFromStringsWildcard(t *testing.T) {
	perms := FromStrings([]string{"consultar", "*"})
	if !perms.IsUnrestricted() {
		t.Fatal("* must grant everything")
	}
	for _, action := range []Action{ActionView, ActionCreate, ActionEdit, ActionDelete, ActionApprove, ActionSettings} {
		if !perms.Can(action) {
			t.Fatalf("unrestricted set must allow %s", action)
		}
	}
}

func TestStringsCanonicalOrder(t *testing.T) {
	perms := FromStrings([]string{"aprovar", "view", "editar"})
	got := perms.Strings()
	want := []string{"view", "edit", "approve"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Strings() = %v, want %v", got, want)
	}

	if got := Unrestricted().Strings(); !reflect.DeepEqual(got, []string{"*"}) {
		t.Fatalf("Unrestricted().Strings() = %v", got)
	}
}

func TestRestrictedEmptyDeniesAll(t *testing.T) {
	perms := Restricted()
	if perms.Can(ActionView) || perms.IsUnrestricted() {
		t.Fatal("an empty restricted set must deny everything")
	}
}
