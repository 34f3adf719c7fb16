package rbac

import "strings"

type Action string

const (
	ActionView     Action = "view"
	ActionCreate   Action = "create"
	ActionEdit     Action = "edit"
	ActionDelete   Action = "delete"
	ActionApprove  Action = "approve"
	ActionSettings Action = "settings"
)

// Profiles imported from the upstream directory mix English and Portuguese
// action names. The alias table is fixed; unknown names never grant anything.
var aliases = map[string]Action{
	"view":      ActionView,
	"consultar": ActionView,
	"create":    ActionCreate,
	"incluir":   ActionCreate,
	"edit":      ActionEdit,
	"editar":    ActionEdit,
	"delete":    ActionDelete,
	"excluir":   ActionDelete,
	"approve":   ActionApprove,
	"aprovar":   ActionApprove,
	"settings":  ActionSettings,
	"definicao": ActionSettings,
}

// Normalize maps a raw action name to its canonical Action. The second return
// is false for names outside the alias table.
func Normalize(raw string) (Action, bool) {
	action, ok := aliases[strings.ToLower(strings.TrimSpace(raw))]
	return action, ok
}

// Permissions is either unrestricted or an explicit action set. The two cases
// are distinct constructors; there is no sentinel nil-means-everything value.
type Permissions struct {
	unrestricted bool
	actions      map[Action]struct{}
}

func Unrestricted() Permissions {
	return Permissions{unrestricted: true}
}

func Restricted(actions ...Action) Permissions {
	set := make(map[Action]struct{}, len(actions))
	for _, action := range actions {
		set[action] = struct{}{}
	}
	return Permissions{actions: set}
}

// FromStrings builds a restricted set from raw directory action names,
// dropping anything the alias table does not recognize. The literal "*"
// grants everything.
func FromStrings(raw []string) Permissions {
	actions := make([]Action, 0, len(raw))
	for _, name := range raw {
		if strings.TrimSpace(name) == "*" {
			return Unrestricted()
		}
		if action, ok := Normalize(name); ok {
			actions = append(actions, action)
		}
	}
	return Restricted(actions...)
}

func (p Permissions) Can(action Action) bool {
	if p.unrestricted {
		return true
	}
	_, ok := p.actions[action]
	return ok
}

func (p Permissions) IsUnrestricted() bool {
	return p.unrestricted
}

// Strings renders the permission set for serialization: "*" when
// unrestricted, otherwise the canonical action names.
func (p Permissions) Strings() []string {
	if p.unrestricted {
		return []string{"*"}
	}
	names := make([]string, 0, len(p.actions))
	for _, action := range []Action{ActionView, ActionCreate, ActionEdit, ActionDelete, ActionApprove, ActionSettings} {
		if _, ok := p.actions[action]; ok {
			names = append(names, string(action))
		}
	}
	return names
}
