package menu

import "fmt"

// CloseWindowID identifies the application menu item bound to Cmd+W.
const CloseWindowID = "CloseWindow"

// Role says how a platform renders an item. RoleCustom items report their ID
// when selected; every other role maps to a native, OS-handled item.
type Role string

const (
	RoleCustom          Role = "custom"
	RoleSubmenu         Role = "submenu"
	RoleSeparator       Role = "separator"
	RoleHide            Role = "hide"
	RoleEnterFullScreen Role = "enter_fullscreen"
	RoleMinimize        Role = "minimize"
	RoleCopy            Role = "copy"
	RoleCut             Role = "cut"
	RolePaste           Role = "paste"
	RoleUndo            Role = "undo"
	RoleRedo            Role = "redo"
	RoleSelectAll       Role = "select_all"
	RoleQuit            Role = "quit"
)

// Modifier is a keyboard modifier of an accelerator.
type Modifier int

const (
	ModCmd Modifier = 1 << iota
	ModShift
	ModAlt
	ModCtrl
)

// Accelerator is a keyboard shortcut. Key is a single lowercase character.
type Accelerator struct {
	Mods Modifier
	Key  string
}

// Item is a node of the menu tree.
type Item struct {
	ID          string
	Label       string
	Role        Role
	Accelerator Accelerator
	Children    []Item
}

// Model is an immutable menu tree.
type Model struct {
	items []Item
	index map[string]Item
}

// New builds a model and checks that custom item IDs are unique and non-empty.
func New(items ...Item) (*Model, error) {
	m := &Model{
		items: cloneItems(items),
		index: make(map[string]Item),
	}
	if err := m.indexItems(m.items); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) indexItems(items []Item) error {
	for _, it := range items {
		switch it.Role {
		case RoleCustom:
			if it.ID == "" {
				return fmt.Errorf("menu item %q has no id", it.Label)
			}
			if _, dup := m.index[it.ID]; dup {
				return fmt.Errorf("duplicate menu item id %q", it.ID)
			}
			m.index[it.ID] = it
		case RoleSubmenu:
			if err := m.indexItems(it.Children); err != nil {
				return err
			}
		}
	}
	return nil
}

// Items returns a copy of the top-level items.
func (m *Model) Items() []Item {
	return cloneItems(m.items)
}

// Lookup finds a custom item by ID.
func (m *Model) Lookup(id string) (Item, bool) {
	it, ok := m.index[id]
	return it, ok
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it
		out[i].Children = cloneItems(it.Children)
	}
	return out
}

// Separator returns a separator item.
func Separator() Item { return Item{Role: RoleSeparator} }

// Native returns an OS-handled item.
func Native(role Role) Item { return Item{Role: role} }

// Submenu returns a submenu item.
func Submenu(label string, children ...Item) Item {
	return Item{Label: label, Role: RoleSubmenu, Children: children}
}

// DefaultAppMenu returns the macOS application menu: the standard edit and
// window items plus CloseWindow on Cmd+W.
func DefaultAppMenu() *Model {
	m, err := New(Submenu("App",
		Native(RoleHide),
		Native(RoleEnterFullScreen),
		Native(RoleMinimize),
		Separator(),
		Native(RoleCopy),
		Native(RoleCut),
		Native(RolePaste),
		Native(RoleUndo),
		Native(RoleRedo),
		Native(RoleSelectAll),
		Separator(),
		Item{
			ID:          CloseWindowID,
			Label:       CloseWindowID,
			Role:        RoleCustom,
			Accelerator: Accelerator{Mods: ModCmd, Key: "w"},
		},
		Native(RoleQuit),
	))
	if err != nil {
		panic(err)
	}
	return m
}
