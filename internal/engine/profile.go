package engine

// Profile is a full permission snapshot of one profile. Sources load these
// and the Comparer diffs two of them.
type Profile struct {
	FormatVersion     string          `yaml:"format_version,omitempty" json:"formatVersion,omitempty"`
	ID                string          `yaml:"id" json:"id"`
	Name              string          `yaml:"name" json:"name"`
	License           string          `yaml:"license,omitempty" json:"license,omitempty"`
	Apps              []AppAccess     `yaml:"apps,omitempty" json:"apps,omitempty"`
	Objects           []ObjectAccess  `yaml:"objects,omitempty" json:"objects,omitempty"`
	SystemPermissions map[string]bool `yaml:"system_permissions,omitempty" json:"systemPermissions,omitempty"`
	ApexClasses       []string        `yaml:"apex_classes,omitempty" json:"apexClasses,omitempty"`
	Pages             []string        `yaml:"pages,omitempty" json:"pages,omitempty"`
	CustomPermissions []string        `yaml:"custom_permissions,omitempty" json:"customPermissions,omitempty"`
}

// Info returns the identifying part of the snapshot.
func (p *Profile) Info() ProfileInfo {
	return ProfileInfo{ID: p.ID, Name: p.Name, LicenseName: p.License}
}

// AppAccess is app visibility in a profile.
type AppAccess struct {
	Name    string `yaml:"name" json:"name"`
	Label   string `yaml:"label,omitempty" json:"label,omitempty"`
	Visible bool   `yaml:"visible" json:"visible"`
	Default bool   `yaml:"default,omitempty" json:"default,omitempty"`
}

// ObjectAccess is object-level CRUD access plus field-level security.
type ObjectAccess struct {
	Name      string        `yaml:"name" json:"name"`
	Label     string        `yaml:"label,omitempty" json:"label,omitempty"`
	Create    bool          `yaml:"create,omitempty" json:"create,omitempty"`
	Read      bool          `yaml:"read,omitempty" json:"read,omitempty"`
	Edit      bool          `yaml:"edit,omitempty" json:"edit,omitempty"`
	Delete    bool          `yaml:"delete,omitempty" json:"delete,omitempty"`
	ViewAll   bool          `yaml:"view_all,omitempty" json:"viewAll,omitempty"`
	ModifyAll bool          `yaml:"modify_all,omitempty" json:"modifyAll,omitempty"`
	Fields    []FieldAccess `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// FieldAccess is field-level security for one field.
type FieldAccess struct {
	Name     string `yaml:"name" json:"name"`
	Label    string `yaml:"label,omitempty" json:"label,omitempty"`
	Readable bool   `yaml:"readable" json:"readable"`
	Editable bool   `yaml:"editable" json:"editable"`
}
