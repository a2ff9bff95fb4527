package view

// Column is a list header.
type Column struct {
	Key   string
	Label string
}

// Row is one list line; Cells follow the column order.
type Row struct {
	ID    uint
	Cells []string
}

// ListPage drives list.html.
type ListPage struct {
	Resource   string // permission resource, e.g. "client"
	BasePath   string // e.g. "/clients"
	Columns    []Column
	Rows       []Row
	Filters    []Field
	Q          string
	Total      int64
	Page       int
	Limit      int
	PrevURL    string
	NextURL    string
	DrillLinks []Link
}

// Link is a labelled href.
type Link struct {
	Label string
	URL   string
}

// Option is a select choice.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Field types understood by form.html.
const (
	FieldText     = "text"
	FieldNumber   = "number"
	FieldDate     = "date"
	FieldDateTime = "datetime-local"
	FieldSelect   = "select"
	FieldReadOnly = "readonly"
	FieldPassword = "password"
	FieldEmail    = "email"
)

// Field is a single form input.
type Field struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Options  []Option
	Error    string
	Required bool
}

// Fieldset groups fields under a title.
type Fieldset struct {
	Title  string
	Fields []Field
}

// FormPage drives form.html.
type FormPage struct {
	Resource  string
	BasePath  string
	Action    string
	ID        uint
	Fieldsets []Fieldset
}

// ImportPage drives import.html.
type ImportPage struct {
	BasePath string
	Result   any
	Error    string
}

// UserRow is a user line of the admin user list.
type UserRow struct {
	ID        uint
	Email     string
	Name      string
	ProfileID uint
}
