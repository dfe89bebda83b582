package models

// DefaultSection is the always-present section; it cannot be deleted and
// receives the members of any deleted section.
const DefaultSection = "Default"

// Section is a user-defined grouping label for tracked accounts
type Section struct {
	Name string `gorm:"primaryKey;type:varchar(64);not null;column:name" json:"name"`
}

// TableName specifies the table name for Section
func (Section) TableName() string {
	return "sections"
}
