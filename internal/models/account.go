package models

// Account is a tracked game account, identified by the
// (username, hashtag, region) triple.
type Account struct {
	Username string `gorm:"primaryKey;type:varchar(64);not null;column:username" json:"username"`
	Hashtag  string `gorm:"primaryKey;type:varchar(16);not null;column:hashtag" json:"hashtag"`
	Region   string `gorm:"primaryKey;type:varchar(8);not null;column:region" json:"region"`

	// Latest known rank; nil until a fetch has resolved one
	Rank *string `gorm:"type:varchar(32);column:rank" json:"rank"`
	RR   int     `gorm:"not null;default:0;column:rr" json:"rr"`

	// Opaque login credentials, stored as submitted and never validated
	LoginUsername string `gorm:"type:varchar(128);not null;default:'';column:account_username" json:"account_username"`
	LoginPassword string `gorm:"type:varchar(128);not null;default:'';column:password" json:"password"`

	Section string `gorm:"type:varchar(64);not null;default:'Default';column:section" json:"section"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "accounts"
}

// PlayerName returns the in-game display form of the identity
func (a *Account) PlayerName() string {
	return a.Username + "#" + a.Hashtag
}
