package model

type Clinic struct {
	Base
	Name     string `db:"name" json:"name"`
	OpsEmail string `db:"ops_email" json:"ops_email,omitempty"`
	Timezone string `db:"timezone" json:"timezone"`
}
